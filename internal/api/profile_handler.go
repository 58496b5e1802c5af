package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"calorietracker-backend-go/internal/core"
	"calorietracker-backend-go/internal/db"
	"calorietracker-backend-go/internal/models"
)

// ProfileHandler handles the user profile and the derived calorie target.
type ProfileHandler struct {
	profiles db.ProfileRepository
	logger   *zap.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profiles db.ProfileRepository, logger *zap.Logger) *ProfileHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileHandler{profiles: profiles, logger: logger}
}

// mapProfileErrorToStatus maps profile repository errors to HTTP statuses.
func (h *ProfileHandler) mapProfileErrorToStatus(c *gin.Context, err error) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Profile not found"})
	case errors.Is(err, db.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Permission denied by remote store", Details: err.Error()})
	case errors.Is(err, db.ErrTransientNetwork):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Temporary remote store failure, please retry", Details: err.Error()})
	default:
		h.logger.Error("unexpected error in profile handler", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred"})
	}
}

// GetProfile handles GET /profile.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID := c.GetString("userID")

	profile, err := h.profiles.Get(c.Request.Context(), userID)
	if err != nil {
		h.mapProfileErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// SaveProfile handles PUT /profile: create or fully replace the authenticated
// user's profile, normalizing to the canonical field values.
func (h *ProfileHandler) SaveProfile(c *gin.Context) {
	userID := c.GetString("userID")

	var req models.SaveProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	activity := models.ActivityLevel(req.ActivityLevel)
	if !activity.Valid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Unknown activityLevel '" + req.ActivityLevel + "'"})
		return
	}
	goal := models.Goal(req.Goal)
	if !goal.Valid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Unknown goal '" + req.Goal + "'"})
		return
	}

	profile := models.UserProfile{
		ID:            userID,
		Gender:        strings.ToLower(req.Gender),
		Age:           req.Age,
		HeightCm:      req.HeightCm,
		WeightKg:      req.WeightKg,
		ActivityLevel: activity,
		Goal:          goal,
	}
	if req.DailyCalorieLimit != nil && *req.DailyCalorieLimit > 0 {
		profile.DailyCalorieLimit = req.DailyCalorieLimit
	}

	if err := h.profiles.Save(c.Request.Context(), &profile); err != nil {
		h.mapProfileErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetTargetCalories handles GET /profile/target.
func (h *ProfileHandler) GetTargetCalories(c *gin.Context) {
	userID := c.GetString("userID")

	profile, err := h.profiles.Get(c.Request.Context(), userID)
	if err != nil {
		h.mapProfileErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, TargetCaloriesResponse{TargetCalories: core.TargetCalories(*profile)})
}
