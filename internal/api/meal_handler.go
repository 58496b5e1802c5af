package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"calorietracker-backend-go/internal/core"
	"calorietracker-backend-go/internal/db"
	"calorietracker-backend-go/internal/models"
)

// maxImageBytes caps uploaded meal photos at 10 MiB.
const maxImageBytes = 10 << 20

// MealHandler handles API endpoints for the meal collection and the creation
// pipeline.
type MealHandler struct {
	sessions *core.SessionRegistry
	pipeline *core.MealPipeline
	logger   *zap.Logger
}

// NewMealHandler creates a new MealHandler.
func NewMealHandler(sessions *core.SessionRegistry, pipeline *core.MealPipeline, logger *zap.Logger) *MealHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MealHandler{sessions: sessions, pipeline: pipeline, logger: logger}
}

// mapMealErrorToStatus maps errors from the meal core to HTTP status codes.
func mapMealErrorToStatus(c *gin.Context, logger *zap.Logger, err error) {
	var stageErr *core.StageError
	stage := ""
	if errors.As(err, &stageErr) {
		stage = string(stageErr.Stage)
	}

	switch {
	case errors.Is(err, core.ErrMealNotFound), errors.Is(err, core.ErrAttemptNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, core.ErrImageRequired):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: core.ErrImageRequired.Error(), Stage: stage})
	case errors.Is(err, core.ErrNoActiveSession):
		c.JSON(http.StatusConflict, ErrorResponse{Error: core.ErrNoActiveSession.Error()})
	case errors.Is(err, db.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Permission denied by remote store", Details: err.Error(), Stage: stage})
	case errors.Is(err, db.ErrTransientNetwork):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Temporary remote store failure, please retry", Details: err.Error(), Stage: stage})
	case errors.Is(err, db.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	default:
		logger.Error("unexpected error in meal handler", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred", Stage: stage})
	}
}

// ListMeals handles GET /meals. It waits for the bound store's first snapshot
// so a fresh session never observes a half-initialized collection.
func (h *MealHandler) ListMeals(c *gin.Context) {
	userID := c.GetString("userID")
	store := h.sessions.StoreFor(userID)

	if err := store.WaitReady(c.Request.Context()); err != nil {
		mapMealErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, store.Meals())
}

// StreamMeals handles GET /meals/stream: a server-sent-events feed of
// reconciled collection states for the bound user.
func (h *MealHandler) StreamMeals(c *gin.Context) {
	userID := c.GetString("userID")
	store := h.sessions.StoreFor(userID)

	snapshots, cancel := store.Subscribe()
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case meals, ok := <-snapshots:
			if !ok {
				return false
			}
			c.SSEvent("meals", meals)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// CreateMeal handles POST /meals. The request is multipart: an "image" file,
// optional "notes", and optional manual "calories". With the confirmation
// policy on and no manual calories, the response is 202 with a pending
// attempt; otherwise 201 with the committed document ID.
func (h *MealHandler) CreateMeal(c *gin.Context) {
	userID := c.GetString("userID")

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "An 'image' file field is required", Details: err.Error()})
		return
	}
	if fileHeader.Size > maxImageBytes {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "Image exceeds the 10 MiB limit"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Could not read uploaded image", Details: err.Error()})
		return
	}
	defer file.Close()
	image, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Could not read uploaded image", Details: err.Error()})
		return
	}

	input := core.CreateMealInput{
		UserID:      userID,
		Image:       image,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Notes:       c.PostForm("notes"),
	}
	if raw := c.PostForm("calories"); raw != "" {
		calories, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Field 'calories' must be an integer", Details: err.Error()})
			return
		}
		input.ManualCalories = &calories
	}

	result, err := h.pipeline.CreateMeal(c.Request.Context(), input)
	if err != nil {
		mapMealErrorToStatus(c, h.logger, err)
		return
	}

	if result.Committed {
		c.JSON(http.StatusCreated, MealCreatedResponse{ID: result.MealID})
		return
	}
	c.JSON(http.StatusAccepted, result.Attempt)
}

// ConfirmMeal handles POST /meals/attempts/:attemptId/confirm.
func (h *MealHandler) ConfirmMeal(c *gin.Context) {
	userID := c.GetString("userID")
	attemptID := c.Param("attemptId")

	var req models.ConfirmMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	mealID, err := h.pipeline.Confirm(c.Request.Context(), userID, attemptID, req.Calories)
	if err != nil {
		mapMealErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, MealCreatedResponse{ID: mealID})
}

// DeleteMeal handles DELETE /meals/:mealId. The record disappears from reads
// when the next snapshot arrives; an orphaned image blob is reported, not
// treated as a failure.
func (h *MealHandler) DeleteMeal(c *gin.Context) {
	userID := c.GetString("userID")
	mealID := c.Param("mealId")
	store := h.sessions.StoreFor(userID)

	if err := store.WaitReady(c.Request.Context()); err != nil {
		mapMealErrorToStatus(c, h.logger, err)
		return
	}

	orphanedURL, err := store.DeleteMeal(c.Request.Context(), mealID)
	if err != nil {
		mapMealErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MealDeletedResponse{ID: mealID, OrphanedImageURL: orphanedURL})
}
