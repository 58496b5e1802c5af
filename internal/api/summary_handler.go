package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"calorietracker-backend-go/internal/core"
	"calorietracker-backend-go/internal/db"
)

// SummaryHandler serves the derived daily and weekly summaries. Summaries are
// always computed against one fully-formed snapshot of the bound store's
// collection, with the profile's daily target copied in when one exists.
type SummaryHandler struct {
	sessions  *core.SessionRegistry
	summaries core.SummaryService
	profiles  db.ProfileRepository
	logger    *zap.Logger
}

// NewSummaryHandler creates a new SummaryHandler.
func NewSummaryHandler(
	sessions *core.SessionRegistry,
	summaries core.SummaryService,
	profiles db.ProfileRepository,
	logger *zap.Logger,
) *SummaryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryHandler{sessions: sessions, summaries: summaries, profiles: profiles, logger: logger}
}

// parseDayParam reads a query parameter as either a date ("2006-01-02") or an
// RFC 3339 timestamp, defaulting to now.
func parseDayParam(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Now(), true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: "Query parameter '" + name + "' must be a date (2006-01-02) or RFC 3339 timestamp",
	})
	return time.Time{}, false
}

// dailyGoal looks up the user's target. A missing profile simply yields no
// goal; only unexpected repository failures are logged.
func (h *SummaryHandler) dailyGoal(c *gin.Context, userID string) *int {
	profile, err := h.profiles.Get(c.Request.Context(), userID)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			h.logger.Warn("could not load profile for summary goal",
				zap.String("userId", userID),
				zap.Error(err))
		}
		return nil
	}
	target := core.TargetCalories(*profile)
	return &target
}

// DailySummary handles GET /summaries/daily?date=...
func (h *SummaryHandler) DailySummary(c *gin.Context) {
	userID := c.GetString("userID")
	day, ok := parseDayParam(c, "date")
	if !ok {
		return
	}

	store := h.sessions.StoreFor(userID)
	if err := store.WaitReady(c.Request.Context()); err != nil {
		mapMealErrorToStatus(c, h.logger, err)
		return
	}

	summary := h.summaries.Daily(store.Meals(), day, h.dailyGoal(c, userID))
	c.JSON(http.StatusOK, summary)
}

// WeeklySummary handles GET /summaries/weekly?anchor=...
func (h *SummaryHandler) WeeklySummary(c *gin.Context) {
	userID := c.GetString("userID")
	anchor, ok := parseDayParam(c, "anchor")
	if !ok {
		return
	}

	store := h.sessions.StoreFor(userID)
	if err := store.WaitReady(c.Request.Context()); err != nil {
		mapMealErrorToStatus(c, h.logger, err)
		return
	}

	summary := h.summaries.Weekly(store.Meals(), anchor, h.dailyGoal(c, userID))
	c.JSON(http.StatusOK, summary)
}
