package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"calorietracker-backend-go/internal/core"
)

// SessionHandler handles the explicit signed-out transition. Signing in is
// implicit: the first authenticated request binds a store via the registry.
type SessionHandler struct {
	sessions *core.SessionRegistry
	pipeline *core.MealPipeline
	logger   *zap.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *core.SessionRegistry, pipeline *core.MealPipeline, logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{sessions: sessions, pipeline: pipeline, logger: logger}
}

// SignOut handles DELETE /session: the user's store is unbound and cleared,
// and pending meal-creation attempts are discarded so late confirmations
// cannot land in a released session.
func (h *SessionHandler) SignOut(c *gin.Context) {
	userID := c.GetString("userID")

	h.sessions.Release(userID)
	h.pipeline.DiscardUser(userID)

	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}
