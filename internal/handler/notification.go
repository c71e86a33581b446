package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"roadlines/internal/service"
)

// NotificationHandler triggers overdue reminder runs.
type NotificationHandler struct {
	notifierService *service.NotifierService
	runTimeout      time.Duration
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notifierService *service.NotifierService, runTimeout time.Duration) *NotificationHandler {
	return &NotificationHandler{
		notifierService: notifierService,
		runTimeout:      runTimeout,
	}
}

// Run handles POST /v1/notifications/run
// The structured run result is returned for both outcomes; a failed run is a 500.
func (h *NotificationHandler) Run(c *gin.Context) {
	ctx := c.Request.Context()
	if h.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.runTimeout)
		defer cancel()
	}

	result, err := h.notifierService.Run(ctx)
	if err != nil {
		_ = c.Error(err)
		respondJSON(c, http.StatusInternalServerError, result)
		return
	}

	respondJSON(c, http.StatusOK, result)
}
