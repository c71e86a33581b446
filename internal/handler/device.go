package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"roadlines/internal/middleware"
	"roadlines/internal/service"
)

// DeviceHandler handles push token registration.
type DeviceHandler struct {
	deviceService *service.DeviceService
}

// NewDeviceHandler creates a new DeviceHandler.
func NewDeviceHandler(deviceService *service.DeviceService) *DeviceHandler {
	return &DeviceHandler{deviceService: deviceService}
}

// RegisterDeviceRequest is the HTTP request body for registering a device.
type RegisterDeviceRequest struct {
	Token      string `json:"token"`
	DeviceType string `json:"device_type,omitempty"`
}

// DeviceResponse is the HTTP response for a registered device.
type DeviceResponse struct {
	ID          string `json:"id"`
	Token       string `json:"token"`
	DeviceType  string `json:"device_type"`
	LastUpdated string `json:"last_updated"`
}

// RegisterDevice handles POST /v1/devices
// Returns 201 for a new token and 200 when an existing one was refreshed.
func (h *DeviceHandler) RegisterDevice(c *gin.Context) {
	var req RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	device, created, err := h.deviceService.RegisterDevice(c.Request.Context(), middleware.GetUserID(c), req.Token, req.DeviceType)
	if err != nil {
		respondError(c, err)
		return
	}

	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}

	respondJSON(c, code, DeviceResponse{
		ID:          device.ID,
		Token:       device.Token,
		DeviceType:  device.DeviceType,
		LastUpdated: device.LastUpdated.Format(time.RFC3339),
	})
}
