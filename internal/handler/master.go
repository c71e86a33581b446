package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roadlines/internal/domain"
	"roadlines/internal/service"
)

// MasterHandler serves the party and motor owner directories.
type MasterHandler struct {
	masterService *service.MasterService
}

// NewMasterHandler creates a new MasterHandler.
func NewMasterHandler(masterService *service.MasterService) *MasterHandler {
	return &MasterHandler{masterService: masterService}
}

// MasterResponse is one directory entry.
type MasterResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Mobile string `json:"mobile,omitempty"`
}

// ListParties handles GET /v1/masters/parties
func (h *MasterHandler) ListParties(c *gin.Context) {
	h.list(c, domain.MasterParty)
}

// ListOwners handles GET /v1/masters/owners
func (h *MasterHandler) ListOwners(c *gin.Context) {
	h.list(c, domain.MasterMotorOwner)
}

func (h *MasterHandler) list(c *gin.Context, kind domain.MasterKind) {
	masters, err := h.masterService.ListMasters(c.Request.Context(), kind, c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]MasterResponse, 0, len(masters))
	for _, m := range masters {
		response = append(response, MasterResponse{ID: m.ID, Name: m.Name, Mobile: m.Mobile})
	}

	respondJSON(c, http.StatusOK, gin.H{
		"masters": response,
		"count":   len(response),
	})
}
