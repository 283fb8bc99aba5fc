package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"valet/internal/domain"
	"valet/internal/service"
)

// HookHandler handles HTTP requests for the key board.
type HookHandler struct {
	hookService *service.HookService
}

// NewHookHandler creates a new HookHandler.
func NewHookHandler(hookService *service.HookService) *HookHandler {
	return &HookHandler{hookService: hookService}
}

// HookResponse is the HTTP representation of a single hook.
type HookResponse struct {
	Number         int    `json:"number"`
	Status         string `json:"status"`
	BoundVehicleID string `json:"bound_vehicle_id,omitempty"`
}

// GetStats handles GET /v1/hooks/stats
func (h *HookHandler) GetStats(c *gin.Context) {
	stats, err := h.hookService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"total":     stats.Total,
		"available": stats.Available,
		"occupied":  stats.Occupied,
	})
}

// GetBoard handles GET /v1/hooks
func (h *HookHandler) GetBoard(c *gin.Context) {
	hooks, err := h.hookService.Board(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]HookResponse, 0, len(hooks))
	for _, hook := range hooks {
		responses = append(responses, hookToResponse(hook))
	}

	respondJSON(c, http.StatusOK, gin.H{"count": len(responses), "hooks": responses})
}

func hookToResponse(hook *domain.Hook) HookResponse {
	return HookResponse{
		Number:         hook.Number,
		Status:         string(hook.Status),
		BoundVehicleID: hook.BoundVehicleID,
	}
}
