package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"valet/internal/domain"
	"valet/internal/service"
)

// CardHandler handles HTTP requests for NFC card administration.
type CardHandler struct {
	cardService *service.CardService
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(cardService *service.CardService) *CardHandler {
	return &CardHandler{cardService: cardService}
}

// CardResponse is the HTTP representation of an NFC card.
type CardResponse struct {
	CardID         string `json:"card_id"`
	Status         string `json:"status"`
	BoundVehicleID string `json:"bound_vehicle_id,omitempty"`
	TotalUses      int    `json:"total_uses"`
	LastUsedAt     string `json:"last_used_at,omitempty"`
}

// Get handles GET /v1/cards/:cardId
func (h *CardHandler) Get(c *gin.Context) {
	card, err := h.cardService.Get(c.Request.Context(), c.Param("cardId"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, cardToResponse(card))
}

// GetClearStatus handles GET /v1/cards/:cardId/clear-status
func (h *CardHandler) GetClearStatus(c *gin.Context) {
	safe, err := h.cardService.CanSafelyClear(c.Request.Context(), c.Param("cardId"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"card_id": c.Param("cardId"), "safe_to_clear": safe})
}

// Clear handles POST /v1/cards/:cardId/clear
func (h *CardHandler) Clear(c *gin.Context) {
	if err := h.cardService.Clear(c.Request.Context(), c.Param("cardId")); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"card_id": c.Param("cardId"),
		"status":  string(domain.CardStatusUnbound),
	})
}

func cardToResponse(card *domain.Card) CardResponse {
	resp := CardResponse{
		CardID:         card.CardID,
		Status:         string(card.Status),
		BoundVehicleID: card.BoundVehicleID,
		TotalUses:      card.TotalUses,
	}
	if !card.LastUsedAt.IsZero() {
		resp.LastUsedAt = card.LastUsedAt.Format(time.RFC3339)
	}
	return resp
}
