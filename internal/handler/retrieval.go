package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"valet/internal/domain"
	"valet/internal/service"
)

// RetrievalHandler handles HTTP requests for the retrieval flow.
type RetrievalHandler struct {
	retrievalService *service.RetrievalService
}

// NewRetrievalHandler creates a new RetrievalHandler.
func NewRetrievalHandler(retrievalService *service.RetrievalService) *RetrievalHandler {
	return &RetrievalHandler{retrievalService: retrievalService}
}

// EnqueueRequest is the HTTP request body for requesting a retrieval.
type EnqueueRequest struct {
	CardID        string `json:"card_id,omitempty"`
	VehicleID     string `json:"vehicle_id,omitempty"`
	IsPriority    bool   `json:"is_priority,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"` // CASH, ONLINE
	PaidOnline    bool   `json:"paid_online,omitempty"`
}

// RequestResponse is the HTTP representation of a retrieval request.
type RequestResponse struct {
	ID               string  `json:"id"`
	VehicleID        string  `json:"vehicle_id"`
	CardID           string  `json:"card_id"`
	IsPriority       bool    `json:"is_priority"`
	PaymentMethod    string  `json:"payment_method"`
	Amount           float64 `json:"amount"`
	TipAmount        float64 `json:"tip_amount,omitempty"`
	Status           string  `json:"status"`
	AssignedDriverID string  `json:"assigned_driver_id,omitempty"`
	PaymentConfirmed bool    `json:"payment_confirmed"`
	CardVerified     bool    `json:"card_verified"`
	RequestedAt      string  `json:"requested_at"`
	CancelReason     string  `json:"cancel_reason,omitempty"`
}

// AssignRequest is the HTTP request body for assigning a driver.
type AssignRequest struct {
	DriverID string `json:"driver_id"`
}

// AdvanceRequest is the HTTP request body for advancing a request.
type AdvanceRequest struct {
	FromStatus string `json:"from_status"`
}

// VerifyCardRequest is the HTTP request body for the handover card scan.
type VerifyCardRequest struct {
	CardID string `json:"card_id"`
}

// ConfirmPaymentRequest is the HTTP request body for payment confirmation.
type ConfirmPaymentRequest struct {
	TipAmount float64 `json:"tip_amount,omitempty"`
}

// CancelRequest is the HTTP request body for cancelling a request.
type CancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

// QueueRowResponse is one row of the queue snapshot.
type QueueRowResponse struct {
	RequestID      string  `json:"request_id"`
	VehicleID      string  `json:"vehicle_id"`
	HookNumber     int     `json:"hook_number"`
	LicensePlate   string  `json:"license_plate"`
	SequenceNumber int64   `json:"sequence_number"`
	IsPriority     bool    `json:"is_priority"`
	Status         string  `json:"status"`
	DriverID       string  `json:"driver_id,omitempty"`
	Amount         float64 `json:"amount"`
	RequestedAt    string  `json:"requested_at"`
}

// Enqueue handles POST /v1/retrievals
func (h *RetrievalHandler) Enqueue(c *gin.Context) {
	var req EnqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	paymentMethod, err := service.ValidatePaymentMethod(req.PaymentMethod)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	request, err := h.retrievalService.Enqueue(c.Request.Context(), service.EnqueueRequest{
		CardID:        req.CardID,
		VehicleID:     req.VehicleID,
		IsPriority:    req.IsPriority,
		PaymentMethod: paymentMethod,
		PaidOnline:    req.PaidOnline || paymentMethod == domain.PaymentMethodOnline,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, requestToResponse(request))
}

// GetQueue handles GET /v1/retrievals/queue
func (h *RetrievalHandler) GetQueue(c *gin.Context) {
	snapshot, err := h.retrievalService.Queue(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"total":          snapshot.Total,
		"priority_count": len(snapshot.Priority),
		"standard_count": len(snapshot.Standard),
		"priority_queue": rowsToResponse(snapshot.Priority),
		"standard_queue": rowsToResponse(snapshot.Standard),
	})
}

// GetPendingHandovers handles GET /v1/retrievals/handovers
func (h *RetrievalHandler) GetPendingHandovers(c *gin.Context) {
	entries, err := h.retrievalService.PendingHandovers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	type handoverResponse struct {
		Request RequestResponse `json:"request"`
		Vehicle VehicleResponse `json:"vehicle"`
	}

	responses := make([]handoverResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, handoverResponse{
			Request: requestToResponse(entry.Request),
			Vehicle: vehicleToResponse(entry.Vehicle, 0, 0),
		})
	}

	respondJSON(c, http.StatusOK, gin.H{
		"count":     len(responses),
		"handovers": responses,
	})
}

// GetRequest handles GET /v1/retrievals/:id
func (h *RetrievalHandler) GetRequest(c *gin.Context) {
	request, err := h.retrievalService.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, requestToResponse(request))
}

// Assign handles POST /v1/retrievals/:id/assign
func (h *RetrievalHandler) Assign(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.retrievalService.Assign(c.Request.Context(), c.Param("id"), req.DriverID); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"request_id": c.Param("id"),
		"driver_id":  req.DriverID,
		"status":     string(domain.RequestStatusAssigned),
	})
}

// Advance handles POST /v1/retrievals/:id/advance
func (h *RetrievalHandler) Advance(c *gin.Context) {
	var req AdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	next, err := h.retrievalService.Advance(c.Request.Context(), c.Param("id"), domain.RequestStatus(req.FromStatus))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"request_id": c.Param("id"),
		"status":     string(next),
	})
}

// VerifyCard handles POST /v1/retrievals/:id/verify-card
func (h *RetrievalHandler) VerifyCard(c *gin.Context) {
	var req VerifyCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.retrievalService.VerifyCard(c.Request.Context(), c.Param("id"), req.CardID); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"request_id": c.Param("id"), "card_verified": true})
}

// ConfirmPayment handles POST /v1/retrievals/:id/confirm-payment
func (h *RetrievalHandler) ConfirmPayment(c *gin.Context) {
	var req ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.retrievalService.ConfirmPayment(c.Request.Context(), c.Param("id"), req.TipAmount); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"request_id": c.Param("id"), "payment_confirmed": true})
}

// Complete handles POST /v1/retrievals/:id/complete
func (h *RetrievalHandler) Complete(c *gin.Context) {
	if err := h.retrievalService.Complete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"request_id": c.Param("id"),
		"status":     string(domain.RequestStatusCompleted),
	})
}

// Cancel handles POST /v1/retrievals/:id/cancel
func (h *RetrievalHandler) Cancel(c *gin.Context) {
	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.retrievalService.Cancel(c.Request.Context(), c.Param("id"), req.Reason); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"request_id": c.Param("id"),
		"status":     string(domain.RequestStatusCancelled),
	})
}

func requestToResponse(request *domain.RetrievalRequest) RequestResponse {
	return RequestResponse{
		ID:               request.ID,
		VehicleID:        request.VehicleID,
		CardID:           request.CardID,
		IsPriority:       request.IsPriority,
		PaymentMethod:    string(request.PaymentMethod),
		Amount:           request.Amount,
		TipAmount:        request.TipAmount,
		Status:           string(request.Status),
		AssignedDriverID: request.AssignedDriverID,
		PaymentConfirmed: request.PaymentConfirmed,
		CardVerified:     request.CardVerified,
		RequestedAt:      request.RequestedAt.Format(time.RFC3339),
		CancelReason:     request.CancelReason,
	}
}

func rowsToResponse(rows []service.QueueRow) []QueueRowResponse {
	responses := make([]QueueRowResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, QueueRowResponse{
			RequestID:      row.RequestID,
			VehicleID:      row.VehicleID,
			HookNumber:     row.HookNumber,
			LicensePlate:   row.LicensePlate,
			SequenceNumber: row.SequenceNumber,
			IsPriority:     row.IsPriority,
			Status:         string(row.Status),
			DriverID:       row.DriverID,
			Amount:         row.Amount,
			RequestedAt:    row.RequestedAt.Format(time.RFC3339),
		})
	}
	return responses
}
