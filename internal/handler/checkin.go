package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"valet/internal/domain"
	"valet/internal/service"
)

// CheckinHandler handles HTTP requests for vehicle check-in and lookup.
type CheckinHandler struct {
	checkinService *service.CheckinService
}

// NewCheckinHandler creates a new CheckinHandler.
func NewCheckinHandler(checkinService *service.CheckinService) *CheckinHandler {
	return &CheckinHandler{checkinService: checkinService}
}

// CheckInRequest is the HTTP request body for checking in a vehicle.
type CheckInRequest struct {
	CardID        string `json:"card_id,omitempty"`
	LicensePlate  string `json:"license_plate"`
	Make          string `json:"make,omitempty"`
	Model         string `json:"model,omitempty"`
	Color         string `json:"color,omitempty"`
	CustomerPhone string `json:"customer_phone,omitempty"`
}

// CheckInResponse is the HTTP response for checking in a vehicle.
type CheckInResponse struct {
	VehicleID      string `json:"vehicle_id"`
	CardID         string `json:"card_id"`
	HookNumber     int    `json:"hook_number"`
	SequenceNumber int64  `json:"sequence_number"`
	LicensePlate   string `json:"license_plate"`
	Status         string `json:"status"`
	CheckInTime    string `json:"check_in_time"`
}

// VehicleResponse is the HTTP response for a vehicle lookup.
type VehicleResponse struct {
	VehicleID       string  `json:"vehicle_id"`
	CardID          string  `json:"card_id"`
	HookNumber      int     `json:"hook_number"`
	SequenceNumber  int64   `json:"sequence_number"`
	LicensePlate    string  `json:"license_plate"`
	Make            string  `json:"make,omitempty"`
	Model           string  `json:"model,omitempty"`
	Color           string  `json:"color,omitempty"`
	Status          string  `json:"status"`
	CheckInTime     string  `json:"check_in_time"`
	DurationMinutes int     `json:"duration_minutes"`
	CurrentFee      float64 `json:"current_fee"`
}

// CheckIn handles POST /v1/checkin
func (h *CheckinHandler) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.checkinService.CheckIn(c.Request.Context(), service.CheckInRequest{
		CardID:        req.CardID,
		LicensePlate:  req.LicensePlate,
		Make:          req.Make,
		Model:         req.Model,
		Color:         req.Color,
		CustomerPhone: req.CustomerPhone,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, CheckInResponse{
		VehicleID:      result.Vehicle.ID,
		CardID:         result.CardID,
		HookNumber:     result.HookNumber,
		SequenceNumber: result.Vehicle.SequenceNumber,
		LicensePlate:   result.Vehicle.LicensePlate,
		Status:         string(result.Vehicle.Status),
		CheckInTime:    result.Vehicle.CheckInTime.Format(time.RFC3339),
	})
}

// GetVehicleByCard handles GET /v1/vehicles/:cardId
func (h *CheckinHandler) GetVehicleByCard(c *gin.Context) {
	info, err := h.checkinService.GetVehicleByCard(c.Request.Context(), c.Param("cardId"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, vehicleToResponse(info.Vehicle, info.DurationMinutes, info.CurrentFee))
}

// ListVehicles handles GET /v1/vehicles
func (h *CheckinHandler) ListVehicles(c *gin.Context) {
	vehicles, err := h.checkinService.ListVehicles(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]VehicleResponse, 0, len(vehicles))
	for _, vehicle := range vehicles {
		responses = append(responses, vehicleToResponse(vehicle, 0, 0))
	}

	respondJSON(c, http.StatusOK, gin.H{
		"count":    len(responses),
		"vehicles": responses,
	})
}

func vehicleToResponse(vehicle *domain.Vehicle, durationMinutes int, currentFee float64) VehicleResponse {
	return VehicleResponse{
		VehicleID:       vehicle.ID,
		CardID:          vehicle.CardID,
		HookNumber:      vehicle.HookNumber,
		SequenceNumber:  vehicle.SequenceNumber,
		LicensePlate:    vehicle.LicensePlate,
		Make:            vehicle.Make,
		Model:           vehicle.Model,
		Color:           vehicle.Color,
		Status:          string(vehicle.Status),
		CheckInTime:     vehicle.CheckInTime.Format(time.RFC3339),
		DurationMinutes: durationMinutes,
		CurrentFee:      currentFee,
	}
}
