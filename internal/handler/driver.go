package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"valet/internal/domain"
	"valet/internal/service"
)

// DriverHandler handles HTTP requests for the driver registry.
type DriverHandler struct {
	driverService *service.DriverService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(driverService *service.DriverService) *DriverHandler {
	return &DriverHandler{driverService: driverService}
}

// RegisterDriverRequest is the HTTP request body for registering a driver.
type RegisterDriverRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// SetDriverStatusRequest is the HTTP request body for a status change.
type SetDriverStatusRequest struct {
	Status string `json:"status"` // OFFLINE, AVAILABLE
}

// DriverResponse is the HTTP representation of a driver.
type DriverResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Phone           string `json:"phone,omitempty"`
	Status          string `json:"status"`
	ActiveRequestID string `json:"active_request_id,omitempty"`
}

// Register handles POST /v1/drivers
func (h *DriverHandler) Register(c *gin.Context) {
	var req RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	driver, err := h.driverService.Register(c.Request.Context(), req.Name, req.Phone)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, driverToResponse(driver))
}

// Get handles GET /v1/drivers/:id
func (h *DriverHandler) Get(c *gin.Context) {
	driver, err := h.driverService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, driverToResponse(driver))
}

// List handles GET /v1/drivers
func (h *DriverHandler) List(c *gin.Context) {
	drivers, err := h.driverService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]DriverResponse, 0, len(drivers))
	for _, driver := range drivers {
		responses = append(responses, driverToResponse(driver))
	}

	respondJSON(c, http.StatusOK, gin.H{"count": len(responses), "drivers": responses})
}

// SetStatus handles PUT /v1/drivers/:id/status
func (h *DriverHandler) SetStatus(c *gin.Context) {
	var req SetDriverStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.driverService.SetStatus(c.Request.Context(), c.Param("id"), domain.DriverStatus(req.Status)); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"driver_id": c.Param("id"), "status": req.Status})
}

func driverToResponse(driver *domain.Driver) DriverResponse {
	return DriverResponse{
		ID:              driver.ID,
		Name:            driver.Name,
		Phone:           driver.Phone,
		Status:          string(driver.Status),
		ActiveRequestID: driver.ActiveRequestID,
	}
}
