// README: Maintenance endpoints: open and close shop visits, list per vehicle.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"convoy/internal/modules/maintenance"
	"convoy/internal/types"
)

type MaintenanceHandler struct {
	maintenance *maintenance.Service
}

func NewMaintenanceHandler(svc *maintenance.Service) *MaintenanceHandler {
	return &MaintenanceHandler{maintenance: svc}
}

type maintenanceResponse struct {
	ID          string      `json:"id"`
	VehicleID   string      `json:"vehicle_id"`
	ServiceType string      `json:"service_type"`
	Description string      `json:"description,omitempty"`
	Cost        types.Money `json:"cost"`
	Status      string      `json:"status"`
	OpenedAt    time.Time   `json:"opened_at"`
	ClosedAt    *time.Time  `json:"closed_at,omitempty"`
}

func toMaintenanceResponse(r *maintenance.Record) maintenanceResponse {
	return maintenanceResponse{
		ID:          string(r.ID),
		VehicleID:   string(r.VehicleID),
		ServiceType: r.ServiceType,
		Description: r.Description,
		Cost:        r.Cost,
		Status:      string(r.Status),
		OpenedAt:    r.OpenedAt,
		ClosedAt:    r.ClosedAt,
	}
}

type openMaintenanceRequest struct {
	ServiceType string `json:"service_type" binding:"required"`
	Description string `json:"description"`
	CostCents   int64  `json:"cost_cents"`
}

func (h *MaintenanceHandler) Open(c *gin.Context) {
	var req openMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	r, err := h.maintenance.Open(c.Request.Context(), maintenance.OpenCommand{
		VehicleID:   types.ID(c.Param("id")),
		ServiceType: req.ServiceType,
		Description: req.Description,
		CostCents:   req.CostCents,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toMaintenanceResponse(r))
}

type closeMaintenanceRequest struct {
	CostCents *int64 `json:"cost_cents"`
}

func (h *MaintenanceHandler) Close(c *gin.Context) {
	var req closeMaintenanceRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	r, err := h.maintenance.Close(c.Request.Context(), types.ID(c.Param("id")), req.CostCents)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMaintenanceResponse(r))
}

func (h *MaintenanceHandler) Get(c *gin.Context) {
	r, err := h.maintenance.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMaintenanceResponse(r))
}

func (h *MaintenanceHandler) ListByVehicle(c *gin.Context) {
	records, err := h.maintenance.ListByVehicle(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	out := make([]maintenanceResponse, 0, len(records))
	for _, r := range records {
		out = append(out, toMaintenanceResponse(r))
	}
	c.JSON(http.StatusOK, gin.H{"records": out})
}
