// README: Fleet endpoints: vehicle and driver registry, duty and suspension,
// on-demand safety recalculation, audit trails.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"convoy/internal/modules/audit"
	"convoy/internal/modules/fleet"
	"convoy/internal/modules/safety"
	"convoy/internal/types"
)

type FleetHandler struct {
	fleet  *fleet.Service
	safety *safety.Service
	audit  *audit.Store
}

func NewFleetHandler(fleetSvc *fleet.Service, safetySvc *safety.Service, auditStore *audit.Store) *FleetHandler {
	return &FleetHandler{fleet: fleetSvc, safety: safetySvc, audit: auditStore}
}

type vehicleResponse struct {
	ID               string     `json:"id"`
	Plate            string     `json:"plate"`
	Make             string     `json:"make,omitempty"`
	Model            string     `json:"model,omitempty"`
	Year             int        `json:"year,omitempty"`
	Category         string     `json:"category"`
	Status           string     `json:"status"`
	OdometerKm       float64    `json:"odometer_km"`
	CapacityWeightKg *float64   `json:"capacity_weight_kg,omitempty"`
	CapacityVolumeM3 *float64   `json:"capacity_volume_m3,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func toVehicleResponse(v *fleet.Vehicle) vehicleResponse {
	return vehicleResponse{
		ID:               string(v.ID),
		Plate:            v.Plate,
		Make:             v.Make,
		Model:            v.Model,
		Year:             v.Year,
		Category:         v.Category,
		Status:           string(v.Status),
		OdometerKm:       v.OdometerKm,
		CapacityWeightKg: v.CapacityWeightKg,
		CapacityVolumeM3: v.CapacityVolumeM3,
		CreatedAt:        v.CreatedAt,
		UpdatedAt:        v.UpdatedAt,
	}
}

type driverResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Status        string    `json:"status"`
	LicenseNumber string    `json:"license_number"`
	LicenseClass  string    `json:"license_class"`
	LicenseExpiry time.Time `json:"license_expiry"`
	IncidentCount int       `json:"incident_count"`
	SafetyScore   float64   `json:"safety_score"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toDriverResponse(d *fleet.Driver) driverResponse {
	return driverResponse{
		ID:            string(d.ID),
		Name:          d.Name,
		Status:        string(d.Status),
		LicenseNumber: d.LicenseNumber,
		LicenseClass:  d.LicenseClass,
		LicenseExpiry: d.LicenseExpiry,
		IncidentCount: d.IncidentCount,
		SafetyScore:   d.SafetyScore,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

type createVehicleRequest struct {
	Plate            string   `json:"plate" binding:"required"`
	Make             string   `json:"make"`
	Model            string   `json:"model"`
	Year             int      `json:"year"`
	Category         string   `json:"category" binding:"required"`
	OdometerKm       float64  `json:"odometer_km"`
	CapacityWeightKg *float64 `json:"capacity_weight_kg"`
	CapacityVolumeM3 *float64 `json:"capacity_volume_m3"`
}

func (h *FleetHandler) CreateVehicle(c *gin.Context) {
	var req createVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	v, err := h.fleet.CreateVehicle(c.Request.Context(), fleet.CreateVehicleCommand{
		Plate:            req.Plate,
		Make:             req.Make,
		Model:            req.Model,
		Year:             req.Year,
		Category:         req.Category,
		OdometerKm:       req.OdometerKm,
		CapacityWeightKg: req.CapacityWeightKg,
		CapacityVolumeM3: req.CapacityVolumeM3,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toVehicleResponse(v))
}

func (h *FleetHandler) GetVehicle(c *gin.Context) {
	v, err := h.fleet.GetVehicle(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toVehicleResponse(v))
}

func (h *FleetHandler) ListVehicles(c *gin.Context) {
	limit, offset := pagination(c)
	vehicles, err := h.fleet.ListVehicles(c.Request.Context(), limit, offset)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	out := make([]vehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, toVehicleResponse(v))
	}
	c.JSON(http.StatusOK, gin.H{"vehicles": out})
}

func (h *FleetHandler) DeleteVehicle(c *gin.Context) {
	if err := h.fleet.DeleteVehicle(c.Request.Context(), types.ID(c.Param("id"))); err != nil {
		writeDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FleetHandler) RetireVehicle(c *gin.Context) {
	v, err := h.fleet.RetireVehicle(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toVehicleResponse(v))
}

type createDriverRequest struct {
	Name          string    `json:"name" binding:"required"`
	LicenseNumber string    `json:"license_number" binding:"required"`
	LicenseClass  string    `json:"license_class" binding:"required"`
	LicenseExpiry time.Time `json:"license_expiry" binding:"required"`
}

func (h *FleetHandler) CreateDriver(c *gin.Context) {
	var req createDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	d, err := h.fleet.CreateDriver(c.Request.Context(), fleet.CreateDriverCommand{
		Name:          req.Name,
		LicenseNumber: req.LicenseNumber,
		LicenseClass:  req.LicenseClass,
		LicenseExpiry: req.LicenseExpiry,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toDriverResponse(d))
}

func (h *FleetHandler) GetDriver(c *gin.Context) {
	d, err := h.fleet.GetDriver(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDriverResponse(d))
}

func (h *FleetHandler) ListDrivers(c *gin.Context) {
	limit, offset := pagination(c)
	drivers, err := h.fleet.ListDrivers(c.Request.Context(), limit, offset)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	out := make([]driverResponse, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, toDriverResponse(d))
	}
	c.JSON(http.StatusOK, gin.H{"drivers": out})
}

func (h *FleetHandler) DeleteDriver(c *gin.Context) {
	if err := h.fleet.DeleteDriver(c.Request.Context(), types.ID(c.Param("id"))); err != nil {
		writeDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type dutyRequest struct {
	OnDuty *bool `json:"on_duty" binding:"required"`
}

func (h *FleetHandler) SetDriverDuty(c *gin.Context) {
	var req dutyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.OnDuty == nil {
		writeError(c, http.StatusBadRequest, "on_duty required")
		return
	}
	d, err := h.fleet.SetDriverDuty(c.Request.Context(), types.ID(c.Param("id")), *req.OnDuty)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDriverResponse(d))
}

func (h *FleetHandler) SuspendDriver(c *gin.Context) {
	d, err := h.fleet.SuspendDriver(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDriverResponse(d))
}

func (h *FleetHandler) ReinstateDriver(c *gin.Context) {
	d, err := h.fleet.ReinstateDriver(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDriverResponse(d))
}

type licenseRequest struct {
	LicenseNumber string    `json:"license_number" binding:"required"`
	LicenseClass  string    `json:"license_class" binding:"required"`
	LicenseExpiry time.Time `json:"license_expiry" binding:"required"`
}

func (h *FleetHandler) UpdateDriverLicense(c *gin.Context) {
	var req licenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	d, err := h.fleet.UpdateDriverLicense(c.Request.Context(), types.ID(c.Param("id")), req.LicenseNumber, req.LicenseClass, req.LicenseExpiry)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDriverResponse(d))
}

// RecalculateSafety runs the score recalculation synchronously on demand.
func (h *FleetHandler) RecalculateSafety(c *gin.Context) {
	score, err := h.safety.Recalculate(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"driver_id": c.Param("id"), "safety_score": score})
}

type auditEventResponse struct {
	ID         int64     `json:"id"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Action     string    `json:"action"`
	FromState  string    `json:"from_state,omitempty"`
	ToState    string    `json:"to_state,omitempty"`
	Actor      string    `json:"actor,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// AuditTrail lists the mutation history for one entity.
func (h *FleetHandler) AuditTrail(c *gin.Context) {
	entityType := c.Param("entity_type")
	switch entityType {
	case "trip", "vehicle", "driver", "fuel_log", "expense":
	default:
		writeError(c, http.StatusBadRequest, "unknown entity type")
		return
	}
	events, err := h.audit.ListByEntity(c.Request.Context(), entityType, c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	out := make([]auditEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, auditEventResponse{
			ID:         e.ID,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Action:     e.Action,
			FromState:  e.FromState,
			ToState:    e.ToState,
			Actor:      e.Actor,
			CreatedAt:  e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"events": out})
}
