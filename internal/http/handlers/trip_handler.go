// README: Trip endpoints: draft CRUD, lifecycle transitions, rating, ledger view.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"convoy/internal/modules/ledger"
	"convoy/internal/modules/trip"
	"convoy/internal/types"
)

type TripHandler struct {
	trips  *trip.Service
	ledger *ledger.Service
}

func NewTripHandler(trips *trip.Service, ledgerSvc *ledger.Service) *TripHandler {
	return &TripHandler{trips: trips, ledger: ledgerSvc}
}

type tripResponse struct {
	ID                  string      `json:"id"`
	VehicleID           string      `json:"vehicle_id"`
	DriverID            string      `json:"driver_id"`
	Origin              string      `json:"origin"`
	Destination         string      `json:"destination"`
	DistanceEstimatedKm float64     `json:"distance_estimated_km"`
	DistanceActualKm    *float64    `json:"distance_actual_km,omitempty"`
	CargoWeightKg       *float64    `json:"cargo_weight_kg,omitempty"`
	CargoDescription    string      `json:"cargo_description,omitempty"`
	Revenue             types.Money `json:"revenue"`
	ClientName          string      `json:"client_name,omitempty"`
	InvoiceRef          string      `json:"invoice_ref,omitempty"`
	Status              string      `json:"status"`
	OdometerStartKm     *float64    `json:"odometer_start_km,omitempty"`
	OdometerEndKm       *float64    `json:"odometer_end_km,omitempty"`
	DispatchedAt        *time.Time  `json:"dispatched_at,omitempty"`
	CompletedAt         *time.Time  `json:"completed_at,omitempty"`
	CancelledAt         *time.Time  `json:"cancelled_at,omitempty"`
	CancelReason        *string     `json:"cancel_reason,omitempty"`
	Rating              *int        `json:"rating,omitempty"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

func toTripResponse(t *trip.Trip) tripResponse {
	return tripResponse{
		ID:                  string(t.ID),
		VehicleID:           string(t.VehicleID),
		DriverID:            string(t.DriverID),
		Origin:              t.Origin,
		Destination:         t.Destination,
		DistanceEstimatedKm: t.DistanceEstimatedKm,
		DistanceActualKm:    t.DistanceActualKm,
		CargoWeightKg:       t.CargoWeightKg,
		CargoDescription:    t.CargoDescription,
		Revenue:             t.Revenue,
		ClientName:          t.ClientName,
		InvoiceRef:          t.InvoiceRef,
		Status:              string(t.Status),
		OdometerStartKm:     t.OdometerStartKm,
		OdometerEndKm:       t.OdometerEndKm,
		DispatchedAt:        t.DispatchedAt,
		CompletedAt:         t.CompletedAt,
		CancelledAt:         t.CancelledAt,
		CancelReason:        t.CancelReason,
		Rating:              t.Rating,
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
	}
}

type createTripRequest struct {
	VehicleID           string   `json:"vehicle_id" binding:"required"`
	DriverID            string   `json:"driver_id" binding:"required"`
	Origin              string   `json:"origin" binding:"required"`
	Destination         string   `json:"destination" binding:"required"`
	DistanceEstimatedKm float64  `json:"distance_estimated_km"`
	CargoWeightKg       *float64 `json:"cargo_weight_kg"`
	CargoDescription    string   `json:"cargo_description"`
	RevenueCents        int64    `json:"revenue_cents"`
	Currency            string   `json:"currency"`
	ClientName          string   `json:"client_name"`
	InvoiceRef          string   `json:"invoice_ref"`
}

func (h *TripHandler) Create(c *gin.Context) {
	var req createTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	t, err := h.trips.Create(c.Request.Context(), trip.CreateCommand{
		VehicleID:           types.ID(req.VehicleID),
		DriverID:            types.ID(req.DriverID),
		Origin:              req.Origin,
		Destination:         req.Destination,
		DistanceEstimatedKm: req.DistanceEstimatedKm,
		CargoWeightKg:       req.CargoWeightKg,
		CargoDescription:    req.CargoDescription,
		Revenue:             types.Money{Amount: req.RevenueCents, Currency: req.Currency},
		ClientName:          req.ClientName,
		InvoiceRef:          req.InvoiceRef,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTripResponse(t))
}

func (h *TripHandler) Get(c *gin.Context) {
	t, err := h.trips.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTripResponse(t))
}

func (h *TripHandler) List(c *gin.Context) {
	limit, offset := pagination(c)
	trips, err := h.trips.List(c.Request.Context(), limit, offset)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	out := make([]tripResponse, 0, len(trips))
	for _, t := range trips {
		out = append(out, toTripResponse(t))
	}
	c.JSON(http.StatusOK, gin.H{"trips": out})
}

type updateTripRequest struct {
	Origin              *string  `json:"origin"`
	Destination         *string  `json:"destination"`
	DistanceEstimatedKm *float64 `json:"distance_estimated_km"`
	CargoWeightKg       *float64 `json:"cargo_weight_kg"`
	CargoDescription    *string  `json:"cargo_description"`
	RevenueCents        *int64   `json:"revenue_cents"`
	ClientName          *string  `json:"client_name"`
	InvoiceRef          *string  `json:"invoice_ref"`
}

func (h *TripHandler) Update(c *gin.Context) {
	var req updateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	t, err := h.trips.Update(c.Request.Context(), types.ID(c.Param("id")), trip.DraftFields{
		Origin:              req.Origin,
		Destination:         req.Destination,
		DistanceEstimatedKm: req.DistanceEstimatedKm,
		CargoWeightKg:       req.CargoWeightKg,
		CargoDescription:    req.CargoDescription,
		RevenueCents:        req.RevenueCents,
		ClientName:          req.ClientName,
		InvoiceRef:          req.InvoiceRef,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTripResponse(t))
}

type dispatchRequest struct {
	OdometerStartKm *float64 `json:"odometer_start_km"`
}

func (h *TripHandler) Dispatch(c *gin.Context) {
	var req dispatchRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	t, err := h.trips.Dispatch(c.Request.Context(), trip.DispatchCommand{
		TripID:          types.ID(c.Param("id")),
		OdometerStartKm: req.OdometerStartKm,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTripResponse(t))
}

type completeRequest struct {
	DistanceActualKm float64  `json:"distance_actual_km" binding:"required"`
	OdometerEndKm    *float64 `json:"odometer_end_km"`
}

func (h *TripHandler) Complete(c *gin.Context) {
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	t, err := h.trips.Complete(c.Request.Context(), trip.CompleteCommand{
		TripID:           types.ID(c.Param("id")),
		DistanceActualKm: req.DistanceActualKm,
		OdometerEndKm:    req.OdometerEndKm,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTripResponse(t))
}

type cancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *TripHandler) Cancel(c *gin.Context) {
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "cancellation reason required")
		return
	}
	t, err := h.trips.Cancel(c.Request.Context(), trip.CancelCommand{
		TripID: types.ID(c.Param("id")),
		Reason: req.Reason,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTripResponse(t))
}

type rateRequest struct {
	Rating *int `json:"rating" binding:"required"`
}

func (h *TripHandler) Rate(c *gin.Context) {
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Rating == nil {
		writeError(c, http.StatusBadRequest, "rating required")
		return
	}
	t, err := h.trips.Rate(c.Request.Context(), types.ID(c.Param("id")), *req.Rating)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTripResponse(t))
}

func (h *TripHandler) Ledger(c *gin.Context) {
	sum, err := h.ledger.TripSummary(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSummaryResponse(sum))
}

// pagination reads limit/offset query params with the service defaults as
// fallback.
func pagination(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
