// README: Ledger endpoints: fuel logs, expenses, and financial summaries.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"convoy/internal/modules/ledger"
	"convoy/internal/types"
)

type LedgerHandler struct {
	ledger *ledger.Service
}

func NewLedgerHandler(svc *ledger.Service) *LedgerHandler {
	return &LedgerHandler{ledger: svc}
}

type summaryResponse struct {
	Revenue     types.Money `json:"revenue"`
	FuelCost    types.Money `json:"fuel_cost"`
	ExpenseCost types.Money `json:"expense_cost"`
	TotalCost   types.Money `json:"total_cost"`
	Profit      types.Money `json:"profit"`
	ROIPercent  any         `json:"roi_percent"`
}

func toSummaryResponse(s ledger.Summary) summaryResponse {
	var roi any = "N/A"
	if s.ROI != nil {
		roi = *s.ROI
	}
	return summaryResponse{
		Revenue:     s.Revenue,
		FuelCost:    s.FuelCost,
		ExpenseCost: s.ExpenseCost,
		TotalCost:   s.TotalCost,
		Profit:      s.Profit,
		ROIPercent:  roi,
	}
}

type fuelLogResponse struct {
	ID                 int64       `json:"id"`
	VehicleID          string      `json:"vehicle_id"`
	TripID             *string     `json:"trip_id,omitempty"`
	Liters             float64     `json:"liters"`
	PricePerLiterCents int64       `json:"price_per_liter_cents"`
	TotalCost          types.Money `json:"total_cost"`
	OdometerKm         *float64    `json:"odometer_km,omitempty"`
	FilledAt           time.Time   `json:"filled_at"`
}

func toFuelLogResponse(f *ledger.FuelLog) fuelLogResponse {
	r := fuelLogResponse{
		ID:                 f.ID,
		VehicleID:          string(f.VehicleID),
		Liters:             f.Liters,
		PricePerLiterCents: f.PricePerLiterCents,
		TotalCost:          f.TotalCost,
		OdometerKm:         f.OdometerKm,
		FilledAt:           f.FilledAt,
	}
	if f.TripID != nil {
		id := string(*f.TripID)
		r.TripID = &id
	}
	return r
}

type expenseResponse struct {
	ID          int64       `json:"id"`
	VehicleID   string      `json:"vehicle_id"`
	TripID      *string     `json:"trip_id,omitempty"`
	Category    string      `json:"category"`
	Description string      `json:"description,omitempty"`
	Amount      types.Money `json:"amount"`
	IncurredAt  time.Time   `json:"incurred_at"`
}

func toExpenseResponse(e *ledger.Expense) expenseResponse {
	r := expenseResponse{
		ID:          e.ID,
		VehicleID:   string(e.VehicleID),
		Category:    e.Category,
		Description: e.Description,
		Amount:      e.Amount,
		IncurredAt:  e.IncurredAt,
	}
	if e.TripID != nil {
		id := string(*e.TripID)
		r.TripID = &id
	}
	return r
}

type addFuelRequest struct {
	TripID             *string   `json:"trip_id"`
	Liters             float64   `json:"liters" binding:"required"`
	PricePerLiterCents int64     `json:"price_per_liter_cents" binding:"required"`
	OdometerKm         *float64  `json:"odometer_km"`
	FilledAt           time.Time `json:"filled_at"`
}

func (h *LedgerHandler) AddFuelLog(c *gin.Context) {
	var req addFuelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	cmd := ledger.AddFuelCommand{
		VehicleID:          types.ID(c.Param("id")),
		Liters:             req.Liters,
		PricePerLiterCents: req.PricePerLiterCents,
		OdometerKm:         req.OdometerKm,
		FilledAt:           req.FilledAt,
	}
	if req.TripID != nil {
		id := types.ID(*req.TripID)
		cmd.TripID = &id
	}
	f, err := h.ledger.AddFuelLog(c.Request.Context(), cmd)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toFuelLogResponse(f))
}

func (h *LedgerHandler) ListFuelLogs(c *gin.Context) {
	limit, offset := pagination(c)
	logs, err := h.ledger.ListFuelLogs(c.Request.Context(), types.ID(c.Param("id")), limit, offset)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	out := make([]fuelLogResponse, 0, len(logs))
	for _, f := range logs {
		out = append(out, toFuelLogResponse(f))
	}
	c.JSON(http.StatusOK, gin.H{"fuel_logs": out})
}

type addExpenseRequest struct {
	TripID      *string   `json:"trip_id"`
	Category    string    `json:"category" binding:"required"`
	Description string    `json:"description"`
	AmountCents int64     `json:"amount_cents" binding:"required"`
	IncurredAt  time.Time `json:"incurred_at"`
}

func (h *LedgerHandler) AddExpense(c *gin.Context) {
	var req addExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	cmd := ledger.AddExpenseCommand{
		VehicleID:   types.ID(c.Param("id")),
		Category:    req.Category,
		Description: req.Description,
		AmountCents: req.AmountCents,
		IncurredAt:  req.IncurredAt,
	}
	if req.TripID != nil {
		id := types.ID(*req.TripID)
		cmd.TripID = &id
	}
	e, err := h.ledger.AddExpense(c.Request.Context(), cmd)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toExpenseResponse(e))
}

func (h *LedgerHandler) ListExpenses(c *gin.Context) {
	limit, offset := pagination(c)
	expenses, err := h.ledger.ListExpenses(c.Request.Context(), types.ID(c.Param("id")), limit, offset)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseResponse(e))
	}
	c.JSON(http.StatusOK, gin.H{"expenses": out})
}

func (h *LedgerHandler) VehicleSummary(c *gin.Context) {
	sum, err := h.ledger.VehicleSummary(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSummaryResponse(sum))
}
