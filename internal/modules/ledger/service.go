// README: Ledger service: records immutable cost rows and aggregates per-trip
// and per-vehicle financial summaries. Aggregation never mutates ledger rows.
package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"convoy/internal/modules/audit"
	"convoy/internal/types"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")
)

type Service struct {
	store *Store
	audit *audit.Store
}

func NewService(store *Store, auditStore *audit.Store) *Service {
	return &Service{store: store, audit: auditStore}
}

type AddFuelCommand struct {
	VehicleID          types.ID
	TripID             *types.ID
	Liters             float64
	PricePerLiterCents int64
	OdometerKm         *float64
	FilledAt           time.Time
}

func (s *Service) AddFuelLog(ctx context.Context, cmd AddFuelCommand) (*FuelLog, error) {
	if cmd.VehicleID == "" || cmd.Liters <= 0 || cmd.PricePerLiterCents <= 0 {
		return nil, ErrBadRequest
	}
	if cmd.FilledAt.IsZero() {
		cmd.FilledAt = time.Now()
	}
	f := &FuelLog{
		VehicleID:          cmd.VehicleID,
		TripID:             cmd.TripID,
		Liters:             cmd.Liters,
		PricePerLiterCents: cmd.PricePerLiterCents,
		TotalCost: types.Money{
			Amount:   int64(cmd.Liters*float64(cmd.PricePerLiterCents) + 0.5),
			Currency: "USD",
		},
		OdometerKm: cmd.OdometerKm,
		FilledAt:   cmd.FilledAt,
	}
	if err := s.store.InsertFuelLog(ctx, f); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, "fuel_log", string(cmd.VehicleID))
	return f, nil
}

type AddExpenseCommand struct {
	VehicleID   types.ID
	TripID      *types.ID
	Category    string
	Description string
	AmountCents int64
	IncurredAt  time.Time
}

func (s *Service) AddExpense(ctx context.Context, cmd AddExpenseCommand) (*Expense, error) {
	if cmd.VehicleID == "" || strings.TrimSpace(cmd.Category) == "" || cmd.AmountCents <= 0 {
		return nil, ErrBadRequest
	}
	if cmd.IncurredAt.IsZero() {
		cmd.IncurredAt = time.Now()
	}
	e := &Expense{
		VehicleID:   cmd.VehicleID,
		TripID:      cmd.TripID,
		Category:    strings.ToLower(strings.TrimSpace(cmd.Category)),
		Description: cmd.Description,
		Amount:      types.Money{Amount: cmd.AmountCents, Currency: "USD"},
		IncurredAt:  cmd.IncurredAt,
	}
	if err := s.store.InsertExpense(ctx, e); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, "expense", string(cmd.VehicleID))
	return e, nil
}

// TripSummary computes the financial picture for one trip.
func (s *Service) TripSummary(ctx context.Context, tripID types.ID) (Summary, error) {
	revenue, fuel, expense, err := s.store.TripFinancials(ctx, tripID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(revenue, fuel, expense), nil
}

// VehicleSummary computes the financial picture across a vehicle's history.
func (s *Service) VehicleSummary(ctx context.Context, vehicleID types.ID) (Summary, error) {
	revenue, fuel, expense, err := s.store.VehicleFinancials(ctx, vehicleID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(revenue, fuel, expense), nil
}

func (s *Service) ListFuelLogs(ctx context.Context, vehicleID types.ID, limit, offset int) ([]*FuelLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.store.ListFuelLogsByVehicle(ctx, vehicleID, limit, offset)
}

func (s *Service) ListExpenses(ctx context.Context, vehicleID types.ID, limit, offset int) ([]*Expense, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.store.ListExpensesByVehicle(ctx, vehicleID, limit, offset)
}

func (s *Service) recordAudit(ctx context.Context, entityType, vehicleID string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, audit.Event{
		EntityType: entityType,
		EntityID:   vehicleID,
		Action:     "create",
	})
}
