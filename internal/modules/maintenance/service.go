// README: Maintenance service: shop visits locking the vehicle like a trip
// locks it, with idempotent release.
package maintenance

import (
	"context"
	"errors"
	"strings"
	"time"

	"convoy/internal/modules/audit"
	"convoy/internal/types"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
	ErrInvalidState = errors.New("vehicle not eligible")
)

type Service struct {
	store *Store
	audit *audit.Store
}

func NewService(store *Store, auditStore *audit.Store) *Service {
	return &Service{store: store, audit: auditStore}
}

type OpenCommand struct {
	VehicleID   types.ID
	ServiceType string
	Description string
	CostCents   int64
}

func (s *Service) Open(ctx context.Context, cmd OpenCommand) (*Record, error) {
	if cmd.VehicleID == "" || strings.TrimSpace(cmd.ServiceType) == "" {
		return nil, ErrBadRequest
	}
	if cmd.CostCents < 0 {
		return nil, ErrBadRequest
	}
	r := &Record{
		ID:          types.NewID(),
		VehicleID:   cmd.VehicleID,
		ServiceType: strings.ToLower(strings.TrimSpace(cmd.ServiceType)),
		Description: cmd.Description,
		Cost:        types.Money{Amount: cmd.CostCents, Currency: "USD"},
		Status:      StatusOpen,
		OpenedAt:    time.Now(),
	}
	if err := s.store.Open(ctx, r); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, r, "maintenance_open", "AVAILABLE", "IN_SHOP")
	return r, nil
}

func (s *Service) Close(ctx context.Context, recordID types.ID, costCents *int64) (*Record, error) {
	if costCents != nil && *costCents < 0 {
		return nil, ErrBadRequest
	}
	if err := s.store.Close(ctx, recordID, costCents); err != nil {
		return nil, err
	}
	r, err := s.store.Get(ctx, recordID)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, r, "maintenance_close", "IN_SHOP", "AVAILABLE")
	return r, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Record, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListByVehicle(ctx context.Context, vehicleID types.ID) ([]*Record, error) {
	return s.store.ListByVehicle(ctx, vehicleID)
}

func (s *Service) recordAudit(ctx context.Context, r *Record, action, from, to string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, audit.Event{
		EntityType: "vehicle",
		EntityID:   string(r.VehicleID),
		Action:     action,
		FromState:  from,
		ToState:    to,
	})
}
