// README: Waypoint service: itinerary bookkeeping gated by trip status.
// Waypoints are observational; they never gate trip transitions.
package waypoint

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"convoy/internal/modules/audit"
	"convoy/internal/types"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrBadRequest       = errors.New("bad request")
	ErrTripClosed       = errors.New("trip is in a terminal state")
	ErrWaypointConflict = errors.New("duplicate waypoint sequence")
	ErrAlreadyArrived   = errors.New("waypoint already arrived")
	ErrNotYetArrived    = errors.New("waypoint not yet arrived")
	ErrAlreadyDeparted  = errors.New("waypoint already departed")
)

type Service struct {
	store *Store
	audit *audit.Store
}

func NewService(store *Store, auditStore *audit.Store) *Service {
	return &Service{store: store, audit: auditStore}
}

type AddCommand struct {
	TripID      types.ID
	Seq         int
	Label       string
	Position    types.Point
	ScheduledAt *time.Time
}

func (s *Service) Add(ctx context.Context, cmd AddCommand) (*Waypoint, error) {
	if cmd.TripID == "" || cmd.Seq < 0 || strings.TrimSpace(cmd.Label) == "" {
		return nil, ErrBadRequest
	}
	w := &Waypoint{
		TripID:      cmd.TripID,
		Seq:         cmd.Seq,
		Label:       strings.TrimSpace(cmd.Label),
		Position:    cmd.Position,
		ScheduledAt: cmd.ScheduledAt,
	}
	if err := s.store.Add(ctx, w); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, cmd.TripID, cmd.Seq, "waypoint_add")
	return w, nil
}

func (s *Service) ListByTrip(ctx context.Context, tripID types.ID) ([]*Waypoint, error) {
	return s.store.ListByTrip(ctx, tripID)
}

func (s *Service) MarkArrived(ctx context.Context, tripID types.ID, seq int) (*Waypoint, error) {
	ok, err := s.store.MarkArrived(ctx, tripID, seq)
	if err != nil {
		return nil, err
	}
	if !ok {
		w, err := s.store.Get(ctx, tripID, seq)
		if err != nil {
			return nil, err
		}
		if w.ArrivedAt != nil {
			return nil, ErrAlreadyArrived
		}
		return nil, ErrNotFound
	}
	s.recordAudit(ctx, tripID, seq, "waypoint_arrive")
	return s.store.Get(ctx, tripID, seq)
}

func (s *Service) MarkDeparted(ctx context.Context, tripID types.ID, seq int) (*Waypoint, error) {
	ok, err := s.store.MarkDeparted(ctx, tripID, seq)
	if err != nil {
		return nil, err
	}
	if !ok {
		w, err := s.store.Get(ctx, tripID, seq)
		if err != nil {
			return nil, err
		}
		if w.DepartedAt != nil {
			return nil, ErrAlreadyDeparted
		}
		if w.ArrivedAt == nil {
			return nil, ErrNotYetArrived
		}
		return nil, ErrNotFound
	}
	s.recordAudit(ctx, tripID, seq, "waypoint_depart")
	return s.store.Get(ctx, tripID, seq)
}

func (s *Service) recordAudit(ctx context.Context, tripID types.ID, seq int, action string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, audit.Event{
		EntityType: "trip",
		EntityID:   string(tripID),
		Action:     action,
		ToState:    strconv.Itoa(seq),
	})
}
