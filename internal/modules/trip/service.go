// README: Trip service is the resource coordinator: it validates transitions,
// applies them atomically with the vehicle/driver side effects, and fires the
// safety-score recalculation after terminal transitions.
package trip

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"convoy/internal/modules/audit"
	"convoy/internal/modules/fleet"
	"convoy/internal/types"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrBadRequest          = errors.New("bad request")
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrImmutableState      = errors.New("trip not editable")
	ErrResourceUnavailable = errors.New("resource unavailable")
	ErrLicenseIncompatible = errors.New("license incompatible with vehicle category")
	ErrLicenseExpiringSoon = errors.New("license expiring soon")
	ErrCapacityExceeded    = errors.New("cargo exceeds vehicle capacity")
	ErrAlreadyRated        = errors.New("trip already rated")
)

// licenseExpiryBuffer is how far in the future a license must remain valid at
// dispatch time.
const licenseExpiryBuffer = 72 * time.Hour

// DistanceEstimator supplies an estimated distance when a trip is created
// without one.
type DistanceEstimator interface {
	EstimateKm(ctx context.Context, origin, destination string) (float64, error)
}

// ScoreRecalculator re-derives a driver's safety score from trip history.
type ScoreRecalculator interface {
	Recalculate(ctx context.Context, driverID types.ID) (float64, error)
}

type Service struct {
	store     *Store
	fleet     *fleet.Store
	safety    ScoreRecalculator
	estimator DistanceEstimator
	audit     *audit.Store
	log       *logrus.Logger
}

func NewService(store *Store, fleetStore *fleet.Store, safety ScoreRecalculator, estimator DistanceEstimator, auditStore *audit.Store, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		store:     store,
		fleet:     fleetStore,
		safety:    safety,
		estimator: estimator,
		audit:     auditStore,
		log:       log,
	}
}

type CreateCommand struct {
	VehicleID           types.ID
	DriverID            types.ID
	Origin              string
	Destination         string
	DistanceEstimatedKm float64
	CargoWeightKg       *float64
	CargoDescription    string
	Revenue             types.Money
	ClientName          string
	InvoiceRef          string
}

// Create registers a DRAFT trip. Cargo capacity and license compatibility are
// checked here, against the vehicle and driver as they are at creation time.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Trip, error) {
	if cmd.VehicleID == "" || cmd.DriverID == "" {
		return nil, ErrBadRequest
	}
	if strings.TrimSpace(cmd.Origin) == "" || strings.TrimSpace(cmd.Destination) == "" {
		return nil, ErrBadRequest
	}
	if cmd.CargoWeightKg != nil && *cmd.CargoWeightKg < 0 {
		return nil, ErrBadRequest
	}

	v, err := s.fleet.GetVehicle(ctx, cmd.VehicleID)
	if err != nil {
		return nil, mapFleetErr(err)
	}
	d, err := s.fleet.GetDriver(ctx, cmd.DriverID)
	if err != nil {
		return nil, mapFleetErr(err)
	}

	if cmd.CargoWeightKg != nil && v.CapacityWeightKg != nil && *cmd.CargoWeightKg > *v.CapacityWeightKg {
		return nil, ErrCapacityExceeded
	}
	if !LicenseCompatible(v.Category, d.LicenseClass) {
		return nil, ErrLicenseIncompatible
	}

	dist := cmd.DistanceEstimatedKm
	if dist <= 0 && s.estimator != nil {
		est, err := s.estimator.EstimateKm(ctx, cmd.Origin, cmd.Destination)
		if err != nil {
			s.log.WithError(err).Warn("distance estimate failed")
		} else {
			dist = est
		}
	}
	if dist <= 0 {
		return nil, ErrBadRequest
	}

	t := &Trip{
		ID:                  types.NewID(),
		VehicleID:           cmd.VehicleID,
		DriverID:            cmd.DriverID,
		Origin:              strings.TrimSpace(cmd.Origin),
		Destination:         strings.TrimSpace(cmd.Destination),
		DistanceEstimatedKm: dist,
		CargoWeightKg:       cmd.CargoWeightKg,
		CargoDescription:    cmd.CargoDescription,
		Revenue:             cmd.Revenue,
		ClientName:          cmd.ClientName,
		InvoiceRef:          cmd.InvoiceRef,
		Status:              StatusDraft,
		CreatedAt:           time.Now(),
	}
	if t.Revenue.Currency == "" {
		t.Revenue.Currency = "USD"
	}
	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, t.ID, "create", "", string(StatusDraft))
	return t, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Trip, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Trip, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.store.List(ctx, limit, offset)
}

// Update edits trip attributes. Only DRAFT trips are editable; anything else is
// immutable outside the transition operation.
func (s *Service) Update(ctx context.Context, id types.ID, f DraftFields) (*Trip, error) {
	t, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status != StatusDraft {
		return nil, ErrImmutableState
	}
	if f.DistanceEstimatedKm != nil && *f.DistanceEstimatedKm <= 0 {
		return nil, ErrBadRequest
	}
	if f.CargoWeightKg != nil {
		if *f.CargoWeightKg < 0 {
			return nil, ErrBadRequest
		}
		v, err := s.fleet.GetVehicle(ctx, t.VehicleID)
		if err != nil {
			return nil, mapFleetErr(err)
		}
		if v.CapacityWeightKg != nil && *f.CargoWeightKg > *v.CapacityWeightKg {
			return nil, ErrCapacityExceeded
		}
	}
	ok, err := s.store.UpdateDraft(ctx, id, f)
	if err != nil {
		return nil, err
	}
	if !ok {
		// lost a race against a transition
		return nil, ErrImmutableState
	}
	s.recordAudit(ctx, id, "update", string(StatusDraft), string(StatusDraft))
	return s.store.Get(ctx, id)
}

// TransitionCommand carries the target state plus the transition-specific
// payload: odometer readings for dispatch/completion, a reason for
// cancellation.
type TransitionCommand struct {
	TripID           types.ID
	Target           Status
	OdometerStartKm  *float64
	DistanceActualKm *float64
	OdometerEndKm    *float64
	Reason           string
}

func (s *Service) Transition(ctx context.Context, cmd TransitionCommand) (*Trip, error) {
	switch cmd.Target {
	case StatusDispatched:
		return s.Dispatch(ctx, DispatchCommand{TripID: cmd.TripID, OdometerStartKm: cmd.OdometerStartKm})
	case StatusCompleted:
		var dist float64
		if cmd.DistanceActualKm != nil {
			dist = *cmd.DistanceActualKm
		}
		return s.Complete(ctx, CompleteCommand{TripID: cmd.TripID, DistanceActualKm: dist, OdometerEndKm: cmd.OdometerEndKm})
	case StatusCancelled:
		return s.Cancel(ctx, CancelCommand{TripID: cmd.TripID, Reason: cmd.Reason})
	default:
		return nil, ErrInvalidTransition
	}
}

type DispatchCommand struct {
	TripID          types.ID
	OdometerStartKm *float64
}

// Dispatch authorizes and applies DRAFT→DISPATCHED. The availability checks
// repeat inside the transaction as conditional updates, so two concurrent
// dispatches against the same vehicle or driver resolve to exactly one winner.
func (s *Service) Dispatch(ctx context.Context, cmd DispatchCommand) (*Trip, error) {
	t, err := s.store.Get(ctx, cmd.TripID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(t.Status, StatusDispatched) {
		return nil, ErrInvalidTransition
	}

	v, err := s.fleet.GetVehicle(ctx, t.VehicleID)
	if err != nil {
		return nil, mapFleetErr(err)
	}
	d, err := s.fleet.GetDriver(ctx, t.DriverID)
	if err != nil {
		return nil, mapFleetErr(err)
	}

	if !LicenseCompatible(v.Category, d.LicenseClass) {
		return nil, ErrLicenseIncompatible
	}
	if time.Until(d.LicenseExpiry) <= licenseExpiryBuffer {
		return nil, ErrLicenseExpiringSoon
	}
	if v.Status != fleet.VehicleAvailable || d.Status != fleet.DriverOnDuty {
		return nil, ErrResourceUnavailable
	}
	if cmd.OdometerStartKm != nil && *cmd.OdometerStartKm < 0 {
		return nil, ErrBadRequest
	}

	if err := s.store.Dispatch(ctx, t.ID, t.VehicleID, t.DriverID, cmd.OdometerStartKm); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, t.ID, "dispatch", string(StatusDraft), string(StatusDispatched))
	s.recordResourceAudit(ctx, "vehicle", t.VehicleID, string(fleet.VehicleAvailable), string(fleet.VehicleOnTrip))
	s.recordResourceAudit(ctx, "driver", t.DriverID, string(fleet.DriverOnDuty), string(fleet.DriverOnTrip))
	return s.store.Get(ctx, t.ID)
}

type CompleteCommand struct {
	TripID           types.ID
	DistanceActualKm float64
	OdometerEndKm    *float64
}

// Complete applies DISPATCHED→COMPLETED, releases both resources, and triggers
// the driver's safety-score recalculation in the background.
func (s *Service) Complete(ctx context.Context, cmd CompleteCommand) (*Trip, error) {
	if cmd.DistanceActualKm <= 0 {
		return nil, ErrBadRequest
	}
	t, err := s.store.Get(ctx, cmd.TripID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(t.Status, StatusCompleted) {
		return nil, ErrInvalidTransition
	}
	if cmd.OdometerEndKm != nil && t.OdometerStartKm != nil && *cmd.OdometerEndKm < *t.OdometerStartKm {
		return nil, ErrBadRequest
	}

	if err := s.store.Complete(ctx, t.ID, t.VehicleID, t.DriverID, cmd.DistanceActualKm, cmd.OdometerEndKm); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, t.ID, "complete", string(StatusDispatched), string(StatusCompleted))
	s.recordResourceAudit(ctx, "vehicle", t.VehicleID, string(fleet.VehicleOnTrip), string(fleet.VehicleAvailable))
	s.recordResourceAudit(ctx, "driver", t.DriverID, string(fleet.DriverOnTrip), string(fleet.DriverOnDuty))
	s.triggerRecalc(t.DriverID)
	return s.store.Get(ctx, t.ID)
}

type CancelCommand struct {
	TripID types.ID
	Reason string
}

// Cancel applies {DRAFT,DISPATCHED}→CANCELLED. A dispatched trip releases its
// vehicle and driver in the same transaction; a draft holds nothing.
func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) (*Trip, error) {
	reason := strings.TrimSpace(cmd.Reason)
	if len(reason) < 5 {
		return nil, ErrBadRequest
	}
	prev, err := s.store.Cancel(ctx, cmd.TripID, reason)
	if err != nil {
		return nil, err
	}

	t, err := s.store.Get(ctx, cmd.TripID)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, t.ID, "cancel", string(prev), string(StatusCancelled))
	if prev == StatusDispatched {
		s.recordResourceAudit(ctx, "vehicle", t.VehicleID, string(fleet.VehicleOnTrip), string(fleet.VehicleAvailable))
		s.recordResourceAudit(ctx, "driver", t.DriverID, string(fleet.DriverOnTrip), string(fleet.DriverOnDuty))
	}
	s.triggerRecalc(t.DriverID)
	return t, nil
}

// Rate records a post-completion rating (0–100), once per trip.
func (s *Service) Rate(ctx context.Context, id types.ID, rating int) (*Trip, error) {
	if rating < 0 || rating > 100 {
		return nil, ErrBadRequest
	}
	t, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status != StatusCompleted {
		return nil, ErrImmutableState
	}
	if t.Rating != nil {
		return nil, ErrAlreadyRated
	}
	ok, err := s.store.SetRating(ctx, id, rating)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyRated
	}
	s.recordAudit(ctx, id, "rate", string(StatusCompleted), string(StatusCompleted))
	s.triggerRecalc(t.DriverID)
	return s.store.Get(ctx, id)
}

// triggerRecalc runs the safety-score recalculation decoupled from the caller.
// Failures are logged and swallowed; the transition already committed.
func (s *Service) triggerRecalc(driverID types.ID) {
	if s.safety == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := s.safety.Recalculate(ctx, driverID); err != nil {
			s.log.WithError(err).WithField("driver_id", driverID).Warn("safety score recalculation failed")
		}
	}()
}

func (s *Service) recordAudit(ctx context.Context, tripID types.ID, action, from, to string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, audit.Event{
		EntityType: "trip",
		EntityID:   string(tripID),
		Action:     action,
		FromState:  from,
		ToState:    to,
	})
}

func (s *Service) recordResourceAudit(ctx context.Context, entityType string, id types.ID, from, to string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, audit.Event{
		EntityType: entityType,
		EntityID:   string(id),
		Action:     "trip_" + entityType + "_status",
		FromState:  from,
		ToState:    to,
	})
}

func mapFleetErr(err error) error {
	if errors.Is(err, fleet.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
