// README: Fleet service: registry CRUD, duty/suspension rules, license sweep.
package fleet

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"convoy/internal/modules/audit"
	"convoy/internal/types"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
	ErrInvalidState = errors.New("invalid state")
)

type Service struct {
	store *Store
	audit *audit.Store
	log   *logrus.Logger
}

func NewService(store *Store, auditStore *audit.Store, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{store: store, audit: auditStore, log: log}
}

type CreateVehicleCommand struct {
	Plate            string
	Make             string
	Model            string
	Year             int
	Category         string
	OdometerKm       float64
	CapacityWeightKg *float64
	CapacityVolumeM3 *float64
}

func (s *Service) CreateVehicle(ctx context.Context, cmd CreateVehicleCommand) (*Vehicle, error) {
	if strings.TrimSpace(cmd.Plate) == "" {
		return nil, ErrBadRequest
	}
	if cmd.OdometerKm < 0 {
		return nil, ErrBadRequest
	}
	if cmd.CapacityWeightKg != nil && *cmd.CapacityWeightKg <= 0 {
		return nil, ErrBadRequest
	}
	v := &Vehicle{
		ID:               types.NewID(),
		Plate:            strings.TrimSpace(cmd.Plate),
		Make:             cmd.Make,
		Model:            cmd.Model,
		Year:             cmd.Year,
		Category:         strings.ToLower(strings.TrimSpace(cmd.Category)),
		Status:           VehicleAvailable,
		OdometerKm:       cmd.OdometerKm,
		CapacityWeightKg: cmd.CapacityWeightKg,
		CapacityVolumeM3: cmd.CapacityVolumeM3,
		CreatedAt:        time.Now(),
	}
	if err := s.store.CreateVehicle(ctx, v); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, "vehicle", string(v.ID), "create", "", string(v.Status))
	return v, nil
}

func (s *Service) GetVehicle(ctx context.Context, id types.ID) (*Vehicle, error) {
	return s.store.GetVehicle(ctx, id)
}

func (s *Service) ListVehicles(ctx context.Context, limit, offset int) ([]*Vehicle, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.store.ListVehicles(ctx, limit, offset)
}

// DeleteVehicle soft-deletes. Blocked while the vehicle is ON_TRIP.
func (s *Service) DeleteVehicle(ctx context.Context, id types.ID) error {
	v, err := s.store.GetVehicle(ctx, id)
	if err != nil {
		return err
	}
	ok, err := s.store.SoftDeleteVehicle(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidState
	}
	s.recordAudit(ctx, "vehicle", string(id), "soft_delete", string(v.Status), string(v.Status))
	return nil
}

// RetireVehicle permanently removes a vehicle from service. RETIRED is terminal.
func (s *Service) RetireVehicle(ctx context.Context, id types.ID) (*Vehicle, error) {
	if _, err := s.store.GetVehicle(ctx, id); err != nil {
		return nil, err
	}
	ok, err := s.store.RetireVehicle(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidState
	}
	s.recordAudit(ctx, "vehicle", string(id), "retire", string(VehicleAvailable), string(VehicleRetired))
	return s.store.GetVehicle(ctx, id)
}

type CreateDriverCommand struct {
	Name          string
	LicenseNumber string
	LicenseClass  string
	LicenseExpiry time.Time
}

func (s *Service) CreateDriver(ctx context.Context, cmd CreateDriverCommand) (*Driver, error) {
	if strings.TrimSpace(cmd.Name) == "" || strings.TrimSpace(cmd.LicenseNumber) == "" {
		return nil, ErrBadRequest
	}
	if strings.TrimSpace(cmd.LicenseClass) == "" || cmd.LicenseExpiry.IsZero() {
		return nil, ErrBadRequest
	}
	d := &Driver{
		ID:            types.NewID(),
		Name:          strings.TrimSpace(cmd.Name),
		Status:        DriverOffDuty,
		LicenseNumber: strings.TrimSpace(cmd.LicenseNumber),
		LicenseClass:  strings.ToUpper(strings.TrimSpace(cmd.LicenseClass)),
		LicenseExpiry: cmd.LicenseExpiry,
		SafetyScore:   100,
		CreatedAt:     time.Now(),
	}
	if err := s.store.CreateDriver(ctx, d); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, "driver", string(d.ID), "create", "", string(d.Status))
	return d, nil
}

func (s *Service) GetDriver(ctx context.Context, id types.ID) (*Driver, error) {
	return s.store.GetDriver(ctx, id)
}

func (s *Service) ListDrivers(ctx context.Context, limit, offset int) ([]*Driver, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.store.ListDrivers(ctx, limit, offset)
}

// SetDriverDuty toggles ON_DUTY/OFF_DUTY. Drivers cannot self-transition out of
// ON_TRIP or SUSPENDED.
func (s *Service) SetDriverDuty(ctx context.Context, id types.ID, onDuty bool) (*Driver, error) {
	d, err := s.store.GetDriver(ctx, id)
	if err != nil {
		return nil, err
	}
	from, to := DriverOffDuty, DriverOnDuty
	if !onDuty {
		from, to = DriverOnDuty, DriverOffDuty
	}
	if d.Status == to {
		return d, nil
	}
	if d.Status != from {
		return nil, ErrInvalidState
	}
	ok, err := s.store.SetDriverStatus(ctx, id, from, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidState
	}
	s.recordAudit(ctx, "driver", string(id), "duty_change", string(from), string(to))
	return s.store.GetDriver(ctx, id)
}

// SuspendDriver is the HR-side hold. Suspension cannot preempt an active trip.
func (s *Service) SuspendDriver(ctx context.Context, id types.ID) (*Driver, error) {
	d, err := s.store.GetDriver(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Status == DriverOnTrip || d.Status == DriverSuspended {
		return nil, ErrInvalidState
	}
	ok, err := s.store.SetDriverStatus(ctx, id, d.Status, DriverSuspended)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidState
	}
	s.recordAudit(ctx, "driver", string(id), "suspend", string(d.Status), string(DriverSuspended))
	return s.store.GetDriver(ctx, id)
}

func (s *Service) ReinstateDriver(ctx context.Context, id types.ID) (*Driver, error) {
	ok, err := s.store.SetDriverStatus(ctx, id, DriverSuspended, DriverOffDuty)
	if err != nil {
		return nil, err
	}
	if !ok {
		if _, gerr := s.store.GetDriver(ctx, id); gerr != nil {
			return nil, gerr
		}
		return nil, ErrInvalidState
	}
	s.recordAudit(ctx, "driver", string(id), "reinstate", string(DriverSuspended), string(DriverOffDuty))
	return s.store.GetDriver(ctx, id)
}

func (s *Service) UpdateDriverLicense(ctx context.Context, id types.ID, number, class string, expiry time.Time) (*Driver, error) {
	if strings.TrimSpace(number) == "" || strings.TrimSpace(class) == "" || expiry.IsZero() {
		return nil, ErrBadRequest
	}
	ok, err := s.store.UpdateDriverLicense(ctx, id, strings.TrimSpace(number), strings.ToUpper(strings.TrimSpace(class)), expiry)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	s.recordAudit(ctx, "driver", string(id), "license_update", "", "")
	return s.store.GetDriver(ctx, id)
}

func (s *Service) DeleteDriver(ctx context.Context, id types.ID) error {
	if _, err := s.store.GetDriver(ctx, id); err != nil {
		return err
	}
	ok, err := s.store.SoftDeleteDriver(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidState
	}
	s.recordAudit(ctx, "driver", string(id), "soft_delete", "", "")
	return nil
}

// RunLicenseSweep periodically logs drivers whose licenses lapse within the
// warning window. Notification delivery is a collaborator concern; the sweep
// only surfaces the facts.
func (s *Service) RunLicenseSweep(ctx context.Context, tick time.Duration, warnWindow time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			drivers, err := s.store.ExpiringLicenses(ctx, time.Now().Add(warnWindow))
			if err != nil {
				s.log.WithError(err).Warn("license sweep query failed")
				continue
			}
			for _, d := range drivers {
				s.log.WithFields(logrus.Fields{
					"driver_id":      d.ID,
					"license_expiry": d.LicenseExpiry,
				}).Warn("driver license expiring")
			}
		}
	}
}

func (s *Service) recordAudit(ctx context.Context, entityType, entityID, action, from, to string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, audit.Event{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		FromState:  from,
		ToState:    to,
	})
}
