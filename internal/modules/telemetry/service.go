// README: Telemetry service: ingest position updates, broadcast to subscribers,
// keep a snapshot trail. Unrelated to trip state; shares only the vehicle id.
package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"convoy/internal/types"
)

var ErrBadRequest = errors.New("bad request")

type Service struct {
	store *Store
	log   *logrus.Logger
}

func NewService(store *Store, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{store: store, log: log}
}

// Ingest records one position update. The GEO index and the snapshot row must
// land; the live broadcast is best-effort.
func (s *Service) Ingest(ctx context.Context, u Update) error {
	if u.VehicleID == "" {
		return ErrBadRequest
	}
	if u.Position.Lat < -90 || u.Position.Lat > 90 || u.Position.Lng < -180 || u.Position.Lng > 180 {
		return ErrBadRequest
	}

	if err := s.store.SetGeo(ctx, u.VehicleID, u.Position); err != nil {
		return err
	}
	if err := s.store.AppendSnapshot(ctx, Snapshot{
		VehicleID:  u.VehicleID,
		Position:   u.Position,
		SpeedKph:   u.SpeedKph,
		RecordedAt: time.Now(),
	}); err != nil {
		return err
	}
	if err := s.store.Publish(ctx, u); err != nil {
		s.log.WithError(err).WithField("vehicle_id", u.VehicleID).Warn("telemetry publish failed")
	}
	return nil
}

func (s *Service) Nearby(ctx context.Context, p types.Point, radiusKm float64) ([]NearbyVehicle, error) {
	if radiusKm <= 0 {
		return nil, ErrBadRequest
	}
	return s.store.Nearby(ctx, p, radiusKm)
}

func (s *Service) History(ctx context.Context, vehicleID types.ID, limit int) ([]Snapshot, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.store.ListSnapshots(ctx, vehicleID, limit)
}
