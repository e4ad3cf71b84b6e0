// README: Safety service re-derives and persists a driver's score on demand.
package safety

import (
	"context"
	"errors"

	"convoy/internal/types"
)

var ErrNotFound = errors.New("driver not found")

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

// Recalculate reads the driver's trip history, computes the score, persists it,
// and returns the new value. Called after every terminal transition and
// available on demand.
func (s *Service) Recalculate(ctx context.Context, driverID types.ID) (float64, error) {
	st, err := s.store.StatsForDriver(ctx, driverID)
	if err != nil {
		return 0, err
	}
	score := Compute(st)
	if err := s.store.UpdateScore(ctx, driverID, score); err != nil {
		return 0, err
	}
	return score, nil
}
