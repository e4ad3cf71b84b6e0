// README: Safety store reads trip-history counts and persists driver scores.
package safety

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"convoy/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// StatsForDriver aggregates the driver's terminal trips and incident count.
func (s *Store) StatsForDriver(ctx context.Context, driverID types.ID) (Stats, error) {
	var st Stats
	err := s.db.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status IN ('COMPLETED','CANCELLED')),
			COUNT(*) FILTER (WHERE status = 'COMPLETED'),
			COUNT(rating) FILTER (WHERE status = 'COMPLETED'),
			COALESCE(SUM(rating) FILTER (WHERE status = 'COMPLETED'), 0)::float8
		FROM trips
		WHERE driver_id = $1`, string(driverID),
	).Scan(&st.TotalTrips, &st.CompletedTrips, &st.RatedTrips, &st.RatingSum)
	if err != nil {
		return Stats{}, err
	}

	err = s.db.QueryRow(ctx, `
		SELECT incident_count FROM drivers WHERE id = $1 AND deleted_at IS NULL`,
		string(driverID),
	).Scan(&st.IncidentCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return Stats{}, ErrNotFound
	}
	if err != nil {
		return Stats{}, err
	}
	return st, nil
}

func (s *Store) UpdateScore(ctx context.Context, driverID types.ID, score float64) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE drivers
		SET safety_score = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`,
		string(driverID), score,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return ErrNotFound
	}
	return nil
}
