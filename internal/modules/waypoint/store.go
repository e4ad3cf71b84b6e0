// README: Waypoint store backed by PostgreSQL. Sequence uniqueness rides on the
// (trip_id, seq) constraint; arrival/departure ordering is enforced with
// conditional updates.
package waypoint

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"convoy/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const waypointColumns = `
	id, trip_id, seq, label, lat, lng, scheduled_at, arrived_at, departed_at`

// Add inserts a waypoint, holding the trip row so a concurrent transition
// cannot close the trip mid-insert.
func (s *Store) Add(ctx context.Context, w *Waypoint) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		var status string
		err := tx.QueryRow(ctx, `
			SELECT status FROM trips WHERE id = $1 FOR SHARE`, string(w.TripID),
		).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if status == "COMPLETED" || status == "CANCELLED" {
			return ErrTripClosed
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO waypoints (trip_id, seq, label, lat, lng, scheduled_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			string(w.TripID), w.Seq, w.Label, w.Position.Lat, w.Position.Lng, w.ScheduledAt,
		).Scan(&w.ID)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrWaypointConflict
		}
		return err
	})
}

func (s *Store) Get(ctx context.Context, tripID types.ID, seq int) (*Waypoint, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+waypointColumns+`
		FROM waypoints
		WHERE trip_id = $1 AND seq = $2`, string(tripID), seq,
	)
	return scanWaypoint(row)
}

func (s *Store) ListByTrip(ctx context.Context, tripID types.ID) ([]*Waypoint, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+waypointColumns+`
		FROM waypoints
		WHERE trip_id = $1
		ORDER BY seq`, string(tripID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Waypoint
	for rows.Next() {
		w, err := scanWaypoint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// MarkArrived stamps arrival once.
func (s *Store) MarkArrived(ctx context.Context, tripID types.ID, seq int) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE waypoints
		SET arrived_at = NOW()
		WHERE trip_id = $1 AND seq = $2 AND arrived_at IS NULL`,
		string(tripID), seq,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// MarkDeparted stamps departure once, and only after arrival.
func (s *Store) MarkDeparted(ctx context.Context, tripID types.ID, seq int) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE waypoints
		SET departed_at = NOW()
		WHERE trip_id = $1 AND seq = $2 AND arrived_at IS NOT NULL AND departed_at IS NULL`,
		string(tripID), seq,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func scanWaypoint(row pgx.Row) (*Waypoint, error) {
	var w Waypoint
	err := row.Scan(
		&w.ID, &w.TripID, &w.Seq, &w.Label, &w.Position.Lat, &w.Position.Lng,
		&w.ScheduledAt, &w.ArrivedAt, &w.DepartedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}
