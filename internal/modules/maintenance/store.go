// README: Maintenance store. Opening/closing a record and the vehicle status
// change are one transaction, mirroring the trip coordinator's locking.
package maintenance

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

// Open inserts a record and pulls the vehicle into the shop. Maintenance cannot
// preempt an active dispatch, and retired vehicles take no service.
func (s *Store) Open(ctx context.Context, r *Record) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		var status string
		err := tx.QueryRow(ctx, `
			SELECT status FROM vehicles
			WHERE id = $1 AND deleted_at IS NULL
			FOR UPDATE`, string(r.VehicleID),
		).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if status == "ON_TRIP" || status == "RETIRED" {
			return ErrInvalidState
		}
		if status == "AVAILABLE" {
			if _, err := tx.Exec(ctx, `
				UPDATE vehicles SET status = 'IN_SHOP', updated_at = NOW()
				WHERE id = $1`, string(r.VehicleID),
			); err != nil {
				return err
			}
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO maintenance_records (id, vehicle_id, service_type, description, cost_cents, status, opened_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			string(r.ID), string(r.VehicleID), r.ServiceType, r.Description,
			r.Cost.Amount, string(r.Status), r.OpenedAt,
		)
		return err
	})
}

// Close marks the record CLOSED and releases the vehicle back to AVAILABLE.
// Idempotent when the vehicle is already AVAILABLE; any other vehicle status
// is an InvalidState.
func (s *Store) Close(ctx context.Context, recordID types.ID, costCents *int64) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		var recStatus, vehicleID string
		err := tx.QueryRow(ctx, `
			SELECT status, vehicle_id FROM maintenance_records
			WHERE id = $1
			FOR UPDATE`, string(recordID),
		).Scan(&recStatus, &vehicleID)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var vehicleStatus string
		err = tx.QueryRow(ctx, `
			SELECT status FROM vehicles WHERE id = $1 FOR UPDATE`, vehicleID,
		).Scan(&vehicleStatus)
		if err != nil {
			return err
		}
		switch vehicleStatus {
		case "IN_SHOP":
			if _, err := tx.Exec(ctx, `
				UPDATE vehicles SET status = 'AVAILABLE', updated_at = NOW()
				WHERE id = $1`, vehicleID,
			); err != nil {
				return err
			}
		case "AVAILABLE":
			// already released; closing is idempotent
		default:
			return ErrInvalidState
		}

		if recStatus == string(StatusClosed) {
			return nil
		}
		_, err = tx.Exec(ctx, `
			UPDATE maintenance_records
			SET status = 'CLOSED', closed_at = NOW(),
			    cost_cents = COALESCE($2, cost_cents)
			WHERE id = $1`, string(recordID), costCents,
		)
		return err
	})
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Record, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, vehicle_id, service_type, description, cost_cents, status, opened_at, closed_at
		FROM maintenance_records
		WHERE id = $1`, string(id),
	)
	return scanRecord(row)
}

func (s *Store) ListByVehicle(ctx context.Context, vehicleID types.ID) ([]*Record, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, vehicle_id, service_type, description, cost_cents, status, opened_at, closed_at
		FROM maintenance_records
		WHERE vehicle_id = $1
		ORDER BY opened_at DESC`, string(vehicleID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanRecord(row pgx.Row) (*Record, error) {
	var r Record
	err := row.Scan(&r.ID, &r.VehicleID, &r.ServiceType, &r.Description,
		&r.Cost.Amount, &r.Status, &r.OpenedAt, &r.ClosedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	r.Cost.Currency = "USD"
	return &r, nil
}
