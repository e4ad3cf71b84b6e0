// README: Trip store backed by PostgreSQL. Transitions that touch vehicle and
// driver rows run as one transaction with conditional updates, so a concurrent
// loser observes the already-updated row and fails cleanly.
package trip

import (
	"context"
	"errors"
	"fmt"

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

const tripColumns = `
	id, vehicle_id, driver_id, origin, destination,
	distance_estimated_km, distance_actual_km, cargo_weight_kg, cargo_description,
	revenue_cents, currency, client_name, invoice_ref, status,
	odometer_start_km, odometer_end_km,
	dispatched_at, completed_at, cancelled_at, cancel_reason, rating,
	created_at, updated_at`

func (s *Store) Create(ctx context.Context, t *Trip) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO trips (
			id, vehicle_id, driver_id, origin, destination,
			distance_estimated_km, cargo_weight_kg, cargo_description,
			revenue_cents, currency, client_name, invoice_ref, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)`,
		string(t.ID), string(t.VehicleID), string(t.DriverID), t.Origin, t.Destination,
		t.DistanceEstimatedKm, t.CargoWeightKg, t.CargoDescription,
		t.Revenue.Amount, t.Revenue.Currency, t.ClientName, t.InvoiceRef,
		string(t.Status), t.CreatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Trip, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+tripColumns+`
		FROM trips
		WHERE id = $1`, string(id),
	)
	return scanTrip(row)
}

func (s *Store) List(ctx context.Context, limit, offset int) ([]*Trip, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+tripColumns+`
		FROM trips
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// DraftFields carries the attributes editable while a trip is still DRAFT.
// Nil fields are left unchanged.
type DraftFields struct {
	Origin              *string
	Destination         *string
	DistanceEstimatedKm *float64
	CargoWeightKg       *float64
	CargoDescription    *string
	RevenueCents        *int64
	ClientName          *string
	InvoiceRef          *string
}

// UpdateDraft applies edits guarded on status = DRAFT. Returns false when the
// trip has already left DRAFT (or does not exist).
func (s *Store) UpdateDraft(ctx context.Context, id types.ID, f DraftFields) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE trips
		SET origin                = COALESCE($2, origin),
		    destination           = COALESCE($3, destination),
		    distance_estimated_km = COALESCE($4, distance_estimated_km),
		    cargo_weight_kg       = COALESCE($5, cargo_weight_kg),
		    cargo_description     = COALESCE($6, cargo_description),
		    revenue_cents         = COALESCE($7, revenue_cents),
		    client_name           = COALESCE($8, client_name),
		    invoice_ref           = COALESCE($9, invoice_ref),
		    updated_at            = NOW()
		WHERE id = $1 AND status = 'DRAFT'`,
		string(id),
		f.Origin, f.Destination, f.DistanceEstimatedKm, f.CargoWeightKg,
		f.CargoDescription, f.RevenueCents, f.ClientName, f.InvoiceRef,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Dispatch moves trip DRAFT→DISPATCHED and locks the vehicle and driver, all in
// one transaction. Each row change is a conditional update; zero rows affected
// means another request got there first.
func (s *Store) Dispatch(ctx context.Context, tripID, vehicleID, driverID types.ID, odometerStartKm *float64) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE vehicles
			SET status = 'ON_TRIP', updated_at = NOW()
			WHERE id = $1 AND status = 'AVAILABLE' AND deleted_at IS NULL`,
			string(vehicleID),
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() != 1 {
			return ErrResourceUnavailable
		}

		tag, err = tx.Exec(ctx, `
			UPDATE drivers
			SET status = 'ON_TRIP', updated_at = NOW()
			WHERE id = $1 AND status = 'ON_DUTY' AND deleted_at IS NULL`,
			string(driverID),
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() != 1 {
			return ErrResourceUnavailable
		}

		tag, err = tx.Exec(ctx, `
			UPDATE trips
			SET status = 'DISPATCHED',
			    dispatched_at = NOW(),
			    odometer_start_km = COALESCE($2, (SELECT odometer_km FROM vehicles WHERE id = $3)),
			    updated_at = NOW()
			WHERE id = $1 AND status = 'DRAFT'`,
			string(tripID), odometerStartKm, string(vehicleID),
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() != 1 {
			return ErrInvalidTransition
		}
		return nil
	})
}

// Complete moves trip DISPATCHED→COMPLETED and releases both resources in the
// same transaction. A supplied end odometer reading advances the vehicle's
// odometer; readings never move backwards.
func (s *Store) Complete(ctx context.Context, tripID, vehicleID, driverID types.ID, distanceActualKm float64, odometerEndKm *float64) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE trips
			SET status = 'COMPLETED',
			    completed_at = NOW(),
			    distance_actual_km = $2,
			    odometer_end_km = $3,
			    updated_at = NOW()
			WHERE id = $1 AND status = 'DISPATCHED'`,
			string(tripID), distanceActualKm, odometerEndKm,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() != 1 {
			return ErrInvalidTransition
		}

		tag, err = tx.Exec(ctx, `
			UPDATE vehicles
			SET status = 'AVAILABLE',
			    odometer_km = GREATEST(odometer_km, COALESCE($2, odometer_km)),
			    updated_at = NOW()
			WHERE id = $1 AND status = 'ON_TRIP'`,
			string(vehicleID), odometerEndKm,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() != 1 {
			return fmt.Errorf("release vehicle %s: not on trip", vehicleID)
		}

		tag, err = tx.Exec(ctx, `
			UPDATE drivers
			SET status = 'ON_DUTY', updated_at = NOW()
			WHERE id = $1 AND status = 'ON_TRIP'`,
			string(driverID),
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() != 1 {
			return fmt.Errorf("release driver %s: not on trip", driverID)
		}
		return nil
	})
}

// Cancel moves trip {DRAFT,DISPATCHED}→CANCELLED. Resources are released only
// when the trip held them (was DISPATCHED). Returns the status the trip was in.
func (s *Store) Cancel(ctx context.Context, tripID types.ID, reason string) (Status, error) {
	var prev Status
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		var vehicleID, driverID string
		err := tx.QueryRow(ctx, `
			SELECT status, vehicle_id, driver_id
			FROM trips
			WHERE id = $1
			FOR UPDATE`, string(tripID),
		).Scan(&prev, &vehicleID, &driverID)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if !CanTransition(prev, StatusCancelled) {
			return ErrInvalidTransition
		}

		if _, err := tx.Exec(ctx, `
			UPDATE trips
			SET status = 'CANCELLED', cancelled_at = NOW(), cancel_reason = $2, updated_at = NOW()
			WHERE id = $1`,
			string(tripID), reason,
		); err != nil {
			return err
		}

		if prev != StatusDispatched {
			return nil
		}
		tag, err := tx.Exec(ctx, `
			UPDATE vehicles
			SET status = 'AVAILABLE', updated_at = NOW()
			WHERE id = $1 AND status = 'ON_TRIP'`, vehicleID,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() != 1 {
			return fmt.Errorf("release vehicle %s: not on trip", vehicleID)
		}
		tag, err = tx.Exec(ctx, `
			UPDATE drivers
			SET status = 'ON_DUTY', updated_at = NOW()
			WHERE id = $1 AND status = 'ON_TRIP'`, driverID,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() != 1 {
			return fmt.Errorf("release driver %s: not on trip", driverID)
		}
		return nil
	})
	return prev, err
}

// SetRating records a post-completion rating exactly once.
func (s *Store) SetRating(ctx context.Context, id types.ID, rating int) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE trips
		SET rating = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'COMPLETED' AND rating IS NULL`,
		string(id), rating,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func scanTrip(row pgx.Row) (*Trip, error) {
	var t Trip
	err := row.Scan(
		&t.ID, &t.VehicleID, &t.DriverID, &t.Origin, &t.Destination,
		&t.DistanceEstimatedKm, &t.DistanceActualKm, &t.CargoWeightKg, &t.CargoDescription,
		&t.Revenue.Amount, &t.Revenue.Currency, &t.ClientName, &t.InvoiceRef, &t.Status,
		&t.OdometerStartKm, &t.OdometerEndKm,
		&t.DispatchedAt, &t.CompletedAt, &t.CancelledAt, &t.CancelReason, &t.Rating,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
