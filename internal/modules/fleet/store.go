// README: Fleet store backed by PostgreSQL; status changes are conditional updates.
package fleet

import (
	"context"
	"errors"
	"time"

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

const vehicleColumns = `
	id, plate, make, model, year, category, status, odometer_km,
	capacity_weight_kg, capacity_volume_m3, deleted_at, created_at, updated_at`

func (s *Store) CreateVehicle(ctx context.Context, v *Vehicle) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO vehicles (
			id, plate, make, model, year, category, status, odometer_km,
			capacity_weight_kg, capacity_volume_m3, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)`,
		string(v.ID), v.Plate, v.Make, v.Model, v.Year, v.Category,
		string(v.Status), v.OdometerKm, v.CapacityWeightKg, v.CapacityVolumeM3, v.CreatedAt,
	)
	return err
}

func (s *Store) GetVehicle(ctx context.Context, id types.ID) (*Vehicle, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+vehicleColumns+`
		FROM vehicles
		WHERE id = $1 AND deleted_at IS NULL`, string(id),
	)
	return scanVehicle(row)
}

func (s *Store) ListVehicles(ctx context.Context, limit, offset int) ([]*Vehicle, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+vehicleColumns+`
		FROM vehicles
		WHERE deleted_at IS NULL
		ORDER BY created_at
		LIMIT $1 OFFSET $2`, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// SetVehicleStatus moves a vehicle from one status to another. Returns false when
// the vehicle was not in the expected status (or is deleted).
func (s *Store) SetVehicleStatus(ctx context.Context, id types.ID, from, to VehicleStatus) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE vehicles
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3 AND deleted_at IS NULL`,
		string(to), string(id), string(from),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// SoftDeleteVehicle flags a vehicle as deleted. Deletion is blocked while the
// vehicle is on an active trip.
func (s *Store) SoftDeleteVehicle(ctx context.Context, id types.ID) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE vehicles
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL AND status <> 'ON_TRIP'`,
		string(id),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// RetireVehicle marks a vehicle RETIRED. RETIRED is terminal and cannot preempt
// an active trip or an open shop visit.
func (s *Store) RetireVehicle(ctx context.Context, id types.ID) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE vehicles
		SET status = 'RETIRED', updated_at = NOW()
		WHERE id = $1 AND status = 'AVAILABLE' AND deleted_at IS NULL`,
		string(id),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

const driverColumns = `
	id, name, status, license_number, license_class, license_expiry,
	incident_count, safety_score, deleted_at, created_at, updated_at`

func (s *Store) CreateDriver(ctx context.Context, d *Driver) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO drivers (
			id, name, status, license_number, license_class, license_expiry,
			incident_count, safety_score, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`,
		string(d.ID), d.Name, string(d.Status), d.LicenseNumber, d.LicenseClass,
		d.LicenseExpiry, d.IncidentCount, d.SafetyScore, d.CreatedAt,
	)
	return err
}

func (s *Store) GetDriver(ctx context.Context, id types.ID) (*Driver, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+driverColumns+`
		FROM drivers
		WHERE id = $1 AND deleted_at IS NULL`, string(id),
	)
	return scanDriver(row)
}

func (s *Store) ListDrivers(ctx context.Context, limit, offset int) ([]*Driver, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+driverColumns+`
		FROM drivers
		WHERE deleted_at IS NULL
		ORDER BY created_at
		LIMIT $1 OFFSET $2`, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// SetDriverStatus moves a driver from one status to another (CAS on status).
func (s *Store) SetDriverStatus(ctx context.Context, id types.ID, from, to DriverStatus) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE drivers
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3 AND deleted_at IS NULL`,
		string(to), string(id), string(from),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) UpdateDriverLicense(ctx context.Context, id types.ID, number, class string, expiry time.Time) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE drivers
		SET license_number = $1, license_class = $2, license_expiry = $3, updated_at = NOW()
		WHERE id = $4 AND deleted_at IS NULL`,
		number, class, expiry, string(id),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) SoftDeleteDriver(ctx context.Context, id types.ID) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE drivers
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL AND status <> 'ON_TRIP'`,
		string(id),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ExpiringLicenses lists active drivers whose licenses lapse before the cutoff.
func (s *Store) ExpiringLicenses(ctx context.Context, cutoff time.Time) ([]*Driver, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+driverColumns+`
		FROM drivers
		WHERE deleted_at IS NULL AND status <> 'SUSPENDED' AND license_expiry < $1
		ORDER BY license_expiry`, cutoff,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanVehicle(row pgx.Row) (*Vehicle, error) {
	var v Vehicle
	err := row.Scan(
		&v.ID, &v.Plate, &v.Make, &v.Model, &v.Year, &v.Category, &v.Status,
		&v.OdometerKm, &v.CapacityWeightKg, &v.CapacityVolumeM3,
		&v.DeletedAt, &v.CreatedAt, &v.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func scanDriver(row pgx.Row) (*Driver, error) {
	var d Driver
	err := row.Scan(
		&d.ID, &d.Name, &d.Status, &d.LicenseNumber, &d.LicenseClass, &d.LicenseExpiry,
		&d.IncidentCount, &d.SafetyScore, &d.DeletedAt, &d.CreatedAt, &d.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}
