// README: Ledger store: append-only fuel/expense rows plus read-only sums.
package ledger

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

func (s *Store) InsertFuelLog(ctx context.Context, f *FuelLog) error {
	return s.db.QueryRow(ctx, `
		INSERT INTO fuel_logs (vehicle_id, trip_id, liters, price_per_liter_cents, total_cost_cents, odometer_km, filled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		string(f.VehicleID), idPtr(f.TripID), f.Liters, f.PricePerLiterCents,
		f.TotalCost.Amount, f.OdometerKm, f.FilledAt,
	).Scan(&f.ID)
}

func (s *Store) InsertExpense(ctx context.Context, e *Expense) error {
	return s.db.QueryRow(ctx, `
		INSERT INTO expenses (vehicle_id, trip_id, category, description, amount_cents, incurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		string(e.VehicleID), idPtr(e.TripID), e.Category, e.Description,
		e.Amount.Amount, e.IncurredAt,
	).Scan(&e.ID)
}

// TripFinancials returns the trip's revenue and its summed fuel/expense costs.
func (s *Store) TripFinancials(ctx context.Context, tripID types.ID) (revenue, fuel, expense types.Money, err error) {
	var currency string
	err = s.db.QueryRow(ctx, `
		SELECT revenue_cents, currency FROM trips WHERE id = $1`, string(tripID),
	).Scan(&revenue.Amount, &currency)
	if errors.Is(err, pgx.ErrNoRows) {
		err = ErrNotFound
		return
	}
	if err != nil {
		return
	}
	revenue.Currency = currency
	fuel.Currency = currency
	expense.Currency = currency

	err = s.db.QueryRow(ctx, `
		SELECT
			COALESCE((SELECT SUM(total_cost_cents) FROM fuel_logs WHERE trip_id = $1), 0),
			COALESCE((SELECT SUM(amount_cents) FROM expenses WHERE trip_id = $1), 0)`,
		string(tripID),
	).Scan(&fuel.Amount, &expense.Amount)
	return
}

// VehicleFinancials sums revenue over the vehicle's completed trips and costs
// over every row tied to the vehicle.
func (s *Store) VehicleFinancials(ctx context.Context, vehicleID types.ID) (revenue, fuel, expense types.Money, err error) {
	var exists bool
	err = s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM vehicles WHERE id = $1 AND deleted_at IS NULL)`,
		string(vehicleID),
	).Scan(&exists)
	if err != nil {
		return
	}
	if !exists {
		err = ErrNotFound
		return
	}

	revenue.Currency, fuel.Currency, expense.Currency = "USD", "USD", "USD"
	err = s.db.QueryRow(ctx, `
		SELECT
			COALESCE((SELECT SUM(revenue_cents) FROM trips WHERE vehicle_id = $1 AND status = 'COMPLETED'), 0),
			COALESCE((SELECT SUM(total_cost_cents) FROM fuel_logs WHERE vehicle_id = $1), 0),
			COALESCE((SELECT SUM(amount_cents) FROM expenses WHERE vehicle_id = $1), 0)`,
		string(vehicleID),
	).Scan(&revenue.Amount, &fuel.Amount, &expense.Amount)
	return
}

func (s *Store) ListFuelLogsByVehicle(ctx context.Context, vehicleID types.ID, limit, offset int) ([]*FuelLog, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, vehicle_id, trip_id, liters, price_per_liter_cents, total_cost_cents, odometer_km, filled_at
		FROM fuel_logs
		WHERE vehicle_id = $1
		ORDER BY filled_at DESC
		LIMIT $2 OFFSET $3`, string(vehicleID), limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*FuelLog
	for rows.Next() {
		var f FuelLog
		var tripID *string
		if err := rows.Scan(&f.ID, &f.VehicleID, &tripID, &f.Liters,
			&f.PricePerLiterCents, &f.TotalCost.Amount, &f.OdometerKm, &f.FilledAt); err != nil {
			return nil, err
		}
		f.TotalCost.Currency = "USD"
		if tripID != nil {
			id := types.ID(*tripID)
			f.TripID = &id
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}

func (s *Store) ListExpensesByVehicle(ctx context.Context, vehicleID types.ID, limit, offset int) ([]*Expense, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, vehicle_id, trip_id, category, description, amount_cents, incurred_at
		FROM expenses
		WHERE vehicle_id = $1
		ORDER BY incurred_at DESC
		LIMIT $2 OFFSET $3`, string(vehicleID), limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Expense
	for rows.Next() {
		var e Expense
		var tripID *string
		if err := rows.Scan(&e.ID, &e.VehicleID, &tripID, &e.Category,
			&e.Description, &e.Amount.Amount, &e.IncurredAt); err != nil {
			return nil, err
		}
		e.Amount.Currency = "USD"
		if tripID != nil {
			id := types.ID(*tripID)
			e.TripID = &id
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func idPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
