// README: Ledger aggregation tests (DB-backed; skip without CONVOY_TEST_DSN).
package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"convoy/internal/modules/fleet"
	"convoy/internal/modules/trip"
	"convoy/internal/testutil"
	"convoy/internal/types"
)

type ledgerFixture struct {
	ledger  *Service
	trips   *trip.Service
	fleet   *fleet.Service
	vehicle *fleet.Vehicle
	driver  *fleet.Driver
}

func setupLedger(t *testing.T) ledgerFixture {
	t.Helper()
	pool := testutil.NewTestPool(t)
	ctx := context.Background()

	fleetStore := fleet.NewStore(pool)
	fleetSvc := fleet.NewService(fleetStore, nil, nil)
	tripSvc := trip.NewService(trip.NewStore(pool), fleetStore, nil, nil, nil, nil)

	v, err := fleetSvc.CreateVehicle(ctx, fleet.CreateVehicleCommand{
		Plate:      "LGR-001",
		Category:   "box_truck",
		OdometerKm: 80000,
	})
	if err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	d, err := fleetSvc.CreateDriver(ctx, fleet.CreateDriverCommand{
		Name:          "ledger_driver",
		LicenseNumber: "LIC-LGR",
		LicenseClass:  "CE",
		LicenseExpiry: time.Now().Add(365 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create driver: %v", err)
	}
	if _, err := fleetSvc.SetDriverDuty(ctx, d.ID, true); err != nil {
		t.Fatalf("set duty: %v", err)
	}

	return ledgerFixture{
		ledger:  NewService(NewStore(pool), nil),
		trips:   tripSvc,
		fleet:   fleetSvc,
		vehicle: v,
		driver:  d,
	}
}

func (f ledgerFixture) mustCompletedTrip(t *testing.T, revenueCents int64) *trip.Trip {
	t.Helper()
	ctx := context.Background()
	tr, err := f.trips.Create(ctx, trip.CreateCommand{
		VehicleID:           f.vehicle.ID,
		DriverID:            f.driver.ID,
		Origin:              "Lyon",
		Destination:         "Milan",
		DistanceEstimatedKm: 450,
		Revenue:             types.Money{Amount: revenueCents, Currency: "USD"},
	})
	if err != nil {
		t.Fatalf("create trip: %v", err)
	}
	if _, err := f.trips.Dispatch(ctx, trip.DispatchCommand{TripID: tr.ID}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if _, err := f.trips.Complete(ctx, trip.CompleteCommand{TripID: tr.ID, DistanceActualKm: 455}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	return tr
}

func TestFuelLogTotalCost(t *testing.T) {
	f := setupLedger(t)

	log, err := f.ledger.AddFuelLog(context.Background(), AddFuelCommand{
		VehicleID:          f.vehicle.ID,
		Liters:             120.5,
		PricePerLiterCents: 189,
	})
	if err != nil {
		t.Fatalf("add fuel: %v", err)
	}
	// 120.5 * 189 = 22774.5, rounded to nearest cent
	if log.TotalCost.Amount != 22775 {
		t.Fatalf("expected total cost 22775, got %d", log.TotalCost.Amount)
	}
	if log.ID == 0 {
		t.Fatal("expected row id to be assigned")
	}
}

func TestTripSummary(t *testing.T) {
	f := setupLedger(t)
	ctx := context.Background()

	tr := f.mustCompletedTrip(t, 250000)
	tripID := tr.ID

	if _, err := f.ledger.AddFuelLog(ctx, AddFuelCommand{
		VehicleID:          f.vehicle.ID,
		TripID:             &tripID,
		Liters:             200,
		PricePerLiterCents: 150, // 30000 total
	}); err != nil {
		t.Fatalf("add fuel: %v", err)
	}
	if _, err := f.ledger.AddExpense(ctx, AddExpenseCommand{
		VehicleID:   f.vehicle.ID,
		TripID:      &tripID,
		Category:    "tolls",
		AmountCents: 20000,
	}); err != nil {
		t.Fatalf("add expense: %v", err)
	}

	sum, err := f.ledger.TripSummary(ctx, tripID)
	if err != nil {
		t.Fatalf("trip summary: %v", err)
	}
	if sum.Revenue.Amount != 250000 {
		t.Fatalf("expected revenue 250000, got %d", sum.Revenue.Amount)
	}
	if sum.TotalCost.Amount != 50000 {
		t.Fatalf("expected total cost 50000, got %d", sum.TotalCost.Amount)
	}
	if sum.Profit.Amount != 200000 {
		t.Fatalf("expected profit 200000, got %d", sum.Profit.Amount)
	}
	if sum.ROI == nil || *sum.ROI != 400 {
		t.Fatalf("expected ROI 400%%, got %v", sum.ROI)
	}
}

func TestTripSummaryNoCosts(t *testing.T) {
	f := setupLedger(t)

	tr := f.mustCompletedTrip(t, 100000)
	sum, err := f.ledger.TripSummary(context.Background(), tr.ID)
	if err != nil {
		t.Fatalf("trip summary: %v", err)
	}
	if sum.ROI != nil {
		t.Fatalf("expected ROI undefined without costs, got %v", *sum.ROI)
	}
}

func TestVehicleSummaryCountsCompletedRevenueOnly(t *testing.T) {
	f := setupLedger(t)
	ctx := context.Background()

	f.mustCompletedTrip(t, 100000)

	// a draft trip's revenue must not count
	if _, err := f.trips.Create(ctx, trip.CreateCommand{
		VehicleID:           f.vehicle.ID,
		DriverID:            f.driver.ID,
		Origin:              "Lyon",
		Destination:         "Milan",
		DistanceEstimatedKm: 450,
		Revenue:             types.Money{Amount: 999999, Currency: "USD"},
	}); err != nil {
		t.Fatalf("create draft: %v", err)
	}

	if _, err := f.ledger.AddExpense(ctx, AddExpenseCommand{
		VehicleID:   f.vehicle.ID,
		Category:    "parking",
		AmountCents: 5000,
	}); err != nil {
		t.Fatalf("add expense: %v", err)
	}

	sum, err := f.ledger.VehicleSummary(ctx, f.vehicle.ID)
	if err != nil {
		t.Fatalf("vehicle summary: %v", err)
	}
	if sum.Revenue.Amount != 100000 {
		t.Fatalf("expected revenue 100000 from completed trips only, got %d", sum.Revenue.Amount)
	}
	if sum.ExpenseCost.Amount != 5000 {
		t.Fatalf("expected expense cost 5000, got %d", sum.ExpenseCost.Amount)
	}
}

func TestLedgerUnknownEntities(t *testing.T) {
	f := setupLedger(t)
	ctx := context.Background()

	if _, err := f.ledger.TripSummary(ctx, types.NewID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown trip: expected ErrNotFound, got %v", err)
	}
	if _, err := f.ledger.VehicleSummary(ctx, types.NewID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown vehicle: expected ErrNotFound, got %v", err)
	}
}

func TestLedgerValidation(t *testing.T) {
	f := setupLedger(t)
	ctx := context.Background()

	if _, err := f.ledger.AddFuelLog(ctx, AddFuelCommand{VehicleID: f.vehicle.ID, Liters: 0, PricePerLiterCents: 100}); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("zero liters: expected ErrBadRequest, got %v", err)
	}
	if _, err := f.ledger.AddExpense(ctx, AddExpenseCommand{VehicleID: f.vehicle.ID, Category: "tolls", AmountCents: 0}); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("zero amount: expected ErrBadRequest, got %v", err)
	}
	if _, err := f.ledger.AddExpense(ctx, AddExpenseCommand{VehicleID: f.vehicle.ID, Category: "  ", AmountCents: 100}); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("blank category: expected ErrBadRequest, got %v", err)
	}
}
