// README: Maintenance lock/release tests (DB-backed; skip without CONVOY_TEST_DSN).
package maintenance

import (
	"context"
	"errors"
	"testing"

	"convoy/internal/modules/fleet"
	"convoy/internal/testutil"
	"convoy/internal/types"
)

func setupMaintenance(t *testing.T) (*Service, *fleet.Service) {
	t.Helper()
	pool := testutil.NewTestPool(t)
	return NewService(NewStore(pool), nil), fleet.NewService(fleet.NewStore(pool), nil, nil)
}

func mustShopVehicle(t *testing.T, fleetSvc *fleet.Service, plate string) *fleet.Vehicle {
	t.Helper()
	v, err := fleetSvc.CreateVehicle(context.Background(), fleet.CreateVehicleCommand{
		Plate:      plate,
		Category:   "van",
		OdometerKm: 42000,
	})
	if err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	return v
}

func TestMaintenanceOpenLocksVehicle(t *testing.T) {
	svc, fleetSvc := setupMaintenance(t)
	ctx := context.Background()

	v := mustShopVehicle(t, fleetSvc, "SHOP-001")

	r, err := svc.Open(ctx, OpenCommand{
		VehicleID:   v.ID,
		ServiceType: "Brake Inspection",
		CostCents:   15000,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if r.Status != StatusOpen {
		t.Fatalf("expected OPEN record, got %s", r.Status)
	}
	if r.ServiceType != "brake inspection" {
		t.Fatalf("expected normalized service type, got %q", r.ServiceType)
	}

	v2, err := fleetSvc.GetVehicle(ctx, v.ID)
	if err != nil {
		t.Fatalf("get vehicle: %v", err)
	}
	if v2.Status != fleet.VehicleInShop {
		t.Fatalf("expected vehicle IN_SHOP, got %s", v2.Status)
	}
}

func TestMaintenanceCloseReleasesVehicle(t *testing.T) {
	svc, fleetSvc := setupMaintenance(t)
	ctx := context.Background()

	v := mustShopVehicle(t, fleetSvc, "SHOP-002")
	r, err := svc.Open(ctx, OpenCommand{VehicleID: v.ID, ServiceType: "oil change", CostCents: 8000})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	finalCost := int64(9500)
	closed, err := svc.Close(ctx, r.ID, &finalCost)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Status != StatusClosed {
		t.Fatalf("expected CLOSED, got %s", closed.Status)
	}
	if closed.ClosedAt == nil {
		t.Fatal("expected closed_at to be set")
	}
	if closed.Cost.Amount != finalCost {
		t.Fatalf("expected final cost %d, got %d", finalCost, closed.Cost.Amount)
	}

	v2, _ := fleetSvc.GetVehicle(ctx, v.ID)
	if v2.Status != fleet.VehicleAvailable {
		t.Fatalf("expected vehicle AVAILABLE after close, got %s", v2.Status)
	}

	// closing again is a no-op, not an error
	if _, err := svc.Close(ctx, r.ID, nil); err != nil {
		t.Fatalf("idempotent close: %v", err)
	}
}

func TestMaintenanceRetiredVehicleRejected(t *testing.T) {
	svc, fleetSvc := setupMaintenance(t)
	ctx := context.Background()

	v := mustShopVehicle(t, fleetSvc, "SHOP-003")
	if _, err := fleetSvc.RetireVehicle(ctx, v.ID); err != nil {
		t.Fatalf("retire: %v", err)
	}

	_, err := svc.Open(ctx, OpenCommand{VehicleID: v.ID, ServiceType: "inspection"})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for retired vehicle, got %v", err)
	}
}

func TestMaintenanceUnknowns(t *testing.T) {
	svc, _ := setupMaintenance(t)
	ctx := context.Background()

	if _, err := svc.Open(ctx, OpenCommand{VehicleID: types.NewID(), ServiceType: "inspection"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("open unknown vehicle: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Close(ctx, types.NewID(), nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("close unknown record: expected ErrNotFound, got %v", err)
	}
}

func TestMaintenanceListByVehicle(t *testing.T) {
	svc, fleetSvc := setupMaintenance(t)
	ctx := context.Background()

	v := mustShopVehicle(t, fleetSvc, "SHOP-004")
	r, err := svc.Open(ctx, OpenCommand{VehicleID: v.ID, ServiceType: "tires"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := svc.Close(ctx, r.ID, nil); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := svc.Open(ctx, OpenCommand{VehicleID: v.ID, ServiceType: "engine"}); err != nil {
		t.Fatalf("second open: %v", err)
	}

	records, err := svc.ListByVehicle(ctx, v.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
}
