// README: Fleet registry tests (DB-backed; skip without CONVOY_TEST_DSN).
package fleet

import (
	"context"
	"errors"
	"testing"
	"time"

	"convoy/internal/testutil"
	"convoy/internal/types"
)

func setupFleet(t *testing.T) (*Service, *Store) {
	t.Helper()
	pool := testutil.NewTestPool(t)
	store := NewStore(pool)
	return NewService(store, nil, nil), store
}

func mustVehicle(t *testing.T, svc *Service, plate string) *Vehicle {
	t.Helper()
	v, err := svc.CreateVehicle(context.Background(), CreateVehicleCommand{
		Plate:      plate,
		Category:   "van",
		OdometerKm: 1000,
	})
	if err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	return v
}

func mustDriver(t *testing.T, svc *Service, name string) *Driver {
	t.Helper()
	d, err := svc.CreateDriver(context.Background(), CreateDriverCommand{
		Name:          name,
		LicenseNumber: "LIC-" + name,
		LicenseClass:  "b",
		LicenseExpiry: time.Now().Add(365 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create driver: %v", err)
	}
	return d
}

func TestCreateDriverDefaults(t *testing.T) {
	svc, _ := setupFleet(t)

	d := mustDriver(t, svc, "nina")
	if d.Status != DriverOffDuty {
		t.Fatalf("expected new driver OFF_DUTY, got %s", d.Status)
	}
	if d.SafetyScore != 100 {
		t.Fatalf("expected starting safety score 100, got %v", d.SafetyScore)
	}
	if d.LicenseClass != "B" {
		t.Fatalf("expected license class normalized to B, got %s", d.LicenseClass)
	}
}

func TestDriverDutyToggle(t *testing.T) {
	svc, _ := setupFleet(t)
	ctx := context.Background()

	d := mustDriver(t, svc, "omar")

	d2, err := svc.SetDriverDuty(ctx, d.ID, true)
	if err != nil {
		t.Fatalf("go on duty: %v", err)
	}
	if d2.Status != DriverOnDuty {
		t.Fatalf("expected ON_DUTY, got %s", d2.Status)
	}

	// toggling to the current state is a no-op
	if _, err := svc.SetDriverDuty(ctx, d.ID, true); err != nil {
		t.Fatalf("idempotent duty toggle: %v", err)
	}

	d2, err = svc.SetDriverDuty(ctx, d.ID, false)
	if err != nil {
		t.Fatalf("go off duty: %v", err)
	}
	if d2.Status != DriverOffDuty {
		t.Fatalf("expected OFF_DUTY, got %s", d2.Status)
	}
}

func TestDriverSuspendReinstate(t *testing.T) {
	svc, _ := setupFleet(t)
	ctx := context.Background()

	d := mustDriver(t, svc, "pam")

	d2, err := svc.SuspendDriver(ctx, d.ID)
	if err != nil {
		t.Fatalf("suspend: %v", err)
	}
	if d2.Status != DriverSuspended {
		t.Fatalf("expected SUSPENDED, got %s", d2.Status)
	}

	// a suspended driver cannot self-schedule
	if _, err := svc.SetDriverDuty(ctx, d.ID, true); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("duty while suspended: expected ErrInvalidState, got %v", err)
	}
	if _, err := svc.SuspendDriver(ctx, d.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("double suspend: expected ErrInvalidState, got %v", err)
	}

	d2, err = svc.ReinstateDriver(ctx, d.ID)
	if err != nil {
		t.Fatalf("reinstate: %v", err)
	}
	if d2.Status != DriverOffDuty {
		t.Fatalf("expected OFF_DUTY after reinstatement, got %s", d2.Status)
	}

	if _, err := svc.ReinstateDriver(ctx, d.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("reinstate non-suspended: expected ErrInvalidState, got %v", err)
	}
}

func TestVehicleRetireIsTerminal(t *testing.T) {
	svc, _ := setupFleet(t)
	ctx := context.Background()

	v := mustVehicle(t, svc, "FLT-001")

	v2, err := svc.RetireVehicle(ctx, v.ID)
	if err != nil {
		t.Fatalf("retire: %v", err)
	}
	if v2.Status != VehicleRetired {
		t.Fatalf("expected RETIRED, got %s", v2.Status)
	}

	if _, err := svc.RetireVehicle(ctx, v.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("double retire: expected ErrInvalidState, got %v", err)
	}
}

func TestVehicleSoftDelete(t *testing.T) {
	svc, _ := setupFleet(t)
	ctx := context.Background()

	v := mustVehicle(t, svc, "FLT-002")
	if err := svc.DeleteVehicle(ctx, v.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetVehicle(ctx, v.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get deleted vehicle: expected ErrNotFound, got %v", err)
	}
	if err := svc.DeleteVehicle(ctx, v.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete: expected ErrNotFound, got %v", err)
	}
}

func TestUpdateDriverLicense(t *testing.T) {
	svc, _ := setupFleet(t)
	ctx := context.Background()

	d := mustDriver(t, svc, "quinn")
	newExpiry := time.Now().Add(2 * 365 * 24 * time.Hour)
	d2, err := svc.UpdateDriverLicense(ctx, d.ID, "LIC-NEW", "ce", newExpiry)
	if err != nil {
		t.Fatalf("update license: %v", err)
	}
	if d2.LicenseNumber != "LIC-NEW" || d2.LicenseClass != "CE" {
		t.Fatalf("license not updated: %s %s", d2.LicenseNumber, d2.LicenseClass)
	}

	if _, err := svc.UpdateDriverLicense(ctx, types.NewID(), "X", "B", newExpiry); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update unknown driver: expected ErrNotFound, got %v", err)
	}
}

func TestExpiringLicenses(t *testing.T) {
	svc, store := setupFleet(t)
	ctx := context.Background()

	soon, err := svc.CreateDriver(ctx, CreateDriverCommand{
		Name:          "soon",
		LicenseNumber: "LIC-SOON",
		LicenseClass:  "B",
		LicenseExpiry: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create driver: %v", err)
	}
	mustDriver(t, svc, "later") // expires in a year

	drivers, err := store.ExpiringLicenses(ctx, time.Now().Add(72*time.Hour))
	if err != nil {
		t.Fatalf("expiring licenses: %v", err)
	}
	if len(drivers) != 1 || drivers[0].ID != soon.ID {
		t.Fatalf("expected only the soon-expiring driver, got %d rows", len(drivers))
	}
}
