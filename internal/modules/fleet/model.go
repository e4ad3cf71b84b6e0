// README: Vehicle and driver registry models and status definitions.
package fleet

import (
	"time"

	"convoy/internal/types"
)

type VehicleStatus string

const (
	VehicleAvailable VehicleStatus = "AVAILABLE"
	VehicleOnTrip    VehicleStatus = "ON_TRIP"
	VehicleInShop    VehicleStatus = "IN_SHOP"
	VehicleRetired   VehicleStatus = "RETIRED"
)

type DriverStatus string

const (
	DriverOnDuty    DriverStatus = "ON_DUTY"
	DriverOffDuty   DriverStatus = "OFF_DUTY"
	DriverOnTrip    DriverStatus = "ON_TRIP"
	DriverSuspended DriverStatus = "SUSPENDED"
)

type Vehicle struct {
	ID               types.ID
	Plate            string
	Make             string
	Model            string
	Year             int
	Category         string
	Status           VehicleStatus
	OdometerKm       float64
	CapacityWeightKg *float64
	CapacityVolumeM3 *float64
	DeletedAt        *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Driver struct {
	ID            types.ID
	Name          string
	Status        DriverStatus
	LicenseNumber string
	LicenseClass  string
	LicenseExpiry time.Time
	IncidentCount int
	SafetyScore   float64
	DeletedAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
