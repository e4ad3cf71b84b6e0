// README: Telemetry models: live position updates and persisted snapshots.
package telemetry

import (
	"time"

	"convoy/internal/types"
)

type Update struct {
	VehicleID types.ID    `json:"vehicle_id"`
	Position  types.Point `json:"position"`
	SpeedKph  float64     `json:"speed_kph"`
}

type Snapshot struct {
	ID         int64
	VehicleID  types.ID
	Position   types.Point
	SpeedKph   float64
	RecordedAt time.Time
}

type NearbyVehicle struct {
	VehicleID  types.ID `json:"vehicle_id"`
	DistanceKm float64  `json:"distance_km"`
}
