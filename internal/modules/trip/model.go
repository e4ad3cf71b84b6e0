// README: Trip aggregate, status definitions, and the transition table.
package trip

import (
	"time"

	"convoy/internal/types"
)

type Status string

const (
	StatusDraft      Status = "DRAFT"
	StatusDispatched Status = "DISPATCHED"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

type Trip struct {
	ID                  types.ID
	VehicleID           types.ID
	DriverID            types.ID
	Origin              string
	Destination         string
	DistanceEstimatedKm float64
	DistanceActualKm    *float64
	CargoWeightKg       *float64
	CargoDescription    string
	Revenue             types.Money
	ClientName          string
	InvoiceRef          string
	Status              Status
	OdometerStartKm     *float64
	OdometerEndKm       *float64
	DispatchedAt        *time.Time
	CompletedAt         *time.Time
	CancelledAt         *time.Time
	CancelReason        *string
	Rating              *int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// AllowedTransitions is the complete trip state flow. COMPLETED and CANCELLED
// are terminal.
var AllowedTransitions = map[Status][]Status{
	StatusDraft:      {StatusDispatched, StatusCancelled},
	StatusDispatched: {StatusCompleted, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	for _, s := range AllowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}
