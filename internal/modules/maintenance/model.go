// README: Maintenance record model.
package maintenance

import (
	"time"

	"convoy/internal/types"
)

type RecordStatus string

const (
	StatusOpen   RecordStatus = "OPEN"
	StatusClosed RecordStatus = "CLOSED"
)

type Record struct {
	ID          types.ID
	VehicleID   types.ID
	ServiceType string
	Description string
	Cost        types.Money
	Status      RecordStatus
	OpenedAt    time.Time
	ClosedAt    *time.Time
}
