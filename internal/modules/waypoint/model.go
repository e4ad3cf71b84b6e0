// README: Waypoint model: ordered stops on a trip with arrival/departure events.
package waypoint

import (
	"time"

	"convoy/internal/types"
)

type Waypoint struct {
	ID          int64
	TripID      types.ID
	Seq         int
	Label       string
	Position    types.Point
	ScheduledAt *time.Time
	ArrivedAt   *time.Time
	DepartedAt  *time.Time
}
