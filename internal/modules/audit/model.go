// README: Audit event definitions (append-only mutation trail).
package audit

import "time"

type Event struct {
	ID         int64
	EntityType string
	EntityID   string
	Action     string
	FromState  string
	ToState    string
	Actor      string
	CreatedAt  time.Time
}
