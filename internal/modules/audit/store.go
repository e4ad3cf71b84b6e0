// README: Audit store appends mutation events; write failures are logged, never surfaced.
package audit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

type Store struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

func NewStore(db *pgxpool.Pool, log *logrus.Logger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{db: db, log: log}
}

// Record appends one event. The audit trail is best-effort bookkeeping: a failed
// insert must never fail the mutation that produced it, so errors stop here.
func (s *Store) Record(ctx context.Context, e Event) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO audit_log (entity_type, entity_id, action, from_state, to_state, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.EntityType, e.EntityID, e.Action, nullable(e.FromState), nullable(e.ToState), e.Actor, e.CreatedAt,
	)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"entity_type": e.EntityType,
			"entity_id":   e.EntityID,
			"action":      e.Action,
		}).Warn("audit write failed")
	}
}

// ListByEntity returns the recorded trail for one entity, oldest first.
func (s *Store) ListByEntity(ctx context.Context, entityType, entityID string) ([]Event, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, entity_type, entity_id, action,
		       COALESCE(from_state, ''), COALESCE(to_state, ''), actor, created_at
		FROM audit_log
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY id`,
		entityType, entityID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &e.Action,
			&e.FromState, &e.ToState, &e.Actor, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullable(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
