// Package postgres persists audit events in PostgreSQL for deployments that
// keep the trail queryable next to the primary records.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "giggate/pkg/domain"
	"giggate/pkg/platform/audit"
)

// Store implements audit.Store and audit.Reader over an audit_events table.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO audit_events (id, occurred_at, identity, action, subject, decision, reason, request_id, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.NewString(),
		event.Timestamp,
		event.Identity.String(),
		string(event.Action),
		event.Subject,
		event.Decision,
		event.Reason,
		event.RequestID,
		event.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *Store) ListByIdentity(ctx context.Context, identity id.Identity) ([]audit.Event, error) {
	query := `
		SELECT occurred_at, identity, action, subject, decision, reason, request_id, user_agent
		FROM audit_events
		WHERE identity = $1
		ORDER BY occurred_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, identity.String())
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var event audit.Event
		var actor, action string
		if err := rows.Scan(&event.Timestamp, &actor, &action, &event.Subject,
			&event.Decision, &event.Reason, &event.RequestID, &event.UserAgent); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Identity = id.Identity(actor)
		event.Action = audit.Action(action)
		events = append(events, event)
	}
	return events, rows.Err()
}
