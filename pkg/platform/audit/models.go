// Package audit defines the append-only audit trail emitted by giggate's
// domain services. Events are transport-agnostic so stores and sinks can fan
// out: memory for tests, Postgres outbox or Kafka for production.
package audit

import (
	"context"
	"time"

	id "giggate/pkg/domain"
)

// Action names the domain occurrence an event records.
type Action string

const (
	ActionGigCreated            Action = "gig_created"
	ActionGigDeactivated        Action = "gig_deactivated"
	ActionVerificationSubmitted Action = "verification_submitted"
	ActionVerificationDecided   Action = "verification_decided"
	ActionVerificationWithdrawn Action = "verification_withdrawn"
	ActionEligibilityEvaluated  Action = "eligibility_evaluated"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	Identity  id.Identity
	Action    Action
	// Subject is the id of the record acted on (gig id or request id).
	Subject string
	// Decision and Reason capture eligibility outcomes and verification
	// verdicts; empty for lifecycle events.
	Decision string
	Reason   string
	// RequestID is the correlation id from the HTTP request context.
	RequestID string
	// UserAgent is the requesting client family, for operational forensics.
	UserAgent string
}

// Store persists events. Implementations must be safe for concurrent use.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Reader lists persisted events; sinks that only forward (Kafka) do not
// implement it.
type Reader interface {
	ListByIdentity(ctx context.Context, identity id.Identity) ([]Event, error)
}
