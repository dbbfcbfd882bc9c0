// Package models defines the verification request aggregate and its state
// machine.
package models

import (
	"time"

	id "giggate/pkg/domain"
	derrors "giggate/pkg/domain-errors"
)

// Status is the lifecycle state of a verification request.
//
// Transitions are one-directional out of pending only:
//
//	pending -> approved
//	pending -> declined
//	pending -> withdrawn
//
// All three outcomes are terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusDeclined  Status = "declined"
	StatusWithdrawn Status = "withdrawn"
)

// Request is one identity verification attempt. The commitment binds the
// verification material at submission time and never mutates; the off-chain
// center resolves it and reports back only an approval boolean.
type Request struct {
	ID         id.RequestID         `json:"id"`
	Identity   id.Identity          `json:"identity"`
	Level      id.VerificationLevel `json:"level"`
	Commitment id.Commitment        `json:"commitment"`
	Deposit    id.Wei               `json:"deposit_wei"`
	Status     Status               `json:"status"`
	// Verifier is the center decider recorded with the decision, empty while
	// pending.
	Verifier string `json:"verifier,omitempty"`
	// Reason carries the center's decline explanation, empty otherwise.
	Reason    string     `json:"reason,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
	// DispatchedAt marks that the off-chain decision process was triggered.
	// It is the idempotency marker for decision requests.
	DispatchedAt *time.Time `json:"dispatched_at,omitempty"`
}

// NewRequest validates the deposit policy and constructs a pending request.
// Level is assumed already parsed; the deposit must cover the level minimum.
func NewRequest(requestID id.RequestID, identity id.Identity, level id.VerificationLevel, commitment id.Commitment, deposit id.Wei, now time.Time) (*Request, error) {
	if identity.IsZero() {
		return nil, derrors.New(derrors.CodeValidation, "identity is required")
	}
	if !level.IsValid() {
		return nil, derrors.New(derrors.CodeInvalidLevel, "verification level must be 0, 1, or 2")
	}
	if commitment.IsZero() {
		return nil, derrors.New(derrors.CodeValidation, "commitment is required")
	}
	if !deposit.AtLeast(level.MinDeposit()) {
		return nil, derrors.New(derrors.CodeInsufficientDeposit, "deposit below the required minimum for the requested level")
	}

	return &Request{
		ID:         requestID,
		Identity:   identity,
		Level:      level,
		Commitment: commitment,
		Deposit:    deposit,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (r *Request) IsPending() bool {
	return r.Status == StatusPending
}

// IsTerminal reports whether the request reached one of the three final
// states.
func (r *Request) IsTerminal() bool {
	return r.Status == StatusApproved || r.Status == StatusDeclined || r.Status == StatusWithdrawn
}

// CanDecide is the terminal-state guard for decision callbacks. Duplicate or
// late callbacks, including a decision racing a withdrawal, fail here.
func (r *Request) CanDecide() error {
	if r.Status != StatusPending {
		return derrors.New(derrors.CodeConflict, "request is already decided")
	}
	return nil
}

// ApplyDecision resolves a pending request. Callers must have passed CanDecide
// under the store lock.
func (r *Request) ApplyDecision(approved bool, verifier, reason string, now time.Time) {
	if approved {
		r.Status = StatusApproved
	} else {
		r.Status = StatusDeclined
	}
	r.Verifier = verifier
	r.Reason = reason
	r.DecidedAt = &now
	r.UpdatedAt = now
}

// CanWithdraw guards caller-initiated cancellation. Only the submitting
// identity may withdraw, and only while pending.
func (r *Request) CanWithdraw(requester id.Identity) error {
	if r.Identity != requester {
		return derrors.New(derrors.CodeUnauthorized, "only the submitting identity can withdraw a request")
	}
	if r.Status != StatusPending {
		return derrors.New(derrors.CodeConflict, "request is already decided")
	}
	return nil
}

// ApplyWithdrawal transitions to withdrawn and stamps the terminal time. The
// deposit is released; in-flight off-chain work discovers the terminal state
// on completion and no-ops.
func (r *Request) ApplyWithdrawal(now time.Time) {
	r.Status = StatusWithdrawn
	r.DecidedAt = &now
	r.UpdatedAt = now
}

// MarkDispatched records that the off-chain decision process was triggered.
// Returns false when a dispatch is already in flight, making trigger calls
// idempotent per request.
func (r *Request) MarkDispatched(now time.Time) bool {
	if r.DispatchedAt != nil {
		return false
	}
	r.DispatchedAt = &now
	r.UpdatedAt = now
	return true
}

// Clone returns a copy so stores never hand out aliased records.
func (r *Request) Clone() *Request {
	cp := *r
	if r.DecidedAt != nil {
		t := *r.DecidedAt
		cp.DecidedAt = &t
	}
	if r.DispatchedAt != nil {
		t := *r.DispatchedAt
		cp.DispatchedAt = &t
	}
	return &cp
}
