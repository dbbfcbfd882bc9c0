// Package domain holds the typed primitives shared across giggate modules.
// IDs are distinct types over uuid.UUID so a gig id can never be passed where
// a verification request id is expected.
package domain

import (
	"github.com/google/uuid"

	derrors "giggate/pkg/domain-errors"
)

// GigID identifies a posted gig.
type GigID uuid.UUID

// RequestID identifies a verification request.
type RequestID uuid.UUID

// NewGigID allocates a fresh gig id.
func NewGigID() GigID {
	return GigID(uuid.New())
}

// NewRequestID allocates a fresh verification request id.
func NewRequestID() RequestID {
	return RequestID(uuid.New())
}

// ParseGigID constructs a GigID from external input.
// Errors: CodeValidation when the value is empty, malformed, or the nil UUID.
func ParseGigID(s string) (GigID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return GigID{}, err
	}
	return GigID(u), nil
}

// ParseRequestID constructs a RequestID from external input.
// Errors: CodeValidation when the value is empty, malformed, or the nil UUID.
func ParseRequestID(s string) (RequestID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return RequestID{}, err
	}
	return RequestID(u), nil
}

func (g GigID) String() string { return uuid.UUID(g).String() }

func (g GigID) IsNil() bool { return uuid.UUID(g) == uuid.Nil }

func (r RequestID) String() string { return uuid.UUID(r).String() }

func (r RequestID) IsNil() bool { return uuid.UUID(r) == uuid.Nil }

// parseUUID enforces the shared invariant: ids must be valid, non-empty,
// non-nil UUIDs. Parsing happens at trust boundaries; direct casting bypasses
// validation and is reserved for internal construction.
func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, derrors.New(derrors.CodeValidation, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, derrors.New(derrors.CodeValidation, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, derrors.New(derrors.CodeValidation, "id cannot be the nil UUID")
	}
	return u, nil
}
