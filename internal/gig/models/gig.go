package models

import (
	"sort"
	"strings"
	"time"

	id "giggate/pkg/domain"
	derrors "giggate/pkg/domain-errors"
)

// GigStatus is the lifecycle state of a posting.
type GigStatus string

const (
	GigStatusActive   GigStatus = "active"
	GigStatusInactive GigStatus = "inactive"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 5000
	maxTypes          = 10
)

// Gig is the aggregate root for a posted work item.
//
// Invariants:
//   - Title and Description are non-empty (bounded lengths)
//   - Types is a non-empty deduplicated set; insertion order is irrelevant
//   - BountyAmount is non-negative
//   - MinTrustScore is in [0,1] and never mutates after creation; changing
//     eligibility rules for an existing posting is out of scope
//   - Status is monotonic: active -> inactive once, no reactivation
//   - Creator and CreatedAt are immutable after construction
type Gig struct {
	ID            id.GigID      `json:"id"`
	Creator       id.Identity   `json:"creator"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Types         []string      `json:"types"`
	BountyAmount  id.Wei        `json:"bounty_amount"`
	MinTrustScore id.TrustScore `json:"min_trust_score"`
	Status        GigStatus     `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// NewGig validates inputs and constructs an active posting.
func NewGig(gigID id.GigID, creator id.Identity, title, description string, types []string, bounty id.Wei, minTrustScore id.TrustScore, now time.Time) (*Gig, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)

	if creator.IsZero() {
		return nil, derrors.New(derrors.CodeValidation, "creator is required")
	}
	if title == "" {
		return nil, derrors.New(derrors.CodeValidation, "title cannot be empty")
	}
	if len(title) > maxTitleLen {
		return nil, derrors.New(derrors.CodeValidation, "title must be 200 characters or less")
	}
	if description == "" {
		return nil, derrors.New(derrors.CodeValidation, "description cannot be empty")
	}
	if len(description) > maxDescriptionLen {
		return nil, derrors.New(derrors.CodeValidation, "description must be 5000 characters or less")
	}
	normalized, err := normalizeTypes(types)
	if err != nil {
		return nil, err
	}
	if bounty < 0 {
		return nil, derrors.New(derrors.CodeValidation, "bounty amount cannot be negative")
	}
	if minTrustScore < 0 || minTrustScore > 1 {
		return nil, derrors.New(derrors.CodeValidation, "minimum trust score must be in [0,1]")
	}

	return &Gig{
		ID:            gigID,
		Creator:       creator,
		Title:         title,
		Description:   description,
		Types:         normalized,
		BountyAmount:  bounty,
		MinTrustScore: minTrustScore,
		Status:        GigStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (g *Gig) IsActive() bool {
	return g.Status == GigStatusActive
}

// CanDeactivate checks the monotonic status invariant.
// Use with ApplyDeactivation in store Execute callbacks.
func (g *Gig) CanDeactivate() error {
	if g.Status != GigStatusActive {
		return derrors.New(derrors.CodeInvariantViolation, "gig is already inactive")
	}
	return nil
}

// ApplyDeactivation flips the posting inactive. There is deliberately no
// reactivation counterpart: a filled or cancelled gig stays closed.
func (g *Gig) ApplyDeactivation(now time.Time) {
	g.Status = GigStatusInactive
	g.UpdatedAt = now
}

// HasType reports whether the gig carries the given category tag.
func (g *Gig) HasType(tag string) bool {
	for _, t := range g.Types {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// MatchesQuery reports whether the title or description contains the query,
// case-insensitively.
func (g *Gig) MatchesQuery(query string) bool {
	if query == "" {
		return true
	}
	query = strings.ToLower(query)
	return strings.Contains(strings.ToLower(g.Title), query) ||
		strings.Contains(strings.ToLower(g.Description), query)
}

// Clone returns a deep copy so stores never leak aliased slices.
func (g *Gig) Clone() *Gig {
	cp := *g
	cp.Types = append([]string{}, g.Types...)
	return &cp
}

// normalizeTypes trims, dedupes case-insensitively, and sorts the tag set so
// two gigs with the same tags in different order compare equal.
func normalizeTypes(types []string) ([]string, error) {
	seen := make(map[string]struct{}, len(types))
	out := make([]string, 0, len(types))
	for _, t := range types {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, derrors.New(derrors.CodeValidation, "at least one gig type is required")
	}
	if len(out) > maxTypes {
		return nil, derrors.New(derrors.CodeValidation, "at most 10 gig types are allowed")
	}
	sort.Strings(out)
	return out, nil
}
