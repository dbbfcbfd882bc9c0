// Package models defines the eligibility decision rendered for an
// (identity, gig) pair.
package models

import id "giggate/pkg/domain"

// Reason explains the first unmet precondition, or allowed. The ordering of
// checks is deliberate: identity presence, then gig state, then verification,
// then score, so callers always get a single actionable next step.
type Reason string

const (
	ReasonNoIdentity          Reason = "no_identity"
	ReasonGigInactive         Reason = "gig_inactive"
	ReasonNotVerified         Reason = "not_verified"
	ReasonVerificationPending Reason = "verification_pending"
	ReasonScoreBelowThreshold Reason = "score_below_threshold"
	ReasonAllowed             Reason = "allowed"
)

// Decision is the evaluator's verdict. Precondition failures are normal
// decisions with a reason code, never errors.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  Reason `json:"reason"`
	// ObservedScore and RequiredScore are meaningful for score-stage
	// decisions; earlier failures leave them zero.
	ObservedScore id.TrustScore `json:"observed_score"`
	RequiredScore id.TrustScore `json:"required_score"`
}
