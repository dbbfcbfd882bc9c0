package service

import (
	"giggate/internal/eligibility/models"
	gigmodels "giggate/internal/gig/models"
	vermodels "giggate/internal/verification/models"
	id "giggate/pkg/domain"
)

// Inputs carries everything the precedence chain needs, already loaded. The
// chain itself does no I/O.
type Inputs struct {
	Identity id.Identity
	Gig      *gigmodels.Gig
	// Verification is the identity's current request, nil when none was ever
	// submitted.
	Verification *vermodels.Request
	Score        id.TrustScore
	// OracleFailed marks that the score could not be obtained. The evaluator
	// fails closed: an unknown score counts as zero.
	OracleFailed bool
}

// decide walks the precedence chain and renders the first unmet precondition.
//
// Order: identity presence, gig activity, verification status, score. A
// declined or withdrawn verification reads as not verified; only pending gets
// its own reason because the caller's next step differs (wait vs resubmit).
func decide(in Inputs) models.Decision {
	if in.Identity.IsZero() {
		return models.Decision{Reason: models.ReasonNoIdentity}
	}

	if !in.Gig.IsActive() {
		return models.Decision{Reason: models.ReasonGigInactive}
	}

	switch {
	case in.Verification == nil:
		return models.Decision{Reason: models.ReasonNotVerified}
	case in.Verification.Status == vermodels.StatusPending:
		return models.Decision{Reason: models.ReasonVerificationPending}
	case in.Verification.Status != vermodels.StatusApproved:
		return models.Decision{Reason: models.ReasonNotVerified}
	}

	required := in.Gig.MinTrustScore
	observed := in.Score
	if in.OracleFailed {
		observed = 0
	}
	if !observed.Meets(required) {
		return models.Decision{
			Reason:        models.ReasonScoreBelowThreshold,
			ObservedScore: observed,
			RequiredScore: required,
		}
	}
	return models.Decision{
		Allowed:       true,
		Reason:        models.ReasonAllowed,
		ObservedScore: observed,
		RequiredScore: required,
	}
}
