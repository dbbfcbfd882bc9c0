package handler

import "giggate/internal/eligibility/models"

// DecisionResponse is the wire representation of an eligibility decision.
type DecisionResponse struct {
	Allowed       bool    `json:"allowed"`
	Reason        string  `json:"reason"`
	ObservedScore float64 `json:"observed_score"`
	RequiredScore float64 `json:"required_score"`
}

func toDecisionResponse(d models.Decision) DecisionResponse {
	return DecisionResponse{
		Allowed:       d.Allowed,
		Reason:        string(d.Reason),
		ObservedScore: d.ObservedScore.Float64(),
		RequiredScore: d.RequiredScore.Float64(),
	}
}
