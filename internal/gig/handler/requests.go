package handler

import (
	id "giggate/pkg/domain"
	derrors "giggate/pkg/domain-errors"
)

// CreateGigRequest is the payload for posting a new gig. Validate parses the
// raw wire values into domain types once, so handlers never re-parse.
type CreateGigRequest struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Types         []string `json:"types"`
	BountyWei     int64    `json:"bounty_wei"`
	MinTrustScore float64  `json:"min_trust_score"`

	bounty        id.Wei
	minTrustScore id.TrustScore
}

func (r *CreateGigRequest) Validate() error {
	bounty, err := id.ParseWei(r.BountyWei)
	if err != nil {
		return derrors.Wrap(err, derrors.CodeValidation, "invalid bounty amount")
	}
	score, err := id.ParseTrustScore(r.MinTrustScore)
	if err != nil {
		return derrors.Wrap(err, derrors.CodeValidation, "invalid minimum trust score")
	}
	r.bounty = bounty
	r.minTrustScore = score
	return nil
}
