package handler

import (
	"time"

	"giggate/internal/gig/models"
)

// GigResponse is the wire representation of a gig.
type GigResponse struct {
	ID            string    `json:"id"`
	Creator       string    `json:"creator"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Types         []string  `json:"types"`
	BountyWei     int64     `json:"bounty_wei"`
	MinTrustScore float64   `json:"min_trust_score"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ListGigsResponse wraps the filtered active listing.
type ListGigsResponse struct {
	Gigs  []GigResponse `json:"gigs"`
	Count int           `json:"count"`
}

func toGigResponse(gig *models.Gig) GigResponse {
	return GigResponse{
		ID:            gig.ID.String(),
		Creator:       gig.Creator.String(),
		Title:         gig.Title,
		Description:   gig.Description,
		Types:         gig.Types,
		BountyWei:     gig.BountyAmount.Int64(),
		MinTrustScore: gig.MinTrustScore.Float64(),
		Status:        string(gig.Status),
		CreatedAt:     gig.CreatedAt,
		UpdatedAt:     gig.UpdatedAt,
	}
}
