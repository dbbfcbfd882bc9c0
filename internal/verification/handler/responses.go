package handler

import (
	"time"

	"giggate/internal/verification/models"
)

// RequestResponse is the wire representation of a verification request.
type RequestResponse struct {
	ID         string     `json:"id"`
	Identity   string     `json:"identity"`
	Level      int        `json:"level"`
	LevelName  string     `json:"level_name"`
	Commitment string     `json:"commitment"`
	DepositWei int64      `json:"deposit_wei"`
	Status     string     `json:"status"`
	Verifier   string     `json:"verifier,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	DecidedAt  *time.Time `json:"decided_at,omitempty"`
}

// HistoryResponse wraps an identity's submission history.
type HistoryResponse struct {
	Requests []RequestResponse `json:"requests"`
	Count    int               `json:"count"`
}

func toRequestResponse(req *models.Request) RequestResponse {
	return RequestResponse{
		ID:         req.ID.String(),
		Identity:   req.Identity.String(),
		Level:      int(req.Level),
		LevelName:  req.Level.String(),
		Commitment: req.Commitment.String(),
		DepositWei: req.Deposit.Int64(),
		Status:     string(req.Status),
		Verifier:   req.Verifier,
		Reason:     req.Reason,
		CreatedAt:  req.CreatedAt,
		DecidedAt:  req.DecidedAt,
	}
}
