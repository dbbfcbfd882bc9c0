package handler

import (
	id "giggate/pkg/domain"
	derrors "giggate/pkg/domain-errors"
)

// SubmitRequest is the payload for a new verification request.
type SubmitRequest struct {
	Level      int    `json:"level"`
	Commitment string `json:"commitment"`
	DepositWei int64  `json:"deposit_wei"`

	level      id.VerificationLevel
	commitment id.Commitment
	deposit    id.Wei
}

func (r *SubmitRequest) Validate() error {
	level, err := id.ParseVerificationLevel(r.Level)
	if err != nil {
		return err
	}
	commitment, err := id.ParseCommitment(r.Commitment)
	if err != nil {
		return err
	}
	deposit, err := id.ParseWei(r.DepositWei)
	if err != nil {
		return derrors.Wrap(err, derrors.CodeValidation, "invalid deposit amount")
	}
	r.level = level
	r.commitment = commitment
	r.deposit = deposit
	return nil
}

// CallbackRequest is the center's decision report.
type CallbackRequest struct {
	Approved bool   `json:"approved"`
	Verifier string `json:"verifier"`
	Reason   string `json:"reason,omitempty"`
}

func (r *CallbackRequest) Validate() error {
	if r.Verifier == "" {
		return derrors.New(derrors.CodeValidation, "verifier is required")
	}
	return nil
}
