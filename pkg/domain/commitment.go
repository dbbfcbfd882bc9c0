package domain

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"

	derrors "giggate/pkg/domain-errors"
)

// Commitment is the binding digest of verification material fixed on-chain at
// submission time. It is opaque to giggate beyond equality and lookup: the
// off-chain center resolves it against the actual material, giggate never
// sees the payload.
type Commitment string

// ParseCommitment constructs a Commitment from external input.
// Errors: CodeValidation unless the value is a 32-byte lowercase-canonical
// hex digest (with or without 0x prefix).
func ParseCommitment(s string) (Commitment, error) {
	s = strings.TrimSpace(strings.TrimPrefix(s, "0x"))
	if s == "" {
		return "", derrors.New(derrors.CodeValidation, "commitment cannot be empty")
	}
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != 32 {
		return "", derrors.New(derrors.CodeValidation, "commitment must be a 32-byte hex digest")
	}
	return Commitment(strings.ToLower(s)), nil
}

func (c Commitment) String() string { return string(c) }

func (c Commitment) IsZero() bool { return c == "" }

// ComputeCommitment derives the canonical Keccak-256 commitment over raw
// verification material. Exposed so tests and the mock center can mint
// commitments the same way wallets do.
func ComputeCommitment(material []byte) Commitment {
	h := sha3.NewLegacyKeccak256()
	h.Write(material)
	return Commitment(hex.EncodeToString(h.Sum(nil)))
}
