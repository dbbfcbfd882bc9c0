package domain

import derrors "giggate/pkg/domain-errors"

// Wei is a smallest-unit fixed-point amount. All money moves through giggate
// as integers; floats are never used for amounts to avoid drift.
type Wei int64

// ParseWei validates an externally supplied amount.
// Errors: CodeValidation when negative.
func ParseWei(v int64) (Wei, error) {
	if v < 0 {
		return 0, derrors.New(derrors.CodeValidation, "amount cannot be negative")
	}
	return Wei(v), nil
}

func (w Wei) Int64() int64 { return int64(w) }

// AtLeast reports whether the amount covers a required minimum.
func (w Wei) AtLeast(min Wei) bool { return w >= min }
