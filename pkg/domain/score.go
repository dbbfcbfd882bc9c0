package domain

import (
	"math"

	derrors "giggate/pkg/domain-errors"
)

// TrustScore is a normalized [0,1] reputation value. giggate treats it as an
// opaque oracle output and never derives it from verification tiers or any
// other local signal.
type TrustScore float64

// ParseTrustScore validates an externally supplied score.
// Errors: CodeValidation when the value is NaN or outside [0,1].
func ParseTrustScore(v float64) (TrustScore, error) {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return 0, derrors.New(derrors.CodeValidation, "trust score must be in [0,1]")
	}
	return TrustScore(v), nil
}

func (s TrustScore) Float64() float64 { return float64(s) }

// Meets reports whether the score satisfies a gig threshold.
func (s TrustScore) Meets(threshold TrustScore) bool { return s >= threshold }
