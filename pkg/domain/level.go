package domain

import derrors "giggate/pkg/domain-errors"

// VerificationLevel is the requested assurance tier. The set is fixed and
// ordinal: higher levels imply stricter checks and a larger escrowed deposit.
type VerificationLevel int

const (
	LevelBasic    VerificationLevel = 0
	LevelEnhanced VerificationLevel = 1
	LevelFull     VerificationLevel = 2
)

// levelDeposits is the single source of truth for the deposit policy, in wei.
var levelDeposits = map[VerificationLevel]Wei{
	LevelBasic:    Wei(10_000_000_000_000_000),  // 0.01 ETH
	LevelEnhanced: Wei(50_000_000_000_000_000),  // 0.05 ETH
	LevelFull:     Wei(100_000_000_000_000_000), // 0.1 ETH
}

// ParseVerificationLevel validates an externally supplied tier.
// Errors: CodeInvalidLevel when outside the fixed ordinal set.
func ParseVerificationLevel(v int) (VerificationLevel, error) {
	l := VerificationLevel(v)
	if !l.IsValid() {
		return 0, derrors.New(derrors.CodeInvalidLevel, "verification level must be 0, 1, or 2")
	}
	return l, nil
}

func (l VerificationLevel) IsValid() bool {
	_, ok := levelDeposits[l]
	return ok
}

// MinDeposit returns the deposit an identity must escrow to request this level.
func (l VerificationLevel) MinDeposit() Wei {
	return levelDeposits[l]
}

func (l VerificationLevel) String() string {
	switch l {
	case LevelBasic:
		return "basic"
	case LevelEnhanced:
		return "enhanced"
	case LevelFull:
		return "full"
	}
	return "unknown"
}
