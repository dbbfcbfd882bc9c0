// Package oracle provides trust score lookups. The score is an external
// reputation signal; giggate treats it as read-only and fails closed when the
// oracle cannot answer.
package oracle

import (
	"context"

	id "giggate/pkg/domain"
)

// ScoreSource resolves an identity's current trust score. Implementations
// return CodeUnavailable when the score cannot be obtained; callers decide the
// fail-closed policy.
type ScoreSource interface {
	Score(ctx context.Context, identity id.Identity) (id.TrustScore, error)
}
