// Package center integrates with the off-chain verification center. The core
// hands it a commitment and gets back, eventually, a boolean via the callback
// endpoint; the verification material itself never passes through here.
package center

import (
	"context"

	id "giggate/pkg/domain"
)

// DecisionCommand asks the center to resolve one request's commitment.
type DecisionCommand struct {
	RequestID  id.RequestID
	Commitment id.Commitment
	Level      id.VerificationLevel
}

// DecisionRequester triggers the asynchronous off-chain decision process.
// Implementations must not resolve the status themselves; the center reports
// the outcome later through the decision callback.
type DecisionRequester interface {
	RequestDecision(ctx context.Context, cmd DecisionCommand) error
}
