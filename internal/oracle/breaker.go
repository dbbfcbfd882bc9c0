package oracle

import (
	"context"
	"log/slog"
	"sync"
	"time"

	id "giggate/pkg/domain"
	derrors "giggate/pkg/domain-errors"
	"giggate/pkg/platform/circuit"
)

const defaultProbeInterval = 15 * time.Second

// BreakerSource wraps a ScoreSource with a circuit breaker. When the oracle
// keeps failing, lookups short-circuit to CodeUnavailable instead of waiting
// out the HTTP timeout on every evaluation. While open, one probe per
// interval is let through; enough probe successes close the circuit again.
//
// The evaluator fails closed on unavailability either way; the breaker just
// makes that path fast under a sustained outage.
type BreakerSource struct {
	source        ScoreSource
	breaker       *circuit.Breaker
	probeInterval time.Duration
	logger        *slog.Logger

	mu        sync.Mutex
	lastProbe time.Time
}

func NewBreakerSource(source ScoreSource, breaker *circuit.Breaker, logger *slog.Logger) *BreakerSource {
	if breaker == nil {
		breaker = circuit.New("trust-score-oracle", circuit.WithFailureThreshold(5))
	}
	return &BreakerSource{
		source:        source,
		breaker:       breaker,
		probeInterval: defaultProbeInterval,
		logger:        logger,
	}
}

func (b *BreakerSource) Score(ctx context.Context, identity id.Identity) (id.TrustScore, error) {
	if b.breaker.IsOpen() && !b.takeProbe() {
		return 0, derrors.New(derrors.CodeUnavailable, "trust score oracle circuit open")
	}

	score, err := b.source.Score(ctx, identity)
	if err != nil {
		if _, change := b.breaker.RecordFailure(); change.Opened && b.logger != nil {
			b.logger.WarnContext(ctx, "oracle circuit opened", "breaker", b.breaker.Name())
		}
		return 0, err
	}

	if _, change := b.breaker.RecordSuccess(); change.Closed && b.logger != nil {
		b.logger.InfoContext(ctx, "oracle circuit closed", "breaker", b.breaker.Name())
	}
	return score, nil
}

// takeProbe grants at most one call per probe interval while the circuit is
// open.
func (b *BreakerSource) takeProbe() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := time.Now()
	if now.Sub(b.lastProbe) < b.probeInterval {
		return false
	}
	b.lastProbe = now
	return true
}
