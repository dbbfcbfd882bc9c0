package audit_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "giggate/pkg/domain"
	"giggate/pkg/platform/audit"
	auditmem "giggate/pkg/platform/audit/store/memory"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublisherWorkerRoundTrip(t *testing.T) {
	store := auditmem.New()
	publisher := audit.NewPublisher(8, discardLogger())
	worker := audit.NewWorker(store, publisher.Inbox(), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = worker.Run(ctx)
	}()

	identity := id.Identity("0xab5801a7d398351b8be11c439e05c5b3259aec9b")
	publisher.Emit(context.Background(), audit.Event{
		Identity: identity,
		Action:   audit.ActionGigCreated,
		Subject:  "gig-1",
	})

	require.Eventually(t, func() bool {
		events, err := store.ListByIdentity(context.Background(), identity)
		return err == nil && len(events) == 1
	}, time.Second, 10*time.Millisecond)

	events, err := store.ListByIdentity(context.Background(), identity)
	require.NoError(t, err)
	assert.Equal(t, audit.ActionGigCreated, events[0].Action)
	assert.False(t, events[0].Timestamp.IsZero(), "worker input should carry a stamped timestamp")

	cancel()
	<-done
}

func TestPublisherNeverBlocksWhenBufferFull(t *testing.T) {
	// No worker draining: fill the buffer past capacity and make sure Emit
	// returns anyway.
	publisher := audit.NewPublisher(2, discardLogger())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			publisher.Emit(context.Background(), audit.Event{Action: audit.ActionEligibilityEvaluated})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a full buffer")
	}
}

func TestWorkerDrainsOnShutdown(t *testing.T) {
	store := auditmem.New()
	publisher := audit.NewPublisher(8, discardLogger())
	worker := audit.NewWorker(store, publisher.Inbox(), discardLogger())

	for i := 0; i < 5; i++ {
		publisher.Emit(context.Background(), audit.Event{Action: audit.ActionVerificationSubmitted})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // already cancelled: Run must still drain the buffered events

	err := worker.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, store.All(), 5)
}
