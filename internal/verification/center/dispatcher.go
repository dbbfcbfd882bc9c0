package center

import (
	"context"
	"log/slog"
	"time"
)

// Dispatcher feeds decision commands to the center from a buffered channel so
// trigger calls never block on center latency. The center may take seconds to
// minutes; the caller only needs the command accepted.
type Dispatcher struct {
	inbox  chan DecisionCommand
	logger *slog.Logger
}

func NewDispatcher(buffer int, logger *slog.Logger) *Dispatcher {
	if buffer <= 0 {
		buffer = 64
	}
	return &Dispatcher{
		inbox:  make(chan DecisionCommand, buffer),
		logger: logger,
	}
}

// Enqueue hands a command to the worker. Never blocks; when the buffer is
// full the command is dropped with a warning. The request stays pending and
// the trigger can be retried, withdrawal remains the escape hatch.
func (d *Dispatcher) Enqueue(ctx context.Context, cmd DecisionCommand) {
	select {
	case d.inbox <- cmd:
	default:
		if d.logger != nil {
			d.logger.WarnContext(ctx, "dispatch buffer full, dropping decision command",
				"request_id", cmd.RequestID.String(),
			)
		}
	}
}

// Inbox exposes the receive side for the worker.
func (d *Dispatcher) Inbox() <-chan DecisionCommand {
	return d.inbox
}

// Worker delivers queued decision commands to the center.
type Worker struct {
	requester DecisionRequester
	inbox     <-chan DecisionCommand
	logger    *slog.Logger
}

func NewWorker(requester DecisionRequester, inbox <-chan DecisionCommand, logger *slog.Logger) *Worker {
	return &Worker{requester: requester, inbox: inbox, logger: logger}
}

// Run consumes commands until the context is cancelled. Delivery failures are
// logged and the request stays pending; there is no timeout-driven
// auto-decline, withdraw is the only cancellation path.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-w.inbox:
			w.deliver(ctx, cmd)
		}
	}
}

func (w *Worker) deliver(ctx context.Context, cmd DecisionCommand) {
	deliverCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := w.requester.RequestDecision(deliverCtx, cmd); err != nil {
		if w.logger != nil {
			w.logger.ErrorContext(ctx, "failed to deliver decision command",
				"request_id", cmd.RequestID.String(),
				"error", err,
			)
		}
		return
	}
	if w.logger != nil {
		w.logger.InfoContext(ctx, "decision command delivered",
			"request_id", cmd.RequestID.String(),
		)
	}
}
