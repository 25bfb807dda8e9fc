package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// NotificationDispatcher sends notifications in the background. A failed notification is
// logged and dropped; it never fails the operation that triggered it.
type NotificationDispatcher struct {
	logger  *slog.Logger
	sem     *semaphore.Weighted
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewNotificationDispatcher bounds concurrent sends to maxInFlight and each send to timeout.
func NewNotificationDispatcher(logger *slog.Logger, maxInFlight int64, timeout time.Duration) *NotificationDispatcher {
	if maxInFlight <= 0 {
		maxInFlight = 1
	}
	return &NotificationDispatcher{
		logger:  logger,
		sem:     semaphore.NewWeighted(maxInFlight),
		timeout: timeout,
	}
}

// Dispatch runs send in its own goroutine. The request context's values are kept but its
// cancellation is not, so the send outlives the request.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, kind, recipient string, send func(ctx context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if d.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d.timeout)
			defer cancel()
		}
		if err := d.sem.Acquire(ctx, 1); err != nil {
			d.logger.WarnContext(ctx, "notification dropped", "kind", kind, "to", recipient, "err", err)
			return
		}
		defer d.sem.Release(1)
		if err := send(ctx); err != nil {
			d.logger.WarnContext(ctx, "notification failed", "kind", kind, "to", recipient, "err", err)
			return
		}
		d.logger.DebugContext(ctx, "notification sent", "kind", kind, "to", recipient)
	}()
}

// Wait blocks until every dispatched notification has finished.
func (d *NotificationDispatcher) Wait() {
	d.wg.Wait()
}
