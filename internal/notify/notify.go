// Package notify delivers fire-and-forget user notifications.
//
// The welcome email must never block and never fail user sign-up, so it is
// modeled as an explicit post-commit event: services publish after the user
// row is committed, a worker goroutine sends asynchronously, and every
// failure is logged and swallowed.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/supavacation/supavacation/internal/mailer"
	"github.com/supavacation/supavacation/internal/metrics"
	"github.com/supavacation/supavacation/internal/model"
)

const (
	// DefaultQueueSize is the buffered event queue capacity. When the queue
	// is full, events are dropped and counted, never blocked on.
	DefaultQueueSize = 256

	// DefaultSendTimeout bounds a single email send attempt.
	DefaultSendTimeout = 15 * time.Second
)

// Notifier queues and delivers welcome notifications.
type Notifier struct {
	mailer  mailer.Mailer
	logger  *slog.Logger
	metrics metrics.Recorder

	queue chan model.User
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// New creates a Notifier and starts its delivery worker.
func New(m mailer.Mailer, logger *slog.Logger, recorder metrics.Recorder) *Notifier {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	n := &Notifier{
		mailer:  m,
		logger:  logger.With("component", "notify"),
		metrics: recorder,
		queue:   make(chan model.User, DefaultQueueSize),
	}

	n.wg.Add(1)
	go n.run()

	return n
}

// PublishWelcome enqueues a welcome email for a newly created user. Callers
// invoke this only after the user row has been committed, and only for the
// create event, so the welcome fires exactly once per user.
//
// Never blocks: if the queue is full the event is dropped and logged.
func (n *Notifier) PublishWelcome(user model.User) {
	n.mu.Lock()
	defer n.mu.Unlock()

	// The lock also orders this send against Close closing the queue.
	if n.closed {
		n.logger.Warn("welcome notification dropped, notifier closed", "email", user.Email)
		n.metrics.IncWelcomeEmail("dropped")
		return
	}

	select {
	case n.queue <- user:
	default:
		n.logger.Warn("welcome notification dropped, queue full", "email", user.Email)
		n.metrics.IncWelcomeEmail("dropped")
	}
}

// run is the delivery loop. It exits when the queue is closed and drained.
func (n *Notifier) run() {
	defer n.wg.Done()

	for user := range n.queue {
		ctx, cancel := context.WithTimeout(context.Background(), DefaultSendTimeout)
		err := n.mailer.SendWelcome(ctx, user.Email)
		cancel()

		if err != nil {
			// Delivery failure is terminal for this event: logged, counted,
			// never retried, never surfaced to the user.
			n.logger.Error("unable to send welcome email",
				"email", user.Email,
				"error", err,
			)
			n.metrics.IncWelcomeEmail("failed")
			continue
		}

		n.logger.Info("welcome email sent", "email", user.Email)
		n.metrics.IncWelcomeEmail("sent")
	}
}

// Close stops accepting events and waits for queued deliveries to drain,
// up to the context deadline.
func (n *Notifier) Close(ctx context.Context) error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	close(n.queue)
	n.mu.Unlock()

	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.New("notifier shutdown timed out with deliveries pending")
	}
}
