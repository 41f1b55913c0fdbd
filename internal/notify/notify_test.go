package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/supavacation/supavacation/internal/metrics"
	"github.com/supavacation/supavacation/internal/model"
)

// blockingMailer records welcome sends and can fail or stall on demand.
type blockingMailer struct {
	mu      sync.Mutex
	sent    []string
	sendErr error
	block   chan struct{}
}

func (m *blockingMailer) SendSignInLink(ctx context.Context, email, signInURL string) error {
	return nil
}

func (m *blockingMailer) SendWelcome(ctx context.Context, email string) error {
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if m.sendErr != nil {
		return m.sendErr
	}
	m.mu.Lock()
	m.sent = append(m.sent, email)
	m.mu.Unlock()
	return nil
}

func (m *blockingMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNotifier_DeliversWelcome(t *testing.T) {
	m := &blockingMailer{}
	n := New(m, quietLogger(), nil)

	n.PublishWelcome(model.User{ID: "u1", Email: "lena@example.com"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := n.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	if m.sentCount() != 1 {
		t.Fatalf("expected 1 welcome email, got %d", m.sentCount())
	}
	if m.sent[0] != "lena@example.com" {
		t.Errorf("welcome sent to wrong address: %s", m.sent[0])
	}
}

func TestNotifier_FailureIsSwallowed(t *testing.T) {
	m := &blockingMailer{sendErr: errors.New("smtp unavailable")}
	recorder := metrics.NewInMemory()
	n := New(m, quietLogger(), recorder)

	// Publishing never returns an error, even when delivery will fail.
	n.PublishWelcome(model.User{ID: "u1", Email: "lena@example.com"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := n.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	snap := recorder.Snapshot()
	if snap.WelcomeEmailsFailed != 1 {
		t.Errorf("expected 1 failed delivery recorded, got %d", snap.WelcomeEmailsFailed)
	}
	if snap.WelcomeEmailsSent != 0 {
		t.Errorf("expected 0 sent, got %d", snap.WelcomeEmailsSent)
	}
}

func TestNotifier_CloseDrainsQueue(t *testing.T) {
	m := &blockingMailer{}
	n := New(m, quietLogger(), nil)

	for i := 0; i < 20; i++ {
		n.PublishWelcome(model.User{ID: "u", Email: "user@example.com"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := n.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	if m.sentCount() != 20 {
		t.Errorf("expected 20 deliveries after drain, got %d", m.sentCount())
	}
}

func TestNotifier_PublishAfterCloseIsDropped(t *testing.T) {
	m := &blockingMailer{}
	recorder := metrics.NewInMemory()
	n := New(m, quietLogger(), recorder)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := n.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Must not panic on the closed queue.
	n.PublishWelcome(model.User{ID: "u1", Email: "late@example.com"})

	if m.sentCount() != 0 {
		t.Errorf("expected no deliveries, got %d", m.sentCount())
	}
	if recorder.Snapshot().WelcomeEmailsDropped != 1 {
		t.Errorf("expected 1 dropped, got %d", recorder.Snapshot().WelcomeEmailsDropped)
	}
}

func TestNotifier_CloseTimesOutOnStuckDelivery(t *testing.T) {
	m := &blockingMailer{block: make(chan struct{})}
	n := New(m, quietLogger(), nil)

	n.PublishWelcome(model.User{ID: "u1", Email: "stuck@example.com"})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := n.Close(ctx); err == nil {
		t.Error("expected timeout error from Close")
	}

	close(m.block)
}
