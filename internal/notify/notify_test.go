package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shubhanshu-a32/katelog/internal/domain/delivery"
)

type captureSender struct {
	mu   sync.Mutex
	sent []delivery.Notification
	err  error
	done chan struct{}
}

func (s *captureSender) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *captureSender) Send(_ context.Context, n delivery.Notification) error {
	s.mu.Lock()
	if s.err != nil {
		err := s.err
		s.mu.Unlock()
		return err
	}
	s.sent = append(s.sent, n)
	s.mu.Unlock()
	select {
	case s.done <- struct{}{}:
	default:
	}
	return nil
}

func TestDispatcher_DeliversAsync(t *testing.T) {
	sender := &captureSender{done: make(chan struct{}, 1)}
	d := NewDispatcher(sender, zap.NewNop(), 16, 1)

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	err := d.Notify(context.Background(), delivery.Notification{RecipientID: "u1", Title: "hi"})
	require.NoError(t, err)

	select {
	case <-sender.done:
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not delivered")
	}

	sender.mu.Lock()
	defer sender.mu.Unlock()
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "u1", sender.sent[0].RecipientID)

	cancel()
	d.Stop()
}

func TestDispatcher_QueueFull(t *testing.T) {
	// No workers running: the queue fills and further messages are rejected.
	d := NewDispatcher(&captureSender{done: make(chan struct{}, 1)}, zap.NewNop(), 1, 1)

	require.NoError(t, d.Notify(context.Background(), delivery.Notification{RecipientID: "u1"}))
	err := d.Notify(context.Background(), delivery.Notification{RecipientID: "u2"})
	require.ErrorIs(t, err, ErrQueueFull)
}

func TestDispatcher_SendFailureDoesNotStopWorkers(t *testing.T) {
	sender := &captureSender{err: assert.AnError, done: make(chan struct{}, 1)}
	d := NewDispatcher(sender, zap.NewNop(), 16, 2)

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	defer func() {
		cancel()
		d.Stop()
	}()

	require.NoError(t, d.Notify(context.Background(), delivery.Notification{RecipientID: "u1"}))

	// Let the failing send happen, then verify the worker still drains.
	time.Sleep(50 * time.Millisecond)
	sender.setErr(nil)
	require.NoError(t, d.Notify(context.Background(), delivery.Notification{RecipientID: "u2"}))

	select {
	case <-sender.done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker stopped after a failed send")
	}
}
