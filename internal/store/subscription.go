package store

import (
	"context"
	"sync"

	"github.com/tbourn/go-cellar-backend/internal/domain"
	"github.com/tbourn/go-cellar-backend/internal/observability"
)

// Subscription is a live view of one user's cellar.
//
// Events carries full snapshots. The channel holds at most one pending
// snapshot: a consumer that falls behind skips intermediate states and only
// ever sees the latest one. The channel is closed after Cancel, after the
// parent context ends, or when the backend fails; Err tells the cases apart.
type Subscription struct {
	ch     chan []domain.Wine
	ctx    context.Context
	cancel context.CancelFunc

	once sync.Once
	mu   sync.Mutex
	err  error
}

func newSubscription(parent context.Context) *Subscription {
	ctx, cancel := context.WithCancel(parent)
	observability.ActiveSubscriptions.Inc()
	return &Subscription{
		ch:     make(chan []domain.Wine, 1),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Events returns the snapshot channel.
func (s *Subscription) Events() <-chan []domain.Wine { return s.ch }

// Cancel stops the subscription. It is safe to call more than once and from
// any goroutine.
func (s *Subscription) Cancel() { s.cancel() }

// Done is closed once the subscription has been cancelled.
func (s *Subscription) Done() <-chan struct{} { return s.ctx.Done() }

// Err returns the backend error that ended the subscription, or nil when it
// ended by cancellation.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// publish replaces any undelivered snapshot with ws. It must only be called
// from the single producer goroutine.
func (s *Subscription) publish(ws []domain.Wine) {
	for {
		if s.ctx.Err() != nil {
			return
		}
		select {
		case s.ch <- ws:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

// finish closes the channel. Called by the producer when it stops.
func (s *Subscription) finish(err error) {
	s.once.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		s.cancel()
		close(s.ch)
		observability.ActiveSubscriptions.Dec()
	})
}
