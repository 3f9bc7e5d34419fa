package store

import (
	"context"
	"errors"

	"github.com/tbourn/go-cellar-backend/internal/domain"
	"github.com/tbourn/go-cellar-backend/internal/observability"
)

// instrumented counts every call in cellar_store_ops_total.
type instrumented struct {
	next Store
}

// Instrument wraps s with Prometheus operation counters.
func Instrument(s Store) Store {
	if _, ok := s.(*instrumented); ok {
		return s
	}
	return &instrumented{next: s}
}

func record(op string, err error) {
	outcome := observability.OutcomeOK
	switch {
	case errors.Is(err, ErrNotFound):
		outcome = observability.OutcomeNotFound
	case err != nil:
		outcome = observability.OutcomeError
	}
	observability.StoreOps.WithLabelValues(op, outcome).Inc()
}

func (i *instrumented) Subscribe(ctx context.Context, userID string) (*Subscription, error) {
	sub, err := i.next.Subscribe(ctx, userID)
	record("subscribe", err)
	return sub, err
}

func (i *instrumented) List(ctx context.Context, userID string) ([]domain.Wine, error) {
	ws, err := i.next.List(ctx, userID)
	record("list", err)
	return ws, err
}

func (i *instrumented) Get(ctx context.Context, userID, id string) (*domain.Wine, error) {
	w, err := i.next.Get(ctx, userID, id)
	record("get", err)
	return w, err
}

func (i *instrumented) Create(ctx context.Context, userID string, f domain.WineFields) (string, error) {
	id, err := i.next.Create(ctx, userID, f)
	record("create", err)
	return id, err
}

func (i *instrumented) Update(ctx context.Context, userID, id string, p domain.WinePatch) error {
	err := i.next.Update(ctx, userID, id, p)
	record("update", err)
	return err
}

func (i *instrumented) Delete(ctx context.Context, userID, id string) error {
	err := i.next.Delete(ctx, userID, id)
	record("delete", err)
	return err
}

func (i *instrumented) Close() error { return i.next.Close() }
