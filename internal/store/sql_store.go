package store

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-cellar-backend/internal/domain"
	"github.com/tbourn/go-cellar-backend/internal/repo"
)

// SQLStore is the SQLite-backed driver.
type SQLStore struct {
	db       *gorm.DB
	notifier Notifier
	now      func() time.Time
}

// NewSQLStore returns a store over an already migrated database.
func NewSQLStore(db *gorm.DB, n Notifier) *SQLStore {
	if n == nil {
		n = NewHub()
	}
	return &SQLStore{db: db, notifier: n, now: time.Now}
}

// Subscribe registers with the notifier first and then loads the initial
// snapshot, so a write landing in between is still observed.
func (s *SQLStore) Subscribe(ctx context.Context, userID string) (*Subscription, error) {
	sub := newSubscription(ctx)
	signals, stop, err := s.notifier.Listen(sub.ctx, userID)
	if err != nil {
		sub.finish(err)
		return nil, err
	}

	initial, err := repo.ListWines(sub.ctx, s.db, userID)
	if err != nil {
		stop()
		sub.finish(err)
		return nil, err
	}
	sub.publish(initial)

	go func() {
		defer stop()
		for {
			select {
			case <-sub.ctx.Done():
				sub.finish(nil)
				return
			case _, ok := <-signals:
				if !ok {
					sub.finish(nil)
					return
				}
				ws, err := repo.ListWines(sub.ctx, s.db, userID)
				if err != nil {
					if sub.ctx.Err() != nil {
						sub.finish(nil)
						return
					}
					log.Error().Err(err).Str("user_id", userID).Msg("cellar reload failed")
					sub.finish(err)
					return
				}
				sub.publish(ws)
			}
		}
	}()
	return sub, nil
}

func (s *SQLStore) List(ctx context.Context, userID string) ([]domain.Wine, error) {
	return repo.ListWines(ctx, s.db, userID)
}

func (s *SQLStore) Get(ctx context.Context, userID, id string) (*domain.Wine, error) {
	w, err := repo.GetWine(ctx, s.db, userID, id)
	if err != nil {
		return nil, mapSQLErr(err)
	}
	return w, nil
}

func (s *SQLStore) Create(ctx context.Context, userID string, f domain.WineFields) (string, error) {
	w, err := repo.CreateWine(ctx, s.db, domain.NewWine(userID, f, s.now().UnixMilli()))
	if err != nil {
		return "", err
	}
	s.changed(ctx, userID)
	return w.ID, nil
}

func (s *SQLStore) Update(ctx context.Context, userID, id string, p domain.WinePatch) error {
	if err := repo.UpdateWine(ctx, s.db, userID, id, p); err != nil {
		return mapSQLErr(err)
	}
	s.changed(ctx, userID)
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, userID, id string) error {
	if err := repo.DeleteWine(ctx, s.db, userID, id); err != nil {
		return mapSQLErr(err)
	}
	s.changed(ctx, userID)
	return nil
}

// Close releases the database handle.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// changed signals subscribers. The write already succeeded, so a failed
// signal is logged and not returned.
func (s *SQLStore) changed(ctx context.Context, userID string) {
	if err := s.notifier.Notify(context.WithoutCancel(ctx), userID); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("cellar change signal failed")
	}
}

func mapSQLErr(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
