// Package store is the cellar store client: per-user CRUD over wine records
// plus a live subscription that pushes the full, ordered cellar every time
// it changes.
//
// Two drivers implement Store:
//
//   - FirestoreStore keeps records at users/{uid}/wines/{id} in Cloud
//     Firestore and relies on query snapshot listeners for live updates.
//   - SQLStore keeps records in SQLite through package repo. Live updates
//     come from a Notifier: the in-process Hub, or RedisNotifier when
//     several replicas share one database.
//
// Writes are fire-and-forget from the caller's perspective: they return once
// the backend accepted them and the resulting state reaches every open
// subscription as a fresh snapshot. There is no offline queue, no write
// batching and no conflict resolution; the last write wins.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-cellar-backend/internal/config"
	"github.com/tbourn/go-cellar-backend/internal/domain"
	"github.com/tbourn/go-cellar-backend/internal/repo"
)

var (
	// ErrNotFound is returned when a wine does not exist for the user.
	ErrNotFound = errors.New("store: wine not found")

	// ErrIncompleteConfig is returned by Open when the document database
	// parameters are missing.
	ErrIncompleteConfig = errors.New("store: incomplete database configuration")
)

// Store is the contract every driver fulfils. All operations are scoped to
// userID; the caller guarantees it is non-empty.
type Store interface {
	// Subscribe opens a live view of the user's cellar. The first event is
	// the current state; every later event is the complete list after a
	// change, ordered by AddedAt descending.
	Subscribe(ctx context.Context, userID string) (*Subscription, error)

	// List returns a one-shot snapshot in subscription order.
	List(ctx context.Context, userID string) ([]domain.Wine, error)

	Get(ctx context.Context, userID, id string) (*domain.Wine, error)

	// Create persists a new record and returns its store-assigned id.
	Create(ctx context.Context, userID string, f domain.WineFields) (string, error)

	// Update merges the non-nil fields of p into the record.
	Update(ctx context.Context, userID, id string, p domain.WinePatch) error

	Delete(ctx context.Context, userID, id string) error

	Close() error
}

// Open builds the Store selected by cfg.Driver, wrapped with metrics.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Driver {
	case config.DriverSQLite:
		s, err = openSQL(ctx, cfg)
	case config.DriverFirestore, "":
		s, err = NewFirestoreStore(ctx, cfg.Firebase)
	default:
		err = fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(s), nil
}

func openSQL(ctx context.Context, cfg config.StoreConfig) (*SQLStore, error) {
	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", cfg.DBPath, err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	var n Notifier = NewHub()
	if addr := strings.TrimSpace(cfg.Redis.Addr); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			if sqlDB, derr := db.DB(); derr == nil {
				_ = sqlDB.Close()
			}
			return nil, fmt.Errorf("redis ping %s: %w", addr, err)
		}
		n = NewRedisNotifier(rdb)
		log.Info().Str("addr", addr).Msg("cellar change feed: redis")
	}
	return NewSQLStore(db, n), nil
}
