package storage

import (
	"context"
	"fmt"

	"docflow/internal/config"
	"docflow/internal/redis"
	"docflow/internal/storage/badger"
	"docflow/internal/storage/firestore"
)

// NewStore opens the backend selected by basic_config.store. Relational
// backends are migrated before use.
func NewStore(ctx context.Context, cfg *config.Config) (Store, error) {
	kind := config.StoreKind(cfg.BasicConfig.Store)
	switch kind {
	case "sqlite3", "mysql", "postgres":
		db, err := Open(kind, cfg)
		if err != nil {
			return nil, err
		}
		if err := Migrate(ctx, db, kind); err != nil {
			db.Close()
			return nil, err
		}
		return NewSQLStore(db, kind), nil
	case "redis":
		client, err := redis.NewRedisClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("create redis client: %w", err)
		}
		return redis.NewDocumentStore(client, cfg.Redis.KeyPrefix), nil
	case "badger":
		store, err := badger.Open(cfg.Badger.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "firestore":
		store, err := firestore.Open(ctx, cfg.Firestore.ProjectID, cfg.Firestore.Collection)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported store: %s", cfg.BasicConfig.Store)
	}
}

var (
	_ Store = (*redis.DocumentStore)(nil)
	_ Store = (*badger.Store)(nil)
	_ Store = (*firestore.Store)(nil)
)
