package store

import (
	"context"
	"fmt"

	"github.com/credvault/credvault/internal/config"
	"github.com/credvault/credvault/internal/logger"
	"github.com/credvault/credvault/migrations"
)

// Storages aggregates every persistence backend used by the server.
type Storages struct {
	UserRepository     UserRepository
	EntryRepository    EntryRepository
	DenyListRepository DenyListRepository
	PendingLogins      PendingLoginStore
}

// NewStorages connects to PostgreSQL, applies pending migrations, and wires
// all repositories plus the in-memory pending-login store.
func NewStorages(ctx context.Context, cfg config.Storage, log *logger.Logger) (Storages, error) {
	db, err := NewConnectPostgres(ctx, cfg.DB, log)
	if err != nil {
		return Storages{}, fmt.Errorf("connecting storage: %w", err)
	}

	if err := migrations.Migrate(db.DB); err != nil {
		return Storages{}, fmt.Errorf("migrating storage: %w", err)
	}

	return Storages{
		UserRepository:     NewUserRepository(db, log),
		EntryRepository:    NewEntryRepository(db, log),
		DenyListRepository: NewDenyListRepository(db, log),
		PendingLogins:      NewPendingLoginStore(cfg.PendingLoginTTL),
	}, nil
}
