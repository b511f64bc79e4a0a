package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/stdlib"

	"respondapi/internal/config"
	"respondapi/internal/database"
	"respondapi/internal/database/migration"
	handlers "respondapi/internal/http/handler"
	"respondapi/internal/repository"
	"respondapi/internal/repository/memory"
	"respondapi/internal/repository/pgxstore"
	"respondapi/internal/repository/postgres"
)

type store struct {
	repo  repository.UserRepository
	ping  handlers.PingFunc
	close func()
}

// openStore connects the configured backend and makes sure its schema exists.
func openStore(ctx context.Context, cfg *config.AppConfig, log *slog.Logger) (*store, error) {
	switch cfg.Store.Backend {
	case config.BackendSQL:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &store{
			repo:  postgres.NewUserPostgres(db),
			ping:  db.PingContext,
			close: func() { _ = db.Close() },
		}, nil

	case config.BackendPgx:
		pool, err := database.NewPgxPool(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		// Migrations run on database/sql; the handle shares the pool's connections.
		if err := migration.EnsureMigrated(ctx, stdlib.OpenDBFromPool(pool), log, cfg.Database.Host); err != nil {
			pool.Close()
			return nil, err
		}
		return &store{
			repo:  pgxstore.NewUserStore(pool),
			ping:  pool.Ping,
			close: pool.Close,
		}, nil

	case config.BackendMemory:
		log.Warn("using in-memory user store, data is lost on restart")
		return &store{repo: memory.NewUserStore(), close: func() {}}, nil

	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q (want %s, %s or %s)",
			cfg.Store.Backend, config.BackendSQL, config.BackendPgx, config.BackendMemory)
	}
}
