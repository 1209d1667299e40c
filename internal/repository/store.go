// Package repository opens the registration ledger selected by configuration.
package repository

import (
	"context"
	"fmt"

	"eventhub/config"
	"eventhub/internal/domain"
	"eventhub/internal/repository/mongodb"
	"eventhub/internal/repository/postgres"
	"eventhub/internal/repository/sqlite"
)

// Store bundles the repositories of one backend with its lifecycle hooks.
type Store struct {
	Events        domain.EventRepository
	Users         domain.UserRepository
	Registrations domain.RegistrationRepository
	Ping          func(ctx context.Context) error
	Close         func(ctx context.Context) error
}

// Open connects to the configured backend and prepares its schema.
func Open(ctx context.Context, cfg config.StoreConfig) (*Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.DBUrl)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return &Store{
			Events:        postgres.NewEventRepository(db),
			Users:         postgres.NewUserRepository(db),
			Registrations: postgres.NewRegistrationRepository(db),
			Ping:          db.PingContext,
			Close:         func(context.Context) error { return db.Close() },
		}, nil
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := sqlite.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		return &Store{
			Events:        sqlite.NewEventRepository(db),
			Users:         sqlite.NewUserRepository(db),
			Registrations: sqlite.NewRegistrationRepository(db),
			Ping:          db.PingContext,
			Close:         func(context.Context) error { return db.Close() },
		}, nil
	case config.DriverMongo:
		client, err := mongodb.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDatabase)
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		return &Store{
			Events:        mongodb.NewEventRepository(db),
			Users:         mongodb.NewUserRepository(db),
			Registrations: mongodb.NewRegistrationRepository(db),
			Ping:          func(ctx context.Context) error { return client.Ping(ctx, nil) },
			Close:         client.Disconnect,
		}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
