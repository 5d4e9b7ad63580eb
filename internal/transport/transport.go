// Package transport selects the submission backend from configuration.
package transport

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/proposals/internal/config"
	"github.com/JonMunkholm/proposals/internal/core"
	"github.com/JonMunkholm/proposals/internal/transport/httpsink"
	"github.com/JonMunkholm/proposals/internal/transport/natssink"
	"github.com/JonMunkholm/proposals/internal/transport/pgsink"
)

// Backend is an open transmitter plus whatever must be closed with it.
type Backend struct {
	core.Transmitter
	Name  string
	close func()
}

// Close releases connections held by the backend.
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// Open connects the backend named by cfg.Transmit.Backend. clientName
// identifies this process to brokers.
func Open(ctx context.Context, cfg *config.Config, clientName string) (*Backend, error) {
	switch strings.ToLower(cfg.Transmit.Backend) {
	case config.BackendHTTP, "":
		sink, err := httpsink.New(httpsink.Config{
			URL:          cfg.Transmit.Endpoint(),
			ReadResponse: cfg.Transmit.ReadResponse,
			Timeout:      cfg.Transmit.Timeout,
		}, nil)
		if err != nil {
			return nil, err
		}
		slog.Info("transmit backend ready", "backend", config.BackendHTTP, "read_response", cfg.Transmit.ReadResponse)
		return &Backend{Transmitter: sink, Name: config.BackendHTTP}, nil

	case config.BackendPostgres:
		pool, err := openPool(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		sink := pgsink.New(pool, cfg.Database.Table)
		if err := sink.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		slog.Info("transmit backend ready", "backend", config.BackendPostgres, "table", cfg.Database.Table)
		return &Backend{Transmitter: sink, Name: config.BackendPostgres, close: pool.Close}, nil

	case config.BackendNATS:
		nc, err := natssink.Connect(cfg.NATS.URL, clientName, cfg.NATS.Timeout)
		if err != nil {
			return nil, err
		}
		slog.Info("transmit backend ready", "backend", config.BackendNATS, "subject", cfg.NATS.Subject)
		return &Backend{
			Transmitter: natssink.New(nc, cfg.NATS.Subject),
			Name:        config.BackendNATS,
			close: func() {
				if err := nc.Drain(); err != nil {
					slog.Warn("nats drain failed", "error", err)
				}
			},
		}, nil
	}
	return nil, fmt.Errorf("unknown transmit backend %q", cfg.Transmit.Backend)
}

func openPool(ctx context.Context, db config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(db.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(db.MaxConns)
	poolConfig.MinConns = int32(db.MinConns)
	poolConfig.MaxConnLifetime = db.MaxConnLifetime
	poolConfig.MaxConnIdleTime = db.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
