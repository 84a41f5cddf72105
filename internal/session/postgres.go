// ============================================================================
// Dramatica - Scene Language Engine
// ============================================================================
//
// Package:     session
// Description: PostgreSQL-backed durable session store
// Author:      msto63
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package session

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresConfig holds configuration for the PostgreSQL store
type PostgresConfig struct {
	DSN           string
	TTL           time.Duration
	MaxOpenConns  int
	PurgeInterval time.Duration
}

// PostgresStore shares suspended sessions between server replicas
type PostgresStore struct {
	sqlStore
	endpoint string
}

// NewPostgresStore connects, pings and creates the schema
func NewPostgresStore(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	store := &PostgresStore{
		sqlStore: sqlStore{db: db, ttl: cfg.TTL, rebind: dollarRebind},
		endpoint: dsnEndpoint(cfg.DSN),
	}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	store.startPurge(cfg.PurgeInterval)

	return store, nil
}

// Endpoint returns the host:port of the database server, or "" when the
// DSN names a unix socket
func (s *PostgresStore) Endpoint() string {
	return s.endpoint
}

func dsnEndpoint(dsn string) string {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil || cfg.Host == "" || strings.HasPrefix(cfg.Host, "/") {
		return ""
	}
	return net.JoinHostPort(cfg.Host, strconv.Itoa(int(cfg.Port)))
}
