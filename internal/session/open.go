// ============================================================================
// Dramatica - Scene Language Engine
// ============================================================================
//
// Package:     session
// Description: Store selection from configuration
// Author:      msto63
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package session

import (
	"context"
	"fmt"
	"time"
)

// Backend names accepted by Open
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config selects and configures a store
type Config struct {
	Backend     string
	Path        string // SQLite file
	DSN         string // PostgreSQL connection string
	TTL         time.Duration
	MaxSessions int

	// PurgeInterval is how often expired sessions are swept; zero uses
	// the backend default
	PurgeInterval time.Duration
}

// Open creates the store named by cfg.Backend
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		mc := DefaultMemoryConfig()
		mc.TTL = cfg.TTL
		if cfg.PurgeInterval > 0 {
			mc.CleanupInterval = cfg.PurgeInterval
		}
		if cfg.MaxSessions > 0 {
			mc.MaxSessions = cfg.MaxSessions
		}
		return NewMemoryStore(mc), nil
	case BackendSQLite:
		sc := DefaultSQLiteConfig()
		if cfg.Path != "" {
			sc.Path = cfg.Path
		}
		sc.TTL = cfg.TTL
		if cfg.PurgeInterval > 0 {
			sc.PurgeInterval = cfg.PurgeInterval
		}
		return NewSQLiteStore(ctx, sc)
	case BackendPostgres:
		return NewPostgresStore(ctx, PostgresConfig{DSN: cfg.DSN, TTL: cfg.TTL, PurgeInterval: cfg.PurgeInterval})
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}
