// ============================================================================
// Dramatica - Scene Language Engine
// ============================================================================
//
// Package:     session
// Description: SQLite-backed durable session store
// Author:      msto63
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package session

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteConfig holds configuration for the SQLite store
type SQLiteConfig struct {
	Path string
	TTL  time.Duration

	// PurgeInterval is how often expired sessions are deleted
	PurgeInterval time.Duration
}

// DefaultSQLiteConfig returns default configuration
func DefaultSQLiteConfig() SQLiteConfig {
	return SQLiteConfig{
		Path:          "./data/sessions.db",
		TTL:           24 * time.Hour,
		PurgeInterval: defaultPurgeInterval,
	}
}

// SQLiteStore keeps suspended sessions across restarts in a SQLite file
type SQLiteStore struct {
	sqlStore
}

// NewSQLiteStore opens (or creates) the database and its schema
func NewSQLiteStore(ctx context.Context, cfg SQLiteConfig) (*SQLiteStore, error) {
	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Open database with WAL mode
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{sqlStore{db: db, ttl: cfg.TTL, rebind: noRebind}}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	store.startPurge(cfg.PurgeInterval)

	return store, nil
}
