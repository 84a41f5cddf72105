// ============================================================================
// Dramatica - Scene Language Engine
// ============================================================================
//
// Package:     session
// Description: database/sql session store shared by SQLite and PostgreSQL
// Author:      msto63
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/msto63/dramatica/foundation/scene/interpreter"
)

// sqlStore persists records in a single sessions table. Programs are
// stored as canonical source and parsed again on load by the Manager.
type sqlStore struct {
	db  *sql.DB
	ttl time.Duration

	// rebind rewrites '?' placeholders for the driver
	rebind func(query string) string

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// defaultPurgeInterval is used when a store is configured without one
const defaultPurgeInterval = time.Minute

// startPurge removes expired sessions every interval until Close. Stores
// without a TTL never expire sessions and run no loop.
func (s *sqlStore) startPurge(interval time.Duration) {
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	if s.ttl <= 0 {
		close(s.done)
		return
	}
	if interval <= 0 {
		interval = defaultPurgeInterval
	}
	go s.purgeLoop(interval)
}

func (s *sqlStore) purgeLoop(interval time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			_, _ = s.Purge(ctx)
			cancel()
		case <-s.stop:
			return
		}
	}
}

const sessionsSchema = `
CREATE TABLE IF NOT EXISTS dramatica_sessions (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	cursor_pos  INTEGER NOT NULL,
	awaiting    TEXT NOT NULL DEFAULT '',
	state       TEXT NOT NULL,
	transcript  TEXT NOT NULL,
	variables   TEXT NOT NULL,
	created_at  BIGINT NOT NULL,
	updated_at  BIGINT NOT NULL,
	expires_at  BIGINT NOT NULL DEFAULT 0
)`

func (s *sqlStore) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sessionsSchema); err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	return nil
}

// Save inserts or replaces a record
func (s *sqlStore) Save(ctx context.Context, rec *Record) error {
	transcript, err := json.Marshal(rec.Transcript)
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	variables, err := encodeVariables(rec.Variables)
	if err != nil {
		return err
	}

	var expires int64
	if s.ttl > 0 {
		expires = time.Now().Add(s.ttl).UnixMilli()
	}

	query := s.rebind(`
		INSERT INTO dramatica_sessions
			(id, source, cursor_pos, awaiting, state, transcript, variables, created_at, updated_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			source = excluded.source,
			cursor_pos = excluded.cursor_pos,
			awaiting = excluded.awaiting,
			state = excluded.state,
			transcript = excluded.transcript,
			variables = excluded.variables,
			updated_at = excluded.updated_at,
			expires_at = excluded.expires_at`)

	_, err = s.db.ExecContext(ctx, query,
		rec.ID, rec.Source, rec.Cursor, rec.Awaiting, rec.State.String(),
		string(transcript), variables,
		rec.CreatedAt.UnixMilli(), rec.UpdatedAt.UnixMilli(), expires,
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", rec.ID, err)
	}
	return nil
}

// Load returns the record for id; expired records are removed and
// reported as ErrNotFound
func (s *sqlStore) Load(ctx context.Context, id string) (*Record, error) {
	query := s.rebind(`
		SELECT source, cursor_pos, awaiting, state, transcript, variables, created_at, updated_at, expires_at
		FROM dramatica_sessions WHERE id = ?`)

	var (
		rec                  = &Record{ID: id}
		state                string
		transcript           string
		variables            string
		created, updated, ex int64
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&rec.Source, &rec.Cursor, &rec.Awaiting, &state, &transcript, &variables,
		&created, &updated, &ex,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	if ex > 0 && time.Now().UnixMilli() > ex {
		_ = s.Delete(ctx, id)
		return nil, ErrNotFound
	}

	var ok bool
	if rec.State, ok = interpreter.ParseState(state); !ok {
		return nil, fmt.Errorf("load session %s: unknown state %q", id, state)
	}
	if err := json.Unmarshal([]byte(transcript), &rec.Transcript); err != nil {
		return nil, fmt.Errorf("load session %s: decode transcript: %w", id, err)
	}
	if rec.Variables, err = decodeVariables(variables); err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	rec.CreatedAt = time.UnixMilli(created)
	rec.UpdatedAt = time.UnixMilli(updated)

	return rec, nil
}

// Delete removes a record
func (s *sqlStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM dramatica_sessions WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Purge removes all expired sessions and returns how many were deleted
func (s *sqlStore) Purge(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		s.rebind(`DELETE FROM dramatica_sessions WHERE expires_at > 0 AND expires_at < ?`),
		time.Now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return res.RowsAffected()
}

// Ping checks the database connection
func (s *sqlStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close stops the purge loop and closes the database
func (s *sqlStore) Close() error {
	s.closeOnce.Do(func() {
		if s.stop != nil {
			close(s.stop)
			<-s.done
		}
	})
	return s.db.Close()
}

// noRebind keeps '?' placeholders
func noRebind(query string) string { return query }

// dollarRebind numbers placeholders as $1, $2, ...
func dollarRebind(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
