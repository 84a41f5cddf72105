// ============================================================================
// Dramatica - Scene Language Engine
// ============================================================================
//
// Package:     session
// Description: In-memory session store with TTL eviction
// Author:      msto63
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package session

import (
	"context"
	"sync"
	"time"
)

// memoryEntry represents a stored record with expiration
type memoryEntry struct {
	record     *Record
	expiration time.Time
}

// isExpired checks if the entry has expired
func (e *memoryEntry) isExpired(now time.Time) bool {
	if e.expiration.IsZero() {
		return false // Never expires
	}
	return now.After(e.expiration)
}

// MemoryConfig holds memory store configuration
type MemoryConfig struct {
	MaxSessions     int
	TTL             time.Duration // zero keeps sessions until resumed
	CleanupInterval time.Duration
}

// DefaultMemoryConfig returns default memory store configuration
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		MaxSessions:     10000,
		TTL:             30 * time.Minute,
		CleanupInterval: time.Minute,
	}
}

// MemoryStore is a process-local Store. Suspended sessions are lost on
// restart.
type MemoryStore struct {
	mu          sync.RWMutex
	items       map[string]*memoryEntry
	maxSessions int
	ttl         time.Duration

	stop      chan struct{}
	closeOnce sync.Once
}

// NewMemoryStore creates a memory store and starts its cleanup loop
func NewMemoryStore(cfg MemoryConfig) *MemoryStore {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 10000
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}

	s := &MemoryStore{
		items:       make(map[string]*memoryEntry),
		maxSessions: cfg.MaxSessions,
		ttl:         cfg.TTL,
		stop:        make(chan struct{}),
	}

	go s.cleanupLoop(cfg.CleanupInterval)

	return s
}

// Save stores a copy of the record, evicting the oldest session when full
func (s *MemoryStore) Save(ctx context.Context, rec *Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[rec.ID]; !exists && len(s.items) >= s.maxSessions {
		s.evictOldest()
	}

	var exp time.Time
	if s.ttl > 0 {
		exp = time.Now().Add(s.ttl)
	}
	s.items[rec.ID] = &memoryEntry{record: rec.clone(), expiration: exp}
	return nil
}

// Load returns a copy of the stored record
func (s *MemoryStore) Load(ctx context.Context, id string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	entry, exists := s.items[id]
	s.mu.RUnlock()

	if !exists {
		return nil, ErrNotFound
	}
	if entry.isExpired(time.Now()) {
		s.mu.Lock()
		delete(s.items, id)
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	return entry.record.clone(), nil
}

// Delete removes a record
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[id]; !exists {
		return ErrNotFound
	}
	delete(s.items, id)
	return nil
}

// Len returns the number of stored sessions, including expired ones not
// yet cleaned up
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Close stops the cleanup loop
func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() { close(s.stop) })
	return nil
}

// evictOldest removes the least recently saved session (caller holds lock)
func (s *MemoryStore) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, entry := range s.items {
		if oldestID == "" || entry.record.UpdatedAt.Before(oldest) {
			oldestID = id
			oldest = entry.record.UpdatedAt
		}
	}
	if oldestID != "" {
		delete(s.items, oldestID)
	}
}

// cleanupLoop periodically removes expired sessions
func (s *MemoryStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.removeExpired()
		case <-s.stop:
			return
		}
	}
}

func (s *MemoryStore) removeExpired() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.items {
		if entry.isExpired(now) {
			delete(s.items, id)
		}
	}
}
