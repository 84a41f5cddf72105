// ============================================================================
// Dramatica - Scene Language Engine
// ============================================================================
//
// Package:     session
// Description: Persistence contract for suspended scene executions
// Author:      msto63
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/msto63/dramatica/foundation/scene/ast"
	"github.com/msto63/dramatica/foundation/scene/interpreter"
)

// ErrNotFound is returned by stores for unknown or expired session ids
var ErrNotFound = errors.New("session not found")

// Store persists suspended executions between requests
type Store interface {
	// Save inserts or replaces a record
	Save(ctx context.Context, rec *Record) error

	// Load returns the record for id or ErrNotFound
	Load(ctx context.Context, id string) (*Record, error)

	// Delete removes a record; deleting an unknown id returns ErrNotFound
	Delete(ctx context.Context, id string) error

	// Close releases the store's resources
	Close() error
}

// Record is the persisted cursor of one suspended execution
type Record struct {
	ID         string                 `json:"id"`
	Source     string                 `json:"source"`
	Program    *ast.Program           `json:"-"`
	Cursor     int                    `json:"cursor"`
	Awaiting   string                 `json:"awaiting"`
	State      interpreter.State      `json:"state"`
	Transcript []string               `json:"transcript"`
	Variables  []interpreter.Variable `json:"variables"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

// Snapshot returns the execution snapshot held by the record
func (r *Record) Snapshot() interpreter.Snapshot {
	return interpreter.Snapshot{
		Cursor:     r.Cursor,
		Awaiting:   r.Awaiting,
		State:      r.State,
		Transcript: r.Transcript,
		Variables:  r.Variables,
	}
}

// clone copies the record so stored data is never aliased by callers.
// The program is shared since it is never mutated after parsing.
func (r *Record) clone() *Record {
	c := *r
	c.Transcript = append([]string(nil), r.Transcript...)
	c.Variables = append([]interpreter.Variable(nil), r.Variables...)
	return &c
}

// storedVariable is the durable form of a variable; the kind is kept so
// REAL 2.0 does not come back as INTEGER 2.
type storedVariable struct {
	Name  string           `json:"name"`
	Kind  interpreter.Kind `json:"kind"`
	Value string           `json:"value"`
}

func encodeVariables(vars []interpreter.Variable) (string, error) {
	stored := make([]storedVariable, len(vars))
	for i, v := range vars {
		stored[i] = storedVariable{Name: v.Name, Kind: v.Value.Kind(), Value: v.Value.String()}
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return "", fmt.Errorf("encode variables: %w", err)
	}
	return string(data), nil
}

func decodeVariables(data string) ([]interpreter.Variable, error) {
	var stored []struct {
		Name  string `json:"name"`
		Kind  string `json:"kind"`
		Value string `json:"value"`
	}
	if err := json.Unmarshal([]byte(data), &stored); err != nil {
		return nil, fmt.Errorf("decode variables: %w", err)
	}

	vars := make([]interpreter.Variable, 0, len(stored))
	for _, s := range stored {
		kind, ok := interpreter.ParseKind(s.Kind)
		if !ok {
			return nil, fmt.Errorf("decode variables: unknown kind %q for '%s'", s.Kind, s.Name)
		}
		value, err := interpreter.Restore(kind, s.Value)
		if err != nil {
			return nil, fmt.Errorf("decode variables: %w", err)
		}
		vars = append(vars, interpreter.Variable{Name: s.Name, Value: value})
	}
	return vars, nil
}
