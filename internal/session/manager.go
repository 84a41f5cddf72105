// ============================================================================
// Dramatica - Scene Language Engine
// ============================================================================
//
// Package:     session
// Description: Interactive execution manager (begin / resume)
// Author:      msto63
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	mdwerror "github.com/msto63/dramatica/foundation/core/error"
	mdwlog "github.com/msto63/dramatica/foundation/core/log"
	"github.com/msto63/dramatica/foundation/scene"
	"github.com/msto63/dramatica/foundation/scene/ast"
	"github.com/msto63/dramatica/foundation/scene/interpreter"
)

// Status is the externally visible state of a session
type Status string

const (
	StatusSuspended Status = "suspended"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// ErrorInfo describes why a session failed
type ErrorInfo struct {
	Code    mdwerror.Code `json:"code"`
	Message string        `json:"message"`
}

// Response is returned by Begin and Resume
type Response struct {
	SessionID string                 `json:"session_id"`
	Status    Status                 `json:"status"`
	Output    string                 `json:"output"`
	Awaiting  string                 `json:"awaiting,omitempty"`
	Variables []interpreter.Variable `json:"variables,omitempty"`
	Error     *ErrorInfo             `json:"error,omitempty"`
}

// Options configures a Manager
type Options struct {
	Store  Store
	Engine *scene.Engine
	Logger *mdwlog.Logger
}

// Manager runs interactive executions and keeps suspended ones in a Store
type Manager struct {
	store  Store
	engine *scene.Engine
	logger *mdwlog.Logger
	locks  *keyedMutex
}

// NewManager creates a manager. Without a store a MemoryStore with
// default configuration is used.
func NewManager(opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}
	if opts.Store == nil {
		opts.Store = NewMemoryStore(DefaultMemoryConfig())
	}
	if opts.Engine == nil {
		opts.Engine = scene.New(scene.Options{Logger: opts.Logger})
	}

	return &Manager{
		store:  opts.Store,
		engine: opts.Engine,
		logger: opts.Logger.WithField("component", "session-manager"),
		locks:  newKeyedMutex(),
	}
}

// Store returns the underlying store
func (m *Manager) Store() Store { return m.store }

// Engine returns the engine used to compile session sources
func (m *Manager) Engine() *scene.Engine { return m.engine }

// BeginSource compiles source and begins it. Compilation failures are
// returned as errors; scene.Classify maps them to codes.
func (m *Manager) BeginSource(ctx context.Context, source string) (*Response, error) {
	program, err := m.engine.Compile(source)
	if err != nil {
		return nil, err
	}
	return m.Begin(ctx, program)
}

// Begin starts an interactive execution of program. A suspended
// execution is saved under the returned session id; completed and failed
// executions are not kept.
func (m *Manager) Begin(ctx context.Context, program *ast.Program) (*Response, error) {
	id := uuid.NewString()
	logger := m.logger.WithSessionID(id)

	exec := interpreter.NewExecution(program, interpreter.Options{Logger: logger})
	st := exec.Start()

	logger.Info("Session started", mdwlog.Fields{
		"scene": program.Scene,
		"state": st.State.String(),
	})

	if st.State == interpreter.StateSuspended {
		now := time.Now()
		rec := &Record{
			ID:        id,
			Source:    program.String(),
			Program:   program,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := m.save(ctx, rec, exec); err != nil {
			return nil, err
		}
	}

	return newResponse(id, st), nil
}

// Resume supplies the awaited value to a suspended session and runs it
// to the next suspension or to its end
func (m *Manager) Resume(ctx context.Context, id, value string) (*Response, error) {
	unlock := m.locks.Lock(id)
	defer unlock()

	rec, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}

	program := rec.Program
	if program == nil {
		if program, err = m.engine.Compile(rec.Source); err != nil {
			return nil, mdwerror.Wrap(err, "stored session program is invalid").
				WithCode(mdwerror.CodeInternal).
				WithOperation("session.Resume")
		}
	}

	exec, err := interpreter.RestoreExecution(program, rec.Snapshot(), interpreter.Options{
		Logger: m.logger.WithSessionID(id),
	})
	if err != nil {
		return nil, mdwerror.Wrap(err, "stored session is corrupt").
			WithCode(mdwerror.CodeInternal).
			WithOperation("session.Resume")
	}

	st := exec.Resume(value)
	m.logger.Debug("Session resumed", mdwlog.Fields{
		"session_id": id,
		"state":      st.State.String(),
	})

	if st.State == interpreter.StateSuspended {
		rec.Program = program
		rec.UpdatedAt = time.Now()
		if err := m.save(ctx, rec, exec); err != nil {
			return nil, err
		}
	} else {
		if err := m.store.Delete(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
			m.logger.WarnWithErr("Failed to delete finished session", err, mdwlog.Fields{"session_id": id})
		}
	}

	return newResponse(id, st), nil
}

// Cancel abandons a suspended session
func (m *Manager) Cancel(ctx context.Context, id string) error {
	unlock := m.locks.Lock(id)
	defer unlock()

	if err := m.store.Delete(ctx, id); err != nil {
		return m.storeError(err, "session.Cancel")
	}
	m.logger.Info("Session cancelled", mdwlog.Fields{"session_id": id})
	return nil
}

// Close closes the underlying store
func (m *Manager) Close() error {
	return m.store.Close()
}

func (m *Manager) save(ctx context.Context, rec *Record, exec *interpreter.Execution) error {
	snap := exec.Snapshot()
	rec.Cursor = snap.Cursor
	rec.Awaiting = snap.Awaiting
	rec.State = snap.State
	rec.Transcript = snap.Transcript
	rec.Variables = snap.Variables

	if err := m.store.Save(ctx, rec); err != nil {
		return m.storeError(err, "session.Save")
	}
	return nil
}

func (m *Manager) load(ctx context.Context, id string) (*Record, error) {
	rec, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, m.storeError(err, "session.Load")
	}
	return rec, nil
}

func (m *Manager) storeError(err error, op string) error {
	if errors.Is(err, ErrNotFound) {
		return mdwerror.New("invalid or expired session").
			WithCode(mdwerror.CodeSessionNotFound).
			WithOperation(op)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return mdwerror.Wrap(err, "session store failure").
		WithCode(mdwerror.CodeDatabaseError).
		WithOperation(op)
}

func newResponse(id string, st interpreter.Status) *Response {
	resp := &Response{
		SessionID: id,
		Output:    st.Output,
		Awaiting:  st.Awaiting,
		Variables: st.Variables,
	}

	switch st.State {
	case interpreter.StateSuspended:
		resp.Status = StatusSuspended
	case interpreter.StateCompleted:
		resp.Status = StatusCompleted
	default:
		resp.Status = StatusFailed
	}

	if st.Err != nil {
		resp.Status = StatusFailed
		resp.Error = &ErrorInfo{Code: scene.Classify(st.Err), Message: st.Err.Error()}
	}
	return resp
}

// keyedMutex serializes work per session id
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

// Lock acquires the mutex for key and returns its unlock function
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &refMutex{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
