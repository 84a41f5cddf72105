// ============================================================================
// Dramatica - Scene Language Engine
// ============================================================================
//
// Package:     logging
// Description: Closable logger handle owning its rotating file
// Author:      msto63
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package logging

import (
	"errors"
	"io"

	mdwlog "github.com/msto63/dramatica/foundation/core/log"
)

// Logger embeds the Foundation logger and owns the writers opened for it
type Logger struct {
	*mdwlog.Logger
	closers []io.Closer
}

// HasFile reports whether the logger writes to a rotating file
func (l *Logger) HasFile() bool {
	return len(l.closers) > 0
}

// Close releases the log file. The console keeps working afterwards.
func (l *Logger) Close() error {
	var errs []error
	for _, c := range l.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	l.closers = nil
	return errors.Join(errs...)
}
