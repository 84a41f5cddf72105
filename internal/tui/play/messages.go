// ============================================================================
// Dramatica - Scene Language Engine
// ============================================================================
//
// Package:     play
// Description: Message types for the scene player
// Author:      msto63
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package play

import (
	"github.com/msto63/dramatica/internal/session"
)

// lineKind selects how a transcript line is rendered
type lineKind int

const (
	lineSpeech lineKind = iota
	lineEcho
	lineNote
	lineError
)

// line is one rendered row of the stage transcript
type line struct {
	kind lineKind
	text string
}

// sessionMsg carries the result of Begin or Resume
type sessionMsg struct {
	resp *session.Response
	err  error
}

// cancelledMsg is sent once a suspended session was abandoned on quit
type cancelledMsg struct{}
