// ============================================================================
// Dramatica - Scene Language Engine
// ============================================================================
//
// Package:     version
// Description: Central version management for the engine and its surfaces
// Author:      msto63
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package version

import (
	"fmt"
	"runtime"
)

// Version constants for all Dramatica components
const (
	// Platform version
	Platform = "0.1.0"

	// Component versions
	Engine = "0.1.0" // lexer, parser, interpreter
	Stage  = "0.1.0" // HTTP, WebSocket and gRPC server
	Play   = "0.1.0" // terminal player
	Export = "0.1.0" // PDF export
)

// Build metadata, set with -ldflags "-X .../version.Commit=..."
var (
	Commit    = "unknown"
	BuildDate = "unknown"
)

// ComponentVersion returns the version for a given component name
func ComponentVersion(name string) string {
	switch name {
	case "engine":
		return Engine
	case "stage":
		return Stage
	case "play":
		return Play
	case "export":
		return Export
	default:
		return Platform
	}
}

// Info describes the running binary
type Info struct {
	Version   string `json:"version"`
	Engine    string `json:"engine"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// Get returns the build information
func Get() Info {
	return Info{
		Version:   Platform,
		Engine:    Engine,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
}

// String returns a one-line description
func (i Info) String() string {
	return fmt.Sprintf("dramatica %s (engine %s, commit %s, built %s, %s)",
		i.Version, i.Engine, i.Commit, i.BuildDate, i.GoVersion)
}
