// Package log provides structured logging for Dramatica.
//
// Package: log
// Title: Structured Logging
// Description: Leveled, structured logging with immutable context fields,
//              JSON/text/console formatters and a timer for measuring
//              pipeline stages (tokenize, parse, execute). Integrates with
//              the error package so coded errors log at a level derived
//              from their severity.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-16
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with structured logging and error integration
// - 2026-10-16 v0.2.0: Session/request context, removed async buffering and audit level
//
// Usage:
//
//	logger := log.NewWithConfig(log.Config{Level: log.LevelDebug, Format: log.FormatText}).
//		WithField("component", "scene-parser")
//
//	logger.Info("scene parsed", log.Fields{"scene": name, "commands": n})
//
//	timer := logger.StartTimer("execute")
//	// ...
//	timer.Stop()
package log
