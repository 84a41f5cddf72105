// ============================================================================
// Dramatica - Scene Language Engine
// ============================================================================
//
// Package:     logging
// Description: Factory functions for creating loggers with file rotation
// Author:      msto63
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package logging

import (
	"io"
	"os"
	"path/filepath"

	mdwlog "github.com/msto63/dramatica/foundation/core/log"
	"github.com/msto63/dramatica/pkg/core/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Service name
	ServiceName string

	// Log level (trace, debug, info, warn, error, fatal)
	Level string

	// Output format
	Format string // "json", "text" or "console" (default: text)

	// Rotating log file (optional). Empty disables file output.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool

	// Console receives log lines besides the file; nil means stderr.
	// Stdout stays reserved for scene output.
	Console io.Writer

	// FileOnly suppresses console output when a file is configured
	FileOnly bool

	// Additional outputs
	AdditionalOutputs []io.Writer
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(serviceName string) LoggerConfig {
	return LoggerConfig{
		ServiceName: serviceName,
		Level:       "info",
		Format:      "text",
		MaxSizeMB:   10,
		MaxBackups:  5,
		MaxAgeDays:  30,
	}
}

// FromConfig maps the [logging] section onto a LoggerConfig
func FromConfig(serviceName string, c config.LoggingConfig) LoggerConfig {
	cfg := DefaultLoggerConfig(serviceName)
	if c.Level != "" {
		cfg.Level = c.Level
	}
	if c.Format != "" {
		cfg.Format = c.Format
	}
	cfg.File = c.File
	if c.MaxSizeMB > 0 {
		cfg.MaxSizeMB = c.MaxSizeMB
	}
	if c.MaxBackups > 0 {
		cfg.MaxBackups = c.MaxBackups
	}
	if c.MaxAgeDays > 0 {
		cfg.MaxAgeDays = c.MaxAgeDays
	}
	cfg.Compress = c.Compress
	return cfg
}

// NewLogger creates a Foundation logger writing to the console and, when
// configured, to a rotating file. Close the returned Logger to release the file.
func NewLogger(cfg LoggerConfig) (*Logger, error) {
	var writers []io.Writer
	var closers []io.Closer

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, err
		}
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		writers = append(writers, rotator)
		closers = append(closers, rotator)
	}

	if cfg.File == "" || !cfg.FileOnly {
		console := cfg.Console
		if console == nil {
			console = os.Stderr
		}
		writers = append(writers, console)
	}

	writers = append(writers, cfg.AdditionalOutputs...)

	var output io.Writer
	if len(writers) == 1 {
		output = writers[0]
	} else {
		output = io.MultiWriter(writers...)
	}

	format, err := mdwlog.ParseFormat(cfg.Format)
	if err != nil {
		format = mdwlog.FormatText
	}

	logger := mdwlog.NewWithConfig(mdwlog.Config{
		Level:        parseLevel(cfg.Level),
		Format:       format,
		Output:       output,
		Name:         cfg.ServiceName,
		EnableCaller: true,
	})

	return &Logger{Logger: logger, closers: closers}, nil
}

// parseLevel converts a string level to mdwlog.Level
func parseLevel(level string) mdwlog.Level {
	parsed, err := mdwlog.ParseLevel(level)
	if err != nil {
		return mdwlog.LevelInfo
	}
	return parsed
}
