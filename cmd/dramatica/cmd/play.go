// ============================================================================
// Dramatica - Scene Language Engine
// ============================================================================
//
// Package:     cmd
// Description: CLI command for the interactive scene player
// Author:      msto63
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package cmd

import (
	"fmt"

	"github.com/msto63/dramatica/foundation/scene"
	"github.com/msto63/dramatica/internal/session"
	"github.com/msto63/dramatica/internal/tui/play"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play FILE",
	Short: "Perform a scene interactively in the terminal",
	Long: `Starts the scene and asks for a value at every READ.

Keys:
  Enter       submit the value / leave after the scene ended
  PgUp/PgDn   scroll the transcript
  Esc/Ctrl+C  quit`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	source, err := readSource(cmd, args[0])
	if err != nil {
		return err
	}

	engine := newEngine()
	program, err := engine.Compile(source)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: [%s] %v\n", args[0], scene.Classify(err), err)
		return errReported
	}

	mc := session.DefaultMemoryConfig()
	mc.TTL = appConfig.Session.TTL.Duration
	store := session.NewMemoryStore(mc)
	manager := session.NewManager(session.Options{Store: store, Engine: engine, Logger: appLogger.Logger})
	defer manager.Close()

	return play.Run(cmd.Context(), play.Config{Program: program, Manager: manager})
}
