// ============================================================================
// Dramatica - Scene Language Engine
// ============================================================================
//
// Package:     cmd
// Description: CLI commands for tokenizing, checking, formatting and running scenes
// Author:      msto63
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/msto63/dramatica/foundation/scene"
	"github.com/spf13/cobra"
)

var (
	runInputs  []string
	runJSON    bool
	runTimeout time.Duration
	remoteAddr string
)

// remoteCallTimeout bounds a remote check
const remoteCallTimeout = 10 * time.Second

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize FILE",
	Short: "Print the token stream of a scene",
	Long: `Scans a scene file and prints one token per line with its
position. Lexical errors are listed after the tokens.

Examples:
  dramatica tokenize hamlet.scene
  cat hamlet.scene | dramatica tokenize -`,
	Args: cobra.ExactArgs(1),
	RunE: runTokenize,
}

var checkCmd = &cobra.Command{
	Use:   "check FILE",
	Short: "Check a scene for lexical, syntax and semantic errors",
	Long: `Analyzes a scene without running it. Exits with status 1 when
the scene has an error. With --remote the analysis is done by a stage
server over gRPC.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

var fmtCmd = &cobra.Command{
	Use:   "fmt FILE",
	Short: "Print the canonical form of a scene",
	Args:  cobra.ExactArgs(1),
	RunE:  runFmt,
}

var runCmd = &cobra.Command{
	Use:   "run FILE",
	Short: "Run a scene with preset inputs",
	Long: `Runs a scene in batch mode. Each READ consumes the next -i value;
reads beyond the given values use the default of the declared type.

Examples:
  dramatica run greeting.scene -i Sebastian
  dramatica run ratio.scene -i Sebastian -i 0.5 --json
  dramatica run greeting.scene -i Sebastian --remote stage.local:9090`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringArrayVarP(&runInputs, "input", "i", nil, "input value for the next READ (repeatable)")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the run report as JSON")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 10*time.Second, "abort the run after this duration")
	runCmd.Flags().StringVar(&remoteAddr, "remote", "", "run on the stage gRPC server at ADDR")
	checkCmd.Flags().StringVar(&remoteAddr, "remote", "", "check on the stage gRPC server at ADDR")
}

func runTokenize(cmd *cobra.Command, args []string) error {
	source, err := readSource(cmd, args[0])
	if err != nil {
		return err
	}

	res := newEngine().Tokenize(source)
	out := cmd.OutOrStdout()

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LINE:COL\tTYPE\tLEXEME")
	for _, tok := range res.Tokens {
		fmt.Fprintf(tw, "%d:%d\t%s\t%s\n", tok.Line, tok.Column, tok.Type, tok.Lexeme)
	}
	tw.Flush()

	if len(res.LexicalErrors) > 0 {
		fmt.Fprintln(out)
		for _, lexErr := range res.LexicalErrors {
			fmt.Fprintln(out, lexErr.Error())
		}
		return errReported
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	source, err := readSource(cmd, args[0])
	if err != nil {
		return err
	}

	var analysis *scene.Analysis
	if remoteAddr == "" {
		analysis = newEngine().Analyze(source)
	} else {
		ctx, cancel := context.WithTimeout(cmd.Context(), remoteCallTimeout)
		defer cancel()
		if analysis, err = remoteAnalyze(ctx, remoteAddr, source); err != nil {
			return err
		}
	}
	if analysis.Status == scene.StatusSuccess {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], analysis.Message)
		return nil
	}

	if analysis.Line > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s:%d:%d: %s error: %s\n",
			args[0], analysis.Line, analysis.Column, analysis.Category, analysis.Message)
	} else {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s error: %s\n", args[0], analysis.Category, analysis.Message)
	}
	return errReported
}

func runFmt(cmd *cobra.Command, args []string) error {
	source, err := readSource(cmd, args[0])
	if err != nil {
		return err
	}

	formatted, err := newEngine().Format(source)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: [%s] %v\n", args[0], scene.Classify(err), err)
		return errReported
	}
	fmt.Fprint(cmd.OutOrStdout(), formatted)
	return nil
}

func runRun(cmd *cobra.Command, args []string) error {
	source, err := readSource(cmd, args[0])
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
	defer cancel()

	var report *scene.RunReport
	if remoteAddr == "" {
		report = newEngine().Run(ctx, source, runInputs)
	} else if report, err = remoteRun(ctx, remoteAddr, source, runInputs); err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if runJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(out, report.Output)
	}

	if report.Status != scene.StatusSuccess {
		return errReported
	}
	return nil
}
