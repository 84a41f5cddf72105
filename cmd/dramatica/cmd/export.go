package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/msto63/dramatica/foundation/scene"
	"github.com/msto63/dramatica/internal/export"
	"github.com/spf13/cobra"
)

var (
	exportOutput  string
	exportInputs  []string
	exportPerform bool
)

var exportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Export a scene as PDF",
	Long: `Renders the canonical script as PDF. With -i or --perform the
scene is also run and its transcript and final memory are appended.

Page size, font and author come from the [export] config section.

Examples:
  dramatica export hamlet.scene -o hamlet.pdf
  dramatica export hamlet.scene -o hamlet.pdf -i Yorick -i 30`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output PDF file (default: FILE with .pdf)")
	exportCmd.Flags().StringArrayVarP(&exportInputs, "input", "i", nil, "input value for the next READ (repeatable)")
	exportCmd.Flags().BoolVar(&exportPerform, "perform", false, "append a run transcript even without inputs")
}

func runExport(cmd *cobra.Command, args []string) error {
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

	var report *scene.RunReport
	if exportPerform || len(exportInputs) > 0 {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		report = engine.Run(ctx, source, exportInputs)
	}

	out := exportOutput
	if out == "" {
		if args[0] == "-" {
			return fmt.Errorf("--output is required when reading from stdin")
		}
		out = strings.TrimSuffix(args[0], ".scene") + ".pdf"
	}

	ec := appConfig.Export
	opts := export.PDFOptions{
		PageSize:   ec.PageSize,
		FontFamily: ec.FontFamily,
		FontSize:   ec.FontSize,
		Author:     ec.Author,
		Compress:   true,
	}
	if err := export.WritePDFFile(out, program, report, opts); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
	return nil
}
