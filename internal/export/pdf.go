// ============================================================================
// Dramatica - Scene Language Engine
// ============================================================================
//
// Package:     export
// Description: PDF rendering of scene scripts and their performances
// Author:      msto63
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/msto63/dramatica/foundation/scene"
	"github.com/msto63/dramatica/foundation/scene/ast"
)

// PDFOptions controls PDF export. Fonts are the PDF core fonts, so
// nothing is embedded.
type PDFOptions struct {
	PageSize   string // A4, A5, Letter, Legal
	FontFamily string // script font: Courier, Helvetica or Times
	FontSize   float64
	Author     string
	Compress   bool
}

// DefaultPDFOptions returns the default export settings
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PageSize:   "A4",
		FontFamily: "Courier",
		FontSize:   11,
		Compress:   true,
	}
}

// WritePDF renders the canonical script of program and, when report is
// not nil, the transcript and final variables of a run
func WritePDF(w io.Writer, program *ast.Program, report *scene.RunReport, opt PDFOptions) error {
	if program == nil {
		return fmt.Errorf("program is nil")
	}
	def := DefaultPDFOptions()
	if opt.PageSize == "" {
		opt.PageSize = def.PageSize
	}
	if opt.FontFamily == "" {
		opt.FontFamily = def.FontFamily
	}
	if opt.FontSize <= 0 {
		opt.FontSize = def.FontSize
	}

	pdf := gofpdf.New("P", "mm", opt.PageSize, "")
	pdf.SetCompression(opt.Compress)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("")

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	title := "Scene: " + program.Scene
	pdf.SetTitle(title, true)
	pdf.SetCreator("Dramatica", false)
	if opt.Author != "" {
		pdf.SetAuthor(opt.Author, true)
	}

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("%s - page %d/{nb}", tr(title), pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	// Title block
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")
	if program.Character != nil {
		pdf.SetFont("Helvetica", "", 12)
		pdf.CellFormat(0, 7, tr("Character: "+program.Character.Name), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	section(pdf, tr, "Script")
	block(pdf, tr, opt, program.String())

	if report != nil {
		pdf.Ln(4)
		heading := "Performance"
		if report.Status != scene.StatusSuccess {
			heading = "Performance (failed)"
		}
		section(pdf, tr, heading)
		block(pdf, tr, opt, report.Output)

		if len(report.Variables) > 0 {
			pdf.Ln(4)
			section(pdf, tr, "Final variables")
			variablesTable(pdf, tr, report)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

// WritePDFFile writes the PDF to path, creating parent directories
func WritePDFFile(path string, program *ast.Program, report *scene.RunReport, opt PDFOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WritePDF(f, program, report, opt); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func section(pdf *gofpdf.Fpdf, tr func(string) string, name string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(0, 8, tr(name), "", 1, "L", true, 0, "")
	pdf.Ln(2)
}

// block prints monospaced text line by line, keeping indentation
func block(pdf *gofpdf.Fpdf, tr func(string) string, opt PDFOptions, text string) {
	pdf.SetFont(opt.FontFamily, "", opt.FontSize)
	lineHeight := opt.FontSize * 0.45
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		pdf.MultiCell(0, lineHeight, tr(line), "", "L", false)
	}
}

func variablesTable(pdf *gofpdf.Fpdf, tr func(string) string, report *scene.RunReport) {
	widths := []float64{60, 30, 80}
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range []string{"Variable", "Type", "Value"} {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Courier", "", 10)
	for _, v := range report.Variables {
		pdf.CellFormat(widths[0], 6, tr(v.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, v.Value.Kind().String(), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, tr(v.Value.String()), "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}
}
