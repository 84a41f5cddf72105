package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	mdwlog "github.com/msto63/dramatica/foundation/core/log"
	"github.com/msto63/dramatica/foundation/scene"
)

const twoReads = `SCENE Names:
  CHARACTER Clown:
    MEMORY:
      first: TEXT;
      ratio: REAL;
    END_MEMORY
  READ first;
  Clown SAYS "hello " + first;
  READ ratio;
  Clown SAYS ratio * 2;
END_SCENE`

func TestWritePDF_ScriptAndPerformance(t *testing.T) {
	engine := scene.New(scene.Options{Logger: mdwlog.NewNop()})
	program, err := engine.Compile(twoReads)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	report := engine.Run(context.Background(), twoReads, []string{"Sebastian", "0.5"})

	opt := DefaultPDFOptions()
	opt.Compress = false
	opt.Author = "Tester"

	var buf bytes.Buffer
	if err := WritePDF(&buf, program, report, opt); err != nil {
		t.Fatalf("WritePDF() error = %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "%PDF-") {
		t.Fatalf("output does not start with a PDF header: %q", out[:min(20, len(out))])
	}
	for _, want := range []string{"Scene: Names", "Clown SAYS ratio * 2;", "Clown says: hello Sebastian", "Final variables"} {
		if !strings.Contains(out, want) {
			t.Errorf("PDF missing %q", want)
		}
	}
}

func TestWritePDF_ScriptOnly(t *testing.T) {
	engine := scene.New(scene.Options{Logger: mdwlog.NewNop()})
	program, err := engine.Compile("SCENE Empty:\n  CHARACTER Nobody:\nEND_SCENE")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	tests := []struct {
		name string
		size string
	}{
		{"a4", "A4"},
		{"letter", "Letter"},
		{"default", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt := DefaultPDFOptions()
			opt.PageSize = tt.size
			opt.Compress = false

			var buf bytes.Buffer
			if err := WritePDF(&buf, program, nil, opt); err != nil {
				t.Fatalf("WritePDF() error = %v", err)
			}
			if strings.Contains(buf.String(), "Performance") {
				t.Error("script-only export should not contain a performance section")
			}
		})
	}
}

func TestWritePDF_Errors(t *testing.T) {
	if err := WritePDF(&bytes.Buffer{}, nil, nil, DefaultPDFOptions()); err == nil {
		t.Error("WritePDF(nil program) expected error")
	}

	engine := scene.New(scene.Options{Logger: mdwlog.NewNop()})
	program, _ := engine.Compile("SCENE A:\n  CHARACTER B:\nEND_SCENE")

	opt := DefaultPDFOptions()
	opt.PageSize = "B7"
	if err := WritePDF(&bytes.Buffer{}, program, nil, opt); err == nil {
		t.Error("WritePDF(unknown page size) expected error")
	}
}

func TestWritePDFFile(t *testing.T) {
	engine := scene.New(scene.Options{Logger: mdwlog.NewNop()})
	program, err := engine.Compile(twoReads)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	out := filepath.Join(t.TempDir(), "exports", "names.pdf")
	if err := WritePDFFile(out, program, nil, DefaultPDFOptions()); err != nil {
		t.Fatalf("WritePDFFile() error = %v", err)
	}

	st, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if st.Size() == 0 {
		t.Error("PDF file is empty")
	}
}
