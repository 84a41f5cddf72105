// ============================================================================
// Dramatica - Scene Language Engine
// ============================================================================
//
// Package:     schema
// Description: JSON schema validation of stage request bodies
// Author:      msto63
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package schema

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	mdwerror "github.com/msto63/dramatica/foundation/core/error"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var files embed.FS

// Schema names
const (
	Source    = "source"
	Run       = "run"
	Input     = "input"
	WSMessage = "ws_message"
)

// Violation is one failed schema rule
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator holds the compiled request schemas
type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

// New compiles every embedded schema
func New() (*Validator, error) {
	entries, err := files.ReadDir("schemas")
	if err != nil {
		return nil, err
	}

	v := &Validator{schemas: make(map[string]*gojsonschema.Schema, len(entries))}
	for _, entry := range entries {
		data, err := files.ReadFile(path.Join("schemas", entry.Name()))
		if err != nil {
			return nil, err
		}
		compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", entry.Name(), err)
		}
		v.schemas[strings.TrimSuffix(entry.Name(), ".json")] = compiled
	}
	return v, nil
}

// MustNew is like New but panics on a broken embedded schema
func MustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

// Names lists the available schemas
func (v *Validator) Names() []string {
	names := make([]string, 0, len(v.schemas))
	for name := range v.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks body against the named schema. Failures are
// VALIDATION_FAILED errors carrying the violations as detail "violations".
func (v *Validator) Validate(name string, body []byte) error {
	compiled, ok := v.schemas[name]
	if !ok {
		return mdwerror.Newf("unknown schema %q", name).WithCode(mdwerror.CodeInternal)
	}

	result, err := compiled.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return mdwerror.Wrap(err, "request body is not valid JSON").
			WithCode(mdwerror.CodeValidationFailed)
	}
	if result.Valid() {
		return nil
	}

	violations := make([]Violation, 0, len(result.Errors()))
	messages := make([]string, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		violations = append(violations, Violation{Field: re.Field(), Message: re.Description()})
		messages = append(messages, re.String())
	}

	return mdwerror.New("request validation failed: "+strings.Join(messages, "; ")).
		WithCode(mdwerror.CodeValidationFailed).
		WithDetail("violations", violations)
}
