// Package script reads and writes figure scripts: the YAML form of an
// authored step log. A script carries only the steps a user wrote; loop
// and duplicate instances are re-derived when the script replays, and the
// deterministic id assignment makes the references line up again.
package script

import (
	"errors"
	"fmt"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// Script errors.
var (
	ErrScriptNotFound          = errors.New("script not found")
	ErrScriptInvalid           = errors.New("script invalid")
	ErrVersionUnsupported      = errors.New("script version unsupported")
	ErrProgramModuleNotFound   = errors.New("expression module not found")
	ErrProgramChecksumMismatch = errors.New("expression module checksum mismatch")
)

// SupportedMajor is the script format major version this build reads.
const SupportedMajor = "v1"

// Document is the raw YAML form of a script.
type Document struct {
	// Version is the script format version
	Version string `yaml:"version"`

	// Name is an optional human-readable title
	Name string `yaml:"name,omitempty"`

	// Programs are the expression programs steps may reference
	Programs []ProgramSpec `yaml:"programs,omitempty"`

	// Steps are the authored steps in log order
	Steps []StepSpec `yaml:"steps"`
}

// ProgramSpec describes one expression program and where its compiled
// module lives, relative to the script.
type ProgramSpec struct {
	// ID is the identifier steps reference the program by
	ID string `yaml:"id"`

	// Source is the authored expression text
	Source string `yaml:"source,omitempty"`

	// Module is the path to the compiled WASM module
	Module string `yaml:"module"`

	// Checksum is the SHA256 hash of the module
	Checksum string `yaml:"checksum,omitempty"`
}

// StepSpec is one authored step. The populated fields depend on kind.
type StepSpec struct {
	Kind string    `yaml:"kind"`
	Refs []RefSpec `yaml:"refs,omitempty"`

	At       *PointArgSpec  `yaml:"at,omitempty"`
	Start    *PointArgSpec  `yaml:"start,omitempty"`
	End      *PointArgSpec  `yaml:"end,omitempty"`
	Vertices []PointArgSpec `yaml:"vertices,omitempty"`
	Closed   bool           `yaml:"closed,omitempty"`

	Mode     string         `yaml:"mode,omitempty"`
	Corner   *PointArgSpec  `yaml:"corner,omitempty"`
	Opposite *PointArgSpec  `yaml:"opposite,omitempty"`
	Center   *PointArgSpec  `yaml:"center,omitempty"`
	Width    *ScalarArgSpec `yaml:"width,omitempty"`
	Height   *ScalarArgSpec `yaml:"height,omitempty"`
	Radius   *ScalarArgSpec `yaml:"radius,omitempty"`
	A        *PointArgSpec  `yaml:"a,omitempty"`
	B        *PointArgSpec  `yaml:"b,omitempty"`
	C        *PointArgSpec  `yaml:"c,omitempty"`

	Content string         `yaml:"content,omitempty"`
	Size    *ScalarArgSpec `yaml:"size,omitempty"`
	Source  string         `yaml:"source,omitempty"`

	Target *int           `yaml:"target,omitempty"`
	DX     *ScalarArgSpec `yaml:"dx,omitempty"`
	DY     *ScalarArgSpec `yaml:"dy,omitempty"`
	Factor *ScalarArgSpec `yaml:"factor,omitempty"`
	Angle  *ScalarArgSpec `yaml:"angle,omitempty"`
	Pivot  *PointArgSpec  `yaml:"pivot,omitempty"`

	TemplateLen int `yaml:"template_len,omitempty"`
	Count       int `yaml:"count,omitempty"`
}

// RefSpec is one reference to an earlier step.
type RefSpec struct {
	Step     int64  `yaml:"step"`
	Selector string `yaml:"selector"`
	Index    int    `yaml:"index,omitempty"`
	Other    int64  `yaml:"other,omitempty"`
}

// PointArgSpec encodes a point argument: a literal coordinate, a slot
// into the step's reference list, or an expression. Exactly one field
// may be set.
type PointArgSpec struct {
	At   *PointSpec `yaml:"at,omitempty"`
	Ref  *int       `yaml:"ref,omitempty"`
	Expr *ExprSpec  `yaml:"expr,omitempty"`
}

// ScalarArgSpec encodes a number argument: a literal value or an
// expression. Exactly one field may be set.
type ScalarArgSpec struct {
	Value *float64  `yaml:"value,omitempty"`
	Expr  *ExprSpec `yaml:"expr,omitempty"`
}

// PointSpec is a literal coordinate.
type PointSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// ExprSpec references a program and names the reference slots it binds.
type ExprSpec struct {
	Program string      `yaml:"program"`
	Inputs  []InputSpec `yaml:"inputs,omitempty"`
}

// InputSpec binds one reference slot to a name the program reads.
type InputSpec struct {
	Name string `yaml:"name"`
	Ref  int    `yaml:"ref"`
}

// Parse unmarshals and validates a script document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScriptInvalid, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the document's version gate and structural fields.
// Per-step parameter shapes are checked during conversion.
func (d *Document) Validate() error {
	if d.Version == "" {
		return fmt.Errorf("%w: missing version", ErrScriptInvalid)
	}
	if !semver.IsValid(d.Version) {
		return fmt.Errorf("%w: %q is not a semantic version", ErrScriptInvalid, d.Version)
	}
	if major := semver.Major(d.Version); major != SupportedMajor {
		return fmt.Errorf("%w: script wants %s, this build reads %s",
			ErrVersionUnsupported, major, SupportedMajor)
	}

	seen := make(map[string]bool, len(d.Programs))
	for i, program := range d.Programs {
		if program.ID == "" {
			return fmt.Errorf("%w: program %d: missing id", ErrScriptInvalid, i)
		}
		if program.Module == "" {
			return fmt.Errorf("%w: program %q: missing module path", ErrScriptInvalid, program.ID)
		}
		if seen[program.ID] {
			return fmt.Errorf("%w: duplicate program id %q", ErrScriptInvalid, program.ID)
		}
		seen[program.ID] = true
	}

	for i, step := range d.Steps {
		if step.Kind == "" {
			return fmt.Errorf("%w: step %d: missing kind", ErrScriptInvalid, i+1)
		}
	}
	return nil
}

// Marshal renders the document back to YAML.
func (d *Document) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal script: %w", err)
	}
	return data, nil
}
