package script

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/linework/internal/domain/expr"
)

// Script is a fully loaded script: the parsed document, its expression
// programs with module bytes verified, and the decoded operations in
// replay order.
type Script struct {
	Document *Document
	Programs map[string]*expr.Program
	Ops      []Op
}

// Loader loads scripts and their expression modules from a directory.
type Loader struct {
	basePath string
}

// NewLoader creates a loader rooted at basePath. Program module paths in
// a script resolve relative to it.
func NewLoader(basePath string) *Loader {
	return &Loader{basePath: basePath}
}

// Load reads, parses and decodes the named script. Expression modules
// are read from disk and verified against their manifest checksum when
// one is present.
func (l *Loader) Load(name string) (*Script, error) {
	path := filepath.Join(l.basePath, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrScriptNotFound, path)
		}
		return nil, fmt.Errorf("failed to read script: %w", err)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}

	programs, err := l.loadPrograms(doc.Programs)
	if err != nil {
		return nil, err
	}

	ops, err := doc.Ops(programs)
	if err != nil {
		return nil, err
	}

	return &Script{Document: doc, Programs: programs, Ops: ops}, nil
}

// Save writes a document to the named file under the loader's base path.
func (l *Loader) Save(name string, doc *Document) error {
	data, err := doc.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(l.basePath, name), data, 0o644)
}

func (l *Loader) loadPrograms(specs []ProgramSpec) (map[string]*expr.Program, error) {
	programs := make(map[string]*expr.Program, len(specs))
	for _, spec := range specs {
		modulePath := filepath.Join(l.basePath, spec.Module)
		module, err := os.ReadFile(modulePath)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrProgramModuleNotFound, modulePath)
			}
			return nil, fmt.Errorf("failed to read module %s: %w", spec.Module, err)
		}

		sum := sha256.Sum256(module)
		checksum := hex.EncodeToString(sum[:])
		if spec.Checksum != "" && spec.Checksum != checksum {
			return nil, fmt.Errorf("%w: program %q: want %s, got %s",
				ErrProgramChecksumMismatch, spec.ID, spec.Checksum, checksum)
		}

		programs[spec.ID] = &expr.Program{
			ID:       spec.ID,
			Source:   spec.Source,
			Module:   module,
			Checksum: checksum,
		}
	}
	return programs, nil
}
