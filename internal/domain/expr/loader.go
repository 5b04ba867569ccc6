package expr

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Loader errors.
var (
	ErrProgramNotFound = errors.New("expression program not found")
	ErrNotWASM         = errors.New("not a WASM module")
)

var wasmMagic = []byte{0x00, 0x61, 0x73, 0x6d}

// Loader loads compiled expression programs from the filesystem.
type Loader struct {
	// basePath is the directory containing compiled programs
	basePath string
}

// NewLoader creates a new program loader.
func NewLoader(basePath string) *Loader {
	return &Loader{basePath: basePath}
}

// LoadProgram loads a compiled program. The id doubles as the module file
// name: an id of "ring" resolves to ring.wasm under the base path.
func (l *Loader) LoadProgram(id, source string) (*Program, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: missing id", ErrProgramInvalid)
	}

	path := filepath.Join(l.basePath, id+".wasm")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrProgramNotFound, path)
		}
		return nil, fmt.Errorf("failed to read program: %w", err)
	}

	if len(data) < len(wasmMagic) || !strings.HasPrefix(string(data), string(wasmMagic)) {
		return nil, fmt.Errorf("%w: %s", ErrNotWASM, path)
	}

	return &Program{
		ID:       id,
		Source:   source,
		Module:   data,
		Checksum: sha256Hex(data),
	}, nil
}

// ListPrograms returns the ids of the compiled programs under the base path.
func (l *Loader) ListPrograms() ([]string, error) {
	entries, err := os.ReadDir(l.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read programs directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".wasm") {
			ids = append(ids, strings.TrimSuffix(name, ".wasm"))
		}
	}

	return ids, nil
}

// sha256Hex computes SHA256 hash and returns hex string.
func sha256Hex(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
