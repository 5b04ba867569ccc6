package expr

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_LoadProgram(t *testing.T) {
	t.Parallel()

	t.Run("loads a module and records its checksum", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		module := emptyEvalModule()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "ring.wasm"), module, 0o644))

		loader := NewLoader(dir)
		program, err := loader.LoadProgram("ring", "ring(c, r)")
		require.NoError(t, err)

		assert.Equal(t, "ring", program.ID)
		assert.Equal(t, "ring(c, r)", program.Source)
		assert.Equal(t, module, program.Module)
		assert.Len(t, program.Checksum, 64)
		assert.NoError(t, program.Validate())
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		loader := NewLoader(t.TempDir())

		_, err := loader.LoadProgram("ghost", "")
		assert.ErrorIs(t, err, ErrProgramNotFound)
	})

	t.Run("missing id", func(t *testing.T) {
		t.Parallel()
		loader := NewLoader(t.TempDir())

		_, err := loader.LoadProgram("", "")
		assert.ErrorIs(t, err, ErrProgramInvalid)
	})

	t.Run("rejects files without the WASM magic", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "fake.wasm"), []byte("#!/bin/sh"), 0o644))

		loader := NewLoader(dir)
		_, err := loader.LoadProgram("fake", "")
		assert.ErrorIs(t, err, ErrNotWASM)
	})
}

func TestLoader_ListPrograms(t *testing.T) {
	t.Parallel()

	t.Run("lists wasm files without the extension", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.wasm"), emptyEvalModule(), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "b.wasm"), emptyEvalModule(), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
		require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.wasm"), 0o755))

		loader := NewLoader(dir)
		ids, err := loader.ListPrograms()
		require.NoError(t, err)

		assert.ElementsMatch(t, []string{"a", "b"}, ids)
	})

	t.Run("missing directory lists nothing", func(t *testing.T) {
		t.Parallel()
		loader := NewLoader(filepath.Join(t.TempDir(), "absent"))

		ids, err := loader.ListPrograms()
		require.NoError(t, err)
		assert.Empty(t, ids)
	})
}
