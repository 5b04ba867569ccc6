package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/linework/internal/domain/geom"
)

func TestValue(t *testing.T) {
	t.Parallel()

	t.Run("num round trips", func(t *testing.T) {
		t.Parallel()
		v := NewNum(2.5)

		assert.Equal(t, KindNum, v.Kind())
		got, err := v.AsNum()
		require.NoError(t, err)
		assert.Equal(t, 2.5, got)
	})

	t.Run("point round trips", func(t *testing.T) {
		t.Parallel()
		v := NewPoint(geom.Pt(1, 2))

		assert.Equal(t, KindPoint, v.Kind())
		got, err := v.AsPoint()
		require.NoError(t, err)
		assert.Equal(t, geom.Pt(1, 2), got)
	})

	t.Run("kind mismatch is an error", func(t *testing.T) {
		t.Parallel()
		v := NewNum(1)

		_, err := v.AsPoint()
		assert.ErrorIs(t, err, ErrKindMismatch)

		_, err = NewPoint(geom.Pt(0, 0)).AsNum()
		assert.ErrorIs(t, err, ErrKindMismatch)
	})

	t.Run("items flattens scalars to a single element", func(t *testing.T) {
		t.Parallel()
		assert.Len(t, NewNum(1).Items(), 1)
	})

	t.Run("sequence keeps its elements in order", func(t *testing.T) {
		t.Parallel()
		seq := NewSequence(NewNum(1), NewPoint(geom.Pt(2, 3)))

		require.Equal(t, KindSequence, seq.Kind())
		items := seq.Items()
		require.Len(t, items, 2)
		assert.Equal(t, KindNum, items[0].Kind())
		assert.Equal(t, KindPoint, items[1].Kind())
	})
}

func TestBindings(t *testing.T) {
	t.Parallel()

	t.Run("stores nums and points separately", func(t *testing.T) {
		t.Parallel()
		b := NewBindings()
		b.SetNum("r", 4)
		b.SetPoint("c", geom.Pt(1, 1))

		v, ok := b.Num("r")
		require.True(t, ok)
		assert.Equal(t, 4.0, v)

		p, ok := b.Point("c")
		require.True(t, ok)
		assert.Equal(t, geom.Pt(1, 1), p)

		_, ok = b.Num("c")
		assert.False(t, ok)
	})

	t.Run("names are sorted", func(t *testing.T) {
		t.Parallel()
		b := NewBindings()
		b.SetNum("z", 1)
		b.SetPoint("a", geom.Pt(0, 0))
		b.SetNum("m", 2)

		assert.Equal(t, []string{"a", "m", "z"}, b.Names())
	})
}

func TestProgram_Validate(t *testing.T) {
	t.Parallel()

	t.Run("rejects nil program", func(t *testing.T) {
		t.Parallel()
		var p *Program
		assert.ErrorIs(t, p.Validate(), ErrProgramInvalid)
	})

	t.Run("rejects missing id", func(t *testing.T) {
		t.Parallel()
		p := &Program{Module: []byte{0x00, 0x61, 0x73, 0x6d}}
		assert.ErrorIs(t, p.Validate(), ErrProgramInvalid)
	})

	t.Run("rejects missing module", func(t *testing.T) {
		t.Parallel()
		p := &Program{ID: "ring"}
		assert.ErrorIs(t, p.Validate(), ErrProgramInvalid)
	})

	t.Run("accepts complete program", func(t *testing.T) {
		t.Parallel()
		p := &Program{ID: "ring", Module: []byte{0x00, 0x61, 0x73, 0x6d}}
		assert.NoError(t, p.Validate())
	})
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	assert.Positive(t, cfg.Timeout)
	assert.Positive(t, cfg.MaxResultItems)
}
