package validation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateScriptName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "simple yaml name", input: "rows.yaml"},
		{name: "hyphens and underscores", input: "right-triangle_4.yml"},
		{name: "spaces inside", input: "spaced rows.yaml"},
		{name: "empty", input: "", wantErr: ErrEmptyInput},
		{name: "null byte", input: "rows\x00.yaml", wantErr: ErrInvalidScriptName},
		{name: "forward slash", input: "figures/rows.yaml", wantErr: ErrInvalidScriptName},
		{name: "backslash", input: `figures\rows.yaml`, wantErr: ErrInvalidScriptName},
		{name: "traversal", input: "..", wantErr: ErrPathTraversal},
		{name: "encoded traversal", input: "%2e%2e.yaml", wantErr: ErrPathTraversal},
		{name: "leading dot", input: ".hidden.yaml", wantErr: ErrInvalidScriptName},
		{name: "shell characters", input: "rows;rm.yaml", wantErr: ErrInvalidScriptName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateScriptName(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateCoordinate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateCoordinate(0))
	assert.NoError(t, ValidateCoordinate(-123.5))
	assert.ErrorIs(t, ValidateCoordinate(math.NaN()), ErrInvalidNumber)
	assert.ErrorIs(t, ValidateCoordinate(math.Inf(1)), ErrInvalidNumber)
	assert.ErrorIs(t, ValidateCoordinate(math.Inf(-1)), ErrInvalidNumber)
}

func TestValidateTolerance(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateTolerance(0))
	assert.NoError(t, ValidateTolerance(8))
	assert.ErrorIs(t, ValidateTolerance(-1), ErrInvalidNumber)
	assert.ErrorIs(t, ValidateTolerance(math.NaN()), ErrInvalidNumber)
	assert.ErrorIs(t, ValidateTolerance(math.Inf(1)), ErrInvalidNumber)
}

func TestValidatePosition(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidatePosition(0))
	assert.NoError(t, ValidatePosition(42))
	assert.ErrorIs(t, ValidatePosition(-1), ErrInvalidPosition)
}
