package mcp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateReplayInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   *ReplayInput
		wantErr bool
		errMsg  string
	}{
		{
			name:  "valid name",
			input: &ReplayInput{Script: "rows.yaml"},
		},
		{
			name:    "empty",
			input:   &ReplayInput{},
			wantErr: true,
			errMsg:  "invalid script",
		},
		{
			name:    "traversal",
			input:   &ReplayInput{Script: "../secrets.yaml"},
			wantErr: true,
			errMsg:  "invalid script",
		},
		{
			name:    "absolute path",
			input:   &ReplayInput{Script: "/etc/passwd"},
			wantErr: true,
			errMsg:  "invalid script",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateReplayInput(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateSnapInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   *SnapInput
		wantErr bool
		errMsg  string
	}{
		{
			name:  "valid",
			input: &SnapInput{X: 3, Y: -4, Tolerance: 8},
		},
		{
			name:  "zero tolerance means default",
			input: &SnapInput{X: 0, Y: 0},
		},
		{
			name:    "NaN x",
			input:   &SnapInput{X: math.NaN(), Y: 0},
			wantErr: true,
			errMsg:  "invalid x",
		},
		{
			name:    "infinite y",
			input:   &SnapInput{X: 0, Y: math.Inf(-1)},
			wantErr: true,
			errMsg:  "invalid y",
		},
		{
			name:    "negative tolerance",
			input:   &SnapInput{X: 0, Y: 0, Tolerance: -1},
			wantErr: true,
			errMsg:  "invalid tolerance",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateSnapInput(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateCursorInput(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateCursorInput(&CursorInput{}))

	zero := 0
	assert.NoError(t, ValidateCursorInput(&CursorInput{Position: &zero}))

	big := 10000
	assert.NoError(t, ValidateCursorInput(&CursorInput{Position: &big}))

	negative := -1
	err := ValidateCursorInput(&CursorInput{Position: &negative})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid position")
}
