package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowseCommand_UseAndShort(t *testing.T) {
	assert.Equal(t, "browse", browseCmd.Use)
	assert.Equal(t, "Browse the step log interactively", browseCmd.Short)
}

func TestBrowseCommand_HasFlags(t *testing.T) {
	tests := []struct {
		name     string
		flagName string
	}{
		{"script_flag_exists", "script"},
		{"cursor_flag_exists", "cursor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := browseCmd.Flags().Lookup(tt.flagName)
			assert.NotNil(t, flag, "flag %s should exist", tt.flagName)
		})
	}
}

func TestRunBrowse_RejectsTraversal(t *testing.T) {
	saved := browseScript
	browseScript = "../rows.yaml"
	defer func() { browseScript = saved }()

	err := runBrowse(nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid script")
}

func TestBrowseCommand_IsSubcommandOfRoot(t *testing.T) {
	found := false
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == "browse" {
			found = true
			break
		}
	}
	assert.True(t, found, "browse should be a subcommand of root")
}
