// Package mcp provides MCP (Model Context Protocol) server implementation for linework.
package mcp

import (
	"fmt"

	"github.com/felixgeelhaar/linework/internal/validation"
)

// ValidateReplayInput validates ReplayInput fields.
func ValidateReplayInput(in *ReplayInput) error {
	if err := validation.ValidateScriptName(in.Script); err != nil {
		return fmt.Errorf("invalid script: %w", err)
	}
	return nil
}

// ValidateSnapInput validates SnapInput fields.
func ValidateSnapInput(in *SnapInput) error {
	if err := validation.ValidateCoordinate(in.X); err != nil {
		return fmt.Errorf("invalid x: %w", err)
	}
	if err := validation.ValidateCoordinate(in.Y); err != nil {
		return fmt.Errorf("invalid y: %w", err)
	}
	if err := validation.ValidateTolerance(in.Tolerance); err != nil {
		return fmt.Errorf("invalid tolerance: %w", err)
	}
	return nil
}

// ValidateCursorInput validates CursorInput fields.
func ValidateCursorInput(in *CursorInput) error {
	if in.Position == nil {
		return nil
	}
	if err := validation.ValidatePosition(*in.Position); err != nil {
		return fmt.Errorf("invalid position: %w", err)
	}
	return nil
}
