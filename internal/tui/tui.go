// Package tui provides terminal user interface entry points for linework.
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/linework/internal/app"
)

// BrowseResult holds the result of a browse session.
type BrowseResult struct {
	// Cursor is the position the user left the session cursor on.
	Cursor int
}

// RunBrowser runs the interactive step log browser over the
// application's current figure.
func RunBrowser(ctx context.Context, lw *app.Linework) (*BrowseResult, error) {
	model := newBrowserModel(lw)

	p := tea.NewProgram(model, tea.WithContext(ctx))
	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("step browser failed: %w", err)
	}

	m, ok := finalModel.(browserModel)
	if !ok {
		return nil, fmt.Errorf("unexpected model type")
	}

	return &BrowseResult{Cursor: m.cursor}, nil
}
