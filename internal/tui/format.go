// Package tui provides formatting utilities for terminal output.
package tui

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/felixgeelhaar/linework/internal/domain/engine"
	"github.com/felixgeelhaar/linework/internal/domain/figure"
)

// FormatStatusIcon returns a display icon for the given step status.
func FormatStatusIcon(status figure.Status) string {
	switch status {
	case figure.StatusClean:
		return "✓"
	case figure.StatusDirty:
		return "~"
	case figure.StatusError:
		return "✗"
	default:
		return "○"
	}
}

// FormatName title-cases a kind or recognized-shape identifier for display.
func FormatName(name string) string {
	caser := cases.Title(language.English)
	return caser.String(name)
}

// FormatRefs renders a reference list as "#1.whole, #2.anchor[0]".
func FormatRefs(refs []figure.Reference) string {
	parts := make([]string, 0, len(refs))
	for _, ref := range refs {
		parts = append(parts, fmt.Sprintf("%s.%s", ref.Step, ref.Selector))
	}
	return strings.Join(parts, ", ")
}

// FormatRefNames renders references as picker labels, one per reference,
// e.g. "Line #4, SP #2". Targets the lookup cannot resolve keep the
// compact form.
func FormatRefNames(refs []figure.Reference, kindOf func(figure.StepID) (figure.Kind, bool)) []string {
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		kind, ok := kindOf(ref.Step)
		if !ok {
			names = append(names, ref.String())
			continue
		}
		names = append(names, ref.DisplayName(kind))
	}
	return names
}

// FormatStep renders one step as a plain text row: status icon, id, kind,
// then the recognized shape, expansion origin, error message and
// references as applicable.
func FormatStep(view engine.StepView, withRefs bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %3s %s", FormatStatusIcon(view.Status), view.ID, FormatName(string(view.Kind)))

	if view.Recognized != nil {
		fmt.Fprintf(&b, " [%s]", FormatName(string(view.Recognized.Kind)))
	}
	if view.Origin != nil {
		fmt.Fprintf(&b, " (from %s, iteration %d)", view.Origin.Owner, view.Origin.Iteration)
	}
	if view.Err != nil {
		fmt.Fprintf(&b, ": %s", view.Err.Message)
	}
	if withRefs && len(view.References) > 0 {
		fmt.Fprintf(&b, "  refs %s", FormatRefs(view.References))
	}
	return b.String()
}
