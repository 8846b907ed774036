package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/marubatsu/internal/ui/theme"
)

// Button is a styled, non-interactive key cap such as "○ 正しい [o]".
// Keys are handled by the owning screen.
type Button struct {
	Label  string
	Key    string
	Active bool
}

// NewButton creates a new button.
func NewButton(label, key string, active bool) Button {
	return Button{Label: label, Key: key, Active: active}
}

// View renders the button.
func (b Button) View() string {
	label := b.Label
	if b.Key != "" {
		label += " [" + b.Key + "]"
	}
	if b.Active {
		return theme.ButtonActive.Render(label)
	}
	return theme.ButtonInactive.Render(label)
}

// ButtonRow lays buttons out side by side with a gap.
func ButtonRow(buttons ...Button) string {
	views := make([]string, 0, 2*len(buttons))
	for i, b := range buttons {
		if i > 0 {
			views = append(views, "   ")
		}
		views = append(views, b.View())
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, views...)
}
