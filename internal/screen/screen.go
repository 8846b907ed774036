package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/marubatsu/internal/ui/layout"
)

// Screen is one page of the quiz UI.
type Screen interface {
	// Init returns an initial command when the screen becomes active.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// EscapeHandler is implemented by screens that consume Esc themselves,
// for example to ask before abandoning a quiz. When CapturesEscape
// reports true the app forwards Esc instead of returning to mode select.
type EscapeHandler interface {
	CapturesEscape() bool
}
