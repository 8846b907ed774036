// Package modeselect is the root screen: pick an exam mode or quit.
package modeselect

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/marubatsu/internal/bank"
	"github.com/abhisek/marubatsu/internal/screen"
	"github.com/abhisek/marubatsu/internal/ui/components"
	"github.com/abhisek/marubatsu/internal/ui/layout"
	"github.com/abhisek/marubatsu/internal/ui/theme"
)

// SelectedMsg is emitted when the learner picks a mode.
type SelectedMsg struct {
	Mode bank.Mode
}

// HistoryMsg is emitted when the learner opens the history.
type HistoryMsg struct{}

// Option configures the screen.
type Option func(*ModeSelectScreen)

// WithHistoryEntry adds a menu entry that emits HistoryMsg.
func WithHistoryEntry() Option {
	return func(s *ModeSelectScreen) { s.history = true }
}

// ModeSelectScreen lists the available modes.
type ModeSelectScreen struct {
	menu    components.Menu
	reviews func() int
	history bool
}

var _ screen.Screen = (*ModeSelectScreen)(nil)
var _ screen.KeyHintProvider = (*ModeSelectScreen)(nil)

// New creates the screen. reviews reports how many questions are waiting
// for review and may be nil.
func New(modes []bank.Mode, reviews func() int, opts ...Option) *ModeSelectScreen {
	s := &ModeSelectScreen{reviews: reviews}
	for _, o := range opts {
		o(s)
	}

	items := make([]components.MenuItem, 0, len(modes)+1)
	for _, m := range modes {
		items = append(items, components.MenuItem{
			Label:  m.Name,
			Detail: fmt.Sprintf("%d問 ・ 合格 %d%%以上", m.QuestionCount, m.PassRate),
			Action: func() tea.Cmd {
				return func() tea.Msg { return SelectedMsg{Mode: m} }
			},
		})
	}
	if s.history {
		items = append(items, components.MenuItem{
			Label:  "学習履歴",
			Action: func() tea.Cmd {
				return func() tea.Msg { return HistoryMsg{} }
			},
		})
	}
	items = append(items, components.MenuItem{
		Label:  "終了",
		Action: func() tea.Cmd { return tea.Quit },
	})

	s.menu = components.NewMenu(items)
	return s
}

func (s *ModeSelectScreen) Init() tea.Cmd {
	return nil
}

func (s *ModeSelectScreen) Title() string {
	return "モード選択"
}

func (s *ModeSelectScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "選択"},
		{Key: "Enter", Description: "開始"},
		{Key: "Ctrl+C", Description: "終了"},
	}
}

func (s *ModeSelectScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *ModeSelectScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(layout.Centered(theme.Title, width, "運転免許 学科試験 ○×問題"))
	b.WriteString("\n\n")

	if s.reviews != nil {
		n := s.reviews()
		line := "復習待ちの問題はありません"
		style := theme.Subtitle
		if n > 0 {
			line = fmt.Sprintf("復習待ち %d問 (出題時に優先されます)", n)
			style = lipgloss.NewStyle().Foreground(theme.Accent)
		}
		b.WriteString(layout.Centered(style, width, line))
		b.WriteString("\n\n")
	}

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.menu.View()))
	return b.String()
}
