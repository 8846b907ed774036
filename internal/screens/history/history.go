// Package history lists past sessions and the most-missed questions.
package history

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/marubatsu/internal/screen"
	"github.com/abhisek/marubatsu/internal/store"
	"github.com/abhisek/marubatsu/internal/ui/layout"
	"github.com/abhisek/marubatsu/internal/ui/theme"
)

const (
	sessionLimit = 20
	missedLimit  = 10
)

type historyLoadedMsg struct {
	Sessions []store.SessionRecord
	Missed   []store.MissCount
	Totals   store.AnswerTotals
	Err      error
}

var (
	keyUp   = key.NewBinding(key.WithKeys("up", "k"))
	keyDown = key.NewBinding(key.WithKeys("down", "j"))
)

// HistoryScreen displays recorded sessions.
type HistoryScreen struct {
	repo     store.EventRepo
	sessions []store.SessionRecord
	missed   []store.MissCount
	totals   store.AnswerTotals
	selected int
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(repo store.EventRepo) *HistoryScreen {
	return &HistoryScreen{repo: repo}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.repo
	return func() tea.Msg {
		ctx := context.Background()

		sessions, err := repo.RecentSessions(ctx, sessionLimit)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		totals, err := repo.AnswerTotals(ctx)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		// The session list is still useful without the miss ranking.
		missed, _ := repo.MostMissed(ctx, missedLimit)

		return historyLoadedMsg{Sessions: sessions, Missed: missed, Totals: totals}
	}
}

func (s *HistoryScreen) Title() string {
	return "学習履歴"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "選択"},
		{Key: "Esc", Description: "戻る"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
			s.missed = msg.Missed
			s.totals = msg.Totals
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keyUp):
			s.selected = max(s.selected-1, 0)
		case key.Matches(msg, keyDown):
			s.selected = min(s.selected+1, max(len(s.sessions)-1, 0))
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.Centered(lipgloss.NewStyle().Foreground(theme.Error), width,
			fmt.Sprintf("\n\n履歴を読み込めませんでした: %s", s.errMsg))
	}
	if !s.loaded {
		return layout.Centered(theme.Subtitle, width, "\n\n履歴を読み込み中...")
	}
	if len(s.sessions) == 0 && s.totals.Answers == 0 {
		return layout.Centered(theme.Hint, width, "\n\nまだ記録がありません。テストを始めましょう!")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(layout.Centered(theme.Subtitle, width,
		fmt.Sprintf("解答 %d回 ・ %d問 ・ 正答率 %.0f%%", s.totals.Answers, s.totals.Questions, s.totals.Accuracy()*100)))
	b.WriteString("\n\n")

	b.WriteString(layout.Centered(theme.Title, width, "最近のテスト"))
	b.WriteString("\n")
	if len(s.sessions) == 0 {
		b.WriteString(layout.Centered(theme.Hint, width, "完了したテストはまだありません"))
		b.WriteString("\n")
	}
	// Keep room for the miss ranking below.
	rows := max(height-lipgloss.Height(b.String())-missedLimit-4, 3)
	start := 0
	if s.selected >= rows {
		start = s.selected - rows + 1
	}
	for i := start; i < len(s.sessions) && i < start+rows; i++ {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.renderSession(i)))
		b.WriteString("\n")
	}

	if len(s.missed) > 0 {
		b.WriteString("\n")
		b.WriteString(layout.Centered(theme.Title, width, "よく間違える問題"))
		b.WriteString("\n")
		var lines []string
		for _, m := range s.missed {
			lines = append(lines, fmt.Sprintf("%-12s %3d回", m.QuestionID, m.Misses))
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Text).Render(strings.Join(lines, "\n"))))
	}
	return b.String()
}

func (s *HistoryScreen) renderSession(i int) string {
	sess := s.sessions[i]

	verdict := theme.Incorrect.Render("不合格")
	if sess.Passed {
		verdict = theme.Correct.Render("合格")
	}

	prefix := "  "
	style := lipgloss.NewStyle().Foreground(theme.Text)
	if i == s.selected {
		prefix = "▸ "
		style = style.Foreground(theme.Primary).Bold(true)
	}
	line := fmt.Sprintf("%s%s  %-12s %3d/%-3d %3d%%  ",
		prefix, sess.Timestamp.Local().Format("2006-01-02 15:04"), sess.Mode,
		sess.Score, sess.Questions, sess.Percentage)
	return style.Render(line) + verdict
}
