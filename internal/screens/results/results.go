// Package results shows the score and the per-question report.
package results

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/marubatsu/internal/screen"
	"github.com/abhisek/marubatsu/internal/session"
	"github.com/abhisek/marubatsu/internal/ui/layout"
	"github.com/abhisek/marubatsu/internal/ui/theme"
)

// DoneMsg returns to mode select.
type DoneMsg struct{}

// RetryMsg starts another session in the same mode.
type RetryMsg struct{}

var (
	keyDone  = key.NewBinding(key.WithKeys("enter"))
	keyRetry = key.NewBinding(key.WithKeys("r", "R"))
	keyAll   = key.NewBinding(key.WithKeys("a", "A", "tab"))
	keyUp    = key.NewBinding(key.WithKeys("up", "k"))
	keyDown  = key.NewBinding(key.WithKeys("down", "j"))
)

// ResultsScreen displays a scored session.
type ResultsScreen struct {
	result  session.Result
	modeNm  string
	showAll bool // report lists every question instead of only the misses
	offset  int
}

var _ screen.Screen = (*ResultsScreen)(nil)
var _ screen.KeyHintProvider = (*ResultsScreen)(nil)

// New creates the screen for res. modeName is shown in the heading.
func New(res session.Result, modeName string) *ResultsScreen {
	return &ResultsScreen{result: res, modeNm: modeName}
}

func (s *ResultsScreen) Init() tea.Cmd {
	return nil
}

func (s *ResultsScreen) Title() string {
	return "結果"
}

func (s *ResultsScreen) KeyHints() []layout.KeyHint {
	toggle := "全問表示"
	if s.showAll {
		toggle = "誤答のみ"
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "スクロール"},
		{Key: "A", Description: toggle},
		{Key: "R", Description: "もう一度"},
		{Key: "Enter", Description: "モード選択"},
	}
}

func (s *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch {
	case key.Matches(kmsg, keyDone):
		return s, func() tea.Msg { return DoneMsg{} }
	case key.Matches(kmsg, keyRetry):
		return s, func() tea.Msg { return RetryMsg{} }
	case key.Matches(kmsg, keyAll):
		s.showAll = !s.showAll
		s.offset = 0
	case key.Matches(kmsg, keyUp):
		s.offset = max(s.offset-1, 0)
	case key.Matches(kmsg, keyDown):
		s.offset = min(s.offset+1, max(len(s.items())-1, 0))
	}
	return s, nil
}

func (s *ResultsScreen) items() []session.ReportItem {
	if s.showAll {
		return s.result.Report
	}
	return s.result.Missed()
}

func (s *ResultsScreen) View(width, height int) string {
	res := s.result

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(layout.Centered(theme.Title, width, s.modeNm+" 結果"))
	b.WriteString("\n\n")

	verdict := layout.Centered(theme.Incorrect, width, fmt.Sprintf("不合格 (合格ライン %d%%)", res.PassRate))
	if res.Passed {
		verdict = layout.Centered(theme.Correct, width, fmt.Sprintf("合格! (合格ライン %d%%)", res.PassRate))
	}
	b.WriteString(verdict)
	b.WriteString("\n")

	mins := int(res.Duration.Minutes())
	secs := int(res.Duration.Seconds()) % 60
	b.WriteString(layout.Centered(lipgloss.NewStyle().Foreground(theme.Text), width,
		fmt.Sprintf("%d / %d問正解   正答率 %d%%   所要時間 %d:%02d", res.Score, res.Total, res.Percentage, mins, secs)))
	b.WriteString("\n\n")

	heading := fmt.Sprintf("間違えた問題 (%d)", len(res.Missed()))
	if s.showAll {
		heading = fmt.Sprintf("全問題 (%d)", len(res.Report))
	}
	b.WriteString(layout.Centered(theme.Subtitle, width, heading))
	b.WriteString("\n")
	b.WriteString(layout.Divider(width, 70))
	b.WriteString("\n")

	items := s.items()
	if len(items) == 0 {
		b.WriteString(layout.Centered(theme.Correct, width, "\n全問正解です"))
		return b.String()
	}

	used := lipgloss.Height(b.String())
	b.WriteString(s.renderReport(items, width, max(height-used-1, 3)))
	return b.String()
}

// renderReport draws report rows from the scroll offset until the height
// budget is spent.
func (s *ResultsScreen) renderReport(items []session.ReportItem, width, budget int) string {
	rowWidth := min(width-8, 70)
	var rows []string
	used := 0
	for _, it := range items[min(s.offset, len(items)-1):] {
		row := renderItem(it, rowWidth)
		h := lipgloss.Height(row)
		if used > 0 && used+h > budget {
			break
		}
		rows = append(rows, row)
		used += h
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(rows, "\n"))
}

func renderItem(it session.ReportItem, width int) string {
	status := theme.Correct.Render("正")
	if !it.Correct {
		status = theme.Incorrect.Render("誤")
	}
	head := fmt.Sprintf("%s %s  あなた %s / 正解 %s", status, it.QuestionID, theme.Mark(it.UserAnswer), theme.Mark(it.CorrectAnswer))

	body := lipgloss.NewStyle().Width(width).Foreground(theme.Text).Render(it.Text)
	parts := []string{head, body}
	if it.Explanation != "" {
		parts = append(parts, lipgloss.NewStyle().Width(width).Foreground(theme.TextDim).Render("解説: "+it.Explanation))
	}
	return strings.Join(parts, "\n") + "\n"
}
