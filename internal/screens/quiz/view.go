package quiz

import (
	"errors"
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/marubatsu/internal/bank"
	"github.com/abhisek/marubatsu/internal/ledger"
	"github.com/abhisek/marubatsu/internal/session"
	"github.com/abhisek/marubatsu/internal/ui/components"
	"github.com/abhisek/marubatsu/internal/ui/layout"
	"github.com/abhisek/marubatsu/internal/ui/theme"
)

func (s *QuizScreen) View(width, height int) string {
	switch {
	case s.empty:
		return renderEmpty(width, s.emptyErr)
	case s.engine == nil:
		return renderLoading(width, s.mode)
	case s.confirmQuit:
		return renderQuitConfirm(width)
	case s.engine.Phase() == session.PhaseAnswered:
		return s.renderFeedback(width)
	case s.engine.Phase() == session.PhaseComplete:
		return layout.Centered(theme.Subtitle, width, "\n\n採点中...")
	default:
		return s.renderQuestion(width)
	}
}

func (s *QuizScreen) renderProgress(width int) string {
	e := s.engine
	bar := components.NewProgressBar(fmt.Sprintf("第%d問", e.Index()+1), e.Answered(), e.Total(), min(width-8, 60))
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View())
}

func (s *QuizScreen) renderQuestion(width int) string {
	q, _ := s.engine.Current()

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(s.renderProgress(width))
	b.WriteString("\n")
	b.WriteString(layout.Divider(width, 60))
	b.WriteString("\n\n")

	if streak, ok := s.engine.Ledger().Streak(q.ID); ok {
		b.WriteString(layout.Centered(lipgloss.NewStyle().Foreground(theme.Accent), width,
			"復習問題 "+ledger.StreakBar(streak)))
		b.WriteString("\n\n")
	}

	b.WriteString(renderQuestionText(width, q))
	b.WriteString("\n\n")

	row := components.ButtonRow(
		components.NewButton("○ 正しい", "o", false),
		components.NewButton("× 誤り", "x", false),
	)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, row))
	return b.String()
}

func renderQuestionText(width int, q bank.Question) string {
	text := lipgloss.NewStyle().
		Width(min(width-8, 70)).
		Foreground(theme.Text).
		Bold(true).
		Render(q.Text)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, text)
}

func (s *QuizScreen) renderFeedback(width int) string {
	fb := s.engine.LastFeedback()

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(s.renderProgress(width))
	b.WriteString("\n")
	b.WriteString(layout.Divider(width, 60))
	b.WriteString("\n\n")

	if fb.Correct {
		b.WriteString(layout.Centered(theme.Correct, width, "正解!"))
	} else {
		b.WriteString(layout.Centered(theme.Incorrect, width, "不正解"))
	}
	b.WriteString("\n\n")
	b.WriteString(renderQuestionText(width, fb.Question))
	b.WriteString("\n\n")

	row := components.ButtonRow(
		components.NewButton("○ 正しい", "", fb.Question.Answer),
		components.NewButton("× 誤り", "", !fb.Question.Answer),
	)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, row))
	b.WriteString("\n")
	b.WriteString(layout.Centered(theme.Subtitle, width,
		fmt.Sprintf("あなたの答え %s ・ 正解 %s", theme.Mark(fb.Answer), theme.Mark(fb.Question.Answer))))
	b.WriteString("\n\n")

	switch {
	case s.explaining:
		b.WriteString(layout.Centered(theme.Hint, width, "解説を作成中..."))
		b.WriteString("\n\n")
	case s.explanation != "":
		exp := lipgloss.NewStyle().
			Width(min(width-8, 70)).
			Foreground(theme.Text).
			Render("解説: " + s.explanation)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, exp))
		b.WriteString("\n\n")
	}

	switch {
	case fb.Graduated:
		b.WriteString(layout.Centered(theme.Correct, width, "3回連続正解! 復習リストから外れました"))
		b.WriteString("\n\n")
	case fb.Tracked:
		b.WriteString(layout.Centered(lipgloss.NewStyle().Foreground(theme.Accent), width,
			"復習リスト "+ledger.StreakBar(fb.Streak)))
		b.WriteString("\n\n")
	}

	next := "Enterで次の問題へ"
	if s.engine.Index() == s.engine.Total()-1 {
		next = "Enterで結果を見る"
	}
	b.WriteString(layout.Centered(theme.Hint, width, next))
	return b.String()
}

func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(layout.Centered(lipgloss.NewStyle().Foreground(theme.Text).Bold(true), width, "テストを中断しますか?"))
	b.WriteString("\n")
	b.WriteString(layout.Centered(theme.Subtitle, width, "ここまでの復習記録は保存されています。"))
	b.WriteString("\n\n")
	b.WriteString(layout.Centered(lipgloss.NewStyle().Foreground(theme.Error), width, "[Y] 中断する"))
	b.WriteString("\n")
	b.WriteString(layout.Centered(lipgloss.NewStyle().Foreground(theme.Primary), width, "[N] 続ける"))
	return b.String()
}

func renderLoading(width int, mode bank.Mode) string {
	return layout.Centered(theme.Subtitle, width, fmt.Sprintf("\n\n\n%sの問題を読み込み中...", mode.Name))
}

func renderEmpty(width int, err error) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(layout.Centered(theme.Incorrect, width, "出題できる問題がありません"))
	b.WriteString("\n\n")
	if err != nil && !errors.Is(err, bank.ErrNoQuestions) {
		b.WriteString(layout.Centered(theme.Subtitle, width, err.Error()))
		b.WriteString("\n\n")
	}
	b.WriteString(layout.Centered(theme.Hint, width, "Escでモード選択に戻る"))
	return b.String()
}
