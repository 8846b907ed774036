package session

import (
	"errors"
	"math"
	"time"

	"github.com/abhisek/marubatsu/internal/bank"
)

// ErrNotComplete is returned by Result before every question is answered.
var ErrNotComplete = errors.New("session not complete")

// ReportItem is one row of the post-session report.
type ReportItem struct {
	QuestionID    string
	Text          string
	UserAnswer    bool
	CorrectAnswer bool
	Correct       bool
	Explanation   string // only set for incorrect answers
}

// Result holds the data displayed on the results screen.
type Result struct {
	SessionID  string
	Mode       string
	Score      int
	Total      int
	Percentage int
	PassRate   int
	Passed     bool
	Duration   time.Duration
	Report     []ReportItem
}

// Missed returns the report items answered incorrectly.
func (r Result) Missed() []ReportItem {
	var out []ReportItem
	for _, it := range r.Report {
		if !it.Correct {
			out = append(out, it)
		}
	}
	return out
}

// Result scores the completed session against mode's pass rate.
func (e *Engine) Result(mode bank.Mode) (Result, error) {
	if e.phase != PhaseComplete {
		return Result{}, ErrNotComplete
	}

	report := make([]ReportItem, len(e.answers))
	score := 0
	for i, a := range e.answers {
		q := e.questions[i]
		correct := a == q.Answer
		if correct {
			score++
		}
		item := ReportItem{
			QuestionID:    q.ID,
			Text:          q.Text,
			UserAnswer:    a,
			CorrectAnswer: q.Answer,
			Correct:       correct,
		}
		if !correct {
			item.Explanation = q.Explanation
		}
		report[i] = item
	}

	pct := Percentage(score, len(e.questions))
	return Result{
		SessionID:  e.id,
		Mode:       mode.Key,
		Score:      score,
		Total:      len(e.questions),
		Percentage: pct,
		PassRate:   mode.PassRate,
		Passed:     pct >= mode.PassRate,
		Duration:   e.elapsed,
		Report:     report,
	}, nil
}

// Percentage returns round(100*score/total), or 0 for an empty session.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(score) / float64(total)))
}
