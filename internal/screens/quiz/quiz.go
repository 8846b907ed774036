// Package quiz renders a running session: loading, one question at a
// time and the feedback after each answer.
package quiz

import (
	"context"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/marubatsu/internal/bank"
	"github.com/abhisek/marubatsu/internal/screen"
	"github.com/abhisek/marubatsu/internal/session"
	"github.com/abhisek/marubatsu/internal/ui/layout"
)

// ReadyMsg hands the screen the engine once the pool has loaded.
type ReadyMsg struct {
	Engine *session.Engine
}

// EmptyMsg reports that no questions could be loaded.
type EmptyMsg struct {
	Err error
}

// FinishedMsg is emitted after the last question's feedback is dismissed.
type FinishedMsg struct{}

// QuitMsg is emitted when the learner confirms abandoning the quiz.
type QuitMsg struct{}

// explanationMsg delivers a generated explanation.
type explanationMsg struct {
	QuestionID string
	Text       string
}

// Explainer produces an explanation for a question lacking one. Failures
// yield "".
type Explainer interface {
	Fill(ctx context.Context, q bank.Question) string
}

type keyMap struct {
	True    key.Binding
	False   key.Binding
	Next    key.Binding
	Abandon key.Binding
	Yes     key.Binding
	No      key.Binding
}

var keys = keyMap{
	True:    key.NewBinding(key.WithKeys("o", "O", "1")),
	False:   key.NewBinding(key.WithKeys("x", "X", "2")),
	Next:    key.NewBinding(key.WithKeys("enter", "space")),
	Abandon: key.NewBinding(key.WithKeys("esc")),
	Yes:     key.NewBinding(key.WithKeys("y", "Y")),
	No:      key.NewBinding(key.WithKeys("n", "N", "esc")),
}

// QuizScreen implements screen.Screen for one session.
type QuizScreen struct {
	mode      bank.Mode
	engine    *session.Engine
	explainer Explainer

	empty    bool
	emptyErr error

	explanation string
	explaining  bool
	confirmQuit bool
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.EscapeHandler = (*QuizScreen)(nil)

// New creates a screen in the loading state. explainer may be nil.
func New(mode bank.Mode, explainer Explainer) *QuizScreen {
	return &QuizScreen{mode: mode, explainer: explainer}
}

func (s *QuizScreen) Init() tea.Cmd {
	return nil
}

func (s *QuizScreen) Title() string {
	return s.mode.Name
}

// CapturesEscape is true while a question is on screen, so Esc asks for
// confirmation instead of dropping the session.
func (s *QuizScreen) CapturesEscape() bool {
	return s.engine != nil && s.engine.Phase() != session.PhaseComplete
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.confirmQuit:
		return []layout.KeyHint{
			{Key: "Y", Description: "中断する"},
			{Key: "N", Description: "続ける"},
		}
	case s.engine == nil:
		return []layout.KeyHint{
			{Key: "Esc", Description: "戻る"},
			{Key: "Ctrl+C", Description: "終了"},
		}
	case s.engine.Phase() == session.PhaseAnswered:
		return []layout.KeyHint{
			{Key: "Enter", Description: "次へ"},
			{Key: "Esc", Description: "中断"},
		}
	default:
		return []layout.KeyHint{
			{Key: "O/1", Description: "○ 正しい"},
			{Key: "X/2", Description: "× 誤り"},
			{Key: "Esc", Description: "中断"},
		}
	}
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case ReadyMsg:
		s.engine = msg.Engine
		s.empty = false
		if s.engine != nil && s.engine.Total() == 0 {
			s.empty = true
		}
		return s, nil

	case EmptyMsg:
		s.empty = true
		s.emptyErr = msg.Err
		return s, nil

	case explanationMsg:
		if q, ok := s.answeredQuestion(); ok && q.ID == msg.QuestionID {
			s.explanation = msg.Text
			s.explaining = false
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.engine == nil {
		return s, nil
	}

	if s.confirmQuit {
		switch {
		case key.Matches(msg, keys.Yes):
			s.confirmQuit = false
			return s, func() tea.Msg { return QuitMsg{} }
		case key.Matches(msg, keys.No):
			s.confirmQuit = false
		}
		return s, nil
	}

	if key.Matches(msg, keys.Abandon) {
		if s.CapturesEscape() {
			s.confirmQuit = true
		}
		return s, nil
	}

	switch s.engine.Phase() {
	case session.PhaseAwaiting:
		switch {
		case key.Matches(msg, keys.True):
			return s.submit(true)
		case key.Matches(msg, keys.False):
			return s.submit(false)
		}

	case session.PhaseAnswered:
		if key.Matches(msg, keys.Next) {
			s.engine.Advance()
			s.explanation = ""
			s.explaining = false
			if s.engine.Phase() == session.PhaseComplete {
				return s, func() tea.Msg { return FinishedMsg{} }
			}
		}
	}
	return s, nil
}

func (s *QuizScreen) submit(answer bool) (screen.Screen, tea.Cmd) {
	fb, ok := s.engine.Submit(context.Background(), answer)
	if !ok {
		return s, nil
	}
	s.explanation = fb.Explanation
	if fb.Correct || fb.Explanation != "" || s.explainer == nil {
		return s, nil
	}

	s.explaining = true
	q := fb.Question
	explainer := s.explainer
	return s, func() tea.Msg {
		return explanationMsg{QuestionID: q.ID, Text: explainer.Fill(context.Background(), q)}
	}
}

// answeredQuestion returns the question whose feedback is on screen.
func (s *QuizScreen) answeredQuestion() (bank.Question, bool) {
	if s.engine == nil || s.engine.Phase() != session.PhaseAnswered {
		return bank.Question{}, false
	}
	return s.engine.LastFeedback().Question, true
}
