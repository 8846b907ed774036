package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/marubatsu/internal/bank"
	"github.com/abhisek/marubatsu/internal/ledger"
)

// Phase is the engine's position within the current question.
type Phase int

const (
	PhaseAwaiting Phase = iota // Waiting for an answer to the current question
	PhaseAnswered              // Answer recorded, feedback on screen
	PhaseComplete              // Every question answered
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaiting:
		return "awaiting"
	case PhaseAnswered:
		return "answered"
	case PhaseComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Saver persists the ledger after every answer. *ledger.Repo satisfies it.
type Saver interface {
	Save(ctx context.Context, l ledger.Ledger) error
}

// AnswerEvent describes one recorded answer.
type AnswerEvent struct {
	SessionID string
	Index     int
	Question  bank.Question
	Answer    bool
	Correct   bool
	// Streak is the ledger streak after the answer; Tracked is false once
	// the question is no longer in the ledger.
	Streak  int
	Tracked bool
}

// AnswerObserver is notified after each answer has been applied.
type AnswerObserver interface {
	OnAnswer(ctx context.Context, ev AnswerEvent)
}

// Feedback is what the learner sees right after answering.
type Feedback struct {
	Question    bank.Question
	Answer      bool
	Correct     bool
	Explanation string // only set when the answer was wrong
	Streak      int
	Tracked     bool
	Graduated   bool
}

// Engine walks one session question by question. It is not safe for
// concurrent use.
type Engine struct {
	id        string
	questions []bank.Question
	answers   []bool
	index     int
	phase     Phase
	last      Feedback

	ledger   ledger.Ledger
	saver    Saver
	observer AnswerObserver
	logger   *zap.Logger

	startedAt time.Time
	elapsed   time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver registers an observer for answer events.
func WithObserver(o AnswerObserver) Option {
	return func(e *Engine) { e.observer = o }
}

// WithLogger sets the engine logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithSessionID overrides the generated session id.
func WithSessionID(id string) Option {
	return func(e *Engine) { e.id = id }
}

// NewEngine starts a session over questions. A nil saver keeps the ledger
// in memory only.
func NewEngine(questions []bank.Question, l ledger.Ledger, saver Saver, opts ...Option) *Engine {
	if l == nil {
		l = ledger.New()
	}
	e := &Engine{
		id:        uuid.NewString(),
		questions: questions,
		answers:   make([]bool, 0, len(questions)),
		ledger:    l,
		saver:     saver,
		logger:    zap.NewNop(),
		startedAt: time.Now(),
	}
	for _, o := range opts {
		o(e)
	}
	if len(questions) == 0 {
		e.phase = PhaseComplete
	}
	return e
}

// ID returns the session id.
func (e *Engine) ID() string { return e.id }

// Phase returns the current phase.
func (e *Engine) Phase() Phase { return e.phase }

// Index returns the zero-based position of the current question.
func (e *Engine) Index() int { return e.index }

// Total returns the number of questions in the session.
func (e *Engine) Total() int { return len(e.questions) }

// Answered returns how many answers have been recorded.
func (e *Engine) Answered() int { return len(e.answers) }

// Ledger returns the ledger as updated by the answers so far.
func (e *Engine) Ledger() ledger.Ledger { return e.ledger }

// Questions returns the session questions in order.
func (e *Engine) Questions() []bank.Question { return e.questions }

// Current returns the question being asked. ok is false once complete.
func (e *Engine) Current() (bank.Question, bool) {
	if e.phase == PhaseComplete || e.index >= len(e.questions) {
		return bank.Question{}, false
	}
	return e.questions[e.index], true
}

// LastFeedback returns the feedback for the most recent answer.
func (e *Engine) LastFeedback() Feedback { return e.last }

// Correct returns the number of correct answers so far.
func (e *Engine) Correct() int {
	n := 0
	for i, a := range e.answers {
		if a == e.questions[i].Answer {
			n++
		}
	}
	return n
}

// Submit records the answer to the current question, updates the ledger
// and saves it. It returns false without side effects unless the engine is
// awaiting an answer. A failed save is logged and does not stop the quiz.
func (e *Engine) Submit(ctx context.Context, answer bool) (Feedback, bool) {
	if e.phase != PhaseAwaiting {
		return Feedback{}, false
	}

	q := e.questions[e.index]
	correct := answer == q.Answer
	e.answers = append(e.answers, answer)

	_, wasTracked := e.ledger.Streak(q.ID)
	e.ledger = e.ledger.Record(q.ID, correct)
	streak, tracked := e.ledger.Streak(q.ID)

	if e.saver != nil {
		if err := e.saver.Save(ctx, e.ledger); err != nil {
			e.logger.Warn("ledger save failed",
				zap.String("session_id", e.id),
				zap.String("question_id", q.ID),
				zap.Error(err))
		}
	}

	fb := Feedback{
		Question:  q,
		Answer:    answer,
		Correct:   correct,
		Streak:    streak,
		Tracked:   tracked,
		Graduated: wasTracked && !tracked,
	}
	if !correct {
		fb.Explanation = q.Explanation
	}
	e.last = fb
	e.phase = PhaseAnswered

	if e.observer != nil {
		e.observer.OnAnswer(ctx, AnswerEvent{
			SessionID: e.id,
			Index:     e.index,
			Question:  q,
			Answer:    answer,
			Correct:   correct,
			Streak:    streak,
			Tracked:   tracked,
		})
	}
	return fb, true
}

// Advance moves past the feedback to the next question, or completes the
// session after the last one. It returns false outside PhaseAnswered.
func (e *Engine) Advance() bool {
	if e.phase != PhaseAnswered {
		return false
	}
	e.index++
	if e.index >= len(e.questions) {
		e.phase = PhaseComplete
		e.elapsed = time.Since(e.startedAt)
		return true
	}
	e.phase = PhaseAwaiting
	return true
}
