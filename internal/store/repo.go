package store

import (
	"context"
	"time"
)

// Session actions recorded in session_events.
const (
	SessionStart    = "start"
	SessionComplete = "complete"
	SessionAbandon  = "abandon"
)

// AnswerEventData captures one submitted answer.
type AnswerEventData struct {
	SessionID     string
	QuestionID    string
	Section       int
	LearnerAnswer bool
	CorrectAnswer bool
	Correct       bool
	// Streak is the ledger streak after the answer, -1 once untracked.
	Streak int
}

// SessionEventData captures a session boundary.
type SessionEventData struct {
	SessionID  string
	Mode       string
	Action     string
	Questions  int
	Score      int
	Percentage int
	Passed     bool
}

// SessionRecord is a stored session event.
type SessionRecord struct {
	Sequence  int64
	Timestamp time.Time
	SessionEventData
}

// AnswerTotals aggregates the answer history.
type AnswerTotals struct {
	Answers   int
	Correct   int
	Questions int
}

// Accuracy returns Correct/Answers, or 0 without answers.
func (t AnswerTotals) Accuracy() float64 {
	if t.Answers == 0 {
		return 0
	}
	return float64(t.Correct) / float64(t.Answers)
}

// EventRepo provides append and summary access to quiz history.
type EventRepo interface {
	// AppendAnswerEvent records one submitted answer.
	AppendAnswerEvent(ctx context.Context, data AnswerEventData) error

	// AppendSessionEvent records a session start, completion or abandonment.
	AppendSessionEvent(ctx context.Context, data SessionEventData) error

	// AnswerTotals summarises every recorded answer.
	AnswerTotals(ctx context.Context) (AnswerTotals, error)

	// RecentSessions returns up to limit completed sessions, newest first.
	RecentSessions(ctx context.Context, limit int) ([]SessionRecord, error)

	// MostMissed returns up to limit question ids ordered by miss count.
	MostMissed(ctx context.Context, limit int) ([]MissCount, error)
}

// MissCount is the number of incorrect answers for one question.
type MissCount struct {
	QuestionID string
	Misses     int
}
