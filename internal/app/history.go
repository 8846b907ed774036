package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/abhisek/marubatsu/internal/session"
	"github.com/abhisek/marubatsu/internal/store"
)

// historyObserver appends every answer to the event store. Failures are
// logged; history never blocks the quiz.
type historyObserver struct {
	repo   store.EventRepo
	logger *zap.Logger
}

func (h *historyObserver) OnAnswer(ctx context.Context, ev session.AnswerEvent) {
	streak := ev.Streak
	if !ev.Tracked {
		streak = -1
	}
	err := h.repo.AppendAnswerEvent(ctx, store.AnswerEventData{
		SessionID:     ev.SessionID,
		QuestionID:    ev.Question.ID,
		Section:       ev.Question.Section,
		LearnerAnswer: ev.Answer,
		CorrectAnswer: ev.Question.Answer,
		Correct:       ev.Correct,
		Streak:        streak,
	})
	if err != nil {
		h.logger.Warn("answer event not recorded",
			zap.String("session_id", ev.SessionID),
			zap.String("question_id", ev.Question.ID),
			zap.Error(err))
	}
}
