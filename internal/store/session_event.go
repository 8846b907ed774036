package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *eventRepo) AppendAnswerEvent(ctx context.Context, data AnswerEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO answer_events
			(sequence, timestamp, session_id, question_id, section,
			 learner_answer, correct_answer, correct, streak)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum, time.Now().UTC(), data.SessionID, data.QuestionID, data.Section,
		data.LearnerAnswer, data.CorrectAnswer, data.Correct, data.Streak)
	if err != nil {
		return fmt.Errorf("save answer event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO session_events
			(sequence, timestamp, session_id, mode, action,
			 questions, score, percentage, passed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum, time.Now().UTC(), data.SessionID, data.Mode, data.Action,
		data.Questions, data.Score, data.Percentage, data.Passed)
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) AnswerTotals(ctx context.Context) (AnswerTotals, error) {
	var t AnswerTotals
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN correct THEN 1 ELSE 0 END), 0),
		       COUNT(DISTINCT question_id)
		FROM answer_events`,
	).Scan(&t.Answers, &t.Correct, &t.Questions)
	if err != nil {
		return AnswerTotals{}, fmt.Errorf("query answer totals: %w", err)
	}
	return t, nil
}

func (r *eventRepo) RecentSessions(ctx context.Context, limit int) ([]SessionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT sequence, timestamp, session_id, mode, action,
		       questions, score, percentage, passed
		FROM session_events
		WHERE action = ?
		ORDER BY sequence DESC
		LIMIT ?`, SessionComplete, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		if err := rows.Scan(&rec.Sequence, &rec.Timestamp, &rec.SessionID, &rec.Mode,
			&rec.Action, &rec.Questions, &rec.Score, &rec.Percentage, &rec.Passed); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *eventRepo) MostMissed(ctx context.Context, limit int) ([]MissCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT question_id, COUNT(*) AS misses
		FROM answer_events
		WHERE NOT correct
		GROUP BY question_id
		ORDER BY misses DESC, question_id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query most missed: %w", err)
	}
	defer rows.Close()

	var out []MissCount
	for rows.Next() {
		var m MissCount
		if err := rows.Scan(&m.QuestionID, &m.Misses); err != nil {
			return nil, fmt.Errorf("scan miss count: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
