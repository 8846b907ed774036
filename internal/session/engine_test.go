package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/marubatsu/internal/bank"
	"github.com/abhisek/marubatsu/internal/ledger"
)

type recordingSaver struct {
	saved []ledger.Ledger
	err   error
}

func (r *recordingSaver) Save(_ context.Context, l ledger.Ledger) error {
	r.saved = append(r.saved, l.Clone())
	return r.err
}

type recordingObserver struct {
	events []AnswerEvent
}

func (r *recordingObserver) OnAnswer(_ context.Context, ev AnswerEvent) {
	r.events = append(r.events, ev)
}

func threeQuestions() []bank.Question {
	return []bank.Question{
		{ID: "1-1", Text: "A", Answer: true},
		{ID: "1-2", Text: "B", Answer: false, Explanation: "B is wrong"},
		{ID: "1-3", Text: "C", Answer: true, Explanation: "C is right"},
	}
}

func TestEngineScenario(t *testing.T) {
	saver := &recordingSaver{}
	e := NewEngine(threeQuestions(), ledger.New(), saver, WithSessionID("s-1"))
	ctx := context.Background()

	for _, ans := range []bool{true, false, false} {
		require.Equal(t, PhaseAwaiting, e.Phase())
		_, ok := e.Submit(ctx, ans)
		require.True(t, ok)
		require.True(t, e.Advance())
	}
	require.Equal(t, PhaseComplete, e.Phase())

	res, err := e.Result(bank.Mode{Key: "test", PassRate: 90})
	require.NoError(t, err)
	assert.Equal(t, "s-1", res.SessionID)
	assert.Equal(t, 2, res.Score)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 67, res.Percentage)
	assert.False(t, res.Passed)
	assert.Equal(t, ledger.Ledger{"1-3": 0}, e.Ledger())

	require.Len(t, saver.saved, 3, "ledger saved once per answer")
	assert.Equal(t, ledger.Ledger{"1-3": 0}, saver.saved[2])

	require.Len(t, res.Report, 3)
	assert.Equal(t, "", res.Report[1].Explanation, "no explanation for correct answers")
	assert.Equal(t, ReportItem{
		QuestionID:    "1-3",
		Text:          "C",
		UserAnswer:    false,
		CorrectAnswer: true,
		Correct:       false,
		Explanation:   "C is right",
	}, res.Report[2])
	assert.Len(t, res.Missed(), 1)
}

func TestSubmitFeedback(t *testing.T) {
	e := NewEngine(threeQuestions(), ledger.Ledger{"1-2": 2}, nil)
	ctx := context.Background()

	fb, ok := e.Submit(ctx, true)
	require.True(t, ok)
	assert.True(t, fb.Correct)
	assert.False(t, fb.Tracked)
	assert.Empty(t, fb.Explanation)
	e.Advance()

	fb, ok = e.Submit(ctx, false)
	require.True(t, ok)
	assert.True(t, fb.Correct)
	assert.True(t, fb.Graduated, "third correct answer graduates 1-2")
	e.Advance()

	fb, ok = e.Submit(ctx, false)
	require.True(t, ok)
	assert.False(t, fb.Correct)
	assert.Equal(t, "C is right", fb.Explanation)
	assert.True(t, fb.Tracked)
	assert.Equal(t, 0, fb.Streak)
	assert.Equal(t, fb, e.LastFeedback())
}

func TestDoubleSubmitIgnored(t *testing.T) {
	saver := &recordingSaver{}
	e := NewEngine(threeQuestions(), ledger.New(), saver)
	ctx := context.Background()

	_, ok := e.Submit(ctx, false)
	require.True(t, ok)
	_, ok = e.Submit(ctx, true)
	assert.False(t, ok)
	assert.Equal(t, 1, e.Answered())
	assert.Len(t, saver.saved, 1)
	assert.Equal(t, ledger.Ledger{"1-1": 0}, e.Ledger())
}

func TestAdvanceOnlyAfterAnswer(t *testing.T) {
	e := NewEngine(threeQuestions(), nil, nil)
	assert.False(t, e.Advance())
	assert.Equal(t, 0, e.Index())
}

func TestResultBeforeComplete(t *testing.T) {
	e := NewEngine(threeQuestions(), nil, nil)
	_, err := e.Result(bank.Provisional)
	assert.ErrorIs(t, err, ErrNotComplete)
}

func TestEmptySession(t *testing.T) {
	e := NewEngine(nil, nil, nil)
	assert.Equal(t, PhaseComplete, e.Phase())
	_, ok := e.Current()
	assert.False(t, ok)
	_, ok = e.Submit(context.Background(), true)
	assert.False(t, ok)

	res, err := e.Result(bank.Provisional)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Percentage)
	assert.False(t, res.Passed)
}

func TestSaveErrorDoesNotBlock(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	saver := &recordingSaver{err: errors.New("disk full")}
	e := NewEngine(threeQuestions(), nil, saver, WithLogger(zap.New(core)))

	_, ok := e.Submit(context.Background(), false)
	require.True(t, ok)
	assert.True(t, e.Advance())
	assert.Equal(t, PhaseAwaiting, e.Phase())
	assert.Equal(t, 1, logs.FilterMessage("ledger save failed").Len())
}

func TestObserverReceivesAnswers(t *testing.T) {
	obs := &recordingObserver{}
	e := NewEngine(threeQuestions(), nil, nil, WithObserver(obs), WithSessionID("s-obs"))
	ctx := context.Background()

	e.Submit(ctx, true)
	e.Advance()
	e.Submit(ctx, true)

	require.Len(t, obs.events, 2)
	assert.Equal(t, AnswerEvent{
		SessionID: "s-obs",
		Index:     1,
		Question:  threeQuestions()[1],
		Answer:    true,
		Correct:   false,
		Streak:    0,
		Tracked:   true,
	}, obs.events[1])
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		score, total, want int
	}{
		{2, 3, 67},
		{1, 3, 33},
		{45, 50, 90},
		{44, 50, 88},
		{1, 8, 13}, // 12.5 rounds half up
		{0, 0, 0},
		{5, 5, 100},
	}
	for _, tt := range tests {
		if got := Percentage(tt.score, tt.total); got != tt.want {
			t.Errorf("Percentage(%d, %d) = %d, want %d", tt.score, tt.total, got, tt.want)
		}
	}
}

func TestPassBoundary(t *testing.T) {
	qs := makePool(10)
	e := NewEngine(qs, nil, nil)
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		q, _ := e.Current()
		ans := q.Answer
		if i == 0 {
			ans = !ans
		}
		e.Submit(ctx, ans)
		e.Advance()
	}
	res, err := e.Result(bank.Mode{PassRate: 90})
	require.NoError(t, err)
	assert.Equal(t, 90, res.Percentage)
	assert.True(t, res.Passed, "90 percent with pass rate 90 passes")
}
