package app

import (
	"context"
	"errors"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/abhisek/marubatsu/internal/bank"
	"github.com/abhisek/marubatsu/internal/ledger"
	"github.com/abhisek/marubatsu/internal/session"
	"github.com/abhisek/marubatsu/internal/store"
)

// State is the position of the UI state machine.
type State int

const (
	StateModeSelect State = iota
	StateLoading
	StateQuiz
	StateResults
	StateEmpty // loading finished without a usable question
)

func (s State) String() string {
	switch s {
	case StateModeSelect:
		return "mode-select"
	case StateLoading:
		return "loading"
	case StateQuiz:
		return "quiz"
	case StateResults:
		return "results"
	case StateEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Flow drives one learner through mode selection, loading, the quiz and
// its results. It owns the mode and the engine and knows nothing about
// rendering. Not safe for concurrent use.
type Flow struct {
	state  State
	mode   bank.Mode
	ticket int

	ledgerRepo *ledger.Repo
	ledger     ledger.Ledger
	history    store.EventRepo
	rng        *rand.Rand
	logger     *zap.Logger

	engine  *session.Engine
	result  session.Result
	loadErr error
}

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithHistory records answers and session boundaries in repo.
func WithHistory(repo store.EventRepo) FlowOption {
	return func(f *Flow) { f.history = repo }
}

// WithRand injects the randomness used to assemble sessions.
func WithRand(rng *rand.Rand) FlowOption {
	return func(f *Flow) { f.rng = rng }
}

// WithFlowLogger sets the logger handed to engines.
func WithFlowLogger(logger *zap.Logger) FlowOption {
	return func(f *Flow) { f.logger = logger }
}

// NewFlow returns a Flow in StateModeSelect with the persisted ledger
// already read, so the review count is right before the first session.
// The ledger is read again each time a pool finishes loading.
func NewFlow(repo *ledger.Repo, opts ...FlowOption) *Flow {
	f := &Flow{
		ledgerRepo: repo,
		ledger:     ledger.New(),
		logger:     zap.NewNop(),
	}
	for _, o := range opts {
		o(f)
	}
	if f.rng == nil {
		f.rng = session.NewRand()
	}
	if repo != nil {
		f.ledger = repo.Load(context.Background())
	}
	return f
}

func (f *Flow) State() State { return f.state }
func (f *Flow) Mode() bank.Mode { return f.mode }
func (f *Flow) Engine() *session.Engine { return f.engine }
func (f *Flow) Result() session.Result { return f.result }
func (f *Flow) LoadErr() error { return f.loadErr }
func (f *Flow) Ledger() ledger.Ledger { return f.ledger }

// ReviewCount is the number of questions currently awaiting review.
func (f *Flow) ReviewCount() int {
	if f.engine != nil {
		return f.engine.Ledger().Len()
	}
	return f.ledger.Len()
}

// Start selects mode and moves to StateLoading. The returned ticket must
// be handed back to Loaded. ok is false outside StateModeSelect.
func (f *Flow) Start(mode bank.Mode) (ticket int, ok bool) {
	if f.state != StateModeSelect {
		return 0, false
	}
	f.ticket++
	f.mode = mode
	f.state = StateLoading
	f.loadErr = nil
	return f.ticket, true
}

// Loaded delivers the result of the load started with ticket. Results for
// a superseded ticket are dropped and false is returned. An empty pool or
// a load error moves to StateEmpty; otherwise a session is assembled
// against the persisted ledger and the quiz begins.
func (f *Flow) Loaded(ctx context.Context, ticket int, pool []bank.Question, err error) bool {
	if f.state != StateLoading || ticket != f.ticket {
		return false
	}

	if err == nil && len(pool) == 0 {
		err = bank.ErrNoQuestions
	}
	if err != nil {
		if !errors.Is(err, bank.ErrNoQuestions) {
			f.logger.Warn("question pool unavailable", zap.String("mode", f.mode.Key), zap.Error(err))
		}
		f.loadErr = err
		f.state = StateEmpty
		return true
	}

	var saver session.Saver
	if f.ledgerRepo != nil {
		f.ledger = f.ledgerRepo.Load(ctx)
		saver = f.ledgerRepo
	}

	questions := session.Assemble(pool, f.ledger, f.mode, f.rng)
	opts := []session.Option{session.WithLogger(f.logger)}
	if f.history != nil {
		opts = append(opts, session.WithObserver(&historyObserver{repo: f.history, logger: f.logger}))
	}
	f.engine = session.NewEngine(questions, f.ledger, saver, opts...)
	f.state = StateQuiz

	f.recordSession(ctx, store.SessionEventData{
		SessionID: f.engine.ID(),
		Mode:      f.mode.Key,
		Action:    store.SessionStart,
		Questions: f.engine.Total(),
	})
	return true
}

// Finish scores the completed session and moves to StateResults.
func (f *Flow) Finish(ctx context.Context) (session.Result, error) {
	if f.state != StateQuiz || f.engine == nil {
		return session.Result{}, session.ErrNotComplete
	}
	res, err := f.engine.Result(f.mode)
	if err != nil {
		return session.Result{}, err
	}
	f.result = res
	f.ledger = f.engine.Ledger()
	f.state = StateResults

	f.recordSession(ctx, store.SessionEventData{
		SessionID:  res.SessionID,
		Mode:       f.mode.Key,
		Action:     store.SessionComplete,
		Questions:  res.Total,
		Score:      res.Score,
		Percentage: res.Percentage,
		Passed:     res.Passed,
	})
	return res, nil
}

// Reset returns to StateModeSelect from any state. A quiz left before its
// last answer is recorded as abandoned; any load still in flight becomes
// stale.
func (f *Flow) Reset(ctx context.Context) {
	if f.state == StateQuiz && f.engine != nil && f.engine.Phase() != session.PhaseComplete {
		f.recordSession(ctx, store.SessionEventData{
			SessionID: f.engine.ID(),
			Mode:      f.mode.Key,
			Action:    store.SessionAbandon,
			Questions: f.engine.Answered(),
			Score:     f.engine.Correct(),
		})
	}
	if f.engine != nil {
		f.ledger = f.engine.Ledger()
	}

	f.ticket++
	f.state = StateModeSelect
	f.engine = nil
	f.result = session.Result{}
	f.loadErr = nil
}

func (f *Flow) recordSession(ctx context.Context, data store.SessionEventData) {
	if f.history == nil {
		return
	}
	if err := f.history.AppendSessionEvent(ctx, data); err != nil {
		f.logger.Warn("session event not recorded",
			zap.String("session_id", data.SessionID),
			zap.String("action", data.Action),
			zap.Error(err))
	}
}
