package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/marubatsu/internal/bank"
	"github.com/abhisek/marubatsu/internal/router"
	"github.com/abhisek/marubatsu/internal/screen"
	"github.com/abhisek/marubatsu/internal/screens/history"
	"github.com/abhisek/marubatsu/internal/screens/modeselect"
	"github.com/abhisek/marubatsu/internal/screens/quiz"
	"github.com/abhisek/marubatsu/internal/screens/results"
	"github.com/abhisek/marubatsu/internal/store"
	"github.com/abhisek/marubatsu/internal/ui/layout"
)

// PoolLoader loads the question pool for a mode. *bank.Loader satisfies it.
type PoolLoader interface {
	Load(ctx context.Context, mode bank.Mode) ([]bank.Question, error)
}

// Options holds the dependencies of the TUI.
type Options struct {
	Flow      *Flow
	Loader    PoolLoader
	Modes     []bank.Mode
	Explainer quiz.Explainer  // nil disables generated explanations
	History   store.EventRepo // nil hides the history screen
	Logger    *zap.Logger

	// StartMode, when set, skips mode select and starts that mode.
	StartMode *bank.Mode
}

// poolLoadedMsg carries a finished load back to the update loop.
type poolLoadedMsg struct {
	ticket int
	pool   []bank.Question
	err    error
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	opts   Options
	width  int
	height int
}

func newAppModel(opts Options) AppModel {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	var msOpts []modeselect.Option
	if opts.History != nil {
		msOpts = append(msOpts, modeselect.WithHistoryEntry())
	}
	root := modeselect.New(opts.Modes, opts.Flow.ReviewCount, msOpts...)
	return AppModel{
		router: router.New(root),
		opts:   opts,
	}
}

func (m AppModel) Init() tea.Cmd {
	if m.opts.StartMode != nil {
		mode := *m.opts.StartMode
		return func() tea.Msg { return modeselect.SelectedMsg{Mode: mode} }
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	flow := m.opts.Flow

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			flow.Reset(ctx)
			return m, tea.Quit
		case "esc":
			if h, ok := m.router.Active().(screen.EscapeHandler); ok && h.CapturesEscape() {
				break
			}
			if m.router.Depth() > 1 {
				return m, m.backToModeSelect(ctx)
			}
			return m, nil
		}

	case modeselect.SelectedMsg:
		return m, m.start(msg.Mode)

	case modeselect.HistoryMsg:
		if m.opts.History == nil {
			return m, nil
		}
		return m, m.router.Push(history.New(m.opts.History))

	case poolLoadedMsg:
		if !flow.Loaded(ctx, msg.ticket, msg.pool, msg.err) {
			return m, nil
		}
		if flow.State() == StateQuiz {
			return m, m.router.Update(quiz.ReadyMsg{Engine: flow.Engine()})
		}
		return m, m.router.Update(quiz.EmptyMsg{Err: flow.LoadErr()})

	case quiz.FinishedMsg:
		res, err := flow.Finish(ctx)
		if err != nil {
			m.opts.Logger.Error("session could not be scored", zap.Error(err))
			return m, m.backToModeSelect(ctx)
		}
		m.opts.Logger.Info("session complete",
			zap.String("session_id", res.SessionID),
			zap.String("mode", res.Mode),
			zap.Int("score", res.Score),
			zap.Int("total", res.Total),
			zap.Bool("passed", res.Passed))
		return m, m.router.Replace(results.New(res, flow.Mode().Name))

	case quiz.QuitMsg, results.DoneMsg:
		return m, m.backToModeSelect(ctx)

	case results.RetryMsg:
		mode := flow.Mode()
		return m, tea.Sequence(m.backToModeSelect(ctx), m.start(mode))
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// start moves the flow into loading, shows the quiz screen and kicks off
// the pool load off the UI goroutine.
func (m AppModel) start(mode bank.Mode) tea.Cmd {
	ticket, ok := m.opts.Flow.Start(mode)
	if !ok {
		return nil
	}
	show := m.router.Push(quiz.New(mode, m.opts.Explainer))
	loader := m.opts.Loader
	load := func() tea.Msg {
		pool, err := loader.Load(context.Background(), mode)
		return poolLoadedMsg{ticket: ticket, pool: pool, err: err}
	}
	return tea.Batch(show, load)
}

func (m AppModel) backToModeSelect(ctx context.Context) tea.Cmd {
	m.opts.Flow.Reset(ctx)
	return m.router.PopToRoot()
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	status := "復習なし"
	if n := m.opts.Flow.ReviewCount(); n > 0 {
		status = fmt.Sprintf("復習 %d問", n)
	}
	header := layout.RenderHeader(title, status, m.width)

	var footerHints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = hp.KeyHints()
	} else {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "戻る"},
			{Key: "Ctrl+C", Description: "終了"},
		}
	}
	footer := layout.RenderFooter(footerHints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)

	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	if opts.Flow == nil || opts.Loader == nil {
		return fmt.Errorf("app: flow and loader are required")
	}
	if len(opts.Modes) == 0 {
		return fmt.Errorf("app: no modes configured")
	}
	p := tea.NewProgram(newAppModel(opts))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}
