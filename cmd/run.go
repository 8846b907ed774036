package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/marubatsu/internal/app"
	"github.com/abhisek/marubatsu/internal/bank"
	"github.com/abhisek/marubatsu/internal/explain"
	"github.com/abhisek/marubatsu/internal/llm"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start a quiz, optionally skipping mode select",
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("mode")
		return runApp(cmd, mode)
	},
}

func init() {
	playCmd.Flags().String("mode", "", "Mode key to start immediately (e.g. provisional, full)")
}

// runApp opens the store, builds dependencies, and launches the TUI.
// startMode falls back to the configured mode; empty shows mode select.
func runApp(cmd *cobra.Command, startMode string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	d, err := openDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	loader, err := d.loader(ctx)
	if err != nil {
		return err
	}

	opts := app.Options{
		Flow: app.NewFlow(d.ledger,
			app.WithHistory(d.store.EventRepo()),
			app.WithFlowLogger(d.logger.Named("flow")),
		),
		Loader:  loader,
		Modes:   loader.Manifest().Modes,
		History: d.store.EventRepo(),
		Logger:  d.logger,
	}

	if startMode == "" {
		startMode = d.cfg.Mode
	}
	if startMode != "" {
		m, err := lookupMode(loader, startMode)
		if err != nil {
			return err
		}
		opts.StartMode = &m
	}

	if d.cfg.Explain {
		svc, err := newExplainer(ctx, d)
		if err != nil {
			fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
			fmt.Fprintln(os.Stderr, "Questions without a bundled explanation will show none.")
		} else {
			opts.Explainer = svc
		}
	}

	return app.Run(opts)
}

// newExplainer builds the explanation service from the discovered LLM
// configuration. Generated text is cached in the ledger backend.
func newExplainer(ctx context.Context, d *deps) (*explain.Service, error) {
	cfg, ok := llm.Resolve()
	if !ok {
		return nil, errors.New("no API key found (set MARUBATSU_LLM_PROVIDER with its key, or GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY, OPENROUTER_API_KEY)")
	}
	provider, err := llm.NewProvider(ctx, cfg, d.logger.Named("llm"))
	if err != nil {
		return nil, err
	}
	d.logger.Info("explanations enabled",
		zap.String("provider", cfg.Provider),
		zap.String("model", provider.ModelID()))
	return explain.New(provider,
		explain.WithStore(d.backend),
		explain.WithLogger(d.logger.Named("explain")),
	), nil
}

var _ app.PoolLoader = (*bank.Loader)(nil)
