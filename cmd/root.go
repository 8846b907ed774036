package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/marubatsu/internal/bank"
	"github.com/abhisek/marubatsu/internal/cache"
	"github.com/abhisek/marubatsu/internal/config"
	"github.com/abhisek/marubatsu/internal/ledger"
	"github.com/abhisek/marubatsu/internal/logger"
	"github.com/abhisek/marubatsu/internal/source"
	"github.com/abhisek/marubatsu/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "marubatsu",
	Short: "True/false driving licence quiz",
	Long:  "marubatsu: terminal ○× quiz for the Japanese driving licence written tests, with a review list for missed questions.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, "")
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config.yaml (default: XDG config dir, then working dir)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides MARUBATSU_DB)")
	rootCmd.PersistentFlags().String("questions", "", "Question source directory or http(s) base URL (overrides MARUBATSU_QUESTIONS)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(ledgerCmd)
	rootCmd.AddCommand(bankCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads configuration and applies the persistent flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(config.Options{ConfigFile: file})
	if err != nil {
		return nil, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DB = p
	}
	if q, _ := cmd.Flags().GetString("questions"); q != "" {
		cfg.Questions = q
	}
	return cfg, nil
}

// resolveDBPath returns the configured database path, then the default
// XDG path.
func resolveDBPath(cfg *config.Config) (string, error) {
	if cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}

// deps bundles what every command needs. The ledger lives in redis when
// cache_url is set and in sqlite otherwise; history always goes to sqlite.
type deps struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   *store.Store
	cache   *cache.Cache
	backend ledger.Backend
	ledger  *ledger.Repo
}

func openDeps(cmd *cobra.Command) (*deps, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	d := &deps{cfg: cfg, logger: log, store: st, backend: st}
	if cfg.CacheURL != "" {
		c, err := cache.New(ctx, cfg.CacheURL)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("connect cache: %w", err)
		}
		if cfg.Profile != "" {
			c = c.WithPrefix(cache.DefaultPrefix + cfg.Profile + ":")
		}
		d.cache = c
		d.backend = d.cache
		log.Info("ledger stored in cache",
			zap.String("cache_url", cfg.CacheURL),
			zap.String("profile", cfg.Profile))
	}
	d.ledger = ledger.NewRepo(d.backend, log.Named("ledger"))

	log.Debug("dependencies ready", zap.String("db", dbPath), zap.String("questions", cfg.Questions))
	return d, nil
}

func (d *deps) Close() {
	if d.cache != nil {
		_ = d.cache.Close()
	}
	_ = d.store.Close()
	_ = d.logger.Sync()
}

// loader builds the question loader for the configured source.
func (d *deps) loader(ctx context.Context) (*bank.Loader, error) {
	fetcher, err := source.New(d.cfg.Questions, os.DirFS)
	if err != nil {
		return nil, fmt.Errorf("question source: %w", err)
	}
	fetcher, err = source.WithEncoding(fetcher, d.cfg.SourceEncoding)
	if err != nil {
		return nil, fmt.Errorf("question source: %w", err)
	}
	manifest, err := bank.LoadManifest(ctx, fetcher)
	if err != nil {
		return nil, err
	}
	return bank.NewLoader(fetcher,
		bank.WithManifest(manifest),
		bank.WithLogger(d.logger.Named("bank")),
	), nil
}

// lookupMode resolves a mode key against the loader's manifest.
func lookupMode(l *bank.Loader, key string) (bank.Mode, error) {
	m, ok := l.Manifest().Mode(key)
	if !ok {
		keys := make([]string, 0, len(l.Manifest().Modes))
		for _, md := range l.Manifest().Modes {
			keys = append(keys, md.Key)
		}
		return bank.Mode{}, fmt.Errorf("unknown mode %q (available: %v)", key, keys)
	}
	return m, nil
}
