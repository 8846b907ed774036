package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the config reads.
const EnvPrefix = "MARUBATSU"

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env            string `mapstructure:"env"`             // local, development or production
	DB             string `mapstructure:"db"`              // sqlite path; empty resolves under XDG_DATA_HOME
	Questions      string `mapstructure:"questions"`       // question source: directory or http(s) base URL
	SourceEncoding string `mapstructure:"source_encoding"` // encoding of the csv resources
	CacheURL       string `mapstructure:"cache_url"`       // redis/dragonfly URL; when set the ledger lives there
	Profile        string `mapstructure:"profile"`         // learner name; separates ledgers sharing one cache
	LogFile        string `mapstructure:"log_file"`        // log destination; "stderr" logs to the terminal
	LogLevel       string `mapstructure:"log_level"`       // debug, info, warn, error
	Explain        bool   `mapstructure:"explain"`         // ask an LLM for missing explanations
	Mode           string `mapstructure:"mode"`            // preselected mode for the play command
}

// IsProduction reports whether production logging should be used.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Options controls where Load looks for configuration.
type Options struct {
	// ConfigFile, when set, is read instead of searching ConfigDirs.
	ConfigFile string
	// ConfigDirs are searched in order for config.yaml. Defaults to the
	// XDG config directory and the working directory.
	ConfigDirs []string
	// EnvFiles are loaded into the environment before reading it. Missing
	// files are ignored. Defaults to ".env".
	EnvFiles []string
}

// Load reads configuration from config files, .env files and environment variables.
func Load(opts Options) (*Config, error) {
	envFiles := opts.EnvFiles
	if envFiles == nil {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error loading %s: %w", f, err)
		}
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("config")
		dirs := opts.ConfigDirs
		if dirs == nil {
			dirs = DefaultConfigDirs()
		}
		for _, d := range dirs {
			v.AddConfigPath(d)
		}
	}

	v.SetDefault("env", "local")
	v.SetDefault("db", "")
	v.SetDefault("questions", "questions")
	v.SetDefault("source_encoding", "utf-8")
	v.SetDefault("cache_url", "")
	v.SetDefault("profile", "")
	v.SetDefault("log_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("explain", true)
	v.SetDefault("mode", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Conventional names that don't carry the prefix.
	_ = v.BindEnv("cache_url", EnvPrefix+"_CACHE_URL", "REDIS_URL")
	_ = v.BindEnv("env", EnvPrefix+"_ENV", "APP_ENV")

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	switch c.Env {
	case "local", "development", "production":
	default:
		return fmt.Errorf("config: env must be local, development or production, got %q", c.Env)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	if c.Questions == "" {
		return errors.New("config: questions must not be empty")
	}
	return nil
}

// DefaultConfigDirs returns $XDG_CONFIG_HOME/marubatsu (or
// ~/.config/marubatsu) followed by the working directory.
func DefaultConfigDirs() []string {
	var dirs []string
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		dirs = append(dirs, filepath.Join(base, "marubatsu"))
	} else if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", "marubatsu"))
	}
	return append(dirs, ".")
}

// DefaultLogPath returns $XDG_STATE_HOME/marubatsu/marubatsu.log, falling
// back to ~/.local/state.
func DefaultLogPath() (string, error) {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	p := filepath.Join(stateHome, "marubatsu", "marubatsu.log")
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", err
	}
	return p, nil
}
