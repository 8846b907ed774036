package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(Options{ConfigDirs: []string{t.TempDir()}, EnvFiles: []string{}})
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "questions", cfg.Questions)
	assert.Equal(t, "utf-8", cfg.SourceEncoding)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.Explain)
	assert.Empty(t, cfg.CacheURL)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.yaml"), `
env: production
questions: https://example.com/questions
source_encoding: shift_jis
log_level: debug
explain: false
mode: full
`)

	cfg, err := Load(Options{ConfigDirs: []string{dir}, EnvFiles: []string{}})
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "https://example.com/questions", cfg.Questions)
	assert.Equal(t, "shift_jis", cfg.SourceEncoding)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.Explain)
	assert.Equal(t, "full", cfg.Mode)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.yaml"), "questions: ./from-file\n")
	t.Setenv("MARUBATSU_QUESTIONS", "./from-env")
	t.Setenv("MARUBATSU_DB", "/tmp/quiz.db")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("MARUBATSU_PROFILE", "hanako")

	cfg, err := Load(Options{ConfigDirs: []string{dir}, EnvFiles: []string{}})
	require.NoError(t, err)

	assert.Equal(t, "./from-env", cfg.Questions)
	assert.Equal(t, "/tmp/quiz.db", cfg.DB)
	assert.Equal(t, "redis://localhost:6379/1", cfg.CacheURL)
	assert.Equal(t, "hanako", cfg.Profile)
}

func TestDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	writeFile(t, envFile, "MARUBATSU_LOG_LEVEL=warn\n")
	t.Setenv("MARUBATSU_LOG_LEVEL", "")
	os.Unsetenv("MARUBATSU_LOG_LEVEL")

	cfg, err := Load(Options{ConfigDirs: []string{dir}, EnvFiles: []string{envFile, filepath.Join(dir, "missing.env")}})
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestExplicitConfigFileMissing(t *testing.T) {
	_, err := Load(Options{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml"), EnvFiles: []string{}})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"bad env", Config{Env: "staging", LogLevel: "info", Questions: "q"}},
		{"bad level", Config{Env: "local", LogLevel: "loud", Questions: "q"}},
		{"no questions", Config{Env: "local", LogLevel: "info"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.cfg.Validate())
		})
	}
}

func TestDefaultLogPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)

	p, err := DefaultLogPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "marubatsu", "marubatsu.log"), p)
	assert.DirExists(t, filepath.Dir(p))
}
