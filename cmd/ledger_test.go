package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/marubatsu/internal/ledger"
)

func TestExportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "review.json")
	require.NoError(t, exportFile(path, ledger.Ledger{"1-1": 0, "2-3": 2}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	got, err := ledger.Import(f)
	require.NoError(t, err)
	assert.Equal(t, ledger.Ledger{"1-1": 0, "2-3": 2}, got)
}

func TestExportFileReportsFailures(t *testing.T) {
	assert.Error(t, exportFile(filepath.Join(t.TempDir(), "missing", "review.json"), ledger.New()))

	// /dev/full accepts the open and fails the write.
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("/dev/full not available")
	}
	assert.Error(t, exportFile("/dev/full", ledger.Ledger{"1-1": 0}))
}
