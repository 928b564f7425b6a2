package main

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"QuoteTables/internal/config"
	"QuoteTables/internal/model"
	"QuoteTables/internal/recorder"
	"QuoteTables/internal/sink"
	"QuoteTables/internal/symbols"

	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailureExitStatus(t *testing.T) {
	assert.Equal(t, subcommands.ExitUsageError, failure(&model.ConfigurationError{Field: "start", Msg: "bad"}))
	assert.Equal(t, subcommands.ExitUsageError, failure(symbols.ErrNoSource))
	assert.Equal(t, subcommands.ExitFailure, failure(&sink.Error{Path: "x", Err: errors.New("disk full")}))
}

func TestSelectionFlags(t *testing.T) {
	var sf selectionFlags
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	sf.register(fs)
	require.NoError(t, fs.Parse([]string{"-dow", "-currencies", "-manual", "AAA,BBB"}))

	sel := sf.selection()
	assert.Equal(t, []symbols.UniverseID{symbols.Dow, symbols.Currencies}, sel.Universes)
	assert.Equal(t, "AAA,BBB", sel.Manual)
	assert.NoError(t, sel.Validate())

	var empty selectionFlags
	assert.ErrorIs(t, empty.selection().Validate(), symbols.ErrNoSource)
}

func TestNewSink(t *testing.T) {
	s, err := newSink(t.TempDir(), "csv")
	require.NoError(t, err)
	assert.Equal(t, ".csv", s.Ext())

	s, err = newSink(t.TempDir(), "xlsx")
	require.NoError(t, err)
	assert.Equal(t, ".xlsx", s.Ext())

	_, err = newSink(t.TempDir(), "json")
	var cfgErr *model.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestOpenRecorder(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "nested", "runs.db")
	rec := openRecorder(cfg)
	defer rec.Close()
	assert.IsType(t, &recorder.SQLiteRecorder{}, rec)

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	cfg.Database.SQLitePath = filepath.Join(blocker, "runs.db")
	assert.IsType(t, &recorder.NoopRecorder{}, openRecorder(cfg))

	cfg.Database.SQLitePath = ""
	assert.IsType(t, &recorder.NoopRecorder{}, openRecorder(cfg))
}

func TestNewFetcher(t *testing.T) {
	cfg := &config.Config{}
	cfg.DataSource.Provider = "yahoo"
	assert.Equal(t, "yahoo", newFetcher(cfg).Name())

	cfg.DataSource.Provider = "rest"
	cfg.DataSource.BaseURL = "http://quotes.local"
	assert.Equal(t, "rest", newFetcher(cfg).Name())
}
