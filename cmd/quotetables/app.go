package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"QuoteTables/internal/collector"
	"QuoteTables/internal/config"
	"QuoteTables/internal/model"
	"QuoteTables/internal/recorder"
	"QuoteTables/internal/sink"
	"QuoteTables/internal/symbols"

	"github.com/google/subcommands"
	log "github.com/sirupsen/logrus"
)

var configPath = flag.String("config", defaultConfigPath(), "path to the YAML configuration file")

func defaultConfigPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configs/config.yaml"
}

// loadConfig reads and validates the configuration and sets up logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	setupLogging(cfg.LogLevel)
	return cfg, nil
}

func setupLogging(level string) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

// failure reports err and maps it to an exit status. Configuration errors
// are usage errors.
func failure(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	var cfgErr *model.ConfigurationError
	if errors.As(err, &cfgErr) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}

// selectionFlags are the symbol source flags shared by fetch and members.
type selectionFlags struct {
	dow         bool
	sp          bool
	commodities bool
	currencies  bool
	manual      string
}

func (s *selectionFlags) register(f *flag.FlagSet) {
	f.BoolVar(&s.dow, "dow", false, "include the Dow Jones Industrial Average members")
	f.BoolVar(&s.sp, "sp", false, "include the S&P 500 members")
	f.BoolVar(&s.commodities, "commodities", false, "include the commodity futures list")
	f.BoolVar(&s.currencies, "currencies", false, "include the currency pairs list")
	f.StringVar(&s.manual, "manual", "", "comma separated list of extra symbols")
}

func (s *selectionFlags) selection() symbols.Selection {
	var sel symbols.Selection
	if s.dow {
		sel.Universes = append(sel.Universes, symbols.Dow)
	}
	if s.sp {
		sel.Universes = append(sel.Universes, symbols.SP500)
	}
	if s.commodities {
		sel.Universes = append(sel.Universes, symbols.Commodities)
	}
	if s.currencies {
		sel.Universes = append(sel.Universes, symbols.Currencies)
	}
	sel.Manual = s.manual
	return sel
}

// newDirectory registers the configured membership pages plus the built-in
// commodity and currency lists.
func newDirectory(cfg *config.Config) *symbols.Registry {
	reg := symbols.NewRegistry()
	reg.Register(symbols.Commodities, symbols.DefaultCommodities)
	reg.Register(symbols.Currencies, symbols.DefaultCurrencies)
	for id, src := range cfg.Universes {
		reg.Register(symbols.UniverseID(id), symbols.NewHTMLTableProvider(src.URL, src.TableID, src.Column, cfg.Proxy))
	}
	return reg
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	var f collector.Fetcher
	if cfg.DataSource.Provider == "rest" {
		f = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy, cfg.Fetch.Timeout)
	} else {
		f = collector.NewYahooFetcher(cfg.Proxy, cfg.Fetch.Timeout, cfg.DataSource.SymbolMap)
	}
	log.WithField("source", f.Name()).Info("data source selected")
	return f
}

func newCollector(cfg *config.Config, workers int) *collector.Collector {
	if workers <= 0 {
		workers = cfg.Fetch.Workers
	}
	return collector.NewCollector(newFetcher(cfg), collector.Options{
		Workers:  workers,
		Attempts: cfg.Fetch.Attempts,
		Backoff:  cfg.Fetch.Backoff,
	})
}

func newSink(dir, format string) (sink.Sink, error) {
	switch format {
	case "csv":
		return sink.NewCSVSink(dir), nil
	case "xlsx":
		return sink.NewXLSXSink(dir), nil
	}
	return nil, &model.ConfigurationError{Field: "format", Msg: fmt.Sprintf("unsupported format %q", format)}
}

// openRecorder opens the SQLite archive, falling back to a no-op recorder
// when it is not configured or cannot be opened.
func openRecorder(cfg *config.Config) recorder.Recorder {
	p := cfg.Database.SQLitePath
	if p == "" {
		return recorder.NewNoopRecorder()
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		log.WithError(err).Warn("create archive directory failed, using noop recorder")
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(p)
	if err != nil {
		log.WithError(err).Warn("init sqlite recorder failed, using noop recorder")
		return recorder.NewNoopRecorder()
	}
	return sr
}
