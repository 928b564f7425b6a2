package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"QuoteTables/internal/model"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// UniverseSource locates the HTML table listing an index's members.
type UniverseSource struct {
	URL     string `yaml:"url"`
	TableID string `yaml:"table_id"`
	Column  string `yaml:"column"`
}

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Provider  string            `yaml:"provider"` // yahoo or rest
		BaseURL   string            `yaml:"base_url"`
		APIKey    string            `yaml:"api_key"`
		SymbolMap map[string]string `yaml:"symbol_map"`
	} `yaml:"data_source"`
	Proxy string `yaml:"proxy"`
	Fetch struct {
		Workers  int           `yaml:"workers"`
		Attempts int           `yaml:"attempts"`
		Backoff  time.Duration `yaml:"backoff"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"fetch"`
	Output struct {
		Dir    string `yaml:"dir"`
		Format string `yaml:"format"` // csv or xlsx
	} `yaml:"output"`
	Universes map[string]UniverseSource `yaml:"universes"`
	Database  struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Schedule struct {
		Cron         string   `yaml:"cron"`
		LookbackDays int      `yaml:"lookback_days"`
		Universes    []string `yaml:"universes"`
		Manual       string   `yaml:"manual"`
		RunOnStart   bool     `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	LogLevel string `yaml:"log_level"`
}

// DefaultUniverses are the membership pages used when the config names none.
var DefaultUniverses = map[string]UniverseSource{
	"dow": {
		URL:     "https://en.wikipedia.org/wiki/Dow_Jones_Industrial_Average",
		TableID: "constituents",
		Column:  "Symbol",
	},
	"sp500": {
		URL:     "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies",
		TableID: "constituents",
		Column:  "Symbol",
	},
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, &model.ConfigurationError{Field: "config", Msg: fmt.Sprintf("parse %s: %v", path, err)}
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("could not load .env")
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			} else {
				log.WithField("key", key).Warn("ignoring non-integer environment override")
			}
		}
	}

	setString("TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken)
	setString("TELEGRAM_CHAT_ID", &c.Telegram.ChatID)
	setString("QUOTES_PROVIDER", &c.DataSource.Provider)
	setString("QUOTES_BASE_URL", &c.DataSource.BaseURL)
	setString("QUOTES_API_KEY", &c.DataSource.APIKey)
	setString("HTTPS_PROXY", &c.Proxy)
	setString("OUTPUT_DIR", &c.Output.Dir)
	setString("OUTPUT_FORMAT", &c.Output.Format)
	setString("SQLITE_PATH", &c.Database.SQLitePath)
	setString("SCHEDULE_CRON", &c.Schedule.Cron)
	setString("LOG_LEVEL", &c.LogLevel)
	setInt("FETCH_WORKERS", &c.Fetch.Workers)
	setInt("LOOKBACK_DAYS", &c.Schedule.LookbackDays)
}

func (c *Config) applyDefaults() {
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
	}
	if c.Fetch.Workers == 0 {
		c.Fetch.Workers = 1
	}
	if c.Fetch.Attempts == 0 {
		c.Fetch.Attempts = 3
	}
	if c.Fetch.Backoff == 0 {
		c.Fetch.Backoff = 2 * time.Second
	}
	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = 30 * time.Second
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "."
	}
	if c.Output.Format == "" {
		c.Output.Format = "csv"
	}
	if c.Universes == nil {
		c.Universes = make(map[string]UniverseSource)
	}
	for id, src := range DefaultUniverses {
		if _, ok := c.Universes[id]; !ok {
			c.Universes[id] = src
		}
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/quotetables.db"
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = "0 30 22 * * 1-5"
	}
	if c.Schedule.LookbackDays == 0 {
		c.Schedule.LookbackDays = 30
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "yahoo":
	case "rest":
		if c.DataSource.BaseURL == "" {
			return &model.ConfigurationError{Field: "data_source.base_url", Msg: "required for the rest provider"}
		}
	default:
		return &model.ConfigurationError{Field: "data_source.provider", Msg: fmt.Sprintf("unknown provider %q", c.DataSource.Provider)}
	}
	if c.Fetch.Workers < 1 {
		return &model.ConfigurationError{Field: "fetch.workers", Msg: "must be at least 1"}
	}
	if c.Fetch.Attempts < 1 {
		return &model.ConfigurationError{Field: "fetch.attempts", Msg: "must be at least 1"}
	}
	if c.Output.Format != "csv" && c.Output.Format != "xlsx" {
		return &model.ConfigurationError{Field: "output.format", Msg: fmt.Sprintf("unsupported format %q", c.Output.Format)}
	}
	for id, src := range c.Universes {
		if src.URL == "" || src.Column == "" {
			return &model.ConfigurationError{Field: "universes." + id, Msg: "url and column are required"}
		}
	}
	if c.Schedule.LookbackDays < 1 {
		return &model.ConfigurationError{Field: "schedule.lookback_days", Msg: "must be at least 1"}
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return &model.ConfigurationError{Field: "log_level", Msg: err.Error()}
	}
	return nil
}

// TelegramEnabled reports whether run summaries can be posted.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
