package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Config holds all application configuration, read from command-line
// flags, environment variables and an optional .env file.
type Config struct {
	Category string

	UsePostgres     bool
	PostgresSSLMode string
	CredsPath       string
	SQLitePath      string

	Fetcher        string
	UserAgent      string
	RequestTimeout time.Duration
	PageDelay      time.Duration

	CategoriesPath string
	CSVOutputPath  string
	DryRun         bool
	Debug          bool
}

type rawCfg struct {
	// Storage
	UsePostgres     bool   `long:"use-postgres" env:"USE_POSTGRES" description:"Store records in PostgreSQL instead of the local SQLite file"`
	PostgresSSLMode string `long:"postgres-sslmode" env:"POSTGRES_SSLMODE" default:"disable" description:"PostgreSQL sslmode"`
	CredsPath       string `long:"creds" env:"CREDS_PATH" default:"db_creds.csv" description:"Credentials CSV (database and messaging)"`
	SQLitePath      string `long:"sqlite-path" env:"SQLITE_PATH" default:"local_db.db" description:"SQLite database file"`

	// Scraping
	Fetcher        string        `long:"fetcher" env:"FETCHER" default:"static" choice:"static" choice:"browser" description:"Page fetcher"`
	UserAgent      string        `long:"user-agent" env:"USER_AGENT" description:"User agent for page requests"`
	RequestTimeout time.Duration `long:"request-timeout" env:"REQUEST_TIMEOUT" default:"30s" description:"Timeout for a single page request"`
	PageDelayMs    int           `long:"page-delay-ms" env:"PAGE_DELAY_MS" default:"500" description:"Minimum delay between page requests in milliseconds"`

	// Output
	CategoriesPath string `long:"categories" env:"CATEGORIES_PATH" description:"YAML file with category overrides"`
	CSVOutputPath  string `long:"csv-output" env:"CSV_OUTPUT_PATH" description:"Also export the scraped records to this CSV file"`
	DryRun         bool   `long:"dry-run" env:"DRY_RUN" description:"Do not save records or send messages"`
	Debug          bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`

	Args struct {
		Category string `positional-arg-name:"category" description:"Category to scrape (flats or cars)"`
	} `positional-args:"yes"`
}

// ErrHelp is returned by Load when usage was requested and printed.
var ErrHelp = errors.New("help requested")

// Load reads the .env file, if any, and parses args on top of the
// environment.
func Load(args []string) (*Config, error) {
	// a missing .env file is fine; system env vars still apply
	_ = godotenv.Load()

	var raw rawCfg
	parser := flags.NewParser(&raw, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, ErrHelp
		}
		return nil, fmt.Errorf("config: parse: %w", err)
	}

	if raw.RequestTimeout <= 0 {
		return nil, fmt.Errorf("config: request timeout must be positive, got %s", raw.RequestTimeout)
	}
	if raw.PageDelayMs < 0 {
		return nil, fmt.Errorf("config: page delay must not be negative, got %d", raw.PageDelayMs)
	}

	return &Config{
		Category:        raw.Args.Category,
		UsePostgres:     raw.UsePostgres,
		PostgresSSLMode: raw.PostgresSSLMode,
		CredsPath:       raw.CredsPath,
		SQLitePath:      raw.SQLitePath,
		Fetcher:         raw.Fetcher,
		UserAgent:       raw.UserAgent,
		RequestTimeout:  raw.RequestTimeout,
		PageDelay:       time.Duration(raw.PageDelayMs) * time.Millisecond,
		CategoriesPath:  raw.CategoriesPath,
		CSVOutputPath:   raw.CSVOutputPath,
		DryRun:          raw.DryRun,
		Debug:           raw.Debug,
	}, nil
}
