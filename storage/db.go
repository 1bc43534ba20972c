package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"ss-scraper/utils"
)

// Dialect names the SQL flavour behind a DB.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// DefaultSQLitePath is the database file used when no server is configured.
const DefaultSQLitePath = "local_db.db"

// DB is a database handle that knows its dialect.
type DB struct {
	*sql.DB
	dialect Dialect
}

func (db *DB) Dialect() Dialect { return db.dialect }

// placeholder returns the bind parameter for the n-th (1-based) argument.
func (db *DB) placeholder(n int) string {
	if db.dialect == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// OpenSQLite opens (creating if needed) the single-file database at path.
func OpenSQLite(path string) (*DB, error) {
	if path == "" {
		path = DefaultSQLitePath
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// one writer at a time; keeps the save transaction on a single connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return &DB{DB: db, dialect: DialectSQLite}, nil
}

// PostgresConfig holds the connection settings for a PostgreSQL server.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the PostgreSQL connection string.
func (c PostgresConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	parts := []string{
		"host=" + c.Host,
		"port=" + c.Port,
		"user=" + c.User,
		"password=" + quoteDSN(c.Password),
		"dbname=" + c.DBName,
		"sslmode=" + sslMode,
	}
	return strings.Join(parts, " ")
}

func quoteDSN(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// OpenPostgres connects to PostgreSQL, retrying the initial ping with
// back-off while the server comes up.
func OpenPostgres(ctx context.Context, cfg PostgresConfig, logger *utils.Logger) (*DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := &utils.RetryConfig{
		MaxAttempts: 5,
		BaseDelay:   2 * time.Second,
		MaxDelay:    15 * time.Second,
		Logger:      logger,
	}
	if err := retry.Do(ctx, "postgres-ping", func() error {
		return db.PingContext(ctx)
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	return &DB{DB: db, dialect: DialectPostgres}, nil
}
