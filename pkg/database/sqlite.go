package database

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" driver
)

type SQLiteConfig struct {
	// Path is a file path or ":memory:".
	Path string
}

// sqlitePragmas are applied by the driver to every connection it opens.
var sqlitePragmas = []string{
	"_journal_mode=WAL",
	"_synchronous=NORMAL",
	"_busy_timeout=5000",
	"_foreign_keys=on",
}

// DSN returns the go-sqlite3 data source name for the path with the
// connection pragmas attached.
func (cfg *SQLiteConfig) DSN() string {
	sep := "?"
	if strings.Contains(cfg.Path, "?") {
		sep = "&"
	}
	return cfg.Path + sep + strings.Join(sqlitePragmas, "&")
}

// NewSQLite opens a single-connection SQLite database. SQLite allows one
// writer at a time, so the pool is capped at one connection to avoid
// SQLITE_BUSY under concurrent callers.
func NewSQLite(cfg *SQLiteConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite3", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
	}

	return db, nil
}
