package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"gitroute/internal/platform/config"
)

// Open connects to the registry store. Write transactions take the
// database lock up front (_txlock=immediate) so the count-then-insert
// sequences in the command layer serialize instead of failing late.
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s?_fk=1&_busy_timeout=5000&_txlock=immediate", cfg.Path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	// Command volume is low and every unit of work is brief; keep the
	// pool small.
	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxConnections)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
