// Package db provides access to the WordPress MySQL tables the orphaned data tool reads and mutates.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// DefaultTablePrefix is the table prefix of a stock WordPress install.
const DefaultTablePrefix = "wp_"

var tablePrefixPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// DB wraps a MySQL connection pool and the install's table prefix.
type DB struct {
	conn   *sql.DB
	prefix string
}

// Connect opens a pool against the WordPress database described by dsn.
// ParseTime and ClientFoundRows are forced on: dates scan into time.Time and an
// UPDATE reports matched rows, so a no-op type change still counts as found.
func Connect(ctx context.Context, dsn, tablePrefix string) (*DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database DSN: %w", err)
	}
	cfg.ParseTime = true
	cfg.ClientFoundRows = true

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connector: %w", err)
	}

	conn := sql.OpenDB(connector)
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db, err := New(conn, tablePrefix)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return db, nil
}

// New wraps an existing *sql.DB. Tests pass a sqlmock connection here.
func New(conn *sql.DB, tablePrefix string) (*DB, error) {
	if tablePrefix == "" {
		tablePrefix = DefaultTablePrefix
	}
	if !tablePrefixPattern.MatchString(tablePrefix) {
		return nil, fmt.Errorf("invalid table prefix %q", tablePrefix)
	}
	return &DB{conn: conn, prefix: tablePrefix}, nil
}

// Close closes the connection pool
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// Ping verifies the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// table returns the prefixed name of a WordPress table.
func (db *DB) table(name string) string {
	return db.prefix + name
}

// inClause returns "?, ?, ?" for n values and the values as driver args.
func inClause(values []string) (string, []any) {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", "), args
}
