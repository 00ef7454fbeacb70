package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/tahcohcat/calmkid/internal/logger"
)

type DB struct {
	*sqlx.DB
}

// NewDB opens the SQLite database and makes sure the schema exists.
func NewDB(databaseURL string) (*DB, error) {
	if databaseURL == "" {
		databaseURL = "calmkid.db" // Default SQLite file
	}

	db, err := sqlx.Connect("sqlite3", databaseURL+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows one writer; a single connection makes every transaction
	// a serial section and keeps balance updates from hitting SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	dbWrapper := &DB{DB: db}

	if err := dbWrapper.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.New().Debug(fmt.Sprintf("database %s ready", databaseURL))
	return dbWrapper, nil
}

var tables = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		last_login_at DATETIME
	);`,

	`CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		age INTEGER,
		stars INTEGER NOT NULL DEFAULT 0 CHECK (stars >= 0),
		region TEXT NOT NULL DEFAULT '',
		school TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);`,

	`CREATE TABLE IF NOT EXISTS mood_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		mood TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);`,

	`CREATE TABLE IF NOT EXISTS activities (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		mood_tag TEXT NOT NULL,
		min_age INTEGER,
		max_age INTEGER,
		star_reward INTEGER NOT NULL DEFAULT 0 CHECK (star_reward >= 0),
		duration_seconds INTEGER NOT NULL DEFAULT 0,
		is_weekly BOOLEAN NOT NULL DEFAULT FALSE
	);`,

	`CREATE TABLE IF NOT EXISTS challenges (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		mood_tag TEXT NOT NULL,
		min_age INTEGER,
		max_age INTEGER,
		star_reward INTEGER NOT NULL DEFAULT 0 CHECK (star_reward >= 0),
		duration_seconds INTEGER NOT NULL DEFAULT 0,
		is_weekly BOOLEAN NOT NULL DEFAULT FALSE
	);`,

	`CREATE TABLE IF NOT EXISTS rewards (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		cost INTEGER NOT NULL CHECK (cost >= 0),
		type TEXT NOT NULL DEFAULT ''
	);`,

	`CREATE TABLE IF NOT EXISTS activity_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		activity_id TEXT NOT NULL,
		stars_awarded INTEGER NOT NULL,
		completed_at DATETIME NOT NULL
	);`,

	`CREATE TABLE IF NOT EXISTS user_challenges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		challenge_id TEXT NOT NULL,
		stars_awarded INTEGER NOT NULL,
		completed_at DATETIME NOT NULL,
		UNIQUE (user_id, challenge_id)
	);`,

	`CREATE TABLE IF NOT EXISTS user_rewards (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		reward_id TEXT NOT NULL,
		cost INTEGER NOT NULL,
		unlocked_at DATETIME NOT NULL,
		UNIQUE (user_id, reward_id)
	);`,

	`CREATE TABLE IF NOT EXISTS ledger_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		delta INTEGER NOT NULL,
		balance_after INTEGER NOT NULL,
		reason TEXT NOT NULL,
		ref_id TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);`,

	`CREATE TABLE IF NOT EXISTS behavior_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		note TEXT NOT NULL,
		severity TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);`,

	`CREATE TABLE IF NOT EXISTS triggers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		trigger_name TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_accounts_email ON accounts(email);`,
	`CREATE INDEX IF NOT EXISTS idx_mood_logs_user_created ON mood_logs(user_id, created_at);`,
	`CREATE INDEX IF NOT EXISTS idx_activity_logs_user ON activity_logs(user_id, activity_id);`,
	`CREATE INDEX IF NOT EXISTS idx_ledger_entries_user ON ledger_entries(user_id, created_at);`,
	`CREATE INDEX IF NOT EXISTS idx_behavior_logs_user ON behavior_logs(user_id, created_at);`,
	`CREATE INDEX IF NOT EXISTS idx_triggers_user ON triggers(user_id, created_at);`,
}

// createTables creates the necessary database tables
func (db *DB) createTables() error {
	for _, query := range tables {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	for _, index := range indexes {
		if _, err := db.Exec(index); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// WithTx runs fn inside a transaction, committing only if fn succeeds.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
