package database

import (
	"database/sql"
	"os"
	"talkseed/config"

	"go.uber.org/zap"
)

// InitDatabase initializes the SQLite database
func InitDatabase(cfg *config.Config, logger *zap.Logger) (*sql.DB, error) {
	// Ensure data directory exists
	if err := os.MkdirAll(cfg.DBPath, 0755); err != nil {
		return nil, err
	}

	// Open database connection
	db, err := sql.Open("sqlite3", cfg.GetDatabasePath()+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("Database initialized successfully",
		zap.String("path", cfg.GetDatabasePath()),
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns),
	)

	return db, nil
}

// CreateTables creates users, profiles, and counters tables
func CreateTables(db *sql.DB, logger *zap.Logger) error {
	usersTable := `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`

	profilesTable := `
		CREATE TABLE IF NOT EXISTS profiles (
			user_id TEXT PRIMARY KEY REFERENCES users(id),
			profile_json TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`

	countersTable := `
		CREATE TABLE IF NOT EXISTS counters (
			user_id TEXT PRIMARY KEY REFERENCES users(id),
			scan_out_count INTEGER NOT NULL DEFAULT 0,
			scan_in_count INTEGER NOT NULL DEFAULT 0
		)`

	for _, query := range []string{usersTable, profilesTable, countersTable} {
		if _, err := db.Exec(query); err != nil {
			logger.Error("Failed to create table", zap.Error(err))
			return err
		}
	}

	logger.Info("Database tables created successfully")
	return nil
}
