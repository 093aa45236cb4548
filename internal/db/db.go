// internal/db/db.go
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/unclebandit/attestation-tracker/internal/config"
	"github.com/unclebandit/attestation-tracker/internal/logger"
)

// DSN builds the postgres connection string from cfg.
func DSN(cfg *config.Config) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName,
	)
}

// Open connects and pings the action log database.
func Open(cfg *config.Config) (*sql.DB, error) {
	logger.WithFields(map[string]interface{}{
		"db_host": cfg.DBHost,
		"db_name": cfg.DBName,
	}).Info("Connecting to database")

	conn, err := sql.Open("postgres", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}

	if err = conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	logger.Log.Info("Connected to database")
	return conn, nil
}

// Schema creates the action log table.
const Schema = `
CREATE TABLE IF NOT EXISTS attestation_action_log (
    id          UUID PRIMARY KEY,
    campaign_id BIGINT NOT NULL,
    kind        TEXT NOT NULL,
    actor       TEXT NOT NULL DEFAULT '',
    requested   INTEGER NOT NULL DEFAULT 0,
    sent        INTEGER NOT NULL DEFAULT 0,
    failed      INTEGER NOT NULL DEFAULT 0,
    error       TEXT NOT NULL DEFAULT '',
    at          TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS attestation_action_log_campaign_at
    ON attestation_action_log (campaign_id, at DESC);
`
