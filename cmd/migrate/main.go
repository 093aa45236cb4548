// cmd/migrate/main.go
package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/unclebandit/attestation-tracker/internal/config"
	"github.com/unclebandit/attestation-tracker/internal/db"
	"github.com/unclebandit/attestation-tracker/internal/logger"
)

// migrate creates the action log schema, then runs any extra SQL files given
// as arguments (e.g. seed data) in order.
func main() {
	cfg, _ := config.Load()
	logger.Init(cfg.LogLevel)

	conn, err := db.Open(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to open database")
	}
	defer conn.Close()

	if err := migrate(conn, os.Args[1:]); err != nil {
		logger.Log.WithError(err).Fatal("Migration failed")
	}
	fmt.Println("Database migration completed successfully!")
}

func migrate(conn *sql.DB, files []string) error {
	if _, err := conn.Exec(db.Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	fmt.Println("Applied: action log schema")

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		if _, err := conn.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute %s: %w", file, err)
		}
		fmt.Printf("Applied: %s\n", file)
	}
	return nil
}
