package database

import (
	"database/sql"
	"fmt"
	"os"

	"aguipuntos_backend/pkg/utils"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Open connects to PostgreSQL and returns the pool. The handle is passed
// down explicitly; nothing in the application reaches for a package global.
func Open(host, port, user, password, dbname, sslmode, schemaPath string) (*sql.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	db.SetMaxOpenConns(utils.GetenvInt("DB_MAX_OPEN_CONNS", 10))
	db.SetMaxIdleConns(utils.GetenvInt("DB_MAX_IDLE_CONNS", 5))

	if err := applySchema(db, schemaPath); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// applySchema reads and executes the db_schema.sql file when a path is set.
func applySchema(db *sql.DB, schemaPath string) error {
	if schemaPath == "" {
		return nil
	}
	content, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("could not read schema file %s: %w", schemaPath, err)
	}

	if _, err := db.Exec(string(content)); err != nil {
		return fmt.Errorf("could not execute schema script: %w", err)
	}
	utils.LogInfo("Database schema applied", map[string]interface{}{"path": schemaPath})
	return nil
}
