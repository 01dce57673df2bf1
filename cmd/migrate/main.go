// Command migrate applies the directory schema to Postgres. Applied files
// are recorded in schema_migrations, so reruns only pick up new migrations
// and the protected super-admin seed is never replayed.
package main

import (
	"database/sql"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/lib/pq"
)

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("[migrate] DATABASE_URL is required")
	}

	dir := "migrations"
	listOnly := false
	for _, a := range os.Args[1:] {
		if a == "--list" {
			listOnly = true
		} else {
			dir = a
		}
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("[migrate] connect: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("[migrate] ping: %v", err)
	}

	applied, err := loadApplied(db)
	if err != nil {
		log.Fatalf("[migrate] reading schema_migrations: %v", err)
	}

	if listOnly {
		if len(applied) == 0 {
			log.Println("[migrate] no migrations applied yet")
			return
		}
		names := make([]string, 0, len(applied))
		for name := range applied {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			log.Printf("[migrate] applied: %s", name)
		}
		return
	}

	pending, err := pendingMigrations(dir, applied)
	if err != nil {
		log.Fatalf("[migrate] %v", err)
	}
	if len(pending) == 0 {
		log.Println("[migrate] schema is up to date")
		return
	}

	for _, name := range pending {
		if err := apply(db, dir, name); err != nil {
			log.Fatalf("[migrate] %s: %v", name, err)
		}
		log.Printf("[migrate] applied %s", name)
	}
	log.Printf("[migrate] done, %d migration(s) applied", len(pending))
}

// loadApplied creates the tracking table if needed and returns the set of
// already-applied migration names.
func loadApplied(db *sql.DB) (map[string]bool, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`SELECT name FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		applied[name] = true
	}
	return applied, rows.Err()
}

// pendingMigrations returns the .sql files in dir not yet applied, in
// lexical order (files are numbered 001_, 002_, ...).
func pendingMigrations(dir string, applied map[string]bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var pending []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		if !applied[e.Name()] {
			pending = append(pending, e.Name())
		}
	}
	sort.Strings(pending)
	return pending, nil
}

// apply runs one migration file and records it, both inside one transaction
// so a failed migration leaves no trace in schema_migrations.
func apply(db *sql.DB, dir, name string) error {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(string(data)); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations (name) VALUES ($1)`, name); err != nil {
		return err
	}
	return tx.Commit()
}
