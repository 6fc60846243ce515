package database

import (
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"

	"video-tagger/internal/logging"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// goose keeps its filesystem, dialect and logger in package globals.
var migrationMutex sync.Mutex

type gooseLogger struct{}

func (*gooseLogger) Printf(format string, v ...any) {
	logging.Info(trimNewline(format), v...)
}

func (*gooseLogger) Fatalf(format string, v ...any) {
	logging.Fatal(trimNewline(format), v...)
}

func trimNewline(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\n' {
		return s[:n-1]
	}
	return s
}

func migrateUp(db *sql.DB) error {
	migrationMutex.Lock()
	defer migrationMutex.Unlock()

	goose.SetLogger(&gooseLogger{})
	goose.SetBaseFS(migrationFiles)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("error setting goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("error running migrations up: %w", err)
	}

	return nil
}
