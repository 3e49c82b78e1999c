package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/agile-mini/agile-mini-backend/config"
)

// Open connects to the configured database, verifies the connection and runs
// the startup migrations. Both drivers accept $1-style placeholders, so the
// repositories share a single SQL dialect.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)

	switch cfg.Driver {
	case "sqlite":
		if err := ensureDir(cfg.Path); err != nil {
			return nil, err
		}
		dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=ON", cfg.Path)
		db, err = sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// sqlite handles one writer at a time
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
	case "postgres":
		db, err = sql.Open("pgx", cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}

	// Fail fast
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	if err := migrate(ctx, db, cfg.Driver); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func migrate(ctx context.Context, db *sql.DB, driver string) error {
	// Autoincrement primary keys are the only dialect difference.
	pk := "BIGSERIAL PRIMARY KEY"
	if driver == "sqlite" {
		pk = "INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS projects (
			id %s,
			name TEXT NOT NULL UNIQUE,
			description TEXT,
			status TEXT NOT NULL DEFAULT 'Active',
			start_date TIMESTAMP,
			end_date TIMESTAMP,
			created_at TIMESTAMP NOT NULL
		);`, pk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS sprints (
			id %s,
			name TEXT NOT NULL,
			start_date TIMESTAMP NOT NULL,
			end_date TIMESTAMP NOT NULL,
			status TEXT NOT NULL DEFAULT 'Active',
			project_id BIGINT REFERENCES projects(id) ON DELETE SET NULL
		);`, pk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS tasks (
			id %s,
			title TEXT NOT NULL,
			description TEXT,
			status TEXT NOT NULL DEFAULT 'To Do',
			project TEXT,
			sprint_id BIGINT REFERENCES sprints(id) ON DELETE SET NULL,
			points BIGINT,
			priority TEXT NOT NULL DEFAULT 'Medium',
			created_at TIMESTAMP NOT NULL,
			started_at TIMESTAMP,
			completed_at TIMESTAMP
		);`, pk),
		`CREATE INDEX IF NOT EXISTS idx_sprints_project ON sprints(project_id);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_sprint ON tasks(sprint_id);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
