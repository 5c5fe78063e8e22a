package document

import (
	"context"
	"database/sql"
	"fmt"
)

const latestVersion = 2

func ensureVersionTable(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER NOT NULL);`); err != nil {
		return err
	}
	var cnt int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(1) FROM schema_migrations`).Scan(&cnt); err != nil {
		return err
	}
	if cnt == 0 {
		_, err := db.ExecContext(ctx, `INSERT INTO schema_migrations(version) VALUES(0)`)
		return err
	}
	return nil
}

func schemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	if err := ensureVersionTable(ctx, db); err != nil {
		return 0, err
	}
	var v int
	if err := db.QueryRowContext(ctx, `SELECT version FROM schema_migrations`).Scan(&v); err != nil {
		return 0, err
	}
	return v, nil
}

// migrate brings the schema up to latestVersion. Each step runs in its own transaction.
func migrate(ctx context.Context, db *sql.DB) error {
	cur, err := schemaVersion(ctx, db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for v := cur + 1; v <= latestVersion; v++ {
		if err := migrateStep(ctx, db, v); err != nil {
			return fmt.Errorf("migrate up to v%d: %w", v, err)
		}
	}
	return nil
}

func migrateStep(ctx context.Context, db *sql.DB, v int) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range steps[v] {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `UPDATE schema_migrations SET version=?`, v); err != nil {
		return err
	}
	return tx.Commit()
}

var steps = map[int][]string{
	1: {
		`CREATE TABLE IF NOT EXISTS documents (
            id TEXT PRIMARY KEY,
            title TEXT NOT NULL DEFAULT '',
            content TEXT NOT NULL,
            created_at TEXT NOT NULL,
            updated_at TEXT NOT NULL
        );`,
	},
	2: {
		`CREATE INDEX IF NOT EXISTS idx_documents_updated_at ON documents(updated_at DESC);`,
	},
}
