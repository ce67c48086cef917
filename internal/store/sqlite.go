package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"shoplist/internal/model"

	_ "modernc.org/sqlite"
)

// SQLite keeps the snapshot in a single-file SQLite database, one row per item.
//
// If the database is empty and ImportJSON names an existing JSON snapshot (either the
// current format or the original name-keyed products.json), it is imported once.
type SQLite struct {
	Path       string
	ImportJSON string
}

func (s SQLite) open(ctx context.Context) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(filepath.Clean(s.Path)), 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.Path)
	if err != nil {
		return nil, err
	}
	// busy_timeout helps avoid "database is locked" when the CLI reads while the bot writes.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=FULL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (s SQLite) Load(ctx context.Context) (model.Snapshot, error) {
	db, err := s.open(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}
	defer db.Close()

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(1) FROM items`).Scan(&n); err != nil {
		return model.Snapshot{}, err
	}
	if n == 0 && strings.TrimSpace(s.ImportJSON) != "" {
		// One-time import from a JSON snapshot if present.
		if b, err := os.ReadFile(s.ImportJSON); err == nil && len(b) > 0 {
			snap, err := DecodeSnapshot(b)
			if err != nil {
				return model.Snapshot{}, err
			}
			if len(snap.Items) > 0 {
				if err := saveSnapshot(ctx, db, snap); err != nil {
					return model.Snapshot{}, err
				}
			}
		}
	}

	snap := model.EmptySnapshot()
	var version string
	_ = db.QueryRowContext(ctx, `SELECT v FROM state_meta WHERE k = ?`, "version").Scan(&version)
	if v, err := strconv.Atoi(strings.TrimSpace(version)); err == nil && v > 0 {
		snap.Version = v
	}
	items, err := readJSONRows[model.Item](ctx, db, `SELECT json FROM items ORDER BY position, id`)
	if err != nil {
		return model.Snapshot{}, err
	}
	for _, it := range items {
		snap.Items[it.ID] = it
		snap.Order = append(snap.Order, it.ID)
	}
	return snap, nil
}

func (s SQLite) Save(ctx context.Context, snap model.Snapshot) error {
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	return saveSnapshot(ctx, db, normalize(snap))
}

// saveSnapshot replaces every row in one transaction.
func saveSnapshot(ctx context.Context, db *sql.DB, snap model.Snapshot) error {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO state_meta(k, v) VALUES(?, ?)`, "version", strconv.Itoa(snap.Version)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return err
	}

	nowMs := time.Now().UTC().UnixMilli()
	for pos, it := range snap.Ordered() {
		raw, err := json.Marshal(it)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO items(id, position, name, bought, author_id, json, updated_at_unixms) VALUES(?, ?, ?, ?, ?, ?, ?)`,
			string(it.ID), pos, it.Name, boolToInt(it.Bought), int64(it.AuthorID), string(raw), nowMs); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func migrateSQLite(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS state_meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			bought INTEGER NOT NULL,
			author_id INTEGER NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_items_position ON items(position);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func readJSONRows[T any](ctx context.Context, db *sql.DB, query string) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var js string
		if err := rows.Scan(&js); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(js), &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
