package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/questline/gamematch/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS audit_rows (
	id                  TEXT PRIMARY KEY,
	game_id             TEXT NOT NULL,
	game_name           TEXT NOT NULL,
	game_release_date   TEXT NOT NULL DEFAULT '',
	game_release_status TEXT NOT NULL DEFAULT '',
	candidate_title     TEXT NOT NULL,
	candidate_source    TEXT NOT NULL DEFAULT '',
	indexer_name        TEXT NOT NULL DEFAULT '',
	match_score         REAL NOT NULL DEFAULT 0,
	matched             INTEGER NOT NULL DEFAULT 0,
	reasons             TEXT NOT NULL DEFAULT '',
	size                TEXT NOT NULL DEFAULT '',
	size_bytes          INTEGER NOT NULL DEFAULT 0,
	seeders             INTEGER NOT NULL DEFAULT 0,
	leechers            INTEGER NOT NULL DEFAULT 0,
	grabs               INTEGER NOT NULL DEFAULT 0,
	uploader            TEXT NOT NULL DEFAULT '',
	publish_date        TEXT NOT NULL DEFAULT '',
	release_type        TEXT NOT NULL DEFAULT '',
	type                TEXT NOT NULL DEFAULT 'game',
	review_flag         TEXT NOT NULL DEFAULT '',
	label               TEXT NOT NULL DEFAULT '',
	source_trust_level  TEXT NOT NULL DEFAULT '',
	created_at          DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (game_id, candidate_title, candidate_source)
);

CREATE INDEX IF NOT EXISTS idx_audit_rows_game_id ON audit_rows(game_id);
CREATE INDEX IF NOT EXISTS idx_audit_rows_matched ON audit_rows(matched);
CREATE INDEX IF NOT EXISTS idx_audit_rows_match_score ON audit_rows(match_score);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRows(ctx context.Context, rows []model.AuditRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(auditColumns)+2), ", ")
	query := fmt.Sprintf(
		`INSERT INTO audit_rows (id, %s, created_at) VALUES (%s)
		 ON CONFLICT (game_id, candidate_title, candidate_source) DO UPDATE SET
		   match_score = excluded.match_score,
		   matched = excluded.matched,
		   reasons = excluded.reasons,
		   review_flag = excluded.review_flag,
		   label = excluded.label`,
		strings.Join(auditColumns, ", "), placeholders,
	)

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	saved := 0
	for _, row := range rows {
		args := append([]any{uuid.New().String()}, rowArgs(row)...)
		args = append(args, now)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return saved, eris.Wrapf(err, "sqlite: insert audit row %s", row.DedupKey())
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit tx")
	}
	return saved, nil
}

func (s *SQLiteStore) ListRows(ctx context.Context, filter RowFilter) ([]model.AuditRow, error) {
	query := fmt.Sprintf(`SELECT %s FROM audit_rows WHERE 1=1`, strings.Join(auditColumns, ", "))
	var args []any

	if filter.GameID != "" {
		query += ` AND game_id = ?`
		args = append(args, filter.GameID)
	}
	if filter.Matched != nil {
		query += ` AND matched = ?`
		args = append(args, *filter.Matched)
	}
	if filter.MinScore != nil {
		query += ` AND match_score >= ?`
		args = append(args, *filter.MinScore)
	}
	query += ` ORDER BY created_at DESC, game_id, candidate_title`

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list audit rows")
	}
	defer rows.Close()

	var out []model.AuditRow
	for rows.Next() {
		var r model.AuditRow
		var status string
		if err := rows.Scan(scanTargets(&r, &status)...); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan audit row")
		}
		r.GameReleaseStatus = model.ReleaseStatus(status)
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list audit rows iterate")
}

func (s *SQLiteStore) CountRows(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_rows`).Scan(&count)
	return count, eris.Wrap(err, "sqlite: count audit rows")
}
