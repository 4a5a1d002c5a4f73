package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/questline/gamematch/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses; tests substitute a mock.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wires an existing pool; used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS audit_rows (
	id                  TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	game_id             TEXT NOT NULL,
	game_name           TEXT NOT NULL,
	game_release_date   TEXT NOT NULL DEFAULT '',
	game_release_status TEXT NOT NULL DEFAULT '',
	candidate_title     TEXT NOT NULL,
	candidate_source    TEXT NOT NULL DEFAULT '',
	indexer_name        TEXT NOT NULL DEFAULT '',
	match_score         DOUBLE PRECISION NOT NULL DEFAULT 0,
	matched             BOOLEAN NOT NULL DEFAULT false,
	reasons             TEXT NOT NULL DEFAULT '',
	size                TEXT NOT NULL DEFAULT '',
	size_bytes          BIGINT NOT NULL DEFAULT 0,
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
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (game_id, candidate_title, candidate_source)
);

CREATE INDEX IF NOT EXISTS idx_audit_rows_game_id ON audit_rows(game_id);
CREATE INDEX IF NOT EXISTS idx_audit_rows_matched ON audit_rows(matched);
CREATE INDEX IF NOT EXISTS idx_audit_rows_match_score ON audit_rows(match_score);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveRows(ctx context.Context, rows []model.AuditRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	placeholders := make([]string, 0, len(auditColumns)+2)
	for i := 0; i < len(auditColumns)+2; i++ {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
	}
	query := fmt.Sprintf(
		`INSERT INTO audit_rows (id, %s, created_at) VALUES (%s)
		 ON CONFLICT (game_id, candidate_title, candidate_source) DO UPDATE SET
		   match_score = EXCLUDED.match_score,
		   matched = EXCLUDED.matched,
		   reasons = EXCLUDED.reasons,
		   review_flag = EXCLUDED.review_flag,
		   label = EXCLUDED.label`,
		strings.Join(auditColumns, ", "), strings.Join(placeholders, ", "),
	)

	now := time.Now().UTC()
	saved := 0
	for _, row := range rows {
		args := append([]any{uuid.New().String()}, rowArgs(row)...)
		args = append(args, now)
		if _, err := s.pool.Exec(ctx, query, args...); err != nil {
			return saved, eris.Wrapf(err, "postgres: insert audit row %s", row.DedupKey())
		}
		saved++
	}
	return saved, nil
}

func (s *PostgresStore) ListRows(ctx context.Context, filter RowFilter) ([]model.AuditRow, error) {
	query := fmt.Sprintf(`SELECT %s FROM audit_rows WHERE true`, strings.Join(auditColumns, ", "))
	args := []any{}
	argIdx := 1

	if filter.GameID != "" {
		query += fmt.Sprintf(` AND game_id = $%d`, argIdx)
		args = append(args, filter.GameID)
		argIdx++
	}
	if filter.Matched != nil {
		query += fmt.Sprintf(` AND matched = $%d`, argIdx)
		args = append(args, *filter.Matched)
		argIdx++
	}
	if filter.MinScore != nil {
		query += fmt.Sprintf(` AND match_score >= $%d`, argIdx)
		args = append(args, *filter.MinScore)
		argIdx++
	}
	query += ` ORDER BY created_at DESC, game_id, candidate_title`

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list audit rows")
	}
	defer rows.Close()

	var out []model.AuditRow
	for rows.Next() {
		var r model.AuditRow
		var status string
		if err := rows.Scan(scanTargets(&r, &status)...); err != nil {
			return nil, eris.Wrap(err, "postgres: scan audit row")
		}
		r.GameReleaseStatus = model.ReleaseStatus(status)
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list audit rows iterate")
}

func (s *PostgresStore) CountRows(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM audit_rows`).Scan(&count)
	return count, eris.Wrap(err, "postgres: count audit rows")
}
