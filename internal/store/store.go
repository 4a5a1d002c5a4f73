// Package store persists audit rows so curation runs can query past scoring
// decisions without re-reading CSV exports.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/questline/gamematch/internal/config"
	"github.com/questline/gamematch/internal/model"
)

// RowFilter specifies criteria for listing audit rows.
type RowFilter struct {
	GameID   string   `json:"game_id,omitempty"`
	Matched  *bool    `json:"matched,omitempty"`
	MinScore *float64 `json:"min_score,omitempty"`
	Limit    int      `json:"limit,omitempty"`
	Offset   int      `json:"offset,omitempty"`
}

// Store defines the persistence interface for the audit log.
type Store interface {
	// SaveRows upserts a batch keyed by (game_id, candidate_title,
	// candidate_source); re-importing a CSV is idempotent.
	SaveRows(ctx context.Context, rows []model.AuditRow) (int, error)
	ListRows(ctx context.Context, filter RowFilter) ([]model.AuditRow, error)
	CountRows(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open builds the configured backend.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLite(cfg.Path)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	}
	return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
}

// auditColumns is the column list shared by both backends, in insert order.
var auditColumns = []string{
	"game_id", "game_name", "game_release_date", "game_release_status",
	"candidate_title", "candidate_source", "indexer_name",
	"match_score", "matched", "reasons",
	"size", "size_bytes", "seeders", "leechers", "grabs",
	"uploader", "publish_date", "release_type", "type",
	"review_flag", "label", "source_trust_level",
}

func rowArgs(r model.AuditRow) []any {
	return []any{
		r.GameID, r.GameName, r.GameReleaseDate, string(r.GameReleaseStatus),
		r.CandidateTitle, r.CandidateSource, r.IndexerName,
		r.MatchScore, r.Matched, r.Reasons,
		r.Size, r.SizeBytes, r.Seeders, r.Leechers, r.Grabs,
		r.Uploader, r.PublishDate, r.ReleaseType, r.Type,
		r.ReviewFlag, r.Label, r.SourceTrustLevel,
	}
}

func scanTargets(r *model.AuditRow, status *string) []any {
	return []any{
		&r.GameID, &r.GameName, &r.GameReleaseDate, status,
		&r.CandidateTitle, &r.CandidateSource, &r.IndexerName,
		&r.MatchScore, &r.Matched, &r.Reasons,
		&r.Size, &r.SizeBytes, &r.Seeders, &r.Leechers, &r.Grabs,
		&r.Uploader, &r.PublishDate, &r.ReleaseType, &r.Type,
		&r.ReviewFlag, &r.Label, &r.SourceTrustLevel,
	}
}
