package model

import (
	"fmt"
	"time"
)

// AuditRow is the persisted flattening of a past MatchResult plus the game and
// candidate fields needed for offline review. Rows are written once and never
// mutated; later pipeline stages only annotate the label columns.
type AuditRow struct {
	GameID            string        `json:"gameId"`
	GameName          string        `json:"gameName"`
	GameReleaseDate   string        `json:"gameReleaseDate"` // RFC 3339 date or empty
	GameReleaseStatus ReleaseStatus `json:"gameReleaseStatus"`
	CandidateTitle    string        `json:"candidateTitle"`
	CandidateSource   string        `json:"candidateSource"`
	IndexerName       string        `json:"indexerName"`
	MatchScore        float64       `json:"matchScore"`
	Matched           bool          `json:"matched"`
	Reasons           string        `json:"reasons"` // pipe-joined reason codes
	Size              string        `json:"size"`    // human-readable
	SizeBytes         int64         `json:"sizeBytes"`
	Seeders           int           `json:"seeders"`
	Leechers          int           `json:"leechers"`
	Grabs             int           `json:"grabs"`
	Uploader          string        `json:"uploader"`
	PublishDate       string        `json:"publishDate"` // RFC 3339 or empty
	ReleaseType       string        `json:"releaseType"`
	Type              string        `json:"type"`
	ReviewFlag        string        `json:"reviewFlag"`
	Label             string        `json:"label"` // "", "0" or "1"
	SourceTrustLevel  string        `json:"sourceTrustLevel"`
}

// NewAuditRow flattens a scored candidate into its audit representation.
func NewAuditRow(game CanonicalGame, res MatchResult) AuditRow {
	c := res.Candidate
	row := AuditRow{
		GameID:            game.ID,
		GameName:          game.Title,
		GameReleaseStatus: game.ReleaseStatus,
		CandidateTitle:    c.Title,
		CandidateSource:   c.Source,
		IndexerName:       c.IndexerName,
		MatchScore:        res.Score,
		Matched:           res.Matched,
		Reasons:           res.Reasons.Join(),
		Size:              HumanSize(c.SizeBytes),
		SizeBytes:         c.SizeBytes,
		Seeders:           c.Seeders,
		Leechers:          c.Leechers,
		Grabs:             c.Grabs,
		Uploader:          c.Uploader,
		ReleaseType:       c.ReleaseType,
		Type:              "game",
		SourceTrustLevel:  string(c.Trust),
	}
	if game.ReleaseDate != nil {
		row.GameReleaseDate = game.ReleaseDate.UTC().Format("2006-01-02")
	}
	if !c.PublishDate.IsZero() {
		row.PublishDate = c.PublishDate.UTC().Format(time.RFC3339)
	}
	return row
}

// DedupKey identifies a row for training-set deduplication.
func (r AuditRow) DedupKey() string {
	return r.GameID + "|" + r.CandidateTitle + "|" + r.CandidateSource
}

// ReleaseDate parses the game release date column; ok is false when absent or
// malformed.
func (r AuditRow) ReleaseDate() (time.Time, bool) {
	if r.GameReleaseDate == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", r.GameReleaseDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Published parses the candidate publish date column.
func (r AuditRow) Published() (time.Time, bool) {
	if r.PublishDate == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, r.PublishDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ReasonList parses the pipe-joined reasons column.
func (r AuditRow) ReasonList() Reasons {
	return ParseReasons(r.Reasons)
}

// TrainingRow is an audit row with a finalized binary label.
type TrainingRow struct {
	AuditRow
	FinalLabel int // 1 = true match, 0 = true non-match
}

// HumanSize renders a byte count the way indexers display it.
func HumanSize(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
