// Package model defines the core data types shared by the matching engine
// and the offline curation pipeline.
package model

import "time"

// ReleaseStatus describes whether a canonical game has shipped.
type ReleaseStatus string

const (
	ReleaseStatusReleased   ReleaseStatus = "released"
	ReleaseStatusUnreleased ReleaseStatus = "unreleased"
	ReleaseStatusNoDate     ReleaseStatus = "no_date"
)

// CanonicalGame is the authoritative metadata record candidates are matched
// against. Immutable within a matching run; sourced from the metadata provider.
type CanonicalGame struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	AltTitles     []string      `json:"alt_titles,omitempty"`
	ReleaseDate   *time.Time    `json:"release_date,omitempty"`
	ReleaseStatus ReleaseStatus `json:"release_status"`
	Description   string        `json:"description,omitempty"`
	ExternalID    string        `json:"external_id,omitempty"` // e.g. storefront app id
}

// Released reports whether the game has a known past release date.
func (g CanonicalGame) Released() bool {
	return g.ReleaseStatus == ReleaseStatusReleased
}
