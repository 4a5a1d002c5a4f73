package model

import "time"

// TrustTier is a coarse reputation classification of a release source or
// uploader, supplied by the caller from an external trust registry.
type TrustTier string

const (
	TrustTrusted   TrustTier = "trusted"
	TrustSafe      TrustTier = "safe"
	TrustNone      TrustTier = "none"
	TrustAbandoned TrustTier = "abandoned"
	TrustUnsafe    TrustTier = "unsafe"
	TrustNSFW      TrustTier = "nsfw"
)

// tierRanks orders tiers from most to least reputable. Unknown tiers rank
// with TrustNone.
var tierRanks = map[TrustTier]int{
	TrustTrusted:   5,
	TrustSafe:      4,
	TrustNone:      3,
	TrustAbandoned: 2,
	TrustUnsafe:    1,
	TrustNSFW:      0,
}

// Rank returns the tier's position in the trust ordering; higher is better.
func (t TrustTier) Rank() int {
	if r, ok := tierRanks[t]; ok {
		return r
	}
	return tierRanks[TrustNone]
}

// Reputable reports whether the tier is trusted or safe.
func (t TrustTier) Reputable() bool {
	return t == TrustTrusted || t == TrustSafe
}

// Candidate is a single scraped release listing from one source. It exists
// only for the duration of a scoring call.
type Candidate struct {
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	IndexerName string    `json:"indexer_name,omitempty"`
	Uploader    string    `json:"uploader,omitempty"`
	Description string    `json:"description,omitempty"`
	SizeBytes   int64     `json:"size_bytes,omitempty"`
	Seeders     int       `json:"seeders,omitempty"`
	Leechers    int       `json:"leechers,omitempty"`
	Grabs       int       `json:"grabs,omitempty"`
	PublishDate time.Time `json:"publish_date,omitempty"`
	Trust       TrustTier `json:"trust,omitempty"`
	ReleaseType string    `json:"release_type,omitempty"` // e.g. repack, scene, rip
}
