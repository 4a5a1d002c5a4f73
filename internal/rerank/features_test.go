package rerank

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/questline/gamematch/internal/model"
)

func TestFromResultAndFromAuditAgree(t *testing.T) {
	release := time.Date(2022, 2, 25, 0, 0, 0, 0, time.UTC)
	publish := time.Date(2022, 2, 26, 12, 0, 0, 0, time.UTC)

	game := model.CanonicalGame{
		ID:            "g1",
		Title:         "Elden Ring",
		ReleaseDate:   &release,
		ReleaseStatus: model.ReleaseStatusReleased,
	}
	cand := model.Candidate{
		Title:       "Elden Ring",
		Source:      "rss",
		SizeBytes:   48 * 1024 * 1024 * 1024,
		Seeders:     120,
		PublishDate: publish,
		Trust:       model.TrustTrusted,
	}
	reasons := model.Reasons{
		model.ReasonExactNameMatch,
		model.ReasonVeryHighWordMatch,
		model.ReasonAllKeywordsPresent,
		model.ReasonTrustedSource,
	}

	res := model.MatchResult{Candidate: cand, Score: 100, Reasons: reasons, Matched: true}
	res.Finalize()
	row := model.NewAuditRow(game, res)

	online := FromResult(res.Score, res.Reasons, model.TrustTrusted, cand, game)
	offline := FromAudit(row)

	// Training and inference must derive the same vector from the same row.
	assert.InDeltaSlice(t, online.Vector(), offline.Vector(), 1e-6)
}

func TestFeatures_PenaltyCount(t *testing.T) {
	f := build(20, model.Reasons{
		model.ReasonDifferentSequel,
		model.ReasonNonGameMedia,
		model.ReasonExactPhraseInTitle, // contributing, not a penalty
	}, model.TrustNone, 0, 0, time.Time{}, time.Time{}, false)

	assert.Equal(t, 2.0, f.ExclusionHits)
	assert.Equal(t, 1.0, f.ExactPhrase)
	assert.Equal(t, 0.2, f.RuleScore)
}

func TestFeatures_YearsToReleaseClamped(t *testing.T) {
	release := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	publish := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	f := build(0, nil, model.TrustNone, 0, 0, publish, release, true)
	assert.Equal(t, -2.0, f.YearsToRelease)

	f = build(0, nil, model.TrustNone, 0, 0, release, publish, true)
	assert.Equal(t, 2.0, f.YearsToRelease)
}

func TestFeatures_ZeroSizeAndSeeders(t *testing.T) {
	f := build(0, nil, model.TrustNone, 0, 0, time.Time{}, time.Time{}, false)
	assert.Zero(t, f.LogSizeMB)
	assert.Zero(t, f.LogSeeders)
	assert.Zero(t, f.YearsToRelease)
}

func TestFeatureNames_MatchVectorLength(t *testing.T) {
	assert.Len(t, Features{}.Vector(), len(FeatureNames()))
	// The serialized name must state the unit the value carries.
	assert.Contains(t, FeatureNames(), "years_to_release")
	assert.NotContains(t, FeatureNames(), "days_to_release")
}
