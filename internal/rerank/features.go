// Package rerank loads and applies the learned scoring model. The model is
// advisory: it reports a calibrated probability beside the rule-based verdict
// and never replaces it.
package rerank

import (
	"math"
	"time"

	"github.com/questline/gamematch/internal/model"
)

// Features is the fixed feature vector consumed by the learned model. Every
// field derives from a MatchResult or an AuditRow, never from raw text, so
// online scoring and offline training see identical inputs.
type Features struct {
	RuleScore      float64 // aggregator score / 100
	ExactName      float64 // 0/1
	ExactPhrase    float64 // 0/1
	AltTitle       float64 // 0/1
	WordRatio      float64 // 1 very high, 0.5 high, else 0
	AllKeywords    float64 // 0/1
	StrongDesc     float64 // 0/1
	ExclusionHits  float64 // count of penalty reasons
	TrustRank      float64 // tier rank / 5
	LogSizeMB      float64 // log10(MB+1)
	LogSeeders     float64 // log10(seeders+1)
	YearsToRelease float64 // (publish - release) in years, clamped to [-2, 2]
}

// featureNames is the canonical ordering of the vector. Model artifacts
// record it and are rejected at load time when it differs.
var featureNames = []string{
	"rule_score",
	"exact_name",
	"exact_phrase",
	"alt_title",
	"word_ratio",
	"all_keywords",
	"strong_desc",
	"exclusion_hits",
	"trust_rank",
	"log_size_mb",
	"log_seeders",
	"years_to_release",
}

// FeatureNames returns the canonical feature ordering.
func FeatureNames() []string {
	out := make([]string, len(featureNames))
	copy(out, featureNames)
	return out
}

// Vector flattens the features in canonical order.
func (f Features) Vector() []float64 {
	return []float64{
		f.RuleScore,
		f.ExactName,
		f.ExactPhrase,
		f.AltTitle,
		f.WordRatio,
		f.AllKeywords,
		f.StrongDesc,
		f.ExclusionHits,
		f.TrustRank,
		f.LogSizeMB,
		f.LogSeeders,
		f.YearsToRelease,
	}
}

var penaltyReasons = []model.Reason{
	model.ReasonDifferentSequel,
	model.ReasonNumberedSequelTitle,
	model.ReasonNonGameMedia,
	model.ReasonAdultContent,
	model.ReasonDemoAlphaBeta,
	model.ReasonDLCOnly,
	model.ReasonUpdateOnly,
	model.ReasonCrackFixOnly,
	model.ReasonLanguagePack,
	model.ReasonModFanContent,
	model.ReasonTinySize,
	model.ReasonPreReleasePublish,
}

// FromResult derives the feature vector during online scoring.
func FromResult(score float64, reasons model.Reasons, tier model.TrustTier, cand model.Candidate, game model.CanonicalGame) Features {
	var release time.Time
	hasRelease := false
	if game.ReleaseDate != nil {
		release = *game.ReleaseDate
		hasRelease = true
	}
	return build(score, reasons, tier, cand.SizeBytes, cand.Seeders, cand.PublishDate, release, hasRelease)
}

// FromAudit derives the feature vector from a persisted audit row.
func FromAudit(row model.AuditRow) Features {
	publish, _ := row.Published()
	release, hasRelease := row.ReleaseDate()
	return build(
		row.MatchScore,
		row.ReasonList(),
		model.TrustTier(row.SourceTrustLevel),
		row.SizeBytes,
		row.Seeders,
		publish,
		release,
		hasRelease,
	)
}

func build(score float64, reasons model.Reasons, tier model.TrustTier, sizeBytes int64, seeders int, publish, release time.Time, hasRelease bool) Features {
	f := Features{
		RuleScore: score / 100,
		TrustRank: float64(tier.Rank()) / 5,
	}
	if reasons.Contains(model.ReasonExactNameMatch) {
		f.ExactName = 1
	}
	if reasons.Contains(model.ReasonExactPhraseInTitle) {
		f.ExactPhrase = 1
	}
	if reasons.Contains(model.ReasonAltTitleMatch) {
		f.AltTitle = 1
	}
	if reasons.Contains(model.ReasonVeryHighWordMatch) {
		f.WordRatio = 1
	} else if reasons.Contains(model.ReasonHighWordMatch) {
		f.WordRatio = 0.5
	}
	if reasons.Contains(model.ReasonAllKeywordsPresent) {
		f.AllKeywords = 1
	}
	if reasons.Contains(model.ReasonStrongDescriptionMatch) {
		f.StrongDesc = 1
	}
	for _, r := range penaltyReasons {
		if reasons.Contains(r) {
			f.ExclusionHits++
		}
	}
	if sizeBytes > 0 {
		f.LogSizeMB = math.Log10(float64(sizeBytes)/(1024*1024) + 1)
	}
	if seeders > 0 {
		f.LogSeeders = math.Log10(float64(seeders) + 1)
	}
	if hasRelease && !publish.IsZero() {
		years := publish.Sub(release).Hours() / (24 * 365)
		if years < -2 {
			years = -2
		}
		if years > 2 {
			years = 2
		}
		f.YearsToRelease = years
	}
	return f
}
