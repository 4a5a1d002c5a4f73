package audit

import (
	"time"

	"github.com/questline/gamematch/internal/config"
	"github.com/questline/gamematch/internal/model"
)

// Labeler assigns conservative labels to audit rows without human review.
// Ambiguous rows stay unlabeled and flow to the review sampler.
type Labeler struct {
	cfg   config.LabelerConfig
	rules []labelRule
}

// Verdict is the labeler outcome for one row: "1", "0" or "" (defer to
// human review), with the rationale of the rule that fired.
type Verdict struct {
	Label     string
	Rationale string
}

// labelRule is one pure predicate in the ordered rule list. The first rule
// whose predicate holds decides the row.
type labelRule struct {
	name      string
	label     string
	rationale string
	when      func(cfg config.LabelerConfig, row model.AuditRow, rs model.Reasons) bool
}

// exclusionReasons are the penalty codes that disqualify an auto-positive
// label unless an exact-match reason offsets them.
var exclusionReasons = []model.Reason{
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
}

// NewLabeler builds the labeler with its rule order fixed. Negative rules
// come first so a row carrying both an exclusion signal and an exact-name
// match is never auto-labeled positive by accident.
func NewLabeler(cfg config.LabelerConfig) *Labeler {
	return &Labeler{cfg: cfg, rules: []labelRule{
		{
			name:      "unreleased_match",
			label:     "0",
			rationale: "unreleased game matched (likely fake)",
			when: func(_ config.LabelerConfig, row model.AuditRow, _ model.Reasons) bool {
				return row.GameReleaseStatus == model.ReleaseStatusUnreleased && row.Matched
			},
		},
		{
			name:      "matched_despite_exclusion",
			label:     "0",
			rationale: "matched despite excluded-content signal",
			when: func(_ config.LabelerConfig, row model.AuditRow, rs model.Reasons) bool {
				if !row.Matched || rs.Contains(model.ReasonExactNameMatch) {
					return false
				}
				for _, r := range exclusionReasons {
					if rs.Contains(r) {
						return true
					}
				}
				return false
			},
		},
		{
			name:      "matched_tiny_size",
			label:     "0",
			rationale: "matched but implausibly small",
			when: func(cfg config.LabelerConfig, row model.AuditRow, _ model.Reasons) bool {
				return row.Matched && row.SizeBytes > 0 && row.SizeBytes < cfg.MinSizeMB*1024*1024
			},
		},
		{
			name:      "matched_pre_release",
			label:     "0",
			rationale: "published long before release date",
			when: func(cfg config.LabelerConfig, row model.AuditRow, _ model.Reasons) bool {
				if !row.Matched {
					return false
				}
				release, okR := row.ReleaseDate()
				publish, okP := row.Published()
				if !okR || !okP {
					return false
				}
				cutoff := release.Add(-time.Duration(cfg.PreReleaseDays) * 24 * time.Hour)
				return publish.Before(cutoff)
			},
		},
		{
			name:      "exact_title_reputable",
			label:     "1",
			rationale: "exact title from reputable source",
			when: func(cfg config.LabelerConfig, row model.AuditRow, rs model.Reasons) bool {
				if !row.Matched || !reputable(row) {
					return false
				}
				if rs.Contains(model.ReasonExactNameMatch) {
					return true
				}
				return rs.Contains(model.ReasonExactPhraseInTitle) && row.MatchScore >= cfg.RecoverScore
			},
		},
		{
			name:      "high_score_trusted_keywords",
			label:     "1",
			rationale: "high score from trusted source with all keywords",
			when: func(cfg config.LabelerConfig, row model.AuditRow, rs model.Reasons) bool {
				return row.Matched && row.MatchScore >= cfg.HighScore &&
					reputable(row) && rs.Contains(model.ReasonAllKeywordsPresent)
			},
		},
		{
			name:      "zero_score",
			label:     "0",
			rationale: "no signal",
			when: func(_ config.LabelerConfig, row model.AuditRow, _ model.Reasons) bool {
				return !row.Matched && row.MatchScore == 0
			},
		},
		{
			name:      "score_below_floor",
			label:     "0",
			rationale: "score below floor",
			when: func(cfg config.LabelerConfig, row model.AuditRow, _ model.Reasons) bool {
				return !row.Matched && row.MatchScore < cfg.LowScore
			},
		},
		{
			name:      "reranker_recovers_false_negative",
			label:     "1",
			rationale: "reranker disagreement recovers likely false negative",
			when: func(cfg config.LabelerConfig, row model.AuditRow, rs model.Reasons) bool {
				return !row.Matched && row.MatchScore >= cfg.RecoverScore &&
					reputable(row) && rs.Contains(model.ReasonAllKeywordsPresent) &&
					rs.Contains(model.ReasonMLProbability)
			},
		},
	}}
}

// Label reduces the rule list over one row; the first matching rule wins.
// Rows no rule covers are deferred to human review.
func (l *Labeler) Label(row model.AuditRow) Verdict {
	rs := row.ReasonList()
	for _, rule := range l.rules {
		if rule.when(l.cfg, row, rs) {
			return Verdict{Label: rule.label, Rationale: rule.rationale}
		}
	}
	return Verdict{}
}

func reputable(row model.AuditRow) bool {
	return model.TrustTier(row.SourceTrustLevel).Reputable()
}
