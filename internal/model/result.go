package model

// ExclusionTag is a structural red flag derived from candidate title patterns.
// Tags are informational: the aggregator decides how heavily each one weighs.
type ExclusionTag string

const (
	ExclDifferentSequelNumber ExclusionTag = "different_sequel_number"
	ExclTitleIsNumberedSequel ExclusionTag = "title_is_numbered_sequel"
	ExclDemoAlphaBeta         ExclusionTag = "demo_alpha_beta"
	ExclDLCExpansionOnly      ExclusionTag = "dlc_expansion_only"
	ExclUpdatePatchOnly       ExclusionTag = "update_patch_only"
	ExclCrackFixOnly          ExclusionTag = "crack_fix_only"
	ExclLanguagePack          ExclusionTag = "language_pack"
	ExclModFanContent         ExclusionTag = "mod_fan_content"
	ExclNonGameMedia          ExclusionTag = "non_game_media"
	ExclAdultContent          ExclusionTag = "adult_content"
)

// MatchResult is the outcome of scoring one candidate against one canonical
// game. The reason codes fully explain the score: there are no hidden inputs.
type MatchResult struct {
	Candidate   Candidate      `json:"candidate"`
	Score       float64        `json:"score"` // 0-100, clamped
	Reasons     Reasons        `json:"-"`
	ReasonCodes []string       `json:"reasons"` // serialized Reasons, wire form
	Matched     bool           `json:"matched"`
	Exclusions  []ExclusionTag `json:"exclusions,omitempty"`
	Probability *float64       `json:"probability,omitempty"` // learned reranker, advisory
}

// Finalize fills the serialized reason codes from the enum list. Call before
// marshaling a result across the interface boundary.
func (m *MatchResult) Finalize() {
	m.ReasonCodes = m.Reasons.Strings()
}
