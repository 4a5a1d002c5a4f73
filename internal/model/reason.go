package model

import "strings"

// Reason is one fixed-vocabulary token explaining a contribution to a match
// score. The set is closed: the aggregator and the offline labeler key off the
// exact same strings, so new reasons must be added here, never inlined.
type Reason int

const (
	ReasonUnknown Reason = iota
	ReasonExactNameMatch
	ReasonExactPhraseInTitle
	ReasonAltTitleMatch
	ReasonVeryHighWordMatch
	ReasonHighWordMatch
	ReasonAllKeywordsPresent
	ReasonStrongDescriptionMatch
	ReasonDifferentSequel
	ReasonNumberedSequelTitle
	ReasonDemoAlphaBeta
	ReasonDLCOnly
	ReasonUpdateOnly
	ReasonCrackFixOnly
	ReasonLanguagePack
	ReasonModFanContent
	ReasonNonGameMedia
	ReasonAdultContent
	ReasonManyExtraWords
	ReasonTinySize
	ReasonPreReleasePublish
	ReasonInsufficientData
	ReasonMLProbability
	ReasonTrustedSource
	ReasonUnsafeSource
)

var reasonStrings = map[Reason]string{
	ReasonExactNameMatch:         "exact name match",
	ReasonExactPhraseInTitle:     "exact phrase in title",
	ReasonAltTitleMatch:          "matches alternative title",
	ReasonVeryHighWordMatch:      "very high word match ratio",
	ReasonHighWordMatch:          "high word match ratio",
	ReasonAllKeywordsPresent:     "all main keywords present",
	ReasonStrongDescriptionMatch: "strong Steam description match",
	ReasonDifferentSequel:        "different sequel number",
	ReasonNumberedSequelTitle:    "title is a numbered sequel",
	ReasonDemoAlphaBeta:          "demo/alpha/beta release",
	ReasonDLCOnly:                "dlc/expansion only",
	ReasonUpdateOnly:             "update/patch only",
	ReasonCrackFixOnly:           "crack fix only",
	ReasonLanguagePack:           "language pack",
	ReasonModFanContent:          "mod/fan content",
	ReasonNonGameMedia:           "non-game media",
	ReasonAdultContent:           "adult content",
	ReasonManyExtraWords:         "many extra words",
	ReasonTinySize:               "suspiciously small size",
	ReasonPreReleasePublish:      "published before release date",
	ReasonInsufficientData:       "insufficient data",
	ReasonMLProbability:          "ml probability",
	ReasonTrustedSource:          "trusted source",
	ReasonUnsafeSource:           "unsafe source",
}

var reasonValues = func() map[string]Reason {
	m := make(map[string]Reason, len(reasonStrings))
	for r, s := range reasonStrings {
		m[s] = r
	}
	return m
}()

func (r Reason) String() string {
	if s, ok := reasonStrings[r]; ok {
		return s
	}
	return "unknown"
}

// ParseReason maps a serialized reason token back to its enum value. Tokens
// outside the vocabulary (including free-form annotations like reranker
// scores) return ReasonUnknown, false.
func ParseReason(s string) (Reason, bool) {
	r, ok := reasonValues[strings.TrimSpace(s)]
	return r, ok
}

// Reasons is an ordered list of reason codes.
type Reasons []Reason

// Strings returns the serialized form of each reason, in order.
func (rs Reasons) Strings() []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.String()
	}
	return out
}

// Join serializes the list pipe-separated, the audit-file representation.
func (rs Reasons) Join() string {
	return strings.Join(rs.Strings(), "|")
}

// Contains reports whether the list includes r.
func (rs Reasons) Contains(r Reason) bool {
	for _, v := range rs {
		if v == r {
			return true
		}
	}
	return false
}

// ParseReasons parses a pipe-joined reason list, dropping empty and
// out-of-vocabulary tokens.
func ParseReasons(joined string) Reasons {
	if strings.TrimSpace(joined) == "" {
		return nil
	}
	var rs Reasons
	for _, part := range strings.Split(joined, "|") {
		if r, ok := ParseReason(part); ok {
			rs = append(rs, r)
		}
	}
	return rs
}
