package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Validate checks that the configuration is internally consistent. Validation
// failures are fatal: out-of-range thresholds are reported immediately, never
// silently defaulted.
func (c *Config) Validate() error {
	var errs []string

	if c.Match.Threshold < 0 || c.Match.Threshold > 100 {
		errs = append(errs, fmt.Sprintf("match.threshold must be in [0,100], got %.1f", c.Match.Threshold))
	}
	if c.Match.Concurrency < 1 {
		errs = append(errs, "match.concurrency must be >= 1")
	}
	if c.Match.VeryHighSimilarity < c.Match.HighSimilarity {
		errs = append(errs, "match.very_high_similarity must be >= match.high_similarity")
	}
	if c.Match.DescThreshold < 0 || c.Match.DescThreshold > 1 {
		errs = append(errs, "match.desc_threshold must be in [0,1]")
	}
	if c.Match.RerankOverrideFloor < 0.5 || c.Match.RerankOverrideFloor > 1 {
		errs = append(errs, "match.rerank_override_floor must be in [0.5,1]")
	}
	for name, w := range map[string]float64{
		"match.exact_name_weight":       c.Match.ExactNameWeight,
		"match.exact_phrase_weight":     c.Match.ExactPhraseWeight,
		"match.alt_title_weight":        c.Match.AltTitleWeight,
		"match.very_high_word_weight":   c.Match.VeryHighWordWeight,
		"match.high_word_weight":        c.Match.HighWordWeight,
		"match.all_keywords_weight":     c.Match.AllKeywordsWeight,
		"match.description_weight":      c.Match.DescriptionWeight,
		"match.sequel_mismatch_penalty": c.Match.SequelMismatchPenalty,
		"match.non_game_media_penalty":  c.Match.NonGameMediaPenalty,
	} {
		if w < 0 {
			errs = append(errs, name+" must be >= 0")
		}
	}

	if c.Labeler.HighScore < c.Labeler.RecoverScore {
		errs = append(errs, "labeler.high_score must be >= labeler.recover_score")
	}
	if c.Labeler.LowScore < 0 || c.Labeler.LowScore > 100 {
		errs = append(errs, "labeler.low_score must be in [0,100]")
	}

	if c.Review.BucketCap < 1 {
		errs = append(errs, "review.bucket_cap must be >= 1")
	}
	if c.Review.ValidationSample < 0 {
		errs = append(errs, "review.validation_sample must be >= 0")
	}

	if c.Train.MinRows < 1 {
		errs = append(errs, "train.min_rows must be >= 1")
	}
	if c.Train.Folds < 2 {
		errs = append(errs, "train.folds must be >= 2")
	}
	if c.Train.LearningRate <= 0 {
		errs = append(errs, "train.learning_rate must be > 0")
	}
	if p := c.Train.DedupPolicy; p != "keep-first" && p != "keep-last" {
		errs = append(errs, fmt.Sprintf("train.dedup_policy must be keep-first or keep-last, got %q", p))
	}

	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("store.driver must be sqlite or postgres, got %q", c.Store.Driver))
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be a valid port, got %d", c.Server.Port))
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
