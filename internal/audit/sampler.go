package audit

import (
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/questline/gamematch/internal/config"
	"github.com/questline/gamematch/internal/model"
)

// Review bucket names. A row lands in at most the first matching bucket.
const (
	BucketLowConfidenceMatch   = "low_confidence_match"
	BucketCloseMiss            = "close_miss"
	BucketUnreleasedWithResult = "unreleased_with_results"
	BucketUntrustedSmallMatch  = "untrusted_small_match"
	BucketExtraWordsMatch      = "extra_words_match"
	BucketZeroSeedersMatch     = "zero_seeders_match"
	BucketTrustedRejected      = "trusted_rejected"

	bucketValidationPos        = "validation_auto_1"
	bucketValidationNegMatched = "validation_auto_0_matched"
	bucketValidationNegReject  = "validation_auto_0_rejected"
)

// LabeledRow is an audit row annotated by the auto-labeler.
type LabeledRow struct {
	Row        model.AuditRow
	AutoLabel  string
	AutoReason string
}

// ReviewRow is one line of the review CSV.
type ReviewRow struct {
	LabeledRow
	Bucket string
}

// bucketDef pairs a bucket name with its membership predicate. Order is the
// assignment precedence.
type bucketDef struct {
	name string
	when func(row model.AuditRow) bool
}

var bucketDefs = []bucketDef{
	{BucketLowConfidenceMatch, func(r model.AuditRow) bool {
		return r.Matched && r.MatchScore >= 30 && r.MatchScore <= 75
	}},
	{BucketCloseMiss, func(r model.AuditRow) bool {
		return !r.Matched && r.MatchScore >= 50 && r.MatchScore < 70
	}},
	{BucketUnreleasedWithResult, func(r model.AuditRow) bool {
		return r.GameReleaseStatus == model.ReleaseStatusUnreleased && r.MatchScore > 0
	}},
	{BucketUntrustedSmallMatch, func(r model.AuditRow) bool {
		return r.Matched && !model.TrustTier(r.SourceTrustLevel).Reputable() &&
			r.SizeBytes > 0 && r.SizeBytes < 500*1024*1024
	}},
	{BucketExtraWordsMatch, func(r model.AuditRow) bool {
		return r.Matched && r.ReasonList().Contains(model.ReasonManyExtraWords)
	}},
	{BucketZeroSeedersMatch, func(r model.AuditRow) bool {
		return r.Matched && r.Seeders == 0 && r.IndexerName != ""
	}},
	{BucketTrustedRejected, func(r model.AuditRow) bool {
		return !r.Matched && model.TrustTier(r.SourceTrustLevel).Reputable() && r.MatchScore > 30
	}},
}

// Sampler partitions unlabeled rows into review buckets and draws a bounded,
// shuffled sample per bucket, plus validation samples from auto-labeled rows
// for spot-checking the labeler itself.
type Sampler struct {
	cfg config.ReviewConfig
	rng *rand.Rand
}

// NewSampler builds a sampler. A zero configured seed draws a time-based one,
// so production runs vary while tests stay reproducible.
func NewSampler(cfg config.ReviewConfig) *Sampler {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Sampler{cfg: cfg, rng: rand.New(rand.NewSource(seed))}
}

// Sample produces the review set: capped concrete buckets from the unlabeled
// rows, then validation draws from the labeled rows, sorted by bucket name.
func (s *Sampler) Sample(unlabeled, labeled []LabeledRow) []ReviewRow {
	byBucket := make(map[string][]LabeledRow, len(bucketDefs))
	for _, lr := range unlabeled {
		if name, ok := bucketFor(lr.Row); ok {
			byBucket[name] = append(byBucket[name], lr)
		}
	}

	var out []ReviewRow
	for _, def := range bucketDefs {
		rows := byBucket[def.name]
		rows = s.draw(rows, s.cfg.BucketCap)
		for _, lr := range rows {
			out = append(out, ReviewRow{LabeledRow: lr, Bucket: def.name})
		}
		zap.L().Info("review: bucket sampled",
			zap.String("bucket", def.name),
			zap.Int("candidates", len(byBucket[def.name])),
			zap.Int("sampled", len(rows)),
		)
	}

	out = append(out, s.validation(labeled)...)
	return out
}

// BucketFor returns the concrete bucket an unlabeled row belongs to.
func BucketFor(row model.AuditRow) (string, bool) {
	return bucketFor(row)
}

func bucketFor(row model.AuditRow) (string, bool) {
	for _, def := range bucketDefs {
		if def.when(row) {
			return def.name, true
		}
	}
	return "", false
}

// validation draws fixed-size samples from each auto-labeled stratum.
func (s *Sampler) validation(labeled []LabeledRow) []ReviewRow {
	strata := map[string][]LabeledRow{}
	for _, lr := range labeled {
		switch {
		case lr.AutoLabel == "1":
			strata[bucketValidationPos] = append(strata[bucketValidationPos], lr)
		case lr.AutoLabel == "0" && lr.Row.Matched:
			strata[bucketValidationNegMatched] = append(strata[bucketValidationNegMatched], lr)
		case lr.AutoLabel == "0":
			strata[bucketValidationNegReject] = append(strata[bucketValidationNegReject], lr)
		}
	}

	names := make([]string, 0, len(strata))
	for name := range strata {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []ReviewRow
	for _, name := range names {
		for _, lr := range s.draw(strata[name], s.cfg.ValidationSample) {
			out = append(out, ReviewRow{LabeledRow: lr, Bucket: name})
		}
	}
	return out
}

// draw shuffles rows and returns at most n of them.
func (s *Sampler) draw(rows []LabeledRow, n int) []LabeledRow {
	shuffled := make([]LabeledRow, len(rows))
	copy(shuffled, rows)
	s.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n >= 0 && len(shuffled) > n {
		shuffled = shuffled[:n]
	}
	return shuffled
}
