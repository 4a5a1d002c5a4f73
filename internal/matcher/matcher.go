// Package matcher implements the multi-signal scoring engine that decides
// whether a scraped release candidate denotes a canonical game.
package matcher

import (
	"context"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/questline/gamematch/internal/config"
	"github.com/questline/gamematch/internal/model"
	"github.com/questline/gamematch/internal/rerank"
	"github.com/questline/gamematch/internal/title"
)

// Matcher scores candidates against a canonical game. It is immutable after
// construction and safe for concurrent use; the optional reranker model is
// loaded once and never mutated.
type Matcher struct {
	cfg      config.MatchConfig
	lex      *Lexical
	excl     *Classifier
	trust    *TrustWeighter
	reranker *rerank.Model
}

// New builds a Matcher from the given configuration. model may be nil, in
// which case no learned probability is reported.
func New(cfg config.MatchConfig, reranker *rerank.Model) *Matcher {
	return &Matcher{
		cfg:      cfg,
		lex:      NewLexical(cfg),
		excl:     NewClassifier(cfg),
		trust:    NewTrustWeighter(cfg),
		reranker: reranker,
	}
}

// evaluation carries the precomputed signals one scoring pass reads.
type evaluation struct {
	cfg config.MatchConfig

	game model.CanonicalGame
	cand model.Candidate

	normGame    string
	normAlts    []string
	normCand    string
	gameWords   []string // every word of the normalized game title
	candWords   []string // every word of the normalized candidate title
	keywordSets [][]string // main keywords per title variant: len >= 3, stop words removed
	candWordSet map[string]struct{}

	titleSim float64
	descSim  float64
	tags     []model.ExclusionTag
	tier     model.TrustTier
}

// scoreRule is one ordered step of the aggregator. delta is added to the
// running score and reason appended when the rule fires.
type scoreRule func(e *evaluation, current float64) (delta float64, reason model.Reason, fired bool)

// rules run in a fixed order so repeated calls return identical scores and
// reason lists. Penalizing rules run after contributing ones because two of
// them key off the running score.
var rules = []scoreRule{
	ruleExactName,
	ruleExactPhrase,
	ruleAltTitle,
	ruleWordRatioVeryHigh,
	ruleWordRatioHigh,
	ruleAllKeywords,
	ruleDescription,
	ruleTrust,
	ruleManyExtraWords,
	ruleSequelMismatch,
	ruleNumberedSequel,
	ruleNonGameMedia,
	ruleAdultContent,
	ruleDemo,
	ruleDLCOnly,
	ruleUpdateOnly,
	ruleCrackFix,
	ruleLanguagePack,
	ruleModContent,
	ruleTinySize,
	rulePreRelease,
}

// Score evaluates one candidate against the canonical game and returns the
// rule-based score, its reason codes, and (when a model is loaded) the
// advisory learned probability.
func (m *Matcher) Score(game model.CanonicalGame, cand model.Candidate) model.MatchResult {
	res := model.MatchResult{Candidate: cand}

	if strings.TrimSpace(cand.Title) == "" || strings.TrimSpace(game.Title) == "" {
		// Partial data is common in a batch and must not halt it.
		res.Reasons = model.Reasons{model.ReasonInsufficientData}
		res.Finalize()
		return res
	}

	e := m.evaluate(game, cand)
	res.Exclusions = e.tags

	var score float64
	for _, rule := range rules {
		delta, reason, fired := rule(e, score)
		if !fired {
			continue
		}
		score += delta
		res.Reasons = append(res.Reasons, reason)
	}

	score = math.Round(clamp(score, 0, 100)*100) / 100
	res.Score = score
	res.Matched = score >= m.cfg.Threshold

	if m.reranker != nil {
		p := m.reranker.Score(rerank.FromResult(score, res.Reasons, e.tier, cand, game))
		res.Probability = &p
		floor := m.cfg.RerankOverrideFloor
		if (p >= floor && !res.Matched) || (p <= 1-floor && res.Matched) {
			// Advisory only: the disagreement is flagged for the offline
			// pipeline, the rule-based verdict stands.
			res.Reasons = append(res.Reasons, model.ReasonMLProbability)
		}
	}

	res.Finalize()
	return res
}

// ScoreAll fans one independent scoring pipeline out per candidate and
// returns results in input order.
func (m *Matcher) ScoreAll(ctx context.Context, game model.CanonicalGame, cands []model.Candidate) ([]model.MatchResult, error) {
	results := make([]model.MatchResult, len(cands))

	g, gCtx := errgroup.WithContext(ctx)
	limit := m.cfg.Concurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)
	for i, cand := range cands {
		i, cand := i, cand
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = m.Score(game, cand)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	matched := 0
	for i := range results {
		if results[i].Matched {
			matched++
		}
	}
	zap.L().Debug("matcher: batch scored",
		zap.String("game", game.Title),
		zap.Int("candidates", len(cands)),
		zap.Int("matched", matched),
	)
	return results, nil
}

func (m *Matcher) evaluate(game model.CanonicalGame, cand model.Candidate) *evaluation {
	e := &evaluation{
		cfg:      m.cfg,
		game:     game,
		cand:     cand,
		normGame: title.Normalize(game.Title),
		normCand: title.Normalize(cand.Title),
		tier:     m.trust.TierFor(cand),
	}
	for _, alt := range game.AltTitles {
		if n := title.Normalize(alt); n != "" {
			e.normAlts = append(e.normAlts, n)
		}
	}
	e.gameWords = title.Words(e.normGame)
	e.candWords = title.Words(e.normCand)
	e.candWordSet = toSet(e.candWords)
	e.keywordSets = [][]string{m.keywords(e.gameWords)}
	for _, alt := range e.normAlts {
		e.keywordSets = append(e.keywordSets, m.keywords(title.Words(alt)))
	}
	e.tags = m.excl.Classify(cand.Title, e.normCand, e.normGame)

	// An alternative title is as canonical as the main one, so the best
	// variant drives the similarity signal.
	e.titleSim = m.lex.Similarity(e.normGame, e.normCand)
	for _, alt := range e.normAlts {
		if s := m.lex.Similarity(alt, e.normCand); s > e.titleSim {
			e.titleSim = s
		}
	}
	if game.Description != "" && cand.Description != "" {
		e.descSim = m.lex.Similarity(
			title.Normalize(game.Description),
			title.Normalize(cand.Description),
		)
	}
	return e
}

// keywords picks the main title words: at least three characters, not a stop
// word. Looser than the lexical tokenizer so short names like "war" count.
func (m *Matcher) keywords(words []string) []string {
	var out []string
	for _, w := range words {
		if len(w) < 3 {
			continue
		}
		if _, ok := m.lex.stop[w]; ok {
			continue
		}
		out = append(out, w)
	}
	return out
}

func ruleExactName(e *evaluation, _ float64) (float64, model.Reason, bool) {
	if e.normCand == e.normGame {
		return e.cfg.ExactNameWeight, model.ReasonExactNameMatch, true
	}
	return 0, 0, false
}

func ruleExactPhrase(e *evaluation, _ float64) (float64, model.Reason, bool) {
	if e.normCand != e.normGame && containsPhrase(e.candWords, e.gameWords) {
		return e.cfg.ExactPhraseWeight, model.ReasonExactPhraseInTitle, true
	}
	return 0, 0, false
}

func ruleAltTitle(e *evaluation, _ float64) (float64, model.Reason, bool) {
	for _, alt := range e.normAlts {
		if alt == e.normGame {
			continue
		}
		if e.normCand == alt || containsPhrase(e.candWords, title.Words(alt)) {
			return e.cfg.AltTitleWeight, model.ReasonAltTitleMatch, true
		}
	}
	return 0, 0, false
}

func ruleWordRatioVeryHigh(e *evaluation, _ float64) (float64, model.Reason, bool) {
	if e.titleSim >= e.cfg.VeryHighSimilarity {
		return e.cfg.VeryHighWordWeight, model.ReasonVeryHighWordMatch, true
	}
	return 0, 0, false
}

func ruleWordRatioHigh(e *evaluation, _ float64) (float64, model.Reason, bool) {
	if e.titleSim < e.cfg.VeryHighSimilarity && e.titleSim >= e.cfg.HighSimilarity {
		return e.cfg.HighWordWeight, model.ReasonHighWordMatch, true
	}
	return 0, 0, false
}

func ruleAllKeywords(e *evaluation, _ float64) (float64, model.Reason, bool) {
	for _, kws := range e.keywordSets {
		if len(kws) == 0 {
			continue
		}
		all := true
		for _, kw := range kws {
			if _, ok := e.candWordSet[kw]; !ok {
				all = false
				break
			}
		}
		if all {
			return e.cfg.AllKeywordsWeight, model.ReasonAllKeywordsPresent, true
		}
	}
	return 0, 0, false
}

// Repack and indexer titles are short but often embed the full marketing
// description, which makes description overlap a strong signal.
func ruleDescription(e *evaluation, _ float64) (float64, model.Reason, bool) {
	if e.descSim >= e.cfg.DescThreshold && e.descSim > 0 {
		return e.cfg.DescriptionWeight, model.ReasonStrongDescriptionMatch, true
	}
	return 0, 0, false
}

func ruleTrust(e *evaluation, _ float64) (float64, model.Reason, bool) {
	switch {
	case e.tier.Reputable():
		return e.cfg.TrustedBonus, model.ReasonTrustedSource, true
	case e.tier == model.TrustUnsafe || e.tier == model.TrustNSFW:
		return -e.cfg.UnsafePenalty, model.ReasonUnsafeSource, true
	}
	return 0, 0, false
}

func ruleManyExtraWords(e *evaluation, _ float64) (float64, model.Reason, bool) {
	extra := len(e.candWords) - len(e.gameWords)
	if extra >= e.cfg.ExtraWordsOver {
		return -e.cfg.ManyExtraWordsPenalty, model.ReasonManyExtraWords, true
	}
	return 0, 0, false
}

func ruleSequelMismatch(e *evaluation, _ float64) (float64, model.Reason, bool) {
	if hasTag(e.tags, model.ExclDifferentSequelNumber) {
		return -e.cfg.SequelMismatchPenalty, model.ReasonDifferentSequel, true
	}
	return 0, 0, false
}

func ruleNumberedSequel(e *evaluation, _ float64) (float64, model.Reason, bool) {
	if hasTag(e.tags, model.ExclTitleIsNumberedSequel) {
		return -e.cfg.NumberedSequelPenalty, model.ReasonNumberedSequelTitle, true
	}
	return 0, 0, false
}

func ruleNonGameMedia(e *evaluation, _ float64) (float64, model.Reason, bool) {
	if hasTag(e.tags, model.ExclNonGameMedia) {
		return -e.cfg.NonGameMediaPenalty, model.ReasonNonGameMedia, true
	}
	return 0, 0, false
}

func ruleAdultContent(e *evaluation, _ float64) (float64, model.Reason, bool) {
	if hasTag(e.tags, model.ExclAdultContent) {
		return -e.cfg.AdultContentPenalty, model.ReasonAdultContent, true
	}
	return 0, 0, false
}

func ruleDemo(e *evaluation, _ float64) (float64, model.Reason, bool) {
	if hasTag(e.tags, model.ExclDemoAlphaBeta) {
		return -e.cfg.DemoPenalty, model.ReasonDemoAlphaBeta, true
	}
	return 0, 0, false
}

func ruleDLCOnly(e *evaluation, _ float64) (float64, model.Reason, bool) {
	if hasTag(e.tags, model.ExclDLCExpansionOnly) {
		return -e.cfg.SecondaryContentPenalty, model.ReasonDLCOnly, true
	}
	return 0, 0, false
}

func ruleUpdateOnly(e *evaluation, _ float64) (float64, model.Reason, bool) {
	if hasTag(e.tags, model.ExclUpdatePatchOnly) {
		return -e.cfg.SecondaryContentPenalty, model.ReasonUpdateOnly, true
	}
	return 0, 0, false
}

func ruleCrackFix(e *evaluation, _ float64) (float64, model.Reason, bool) {
	if hasTag(e.tags, model.ExclCrackFixOnly) {
		return -e.cfg.SecondaryContentPenalty, model.ReasonCrackFixOnly, true
	}
	return 0, 0, false
}

func ruleLanguagePack(e *evaluation, _ float64) (float64, model.Reason, bool) {
	if hasTag(e.tags, model.ExclLanguagePack) {
		return -e.cfg.SecondaryContentPenalty, model.ReasonLanguagePack, true
	}
	return 0, 0, false
}

func ruleModContent(e *evaluation, _ float64) (float64, model.Reason, bool) {
	if hasTag(e.tags, model.ExclModFanContent) {
		return -e.cfg.ModPenalty, model.ReasonModFanContent, true
	}
	return 0, 0, false
}

// An otherwise-matching title far below plausible install size is likely a
// fake or placeholder release.
func ruleTinySize(e *evaluation, current float64) (float64, model.Reason, bool) {
	if current <= 0 || e.cand.SizeBytes <= 0 {
		return 0, 0, false
	}
	if e.cand.SizeBytes < e.cfg.MinSizeMB*1024*1024 {
		return -e.cfg.TinySizePenalty, model.ReasonTinySize, true
	}
	return 0, 0, false
}

// A candidate published well before a future release date cannot be real.
func rulePreRelease(e *evaluation, current float64) (float64, model.Reason, bool) {
	if current <= 0 || e.game.ReleaseDate == nil || e.cand.PublishDate.IsZero() {
		return 0, 0, false
	}
	grace := time.Duration(e.cfg.PreReleaseDays) * 24 * time.Hour
	if e.cand.PublishDate.Before(e.game.ReleaseDate.Add(-grace)) {
		return -e.cfg.PreReleasePenalty, model.ReasonPreReleasePublish, true
	}
	return 0, 0, false
}

// containsPhrase reports whether needle occurs as a contiguous token run in
// haystack. Token-level comparison keeps matches on word boundaries: "app
// switcher" never contains "witcher".
func containsPhrase(haystack, needle []string) bool {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return false
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func hasTag(tags []model.ExclusionTag, t model.ExclusionTag) bool {
	for _, tag := range tags {
		if tag == t {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
