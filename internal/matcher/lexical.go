package matcher

import (
	"strings"

	"github.com/questline/gamematch/internal/config"
	"github.com/questline/gamematch/internal/title"
)

// Lexical computes word-, bigram- and trigram-level overlap between two
// normalized text blocks. The trigram-heavy weighting favors longer shared
// phrases over incidental shared words.
type Lexical struct {
	stop   map[string]struct{}
	minLen int
}

// NewLexical builds a lexical scorer from the match configuration.
func NewLexical(cfg config.MatchConfig) *Lexical {
	stop := make(map[string]struct{}, len(cfg.StopWords))
	for _, w := range cfg.StopWords {
		stop[strings.ToLower(w)] = struct{}{}
	}
	minLen := cfg.MinTokenLen
	if minLen <= 0 {
		minLen = 3
	}
	return &Lexical{stop: stop, minLen: minLen}
}

// Tokens returns the meaningful words of a normalized text block: alphanumeric
// tokens longer than the minimum length with stop words removed.
func (l *Lexical) Tokens(s string) []string {
	var out []string
	for _, w := range title.Words(s) {
		if len(w) <= l.minLen {
			continue
		}
		if _, ok := l.stop[w]; ok {
			continue
		}
		out = append(out, w)
	}
	return out
}

// Similarity returns the [0,1] composite similarity of two normalized text
// blocks: 0.5·trigram + 0.3·bigram + 0.2·word. Symmetric; zero when either
// input has no meaningful words.
func (l *Lexical) Similarity(a, b string) float64 {
	ta, tb := l.Tokens(a), l.Tokens(b)
	return l.similarityTokens(ta, tb)
}

func (l *Lexical) similarityTokens(ta, tb []string) float64 {
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	sa, sb := toSet(ta), toSet(tb)
	inter := intersectionSize(sa, sb)

	union := len(sa) + len(sb) - inter
	jaccard := 0.0
	if union > 0 {
		jaccard = float64(inter) / float64(union)
	}

	// Containment is lenient for subset titles and description excerpts.
	smaller := len(sa)
	if len(sb) < smaller {
		smaller = len(sb)
	}
	containment := float64(inter) / float64(smaller)

	word := jaccard
	if containment > word {
		word = containment
	}

	// Short titles produce no bigrams or trigrams at all; those orders are
	// dropped and their weight shifts to the orders that exist, so a
	// two-word title can still score as a very high match.
	score := 0.2 * word
	weight := 0.2
	if bigram, ok := ngramOverlap(ta, tb, 2); ok {
		score += 0.3 * bigram
		weight += 0.3
	}
	if trigram, ok := ngramOverlap(ta, tb, 3); ok {
		score += 0.5 * trigram
		weight += 0.5
	}
	return score / weight
}

// ngramOverlap computes word n-gram intersection over the larger n-gram set.
// ok is false when neither side is long enough to form an n-gram.
func ngramOverlap(ta, tb []string, n int) (float64, bool) {
	ga, gb := toSet(ngrams(ta, n)), toSet(ngrams(tb, n))
	larger := len(ga)
	if len(gb) > larger {
		larger = len(gb)
	}
	if larger == 0 {
		return 0, false
	}
	return float64(intersectionSize(ga, gb)) / float64(larger), true
}

func ngrams(tokens []string, n int) []string {
	if len(tokens) < n {
		return nil
	}
	out := make([]string, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		out = append(out, strings.Join(tokens[i:i+n], " "))
	}
	return out
}

func toSet(items []string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, it := range items {
		m[it] = struct{}{}
	}
	return m
}

func intersectionSize(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}
