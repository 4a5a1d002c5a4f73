package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questline/gamematch/internal/config"
)

func testMatchConfig(t *testing.T) config.MatchConfig {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg.Match
}

func TestLexical_Tokens(t *testing.T) {
	lex := NewLexical(testMatchConfig(t))

	// Stop words and short tokens are dropped.
	tokens := lex.Tokens("the witcher 3 wild hunt game of the year edition")
	assert.Equal(t, []string{"witcher", "wild", "hunt", "year"}, tokens)
}

func TestLexical_Similarity_Identical(t *testing.T) {
	lex := NewLexical(testMatchConfig(t))

	sim := lex.Similarity("grand theft auto vice city", "grand theft auto vice city")
	assert.InDelta(t, 1.0, sim, 1e-9)
}

func TestLexical_Similarity_Symmetric(t *testing.T) {
	lex := NewLexical(testMatchConfig(t))

	a := "hollow knight silksong"
	b := "hollow knight voidheart collection"
	assert.InDelta(t, lex.Similarity(a, b), lex.Similarity(b, a), 1e-9)
}

func TestLexical_Similarity_Disjoint(t *testing.T) {
	lex := NewLexical(testMatchConfig(t))

	assert.Zero(t, lex.Similarity("stardew valley", "doom eternal"))
}

func TestLexical_Similarity_EmptyInput(t *testing.T) {
	lex := NewLexical(testMatchConfig(t))

	assert.Zero(t, lex.Similarity("", "elden ring"))
	assert.Zero(t, lex.Similarity("the of", "elden ring")) // only stop/short words
}

func TestLexical_Similarity_ShortTitlesCanScoreHigh(t *testing.T) {
	lex := NewLexical(testMatchConfig(t))

	// Two-token titles form no trigrams; identical ones must still score 1.
	sim := lex.Similarity("baldurs gate", "baldurs gate")
	assert.InDelta(t, 1.0, sim, 1e-9)

	// Single meaningful token after filtering.
	sim = lex.Similarity("god of war ragnarok", "god of war ragnarok")
	assert.InDelta(t, 1.0, sim, 1e-9)
}

func TestLexical_Similarity_SubsetContainment(t *testing.T) {
	lex := NewLexical(testMatchConfig(t))

	// A candidate that fully contains the game tokens scores higher than
	// an overlapping but divergent one.
	contained := lex.Similarity("hollow knight", "hollow knight voidheart edition gog")
	divergent := lex.Similarity("hollow knight", "hollow earth expedition")
	assert.Greater(t, contained, divergent)
}
