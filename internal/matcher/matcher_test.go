package matcher

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questline/gamematch/internal/config"
	"github.com/questline/gamematch/internal/model"
	"github.com/questline/gamematch/internal/title"
)

func testMatcher(t *testing.T) *Matcher {
	t.Helper()
	return New(testMatchConfig(t), nil)
}

// storeDescription is full-length store copy; repack listings embed only the
// opening paragraphs of it.
var storeDescription = []string{
	"Kratos and Atreus venture deep into the Nine Realms in search of answers as Asgardian forces prepare for a prophesied battle predicted to end the world, a battle that will see the destruction of gods and mortals alike.",
	"Fimbulwinter is well underway, and the long cruel frost has driven the survivors of Midgard into hiding while wolves circle the frozen lakes and old shrines crumble beneath the snow.",
	"Together the father and son must journey to each of the realms, from the burning plains of Muspelheim to the sunken mines of Svartalfheim, facing fearsome enemies in the shapes of Norse gods and monsters.",
	"As the threat of Ragnarok grows ever closer, Kratos and Atreus find themselves choosing between the safety of their family and the safety of the realms, a choice neither of them is prepared to make.",
	"Atreus hungers for knowledge to help him grasp the prophecy of Loki and discover what role he is destined to play in the coming war, even when that hunger leads him far from his fathers counsel.",
	"Kratos must decide whether he will be chained by the fear of repeating his mistakes or break free of his past to be the father his son needs, and the weapon the realms require.",
	"Wield the Leviathan Axe and the Blades of Chaos against creatures drawn from the breadth of Norse myth, relying on new shield abilities and runic attacks that reward aggression and timing in equal measure.",
	"Companions lend their skills in combat and exploration, solving elaborate puzzles, uncovering hidden chambers, and reading the lore of a dying mythology carved into stone across every realm.",
	"Recruit allies among dwarves, giants, and spirits who remember the old wars, each carrying grudges and debts that shape the alliances available when the final horn sounds.",
	"Explore dangerous and stunning landscapes, each with environmental storytelling woven through abandoned camps, ruined temples, and the wreckage left behind by gods who fought here long before.",
	"Raiding draugr, towering trolls, and winged valkyries stalk these places, and their duels demand mastery of every weapon, every stance, and every scrap of armor scavenged along the way.",
	"Craft and upgrade gear at the brothers workshop, where dwarven smiths trade gossip and grudging respect while reforging relics of wars the gods would rather forget.",
	"Every choice echoes across the realms, and the bonds forged or broken on the road decide who stands beside the father and son when the sky finally burns.",
}

func TestScore_ExactRepackWithDescription(t *testing.T) {
	m := testMatcher(t)

	// The listing embeds roughly the first two thirds of the store copy, so
	// the overlap is strong but genuinely partial.
	full := strings.Join(storeDescription, " ")
	excerpt := strings.Join(storeDescription[:8], " ")

	game := model.CanonicalGame{
		ID:            "gow-ragnarok",
		Title:         "God of War Ragnarök",
		ReleaseStatus: model.ReleaseStatusReleased,
		Description:   full,
	}
	cand := model.Candidate{
		Title:       "God.of.War.Ragnarok-FitGirl.Repack",
		Source:      "rss",
		Description: excerpt,
		SizeBytes:   60 * 1024 * 1024 * 1024,
	}

	sim := m.lex.Similarity(title.Normalize(full), title.Normalize(excerpt))
	assert.GreaterOrEqual(t, sim, m.cfg.DescThreshold)
	assert.Less(t, sim, 0.95)

	res := m.Score(game, cand)
	assert.True(t, res.Matched)
	assert.Equal(t, 100.0, res.Score)
	assert.True(t, res.Reasons.Contains(model.ReasonExactNameMatch))
	assert.True(t, res.Reasons.Contains(model.ReasonStrongDescriptionMatch))
	assert.Empty(t, res.Exclusions)
}

func TestScore_CountedDLCAnnotationStillMatches(t *testing.T) {
	m := testMatcher(t)

	game := model.CanonicalGame{Title: "Elden Ring"}
	res := m.Score(game, model.Candidate{
		Title:     "Elden Ring + 5 DLCs",
		SizeBytes: 60 * 1024 * 1024 * 1024,
	})

	// A counted annotation describes a complete release, never a DLC-only one.
	assert.True(t, res.Matched)
	assert.Equal(t, 100.0, res.Score)
	assert.False(t, res.Reasons.Contains(model.ReasonDLCOnly))
	assert.Empty(t, res.Exclusions)
}

func TestScore_SequelMismatchRejects(t *testing.T) {
	m := testMatcher(t)

	game := model.CanonicalGame{Title: "Grand Theft Auto IV"}
	res := m.Score(game, model.Candidate{Title: "Grand Theft Auto V"})

	assert.False(t, res.Matched)
	assert.Equal(t, 0.0, res.Score) // clamped, never negative
	assert.True(t, res.Reasons.Contains(model.ReasonDifferentSequel))
	assert.Contains(t, res.Exclusions, model.ExclDifferentSequelNumber)
}

func TestScore_AltTitleMatches(t *testing.T) {
	m := testMatcher(t)

	game := model.CanonicalGame{
		Title:     "Baldur's Gate III",
		AltTitles: []string{"Baldur's Gate 3"},
	}
	res := m.Score(game, model.Candidate{Title: "Baldurs Gate 3 GOG"})

	assert.True(t, res.Matched)
	assert.Equal(t, 80.0, res.Score)
	assert.True(t, res.Reasons.Contains(model.ReasonAltTitleMatch))
	assert.True(t, res.Reasons.Contains(model.ReasonVeryHighWordMatch))
	assert.True(t, res.Reasons.Contains(model.ReasonAllKeywordsPresent))
}

func TestScore_UnrelatedToolDoesNotMatch(t *testing.T) {
	m := testMatcher(t)

	game := model.CanonicalGame{Title: "The Witcher 3: Wild Hunt"}
	res := m.Score(game, model.Candidate{Title: "rcmd App Switcher 2.3.6"})

	assert.False(t, res.Matched)
	assert.Equal(t, 0.0, res.Score)
	// "Switcher" must not register as "witcher" on any signal.
	assert.False(t, res.Reasons.Contains(model.ReasonExactPhraseInTitle))
	assert.NotContains(t, res.Exclusions, model.ExclDifferentSequelNumber)
}

func TestScore_InsufficientData(t *testing.T) {
	m := testMatcher(t)

	res := m.Score(model.CanonicalGame{Title: "Elden Ring"}, model.Candidate{Title: "   "})
	assert.False(t, res.Matched)
	assert.Zero(t, res.Score)
	assert.Equal(t, model.Reasons{model.ReasonInsufficientData}, res.Reasons)

	res = m.Score(model.CanonicalGame{}, model.Candidate{Title: "Elden Ring"})
	assert.Equal(t, model.Reasons{model.ReasonInsufficientData}, res.Reasons)
}

func TestScore_Deterministic(t *testing.T) {
	m := testMatcher(t)

	game := model.CanonicalGame{Title: "Hades II", AltTitles: []string{"Hades 2"}}
	cand := model.Candidate{Title: "Hades.2.Early.Access-TENOKE", SizeBytes: 8 * 1024 * 1024 * 1024}

	first := m.Score(game, cand)
	for i := 0; i < 5; i++ {
		again := m.Score(game, cand)
		assert.Equal(t, first.Score, again.Score)
		assert.Equal(t, first.Reasons, again.Reasons)
		assert.Equal(t, first.Exclusions, again.Exclusions)
	}
}

func TestScore_TrustSignal(t *testing.T) {
	m := testMatcher(t)
	game := model.CanonicalGame{Title: "Elden Ring"}

	trusted := m.Score(game, model.Candidate{Title: "Elden Ring", Trust: model.TrustTrusted})
	assert.True(t, trusted.Reasons.Contains(model.ReasonTrustedSource))

	unsafe := m.Score(game, model.Candidate{Title: "Elden Ring", Trust: model.TrustNSFW})
	assert.True(t, unsafe.Reasons.Contains(model.ReasonUnsafeSource))
	assert.Greater(t, trusted.Score, unsafe.Score)
}

func TestScore_TinySizeOnlyPenalizesPositiveScores(t *testing.T) {
	m := testMatcher(t)
	game := model.CanonicalGame{Title: "Elden Ring"}

	// An otherwise-perfect match at 10 MB draws the penalty.
	res := m.Score(game, model.Candidate{Title: "Elden Ring", SizeBytes: 10 * 1024 * 1024})
	assert.True(t, res.Reasons.Contains(model.ReasonTinySize))
	assert.Equal(t, 75.0, res.Score) // 50 + 35 + 15 - 25

	// A zero-score candidate is not additionally punished for its size.
	res = m.Score(game, model.Candidate{Title: "Doom Eternal", SizeBytes: 10 * 1024 * 1024})
	assert.False(t, res.Reasons.Contains(model.ReasonTinySize))
}

func TestScore_PreReleasePublish(t *testing.T) {
	m := testMatcher(t)

	release := time.Now().Add(365 * 24 * time.Hour)
	game := model.CanonicalGame{
		Title:         "Hollow Knight: Silksong",
		ReleaseDate:   &release,
		ReleaseStatus: model.ReleaseStatusUnreleased,
	}
	res := m.Score(game, model.Candidate{
		Title:       "Hollow Knight Silksong",
		PublishDate: time.Now(),
		SizeBytes:   4 * 1024 * 1024 * 1024,
	})

	assert.True(t, res.Reasons.Contains(model.ReasonPreReleasePublish))
}

func TestScore_ManyExtraWords(t *testing.T) {
	m := testMatcher(t)

	game := model.CanonicalGame{Title: "Stray"}
	res := m.Score(game, model.Candidate{
		Title: "Stray plus 500 best indie games mega collection torrent free download",
	})

	assert.True(t, res.Reasons.Contains(model.ReasonManyExtraWords))
	assert.False(t, res.Matched)
}

func TestScoreAll_PreservesInputOrder(t *testing.T) {
	m := testMatcher(t)
	game := model.CanonicalGame{Title: "Celeste"}

	cands := make([]model.Candidate, 40)
	for i := range cands {
		cands[i] = model.Candidate{Title: fmt.Sprintf("Celeste build %d", i)}
	}

	results, err := m.ScoreAll(context.Background(), game, cands)
	require.NoError(t, err)
	require.Len(t, results, len(cands))
	for i, res := range results {
		assert.Equal(t, cands[i].Title, res.Candidate.Title)
	}
}

func TestScoreAll_ZeroConcurrencyCompletes(t *testing.T) {
	// A zero-value config must degrade to serial scoring, not deadlock.
	m := New(config.MatchConfig{}, nil)

	results, err := m.ScoreAll(context.Background(), model.CanonicalGame{Title: "Celeste"}, []model.Candidate{
		{Title: "Celeste"},
		{Title: "Celeste Classic"},
	})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestScoreAll_CancelledContext(t *testing.T) {
	m := testMatcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.ScoreAll(ctx, model.CanonicalGame{Title: "Celeste"}, make([]model.Candidate, 100))
	require.Error(t, err)
}
