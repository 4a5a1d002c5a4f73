package matcher

import (
	"regexp"
	"strings"

	"github.com/questline/gamematch/internal/config"
	"github.com/questline/gamematch/internal/model"
	"github.com/questline/gamematch/internal/title"
)

// Classifier tags candidates with structural red flags derived from title
// patterns. Tags are informational; the aggregator decides their weight.
// All patterns require word boundaries: "Switcher" must never trip a
// "witcher" check.
type Classifier struct {
	adultRes []*regexp.Regexp
}

var (
	demoRe     = regexp.MustCompile(`\b(demo|alpha|beta|pre-?alpha|playtest)\b`)
	dlcRe      = regexp.MustCompile(`\b(dlcs?|expansion|season pass|content pack)\b`)
	dlcInclRe  = regexp.MustCompile(`(?:\+|incl\.?|includes?|including|with|all)[\s.]*(?:\d+\s*)?(?:all\s+)?(?:dlcs?|expansions?|season pass)`)
	updateRe   = regexp.MustCompile(`\b(update|patch|hotfix)\b`)
	crackRe    = regexp.MustCompile(`\b(crack ?fix|crackfix|crack only|no-?dvd|cracked exe)\b`)
	langRe     = regexp.MustCompile(`\b(language pack|lang ?pack|localization pack)\b`)
	modRe      = regexp.MustCompile(`\b(mods?|modpack|total conversion|fan (?:made|game|remake))\b`)
	tvRe       = regexp.MustCompile(`\bs\d{1,2}[ .]?e\d{1,2}\b|\bseason\s*\d+\b|\bepisode\s*\d+\b|\b(hdtv|web-?rip|web-?dl|bluray|blu-ray|brrip|dvdrip|camrip|x264|x265|hevc|720p|1080p|2160p)\b`)
	comicRe    = regexp.MustCompile(`\b(?:vol|volume|chapter|issue)\.?\s*\d+\b|\bcb[rz]\b|\b(?:marvel|dc)\s+comics\b`)
	bookRe     = regexp.MustCompile(`\b(epub|mobi|audiobook|unabridged|novel)\b`)
	yearTagRe  = regexp.MustCompile(`[\[(](19|20)\d{2}[\])]`)
)

// NewClassifier compiles the configured adult-content keyword list. Keywords
// are matched on word boundaries in the raw, lower-cased title.
func NewClassifier(cfg config.MatchConfig) *Classifier {
	res := make([]*regexp.Regexp, 0, len(cfg.AdultKeywords))
	for _, kw := range cfg.AdultKeywords {
		res = append(res, regexp.MustCompile(`\b`+regexp.QuoteMeta(strings.ToLower(kw))+`\b`))
	}
	return &Classifier{adultRes: res}
}

// Classify returns the exclusion tags for a candidate title against the
// canonical game. rawTitle is the unnormalized candidate title; normTitle and
// normGame are normalizer output.
func (c *Classifier) Classify(rawTitle, normTitle, normGame string) []model.ExclusionTag {
	var tags []model.ExclusionTag
	raw := strings.ToLower(rawTitle)

	gameNums := sequelNumbers(normGame)
	candNums := sequelNumbers(normTitle)
	switch {
	case len(gameNums) > 0 && len(candNums) > 0 && !overlap(gameNums, candNums):
		tags = append(tags, model.ExclDifferentSequelNumber)
	case len(gameNums) == 0 && len(candNums) > 0:
		tags = append(tags, model.ExclTitleIsNumberedSequel)
	}

	if demoRe.MatchString(normTitle) {
		tags = append(tags, model.ExclDemoAlphaBeta)
	}
	// "incl. all DLCs" annotations describe a complete release, not a
	// DLC-only one; only tag standalone DLC listings.
	if dlcRe.MatchString(raw) && !dlcInclRe.MatchString(raw) {
		tags = append(tags, model.ExclDLCExpansionOnly)
	}
	if updateRe.MatchString(normTitle) {
		tags = append(tags, model.ExclUpdatePatchOnly)
	}
	if crackRe.MatchString(raw) {
		tags = append(tags, model.ExclCrackFixOnly)
	}
	if langRe.MatchString(raw) {
		tags = append(tags, model.ExclLanguagePack)
	}
	if modRe.MatchString(normTitle) {
		tags = append(tags, model.ExclModFanContent)
	}
	if tvRe.MatchString(raw) || comicRe.MatchString(raw) || bookRe.MatchString(raw) || yearTagRe.MatchString(rawTitle) {
		tags = append(tags, model.ExclNonGameMedia)
	}
	for _, re := range c.adultRes {
		if re.MatchString(raw) {
			tags = append(tags, model.ExclAdultContent)
			break
		}
	}

	return tags
}

// maxSequelNumber bounds which numerals count as sequel markers; larger
// values are years or title vocabulary (2077, 1942).
const maxSequelNumber = 30

var arabicRe = regexp.MustCompile(`^\d{1,2}$`)

// sequelNumbers extracts sequel-marker numerals from a normalized title,
// Roman and Arabic aware ("III" and "3" both yield 3).
func sequelNumbers(norm string) []int {
	var nums []int
	for _, tok := range title.Words(norm) {
		if arabicRe.MatchString(tok) {
			if n := atoiSafe(tok); n >= 1 && n <= maxSequelNumber {
				nums = append(nums, n)
			}
			continue
		}
		if n, ok := romanValue(tok); ok && n <= maxSequelNumber {
			nums = append(nums, n)
		}
	}
	return nums
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}

var romanDigits = map[byte]int{'i': 1, 'v': 5, 'x': 10}

// romanValue parses a lower-case Roman numeral token built from i, v, x.
// Single "i" and "v" are accepted: release titles use them as sequel markers
// far more often than as words.
func romanValue(tok string) (int, bool) {
	if tok == "" || len(tok) > 7 {
		return 0, false
	}
	total, prev := 0, 0
	for i := len(tok) - 1; i >= 0; i-- {
		v, ok := romanDigits[tok[i]]
		if !ok {
			return 0, false
		}
		if v < prev {
			total -= v
		} else {
			total += v
			prev = v
		}
	}
	if total < 1 {
		return 0, false
	}
	return total, true
}

func overlap(a, b []int) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
