// Package title canonicalizes free-text release titles for comparison.
package title

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// apostrophes is the equivalence class of apostrophe code points removed
// during normalization: straight, curly left/right, backtick and modifier
// letter apostrophe. All variants of the same title must normalize
// identically.
const apostrophes = "'‘’`ʼ"

var (
	// scene release-group suffix, attached with a hyphen or dot:
	// "...Ragnarok-FitGirl.Repack", "...-CODEX". The list holds only
	// distinctive group names so legitimate subtitles survive.
	groupTailRe = regexp.MustCompile(`[-.](fitgirl|dodi|codex|skidrow|empress|elamigos|razor1911|cpy|hoodlum|tenoke|chronos|darksiders|goldberg)([-. ]?(repack|rip))?$`)

	// separator dots in scene names: god.of.war -> god of war.
	dotSepRe = regexp.MustCompile(`([\p{L}\p{N}])\.([\p{L}\p{N}])`)

	// hyphen between letters joins the compound: spider-man -> spiderman.
	hyphenJoinRe = regexp.MustCompile(`(\p{L})-(\p{L})`)

	// trailing version/build markers, optionally preceded by a dash variant:
	// "– v1.2.3 + 4 DLCs", "- Build 1234", "v2.0 hotfix".
	versionTailRe = regexp.MustCompile(`\s*(?:[–—-]\s*)?\bv\d+(?:\.\d+)+\b.*$`)
	buildTailRe   = regexp.MustCompile(`\s*(?:[–—-]\s*)?\bbuild\s*\d+\b.*$`)

	// trailing "+ DLC/extras" annotations.
	dlcTailRe = regexp.MustCompile(`\s*\+\s*(?:\d+\s*)?(?:all\s+)?(?:dlcs?|expansions?|extras?|bonus(?:\s+content)?|soundtrack|ost)\b.*$`)

	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes a raw title. The transform is idempotent: applying
// it to an already-normalized string returns the string unchanged.
func Normalize(raw string) string {
	s := norm.NFKC.String(raw)
	// A cases.Caser is stateful; build one per call so Normalize stays safe
	// for concurrent use.
	s = cases.Fold().String(s)
	s = stripMarks(s)

	// Remove every apostrophe variant rather than unifying them, so
	// "Baldur's Gate" and "Baldurs Gate" collapse to the same form.
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(apostrophes, r) {
			return -1
		}
		return r
	}, s)

	s = groupTailRe.ReplaceAllString(s, "")

	// Version tails strip before separator dots turn into spaces, otherwise
	// "v1.2.3" decomposes and stops matching.
	s = versionTailRe.ReplaceAllString(s, "")
	s = buildTailRe.ReplaceAllString(s, "")
	s = dlcTailRe.ReplaceAllString(s, "")

	// Repeated replace because adjacent separators overlap
	// (a.b.c and a-b-c need two passes each).
	s = replaceUntilStable(dotSepRe, s, "$1 $2")
	s = replaceUntilStable(hyphenJoinRe, s, "$1$2")

	// Leftover punctuation separates: "witcher 3: wild hunt" and
	// "witcher 3 wild hunt" must compare equal.
	s = nonAlnumRe.ReplaceAllString(s, " ")

	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func replaceUntilStable(re *regexp.Regexp, s, repl string) string {
	for {
		next := re.ReplaceAllString(s, repl)
		if next == s {
			return s
		}
		s = next
	}
}

// stripMarks removes combining marks so Ragnarök and Ragnarok compare equal.
func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

var nonAlnumRe = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Words splits a normalized text block into lower-case alphanumeric tokens.
// No length or stop-word filtering is applied here; that policy belongs to
// the lexical scorer.
func Words(s string) []string {
	s = nonAlnumRe.ReplaceAllString(s, " ")
	return strings.Fields(s)
}
