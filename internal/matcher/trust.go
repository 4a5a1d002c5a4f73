package matcher

import (
	"strings"

	"github.com/questline/gamematch/internal/config"
	"github.com/questline/gamematch/internal/model"
)

// TrustWeighter maps a candidate's source to a trust tier. Trust data is
// resolved by the caller (external registry); this is a pure lookup with a
// config-supplied fallback per source, no network calls.
type TrustWeighter struct {
	sources map[string]model.TrustTier
}

// NewTrustWeighter builds the weighter from the configured source map.
func NewTrustWeighter(cfg config.MatchConfig) *TrustWeighter {
	m := make(map[string]model.TrustTier, len(cfg.SourceTiers))
	for src, tier := range cfg.SourceTiers {
		m[strings.ToLower(src)] = model.TrustTier(tier)
	}
	return &TrustWeighter{sources: m}
}

// TierFor returns the candidate's trust tier: the caller-supplied tier when
// present, otherwise the configured tier for its source, otherwise none.
func (w *TrustWeighter) TierFor(c model.Candidate) model.TrustTier {
	if c.Trust != "" {
		return c.Trust
	}
	if tier, ok := w.sources[strings.ToLower(c.Source)]; ok {
		return tier
	}
	return model.TrustNone
}
