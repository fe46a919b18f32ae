// Package catalog loads the static hero catalog and lineup template
// catalog once at startup and exposes indexed lookups. All reads after
// load are pure; the structures are safely shared across workers.
package catalog

import (
	"strings"

	"frostadvisor/internal/logging"
	"frostadvisor/internal/types"
)

// Catalog holds the immutable hero and lineup template tables.
type Catalog struct {
	heroes    map[string]types.HeroEntry // keyed by lowercased name
	heroNames []string                   // original casing, catalog order
	templates map[string]types.LineupTemplate
	modeKeys  []string
}

// Lookup returns the catalog entry for a hero name (case-insensitive).
// Missing names return the Unknown fallback entry with ok=false; callers
// that need real stats must check ok.
func (c *Catalog) Lookup(name string) (types.HeroEntry, bool) {
	entry, ok := c.heroes[strings.ToLower(name)]
	if !ok {
		logging.CatalogDebug("catalog miss: %q", name)
		return UnknownEntry(name), false
	}
	return entry, true
}

// Template returns the lineup template for a mode key.
func (c *Catalog) Template(modeKey string) (types.LineupTemplate, bool) {
	tpl, ok := c.templates[strings.ToLower(modeKey)]
	return tpl, ok
}

// Heroes returns all catalog entries in catalog order.
func (c *Catalog) Heroes() []types.HeroEntry {
	out := make([]types.HeroEntry, 0, len(c.heroNames))
	for _, name := range c.heroNames {
		out = append(out, c.heroes[strings.ToLower(name)])
	}
	return out
}

// HeroesByGeneration returns catalog entries with generation <= maxGen,
// in catalog order.
func (c *Catalog) HeroesByGeneration(maxGen int) []types.HeroEntry {
	var out []types.HeroEntry
	for _, name := range c.heroNames {
		entry := c.heroes[strings.ToLower(name)]
		if entry.Generation <= maxGen {
			out = append(out, entry)
		}
	}
	return out
}

// MarqueeHeroes returns the S-and-above heroes of a generation. The hero
// analyzer uses these as the "worth acquiring" set per generation.
func (c *Catalog) MarqueeHeroes(gen int) []string {
	var out []string
	for _, name := range c.heroNames {
		entry := c.heroes[strings.ToLower(name)]
		if entry.Generation == gen && types.TierValue(entry.TierOverall) >= types.TierValue(types.TierS) {
			out = append(out, entry.Name)
		}
	}
	return out
}

// ModeKeys returns the known lineup mode keys, sorted.
func (c *Catalog) ModeKeys() []string {
	out := make([]string, len(c.modeKeys))
	copy(out, c.modeKeys)
	return out
}

// UnknownEntry builds the sentinel entry for heroes missing from the
// catalog: Unknown class, generation 99, C tiers. Analyzers skip
// scoring-dependent work for these.
func UnknownEntry(name string) types.HeroEntry {
	return types.HeroEntry{
		Name:            name,
		Generation:      types.UnknownGeneration,
		Class:           types.ClassUnknown,
		TierOverall:     types.TierC,
		TierExpedition:  types.TierC,
		TierExploration: types.TierC,
		Unknown:         true,
	}
}
