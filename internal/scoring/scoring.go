// Package scoring computes hero power scores and generation relevance.
// Power is a deterministic ranking number only; it is never shown to the
// player as a "real" combat value. The weights are fixed and must not be
// tuned without regenerating every downstream expectation.
package scoring

import (
	"sort"

	"frostadvisor/internal/types"
)

// Power returns the ranking score for an owned hero. entry may be nil or
// the Unknown sentinel, in which case the catalog tier term is skipped.
func Power(owned types.OwnedHero, entry *types.HeroEntry) int {
	score := owned.Level * 10
	score += owned.Stars * 50
	score += owned.Ascension * 30

	for _, g := range owned.Gear {
		score += g.Quality*15 + g.Level/10
	}

	score += owned.ExpeditionSkillLevels[0] * 20

	if entry != nil && !entry.Unknown {
		score += types.TierValue(entry.TierExpedition) * 25
	}

	return score
}

// TierScore normalizes a tier ordinal into [1/6, 1].
func TierScore(t types.Tier) float64 {
	return float64(types.TierValue(t)) / 6.0
}

// GenerationRelevance grades how relevant a hero generation still is at
// the server's current generation. 1.0 means fully current.
func GenerationRelevance(entry types.HeroEntry, currentGen int) float64 {
	d := currentGen - entry.Generation
	if d <= 0 {
		return 1.0
	}

	var rel float64
	switch d {
	case 1:
		rel = 0.9
	case 2:
		rel = 0.7
	case 3:
		rel = 0.5
	default:
		rel = 0.3
	}

	// Top-tier heroes age better than the curve.
	if entry.TierOverall == types.TierSPlus && d <= 3 {
		rel += 0.15
		if rel > 1.0 {
			rel = 1.0
		}
	}

	return rel
}

// LookupFunc resolves a hero name to its catalog entry.
type LookupFunc func(name string) (types.HeroEntry, bool)

// RankByValue orders owned heroes by long-term investment value:
// tier x generation relevance x a level factor that saturates at 50.
// Ties keep roster order, so the ranking is deterministic.
func RankByValue(owned []types.OwnedHero, lookup LookupFunc, currentGen int) []string {
	type ranked struct {
		name  string
		value float64
	}

	rankedHeroes := make([]ranked, 0, len(owned))
	for _, h := range owned {
		entry, ok := lookup(h.Name)
		if !ok {
			// Unknown heroes rank at the bottom but are not dropped.
			rankedHeroes = append(rankedHeroes, ranked{name: h.Name, value: 0})
			continue
		}

		levelFactor := float64(h.Level) / 50.0
		if levelFactor > 1 {
			levelFactor = 1
		}
		value := TierScore(entry.TierOverall) *
			GenerationRelevance(entry, currentGen) *
			(0.5 + 0.5*levelFactor)
		rankedHeroes = append(rankedHeroes, ranked{name: h.Name, value: value})
	}

	sort.SliceStable(rankedHeroes, func(i, j int) bool {
		return rankedHeroes[i].value > rankedHeroes[j].value
	})

	names := make([]string, len(rankedHeroes))
	for i, r := range rankedHeroes {
		names[i] = r.name
	}
	return names
}

// generationBands maps server age to generation for days 0..519.
// Beyond the last band, generations extend in 80-day steps, capped at 14
// (the highest generation the catalog models).
var generationBands = []struct {
	maxDayExclusive int
	generation      int
}{
	{40, 1},
	{120, 2},
	{200, 3},
	{280, 4},
	{360, 5},
	{440, 6},
	{520, 7},
}

// CurrentGeneration maps server age in days to the hero generation the
// server has reached.
func CurrentGeneration(serverAgeDays int) int {
	if serverAgeDays < 0 {
		return 1
	}

	for _, band := range generationBands {
		if serverAgeDays < band.maxDayExclusive {
			return band.generation
		}
	}

	gen := 8 + (serverAgeDays-520)/80
	if gen > 14 {
		gen = 14
	}
	return gen
}
