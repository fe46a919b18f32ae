// Package analyzer implements the rule-based analyzers: hero upgrades,
// chief/hero gear, and progression phase. Every rule carries a stable
// rule ID used for deduplication and conversation logging. The rules
// path never returns an error; bad input degrades to fewer
// recommendations.
package analyzer

import (
	"fmt"
	"strings"

	"frostadvisor/internal/catalog"
	"frostadvisor/internal/logging"
	"frostadvisor/internal/scoring"
	"frostadvisor/internal/types"
)

// Canonical joiner heroes. Their expedition skill applies to every rally
// member, which makes them special-cased throughout; never fold these
// rules into the generic ones.
const (
	HeroJessie = "Jessie"
	HeroSergey = "Sergey"
)

// jessieSkillBonus is the rally damage bonus per expedition skill level.
var jessieSkillBonus = [5]int{5, 10, 15, 20, 25}

// sergeySkillBonus is the garrison defense bonus per expedition skill level.
var sergeySkillBonus = [5]int{4, 8, 12, 16, 20}

// SkillFocusLimit returns how many heroes a spending profile should be
// pushing skills and stars on. Whale has no cap.
func SkillFocusLimit(p types.SpendingProfile) int {
	switch p {
	case types.SpendingF2P:
		return 3
	case types.SpendingMinnow:
		return 4
	case types.SpendingDolphin:
		return 6
	case types.SpendingOrca:
		return 10
	default:
		return -1 // unlimited
	}
}

// HeroAnalyzer emits hero-focused recommendations.
type HeroAnalyzer struct {
	catalog *catalog.Catalog
}

// NewHeroAnalyzer returns a hero analyzer over the given catalog.
func NewHeroAnalyzer(c *catalog.Catalog) *HeroAnalyzer {
	return &HeroAnalyzer{catalog: c}
}

// Analyze runs every hero rule against the roster. Rules trigger
// independently; output keeps rule insertion order within each priority.
func (a *HeroAnalyzer) Analyze(profile types.Profile, owned []types.OwnedHero) []types.Recommendation {
	timer := logging.StartTimer(logging.CategoryAnalyzer, "HeroAnalyzer.Analyze")
	defer timer.Stop()

	if len(owned) == 0 {
		return []types.Recommendation{{
			Priority: 1,
			Action:   "Add your heroes to the roster to unlock personalized advice",
			Category: types.CategoryHero,
			Reason:   "No heroes recorded yet; every other recommendation depends on your roster.",
			Source:   types.SourceRules,
			RuleID:   "no_heroes",
		}}
	}

	currentGen := scoring.CurrentGeneration(profile.ServerAgeDays)
	ownedByName := make(map[string]types.OwnedHero, len(owned))
	for _, h := range owned {
		ownedByName[strings.ToLower(h.Name)] = h
	}
	ranked := scoring.RankByValue(owned, a.catalog.Lookup, currentGen)

	var recs []types.Recommendation
	recs = append(recs, a.levelMainThree(owned, ranked)...)
	recs = append(recs, a.joinerRules(profile, ownedByName)...)
	recs = append(recs, a.acquireGenerations(currentGen, ownedByName)...)
	recs = append(recs, a.skillRules(profile, owned, ranked, currentGen)...)
	recs = append(recs, a.ascendRules(profile, owned, ranked, currentGen)...)
	if profile.IsFarmAccount {
		recs = append(recs, a.farmRules(owned, ownedByName)...)
	}

	logging.AnalyzerDebug("hero analyzer produced %d recommendations", len(recs))
	return recs
}

// levelMainThree pushes the roster toward three level-40 carries.
func (a *HeroAnalyzer) levelMainThree(owned []types.OwnedHero, ranked []string) []types.Recommendation {
	at40 := 0
	for _, h := range owned {
		if h.Level >= 40 {
			at40++
		}
	}
	if at40 >= 3 {
		return nil
	}

	byName := make(map[string]types.OwnedHero, len(owned))
	for _, h := range owned {
		byName[strings.ToLower(h.Name)] = h
	}

	var recs []types.Recommendation
	need := 3 - at40
	for _, name := range ranked {
		if len(recs) >= need {
			break
		}
		h := byName[strings.ToLower(name)]
		if h.Level >= 40 {
			continue
		}
		entry, ok := a.catalog.Lookup(h.Name)
		if !ok || types.TierValue(entry.TierOverall) < types.TierValue(types.TierA) {
			continue
		}
		recs = append(recs, types.Recommendation{
			Priority:  1,
			Action:    fmt.Sprintf("Level %s to 40", h.Name),
			Category:  types.CategoryHero,
			Hero:      h.Name,
			Reason:    "Three level-40 heroes anchor every march; this is the cheapest power you can buy.",
			Resources: "Hero EXP",
			Source:    types.SourceRules,
			RuleID:    "level_main_three",
		})
	}
	return recs
}

// joinerRules covers Jessie (rally attack) and Sergey (garrison defense).
func (a *HeroAnalyzer) joinerRules(profile types.Profile, ownedByName map[string]types.OwnedHero) []types.Recommendation {
	var recs []types.Recommendation

	if profile.Priorities.Rally >= 3 {
		if jessie, ok := ownedByName[strings.ToLower(HeroJessie)]; !ok {
			priority := 2
			if profile.Priorities.Rally >= 4 {
				priority = 1
			}
			recs = append(recs, types.Recommendation{
				Priority: priority,
				Action:   "Unlock Jessie",
				Category: types.CategoryHero,
				Hero:     HeroJessie,
				Reason:   "Jessie's expedition skill boosts damage for every rally you join; she is the single best value hero for rally members.",
				Source:   types.SourceRules,
				RuleID:   "unlock_jessie",
			})
		} else if lvl := jessie.ExpeditionSkillLevels[0]; lvl < 5 {
			recs = append(recs, types.Recommendation{
				Priority: 2,
				Action:   fmt.Sprintf("Raise Jessie's first expedition skill from %d to %d", lvl, lvl+1),
				Category: types.CategoryHero,
				Hero:     HeroJessie,
				Reason: fmt.Sprintf("Her rally damage bonus steps from +%d%% to +%d%% and applies on every join.",
					jessieSkillBonus[lvl-1], jessieSkillBonus[lvl]),
				Resources: "Hero shards",
				Source:    types.SourceRules,
				RuleID:    "level_jessie_skill",
			})
		}
	}

	if profile.Priorities.Castle >= 3 {
		if sergey, ok := ownedByName[strings.ToLower(HeroSergey)]; !ok {
			priority := 2
			if profile.Priorities.Castle >= 4 {
				priority = 1
			}
			recs = append(recs, types.Recommendation{
				Priority: priority,
				Action:   "Unlock Sergey",
				Category: types.CategoryHero,
				Hero:     HeroSergey,
				Reason:   "Sergey's expedition skill reduces damage for every garrison you reinforce.",
				Source:   types.SourceRules,
				RuleID:   "unlock_sergey",
			})
		} else if lvl := sergey.ExpeditionSkillLevels[0]; lvl < 5 {
			recs = append(recs, types.Recommendation{
				Priority: 2,
				Action:   fmt.Sprintf("Raise Sergey's first expedition skill from %d to %d", lvl, lvl+1),
				Category: types.CategoryHero,
				Hero:     HeroSergey,
				Reason: fmt.Sprintf("His garrison defense bonus steps from +%d%% to +%d%%.",
					sergeySkillBonus[lvl-1], sergeySkillBonus[lvl]),
				Resources: "Hero shards",
				Source:    types.SourceRules,
				RuleID:    "level_sergey_skill",
			})
		}
	}

	return recs
}

// acquireGenerations flags recent marquee generations the player owns
// nothing from.
func (a *HeroAnalyzer) acquireGenerations(currentGen int, ownedByName map[string]types.OwnedHero) []types.Recommendation {
	var recs []types.Recommendation

	start := currentGen - 1
	if start < 2 {
		start = 2
	}
	for gen := start; gen <= currentGen; gen++ {
		marquee := a.catalog.MarqueeHeroes(gen)
		if len(marquee) == 0 {
			continue
		}
		ownsAny := false
		for _, name := range marquee {
			if _, ok := ownedByName[strings.ToLower(name)]; ok {
				ownsAny = true
				break
			}
		}
		if ownsAny {
			continue
		}
		priority := 3
		if gen == currentGen {
			priority = 2
		}
		recs = append(recs, types.Recommendation{
			Priority: priority,
			Action:   fmt.Sprintf("Acquire a generation %d hero (%s)", gen, strings.Join(marquee, ", ")),
			Category: types.CategoryHero,
			Reason:   fmt.Sprintf("You own no generation %d marquee hero; newer generations outscale older ones.", gen),
			Source:   types.SourceRules,
			RuleID:   fmt.Sprintf("acquire_gen%d", gen),
		})
	}
	return recs
}

// topNSet returns the spending-capped focus set from a ranked name list.
// A nil return means no cap.
func topNSet(ranked []string, limit int) map[string]bool {
	if limit < 0 {
		return nil
	}
	set := make(map[string]bool, limit)
	for i, name := range ranked {
		if i >= limit {
			break
		}
		set[strings.ToLower(name)] = true
	}
	return set
}

// skillRules emits expedition and exploration skill recommendations with
// the spending-profile focus gate applied.
func (a *HeroAnalyzer) skillRules(profile types.Profile, owned []types.OwnedHero, ranked []string, currentGen int) []types.Recommendation {
	limit := SkillFocusLimit(profile.SpendingProfile)
	focus := topNSet(ranked, limit)

	var recs []types.Recommendation
	for _, h := range owned {
		entry, ok := a.catalog.Lookup(h.Name)
		if !ok {
			continue
		}
		if h.Level < 30 {
			continue
		}
		value := scoring.TierScore(entry.TierOverall) * scoring.GenerationRelevance(entry, currentGen)
		if value < 0.4 {
			continue
		}

		inFocus := focus == nil || focus[strings.ToLower(h.Name)]
		if !inFocus {
			switch profile.SpendingProfile {
			case types.SpendingF2P, types.SpendingMinnow:
				continue
			}
		}

		if hasSkillBelowMax(h.ExpeditionSkillLevels) {
			rec := types.Recommendation{
				Priority:  2,
				Action:    fmt.Sprintf("Upgrade %s's expedition skills", h.Name),
				Category:  types.CategoryHero,
				Hero:      h.Name,
				Reason:    "Expedition skills drive PvP marches and rallies.",
				Resources: "Hero shards",
				Source:    types.SourceRules,
				RuleID:    "upgrade_expedition_skill",
			}
			if !inFocus {
				rec.Priority++
				rec.Reason += " Lower priority — focus on core heroes first."
			}
			recs = append(recs, rec)
		}

		if hasSkillBelowMax(h.ExplorationSkillLevels) {
			rec := types.Recommendation{
				Priority:  3,
				Action:    fmt.Sprintf("Upgrade %s's exploration skills", h.Name),
				Category:  types.CategoryHero,
				Hero:      h.Name,
				Reason:    "Exploration skills carry PvE stages and exploration battles.",
				Resources: "Hero shards",
				Source:    types.SourceRules,
				RuleID:    "upgrade_exploration_skill",
			}
			if !inFocus {
				rec.Priority++
				rec.Reason += " Lower priority — focus on core heroes first."
			}
			recs = append(recs, rec)
		}
	}
	return recs
}

// ascendRules recommends star ascension for proven carries.
func (a *HeroAnalyzer) ascendRules(profile types.Profile, owned []types.OwnedHero, ranked []string, currentGen int) []types.Recommendation {
	limit := SkillFocusLimit(profile.SpendingProfile)
	focus := topNSet(ranked, limit)

	var recs []types.Recommendation
	for _, h := range owned {
		entry, ok := a.catalog.Lookup(h.Name)
		if !ok {
			continue
		}
		if h.Stars >= 5 || h.Level < 40 {
			continue
		}
		value := scoring.TierScore(entry.TierOverall) * scoring.GenerationRelevance(entry, currentGen)
		if value < 0.5 {
			continue
		}

		inFocus := focus == nil || focus[strings.ToLower(h.Name)]
		if !inFocus {
			switch profile.SpendingProfile {
			case types.SpendingF2P, types.SpendingMinnow:
				continue
			}
		}

		rec := types.Recommendation{
			Priority:  2,
			Action:    fmt.Sprintf("Ascend %s to %d stars", h.Name, h.Stars+1),
			Category:  types.CategoryHero,
			Hero:      h.Name,
			Reason:    "Stars are the largest single stat multiplier on a developed hero.",
			Resources: "Hero shards",
			Source:    types.SourceRules,
			RuleID:    "ascend_stars",
		}
		if !inFocus {
			rec.Priority++
			rec.Reason += " Lower priority — focus on core heroes first."
		}
		recs = append(recs, rec)
	}
	return recs
}

// farmRules keeps farm accounts lean: minimal roster, Jessie for joining,
// zero exploration investment.
func (a *HeroAnalyzer) farmRules(owned []types.OwnedHero, ownedByName map[string]types.OwnedHero) []types.Recommendation {
	var recs []types.Recommendation

	if len(owned) > 2 {
		recs = append(recs, types.Recommendation{
			Priority: 1,
			Action:   "Stop developing extra heroes on this farm account",
			Category: types.CategoryHero,
			Reason:   fmt.Sprintf("A farm needs at most 1-2 heroes; you are spreading resources across %d.", len(owned)),
			Source:   types.SourceRules,
			RuleID:   "farm_hero_count",
		})
	}

	if _, ok := ownedByName[strings.ToLower(HeroJessie)]; ok {
		recs = append(recs, types.Recommendation{
			Priority: 2,
			Action:   "Keep Jessie as this farm's only developed hero",
			Category: types.CategoryHero,
			Hero:     HeroJessie,
			Reason:   "A farm only joins rallies; Jessie in slot 1 is all the hero power it needs.",
			Source:   types.SourceRules,
			RuleID:   "farm_jessie_focus",
		})
	} else {
		recs = append(recs, types.Recommendation{
			Priority: 1,
			Action:   "Unlock Jessie on this farm account",
			Category: types.CategoryHero,
			Hero:     HeroJessie,
			Reason:   "Rally joining is the only combat a farm does, and Jessie is the joiner hero.",
			Source:   types.SourceRules,
			RuleID:   "farm_jessie_focus",
		})
	}

	for _, h := range owned {
		if hasTouchedSkills(h.ExplorationSkillLevels) {
			recs = append(recs, types.Recommendation{
				Priority: 2,
				Action:   "Stop investing in exploration skills on this farm",
				Category: types.CategoryHero,
				Hero:     h.Name,
				Reason:   "Exploration progress earns a farm nothing; those shards are wasted.",
				Source:   types.SourceRules,
				RuleID:   "farm_no_exploration",
			})
			break
		}
	}

	return recs
}

func hasSkillBelowMax(levels [3]int) bool {
	for _, l := range levels {
		if l < 5 {
			return true
		}
	}
	return false
}

func hasTouchedSkills(levels [3]int) bool {
	for _, l := range levels {
		if l > 1 {
			return true
		}
	}
	return false
}
