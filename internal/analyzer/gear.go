package analyzer

import (
	"fmt"
	"strings"

	"frostadvisor/internal/logging"
	"frostadvisor/internal/types"
)

// chiefSlotPriority is the fixed chief-gear upgrade order. Ring and
// amulet carry the lethality and health set bonuses, which is why they
// outrank everything else.
var chiefSlotPriority = []struct {
	slot     string
	priority int
	reason   string
}{
	{types.ChiefSlotRing, 1, "Ring carries the troop lethality set bonus; it is the highest-value chief slot."},
	{types.ChiefSlotAmulet, 2, "Amulet carries the troop health set bonus; upgrade it right after the ring."},
	{types.ChiefSlotGloves, 3, "Gloves add attack once ring and amulet are moving."},
	{types.ChiefSlotBoots, 3, "Boots add defense once ring and amulet are moving."},
	{types.ChiefSlotHelmet, 4, "Helmet is a stat slot with no set bonus; it can wait."},
	{types.ChiefSlotArmor, 4, "Armor is a stat slot with no set bonus; it can wait."},
}

// HeroGearLimit returns how many heroes a spending profile should put
// hero gear on. Whale has no cap.
func HeroGearLimit(p types.SpendingProfile) int {
	switch p {
	case types.SpendingF2P:
		return 1
	case types.SpendingMinnow:
		return 2
	case types.SpendingDolphin:
		return 3
	case types.SpendingOrca:
		return 4
	default:
		return -1 // unlimited
	}
}

// GearAdvisor emits chief-gear and hero-gear recommendations and flags
// investment anti-patterns.
type GearAdvisor struct{}

// NewGearAdvisor returns a gear advisor.
func NewGearAdvisor() *GearAdvisor {
	return &GearAdvisor{}
}

// Analyze runs every gear rule. Rules trigger independently.
func (g *GearAdvisor) Analyze(profile types.Profile, owned []types.OwnedHero, gear types.ChiefGear) []types.Recommendation {
	timer := logging.StartTimer(logging.CategoryAnalyzer, "GearAdvisor.Analyze")
	defer timer.Stop()

	var recs []types.Recommendation
	recs = append(recs, g.chiefGearRules(gear)...)
	recs = append(recs, g.heroGearRules(profile, owned)...)
	recs = append(recs, g.antiPatternRules(profile, owned, gear)...)

	logging.AnalyzerDebug("gear advisor produced %d recommendations", len(recs))
	return recs
}

func (g *GearAdvisor) chiefGearRules(gear types.ChiefGear) []types.Recommendation {
	if gear.IsEmpty() {
		return []types.Recommendation{
			{
				Priority: 1,
				Action:   "Upgrade chief Ring to Legendary",
				Category: types.CategoryGear,
				Reason:   "Ring carries the troop lethality set bonus; it is the first chief slot to build.",
				Source:   types.SourceRules,
				RuleID:   "chief_gear_starter_ring",
			},
			{
				Priority: 2,
				Action:   "Upgrade chief Amulet to Legendary",
				Category: types.CategoryGear,
				Reason:   "Amulet carries the troop health set bonus; build it right after the ring.",
				Source:   types.SourceRules,
				RuleID:   "chief_gear_starter_amulet",
			},
		}
	}

	var recs []types.Recommendation
	for _, sp := range chiefSlotPriority {
		quality := gear.Slot(sp.slot)
		if quality >= types.GearQualityLegendary {
			continue
		}
		priority := sp.priority
		// Slots still below Rare are urgent, but never urgent enough to
		// jump ahead of ring and amulet.
		if quality < types.GearQualityRare && sp.priority >= 3 {
			priority = sp.priority - 1
		}
		recs = append(recs, types.Recommendation{
			Priority: priority,
			Action:   fmt.Sprintf("Upgrade chief %s to Legendary", titleSlot(sp.slot)),
			Category: types.CategoryGear,
			Reason:   sp.reason,
			Source:   types.SourceRules,
			RuleID:   "chief_gear_" + sp.slot,
		})
	}

	if gear.Ring >= types.GearQualityLegendary && gear.Amulet >= types.GearQualityLegendary {
		for _, sp := range chiefSlotPriority {
			if gear.Slot(sp.slot) >= types.GearQualityMythic {
				continue
			}
			recs = append(recs, types.Recommendation{
				Priority: sp.priority,
				Action:   fmt.Sprintf("Push chief %s to Mythic", titleSlot(sp.slot)),
				Category: types.CategoryGear,
				Reason:   "With ring and amulet at Legendary, mythic pushes are the next chief power step.",
				Source:   types.SourceRules,
				RuleID:   "mythic_push_" + sp.slot,
			})
		}
	}

	return recs
}

func (g *GearAdvisor) heroGearRules(profile types.Profile, owned []types.OwnedHero) []types.Recommendation {
	geared := gearedHeroes(owned)
	limit := HeroGearLimit(profile.SpendingProfile)

	var recs []types.Recommendation
	if limit >= 0 && len(geared) > limit {
		recs = append(recs, types.Recommendation{
			Priority: 1,
			Action:   "Stop spreading hero gear across your roster",
			Category: types.CategoryGear,
			Reason: fmt.Sprintf("A %s budget supports hero gear on %d hero(es); you have it on %d (%s).",
				profile.SpendingProfile, limit, len(geared), strings.Join(geared, ", ")),
			Source: types.SourceRules,
			RuleID: fmt.Sprintf("%s_hero_gear_limit", profile.SpendingProfile),
		})
	}

	if profile.SpendingProfile == types.SpendingF2P && len(geared) == 0 {
		recs = append(recs, types.Recommendation{
			Priority: 3,
			Action:   "Start hero gear with Molly OR Alonso",
			Category: types.CategoryGear,
			Reason:   "One geared carry is worth more than none; pick whichever of the two you field more.",
			Source:   types.SourceRules,
			RuleID:   "first_hero_gear",
		})
	}

	return recs
}

func (g *GearAdvisor) antiPatternRules(profile types.Profile, owned []types.OwnedHero, gear types.ChiefGear) []types.Recommendation {
	var recs []types.Recommendation
	geared := gearedHeroes(owned)

	if len(geared) > 0 && (gear.Ring < types.GearQualityLegendary || gear.Amulet < types.GearQualityLegendary) {
		recs = append(recs, types.Recommendation{
			Priority: 1,
			Action:   "Pause hero gear until chief Ring and Amulet reach Legendary",
			Category: types.CategoryGear,
			Reason:   "Chief gear buffs every troop you own; hero gear buffs one hero. Chief gear first, always.",
			Source:   types.SourceRules,
			RuleID:   "chief_before_hero",
		})
	}

	coreMin := gear.Ring
	if gear.Amulet < coreMin {
		coreMin = gear.Amulet
	}
	if gear.Helmet > coreMin || gear.Armor > coreMin {
		recs = append(recs, types.Recommendation{
			Priority: 2,
			Action:   "Rebalance chief gear: Ring and Amulet before Helmet and Armor",
			Category: types.CategoryGear,
			Reason:   "Helmet or armor has outpaced your set-bonus slots; that order wastes upgrade materials.",
			Source:   types.SourceRules,
			RuleID:   "balance_chief_gear",
		})
	}

	if profile.SpendingProfile != types.SpendingWhale {
		for _, joiner := range []string{HeroJessie, HeroSergey} {
			for _, h := range owned {
				if strings.EqualFold(h.Name, joiner) && h.HasHeroGear {
					recs = append(recs, types.Recommendation{
						Priority: 1,
						Action:   fmt.Sprintf("Remove hero gear priority from %s", joiner),
						Category: types.CategoryGear,
						Hero:     joiner,
						Reason:   "Joiners contribute only their slot-1 expedition skill; gear on them adds nothing a rally can use.",
						Source:   types.SourceRules,
						RuleID:   "no_gear_on_joiner_" + strings.ToLower(joiner),
					})
				}
			}
		}
	}

	return recs
}

func gearedHeroes(owned []types.OwnedHero) []string {
	var names []string
	for _, h := range owned {
		if h.HasHeroGear {
			names = append(names, h.Name)
		}
	}
	return names
}

func titleSlot(slot string) string {
	if slot == "" {
		return slot
	}
	return strings.ToUpper(slot[:1]) + slot[1:]
}
