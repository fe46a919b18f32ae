package analyzer

import (
	"testing"

	"frostadvisor/internal/types"
)

func gearedOwned(names ...string) []types.OwnedHero {
	out := make([]types.OwnedHero, 0, len(names))
	for _, n := range names {
		out = append(out, types.OwnedHero{
			Name:                   n,
			Level:                  50,
			Stars:                  3,
			ExpeditionSkillLevels:  [3]int{3, 3, 3},
			ExplorationSkillLevels: [3]int{1, 1, 1},
			HasHeroGear:            true,
		})
	}
	return out
}

func findRule(recs []types.Recommendation, ruleID string) (types.Recommendation, bool) {
	for _, r := range recs {
		if r.RuleID == ruleID {
			return r, true
		}
	}
	return types.Recommendation{}, false
}

func TestEmptyGearSnapshotGivesStarterPlan(t *testing.T) {
	g := NewGearAdvisor()
	p := baseProfile()

	recs := g.Analyze(p, nil, types.ChiefGear{})

	ring, ok := findRule(recs, "chief_gear_starter_ring")
	if !ok || ring.Priority != 1 {
		t.Errorf("want starter ring at priority 1, got %+v (found=%v)", ring, ok)
	}
	amulet, ok := findRule(recs, "chief_gear_starter_amulet")
	if !ok || amulet.Priority != 2 {
		t.Errorf("want starter amulet at priority 2, got %+v (found=%v)", amulet, ok)
	}
	for _, r := range recs {
		if r.RuleID != "chief_gear_starter_ring" && r.RuleID != "chief_gear_starter_amulet" {
			t.Errorf("empty snapshot should only produce the starter pair, got %s", r.RuleID)
		}
	}
}

func TestF2POverGearedRosterWithLaggingChiefGear(t *testing.T) {
	g := NewGearAdvisor()
	p := baseProfile()
	p.SpendingProfile = types.SpendingF2P

	// Hero gear on two heroes while ring is Rare and amulet is Common.
	owned := gearedOwned("Alonso", "Molly")
	gear := types.ChiefGear{Ring: types.GearQualityRare, Amulet: types.GearQualityCommon}

	recs := g.Analyze(p, owned, gear)

	if r, ok := findRule(recs, "chief_before_hero"); !ok || r.Priority != 1 {
		t.Errorf("want chief_before_hero at priority 1, got %+v (found=%v)", r, ok)
	}
	if r, ok := findRule(recs, "f2p_hero_gear_limit"); !ok || r.Priority != 1 {
		t.Errorf("want f2p_hero_gear_limit at priority 1, got %+v (found=%v)", r, ok)
	}
	if r, ok := findRule(recs, "chief_gear_ring"); !ok || r.Priority != 1 {
		t.Errorf("want ring upgrade at priority 1, got %+v (found=%v)", r, ok)
	}
	if r, ok := findRule(recs, "chief_gear_amulet"); !ok || r.Priority != 2 {
		t.Errorf("want amulet upgrade at priority 2, got %+v (found=%v)", r, ok)
	}
	if _, ok := findRule(recs, "first_hero_gear"); ok {
		t.Error("first_hero_gear must not fire when hero gear already exists")
	}
}

func TestBelowRareBumpsLowPrioritySlotsOnly(t *testing.T) {
	g := NewGearAdvisor()
	recs := g.Analyze(baseProfile(), nil, types.ChiefGear{
		Ring:   types.GearQualityEpic,
		Amulet: types.GearQualityEpic,
		Gloves: types.GearQualityCommon,
		Helmet: types.GearQualityCommon,
		Boots:  types.GearQualityRare,
	})

	// Gloves below Rare: 3 -> 2. Helmet below Rare: 4 -> 3.
	if r, _ := findRule(recs, "chief_gear_gloves"); r.Priority != 2 {
		t.Errorf("gloves priority = %d, want 2", r.Priority)
	}
	if r, _ := findRule(recs, "chief_gear_helmet"); r.Priority != 3 {
		t.Errorf("helmet priority = %d, want 3", r.Priority)
	}
	// Boots at Rare keep their base priority.
	if r, _ := findRule(recs, "chief_gear_boots"); r.Priority != 3 {
		t.Errorf("boots priority = %d, want 3", r.Priority)
	}
	// Ring and amulet below Legendary keep priorities 1 and 2.
	if r, _ := findRule(recs, "chief_gear_ring"); r.Priority != 1 {
		t.Errorf("ring priority = %d, want 1", r.Priority)
	}
}

func TestMythicPushAfterCoreLegendary(t *testing.T) {
	g := NewGearAdvisor()
	recs := g.Analyze(baseProfile(), nil, types.ChiefGear{
		Ring:   types.GearQualityLegendary,
		Amulet: types.GearQualityMythic,
		Gloves: types.GearQualityLegendary,
		Boots:  types.GearQualityLegendary,
		Helmet: types.GearQualityEpic,
		Armor:  types.GearQualityEpic,
	})

	if _, ok := findRule(recs, "mythic_push_ring"); !ok {
		t.Error("legendary ring should get a mythic push rec")
	}
	if _, ok := findRule(recs, "mythic_push_amulet"); ok {
		t.Error("mythic amulet needs no push rec")
	}
	if _, ok := findRule(recs, "mythic_push_helmet"); !ok {
		t.Error("epic helmet should get a mythic push rec once core slots are Legendary")
	}
}

func TestBalanceWarningWhenStatSlotsOutpaceCore(t *testing.T) {
	g := NewGearAdvisor()
	recs := g.Analyze(baseProfile(), nil, types.ChiefGear{
		Ring:   types.GearQualityRare,
		Amulet: types.GearQualityRare,
		Helmet: types.GearQualityEpic,
	})

	if r, ok := findRule(recs, "balance_chief_gear"); !ok || r.Priority != 2 {
		t.Errorf("want balance_chief_gear at priority 2, got %+v (found=%v)", r, ok)
	}
}

func TestJoinerHeroGearWarning(t *testing.T) {
	g := NewGearAdvisor()
	gear := types.ChiefGear{Ring: types.GearQualityMythic, Amulet: types.GearQualityMythic}

	recs := g.Analyze(baseProfile(), gearedOwned("Jessie"), gear)
	if r, ok := findRule(recs, "no_gear_on_joiner_jessie"); !ok || r.Priority != 1 {
		t.Errorf("want no_gear_on_joiner_jessie at priority 1, got %+v (found=%v)", r, ok)
	}

	// Whales get to do what they want.
	p := baseProfile()
	p.SpendingProfile = types.SpendingWhale
	recs = g.Analyze(p, gearedOwned("Jessie"), gear)
	if _, ok := findRule(recs, "no_gear_on_joiner_jessie"); ok {
		t.Error("whale profile should suppress the joiner gear warning")
	}
}

func TestFirstHeroGearSuggestionForF2P(t *testing.T) {
	g := NewGearAdvisor()
	p := baseProfile()
	p.SpendingProfile = types.SpendingF2P

	owned := []types.OwnedHero{{Name: "Molly", Level: 50}}
	gear := types.ChiefGear{Ring: types.GearQualityLegendary, Amulet: types.GearQualityLegendary}

	recs := g.Analyze(p, owned, gear)
	r, ok := findRule(recs, "first_hero_gear")
	if !ok || r.Priority != 3 {
		t.Errorf("want first_hero_gear at priority 3, got %+v (found=%v)", r, ok)
	}
}
