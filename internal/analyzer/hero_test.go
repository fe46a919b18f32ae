package analyzer

import (
	"strings"
	"testing"

	"frostadvisor/internal/catalog"
	"frostadvisor/internal/scoring"
	"frostadvisor/internal/types"
)

func mustCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Load("", "")
	if err != nil {
		t.Fatalf("catalog.Load: %v", err)
	}
	return c
}

func baseProfile() types.Profile {
	return types.Profile{
		ID:              "p1",
		ServerAgeDays:   300, // generation 5
		FurnaceLevel:    25,
		SpendingProfile: types.SpendingDolphin,
		AllianceRole:    types.RoleFiller,
		Priorities:      types.Priorities{SvS: 3, Rally: 3, Castle: 3, Exploration: 2, Gathering: 1},
	}
}

func ownedHero(name string, level, stars int, expSkill1 int) types.OwnedHero {
	return types.OwnedHero{
		Name:                   name,
		Level:                  level,
		Stars:                  stars,
		ExpeditionSkillLevels:  [3]int{expSkill1, 1, 1},
		ExplorationSkillLevels: [3]int{1, 1, 1},
	}
}

func rulesOf(recs []types.Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.RuleID
	}
	return out
}

func hasRule(recs []types.Recommendation, ruleID string) bool {
	for _, r := range recs {
		if r.RuleID == ruleID {
			return true
		}
	}
	return false
}

func TestNoHeroesShortCircuits(t *testing.T) {
	a := NewHeroAnalyzer(mustCatalog(t))

	recs := a.Analyze(baseProfile(), nil)
	if len(recs) != 1 {
		t.Fatalf("empty roster should produce exactly one rec, got %v", rulesOf(recs))
	}
	if recs[0].RuleID != "no_heroes" || recs[0].Priority != 1 {
		t.Errorf("got %+v, want no_heroes priority 1", recs[0])
	}
}

func TestUnlockJessiePriorityTracksRallyPriority(t *testing.T) {
	a := NewHeroAnalyzer(mustCatalog(t))
	owned := []types.OwnedHero{ownedHero("Hervor", 60, 3, 3)}

	p := baseProfile()
	p.Priorities.Rally = 3
	recs := a.Analyze(p, owned)
	var got *types.Recommendation
	for i := range recs {
		if recs[i].RuleID == "unlock_jessie" {
			got = &recs[i]
		}
	}
	if got == nil {
		t.Fatal("expected unlock_jessie with rally priority 3")
	}
	if got.Priority != 2 {
		t.Errorf("rally=3 unlock priority = %d, want 2", got.Priority)
	}

	p.Priorities.Rally = 5
	recs = a.Analyze(p, owned)
	for _, r := range recs {
		if r.RuleID == "unlock_jessie" && r.Priority != 1 {
			t.Errorf("rally=5 unlock priority = %d, want 1", r.Priority)
		}
	}

	p.Priorities.Rally = 2
	recs = a.Analyze(p, owned)
	if hasRule(recs, "unlock_jessie") {
		t.Error("rally=2 should not trigger unlock_jessie")
	}
}

func TestJessieSkillStepBonus(t *testing.T) {
	a := NewHeroAnalyzer(mustCatalog(t))

	jessie := ownedHero("Jessie", 50, 3, 3)
	recs := a.Analyze(baseProfile(), []types.OwnedHero{jessie})

	found := false
	for _, r := range recs {
		if r.RuleID == "level_jessie_skill" {
			found = true
			if !strings.Contains(r.Reason, "+15%") || !strings.Contains(r.Reason, "+20%") {
				t.Errorf("skill step reason should quote +15%% -> +20%%, got %q", r.Reason)
			}
		}
	}
	if !found {
		t.Fatal("expected level_jessie_skill for Jessie with skill 3")
	}
}

func TestF2PSkillRecsStayInTopThree(t *testing.T) {
	c := mustCatalog(t)
	a := NewHeroAnalyzer(c)

	p := baseProfile()
	p.SpendingProfile = types.SpendingF2P

	// Five skill-eligible heroes; only the top three ranked may receive
	// skill or ascension recommendations on an f2p budget.
	owned := []types.OwnedHero{
		ownedHero("Hervor", 60, 3, 3),
		ownedHero("Norah", 60, 3, 3),
		ownedHero("Blanchette", 60, 3, 3),
		ownedHero("Reina", 55, 3, 3),
		ownedHero("Logan", 55, 3, 3),
	}

	gen := scoring.CurrentGeneration(p.ServerAgeDays)
	ranked := scoring.RankByValue(owned, c.Lookup, gen)
	top3 := map[string]bool{}
	for i, name := range ranked {
		if i < 3 {
			top3[strings.ToLower(name)] = true
		}
	}

	recs := a.Analyze(p, owned)
	for _, r := range recs {
		switch r.RuleID {
		case "upgrade_expedition_skill", "upgrade_exploration_skill", "ascend_stars":
			if !top3[strings.ToLower(r.Hero)] {
				t.Errorf("f2p rec %s targets %s outside top-3 %v", r.RuleID, r.Hero, ranked[:3])
			}
		}
	}
}

func TestDolphinNonFocusHeroesBumpPriority(t *testing.T) {
	c := mustCatalog(t)
	a := NewHeroAnalyzer(c)

	p := baseProfile()
	p.SpendingProfile = types.SpendingDolphin

	// Seven eligible heroes; dolphin focus is six, so one spills over.
	owned := []types.OwnedHero{
		ownedHero("Hervor", 60, 3, 3),
		ownedHero("Norah", 60, 3, 3),
		ownedHero("Blanchette", 60, 3, 3),
		ownedHero("Reina", 55, 3, 3),
		ownedHero("Ahmose", 55, 3, 3),
		ownedHero("Logan", 55, 3, 3),
		ownedHero("Mia", 55, 3, 3),
	}

	gen := scoring.CurrentGeneration(p.ServerAgeDays)
	ranked := scoring.RankByValue(owned, c.Lookup, gen)
	overflow := strings.ToLower(ranked[len(ranked)-1])

	recs := a.Analyze(p, owned)
	sawOverflow := false
	for _, r := range recs {
		if r.RuleID != "upgrade_expedition_skill" {
			continue
		}
		if strings.ToLower(r.Hero) == overflow {
			sawOverflow = true
			if r.Priority != 3 {
				t.Errorf("overflow hero priority = %d, want bumped to 3", r.Priority)
			}
			if !strings.Contains(r.Reason, "focus on core heroes first") {
				t.Errorf("overflow reason missing focus note: %q", r.Reason)
			}
		} else if r.Priority != 2 {
			t.Errorf("focus hero %s priority = %d, want 2", r.Hero, r.Priority)
		}
	}
	if !sawOverflow {
		t.Error("dolphin should still emit a rec for the overflow hero")
	}
}

func TestAcquireGenRules(t *testing.T) {
	a := NewHeroAnalyzer(mustCatalog(t))

	p := baseProfile()
	p.ServerAgeDays = 300 // generation 5

	// Owns only gen-1 heroes: gens 4 and 5 both trigger.
	owned := []types.OwnedHero{ownedHero("Jeronimo", 60, 3, 3)}
	recs := a.Analyze(p, owned)

	var gen4, gen5 *types.Recommendation
	for i := range recs {
		switch recs[i].RuleID {
		case "acquire_gen4":
			gen4 = &recs[i]
		case "acquire_gen5":
			gen5 = &recs[i]
		}
	}
	if gen4 == nil || gen5 == nil {
		t.Fatalf("expected acquire_gen4 and acquire_gen5, got %v", rulesOf(recs))
	}
	if gen5.Priority != 2 {
		t.Errorf("current gen priority = %d, want 2", gen5.Priority)
	}
	if gen4.Priority != 3 {
		t.Errorf("previous gen priority = %d, want 3", gen4.Priority)
	}

	// Owning one marquee hero of gen 5 silences that rule.
	owned = append(owned, ownedHero("Hervor", 10, 0, 1))
	recs = a.Analyze(p, owned)
	if hasRule(recs, "acquire_gen5") {
		t.Error("acquire_gen5 should not fire when a gen-5 marquee hero is owned")
	}
}

func TestFarmAccountRules(t *testing.T) {
	a := NewHeroAnalyzer(mustCatalog(t))

	p := baseProfile()
	p.IsFarmAccount = true

	touched := ownedHero("Bahiti", 30, 1, 1)
	touched.ExplorationSkillLevels = [3]int{3, 1, 1}
	owned := []types.OwnedHero{
		ownedHero("Jessie", 40, 2, 5),
		ownedHero("Sergey", 30, 1, 2),
		touched,
	}

	recs := a.Analyze(p, owned)
	if !hasRule(recs, "farm_hero_count") {
		t.Error("three heroes on a farm should trigger farm_hero_count")
	}
	if !hasRule(recs, "farm_jessie_focus") {
		t.Error("expected farm_jessie_focus")
	}
	if !hasRule(recs, "farm_no_exploration") {
		t.Error("touched exploration skills should trigger farm_no_exploration")
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	a := NewHeroAnalyzer(mustCatalog(t))
	p := baseProfile()
	owned := []types.OwnedHero{
		ownedHero("Hervor", 60, 3, 3),
		ownedHero("Jessie", 50, 2, 3),
		ownedHero("Bahiti", 35, 1, 2),
	}

	first := rulesOf(a.Analyze(p, owned))
	second := rulesOf(a.Analyze(p, owned))
	if strings.Join(first, ",") != strings.Join(second, ",") {
		t.Errorf("analyzer output not deterministic:\n%v\n%v", first, second)
	}
}
