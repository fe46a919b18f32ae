package scoring

import (
	"testing"

	"frostadvisor/internal/types"
)

func entry(name string, gen int, overall, expedition types.Tier) types.HeroEntry {
	return types.HeroEntry{
		Name:           name,
		Generation:     gen,
		Class:          types.ClassInfantry,
		TierOverall:    overall,
		TierExpedition: expedition,
	}
}

func TestPowerWeights(t *testing.T) {
	h := types.OwnedHero{
		Name:                  "Jeronimo",
		Level:                 80,
		Stars:                 5,
		Ascension:             3,
		ExpeditionSkillLevels: [3]int{5, 4, 4},
		Gear: [4]types.GearSlot{
			{Quality: 6, Level: 100},
			{Quality: 5, Level: 80},
			{Quality: 4, Level: 50},
			{Quality: 3, Level: 29},
		},
	}
	e := entry("Jeronimo", 1, types.TierS, types.TierS)

	// level 800 + stars 250 + ascension 90
	// gear: (90+10)+(75+8)+(60+5)+(45+2) = 295
	// expedition skill 1: 100
	// tier S -> 5 * 25 = 125
	want := 800 + 250 + 90 + 295 + 100 + 125
	if got := Power(h, &e); got != want {
		t.Errorf("Power = %d, want %d", got, want)
	}
}

func TestPowerWithoutCatalogEntry(t *testing.T) {
	h := types.OwnedHero{Level: 10, Stars: 1, ExpeditionSkillLevels: [3]int{1, 1, 1}}
	withEntry := entry("X", 1, types.TierS, types.TierS)

	base := Power(h, nil)
	if Power(h, &withEntry) <= base {
		t.Error("catalog tier term should add to power")
	}

	unknown := types.HeroEntry{Unknown: true, TierExpedition: types.TierC}
	if Power(h, &unknown) != base {
		t.Error("Unknown sentinel entry must not contribute a tier term")
	}
}

func TestPowerMonotonic(t *testing.T) {
	base := types.OwnedHero{
		Level: 40, Stars: 2, Ascension: 1,
		ExpeditionSkillLevels: [3]int{3, 1, 1},
		Gear:                  [4]types.GearSlot{{Quality: 2, Level: 20}},
	}
	e := entry("X", 1, types.TierA, types.TierA)
	ref := Power(base, &e)

	up := base
	up.Level++
	if Power(up, &e) <= ref {
		t.Error("power must grow with level")
	}

	up = base
	up.Stars++
	if Power(up, &e) <= ref {
		t.Error("power must grow with stars")
	}

	up = base
	up.Ascension++
	if Power(up, &e) <= ref {
		t.Error("power must grow with ascension")
	}

	up = base
	up.Gear[0].Quality++
	if Power(up, &e) <= ref {
		t.Error("power must grow with gear quality")
	}

	up = base
	up.ExpeditionSkillLevels[0]++
	if Power(up, &e) <= ref {
		t.Error("power must grow with expedition skill 1")
	}
}

func TestGenerationRelevance(t *testing.T) {
	tests := []struct {
		name       string
		gen        int
		tier       types.Tier
		currentGen int
		want       float64
	}{
		{"current gen", 5, types.TierA, 5, 1.0},
		{"future gen clamps to 1", 6, types.TierA, 5, 1.0},
		{"one behind", 4, types.TierA, 5, 0.9},
		{"two behind", 3, types.TierA, 5, 0.7},
		{"three behind", 2, types.TierA, 5, 0.5},
		{"four behind", 1, types.TierA, 5, 0.3},
		{"seven behind", 1, types.TierA, 8, 0.3},
		{"S+ bonus one behind caps at 1", 4, types.TierSPlus, 5, 1.0},
		{"S+ bonus two behind", 3, types.TierSPlus, 5, 0.85},
		{"S+ bonus three behind", 2, types.TierSPlus, 5, 0.65},
		{"S+ no bonus at four behind", 1, types.TierSPlus, 5, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := entry("X", tt.gen, tt.tier, tt.tier)
			got := GenerationRelevance(e, tt.currentGen)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("relevance = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCurrentGenerationBands(t *testing.T) {
	tests := []struct {
		days int
		want int
	}{
		{0, 1},
		{39, 1},
		{40, 2},
		{119, 2},
		{120, 3},
		{199, 3},
		{200, 4},
		{280, 5},
		{360, 6},
		{440, 7},
		{519, 7},
		{520, 8},
		{599, 8},
		{600, 9},
		{2000, 14}, // capped at the catalog ceiling
	}

	for _, tt := range tests {
		if got := CurrentGeneration(tt.days); got != tt.want {
			t.Errorf("CurrentGeneration(%d) = %d, want %d", tt.days, got, tt.want)
		}
	}
}

func TestRankByValueDeterministicAndOrdered(t *testing.T) {
	entries := map[string]types.HeroEntry{
		"newstar": entry("NewStar", 5, types.TierSPlus, types.TierSPlus),
		"oldstar": entry("OldStar", 1, types.TierSPlus, types.TierSPlus),
		"bench":   entry("Bench", 5, types.TierD, types.TierD),
	}
	lookup := func(name string) (types.HeroEntry, bool) {
		e, ok := entries[name]
		if !ok {
			return types.HeroEntry{Unknown: true}, false
		}
		return e, ok
	}

	owned := []types.OwnedHero{
		{Name: "bench", Level: 80},
		{Name: "oldstar", Level: 80},
		{Name: "newstar", Level: 50},
	}

	first := RankByValue(owned, lookup, 5)
	if first[0] != "newstar" {
		t.Errorf("top ranked = %s, want newstar", first[0])
	}
	if first[len(first)-1] != "bench" {
		t.Errorf("bottom ranked = %s, want bench", first[len(first)-1])
	}

	second := RankByValue(owned, lookup, 5)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("ranking not deterministic at index %d: %s vs %s", i, first[i], second[i])
		}
	}
}
