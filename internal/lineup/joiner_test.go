package lineup

import (
	"strings"
	"testing"

	"frostadvisor/internal/types"
)

func TestJoinerAttackWithJessie(t *testing.T) {
	jessie := hero("Jessie", 40, 2)
	jessie.ExpeditionSkillLevels = [3]int{3, 1, 1}

	advice := JoinerRecommendation([]types.OwnedHero{jessie, hero("Jeronimo", 80, 5)}, true)

	if advice.Hero != "Jessie" {
		t.Errorf("hero = %q, want Jessie ahead of Jeronimo", advice.Hero)
	}
	if advice.SkillLevel != 3 || advice.MaxSkill != 5 {
		t.Errorf("skill = %d/%d, want 3/5", advice.SkillLevel, advice.MaxSkill)
	}
	if !strings.Contains(advice.CriticalNote, "slot-1") {
		t.Errorf("critical note missing slot-1 rule: %q", advice.CriticalNote)
	}
	if !strings.Contains(advice.Recommendation, "3/5") {
		t.Errorf("recommendation should mention the unmaxed skill: %q", advice.Recommendation)
	}
}

func TestJoinerDefenseFallbackOrder(t *testing.T) {
	advice := JoinerRecommendation([]types.OwnedHero{hero("Natalia", 60, 3), hero("Patrick", 40, 2)}, false)
	if advice.Hero != "Patrick" {
		t.Errorf("hero = %q, want Patrick ahead of Natalia", advice.Hero)
	}

	advice = JoinerRecommendation([]types.OwnedHero{hero("Sergey", 30, 1), hero("Patrick", 40, 2)}, false)
	if advice.Hero != "Sergey" {
		t.Errorf("hero = %q, want Sergey first", advice.Hero)
	}
}

func TestJoinerWithNoCandidate(t *testing.T) {
	advice := JoinerRecommendation([]types.OwnedHero{hero("Hervor", 60, 3)}, true)

	if advice.Hero != "" {
		t.Errorf("hero = %q, want empty when no joiner is owned", advice.Hero)
	}
	if advice.Action != "REMOVE ALL HEROES when joining" {
		t.Errorf("action = %q", advice.Action)
	}
}

func TestJoinerEmptyRoster(t *testing.T) {
	advice := JoinerRecommendation(nil, false)
	if advice.Hero != "" || advice.Action == "" {
		t.Errorf("empty roster advice = %+v", advice)
	}
}
