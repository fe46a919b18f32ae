package lineup

import (
	"fmt"
	"strings"

	"frostadvisor/internal/types"
)

const (
	heroJessie = "Jessie"
	heroSergey = "Sergey"
)

// slot1Rule is the one thing every rally joiner has to know.
const slot1Rule = "Only the slot-1 hero's top-right expedition skill applies when joining. Slots 2 and 3 contribute nothing."

// attackJoiners and defenseJoiners are the candidate orders for the
// joiner question. First owned wins.
var (
	attackJoiners  = []string{heroJessie, "Jeronimo"}
	defenseJoiners = []string{heroSergey, "Patrick", "Natalia"}
)

// JoinerRecommendation answers "which hero do I send when joining a
// rally (or reinforcing a garrison)". When no candidate is owned the
// correct play is to send troops with no hero at all, and Hero stays
// empty to say so.
func JoinerRecommendation(owned []types.OwnedHero, isAttack bool) types.JoinerAdvice {
	candidates := attackJoiners
	verb := "rally attacks"
	if !isAttack {
		candidates = defenseJoiners
		verb = "garrison reinforcements"
	}

	ownedByName := make(map[string]types.OwnedHero, len(owned))
	for _, h := range owned {
		ownedByName[strings.ToLower(h.Name)] = h
	}

	for _, name := range candidates {
		h, ok := ownedByName[strings.ToLower(name)]
		if !ok {
			continue
		}
		skill := h.ExpeditionSkillLevels[0]
		advice := types.JoinerAdvice{
			Hero:           h.Name,
			SkillLevel:     skill,
			MaxSkill:       5,
			Recommendation: fmt.Sprintf("Send %s in slot 1 for %s.", h.Name, verb),
			Action:         fmt.Sprintf("Place %s in slot 1, any troops behind", h.Name),
			CriticalNote:   slot1Rule,
		}
		if skill < 5 {
			advice.Recommendation += fmt.Sprintf(" Their expedition skill is %d/5; each level raises the bonus every join gets.", skill)
		}
		return advice
	}

	return types.JoinerAdvice{
		MaxSkill:       5,
		Recommendation: fmt.Sprintf("You own no dedicated joiner hero for %s.", verb),
		Action:         "REMOVE ALL HEROES when joining",
		CriticalNote:   slot1Rule + " Troops sent without a hero still count toward rally capacity.",
	}
}
