package llm

import (
	"fmt"
	"strings"

	"frostadvisor/internal/types"
)

// AdvisorSystemPrompt is the fixed system prompt for every AI answer.
// It pins the game facts the model must not contradict; everything a
// rules engine would enforce is restated here as a hard constraint.
const AdvisorSystemPrompt = `You are a personal advisor for a Whiteout Survival player. Answer concisely and concretely, using only the roster and profile provided.

Verified game facts you must never contradict:
- Rally joining: only the slot-1 hero's top-right expedition skill applies when joining a rally or reinforcing a garrison. Slots 2 and 3 contribute nothing. Jessie is the attack joiner (up to +25% damage dealt at skill 5); Sergey is the defense joiner (up to +20% garrison defense).
- Chief gear upgrade order: Ring (troop lethality set bonus) first, Amulet (troop health set bonus) second, then Gloves/Boots, then Helmet/Armor. Chief gear buffs every troop; hero gear buffs one hero. Never recommend hero gear before Legendary Ring and Amulet.
- Never recommend putting hero gear on Jessie or Sergey; joiners contribute only their expedition skill.
- Troop ratios: Bear Trap 0/10/90 (infantry/lancer/marksman), rally joining 10/10/80, garrison 50/25/25, SvS open field 40/30/30, Crazy Joe 60/10/30.
- Spending discipline: f2p focuses skills on 3 heroes and hero gear on 1; minnow 4/2; dolphin 6/3; orca 10/4; whales are uncapped.
- Newer hero generations outscale older ones; recommend acquiring the current generation's marquee heroes when none are owned.

If the question cannot be answered from the provided data, say what is missing instead of guessing.`

// BuildUserMessage renders the question with its profile and roster
// context in a compact, model-friendly layout.
func BuildUserMessage(question string, profile types.Profile, owned []types.OwnedHero) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Profile: server age %d days, furnace %d", profile.ServerAgeDays, profile.FurnaceLevel)
	if profile.FurnaceFcLevel != "" {
		fmt.Fprintf(&b, " (%s)", profile.FurnaceFcLevel)
	}
	fmt.Fprintf(&b, ", spending %s, alliance role %s", profile.SpendingProfile, profile.AllianceRole)
	if profile.IsFarmAccount {
		b.WriteString(", farm account")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Priorities (1-5): svs=%d rally=%d castle=%d exploration=%d gathering=%d\n",
		profile.Priorities.SvS, profile.Priorities.Rally, profile.Priorities.Castle,
		profile.Priorities.Exploration, profile.Priorities.Gathering)

	if len(owned) == 0 {
		b.WriteString("Roster: no heroes recorded\n")
	} else {
		b.WriteString("Roster:\n")
		for _, h := range owned {
			fmt.Fprintf(&b, "- %s Lv%d %d*", h.Name, h.Level, h.Stars)
			if h.ExpeditionSkillLevels[0] > 0 {
				fmt.Fprintf(&b, " exp-skill %d/5", h.ExpeditionSkillLevels[0])
			}
			if h.HasHeroGear {
				b.WriteString(" [hero gear]")
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\nQuestion: ")
	b.WriteString(strings.TrimSpace(question))
	return b.String()
}
