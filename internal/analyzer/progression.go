package analyzer

import (
	"fmt"
	"strconv"
	"strings"

	"frostadvisor/internal/logging"
	"frostadvisor/internal/types"
)

// ProgressionTracker classifies a profile into a progression phase and
// emits phase-appropriate recommendations.
type ProgressionTracker struct{}

// NewProgressionTracker returns a progression tracker.
func NewProgressionTracker() *ProgressionTracker {
	return &ProgressionTracker{}
}

// ParseFcLevel extracts the numeric FC tier from strings like "FC3-2".
// Returns 0 when the string is absent or malformed.
func ParseFcLevel(s string) int {
	s = strings.TrimSpace(strings.ToUpper(s))
	if !strings.HasPrefix(s, "FC") {
		return 0
	}
	rest := strings.TrimPrefix(s, "FC")
	if i := strings.IndexByte(rest, '-'); i >= 0 {
		rest = rest[:i]
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// PhaseInfo maps the profile to its progression phase. Boundaries are a
// property of the furnace level and the FC sub-tier.
func (p *ProgressionTracker) PhaseInfo(profile types.Profile) types.PhaseInfo {
	fc := ParseFcLevel(profile.FurnaceFcLevel)

	switch {
	case fc >= 5:
		return types.PhaseInfo{
			PhaseID:   "fc_late",
			PhaseName: "Fire Crystal End Game",
			FocusAreas: []string{
				"Mythic chief gear and charm levels",
				"Generation-current hero ascension",
				"SvS point efficiency",
			},
			CommonMistakes: []string{
				"Spending fire crystals on cosmetic troop levels before gear",
			},
			Bottlenecks:   []string{"Fire crystal income", "Mythic gear materials"},
			NextMilestone: fmt.Sprintf("FC%d furnace tier", fc+1),
		}
	case fc >= 1:
		return types.PhaseInfo{
			PhaseID:   "fc_early",
			PhaseName: "Fire Crystal Early",
			FocusAreas: []string{
				"Steady FC furnace tiers",
				"Finishing Legendary chief gear",
				"One settled march lineup per mode",
			},
			CommonMistakes: []string{
				"Splitting fire crystals across all troop types at once",
			},
			Bottlenecks:   []string{"Fire crystal income"},
			NextMilestone: fmt.Sprintf("FC%d furnace tier", fc+1),
		}
	case profile.FurnaceLevel >= 30:
		return types.PhaseInfo{
			PhaseID:   "late",
			PhaseName: "Late Game",
			FocusAreas: []string{
				"Entering the fire crystal track",
				"Legendary ring and amulet",
				"Rally lineup polish",
			},
			CommonMistakes: []string{
				"Ignoring chief charms while waiting on FC unlock",
			},
			Bottlenecks:   []string{"Construction speedups"},
			NextMilestone: "Unlock the fire crystal furnace (FC1)",
		}
	case profile.FurnaceLevel >= 19:
		return types.PhaseInfo{
			PhaseID:   "mid",
			PhaseName: "Mid Game",
			FocusAreas: []string{
				"Furnace to 30",
				"Three level-40 carry heroes",
				"Exclusive chief gear slots to Epic",
			},
			CommonMistakes: []string{
				"Leveling every hero a little instead of three a lot",
				"Buying hero gear before chief gear",
			},
			Bottlenecks:   []string{"Meat and wood for furnace levels", "Hero EXP"},
			NextMilestone: "Furnace level 30",
		}
	default:
		return types.PhaseInfo{
			PhaseID:   "early",
			PhaseName: "Early Game",
			FocusAreas: []string{
				"Furnace rush to 19",
				"Join an active alliance",
				"Unlock Jessie for rally joining",
			},
			CommonMistakes: []string{
				"Spending gems on hero recruitment before builder queues",
			},
			Bottlenecks:   []string{"Construction time"},
			NextMilestone: "Furnace level 19",
		}
	}
}

// Analyze converts the phase into concrete recommendations for the
// orchestrator's merged list.
func (p *ProgressionTracker) Analyze(profile types.Profile) []types.Recommendation {
	timer := logging.StartTimer(logging.CategoryAnalyzer, "ProgressionTracker.Analyze")
	defer timer.Stop()

	info := p.PhaseInfo(profile)

	recs := []types.Recommendation{{
		Priority: 2,
		Action:   fmt.Sprintf("Work toward: %s", info.NextMilestone),
		Category: types.CategoryProgression,
		Reason:   fmt.Sprintf("You are in the %s phase; this is its gating milestone.", info.PhaseName),
		Source:   types.SourceRules,
		RuleID:   "phase_milestone_" + info.PhaseID,
	}}

	for i, focus := range info.FocusAreas {
		recs = append(recs, types.Recommendation{
			Priority: 3,
			Action:   focus,
			Category: types.CategoryProgression,
			Reason:   fmt.Sprintf("Core focus area for the %s phase.", info.PhaseName),
			Source:   types.SourceRules,
			RuleID:   fmt.Sprintf("phase_focus_%s_%d", info.PhaseID, i+1),
		})
	}

	logging.AnalyzerDebug("progression tracker: phase=%s recs=%d", info.PhaseID, len(recs))
	return recs
}
