package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"frostadvisor/internal/analyzer"
	"frostadvisor/internal/lineup"
)

var joinerDefense bool

// lineupCmd builds the lineup for one game mode.
var lineupCmd = &cobra.Command{
	Use:   "lineup [mode]",
	Short: "Build your lineup for a game mode",
	Long: `Builds the recommended hero lineup and troop ratio for a mode from your
roster. Without a recorded roster you get the catalog-ideal lineup for
your server generation.

Run without arguments to list the known modes.`,
	RunE: runLineup,
}

// joinerCmd answers the rally joiner question.
var joinerCmd = &cobra.Command{
	Use:   "joiner",
	Short: "Which hero to send when joining a rally",
	RunE:  runJoiner,
}

// phaseCmd reports the progression phase.
var phaseCmd = &cobra.Command{
	Use:   "phase",
	Short: "Show your progression phase and its focus areas",
	RunE:  runPhase,
}

func init() {
	joinerCmd.Flags().BoolVar(&joinerDefense, "defense", false, "advice for reinforcing instead of attacking")
}

func runLineup(cmd *cobra.Command, args []string) error {
	a, cleanup, err := openApp()
	if err != nil {
		return err
	}
	defer cleanup()

	if len(args) == 0 {
		fmt.Println("Known modes:", strings.Join(a.catalog.ModeKeys(), ", "))
		return nil
	}

	ctx := cmd.Context()
	profile, owned, _ := loadPlayerContext(ctx, a)

	builder := lineup.NewBuilder(a.catalog)
	var rec = builder.Build(args[0], owned, profile)
	if len(owned) == 0 {
		rec = builder.BuildGeneral(args[0], profile)
	}

	fmt.Printf("%s (confidence: %s)\n", rec.Mode, rec.Confidence)
	for i, s := range rec.Slots {
		if s.Hero != "" {
			lead := ""
			if s.IsLead {
				lead = " [lead]"
			}
			fmt.Printf("  %d. %s (%s, %s)%s\n", i+1, s.Hero, s.Role, s.Status, lead)
		} else {
			fmt.Printf("  %d. %s (%s)\n", i+1, s.Placeholder, s.Role)
		}
	}
	fmt.Printf("Troops: %d/%d/%d infantry/lancer/marksman\n",
		rec.TroopRatio.Infantry, rec.TroopRatio.Lancer, rec.TroopRatio.Marksman)
	if len(rec.RecommendedToGet) > 0 {
		fmt.Println("Worth acquiring:", strings.Join(rec.RecommendedToGet, ", "))
	}
	if rec.Notes != "" {
		fmt.Println(rec.Notes)
	}
	return nil
}

func runJoiner(cmd *cobra.Command, args []string) error {
	a, cleanup, err := openApp()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	_, owned, _ := loadPlayerContext(ctx, a)

	advice := lineup.JoinerRecommendation(owned, !joinerDefense)
	fmt.Println(advice.Recommendation)
	if advice.Hero != "" {
		fmt.Printf("Skill: %d/%d\n", advice.SkillLevel, advice.MaxSkill)
	}
	fmt.Println("Action:", advice.Action)
	fmt.Println(advice.CriticalNote)
	return nil
}

func runPhase(cmd *cobra.Command, args []string) error {
	a, cleanup, err := openApp()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	profile, _, _ := loadPlayerContext(ctx, a)

	info := analyzer.NewProgressionTracker().PhaseInfo(profile)
	fmt.Printf("%s (%s)\n", info.PhaseName, info.PhaseID)
	fmt.Println("Next milestone:", info.NextMilestone)
	fmt.Println("Focus areas:")
	for _, f := range info.FocusAreas {
		fmt.Println("  -", f)
	}
	if len(info.CommonMistakes) > 0 {
		fmt.Println("Common mistakes:")
		for _, m := range info.CommonMistakes {
			fmt.Println("  -", m)
		}
	}
	if len(info.Bottlenecks) > 0 {
		fmt.Println("Bottlenecks:", strings.Join(info.Bottlenecks, ", "))
	}
	return nil
}
