package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var recommendLimit int

// recommendCmd prints the merged upgrade plan.
var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Show prioritized upgrade recommendations",
	Long: `Runs the hero, gear, and progression analyzers against your profile and
prints the merged plan, highest priority first. Priority 1 means do it
now; priority 5 is a someday item.`,
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().IntVarP(&recommendLimit, "limit", "n", 10, "maximum recommendations to show")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	a, cleanup, err := openApp()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	profile, owned, gear := loadPlayerContext(ctx, a)

	recs, err := a.advisor.Recommend(ctx, profile, owned, gear, recommendLimit)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Println("Nothing to recommend. Your roster looks settled.")
		return nil
	}

	for i, r := range recs {
		fmt.Printf("%d. [P%d] [%s] %s\n", i+1, r.Priority, r.Category, r.Action)
		if r.Reason != "" {
			fmt.Printf("   %s\n", r.Reason)
		}
		if r.Resources != "" {
			fmt.Printf("   Needs: %s\n", r.Resources)
		}
	}
	return nil
}
