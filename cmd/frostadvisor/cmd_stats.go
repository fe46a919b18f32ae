package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var (
	statsAllUsers bool
	statsRecent   int
)

// statsCmd reports on the conversation log.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show conversation log statistics",
	Long: `Aggregates the local conversation log: how many questions were asked,
which engine answered them, token spend, and ratings. Scoped to the
current user unless --all is given.`,
	RunE: runStats,
}

var statsRateCmd = &cobra.Command{
	Use:   "rate <conversation-id> <1-5>",
	Short: "Rate a logged answer",
	Args:  cobra.ExactArgs(2),
	RunE:  runStatsRate,
}

func init() {
	statsCmd.Flags().BoolVar(&statsAllUsers, "all", false, "aggregate over every user")
	statsCmd.Flags().IntVar(&statsRecent, "recent", 0, "also list the N most recent exchanges")
	statsCmd.AddCommand(statsRateCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	a, cleanup, err := openApp()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	scope := userID
	if statsAllUsers {
		scope = ""
	}

	stats, err := a.store.Stats(ctx, scope)
	if err != nil {
		return err
	}

	if scope == "" {
		fmt.Println("Conversations (all users):", stats.Total)
	} else {
		fmt.Printf("Conversations (%s): %d\n", scope, stats.Total)
	}
	if stats.Total == 0 {
		return nil
	}

	sources := make([]string, 0, len(stats.BySource))
	for s := range stats.BySource {
		sources = append(sources, s)
	}
	sort.Strings(sources)
	parts := make([]string, 0, len(sources))
	for _, s := range sources {
		parts = append(parts, fmt.Sprintf("%s=%d", s, stats.BySource[s]))
	}
	fmt.Println("By source:", strings.Join(parts, " "))
	fmt.Printf("Tokens: %d in, %d out\n", stats.TokensIn, stats.TokensOut)
	fmt.Printf("Avg response: %.0fms\n", stats.AvgResponseMs)
	if stats.RatedCount > 0 {
		fmt.Printf("Ratings: %.1f avg over %d rated\n", stats.AvgRating, stats.RatedCount)
	}
	fmt.Printf("First: %s  Last: %s\n",
		stats.FirstMessageAt.Format("2006-01-02 15:04"),
		stats.LastMessageAt.Format("2006-01-02 15:04"))

	if statsRecent > 0 {
		recs, err := a.store.RecentConversations(ctx, userID, statsRecent)
		if err != nil {
			return err
		}
		fmt.Println()
		for _, r := range recs {
			rating := ""
			if r.Rating != nil {
				rating = fmt.Sprintf(" rated %d/5", *r.Rating)
			}
			fmt.Printf("%s [%s]%s\n  Q: %s\n  A: %s\n",
				r.ID, r.Source, rating, oneLine(r.Question, 80), oneLine(r.Answer, 80))
		}
	}
	return nil
}

func runStatsRate(cmd *cobra.Command, args []string) error {
	rating, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("rating must be a number 1-5")
	}

	a, cleanup, err := openApp()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := a.store.RateConversation(cmd.Context(), args[0], rating); err != nil {
		return err
	}
	fmt.Printf("Rated %s as %d/5.\n", args[0], rating)
	return nil
}

// oneLine flattens and truncates text for list output.
func oneLine(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > max {
		return s[:max-3] + "..."
	}
	return s
}
