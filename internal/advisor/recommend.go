package advisor

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"frostadvisor/internal/logging"
	"frostadvisor/internal/types"
)

// DefaultRecommendationLimit caps the merged list when the caller does
// not say otherwise.
const DefaultRecommendationLimit = 10

// Recommend runs the hero, gear, and progression analyzers in parallel
// and merges their output: sorted by priority, stable within a
// priority, deduplicated by rule ID, capped at limit (<=0 means the
// default). The rules path cannot fail; the error return exists for
// context cancellation only.
func (a *Advisor) Recommend(ctx context.Context, profile types.Profile, owned []types.OwnedHero, gear types.ChiefGear, limit int) ([]types.Recommendation, error) {
	timer := logging.StartTimer(logging.CategoryAdvisor, "Advisor.Recommend")
	defer timer.Stop()

	if limit <= 0 {
		limit = DefaultRecommendationLimit
	}

	var heroRecs, gearRecs, progressRecs []types.Recommendation
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		heroRecs = a.heroes.Analyze(profile, owned)
		return ctx.Err()
	})
	g.Go(func() error {
		gearRecs = a.gear.Analyze(profile, owned, gear)
		return ctx.Err()
	})
	g.Go(func() error {
		progressRecs = a.progress.Analyze(profile)
		return ctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := mergeRecommendations(heroRecs, gearRecs, progressRecs)
	if len(merged) > limit {
		merged = merged[:limit]
	}
	logging.AdvisorDebug("recommend: %d hero + %d gear + %d progression -> %d merged",
		len(heroRecs), len(gearRecs), len(progressRecs), len(merged))
	return merged, nil
}

// mergeRecommendations concatenates the analyzer outputs in a fixed
// order, stable-sorts by priority, and drops duplicates. The dedupe key
// is rule ID plus target hero, so per-hero rules survive while the same
// rule firing twice for the same hero collapses. Recommendations
// without a rule ID fall back to their action text, case-insensitively.
func mergeRecommendations(lists ...[]types.Recommendation) []types.Recommendation {
	var all []types.Recommendation
	for _, list := range lists {
		all = append(all, list...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Priority < all[j].Priority
	})

	seen := make(map[string]bool, len(all))
	out := all[:0]
	for _, rec := range all {
		key := rec.RuleID + "|" + strings.ToLower(rec.Hero)
		if rec.RuleID == "" {
			key = "action:" + strings.ToLower(rec.Action)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, rec)
	}
	return out
}
