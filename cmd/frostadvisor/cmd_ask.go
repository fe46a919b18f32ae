package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"frostadvisor/internal/advisor"
	"frostadvisor/internal/types"
)

var forceAI bool

// askCmd answers a free-text question.
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the advisor a question",
	Long: `Answers a free-text question about your heroes, gear, lineups, or
progression. Rules answer what they can; open-ended questions go to the
configured AI provider inside your daily limit.

Example:
  frostadvisor ask "what hero for bear trap?"
  frostadvisor ask --force-ai "compare my bear trap options"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&forceAI, "force-ai", false, "skip the rules engine and ask the AI directly")
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	a, cleanup, err := openApp()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	profile, owned, gear := loadPlayerContext(ctx, a)

	ans, err := a.advisor.Ask(ctx, advisor.AskRequest{
		UserID:   userID,
		Profile:  profile,
		Owned:    owned,
		Gear:     gear,
		Question: question,
		ForceAI:  forceAI,
	})
	if err != nil {
		return err
	}

	logger.Debug("answered question",
		zap.String("source", string(ans.Source)),
		zap.String("category", ans.Category),
		zap.String("conversation_id", ans.ConversationID))

	fmt.Printf("[%s/%s]\n%s\n", ans.Source, ans.Category, ans.Text)
	return nil
}

// loadPlayerContext loads the profile, roster, and chief gear, falling
// back to an empty default profile for first-run users.
func loadPlayerContext(ctx context.Context, a *app) (types.Profile, []types.OwnedHero, types.ChiefGear) {
	_ = a.store.CreateUser(ctx, types.User{ID: userID, Role: types.RoleUser})

	profile, err := a.store.GetProfile(ctx, profileID)
	if err != nil {
		profile = types.Profile{
			ID:              profileID,
			SpendingProfile: types.SpendingF2P,
			AllianceRole:    types.RoleCasual,
			Priorities:      types.Priorities{SvS: 3, Rally: 3, Castle: 3, Exploration: 3, Gathering: 3},
		}
	}
	owned, err := a.store.GetOwnedHeroes(ctx, profileID)
	if err != nil {
		owned = nil
	}
	gear, err := a.store.GetChiefGear(ctx, profileID)
	if err != nil {
		gear = types.ChiefGear{}
	}
	return profile, owned, gear
}
