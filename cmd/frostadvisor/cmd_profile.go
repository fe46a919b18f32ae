package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"frostadvisor/internal/types"
)

var profileLimitClear bool

// profileCmd manages the player profile, roster, and chief gear.
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage your player profile and roster",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored profile, roster, and chief gear",
	RunE:  runProfileShow,
}

var profileImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Import a profile snapshot from JSON",
	Long: `Imports a JSON snapshot with up to three top-level keys:

  profile     the progression and preference fields
  heroes      the full roster (replaces the stored one)
  chief_gear  quality per chief gear slot

Keys that are absent leave the stored data untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runProfileImport,
}

var profileSetLimitCmd = &cobra.Command{
	Use:   "set-limit <n>",
	Short: "Set this user's daily AI request limit",
	Long: `Overrides the plan default for the current user (-u). Use --clear to
drop the override and fall back to the plan default.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProfileSetLimit,
}

func init() {
	profileSetLimitCmd.Flags().BoolVar(&profileLimitClear, "clear", false, "remove the per-user override")
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileImportCmd)
	profileCmd.AddCommand(profileSetLimitCmd)
}

// profileSnapshot is the import file layout. Pointer fields distinguish
// "absent" from "present but empty".
type profileSnapshot struct {
	Profile   *types.Profile    `json:"profile,omitempty"`
	Heroes    []types.OwnedHero `json:"heroes,omitempty"`
	ChiefGear *types.ChiefGear  `json:"chief_gear,omitempty"`
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	a, cleanup, err := openApp()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	profile, owned, gear := loadPlayerContext(ctx, a)

	fmt.Printf("Profile %s\n", profile.ID)
	fmt.Printf("  Server age: %d days  Furnace: %d", profile.ServerAgeDays, profile.FurnaceLevel)
	if profile.FurnaceFcLevel != "" {
		fmt.Printf(" (%s)", profile.FurnaceFcLevel)
	}
	fmt.Println()
	fmt.Printf("  Spending: %s  Role: %s\n", profile.SpendingProfile, profile.AllianceRole)
	fmt.Printf("  Priorities: svs=%d rally=%d castle=%d exploration=%d gathering=%d\n",
		profile.Priorities.SvS, profile.Priorities.Rally, profile.Priorities.Castle,
		profile.Priorities.Exploration, profile.Priorities.Gathering)
	if profile.IsFarmAccount {
		fmt.Printf("  Farm account for %s\n", profile.LinkedMainProfileID)
	}

	if len(owned) == 0 {
		fmt.Println("Roster: empty")
	} else {
		fmt.Printf("Roster (%d heroes):\n", len(owned))
		for _, h := range owned {
			line := fmt.Sprintf("  %s Lv%d %d*", h.Name, h.Level, h.Stars)
			if h.Ascension > 0 {
				line += fmt.Sprintf(" asc %d", h.Ascension)
			}
			if h.HasHeroGear {
				line += " [hero gear]"
			}
			fmt.Println(line)
		}
	}

	if gear.IsEmpty() {
		fmt.Println("Chief gear: none recorded")
	} else {
		names := []string{
			types.ChiefSlotRing, types.ChiefSlotAmulet, types.ChiefSlotHelmet,
			types.ChiefSlotArmor, types.ChiefSlotGloves, types.ChiefSlotBoots,
		}
		parts := make([]string, 0, len(names))
		for _, n := range names {
			parts = append(parts, fmt.Sprintf("%s=%s", n, gearQualityName(gear.Slot(n))))
		}
		fmt.Println("Chief gear:", strings.Join(parts, " "))
	}
	return nil
}

func runProfileImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	var snap profileSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parse snapshot: %w", err)
	}

	a, cleanup, err := openApp()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	if err := a.store.CreateUser(ctx, types.User{ID: userID, Role: types.RoleUser}); err != nil {
		return err
	}

	if snap.Profile != nil {
		p := *snap.Profile
		p.ID = profileID
		if p.SpendingProfile == "" {
			p.SpendingProfile = types.SpendingF2P
		}
		if p.AllianceRole == "" {
			p.AllianceRole = types.RoleCasual
		}
		if err := a.store.SaveProfile(ctx, userID, p); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		fmt.Println("Profile saved.")
	}
	if snap.Heroes != nil {
		if err := a.store.SaveOwnedHeroes(ctx, profileID, snap.Heroes); err != nil {
			return fmt.Errorf("save roster: %w", err)
		}
		fmt.Printf("Roster saved (%d heroes).\n", len(snap.Heroes))
	}
	if snap.ChiefGear != nil {
		if err := a.store.SaveChiefGear(ctx, profileID, *snap.ChiefGear); err != nil {
			return fmt.Errorf("save chief gear: %w", err)
		}
		fmt.Println("Chief gear saved.")
	}
	return nil
}

func runProfileSetLimit(cmd *cobra.Command, args []string) error {
	a, cleanup, err := openApp()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	if err := a.store.CreateUser(ctx, types.User{ID: userID, Role: types.RoleUser}); err != nil {
		return err
	}

	if profileLimitClear {
		if err := a.store.SetUserLimit(ctx, userID, nil); err != nil {
			return err
		}
		fmt.Printf("Limit override cleared for %s.\n", userID)
		return nil
	}
	if len(args) != 1 {
		return fmt.Errorf("provide a limit or --clear")
	}
	var n int
	if _, err := fmt.Sscanf(args[0], "%d", &n); err != nil || n < 0 {
		return fmt.Errorf("limit must be a non-negative integer")
	}
	if err := a.store.SetUserLimit(ctx, userID, &n); err != nil {
		return err
	}
	fmt.Printf("Daily AI limit for %s set to %d.\n", userID, n)
	return nil
}

func gearQualityName(q int) string {
	switch q {
	case types.GearQualityCommon:
		return "Common"
	case types.GearQualityUncommon:
		return "Uncommon"
	case types.GearQualityRare:
		return "Rare"
	case types.GearQualityEpic:
		return "Epic"
	case types.GearQualityLegendary:
		return "Legendary"
	case types.GearQualityMythic:
		return "Mythic"
	}
	return "none"
}
