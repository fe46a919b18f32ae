package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"frostadvisor/internal/advisor"
	"frostadvisor/internal/catalog"
	"frostadvisor/internal/config"
	"frostadvisor/internal/logging"
	"frostadvisor/internal/ratelimit"
	"frostadvisor/internal/store"
)

var (
	// Global flags
	verbose   bool
	workspace string
	userID    string
	profileID string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "frostadvisor",
	Short: "frostadvisor - personal strategy advisor for Whiteout Survival",
	Long: `frostadvisor answers upgrade, lineup, and progression questions for a
Whiteout Survival player profile.

Deterministic rules answer the common questions instantly and for free;
an optional AI provider handles open-ended ones, rate limited per user.
Every exchange lands in a local conversation log.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if err := logging.Initialize(workspace); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// app bundles the wired components a command needs.
type app struct {
	cfg     *config.Config
	catalog *catalog.Catalog
	store   *store.Store
	limiter *ratelimit.Limiter
	advisor *advisor.Advisor
}

// openApp wires config, catalog, store, limiter, and advisor. The
// returned cleanup closes the store.
func openApp() (*app, func(), error) {
	cfgPath := config.DefaultConfigPath(workspace)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}

	cat, err := catalog.Load(cfg.Catalog.HeroesPath, cfg.Catalog.LineupsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load catalog: %w", err)
	}

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	cleanup := func() { _ = st.Close() }

	limiter := ratelimit.New(st, config.StaticSettings{Value: cfg.AI})
	adv, err := advisor.NewFromConfig(cfg, cat, limiter, st)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return &app{cfg: cfg, catalog: cat, store: st, limiter: limiter, advisor: adv}, cleanup, nil
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", ".", "workspace directory holding .frostadvisor/")
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "default", "user id")
	rootCmd.PersistentFlags().StringVarP(&profileID, "profile", "p", "default", "profile id")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(lineupCmd)
	rootCmd.AddCommand(joinerCmd)
	rootCmd.AddCommand(phaseCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(statsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
