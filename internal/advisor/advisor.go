// Package advisor orchestrates the answer pipeline: classification,
// the rules engines, the AI fallback with rate limiting, and the
// conversation log. It is the only package that decides which engine
// answers a question.
package advisor

import (
	"context"

	"frostadvisor/internal/analyzer"
	"frostadvisor/internal/catalog"
	"frostadvisor/internal/config"
	"frostadvisor/internal/lineup"
	"frostadvisor/internal/llm"
	"frostadvisor/internal/ratelimit"
	"frostadvisor/internal/types"
)

// ConversationLog receives one record per answered question. Logging is
// best-effort; a log failure never fails the answer.
type ConversationLog interface {
	AppendConversation(ctx context.Context, rec types.ConversationRecord) error
}

// RateLimiter gates the AI path.
type RateLimiter interface {
	Reserve(ctx context.Context, userID string) (ratelimit.Decision, error)
	Refund(ctx context.Context, userID string) error
}

// Advisor wires the engines together.
type Advisor struct {
	catalog  *catalog.Catalog
	heroes   *analyzer.HeroAnalyzer
	gear     *analyzer.GearAdvisor
	progress *analyzer.ProgressionTracker
	lineups  *lineup.Builder

	llm     llm.Client
	limiter RateLimiter
	log     ConversationLog
}

// New builds an advisor. llmClient may be nil when no provider is
// configured; AI questions then degrade to the not-configured message.
func New(c *catalog.Catalog, llmClient llm.Client, limiter RateLimiter, log ConversationLog) *Advisor {
	return &Advisor{
		catalog:  c,
		heroes:   analyzer.NewHeroAnalyzer(c),
		gear:     analyzer.NewGearAdvisor(),
		progress: analyzer.NewProgressionTracker(),
		lineups:  lineup.NewBuilder(c),
		llm:      llmClient,
		limiter:  limiter,
		log:      log,
	}
}

// NewFromConfig builds the default production wiring.
func NewFromConfig(cfg *config.Config, c *catalog.Catalog, limiter RateLimiter, log ConversationLog) (*Advisor, error) {
	client, err := llm.NewFallbackClient(cfg, cfg.AI)
	if err != nil {
		return nil, err
	}
	return New(c, client, limiter, log), nil
}
