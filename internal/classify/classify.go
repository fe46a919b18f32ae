// Package classify routes a free-text question to an answer engine and
// a topic category. Classification is pure keyword matching: the same
// question always classifies the same way, with no model in the loop.
package classify

import (
	"strings"

	"frostadvisor/internal/logging"
)

// EngineType selects which answer path handles a question.
type EngineType string

const (
	EngineRules  EngineType = "rules"
	EngineAI     EngineType = "ai"
	EngineHybrid EngineType = "hybrid"
)

// Question categories. CategoryOther routes straight to AI.
const (
	CategoryLineup      = "lineup"
	CategoryJoinerHero  = "joiner_heroes"
	CategoryUpgrade     = "upgrade"
	CategorySkills      = "skills"
	CategoryInvest      = "invest"
	CategoryGear        = "gear"
	CategoryPhase       = "phase"
	CategoryProgression = "progression"
	CategoryPriority    = "priority"
	CategoryOther       = "other"
)

// Classification is the routing decision for one question.
type Classification struct {
	Type       EngineType `json:"type"`
	Category   string     `json:"category"`
	Confidence float64    `json:"confidence"`
}

// categoryRule maps keywords to a category and its default engine.
// First match wins; order encodes specificity (joiner before lineup,
// skills before upgrade).
var categoryRules = []struct {
	category string
	engine   EngineType
	keywords []string
}{
	{CategoryJoinerHero, EngineRules, []string{"join", "joiner", "reinforce", "which hero do i send"}},
	{CategoryLineup, EngineRules, []string{"lineup", "formation", "bear trap", "bear", "rally", "garrison", "crazy joe", "svs field", "march setup", "what hero for"}},
	{CategorySkills, EngineRules, []string{"skill", "expedition", "exploration"}},
	{CategoryGear, EngineRules, []string{"gear", "ring", "amulet", "helmet", "armor", "gloves", "boots", "charm"}},
	{CategoryInvest, EngineHybrid, []string{"invest", "spend", "worth it", "worth buying", "shards", "resources into"}},
	{CategoryUpgrade, EngineRules, []string{"upgrade", "level up", "ascend", "star", "promote", "improve my hero"}},
	{CategoryPhase, EngineRules, []string{"phase", "stage of the game", "early game", "mid game", "late game", "end game"}},
	{CategoryProgression, EngineRules, []string{"progress", "furnace", "fire crystal", "next milestone", "stuck", "what should i do next"}},
	{CategoryPriority, EngineHybrid, []string{"priorit", "first", "focus on", "most important", "order should"}},
}

// reasoningMarkers flag questions that want an explanation rather than
// a lookup; those go hybrid even inside a rules category.
var reasoningMarkers = []string{"why", "compare", "versus", " vs ", "explain", "better than", "difference between"}

// longQuestionChars is the length past which a question is assumed to
// carry context the rules engine cannot use.
const longQuestionChars = 120

// Classify routes a question. It never fails; unmatchable questions
// land in CategoryOther with the AI engine at low confidence.
func Classify(question string) Classification {
	q := normalize(question)
	if q == "" {
		return Classification{Type: EngineRules, Category: CategoryOther, Confidence: 0.2}
	}

	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if !strings.Contains(q, kw) {
				continue
			}
			c := Classification{Type: rule.engine, Category: rule.category, Confidence: 0.9}
			if hasReasoningMarker(q) {
				c.Type = EngineHybrid
				c.Confidence = 0.7
			}
			logging.Routing("classified %q as %s/%s", question, c.Type, c.Category)
			return c
		}
	}

	logging.Routing("no category match for %q, routing to ai", question)
	return Classification{Type: EngineAI, Category: CategoryOther, Confidence: 0.4}
}

// NeedsAIFallback reports whether a rules answer should be escalated to
// the AI path: the rules produced nothing, the question is long enough
// to carry unusable context, or it asks for reasoning.
func NeedsAIFallback(question string, rulesEmpty bool) bool {
	if rulesEmpty {
		return true
	}
	q := normalize(question)
	if len(q) > longQuestionChars {
		return true
	}
	return hasReasoningMarker(q)
}

func hasReasoningMarker(q string) bool {
	for _, m := range reasoningMarkers {
		if strings.Contains(q, m) {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
