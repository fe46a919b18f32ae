package classify

import (
	"strings"
	"testing"
)

func TestClassifyRouting(t *testing.T) {
	tests := []struct {
		question string
		engine   EngineType
		category string
	}{
		{"what hero for bear trap?", EngineRules, CategoryLineup},
		{"best garrison formation", EngineRules, CategoryLineup},
		{"which hero do I send when joining a rally?", EngineRules, CategoryJoinerHero},
		{"should I upgrade my expedition skill?", EngineRules, CategorySkills},
		{"is my chief ring worth upgrading before the amulet", EngineRules, CategoryGear},
		{"what should I invest my shards in", EngineHybrid, CategoryInvest},
		{"should I ascend Jeronimo or level him", EngineRules, CategoryUpgrade},
		{"am I still in the early game?", EngineRules, CategoryPhase},
		{"my furnace is stuck at 28, what now", EngineRules, CategoryProgression},
		{"what should my top priority be", EngineHybrid, CategoryPriority},
		{"tell me about the lore of the frozen city", EngineAI, CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			got := Classify(tt.question)
			if got.Type != tt.engine || got.Category != tt.category {
				t.Errorf("Classify(%q) = %s/%s, want %s/%s",
					tt.question, got.Type, got.Category, tt.engine, tt.category)
			}
			if got.Confidence <= 0 || got.Confidence > 1 {
				t.Errorf("confidence %v out of range", got.Confidence)
			}
		})
	}
}

func TestReasoningQuestionsGoHybrid(t *testing.T) {
	got := Classify("why is Jessie better than Jeronimo for rally joining?")
	if got.Type != EngineHybrid {
		t.Errorf("reasoning question routed to %s, want hybrid", got.Type)
	}
	if got.Category != CategoryJoinerHero {
		t.Errorf("category = %s, want joiner_heroes", got.Category)
	}
}

func TestClassifyIdempotent(t *testing.T) {
	q := "compare bear trap lineups for a gen 5 server"
	first := Classify(q)
	for i := 0; i < 5; i++ {
		if got := Classify(q); got != first {
			t.Fatalf("classification drifted: %+v vs %+v", got, first)
		}
	}
}

func TestClassifyEmptyQuestion(t *testing.T) {
	got := Classify("   ")
	if got.Category != CategoryOther {
		t.Errorf("empty question category = %s, want other", got.Category)
	}
}

func TestNeedsAIFallback(t *testing.T) {
	if !NeedsAIFallback("anything", true) {
		t.Error("empty rules output must always fall back")
	}
	if NeedsAIFallback("best bear trap lineup", false) {
		t.Error("short answerable question should stay on rules")
	}
	if !NeedsAIFallback("why does the garrison lineup prefer infantry leads", false) {
		t.Error("reasoning question should fall back")
	}
	long := strings.Repeat("my roster has many heroes and ", 6)
	if !NeedsAIFallback(long, false) {
		t.Error("long question should fall back")
	}
}
