package analyzer

import (
	"testing"

	"frostadvisor/internal/types"
)

func TestParseFcLevel(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"FC3-2", 3},
		{"FC5", 5},
		{"fc1-4", 1},
		{" FC10-1 ", 10},
		{"", 0},
		{"30", 0},
		{"FC", 0},
		{"FCX-2", 0},
	}
	for _, tt := range tests {
		if got := ParseFcLevel(tt.in); got != tt.want {
			t.Errorf("ParseFcLevel(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestPhaseBoundaries(t *testing.T) {
	tracker := NewProgressionTracker()

	tests := []struct {
		name    string
		furnace int
		fc      string
		want    string
	}{
		{"fresh account", 5, "", "early"},
		{"furnace 18", 18, "", "early"},
		{"furnace 19", 19, "", "mid"},
		{"furnace 29", 29, "", "mid"},
		{"furnace 30", 30, "", "late"},
		{"fc1 overrides furnace", 30, "FC1-1", "fc_early"},
		{"fc4 still early fc", 30, "FC4-3", "fc_early"},
		{"fc5 is end game", 30, "FC5-1", "fc_late"},
		{"fc9", 30, "FC9-2", "fc_late"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := types.Profile{FurnaceLevel: tt.furnace, FurnaceFcLevel: tt.fc}
			info := tracker.PhaseInfo(p)
			if info.PhaseID != tt.want {
				t.Errorf("phase = %s, want %s", info.PhaseID, tt.want)
			}
			if info.NextMilestone == "" || len(info.FocusAreas) == 0 {
				t.Errorf("phase %s missing milestone or focus areas", info.PhaseID)
			}
		})
	}
}

func TestProgressionAnalyzeEmitsMilestoneAndFocus(t *testing.T) {
	tracker := NewProgressionTracker()
	p := types.Profile{FurnaceLevel: 22}

	recs := tracker.Analyze(p)
	if len(recs) == 0 {
		t.Fatal("expected recommendations")
	}
	if recs[0].RuleID != "phase_milestone_mid" || recs[0].Priority != 2 {
		t.Errorf("first rec = %+v, want phase_milestone_mid at priority 2", recs[0])
	}
	for _, r := range recs[1:] {
		if r.Priority != 3 || r.Category != types.CategoryProgression {
			t.Errorf("focus rec %+v should be priority 3 progression", r)
		}
	}
}
