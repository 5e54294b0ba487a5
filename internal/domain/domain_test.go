package domain

import (
	"testing"
	"time"
)

func TestProjectStateValidity(t *testing.T) {
	for _, s := range []ProjectState{StateIdea, StateMVP, StateActive, StatePaused, StateKilled, StateWinner} {
		if !s.IsValid() {
			t.Fatalf("expected %s to be valid", s)
		}
	}
	if ProjectState("archived").IsValid() {
		t.Fatal("expected unknown state to be invalid")
	}
}

func TestAnalyzableStates(t *testing.T) {
	cases := map[ProjectState]bool{
		StateIdea:   true,
		StateMVP:    true,
		StateActive: true,
		StatePaused: false,
		StateKilled: false,
		StateWinner: false,
	}
	for state, want := range cases {
		if got := state.Analyzable(); got != want {
			t.Fatalf("state %s: expected analyzable=%v, got %v", state, want, got)
		}
	}
}

func TestROIPerHourGuardsZeroHours(t *testing.T) {
	s := ProjectSummary{TotalRevenue: 120, TotalHours: 0}
	if _, ok := s.ROIPerHour(); ok {
		t.Fatal("expected ok=false with zero hours")
	}

	s.TotalHours = 8
	roi, ok := s.ROIPerHour()
	if !ok || roi != 15 {
		t.Fatalf("expected roi 15, got %v (ok=%v)", roi, ok)
	}
}

func TestPhaseForBoundaries(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		day  int
		name string
	}{
		{1, "exploration"},
		{14, "exploration"},
		{15, "experimentation"},
		{45, "experimentation"},
		{46, "decision"},
		{75, "decision"},
		{76, "consolidation"},
		{90, "consolidation"},
	}
	for _, c := range cases {
		now := start.AddDate(0, 0, c.day-1)
		phase := PhaseFor(start, now)
		if phase.Day != c.day {
			t.Fatalf("day %d: computed day %d", c.day, phase.Day)
		}
		if phase.Name != c.name {
			t.Fatalf("day %d: expected phase %s, got %s", c.day, c.name, phase.Name)
		}
		if len(phase.SuggestedTasks) == 0 {
			t.Fatalf("day %d: expected suggested tasks", c.day)
		}
	}
}

func TestPhaseForClampsBeforeStartAndAfterEnd(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	early := PhaseFor(start, start.AddDate(0, 0, -3))
	if early.Day != 1 {
		t.Fatalf("expected day clamped to 1, got %d", early.Day)
	}

	late := PhaseFor(start, start.AddDate(0, 0, 200))
	if late.DaysRemaining != 0 {
		t.Fatalf("expected 0 days remaining past cycle end, got %d", late.DaysRemaining)
	}
	if late.Name != "consolidation" {
		t.Fatalf("expected consolidation past cycle end, got %s", late.Name)
	}
}
