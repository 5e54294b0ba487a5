package domain

import "time"

// CycleLength is the fixed methodology window, in days.
const CycleLength = 90

var phaseTasks = map[string][]string{
	"exploration": {
		"Write a falsifiable hypothesis for every new idea",
		"Design the cheapest possible validation experiment",
		"Define the minimum metric that counts as success",
		"Survey competitors and existing demand",
	},
	"experimentation": {
		"Ship working MVPs",
		"Measure real conversions, not visits",
		"Record usable friction notes daily",
		"Iterate fast on what the data says",
	},
	"decision": {
		"Classify every project: kill, iterate, or scale",
		"Justify each decision with recorded metrics",
		"Kill projects without traction, without remorse",
		"Double down on winners",
	},
	"consolidation": {
		"Cut unnecessary public exposure",
		"Improve onboarding of paying users",
		"Reduce manual support work",
		"Strengthen the winner's moat",
	},
}

// PhaseFor computes the cycle phase for a given moment. Day is 1-indexed;
// the boundaries (14/45/75) come from the 90-day methodology.
func PhaseFor(cycleStart, now time.Time) CyclePhase {
	day := int(now.Sub(cycleStart).Hours()/24) + 1
	if day < 1 {
		day = 1
	}

	var name string
	switch {
	case day <= 14:
		name = "exploration"
	case day <= 45:
		name = "experimentation"
	case day <= 75:
		name = "decision"
	default:
		name = "consolidation"
	}

	remaining := CycleLength - day
	if remaining < 0 {
		remaining = 0
	}

	return CyclePhase{
		Name:           name,
		Day:            day,
		DaysRemaining:  remaining,
		StartedAt:      cycleStart,
		EndsAt:         cycleStart.AddDate(0, 0, CycleLength),
		SuggestedTasks: phaseTasks[name],
	}
}
