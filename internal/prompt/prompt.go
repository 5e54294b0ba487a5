// Package prompt renders portfolio state as markdown analysis prompts. The
// output is meant to be pasted into a chat assistant by hand, or fed to the
// advisor when automatic analysis is on.
package prompt

import (
	"fmt"
	"strings"
	"time"

	"venturedeck/internal/domain"
)

const dayLayout = "2006-01-02"

// PortfolioInput is everything the weekly analysis prompt mentions.
type PortfolioInput struct {
	Phase     domain.CyclePhase
	Summaries []domain.ProjectSummary
	// Rejected carries recently declined proposals so the reader does not
	// repeat advice the user already turned down.
	Rejected []RejectedDecision
	Today    time.Time
	// JSONFormat asks for a machine-parseable response instead of prose.
	JSONFormat bool
}

type RejectedDecision struct {
	ProjectName string
	Kind        domain.DecisionKind
	Reason      string
	Date        time.Time
}

// Portfolio renders the full weekly analysis prompt.
func Portfolio(in PortfolioInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# 90-DAY PORTFOLIO ANALYSIS - %s\n\n", in.Today.Format(dayLayout))
	b.WriteString("## CYCLE CONTEXT\n")
	fmt.Fprintf(&b, "- Current day: %d/%d\n", in.Phase.Day, domain.CycleLength)
	fmt.Fprintf(&b, "- Phase: %s\n", in.Phase.Name)
	fmt.Fprintf(&b, "- Days remaining: %d\n", in.Phase.DaysRemaining)
	fmt.Fprintf(&b, "- Cycle started: %s\n\n", in.Phase.StartedAt.Format(dayLayout))

	if len(in.Rejected) > 0 {
		b.WriteString("## STRATEGIC CONTEXT: RECENTLY REJECTED PROPOSALS\n")
		b.WriteString("IMPORTANT: the user already declined these. Do not repeat the same proposal unless the metrics changed drastically.\n\n")
		for _, r := range in.Rejected {
			fmt.Fprintf(&b, "- **%s**: %s proposal rejected.\n", r.ProjectName, strings.ToUpper(string(r.Kind)))
			fmt.Fprintf(&b, "  - Rejection reason: %s\n", r.Reason)
			fmt.Fprintf(&b, "  - Date: %s\n", r.Date.Format(dayLayout))
		}
		b.WriteString("\n")
	}

	b.WriteString("### Suggested tasks for this phase:\n")
	for i, task := range in.Phase.SuggestedTasks {
		fmt.Fprintf(&b, "%d. %s\n", i+1, task)
	}

	b.WriteString("\n---\n\n## REGISTERED PROJECTS\n\n")
	if len(in.Summaries) == 0 {
		b.WriteString("_No projects registered yet._\n\n")
	}
	for i, s := range in.Summaries {
		p := s.Project
		fmt.Fprintf(&b, "### %d. %s\n\n", i+1, p.Name)
		fmt.Fprintf(&b, "- **Hypothesis**: %s\n", p.Hypothesis)
		fmt.Fprintf(&b, "- **State**: `%s`\n", p.State)
		fmt.Fprintf(&b, "- **Started**: %s\n", p.StartedAt.Format(dayLayout))
		b.WriteString("- **Consolidated metrics**:\n")
		fmt.Fprintf(&b, "  - Total revenue: $%.2f\n", s.TotalRevenue)
		fmt.Fprintf(&b, "  - Hours invested: %.1f\n", s.TotalHours)
		if roi, ok := s.ROIPerHour(); ok {
			fmt.Fprintf(&b, "  - ROI: $%.2f/hour\n", roi)
		} else {
			b.WriteString("  - ROI: undefined (no hours logged)\n")
		}
		fmt.Fprintf(&b, "  - Total conversions: %d\n", s.Conversions)
		fmt.Fprintf(&b, "  - Metric entries: %d\n", s.MetricCount)
		if s.LastMetricDay.IsZero() {
			b.WriteString("  - WARNING: no metrics recorded\n")
		} else {
			fmt.Fprintf(&b, "  - Last activity: %s\n", s.LastMetricDay.Format(dayLayout))
		}
		b.WriteString("\n")
	}

	if in.JSONFormat {
		b.WriteString(portfolioJSONInstructions)
	} else {
		b.WriteString(portfolioProseInstructions)
	}
	return b.String()
}

// Project renders a deep-dive prompt for a single project, metric history
// included.
func Project(s domain.ProjectSummary, metrics []domain.Metric) string {
	var b strings.Builder
	p := s.Project

	fmt.Fprintf(&b, "# DEEP DIVE: %s\n\n", p.Name)
	b.WriteString("## PROJECT\n\n")
	fmt.Fprintf(&b, "- **Original hypothesis**: %s\n", p.Hypothesis)
	fmt.Fprintf(&b, "- **Started**: %s\n", p.StartedAt.Format(dayLayout))
	fmt.Fprintf(&b, "- **Current state**: `%s`\n\n", p.State)

	b.WriteString("## CONSOLIDATED METRICS\n\n")
	fmt.Fprintf(&b, "- **Total revenue**: $%.2f\n", s.TotalRevenue)
	fmt.Fprintf(&b, "- **Hours invested**: %.1f\n", s.TotalHours)
	if roi, ok := s.ROIPerHour(); ok {
		fmt.Fprintf(&b, "- **ROI**: $%.2f/hour\n", roi)
	} else {
		b.WriteString("- **ROI**: undefined (no hours logged)\n")
	}
	fmt.Fprintf(&b, "- **Total conversions**: %d\n", s.Conversions)
	fmt.Fprintf(&b, "- **Metric entries**: %d\n\n", s.MetricCount)

	b.WriteString("## METRIC HISTORY\n\n")
	if len(metrics) == 0 {
		b.WriteString("_No metrics recorded for this project._\n\n")
	} else {
		b.WriteString("| Day | Revenue | Hours | Conversions | Notes |\n")
		b.WriteString("|-----|---------|-------|-------------|-------|\n")
		for _, m := range metrics {
			note := m.FrictionNote
			if note == "" {
				note = "-"
			}
			fmt.Fprintf(&b, "| %s | $%.2f | %.1f | %d | %s |\n",
				m.Day.Format(dayLayout), m.Revenue, m.Hours, m.Conversions, note)
		}
		b.WriteString("\n")
	}

	b.WriteString(projectInstructions)
	return b.String()
}

const portfolioJSONInstructions = `---

## ANALYSIS TASK (MACHINE FORMAT)

Act as the portfolio's strategic analyst. Analyze the data above and respond STRICTLY as JSON.

EXPECTED JSON SHAPE:
{
  "executive_summary": "Short read of the current situation",
  "projects": [
    {
      "id": [numeric id],
      "name": "[name]",
      "decision": "kill|iterate|scale",
      "justification": "Grounded in the metrics",
      "actions": ["action 1", "action 2"],
      "risks": ["risk 1"]
    }
  ],
  "portfolio_risks": ["global risk 1"]
}

IMPORTANT: respond with the JSON object only. No text before or after.
`

const portfolioProseInstructions = `---

## ANALYSIS TASK

Act as a **strategic analyst** for a 90-day experiment portfolio.

### Your job:

1. **Judge each project** on objective metrics, not intuition
2. **Classify** each as:
   - **KILL**: cancel without remorse
   - **ITERATE**: adjust the hypothesis and keep experimenting
   - **SCALE**: double down
3. **Justify** every call with specific numbers
4. **Flag risks**: dangerous dependencies, inflated vanity metrics, usage that is only friends and the curious, missing critical data
5. **Propose concrete actions** for the coming week

### Hard rules:

- Base decisions on real metrics
- Call out missing critical data
- Prioritize decision speed
- Do NOT invent metrics
- Do NOT assume validation without evidence
- Do NOT propose "give it more time" without a concrete threshold
- No motivational talk

**IMPORTANT**: be brutally honest. The goal is deciding better and faster, not feeling busy.
`

const projectInstructions = `---

## ANALYSIS TASK

Analyze this project in depth.

### Key questions:

1. **Hypothesis validation**: do the numbers confirm or refute the original hypothesis?
2. **Real traction**: genuine demand or just curiosity?
3. **Trend**: are metrics improving, worsening, or flat?
4. **Efficiency**: does the ROI justify more hours?
5. **Risks**: which dangerous dependencies exist?

### Your analysis must include:

- **Decision**: KILL | ITERATE | SCALE
- **Justification**: grounded in the history above
- **Concrete actions**: what to do in the next 7 days
- **Metrics to watch**: what to measure for the next decision
- **Decision threshold**: which number or event would trigger kill or scale
`
