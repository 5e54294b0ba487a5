package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"venturedeck/internal/domain"
	"venturedeck/internal/service"

	"github.com/charmbracelet/lipgloss"
)

// FormatCard renders one dashboard project card as a single line.
func FormatCard(c service.ProjectCard) string {
	roi := SubtextStyle.Render("     -")
	if c.ROIPerHour != nil {
		style := RevenueZeroStyle
		if *c.ROIPerHour > 0 {
			style = RevenueUpStyle
		} else if *c.ROIPerHour < 0 {
			style = RevenueDownStyle
		}
		roi = style.Render(fmt.Sprintf("%6.2f", *c.ROIPerHour))
	}

	alerts := SubtextStyle.Render("  -")
	if c.OpenAlerts > 0 {
		alerts = SeverityWarningStyle.Render(fmt.Sprintf("%3d", c.OpenAlerts))
	}

	return fmt.Sprintf("%-20s %s %8s %6.1fh %s/h %s",
		truncate(c.Project.Name, 20),
		stateStyle(c.Project.State).Render(fmt.Sprintf("%-7s", c.Project.State)),
		formatMoney(c.TotalRevenue),
		c.TotalHours,
		roi,
		alerts,
	)
}

// FormatAlert renders an alert as a single line.
func FormatAlert(a domain.Alert) string {
	style := SeverityInfoStyle
	switch a.Severity {
	case domain.SeverityWarning:
		style = SeverityWarningStyle
	case domain.SeverityCritical:
		style = SeverityCriticalStyle
	}

	return fmt.Sprintf("#%-4d %s %-20s %s",
		a.ID,
		style.Render(fmt.Sprintf("%-8s", strings.ToUpper(string(a.Severity)))),
		a.Kind,
		truncate(a.Message, 60),
	)
}

// FormatProjectRow renders a project list row.
func FormatProjectRow(p domain.Project) string {
	killNote := ""
	if p.State == domain.StateKilled && p.KillReason != "" {
		killNote = SubtextStyle.Render("  " + truncate(p.KillReason, 40))
	}
	return fmt.Sprintf("#%-4d %-20s %s %s%s",
		p.ID,
		truncate(p.Name, 20),
		stateStyle(p.State).Render(fmt.Sprintf("%-7s", p.State)),
		p.StartedAt.UTC().Format("2006-01-02"),
		killNote,
	)
}

// RenderCycleBar renders the 90-day cycle as a progress bar with the phase name.
func RenderCycleBar(phase *domain.CyclePhase, width int) string {
	if phase == nil {
		return SubtextStyle.Render("No 90-day cycle started. Set a start date to enable time-based rules.")
	}
	if width <= 0 {
		width = 30
	}

	progress := float64(phase.Day) / float64(domain.CycleLength)
	if progress > 1 {
		progress = 1
	}
	filled := int(math.Round(progress * float64(width)))
	if filled > width {
		filled = width
	}

	bar := CycleFilledStyle.Render(strings.Repeat("█", filled)) +
		CycleEmptyStyle.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("Day %d/%d  %s  %s (%d days left)",
		phase.Day, domain.CycleLength, bar, phase.Name, phase.DaysRemaining)
}

func stateStyle(s domain.ProjectState) lipgloss.Style {
	switch s {
	case domain.StateActive:
		return StateActiveStyle
	case domain.StateWinner:
		return StateWinnerStyle
	case domain.StateKilled:
		return StateKilledStyle
	default:
		return StateIdleStyle
	}
}

func formatMoney(v float64) string {
	if v >= 1000 || v <= -1000 {
		return fmt.Sprintf("%.0f€", v)
	}
	return fmt.Sprintf("%.2f€", v)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}

func formatAge(t time.Time, now time.Time) string {
	days := int(now.Sub(t).Hours() / 24)
	if days <= 0 {
		return "today"
	}
	if days == 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", days)
}
