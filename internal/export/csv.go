// Package export renders portfolio data as CSV for spreadsheets and backups.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"venturedeck/internal/domain"
)

const dayLayout = "2006-01-02"

// WriteMetrics streams one project's daily metrics, oldest first.
func WriteMetrics(w io.Writer, project domain.Project, metrics []domain.Metric) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"project", "day", "revenue", "hours", "conversions", "traffic_source", "friction_note"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := len(metrics) - 1; i >= 0; i-- {
		m := metrics[i]
		record := []string{
			project.Name,
			m.Day.Format(dayLayout),
			formatFloat(m.Revenue),
			formatFloat(m.Hours),
			strconv.Itoa(m.Conversions),
			m.TrafficSource,
			m.FrictionNote,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write metric row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePortfolio streams one row per project with its aggregates.
func WritePortfolio(w io.Writer, summaries []domain.ProjectSummary) error {
	cw := csv.NewWriter(w)
	header := []string{"project", "state", "started_at", "total_revenue", "total_hours", "roi_per_hour", "conversions", "metric_days", "kill_reason"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, s := range summaries {
		roi := ""
		if v, ok := s.ROIPerHour(); ok {
			roi = formatFloat(v)
		}
		record := []string{
			s.Project.Name,
			string(s.Project.State),
			s.Project.StartedAt.Format(dayLayout),
			formatFloat(s.TotalRevenue),
			formatFloat(s.TotalHours),
			roi,
			strconv.Itoa(s.Conversions),
			strconv.Itoa(s.MetricCount),
			s.Project.KillReason,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write portfolio row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
