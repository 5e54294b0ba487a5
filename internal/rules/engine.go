package rules

import (
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"venturedeck/internal/domain"
)

const (
	// roiGraceDays is how long a project runs before ROI judgement starts.
	roiGraceDays = 45
	// minMetricsForROI is the sample size below which ROI says nothing.
	minMetricsForROI = 3
	// GrowthWindowDays is the trailing window for monthly revenue buckets.
	GrowthWindowDays = 90
)

type Engine struct {
	now func() time.Time
}

func NewEngine(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}

// ProjectInputs is everything one project's evaluation reads. RevenueDays is
// the count of positive-revenue days inside the kill window; Months are the
// trailing calendar-month revenue buckets.
type ProjectInputs struct {
	Summary        domain.ProjectSummary
	Months         []domain.MonthRevenue
	RevenueDays    int
	LastRevenueDay *time.Time
	Thresholds     domain.Thresholds
}

type rule struct {
	name string
	eval func(ProjectInputs) (domain.Signal, bool)
}

// EvaluateProject runs every per-project rule in a fixed order. A panicking
// rule is logged and skipped; the remaining rules still run.
func (e *Engine) EvaluateProject(in ProjectInputs) []domain.Signal {
	if !in.Summary.Project.State.Analyzable() {
		return nil
	}

	checks := []rule{
		{name: "no_revenue", eval: e.detectNoRevenue},
		{name: "negative_roi", eval: e.detectNegativeROI},
		{name: "consistent_growth", eval: e.detectConsistentGrowth},
	}

	result := make([]domain.Signal, 0, len(checks))
	for _, c := range checks {
		signal, ok := e.runRule(c, in)
		if ok {
			result = append(result, signal)
		}
	}
	return result
}

func (e *Engine) runRule(c rule, in ProjectInputs) (signal domain.Signal, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("rule %s panicked on project %d: %v", c.name, in.Summary.Project.ID, r)
			signal, ok = domain.Signal{}, false
		}
	}()
	return c.eval(in)
}

// detectNoRevenue fires when the kill window holds zero positive-revenue
// days. It fires even for projects that never recorded a metric; silence is
// the worst signal of all. The headline evidence is the age of the last
// recorded metric, -1 when none exists; the last positive-revenue day is
// carried as extra evidence when there ever was one.
func (e *Engine) detectNoRevenue(in ProjectInputs) (domain.Signal, bool) {
	if in.RevenueDays > 0 {
		return domain.Signal{}, false
	}

	th := in.Thresholds
	s := in.Summary
	p := s.Project

	sinceMetric := -1.0
	message := fmt.Sprintf("%s has no metrics on record (kill threshold %d days)", p.Name, th.KillDays)
	if s.MetricCount > 0 && !s.LastMetricDay.IsZero() {
		sinceMetric = math.Floor(e.now().UTC().Sub(s.LastMetricDay.UTC()).Hours() / 24)
		message = fmt.Sprintf("%s has earned nothing in the last %d days; last metric %.0f days ago", p.Name, th.KillDays, sinceMetric)
	}

	evidence := map[string]float64{
		"days_since_last_metric": sinceMetric,
		"kill_days":              float64(th.KillDays),
	}
	if in.LastRevenueDay != nil {
		evidence["days_without_revenue"] = math.Floor(e.now().UTC().Sub(in.LastRevenueDay.UTC()).Hours() / 24)
	}

	return domain.Signal{
		ProjectID: p.ID,
		Kind:      domain.KindNoRevenue,
		Severity:  domain.SeverityCritical,
		Message:   message,
		Evidence:  evidence,
		Suggested: domain.SuggestKill,
	}, true
}

// detectNegativeROI compares revenue per worked hour against the estimated
// cost of an hour. It stays quiet during the grace period and turns into an
// insufficient-data signal when the sample cannot support a verdict.
func (e *Engine) detectNegativeROI(in ProjectInputs) (domain.Signal, bool) {
	s := in.Summary
	p := s.Project
	daysSinceStart := int(e.now().UTC().Sub(p.StartedAt.UTC()).Hours() / 24)
	if daysSinceStart <= roiGraceDays {
		return domain.Signal{}, false
	}

	if s.MetricCount < minMetricsForROI {
		return insufficientData(s, fmt.Sprintf("%s has only %d metric days, need %d for an ROI verdict", p.Name, s.MetricCount, minMetricsForROI)), true
	}

	roi, ok := s.ROIPerHour()
	if !ok {
		return insufficientData(s, fmt.Sprintf("%s has revenue but zero logged hours, ROI is undefined", p.Name)), true
	}

	cost := in.Thresholds.HourlyCost
	if roi >= cost {
		return domain.Signal{}, false
	}

	deficit := (cost - roi) * s.TotalHours
	return domain.Signal{
		ProjectID: p.ID,
		Kind:      domain.KindNegativeROI,
		Severity:  domain.SeverityWarning,
		Message:   fmt.Sprintf("%s returns %.2f per hour against an estimated cost of %.2f (deficit %.2f)", p.Name, roi, cost, deficit),
		Evidence: map[string]float64{
			"roi_per_hour": roi,
			"hourly_cost":  cost,
			"total_hours":  s.TotalHours,
			"deficit":      deficit,
		},
		Suggested: domain.SuggestKill,
	}, true
}

// detectConsistentGrowth fires when every month-over-month step in the
// trailing window grew and the average growth clears the threshold. Fewer
// than two months is a quiet skip; the ROI rule owns the explicit
// insufficient-data verdict for young projects.
func (e *Engine) detectConsistentGrowth(in ProjectInputs) (domain.Signal, bool) {
	months := sortedMonths(in.Months)
	if len(months) < 2 {
		return domain.Signal{}, false
	}

	var growths []float64
	for i := 1; i < len(months); i++ {
		prev := months[i-1].Revenue
		if prev <= 0 {
			return domain.Signal{}, false
		}
		growths = append(growths, (months[i].Revenue-prev)/prev)
	}

	var sum float64
	for _, g := range growths {
		if g <= 0 {
			return domain.Signal{}, false
		}
		sum += g
	}
	avg := sum / float64(len(growths))
	if avg < in.Thresholds.GrowthThreshold {
		return domain.Signal{}, false
	}

	p := in.Summary.Project
	latest := months[len(months)-1]
	return domain.Signal{
		ProjectID: p.ID,
		Kind:      domain.KindConsistentGrowth,
		Severity:  domain.SeverityInfo,
		Message:   fmt.Sprintf("%s grew every month, averaging %.0f%%; consider doubling down", p.Name, avg*100),
		Evidence: map[string]float64{
			"avg_growth":           avg,
			"positive_months":      float64(len(months)),
			"latest_month_revenue": latest.Revenue,
		},
		Suggested: domain.SuggestScale,
	}, true
}

// EvaluateConcentration flags projects whose share of portfolio revenue
// exceeds the concentration threshold. It looks only at active and winner
// projects; these signals are advisory and never persisted as alerts.
func (e *Engine) EvaluateConcentration(summaries []domain.ProjectSummary, th domain.Thresholds) []domain.Signal {
	var portfolio float64
	earners := make([]domain.ProjectSummary, 0, len(summaries))
	for _, s := range summaries {
		state := s.Project.State
		if state != domain.StateActive && state != domain.StateWinner {
			continue
		}
		if s.TotalRevenue <= 0 {
			continue
		}
		portfolio += s.TotalRevenue
		earners = append(earners, s)
	}
	if portfolio <= 0 {
		return nil
	}

	var result []domain.Signal
	for _, s := range earners {
		share := s.TotalRevenue / portfolio
		if share <= th.ShareThreshold {
			continue
		}
		result = append(result, domain.Signal{
			ProjectID: s.Project.ID,
			Kind:      domain.KindRevenueConcentration,
			Severity:  domain.SeverityWarning,
			Message:   fmt.Sprintf("%s holds %.0f%% of portfolio revenue; a single point of failure", s.Project.Name, share*100),
			Evidence: map[string]float64{
				"share":             share,
				"project_revenue":   s.TotalRevenue,
				"portfolio_revenue": portfolio,
			},
			Suggested: domain.SuggestContinue,
		})
	}
	return result
}

func insufficientData(s domain.ProjectSummary, message string) domain.Signal {
	return domain.Signal{
		ProjectID: s.Project.ID,
		Kind:      domain.KindInsufficientData,
		Severity:  domain.SeverityInfo,
		Message:   message,
		Evidence: map[string]float64{
			"metric_count": float64(s.MetricCount),
			"total_hours":  s.TotalHours,
		},
		Suggested: domain.SuggestContinue,
	}
}

func sortedMonths(in []domain.MonthRevenue) []domain.MonthRevenue {
	out := make([]domain.MonthRevenue, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}
