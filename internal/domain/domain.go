package domain

import (
	"errors"
	"time"
)

// ProjectState is the lifecycle state of an experiment.
type ProjectState string

const (
	StateIdea   ProjectState = "idea"
	StateMVP    ProjectState = "mvp"
	StateActive ProjectState = "active"
	StatePaused ProjectState = "paused"
	StateKilled ProjectState = "killed"
	StateWinner ProjectState = "winner"
)

// AnalyzableStates are the states the analysis engine iterates over.
var AnalyzableStates = []ProjectState{StateIdea, StateMVP, StateActive}

func (s ProjectState) IsValid() bool {
	switch s {
	case StateIdea, StateMVP, StateActive, StatePaused, StateKilled, StateWinner:
		return true
	}
	return false
}

// Analyzable reports whether the rule engine should evaluate projects in this state.
func (s ProjectState) Analyzable() bool {
	return s == StateIdea || s == StateMVP || s == StateActive
}

// Project is one business experiment inside a 90-day cycle.
// Invariant: State == killed exactly when KilledAt and KillReason are both set.
type Project struct {
	ID         int64        `json:"id"`
	Name       string       `json:"name"`
	Hypothesis string       `json:"hypothesis"`
	State      ProjectState `json:"state"`
	StartedAt  time.Time    `json:"started_at"`
	KilledAt   *time.Time   `json:"killed_at,omitempty"`
	KillReason string       `json:"kill_reason,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

// Metric is one manually-recorded day of data for a project.
// One row per project per day; revenue may be negative (refunds).
type Metric struct {
	ID            int64     `json:"id"`
	ProjectID     int64     `json:"project_id"`
	Day           time.Time `json:"day"`
	Revenue       float64   `json:"revenue"`
	Hours         float64   `json:"hours"`
	Conversions   int       `json:"conversions"`
	TrafficSource string    `json:"traffic_source,omitempty"`
	FrictionNote  string    `json:"friction_note,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// SignalKind tags the heuristic that produced a signal.
type SignalKind string

const (
	KindNoRevenue            SignalKind = "no_revenue"
	KindNegativeROI          SignalKind = "negative_roi"
	KindConsistentGrowth     SignalKind = "consistent_growth"
	KindRevenueConcentration SignalKind = "revenue_concentration"
	KindInsufficientData     SignalKind = "insufficient_data"
)

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// SuggestedDecision is the non-binding action a signal recommends.
type SuggestedDecision string

const (
	SuggestKill     SuggestedDecision = "kill"
	SuggestIterate  SuggestedDecision = "iterate"
	SuggestScale    SuggestedDecision = "scale"
	SuggestContinue SuggestedDecision = "continue"
)

// GlobalScope is the sentinel AnalyzeAll key for portfolio-wide signals.
const GlobalScope = "global"

// Signal is an advisory finding emitted by one rule. Evidence keys per kind:
//
//	no_revenue:            days_since_last_metric, kill_days (-1 when the
//	                       project never recorded a metric), plus
//	                       days_without_revenue when a revenue day ever existed
//	negative_roi:          roi_per_hour, hourly_cost, total_hours, deficit
//	consistent_growth:     avg_growth, positive_months, latest_month_revenue
//	revenue_concentration: share, project_revenue, portfolio_revenue
//	insufficient_data:     metric_count, total_hours
type Signal struct {
	ProjectID int64              `json:"project_id,omitempty"` // 0 for global scope
	Kind      SignalKind         `json:"kind"`
	Severity  Severity           `json:"severity"`
	Message   string             `json:"message"`
	Evidence  map[string]float64 `json:"evidence,omitempty"`
	Suggested SuggestedDecision  `json:"suggested_decision"`
}

// Alert is the persisted, user-facing projection of a signal.
type Alert struct {
	ID           int64      `json:"id"`
	ProjectID    int64      `json:"project_id"`
	Kind         SignalKind `json:"kind"`
	Severity     Severity   `json:"severity"`
	Message      string     `json:"message"`
	Resolved     bool       `json:"resolved"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
	AutoResolved bool       `json:"auto_resolved"`
	CreatedAt    time.Time  `json:"created_at"`
}

type DecisionKind string

const (
	DecisionKill    DecisionKind = "kill"
	DecisionIterate DecisionKind = "iterate"
	DecisionScale   DecisionKind = "scale"
	DecisionPause   DecisionKind = "pause"
)

func (d DecisionKind) IsValid() bool {
	switch d {
	case DecisionKill, DecisionIterate, DecisionScale, DecisionPause:
		return true
	}
	return false
}

type DecisionOrigin string

const (
	OriginHuman DecisionOrigin = "human"
	OriginAI    DecisionOrigin = "ai"
	OriginMixed DecisionOrigin = "mixed"
)

type DecisionOutcome string

const (
	OutcomeAccepted  DecisionOutcome = "accepted"
	OutcomeRejected  DecisionOutcome = "rejected"
	OutcomePostponed DecisionOutcome = "postponed"
)

// Decision is an append-only audit record of an action taken (or declined)
// on a project. Never mutated, deleted only via project cascade.
type Decision struct {
	ID              int64           `json:"id"`
	ProjectID       int64           `json:"project_id"`
	Kind            DecisionKind    `json:"kind"`
	Justification   string          `json:"justification"`
	Origin          DecisionOrigin  `json:"origin"`
	Outcome         DecisionOutcome `json:"outcome"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ProjectSummary carries the aggregates the rule engine reads. It is the one
// query contract the core requires of the metric store.
type ProjectSummary struct {
	Project       Project   `json:"project"`
	TotalRevenue  float64   `json:"total_revenue"`
	TotalHours    float64   `json:"total_hours"`
	Conversions   int       `json:"conversions"`
	MetricCount   int       `json:"metric_count"`
	LastMetricDay time.Time `json:"last_metric_day"` // zero when no metric exists
}

// ROIPerHour returns revenue/hours and false when no hours were logged.
func (s ProjectSummary) ROIPerHour() (float64, bool) {
	if s.TotalHours <= 0 {
		return 0, false
	}
	return s.TotalRevenue / s.TotalHours, true
}

// MonthRevenue is one calendar-month revenue bucket.
type MonthRevenue struct {
	Year    int     `json:"year"`
	Month   int     `json:"month"`
	Revenue float64 `json:"revenue"`
}

// AlertFilter narrows alert listings.
type AlertFilter struct {
	ProjectID  int64
	Unresolved bool
	Limit      int
}

// CyclePhase describes where the 90-day cycle currently stands.
type CyclePhase struct {
	Name           string    `json:"name"`
	Day            int       `json:"day"`
	DaysRemaining  int       `json:"days_remaining"`
	StartedAt      time.Time `json:"started_at"`
	EndsAt         time.Time `json:"ends_at"`
	SuggestedTasks []string  `json:"suggested_tasks"`
}

// Settings keys stored in the settings table. Key names are kept from the
// original spreadsheet-era tooling so exported backups stay comparable.
const (
	SettingCycleStart      = "fecha_inicio_ciclo"
	SettingKillDays        = "umbral_kill_dias"
	SettingHourlyCost      = "coste_hora_estimado"
	SettingMaxActive       = "proyectos_activos_max"
	SettingGrowthThreshold = "umbral_crecimiento"
	SettingShareThreshold  = "umbral_concentracion"
	SettingZombieDays      = "dias_zombie"
)

// Thresholds is the tunable-configuration snapshot read fresh on each
// analysis pass; stale values would mean stale decisions.
type Thresholds struct {
	KillDays        int
	HourlyCost      float64
	MaxActive       int
	GrowthThreshold float64
	ShareThreshold  float64
	CycleStart      time.Time
}

const (
	DefaultKillDays        = 30
	DefaultHourlyCost      = 20.0
	DefaultMaxActive       = 5
	DefaultGrowthThreshold = 0.20
	DefaultShareThreshold  = 0.80
	DefaultZombieDays      = 4
)

// ErrCycleNotStarted is returned when fecha_inicio_ciclo is absent: the
// calendar-based rules cannot run without a cycle start date.
var ErrCycleNotStarted = errors.New("no 90-day cycle started: fecha_inicio_ciclo is not set")

// ErrProjectNotFound is returned by repositories for unknown project ids.
var ErrProjectNotFound = errors.New("project not found")
