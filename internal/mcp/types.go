package mcp

import (
	"fmt"
	"strings"
	"time"

	"venturedeck/internal/domain"
	"venturedeck/internal/service"
)

const (
	defaultAlertLimit = 50
	maxAlertLimit     = 200
)

type projectsListInput struct {
	State string `json:"state,omitempty" jsonschema:"optional lifecycle state: idea, mvp, active, paused, killed, winner"`
}

type projectsListOutput struct {
	Projects []domain.Project `json:"projects"`
}

type projectGetInput struct {
	ProjectID int64 `json:"project_id" jsonschema:"project identifier"`
}

type projectGetOutput struct {
	Detail *service.ProjectDetail `json:"detail"`
}

type metricsRecordInput struct {
	ProjectID     int64   `json:"project_id" jsonschema:"project identifier"`
	Day           string  `json:"day,omitempty" jsonschema:"metric day as YYYY-MM-DD, defaults to today"`
	Revenue       float64 `json:"revenue" jsonschema:"revenue for the day; negative means refunds"`
	Hours         float64 `json:"hours" jsonschema:"hours invested"`
	Conversions   int     `json:"conversions,omitempty" jsonschema:"conversions for the day"`
	TrafficSource string  `json:"traffic_source,omitempty" jsonschema:"optional traffic source note"`
	FrictionNote  string  `json:"friction_note,omitempty" jsonschema:"optional friction note"`
}

type metricsRecordOutput struct {
	Metric domain.Metric `json:"metric"`
}

type decisionRecordInput struct {
	ProjectID       int64  `json:"project_id" jsonschema:"project identifier"`
	Kind            string `json:"kind" jsonschema:"decision kind: kill, iterate, scale, pause"`
	Justification   string `json:"justification" jsonschema:"why this decision"`
	Outcome         string `json:"outcome,omitempty" jsonschema:"accepted or rejected, defaults to accepted"`
	RejectionReason string `json:"rejection_reason,omitempty" jsonschema:"required when outcome is rejected"`
}

type decisionRecordOutput struct {
	Decision domain.Decision `json:"decision"`
}

type analysisRunInput struct{}

type alertsListInput struct {
	ProjectID  int64 `json:"project_id,omitempty" jsonschema:"optional project filter"`
	Unresolved bool  `json:"unresolved,omitempty" jsonschema:"only open alerts"`
	Limit      int   `json:"limit,omitempty" jsonschema:"max alerts to return, max 200"`
}

type alertsListOutput struct {
	Alerts []domain.Alert `json:"alerts"`
}

func normalizeState(raw string) (domain.ProjectState, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return "", nil
	}
	state := domain.ProjectState(raw)
	if !state.IsValid() {
		return "", fmt.Errorf("unknown state: %s", raw)
	}
	return state, nil
}

func normalizeDay(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("day must be YYYY-MM-DD")
	}
	return day, nil
}

func normalizeAlertLimit(limit int) int {
	if limit <= 0 {
		return defaultAlertLimit
	}
	if limit > maxAlertLimit {
		return maxAlertLimit
	}
	return limit
}

func normalizeDecision(in decisionRecordInput) (domain.Decision, error) {
	kind := domain.DecisionKind(strings.ToLower(strings.TrimSpace(in.Kind)))
	if !kind.IsValid() {
		return domain.Decision{}, fmt.Errorf("unknown decision kind: %s", in.Kind)
	}

	outcome := domain.DecisionOutcome(strings.ToLower(strings.TrimSpace(in.Outcome)))
	switch outcome {
	case "", domain.OutcomeAccepted:
		outcome = domain.OutcomeAccepted
	case domain.OutcomeRejected:
		if strings.TrimSpace(in.RejectionReason) == "" {
			return domain.Decision{}, fmt.Errorf("rejection_reason is required for a rejected decision")
		}
	default:
		return domain.Decision{}, fmt.Errorf("unknown outcome: %s", in.Outcome)
	}

	return domain.Decision{
		ProjectID:       in.ProjectID,
		Kind:            kind,
		Justification:   strings.TrimSpace(in.Justification),
		Origin:          domain.OriginHuman,
		Outcome:         outcome,
		RejectionReason: strings.TrimSpace(in.RejectionReason),
	}, nil
}
