// Package advisor turns portfolio prompts into recorded AI proposals. Every
// proposal lands in the decision log as postponed until a human accepts or
// rejects it; the advisor never changes project state on its own.
package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"venturedeck/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// Completer is the one model call the advisor needs.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type PromptSource interface {
	Portfolio(ctx context.Context, jsonFormat bool) (string, error)
}

type DecisionRecorder interface {
	RecordDecision(ctx context.Context, d domain.Decision) (domain.Decision, error)
}

// Proposal is one project verdict parsed from the model's response.
type Proposal struct {
	ProjectID     int64    `json:"id"`
	Name          string   `json:"name"`
	Decision      string   `json:"decision"`
	Justification string   `json:"justification"`
	Actions       []string `json:"actions"`
	Risks         []string `json:"risks"`
}

type modelResponse struct {
	ExecutiveSummary string     `json:"executive_summary"`
	Projects         []Proposal `json:"projects"`
	PortfolioRisks   []string   `json:"portfolio_risks"`
}

// Advice is the validated result of one advisor run.
type Advice struct {
	ExecutiveSummary string            `json:"executive_summary"`
	Proposals        []Proposal        `json:"proposals"`
	PortfolioRisks   []string          `json:"portfolio_risks"`
	Recorded         []domain.Decision `json:"recorded"`
	Skipped          []string          `json:"skipped,omitempty"`
}

var decisionKinds = map[string]domain.DecisionKind{
	"kill":    domain.DecisionKill,
	"iterate": domain.DecisionIterate,
	"scale":   domain.DecisionScale,
}

type Advisor struct {
	tracer       trace.Tracer
	completer    Completer
	prompts      PromptSource
	decisions    DecisionRecorder
	system       string
	maxProposals int
}

func New(tracer trace.Tracer, completer Completer, prompts PromptSource, decisions DecisionRecorder) *Advisor {
	return &Advisor{
		tracer:       tracer,
		completer:    completer,
		prompts:      prompts,
		decisions:    decisions,
		system:       "You are a ruthless portfolio analyst for 90-day business experiments. You answer only with the requested JSON.",
		maxProposals: 10,
	}
}

// SetMaxProposals caps how many project verdicts one run may record.
func (a *Advisor) SetMaxProposals(n int) {
	if a != nil && n > 0 {
		a.maxProposals = n
	}
}

// Enabled reports whether a model backend was configured.
func (a *Advisor) Enabled() bool { return a != nil && a.completer != nil }

// Run asks the model for a portfolio verdict and records every valid
// proposal as a postponed AI decision.
func (a *Advisor) Run(ctx context.Context) (*Advice, error) {
	_, span := a.tracer.Start(ctx, "advisor.run")
	defer span.End()

	if !a.Enabled() {
		return nil, fmt.Errorf("advisor is not configured")
	}

	userPrompt, err := a.prompts.Portfolio(ctx, true)
	if err != nil {
		return nil, err
	}

	raw, err := a.completer.Complete(ctx, a.system, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("complete analysis: %w", err)
	}

	parsed, err := parseModelResponse(raw)
	if err != nil {
		return nil, err
	}

	advice := &Advice{
		ExecutiveSummary: parsed.ExecutiveSummary,
		PortfolioRisks:   parsed.PortfolioRisks,
	}
	for _, proposal := range parsed.Projects {
		if len(advice.Proposals) >= a.maxProposals {
			advice.Skipped = append(advice.Skipped, fmt.Sprintf("%s: proposal cap reached", proposal.Name))
			continue
		}
		kind, ok := decisionKinds[strings.ToLower(strings.TrimSpace(proposal.Decision))]
		if !ok {
			advice.Skipped = append(advice.Skipped, fmt.Sprintf("%s: unknown decision %q", proposal.Name, proposal.Decision))
			continue
		}
		if proposal.ProjectID <= 0 || strings.TrimSpace(proposal.Justification) == "" {
			advice.Skipped = append(advice.Skipped, fmt.Sprintf("%s: missing id or justification", proposal.Name))
			continue
		}
		advice.Proposals = append(advice.Proposals, proposal)

		recorded, err := a.decisions.RecordDecision(ctx, domain.Decision{
			ProjectID:     proposal.ProjectID,
			Kind:          kind,
			Justification: proposal.Justification,
			Origin:        domain.OriginAI,
			Outcome:       domain.OutcomePostponed,
		})
		if err != nil {
			advice.Skipped = append(advice.Skipped, fmt.Sprintf("%s: %v", proposal.Name, err))
			continue
		}
		advice.Recorded = append(advice.Recorded, recorded)
	}
	return advice, nil
}

// parseModelResponse tolerates a JSON object wrapped in markdown fences or
// surrounding chatter; models ignore "JSON only" more often than not.
func parseModelResponse(raw string) (*modelResponse, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("model response holds no JSON object")
	}

	var parsed modelResponse
	if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}
	return &parsed, nil
}
