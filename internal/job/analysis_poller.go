package job

import (
	"context"
	"errors"
	"log"
	"time"

	"venturedeck/internal/domain"
	"venturedeck/internal/service"

	"go.opentelemetry.io/otel/trace"
)

const defaultAnalysisInterval = time.Hour

// AnalysisPoller periodically runs the heuristic portfolio analysis so alerts
// stay current even when nobody calls the API.
type AnalysisPoller struct {
	tracer   trace.Tracer
	analysis PortfolioAnalyzer
	interval time.Duration
}

type PortfolioAnalyzer interface {
	AnalyzeAll(ctx context.Context) (*service.PortfolioReport, error)
}

func NewAnalysisPoller(tracer trace.Tracer, analysis PortfolioAnalyzer, interval time.Duration) *AnalysisPoller {
	if interval <= 0 {
		interval = defaultAnalysisInterval
	}
	return &AnalysisPoller{
		tracer:   tracer,
		analysis: analysis,
		interval: interval,
	}
}

// Start launches the background analysis loop. Blocks until ctx is cancelled.
func (p *AnalysisPoller) Start(ctx context.Context) {
	if p.analysis == nil {
		log.Println("Analysis poller disabled: no analysis service")
		<-ctx.Done()
		return
	}

	log.Printf("Analysis poller starting (every %s)...", p.interval)
	go p.poll(ctx)

	<-ctx.Done()
	log.Println("Analysis poller stopped")
}

func (p *AnalysisPoller) poll(ctx context.Context) {
	p.runOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.runOnce(ctx)
		}
	}
}

func (p *AnalysisPoller) runOnce(ctx context.Context) {
	report, err := p.analysis.AnalyzeAll(ctx)
	if err != nil {
		// normal before the user starts a cycle, no point logging loudly
		if errors.Is(err, domain.ErrCycleNotStarted) {
			return
		}
		log.Printf("scheduled analysis failed: %v", err)
		return
	}

	created := 0
	for _, pa := range report.Projects {
		created += len(pa.CreatedAlerts)
	}
	if created > 0 || len(report.Failures) > 0 {
		log.Printf("scheduled analysis: %d project(s), %d new alert(s), %d failure(s)",
			len(report.Projects), created, len(report.Failures))
	}
}
