package job

import (
	"context"
	"testing"
	"time"

	"venturedeck/internal/domain"
	"venturedeck/internal/service"

	"go.opentelemetry.io/otel/trace"
)

func TestAnalysisPollerStart(t *testing.T) {
	t.Parallel()

	tracer := trace.NewNoopTracerProvider().Tracer("test")
	stub := &stubAnalyzer{report: &service.PortfolioReport{}}
	poller := NewAnalysisPoller(tracer, stub, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	go poller.Start(ctx)

	eventually(t, func() bool { return stub.Calls() > 0 })
	cancel()
}

func TestAnalysisPollerRunOnceSwallowsMissingCycle(t *testing.T) {
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	stub := &stubAnalyzer{err: domain.ErrCycleNotStarted}
	poller := NewAnalysisPoller(tracer, stub, time.Hour)

	poller.runOnce(context.Background())
	if stub.Calls() != 1 {
		t.Fatalf("expected one analysis attempt, got %d", stub.Calls())
	}
}

func TestAnalysisPollerDefaultInterval(t *testing.T) {
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	poller := NewAnalysisPoller(tracer, &stubAnalyzer{report: &service.PortfolioReport{}}, 0)
	if poller.interval != defaultAnalysisInterval {
		t.Fatalf("expected default interval, got %s", poller.interval)
	}
}

type stubAnalyzer struct {
	report *service.PortfolioReport
	err    error

	n int
}

func (s *stubAnalyzer) AnalyzeAll(_ context.Context) (*service.PortfolioReport, error) {
	s.n++
	if s.err != nil {
		return nil, s.err
	}
	return s.report, nil
}

func (s *stubAnalyzer) Calls() int { return s.n }

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(100 * time.Millisecond)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met")
}
