package main

import (
	"context"
	"testing"
	"time"

	"venturedeck/internal/config"
	"venturedeck/internal/repository"

	tea "github.com/charmbracelet/bubbletea"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestMainTUIBootstrap(t *testing.T) {
	restore := stubTUIDeps()
	defer restore()

	var ran tea.Model
	origRun := runProgramFunc
	runProgramFunc = func(m tea.Model) error {
		ran = m
		return nil
	}
	defer func() { runProgramFunc = origRun }()

	done := make(chan struct{})
	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main did not exit")
	}
	if ran == nil {
		t.Fatal("expected the program to receive a model")
	}
}

func stubTUIDeps() func() {
	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origInitPostgres := initPostgresFunc
	origInitRedis := initRedisFunc
	origInitTracer := initTracerFunc
	origNewProjectRepo := newProjectRepoFunc
	origNewMetricRepo := newMetricRepoFunc
	origNewAlertRepo := newAlertRepoFunc
	origNewSettingsRepo := newSettingsRepoFunc

	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config {
		return &config.Config{DashboardCacheTTLSecs: 1}
	}
	initPostgresFunc = func(context.Context) {}
	initRedisFunc = func(context.Context) {}
	initTracerFunc = func(ctx context.Context) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	newProjectRepoFunc = func(repository.PgxPool, trace.Tracer) *repository.ProjectRepository { return nil }
	newMetricRepoFunc = func(repository.PgxPool, trace.Tracer) *repository.MetricRepository { return nil }
	newAlertRepoFunc = func(repository.PgxPool, trace.Tracer) *repository.AlertRepository { return nil }
	newSettingsRepoFunc = func(repository.PgxPool, trace.Tracer) *repository.SettingsRepository { return nil }

	return func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		initPostgresFunc = origInitPostgres
		initRedisFunc = origInitRedis
		initTracerFunc = origInitTracer
		newProjectRepoFunc = origNewProjectRepo
		newMetricRepoFunc = origNewMetricRepo
		newAlertRepoFunc = origNewAlertRepo
		newSettingsRepoFunc = origNewSettingsRepo
	}
}
