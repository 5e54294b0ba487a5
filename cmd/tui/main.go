package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"venturedeck/internal/cache"
	"venturedeck/internal/config"
	"venturedeck/internal/db"
	"venturedeck/internal/repository"
	"venturedeck/internal/rules"
	"venturedeck/internal/service"
	"venturedeck/internal/tui"
	"venturedeck/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
)

var (
	loadEnvFunc         = godotenv.Load
	loadConfigFunc      = config.Load
	initPostgresFunc    = db.InitPostgres
	initRedisFunc       = cache.InitRedis
	initTracerFunc      = tracing.InitTracer
	newProjectRepoFunc  = repository.NewProjectRepository
	newMetricRepoFunc   = repository.NewMetricRepository
	newAlertRepoFunc    = repository.NewAlertRepository
	newSettingsRepoFunc = repository.NewSettingsRepository
	runProgramFunc      = func(m tea.Model) error {
		_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
		return err
	}
)

func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initPostgresFunc(ctx)
	initRedisFunc(ctx)

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	projectRepo := newProjectRepoFunc(db.Pool, tracer)
	metricRepo := newMetricRepoFunc(db.Pool, tracer)
	alertRepo := newAlertRepoFunc(db.Pool, tracer)
	settingsRepo := newSettingsRepoFunc(db.Pool, tracer)

	projectService := service.NewProjectService(tracer, projectRepo, metricRepo, alertRepo, nil, settingsRepo)
	engine := rules.NewEngine(nil)
	analysisService := service.NewAnalysisService(tracer, projectRepo, metricRepo, alertRepo, settingsRepo, engine)
	snapshots := cache.NewSnapshots(cache.Client, time.Duration(cfg.DashboardCacheTTLSecs)*time.Second)
	dashboardService := service.NewDashboardService(tracer, projectRepo, metricRepo, alertRepo, settingsRepo, snapshots)

	// Stdlib log output would tear the alt screen; send it to a file.
	logPath := filepath.Join(os.TempDir(), "venturedeck-tui.log")
	if f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644); err == nil {
		log.SetOutput(f)
		defer f.Close()
	}

	app := tui.NewAppModel(tui.Services{
		Dashboard: dashboardService,
		Projects:  projectService,
		Alerts:    projectService,
		Analysis:  analysisService,
	})
	if err := runProgramFunc(app); err != nil {
		log.Fatalf("tui exited with error: %v", err)
	}
}
