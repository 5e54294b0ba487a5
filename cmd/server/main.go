package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"venturedeck/internal/advisor"
	"venturedeck/internal/bot"
	"venturedeck/internal/cache"
	"venturedeck/internal/config"
	"venturedeck/internal/db"
	"venturedeck/internal/handler"
	"venturedeck/internal/job"
	"venturedeck/internal/repository"
	"venturedeck/internal/rules"
	"venturedeck/internal/service"
	"venturedeck/pkg/tracing"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "venturedeck/docs"
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
	newDecisionRepoFunc = repository.NewDecisionRepository
	newSettingsRepoFunc = repository.NewSettingsRepository
	newRuleEngineFunc   = rules.NewEngine
	newOpenAIClientFunc = func(apiKey, model string) advisor.Completer {
		return advisor.NewOpenAIClient(apiKey, model)
	}
	newAdvisorFunc          = advisor.New
	newAnalysisPollerFunc   = job.NewAnalysisPoller
	startAnalysisPollerFunc = func(p *job.AnalysisPoller, ctx context.Context) { go p.Start(ctx) }
	startTelegramBotFunc    = bot.StartTelegramBot
	newHandlerFunc          = handler.New
	newRouterFunc           = gin.Default
	setupSignalNotify       = ossignal.Notify
	waitForSignalFunc       = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc     = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc  = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Venturedeck API
// @version         1.0
// @description     Single-user tracker for 90-day business experiments.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis
	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initPostgresFunc(ctx)
	initRedisFunc(ctx)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Create repositories and run migrations
	projectRepo := newProjectRepoFunc(db.Pool, tracer)
	metricRepo := newMetricRepoFunc(db.Pool, tracer)
	alertRepo := newAlertRepoFunc(db.Pool, tracer)
	decisionRepo := newDecisionRepoFunc(db.Pool, tracer)
	settingsRepo := newSettingsRepoFunc(db.Pool, tracer)
	if db.Pool != nil {
		if err := settingsRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run settings migrations: %v", err)
		}
		if err := projectRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run project migrations: %v", err)
		}
		if err := metricRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run metric migrations: %v", err)
		}
		if err := alertRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run alert migrations: %v", err)
		}
		if err := decisionRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run decision migrations: %v", err)
		}
	}

	// Create services
	settingsService := service.NewSettingsService(tracer, settingsRepo)
	projectService := service.NewProjectService(tracer, projectRepo, metricRepo, alertRepo, decisionRepo, settingsRepo)
	engine := newRuleEngineFunc(nil)
	analysisService := service.NewAnalysisService(tracer, projectRepo, metricRepo, alertRepo, settingsRepo, engine)
	snapshots := cache.NewSnapshots(cache.Client, time.Duration(cfg.DashboardCacheTTLSecs)*time.Second)
	dashboardService := service.NewDashboardService(tracer, projectRepo, metricRepo, alertRepo, settingsRepo, snapshots)
	promptService := service.NewPromptService(tracer, projectRepo, metricRepo, decisionRepo, settingsRepo)

	var completer advisor.Completer
	if cfg.OpenAIAPIKey != "" {
		completer = newOpenAIClientFunc(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}
	adv := newAdvisorFunc(tracer, completer, promptService, projectService)
	adv.SetMaxProposals(cfg.AdvisorMaxItems)

	// Start background analysis poller (stopped by ctx cancel)
	poller := newAnalysisPollerFunc(tracer, analysisService, time.Duration(cfg.AnalysisPollSecs)*time.Second)
	startAnalysisPollerFunc(poller, ctx)

	// Start Telegram bot
	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	dispatcher := startTelegramBotFunc(dashboardService, analysisService, projectService)
	if dispatcher != nil {
		analysisService.SetDispatcher(dispatcher)
	}

	// Create handlers and routes
	h := newHandlerFunc(tracer, projectService, analysisService, dashboardService, settingsService, promptService, adv)

	r := newRouterFunc()
	r.Use(cors.Default())
	r.Use(otelgin.Middleware("venturedeck"))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
