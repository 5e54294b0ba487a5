package handler

import (
	"errors"
	"net/http"

	"venturedeck/internal/advisor"
	"venturedeck/internal/cache"
	"venturedeck/internal/db"
	"venturedeck/internal/domain"
	"venturedeck/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	tracer           trace.Tracer
	projectService   *service.ProjectService
	analysisService  *service.AnalysisService
	dashboardService *service.DashboardService
	settingsService  *service.SettingsService
	promptService    *service.PromptService
	advisor          *advisor.Advisor
}

func New(
	tracer trace.Tracer,
	projectService *service.ProjectService,
	analysisService *service.AnalysisService,
	dashboardService *service.DashboardService,
	settingsService *service.SettingsService,
	promptService *service.PromptService,
	adv *advisor.Advisor,
) *Handler {
	return &Handler{
		tracer:           tracer,
		projectService:   projectService,
		analysisService:  analysisService,
		dashboardService: dashboardService,
		settingsService:  settingsService,
		promptService:    promptService,
		advisor:          adv,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	r.POST("/api/projects", h.CreateProject)
	r.GET("/api/projects", h.ListProjects)
	r.GET("/api/projects/:id", h.GetProject)
	r.PATCH("/api/projects/:id/state", h.ChangeProjectState)
	r.POST("/api/projects/:id/metrics", h.RecordMetric)
	r.POST("/api/projects/:id/decisions", h.RecordDecision)
	r.POST("/api/projects/:id/analyze", h.AnalyzeProject)
	r.GET("/api/projects/:id/prompt", h.ProjectPrompt)
	r.GET("/api/projects/:id/export", h.ExportProjectMetrics)

	r.GET("/api/alerts", h.ListAlerts)
	r.POST("/api/alerts/:id/resolve", h.ResolveAlert)

	r.POST("/api/analysis/run", h.RunAnalysis)
	r.GET("/api/dashboard", h.GetDashboard)
	r.GET("/api/zombies", h.ListZombies)

	r.GET("/api/cycle", h.GetCycle)
	r.POST("/api/cycle/start", h.StartCycle)
	r.GET("/api/settings/:key", h.GetSetting)
	r.PUT("/api/settings/:key", h.SetSetting)

	r.GET("/api/prompts/portfolio", h.PortfolioPrompt)
	r.POST("/api/advisor/run", h.RunAdvisor)

	r.GET("/api/export/portfolio", h.ExportPortfolio)
}

// Health godoc
// @Summary      Service health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	status := "ok"
	checks := gin.H{}
	if db.Pool != nil {
		if err := db.Pool.Ping(c.Request.Context()); err != nil {
			checks["postgres"] = "down"
			status = "degraded"
		} else {
			checks["postgres"] = "ok"
		}
	}
	if cache.Client != nil {
		if err := cache.Client.Ping(c.Request.Context()).Err(); err != nil {
			checks["redis"] = "down"
			status = "degraded"
		} else {
			checks["redis"] = "ok"
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "checks": checks})
}

// respondError maps domain errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrCycleNotStarted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
