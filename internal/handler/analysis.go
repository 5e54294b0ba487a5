package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"venturedeck/internal/domain"
	"venturedeck/internal/export"

	"github.com/gin-gonic/gin"
)

// RunAnalysis godoc
// @Summary      Analyze the whole portfolio
// @Description  Evaluates every analyzable project, reconciles alerts, and runs the portfolio-wide checks
// @Tags         analysis
// @Produce      json
// @Success      200  {object}  service.PortfolioReport
// @Failure      409  {object}  map[string]string
// @Router       /api/analysis/run [post]
func (h *Handler) RunAnalysis(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.run-analysis")
	defer span.End()

	report, err := h.analysisService.AnalyzeAll(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	h.dashboardService.Invalidate(ctx)
	c.JSON(http.StatusOK, report)
}

// AnalyzeProject godoc
// @Summary      Analyze one project
// @Tags         analysis
// @Produce      json
// @Param        id  path  int  true  "Project ID"
// @Success      200  {object}  service.ProjectAnalysis
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/projects/{id}/analyze [post]
func (h *Handler) AnalyzeProject(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.analyze-project")
	defer span.End()

	id, ok := pathID(c)
	if !ok {
		return
	}
	analysis, err := h.analysisService.AnalyzeProject(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.dashboardService.Invalidate(ctx)
	c.JSON(http.StatusOK, analysis)
}

// ListAlerts godoc
// @Summary      List alerts
// @Tags         alerts
// @Produce      json
// @Param        project_id  query  int   false  "Filter by project"
// @Param        unresolved  query  bool  false  "Only open alerts"
// @Param        limit       query  int   false  "Max rows (default 50)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/alerts [get]
func (h *Handler) ListAlerts(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-alerts")
	defer span.End()

	filter := domain.AlertFilter{Limit: 50}
	if raw := strings.TrimSpace(c.Query("project_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "project_id must be a positive integer"})
			return
		}
		filter.ProjectID = id
	}
	filter.Unresolved = strings.EqualFold(c.Query("unresolved"), "true")
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
			return
		}
		filter.Limit = n
	}

	alerts, err := h.projectService.Alerts(ctx, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// ResolveAlert godoc
// @Summary      Resolve an alert by hand
// @Tags         alerts
// @Produce      json
// @Param        id  path  int  true  "Alert ID"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /api/alerts/{id}/resolve [post]
func (h *Handler) ResolveAlert(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.resolve-alert")
	defer span.End()

	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.projectService.ResolveAlert(ctx, id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}
	h.dashboardService.Invalidate(ctx)
	c.JSON(http.StatusOK, gin.H{"status": "resolved"})
}

// GetDashboard godoc
// @Summary      Portfolio dashboard
// @Description  Cycle phase, per-project cards, totals, and zombie projects
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  service.Dashboard
// @Router       /api/dashboard [get]
func (h *Handler) GetDashboard(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-dashboard")
	defer span.End()

	dashboard, err := h.dashboardService.Load(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// ListZombies godoc
// @Summary      List projects with no recent activity
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/zombies [get]
func (h *Handler) ListZombies(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-zombies")
	defer span.End()

	zombies, err := h.projectService.Zombies(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"zombies": zombies})
}

// GetCycle godoc
// @Summary      Current 90-day cycle phase
// @Tags         cycle
// @Produce      json
// @Success      200  {object}  domain.CyclePhase
// @Failure      409  {object}  map[string]string
// @Router       /api/cycle [get]
func (h *Handler) GetCycle(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-cycle")
	defer span.End()

	phase, err := h.settingsService.Phase(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, phase)
}

type startCycleRequest struct {
	Day string `json:"day"`
}

// StartCycle godoc
// @Summary      Start (or restart) the 90-day cycle
// @Tags         cycle
// @Accept       json
// @Produce      json
// @Param        cycle  body  startCycleRequest  false  "Start day, defaults to today"
// @Success      200  {object}  domain.CyclePhase
// @Failure      400  {object}  map[string]string
// @Router       /api/cycle/start [post]
func (h *Handler) StartCycle(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.start-cycle")
	defer span.End()

	var req startCycleRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	var day time.Time
	if req.Day != "" {
		parsed, err := time.Parse(dayLayout, req.Day)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "day must be YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	phase, err := h.settingsService.StartCycle(ctx, day)
	if err != nil {
		respondError(c, err)
		return
	}
	h.dashboardService.Invalidate(ctx)
	c.JSON(http.StatusOK, phase)
}

// GetSetting godoc
// @Summary      Read one setting
// @Tags         settings
// @Produce      json
// @Param        key  path  string  true  "Setting key"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /api/settings/{key} [get]
func (h *Handler) GetSetting(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-setting")
	defer span.End()

	key := c.Param("key")
	value, err := h.settingsService.Get(ctx, key)
	if err != nil {
		if strings.Contains(err.Error(), "unknown setting") {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": value})
}

type setSettingRequest struct {
	Value string `json:"value" binding:"required"`
}

// SetSetting godoc
// @Summary      Update one setting
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        key      path  string             true  "Setting key"
// @Param        setting  body  setSettingRequest  true  "New value"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /api/settings/{key} [put]
func (h *Handler) SetSetting(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.set-setting")
	defer span.End()

	var req setSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	key := c.Param("key")
	if err := h.settingsService.Set(ctx, key, req.Value); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.dashboardService.Invalidate(ctx)
	c.JSON(http.StatusOK, gin.H{"key": key, "value": req.Value})
}

// PortfolioPrompt godoc
// @Summary      Weekly analysis prompt
// @Description  Markdown prompt with portfolio state, ready to paste into an assistant
// @Tags         prompts
// @Produce      plain
// @Param        format  query  string  false  "json to request machine output"
// @Success      200  {string}  string
// @Failure      409  {object}  map[string]string
// @Router       /api/prompts/portfolio [get]
func (h *Handler) PortfolioPrompt(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.portfolio-prompt")
	defer span.End()

	jsonFormat := strings.EqualFold(c.Query("format"), "json")
	out, err := h.promptService.Portfolio(ctx, jsonFormat)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(out))
}

// ProjectPrompt godoc
// @Summary      Deep-dive prompt for one project
// @Tags         prompts
// @Produce      plain
// @Param        id  path  int  true  "Project ID"
// @Success      200  {string}  string
// @Failure      404  {object}  map[string]string
// @Router       /api/projects/{id}/prompt [get]
func (h *Handler) ProjectPrompt(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.project-prompt")
	defer span.End()

	id, ok := pathID(c)
	if !ok {
		return
	}
	out, err := h.promptService.Project(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(out))
}

// RunAdvisor godoc
// @Summary      Ask the AI advisor for portfolio verdicts
// @Description  Proposals are recorded as postponed decisions awaiting human review
// @Tags         advisor
// @Produce      json
// @Success      200  {object}  advisor.Advice
// @Failure      409  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/advisor/run [post]
func (h *Handler) RunAdvisor(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.run-advisor")
	defer span.End()

	if !h.advisor.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "advisor is not configured"})
		return
	}
	advice, err := h.advisor.Run(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, advice)
}

// ExportPortfolio godoc
// @Summary      Export the portfolio as CSV
// @Tags         export
// @Produce      text/csv
// @Success      200  {string}  string
// @Router       /api/export/portfolio [get]
func (h *Handler) ExportPortfolio(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.export-portfolio")
	defer span.End()

	summaries, err := h.projectService.Summaries(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="portfolio.csv"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if err := export.WritePortfolio(c.Writer, summaries); err != nil {
		span.RecordError(err)
	}
}

// ExportProjectMetrics godoc
// @Summary      Export one project's metric history as CSV
// @Tags         export
// @Produce      text/csv
// @Param        id  path  int  true  "Project ID"
// @Success      200  {string}  string
// @Failure      404  {object}  map[string]string
// @Router       /api/projects/{id}/export [get]
func (h *Handler) ExportProjectMetrics(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.export-project-metrics")
	defer span.End()

	id, ok := pathID(c)
	if !ok {
		return
	}
	detail, err := h.projectService.Detail(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", detail.Project.Name+".csv"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if err := export.WriteMetrics(c.Writer, detail.Project, detail.Metrics); err != nil {
		span.RecordError(err)
	}
}
