package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"venturedeck/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

const dayLayout = "2006-01-02"

type createProjectRequest struct {
	Name       string `json:"name" binding:"required"`
	Hypothesis string `json:"hypothesis" binding:"required"`
	StartedAt  string `json:"started_at"`
}

// CreateProject godoc
// @Summary      Register a new experiment
// @Description  Creates a project in the idea state
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        project  body  createProjectRequest  true  "Project to create"
// @Success      201  {object}  domain.Project
// @Failure      400  {object}  map[string]string
// @Router       /api/projects [post]
func (h *Handler) CreateProject(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.create-project")
	defer span.End()

	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var startedAt time.Time
	if req.StartedAt != "" {
		parsed, err := time.Parse(dayLayout, req.StartedAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "started_at must be YYYY-MM-DD"})
			return
		}
		startedAt = parsed
	}

	project, err := h.projectService.Create(ctx, req.Name, req.Hypothesis, startedAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, project)
}

// ListProjects godoc
// @Summary      List projects
// @Description  Returns projects, optionally filtered by state
// @Tags         projects
// @Produce      json
// @Param        state  query  string  false  "Project state (idea, mvp, active, paused, killed, winner)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/projects [get]
func (h *Handler) ListProjects(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-projects")
	defer span.End()

	var states []domain.ProjectState
	if raw := strings.TrimSpace(c.Query("state")); raw != "" {
		state := domain.ProjectState(raw)
		if !state.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown state: " + raw})
			return
		}
		span.SetAttributes(attribute.String("state", raw))
		states = append(states, state)
	}

	projects, err := h.projectService.List(ctx, states...)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// GetProject godoc
// @Summary      Get one project with its metrics, alerts, and decisions
// @Tags         projects
// @Produce      json
// @Param        id  path  int  true  "Project ID"
// @Success      200  {object}  service.ProjectDetail
// @Failure      404  {object}  map[string]string
// @Router       /api/projects/{id} [get]
func (h *Handler) GetProject(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-project")
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
	c.JSON(http.StatusOK, detail)
}

type changeStateRequest struct {
	State      string `json:"state" binding:"required"`
	KillReason string `json:"kill_reason"`
}

// ChangeProjectState godoc
// @Summary      Move a project through its lifecycle
// @Description  Activation honors the active-project cap; killing requires kill_reason
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id     path  int                 true  "Project ID"
// @Param        state  body  changeStateRequest  true  "Target state"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/projects/{id}/state [patch]
func (h *Handler) ChangeProjectState(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.change-project-state")
	defer span.End()

	id, ok := pathID(c)
	if !ok {
		return
	}
	var req changeStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state := domain.ProjectState(req.State)
	if !state.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown state: " + req.State})
		return
	}
	if err := h.projectService.ChangeState(ctx, id, state, req.KillReason); err != nil {
		if msg := err.Error(); strings.Contains(msg, "limit") || strings.Contains(msg, "reason") {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}
		respondError(c, err)
		return
	}
	h.dashboardService.Invalidate(ctx)
	c.JSON(http.StatusOK, gin.H{"state": string(state)})
}

type recordMetricRequest struct {
	Day           string  `json:"day"`
	Revenue       float64 `json:"revenue"`
	Hours         float64 `json:"hours"`
	Conversions   int     `json:"conversions"`
	TrafficSource string  `json:"traffic_source"`
	FrictionNote  string  `json:"friction_note"`
}

// RecordMetric godoc
// @Summary      Record one day of metrics
// @Description  Upserts the project's row for the given day
// @Tags         metrics
// @Accept       json
// @Produce      json
// @Param        id      path  int                  true  "Project ID"
// @Param        metric  body  recordMetricRequest  true  "Metrics for the day"
// @Success      201  {object}  domain.Metric
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/projects/{id}/metrics [post]
func (h *Handler) RecordMetric(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.record-metric")
	defer span.End()

	id, ok := pathID(c)
	if !ok {
		return
	}
	var req recordMetricRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	metric := domain.Metric{
		ProjectID:     id,
		Revenue:       req.Revenue,
		Hours:         req.Hours,
		Conversions:   req.Conversions,
		TrafficSource: req.TrafficSource,
		FrictionNote:  req.FrictionNote,
	}
	if req.Day != "" {
		day, err := time.Parse(dayLayout, req.Day)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "day must be YYYY-MM-DD"})
			return
		}
		metric.Day = day
	}

	stored, err := h.projectService.RecordMetric(ctx, metric)
	if err != nil {
		if strings.Contains(err.Error(), "cannot") || strings.Contains(err.Error(), "killed") {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}
	h.dashboardService.Invalidate(ctx)
	c.JSON(http.StatusCreated, stored)
}

type recordDecisionRequest struct {
	Kind            string `json:"kind" binding:"required"`
	Justification   string `json:"justification" binding:"required"`
	Origin          string `json:"origin"`
	Outcome         string `json:"outcome"`
	RejectionReason string `json:"rejection_reason"`
}

// RecordDecision godoc
// @Summary      Record a decision on a project
// @Description  Appends to the decision log; accepted kill/pause/scale decisions also change the project state
// @Tags         decisions
// @Accept       json
// @Produce      json
// @Param        id        path  int                    true  "Project ID"
// @Param        decision  body  recordDecisionRequest  true  "Decision"
// @Success      201  {object}  domain.Decision
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/projects/{id}/decisions [post]
func (h *Handler) RecordDecision(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.record-decision")
	defer span.End()

	id, ok := pathID(c)
	if !ok {
		return
	}
	var req recordDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	decision := domain.Decision{
		ProjectID:       id,
		Kind:            domain.DecisionKind(req.Kind),
		Justification:   req.Justification,
		Origin:          domain.DecisionOrigin(req.Origin),
		Outcome:         domain.DecisionOutcome(req.Outcome),
		RejectionReason: req.RejectionReason,
	}
	stored, err := h.projectService.RecordDecision(ctx, decision)
	if err != nil {
		if strings.Contains(err.Error(), "invalid") || strings.Contains(err.Error(), "needs") {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}
	h.dashboardService.Invalidate(ctx)
	c.JSON(http.StatusCreated, stored)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return 0, false
	}
	return id, true
}
