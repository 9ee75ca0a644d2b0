package controller

import (
	"cptncf_backend/internal/model"
	"cptncf_backend/internal/service"
	"cptncf_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// AnalyticsController exposes detector output to faculty: stored patterns,
// intervention alerts and per-student recommendations.
type AnalyticsController struct {
	AnalyticsService *service.AnalyticsService
}

func NewAnalyticsController(analyticsService *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{AnalyticsService: analyticsService}
}

// ListPatterns godoc
// @Summary List stored gaming patterns (faculty)
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/analytics/patterns [get]
func (c *AnalyticsController) ListPatterns(ctx *gin.Context) {
	page := util.ParsePositiveInt(ctx.Query("page"), 1)
	limit := util.ParsePositiveInt(ctx.Query("limit"), 20)

	patterns, total, err := c.AnalyticsService.ListPatterns(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: patterns, Total: total, Page: page, Limit: limit})
}

// StudentPatterns godoc
// @Summary Stored patterns for one student (faculty)
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} util.Response{data=[]model.GamingPattern}
// @Router /api/analytics/students/{id}/patterns [get]
func (c *AnalyticsController) StudentPatterns(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	patterns, err := c.AnalyticsService.PatternsForStudent(id)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, patterns)
}

// Interventions godoc
// @Summary Intervention recommendations for one student (faculty)
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} util.Response{data=service.InterventionPlan}
// @Router /api/analytics/students/{id}/interventions [get]
func (c *AnalyticsController) Interventions(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	plan, err := c.AnalyticsService.InterventionsForStudent(id)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, plan)
}

// Recompute godoc
// @Summary Re-run detection for one student (faculty)
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} util.Response
// @Router /api/analytics/students/{id}/recompute [post]
func (c *AnalyticsController) Recompute(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if err := c.AnalyticsService.RecomputeForStudent(id); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ClassOverview godoc
// @Summary Class-wide analytics: weekly trends, category accuracy, pattern stats (faculty)
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.ClassAnalytics}
// @Router /api/analytics/class [get]
func (c *AnalyticsController) ClassOverview(ctx *gin.Context) {
	overview, err := c.AnalyticsService.ClassOverview()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, overview)
}

// ListAlerts godoc
// @Summary List intervention alerts (faculty)
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, acknowledged or resolved"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/analytics/alerts [get]
func (c *AnalyticsController) ListAlerts(ctx *gin.Context) {
	page := util.ParsePositiveInt(ctx.Query("page"), 1)
	limit := util.ParsePositiveInt(ctx.Query("limit"), 20)
	status := model.AlertStatus(ctx.Query("status"))

	alerts, total, err := c.AnalyticsService.ListAlerts(status, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: alerts, Total: total, Page: page, Limit: limit})
}

// AcknowledgeAlert godoc
// @Summary Acknowledge an alert (faculty)
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param id path string true "Alert ID"
// @Success 200 {object} util.Response
// @Router /api/analytics/alerts/{id}/acknowledge [post]
func (c *AnalyticsController) AcknowledgeAlert(ctx *gin.Context) {
	if err := c.AnalyticsService.AcknowledgeAlert(ctx.Param("id")); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// swagger:model ResolveAlertRequest
type ResolveAlertRequest struct {
	Notes string `json:"notes"`
}

// ResolveAlert godoc
// @Summary Resolve an alert with faculty notes
// @Tags analytics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Alert ID"
// @Param body body ResolveAlertRequest true "Resolution notes"
// @Success 200 {object} util.Response
// @Router /api/analytics/alerts/{id}/resolve [post]
func (c *AnalyticsController) ResolveAlert(ctx *gin.Context) {
	var req ResolveAlertRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.AnalyticsService.ResolveAlert(ctx.Param("id"), req.Notes); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
