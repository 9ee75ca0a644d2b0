package controller

import (
	"errors"

	"cptncf_backend/internal/service"
	"cptncf_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GradeController struct {
	GradeService *service.GradeService
	AuthService  *service.AuthService
}

func NewGradeController(gradeService *service.GradeService, authService *service.AuthService) *GradeController {
	return &GradeController{
		GradeService: gradeService,
		AuthService:  authService,
	}
}

// MyGrade godoc
// @Summary The caller's current grade, recomputed
// @Tags grades
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=engine.GradeResult}
// @Router /api/grades/me [get]
func (c *GradeController) MyGrade(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.GradeService.ComputeForStudent(user.ID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// StudentGrade godoc
// @Summary Recompute one student's grade (faculty)
// @Tags grades
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} util.Response{data=engine.GradeResult}
// @Router /api/grades/students/{id} [get]
func (c *GradeController) StudentGrade(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	result, err := c.GradeService.ComputeForStudent(id)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, result)
}

// Report godoc
// @Summary Plain-text grade breakdown for export (faculty)
// @Tags grades
// @Produce plain
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {string} string
// @Router /api/grades/students/{id}/report [get]
func (c *GradeController) Report(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	report, err := c.GradeService.ReportText(id)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	ctx.String(200, report)
}

// List godoc
// @Summary Stored grade records for the cohort (faculty)
// @Tags grades
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/grades [get]
func (c *GradeController) List(ctx *gin.Context) {
	page := util.ParsePositiveInt(ctx.Query("page"), 1)
	limit := util.ParsePositiveInt(ctx.Query("limit"), 20)

	records, total, err := c.GradeService.ListAll(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: records, Total: total, Page: page, Limit: limit})
}

// RecomputeAll godoc
// @Summary Recompute every student's grade (faculty)
// @Tags grades
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/grades/recompute [post]
func (c *GradeController) RecomputeAll(ctx *gin.Context) {
	if err := c.GradeService.ComputeAll(); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
