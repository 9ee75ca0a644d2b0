package controller

import (
	"errors"

	"cptncf_backend/internal/model"
	"cptncf_backend/internal/service"
	"cptncf_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AssessmentController struct {
	AssessmentService *service.AssessmentService
	AuthService       *service.AuthService
}

func NewAssessmentController(assessmentService *service.AssessmentService, authService *service.AuthService) *AssessmentController {
	return &AssessmentController{
		AssessmentService: assessmentService,
		AuthService:       authService,
	}
}

// Create godoc
// @Summary Create an assessment (faculty)
// @Tags assessments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.Assessment true "Assessment"
// @Success 201 {object} util.Response{data=model.Assessment}
// @Router /api/assessments [post]
func (c *AssessmentController) Create(ctx *gin.Context) {
	var a model.Assessment
	if err := ctx.ShouldBindJSON(&a); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.AssessmentService.Create(&a); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, a)
}

// List godoc
// @Summary List assessments
// @Tags assessments
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/assessments [get]
func (c *AssessmentController) List(ctx *gin.Context) {
	page := util.ParsePositiveInt(ctx.Query("page"), 1)
	limit := util.ParsePositiveInt(ctx.Query("limit"), 20)

	assessments, total, err := c.AssessmentService.List(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: assessments, Total: total, Page: page, Limit: limit})
}

// ListAvailable godoc
// @Summary List published assessments currently open to students
// @Tags assessments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Assessment}
// @Router /api/assessments/available [get]
func (c *AssessmentController) ListAvailable(ctx *gin.Context) {
	assessments, err := c.AssessmentService.ListAvailable()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, assessments)
}

// Get godoc
// @Summary One assessment with its question catalog
// @Tags assessments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assessment ID"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Failure 404 {object} util.Response
// @Router /api/assessments/{id} [get]
func (c *AssessmentController) Get(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	a, err := c.AssessmentService.FindWithQuestions(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, util.ErrAssessmentNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, a)
}

// Update godoc
// @Summary Update an assessment (faculty)
// @Tags assessments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assessment ID"
// @Param body body model.Assessment true "Assessment"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Router /api/assessments/{id} [put]
func (c *AssessmentController) Update(ctx *gin.Context) {
	var a model.Assessment
	if err := ctx.ShouldBindJSON(&a); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	a.ID = util.MustParseUint(ctx.Param("id"))

	if err := c.AssessmentService.Update(ctx.Request.Context(), &a); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// Publish godoc
// @Summary Publish an assessment (faculty)
// @Tags assessments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assessment ID"
// @Success 200 {object} util.Response
// @Router /api/assessments/{id}/publish [post]
func (c *AssessmentController) Publish(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if err := c.AssessmentService.Publish(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, util.ErrAssessmentNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// Delete godoc
// @Summary Delete an assessment (faculty)
// @Tags assessments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assessment ID"
// @Success 200 {object} util.Response
// @Router /api/assessments/{id} [delete]
func (c *AssessmentController) Delete(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if err := c.AssessmentService.Delete(ctx.Request.Context(), id); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// AddQuestion godoc
// @Summary Add a question with options and rationales (faculty)
// @Tags assessments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assessment ID"
// @Param body body model.Question true "Question"
// @Success 201 {object} util.Response{data=model.Question}
// @Router /api/assessments/{id}/questions [post]
func (c *AssessmentController) AddQuestion(ctx *gin.Context) {
	var q model.Question
	if err := ctx.ShouldBindJSON(&q); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	q.AssessmentID = util.MustParseUint(ctx.Param("id"))

	if err := c.AssessmentService.AddQuestion(ctx.Request.Context(), &q); err != nil {
		if errors.Is(err, util.ErrAssessmentNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Created(ctx, q)
}

// DeleteQuestion godoc
// @Summary Delete a question (faculty)
// @Tags assessments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Success 200 {object} util.Response
// @Router /api/questions/{id} [delete]
func (c *AssessmentController) DeleteQuestion(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if err := c.AssessmentService.DeleteQuestion(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}
