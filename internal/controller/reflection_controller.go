package controller

import (
	"errors"

	"cptncf_backend/internal/model"
	"cptncf_backend/internal/service"
	"cptncf_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReflectionController struct {
	ReflectionService *service.ReflectionService
	AuthService       *service.AuthService
}

func NewReflectionController(reflectionService *service.ReflectionService, authService *service.AuthService) *ReflectionController {
	return &ReflectionController{
		ReflectionService: reflectionService,
		AuthService:       authService,
	}
}

// swagger:model SubmitReflectionRequest
type SubmitReflectionRequest struct {
	WeekNumber  int    `json:"weekNumber" binding:"required,min=1"`
	Summary     string `json:"summary" binding:"required"`
	Challenges  string `json:"challenges"`
	Connections string `json:"connections"`
	NextSteps   string `json:"nextSteps"`
}

// Submit godoc
// @Summary Submit a weekly reflection
// @Tags reflections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SubmitReflectionRequest true "Reflection"
// @Success 201 {object} util.Response{data=model.Reflection}
// @Failure 409 {object} util.Response "Already submitted this week"
// @Router /api/reflections [post]
func (c *ReflectionController) Submit(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SubmitReflectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	reflection := &model.Reflection{
		UserID:      user.ID,
		WeekNumber:  req.WeekNumber,
		Summary:     req.Summary,
		Challenges:  req.Challenges,
		Connections: req.Connections,
		NextSteps:   req.NextSteps,
	}

	if err := c.ReflectionService.Submit(reflection); err != nil {
		if errors.Is(err, util.ErrDuplicateReflection) {
			util.Error(ctx, 409, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, reflection)
}

// Mine godoc
// @Summary The caller's reflections
// @Tags reflections
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Reflection}
// @Router /api/reflections [get]
func (c *ReflectionController) Mine(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	reflections, err := c.ReflectionService.ListByUser(user.ID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, reflections)
}

// swagger:model ReviewReflectionRequest
type ReviewReflectionRequest struct {
	QualityScore float64 `json:"qualityScore" binding:"min=0,max=100"`
}

// Review godoc
// @Summary Score a reflection's quality (faculty)
// @Tags reflections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reflection ID"
// @Param body body ReviewReflectionRequest true "Quality score"
// @Success 200 {object} util.Response
// @Router /api/reflections/{id}/review [post]
func (c *ReflectionController) Review(ctx *gin.Context) {
	var req ReviewReflectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.ReflectionService.Review(ctx.Param("id"), req.QualityScore); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// StudentReflections godoc
// @Summary One student's reflections (faculty)
// @Tags reflections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} util.Response{data=[]model.Reflection}
// @Router /api/reflections/students/{id} [get]
func (c *ReflectionController) StudentReflections(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	reflections, err := c.ReflectionService.ListByUser(id)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, reflections)
}
