package controller

import (
	"encoding/json"
	"errors"

	"cptncf_backend/internal/model"
	"cptncf_backend/internal/service"
	"cptncf_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PeerEvaluationController struct {
	EvalService *service.PeerEvaluationService
	AuthService *service.AuthService
}

func NewPeerEvaluationController(evalService *service.PeerEvaluationService, authService *service.AuthService) *PeerEvaluationController {
	return &PeerEvaluationController{
		EvalService: evalService,
		AuthService: authService,
	}
}

// swagger:model SubmitEvaluationRequest
type SubmitEvaluationRequest struct {
	TeacherID  uint `json:"teacherId" binding:"required"`
	WeekNumber int  `json:"weekNumber" binding:"required,min=1"`

	ContentMastery          int `json:"contentMastery" binding:"min=0,max=30"`
	ProfessionalApplication int `json:"professionalApplication" binding:"min=0,max=25"`
	TeachingMethodology     int `json:"teachingMethodology" binding:"min=0,max=25"`
	ProfessionalDelivery    int `json:"professionalDelivery" binding:"min=0,max=20"`

	NegativeIndicators []model.NegativeIndicator `json:"negativeIndicators"`
	Comments           string                    `json:"comments"`
}

// Submit godoc
// @Summary Submit a peer-teaching rubric
// @Tags evaluations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SubmitEvaluationRequest true "Rubric"
// @Success 201 {object} util.Response{data=model.PeerEvaluation}
// @Failure 409 {object} util.Response "Already submitted for this rotation"
// @Router /api/evaluations [post]
func (c *PeerEvaluationController) Submit(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SubmitEvaluationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	evaluation := &model.PeerEvaluation{
		EvaluatorID:             user.ID,
		TeacherID:               req.TeacherID,
		WeekNumber:              req.WeekNumber,
		ContentMastery:          req.ContentMastery,
		ProfessionalApplication: req.ProfessionalApplication,
		TeachingMethodology:     req.TeachingMethodology,
		ProfessionalDelivery:    req.ProfessionalDelivery,
		Comments:                req.Comments,
		IsFacultyBenchmark:      user.Role == model.Faculty,
	}
	if len(req.NegativeIndicators) > 0 {
		payload, err := json.Marshal(req.NegativeIndicators)
		if err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
		evaluation.NegativeIndicators = payload
	}

	if err := c.EvalService.Submit(evaluation); err != nil {
		switch {
		case errors.Is(err, util.ErrSelfEvaluation),
			errors.Is(err, util.ErrSectionOutOfRange):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrUserNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrDuplicateEvaluation):
			util.Error(ctx, 409, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, evaluation)
}

// Received godoc
// @Summary Evaluations received by the caller as teacher
// @Tags evaluations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.PeerEvaluation}
// @Router /api/evaluations/received [get]
func (c *PeerEvaluationController) Received(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	evaluations, err := c.EvalService.Received(user.ID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, evaluations)
}

// Given godoc
// @Summary Evaluations the caller has given
// @Tags evaluations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.PeerEvaluation}
// @Router /api/evaluations/given [get]
func (c *PeerEvaluationController) Given(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	evaluations, err := c.EvalService.Given(user.ID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, evaluations)
}

// ByWeek godoc
// @Summary All evaluations for a rotation week (faculty)
// @Tags evaluations
// @Produce json
// @Security BearerAuth
// @Param week query int true "Week number"
// @Success 200 {object} util.Response{data=[]model.PeerEvaluation}
// @Router /api/evaluations [get]
func (c *PeerEvaluationController) ByWeek(ctx *gin.Context) {
	week := util.ParsePositiveInt(ctx.Query("week"), 1)
	evaluations, err := c.EvalService.ByWeek(week)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, evaluations)
}
