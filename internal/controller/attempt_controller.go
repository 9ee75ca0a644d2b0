package controller

import (
	"errors"

	"cptncf_backend/internal/service"
	"cptncf_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// AttemptController exposes the live two-phase session. Every action returns
// the full session snapshot; invalid transitions are absorbed by the state
// machine, so the snapshot is the authoritative answer to "did that work".
type AttemptController struct {
	AttemptService *service.AttemptService
	AuthService    *service.AuthService
}

func NewAttemptController(attemptService *service.AttemptService, authService *service.AuthService) *AttemptController {
	return &AttemptController{
		AttemptService: attemptService,
		AuthService:    authService,
	}
}

// swagger:model StartAttemptRequest
type StartAttemptRequest struct {
	AssessmentID uint `json:"assessmentId" binding:"required"`
}

// Start godoc
// @Summary Start an assessment attempt
// @Tags attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body StartAttemptRequest true "Assessment to start"
// @Success 201 {object} util.Response{data=service.SessionState}
// @Failure 403 {object} util.Response "Assessment closed"
// @Failure 409 {object} util.Response "Attempt already in progress"
// @Router /api/attempts [post]
func (c *AttemptController) Start(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req StartAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	state, err := c.AttemptService.Start(user.ID, req.AssessmentID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAssessmentNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrAssessmentClosed):
			util.Error(ctx, 403, err.Error())
		case errors.Is(err, util.ErrAttemptInProgress):
			util.Error(ctx, 409, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, state)
}

// swagger:model SelectAnswerRequest
type SelectAnswerRequest struct {
	OptionID uint `json:"optionId" binding:"required"`
}

// SelectAnswer godoc
// @Summary Select (not lock) an answer option for the current question
// @Tags attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Attempt ID"
// @Param body body SelectAnswerRequest true "Option"
// @Success 200 {object} util.Response{data=service.SessionState}
// @Router /api/attempts/{id}/answer [put]
func (c *AttemptController) SelectAnswer(ctx *gin.Context) {
	var req SelectAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	c.respond(ctx, func(id string) (*service.SessionState, error) {
		return c.AttemptService.SelectAnswer(id, req.OptionID)
	})
}

// LockAnswer godoc
// @Summary Lock the selected answer and enter the rationale phase
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Attempt ID"
// @Success 200 {object} util.Response{data=service.SessionState}
// @Router /api/attempts/{id}/lock [post]
func (c *AttemptController) LockAnswer(ctx *gin.Context) {
	c.respond(ctx, c.AttemptService.LockAnswer)
}

// swagger:model SelectRationaleRequest
type SelectRationaleRequest struct {
	RationaleID uint `json:"rationaleId" binding:"required"`
}

// SelectRationale godoc
// @Summary Select a rationale for the locked answer
// @Tags attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Attempt ID"
// @Param body body SelectRationaleRequest true "Rationale"
// @Success 200 {object} util.Response{data=service.SessionState}
// @Router /api/attempts/{id}/rationale [put]
func (c *AttemptController) SelectRationale(ctx *gin.Context) {
	var req SelectRationaleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	c.respond(ctx, func(id string) (*service.SessionState, error) {
		return c.AttemptService.SelectRationale(id, req.RationaleID)
	})
}

// SubmitRationale godoc
// @Summary Submit the rationale and advance to the next question
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Attempt ID"
// @Success 200 {object} util.Response{data=service.SessionState}
// @Router /api/attempts/{id}/submit [post]
func (c *AttemptController) SubmitRationale(ctx *gin.Context) {
	c.respond(ctx, c.AttemptService.SubmitRationale)
}

// Flag godoc
// @Summary Flag the current question for later review
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Attempt ID"
// @Success 200 {object} util.Response{data=service.SessionState}
// @Router /api/attempts/{id}/flag [post]
func (c *AttemptController) Flag(ctx *gin.Context) {
	c.respond(ctx, c.AttemptService.FlagForReview)
}

// swagger:model NavigateRequest
type NavigateRequest struct {
	Index int `json:"index"`
}

// Navigate godoc
// @Summary Navigate to a question in review (completed attempts only)
// @Tags attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Attempt ID"
// @Param body body NavigateRequest true "Question index"
// @Success 200 {object} util.Response{data=service.SessionState}
// @Router /api/attempts/{id}/navigate [put]
func (c *AttemptController) Navigate(ctx *gin.Context) {
	var req NavigateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	c.respond(ctx, func(id string) (*service.SessionState, error) {
		return c.AttemptService.NavigateTo(id, req.Index)
	})
}

// Abandon godoc
// @Summary Abandon the attempt
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Attempt ID"
// @Success 200 {object} util.Response{data=service.SessionState}
// @Router /api/attempts/{id}/abandon [post]
func (c *AttemptController) Abandon(ctx *gin.Context) {
	c.respond(ctx, c.AttemptService.Abandon)
}

// State godoc
// @Summary Current session snapshot
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Attempt ID"
// @Success 200 {object} util.Response{data=service.SessionState}
// @Router /api/attempts/{id} [get]
func (c *AttemptController) State(ctx *gin.Context) {
	c.respond(ctx, c.AttemptService.State)
}

// History godoc
// @Summary The caller's attempt history
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.AssessmentAttempt}
// @Router /api/attempts [get]
func (c *AttemptController) History(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attempts, err := c.AttemptService.ListByStudent(user.ID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

// Results godoc
// @Summary Every attempt on an assessment with class aggregates (faculty)
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assessment ID"
// @Success 200 {object} util.Response{data=service.AssessmentResults}
// @Failure 404 {object} util.Response
// @Router /api/assessments/{id}/results [get]
func (c *AttemptController) Results(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	results, err := c.AttemptService.ResultsByAssessment(id)
	if err != nil {
		if errors.Is(err, util.ErrAssessmentNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, results)
}

func (c *AttemptController) respond(ctx *gin.Context, action func(string) (*service.SessionState, error)) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attemptID := ctx.Param("id")

	// Sessions belong to the student who started them; check before acting.
	attempt, err := c.AttemptService.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, util.ErrAttemptNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	if attempt.StudentID != user.ID {
		util.Forbidden(ctx)
		return
	}

	state, err := action(attemptID)
	if err != nil {
		if errors.Is(err, util.ErrAttemptNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, state)
}
