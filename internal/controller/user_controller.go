package controller

import (
	"errors"

	"cptncf_backend/internal/model"
	"cptncf_backend/internal/service"
	"cptncf_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService  *service.UserService
	GroupService *service.GroupService
}

func NewUserController(userService *service.UserService, groupService *service.GroupService) *UserController {
	return &UserController{
		UserService:  userService,
		GroupService: groupService,
	}
}

// ListStudents godoc
// @Summary List students (faculty)
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param name query string false "Name or email filter"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/students [get]
func (c *UserController) ListStudents(ctx *gin.Context) {
	page := util.ParsePositiveInt(ctx.Query("page"), 1)
	limit := util.ParsePositiveInt(ctx.Query("limit"), 20)

	students, total, err := c.UserService.ListStudents(ctx.Query("name"), page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: students, Total: total, Page: page, Limit: limit})
}

// swagger:model AttendanceRequest
type AttendanceRequest struct {
	Rate float64 `json:"rate" binding:"min=0,max=1"`
}

// SetAttendance godoc
// @Summary Set a student's attendance rate (faculty)
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param body body AttendanceRequest true "Attendance rate 0..1"
// @Success 200 {object} util.Response
// @Router /api/students/{id}/attendance [put]
func (c *UserController) SetAttendance(ctx *gin.Context) {
	var req AttendanceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	id := util.MustParseUint(ctx.Param("id"))
	if err := c.UserService.SetAttendance(id, req.Rate); err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Success(ctx, nil)
}

// ListGroups godoc
// @Summary List study groups
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.StudyGroup}
// @Router /api/groups [get]
func (c *UserController) ListGroups(ctx *gin.Context) {
	groups, err := c.GroupService.List()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, groups)
}

// CreateGroup godoc
// @Summary Create a study group (faculty)
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.StudyGroup true "Group"
// @Success 201 {object} util.Response{data=model.StudyGroup}
// @Router /api/groups [post]
func (c *UserController) CreateGroup(ctx *gin.Context) {
	var group model.StudyGroup
	if err := ctx.ShouldBindJSON(&group); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.GroupService.Create(&group); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, group)
}

// swagger:model AssignMemberRequest
type AssignMemberRequest struct {
	UserID uint   `json:"userId" binding:"required"`
	Role   string `json:"role" binding:"required,oneof=teacher facilitator assessor"`
}

// AssignMember godoc
// @Summary Assign a student to a group with a rotation role (faculty)
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Param body body AssignMemberRequest true "Member and role"
// @Success 200 {object} util.Response
// @Router /api/groups/{id}/members [post]
func (c *UserController) AssignMember(ctx *gin.Context) {
	var req AssignMemberRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	groupID := util.MustParseUint(ctx.Param("id"))
	if err := c.GroupService.AssignMember(groupID, req.UserID, model.RotationRole(req.Role)); err != nil {
		switch {
		case errors.Is(err, util.ErrUserNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// Rotate godoc
// @Summary Advance the group's teaching rotation (faculty)
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Success 200 {object} util.Response
// @Router /api/groups/{id}/rotate [post]
func (c *UserController) Rotate(ctx *gin.Context) {
	groupID := util.MustParseUint(ctx.Param("id"))
	if err := c.GroupService.Rotate(groupID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
