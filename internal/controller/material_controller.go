package controller

import (
	"time"

	"cptncf_backend/internal/service"
	"cptncf_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type MaterialController struct {
	MaterialService *service.MaterialService
	AuthService     *service.AuthService
}

func NewMaterialController(materialService *service.MaterialService, authService *service.AuthService) *MaterialController {
	return &MaterialController{
		MaterialService: materialService,
		AuthService:     authService,
	}
}

// Upload godoc
// @Summary Upload a teaching material (slides or session recording)
// @Tags materials
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "File"
// @Param title formData string true "Title"
// @Param week formData int true "Week number"
// @Param sessionDate formData string false "Session date, YYYY-MM-DD"
// @Success 201 {object} util.Response{data=model.TeachingMaterial}
// @Router /api/materials [post]
func (c *MaterialController) Upload(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	header, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}
	title := ctx.PostForm("title")
	if title == "" {
		util.BadRequest(ctx, "title is required")
		return
	}
	week := util.ParsePositiveInt(ctx.PostForm("week"), 1)

	var sessionDate *time.Time
	if raw := ctx.PostForm("sessionDate"); raw != "" {
		parsed, err := time.Parse(util.DateFormat, raw)
		if err != nil {
			util.BadRequest(ctx, "sessionDate must be "+util.DateFormat)
			return
		}
		sessionDate = &parsed
	}

	material, err := c.MaterialService.Upload(
		ctx.Request.Context(), user.ID, user.GroupID, week, title, header, sessionDate)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Created(ctx, material)
}

// Mine godoc
// @Summary The caller's uploaded materials
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.TeachingMaterial}
// @Router /api/materials [get]
func (c *MaterialController) Mine(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	materials, err := c.MaterialService.ListByUploader(user.ID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, materials)
}

// ByGroupWeek godoc
// @Summary Materials for a group's teaching week
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Param week query int true "Week number"
// @Success 200 {object} util.Response{data=[]model.TeachingMaterial}
// @Router /api/groups/{id}/materials [get]
func (c *MaterialController) ByGroupWeek(ctx *gin.Context) {
	groupID := util.MustParseUint(ctx.Param("id"))
	week := util.ParsePositiveInt(ctx.Query("week"), 1)

	materials, err := c.MaterialService.ListByGroupAndWeek(groupID, week)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, materials)
}

// Delete godoc
// @Summary Delete a material (uploader or faculty)
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Param id path string true "Material ID"
// @Success 200 {object} util.Response
// @Router /api/materials/{id} [delete]
func (c *MaterialController) Delete(ctx *gin.Context) {
	if err := c.MaterialService.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
