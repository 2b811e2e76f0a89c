package controller

import (
	"sst_backend/internal/service"
	"sst_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// StartMaterial godoc
// @Summary Start working on a material
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Success 200 {object} util.Response{data=model.UserMaterialProgress}
// @Failure 403 {object} util.Response
// @Router /api/materials/{id}/start [post]
func (c *ProgressController) StartMaterial(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	claims := util.GetUserFromContext(ctx)
	progress, err := c.ProgressService.StartMaterial(claims.UserID, id)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// swagger:model UpdateProgressRequest
type UpdateProgressRequest struct {
	ProgressPercentage float64 `json:"progress_percentage" binding:"min=0,max=100"`
	LastPosition       *int    `json:"last_position"`
	TimeSpentSeconds   *int    `json:"time_spent_seconds"`
}

// UpdateMaterial godoc
// @Summary Report partial material progress
// @Tags progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Param body body UpdateProgressRequest true "Progress data"
// @Success 200 {object} util.Response{data=model.UserMaterialProgress}
// @Router /api/materials/{id}/progress [put]
func (c *ProgressController) UpdateMaterial(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var req UpdateProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	progress, err := c.ProgressService.UpdateMaterialProgress(
		claims.UserID, id, req.ProgressPercentage, req.LastPosition, req.TimeSpentSeconds)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// CompleteMaterial godoc
// @Summary Mark a material completed
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Success 200 {object} util.Response{data=model.UserMaterialProgress}
// @Router /api/materials/{id}/complete [post]
func (c *ProgressController) CompleteMaterial(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	claims := util.GetUserFromContext(ctx)
	progress, err := c.ProgressService.CompleteMaterial(claims.UserID, id)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// CourseProgress godoc
// @Summary My progress in a course with the requirement gate verdict
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} util.Response{data=service.CourseProgressOverview}
// @Failure 403 {object} util.Response
// @Router /api/courses/{id}/progress [get]
func (c *ProgressController) CourseProgress(ctx *gin.Context) {
	courseID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	claims := util.GetUserFromContext(ctx)
	overview, err := c.ProgressService.GetCourseProgress(claims.UserID, courseID)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, overview)
}

// MyProgress godoc
// @Summary My progress across all enrollments
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]service.CourseProgressOverview}
// @Router /api/progress/mine [get]
func (c *ProgressController) MyProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	overviews, err := c.ProgressService.GetUserProgress(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, overviews)
}

// ResetMaterial godoc
// @Summary Reset a user's material progress (staff)
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Param userId path int true "User ID"
// @Success 200 {object} util.Response
// @Router /api/materials/{id}/progress/{userId} [delete]
func (c *ProgressController) ResetMaterial(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	userID, ok := paramID(ctx, "userId")
	if !ok {
		return
	}
	if err := c.ProgressService.ResetMaterialProgress(userID, id); err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
