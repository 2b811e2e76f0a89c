package controller

import (
	"sst_backend/internal/service"
	"sst_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	DashboardService *service.DashboardService
}

func NewDashboardController(dashboardService *service.DashboardService) *DashboardController {
	return &DashboardController{DashboardService: dashboardService}
}

// Overview godoc
// @Summary Compliance overview (staff)
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.DashboardOverview}
// @Router /api/dashboard [get]
func (c *DashboardController) Overview(ctx *gin.Context) {
	overview, err := c.DashboardService.Overview()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, overview)
}
