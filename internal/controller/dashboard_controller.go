package controller

import (
	"qbank_review_backend/internal/service"
	"qbank_review_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	DashboardService *service.DashboardService
}

func NewDashboardController(dashboardService *service.DashboardService) *DashboardController {
	return &DashboardController{DashboardService: dashboardService}
}

// QueueCounts godoc
// @Summary 审核看板：各状态题量
// @Tags 看板
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/dashboard/queues [get]
func (c *DashboardController) QueueCounts(ctx *gin.Context) {
	counts, err := c.DashboardService.QueueCounts(ctx.Request.Context())
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, counts)
}

// Classifications godoc
// @Summary 已使用的分类索引
// @Tags 看板
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Classification} "成功"
// @Router /api/dashboard/classifications [get]
func (c *DashboardController) Classifications(ctx *gin.Context) {
	cs, err := c.DashboardService.Classifications(ctx.Request.Context())
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, cs)
}
