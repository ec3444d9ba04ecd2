package controller

import (
	"context"
	"errors"

	"lingo_edu_backend/internal/service"
	"lingo_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReportController struct {
	ReportService *service.ReportService
}

func NewReportController(reportService *service.ReportService) *ReportController {
	return &ReportController{ReportService: reportService}
}

// ClassProgress godoc
// @Summary 班级进度报表
// @Description 汇总班级关联路线下各主题的学习进度。统计耗时较长，客户端断开即中止
// @Tags 报表
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "班级ID"
// @Success 200 {object} util.Response{data=service.ClassReport} "成功"
// @Failure 404 {object} util.Response "班级不存在"
// @Router /api/reports/classes/{id} [get]
func (c *ReportController) ClassProgress(ctx *gin.Context) {
	report, err := c.ReportService.ClassProgress(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrClassNotFound):
			util.NotFound(ctx)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			// 客户端已断开，不再写响应
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, report)
}

// RoleDistribution godoc
// @Summary 平台用户角色分布
// @Tags 报表
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.PlatformReport} "成功"
// @Router /api/reports/roles [get]
func (c *ReportController) RoleDistribution(ctx *gin.Context) {
	report, err := c.ReportService.RoleDistribution(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, report)
}
