/*
 * @module api/controllers/audit_controller
 * @description 审计日志控制器，提供按组织的条件分页查询接口
 * @architecture MVC架构 - 控制器层
 * @documentReference ai_docs/processing_pipeline_req.md
 * @stateFlow HTTP请求处理流程
 * @rules 统一的错误处理和响应格式
 * @dependencies foundry-service/service, github.com/go-chi/chi/v5
 * @refs api/routes.go
 */

package controllers

import (
	"net/http"
	"strconv"
	"time"

	"foundry-service/service/audit"

	"github.com/go-chi/render"
)

// AuditController 审计日志控制器
type AuditController struct {
	auditService *audit.Service
}

// NewAuditController 创建审计日志控制器实例
func NewAuditController(auditService *audit.Service) *AuditController {
	return &AuditController{
		auditService: auditService,
	}
}

// ListAuditLogs 查询审计日志
// @Summary 查询审计日志
// @Description 按组织分页查询审计日志，支持用户、操作、资源类型与时间范围过滤
// @Tags 审计
// @Produce json
// @Param organization_id query string true "组织ID"
// @Param user_id query string false "用户ID"
// @Param action query string false "操作类型"
// @Param resource_type query string false "资源类型"
// @Param start_date query string false "开始时间（RFC3339）"
// @Param end_date query string false "结束时间（RFC3339）"
// @Param page query int false "页码" default(1)
// @Param size query int false "每页数量" default(20)
// @Success 200 {object} PaginatedResponse{data=[]models.AuditLog} "查询成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /audit-logs [get]
func (c *AuditController) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	organizationID := query.Get("organization_id")
	if organizationID == "" {
		render.JSON(w, r, BadRequestResponse("组织ID不能为空", nil))
		return
	}

	page, _ := strconv.Atoi(query.Get("page"))
	size, _ := strconv.Atoi(query.Get("size"))
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}

	options := audit.ListOptions{
		Page:         page,
		Size:         size,
		UserID:       query.Get("user_id"),
		Action:       query.Get("action"),
		ResourceType: query.Get("resource_type"),
	}

	if startDate := query.Get("start_date"); startDate != "" {
		t, err := time.Parse(time.RFC3339, startDate)
		if err != nil {
			render.JSON(w, r, BadRequestResponse("开始时间格式错误", err))
			return
		}
		options.StartDate = &t
	}
	if endDate := query.Get("end_date"); endDate != "" {
		t, err := time.Parse(time.RFC3339, endDate)
		if err != nil {
			render.JSON(w, r, BadRequestResponse("结束时间格式错误", err))
			return
		}
		options.EndDate = &t
	}

	logs, total, err := c.auditService.List(organizationID, options)
	if err != nil {
		renderServiceError(w, r, "查询审计日志失败", err)
		return
	}

	render.JSON(w, r, SuccessPaginatedResponse("查询审计日志成功", logs, total, page, size))
}
