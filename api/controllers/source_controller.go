/*
 * @module api/controllers/source_controller
 * @description 数据源控制器，提供连接测试、数据预览与结构探测接口
 * @architecture MVC架构 - 控制器层
 * @documentReference ai_docs/connector_req.md
 * @stateFlow HTTP请求处理流程
 * @rules 统一的错误处理和响应格式
 * @dependencies foundry-service/service, github.com/go-chi/chi/v5
 * @refs api/routes.go
 */

package controllers

import (
	"net/http"

	"foundry-service/service/source"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// SourceController 数据源控制器
type SourceController struct {
	sourceService *source.Service
}

// NewSourceController 创建数据源控制器实例
func NewSourceController(sourceService *source.Service) *SourceController {
	return &SourceController{
		sourceService: sourceService,
	}
}

// TestConnection 测试数据源连通性
// @Summary 测试数据源连通性
// @Description 按数据源类型执行连接测试，文件类型检查文件可读，API类型发起探活请求
// @Tags 数据源
// @Produce json
// @Param id path string true "数据源ID"
// @Success 200 {object} APIResponse{data=connector.ConnectionTestResult} "测试完成"
// @Failure 404 {object} APIResponse "数据源不存在"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /sources/{id}/test-connection [post]
func (c *SourceController) TestConnection(w http.ResponseWriter, r *http.Request) {
	sourceID := chi.URLParam(r, "id")
	if sourceID == "" {
		render.JSON(w, r, BadRequestResponse("数据源ID不能为空", nil))
		return
	}

	result, err := c.sourceService.TestConnection(r.Context(), sourceID)
	if err != nil {
		renderServiceError(w, r, "测试数据源连接失败", err)
		return
	}

	render.JSON(w, r, SuccessResponse("测试数据源连接完成", result))
}

// GetPreview 获取数据源预览
// @Summary 获取数据源预览
// @Description 返回数据源的列名与前10行样例数据
// @Tags 数据源
// @Produce json
// @Param id path string true "数据源ID"
// @Success 200 {object} APIResponse{data=connector.SourcePreview} "获取成功"
// @Failure 404 {object} APIResponse "数据源不存在"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /sources/{id}/preview [get]
func (c *SourceController) GetPreview(w http.ResponseWriter, r *http.Request) {
	sourceID := chi.URLParam(r, "id")
	if sourceID == "" {
		render.JSON(w, r, BadRequestResponse("数据源ID不能为空", nil))
		return
	}

	preview, err := c.sourceService.GetPreview(r.Context(), sourceID)
	if err != nil {
		renderServiceError(w, r, "获取数据源预览失败", err)
		return
	}

	render.JSON(w, r, SuccessResponse("获取数据源预览成功", preview))
}

// DetectSchema 探测数据源结构
// @Summary 探测数据源结构
// @Description 探测数据源字段结构并持久化，返回字段名、类型与样例值
// @Tags 数据源
// @Produce json
// @Param id path string true "数据源ID"
// @Success 200 {object} APIResponse{data=models.RawSchema} "探测成功"
// @Failure 404 {object} APIResponse "数据源不存在"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /sources/{id}/detect-schema [post]
func (c *SourceController) DetectSchema(w http.ResponseWriter, r *http.Request) {
	sourceID := chi.URLParam(r, "id")
	if sourceID == "" {
		render.JSON(w, r, BadRequestResponse("数据源ID不能为空", nil))
		return
	}

	schema, err := c.sourceService.DetectSchema(r.Context(), sourceID)
	if err != nil {
		renderServiceError(w, r, "探测数据源结构失败", err)
		return
	}

	render.JSON(w, r, SuccessResponse("探测数据源结构成功", schema))
}
