/*
 * @module api/controllers/mapping_controller
 * @description 字段映射控制器，提供映射查询、整体替换、自动识别与预览接口
 * @architecture MVC架构 - 控制器层
 * @documentReference ai_docs/mapping_detection_req.md
 * @stateFlow HTTP请求处理流程
 * @rules 统一的错误处理和响应格式；保存映射为整体替换语义
 * @dependencies foundry-service/service, github.com/go-chi/chi/v5
 * @refs api/routes.go
 */

package controllers

import (
	"net/http"

	"foundry-service/service/mapping"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// MappingController 字段映射控制器
type MappingController struct {
	mappingService *mapping.Service
}

// NewMappingController 创建字段映射控制器实例
func NewMappingController(mappingService *mapping.Service) *MappingController {
	return &MappingController{
		mappingService: mappingService,
	}
}

// UpdateMappingsRequest 保存映射请求结构
type UpdateMappingsRequest struct {
	Mappings []mapping.MappingInput `json:"mappings"`
}

// GetMappings 查询数据源映射
// @Summary 查询数据源映射
// @Description 返回数据源当前的字段映射集合
// @Tags 字段映射
// @Produce json
// @Param id path string true "数据源ID"
// @Success 200 {object} APIResponse{data=[]models.SourceMapping} "获取成功"
// @Failure 404 {object} APIResponse "数据源不存在"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /sources/{id}/mappings [get]
func (c *MappingController) GetMappings(w http.ResponseWriter, r *http.Request) {
	sourceID := chi.URLParam(r, "id")
	if sourceID == "" {
		render.JSON(w, r, BadRequestResponse("数据源ID不能为空", nil))
		return
	}

	mappings, err := c.mappingService.GetBySource(sourceID)
	if err != nil {
		renderServiceError(w, r, "查询字段映射失败", err)
		return
	}

	render.JSON(w, r, SuccessResponse("查询字段映射成功", mappings))
}

// UpdateMappings 整体替换数据源映射
// @Summary 整体替换数据源映射
// @Description 以请求体中的映射集合整体替换数据源现有映射
// @Tags 字段映射
// @Accept json
// @Produce json
// @Param id path string true "数据源ID"
// @Param mappings body UpdateMappingsRequest true "映射集合"
// @Success 200 {object} APIResponse{data=[]models.SourceMapping} "保存成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 404 {object} APIResponse "数据源不存在"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /sources/{id}/mappings [put]
func (c *MappingController) UpdateMappings(w http.ResponseWriter, r *http.Request) {
	sourceID := chi.URLParam(r, "id")
	if sourceID == "" {
		render.JSON(w, r, BadRequestResponse("数据源ID不能为空", nil))
		return
	}

	var req UpdateMappingsRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}

	userID := r.Header.Get("X-User-Id")
	organizationID := r.Header.Get("X-Organization-Id")

	mappings, err := c.mappingService.UpdateMappings(sourceID, req.Mappings, userID, organizationID)
	if err != nil {
		renderServiceError(w, r, "保存字段映射失败", err)
		return
	}

	render.JSON(w, r, SuccessResponse("保存字段映射成功", mappings))
}

// AutoDetect 自动识别字段映射
// @Summary 自动识别字段映射
// @Description 基于数据源结构的字段名模式自动识别目标字段与PII标记并持久化
// @Tags 字段映射
// @Produce json
// @Param id path string true "数据源ID"
// @Success 200 {object} APIResponse{data=[]mapping.DetectedMapping} "识别成功"
// @Failure 404 {object} APIResponse "数据源不存在"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /sources/{id}/mappings/auto-detect [post]
func (c *MappingController) AutoDetect(w http.ResponseWriter, r *http.Request) {
	sourceID := chi.URLParam(r, "id")
	if sourceID == "" {
		render.JSON(w, r, BadRequestResponse("数据源ID不能为空", nil))
		return
	}

	userID := r.Header.Get("X-User-Id")
	organizationID := r.Header.Get("X-Organization-Id")

	detected, err := c.mappingService.AutoDetect(sourceID, userID, organizationID)
	if err != nil {
		renderServiceError(w, r, "自动识别字段映射失败", err)
		return
	}

	render.JSON(w, r, SuccessResponse("自动识别字段映射成功", detected))
}

// GetPreview 获取映射预览
// @Summary 获取映射预览
// @Description 返回映射集合与按映射转换后的样例数据
// @Tags 字段映射
// @Produce json
// @Param id path string true "数据源ID"
// @Success 200 {object} APIResponse{data=mapping.MappedPreview} "获取成功"
// @Failure 404 {object} APIResponse "数据源不存在"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /sources/{id}/mappings/preview [get]
func (c *MappingController) GetPreview(w http.ResponseWriter, r *http.Request) {
	sourceID := chi.URLParam(r, "id")
	if sourceID == "" {
		render.JSON(w, r, BadRequestResponse("数据源ID不能为空", nil))
		return
	}

	preview, err := c.mappingService.GetPreview(sourceID)
	if err != nil {
		renderServiceError(w, r, "获取映射预览失败", err)
		return
	}

	render.JSON(w, r, SuccessResponse("获取映射预览成功", preview))
}
