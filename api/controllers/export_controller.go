/*
 * @module api/controllers/export_controller
 * @description 导出控制器，提供导出创建、查询与文件下载接口
 * @architecture MVC架构 - 控制器层
 * @documentReference ai_docs/export_req.md
 * @stateFlow HTTP请求处理流程
 * @rules 统一的错误处理和响应格式；下载接口流式返回文件内容
 * @dependencies foundry-service/service, github.com/go-chi/chi/v5
 * @refs api/routes.go
 */

package controllers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"foundry-service/service/export"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// ExportController 导出控制器
type ExportController struct {
	exportService *export.Service
}

// NewExportController 创建导出控制器实例
func NewExportController(exportService *export.Service) *ExportController {
	return &ExportController{
		exportService: exportService,
	}
}

// CreateExportRequest 创建导出请求结构
type CreateExportRequest struct {
	Format        string `json:"format"`
	SystemPrompt  string `json:"system_prompt"`
	ContextWindow int    `json:"context_window"`
}

// CreateExport 创建导出文件
// @Summary 创建导出文件
// @Description 基于已完成任务的处理结果生成指定格式的导出文件
// @Tags 导出
// @Accept json
// @Produce json
// @Param id path string true "任务ID"
// @Param options body CreateExportRequest true "导出格式与选项"
// @Success 200 {object} APIResponse{data=models.Export} "创建成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 404 {object} APIResponse "任务不存在"
// @Failure 409 {object} APIResponse "任务不满足导出条件"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /jobs/{id}/exports [post]
func (c *ExportController) CreateExport(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	if jobID == "" {
		render.JSON(w, r, BadRequestResponse("任务ID不能为空", nil))
		return
	}

	var req CreateExportRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}

	userID := r.Header.Get("X-User-Id")
	options := &export.Options{
		SystemPrompt:  req.SystemPrompt,
		ContextWindow: req.ContextWindow,
	}

	exp, err := c.exportService.CreateExport(jobID, req.Format, options, userID)
	if err != nil {
		renderServiceError(w, r, "创建导出失败", err)
		return
	}

	render.JSON(w, r, SuccessResponse("创建导出成功", exp))
}

// ListExports 查询任务导出列表
// @Summary 查询任务导出列表
// @Description 按创建时间倒序返回任务的全部导出记录
// @Tags 导出
// @Produce json
// @Param id path string true "任务ID"
// @Success 200 {object} APIResponse{data=[]models.Export} "查询成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /jobs/{id}/exports [get]
func (c *ExportController) ListExports(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	if jobID == "" {
		render.JSON(w, r, BadRequestResponse("任务ID不能为空", nil))
		return
	}

	exports, err := c.exportService.ListByJob(jobID)
	if err != nil {
		renderServiceError(w, r, "查询导出列表失败", err)
		return
	}

	render.JSON(w, r, SuccessResponse("查询导出列表成功", exports))
}

// GetExport 查询导出详情
// @Summary 查询导出详情
// @Description 返回导出文件的格式、大小、记录数与过期时间
// @Tags 导出
// @Produce json
// @Param id path string true "导出ID"
// @Success 200 {object} APIResponse{data=models.Export} "查询成功"
// @Failure 404 {object} APIResponse "导出记录不存在"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /exports/{id} [get]
func (c *ExportController) GetExport(w http.ResponseWriter, r *http.Request) {
	exportID := chi.URLParam(r, "id")
	if exportID == "" {
		render.JSON(w, r, BadRequestResponse("导出ID不能为空", nil))
		return
	}

	exp, err := c.exportService.GetByID(exportID)
	if err != nil {
		renderServiceError(w, r, "查询导出记录失败", err)
		return
	}

	render.JSON(w, r, SuccessResponse("查询导出记录成功", exp))
}

// Download 下载导出文件
// @Summary 下载导出文件
// @Description 流式返回导出文件内容，过期导出拒绝下载
// @Tags 导出
// @Produce octet-stream
// @Param id path string true "导出ID"
// @Success 200 {file} file "文件内容"
// @Failure 404 {object} APIResponse "导出记录或文件不存在"
// @Failure 409 {object} APIResponse "导出文件已过期"
// @Router /exports/{id}/download [get]
func (c *ExportController) Download(w http.ResponseWriter, r *http.Request) {
	exportID := chi.URLParam(r, "id")
	if exportID == "" {
		render.JSON(w, r, BadRequestResponse("导出ID不能为空", nil))
		return
	}

	exp, file, err := c.exportService.Download(exportID)
	if err != nil {
		renderServiceError(w, r, "下载导出文件失败", err)
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", exp.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", filepath.Base(exp.FilePath)))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", exp.FileSize))
	io.Copy(w, file)
}
