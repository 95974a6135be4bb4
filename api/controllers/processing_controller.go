/*
 * @module api/controllers/processing_controller
 * @description 处理任务控制器，提供任务启动、查询、列表与取消接口
 * @architecture MVC架构 - 控制器层
 * @documentReference ai_docs/processing_pipeline_req.md
 * @stateFlow HTTP请求处理流程
 * @rules 统一的错误处理和响应格式；启动接口同步校验资格后立即返回pending任务
 * @dependencies foundry-service/service, github.com/go-chi/chi/v5
 * @refs api/routes.go
 */

package controllers

import (
	"net/http"
	"strconv"

	"foundry-service/service/processing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// ProcessingController 处理任务控制器
type ProcessingController struct {
	processingService *processing.Service
}

// NewProcessingController 创建处理任务控制器实例
func NewProcessingController(processingService *processing.Service) *ProcessingController {
	return &ProcessingController{
		processingService: processingService,
	}
}

// StartJobRequest 启动处理任务请求
type StartJobRequest struct {
	SourceIDs []string `json:"source_ids,omitempty"`
}

// StartJob 启动处理任务
// @Summary 启动处理任务
// @Description 校验项目与数据源资格后创建任务并异步执行流水线，可指定数据源子集
// @Tags 处理任务
// @Accept json
// @Produce json
// @Param id path string true "项目ID"
// @Param request body StartJobRequest false "启动参数"
// @Success 200 {object} APIResponse{data=models.ProcessingJob} "启动成功"
// @Failure 404 {object} APIResponse "项目不存在"
// @Failure 409 {object} APIResponse "项目不满足启动条件"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /projects/{id}/jobs [post]
func (c *ProcessingController) StartJob(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")
	if projectID == "" {
		render.JSON(w, r, BadRequestResponse("项目ID不能为空", nil))
		return
	}

	// 请求体可省略，省略时处理项目全部数据源
	var req StartJobRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
			return
		}
	}

	userID := r.Header.Get("X-User-Id")

	job, err := c.processingService.StartJob(projectID, req.SourceIDs, userID)
	if err != nil {
		renderServiceError(w, r, "启动处理任务失败", err)
		return
	}

	render.JSON(w, r, SuccessResponse("启动处理任务成功", job))
}

// ListJobs 查询项目任务列表
// @Summary 查询项目任务列表
// @Description 按创建时间倒序分页返回项目的处理任务
// @Tags 处理任务
// @Produce json
// @Param id path string true "项目ID"
// @Param page query int false "页码" default(1)
// @Param size query int false "每页数量" default(20)
// @Success 200 {object} PaginatedResponse{data=[]models.ProcessingJob} "查询成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /projects/{id}/jobs [get]
func (c *ProcessingController) ListJobs(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")
	if projectID == "" {
		render.JSON(w, r, BadRequestResponse("项目ID不能为空", nil))
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}

	jobs, total, err := c.processingService.ListJobs(projectID, page, size)
	if err != nil {
		renderServiceError(w, r, "查询任务列表失败", err)
		return
	}

	render.JSON(w, r, SuccessPaginatedResponse("查询任务列表成功", jobs, total, page, size))
}

// GetJob 查询任务详情
// @Summary 查询任务详情
// @Description 返回任务状态、进度、计数与警告错误信息
// @Tags 处理任务
// @Produce json
// @Param id path string true "任务ID"
// @Success 200 {object} APIResponse{data=models.ProcessingJob} "查询成功"
// @Failure 404 {object} APIResponse "任务不存在"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /jobs/{id} [get]
func (c *ProcessingController) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	if jobID == "" {
		render.JSON(w, r, BadRequestResponse("任务ID不能为空", nil))
		return
	}

	job, err := c.processingService.GetJob(jobID)
	if err != nil {
		renderServiceError(w, r, "查询处理任务失败", err)
		return
	}

	render.JSON(w, r, SuccessResponse("查询处理任务成功", job))
}

// CancelJob 取消处理任务
// @Summary 取消处理任务
// @Description 取消pending或processing状态的任务，已处理记录不回滚
// @Tags 处理任务
// @Produce json
// @Param id path string true "任务ID"
// @Success 200 {object} APIResponse{data=models.ProcessingJob} "取消成功"
// @Failure 404 {object} APIResponse "任务不存在"
// @Failure 409 {object} APIResponse "任务状态不可取消"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /jobs/{id}/cancel [post]
func (c *ProcessingController) CancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	if jobID == "" {
		render.JSON(w, r, BadRequestResponse("任务ID不能为空", nil))
		return
	}

	userID := r.Header.Get("X-User-Id")

	job, err := c.processingService.CancelJob(jobID, userID)
	if err != nil {
		renderServiceError(w, r, "取消处理任务失败", err)
		return
	}

	render.JSON(w, r, SuccessResponse("取消处理任务成功", job))
}
