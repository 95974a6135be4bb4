/*
 * @module api/controllers/response
 * @description 统一API响应结构与构造函数
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 无状态响应构造
 * @rules 成功响应Status为0，失败响应Status为对应HTTP状态码
 * @dependencies net/http
 * @refs api/routes.go
 */

package controllers

import (
	"errors"
	"net/http"

	"foundry-service/service/meta"

	"github.com/go-chi/render"
)

// APIResponse 统一API响应结构
type APIResponse struct {
	Status int         `json:"status" example:"0"`
	Msg    string      `json:"msg" example:"操作成功"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// PaginatedResponse 分页响应结构
type PaginatedResponse struct {
	Status int         `json:"status" example:"0"`
	Msg    string      `json:"msg" example:"操作成功"`
	Data   interface{} `json:"data"`
	Total  int64       `json:"total" example:"100"`
	Page   int         `json:"page" example:"1"`
	Size   int         `json:"size" example:"10"`
}

// SuccessResponse 构造成功响应
func SuccessResponse(msg string, data interface{}) APIResponse {
	return APIResponse{
		Status: 0,
		Msg:    msg,
		Data:   data,
	}
}

// SuccessPaginatedResponse 构造分页成功响应
func SuccessPaginatedResponse(msg string, data interface{}, total int64, page, size int) PaginatedResponse {
	return PaginatedResponse{
		Status: 0,
		Msg:    msg,
		Data:   data,
		Total:  total,
		Page:   page,
		Size:   size,
	}
}

// BadRequestResponse 构造请求参数错误响应
func BadRequestResponse(msg string, err error) APIResponse {
	return errorResponse(http.StatusBadRequest, msg, err)
}

// NotFoundResponse 构造资源不存在响应
func NotFoundResponse(msg string, err error) APIResponse {
	return errorResponse(http.StatusNotFound, msg, err)
}

// ConflictResponse 构造资格冲突响应
func ConflictResponse(msg string, err error) APIResponse {
	return errorResponse(http.StatusConflict, msg, err)
}

// InternalErrorResponse 构造服务器内部错误响应
func InternalErrorResponse(msg string, err error) APIResponse {
	return errorResponse(http.StatusInternalServerError, msg, err)
}

// renderServiceError 按业务错误类别渲染对应响应
func renderServiceError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	switch {
	case errors.Is(err, meta.ErrNotFound):
		render.JSON(w, r, NotFoundResponse(msg, err))
	case errors.Is(err, meta.ErrValidation):
		render.JSON(w, r, BadRequestResponse(msg, err))
	case errors.Is(err, meta.ErrNotEligible):
		render.JSON(w, r, ConflictResponse(msg, err))
	default:
		render.JSON(w, r, InternalErrorResponse(msg, err))
	}
}

func errorResponse(status int, msg string, err error) APIResponse {
	response := APIResponse{
		Status: status,
		Msg:    msg,
	}
	if err != nil {
		response.Error = err.Error()
	}
	return response
}
