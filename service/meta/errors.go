/*
 * @module service/meta/errors
 * @description 业务错误类别定义，供控制器层统一映射HTTP响应
 * @architecture 分层架构 - 元数据层
 * @documentReference ai_docs/processing_pipeline_req.md
 * @stateFlow 服务层包装错误 -> 控制器errors.Is判别 -> 响应映射
 * @rules 校验类/资格类错误立即返回调用方，不得重试
 * @dependencies errors
 * @refs api/controllers
 */

package meta

import "errors"

var (
	// ErrNotFound 资源不存在
	ErrNotFound = errors.New("资源不存在")
	// ErrValidation 请求输入不合法
	ErrValidation = errors.New("输入校验失败")
	// ErrNotEligible 前置条件不满足，操作被拒绝
	ErrNotEligible = errors.New("前置条件不满足")
)
