/*
 * @module service/meta/processing
 * @description 处理任务状态、导出格式、数据源类型等常量定义与校验
 * @architecture 分层架构 - 元数据层
 * @documentReference ai_docs/processing_pipeline_req.md
 * @stateFlow 任务状态流转：pending -> processing -> completed/failed/cancelled
 * @rules 终态任务不可再次流转；导出格式必须属于固定集合
 * @dependencies time
 * @refs service/processing, service/export
 */

package meta

import "time"

// 处理任务状态常量
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
	JobStatusCancelled  = "cancelled"
)

var JobStatuses = []MetaField{
	{Name: "pending", DisplayName: "待处理", Type: "string", Required: true},
	{Name: "processing", DisplayName: "处理中", Type: "string", Required: true},
	{Name: "completed", DisplayName: "已完成", Type: "string", Required: true},
	{Name: "failed", DisplayName: "失败", Type: "string", Required: true},
	{Name: "cancelled", DisplayName: "已取消", Type: "string", Required: true},
}

// IsValidJobStatus 验证任务状态
func IsValidJobStatus(status string) bool {
	switch status {
	case JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// IsTerminalJobStatus 判断是否为终态
func IsTerminalJobStatus(status string) bool {
	switch status {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// 导出格式常量
const (
	ExportFormatConversation = "jsonl_conversation"
	ExportFormatQA           = "jsonl_qa"
	ExportFormatRaw          = "json_raw"
)

var ExportFormats = []MetaField{
	{Name: "jsonl_conversation", DisplayName: "对话JSONL", Type: "string", Required: true},
	{Name: "jsonl_qa", DisplayName: "问答JSONL", Type: "string", Required: true},
	{Name: "json_raw", DisplayName: "原始JSON", Type: "string", Required: true},
}

// IsValidExportFormat 验证导出格式
func IsValidExportFormat(format string) bool {
	switch format {
	case ExportFormatConversation, ExportFormatQA, ExportFormatRaw:
		return true
	}
	return false
}

// ExportRetention 导出文件保留期限，过期后拒绝下载并由清理任务删除
const ExportRetention = 30 * 24 * time.Hour

// 数据源类型常量
const (
	SourceTypeFile        = "file"
	SourceTypeTeamwork    = "teamwork"
	SourceTypeGoHighLevel = "gohighlevel"
)

var SourceTypes = []MetaField{
	{Name: "file", DisplayName: "文件上传", Type: "string", Required: true},
	{Name: "teamwork", DisplayName: "Teamwork工单", Type: "string", Required: true},
	{Name: "gohighlevel", DisplayName: "GoHighLevel会话", Type: "string", Required: true},
}

// IsValidSourceType 验证数据源类型
func IsValidSourceType(sourceType string) bool {
	switch sourceType {
	case SourceTypeFile, SourceTypeTeamwork, SourceTypeGoHighLevel:
		return true
	}
	return false
}

// JobWarningLimit 任务警告信息的持久化上限
const JobWarningLimit = 100
