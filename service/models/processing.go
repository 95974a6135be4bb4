/*
 * @module service/models/processing
 * @description 处理任务、已处理记录与导出文件模型定义
 * @architecture DDD领域驱动设计 - 实体模型
 * @documentReference ai_docs/processing_pipeline_req.md
 * @stateFlow 任务创建 -> pending -> processing -> completed/failed/cancelled
 * @rules recordsProcessed不得超过recordsTotal；已处理记录随任务级联删除；导出过期后拒绝下载
 * @dependencies gorm.io/gorm, github.com/google/uuid, github.com/lib/pq, service/meta
 * @refs service/processing, service/export
 */

package models

import (
	"errors"
	"time"

	"foundry-service/service/meta"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ProcessingJob 处理任务模型，一次映射->过滤->PII流水线的执行实体
type ProcessingJob struct {
	ID               string         `json:"id" gorm:"primaryKey;type:varchar(36)" example:"550e8400-e29b-41d4-a716-446655440000"`
	ProjectID        string         `json:"project_id" gorm:"not null;type:varchar(36);index" example:"550e8400-e29b-41d4-a716-446655440000"`
	Status           string         `json:"status" gorm:"not null;size:50;default:'pending';index" example:"pending"` // pending, processing, completed, failed, cancelled
	Progress         int            `json:"progress" gorm:"not null;default:0" example:"0"`                           // 进度百分比 0-100
	RecordsTotal     int            `json:"records_total" gorm:"not null;default:0" example:"0"`
	RecordsProcessed int            `json:"records_processed" gorm:"not null;default:0" example:"0"`
	ConfigSnapshot   JSONB          `json:"config_snapshot,omitempty" gorm:"type:jsonb"` // 启动时冻结的PII/过滤配置与数据源ID
	Warnings         pq.StringArray `json:"warnings,omitempty" gorm:"type:text[]"`
	Errors           pq.StringArray `json:"errors,omitempty" gorm:"type:text[]"`
	StartedAt        *time.Time     `json:"started_at,omitempty"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP;index"`
	UpdatedAt        time.Time      `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate GORM钩子，创建前生成UUID并验证状态
func (j *ProcessingJob) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.New().String()
	}
	if j.Status == "" {
		j.Status = meta.JobStatusPending
	}
	if !meta.IsValidJobStatus(j.Status) {
		return errors.New("无效的任务状态: " + j.Status)
	}
	return nil
}

// CanCancel 判断任务是否可以取消
func (j *ProcessingJob) CanCancel() bool {
	return j.Status == meta.JobStatusPending || j.Status == meta.JobStatusProcessing
}

// IsTerminal 判断任务是否处于终态
func (j *ProcessingJob) IsTerminal() bool {
	return meta.IsTerminalJobStatus(j.Status)
}

// ProcessedRecord 已处理记录模型，写入后不可变
type ProcessedRecord struct {
	ID            string         `json:"id" gorm:"primaryKey;type:varchar(36)" example:"550e8400-e29b-41d4-a716-446655440000"`
	JobID         string         `json:"job_id" gorm:"not null;type:varchar(36);index" example:"550e8400-e29b-41d4-a716-446655440000"`
	SourceID      string         `json:"source_id" gorm:"not null;type:varchar(36);index" example:"550e8400-e29b-41d4-a716-446655440000"`
	OriginalData  JSONB          `json:"original_data" gorm:"type:jsonb;not null"`  // 原始记录快照
	ProcessedData JSONB          `json:"processed_data" gorm:"type:jsonb;not null"` // 映射+PII脱敏后的记录
	PiiTokensMap  JSONBStringMap `json:"pii_tokens_map,omitempty" gorm:"type:jsonb"` // 原始值 -> 占位令牌
	CreatedAt     time.Time      `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate GORM钩子，创建前生成UUID
func (r *ProcessedRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// Export 导出文件模型
type Export struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)" example:"550e8400-e29b-41d4-a716-446655440000"`
	JobID       string    `json:"job_id" gorm:"not null;type:varchar(36);index" example:"550e8400-e29b-41d4-a716-446655440000"`
	Format      string    `json:"format" gorm:"not null;size:50" example:"jsonl_conversation"` // jsonl_conversation, jsonl_qa, json_raw
	FilePath    string    `json:"file_path" gorm:"not null;type:text"`
	FileSize    int64     `json:"file_size" gorm:"not null;default:0" example:"10240"`
	RecordCount int       `json:"record_count" gorm:"not null;default:0" example:"100"`
	ExpiresAt   time.Time `json:"expires_at" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate GORM钩子，创建前生成UUID并验证格式
func (e *Export) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if !meta.IsValidExportFormat(e.Format) {
		return errors.New("无效的导出格式: " + e.Format)
	}
	return nil
}

// IsExpired 判断导出文件是否已过保留期
func (e *Export) IsExpired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// ContentType 根据导出格式返回下载内容类型
func (e *Export) ContentType() string {
	if e.Format == meta.ExportFormatRaw {
		return "application/json"
	}
	return "application/x-jsonlines"
}
