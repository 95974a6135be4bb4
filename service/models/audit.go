/*
 * @module service/models/audit
 * @description 审计日志模型定义
 * @architecture DDD领域驱动设计 - 实体模型
 * @documentReference ai_docs/processing_pipeline_req.md
 * @stateFlow 业务操作 -> 审计写入（即发即忘）
 * @rules 审计写入失败不得影响主操作
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/audit
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLog 审计日志模型
type AuditLog struct {
	ID             string    `json:"id" gorm:"primaryKey;type:varchar(36)" example:"550e8400-e29b-41d4-a716-446655440000"`
	Action         string    `json:"action" gorm:"not null;size:100;index" example:"job.started"`
	ResourceType   string    `json:"resource_type" gorm:"not null;size:50;index" example:"processing_job"`
	ResourceID     string    `json:"resource_id" gorm:"not null;type:varchar(36)" example:"550e8400-e29b-41d4-a716-446655440000"`
	UserID         string    `json:"user_id" gorm:"not null;type:varchar(36);index" example:"550e8400-e29b-41d4-a716-446655440000"`
	OrganizationID string    `json:"organization_id" gorm:"not null;type:varchar(36);index" example:"550e8400-e29b-41d4-a716-446655440000"`
	Details        JSONB     `json:"details,omitempty" gorm:"type:jsonb"`
	IPAddress      string    `json:"ip_address,omitempty" gorm:"size:45"`
	UserAgent      string    `json:"user_agent,omitempty" gorm:"type:text"`
	CreatedAt      time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

// BeforeCreate GORM钩子，创建前生成UUID
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}
