/*
 * @module service/models/source
 * @description 数据源与字段映射模型定义
 * @architecture DDD领域驱动设计 - 实体模型
 * @documentReference ai_docs/mapping_detection_req.md
 * @stateFlow 数据源创建 -> 原始结构探测 -> 字段映射自动识别/人工调整
 * @rules 一个数据源一套映射，保存时整体替换；目标字段必须属于规范词汇表
 * @dependencies gorm.io/gorm, github.com/google/uuid, service/meta
 * @refs service/mapping, service/connector
 */

package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"foundry-service/service/meta"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RawSchemaField 数据源原始字段结构
type RawSchemaField struct {
	Name   string        `json:"name"`
	Type   string        `json:"type"`
	Sample []interface{} `json:"sample"`
}

// RawSchema 原始字段结构集合，以JSONB整体存储
type RawSchema []RawSchemaField

// Source 数据源模型，支持文件上传和外部API接入
type Source struct {
	ID         string     `json:"id" gorm:"primaryKey;type:varchar(36)" example:"550e8400-e29b-41d4-a716-446655440000"`
	ProjectID  string     `json:"project_id" gorm:"not null;type:varchar(36);index" example:"550e8400-e29b-41d4-a716-446655440000"`
	Type       string     `json:"type" gorm:"not null;size:50;index" example:"file"` // file, teamwork, gohighlevel
	Name       string     `json:"name" gorm:"not null;size:255" example:"工单导出.csv"`
	Status     string     `json:"status" gorm:"not null;size:50;default:'pending'" example:"pending"` // pending, connected, error
	FilePath   string     `json:"file_path,omitempty" gorm:"type:text"`
	FileSize   int64      `json:"file_size,omitempty" gorm:"default:0"`
	MimeType   string     `json:"mime_type,omitempty" gorm:"size:100"`
	Config     JSONB      `json:"config,omitempty" gorm:"type:jsonb"` // 连接配置，凭证字段以密文存储
	RawSchema  RawSchema  `json:"raw_schema,omitempty" gorm:"type:jsonb"`
	LastSyncAt *time.Time `json:"last_sync_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time  `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate GORM钩子，创建前生成UUID并验证类型
func (s *Source) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if !meta.IsValidSourceType(s.Type) {
		return errors.New("无效的数据源类型: " + s.Type)
	}
	return nil
}

// SourceMapping 字段映射模型，sourceField在一个数据源内唯一
type SourceMapping struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)" example:"550e8400-e29b-41d4-a716-446655440000"`
	SourceID    string    `json:"source_id" gorm:"not null;type:varchar(36);index" example:"550e8400-e29b-41d4-a716-446655440000"`
	SourceField string    `json:"source_field" gorm:"not null;size:255" example:"Customer Email"`
	TargetField string    `json:"target_field" gorm:"not null;size:255" example:"email"`
	Confidence  string    `json:"confidence" gorm:"not null;size:50;default:'low'" example:"high"` // high, medium, low
	IsPii       bool      `json:"is_pii" gorm:"not null;default:false" example:"true"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate GORM钩子，创建前生成UUID并验证目标字段
func (m *SourceMapping) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if !meta.IsValidTargetField(m.TargetField) {
		return errors.New("无效的目标字段: " + m.TargetField)
	}
	return nil
}

// RawSchema 的 Scanner 接口实现
func (r *RawSchema) Scan(value interface{}) error {
	if value == nil {
		*r = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("类型断言失败: 不是 []byte 或 string")
	}
	return json.Unmarshal(bytes, r)
}

// RawSchema 的 Valuer 接口实现
func (r RawSchema) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}
	return json.Marshal(r)
}
