/*
 * @module service/models/project
 * @description 项目模型及项目级PII、过滤配置定义
 * @architecture DDD领域驱动设计 - 实体模型
 * @documentReference ai_docs/processing_pipeline_req.md
 * @stateFlow 项目创建 -> 配置PII/过滤规则 -> 发起处理任务
 * @rules PII与过滤配置以JSONB整体存储，任务启动时快照冻结
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/processing, service/pii, service/filter
 */

package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomPattern 用户自定义PII识别模式
type CustomPattern struct {
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
}

// PiiSettings 项目级PII处理配置
type PiiSettings struct {
	AllowList      []string        `json:"allowList,omitempty"`      // 大小写不敏感的豁免值
	CustomPatterns []CustomPattern `json:"customPatterns,omitempty"` // 自定义正则，大小写不敏感
}

// DateRange 日期范围，边界均可省略
type DateRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// FilterSettings 项目级记录过滤配置，未配置的规则不参与排除
type FilterSettings struct {
	MinLength int        `json:"minLength,omitempty"`
	DateRange *DateRange `json:"dateRange,omitempty"`
	Statuses  []string   `json:"statuses,omitempty"`
}

// Project 数据加工项目模型
type Project struct {
	ID             string          `json:"id" gorm:"primaryKey;type:varchar(36)" example:"550e8400-e29b-41d4-a716-446655440000"`
	OrganizationID string          `json:"organization_id" gorm:"not null;type:varchar(36);index" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name           string          `json:"name" gorm:"not null;size:255" example:"客服工单训练集"`
	Description    string          `json:"description,omitempty" gorm:"type:text"`
	Status         string          `json:"status" gorm:"not null;size:50;default:'draft'" example:"draft"` // draft, processing, completed, error
	PiiSettings    *PiiSettings    `json:"pii_settings,omitempty" gorm:"type:jsonb"`
	FilterSettings *FilterSettings `json:"filter_settings,omitempty" gorm:"type:jsonb"`
	ArchivedAt     *time.Time      `json:"archived_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate GORM钩子，创建前生成UUID
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// PiiSettings 的 Scanner 接口实现
func (s *PiiSettings) Scan(value interface{}) error {
	if value == nil {
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
	return json.Unmarshal(bytes, s)
}

// PiiSettings 的 Valuer 接口实现
func (s PiiSettings) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// FilterSettings 的 Scanner 接口实现
func (s *FilterSettings) Scan(value interface{}) error {
	if value == nil {
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
	return json.Unmarshal(bytes, s)
}

// FilterSettings 的 Valuer 接口实现
func (s FilterSettings) Value() (driver.Value, error) {
	return json.Marshal(s)
}
