/*
 * @module service/audit/audit_service
 * @description 审计日志服务，提供即发即忘的审计写入与条件查询
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/processing_pipeline_req.md
 * @stateFlow 业务操作 -> 审计写入（失败仅记录日志） -> 按组织分页查询
 * @rules 审计写入失败绝不阻断主操作
 * @dependencies gorm.io/gorm, log/slog, service/models
 * @refs service/processing, service/export, service/mapping
 */

package audit

import (
	"log/slog"
	"time"

	"foundry-service/service/models"

	"gorm.io/gorm"
)

// Service 审计日志服务
type Service struct {
	db *gorm.DB
}

// NewService 创建审计日志服务
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Entry 审计写入条目
type Entry struct {
	Action         string
	ResourceType   string
	ResourceID     string
	UserID         string
	OrganizationID string
	Details        models.JSONB
	IPAddress      string
	UserAgent      string
}

// Log 写入审计日志，即发即忘，失败仅记录日志
func (s *Service) Log(entry Entry) {
	log := &models.AuditLog{
		Action:         entry.Action,
		ResourceType:   entry.ResourceType,
		ResourceID:     entry.ResourceID,
		UserID:         entry.UserID,
		OrganizationID: entry.OrganizationID,
		Details:        entry.Details,
		IPAddress:      entry.IPAddress,
		UserAgent:      entry.UserAgent,
	}
	if log.Details == nil {
		log.Details = models.JSONB{}
	}

	if err := s.db.Create(log).Error; err != nil {
		slog.Error("审计日志写入失败", "action", entry.Action, "resource_type", entry.ResourceType, "error", err)
	}
}

// ListOptions 审计日志查询条件
type ListOptions struct {
	Page         int
	Size         int
	UserID       string
	Action       string
	ResourceType string
	StartDate    *time.Time
	EndDate      *time.Time
}

// List 按组织分页查询审计日志
func (s *Service) List(organizationID string, options ListOptions) ([]models.AuditLog, int64, error) {
	if options.Page < 1 {
		options.Page = 1
	}
	if options.Size < 1 {
		options.Size = 20
	}

	query := s.db.Model(&models.AuditLog{}).Where("organization_id = ?", organizationID)
	if options.UserID != "" {
		query = query.Where("user_id = ?", options.UserID)
	}
	if options.Action != "" {
		query = query.Where("action = ?", options.Action)
	}
	if options.ResourceType != "" {
		query = query.Where("resource_type = ?", options.ResourceType)
	}
	if options.StartDate != nil {
		query = query.Where("created_at >= ?", *options.StartDate)
	}
	if options.EndDate != nil {
		query = query.Where("created_at <= ?", *options.EndDate)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.AuditLog
	err := query.Order("created_at DESC").
		Limit(options.Size).
		Offset((options.Page - 1) * options.Size).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
