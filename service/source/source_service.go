/*
 * @module service/source/source_service
 * @description 数据源服务，提供连接测试、数据预览与结构探测
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/connector_req.md
 * @stateFlow 数据源查询 -> 连接器分发 -> 测试/预览/探测 -> 结构持久化
 * @rules 结构探测结果写回数据源rawSchema，供自动映射识别使用
 * @dependencies gorm.io/gorm, service/connector, service/models, service/meta
 * @refs api/controllers/source_controller.go, service/mapping
 */

package source

import (
	"context"
	"fmt"

	"foundry-service/service/connector"
	"foundry-service/service/meta"
	"foundry-service/service/models"

	"gorm.io/gorm"
)

// Service 数据源服务
type Service struct {
	db       *gorm.DB
	registry *connector.Registry
}

// NewService 创建数据源服务
func NewService(db *gorm.DB, registry *connector.Registry) *Service {
	return &Service{db: db, registry: registry}
}

// GetByID 按ID查询数据源
func (s *Service) GetByID(id string) (*models.Source, error) {
	var source models.Source
	if err := s.db.First(&source, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: 数据源 %s 不存在", meta.ErrNotFound, id)
		}
		return nil, fmt.Errorf("查询数据源失败: %w", err)
	}
	return &source, nil
}

// TestConnection 测试数据源连通性
func (s *Service) TestConnection(ctx context.Context, sourceID string) (*connector.ConnectionTestResult, error) {
	source, err := s.GetByID(sourceID)
	if err != nil {
		return nil, err
	}

	conn, err := s.registry.Get(source.Type)
	if err != nil {
		return nil, err
	}

	return conn.TestConnection(ctx, source), nil
}

// GetPreview 获取数据源预览数据
func (s *Service) GetPreview(ctx context.Context, sourceID string) (*connector.SourcePreview, error) {
	source, err := s.GetByID(sourceID)
	if err != nil {
		return nil, err
	}

	conn, err := s.registry.Get(source.Type)
	if err != nil {
		return nil, err
	}

	return conn.GetPreview(ctx, source)
}

// DetectSchema 探测数据源结构并写回rawSchema
func (s *Service) DetectSchema(ctx context.Context, sourceID string) (models.RawSchema, error) {
	source, err := s.GetByID(sourceID)
	if err != nil {
		return nil, err
	}

	conn, err := s.registry.Get(source.Type)
	if err != nil {
		return nil, err
	}

	schema, err := conn.DetectSchema(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("探测数据源结构失败: %w", err)
	}

	err = s.db.Model(&models.Source{}).Where("id = ?", sourceID).
		Update("raw_schema", schema).Error
	if err != nil {
		return nil, fmt.Errorf("保存数据源结构失败: %w", err)
	}

	return schema, nil
}
