/*
 * @module service/mapping/mapping_service
 * @description 字段映射服务，提供映射查询、整体替换保存、自动识别与映射预览
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/mapping_detection_req.md
 * @stateFlow 结构探测 -> 自动识别 -> 整体替换保存 -> 映射预览
 * @rules 保存映射采用先删后插的整体替换，不保留映射历史
 * @dependencies gorm.io/gorm, service/models, service/meta, service/audit
 * @refs detector.go, service/connector
 */

package mapping

import (
	"fmt"

	"foundry-service/service/audit"
	"foundry-service/service/meta"
	"foundry-service/service/models"

	"gorm.io/gorm"
)

// Service 字段映射服务
type Service struct {
	db           *gorm.DB
	auditService *audit.Service
}

// NewService 创建字段映射服务
func NewService(db *gorm.DB, auditService *audit.Service) *Service {
	return &Service{db: db, auditService: auditService}
}

// MappingInput 映射保存输入
type MappingInput struct {
	SourceField string `json:"source_field"`
	TargetField string `json:"target_field"`
	IsPii       bool   `json:"is_pii"`
}

// GetBySource 查询数据源的映射集合
func (s *Service) GetBySource(sourceID string) ([]models.SourceMapping, error) {
	if _, err := s.getSource(sourceID); err != nil {
		return nil, err
	}

	var mappings []models.SourceMapping
	err := s.db.Where("source_id = ?", sourceID).
		Order("source_field").
		Find(&mappings).Error
	return mappings, err
}

// UpdateMappings 整体替换数据源的映射集合
func (s *Service) UpdateMappings(sourceID string, inputs []MappingInput, userID, organizationID string) ([]models.SourceMapping, error) {
	if _, err := s.getSource(sourceID); err != nil {
		return nil, err
	}

	for _, input := range inputs {
		if !meta.IsValidTargetField(input.TargetField) {
			return nil, fmt.Errorf("%w: 无效的目标字段 %s", meta.ErrValidation, input.TargetField)
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("source_id = ?", sourceID).Delete(&models.SourceMapping{}).Error; err != nil {
			return fmt.Errorf("删除旧映射失败: %w", err)
		}

		for _, input := range inputs {
			m := &models.SourceMapping{
				SourceID:    sourceID,
				SourceField: input.SourceField,
				TargetField: input.TargetField,
				Confidence:  meta.ConfidenceHigh,
				IsPii:       input.IsPii,
			}
			if err := tx.Create(m).Error; err != nil {
				return fmt.Errorf("保存映射失败: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditService.Log(audit.Entry{
		Action:         "mapping.updated",
		ResourceType:   "source",
		ResourceID:     sourceID,
		UserID:         userID,
		OrganizationID: organizationID,
		Details:        models.JSONB{"mapping_count": len(inputs)},
	})

	return s.GetBySource(sourceID)
}

// AutoDetect 对数据源原始结构运行自动识别并整体替换保存
func (s *Service) AutoDetect(sourceID string, userID, organizationID string) ([]DetectedMapping, error) {
	source, err := s.getSource(sourceID)
	if err != nil {
		return nil, err
	}

	if len(source.RawSchema) == 0 {
		return []DetectedMapping{}, nil
	}

	detected := AutoDetect(source.RawSchema)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("source_id = ?", sourceID).Delete(&models.SourceMapping{}).Error; err != nil {
			return fmt.Errorf("删除旧映射失败: %w", err)
		}

		for _, d := range detected {
			m := &models.SourceMapping{
				SourceID:    sourceID,
				SourceField: d.SourceField,
				TargetField: d.TargetField,
				Confidence:  d.Confidence,
				IsPii:       d.IsPii,
			}
			if err := tx.Create(m).Error; err != nil {
				return fmt.Errorf("保存映射失败: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditService.Log(audit.Entry{
		Action:         "mapping.auto_detected",
		ResourceType:   "source",
		ResourceID:     sourceID,
		UserID:         userID,
		OrganizationID: organizationID,
		Details:        models.JSONB{"mapping_count": len(detected)},
	})

	return detected, nil
}

// MappedPreview 映射预览结果
type MappedPreview struct {
	Mappings []models.SourceMapping   `json:"mappings"`
	Preview  []map[string]interface{} `json:"preview"`
}

// GetPreview 按当前映射渲染原始样例数据的预览行
func (s *Service) GetPreview(sourceID string) (*MappedPreview, error) {
	source, err := s.getSource(sourceID)
	if err != nil {
		return nil, err
	}

	mappings, err := s.GetBySource(sourceID)
	if err != nil {
		return nil, err
	}

	result := &MappedPreview{Mappings: mappings, Preview: []map[string]interface{}{}}
	if len(source.RawSchema) == 0 {
		return result, nil
	}

	sampleCount := 0
	for _, field := range source.RawSchema {
		if len(field.Sample) > sampleCount {
			sampleCount = len(field.Sample)
		}
	}
	if sampleCount > 3 {
		sampleCount = 3
	}

	samplesByField := make(map[string][]interface{}, len(source.RawSchema))
	for _, field := range source.RawSchema {
		samplesByField[field.Name] = field.Sample
	}

	for i := 0; i < sampleCount; i++ {
		row := make(map[string]interface{})
		for _, m := range mappings {
			if sample, ok := samplesByField[m.SourceField]; ok && i < len(sample) {
				row[m.TargetField] = sample[i]
			}
		}
		result.Preview = append(result.Preview, row)
	}

	return result, nil
}

// ApplyMappings 按映射集合把原始记录转换为规范记录
// 未映射的字段与目标为ignore的字段被丢弃
func ApplyMappings(record map[string]interface{}, mappings []models.SourceMapping) map[string]interface{} {
	mapped := make(map[string]interface{})
	for _, m := range mappings {
		if m.TargetField == meta.TargetFieldIgnore {
			continue
		}
		if value, ok := record[m.SourceField]; ok {
			mapped[m.TargetField] = value
		}
	}
	return mapped
}

func (s *Service) getSource(sourceID string) (*models.Source, error) {
	var source models.Source
	if err := s.db.First(&source, "id = ?", sourceID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: 数据源 %s", meta.ErrNotFound, sourceID)
		}
		return nil, err
	}
	return &source, nil
}
