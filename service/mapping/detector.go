/*
 * @module service/mapping/detector
 * @description 字段映射自动识别，基于字段名模式表与PII指示词
 * @architecture 分层架构 - 业务服务层，纯函数实现
 * @documentReference ai_docs/mapping_detection_req.md
 * @stateFlow 字段名小写 -> 模式表顺序匹配 -> PII指示词独立判定
 * @rules 模式表首个命中即生效；未命中默认metadata/low；PII判定与目标字段判定互相独立
 * @dependencies strings, service/meta
 * @refs service/meta/target_fields.go, mapping_service.go
 */

package mapping

import (
	"strings"

	"foundry-service/service/meta"
	"foundry-service/service/models"
)

// DetectedMapping 自动识别出的字段映射
type DetectedMapping struct {
	SourceField string `json:"source_field" example:"Customer Email"`
	TargetField string `json:"target_field" example:"email"`
	Confidence  string `json:"confidence" example:"high"`
	IsPii       bool   `json:"is_pii" example:"true"`
}

// AutoDetect 根据原始字段结构自动识别映射，纯函数、幂等、不修改输入
// 多个原始字段映射到同一目标字段是允许的，不做去重
func AutoDetect(rawSchema models.RawSchema) []DetectedMapping {
	mappings := make([]DetectedMapping, 0, len(rawSchema))

	for _, field := range rawSchema {
		fieldName := strings.ToLower(field.Name)

		targetField := meta.TargetFieldMetadata
		confidence := meta.ConfidenceLow

		// 模式表按表序匹配，首个命中即生效
		for _, fp := range meta.FieldPatterns {
			matched := false
			for _, pattern := range fp.Patterns {
				if pattern.MatchString(fieldName) {
					targetField = fp.Target
					confidence = meta.ConfidenceHigh
					matched = true
					break
				}
			}
			if matched {
				break
			}
		}

		// PII判定独立于目标字段判定，子串命中即标记
		isPii := false
		for _, indicator := range meta.PiiIndicators {
			if strings.Contains(fieldName, indicator) {
				isPii = true
				break
			}
		}

		mappings = append(mappings, DetectedMapping{
			SourceField: field.Name,
			TargetField: targetField,
			Confidence:  confidence,
			IsPii:       isPii,
		})
	}

	return mappings
}
