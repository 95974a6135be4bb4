/*
 * @module service/mapping/detector_test
 * @description 字段映射自动识别的单元测试
 * @architecture 单元测试 - 验证模式匹配、置信度与PII标记
 * @documentReference ai_docs/mapping_detection_req.md
 * @stateFlow 测试数据准备 -> 自动识别 -> 结果验证
 * @rules 覆盖模式命中、兜底行为、PII独立判定与幂等性
 * @dependencies testing, github.com/stretchr/testify/assert
 * @refs detector.go
 */

package mapping

import (
	"testing"

	"foundry-service/service/meta"
	"foundry-service/service/models"

	"github.com/stretchr/testify/assert"
)

func TestAutoDetect_PatternMatches(t *testing.T) {
	tests := []struct {
		name           string
		sourceField    string
		wantTarget     string
		wantConfidence string
		wantPii        bool
	}{
		{
			name:           "邮箱字段",
			sourceField:    "Customer Email",
			wantTarget:     meta.TargetFieldEmail,
			wantConfidence: meta.ConfidenceHigh,
			wantPii:        true,
		},
		{
			name:           "电话字段",
			sourceField:    "phone_number",
			wantTarget:     meta.TargetFieldPhone,
			wantConfidence: meta.ConfidenceHigh,
			wantPii:        true,
		},
		{
			name:           "姓名字段",
			sourceField:    "contactName",
			wantTarget:     meta.TargetFieldName,
			wantConfidence: meta.ConfidenceHigh,
			wantPii:        true,
		},
		{
			name:           "内容字段",
			sourceField:    "Message Body",
			wantTarget:     meta.TargetFieldContent,
			wantConfidence: meta.ConfidenceHigh,
			wantPii:        false,
		},
		{
			name:           "状态字段",
			sourceField:    "ticket_status",
			wantTarget:     meta.TargetFieldStatus,
			wantConfidence: meta.ConfidenceHigh,
			wantPii:        false,
		},
		{
			name:           "无法识别的字段落入metadata",
			sourceField:    "internal_ref_77",
			wantTarget:     meta.TargetFieldMetadata,
			wantConfidence: meta.ConfidenceLow,
			wantPii:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema := models.RawSchema{{Name: tt.sourceField, Type: "string"}}
			detected := AutoDetect(schema)

			assert.Len(t, detected, 1)
			assert.Equal(t, tt.sourceField, detected[0].SourceField)
			assert.Equal(t, tt.wantTarget, detected[0].TargetField)
			assert.Equal(t, tt.wantConfidence, detected[0].Confidence)
			assert.Equal(t, tt.wantPii, detected[0].IsPii)
		})
	}
}

func TestAutoDetect_PiiIndicatorIndependentOfTarget(t *testing.T) {
	// 字段名含PII指示词但目标字段落入metadata时，PII标记仍然生效
	schema := models.RawSchema{{Name: "billing_address_line", Type: "string"}}
	detected := AutoDetect(schema)

	assert.Len(t, detected, 1)
	assert.Equal(t, meta.TargetFieldMetadata, detected[0].TargetField)
	assert.True(t, detected[0].IsPii)
}

func TestAutoDetect_FirstPatternWins(t *testing.T) {
	// email模式先于name模式，含两种指示词的字段按首个命中归类
	schema := models.RawSchema{{Name: "email_name", Type: "string"}}
	detected := AutoDetect(schema)

	assert.Equal(t, meta.TargetFieldEmail, detected[0].TargetField)
}

func TestAutoDetect_Idempotent(t *testing.T) {
	schema := models.RawSchema{
		{Name: "Customer Email", Type: "string"},
		{Name: "subject", Type: "string"},
		{Name: "misc", Type: "string"},
	}

	first := AutoDetect(schema)
	second := AutoDetect(schema)

	assert.Equal(t, first, second)
	assert.Len(t, first, 3)
}

func TestAutoDetect_EmptySchema(t *testing.T) {
	detected := AutoDetect(models.RawSchema{})
	assert.Empty(t, detected)

	detected = AutoDetect(nil)
	assert.Empty(t, detected)
}
