/*
 * @module service/pii/engine_test
 * @description PII检测与令牌化引擎的单元测试
 * @architecture 单元测试 - 验证令牌稳定性、模式电池、白名单与自定义模式
 * @documentReference ai_docs/pii_engine_req.md
 * @stateFlow 测试数据准备 -> 引擎处理 -> 结果验证
 * @rules 覆盖人名、电话、邮箱、白名单、自定义模式与非字符串透传
 * @dependencies testing, github.com/stretchr/testify/assert
 * @refs engine.go, ner.go
 */

package pii

import (
	"testing"

	"foundry-service/service/models"

	"github.com/stretchr/testify/assert"
)

func contentMapping(isPii bool) []models.SourceMapping {
	return []models.SourceMapping{
		{SourceField: "Message Body", TargetField: "content", IsPii: isPii},
	}
}

func TestEngine_Process_NameAndPhone(t *testing.T) {
	engine := NewEngine()

	record := map[string]interface{}{
		"content": "Call John Smith at 555-123-4567",
	}
	result := engine.Process(record, contentMapping(false), nil)

	assert.Equal(t, "Call [NAME_0001] at [PHONE_0002]", result.ProcessedData["content"])
	assert.Equal(t, "[NAME_0001]", result.TokensMap["John Smith"])
	assert.Equal(t, "[PHONE_0002]", result.TokensMap["555-123-4567"])
}

func TestEngine_Process_TokenStability(t *testing.T) {
	engine := NewEngine()

	first := engine.Process(map[string]interface{}{
		"content": "email me at jane@acme.com",
	}, contentMapping(false), nil)
	second := engine.Process(map[string]interface{}{
		"content": "再次联系 jane@acme.com，以及 bob@acme.com",
	}, contentMapping(false), nil)

	// 同一原值跨记录复用同一令牌，新值编号递增
	assert.Equal(t, "[EMAIL_0001]", first.TokensMap["jane@acme.com"])
	assert.Equal(t, "[EMAIL_0001]", second.TokensMap["jane@acme.com"])
	assert.Equal(t, "[EMAIL_0002]", second.TokensMap["bob@acme.com"])
}

func TestEngine_Process_AllowList(t *testing.T) {
	engine := NewEngine()

	settings := &models.PiiSettings{AllowList: []string{"john smith"}}
	record := map[string]interface{}{
		"content": "Call John Smith at 555-123-4567",
	}
	result := engine.Process(record, contentMapping(false), settings)

	// 白名单值保留原文，其余照常令牌化
	assert.Equal(t, "Call John Smith at [PHONE_0001]", result.ProcessedData["content"])
	assert.NotContains(t, result.TokensMap, "John Smith")
}

func TestEngine_Process_CustomPatterns(t *testing.T) {
	engine := NewEngine()

	settings := &models.PiiSettings{
		CustomPatterns: []models.CustomPattern{
			{Name: "ticket", Pattern: `TKT-\d+`},
			{Name: "broken", Pattern: `([`}, // 非法正则静默跳过
		},
	}
	record := map[string]interface{}{
		"content": "工单编号 TKT-42 已关闭",
	}
	result := engine.Process(record, contentMapping(false), settings)

	assert.Equal(t, "工单编号 [TICKET_0001] 已关闭", result.ProcessedData["content"])
	assert.Equal(t, "[TICKET_0001]", result.TokensMap["TKT-42"])
}

func TestEngine_Process_PiiFieldForcesNameDetection(t *testing.T) {
	engine := NewEngine()

	mappings := []models.SourceMapping{
		{SourceField: "Customer Name", TargetField: "name", IsPii: true},
	}
	record := map[string]interface{}{
		"name": "Dr Johnson",
	}
	result := engine.Process(record, mappings, nil)

	// 称谓后仅姓氏被令牌化
	assert.Equal(t, "Dr [NAME_0001]", result.ProcessedData["name"])
	assert.Equal(t, "[NAME_0001]", result.TokensMap["Johnson"])
}

func TestEngine_Process_NonStringPassthrough(t *testing.T) {
	engine := NewEngine()

	record := map[string]interface{}{
		"count":   42,
		"active":  true,
		"content": "无敏感信息的普通文本",
	}
	result := engine.Process(record, contentMapping(false), nil)

	assert.Equal(t, 42, result.ProcessedData["count"])
	assert.Equal(t, true, result.ProcessedData["active"])
	assert.Equal(t, "无敏感信息的普通文本", result.ProcessedData["content"])
	assert.Empty(t, result.TokensMap)
}

func TestEngine_Reset(t *testing.T) {
	engine := NewEngine()

	engine.Process(map[string]interface{}{
		"content": "联系 jane@acme.com",
	}, contentMapping(false), nil)
	engine.Reset()

	result := engine.Process(map[string]interface{}{
		"content": "联系 other@acme.com",
	}, contentMapping(false), nil)

	// 计数器归零后重新从0001开始
	assert.Equal(t, "[EMAIL_0001]", result.TokensMap["other@acme.com"])
}

func TestHeuristicNameDetector(t *testing.T) {
	detector := NewHeuristicNameDetector()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "常见名+姓氏",
			text: "please ask John Smith tomorrow",
			want: []string{"John Smith"},
		},
		{
			name: "敬称+姓氏",
			text: "Schedule with Dr Johnson",
			want: []string{"Johnson"},
		},
		{
			name: "无人名",
			text: "the quick brown fox",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detector.DetectNames(tt.text)
			if tt.want == nil {
				assert.Empty(t, got)
			} else {
				assert.Equal(t, tt.want, got)
			}
			assert.Equal(t, len(tt.want) > 0, detector.ContainsName(tt.text))
		})
	}
}
