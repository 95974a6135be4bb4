/*
 * @module service/filter/engine_test
 * @description 记录过滤引擎的单元测试
 * @architecture 单元测试 - 验证最小长度、日期范围与状态白名单规则
 * @documentReference ai_docs/filter_engine_req.md
 * @stateFlow 测试数据准备 -> 过滤判定 -> 结果验证
 * @rules 覆盖规则未配置、字段缺失与组合规则场景
 * @dependencies testing, github.com/stretchr/testify/assert
 * @refs engine.go
 */

package filter

import (
	"testing"

	"foundry-service/service/models"

	"github.com/stretchr/testify/assert"
)

func TestEngine_ShouldInclude_MinLength(t *testing.T) {
	engine := NewEngine()
	settings := &models.FilterSettings{MinLength: 20}

	tests := []struct {
		name   string
		record map[string]interface{}
		want   bool
	}{
		{
			name:   "内容过短被排除",
			record: map[string]interface{}{"content": "hi"},
			want:   false,
		},
		{
			name:   "内容达到长度通过",
			record: map[string]interface{}{"content": "this message is long enough to pass"},
			want:   true,
		},
		{
			name: "内容字段短但其他字符串字段达标",
			record: map[string]interface{}{
				"content": "hi",
				"notes":   "a sufficiently long annotation field",
			},
			want: true,
		},
		{
			name:   "无字符串字段被排除",
			record: map[string]interface{}{"count": 42},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.ShouldInclude(tt.record, settings))
		})
	}
}

func TestEngine_ShouldInclude_DateRange(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name     string
		settings *models.FilterSettings
		record   map[string]interface{}
		want     bool
	}{
		{
			name: "早于起始日期被排除",
			settings: &models.FilterSettings{
				DateRange: &models.DateRange{Start: "2024-01-01"},
			},
			record: map[string]interface{}{"createdAt": "2023-06-15T00:00:00Z"},
			want:   false,
		},
		{
			name: "落在范围内通过",
			settings: &models.FilterSettings{
				DateRange: &models.DateRange{Start: "2024-01-01", End: "2024-12-31"},
			},
			record: map[string]interface{}{"createdAt": "2024-06-15T00:00:00Z"},
			want:   true,
		},
		{
			name: "晚于结束日期被排除",
			settings: &models.FilterSettings{
				DateRange: &models.DateRange{End: "2024-12-31"},
			},
			record: map[string]interface{}{"updatedAt": "2025-03-01T00:00:00Z"},
			want:   false,
		},
		{
			name: "日期字段不可解析时规则不生效",
			settings: &models.FilterSettings{
				DateRange: &models.DateRange{Start: "2024-01-01"},
			},
			record: map[string]interface{}{"createdAt": "not a date"},
			want:   true,
		},
		{
			name: "无日期字段时规则不生效",
			settings: &models.FilterSettings{
				DateRange: &models.DateRange{Start: "2024-01-01"},
			},
			record: map[string]interface{}{"content": "no dates here"},
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.ShouldInclude(tt.record, tt.settings))
		})
	}
}

func TestEngine_ShouldInclude_Statuses(t *testing.T) {
	engine := NewEngine()
	settings := &models.FilterSettings{Statuses: []string{"closed", "resolved"}}

	tests := []struct {
		name   string
		record map[string]interface{}
		want   bool
	}{
		{
			name:   "状态命中白名单通过",
			record: map[string]interface{}{"status": "Closed"},
			want:   true,
		},
		{
			name:   "状态未命中被排除",
			record: map[string]interface{}{"status": "open"},
			want:   false,
		},
		{
			name:   "state字段同样生效",
			record: map[string]interface{}{"state": "RESOLVED"},
			want:   true,
		},
		{
			name:   "无状态字段时规则不生效",
			record: map[string]interface{}{"content": "no status"},
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.ShouldInclude(tt.record, settings))
		})
	}
}

func TestEngine_ShouldInclude_NilSettings(t *testing.T) {
	engine := NewEngine()
	assert.True(t, engine.ShouldInclude(map[string]interface{}{"content": "x"}, nil))
}

func TestEngine_GetFilterStats(t *testing.T) {
	engine := NewEngine()
	settings := &models.FilterSettings{
		MinLength: 10,
		Statuses:  []string{"closed"},
	}

	records := []map[string]interface{}{
		{"content": "long enough message", "status": "closed"},
		{"content": "hi", "status": "closed"},
		{"content": "another long message", "status": "open"},
	}

	stats := engine.GetFilterStats(records, settings)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Passed)
	assert.Equal(t, 2, stats.Filtered)
	assert.Equal(t, 1, stats.Reasons["minLength"])
	assert.Equal(t, 1, stats.Reasons["status"])
}
