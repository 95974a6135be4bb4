/*
 * @module service/filter/engine
 * @description 记录过滤引擎，按项目配置的最小长度、日期范围与状态白名单决定记录去留
 * @architecture 分层架构 - 业务服务层，无状态引擎
 * @documentReference ai_docs/filter_engine_req.md
 * @stateFlow 最小长度检查 -> 日期范围检查 -> 状态白名单检查
 * @rules 未配置的规则不参与排除；已配置规则全部通过才纳入
 * @dependencies github.com/spf13/cast, service/models
 * @refs service/processing
 */

package filter

import (
	"strings"
	"time"

	"foundry-service/service/models"

	"github.com/spf13/cast"
)

// contentFields 最小长度优先检查的内容字段
var contentFields = []string{"content", "message", "body", "text", "description"}

// dateFields 日期规则的候选字段，按优先级取首个可解析者
var dateFields = []string{"createdAt", "updatedAt", "date", "timestamp"}

// statusFields 状态规则的候选字段
var statusFields = []string{"status", "state"}

// Engine 记录过滤引擎
type Engine struct{}

// NewEngine 创建过滤引擎
func NewEngine() *Engine {
	return &Engine{}
}

// ShouldInclude 判断映射后的记录是否通过项目过滤规则
func (e *Engine) ShouldInclude(record map[string]interface{}, settings *models.FilterSettings) bool {
	if settings == nil {
		return true
	}

	// 最小长度：任意字符串字段达到长度即通过
	if settings.MinLength > 0 {
		hasMinLength := false
		for _, field := range contentFields {
			if value, ok := record[field].(string); ok && len(value) >= settings.MinLength {
				hasMinLength = true
				break
			}
		}

		if !hasMinLength {
			for _, value := range record {
				if s, ok := value.(string); ok && len(s) >= settings.MinLength {
					hasMinLength = true
					break
				}
			}
			if !hasMinLength {
				return false
			}
		}
	}

	// 日期范围：候选字段均不可解析时该规则不生效
	if settings.DateRange != nil {
		if recordDate, ok := extractRecordDate(record); ok {
			if settings.DateRange.Start != "" {
				if start, err := parseDate(settings.DateRange.Start); err == nil && recordDate.Before(start) {
					return false
				}
			}
			if settings.DateRange.End != "" {
				if end, err := parseDate(settings.DateRange.End); err == nil && recordDate.After(end) {
					return false
				}
			}
		}
	}

	// 状态白名单：记录没有状态字段时该规则不生效
	if len(settings.Statuses) > 0 {
		matchedStatus := false
		for _, field := range statusFields {
			value, ok := record[field].(string)
			if !ok {
				continue
			}
			for _, allowed := range settings.Statuses {
				if strings.EqualFold(allowed, value) {
					matchedStatus = true
					break
				}
			}
			if matchedStatus {
				break
			}
		}

		hasStatusField := false
		for _, field := range statusFields {
			if _, ok := record[field]; ok {
				hasStatusField = true
				break
			}
		}
		if hasStatusField && !matchedStatus {
			return false
		}
	}

	return true
}

// FilterStats 过滤统计结果
type FilterStats struct {
	Total    int            `json:"total"`
	Passed   int            `json:"passed"`
	Filtered int            `json:"filtered"`
	Reasons  map[string]int `json:"reasons"`
}

// GetFilterStats 聚合通过/过滤计数与单一原因分解
// 原因按固定优先级归因（minLength -> dateRange -> status -> unknown），
// 仅用于诊断展示，判定语义以ShouldInclude为准
func (e *Engine) GetFilterStats(records []map[string]interface{}, settings *models.FilterSettings) *FilterStats {
	stats := &FilterStats{
		Total:   len(records),
		Reasons: make(map[string]int),
	}

	for _, record := range records {
		if e.ShouldInclude(record, settings) {
			stats.Passed++
			continue
		}

		if settings != nil && settings.MinLength > 0 {
			hasMinLength := false
			for _, field := range contentFields {
				if value, ok := record[field].(string); ok && len(value) >= settings.MinLength {
					hasMinLength = true
					break
				}
			}
			if !hasMinLength {
				stats.Reasons["minLength"]++
				continue
			}
		}

		if settings != nil && settings.DateRange != nil {
			stats.Reasons["dateRange"]++
			continue
		}

		if settings != nil && len(settings.Statuses) > 0 {
			stats.Reasons["status"]++
			continue
		}

		stats.Reasons["unknown"]++
	}

	stats.Filtered = stats.Total - stats.Passed
	return stats
}

// extractRecordDate 按优先级取首个可解析的日期字段
func extractRecordDate(record map[string]interface{}) (time.Time, bool) {
	for _, field := range dateFields {
		value, ok := record[field]
		if !ok || value == nil {
			continue
		}
		if t, err := cast.ToTimeE(value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseDate 解析过滤配置中的日期边界
func parseDate(value string) (time.Time, error) {
	return cast.ToTimeE(value)
}
