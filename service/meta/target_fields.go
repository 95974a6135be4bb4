/*
 * @module service/meta/target_fields
 * @description 目标字段词汇表与字段映射自动识别的模式表、PII指示词定义
 * @architecture 分层架构 - 元数据层
 * @documentReference ai_docs/mapping_detection_req.md
 * @stateFlow 无状态常量定义
 * @rules 模式表有序，首个命中即生效；目标字段必须属于固定词汇表或ignore
 * @dependencies regexp
 * @refs service/mapping/detector.go
 */

package meta

import "regexp"

// 映射置信度常量
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// TargetFieldIgnore 忽略字段的特殊目标
const TargetFieldIgnore = "ignore"

// TargetFieldMetadata 未识别字段的默认目标
const TargetFieldMetadata = "metadata"

// 规范词汇表中的常用目标字段
const (
	TargetFieldContent = "content"
	TargetFieldEmail   = "email"
	TargetFieldPhone   = "phone"
	TargetFieldName    = "name"
	TargetFieldStatus  = "status"
)

// TargetFields AI训练数据的规范目标字段词汇表
var TargetFields = []MetaField{
	{Name: "content", DisplayName: "内容", Type: "string", Required: false},
	{Name: "question", DisplayName: "问题", Type: "string", Required: false},
	{Name: "answer", DisplayName: "回答", Type: "string", Required: false},
	{Name: "context", DisplayName: "上下文", Type: "string", Required: false},
	{Name: "system_prompt", DisplayName: "系统提示词", Type: "string", Required: false},
	{Name: "user_input", DisplayName: "用户输入", Type: "string", Required: false},
	{Name: "assistant_response", DisplayName: "助手响应", Type: "string", Required: false},
	{Name: "email", DisplayName: "邮箱", Type: "string", Required: false},
	{Name: "phone", DisplayName: "电话", Type: "string", Required: false},
	{Name: "name", DisplayName: "姓名", Type: "string", Required: false},
	{Name: "date", DisplayName: "日期", Type: "string", Required: false},
	{Name: "category", DisplayName: "分类", Type: "string", Required: false},
	{Name: "status", DisplayName: "状态", Type: "string", Required: false},
	{Name: "metadata", DisplayName: "元数据", Type: "string", Required: false},
	{Name: "ignore", DisplayName: "忽略", Type: "string", Required: false},
}

// FieldPattern 目标字段的名称识别模式
type FieldPattern struct {
	Target   string
	Patterns []*regexp.Regexp
}

// FieldPatterns 字段名自动识别模式表，顺序即优先级，首个命中即生效
var FieldPatterns = []FieldPattern{
	{Target: "email", Patterns: compilePatterns(`email`, `e-mail`, `mail`)},
	{Target: "phone", Patterns: compilePatterns(`phone`, `tel`, `mobile`, `cell`)},
	{Target: "name", Patterns: compilePatterns(`name`, `^full.?name$`, `^first.?name$`, `^last.?name$`)},
	{Target: "date", Patterns: compilePatterns(`date`, `time`, `created`, `updated`, `timestamp`)},
	{Target: "content", Patterns: compilePatterns(`content`, `body`, `message`, `text`, `description`)},
	{Target: "question", Patterns: compilePatterns(`question`, `query`, `ask`, `inquiry`)},
	{Target: "answer", Patterns: compilePatterns(`answer`, `response`, `reply`, `solution`)},
	{Target: "status", Patterns: compilePatterns(`status`, `state`)},
	{Target: "category", Patterns: compilePatterns(`category`, `type`, `tag`, `label`)},
}

// PiiIndicators 字段名中的PII指示词，子串匹配
var PiiIndicators = []string{"email", "phone", "name", "address", "ssn", "social"}

// IsValidTargetField 验证目标字段是否属于规范词汇表
func IsValidTargetField(target string) bool {
	for _, f := range TargetFields {
		if f.Name == target {
			return true
		}
	}
	return false
}

func compilePatterns(exprs ...string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		patterns = append(patterns, regexp.MustCompile(`(?i)`+expr))
	}
	return patterns
}
