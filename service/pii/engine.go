/*
 * @module service/pii/engine
 * @description PII检测与令牌化引擎，识别人名、固定模式类与自定义模式并替换为稳定占位令牌
 * @architecture 分层架构 - 业务服务层，可实例化引擎
 * @documentReference ai_docs/pii_engine_req.md
 * @stateFlow 字段遍历 -> 人名检测 -> 固定模式扫描 -> 自定义模式扫描 -> 令牌替换
 * @rules 引擎实例内令牌编号单调递增，同一(类型,原值)始终映射同一令牌；
 *        自定义模式编译失败静默跳过；本阶段任何异常不得阻断记录流水线
 * @dependencies regexp, service/models
 * @refs ner.go, service/processing
 */

package pii

import (
	"fmt"
	"regexp"
	"strings"

	"foundry-service/service/models"
)

// piiPattern 固定PII模式类
type piiPattern struct {
	Type    string
	Pattern *regexp.Regexp
}

// piiPatterns 固定模式电池，顺序即扫描顺序
var piiPatterns = []piiPattern{
	{Type: "EMAIL", Pattern: regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)},
	{Type: "PHONE", Pattern: regexp.MustCompile(`\b(\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`)},
	{Type: "SSN", Pattern: regexp.MustCompile(`\b\d{3}[-.\s]?\d{2}[-.\s]?\d{4}\b`)},
	{Type: "CREDITCARD", Pattern: regexp.MustCompile(`\b\d{4}[-.\s]?\d{4}[-.\s]?\d{4}[-.\s]?\d{4}\b`)},
	{Type: "IPADDRESS", Pattern: regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)},
	{Type: "ZIPCODE", Pattern: regexp.MustCompile(`\b\d{5}(-\d{4})?\b`)},
}

// Engine PII处理引擎
// 实例生命周期应限定在一次任务执行内，令牌编号在实例内可复现；
// 实例内部状态非并发安全，不得在未同步的并发工作者间共享
type Engine struct {
	tokenCounter int
	tokenCache   map[string]string
	nameDetector NameDetector
}

// NewEngine 创建PII引擎，使用内置启发式人名检测器
func NewEngine() *Engine {
	return NewEngineWithDetector(NewHeuristicNameDetector())
}

// NewEngineWithDetector 创建PII引擎并注入人名检测实现
func NewEngineWithDetector(detector NameDetector) *Engine {
	return &Engine{
		tokenCache:   make(map[string]string),
		nameDetector: detector,
	}
}

// ProcessResult PII处理结果
type ProcessResult struct {
	ProcessedData map[string]interface{} `json:"processed_data"`
	TokensMap     map[string]string      `json:"tokens_map"`
}

// Process 对映射后的记录执行PII检测与令牌化
// 返回脱敏后的记录与整条记录合并的令牌映射（跨字段同键后写覆盖）
func (e *Engine) Process(record map[string]interface{}, mappings []models.SourceMapping, settings *models.PiiSettings) *ProcessResult {
	processedData := make(map[string]interface{}, len(record))
	tokensMap := make(map[string]string)

	allowList := make(map[string]bool)
	if settings != nil {
		for _, v := range settings.AllowList {
			allowList[strings.ToLower(v)] = true
		}
	}

	for key, value := range record {
		text, ok := value.(string)
		if !ok {
			processedData[key] = value
			continue
		}

		isPiiField := false
		for _, m := range mappings {
			if m.TargetField == key || m.SourceField == key {
				isPiiField = m.IsPii
				break
			}
		}

		processedValue := text
		fieldTokens := make(map[string]string)

		// 人名检测与令牌化
		if isPiiField || e.nameDetector.ContainsName(text) {
			for _, name := range e.nameDetector.DetectNames(text) {
				if allowList[strings.ToLower(name)] {
					continue
				}

				token := e.getOrCreateToken(name, "NAME")
				fieldTokens[name] = token
				processedValue = replaceLiteral(processedValue, name, token, true)
			}
		}

		// 固定模式扫描，匹配在原值上定位，替换在工作值上执行
		for _, p := range piiPatterns {
			for _, match := range p.Pattern.FindAllString(text, -1) {
				if allowList[strings.ToLower(match)] {
					continue
				}

				token := e.getOrCreateToken(match, p.Type)
				fieldTokens[match] = token
				processedValue = replaceLiteral(processedValue, match, token, false)
			}
		}

		// 自定义模式，大小写不敏感；非法正则静默跳过
		if settings != nil {
			for _, custom := range settings.CustomPatterns {
				re, err := regexp.Compile(`(?i)` + custom.Pattern)
				if err != nil {
					continue
				}

				for _, match := range re.FindAllString(text, -1) {
					if allowList[strings.ToLower(match)] {
						continue
					}

					token := e.getOrCreateToken(match, strings.ToUpper(custom.Name))
					fieldTokens[match] = token
					processedValue = replaceLiteral(processedValue, match, token, false)
				}
			}
		}

		processedData[key] = processedValue
		for k, v := range fieldTokens {
			tokensMap[k] = v
		}
	}

	return &ProcessResult{ProcessedData: processedData, TokensMap: tokensMap}
}

// Reset 清空令牌计数器与缓存
func (e *Engine) Reset() {
	e.tokenCounter = 0
	e.tokenCache = make(map[string]string)
}

// getOrCreateToken 取得或分配令牌，缓存键为 类型:原值
// 计数器跨所有类型共享且单调递增
func (e *Engine) getOrCreateToken(value, piiType string) string {
	cacheKey := piiType + ":" + value
	if token, ok := e.tokenCache[cacheKey]; ok {
		return token
	}

	e.tokenCounter++
	token := fmt.Sprintf("[%s_%04d]", piiType, e.tokenCounter)
	e.tokenCache[cacheKey] = token
	return token
}

// replaceLiteral 以字面量匹配全局替换，元字符先转义，避免破坏部分重叠的其他类匹配
func replaceLiteral(text, literal, token string, ignoreCase bool) string {
	expr := regexp.QuoteMeta(literal)
	if ignoreCase {
		expr = `(?i)` + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return text
	}
	return re.ReplaceAllLiteralString(text, token)
}
