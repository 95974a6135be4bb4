/*
 * @module service/export/engine
 * @description 导出格式化引擎，将处理后的记录渲染为对话JSONL、问答JSONL或原始JSON
 * @architecture 分层架构 - 业务服务层，无状态引擎
 * @stateFlow 记录 -> 格式化 -> 序列化输出
 * @rules 未知格式返回验证错误；对话格式丢弃零消息记录
 * @dependencies encoding/json, service/meta
 * @refs service/export/export_service.go
 */

package export

import (
	"encoding/json"
	"fmt"
	"strings"

	"foundry-service/service/meta"
)

// questionFields 问题内容的候选字段，按优先级取首个非空
var questionFields = []string{"question", "query", "ask", "inquiry", "subject"}

// answerFields 回答内容的候选字段
var answerFields = []string{"answer", "response", "reply", "solution", "assistant_response"}

// contentFields 通用内容字段，作为问题内容的兜底
var contentFields = []string{"content", "message", "body", "text", "description", "user_input"}

// contextFields 上下文补充字段，拼为行级context
var contextFields = []string{"context", "metadata", "category", "tags"}

// Options 导出格式化选项
type Options struct {
	SystemPrompt  string `json:"system_prompt"`
	ContextWindow int    `json:"context_window"`
}

// chatMessage OpenAI风格的对话消息
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type conversationLine struct {
	Messages []chatMessage `json:"messages"`
	Context  string        `json:"context,omitempty"`
}

type qaLine struct {
	Question     string `json:"question"`
	Answer       string `json:"answer"`
	SystemPrompt string `json:"system_prompt,omitempty"`
}

// Engine 导出格式化引擎
type Engine struct{}

// NewEngine 创建导出引擎
func NewEngine() *Engine {
	return &Engine{}
}

// Generate 将记录集合渲染为目标格式的文件内容
func (e *Engine) Generate(records []map[string]interface{}, format string, options *Options) ([]byte, error) {
	if options == nil {
		options = &Options{}
	}

	switch format {
	case meta.ExportFormatConversation:
		return e.generateConversation(records, options)
	case meta.ExportFormatQA:
		return e.generateQA(records, options)
	case meta.ExportFormatRaw:
		return e.generateRaw(records)
	default:
		return nil, fmt.Errorf("%w: 不支持的导出格式 %s", meta.ErrValidation, format)
	}
}

// generateConversation 渲染对话JSONL，每行一组messages
// 问题与回答同时命中才成对输出，否则回退为单条user内容消息
func (e *Engine) generateConversation(records []map[string]interface{}, options *Options) ([]byte, error) {
	lines := make([]string, 0, len(records))
	for _, record := range records {
		messages := make([]chatMessage, 0, 3)

		if options.SystemPrompt != "" {
			messages = append(messages, chatMessage{Role: "system", Content: options.SystemPrompt})
		}

		question := firstNonEmpty(record, questionFields)
		answer := firstNonEmpty(record, answerFields)
		if question != "" && answer != "" {
			messages = append(messages,
				chatMessage{Role: "user", Content: question},
				chatMessage{Role: "assistant", Content: answer})
		} else if content := firstNonEmpty(record, contentFields); content != "" {
			messages = append(messages, chatMessage{Role: "user", Content: content})
		}

		line := conversationLine{Messages: messages}
		if options.ContextWindow > 0 {
			line.Context = extractContext(record)
		}

		if len(messages) == 0 {
			continue
		}

		data, err := json.Marshal(line)
		if err != nil {
			return nil, fmt.Errorf("序列化对话记录失败: %w", err)
		}
		lines = append(lines, string(data))
	}
	return []byte(strings.Join(lines, "\n")), nil
}

// generateQA 渲染问答JSONL，问题缺失时回退到内容字段
func (e *Engine) generateQA(records []map[string]interface{}, options *Options) ([]byte, error) {
	lines := make([]string, 0, len(records))
	for _, record := range records {
		question := firstNonEmpty(record, questionFields)
		if question == "" {
			question = firstNonEmpty(record, contentFields)
		}
		if question == "" {
			continue
		}

		line := qaLine{
			Question:     question,
			Answer:       firstNonEmpty(record, answerFields),
			SystemPrompt: options.SystemPrompt,
		}
		data, err := json.Marshal(line)
		if err != nil {
			return nil, fmt.Errorf("序列化问答记录失败: %w", err)
		}
		lines = append(lines, string(data))
	}
	return []byte(strings.Join(lines, "\n")), nil
}

// generateRaw 渲染带缩进的原始JSON数组
func (e *Engine) generateRaw(records []map[string]interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("序列化原始记录失败: %w", err)
	}
	return data, nil
}

// extractContext 拼接"字段: 值"形式的上下文，仅接受字符串与结构化值，以分号分隔
func extractContext(record map[string]interface{}) string {
	parts := make([]string, 0, len(contextFields))
	for _, field := range contextFields {
		switch value := record[field].(type) {
		case string:
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				parts = append(parts, field+": "+trimmed)
			}
		case map[string]interface{}, []interface{}:
			if data, err := json.Marshal(value); err == nil {
				parts = append(parts, field+": "+string(data))
			}
		}
	}
	return strings.Join(parts, "; ")
}

// firstNonEmpty 按优先级取首个非空字符串字段
func firstNonEmpty(record map[string]interface{}, fields []string) string {
	for _, field := range fields {
		value, ok := record[field]
		if !ok || value == nil {
			continue
		}
		if s, ok := value.(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}
