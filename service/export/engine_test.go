/*
 * @module service/export/engine_test
 * @description 导出格式化引擎的单元测试
 * @architecture 单元测试 - 验证三种导出格式的渲染语义
 * @documentReference ai_docs/export_req.md
 * @stateFlow 测试数据准备 -> 格式化 -> 输出验证
 * @rules 覆盖问答回退、对话丢弃、上下文拼接与未知格式错误
 * @dependencies testing, github.com/stretchr/testify/assert
 * @refs engine.go
 */

package export

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"foundry-service/service/meta"

	"github.com/stretchr/testify/assert"
)

func TestEngine_Generate_QA(t *testing.T) {
	engine := NewEngine()

	records := []map[string]interface{}{
		{"question": "如何重置密码?", "answer": "在设置页面点击重置"},
		{"content": "仅有内容字段的记录"},
	}

	data, err := engine.Generate(records, meta.ExportFormatQA, nil)
	assert.NoError(t, err)

	lines := strings.Split(string(data), "\n")
	assert.Len(t, lines, 2)

	var first map[string]interface{}
	assert.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "如何重置密码?", first["question"])
	assert.Equal(t, "在设置页面点击重置", first["answer"])

	// 问题缺失时回退到内容字段，回答默认为空串
	var second map[string]interface{}
	assert.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "仅有内容字段的记录", second["question"])
	assert.Equal(t, "", second["answer"])
}

type conversationTestLine struct {
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Context string `json:"context"`
}

func decodeConversation(t *testing.T, data []byte) []conversationTestLine {
	t.Helper()
	lines := make([]conversationTestLine, 0)
	for _, raw := range strings.Split(string(data), "\n") {
		var line conversationTestLine
		assert.NoError(t, json.Unmarshal([]byte(raw), &line))
		lines = append(lines, line)
	}
	return lines
}

func TestEngine_Generate_Conversation(t *testing.T) {
	engine := NewEngine()

	records := []map[string]interface{}{
		{
			"question": "账单在哪里下载?",
			"answer":   "在账户中心的账单页",
			"category": "billing",
		},
		{},
	}

	options := &Options{SystemPrompt: "你是客服助手", ContextWindow: 2048}
	data, err := engine.Generate(records, meta.ExportFormatConversation, options)
	assert.NoError(t, err)

	lines := strings.Split(string(data), "\n")
	assert.Len(t, lines, 2)

	decoded := decodeConversation(t, data)
	assert.Len(t, decoded[0].Messages, 3)
	assert.Equal(t, "system", decoded[0].Messages[0].Role)
	assert.Equal(t, "你是客服助手", decoded[0].Messages[0].Content)
	assert.Equal(t, "user", decoded[0].Messages[1].Role)
	assert.Equal(t, "账单在哪里下载?", decoded[0].Messages[1].Content)
	assert.Equal(t, "assistant", decoded[0].Messages[2].Role)
	// 上下文是行级字段，不混入system消息
	assert.Equal(t, "category: billing", decoded[0].Context)

	// 无可提取内容的记录仅保留system消息，无上下文
	assert.Len(t, decoded[1].Messages, 1)
	assert.Equal(t, "system", decoded[1].Messages[0].Role)
	assert.Equal(t, "", decoded[1].Context)
}

func TestEngine_Generate_Conversation_PairRequiresBoth(t *testing.T) {
	engine := NewEngine()

	records := []map[string]interface{}{
		// 问题有而回答缺失时回退到内容字段
		{"question": "仅有问题", "content": "回退内容"},
		// 回答有而问题缺失时同样回退，不单独输出assistant消息
		{"content": "另一段内容", "answer": "孤立回答"},
	}

	data, err := engine.Generate(records, meta.ExportFormatConversation, nil)
	assert.NoError(t, err)

	decoded := decodeConversation(t, data)
	assert.Len(t, decoded, 2)

	assert.Len(t, decoded[0].Messages, 1)
	assert.Equal(t, "user", decoded[0].Messages[0].Role)
	assert.Equal(t, "回退内容", decoded[0].Messages[0].Content)

	assert.Len(t, decoded[1].Messages, 1)
	assert.Equal(t, "user", decoded[1].Messages[0].Role)
	assert.Equal(t, "另一段内容", decoded[1].Messages[0].Content)
}

func TestEngine_Generate_Conversation_ZeroMessageDropped(t *testing.T) {
	engine := NewEngine()

	records := []map[string]interface{}{
		{"question": "有问题", "answer": "有回答"},
		{"metadata": "没有任何消息内容的记录"},
	}

	// 未配置system prompt时零消息记录被整行丢弃
	data, err := engine.Generate(records, meta.ExportFormatConversation, nil)
	assert.NoError(t, err)

	lines := strings.Split(string(data), "\n")
	assert.Len(t, lines, 1)
}

func TestEngine_Generate_Conversation_ContextTypeGate(t *testing.T) {
	engine := NewEngine()

	records := []map[string]interface{}{
		{
			"content":  "带结构化上下文的消息",
			"category": "billing",
			"metadata": map[string]interface{}{"channel": "email"},
			"tags":     float64(42),
		},
	}

	data, err := engine.Generate(records, meta.ExportFormatConversation, &Options{ContextWindow: 1024})
	assert.NoError(t, err)

	decoded := decodeConversation(t, data)
	// 字符串原样、对象JSON编码，数值类字段不参与上下文
	assert.Equal(t, `metadata: {"channel":"email"}; category: billing`, decoded[0].Context)
}

func TestEngine_Generate_Conversation_NoContextWithoutWindow(t *testing.T) {
	engine := NewEngine()

	records := []map[string]interface{}{
		{"content": "一条普通消息", "category": "billing"},
	}

	data, err := engine.Generate(records, meta.ExportFormatConversation, &Options{})
	assert.NoError(t, err)
	assert.NotContains(t, string(data), "billing")
}

func TestEngine_Generate_Raw(t *testing.T) {
	engine := NewEngine()

	records := []map[string]interface{}{
		{"id": "1", "content": "原样导出"},
	}

	data, err := engine.Generate(records, meta.ExportFormatRaw, nil)
	assert.NoError(t, err)

	var decoded []map[string]interface{}
	assert.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded, 1)
	assert.Equal(t, "原样导出", decoded[0]["content"])
	// 带缩进的JSON文档
	assert.Contains(t, string(data), "\n  ")
}

func TestEngine_Generate_UnknownFormat(t *testing.T) {
	engine := NewEngine()

	_, err := engine.Generate(nil, "csv", nil)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, meta.ErrValidation))
}

func TestEngine_Generate_EmptyRecords(t *testing.T) {
	engine := NewEngine()

	data, err := engine.Generate([]map[string]interface{}{}, meta.ExportFormatQA, nil)
	assert.NoError(t, err)
	assert.Empty(t, string(data))
}
