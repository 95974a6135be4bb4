/*
 * @module service/connector/helpers
 * @description 连接器公共辅助函数
 * @architecture 连接器实现 - 工具函数
 * @documentReference ai_docs/source_connector_req.md
 * @stateFlow 无状态工具函数
 * @rules 列名输出保持确定性排序
 * @dependencies sort
 * @refs file.go, teamwork.go, gohighlevel.go
 */

package connector

import (
	"net/http"
	"sort"
	"time"

	"foundry-service/service/models"
)

// recordColumns 取记录的列名，排序保证确定性
func recordColumns(record map[string]interface{}) []string {
	columns := make([]string, 0, len(record))
	for name := range record {
		columns = append(columns, name)
	}
	sort.Strings(columns)
	return columns
}

// previewFromRecords 由记录集合构造预览
func previewFromRecords(records []map[string]interface{}, limit int) *SourcePreview {
	preview := &SourcePreview{Columns: []string{}, SampleData: []map[string]interface{}{}}
	if len(records) == 0 {
		return preview
	}
	preview.Columns = recordColumns(records[0])
	if len(records) > limit {
		records = records[:limit]
	}
	preview.SampleData = records
	return preview
}


// detectSchemaFromRecords 由记录集合探测原始字段结构
func detectSchemaFromRecords(records []map[string]interface{}, sampleRows int) models.RawSchema {
	if len(records) == 0 {
		return models.RawSchema{}
	}

	if len(records) < sampleRows {
		sampleRows = len(records)
	}

	schema := make(models.RawSchema, 0, len(records[0]))
	for _, name := range recordColumns(records[0]) {
		field := models.RawSchemaField{
			Name:   name,
			Type:   valueTypeName(records[0][name]),
			Sample: make([]interface{}, 0, sampleRows),
		}
		for i := 0; i < sampleRows; i++ {
			field.Sample = append(field.Sample, records[i][name])
		}
		schema = append(schema, field)
	}
	return schema
}

// httpClient 外部API调用的带超时HTTP客户端
var httpClient = &http.Client{Timeout: 30 * time.Second}

// stringField 安全取嵌套map中的字符串字段
func stringField(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// nestedMap 安全取嵌套map
func nestedMap(m map[string]interface{}, key string) map[string]interface{} {
	if v, ok := m[key].(map[string]interface{}); ok {
		return v
	}
	return nil
}
