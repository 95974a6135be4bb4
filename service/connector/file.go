/*
 * @module service/connector/file
 * @description 文件数据源连接器，解析上传的CSV/JSON/XLSX文件为原始记录
 * @architecture 连接器实现 - 文件变体
 * @documentReference ai_docs/source_connector_req.md
 * @stateFlow 文件可达性检查 -> 编码识别 -> 解析 -> 记录/结构/预览
 * @rules CSV与XLSX首行为表头；JSON接受数组或单对象；非UTF-8文本按GBK回退解码
 * @dependencies encoding/csv, encoding/json, github.com/xuri/excelize/v2, golang.org/x/text
 * @refs interface.go, registry.go
 */

package connector

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"foundry-service/service/meta"
	"foundry-service/service/models"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

const (
	filePreviewRows = 10
	fileSampleRows  = 3
)

// FileConnector 文件数据源连接器
type FileConnector struct{}

// NewFileConnector 创建文件连接器
func NewFileConnector() *FileConnector {
	return &FileConnector{}
}

// Type 获取连接器类型
func (c *FileConnector) Type() string {
	return meta.SourceTypeFile
}

// TestConnection 检查文件是否可达
func (c *FileConnector) TestConnection(ctx context.Context, source *models.Source) *ConnectionTestResult {
	if source.FilePath == "" {
		return &ConnectionTestResult{Success: false, Message: "数据源未关联文件"}
	}
	if _, err := os.Stat(source.FilePath); err != nil {
		return &ConnectionTestResult{Success: false, Message: "文件不可达: " + err.Error()}
	}
	return &ConnectionTestResult{Success: true, Message: "文件可达"}
}

// FetchData 解析文件全部记录
func (c *FileConnector) FetchData(ctx context.Context, source *models.Source, opts *FetchOptions) ([]map[string]interface{}, error) {
	records, err := c.parseFile(source)
	if err != nil {
		return nil, err
	}
	if opts != nil && opts.Limit > 0 && len(records) > opts.Limit {
		records = records[:opts.Limit]
	}
	return records, nil
}

// GetPreview 获取列名与前若干行样例
func (c *FileConnector) GetPreview(ctx context.Context, source *models.Source) (*SourcePreview, error) {
	records, err := c.parseFile(source)
	if err != nil {
		return nil, err
	}
	return previewFromRecords(records, filePreviewRows), nil
}

// DetectSchema 探测字段名、类型与前若干条样例值
func (c *FileConnector) DetectSchema(ctx context.Context, source *models.Source) (models.RawSchema, error) {
	records, err := c.parseFile(source)
	if err != nil {
		return nil, err
	}
	return detectSchemaFromRecords(records, fileSampleRows), nil
}

// parseFile 按扩展名/MIME类型解析文件
func (c *FileConnector) parseFile(source *models.Source) ([]map[string]interface{}, error) {
	if source.FilePath == "" {
		return nil, fmt.Errorf("数据源未关联文件")
	}

	raw, err := os.ReadFile(source.FilePath)
	if err != nil {
		return nil, fmt.Errorf("读取文件失败: %w", err)
	}

	switch {
	case source.MimeType == xlsxMimeType || strings.HasSuffix(source.FilePath, ".xlsx"):
		return parseXLSX(raw)
	case source.MimeType == "text/csv" || strings.HasSuffix(source.FilePath, ".csv"):
		return parseCSV(decodeText(raw))
	case source.MimeType == "application/json" || strings.HasSuffix(source.FilePath, ".json"):
		return parseJSON(decodeText(raw))
	}
	return nil, fmt.Errorf("不支持的文件格式: %s", source.FilePath)
}

// decodeText 非UTF-8内容按GBK回退解码
func decodeText(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	decoded, _, err := transform.Bytes(simplifiedchinese.GBK.NewDecoder(), raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}

// parseCSV 首行为表头，跳过空行
func parseCSV(content string) ([]map[string]interface{}, error) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("CSV解析失败: %w", err)
	}
	if len(rows) == 0 {
		return []map[string]interface{}{}, nil
	}

	header := rows[0]
	records := make([]map[string]interface{}, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}
		record := make(map[string]interface{}, len(header))
		for i, name := range header {
			if i < len(row) {
				record[name] = row[i]
			} else {
				record[name] = ""
			}
		}
		records = append(records, record)
	}
	return records, nil
}

const xlsxMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// parseXLSX 取第一张工作表，首行为表头
func parseXLSX(raw []byte) ([]map[string]interface{}, error) {
	book, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("XLSX解析失败: %w", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return []map[string]interface{}{}, nil
	}

	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("XLSX读取工作表失败: %w", err)
	}
	if len(rows) == 0 {
		return []map[string]interface{}{}, nil
	}

	header := rows[0]
	records := make([]map[string]interface{}, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]interface{}, len(header))
		empty := true
		for i, name := range header {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			if strings.TrimSpace(value) != "" {
				empty = false
			}
			record[name] = value
		}
		if empty {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// parseJSON 接受对象数组或单个对象
func parseJSON(content string) ([]map[string]interface{}, error) {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "[") {
		var records []map[string]interface{}
		if err := json.Unmarshal([]byte(trimmed), &records); err != nil {
			return nil, fmt.Errorf("JSON解析失败: %w", err)
		}
		return records, nil
	}

	var record map[string]interface{}
	if err := json.Unmarshal([]byte(trimmed), &record); err != nil {
		return nil, fmt.Errorf("JSON解析失败: %w", err)
	}
	return []map[string]interface{}{record}, nil
}

// valueTypeName 样例值的类型名
func valueTypeName(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64, int, int64:
		return "number"
	case string:
		return "string"
	case map[string]interface{}:
		return "object"
	case []interface{}:
		return "array"
	}
	return "string"
}
