/*
 * @module service/connector/file_test
 * @description 文件连接器的单元测试
 * @architecture 单元测试 - 使用临时文件验证解析与探测逻辑
 * @documentReference ai_docs/source_connector_req.md
 * @stateFlow 写入临时文件 -> 调用连接器 -> 验证记录/预览/结构
 * @rules 覆盖CSV表头、JSON数组与对象、XLSX工作表、预览截断、结构探测与GBK回退
 * @dependencies testing, github.com/stretchr/testify/assert
 * @refs file.go, helpers.go
 */

package connector

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"foundry-service/service/models"

	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	assert.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func fileSource(path, mimeType string) *models.Source {
	return &models.Source{FilePath: path, MimeType: mimeType}
}

func TestFileConnector_FetchData_CSV(t *testing.T) {
	path := writeTempFile(t, "tickets.csv",
		"subject,Customer Email,status\n"+
			"login issue,jane@acme.com,open\n"+
			"\n"+
			"refund request,bob@acme.com,closed\n")

	c := NewFileConnector()
	records, err := c.FetchData(context.Background(), fileSource(path, "text/csv"), nil)
	assert.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, "login issue", records[0]["subject"])
	assert.Equal(t, "jane@acme.com", records[0]["Customer Email"])
	assert.Equal(t, "closed", records[1]["status"])
}

func TestFileConnector_FetchData_CSVShortRow(t *testing.T) {
	path := writeTempFile(t, "short.csv", "a,b,c\n1,2\n")

	c := NewFileConnector()
	records, err := c.FetchData(context.Background(), fileSource(path, "text/csv"), nil)
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	// 缺失列补空字符串
	assert.Equal(t, "", records[0]["c"])
}

func TestFileConnector_FetchData_JSONArray(t *testing.T) {
	path := writeTempFile(t, "data.json",
		`[{"message": "hello", "count": 3}, {"message": "world"}]`)

	c := NewFileConnector()
	records, err := c.FetchData(context.Background(), fileSource(path, "application/json"), nil)
	assert.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, "hello", records[0]["message"])
	assert.Equal(t, float64(3), records[0]["count"])
}

func TestFileConnector_FetchData_JSONSingleObject(t *testing.T) {
	path := writeTempFile(t, "one.json", `{"message": "solo"}`)

	c := NewFileConnector()
	records, err := c.FetchData(context.Background(), fileSource(path, "application/json"), nil)
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, "solo", records[0]["message"])
}

func TestFileConnector_FetchData_LimitApplied(t *testing.T) {
	path := writeTempFile(t, "many.csv", "n\n1\n2\n3\n4\n5\n")

	c := NewFileConnector()
	records, err := c.FetchData(context.Background(), fileSource(path, "text/csv"), &FetchOptions{Limit: 2})
	assert.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestFileConnector_FetchData_UnsupportedFormat(t *testing.T) {
	path := writeTempFile(t, "data.xml", "<root/>")

	c := NewFileConnector()
	_, err := c.FetchData(context.Background(), fileSource(path, "application/xml"), nil)
	assert.Error(t, err)
}

func TestFileConnector_FetchData_GBKFallback(t *testing.T) {
	encoded, _, err := transform.Bytes(simplifiedchinese.GBK.NewEncoder(), []byte("主题\n退款申请\n"))
	assert.NoError(t, err)

	path := filepath.Join(t.TempDir(), "gbk.csv")
	assert.NoError(t, os.WriteFile(path, encoded, 0644))

	c := NewFileConnector()
	records, err := c.FetchData(context.Background(), fileSource(path, "text/csv"), nil)
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, "退款申请", records[0]["主题"])
}

func TestFileConnector_FetchData_XLSX(t *testing.T) {
	book := excelize.NewFile()
	sheet := book.GetSheetName(0)
	assert.NoError(t, book.SetSheetRow(sheet, "A1", &[]interface{}{"subject", "status"}))
	assert.NoError(t, book.SetSheetRow(sheet, "A2", &[]interface{}{"login issue", "open"}))
	assert.NoError(t, book.SetSheetRow(sheet, "A3", &[]interface{}{"", ""}))
	assert.NoError(t, book.SetSheetRow(sheet, "A4", &[]interface{}{"refund request", "closed"}))

	path := filepath.Join(t.TempDir(), "tickets.xlsx")
	assert.NoError(t, book.SaveAs(path))
	assert.NoError(t, book.Close())

	c := NewFileConnector()
	records, err := c.FetchData(context.Background(), fileSource(path, xlsxMimeType), nil)
	assert.NoError(t, err)
	// 全空行被跳过
	assert.Len(t, records, 2)
	assert.Equal(t, "login issue", records[0]["subject"])
	assert.Equal(t, "closed", records[1]["status"])
}

func TestFileConnector_GetPreview(t *testing.T) {
	content := "id,message\n"
	for i := 1; i <= 15; i++ {
		content += fmt.Sprintf("%d,row %d\n", i, i)
	}
	path := writeTempFile(t, "preview.csv", content)

	c := NewFileConnector()
	preview, err := c.GetPreview(context.Background(), fileSource(path, "text/csv"))
	assert.NoError(t, err)
	assert.Equal(t, []string{"id", "message"}, preview.Columns)
	// 预览最多返回10行
	assert.Len(t, preview.SampleData, 10)
}

func TestFileConnector_DetectSchema(t *testing.T) {
	path := writeTempFile(t, "schema.json",
		`[{"name": "jane", "age": 30, "active": true},
		  {"name": "bob", "age": 41, "active": false},
		  {"name": "amy", "age": 25, "active": true},
		  {"name": "joe", "age": 52, "active": false}]`)

	c := NewFileConnector()
	schema, err := c.DetectSchema(context.Background(), fileSource(path, "application/json"))
	assert.NoError(t, err)
	assert.Len(t, schema, 3)

	byName := make(map[string]models.RawSchemaField)
	for _, field := range schema {
		byName[field.Name] = field
	}
	assert.Equal(t, "string", byName["name"].Type)
	assert.Equal(t, "number", byName["age"].Type)
	assert.Equal(t, "boolean", byName["active"].Type)
	// 样例值最多取前3条
	assert.Len(t, byName["name"].Sample, 3)
	assert.Equal(t, "jane", byName["name"].Sample[0])
}

func TestFileConnector_TestConnection(t *testing.T) {
	c := NewFileConnector()

	result := c.TestConnection(context.Background(), &models.Source{})
	assert.False(t, result.Success)

	result = c.TestConnection(context.Background(), fileSource("/nonexistent/path.csv", "text/csv"))
	assert.False(t, result.Success)

	path := writeTempFile(t, "ok.csv", "a\n1\n")
	result = c.TestConnection(context.Background(), fileSource(path, "text/csv"))
	assert.True(t, result.Success)
}
