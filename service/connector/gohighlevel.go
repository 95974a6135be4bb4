/*
 * @module service/connector/gohighlevel
 * @description GoHighLevel会话连接器，拉取会话并展平为原始记录
 * @architecture 连接器实现 - 外部API变体
 * @documentReference ai_docs/source_connector_req.md
 * @stateFlow 凭证解密 -> Bearer认证请求 -> 会话展平
 * @rules API密钥密文存储，由连接器自行解密；请求携带固定API版本头
 * @dependencies net/http, service/crypto
 * @refs interface.go, registry.go
 */

package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"foundry-service/service/crypto"
	"foundry-service/service/meta"
	"foundry-service/service/models"
)

const (
	goHighLevelBaseURL    = "https://services.leadconnectorhq.com"
	goHighLevelAPIVersion = "2021-07-28"
)

// GoHighLevelConnector GoHighLevel数据源连接器
type GoHighLevelConnector struct {
	baseURL string
}

// NewGoHighLevelConnector 创建GoHighLevel连接器
func NewGoHighLevelConnector() *GoHighLevelConnector {
	return &GoHighLevelConnector{baseURL: goHighLevelBaseURL}
}

// Type 获取连接器类型
func (c *GoHighLevelConnector) Type() string {
	return meta.SourceTypeGoHighLevel
}

// TestConnection 测试GoHighLevel连通性
func (c *GoHighLevelConnector) TestConnection(ctx context.Context, source *models.Source) *ConnectionTestResult {
	apiKey, err := c.apiKey(source)
	if err != nil {
		return &ConnectionTestResult{Success: false, Message: "连接配置错误: " + err.Error()}
	}

	locationID := stringField(source.Config, "locationId")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/locations/"+locationID, nil)
	if err != nil {
		return &ConnectionTestResult{Success: false, Message: "构造请求失败: " + err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Version", goHighLevelAPIVersion)

	resp, err := httpClient.Do(req)
	if err != nil {
		return &ConnectionTestResult{Success: false, Message: "连接失败: " + err.Error()}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return &ConnectionTestResult{Success: true, Message: "连接成功"}
	case resp.StatusCode == http.StatusUnauthorized:
		return &ConnectionTestResult{Success: false, Message: "API密钥无效"}
	}
	return &ConnectionTestResult{Success: false, Message: "连接失败: " + resp.Status}
}

// FetchData 拉取会话记录
func (c *GoHighLevelConnector) FetchData(ctx context.Context, source *models.Source, opts *FetchOptions) ([]map[string]interface{}, error) {
	apiKey, err := c.apiKey(source)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	if locationID := stringField(source.Config, "locationId"); locationID != "" {
		params.Set("locationId", locationID)
	}
	if opts != nil && opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/conversations?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Version", goHighLevelAPIVersion)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("拉取GoHighLevel数据失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("拉取GoHighLevel数据失败: %s", resp.Status)
	}

	var result struct {
		Conversations []map[string]interface{} `json:"conversations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("解析GoHighLevel响应失败: %w", err)
	}

	records := make([]map[string]interface{}, 0, len(result.Conversations))
	for _, conv := range result.Conversations {
		records = append(records, flattenConversation(conv))
	}
	return records, nil
}

// GetPreview 获取前若干条会话预览
func (c *GoHighLevelConnector) GetPreview(ctx context.Context, source *models.Source) (*SourcePreview, error) {
	records, err := c.FetchData(ctx, source, &FetchOptions{Limit: filePreviewRows})
	if err != nil {
		// 预览失败返回空结果而不是错误，保持页面可用
		return &SourcePreview{Columns: []string{}, SampleData: []map[string]interface{}{}}, nil
	}
	return previewFromRecords(records, filePreviewRows), nil
}

// DetectSchema 由预览数据探测字段结构
func (c *GoHighLevelConnector) DetectSchema(ctx context.Context, source *models.Source) (models.RawSchema, error) {
	records, err := c.FetchData(ctx, source, &FetchOptions{Limit: filePreviewRows})
	if err != nil {
		return nil, err
	}
	return detectSchemaFromRecords(records, fileSampleRows), nil
}

// apiKey 取连接配置并解密API密钥
func (c *GoHighLevelConnector) apiKey(source *models.Source) (string, error) {
	encryptedKey := stringField(source.Config, "apiKey")
	if encryptedKey == "" {
		return "", fmt.Errorf("缺少apiKey配置")
	}

	apiKey, err := crypto.Decrypt(encryptedKey)
	if err != nil {
		return "", fmt.Errorf("API密钥解密失败: %w", err)
	}
	return apiKey, nil
}

// flattenConversation 会话展平为扁平记录
func flattenConversation(conv map[string]interface{}) map[string]interface{} {
	contact := nestedMap(conv, "contact")
	contactName := strings.TrimSpace(strings.Join([]string{
		stringField(contact, "firstName"),
		stringField(contact, "lastName"),
	}, " "))

	return map[string]interface{}{
		"id":              conv["id"],
		"type":            conv["type"],
		"contactId":       conv["contactId"],
		"contactEmail":    stringField(contact, "email"),
		"contactPhone":    stringField(contact, "phone"),
		"contactName":     contactName,
		"lastMessage":     conv["lastMessageBody"],
		"lastMessageType": conv["lastMessageType"],
		"lastMessageDate": conv["lastMessageDate"],
		"unreadCount":     conv["unreadCount"],
		"status":          conv["status"],
		"createdAt":       conv["dateAdded"],
		"updatedAt":       conv["dateUpdated"],
	}
}
