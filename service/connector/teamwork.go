/*
 * @module service/connector/teamwork
 * @description Teamwork Desk工单连接器，拉取工单并展平为原始记录
 * @architecture 连接器实现 - 外部API变体
 * @documentReference ai_docs/source_connector_req.md
 * @stateFlow 凭证解密 -> Basic认证请求 -> 工单展平
 * @rules API密钥密文存储，由连接器自行解密；请求携带超时
 * @dependencies net/http, service/crypto
 * @refs interface.go, registry.go
 */

package connector

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"foundry-service/service/crypto"
	"foundry-service/service/meta"
	"foundry-service/service/models"
)

// TeamworkConnector Teamwork Desk数据源连接器
type TeamworkConnector struct{}

// NewTeamworkConnector 创建Teamwork连接器
func NewTeamworkConnector() *TeamworkConnector {
	return &TeamworkConnector{}
}

// Type 获取连接器类型
func (c *TeamworkConnector) Type() string {
	return meta.SourceTypeTeamwork
}

// TestConnection 测试Teamwork连通性
func (c *TeamworkConnector) TestConnection(ctx context.Context, source *models.Source) *ConnectionTestResult {
	subdomain, apiKey, err := c.credentials(source)
	if err != nil {
		return &ConnectionTestResult{Success: false, Message: "连接配置错误: " + err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("https://%s.teamwork.com/desk/v1/me.json", subdomain), nil)
	if err != nil {
		return &ConnectionTestResult{Success: false, Message: "构造请求失败: " + err.Error()}
	}
	req.Header.Set("Authorization", basicAuth(apiKey))

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

// FetchData 拉取工单记录
func (c *TeamworkConnector) FetchData(ctx context.Context, source *models.Source, opts *FetchOptions) ([]map[string]interface{}, error) {
	subdomain, apiKey, err := c.credentials(source)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	if opts != nil && opts.Limit > 0 {
		params.Set("pageSize", strconv.Itoa(opts.Limit))
	}
	if opts != nil && opts.Since != nil {
		params.Set("updatedAfter", opts.Since.Format(time.RFC3339))
	}

	endpoint := fmt.Sprintf("https://%s.teamwork.com/desk/v1/tickets.json?%s", subdomain, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", basicAuth(apiKey))

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("拉取Teamwork数据失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("拉取Teamwork数据失败: %s", resp.Status)
	}

	var result struct {
		Tickets []map[string]interface{} `json:"tickets"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("解析Teamwork响应失败: %w", err)
	}

	records := make([]map[string]interface{}, 0, len(result.Tickets))
	for _, ticket := range result.Tickets {
		records = append(records, flattenTicket(ticket))
	}
	return records, nil
}

// GetPreview 获取前若干条工单预览
func (c *TeamworkConnector) GetPreview(ctx context.Context, source *models.Source) (*SourcePreview, error) {
	records, err := c.FetchData(ctx, source, &FetchOptions{Limit: filePreviewRows})
	if err != nil {
		// 预览失败返回空结果而不是错误，保持页面可用
		return &SourcePreview{Columns: []string{}, SampleData: []map[string]interface{}{}}, nil
	}
	return previewFromRecords(records, filePreviewRows), nil
}

// DetectSchema 由预览数据探测字段结构
func (c *TeamworkConnector) DetectSchema(ctx context.Context, source *models.Source) (models.RawSchema, error) {
	records, err := c.FetchData(ctx, source, &FetchOptions{Limit: filePreviewRows})
	if err != nil {
		return nil, err
	}
	return detectSchemaFromRecords(records, fileSampleRows), nil
}

// credentials 取连接配置并解密API密钥
func (c *TeamworkConnector) credentials(source *models.Source) (string, string, error) {
	subdomain := stringField(source.Config, "subdomain")
	encryptedKey := stringField(source.Config, "apiKey")
	if subdomain == "" || encryptedKey == "" {
		return "", "", fmt.Errorf("缺少subdomain或apiKey配置")
	}

	apiKey, err := crypto.Decrypt(encryptedKey)
	if err != nil {
		return "", "", fmt.Errorf("API密钥解密失败: %w", err)
	}
	return subdomain, apiKey, nil
}

// flattenTicket 工单展平为扁平记录
func flattenTicket(ticket map[string]interface{}) map[string]interface{} {
	content := stringField(ticket, "preview")
	if content == "" {
		content = stringField(ticket, "description")
	}

	customer := nestedMap(ticket, "customer")
	assignee := nestedMap(ticket, "assignee")

	var tags []string
	if rawTags, ok := ticket["tags"].([]interface{}); ok {
		for _, t := range rawTags {
			if s, ok := t.(string); ok {
				tags = append(tags, s)
			}
		}
	}

	return map[string]interface{}{
		"id":            ticket["id"],
		"subject":       ticket["subject"],
		"content":       content,
		"status":        ticket["status"],
		"priority":      ticket["priority"],
		"customerEmail": stringField(customer, "email"),
		"customerName":  stringField(customer, "name"),
		"assignedTo":    stringField(assignee, "name"),
		"createdAt":     ticket["createdAt"],
		"updatedAt":     ticket["updatedAt"],
		"tags":          strings.Join(tags, ", "),
	}
}

// basicAuth Teamwork使用apiKey:x的Basic认证
func basicAuth(apiKey string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(apiKey+":x"))
}
