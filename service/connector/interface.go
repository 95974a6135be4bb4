/*
 * @module service/connector/interface
 * @description 数据源连接器统一接口定义，屏蔽文件与外部API的差异
 * @architecture 接口隔离原则 - 定义连接器能力集的标准接口
 * @documentReference ai_docs/source_connector_req.md
 * @stateFlow 连接测试 -> 结构探测 -> 数据预览 -> 全量拉取
 * @rules 编排器只依赖FetchData能力；凭证由连接器自行解密
 * @dependencies context, service/models
 * @refs service/processing, service/mapping
 */

package connector

import (
	"context"
	"time"

	"foundry-service/service/models"
)

// ConnectionTestResult 连接测试结果
type ConnectionTestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// FetchOptions 数据拉取选项
type FetchOptions struct {
	Limit int        `json:"limit,omitempty"`
	Since *time.Time `json:"since,omitempty"`
}

// SourcePreview 数据源预览结果
type SourcePreview struct {
	Columns    []string                 `json:"columns"`
	SampleData []map[string]interface{} `json:"sample_data"`
}

// SourceConnector 数据源连接器统一接口
type SourceConnector interface {
	// Type 获取连接器支持的数据源类型
	Type() string

	// TestConnection 测试数据源连通性，连接失败不返回error而体现在结果中
	TestConnection(ctx context.Context, source *models.Source) *ConnectionTestResult

	// FetchData 拉取数据源的原始记录
	FetchData(ctx context.Context, source *models.Source, opts *FetchOptions) ([]map[string]interface{}, error)

	// GetPreview 获取列名与样例数据
	GetPreview(ctx context.Context, source *models.Source) (*SourcePreview, error)

	// DetectSchema 探测原始字段结构（字段名、类型、前若干条样例值）
	DetectSchema(ctx context.Context, source *models.Source) (models.RawSchema, error)
}
