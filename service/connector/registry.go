/*
 * @module service/connector/registry
 * @description 连接器注册中心，按数据源类型管理连接器实例
 * @architecture 注册中心模式 - 统一管理所有连接器类型
 * @documentReference ai_docs/source_connector_req.md
 * @stateFlow 初始化 -> 注册内置类型 -> 按类型查找
 * @rules 未注册的数据源类型视为调用方错误
 * @dependencies sync, service/meta
 * @refs interface.go, file.go, teamwork.go, gohighlevel.go
 */

package connector

import (
	"fmt"
	"sync"

	"foundry-service/service/meta"
)

// Registry 连接器注册中心
type Registry struct {
	mu         sync.RWMutex
	connectors map[string]SourceConnector
}

// NewRegistry 创建连接器注册中心并注册内置类型
func NewRegistry() *Registry {
	r := &Registry{
		connectors: make(map[string]SourceConnector),
	}

	r.Register(NewFileConnector())
	r.Register(NewTeamworkConnector())
	r.Register(NewGoHighLevelConnector())

	return r
}

// NewEmptyRegistry 创建空注册中心，供测试注入伪连接器
func NewEmptyRegistry() *Registry {
	return &Registry{
		connectors: make(map[string]SourceConnector),
	}
}

// Register 注册连接器，同类型后注册者覆盖先注册者
func (r *Registry) Register(c SourceConnector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connectors[c.Type()] = c
}

// Get 按数据源类型查找连接器
func (r *Registry) Get(sourceType string) (SourceConnector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.connectors[sourceType]
	if !ok {
		return nil, fmt.Errorf("%w: 不支持的数据源类型 %s", meta.ErrValidation, sourceType)
	}
	return c, nil
}

// SupportedTypes 获取已注册的数据源类型列表
func (r *Registry) SupportedTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.connectors))
	for t := range r.connectors {
		types = append(types, t)
	}
	return types
}
