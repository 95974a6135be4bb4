/*
 * @module service/export/metrics
 * @description 导出服务Prometheus指标定义
 * @architecture 分层架构 - 观测层
 * @stateFlow 导出生成计数 -> /metrics暴露
 * @dependencies github.com/prometheus/client_golang
 * @refs export_service.go
 */

package export

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var exportsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "foundry",
	Subsystem: "export",
	Name:      "generated_total",
	Help:      "生成的导出文件总数",
}, []string{"format"})
