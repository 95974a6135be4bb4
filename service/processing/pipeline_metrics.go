/*
 * @module service/processing/pipeline_metrics
 * @description 处理流水线Prometheus指标定义
 * @architecture 分层架构 - 观测层
 * @stateFlow 流水线各阶段计数 -> /metrics暴露
 * @rules 指标注册一次，计数只增不减
 * @dependencies github.com/prometheus/client_golang
 * @refs processing_service.go, main.go
 */

package processing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "foundry",
		Subsystem: "pipeline",
		Name:      "jobs_started_total",
		Help:      "启动的处理任务总数",
	})

	jobsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "foundry",
		Subsystem: "pipeline",
		Name:      "jobs_completed_total",
		Help:      "正常完成的处理任务总数",
	})

	jobsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "foundry",
		Subsystem: "pipeline",
		Name:      "jobs_failed_total",
		Help:      "失败的处理任务总数",
	})

	jobsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "foundry",
		Subsystem: "pipeline",
		Name:      "jobs_cancelled_total",
		Help:      "被取消的处理任务总数",
	})

	recordsProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "foundry",
		Subsystem: "pipeline",
		Name:      "records_processed_total",
		Help:      "流水线处理的记录总数（含被过滤记录）",
	})

	recordsFilteredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "foundry",
		Subsystem: "pipeline",
		Name:      "records_filtered_total",
		Help:      "被过滤规则排除的记录总数",
	})

	jobDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "foundry",
		Subsystem: "pipeline",
		Name:      "job_duration_seconds",
		Help:      "处理任务从开始执行到终态的耗时",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	})
)
