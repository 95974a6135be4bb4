/*
 * @module api/routes
 * @description API路由配置模块，负责初始化和配置所有HTTP路由
 * @architecture RESTful API架构
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 无状态HTTP请求处理
 * @rules 遵循RESTful API设计规范，统一错误处理和响应格式
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/cors, github.com/go-chi/render
 * @refs dev_docs/model.md
 */

package api

import (
	"foundry-service/api/controllers"
	"foundry-service/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
)

// InitRoute 初始化所有API路由
func InitRoute(r *chi.Mux) {
	// 基础中间件
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// CORS配置
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-User-Id", "X-Organization-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 健康检查
	healthController := controllers.NewHealthController()
	r.Get("/health", healthController.Health)
	r.Get("/ready", healthController.Ready)

	// 数据源管理
	r.Route("/sources", func(r chi.Router) {
		sourceController := controllers.NewSourceController(service.GlobalSourceService)
		mappingController := controllers.NewMappingController(service.GlobalMappingService)

		r.Post("/{id}/test-connection", sourceController.TestConnection)
		r.Get("/{id}/preview", sourceController.GetPreview)
		r.Post("/{id}/detect-schema", sourceController.DetectSchema)

		// 字段映射
		r.Get("/{id}/mappings", mappingController.GetMappings)
		r.Put("/{id}/mappings", mappingController.UpdateMappings)
		r.Post("/{id}/mappings/auto-detect", mappingController.AutoDetect)
		r.Get("/{id}/mappings/preview", mappingController.GetPreview)
	})

	// 项目处理任务
	r.Route("/projects", func(r chi.Router) {
		processingController := controllers.NewProcessingController(service.GlobalProcessingService)

		r.Post("/{id}/jobs", processingController.StartJob)
		r.Get("/{id}/jobs", processingController.ListJobs)
	})

	// 任务详情与导出
	r.Route("/jobs", func(r chi.Router) {
		processingController := controllers.NewProcessingController(service.GlobalProcessingService)
		exportController := controllers.NewExportController(service.GlobalExportService)

		r.Get("/{id}", processingController.GetJob)
		r.Post("/{id}/cancel", processingController.CancelJob)
		r.Post("/{id}/exports", exportController.CreateExport)
		r.Get("/{id}/exports", exportController.ListExports)
	})

	// 导出下载
	r.Route("/exports", func(r chi.Router) {
		exportController := controllers.NewExportController(service.GlobalExportService)

		r.Get("/{id}", exportController.GetExport)
		r.Get("/{id}/download", exportController.Download)
	})

	// 审计日志
	r.Route("/audit-logs", func(r chi.Router) {
		auditController := controllers.NewAuditController(service.GlobalAuditService)

		r.Get("/", auditController.ListAuditLogs)
	})
}
