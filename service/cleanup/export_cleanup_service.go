/*
 * @module service/cleanup/export_cleanup_service
 * @description 导出清理服务，负责定期删除过期的导出文件与记录
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/export_req.md
 * @stateFlow 定时触发 -> 查询过期导出 -> 删除文件与记录 -> 记录结果
 * @rules 清理失败仅记录日志，不影响服务正常运行
 * @dependencies service/export, github.com/robfig/cron/v3
 * @refs service/init.go
 */

package cleanup

import (
	"fmt"
	"log/slog"
	"time"

	"foundry-service/service/export"

	"github.com/robfig/cron/v3"
)

// ExportCleanupService 导出清理服务
type ExportCleanupService struct {
	exportService *export.Service
	cron          *cron.Cron
	started       bool
}

// NewExportCleanupService 创建导出清理服务实例
func NewExportCleanupService(exportService *export.Service) *ExportCleanupService {
	return &ExportCleanupService{
		exportService: exportService,
		cron:          cron.New(cron.WithSeconds()),
		started:       false,
	}
}

// CleanupExpiredExports 删除全部过期导出
func (s *ExportCleanupService) CleanupExpiredExports() error {
	startTime := time.Now()

	deleted, err := s.exportService.DeleteExpired(startTime)
	if err != nil {
		return fmt.Errorf("清理过期导出失败: %w", err)
	}

	slog.Info("过期导出清理完成",
		"deleted_count", deleted,
		"duration_ms", time.Since(startTime).Milliseconds())
	return nil
}

// StartScheduledCleanup 启动定时清理任务，每小时整点执行
func (s *ExportCleanupService) StartScheduledCleanup() error {
	if s.started {
		return fmt.Errorf("导出清理调度器已经启动")
	}

	slog.Info("启动导出清理调度器")

	// Cron表达式：秒 分 时 日 月 周
	_, err := s.cron.AddFunc("0 0 * * * *", func() {
		if err := s.CleanupExpiredExports(); err != nil {
			slog.Error("定时导出清理任务失败", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("添加定时任务失败: %w", err)
	}

	s.cron.Start()
	s.started = true

	// 启动时立即执行一次清理
	go func() {
		if err := s.CleanupExpiredExports(); err != nil {
			slog.Error("首次导出清理失败", "error", err)
		}
	}()

	return nil
}

// StopScheduledCleanup 停止定时清理任务
func (s *ExportCleanupService) StopScheduledCleanup() {
	if !s.started {
		return
	}

	slog.Info("停止导出清理调度器")
	if s.cron != nil {
		s.cron.Stop()
	}
	s.started = false
}
