/*
 * @module service/export/export_service
 * @description 导出服务，基于已完成任务的处理结果生成导出文件，管理保留期与下载
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/export_req.md
 * @stateFlow 任务completed校验 -> 记录加载 -> 引擎格式化 -> 落盘 -> 记录导出实体 -> 过期清理
 * @rules 仅completed任务可导出；过期导出拒绝下载；文件按组织目录隔离
 * @dependencies gorm.io/gorm, service/export/engine.go, service/audit, service/meta
 * @refs api/controllers/export_controller.go, service/cleanup
 */

package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"foundry-service/service/audit"
	"foundry-service/service/meta"
	"foundry-service/service/models"

	"gorm.io/gorm"
)

// Service 导出服务
type Service struct {
	db           *gorm.DB
	engine       *Engine
	auditService *audit.Service
	exportDir    string
}

// NewService 创建导出服务，目录取EXPORT_DIR环境变量，默认./exports
func NewService(db *gorm.DB, auditService *audit.Service) *Service {
	exportDir := os.Getenv("EXPORT_DIR")
	if exportDir == "" {
		exportDir = "./exports"
	}
	return &Service{
		db:           db,
		engine:       NewEngine(),
		auditService: auditService,
		exportDir:    exportDir,
	}
}

// CreateExport 为已完成任务生成导出文件
func (s *Service) CreateExport(jobID, format string, options *Options, userID string) (*models.Export, error) {
	if !meta.IsValidExportFormat(format) {
		return nil, fmt.Errorf("%w: 不支持的导出格式 %s", meta.ErrValidation, format)
	}

	var job models.ProcessingJob
	if err := s.db.First(&job, "id = ?", jobID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: 处理任务 %s 不存在", meta.ErrNotFound, jobID)
		}
		return nil, fmt.Errorf("查询处理任务失败: %w", err)
	}
	if job.Status != meta.JobStatusCompleted {
		return nil, fmt.Errorf("%w: 任务状态为 %s，仅已完成任务可导出", meta.ErrNotEligible, job.Status)
	}

	var project models.Project
	if err := s.db.First(&project, "id = ?", job.ProjectID).Error; err != nil {
		return nil, fmt.Errorf("查询任务所属项目失败: %w", err)
	}

	var records []models.ProcessedRecord
	if err := s.db.Where("job_id = ?", jobID).Order("created_at").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("加载处理结果失败: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: 任务没有可导出的处理结果", meta.ErrNotEligible)
	}

	data := make([]map[string]interface{}, 0, len(records))
	for _, record := range records {
		data = append(data, map[string]interface{}(record.ProcessedData))
	}

	content, err := s.engine.Generate(data, format, options)
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(s.exportDir, project.OrganizationID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建导出目录失败: %w", err)
	}

	now := time.Now()
	filename := fmt.Sprintf("export_%s_%s_%d%s", jobID, format, now.Unix(), fileExtension(format))
	filePath := filepath.Join(dir, filename)
	if err := os.WriteFile(filePath, content, 0o644); err != nil {
		return nil, fmt.Errorf("写入导出文件失败: %w", err)
	}

	exp := &models.Export{
		JobID:       jobID,
		Format:      format,
		FilePath:    filePath,
		FileSize:    int64(len(content)),
		RecordCount: len(records),
		ExpiresAt:   now.Add(meta.ExportRetention),
	}
	if err := s.db.Create(exp).Error; err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("保存导出记录失败: %w", err)
	}

	exportsGenerated.WithLabelValues(format).Inc()
	s.auditService.Log(audit.Entry{
		Action:         "export.created",
		ResourceType:   "export",
		ResourceID:     exp.ID,
		UserID:         userID,
		OrganizationID: project.OrganizationID,
		Details: models.JSONB{
			"job_id":       jobID,
			"format":       format,
			"record_count": exp.RecordCount,
			"file_size":    exp.FileSize,
		},
	})

	return exp, nil
}

// ListByJob 查询任务的全部导出记录
func (s *Service) ListByJob(jobID string) ([]models.Export, error) {
	var exports []models.Export
	err := s.db.Where("job_id = ?", jobID).Order("created_at DESC").Find(&exports).Error
	return exports, err
}

// GetByID 按ID查询导出记录
func (s *Service) GetByID(id string) (*models.Export, error) {
	var exp models.Export
	if err := s.db.First(&exp, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: 导出记录 %s 不存在", meta.ErrNotFound, id)
		}
		return nil, fmt.Errorf("查询导出记录失败: %w", err)
	}
	return &exp, nil
}

// Download 打开导出文件用于下载，过期或文件缺失时拒绝
func (s *Service) Download(id string) (*models.Export, *os.File, error) {
	exp, err := s.GetByID(id)
	if err != nil {
		return nil, nil, err
	}
	if exp.IsExpired(time.Now()) {
		return nil, nil, fmt.Errorf("%w: 导出文件已过保留期", meta.ErrNotEligible)
	}

	file, err := os.Open(exp.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: 导出文件已不存在", meta.ErrNotFound)
		}
		return nil, nil, fmt.Errorf("打开导出文件失败: %w", err)
	}
	return exp, file, nil
}

// DeleteExpired 删除过期导出记录与对应文件，返回删除数量
func (s *Service) DeleteExpired(now time.Time) (int, error) {
	var expired []models.Export
	if err := s.db.Where("expires_at < ?", now).Find(&expired).Error; err != nil {
		return 0, fmt.Errorf("查询过期导出失败: %w", err)
	}

	deleted := 0
	for _, exp := range expired {
		if err := os.Remove(exp.FilePath); err != nil && !os.IsNotExist(err) {
			return deleted, fmt.Errorf("删除导出文件 %s 失败: %w", exp.FilePath, err)
		}
		if err := s.db.Delete(&models.Export{}, "id = ?", exp.ID).Error; err != nil {
			return deleted, fmt.Errorf("删除导出记录失败: %w", err)
		}
		deleted++
	}
	return deleted, nil
}

// fileExtension 根据导出格式返回文件扩展名
func fileExtension(format string) string {
	if format == meta.ExportFormatRaw {
		return ".json"
	}
	return ".jsonl"
}
