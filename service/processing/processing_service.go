/*
 * @module service/processing/processing_service
 * @description 处理任务编排服务，串联数据源抓取、字段映射、过滤与PII脱敏流水线
 * @architecture 分层架构 - 业务服务层，单goroutine异步执行
 * @documentReference ai_docs/processing_pipeline_req.md
 * @stateFlow pending -> processing -> completed/failed/cancelled；取消在数据源边界生效
 * @rules 每项目同时仅一个活跃任务；已写入记录不回滚；警告上限100条
 * @dependencies gorm.io/gorm, service/connector, service/mapping, service/filter, service/pii, service/audit, service/distributed_lock
 * @refs api/controllers/processing_controller.go, service/export
 */

package processing

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"foundry-service/service/audit"
	"foundry-service/service/connector"
	"foundry-service/service/distributed_lock"
	"foundry-service/service/filter"
	"foundry-service/service/mapping"
	"foundry-service/service/meta"
	"foundry-service/service/models"
	"foundry-service/service/pii"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Service 处理任务编排服务
type Service struct {
	db           *gorm.DB
	registry     *connector.Registry
	filterEngine *filter.Engine
	auditService *audit.Service
	lock         distributed_lock.DistributedLock // 可选，未配置Redis时为nil
}

// NewService 创建处理任务编排服务
func NewService(db *gorm.DB, registry *connector.Registry, auditService *audit.Service, lock distributed_lock.DistributedLock) *Service {
	return &Service{
		db:           db,
		registry:     registry,
		filterEngine: filter.NewEngine(),
		auditService: auditService,
		lock:         lock,
	}
}

// StartJob 校验资格并启动处理任务，流水线在独立goroutine中执行
func (s *Service) StartJob(projectID string, sourceIDs []string, userID string) (*models.ProcessingJob, error) {
	var project models.Project
	if err := s.db.First(&project, "id = ?", projectID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: 项目 %s 不存在", meta.ErrNotFound, projectID)
		}
		return nil, fmt.Errorf("查询项目失败: %w", err)
	}

	var sources []models.Source
	if err := s.db.Where("project_id = ?", projectID).Order("created_at").Find(&sources).Error; err != nil {
		return nil, fmt.Errorf("查询项目数据源失败: %w", err)
	}

	// 调用方可指定数据源子集，只处理项目内命中的数据源
	if len(sourceIDs) > 0 {
		requested := make(map[string]bool, len(sourceIDs))
		for _, id := range sourceIDs {
			requested[id] = true
		}
		selected := sources[:0]
		for _, source := range sources {
			if requested[source.ID] {
				selected = append(selected, source)
			}
		}
		sources = selected
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: 项目没有可处理的数据源", meta.ErrNotEligible)
	}

	// 多实例环境下用项目锁保护查重与创建之间的窗口
	if s.lock != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		lockKey := distributed_lock.ProjectJobKey(projectID)
		locked, err := s.lock.TryLock(ctx, lockKey, distributed_lock.ProjectJobLockTTL)
		if err != nil {
			return nil, fmt.Errorf("获取项目任务锁失败: %w", err)
		}
		if !locked {
			return nil, fmt.Errorf("%w: 项目已有正在运行的处理任务", meta.ErrNotEligible)
		}
	}

	var activeCount int64
	err := s.db.Model(&models.ProcessingJob{}).
		Where("project_id = ? AND status IN ?", projectID,
			[]string{meta.JobStatusPending, meta.JobStatusProcessing}).
		Count(&activeCount).Error
	if err != nil {
		s.releaseLock(projectID)
		return nil, fmt.Errorf("查询活跃任务失败: %w", err)
	}
	if activeCount > 0 {
		s.releaseLock(projectID)
		return nil, fmt.Errorf("%w: 项目已有正在运行的处理任务", meta.ErrNotEligible)
	}

	selectedIDs := make([]string, 0, len(sources))
	for _, source := range sources {
		selectedIDs = append(selectedIDs, source.ID)
	}

	// 启动时冻结配置，任务执行期间的项目配置修改不影响本次运行
	snapshot := models.JSONB{"source_ids": selectedIDs}
	if project.PiiSettings != nil {
		snapshot["pii_settings"] = project.PiiSettings
	}
	if project.FilterSettings != nil {
		snapshot["filter_settings"] = project.FilterSettings
	}

	job := &models.ProcessingJob{
		ProjectID:      projectID,
		Status:         meta.JobStatusPending,
		ConfigSnapshot: snapshot,
	}
	if err := s.db.Create(job).Error; err != nil {
		s.releaseLock(projectID)
		return nil, fmt.Errorf("创建处理任务失败: %w", err)
	}

	// 任务行落库后活跃任务查重即可保证互斥，锁只保护查重与创建之间的窗口
	s.releaseLock(projectID)

	s.auditService.Log(audit.Entry{
		Action:         "job.started",
		ResourceType:   "processing_job",
		ResourceID:     job.ID,
		UserID:         userID,
		OrganizationID: project.OrganizationID,
		Details: models.JSONB{
			"project_id":   projectID,
			"source_count": len(sources),
		},
	})
	jobsStarted.Inc()

	go s.processJob(job.ID, &project, sources)

	return job, nil
}

// processJob 执行流水线，任一阶段出错即标记失败
func (s *Service) processJob(jobID string, project *models.Project, sources []models.Source) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("处理任务发生panic", "job_id", jobID, "panic", r)
			s.markFailed(jobID, fmt.Sprintf("内部错误: %v", r))
		}
	}()
	defer func() {
		jobDuration.Observe(time.Since(started).Seconds())
	}()

	now := time.Now()
	err := s.db.Model(&models.ProcessingJob{}).Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":     meta.JobStatusProcessing,
			"started_at": &now,
		}).Error
	if err != nil {
		slog.Error("更新任务状态失败", "job_id", jobID, "error", err)
		return
	}

	piiEngine := pii.NewEngine()
	warnings := make([]string, 0)
	recordsTotal := 0
	recordsProcessed := 0
	ctx := context.Background()

	for _, source := range sources {
		// 取消在数据源边界生效
		cancelled, err := s.isCancelled(jobID)
		if err != nil {
			s.markFailed(jobID, fmt.Sprintf("查询任务状态失败: %v", err))
			return
		}
		if cancelled {
			slog.Info("处理任务已取消，停止执行", "job_id", jobID, "records_processed", recordsProcessed)
			jobsCancelled.Inc()
			return
		}

		var mappings []models.SourceMapping
		if err := s.db.Where("source_id = ?", source.ID).Find(&mappings).Error; err != nil {
			s.markFailed(jobID, fmt.Sprintf("加载数据源 %s 的字段映射失败: %v", source.Name, err))
			return
		}
		if len(mappings) == 0 {
			warnings = append(warnings, fmt.Sprintf("数据源 %s 未配置字段映射，已跳过", source.Name))
			continue
		}

		conn, err := s.registry.Get(source.Type)
		if err != nil {
			s.markFailed(jobID, fmt.Sprintf("数据源 %s 类型不受支持: %v", source.Name, err))
			return
		}

		records, err := conn.FetchData(ctx, &source, &connector.FetchOptions{})
		if err != nil {
			s.markFailed(jobID, fmt.Sprintf("抓取数据源 %s 失败: %v", source.Name, err))
			return
		}

		recordsTotal += len(records)
		err = s.db.Model(&models.ProcessingJob{}).Where("id = ?", jobID).
			Update("records_total", recordsTotal).Error
		if err != nil {
			s.markFailed(jobID, fmt.Sprintf("更新任务计数失败: %v", err))
			return
		}

		for index, record := range records {
			mapped := mapping.ApplyMappings(record, mappings)

			if !s.filterEngine.ShouldInclude(mapped, project.FilterSettings) {
				warnings = append(warnings, fmt.Sprintf("数据源 %s 第 %d 条记录被过滤规则排除", source.Name, index+1))
				recordsFilteredTotal.Inc()
				recordsProcessedTotal.Inc()
				recordsProcessed++
				if err := s.updateProgress(jobID, recordsProcessed, recordsTotal); err != nil {
					s.markFailed(jobID, fmt.Sprintf("更新任务进度失败: %v", err))
					return
				}
				continue
			}

			result := piiEngine.Process(mapped, mappings, project.PiiSettings)

			processed := &models.ProcessedRecord{
				JobID:         jobID,
				SourceID:      source.ID,
				OriginalData:  models.JSONB(record),
				ProcessedData: models.JSONB(result.ProcessedData),
				PiiTokensMap:  models.JSONBStringMap(result.TokensMap),
			}
			if err := s.db.Create(processed).Error; err != nil {
				s.markFailed(jobID, fmt.Sprintf("写入处理结果失败: %v", err))
				return
			}

			recordsProcessed++
			recordsProcessedTotal.Inc()
			if err := s.updateProgress(jobID, recordsProcessed, recordsTotal); err != nil {
				s.markFailed(jobID, fmt.Sprintf("更新任务进度失败: %v", err))
				return
			}
		}
	}

	// 终态前再确认一次取消状态
	cancelled, err := s.isCancelled(jobID)
	if err == nil && cancelled {
		jobsCancelled.Inc()
		return
	}

	completedAt := time.Now()
	if len(warnings) > meta.JobWarningLimit {
		warnings = warnings[:meta.JobWarningLimit]
	}
	err = s.db.Model(&models.ProcessingJob{}).Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":       meta.JobStatusCompleted,
			"progress":     100,
			"warnings":     toStringArray(warnings),
			"completed_at": &completedAt,
		}).Error
	if err != nil {
		slog.Error("标记任务完成失败", "job_id", jobID, "error", err)
		return
	}

	jobsCompleted.Inc()
	slog.Info("处理任务完成",
		"job_id", jobID,
		"records_total", recordsTotal,
		"records_processed", recordsProcessed,
		"warnings", len(warnings))
}

// CancelJob 取消pending或processing状态的任务
func (s *Service) CancelJob(jobID, userID string) (*models.ProcessingJob, error) {
	job, err := s.GetJob(jobID)
	if err != nil {
		return nil, err
	}
	if !job.CanCancel() {
		return nil, fmt.Errorf("%w: 任务状态为 %s，无法取消", meta.ErrNotEligible, job.Status)
	}

	now := time.Now()
	err = s.db.Model(&models.ProcessingJob{}).
		Where("id = ? AND status IN ?", jobID,
			[]string{meta.JobStatusPending, meta.JobStatusProcessing}).
		Updates(map[string]interface{}{
			"status":       meta.JobStatusCancelled,
			"completed_at": &now,
		}).Error
	if err != nil {
		return nil, fmt.Errorf("取消任务失败: %w", err)
	}

	var project models.Project
	if err := s.db.First(&project, "id = ?", job.ProjectID).Error; err == nil {
		s.auditService.Log(audit.Entry{
			Action:         "job.cancelled",
			ResourceType:   "processing_job",
			ResourceID:     jobID,
			UserID:         userID,
			OrganizationID: project.OrganizationID,
			Details:        models.JSONB{"project_id": job.ProjectID},
		})
	}

	return s.GetJob(jobID)
}

// GetJob 按ID查询任务
func (s *Service) GetJob(jobID string) (*models.ProcessingJob, error) {
	var job models.ProcessingJob
	if err := s.db.First(&job, "id = ?", jobID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: 处理任务 %s 不存在", meta.ErrNotFound, jobID)
		}
		return nil, fmt.Errorf("查询处理任务失败: %w", err)
	}
	return &job, nil
}

// ListJobs 按项目分页查询任务，按创建时间倒序
func (s *Service) ListJobs(projectID string, page, size int) ([]models.ProcessingJob, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	query := s.db.Model(&models.ProcessingJob{}).Where("project_id = ?", projectID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("统计任务数量失败: %w", err)
	}

	var jobs []models.ProcessingJob
	err := query.Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&jobs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("查询任务列表失败: %w", err)
	}

	return jobs, total, nil
}

// isCancelled 重新读取任务状态判断是否已被取消
func (s *Service) isCancelled(jobID string) (bool, error) {
	var job models.ProcessingJob
	err := s.db.Select("status").First(&job, "id = ?", jobID).Error
	if err != nil {
		return false, err
	}
	return job.Status == meta.JobStatusCancelled, nil
}

// updateProgress 每条记录后持久化计数与百分比进度
func (s *Service) updateProgress(jobID string, processed, total int) error {
	progress := 0
	if total > 0 {
		progress = int(math.Round(float64(processed) / float64(total) * 100))
	}
	return s.db.Model(&models.ProcessingJob{}).Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"records_processed": processed,
			"progress":          progress,
		}).Error
}

// markFailed 标记任务失败并记录错误信息
func (s *Service) markFailed(jobID, message string) {
	slog.Error("处理任务失败", "job_id", jobID, "error", message)

	now := time.Now()
	err := s.db.Model(&models.ProcessingJob{}).Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":       meta.JobStatusFailed,
			"errors":       toStringArray([]string{message}),
			"completed_at": &now,
		}).Error
	if err != nil {
		slog.Error("标记任务失败状态时出错", "job_id", jobID, "error", err)
	}
	jobsFailed.Inc()
}

// toStringArray 转换为Postgres文本数组列类型
func toStringArray(values []string) pq.StringArray {
	return pq.StringArray(values)
}

// releaseLock 释放项目任务锁，未配置锁时为空操作
func (s *Service) releaseLock(projectID string) {
	if s.lock == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.lock.Unlock(ctx, distributed_lock.ProjectJobKey(projectID)); err != nil {
		slog.Warn("释放项目任务锁失败", "project_id", projectID, "error", err)
	}
}
