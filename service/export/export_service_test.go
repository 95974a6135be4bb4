/*
 * @module service/export/export_service_test
 * @description 导出服务的单元测试
 * @architecture 单元测试 - 使用内存数据库验证导出资格、落盘与过期语义
 * @documentReference ai_docs/export_req.md
 * @stateFlow 测试数据准备 -> 创建导出 -> 下载/过期验证
 * @rules 覆盖非completed任务拒绝、空结果拒绝、过期下载拒绝与保留期清理
 * @dependencies testing, github.com/stretchr/testify/assert, testutil
 * @refs export_service.go
 */

package export

import (
	"errors"
	"os"
	"testing"
	"time"

	"foundry-service/service/audit"
	"foundry-service/service/meta"
	"foundry-service/service/models"
	"foundry-service/testutil"

	"github.com/stretchr/testify/assert"
)

func newTestService(t *testing.T) (*Service, *testutil.TestDB, *testutil.TestDataFactory) {
	t.Setenv("EXPORT_DIR", t.TempDir())

	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)

	service := NewService(tdb.DB, audit.NewService(tdb.DB))
	return service, tdb, testutil.NewTestDataFactory(tdb.DB)
}

func TestCreateExport_PendingJobRejected(t *testing.T) {
	service, _, factory := newTestService(t)

	project := factory.CreateProject()
	job := factory.CreateJob(project.ID)

	_, err := service.CreateExport(job.ID, meta.ExportFormatQA, nil, "user-1")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, meta.ErrNotEligible))
}

func TestCreateExport_NoRecordsRejected(t *testing.T) {
	service, _, factory := newTestService(t)

	project := factory.CreateProject()
	job := factory.CreateJob(project.ID, func(j *models.ProcessingJob) {
		j.Status = meta.JobStatusCompleted
	})

	_, err := service.CreateExport(job.ID, meta.ExportFormatQA, nil, "user-1")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, meta.ErrNotEligible))
}

func TestCreateExport_JobNotFound(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.CreateExport("missing-id", meta.ExportFormatQA, nil, "user-1")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, meta.ErrNotFound))
}

func TestCreateExport_InvalidFormat(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.CreateExport("any-id", "xlsx", nil, "user-1")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, meta.ErrValidation))
}

func TestCreateExport_Success(t *testing.T) {
	service, tdb, factory := newTestService(t)

	project := factory.CreateProject()
	source := factory.CreateSource(project.ID)
	job := factory.CreateJob(project.ID, func(j *models.ProcessingJob) {
		j.Status = meta.JobStatusCompleted
	})
	factory.CreateProcessedRecord(job.ID, source.ID, models.JSONB{
		"question": "如何开发票?",
		"answer":   "在账户设置中申请",
	})

	exp, err := service.CreateExport(job.ID, meta.ExportFormatQA, nil, "user-1")
	assert.NoError(t, err)
	assert.Equal(t, 1, exp.RecordCount)
	assert.Greater(t, exp.FileSize, int64(0))
	assert.FileExists(t, exp.FilePath)
	// 保留期约30天
	assert.WithinDuration(t, time.Now().Add(meta.ExportRetention), exp.ExpiresAt, time.Minute)

	// 审计留痕
	var auditCount int64
	tdb.DB.Model(&models.AuditLog{}).Where("action = ?", "export.created").Count(&auditCount)
	assert.Equal(t, int64(1), auditCount)
}

func TestDownload_ExpiredRejected(t *testing.T) {
	service, _, factory := newTestService(t)

	project := factory.CreateProject()
	job := factory.CreateJob(project.ID, func(j *models.ProcessingJob) {
		j.Status = meta.JobStatusCompleted
	})
	exp := factory.CreateExport(job.ID, func(e *models.Export) {
		e.ExpiresAt = time.Now().Add(-time.Hour)
	})

	_, _, err := service.Download(exp.ID)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, meta.ErrNotEligible))
}

func TestDownload_Success(t *testing.T) {
	service, _, factory := newTestService(t)

	project := factory.CreateProject()
	source := factory.CreateSource(project.ID)
	job := factory.CreateJob(project.ID, func(j *models.ProcessingJob) {
		j.Status = meta.JobStatusCompleted
	})
	factory.CreateProcessedRecord(job.ID, source.ID, models.JSONB{"content": "可下载的记录内容"})

	exp, err := service.CreateExport(job.ID, meta.ExportFormatRaw, nil, "user-1")
	assert.NoError(t, err)

	got, file, err := service.Download(exp.ID)
	assert.NoError(t, err)
	defer file.Close()
	assert.Equal(t, "application/json", got.ContentType())
}

func TestDeleteExpired(t *testing.T) {
	service, tdb, factory := newTestService(t)

	project := factory.CreateProject()
	job := factory.CreateJob(project.ID, func(j *models.ProcessingJob) {
		j.Status = meta.JobStatusCompleted
	})

	// 一条过期、一条有效
	expiredFile, err := os.CreateTemp(t.TempDir(), "expired-*.jsonl")
	assert.NoError(t, err)
	expiredFile.Close()

	factory.CreateExport(job.ID, func(e *models.Export) {
		e.FilePath = expiredFile.Name()
		e.ExpiresAt = time.Now().Add(-time.Hour)
	})
	factory.CreateExport(job.ID)

	deleted, err := service.DeleteExpired(time.Now())
	assert.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.NoFileExists(t, expiredFile.Name())

	var remaining int64
	tdb.DB.Model(&models.Export{}).Count(&remaining)
	assert.Equal(t, int64(1), remaining)
}
