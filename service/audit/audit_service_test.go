/*
 * @module service/audit/audit_service_test
 * @description 审计日志服务的单元测试
 * @architecture 单元测试
 * @documentReference ai_docs/processing_pipeline_req.md
 * @stateFlow 写入审计 -> 条件查询 -> 结果验证
 * @rules 覆盖组织隔离、条件过滤与分页
 * @dependencies testing, github.com/stretchr/testify/assert, testutil
 * @refs audit_service.go
 */

package audit

import (
	"testing"

	"foundry-service/service/models"
	"foundry-service/testutil"

	"github.com/stretchr/testify/assert"
)

func newTestService(t *testing.T) *Service {
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)
	return NewService(tdb.DB)
}

func TestLogAndList(t *testing.T) {
	service := newTestService(t)

	service.Log(Entry{
		Action:         "job.started",
		ResourceType:   "processing_job",
		ResourceID:     "job-1",
		UserID:         "user-1",
		OrganizationID: "org-1",
		Details:        models.JSONB{"project_id": "proj-1"},
	})
	service.Log(Entry{
		Action:         "export.created",
		ResourceType:   "export",
		ResourceID:     "exp-1",
		UserID:         "user-2",
		OrganizationID: "org-1",
	})
	service.Log(Entry{
		Action:         "job.started",
		ResourceType:   "processing_job",
		ResourceID:     "job-2",
		UserID:         "user-1",
		OrganizationID: "org-2",
	})

	// 查询按组织隔离
	logs, total, err := service.List("org-1", ListOptions{})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, logs, 2)

	// 未传Details时落库为空对象
	for _, log := range logs {
		assert.NotNil(t, log.Details)
	}
}

func TestList_Filters(t *testing.T) {
	service := newTestService(t)

	service.Log(Entry{Action: "job.started", ResourceType: "processing_job", UserID: "user-1", OrganizationID: "org-1"})
	service.Log(Entry{Action: "job.cancelled", ResourceType: "processing_job", UserID: "user-2", OrganizationID: "org-1"})
	service.Log(Entry{Action: "export.created", ResourceType: "export", UserID: "user-1", OrganizationID: "org-1"})

	logs, total, err := service.List("org-1", ListOptions{Action: "job.started"})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "job.started", logs[0].Action)

	_, total, err = service.List("org-1", ListOptions{UserID: "user-1"})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, total, err = service.List("org-1", ListOptions{ResourceType: "export"})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestList_Pagination(t *testing.T) {
	service := newTestService(t)

	for i := 0; i < 5; i++ {
		service.Log(Entry{Action: "job.started", ResourceType: "processing_job", OrganizationID: "org-1"})
	}

	logs, total, err := service.List("org-1", ListOptions{Page: 1, Size: 3})
	assert.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, logs, 3)

	logs, _, err = service.List("org-1", ListOptions{Page: 2, Size: 3})
	assert.NoError(t, err)
	assert.Len(t, logs, 2)
}
