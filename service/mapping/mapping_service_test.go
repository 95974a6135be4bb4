/*
 * @module service/mapping/mapping_service_test
 * @description 字段映射服务的单元测试
 * @architecture 单元测试 - 使用内存数据库验证映射保存与预览
 * @documentReference ai_docs/mapping_detection_req.md
 * @stateFlow 测试数据准备 -> 服务调用 -> 结果验证
 * @rules 覆盖整体替换、自动识别持久化、映射预览与记录转换
 * @dependencies testing, github.com/stretchr/testify/assert, testutil
 * @refs mapping_service.go
 */

package mapping

import (
	"errors"
	"testing"

	"foundry-service/service/audit"
	"foundry-service/service/meta"
	"foundry-service/service/models"
	"foundry-service/testutil"

	"github.com/stretchr/testify/assert"
)

func newTestService(t *testing.T) (*Service, *testutil.TestDB, *testutil.TestDataFactory) {
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)
	return NewService(tdb.DB, audit.NewService(tdb.DB)), tdb, testutil.NewTestDataFactory(tdb.DB)
}

func TestUpdateMappings_ReplacesExisting(t *testing.T) {
	service, _, factory := newTestService(t)

	project := factory.CreateProject()
	source := factory.CreateSource(project.ID)
	factory.CreateMapping(source.ID, "old_field", "content")

	mappings, err := service.UpdateMappings(source.ID, []MappingInput{
		{SourceField: "Message Body", TargetField: "content"},
		{SourceField: "Customer Email", TargetField: "email", IsPii: true},
	}, "user-1", "org-1")
	assert.NoError(t, err)
	assert.Len(t, mappings, 2)

	// 旧映射被整体替换
	for _, m := range mappings {
		assert.NotEqual(t, "old_field", m.SourceField)
		assert.Equal(t, meta.ConfidenceHigh, m.Confidence)
	}
}

func TestUpdateMappings_InvalidTargetRejected(t *testing.T) {
	service, tdb, factory := newTestService(t)

	project := factory.CreateProject()
	source := factory.CreateSource(project.ID)
	factory.CreateMapping(source.ID, "keep_me", "content")

	_, err := service.UpdateMappings(source.ID, []MappingInput{
		{SourceField: "f", TargetField: "not_a_field"},
	}, "user-1", "org-1")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, meta.ErrValidation))

	// 校验失败时旧映射保持不变
	var count int64
	tdb.DB.Model(&models.SourceMapping{}).Where("source_id = ?", source.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUpdateMappings_SourceNotFound(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.UpdateMappings("missing-id", nil, "user-1", "org-1")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, meta.ErrNotFound))
}

func TestAutoDetectService_PersistsMappings(t *testing.T) {
	service, tdb, factory := newTestService(t)

	project := factory.CreateProject()
	source := factory.CreateSource(project.ID, func(s *models.Source) {
		s.RawSchema = models.RawSchema{
			{Name: "Customer Email", Type: "string"},
			{Name: "Message Body", Type: "string"},
		}
	})

	detected, err := service.AutoDetect(source.ID, "user-1", "org-1")
	assert.NoError(t, err)
	assert.Len(t, detected, 2)

	var saved []models.SourceMapping
	assert.NoError(t, tdb.DB.Where("source_id = ?", source.ID).Order("source_field").Find(&saved).Error)
	assert.Len(t, saved, 2)
	assert.Equal(t, "email", saved[0].TargetField)
	assert.True(t, saved[0].IsPii)
	assert.Equal(t, "content", saved[1].TargetField)
}

func TestAutoDetectService_EmptySchema(t *testing.T) {
	service, _, factory := newTestService(t)

	project := factory.CreateProject()
	source := factory.CreateSource(project.ID)

	detected, err := service.AutoDetect(source.ID, "user-1", "org-1")
	assert.NoError(t, err)
	assert.Empty(t, detected)
}

func TestGetPreview_RendersMappedSamples(t *testing.T) {
	service, _, factory := newTestService(t)

	project := factory.CreateProject()
	source := factory.CreateSource(project.ID, func(s *models.Source) {
		s.RawSchema = models.RawSchema{
			{Name: "Message Body", Type: "string", Sample: []interface{}{"hello", "world"}},
			{Name: "internal_id", Type: "string", Sample: []interface{}{"a", "b"}},
		}
	})
	factory.CreateMapping(source.ID, "Message Body", "content")
	factory.CreateMapping(source.ID, "internal_id", meta.TargetFieldIgnore)

	preview, err := service.GetPreview(source.ID)
	assert.NoError(t, err)
	assert.Len(t, preview.Mappings, 2)
	assert.Len(t, preview.Preview, 2)
	assert.Equal(t, "hello", preview.Preview[0]["content"])
}

func TestApplyMappings(t *testing.T) {
	mappings := []models.SourceMapping{
		{SourceField: "Message Body", TargetField: "content"},
		{SourceField: "internal_id", TargetField: meta.TargetFieldIgnore},
		{SourceField: "missing", TargetField: "email"},
	}

	mapped := ApplyMappings(map[string]interface{}{
		"Message Body": "hello",
		"internal_id":  "x-1",
		"unmapped":     "dropped",
	}, mappings)

	assert.Equal(t, map[string]interface{}{"content": "hello"}, mapped)
}
