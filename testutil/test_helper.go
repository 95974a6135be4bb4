/*
 * @module testutil/test_helper
 * @description 测试工具和辅助函数
 * @architecture 测试基础设施 - 提供测试通用工具和数据工厂
 * @documentReference .specify/memory/test_plan.md
 * @stateFlow 测试环境初始化 -> 测试数据创建 -> 测试执行 -> 清理资源
 * @rules 提供可重用的测试工具，确保测试环境的一致性
 * @dependencies gorm, sqlite, time
 * @refs service/models
 */

package testutil

import (
	"fmt"
	"time"

	"foundry-service/service/meta"
	"foundry-service/service/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB 测试数据库配置
type TestDB struct {
	DB *gorm.DB
}

// NewTestDB 创建测试数据库
func NewTestDB() *TestDB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect test database: %v", err))
	}

	// 自动迁移所有模型
	err = db.AutoMigrate(
		&models.Project{},
		&models.Source{},
		&models.SourceMapping{},
		&models.ProcessingJob{},
		&models.ProcessedRecord{},
		&models.Export{},
		&models.AuditLog{},
	)
	if err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}

	return &TestDB{DB: db}
}

// CleanDB 清理数据库
func (tdb *TestDB) CleanDB() {
	// 清空所有表的数据
	tables := []string{
		"projects",
		"sources",
		"source_mappings",
		"processing_jobs",
		"processed_records",
		"exports",
		"audit_logs",
	}

	for _, table := range tables {
		tdb.DB.Exec(fmt.Sprintf("DELETE FROM %s", table))
	}
}

// Close 关闭数据库连接
func (tdb *TestDB) Close() {
	if db, err := tdb.DB.DB(); err == nil {
		db.Close()
	}
}

// TestDataFactory 测试数据工厂
type TestDataFactory struct {
	DB *gorm.DB
}

// NewTestDataFactory 创建测试数据工厂
func NewTestDataFactory(db *gorm.DB) *TestDataFactory {
	return &TestDataFactory{DB: db}
}

// ProjectOption 项目选项函数类型
type ProjectOption func(*models.Project)

// CreateProject 创建测试项目
func (f *TestDataFactory) CreateProject(opts ...ProjectOption) *models.Project {
	project := &models.Project{
		ID:             generateID(),
		OrganizationID: generateID(),
		Name:           "测试项目_" + generateSuffix(),
		Description:    "这是一个测试项目",
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	// 应用选项
	for _, opt := range opts {
		opt(project)
	}

	err := f.DB.Create(project).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test project: %v", err))
	}

	return project
}

// SourceOption 数据源选项函数类型
type SourceOption func(*models.Source)

// CreateSource 创建测试数据源
func (f *TestDataFactory) CreateSource(projectID string, opts ...SourceOption) *models.Source {
	source := &models.Source{
		ID:        generateID(),
		ProjectID: projectID,
		Name:      "测试数据源_" + generateSuffix(),
		Type:      meta.SourceTypeFile,
		MimeType:  "text/csv",
		Config:    models.JSONB{},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	// 应用选项
	for _, opt := range opts {
		opt(source)
	}

	err := f.DB.Create(source).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test source: %v", err))
	}

	return source
}

// MappingOption 字段映射选项函数类型
type MappingOption func(*models.SourceMapping)

// CreateMapping 创建测试字段映射
func (f *TestDataFactory) CreateMapping(sourceID, sourceField, targetField string, opts ...MappingOption) *models.SourceMapping {
	mapping := &models.SourceMapping{
		ID:          generateID(),
		SourceID:    sourceID,
		SourceField: sourceField,
		TargetField: targetField,
		Confidence:  meta.ConfidenceHigh,
		CreatedAt:   time.Now(),
	}

	// 应用选项
	for _, opt := range opts {
		opt(mapping)
	}

	err := f.DB.Create(mapping).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test mapping: %v", err))
	}

	return mapping
}

// JobOption 处理任务选项函数类型
type JobOption func(*models.ProcessingJob)

// CreateJob 创建测试处理任务
func (f *TestDataFactory) CreateJob(projectID string, opts ...JobOption) *models.ProcessingJob {
	job := &models.ProcessingJob{
		ID:        generateID(),
		ProjectID: projectID,
		Status:    meta.JobStatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	// 应用选项
	for _, opt := range opts {
		opt(job)
	}

	err := f.DB.Create(job).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test job: %v", err))
	}

	return job
}

// CreateProcessedRecord 创建测试处理结果记录
func (f *TestDataFactory) CreateProcessedRecord(jobID, sourceID string, data models.JSONB) *models.ProcessedRecord {
	record := &models.ProcessedRecord{
		ID:            generateID(),
		JobID:         jobID,
		SourceID:      sourceID,
		OriginalData:  data,
		ProcessedData: data,
		CreatedAt:     time.Now(),
	}

	err := f.DB.Create(record).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test processed record: %v", err))
	}

	return record
}

// ExportOption 导出选项函数类型
type ExportOption func(*models.Export)

// CreateExport 创建测试导出记录
func (f *TestDataFactory) CreateExport(jobID string, opts ...ExportOption) *models.Export {
	export := &models.Export{
		ID:          generateID(),
		JobID:       jobID,
		Format:      meta.ExportFormatQA,
		FilePath:    "/tmp/export_" + generateSuffix() + ".jsonl",
		RecordCount: 1,
		ExpiresAt:   time.Now().Add(meta.ExportRetention),
		CreatedAt:   time.Now(),
	}

	// 应用选项
	for _, opt := range opts {
		opt(export)
	}

	err := f.DB.Create(export).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test export: %v", err))
	}

	return export
}

func generateID() string {
	return uuid.New().String()
}

func generateSuffix() string {
	return uuid.New().String()[:8]
}
