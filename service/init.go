/*
 * @module service/init
 * @description 服务初始化模块，负责数据库连接、迁移与各业务服务的装配
 * @architecture 分层架构 - 服务层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 应用启动时执行初始化流程
 * @rules 确保所有依赖服务正常启动后才提供API服务
 * @dependencies gorm.io/gorm, gorm.io/driver/postgres
 * @refs dev_docs/model.md
 */

package service

import (
	"fmt"
	"log"
	"os"

	"foundry-service/service/audit"
	"foundry-service/service/cleanup"
	"foundry-service/service/connector"
	"foundry-service/service/database"
	"foundry-service/service/distributed_lock"
	"foundry-service/service/export"
	"foundry-service/service/mapping"
	"foundry-service/service/processing"
	"foundry-service/service/source"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	DB                         *gorm.DB
	GlobalConnectorRegistry    *connector.Registry
	GlobalAuditService         *audit.Service
	GlobalSourceService        *source.Service
	GlobalMappingService       *mapping.Service
	GlobalProcessingService    *processing.Service
	GlobalExportService        *export.Service
	GlobalExportCleanupService *cleanup.ExportCleanupService
	GlobalProjectLock          *distributed_lock.RedisLock
)

func init() {
	initDatabase()
	runMigrations()
	initServices()
}

// initDatabase 初始化数据库连接
func initDatabase() {
	var dsn string

	// 优先使用DATABASE_URL环境变量
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		dsn = databaseURL
	} else {
		// 使用分离的环境变量构建连接字符串
		host := getEnvWithDefault("DB_HOST", "localhost")
		port := getEnvWithDefault("DB_PORT", "5432")
		user := getEnvWithDefault("DB_USER", "postgres")
		password := getEnvWithDefault("DB_PASSWORD", "postgres")
		dbname := getEnvWithDefault("DB_NAME", "foundry")
		sslmode := getEnvWithDefault("DB_SSLMODE", "disable")
		schema := getEnvWithDefault("DB_SCHEMA", "public")

		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s",
			host, port, user, password, dbname, sslmode, schema)
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	log.Println("数据库连接成功")
}

// getEnvWithDefault 获取环境变量，如果不存在则返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// runMigrations 运行数据库迁移
func runMigrations() {
	log.Println("开始运行数据库迁移...")

	if err := database.AutoMigrate(DB); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}

	log.Println("所有数据库迁移任务完成")
}

// initServices 初始化服务
func initServices() {
	GlobalConnectorRegistry = connector.NewRegistry()
	GlobalAuditService = audit.NewService(DB)
	GlobalSourceService = source.NewService(DB, GlobalConnectorRegistry)
	GlobalMappingService = mapping.NewService(DB, GlobalAuditService)

	// 配置了Redis时启用跨实例的项目任务互斥锁
	var jobLock distributed_lock.DistributedLock
	if os.Getenv("REDIS_HOST") != "" {
		lock, err := distributed_lock.NewRedisLock()
		if err != nil {
			log.Printf("Redis分布式锁初始化失败，降级为单实例模式: %v", err)
		} else {
			GlobalProjectLock = lock
			jobLock = lock
		}
	}

	GlobalProcessingService = processing.NewService(DB, GlobalConnectorRegistry, GlobalAuditService, jobLock)
	GlobalExportService = export.NewService(DB, GlobalAuditService)

	GlobalExportCleanupService = cleanup.NewExportCleanupService(GlobalExportService)
	if err := GlobalExportCleanupService.StartScheduledCleanup(); err != nil {
		log.Printf("启动导出清理调度器失败: %v", err)
	}

	log.Println("服务初始化完成")
}
