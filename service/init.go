/*
 * @module service/init
 * @description 服务初始化模块，负责数据库连接、迁移与全局服务装配
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

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/demetrio-freitas/pim-sub000/service/cleanup"
	"github.com/demetrio-freitas/pim-sub000/service/config"
	"github.com/demetrio-freitas/pim-sub000/service/database"
	"github.com/demetrio-freitas/pim-sub000/service/distributed_lock"
	"github.com/demetrio-freitas/pim-sub000/service/quality"
)

var (
	DB                      *gorm.DB
	GlobalConfigService     *config.ConfigService
	GlobalQualityEngine     *quality.Engine
	GlobalRuleStore         *quality.GormRuleStore
	GlobalProductProvider   *quality.GormProductProvider
	GlobalTaskScheduler     *quality.TaskScheduler
	GlobalLogCleanupService *cleanup.LogCleanupService
	GlobalRedisLock         *distributed_lock.RedisLock
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
		host := getEnvWithDefault("DB_HOST", "localhost")
		port := getEnvWithDefault("DB_PORT", "5432")
		user := getEnvWithDefault("DB_USER", "postgres")
		password := getEnvWithDefault("DB_PASSWORD", "postgres")
		dbname := getEnvWithDefault("DB_NAME", "pim")
		sslmode := getEnvWithDefault("DB_SSLMODE", "disable")
		schema := getEnvWithDefault("DB_SCHEMA", "public")

		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s TimeZone=Asia/Shanghai",
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
	log.Println("数据库表结构迁移完成")

	if err := database.InitializeData(DB); err != nil {
		log.Fatalf("基础数据初始化失败: %v", err)
	}
	log.Println("基础数据初始化完成")
}

// initServices 初始化服务
func initServices() {
	GlobalConfigService = config.NewConfigService(DB)

	GlobalRuleStore = quality.NewGormRuleStore(DB)
	GlobalProductProvider = quality.NewGormProductProvider(DB)

	engineConfig := quality.EngineConfig{
		ErrorPenalty:     GlobalConfigService.GetErrorPenalty(),
		WarningPenalty:   GlobalConfigService.GetWarningPenalty(),
		EvaluatorTimeout: GlobalConfigService.GetEvaluatorTimeout(),
	}
	GlobalQualityEngine = quality.NewEngine(engineConfig, GlobalRuleStore, GlobalProductProvider)
	GlobalQualityEngine.SetUniquenessChecker(quality.NewGormUniquenessChecker(DB))
	GlobalQualityEngine.SetCustomExecutor(quality.NewYaegiRuleExecutor())
	GlobalQualityEngine.SetLogWriter(quality.NewValidationLogWriter(DB))

	GlobalTaskScheduler = quality.NewTaskScheduler(DB, GlobalQualityEngine, GlobalProductProvider)
	GlobalLogCleanupService = cleanup.NewLogCleanupService(DB, GlobalConfigService)

	// Redis 可选：多实例部署时启用分布式锁
	if os.Getenv("REDIS_HOST") != "" {
		redisLock, err := distributed_lock.NewRedisLock()
		if err != nil {
			log.Printf("Redis分布式锁初始化失败，降级为单实例模式: %v", err)
		} else {
			GlobalRedisLock = redisLock
			GlobalTaskScheduler.SetDistributedLock(redisLock)
			GlobalLogCleanupService.SetDistributedLock(redisLock)
		}
	}

	if err := GlobalTaskScheduler.StartScheduler(); err != nil {
		log.Printf("启动质量评估任务调度器失败: %v", err)
	}

	if err := GlobalLogCleanupService.StartScheduledCleanup(); err != nil {
		log.Printf("启动日志清理调度器失败: %v", err)
	}

	log.Println("服务初始化完成")
}
