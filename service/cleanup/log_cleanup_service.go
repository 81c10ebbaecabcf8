/*
 * @module service/cleanup/log_cleanup_service
 * @description 日志清理服务，负责定期清理过期的质量验证日志与任务执行记录
 * @architecture 分层架构 - 业务服务层
 * @dependencies gorm.io/gorm, github.com/robfig/cron/v3, service/config
 * @stateFlow 定时触发 -> 读取保留天数 -> 执行清理 -> 记录结果
 * @rules 清理带分布式锁保护，多实例下同一时刻只有一个实例执行
 * @documentReference dev_docs/quality_engine_req.md
 * @refs service/config/config_service.go, service/distributed_lock/redis_lock.go
 */

package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/demetrio-freitas/pim-sub000/service/config"
	"github.com/demetrio-freitas/pim-sub000/service/distributed_lock"
	"github.com/demetrio-freitas/pim-sub000/service/models"
)

// LogCleanupService 日志清理服务
type LogCleanupService struct {
	db            *gorm.DB
	configService *config.ConfigService
	lockExecutor  *distributed_lock.LockExecutor
	cron          *cron.Cron
	ctx           context.Context
	cancel        context.CancelFunc
	started       bool
}

// NewLogCleanupService 创建日志清理服务实例
func NewLogCleanupService(db *gorm.DB, configService *config.ConfigService) *LogCleanupService {
	ctx, cancel := context.WithCancel(context.Background())

	return &LogCleanupService{
		db:            db,
		configService: configService,
		cron:          cron.New(cron.WithSeconds()),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// SetDistributedLock 设置分布式锁，多实例部署时防止重复清理
func (s *LogCleanupService) SetDistributedLock(lock distributed_lock.DistributedLock) {
	if lock != nil {
		s.lockExecutor = distributed_lock.NewLockExecutor(lock)
	}
}

// CleanupExpiredLogs 清理所有过期日志
func (s *LogCleanupService) CleanupExpiredLogs(ctx context.Context) error {
	slog.Info("开始清理过期质量日志")
	startTime := time.Now()

	retentionDays := s.configService.GetLogRetentionDays()

	logDeleted, err := s.CleanupValidationLogs(ctx, retentionDays)
	if err != nil {
		slog.Error("清理质量验证日志失败", "error", err)
	} else {
		slog.Info("清理质量验证日志完成", "deleted_count", logDeleted, "retention_days", retentionDays)
	}

	execDeleted, err := s.CleanupTaskExecutions(ctx, retentionDays)
	if err != nil {
		slog.Error("清理任务执行记录失败", "error", err)
	} else {
		slog.Info("清理任务执行记录完成", "deleted_count", execDeleted, "retention_days", retentionDays)
	}

	slog.Info("质量日志清理完成",
		"validation_logs_deleted", logDeleted,
		"task_executions_deleted", execDeleted,
		"duration_ms", time.Since(startTime).Milliseconds())

	return nil
}

// CleanupValidationLogs 清理过期的质量验证日志
func (s *LogCleanupService) CleanupValidationLogs(ctx context.Context, retentionDays int) (int64, error) {
	cutoffDate := time.Now().AddDate(0, 0, -retentionDays)

	result := s.db.WithContext(ctx).
		Where("evaluated_at < ?", cutoffDate).
		Delete(&models.QualityValidationLog{})
	if result.Error != nil {
		return 0, fmt.Errorf("删除质量验证日志失败: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// CleanupTaskExecutions 清理过期的任务执行记录
func (s *LogCleanupService) CleanupTaskExecutions(ctx context.Context, retentionDays int) (int64, error) {
	cutoffDate := time.Now().AddDate(0, 0, -retentionDays)

	result := s.db.WithContext(ctx).
		Where("created_at < ? AND status <> ?", cutoffDate, "running").
		Delete(&models.QualityTaskExecution{})
	if result.Error != nil {
		return 0, fmt.Errorf("删除任务执行记录失败: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// StartScheduledCleanup 启动定时清理任务
func (s *LogCleanupService) StartScheduledCleanup() error {
	if s.started {
		return fmt.Errorf("日志清理调度器已经启动")
	}

	slog.Info("启动质量日志清理调度器")

	// 每天凌晨2点执行清理任务
	// Cron表达式：秒 分 时 日 月 周
	_, err := s.cron.AddFunc("0 0 2 * * *", func() {
		s.runCleanup()
	})
	if err != nil {
		return fmt.Errorf("添加定时任务失败: %w", err)
	}

	s.cron.Start()
	s.started = true

	slog.Info("质量日志清理调度器启动成功，将于每天凌晨2点执行清理任务")
	return nil
}

// runCleanup 在锁保护下执行一次清理
func (s *LogCleanupService) runCleanup() {
	cleanup := func() error {
		return s.CleanupExpiredLogs(s.ctx)
	}

	if s.lockExecutor != nil {
		if err := s.lockExecutor.ExecuteWithLock(s.ctx, "log_cleanup", 10*time.Minute, cleanup); err != nil {
			slog.Error("定时日志清理任务失败", "error", err)
		}
		return
	}

	if err := cleanup(); err != nil {
		slog.Error("定时日志清理任务失败", "error", err)
	}
}

// StopScheduledCleanup 停止定时清理任务
func (s *LogCleanupService) StopScheduledCleanup() {
	if !s.started {
		return
	}

	slog.Info("停止质量日志清理调度器")

	s.cancel()

	if s.cron != nil {
		s.cron.Stop()
	}

	s.started = false
}
