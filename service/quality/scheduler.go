/*
 * @module service/quality/scheduler
 * @description 质量评估任务调度器，负责调度任务的定时触发与批量执行
 * @architecture 分层架构 - 服务层
 * @documentReference dev_docs/quality_engine_req.md
 * @stateFlow 启动调度器 -> 加载任务 -> 定时检查 -> 触发批量评估 -> 记录执行结果
 * @rules 支持cron、interval、once、manual四种调度类型，支持分布式锁
 * @dependencies github.com/robfig/cron/v3, service/distributed_lock
 * @refs engine.go, batch.go, service/models/quality_report.go
 */

package quality

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/demetrio-freitas/pim-sub000/service/distributed_lock"
	"github.com/demetrio-freitas/pim-sub000/service/models"
)

// TaskScheduler 质量评估任务调度器
type TaskScheduler struct {
	db               *gorm.DB
	engine           *Engine
	provider         *GormProductProvider
	cron             *cron.Cron
	intervalTicker   *time.Ticker
	ctx              context.Context
	cancel           context.CancelFunc
	schedulerStarted bool
	distributedLock  distributed_lock.DistributedLock
}

// NewTaskScheduler 创建质量评估任务调度器
func NewTaskScheduler(db *gorm.DB, engine *Engine, provider *GormProductProvider) *TaskScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	c := cron.New(cron.WithSeconds())

	return &TaskScheduler{
		db:       db,
		engine:   engine,
		provider: provider,
		cron:     c,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// SetDistributedLock 设置分布式锁
func (ts *TaskScheduler) SetDistributedLock(lock distributed_lock.DistributedLock) {
	ts.distributedLock = lock
	if lock != nil {
		slog.Info("质量评估任务调度器已启用分布式锁")
	}
}

// StartScheduler 启动调度器
func (ts *TaskScheduler) StartScheduler() error {
	if ts.schedulerStarted {
		return fmt.Errorf("调度器已经启动")
	}

	slog.Info("启动质量评估任务调度器")

	ts.cron.Start()

	// 间隔任务检查器每分钟检查一次
	ts.intervalTicker = time.NewTicker(1 * time.Minute)
	go ts.runIntervalChecker()

	if err := ts.loadScheduledTasks(); err != nil {
		slog.Error("加载质量评估调度任务失败", "error", err)
		return err
	}

	ts.schedulerStarted = true
	slog.Info("质量评估任务调度器启动完成")
	return nil
}

// StopScheduler 停止调度器
func (ts *TaskScheduler) StopScheduler() {
	if !ts.schedulerStarted {
		return
	}

	slog.Info("停止质量评估任务调度器")

	ts.cancel()

	if ts.cron != nil {
		ts.cron.Stop()
	}

	if ts.intervalTicker != nil {
		ts.intervalTicker.Stop()
	}

	ts.schedulerStarted = false
	slog.Info("质量评估任务调度器已停止")
}

// loadScheduledTasks 加载调度任务
func (ts *TaskScheduler) loadScheduledTasks() error {
	var tasks []models.QualityEvaluationTask
	err := ts.db.Where("is_enabled = ? AND schedule_type IN (?, ?, ?)",
		true, "cron", "interval", "once").
		Find(&tasks).Error
	if err != nil {
		return fmt.Errorf("获取调度任务失败: %w", err)
	}

	slog.Info("找到质量评估调度任务", "count", len(tasks))

	successCount := 0
	failedCount := 0
	for i := range tasks {
		if err := ts.addTaskToScheduler(&tasks[i]); err != nil {
			slog.Error("添加任务到调度器失败", "task_id", tasks[i].ID, "error", err)
			failedCount++
		} else {
			successCount++
		}
	}

	slog.Info("质量评估调度任务加载完成", "total", len(tasks), "success", successCount, "failed", failedCount)
	return nil
}

// addTaskToScheduler 添加任务到调度器
func (ts *TaskScheduler) addTaskToScheduler(task *models.QualityEvaluationTask) error {
	switch task.ScheduleType {
	case "cron":
		if task.CronExpression == "" {
			return fmt.Errorf("Cron任务缺少表达式")
		}

		taskID := task.ID
		_, err := ts.cron.AddFunc(task.CronExpression, func() {
			ts.executeScheduledTask(taskID, "scheduled")
		})
		if err != nil {
			slog.Error("添加Cron任务失败",
				"task_id", task.ID,
				"cron_expression", task.CronExpression,
				"error", err,
				"help", "Cron表达式需要6个字段（秒 分 时 日 月 周），例如：0 */5 * * * *（每5分钟）")
			return fmt.Errorf("添加Cron任务失败: %w", err)
		}

		slog.Info("添加Cron任务成功", "task_id", task.ID, "cron_expression", task.CronExpression)

	case "once":
		if task.ScheduledTime != nil && task.ScheduledTime.After(time.Now()) {
			taskID := task.ID
			waitDuration := time.Until(*task.ScheduledTime)

			go func() {
				timer := time.NewTimer(waitDuration)
				defer timer.Stop()

				select {
				case <-timer.C:
					ts.executeScheduledTask(taskID, "scheduled")
				case <-ts.ctx.Done():
					slog.Warn("单次任务被取消（调度器关闭）", "task_id", taskID)
					return
				}
			}()

			slog.Info("添加单次任务成功", "task_id", task.ID, "wait_duration", waitDuration)
		} else {
			slog.Warn("单次任务缺少执行时间或已过期", "task_id", task.ID)
		}

	case "interval":
		if task.IntervalSeconds <= 0 {
			return fmt.Errorf("间隔任务的间隔时间必须大于0")
		}
		slog.Info("添加间隔任务成功", "task_id", task.ID, "interval_seconds", task.IntervalSeconds)
	}

	return nil
}

// runIntervalChecker 运行间隔任务检查器
func (ts *TaskScheduler) runIntervalChecker() {
	for {
		select {
		case <-ts.intervalTicker.C:
			ts.checkIntervalTasks()
		case <-ts.ctx.Done():
			return
		}
	}
}

// checkIntervalTasks 检查间隔任务
func (ts *TaskScheduler) checkIntervalTasks() {
	var tasks []models.QualityEvaluationTask
	now := time.Now()

	err := ts.db.Where("is_enabled = ? AND schedule_type = ? AND (next_execution IS NULL OR next_execution <= ?)",
		true, "interval", now).
		Find(&tasks).Error
	if err != nil {
		slog.Error("获取质量评估间隔任务失败", "error", err)
		return
	}

	for _, task := range tasks {
		slog.Info("间隔任务达到执行时间，准备执行", "task_id", task.ID, "name", task.Name)
		go ts.executeScheduledTask(task.ID, "scheduled")
	}
}

// TriggerTask 手动触发任务执行
func (ts *TaskScheduler) TriggerTask(taskID string) {
	go ts.executeScheduledTask(taskID, "manual")
}

// executeScheduledTask 执行调度任务（带分布式锁）
func (ts *TaskScheduler) executeScheduledTask(taskID, triggerSource string) {
	slog.Info("执行质量评估调度任务", "task_id", taskID, "trigger_source", triggerSource)

	// 如果有分布式锁，使用锁保护执行
	if ts.distributedLock != nil {
		lockKey := fmt.Sprintf("quality_task:%s", taskID)
		lockTTL := 30 * time.Minute

		locked, err := ts.distributedLock.TryLock(ts.ctx, lockKey, lockTTL)
		if err != nil {
			slog.Error("获取分布式锁失败", "task_id", taskID, "error", err)
			return
		}

		if !locked {
			slog.Warn("任务正在其他实例执行，跳过", "task_id", taskID)
			return
		}

		defer func() {
			if unlockErr := ts.distributedLock.Unlock(ts.ctx, lockKey); unlockErr != nil {
				slog.Error("释放分布式锁失败", "task_id", taskID, "error", unlockErr)
			}
		}()
	}

	var task models.QualityEvaluationTask
	if err := ts.db.First(&task, "id = ?", taskID).Error; err != nil {
		slog.Error("获取质量评估任务失败", "task_id", taskID, "error", err)
		return
	}

	if !task.IsEnabled && triggerSource != "manual" {
		slog.Warn("任务已禁用，跳过执行", "task_id", taskID)
		return
	}

	execution := &models.QualityTaskExecution{
		TaskID:        taskID,
		TriggerSource: triggerSource,
		StartTime:     time.Now(),
		Status:        "running",
	}
	if err := RecordTaskExecution(ts.ctx, ts.db, execution); err != nil {
		slog.Error("创建任务执行记录失败", "task_id", taskID, "error", err)
		return
	}

	ts.runTask(&task, execution)

	if err := ts.updateTaskAfterExecution(taskID); err != nil {
		slog.Error("更新任务执行状态失败", "task_id", taskID, "error", err)
	}
}

// runTask 执行批量评估并回写执行记录
func (ts *TaskScheduler) runTask(task *models.QualityEvaluationTask, execution *models.QualityTaskExecution) {
	scope := RuleScope{
		CategoryID: task.CategoryID,
		FamilyID:   task.FamilyID,
		ChannelID:  task.ChannelID,
	}

	finish := func(status string, total, failed int, avgScore float64, errMsg string) {
		now := time.Now()
		updates := map[string]interface{}{
			"status":          status,
			"end_time":        now,
			"duration":        now.Sub(execution.StartTime).Milliseconds(),
			"total_products":  total,
			"failed_products": failed,
			"average_score":   avgScore,
			"error_message":   errMsg,
		}
		if err := ts.db.Model(&models.QualityTaskExecution{}).
			Where("id = ?", execution.ID).Updates(updates).Error; err != nil {
			slog.Error("回写任务执行记录失败", "execution_id", execution.ID, "error", err)
		}
	}

	productIDs, err := ts.provider.ListProductIDs(ts.ctx, scope)
	if err != nil {
		finish("failed", 0, 0, 0, err.Error())
		return
	}

	concurrency := task.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	items, err := ts.engine.EvaluateBatch(ts.ctx, productIDs, concurrency)
	if err != nil {
		finish("failed", len(productIDs), 0, 0, err.Error())
		return
	}

	failedCount := 0
	scoreSum := 0
	scoredCount := 0
	for item := range items {
		if item.Err != nil {
			failedCount++
			slog.Warn("商品评估失败", "task_id", task.ID, "product_id", item.ProductID, "error", item.Err)
			continue
		}
		scoreSum += item.Report.OverallScore
		scoredCount++
	}

	avgScore := 0.0
	if scoredCount > 0 {
		avgScore = float64(scoreSum) / float64(scoredCount)
	}

	finish("completed", len(productIDs), failedCount, avgScore, "")
	slog.Info("质量评估调度任务完成",
		"task_id", task.ID,
		"total", len(productIDs),
		"failed", failedCount,
		"average_score", avgScore)
}

// updateTaskAfterExecution 更新任务的执行统计与下次执行时间
func (ts *TaskScheduler) updateTaskAfterExecution(taskID string) error {
	var task models.QualityEvaluationTask
	if err := ts.db.Where("id = ?", taskID).First(&task).Error; err != nil {
		return fmt.Errorf("获取任务失败: %w", err)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"last_executed":   now,
		"execution_count": gorm.Expr("execution_count + 1"),
		"updated_at":      now,
	}

	nextExec, err := CalculateNextExecution(&task, now)
	if err != nil {
		slog.Warn("计算下次执行时间失败", "task_id", taskID, "error", err)
	} else {
		updates["next_execution"] = nextExec
	}

	if err := ts.db.Model(&models.QualityEvaluationTask{}).Where("id = ?", taskID).Updates(updates).Error; err != nil {
		return fmt.Errorf("更新任务执行时间失败: %w", err)
	}
	return nil
}

// CalculateNextExecution 计算任务的下次执行时间
func CalculateNextExecution(task *models.QualityEvaluationTask, from time.Time) (*time.Time, error) {
	switch task.ScheduleType {
	case "cron":
		parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
		schedule, err := parser.Parse(task.CronExpression)
		if err != nil {
			return nil, fmt.Errorf("解析Cron表达式失败: %w", err)
		}
		next := schedule.Next(from)
		return &next, nil
	case "interval":
		if task.IntervalSeconds <= 0 {
			return nil, fmt.Errorf("间隔任务的间隔时间必须大于0")
		}
		next := from.Add(time.Duration(task.IntervalSeconds) * time.Second)
		return &next, nil
	case "once", "manual":
		return nil, nil
	default:
		return nil, fmt.Errorf("不支持的调度类型: %s", task.ScheduleType)
	}
}

// ReloadScheduledTasks 重新加载调度任务
// cron 库不支持按 ID 移除任务，这里整体重建
func (ts *TaskScheduler) ReloadScheduledTasks() error {
	ts.cron.Stop()
	ts.cron = cron.New(cron.WithSeconds())
	ts.cron.Start()

	return ts.loadScheduledTasks()
}
