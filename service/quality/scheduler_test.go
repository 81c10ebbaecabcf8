/*
 * @module service/quality/scheduler_test
 * @description 质量评估任务调度器的单元测试，使用内存 SQLite
 * @architecture 测试层
 * @documentReference dev_docs/quality_engine_req.md
 * @stateFlow 造任务与商品数据 -> 执行调度任务 -> 断言执行记录与任务统计
 * @rules 覆盖四种调度类型的下次执行时间计算与手动触发的完整执行链路
 * @dependencies testing, github.com/stretchr/testify/assert
 * @refs scheduler.go
 */

package quality

import (
	"testing"
	"time"

	"github.com/demetrio-freitas/pim-sub000/service/models"
	"github.com/demetrio-freitas/pim-sub000/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateNextExecution_Cron(t *testing.T) {
	task := &models.QualityEvaluationTask{
		ScheduleType:   "cron",
		CronExpression: "0 0 2 * * *",
	}

	from := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	next, err := CalculateNextExecution(task, from)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, time.Date(2026, 9, 1, 2, 0, 0, 0, time.UTC), *next)
}

func TestCalculateNextExecution_CronInvalidExpression(t *testing.T) {
	task := &models.QualityEvaluationTask{
		ScheduleType: "cron",
		// 5 字段表达式不被接受，需要带秒的 6 字段
		CronExpression: "0 2 * * *",
	}

	_, err := CalculateNextExecution(task, time.Now())
	assert.Error(t, err)
}

func TestCalculateNextExecution_Interval(t *testing.T) {
	task := &models.QualityEvaluationTask{
		ScheduleType:    "interval",
		IntervalSeconds: 3600,
	}

	from := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	next, err := CalculateNextExecution(task, from)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, from.Add(time.Hour), *next)

	task.IntervalSeconds = 0
	_, err = CalculateNextExecution(task, from)
	assert.Error(t, err)
}

func TestCalculateNextExecution_OnceAndManual(t *testing.T) {
	for _, scheduleType := range []string{"once", "manual"} {
		task := &models.QualityEvaluationTask{ScheduleType: scheduleType}
		next, err := CalculateNextExecution(task, time.Now())
		require.NoError(t, err)
		assert.Nil(t, next)
	}

	_, err := CalculateNextExecution(&models.QualityEvaluationTask{ScheduleType: "hourly"}, time.Now())
	assert.Error(t, err)
}

func newSchedulerFixture(t *testing.T) (*TaskScheduler, *testutil.TestDB, *testutil.TestDataFactory) {
	t.Helper()
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)

	provider := NewGormProductProvider(tdb.DB)
	engine := NewEngine(DefaultEngineConfig(), NewGormRuleStore(tdb.DB), provider)
	scheduler := NewTaskScheduler(tdb.DB, engine, provider)
	t.Cleanup(scheduler.StopScheduler)

	return scheduler, tdb, testutil.NewTestDataFactory(tdb.DB)
}

func TestExecuteScheduledTask_ManualRun(t *testing.T) {
	scheduler, tdb, factory := newSchedulerFixture(t)

	product := factory.CreateProduct()
	factory.SetAttribute(product.ID, "name", models.AttributeValueTypeText, product.Name)
	factory.CreateQualityRule() // 默认 REQUIRED name ERROR
	task := factory.CreateEvaluationTask()

	scheduler.executeScheduledTask(task.ID, "manual")

	var executions []models.QualityTaskExecution
	require.NoError(t, tdb.DB.Find(&executions).Error)
	require.Len(t, executions, 1)

	exec := executions[0]
	assert.Equal(t, task.ID, exec.TaskID)
	assert.Equal(t, "manual", exec.TriggerSource)
	assert.Equal(t, "completed", exec.Status)
	assert.Equal(t, 1, exec.TotalProducts)
	assert.Equal(t, 0, exec.FailedProducts)
	assert.Equal(t, 100.0, exec.AverageScore)
	assert.NotNil(t, exec.EndTime)

	var updated models.QualityEvaluationTask
	require.NoError(t, tdb.DB.First(&updated, "id = ?", task.ID).Error)
	assert.Equal(t, int64(1), updated.ExecutionCount)
	assert.NotNil(t, updated.LastExecuted)
	// manual 任务没有下次执行时间
	assert.Nil(t, updated.NextExecution)
}

func TestExecuteScheduledTask_ScopedProducts(t *testing.T) {
	scheduler, tdb, factory := newSchedulerFixture(t)

	inScope := factory.CreateProduct(testutil.WithScope("cat-a", "", ""))
	factory.SetAttribute(inScope.ID, "name", models.AttributeValueTypeText, inScope.Name)
	factory.CreateProduct(testutil.WithScope("cat-b", "", ""))

	catA := "cat-a"
	task := factory.CreateEvaluationTask(func(t *models.QualityEvaluationTask) {
		t.CategoryID = &catA
	})

	scheduler.executeScheduledTask(task.ID, "manual")

	var exec models.QualityTaskExecution
	require.NoError(t, tdb.DB.First(&exec, "task_id = ?", task.ID).Error)
	assert.Equal(t, 1, exec.TotalProducts)
}

func TestExecuteScheduledTask_DisabledSkipsScheduledRun(t *testing.T) {
	scheduler, tdb, factory := newSchedulerFixture(t)

	task := factory.CreateEvaluationTask(func(t *models.QualityEvaluationTask) {
		t.IsEnabled = false
	})

	// 定时触发对禁用任务直接跳过，不产生执行记录
	scheduler.executeScheduledTask(task.ID, "scheduled")

	var count int64
	tdb.DB.Model(&models.QualityTaskExecution{}).Count(&count)
	assert.Equal(t, int64(0), count)

	// 手动触发不受禁用限制
	scheduler.executeScheduledTask(task.ID, "manual")
	tdb.DB.Model(&models.QualityTaskExecution{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestExecuteScheduledTask_IntervalSetsNextExecution(t *testing.T) {
	scheduler, tdb, factory := newSchedulerFixture(t)

	task := factory.CreateEvaluationTask(func(t *models.QualityEvaluationTask) {
		t.ScheduleType = "interval"
		t.IntervalSeconds = 600
	})

	before := time.Now()
	scheduler.executeScheduledTask(task.ID, "manual")

	var updated models.QualityEvaluationTask
	require.NoError(t, tdb.DB.First(&updated, "id = ?", task.ID).Error)
	require.NotNil(t, updated.NextExecution)
	assert.True(t, updated.NextExecution.After(before.Add(9*time.Minute)))
}

func TestAddTaskToScheduler_Validation(t *testing.T) {
	scheduler, _, _ := newSchedulerFixture(t)

	// cron 任务缺少表达式
	assert.Error(t, scheduler.addTaskToScheduler(&models.QualityEvaluationTask{
		ID:           "t1",
		ScheduleType: "cron",
	}))

	// 5 字段表达式被拒绝
	assert.Error(t, scheduler.addTaskToScheduler(&models.QualityEvaluationTask{
		ID:             "t2",
		ScheduleType:   "cron",
		CronExpression: "0 2 * * *",
	}))

	// 合法的 6 字段表达式
	assert.NoError(t, scheduler.addTaskToScheduler(&models.QualityEvaluationTask{
		ID:             "t3",
		ScheduleType:   "cron",
		CronExpression: "0 */5 * * * *",
	}))

	// 间隔任务的间隔必须大于零
	assert.Error(t, scheduler.addTaskToScheduler(&models.QualityEvaluationTask{
		ID:           "t4",
		ScheduleType: "interval",
	}))
}

func TestStartScheduler_DoubleStart(t *testing.T) {
	scheduler, _, _ := newSchedulerFixture(t)

	require.NoError(t, scheduler.StartScheduler())
	assert.Error(t, scheduler.StartScheduler())
	scheduler.StopScheduler()

	// 停止后重复停止不报错
	scheduler.StopScheduler()
}
