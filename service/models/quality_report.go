/*
 * @module service/models/quality_report
 * @description 质量评估留痕模型，包含验证日志与调度任务执行记录
 * @architecture 数据模型层
 * @documentReference dev_docs/quality_engine_req.md
 * @stateFlow 评估完成 -> 追加验证日志 -> 历史查询/定期清理
 * @rules 验证日志仅追加，引擎自身不更新不删除，保留期清理由独立服务负责
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/quality/log_writer.go, service/cleanup/
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QualityValidationLog 质量验证日志模型
// 每次评估运行追加一行，detail 保存完整报告的序列化快照
type QualityValidationLog struct {
	ID           string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	ProductID    string    `gorm:"type:varchar(50);not null;index" json:"product_id"`
	SKU          string    `gorm:"type:varchar(100);index" json:"sku"`
	OverallScore int       `json:"overall_score"` // 0-100
	ErrorCount   int       `json:"error_count"`
	WarningCount int       `json:"warning_count"`
	InfoCount    int       `json:"info_count"`
	Detail       JSONB     `gorm:"type:jsonb" json:"detail"` // 报告详情快照
	EvaluatedAt  time.Time `gorm:"index" json:"evaluated_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName 指定表名
func (QualityValidationLog) TableName() string {
	return "quality_validation_logs"
}

// BeforeCreate 创建前钩子
func (q *QualityValidationLog) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	return nil
}

// QualityEvaluationTask 质量评估调度任务模型
// 按作用域圈定一批商品，定时触发批量评估
type QualityEvaluationTask struct {
	ID              string     `gorm:"type:varchar(50);primaryKey" json:"id"`
	Name            string     `gorm:"type:varchar(100);not null" json:"name"`
	Description     string     `gorm:"type:text" json:"description"`
	CategoryID      *string    `gorm:"type:varchar(50);index" json:"category_id,omitempty"` // 商品筛选条件，空表示不限
	FamilyID        *string    `gorm:"type:varchar(50);index" json:"family_id,omitempty"`
	ChannelID       *string    `gorm:"type:varchar(50);index" json:"channel_id,omitempty"`
	ScheduleType    string     `gorm:"type:varchar(20);not null" json:"schedule_type"` // cron, interval, once, manual
	CronExpression  string     `gorm:"type:varchar(100)" json:"cron_expression"`
	IntervalSeconds int64      `gorm:"default:0" json:"interval_seconds"`
	ScheduledTime   *time.Time `json:"scheduled_time,omitempty"` // once 类型的计划执行时间
	Concurrency     int        `gorm:"default:4" json:"concurrency"`
	IsEnabled       bool       `gorm:"default:true" json:"is_enabled"`
	NextExecution   *time.Time `gorm:"index" json:"next_execution,omitempty"`
	LastExecuted    *time.Time `json:"last_executed,omitempty"`
	ExecutionCount  int64      `gorm:"default:0" json:"execution_count"`
	CreatedBy       string     `gorm:"type:varchar(50)" json:"created_by"`
	UpdatedBy       string     `gorm:"type:varchar(50)" json:"updated_by"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       time.Time  `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName 指定表名
func (QualityEvaluationTask) TableName() string {
	return "quality_evaluation_tasks"
}

// BeforeCreate 创建前钩子
func (q *QualityEvaluationTask) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	if q.CreatedBy == "" {
		q.CreatedBy = "system"
	}
	if q.UpdatedBy == "" {
		q.UpdatedBy = "system"
	}
	return nil
}

// QualityTaskExecution 调度任务执行记录模型
type QualityTaskExecution struct {
	ID             string     `gorm:"type:varchar(50);primaryKey" json:"id"`
	TaskID         string     `gorm:"type:varchar(50);not null;index" json:"task_id"`
	TriggerSource  string     `gorm:"type:varchar(30);not null" json:"trigger_source"` // scheduled, manual
	StartTime      time.Time  `json:"start_time"`
	EndTime        *time.Time `json:"end_time,omitempty"`
	Duration       int64      `json:"duration"`                                // 执行时长，毫秒
	Status         string     `gorm:"type:varchar(20);not null" json:"status"` // running, completed, failed
	TotalProducts  int        `json:"total_products"`
	FailedProducts int        `json:"failed_products"` // Provider 失败导致未产出报告的商品数
	AverageScore   float64    `json:"average_score"`
	ErrorMessage   string     `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	DeletedAt      time.Time  `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName 指定表名
func (QualityTaskExecution) TableName() string {
	return "quality_task_executions"
}

// BeforeCreate 创建前钩子
func (q *QualityTaskExecution) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	return nil
}
