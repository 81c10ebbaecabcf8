/*
 * @module testutil/test_helper
 * @description 测试工具和辅助函数
 * @architecture 测试基础设施 - 提供测试通用工具和数据工厂
 * @documentReference dev_docs/test_plan.md
 * @stateFlow 测试环境初始化 -> 测试数据创建 -> 测试执行 -> 清理资源
 * @rules 提供可重用的测试工具，确保测试环境的一致性
 * @dependencies gorm, sqlite, testify, time
 * @refs service/models
 */

package testutil

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/demetrio-freitas/pim-sub000/service/models"
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
		&models.Product{},
		&models.ProductAttributeValue{},
		&models.QualityRule{},
		&models.QualityValidationLog{},
		&models.QualityEvaluationTask{},
		&models.QualityTaskExecution{},
		&models.SystemConfig{},
	)
	if err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}

	return &TestDB{DB: db}
}

// CleanDB 清理数据库
func (tdb *TestDB) CleanDB() {
	tables := []string{
		"products",
		"product_attribute_values",
		"quality_rules",
		"quality_validation_logs",
		"quality_evaluation_tasks",
		"quality_task_executions",
		"system_configs",
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

// ProductOption 商品选项函数类型
type ProductOption func(*models.Product)

// CreateProduct 创建测试商品
func (f *TestDataFactory) CreateProduct(opts ...ProductOption) *models.Product {
	product := &models.Product{
		ID:        generateID("prod"),
		SKU:       "SKU-" + generateSuffix(),
		Name:      "测试商品",
		Status:    "published",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	for _, opt := range opts {
		opt(product)
	}

	if err := f.DB.Create(product).Error; err != nil {
		panic(fmt.Sprintf("failed to create test product: %v", err))
	}

	return product
}

// WithScope 设置商品所属分类/族/渠道
func WithScope(categoryID, familyID, channelID string) ProductOption {
	return func(p *models.Product) {
		if categoryID != "" {
			p.CategoryID = &categoryID
		}
		if familyID != "" {
			p.FamilyID = &familyID
		}
		if channelID != "" {
			p.ChannelID = &channelID
		}
	}
}

// WithImages 设置商品图片
func WithImages(urls ...string) ProductOption {
	return func(p *models.Product) {
		p.Images = urls
	}
}

// SetAttribute 给商品写入一个属性值
func (f *TestDataFactory) SetAttribute(productID, code, valueType, value string) *models.ProductAttributeValue {
	row := &models.ProductAttributeValue{
		ID:            generateID("pav"),
		ProductID:     productID,
		AttributeCode: code,
		ValueType:     valueType,
		Value:         value,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	if err := f.DB.Create(row).Error; err != nil {
		panic(fmt.Sprintf("failed to create test attribute value: %v", err))
	}

	return row
}

// SetListAttribute 给商品写入一个列表属性值
func (f *TestDataFactory) SetListAttribute(productID, code string, items []string) *models.ProductAttributeValue {
	raw, _ := json.Marshal(items)
	return f.SetAttribute(productID, code, models.AttributeValueTypeList, string(raw))
}

// QualityRuleOption 质量规则选项函数类型
type QualityRuleOption func(*models.QualityRule)

// CreateQualityRule 创建测试质量规则
func (f *TestDataFactory) CreateQualityRule(opts ...QualityRuleOption) *models.QualityRule {
	attr := "name"
	rule := &models.QualityRule{
		ID:            generateID("qr"),
		Code:          "rule_" + generateSuffix(),
		Name:          "测试质量规则",
		Type:          models.RuleTypeRequired,
		Severity:      models.SeverityError,
		AttributeCode: &attr,
		IsActive:      true,
		Position:      100,
		CreatedBy:     "test",
		UpdatedBy:     "test",
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	for _, opt := range opts {
		opt(rule)
	}

	if err := f.DB.Create(rule).Error; err != nil {
		panic(fmt.Sprintf("failed to create test quality rule: %v", err))
	}

	return rule
}

// WithRuleType 设置规则类型与参数
func WithRuleType(ruleType string, params models.JSONB) QualityRuleOption {
	return func(r *models.QualityRule) {
		r.Type = ruleType
		r.Parameters = params
	}
}

// WithSeverity 设置严重级别
func WithSeverity(severity string) QualityRuleOption {
	return func(r *models.QualityRule) {
		r.Severity = severity
	}
}

// WithAttribute 设置目标属性
func WithAttribute(code string) QualityRuleOption {
	return func(r *models.QualityRule) {
		r.AttributeCode = &code
	}
}

// WithPosition 设置排序位置
func WithPosition(position int) QualityRuleOption {
	return func(r *models.QualityRule) {
		r.Position = position
	}
}

// WithRuleScope 设置规则作用域
func WithRuleScope(categoryID, familyID, channelID string) QualityRuleOption {
	return func(r *models.QualityRule) {
		if categoryID != "" {
			r.CategoryID = &categoryID
		}
		if familyID != "" {
			r.FamilyID = &familyID
		}
		if channelID != "" {
			r.ChannelID = &channelID
		}
	}
}

// EvaluationTaskOption 调度任务选项函数类型
type EvaluationTaskOption func(*models.QualityEvaluationTask)

// CreateEvaluationTask 创建测试调度任务
func (f *TestDataFactory) CreateEvaluationTask(opts ...EvaluationTaskOption) *models.QualityEvaluationTask {
	task := &models.QualityEvaluationTask{
		ID:           generateID("qet"),
		Name:         "测试评估任务",
		ScheduleType: "manual",
		Concurrency:  2,
		IsEnabled:    true,
		CreatedBy:    "test",
		UpdatedBy:    "test",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	for _, opt := range opts {
		opt(task)
	}

	if err := f.DB.Create(task).Error; err != nil {
		panic(fmt.Sprintf("failed to create test evaluation task: %v", err))
	}

	return task
}

// 辅助函数
func generateID(prefix string) string {
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixNano(), generateSuffix())
}

func generateSuffix() string {
	return fmt.Sprintf("%d", time.Now().UnixNano()%100000)
}
