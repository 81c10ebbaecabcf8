/*
 * @module service/database/migrate
 * @description 数据库迁移模块，负责创建和更新数据库表结构并初始化内置质量规则
 * @architecture 数据访问层 - 迁移管理
 * @documentReference dev_docs/model.md
 * @stateFlow 应用启动时执行数据库迁移
 * @rules 确保数据库结构与模型定义保持一致；内置规则只在规则表为空时写入
 * @dependencies gorm.io/gorm
 * @refs service/models/quality_rule.go, service/init.go
 */

package database

import (
	"log"

	"gorm.io/gorm"

	"github.com/demetrio-freitas/pim-sub000/service/models"
)

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate(db *gorm.DB) error {
	log.Println("开始数据库迁移...")

	// 商品数据相关表
	err := db.AutoMigrate(
		&models.Product{},
		&models.ProductAttributeValue{},
	)
	if err != nil {
		return err
	}

	// 质量规则与评估留痕相关表
	err = db.AutoMigrate(
		&models.QualityRule{},
		&models.QualityValidationLog{},
		&models.QualityEvaluationTask{},
		&models.QualityTaskExecution{},
	)
	if err != nil {
		return err
	}

	// 系统配置表
	err = db.AutoMigrate(
		&models.SystemConfig{},
	)
	if err != nil {
		return err
	}

	log.Println("数据库迁移完成")
	return nil
}

// InitializeData 初始化基础数据
// 规则表为空时写入一组内置规则，已有数据则不动
func InitializeData(db *gorm.DB) error {
	log.Println("开始初始化基础数据...")

	var ruleCount int64
	if err := db.Model(&models.QualityRule{}).Count(&ruleCount).Error; err != nil {
		return err
	}
	if ruleCount > 0 {
		log.Println("质量规则已存在，跳过内置规则初始化")
		return nil
	}

	for i := range builtinRules {
		if err := db.Create(&builtinRules[i]).Error; err != nil {
			log.Printf("初始化内置规则失败: code=%s, error=%v", builtinRules[i].Code, err)
			return err
		}
	}

	log.Printf("内置质量规则初始化完成, count=%d", len(builtinRules))
	return nil
}

func strPtr(s string) *string { return &s }

// builtinRules 内置质量规则，覆盖最常见的商品完整性检查
var builtinRules = []models.QualityRule{
	{
		Code:          "builtin_name_required",
		Name:          "商品名称必填",
		Description:   "商品名称为空会直接影响前台展示与搜索",
		Type:          models.RuleTypeRequired,
		Severity:      models.SeverityError,
		AttributeCode: strPtr("name"),
		ErrorMessage:  "商品名称不能为空",
		IsActive:      true,
		Position:      10,
		CreatedBy:     "system",
	},
	{
		Code:          "builtin_description_required",
		Name:          "商品描述必填",
		Type:          models.RuleTypeRequired,
		Severity:      models.SeverityError,
		AttributeCode: strPtr("description"),
		IsActive:      true,
		Position:      20,
		CreatedBy:     "system",
	},
	{
		Code:          "builtin_description_min_length",
		Name:          "商品描述长度下限",
		Description:   "过短的描述不利于转化，按告警处理",
		Type:          models.RuleTypeMinLength,
		Severity:      models.SeverityWarning,
		AttributeCode: strPtr("description"),
		Parameters:    models.JSONB{"min": 120},
		IsActive:      true,
		Position:      30,
		CreatedBy:     "system",
	},
	{
		Code:          "builtin_gtin_format",
		Name:          "GTIN格式校验",
		Type:          models.RuleTypeFormat,
		Severity:      models.SeverityError,
		AttributeCode: strPtr("gtin"),
		Parameters:    models.JSONB{"format": "gtin13"},
		IsActive:      true,
		Position:      40,
		CreatedBy:     "system",
	},
	{
		Code:          "builtin_price_range",
		Name:          "价格取值范围",
		Type:          models.RuleTypeRange,
		Severity:      models.SeverityError,
		AttributeCode: strPtr("price"),
		Parameters:    models.JSONB{"min": 0.01, "max": 9999999},
		IsActive:      true,
		Position:      50,
		CreatedBy:     "system",
	},
	{
		Code:          "builtin_brand_filled",
		Name:          "品牌建议填写",
		Type:          models.RuleTypeRequired,
		Severity:      models.SeverityInfo,
		AttributeCode: strPtr("brand"),
		IsActive:      true,
		Position:      60,
		CreatedBy:     "system",
	},
}
