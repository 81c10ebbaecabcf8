/*
 * @module service/quality/store
 * @description 规则与商品的 GORM 数据访问：规则 CRUD、商品快照装配、唯一性检查
 * @architecture 分层架构 - 数据访问层
 * @documentReference dev_docs/quality_engine_req.md
 * @stateFlow 数据库行 -> 领域快照（ProductData / QualityRule 列表）
 * @rules 规则创建与更新前做配置校验，坏配置不落库；商品快照一次性装配
 * @dependencies gorm.io/gorm
 * @refs engine.go, service/models/quality_rule.go, service/models/product.go
 */

package quality

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/demetrio-freitas/pim-sub000/service/models"
)

// GormRuleStore 规则存储的 GORM 实现
type GormRuleStore struct {
	db *gorm.DB
}

// NewGormRuleStore 创建规则存储实例
func NewGormRuleStore(db *gorm.DB) *GormRuleStore {
	return &GormRuleStore{db: db}
}

// GetActiveRules 获取全部启用规则，按 position、code 排序
func (s *GormRuleStore) GetActiveRules(ctx context.Context) ([]models.QualityRule, error) {
	var rules []models.QualityRule
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("position ASC, code ASC").
		Find(&rules).Error
	if err != nil {
		return nil, fmt.Errorf("查询启用规则失败: %w", err)
	}
	return rules, nil
}

// CreateRule 创建规则，先做配置校验
func (s *GormRuleStore) CreateRule(ctx context.Context, rule *models.QualityRule) error {
	if err := ValidateRuleConfig(rule); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(rule).Error; err != nil {
		return fmt.Errorf("创建规则失败: %w", err)
	}
	return nil
}

// UpdateRule 更新规则，更新后的配置同样要过校验
func (s *GormRuleStore) UpdateRule(ctx context.Context, id string, updates map[string]interface{}) (*models.QualityRule, error) {
	var rule models.QualityRule
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&rule).Error; err != nil {
		return nil, fmt.Errorf("规则不存在: %w", err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&rule).Updates(updates).Error; err != nil {
			return fmt.Errorf("更新规则失败: %w", err)
		}
		if err := tx.Where("id = ?", id).First(&rule).Error; err != nil {
			return fmt.Errorf("读取更新后的规则失败: %w", err)
		}
		if err := ValidateRuleConfig(&rule); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// GetRule 按 ID 获取规则
func (s *GormRuleStore) GetRule(ctx context.Context, id string) (*models.QualityRule, error) {
	var rule models.QualityRule
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&rule).Error; err != nil {
		return nil, fmt.Errorf("规则不存在: %w", err)
	}
	return &rule, nil
}

// ListRules 分页查询规则，可按类型、严重级别、启用状态过滤
func (s *GormRuleStore) ListRules(ctx context.Context, ruleType, severity string, isActive *bool, page, size int) ([]models.QualityRule, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.QualityRule{})
	if ruleType != "" {
		query = query.Where("type = ?", ruleType)
	}
	if severity != "" {
		query = query.Where("severity = ?", severity)
	}
	if isActive != nil {
		query = query.Where("is_active = ?", *isActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("统计规则数量失败: %w", err)
	}

	var rules []models.QualityRule
	offset := (page - 1) * size
	err := query.Order("position ASC, code ASC").Offset(offset).Limit(size).Find(&rules).Error
	if err != nil {
		return nil, 0, fmt.Errorf("查询规则列表失败: %w", err)
	}
	return rules, total, nil
}

// DisableRule 停用规则（软停用，保留历史日志可追溯）
func (s *GormRuleStore) DisableRule(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Model(&models.QualityRule{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("停用规则失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("规则不存在: %s", id)
	}
	return nil
}

// DeleteRule 删除规则
func (s *GormRuleStore) DeleteRule(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.QualityRule{})
	if result.Error != nil {
		return fmt.Errorf("删除规则失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("规则不存在: %s", id)
	}
	return nil
}

// GormProductProvider 商品快照提供者的 GORM 实现
type GormProductProvider struct {
	db *gorm.DB
}

// NewGormProductProvider 创建商品快照提供者
func NewGormProductProvider(db *gorm.DB) *GormProductProvider {
	return &GormProductProvider{db: db}
}

// GetProduct 装配商品评估快照
func (p *GormProductProvider) GetProduct(ctx context.Context, productID string) (*ProductData, error) {
	var product models.Product
	if err := p.db.WithContext(ctx).Where("id = ?", productID).First(&product).Error; err != nil {
		return nil, fmt.Errorf("商品不存在: %w", err)
	}

	var attrRows []models.ProductAttributeValue
	if err := p.db.WithContext(ctx).Where("product_id = ?", productID).Find(&attrRows).Error; err != nil {
		return nil, fmt.Errorf("查询商品属性失败: %w", err)
	}

	attributes := make(map[string]AttributeValue, len(attrRows))
	for _, row := range attrRows {
		value, err := ParseAttributeValue(row.ValueType, row.Value)
		if err != nil {
			return nil, fmt.Errorf("解析属性 %s 失败: %w", row.AttributeCode, err)
		}
		attributes[row.AttributeCode] = value
	}

	return &ProductData{
		ID:         product.ID,
		SKU:        product.SKU,
		Name:       product.Name,
		CategoryID: product.CategoryID,
		FamilyID:   product.FamilyID,
		ChannelID:  product.ChannelID,
		Attributes: attributes,
		ImageCount: len(product.Images),
	}, nil
}

// ListProductIDs 按作用域列出商品 ID，用于范围批量评估
func (p *GormProductProvider) ListProductIDs(ctx context.Context, scope RuleScope) ([]string, error) {
	query := p.db.WithContext(ctx).Model(&models.Product{})
	if scope.CategoryID != nil && *scope.CategoryID != "" {
		query = query.Where("category_id = ?", *scope.CategoryID)
	}
	if scope.FamilyID != nil && *scope.FamilyID != "" {
		query = query.Where("family_id = ?", *scope.FamilyID)
	}
	if scope.ChannelID != nil && *scope.ChannelID != "" {
		query = query.Where("channel_id = ?", *scope.ChannelID)
	}

	var ids []string
	if err := query.Order("sku ASC").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("查询商品列表失败: %w", err)
	}
	return ids, nil
}

// GormUniquenessChecker 唯一性检查的 GORM 实现
// 在同作用域的其他商品中查找相同的属性值
type GormUniquenessChecker struct {
	db *gorm.DB
}

// NewGormUniquenessChecker 创建唯一性检查器
func NewGormUniquenessChecker(db *gorm.DB) *GormUniquenessChecker {
	return &GormUniquenessChecker{db: db}
}

// Exists 检查属性值是否已被作用域内其他商品占用
func (c *GormUniquenessChecker) Exists(ctx context.Context, attributeCode, value, excludeProductID string, scope RuleScope) (bool, error) {
	query := c.db.WithContext(ctx).Model(&models.ProductAttributeValue{}).
		Joins("JOIN products ON products.id = product_attribute_values.product_id").
		Where("product_attribute_values.attribute_code = ?", attributeCode).
		Where("product_attribute_values.value = ?", value).
		Where("product_attribute_values.product_id <> ?", excludeProductID)
	if scope.CategoryID != nil && *scope.CategoryID != "" {
		query = query.Where("products.category_id = ?", *scope.CategoryID)
	}
	if scope.FamilyID != nil && *scope.FamilyID != "" {
		query = query.Where("products.family_id = ?", *scope.FamilyID)
	}
	if scope.ChannelID != nil && *scope.ChannelID != "" {
		query = query.Where("products.channel_id = ?", *scope.ChannelID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("唯一性查询失败: %w", err)
	}
	return count > 0, nil
}

// RecordTaskExecution 记录一次任务执行
func RecordTaskExecution(ctx context.Context, db *gorm.DB, exec *models.QualityTaskExecution) error {
	if err := db.WithContext(ctx).Create(exec).Error; err != nil {
		return fmt.Errorf("记录任务执行失败: %w", err)
	}
	return nil
}

// QueryValidationLogs 分页查询验证日志，可按商品与时间范围过滤
func QueryValidationLogs(ctx context.Context, db *gorm.DB, productID string, since, until *time.Time, page, size int) ([]models.QualityValidationLog, int64, error) {
	query := db.WithContext(ctx).Model(&models.QualityValidationLog{})
	if productID != "" {
		query = query.Where("product_id = ?", productID)
	}
	if since != nil {
		query = query.Where("evaluated_at >= ?", *since)
	}
	if until != nil {
		query = query.Where("evaluated_at < ?", *until)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("统计验证日志失败: %w", err)
	}

	var logs []models.QualityValidationLog
	offset := (page - 1) * size
	err := query.Order("evaluated_at DESC").Offset(offset).Limit(size).Find(&logs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("查询验证日志失败: %w", err)
	}
	return logs, total, nil
}
