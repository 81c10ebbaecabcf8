/*
 * @module service/models/quality_rule
 * @description 商品质量规则模型，定义规则类型、严重级别和作用域
 * @architecture 数据模型层
 * @documentReference dev_docs/quality_engine_req.md
 * @stateFlow 管理端创建规则 -> 引擎快照加载 -> 评估时只读
 * @rules 规则在单次评估中不可变，停用通过 is_active 软禁用而非物理删除
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/quality/
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 规则类型
const (
	RuleTypeRequired     = "REQUIRED"     // 必填
	RuleTypeMinLength    = "MIN_LENGTH"   // 最小长度
	RuleTypeMaxLength    = "MAX_LENGTH"   // 最大长度
	RuleTypeRegex        = "REGEX"        // 正则匹配
	RuleTypeRange        = "RANGE"        // 数值范围
	RuleTypeEnum         = "ENUM"         // 枚举值
	RuleTypeUnique       = "UNIQUE"       // 唯一性
	RuleTypeFormat       = "FORMAT"       // 命名格式
	RuleTypeRelationship = "RELATIONSHIP" // 属性间关系
	RuleTypeCustom       = "CUSTOM"       // 自定义脚本
)

// 严重级别
const (
	SeverityError   = "ERROR"   // 阻止发布
	SeverityWarning = "WARNING" // 标记但不阻止
	SeverityInfo    = "INFO"    // 仅提示
)

// RuleTypes 所有合法的规则类型
var RuleTypes = []string{
	RuleTypeRequired, RuleTypeMinLength, RuleTypeMaxLength, RuleTypeRegex,
	RuleTypeRange, RuleTypeEnum, RuleTypeUnique, RuleTypeFormat,
	RuleTypeRelationship, RuleTypeCustom,
}

// Severities 所有合法的严重级别
var Severities = []string{SeverityError, SeverityWarning, SeverityInfo}

// QualityRule 商品质量规则模型
// 作用域字段均可为空，空表示该轴"适用于全部"；多个作用域轴之间为 AND 关系
type QualityRule struct {
	ID            string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	Code          string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"code"`
	Name          string    `gorm:"type:varchar(100);not null" json:"name"`
	Description   string    `gorm:"type:text" json:"description"`
	Type          string    `gorm:"type:varchar(30);not null" json:"type"`
	Severity      string    `gorm:"type:varchar(20);not null;default:'ERROR'" json:"severity"`
	AttributeCode *string   `gorm:"type:varchar(100);index" json:"attribute_code,omitempty"` // 目标属性编码，空表示整品规则
	CategoryID    *string   `gorm:"type:varchar(50);index" json:"category_id,omitempty"`
	FamilyID      *string   `gorm:"type:varchar(50);index" json:"family_id,omitempty"`
	ChannelID     *string   `gorm:"type:varchar(50);index" json:"channel_id,omitempty"`
	Parameters    JSONB     `gorm:"type:jsonb" json:"parameters"` // 参数结构由 Type 决定
	ErrorMessage  string    `gorm:"type:text" json:"error_message,omitempty"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
	Position      int       `gorm:"default:0" json:"position"` // 评估与展示顺序，升序
	CreatedBy     string    `gorm:"type:varchar(50)" json:"created_by"`
	UpdatedBy     string    `gorm:"type:varchar(50)" json:"updated_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	DeletedAt     time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName 指定表名
func (QualityRule) TableName() string {
	return "quality_rules"
}

// BeforeCreate 创建前钩子
func (q *QualityRule) BeforeCreate(tx *gorm.DB) error {
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

// BeforeUpdate 更新前钩子
func (q *QualityRule) BeforeUpdate(tx *gorm.DB) error {
	if q.UpdatedBy == "" {
		q.UpdatedBy = "system"
	}
	return nil
}

// TargetsAttribute 判断规则是否指向具体属性
func (q *QualityRule) TargetsAttribute() bool {
	return q.AttributeCode != nil && *q.AttributeCode != ""
}
