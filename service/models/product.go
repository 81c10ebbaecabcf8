/*
 * @module service/models/product
 * @description 商品目录模型，包含商品主体与按编码存储的属性值
 * @architecture 数据模型层
 * @documentReference dev_docs/quality_engine_req.md
 * @stateFlow 商品数据由外部目录系统维护 -> 评估时由 Provider 读取快照
 * @rules 属性值与"属性不存在"必须可以无歧义区分，缺失属性不落库
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/quality/store.go
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 属性值类型
const (
	AttributeValueTypeText    = "text"
	AttributeValueTypeNumber  = "number"
	AttributeValueTypeBoolean = "boolean"
	AttributeValueTypeList    = "list"
)

// Product 商品模型
type Product struct {
	ID         string           `gorm:"type:varchar(50);primaryKey" json:"id"`
	SKU        string           `gorm:"type:varchar(100);not null;uniqueIndex" json:"sku"`
	Name       string           `gorm:"type:varchar(200);not null" json:"name"`
	CategoryID *string          `gorm:"type:varchar(50);index" json:"category_id,omitempty"`
	FamilyID   *string          `gorm:"type:varchar(50);index" json:"family_id,omitempty"`
	ChannelID  *string          `gorm:"type:varchar(50);index" json:"channel_id,omitempty"`
	Status     string           `gorm:"type:varchar(20);default:'draft'" json:"status"` // draft, published, archived
	Images     JSONBStringArray `gorm:"type:jsonb" json:"images"`                       // 图片地址列表
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	DeletedAt  time.Time        `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// BeforeCreate 创建前钩子
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// ProductAttributeValue 商品属性值模型
// 一行代表"商品 X 的属性 code 取值 V"；没有对应行即属性缺失
type ProductAttributeValue struct {
	ID            string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	ProductID     string    `gorm:"type:varchar(50);not null;index:idx_pav_product;index:idx_pav_lookup" json:"product_id"`
	AttributeCode string    `gorm:"type:varchar(100);not null;index:idx_pav_lookup" json:"attribute_code"`
	ValueType     string    `gorm:"type:varchar(20);not null;default:'text'" json:"value_type"` // text, number, boolean, list
	Value         string    `gorm:"type:text" json:"value"`                                     // list 类型存 JSON 数组
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName 指定表名
func (ProductAttributeValue) TableName() string {
	return "product_attribute_values"
}

// BeforeCreate 创建前钩子
func (v *ProductAttributeValue) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return nil
}
