/*
 * @module service/models/system_config
 * @description 系统配置模型，存储评估引擎与清理任务的可调参数
 * @architecture 数据模型层
 * @documentReference dev_docs/quality_engine_req.md
 * @stateFlow 配置存储 -> 配置读取 -> 配置更新
 * @rules 同一环境下配置键唯一
 * @dependencies gorm.io/gorm
 * @refs service/config/config_service.go
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SystemConfig 系统配置模型
type SystemConfig struct {
	ID          string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	Key         string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_config_key_env" json:"key"`
	Value       string    `gorm:"type:text;not null" json:"value"`
	Environment string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_config_key_env" json:"environment"`
	Version     string    `gorm:"type:varchar(20)" json:"version"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	DeletedAt   time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName 指定表名
func (SystemConfig) TableName() string {
	return "system_configs"
}

// BeforeCreate 创建前钩子
func (s *SystemConfig) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.Environment == "" {
		s.Environment = "default"
	}
	return nil
}

// SystemConfigItem 配置项视图，用于配置列表接口
type SystemConfigItem struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description"`
	ValueType   string `json:"value_type"`
}
