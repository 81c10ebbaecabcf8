/*
 * @module service/config/config_service
 * @description 配置服务，提供评估引擎与清理任务的可调参数管理
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/quality_engine_req.md
 * @stateFlow 读取顺序：环境变量覆盖 -> 数据库 system_configs -> 内置默认值
 * @rules 配置键统一用 quality. 前缀，环境变量覆盖键为 PIM_ + 大写下划线形式
 * @dependencies gorm.io/gorm, github.com/spf13/cast
 * @refs service/models/system_config.go, service/init.go
 */

package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cast"
	"gorm.io/gorm"

	"github.com/demetrio-freitas/pim-sub000/service/models"
)

// 配置键
const (
	ConfigKeyErrorPenalty            = "quality.penalty_error"
	ConfigKeyWarningPenalty          = "quality.penalty_warning"
	ConfigKeyEvaluatorTimeoutSeconds = "quality.evaluator_timeout_seconds"
	ConfigKeyLogRetentionDays        = "quality.log_retention_days"
	ConfigKeyBatchConcurrency        = "quality.batch_concurrency"
	ConfigKeyCompleteThreshold       = "quality.complete_threshold"
)

// 内置默认值
const (
	DefaultErrorPenalty            = 10
	DefaultWarningPenalty          = 5
	DefaultEvaluatorTimeoutSeconds = 5
	DefaultLogRetentionDays        = 90
	DefaultBatchConcurrency        = 4
	DefaultCompleteThreshold       = 80
)

var defaultValues = map[string]int{
	ConfigKeyErrorPenalty:            DefaultErrorPenalty,
	ConfigKeyWarningPenalty:          DefaultWarningPenalty,
	ConfigKeyEvaluatorTimeoutSeconds: DefaultEvaluatorTimeoutSeconds,
	ConfigKeyLogRetentionDays:        DefaultLogRetentionDays,
	ConfigKeyBatchConcurrency:        DefaultBatchConcurrency,
	ConfigKeyCompleteThreshold:       DefaultCompleteThreshold,
}

var configDescriptions = map[string]string{
	ConfigKeyErrorPenalty:            "每条未通过的 ERROR 规则扣分",
	ConfigKeyWarningPenalty:          "每条未通过的 WARNING 规则扣分",
	ConfigKeyEvaluatorTimeoutSeconds: "UNIQUE/CUSTOM 规则外部调用超时秒数",
	ConfigKeyLogRetentionDays:        "质量验证日志保留天数",
	ConfigKeyBatchConcurrency:        "批量评估默认并发数",
	ConfigKeyCompleteThreshold:       "商品视为完整的最低质量分",
}

const envPrefix = "PIM_"

// ConfigService 配置服务
type ConfigService struct {
	db    *gorm.DB
	mu    sync.RWMutex
	cache map[string]string
}

// NewConfigService 创建配置服务实例
func NewConfigService(db *gorm.DB) *ConfigService {
	return &ConfigService{
		db:    db,
		cache: make(map[string]string),
	}
}

// envKey 配置键转环境变量名：quality.penalty_error -> PIM_QUALITY_PENALTY_ERROR
func envKey(key string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// GetConfig 按优先级获取配置：环境变量 -> 数据库 -> 默认值
func (s *ConfigService) GetConfig(key string) (string, error) {
	if value := os.Getenv(envKey(key)); value != "" {
		return value, nil
	}

	s.mu.RLock()
	cached, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	var record models.SystemConfig
	err := s.db.Where("key = ? AND environment = ?", key, "default").First(&record).Error
	if err == nil {
		s.mu.Lock()
		s.cache[key] = record.Value
		s.mu.Unlock()
		return record.Value, nil
	}

	if def, ok := defaultValues[key]; ok {
		return cast.ToString(def), nil
	}
	return "", fmt.Errorf("配置项不存在: %s", key)
}

// GetIntConfig 获取整数配置，读取或解析失败时返回默认值
func (s *ConfigService) GetIntConfig(key string, fallback int) int {
	value, err := s.GetConfig(key)
	if err != nil {
		return fallback
	}
	parsed, err := cast.ToIntE(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// SetConfig 写入配置并刷新缓存
func (s *ConfigService) SetConfig(key, value, description string) error {
	if description == "" {
		description = configDescriptions[key]
	}

	var record models.SystemConfig
	err := s.db.Where("key = ? AND environment = ?", key, "default").First(&record).Error
	if err != nil {
		record = models.SystemConfig{
			Key:         key,
			Value:       value,
			Environment: "default",
			Description: description,
		}
		if err := s.db.Create(&record).Error; err != nil {
			return fmt.Errorf("创建配置失败: %w", err)
		}
	} else {
		updates := map[string]interface{}{
			"value":      value,
			"updated_at": time.Now(),
		}
		if description != "" {
			updates["description"] = description
		}
		if err := s.db.Model(&record).Updates(updates).Error; err != nil {
			return fmt.Errorf("更新配置失败: %w", err)
		}
	}

	s.mu.Lock()
	s.cache[key] = value
	s.mu.Unlock()
	return nil
}

// ListConfigs 列出全部配置项，数据库缺失的键用默认值补齐
func (s *ConfigService) ListConfigs() ([]models.SystemConfigItem, error) {
	var records []models.SystemConfig
	if err := s.db.Where("environment = ?", "default").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("查询配置失败: %w", err)
	}

	items := make([]models.SystemConfigItem, 0, len(defaultValues))
	existing := make(map[string]bool)
	for _, record := range records {
		items = append(items, models.SystemConfigItem{
			Key:         record.Key,
			Value:       record.Value,
			Description: record.Description,
			ValueType:   "int",
		})
		existing[record.Key] = true
	}

	for key, def := range defaultValues {
		if !existing[key] {
			items = append(items, models.SystemConfigItem{
				Key:         key,
				Value:       cast.ToString(def),
				Description: configDescriptions[key],
				ValueType:   "int",
			})
		}
	}

	return items, nil
}

// ClearCache 清除配置缓存
func (s *ConfigService) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]string)
}

// GetErrorPenalty 每条 ERROR 规则扣分
func (s *ConfigService) GetErrorPenalty() int {
	return s.GetIntConfig(ConfigKeyErrorPenalty, DefaultErrorPenalty)
}

// GetWarningPenalty 每条 WARNING 规则扣分
func (s *ConfigService) GetWarningPenalty() int {
	return s.GetIntConfig(ConfigKeyWarningPenalty, DefaultWarningPenalty)
}

// GetEvaluatorTimeout 外部评估调用超时
func (s *ConfigService) GetEvaluatorTimeout() time.Duration {
	seconds := s.GetIntConfig(ConfigKeyEvaluatorTimeoutSeconds, DefaultEvaluatorTimeoutSeconds)
	if seconds <= 0 {
		seconds = DefaultEvaluatorTimeoutSeconds
	}
	return time.Duration(seconds) * time.Second
}

// GetLogRetentionDays 验证日志保留天数
func (s *ConfigService) GetLogRetentionDays() int {
	days := s.GetIntConfig(ConfigKeyLogRetentionDays, DefaultLogRetentionDays)
	if days <= 0 {
		days = DefaultLogRetentionDays
	}
	return days
}

// GetBatchConcurrency 批量评估默认并发数
func (s *ConfigService) GetBatchConcurrency() int {
	c := s.GetIntConfig(ConfigKeyBatchConcurrency, DefaultBatchConcurrency)
	if c <= 0 {
		c = DefaultBatchConcurrency
	}
	return c
}

// GetCompleteThreshold 商品视为完整的最低质量分
func (s *ConfigService) GetCompleteThreshold() int {
	return s.GetIntConfig(ConfigKeyCompleteThreshold, DefaultCompleteThreshold)
}
