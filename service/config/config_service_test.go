/*
 * @module service/config/config_service_test
 * @description 配置服务的单元测试，使用内存 SQLite
 * @architecture 测试层
 * @documentReference dev_docs/quality_engine_req.md
 * @stateFlow 默认值读取 -> 数据库覆盖 -> 环境变量覆盖 -> 缓存行为校验
 * @rules 环境变量优先于数据库，数据库优先于默认值
 * @dependencies testing, github.com/stretchr/testify/assert
 * @refs config_service.go
 */

package config

import (
	"testing"
	"time"

	"github.com/demetrio-freitas/pim-sub000/service/models"
	"github.com/demetrio-freitas/pim-sub000/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigService_Defaults(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	svc := NewConfigService(tdb.DB)

	assert.Equal(t, DefaultErrorPenalty, svc.GetErrorPenalty())
	assert.Equal(t, DefaultWarningPenalty, svc.GetWarningPenalty())
	assert.Equal(t, time.Duration(DefaultEvaluatorTimeoutSeconds)*time.Second, svc.GetEvaluatorTimeout())
	assert.Equal(t, DefaultLogRetentionDays, svc.GetLogRetentionDays())
	assert.Equal(t, DefaultBatchConcurrency, svc.GetBatchConcurrency())
	assert.Equal(t, DefaultCompleteThreshold, svc.GetCompleteThreshold())
}

func TestConfigService_GetConfig_UnknownKey(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	svc := NewConfigService(tdb.DB)

	_, err := svc.GetConfig("quality.nonexistent")
	assert.Error(t, err)
}

func TestConfigService_SetConfigOverridesDefault(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	svc := NewConfigService(tdb.DB)

	require.NoError(t, svc.SetConfig(ConfigKeyErrorPenalty, "20", ""))
	assert.Equal(t, 20, svc.GetErrorPenalty())

	// 更新已存在的键
	require.NoError(t, svc.SetConfig(ConfigKeyErrorPenalty, "15", "调低错误扣分"))
	assert.Equal(t, 15, svc.GetErrorPenalty())

	// 数据库中只有一行
	var count int64
	tdb.DB.Model(&models.SystemConfig{}).Where("key = ?", ConfigKeyErrorPenalty).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestConfigService_EnvOverridesDatabase(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	svc := NewConfigService(tdb.DB)

	require.NoError(t, svc.SetConfig(ConfigKeyWarningPenalty, "8", ""))

	t.Setenv("PIM_QUALITY_PENALTY_WARNING", "3")
	assert.Equal(t, 3, svc.GetWarningPenalty())
}

func TestConfigService_CacheAndClear(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	svc := NewConfigService(tdb.DB)

	require.NoError(t, svc.SetConfig(ConfigKeyBatchConcurrency, "8", ""))
	assert.Equal(t, 8, svc.GetBatchConcurrency())

	// 绕过服务直接改库，缓存仍返回旧值
	tdb.DB.Model(&models.SystemConfig{}).
		Where("key = ?", ConfigKeyBatchConcurrency).
		Update("value", "16")
	assert.Equal(t, 8, svc.GetBatchConcurrency())

	svc.ClearCache()
	assert.Equal(t, 16, svc.GetBatchConcurrency())
}

func TestConfigService_InvalidValueFallsBack(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	svc := NewConfigService(tdb.DB)

	require.NoError(t, svc.SetConfig(ConfigKeyLogRetentionDays, "not-a-number", ""))
	assert.Equal(t, DefaultLogRetentionDays, svc.GetLogRetentionDays())

	// 非正数的保留天数回落默认值
	svc.ClearCache()
	require.NoError(t, svc.SetConfig(ConfigKeyLogRetentionDays, "-5", ""))
	assert.Equal(t, DefaultLogRetentionDays, svc.GetLogRetentionDays())
}

func TestConfigService_ListConfigs(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	svc := NewConfigService(tdb.DB)

	require.NoError(t, svc.SetConfig(ConfigKeyErrorPenalty, "12", ""))

	items, err := svc.ListConfigs()
	require.NoError(t, err)
	// 数据库中的一条加上默认值补齐的其余键
	require.Len(t, items, len(defaultValues))

	byKey := make(map[string]models.SystemConfigItem)
	for _, item := range items {
		byKey[item.Key] = item
	}
	assert.Equal(t, "12", byKey[ConfigKeyErrorPenalty].Value)
	assert.Equal(t, "5", byKey[ConfigKeyWarningPenalty].Value)
	assert.NotEmpty(t, byKey[ConfigKeyWarningPenalty].Description)
}
