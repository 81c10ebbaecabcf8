/*
 * @module service/quality/batch_test
 * @description 批量评估并发执行的单元测试
 * @architecture 测试层
 * @documentReference dev_docs/quality_engine_req.md
 * @stateFlow 内存商品集 -> 批量评估 -> 消费结果通道 -> 断言条数与错误隔离
 * @rules 单个商品的 Provider 失败只影响该商品条目，批次整体继续
 * @dependencies testing, github.com/stretchr/testify/assert
 * @refs batch.go
 */

package quality

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/demetrio-freitas/pim-sub000/service/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batchProducts(n int) []*ProductData {
	products := make([]*ProductData, 0, n)
	for i := 0; i < n; i++ {
		products = append(products, &ProductData{
			ID:   fmt.Sprintf("p%d", i),
			SKU:  fmt.Sprintf("SKU-%03d", i),
			Name: fmt.Sprintf("商品 %d", i),
			Attributes: map[string]AttributeValue{
				"name": TextValue(fmt.Sprintf("商品 %d", i)),
			},
			ImageCount: 1,
		})
	}
	return products
}

func TestEvaluateBatch_AllProducts(t *testing.T) {
	products := batchProducts(10)
	rules := []models.QualityRule{
		engineRule("name_required", models.RuleTypeRequired, models.SeverityError, "name", 10, nil),
	}
	engine := newTestEngine(rules, products...)

	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}

	out, err := engine.EvaluateBatch(context.Background(), ids, 3)
	require.NoError(t, err)

	received := make(map[string]BatchItem)
	for item := range out {
		received[item.ProductID] = item
	}

	require.Len(t, received, 10)
	for _, id := range ids {
		item, ok := received[id]
		require.True(t, ok, "缺少商品 %s 的结果", id)
		assert.NoError(t, item.Err)
		require.NotNil(t, item.Report)
		assert.Equal(t, 100, item.Report.OverallScore)
	}
}

func TestEvaluateBatch_ProviderErrorIsolated(t *testing.T) {
	products := batchProducts(3)
	engine := newTestEngine(widgetRules(), products...)

	ids := []string{"p0", "ghost", "p2"}
	out, err := engine.EvaluateBatch(context.Background(), ids, 2)
	require.NoError(t, err)

	var okCount, failCount int
	for item := range out {
		if item.Err != nil {
			failCount++
			var provErr *ProviderError
			assert.True(t, errors.As(item.Err, &provErr))
			assert.Equal(t, "ghost", item.ProductID)
			assert.Nil(t, item.Report)
		} else {
			okCount++
		}
	}

	assert.Equal(t, 2, okCount)
	assert.Equal(t, 1, failCount)
}

func TestEvaluateBatch_ConcurrencyClamped(t *testing.T) {
	products := batchProducts(2)
	engine := newTestEngine(nil, products...)

	// 非法并发度被钳制，不会发生 panic 或死锁
	out, err := engine.EvaluateBatch(context.Background(), []string{"p0", "p1"}, 0)
	require.NoError(t, err)

	count := 0
	for range out {
		count++
	}
	assert.Equal(t, 2, count)
}

func TestEvaluateBatch_EmptyInput(t *testing.T) {
	engine := newTestEngine(nil)

	out, err := engine.EvaluateBatch(context.Background(), nil, 4)
	require.NoError(t, err)

	count := 0
	for range out {
		count++
	}
	assert.Equal(t, 0, count)
}

func TestEvaluateBatch_RuleStoreError(t *testing.T) {
	engine := NewEngine(DefaultEngineConfig(),
		&memoryRuleStore{err: fmt.Errorf("数据库不可用")},
		&memoryProvider{})

	_, err := engine.EvaluateBatch(context.Background(), []string{"p0"}, 2)
	assert.Error(t, err)
}

// slowProvider 固定延迟的商品提供方，延迟期间响应 ctx 取消
type slowProvider struct {
	inner *memoryProvider
	delay time.Duration
}

func (p *slowProvider) GetProduct(ctx context.Context, productID string) (*ProductData, error) {
	select {
	case <-time.After(p.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return p.inner.GetProduct(ctx, productID)
}

func TestEvaluateBatch_CancelLetsInFlightFinish(t *testing.T) {
	product := batchProducts(1)[0]
	provider := &slowProvider{
		inner: &memoryProvider{products: map[string]*ProductData{product.ID: product}},
		delay: 200 * time.Millisecond,
	}
	engine := NewEngine(DefaultEngineConfig(), &memoryRuleStore{}, provider)

	ctx, cancel := context.WithCancel(context.Background())
	out, err := engine.EvaluateBatch(ctx, []string{product.ID}, 1)
	require.NoError(t, err)

	// 商品已被工作协程取走后才取消整批
	time.Sleep(50 * time.Millisecond)
	cancel()

	item, ok := <-out
	require.True(t, ok)
	require.NoError(t, item.Err)
	require.NotNil(t, item.Report)
	assert.Equal(t, product.ID, item.Report.ProductID)
	assert.Equal(t, 100, item.Report.OverallScore)
}

func TestEvaluateBatch_ContextCancellation(t *testing.T) {
	products := batchProducts(50)
	engine := newTestEngine(nil, products...)

	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}

	ctx, cancel := context.WithCancel(context.Background())
	out, err := engine.EvaluateBatch(ctx, ids, 1)
	require.NoError(t, err)

	// 取消后通道最终关闭，不会有 goroutine 永久阻塞
	cancel()
	count := 0
	for range out {
		count++
	}
	assert.LessOrEqual(t, count, len(ids))
}
