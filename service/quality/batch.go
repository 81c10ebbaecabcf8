/*
 * @module service/quality/batch
 * @description 批量评估：固定大小工作池按共享规则快照并发评估一批商品
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/quality_engine_req.md
 * @stateFlow 取一次规则快照 -> 派发商品 ID -> 工作协程评估 -> 结果通道 -> 调用方消费
 * @rules 单个商品失败不中断整批；ctx 取消后不再派发新商品，已开始的评估跑完
 * @dependencies
 * @refs engine.go, scope.go
 */

package quality

import (
	"context"
	"fmt"
	"sync"
)

// BatchItem 批量评估中单个商品的结果，Err 与 Report 互斥
type BatchItem struct {
	ProductID string
	Report    *ProductQualityReport
	Err       error
}

// EvaluateBatch 并发评估一批商品
// 整批共享同一份规则快照，评估期间的规则变更不影响本批
// 结果顺序不保证与输入一致，通道在全部商品处理完后关闭
func (e *Engine) EvaluateBatch(ctx context.Context, productIDs []string, concurrency int) (<-chan BatchItem, error) {
	rules, err := e.ruleStore.GetActiveRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("加载规则集失败: %w", err)
	}
	snapshot := NewRuleSnapshot(rules)

	if concurrency <= 0 {
		concurrency = 1
	}
	if concurrency > len(productIDs) && len(productIDs) > 0 {
		concurrency = len(productIDs)
	}

	jobs := make(chan string)
	out := make(chan BatchItem, concurrency)

	// 已出队的商品在脱离取消的上下文里评估：批量取消只停止派发，
	// 进行中的评估跑完并正常产出报告
	evalCtx := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for productID := range jobs {
				report, err := e.evaluateWithSnapshot(evalCtx, productID, snapshot)
				out <- BatchItem{ProductID: productID, Report: report, Err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, productID := range productIDs {
			select {
			case <-ctx.Done():
				return
			case jobs <- productID:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	return out, nil
}
