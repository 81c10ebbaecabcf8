/*
 * @module service/quality/score
 * @description 评分汇总器：按严重级别统计失败数并计算 0-100 总分
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/quality_engine_req.md
 * @stateFlow 评估结果列表 -> 按严重级别计数 -> 固定权重扣分 -> 截断到 [0,100]
 * @rules 扣分权重为引擎级配置，汇总满足结合律且与结果顺序无关；无适用规则的商品得 100 分
 * @dependencies github.com/demetrio-freitas/pim-sub000/service/models
 * @refs engine.go, suggestion.go
 */

package quality

import "github.com/demetrio-freitas/pim-sub000/service/models"

// AggregateScore 汇总评估结果
// 从 100 起算：每条失败的 ERROR 扣 ErrorPenalty，失败的 WARNING 扣
// WarningPenalty，INFO 不扣分，最终截断到 [0, 100]
func AggregateScore(results []QualityValidationResult, cfg EngineConfig) (score, errorCount, warningCount, infoCount int) {
	for _, r := range results {
		if r.Passed {
			continue
		}
		switch r.Severity {
		case models.SeverityError:
			errorCount++
		case models.SeverityWarning:
			warningCount++
		case models.SeverityInfo:
			infoCount++
		}
	}

	score = 100 - errorCount*cfg.ErrorPenalty - warningCount*cfg.WarningPenalty
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, errorCount, warningCount, infoCount
}
