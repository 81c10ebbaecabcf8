/*
 * @module service/quality/log_writer
 * @description 验证日志写入器：把每次评估的完整结果追加到 quality_validation_logs
 * @architecture 分层架构 - 数据访问层
 * @documentReference dev_docs/quality_engine_req.md
 * @stateFlow 报告 -> 明细快照 JSONB -> 单条插入
 * @rules 只追加不更新；写入失败包装为 *LogWriteError 交由引擎降级处理
 * @dependencies gorm.io/gorm
 * @refs engine.go, service/models/quality_report.go
 */

package quality

import (
	"context"

	"gorm.io/gorm"

	"github.com/demetrio-freitas/pim-sub000/service/models"
)

// ValidationLogWriter 验证日志写入器
type ValidationLogWriter struct {
	db *gorm.DB
}

// NewValidationLogWriter 创建验证日志写入器
func NewValidationLogWriter(db *gorm.DB) *ValidationLogWriter {
	return &ValidationLogWriter{db: db}
}

// Append 追加一条评估日志
func (w *ValidationLogWriter) Append(ctx context.Context, report *ProductQualityReport) error {
	resultDetails := make([]map[string]interface{}, 0, len(report.Results))
	for _, r := range report.Results {
		detail := map[string]interface{}{
			"rule_id":   r.RuleID,
			"rule_code": r.RuleCode,
			"rule_name": r.RuleName,
			"passed":    r.Passed,
			"severity":  r.Severity,
		}
		if !r.Passed {
			detail["message"] = r.Message
		}
		if r.AttributeCode != "" {
			detail["attribute_code"] = r.AttributeCode
			detail["current_value"] = r.CurrentValue
		}
		resultDetails = append(resultDetails, detail)
	}

	suggestionDetails := make([]map[string]interface{}, 0, len(report.Suggestions))
	for _, s := range report.Suggestions {
		suggestionDetails = append(suggestionDetails, map[string]interface{}{
			"type":           s.Type,
			"priority":       s.Priority,
			"message":        s.Message,
			"attribute_code": s.AttributeCode,
			"impact_score":   s.ImpactScore,
		})
	}

	entry := &models.QualityValidationLog{
		ProductID:    report.ProductID,
		SKU:          report.SKU,
		OverallScore: report.OverallScore,
		ErrorCount:   report.ErrorCount,
		WarningCount: report.WarningCount,
		InfoCount:    report.InfoCount,
		Detail: models.JSONB{
			"results":     resultDetails,
			"suggestions": suggestionDetails,
		},
		EvaluatedAt: report.EvaluatedAt,
	}

	if err := w.db.WithContext(ctx).Create(entry).Error; err != nil {
		return &LogWriteError{Cause: err}
	}
	return nil
}
