/*
 * @module service/quality/score_test
 * @description 评分汇总器的单元测试
 * @architecture 测试层
 * @documentReference dev_docs/quality_engine_req.md
 * @stateFlow 构造评估结果列表 -> 汇总 -> 断言分数与各级别计数
 * @rules 覆盖边界截断、顺序无关性与空结果满分
 * @dependencies testing, github.com/stretchr/testify/assert
 * @refs score.go
 */

package quality

import (
	"testing"

	"github.com/demetrio-freitas/pim-sub000/service/models"
	"github.com/stretchr/testify/assert"
)

func failedResult(severity string) QualityValidationResult {
	return QualityValidationResult{Passed: false, Severity: severity}
}

func passedResult(severity string) QualityValidationResult {
	return QualityValidationResult{Passed: true, Severity: severity}
}

func TestAggregateScore(t *testing.T) {
	cfg := DefaultEngineConfig()

	tests := []struct {
		name        string
		results     []QualityValidationResult
		wantScore   int
		wantErrors  int
		wantWarns   int
		wantInfos   int
	}{
		{"无结果满分", nil, 100, 0, 0, 0},
		{"全部通过满分", []QualityValidationResult{
			passedResult(models.SeverityError),
			passedResult(models.SeverityWarning),
		}, 100, 0, 0, 0},
		{"一错一警", []QualityValidationResult{
			passedResult(models.SeverityError),
			failedResult(models.SeverityWarning),
			failedResult(models.SeverityError),
		}, 85, 1, 1, 0},
		{"INFO 失败不扣分但计数", []QualityValidationResult{
			failedResult(models.SeverityInfo),
		}, 100, 0, 0, 1},
		{"大量失败时截断到零", []QualityValidationResult{
			failedResult(models.SeverityError), failedResult(models.SeverityError),
			failedResult(models.SeverityError), failedResult(models.SeverityError),
			failedResult(models.SeverityError), failedResult(models.SeverityError),
			failedResult(models.SeverityError), failedResult(models.SeverityError),
			failedResult(models.SeverityError), failedResult(models.SeverityError),
			failedResult(models.SeverityError),
		}, 0, 11, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, errs, warns, infos := AggregateScore(tt.results, cfg)
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantErrors, errs)
			assert.Equal(t, tt.wantWarns, warns)
			assert.Equal(t, tt.wantInfos, infos)
		})
	}
}

func TestAggregateScore_OrderIndependent(t *testing.T) {
	cfg := DefaultEngineConfig()
	a := []QualityValidationResult{
		failedResult(models.SeverityError),
		failedResult(models.SeverityWarning),
		failedResult(models.SeverityInfo),
	}
	b := []QualityValidationResult{a[2], a[0], a[1]}

	scoreA, _, _, _ := AggregateScore(a, cfg)
	scoreB, _, _, _ := AggregateScore(b, cfg)
	assert.Equal(t, scoreA, scoreB)
}

func TestAggregateScore_CustomPenalties(t *testing.T) {
	cfg := EngineConfig{ErrorPenalty: 20, WarningPenalty: 3}
	score, _, _, _ := AggregateScore([]QualityValidationResult{
		failedResult(models.SeverityError),
		failedResult(models.SeverityWarning),
		failedResult(models.SeverityWarning),
	}, cfg)
	assert.Equal(t, 100-20-3-3, score)
}
