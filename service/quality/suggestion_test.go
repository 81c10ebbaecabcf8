/*
 * @module service/quality/suggestion_test
 * @description 改进建议生成器的单元测试
 * @architecture 测试层
 * @documentReference dev_docs/quality_engine_req.md
 * @stateFlow 构造规则与评估结果 -> 生成建议 -> 断言类型、优先级与排序
 * @rules 已通过的规则不产生建议，必填缺失优先级最高，无图商品追加启发式建议
 * @dependencies testing, github.com/stretchr/testify/assert
 * @refs suggestion.go
 */

package quality

import (
	"testing"

	"github.com/demetrio-freitas/pim-sub000/service/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func suggestionRule(code, ruleType, severity, attr string, position int) models.QualityRule {
	rule := models.QualityRule{
		Code:     code,
		Name:     code,
		Type:     ruleType,
		Severity: severity,
		Position: position,
	}
	if attr != "" {
		rule.AttributeCode = &attr
	}
	return rule
}

func TestGenerateSuggestions_PassedRulesProduceNothing(t *testing.T) {
	rules := []models.QualityRule{
		suggestionRule("r1", models.RuleTypeRequired, models.SeverityError, "name", 10),
	}
	results := []QualityValidationResult{
		{Passed: true, Severity: models.SeverityError, AttributeCode: "name"},
	}

	suggestions := GenerateSuggestions(rules, results, nil, DefaultEngineConfig())
	assert.Empty(t, suggestions)
}

func TestGenerateSuggestions_PriorityOrdering(t *testing.T) {
	rules := []models.QualityRule{
		suggestionRule("warn_len", models.RuleTypeMinLength, models.SeverityWarning, "description", 10),
		suggestionRule("err_range", models.RuleTypeRange, models.SeverityError, "price", 20),
		suggestionRule("err_required", models.RuleTypeRequired, models.SeverityError, "brand", 30),
	}
	results := []QualityValidationResult{
		{Passed: false, Severity: models.SeverityWarning, AttributeCode: "description"},
		{Passed: false, Severity: models.SeverityError, AttributeCode: "price"},
		{Passed: false, Severity: models.SeverityError, AttributeCode: "brand"},
	}

	suggestions := GenerateSuggestions(rules, results, nil, DefaultEngineConfig())
	require.Len(t, suggestions, 3)

	// 必填缺失优先级 1 排最前，其余 ERROR 其次，WARNING 最后
	assert.Equal(t, SuggestionFillAttribute, suggestions[0].Type)
	assert.Equal(t, "brand", suggestions[0].AttributeCode)
	assert.Equal(t, 1, suggestions[0].Priority)

	assert.Equal(t, "price", suggestions[1].AttributeCode)
	assert.Equal(t, 2, suggestions[1].Priority)

	assert.Equal(t, "description", suggestions[2].AttributeCode)
	assert.Equal(t, 3, suggestions[2].Priority)
}

func TestGenerateSuggestions_ImpactScoreFollowsPenalties(t *testing.T) {
	cfg := EngineConfig{ErrorPenalty: 15, WarningPenalty: 4}
	rules := []models.QualityRule{
		suggestionRule("err", models.RuleTypeRange, models.SeverityError, "price", 10),
		suggestionRule("warn", models.RuleTypeMinLength, models.SeverityWarning, "description", 20),
	}
	results := []QualityValidationResult{
		{Passed: false, Severity: models.SeverityError, AttributeCode: "price"},
		{Passed: false, Severity: models.SeverityWarning, AttributeCode: "description"},
	}

	suggestions := GenerateSuggestions(rules, results, nil, cfg)
	require.Len(t, suggestions, 2)
	assert.Equal(t, 15, suggestions[0].ImpactScore)
	assert.Equal(t, 4, suggestions[1].ImpactScore)
}

func TestGenerateSuggestions_Deduplication(t *testing.T) {
	// 同类型同属性只保留影响分更高的一条
	rules := []models.QualityRule{
		suggestionRule("regex_warn", models.RuleTypeRegex, models.SeverityWarning, "sku", 10),
		suggestionRule("range_err", models.RuleTypeRange, models.SeverityError, "sku", 20),
	}
	results := []QualityValidationResult{
		{Passed: false, Severity: models.SeverityWarning, AttributeCode: "sku"},
		{Passed: false, Severity: models.SeverityError, AttributeCode: "sku"},
	}

	suggestions := GenerateSuggestions(rules, results, nil, DefaultEngineConfig())
	require.Len(t, suggestions, 1)
	assert.Equal(t, SuggestionFixAttribute, suggestions[0].Type)
	assert.Equal(t, DefaultEngineConfig().ErrorPenalty, suggestions[0].ImpactScore)
}

func TestGenerateSuggestions_NoImageHeuristic(t *testing.T) {
	product := &ProductData{ID: "p1", ImageCount: 0}

	suggestions := GenerateSuggestions(nil, nil, product, DefaultEngineConfig())
	require.Len(t, suggestions, 1)
	assert.Equal(t, SuggestionAddImage, suggestions[0].Type)

	// 有图商品不追加
	withImages := &ProductData{ID: "p2", ImageCount: 3}
	assert.Empty(t, GenerateSuggestions(nil, nil, withImages, DefaultEngineConfig()))
}

func TestGenerateSuggestions_MessageContainsAttribute(t *testing.T) {
	rules := []models.QualityRule{
		suggestionRule("req", models.RuleTypeRequired, models.SeverityError, "name", 10),
	}
	results := []QualityValidationResult{
		{Passed: false, Severity: models.SeverityError, AttributeCode: "name"},
	}

	suggestions := GenerateSuggestions(rules, results, nil, DefaultEngineConfig())
	require.Len(t, suggestions, 1)
	assert.Contains(t, suggestions[0].Message, "name")
}
