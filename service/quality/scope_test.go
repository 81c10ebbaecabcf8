/*
 * @module service/quality/scope_test
 * @description 规则集快照与作用域解析的单元测试
 * @architecture 测试层
 * @documentReference dev_docs/quality_engine_req.md
 * @stateFlow 构造规则集与商品 -> 快照排序 -> 作用域解析 -> 断言适用子集与顺序
 * @rules 覆盖排序确定性、各轴 AND 语义与空轴不限语义
 * @dependencies testing, github.com/stretchr/testify/assert
 * @refs scope.go
 */

package quality

import (
	"testing"

	"github.com/demetrio-freitas/pim-sub000/service/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scopedRule(code string, position int, categoryID, familyID, channelID string) models.QualityRule {
	attr := "name"
	rule := models.QualityRule{
		Code:          code,
		Name:          code,
		Type:          models.RuleTypeRequired,
		Severity:      models.SeverityError,
		AttributeCode: &attr,
		IsActive:      true,
		Position:      position,
	}
	if categoryID != "" {
		rule.CategoryID = &categoryID
	}
	if familyID != "" {
		rule.FamilyID = &familyID
	}
	if channelID != "" {
		rule.ChannelID = &channelID
	}
	return rule
}

func ruleCodes(rules []models.QualityRule) []string {
	codes := make([]string, 0, len(rules))
	for _, r := range rules {
		codes = append(codes, r.Code)
	}
	return codes
}

func TestNewRuleSnapshot_OrderAndFilter(t *testing.T) {
	rules := []models.QualityRule{
		scopedRule("b_rule", 20, "", "", ""),
		scopedRule("z_rule", 10, "", "", ""),
		scopedRule("a_rule", 20, "", "", ""),
	}
	disabled := scopedRule("disabled_rule", 5, "", "", "")
	disabled.IsActive = false
	rules = append(rules, disabled)

	snapshot := NewRuleSnapshot(rules)

	// position 升序，同 position 按 code 升序；停用规则被剔除
	assert.Equal(t, []string{"z_rule", "a_rule", "b_rule"}, ruleCodes(snapshot.Rules()))
}

func TestRuleSnapshot_ApplicableTo_ScopeAxes(t *testing.T) {
	catA, famX, chWeb := "cat-a", "fam-x", "ch-web"
	product := &ProductData{
		ID:         "p1",
		CategoryID: &catA,
		FamilyID:   &famX,
		ChannelID:  &chWeb,
	}

	tests := []struct {
		name       string
		rule       models.QualityRule
		applicable bool
	}{
		{"全轴不限的规则适用", scopedRule("global", 10, "", "", ""), true},
		{"分类一致的规则适用", scopedRule("cat_match", 10, "cat-a", "", ""), true},
		{"分类不一致的规则不适用", scopedRule("cat_miss", 10, "cat-b", "", ""), false},
		{"三轴全一致的规则适用", scopedRule("all_match", 10, "cat-a", "fam-x", "ch-web"), true},
		{"一轴不一致即不适用", scopedRule("one_miss", 10, "cat-a", "fam-y", "ch-web"), false},
		{"仅渠道一致的规则适用", scopedRule("ch_match", 10, "", "", "ch-web"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot := NewRuleSnapshot([]models.QualityRule{tt.rule})
			applicable := snapshot.ApplicableTo(product)
			if tt.applicable {
				assert.Len(t, applicable, 1)
			} else {
				assert.Empty(t, applicable)
			}
		})
	}
}

func TestRuleSnapshot_ApplicableTo_ProductWithoutScope(t *testing.T) {
	// 没有分类/族/渠道的商品只匹配该轴不限的规则
	product := &ProductData{ID: "p1"}

	snapshot := NewRuleSnapshot([]models.QualityRule{
		scopedRule("global", 10, "", "", ""),
		scopedRule("cat_scoped", 20, "cat-a", "", ""),
	})

	applicable := snapshot.ApplicableTo(product)
	require.Len(t, applicable, 1)
	assert.Equal(t, "global", applicable[0].Code)
}

func TestRuleSnapshot_ApplicableTo_PreservesOrder(t *testing.T) {
	catA := "cat-a"
	product := &ProductData{ID: "p1", CategoryID: &catA}

	snapshot := NewRuleSnapshot([]models.QualityRule{
		scopedRule("third", 30, "", "", ""),
		scopedRule("first", 10, "cat-a", "", ""),
		scopedRule("second", 20, "", "", ""),
		scopedRule("excluded", 15, "cat-b", "", ""),
	})

	applicable := snapshot.ApplicableTo(product)
	assert.Equal(t, []string{"first", "second", "third"}, ruleCodes(applicable))
}

func TestRuleSnapshot_AttributeCodeNotPartOfScope(t *testing.T) {
	// 属性缺失的商品依然要被属性级规则评估，attribute_code 不参与作用域判定
	product := &ProductData{ID: "p1", Attributes: map[string]AttributeValue{}}

	rule := scopedRule("attr_rule", 10, "", "", "")
	attr := "description"
	rule.AttributeCode = &attr

	snapshot := NewRuleSnapshot([]models.QualityRule{rule})
	assert.Len(t, snapshot.ApplicableTo(product), 1)
}
