/*
 * @module service/quality/scope
 * @description 规则集快照与作用域解析：为单个商品筛选适用规则
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/quality_engine_req.md
 * @stateFlow 批次开始时快照规则集 -> 按商品解析适用子集 -> 顺序评估
 * @rules 作用域各轴取 AND 语义；结果按 position 升序、code 升序保证可复现
 * @dependencies github.com/demetrio-freitas/pim-sub000/service/models
 * @refs engine.go, batch.go
 */

package quality

import (
	"sort"

	"github.com/demetrio-freitas/pim-sub000/service/models"
)

// RuleSnapshot 规则集快照
// 批次开始时构建一次，之后只读；配置端的并发变更不影响进行中的批次
type RuleSnapshot struct {
	rules []models.QualityRule
}

// NewRuleSnapshot 构建快照：剔除停用规则并排序
func NewRuleSnapshot(rules []models.QualityRule) *RuleSnapshot {
	active := make([]models.QualityRule, 0, len(rules))
	for _, r := range rules {
		if r.IsActive {
			active = append(active, r)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		if active[i].Position != active[j].Position {
			return active[i].Position < active[j].Position
		}
		return active[i].Code < active[j].Code
	})

	return &RuleSnapshot{rules: active}
}

// Rules 快照内全部规则（已排序）
func (s *RuleSnapshot) Rules() []models.QualityRule {
	return s.rules
}

// ApplicableTo 解析对指定商品适用的规则子集，保持快照顺序
// 规则的每个非空作用域轴都必须与商品一致才适用；attribute_code 不参与
// 作用域判定——属性缺失的商品依然要被属性级规则评估
func (s *RuleSnapshot) ApplicableTo(product *ProductData) []models.QualityRule {
	applicable := make([]models.QualityRule, 0, len(s.rules))
	for _, rule := range s.rules {
		if !scopeMatches(rule.CategoryID, product.CategoryID) {
			continue
		}
		if !scopeMatches(rule.FamilyID, product.FamilyID) {
			continue
		}
		if !scopeMatches(rule.ChannelID, product.ChannelID) {
			continue
		}
		applicable = append(applicable, rule)
	}
	return applicable
}

// scopeMatches 单轴匹配：规则侧为空表示该轴不限
func scopeMatches(ruleValue, productValue *string) bool {
	if ruleValue == nil || *ruleValue == "" {
		return true
	}
	return productValue != nil && *productValue == *ruleValue
}
