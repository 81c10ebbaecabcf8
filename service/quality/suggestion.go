/*
 * @module service/quality/suggestion
 * @description 改进建议生成器：从失败结果与商品原始数据推导出带优先级的可执行建议
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/quality_engine_req.md
 * @stateFlow 失败结果 -> 模板映射 -> 去重 -> 优先级/影响分排序
 * @rules 已通过的规则绝不产生建议；优先级由严重级别推导，影响分沿用评分扣分权重
 * @dependencies github.com/demetrio-freitas/pim-sub000/service/models
 * @refs score.go, engine.go
 */

package quality

import (
	"fmt"
	"sort"

	"github.com/demetrio-freitas/pim-sub000/service/models"
)

// suggestionTemplate 按规则类型的建议模板
type suggestionTemplate struct {
	Type    string
	Message string // 含一个 %s 占位属性编码
}

var suggestionTemplates = map[string]suggestionTemplate{
	models.RuleTypeRequired:     {SuggestionFillAttribute, "请填写属性 %s"},
	models.RuleTypeMinLength:    {SuggestionImproveDescription, "请补充属性 %s 的内容至要求长度"},
	models.RuleTypeMaxLength:    {SuggestionFixAttribute, "请精简属性 %s 的内容至允许长度"},
	models.RuleTypeRegex:        {SuggestionFixAttribute, "请修正属性 %s 的值以匹配要求的模式"},
	models.RuleTypeRange:        {SuggestionFixAttribute, "请将属性 %s 的值调整到允许范围内"},
	models.RuleTypeEnum:         {SuggestionFixAttribute, "请从允许的值列表中选择属性 %s 的值"},
	models.RuleTypeUnique:       {SuggestionResolveConflict, "属性 %s 的值与其他商品重复，请修改"},
	models.RuleTypeFormat:       {SuggestionFixAttribute, "请按要求的格式修正属性 %s 的值"},
	models.RuleTypeRelationship: {SuggestionResolveConflict, "请检查属性 %s 与关联属性之间的约束"},
	models.RuleTypeCustom:       {SuggestionFixAttribute, "请根据自定义规则修正属性 %s"},
}

// suggestionCandidate 排序用的中间结构
type suggestionCandidate struct {
	suggestion QualitySuggestion
	position   int
}

// GenerateSuggestions 从评估结果生成建议列表
// rules 与 results 按下标一一对应（同为作用域解析后的顺序）；
// product 可为 nil，非 nil 时追加无法用规则表达的启发式建议
func GenerateSuggestions(rules []models.QualityRule, results []QualityValidationResult, product *ProductData, cfg EngineConfig) []QualitySuggestion {
	candidates := make([]suggestionCandidate, 0, len(results))
	seen := make(map[string]int) // 去重键 -> candidates 下标

	for i, result := range results {
		if result.Passed || i >= len(rules) {
			continue
		}
		rule := rules[i]

		template, ok := suggestionTemplates[rule.Type]
		if !ok {
			continue
		}

		message := template.Message
		if result.AttributeCode != "" {
			message = fmt.Sprintf(template.Message, result.AttributeCode)
		} else {
			message = fmt.Sprintf(template.Message, rule.Name)
		}

		candidate := suggestionCandidate{
			suggestion: QualitySuggestion{
				Type:          template.Type,
				Priority:      suggestionPriority(rule.Type, result.Severity, result.AttributeCode != ""),
				Message:       message,
				AttributeCode: result.AttributeCode,
				ImpactScore:   impactScore(result.Severity, cfg),
			},
			position: rule.Position,
		}

		// 同类型同属性只保留影响分更高的一条
		key := candidate.suggestion.Type + "\x00" + candidate.suggestion.AttributeCode
		if idx, dup := seen[key]; dup {
			if candidate.suggestion.ImpactScore > candidates[idx].suggestion.ImpactScore {
				candidates[idx] = candidate
			}
			continue
		}
		seen[key] = len(candidates)
		candidates = append(candidates, candidate)
	}

	if product != nil {
		candidates = append(candidates, heuristicSuggestions(product, seen)...)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.suggestion.Priority != b.suggestion.Priority {
			return a.suggestion.Priority < b.suggestion.Priority
		}
		if a.suggestion.ImpactScore != b.suggestion.ImpactScore {
			return a.suggestion.ImpactScore > b.suggestion.ImpactScore
		}
		return a.position < b.position
	})

	suggestions := make([]QualitySuggestion, 0, len(candidates))
	for _, c := range candidates {
		suggestions = append(suggestions, c.suggestion)
	}
	return suggestions
}

// suggestionPriority 严重级别到优先级的映射
// ERROR -> 1（必填缺失）或 2，WARNING -> 3，INFO -> 4（属性级）或 5
func suggestionPriority(ruleType, severity string, hasAttribute bool) int {
	switch severity {
	case models.SeverityError:
		if ruleType == models.RuleTypeRequired {
			return 1
		}
		return 2
	case models.SeverityWarning:
		return 3
	default:
		if hasAttribute {
			return 4
		}
		return 5
	}
}

// impactScore 修复单条规则的预估得分提升，与评分权重一致
func impactScore(severity string, cfg EngineConfig) int {
	switch severity {
	case models.SeverityError:
		return cfg.ErrorPenalty
	case models.SeverityWarning:
		return cfg.WarningPenalty
	default:
		return 0
	}
}

// heuristicSuggestions 规则无法表达的启发式建议
func heuristicSuggestions(product *ProductData, seen map[string]int) []suggestionCandidate {
	var out []suggestionCandidate

	if product.ImageCount == 0 {
		key := SuggestionAddImage + "\x00"
		if _, dup := seen[key]; !dup {
			out = append(out, suggestionCandidate{
				suggestion: QualitySuggestion{
					Type:     SuggestionAddImage,
					Priority: 2,
					Message:  "商品没有任何图片，请至少上传一张主图",
				},
			})
		}
	}

	return out
}
