/*
 * @module service/quality/params
 * @description 规则参数的强类型解析：按规则类型把 JSONB 参数解析为带标签的参数记录
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/quality_engine_req.md
 * @stateFlow 规则创建时校验 -> 评估前解析一次 -> 评估器直接使用类型化参数
 * @rules 参数结构不合法必须返回 ConfigurationError，引擎不得假设存储的参数可信
 * @dependencies github.com/spf13/cast
 * @refs evaluators.go, store.go
 */

package quality

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/demetrio-freitas/pim-sub000/service/models"
	"github.com/spf13/cast"
)

// 属性间关系
const (
	RelationEquals      = "equals"
	RelationNotEquals   = "not_equals"
	RelationGreaterThan = "greater_than"
	RelationRequires    = "requires"
)

// MinLengthParams MIN_LENGTH 参数
type MinLengthParams struct {
	Min int
}

// MaxLengthParams MAX_LENGTH 参数
type MaxLengthParams struct {
	Max int
}

// RegexParams REGEX 参数，pattern 在解析时整体锚定编译
type RegexParams struct {
	Pattern string
	re      *regexp.Regexp
}

// Match 对值做全量匹配
func (p *RegexParams) Match(s string) bool {
	return p.re.MatchString(s)
}

// RangeParams RANGE 参数，闭区间
type RangeParams struct {
	Min float64
	Max float64
}

// EnumParams ENUM 参数
type EnumParams struct {
	Values []string
}

// Contains 判断成员归属
func (p *EnumParams) Contains(s string) bool {
	for _, v := range p.Values {
		if v == s {
			return true
		}
	}
	return false
}

// FormatParams FORMAT 参数
type FormatParams struct {
	Name string
}

// RelationshipParams RELATIONSHIP 参数
type RelationshipParams struct {
	OtherAttribute string
	Relation       string
}

// CustomParams CUSTOM 参数
type CustomParams struct {
	ScriptRef string
}

// RuleParams 带标签的规则参数变体，按规则类型恰有一个分支非空
// REQUIRED 和 UNIQUE 无参数，所有分支为空
type RuleParams struct {
	MinLength    *MinLengthParams
	MaxLength    *MaxLengthParams
	Regex        *RegexParams
	Range        *RangeParams
	Enum         *EnumParams
	Format       *FormatParams
	Relationship *RelationshipParams
	Custom       *CustomParams
	Raw          map[string]interface{} // 原始参数，CUSTOM 执行时透传
}

// ParseRuleParams 按规则类型解析并校验参数
// 失败返回 *ConfigurationError
func ParseRuleParams(rule *models.QualityRule) (*RuleParams, error) {
	raw := map[string]interface{}(rule.Parameters)
	params := &RuleParams{Raw: raw}
	confErr := func(format string, args ...interface{}) error {
		return &ConfigurationError{RuleCode: rule.Code, Reason: fmt.Sprintf(format, args...)}
	}

	switch rule.Type {
	case models.RuleTypeRequired, models.RuleTypeUnique:
		// 无参数

	case models.RuleTypeMinLength:
		min, err := intParam(raw, "min")
		if err != nil {
			return nil, confErr("min 参数无效: %v", err)
		}
		if min < 0 {
			return nil, confErr("min 不能为负数")
		}
		params.MinLength = &MinLengthParams{Min: min}

	case models.RuleTypeMaxLength:
		max, err := intParam(raw, "max")
		if err != nil {
			return nil, confErr("max 参数无效: %v", err)
		}
		if max < 0 {
			return nil, confErr("max 不能为负数")
		}
		params.MaxLength = &MaxLengthParams{Max: max}

	case models.RuleTypeRegex:
		pattern, err := stringParam(raw, "pattern")
		if err != nil {
			return nil, confErr("pattern 参数无效: %v", err)
		}
		re, err := regexp.Compile("^(?:" + pattern + ")$")
		if err != nil {
			return nil, confErr("pattern 编译失败: %v", err)
		}
		params.Regex = &RegexParams{Pattern: pattern, re: re}

	case models.RuleTypeRange:
		min, err := floatParam(raw, "min")
		if err != nil {
			return nil, confErr("min 参数无效: %v", err)
		}
		max, err := floatParam(raw, "max")
		if err != nil {
			return nil, confErr("max 参数无效: %v", err)
		}
		if min > max {
			return nil, confErr("min 不能大于 max")
		}
		params.Range = &RangeParams{Min: min, Max: max}

	case models.RuleTypeEnum:
		values, err := stringSliceParam(raw, "values")
		if err != nil {
			return nil, confErr("values 参数无效: %v", err)
		}
		if len(values) == 0 {
			return nil, confErr("values 不能为空")
		}
		params.Enum = &EnumParams{Values: values}

	case models.RuleTypeFormat:
		name, err := stringParam(raw, "format")
		if err != nil {
			return nil, confErr("format 参数无效: %v", err)
		}
		if _, ok := LookupFormat(name); !ok {
			return nil, confErr("未注册的格式校验器: %s", name)
		}
		params.Format = &FormatParams{Name: name}

	case models.RuleTypeRelationship:
		other, err := stringParam(raw, "otherAttribute")
		if err != nil {
			return nil, confErr("otherAttribute 参数无效: %v", err)
		}
		relation, err := stringParam(raw, "relation")
		if err != nil {
			return nil, confErr("relation 参数无效: %v", err)
		}
		switch relation {
		case RelationEquals, RelationNotEquals, RelationGreaterThan, RelationRequires:
		default:
			return nil, confErr("不支持的关系类型: %s", relation)
		}
		params.Relationship = &RelationshipParams{OtherAttribute: other, Relation: relation}

	case models.RuleTypeCustom:
		script, err := stringParam(raw, "script")
		if err != nil {
			return nil, confErr("script 参数无效: %v", err)
		}
		params.Custom = &CustomParams{ScriptRef: script}

	default:
		return nil, confErr("未知的规则类型: %s", rule.Type)
	}

	// 指向属性的规则类型必须带属性编码
	switch rule.Type {
	case models.RuleTypeCustom:
		// CUSTOM 允许整品规则
	default:
		if !rule.TargetsAttribute() {
			return nil, confErr("规则类型 %s 必须指定目标属性", rule.Type)
		}
	}

	return params, nil
}

// ValidateRuleConfig 规则创建/更新时的配置校验
// 管理端在落库前调用，评估端仍会防御性重验
func ValidateRuleConfig(rule *models.QualityRule) error {
	if strings.TrimSpace(rule.Code) == "" {
		return &ConfigurationError{RuleCode: rule.Code, Reason: "code 不能为空"}
	}
	if strings.TrimSpace(rule.Name) == "" {
		return &ConfigurationError{RuleCode: rule.Code, Reason: "name 不能为空"}
	}

	validType := false
	for _, t := range models.RuleTypes {
		if rule.Type == t {
			validType = true
			break
		}
	}
	if !validType {
		return &ConfigurationError{RuleCode: rule.Code, Reason: fmt.Sprintf("未知的规则类型: %s", rule.Type)}
	}

	validSeverity := false
	for _, s := range models.Severities {
		if rule.Severity == s {
			validSeverity = true
			break
		}
	}
	if !validSeverity {
		return &ConfigurationError{RuleCode: rule.Code, Reason: fmt.Sprintf("未知的严重级别: %s", rule.Severity)}
	}

	_, err := ParseRuleParams(rule)
	return err
}

func stringParam(raw map[string]interface{}, key string) (string, error) {
	v, ok := raw[key]
	if !ok {
		return "", fmt.Errorf("缺少 %s", key)
	}
	s, err := cast.ToStringE(v)
	if err != nil || strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%s 必须是非空字符串", key)
	}
	return s, nil
}

func intParam(raw map[string]interface{}, key string) (int, error) {
	v, ok := raw[key]
	if !ok {
		return 0, fmt.Errorf("缺少 %s", key)
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, fmt.Errorf("%s 必须是整数", key)
	}
	return n, nil
}

func floatParam(raw map[string]interface{}, key string) (float64, error) {
	v, ok := raw[key]
	if !ok {
		return 0, fmt.Errorf("缺少 %s", key)
	}
	n, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("%s 必须是数值", key)
	}
	return n, nil
}

func stringSliceParam(raw map[string]interface{}, key string) ([]string, error) {
	v, ok := raw[key]
	if !ok {
		return nil, fmt.Errorf("缺少 %s", key)
	}
	items, err := cast.ToStringSliceE(v)
	if err != nil {
		return nil, fmt.Errorf("%s 必须是字符串数组", key)
	}
	return items, nil
}
