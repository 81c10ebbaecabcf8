/*
 * @module service/quality/types
 * @description 质量引擎公共类型：错误分类、协作者接口、引擎配置与报告结构
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/quality_engine_req.md
 * @stateFlow 规则加载 -> 作用域解析 -> 逐条评估 -> 汇总评分 -> 建议生成 -> 日志落库
 * @rules 单条规则的错误就地恢复为失败结果，Provider 级错误终止该商品评估并上抛
 * @dependencies github.com/demetrio-freitas/pim-sub000/service/models
 * @refs engine.go, score.go, suggestion.go
 */

package quality

import (
	"context"
	"fmt"
	"time"

	"github.com/demetrio-freitas/pim-sub000/service/models"
)

// ConfigurationError 规则参数结构不合法
// 评估时遇到该错误不会中断整份报告，对应规则记为失败的 ERROR 结果
type ConfigurationError struct {
	RuleCode string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("规则 %s 配置错误: %s", e.RuleCode, e.Reason)
}

// EvaluatorExecutionError UNIQUE/CUSTOM 等外部调用失败或超时
type EvaluatorExecutionError struct {
	RuleCode string
	Cause    error
}

func (e *EvaluatorExecutionError) Error() string {
	return fmt.Sprintf("规则 %s 执行失败: %v", e.RuleCode, e.Cause)
}

func (e *EvaluatorExecutionError) Unwrap() error { return e.Cause }

// ProviderError 商品数据提供方无法提供数据，该商品的评估整体失败
type ProviderError struct {
	ProductID string
	Cause     error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("获取商品 %s 数据失败: %v", e.ProductID, e.Cause)
}

func (e *ProviderError) Unwrap() error { return e.Cause }

// LogWriteError 验证日志写入失败，不影响已生成的报告
type LogWriteError struct {
	Cause error
}

func (e *LogWriteError) Error() string {
	return fmt.Sprintf("验证日志写入失败: %v", e.Cause)
}

func (e *LogWriteError) Unwrap() error { return e.Cause }

// RuleScope 唯一性检查的作用域限定
type RuleScope struct {
	CategoryID *string
	FamilyID   *string
	ChannelID  *string
}

// ProductProvider 商品数据提供方
// 必须能无歧义地回答"属性 X 取值 V"或"属性 X 缺失"
type ProductProvider interface {
	GetProduct(ctx context.Context, productID string) (*ProductData, error)
}

// UniquenessChecker 唯一性检查协作者（UNIQUE 规则使用）
type UniquenessChecker interface {
	Exists(ctx context.Context, attributeCode, value, excludeProductID string, scope RuleScope) (bool, error)
}

// CustomRuleExecutor 自定义规则执行器（CUSTOM 规则使用）
// 引擎只约定输入输出契约，不关心脚本运行时
type CustomRuleExecutor interface {
	Execute(ctx context.Context, scriptRef string, product *ProductData, params map[string]interface{}) (bool, string, error)
}

// RuleStore 规则存储的只读访问
type RuleStore interface {
	GetActiveRules(ctx context.Context) ([]models.QualityRule, error)
}

// EngineConfig 引擎配置
// 扣分权重是引擎级常量而非规则级，保证评分可解释且与评估顺序无关
type EngineConfig struct {
	ErrorPenalty     int           // 每条失败的 ERROR 规则扣分
	WarningPenalty   int           // 每条失败的 WARNING 规则扣分，须小于 ErrorPenalty
	EvaluatorTimeout time.Duration // UNIQUE/CUSTOM 外部调用超时
}

// DefaultEngineConfig 默认引擎配置
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		ErrorPenalty:     10,
		WarningPenalty:   5,
		EvaluatorTimeout: 5 * time.Second,
	}
}

// QualityValidationResult 单条规则对单个商品的评估结果
type QualityValidationResult struct {
	RuleID        string      `json:"rule_id"`
	RuleCode      string      `json:"rule_code"`
	RuleName      string      `json:"rule_name"`
	Passed        bool        `json:"passed"`
	Severity      string      `json:"severity"` // 评估时从规则拷贝，之后不再回读
	Message       string      `json:"message,omitempty"`
	AttributeCode string      `json:"attribute_code,omitempty"`
	CurrentValue  interface{} `json:"current_value,omitempty"` // 仅用于诊断展示，引擎不解释
}

// 建议类型
const (
	SuggestionFillAttribute      = "FILL_ATTRIBUTE"
	SuggestionImproveDescription = "IMPROVE_DESCRIPTION"
	SuggestionFixAttribute       = "FIX_ATTRIBUTE"
	SuggestionResolveConflict    = "RESOLVE_CONFLICT"
	SuggestionFixRule            = "FIX_RULE"
	SuggestionAddImage           = "ADD_IMAGE"
)

// QualitySuggestion 改进建议
type QualitySuggestion struct {
	Type          string `json:"type"`
	Priority      int    `json:"priority"` // 1-5，1 最紧急
	Message       string `json:"message"`
	AttributeCode string `json:"attribute_code,omitempty"`
	ImpactScore   int    `json:"impact_score"` // 预估修复后的得分提升
}

// ProductQualityReport 单个商品的一次评估报告
// 值对象：每次评估全新生成，生成后不再修改
type ProductQualityReport struct {
	ProductID    string                    `json:"product_id"`
	SKU          string                    `json:"sku"`
	ProductName  string                    `json:"product_name"`
	OverallScore int                       `json:"overall_score"` // 0-100
	ErrorCount   int                       `json:"error_count"`
	WarningCount int                       `json:"warning_count"`
	InfoCount    int                       `json:"info_count"`
	Results      []QualityValidationResult `json:"results"`
	Suggestions  []QualitySuggestion       `json:"suggestions"`
	EvaluatedAt  time.Time                 `json:"evaluated_at"`
	LogWarning   string                    `json:"log_warning,omitempty"` // 日志写入失败时的软告警
}

// ProductData 商品评估快照
// Provider 组装，评估过程中只读
type ProductData struct {
	ID         string
	SKU        string
	Name       string
	CategoryID *string
	FamilyID   *string
	ChannelID  *string
	Attributes map[string]AttributeValue // 按属性编码索引，缺失属性不出现在 map 中
	ImageCount int
}

// Attribute 按编码取属性值，缺失返回 Absent
func (p *ProductData) Attribute(code string) AttributeValue {
	if v, ok := p.Attributes[code]; ok {
		return v
	}
	return AbsentValue()
}

// Scope 商品自身的作用域标识
func (p *ProductData) Scope() RuleScope {
	return RuleScope{
		CategoryID: p.CategoryID,
		FamilyID:   p.FamilyID,
		ChannelID:  p.ChannelID,
	}
}
