/*
 * @module service/quality/engine
 * @description 评估编排器：对单个商品执行作用域解析、逐条评估、评分、建议与日志落库
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/quality_engine_req.md
 * @stateFlow 取商品快照 -> 取规则快照 -> 逐条评估 -> 汇总评分 -> 生成建议 -> 追加日志
 * @rules 不可评估的规则按未满足处理（失败且强制 ERROR），绝不静默跳过；报告要么完整要么没有
 * @dependencies github.com/demetrio-freitas/pim-sub000/service/models
 * @refs scope.go, evaluators.go, score.go, suggestion.go, log_writer.go
 */

package quality

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/demetrio-freitas/pim-sub000/service/models"
)

// Engine 质量评估引擎
type Engine struct {
	config     EngineConfig
	ruleStore  RuleStore
	provider   ProductProvider
	uniqueness UniquenessChecker
	customExec CustomRuleExecutor
	logWriter  *ValidationLogWriter
}

// NewEngine 创建质量评估引擎实例
func NewEngine(config EngineConfig, ruleStore RuleStore, provider ProductProvider) *Engine {
	if config.ErrorPenalty <= 0 {
		config.ErrorPenalty = DefaultEngineConfig().ErrorPenalty
	}
	if config.WarningPenalty <= 0 || config.WarningPenalty >= config.ErrorPenalty {
		config.WarningPenalty = DefaultEngineConfig().WarningPenalty
	}
	if config.EvaluatorTimeout <= 0 {
		config.EvaluatorTimeout = DefaultEngineConfig().EvaluatorTimeout
	}

	return &Engine{
		config:    config,
		ruleStore: ruleStore,
		provider:  provider,
	}
}

// SetUniquenessChecker 注入唯一性检查协作者
func (e *Engine) SetUniquenessChecker(checker UniquenessChecker) {
	e.uniqueness = checker
}

// SetCustomExecutor 注入自定义规则执行器
func (e *Engine) SetCustomExecutor(executor CustomRuleExecutor) {
	e.customExec = executor
}

// SetLogWriter 注入验证日志写入器
func (e *Engine) SetLogWriter(writer *ValidationLogWriter) {
	e.logWriter = writer
}

// Config 当前引擎配置
func (e *Engine) Config() EngineConfig {
	return e.config
}

// Evaluate 评估单个商品，返回完整质量报告
// Provider 失败时返回 *ProviderError，不产出部分报告
func (e *Engine) Evaluate(ctx context.Context, productID string) (*ProductQualityReport, error) {
	rules, err := e.ruleStore.GetActiveRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("加载规则集失败: %w", err)
	}
	return e.evaluateWithSnapshot(ctx, productID, NewRuleSnapshot(rules))
}

// evaluateWithSnapshot 用给定规则快照评估单个商品（批量评估共享快照）
func (e *Engine) evaluateWithSnapshot(ctx context.Context, productID string, snapshot *RuleSnapshot) (*ProductQualityReport, error) {
	product, err := e.provider.GetProduct(ctx, productID)
	if err != nil {
		evaluationsTotal.WithLabelValues("provider_error").Inc()
		return nil, &ProviderError{ProductID: productID, Cause: err}
	}
	return e.EvaluateProduct(ctx, product, snapshot)
}

// EvaluateProduct 评估已取到快照的商品
func (e *Engine) EvaluateProduct(ctx context.Context, product *ProductData, snapshot *RuleSnapshot) (*ProductQualityReport, error) {
	startTime := time.Now()

	applicable := snapshot.ApplicableTo(product)
	results := make([]QualityValidationResult, 0, len(applicable))
	for i := range applicable {
		result := e.evaluateRule(ctx, &applicable[i], product)
		if !result.Passed {
			ruleFailuresTotal.WithLabelValues(result.Severity).Inc()
		}
		results = append(results, result)
	}

	score, errorCount, warningCount, infoCount := AggregateScore(results, e.config)

	report := &ProductQualityReport{
		ProductID:    product.ID,
		SKU:          product.SKU,
		ProductName:  product.Name,
		OverallScore: score,
		ErrorCount:   errorCount,
		WarningCount: warningCount,
		InfoCount:    infoCount,
		Results:      results,
		Suggestions:  GenerateSuggestions(applicable, results, product, e.config),
		EvaluatedAt:  time.Now(),
	}

	// 日志写入失败只记软告警，绝不影响已生成的报告
	if e.logWriter != nil {
		if err := e.logWriter.Append(ctx, report); err != nil {
			logWriteFailuresTotal.Inc()
			slog.Warn("验证日志写入失败", "product_id", product.ID, "error", err)
			report.LogWarning = err.Error()
		}
	}

	evaluationsTotal.WithLabelValues("ok").Inc()
	evaluationDuration.Observe(time.Since(startTime).Seconds())
	return report, nil
}

// evaluateRule 评估单条规则
// 参数解析失败、外部调用失败或超时都会就地恢复为失败的 ERROR 结果
func (e *Engine) evaluateRule(ctx context.Context, rule *models.QualityRule, product *ProductData) QualityValidationResult {
	result := QualityValidationResult{
		RuleID:   rule.ID,
		RuleCode: rule.Code,
		RuleName: rule.Name,
		Severity: rule.Severity,
	}

	attrCode := ""
	if rule.TargetsAttribute() {
		attrCode = *rule.AttributeCode
		result.AttributeCode = attrCode
		result.CurrentValue = product.Attribute(attrCode).Raw()
	}

	params, err := ParseRuleParams(rule)
	if err != nil {
		// 配置坏掉的规则必须可见：失败且强制 ERROR
		result.Passed = false
		result.Severity = models.SeverityError
		result.Message = err.Error()
		return result
	}

	value := product.Attribute(attrCode)

	var passed bool
	var message string
	switch rule.Type {
	case models.RuleTypeRequired:
		passed, message = evalRequired(attrCode, value)
	case models.RuleTypeMinLength:
		passed, message = evalMinLength(attrCode, value, params.MinLength)
	case models.RuleTypeMaxLength:
		passed, message = evalMaxLength(attrCode, value, params.MaxLength)
	case models.RuleTypeRegex:
		passed, message = evalRegex(attrCode, value, params.Regex)
	case models.RuleTypeRange:
		passed, message = evalRange(attrCode, value, params.Range)
	case models.RuleTypeEnum:
		passed, message = evalEnum(attrCode, value, params.Enum)
	case models.RuleTypeFormat:
		passed, message = evalFormat(attrCode, value, params.Format)
	case models.RuleTypeRelationship:
		passed, message = evalRelationship(attrCode, value, product, params.Relationship)
	case models.RuleTypeUnique:
		passed, message, err = e.evalUnique(ctx, rule, attrCode, value, product)
	case models.RuleTypeCustom:
		passed, message, err = e.evalCustom(ctx, rule, params, product)
	}

	if err != nil {
		result.Passed = false
		result.Severity = models.SeverityError
		result.Message = err.Error()
		return result
	}

	result.Passed = passed
	if !passed {
		result.Message = message
		if rule.ErrorMessage != "" {
			result.Message = rule.ErrorMessage
		}
	}
	return result
}

// evalUnique 唯一性检查，带超时的外部调用
func (e *Engine) evalUnique(ctx context.Context, rule *models.QualityRule, attrCode string, value AttributeValue, product *ProductData) (bool, string, error) {
	if value.IsAbsent() {
		return true, "", nil
	}
	if e.uniqueness == nil {
		return false, "", &EvaluatorExecutionError{RuleCode: rule.Code, Cause: fmt.Errorf("唯一性检查器未配置")}
	}

	type uniqueResult struct {
		exists bool
		err    error
	}

	callCtx, cancel := context.WithTimeout(ctx, e.config.EvaluatorTimeout)
	defer cancel()

	done := make(chan uniqueResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- uniqueResult{err: fmt.Errorf("唯一性检查发生异常: %v", r)}
			}
		}()
		exists, err := e.uniqueness.Exists(callCtx, attrCode, value.AsText(), product.ID, product.Scope())
		done <- uniqueResult{exists: exists, err: err}
	}()

	select {
	case <-callCtx.Done():
		return false, "", &EvaluatorExecutionError{RuleCode: rule.Code, Cause: fmt.Errorf("唯一性检查超时: %w", callCtx.Err())}
	case r := <-done:
		if r.err != nil {
			return false, "", &EvaluatorExecutionError{RuleCode: rule.Code, Cause: r.err}
		}
		if r.exists {
			return false, fmt.Sprintf("属性 %s 的值 %q 与其他商品重复", attrCode, value.AsText()), nil
		}
		return true, "", nil
	}
}

// evalCustom 自定义规则，带超时的外部执行
func (e *Engine) evalCustom(ctx context.Context, rule *models.QualityRule, params *RuleParams, product *ProductData) (bool, string, error) {
	if e.customExec == nil {
		return false, "", &EvaluatorExecutionError{RuleCode: rule.Code, Cause: fmt.Errorf("自定义规则执行器未配置")}
	}

	type customResult struct {
		passed  bool
		message string
		err     error
	}

	callCtx, cancel := context.WithTimeout(ctx, e.config.EvaluatorTimeout)
	defer cancel()

	done := make(chan customResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- customResult{err: fmt.Errorf("自定义规则执行发生异常: %v", r)}
			}
		}()
		passed, message, err := e.customExec.Execute(callCtx, params.Custom.ScriptRef, product, params.Raw)
		done <- customResult{passed: passed, message: message, err: err}
	}()

	select {
	case <-callCtx.Done():
		return false, "", &EvaluatorExecutionError{RuleCode: rule.Code, Cause: fmt.Errorf("自定义规则执行超时: %w", callCtx.Err())}
	case r := <-done:
		if r.err != nil {
			return false, "", &EvaluatorExecutionError{RuleCode: rule.Code, Cause: r.err}
		}
		return r.passed, r.message, nil
	}
}
