/*
 * @module service/quality/metrics
 * @description 质量引擎运行指标，通过 /metrics 暴露
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/quality_engine_req.md
 * @stateFlow 评估执行 -> 指标累加 -> Prometheus 抓取
 * @rules 指标只做观测，不参与任何业务判断
 * @dependencies github.com/prometheus/client_golang
 * @refs engine.go, main.go
 */

package quality

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	evaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pim_quality_evaluations_total",
		Help: "商品质量评估次数，按结果分类",
	}, []string{"result"}) // ok, provider_error

	ruleFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pim_quality_rule_failures_total",
		Help: "规则评估失败次数，按严重级别分类",
	}, []string{"severity"})

	evaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pim_quality_evaluation_duration_seconds",
		Help:    "单个商品评估耗时",
		Buckets: prometheus.DefBuckets,
	})

	logWriteFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pim_quality_log_write_failures_total",
		Help: "验证日志写入失败次数",
	})
)
