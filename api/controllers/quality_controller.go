/*
 * @module api/controllers/quality_controller
 * @description 质量评估控制器，提供单品评估、批量评估与验证日志查询接口
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/quality_engine_req.md
 * @stateFlow HTTP请求处理流程
 * @rules 商品不存在返回404；批量评估同步收集结果后返回汇总
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/render
 * @refs service/quality/engine.go, service/quality/batch.go
 */

package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/demetrio-freitas/pim-sub000/service"
	"github.com/demetrio-freitas/pim-sub000/service/quality"
)

// QualityController 质量评估控制器
type QualityController struct {
	engine *quality.Engine
}

// NewQualityController 创建质量评估控制器实例
func NewQualityController() *QualityController {
	return &QualityController{
		engine: service.GlobalQualityEngine,
	}
}

// EvaluateProduct 评估单个商品
// @Summary 评估单个商品
// @Description 对指定商品执行全部适用规则，返回完整质量报告
// @Tags 质量评估
// @Produce json
// @Param id path string true "商品ID"
// @Success 200 {object} APIResponse{data=quality.ProductQualityReport} "评估成功"
// @Failure 404 {object} APIResponse "商品不存在"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /quality/products/{id}/evaluate [post]
func (c *QualityController) EvaluateProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	report, err := c.engine.Evaluate(r.Context(), productID)
	if err != nil {
		var providerErr *quality.ProviderError
		if errors.As(err, &providerErr) {
			render.JSON(w, r, APIResponse{
				Status: http.StatusNotFound,
				Msg:    "商品数据获取失败: " + providerErr.Error(),
			})
			return
		}
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "质量评估失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "质量评估成功",
		Data:   report,
	})
}

// BatchEvaluateRequest 批量评估请求
type BatchEvaluateRequest struct {
	ProductIDs  []string `json:"product_ids"`
	Concurrency int      `json:"concurrency"` // 0 表示使用系统默认并发
}

// BatchEvaluateResult 批量评估汇总结果
type BatchEvaluateResult struct {
	Total    int                             `json:"total"`
	Failed   int                             `json:"failed"`
	Reports  []*quality.ProductQualityReport `json:"reports"`
	Failures map[string]string               `json:"failures,omitempty"` // product_id -> 错误信息
}

// EvaluateBatch 批量评估商品
// @Summary 批量评估商品
// @Description 并发评估一批商品，单个商品失败不中断整批
// @Tags 质量评估
// @Accept json
// @Produce json
// @Param request body BatchEvaluateRequest true "批量评估请求"
// @Success 200 {object} APIResponse{data=BatchEvaluateResult} "评估完成"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /quality/products/batch-evaluate [post]
func (c *QualityController) EvaluateBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchEvaluateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	if len(req.ProductIDs) == 0 {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "商品ID列表不能为空",
		})
		return
	}

	concurrency := req.Concurrency
	if concurrency <= 0 {
		concurrency = service.GlobalConfigService.GetBatchConcurrency()
	}

	items, err := c.engine.EvaluateBatch(r.Context(), req.ProductIDs, concurrency)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "批量评估启动失败",
		})
		return
	}

	result := BatchEvaluateResult{
		Total:    len(req.ProductIDs),
		Reports:  make([]*quality.ProductQualityReport, 0, len(req.ProductIDs)),
		Failures: make(map[string]string),
	}
	for item := range items {
		if item.Err != nil {
			result.Failed++
			result.Failures[item.ProductID] = item.Err.Error()
			continue
		}
		result.Reports = append(result.Reports, item.Report)
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "批量评估完成",
		Data:   result,
	})
}

// ListValidationLogs 查询质量验证日志
// @Summary 查询质量验证日志
// @Description 分页查询历史评估日志，支持按商品与时间范围过滤
// @Tags 质量评估
// @Produce json
// @Param product_id query string false "商品ID"
// @Param since query string false "起始时间(RFC3339)"
// @Param until query string false "截止时间(RFC3339)"
// @Param page query int false "页码" default(1)
// @Param size query int false "每页数量" default(10)
// @Success 200 {object} PaginatedResponse{data=[]models.QualityValidationLog} "查询成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /quality/validation-logs [get]
func (c *QualityController) ListValidationLogs(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 {
		size = 10
	}

	productID := r.URL.Query().Get("product_id")

	var since, until *time.Time
	if v := r.URL.Query().Get("since"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			since = &t
		}
	}
	if v := r.URL.Query().Get("until"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			until = &t
		}
	}

	logs, total, err := quality.QueryValidationLogs(r.Context(), service.DB, productID, since, until, page, size)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "查询质量验证日志失败",
		})
		return
	}

	render.JSON(w, r, PaginatedResponse{
		Status: http.StatusOK,
		Msg:    "查询质量验证日志成功",
		Data:   logs,
		Total:  total,
		Page:   page,
		Size:   size,
	})
}
