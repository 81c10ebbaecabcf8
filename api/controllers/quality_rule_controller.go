/*
 * @module api/controllers/quality_rule_controller
 * @description 质量规则管理控制器，提供规则的增删改查与启停接口
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/quality_engine_req.md
 * @stateFlow HTTP请求处理流程
 * @rules 统一的错误处理和响应格式；规则配置校验失败返回400并附具体原因
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/render
 * @refs service/quality/store.go, service/models/quality_rule.go
 */

package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/demetrio-freitas/pim-sub000/service"
	"github.com/demetrio-freitas/pim-sub000/service/models"
	"github.com/demetrio-freitas/pim-sub000/service/quality"
)

// QualityRuleController 质量规则管理控制器
type QualityRuleController struct {
	ruleStore *quality.GormRuleStore
}

// NewQualityRuleController 创建质量规则管理控制器实例
func NewQualityRuleController() *QualityRuleController {
	return &QualityRuleController{
		ruleStore: service.GlobalRuleStore,
	}
}

// CreateRule 创建质量规则
// @Summary 创建质量规则
// @Description 创建新的商品质量规则，配置不合法会拒绝创建
// @Tags 质量规则
// @Accept json
// @Produce json
// @Param rule body models.QualityRule true "质量规则信息"
// @Success 200 {object} APIResponse{data=models.QualityRule} "创建成功"
// @Failure 400 {object} APIResponse "规则配置不合法"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /quality-rules [post]
func (c *QualityRuleController) CreateRule(w http.ResponseWriter, r *http.Request) {
	var rule models.QualityRule
	if err := render.DecodeJSON(r.Body, &rule); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	if err := c.ruleStore.CreateRule(r.Context(), &rule); err != nil {
		var configErr *quality.ConfigurationError
		if errors.As(err, &configErr) {
			render.JSON(w, r, APIResponse{
				Status: http.StatusBadRequest,
				Msg:    configErr.Error(),
			})
			return
		}
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "创建质量规则失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "创建质量规则成功",
		Data:   rule,
	})
}

// ListRules 获取质量规则列表
// @Summary 获取质量规则列表
// @Description 分页获取质量规则列表，支持按类型、严重级别、启用状态过滤
// @Tags 质量规则
// @Produce json
// @Param page query int false "页码" default(1)
// @Param size query int false "每页数量" default(10)
// @Param type query string false "规则类型"
// @Param severity query string false "严重级别"
// @Param is_active query bool false "是否启用"
// @Success 200 {object} PaginatedResponse{data=[]models.QualityRule} "获取成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /quality-rules [get]
func (c *QualityRuleController) ListRules(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 {
		size = 10
	}

	ruleType := r.URL.Query().Get("type")
	severity := r.URL.Query().Get("severity")

	var isActive *bool
	if v := r.URL.Query().Get("is_active"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err == nil {
			isActive = &parsed
		}
	}

	rules, total, err := c.ruleStore.ListRules(r.Context(), ruleType, severity, isActive, page, size)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "获取质量规则列表失败",
		})
		return
	}

	render.JSON(w, r, PaginatedResponse{
		Status: http.StatusOK,
		Msg:    "获取质量规则列表成功",
		Data:   rules,
		Total:  total,
		Page:   page,
		Size:   size,
	})
}

// GetRule 根据ID获取质量规则
// @Summary 根据ID获取质量规则
// @Description 根据ID获取质量规则详情
// @Tags 质量规则
// @Produce json
// @Param id path string true "规则ID"
// @Success 200 {object} APIResponse{data=models.QualityRule} "获取成功"
// @Failure 404 {object} APIResponse "规则不存在"
// @Router /quality-rules/{id} [get]
func (c *QualityRuleController) GetRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rule, err := c.ruleStore.GetRule(r.Context(), id)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusNotFound,
			Msg:    "质量规则不存在",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取质量规则成功",
		Data:   rule,
	})
}

// UpdateRule 更新质量规则
// @Summary 更新质量规则
// @Description 更新质量规则，更新后的配置同样要通过校验
// @Tags 质量规则
// @Accept json
// @Produce json
// @Param id path string true "规则ID"
// @Param updates body map[string]interface{} true "更新字段"
// @Success 200 {object} APIResponse{data=models.QualityRule} "更新成功"
// @Failure 400 {object} APIResponse "规则配置不合法"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /quality-rules/{id} [put]
func (c *QualityRuleController) UpdateRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var updates map[string]interface{}
	if err := render.DecodeJSON(r.Body, &updates); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	rule, err := c.ruleStore.UpdateRule(r.Context(), id, updates)
	if err != nil {
		var configErr *quality.ConfigurationError
		if errors.As(err, &configErr) {
			render.JSON(w, r, APIResponse{
				Status: http.StatusBadRequest,
				Msg:    configErr.Error(),
			})
			return
		}
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "更新质量规则失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "更新质量规则成功",
		Data:   rule,
	})
}

// DisableRule 停用质量规则
// @Summary 停用质量规则
// @Description 停用规则，后续评估不再执行该规则，历史日志保留
// @Tags 质量规则
// @Produce json
// @Param id path string true "规则ID"
// @Success 200 {object} APIResponse "停用成功"
// @Failure 404 {object} APIResponse "规则不存在"
// @Router /quality-rules/{id}/disable [post]
func (c *QualityRuleController) DisableRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := c.ruleStore.DisableRule(r.Context(), id); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusNotFound,
			Msg:    "质量规则不存在",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "停用质量规则成功",
	})
}

// DeleteRule 删除质量规则
// @Summary 删除质量规则
// @Description 删除质量规则
// @Tags 质量规则
// @Produce json
// @Param id path string true "规则ID"
// @Success 200 {object} APIResponse "删除成功"
// @Failure 404 {object} APIResponse "规则不存在"
// @Router /quality-rules/{id} [delete]
func (c *QualityRuleController) DeleteRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := c.ruleStore.DeleteRule(r.Context(), id); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusNotFound,
			Msg:    "质量规则不存在",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "删除质量规则成功",
	})
}
