/*
 * @module api/controllers/config_controller
 * @description 系统配置控制器，提供评估引擎可调参数的查询与修改接口
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/quality_engine_req.md
 * @stateFlow HTTP请求处理流程
 * @rules 配置修改对后续评估生效，不影响已生成的报告
 * @dependencies github.com/go-chi/render
 * @refs service/config/config_service.go
 */

package controllers

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/demetrio-freitas/pim-sub000/service"
	"github.com/demetrio-freitas/pim-sub000/service/config"
)

// ConfigController 系统配置控制器
type ConfigController struct {
	configService *config.ConfigService
}

// NewConfigController 创建系统配置控制器实例
func NewConfigController() *ConfigController {
	return &ConfigController{
		configService: service.GlobalConfigService,
	}
}

// ListConfigs 获取全部配置项
// @Summary 获取全部配置项
// @Description 列出评估引擎与清理任务的可调参数，数据库缺失的键以默认值返回
// @Tags 系统配置
// @Produce json
// @Success 200 {object} APIResponse{data=[]models.SystemConfigItem} "获取成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /configs [get]
func (c *ConfigController) ListConfigs(w http.ResponseWriter, r *http.Request) {
	items, err := c.configService.ListConfigs()
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "获取配置列表失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取配置列表成功",
		Data:   items,
	})
}

// SetConfigRequest 设置配置请求
type SetConfigRequest struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

// SetConfig 设置配置项
// @Summary 设置配置项
// @Description 写入系统配置并刷新缓存
// @Tags 系统配置
// @Accept json
// @Produce json
// @Param request body SetConfigRequest true "配置项"
// @Success 200 {object} APIResponse "设置成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /configs [post]
func (c *ConfigController) SetConfig(w http.ResponseWriter, r *http.Request) {
	var req SetConfigRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil || req.Key == "" {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	if err := c.configService.SetConfig(req.Key, req.Value, req.Description); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "设置配置失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "设置配置成功",
	})
}
