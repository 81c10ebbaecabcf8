/*
 * @module api/controllers/quality_task_controller
 * @description 质量评估调度任务控制器，提供任务的增删改查、手动触发与执行记录查询
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/quality_engine_req.md
 * @stateFlow HTTP请求处理流程
 * @rules 任务变更后调度器重新加载；手动触发异步执行立即返回
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/render
 * @refs service/quality/scheduler.go, service/models/quality_report.go
 */

package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/demetrio-freitas/pim-sub000/service"
	"github.com/demetrio-freitas/pim-sub000/service/models"
	"github.com/demetrio-freitas/pim-sub000/service/quality"
)

// QualityTaskController 质量评估调度任务控制器
type QualityTaskController struct{}

// NewQualityTaskController 创建质量评估调度任务控制器实例
func NewQualityTaskController() *QualityTaskController {
	return &QualityTaskController{}
}

// CreateTask 创建调度任务
// @Summary 创建调度任务
// @Description 创建质量评估调度任务并加入调度器
// @Tags 质量任务
// @Accept json
// @Produce json
// @Param task body models.QualityEvaluationTask true "调度任务信息"
// @Success 200 {object} APIResponse{data=models.QualityEvaluationTask} "创建成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /quality/tasks [post]
func (c *QualityTaskController) CreateTask(w http.ResponseWriter, r *http.Request) {
	var task models.QualityEvaluationTask
	if err := render.DecodeJSON(r.Body, &task); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	if task.ScheduleType != "cron" && task.ScheduleType != "interval" &&
		task.ScheduleType != "once" && task.ScheduleType != "manual" {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "不支持的调度类型: " + task.ScheduleType,
		})
		return
	}

	// cron/interval 类型先验证调度配置，坏表达式不落库
	if task.ScheduleType == "cron" || task.ScheduleType == "interval" {
		if _, err := quality.CalculateNextExecution(&task, time.Now()); err != nil {
			render.JSON(w, r, APIResponse{
				Status: http.StatusBadRequest,
				Msg:    err.Error(),
			})
			return
		}
	}

	if err := service.DB.WithContext(r.Context()).Create(&task).Error; err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "创建调度任务失败",
		})
		return
	}

	if err := service.GlobalTaskScheduler.ReloadScheduledTasks(); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "调度任务已创建但调度器重载失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "创建调度任务成功",
		Data:   task,
	})
}

// ListTasks 获取调度任务列表
// @Summary 获取调度任务列表
// @Description 分页获取质量评估调度任务
// @Tags 质量任务
// @Produce json
// @Param page query int false "页码" default(1)
// @Param size query int false "每页数量" default(10)
// @Success 200 {object} PaginatedResponse{data=[]models.QualityEvaluationTask} "获取成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /quality/tasks [get]
func (c *QualityTaskController) ListTasks(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 {
		size = 10
	}

	var total int64
	if err := service.DB.WithContext(r.Context()).Model(&models.QualityEvaluationTask{}).Count(&total).Error; err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "统计调度任务失败",
		})
		return
	}

	var tasks []models.QualityEvaluationTask
	err := service.DB.WithContext(r.Context()).
		Order("created_at DESC").
		Offset((page - 1) * size).Limit(size).
		Find(&tasks).Error
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "获取调度任务列表失败",
		})
		return
	}

	render.JSON(w, r, PaginatedResponse{
		Status: http.StatusOK,
		Msg:    "获取调度任务列表成功",
		Data:   tasks,
		Total:  total,
		Page:   page,
		Size:   size,
	})
}

// GetTask 根据ID获取调度任务
// @Summary 根据ID获取调度任务
// @Description 获取调度任务详情
// @Tags 质量任务
// @Produce json
// @Param id path string true "任务ID"
// @Success 200 {object} APIResponse{data=models.QualityEvaluationTask} "获取成功"
// @Failure 404 {object} APIResponse "任务不存在"
// @Router /quality/tasks/{id} [get]
func (c *QualityTaskController) GetTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var task models.QualityEvaluationTask
	if err := service.DB.WithContext(r.Context()).Where("id = ?", id).First(&task).Error; err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusNotFound,
			Msg:    "调度任务不存在",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取调度任务成功",
		Data:   task,
	})
}

// UpdateTask 更新调度任务
// @Summary 更新调度任务
// @Description 更新调度任务并重载调度器
// @Tags 质量任务
// @Accept json
// @Produce json
// @Param id path string true "任务ID"
// @Param updates body map[string]interface{} true "更新字段"
// @Success 200 {object} APIResponse{data=models.QualityEvaluationTask} "更新成功"
// @Failure 404 {object} APIResponse "任务不存在"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /quality/tasks/{id} [put]
func (c *QualityTaskController) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var task models.QualityEvaluationTask
	if err := service.DB.WithContext(r.Context()).Where("id = ?", id).First(&task).Error; err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusNotFound,
			Msg:    "调度任务不存在",
		})
		return
	}

	var updates map[string]interface{}
	if err := render.DecodeJSON(r.Body, &updates); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	if err := service.DB.WithContext(r.Context()).Model(&task).Updates(updates).Error; err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "更新调度任务失败",
		})
		return
	}

	if err := service.GlobalTaskScheduler.ReloadScheduledTasks(); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "调度任务已更新但调度器重载失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "更新调度任务成功",
		Data:   task,
	})
}

// DeleteTask 删除调度任务
// @Summary 删除调度任务
// @Description 删除调度任务并重载调度器
// @Tags 质量任务
// @Produce json
// @Param id path string true "任务ID"
// @Success 200 {object} APIResponse "删除成功"
// @Failure 404 {object} APIResponse "任务不存在"
// @Router /quality/tasks/{id} [delete]
func (c *QualityTaskController) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result := service.DB.WithContext(r.Context()).Where("id = ?", id).Delete(&models.QualityEvaluationTask{})
	if result.Error != nil || result.RowsAffected == 0 {
		render.JSON(w, r, APIResponse{
			Status: http.StatusNotFound,
			Msg:    "调度任务不存在",
		})
		return
	}

	if err := service.GlobalTaskScheduler.ReloadScheduledTasks(); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "调度任务已删除但调度器重载失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "删除调度任务成功",
	})
}

// TriggerTask 手动触发调度任务
// @Summary 手动触发调度任务
// @Description 立即异步执行一次任务，不影响原有调度
// @Tags 质量任务
// @Produce json
// @Param id path string true "任务ID"
// @Success 200 {object} APIResponse "触发成功"
// @Failure 404 {object} APIResponse "任务不存在"
// @Router /quality/tasks/{id}/trigger [post]
func (c *QualityTaskController) TriggerTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var task models.QualityEvaluationTask
	if err := service.DB.WithContext(r.Context()).Where("id = ?", id).First(&task).Error; err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusNotFound,
			Msg:    "调度任务不存在",
		})
		return
	}

	service.GlobalTaskScheduler.TriggerTask(id)

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "任务已触发",
	})
}

// ListExecutions 查询任务执行记录
// @Summary 查询任务执行记录
// @Description 分页查询指定任务的历史执行记录
// @Tags 质量任务
// @Produce json
// @Param id path string true "任务ID"
// @Param page query int false "页码" default(1)
// @Param size query int false "每页数量" default(10)
// @Success 200 {object} PaginatedResponse{data=[]models.QualityTaskExecution} "查询成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /quality/tasks/{id}/executions [get]
func (c *QualityTaskController) ListExecutions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 {
		size = 10
	}

	query := service.DB.WithContext(r.Context()).Model(&models.QualityTaskExecution{}).Where("task_id = ?", id)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "统计执行记录失败",
		})
		return
	}

	var executions []models.QualityTaskExecution
	err := query.Order("start_time DESC").Offset((page - 1) * size).Limit(size).Find(&executions).Error
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "查询执行记录失败",
		})
		return
	}

	render.JSON(w, r, PaginatedResponse{
		Status: http.StatusOK,
		Msg:    "查询执行记录成功",
		Data:   executions,
		Total:  total,
		Page:   page,
		Size:   size,
	})
}
