/*
 * @module api/routes
 * @description API路由配置模块，负责初始化和配置所有HTTP路由
 * @architecture RESTful API架构
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 无状态HTTP请求处理
 * @rules 遵循RESTful API设计规范，统一错误处理和响应格式
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/cors, github.com/go-chi/render
 * @refs dev_docs/model.md
 */

package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"

	"github.com/demetrio-freitas/pim-sub000/api/controllers"
)

// InitRoute 初始化所有API路由
func InitRoute(r *chi.Mux) {
	// 基础中间件
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// CORS配置
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 健康检查
	healthController := controllers.NewHealthController()
	r.Get("/health", healthController.Health)
	r.Get("/ready", healthController.Ready)

	// 质量规则管理
	r.Route("/quality-rules", func(r chi.Router) {
		ruleController := controllers.NewQualityRuleController()
		r.Post("/", ruleController.CreateRule)
		r.Get("/", ruleController.ListRules)
		r.Get("/{id}", ruleController.GetRule)
		r.Put("/{id}", ruleController.UpdateRule)
		r.Delete("/{id}", ruleController.DeleteRule)
		r.Post("/{id}/disable", ruleController.DisableRule)
	})

	// 质量评估与调度任务
	r.Route("/quality", func(r chi.Router) {
		qualityController := controllers.NewQualityController()
		r.Post("/products/{id}/evaluate", qualityController.EvaluateProduct)
		r.Post("/products/batch-evaluate", qualityController.EvaluateBatch)
		r.Get("/validation-logs", qualityController.ListValidationLogs)

		taskController := controllers.NewQualityTaskController()
		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", taskController.CreateTask)
			r.Get("/", taskController.ListTasks)
			r.Get("/{id}", taskController.GetTask)
			r.Put("/{id}", taskController.UpdateTask)
			r.Delete("/{id}", taskController.DeleteTask)
			r.Post("/{id}/trigger", taskController.TriggerTask)
			r.Get("/{id}/executions", taskController.ListExecutions)
		})
	})

	// 系统配置
	r.Route("/configs", func(r chi.Router) {
		configController := controllers.NewConfigController()
		r.Get("/", configController.ListConfigs)
		r.Post("/", configController.SetConfig)
	})
}
