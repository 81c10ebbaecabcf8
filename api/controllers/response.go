/*
 * @module api/controllers/response
 * @description 统一的HTTP响应结构，质量评估与任务管理接口共用
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/quality_engine_req.md
 * @stateFlow 无状态
 * @rules Status为0表示成功，非0为业务错误码；分页响应携带total/page/size
 * @dependencies 无
 * @refs api/controllers/quality_controller.go, api/controllers/quality_task_controller.go
 */

package controllers

// APIResponse 统一API响应结构
type APIResponse struct {
	Status int         `json:"status" example:"0"`
	Msg    string      `json:"msg" example:"操作成功"`
	Data   interface{} `json:"data,omitempty"`
}

// PaginatedResponse 分页响应结构
type PaginatedResponse struct {
	Status int         `json:"status" example:"0"`
	Msg    string      `json:"msg" example:"操作成功"`
	Data   interface{} `json:"data"`
	Total  int64       `json:"total" example:"100"`
	Page   int         `json:"page" example:"1"`
	Size   int         `json:"size" example:"10"`
}
