/*
 * @module service/quality/script_executor
 * @description 自定义规则脚本执行器，基于 Yaegi 解释执行 Go 脚本，带编译缓存
 * @architecture 解释器模式 - 脚本按内容哈希缓存编译结果
 * @documentReference dev_docs/quality_engine_req.md
 * @stateFlow 脚本 -> 哈希查缓存 -> 编译包装后的 Run 函数 -> 注入商品参数执行
 * @rules 脚本必须实现 Run 函数；返回 bool 或 {passed, message} 映射
 * @dependencies github.com/traefik/yaegi
 * @refs engine.go, params.go
 */

package quality

import (
	"context"
	"crypto/sha1"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cast"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// YaegiRuleExecutor 基于 Yaegi 的自定义规则执行器实现
type YaegiRuleExecutor struct {
	mu    sync.RWMutex
	cache map[string]*compiledRuleScript
}

// compiledRuleScript 编译后的脚本缓存项
type compiledRuleScript struct {
	fn       func(map[string]interface{}) (interface{}, error)
	compiled time.Time
	hash     string
}

// NewYaegiRuleExecutor 创建自定义规则执行器
func NewYaegiRuleExecutor() *YaegiRuleExecutor {
	return &YaegiRuleExecutor{
		cache: make(map[string]*compiledRuleScript),
	}
}

// Execute 执行自定义规则脚本（带参数注入和缓存优化）
// 脚本返回 bool，或返回 map 包含 passed 和可选的 message
func (y *YaegiRuleExecutor) Execute(ctx context.Context, script string, product *ProductData, params map[string]interface{}) (bool, string, error) {
	// 使用脚本内容的哈希作为缓存key
	hash := fmt.Sprintf("%x", sha1.Sum([]byte(script)))

	y.mu.RLock()
	compiled, ok := y.cache[hash]
	y.mu.RUnlock()

	if !ok {
		var err error
		compiled, err = y.compile(script, hash)
		if err != nil {
			return false, "", fmt.Errorf("脚本编译失败: %w", err)
		}

		y.mu.Lock()
		y.cache[hash] = compiled
		y.mu.Unlock()
	}

	// 准备脚本参数：商品快照的扁平视图
	attributes := make(map[string]interface{}, len(product.Attributes))
	for code, value := range product.Attributes {
		attributes[code] = value.Raw()
	}

	scriptParams := map[string]interface{}{
		"productId":  product.ID,
		"sku":        product.SKU,
		"name":       product.Name,
		"attributes": attributes,
		"imageCount": product.ImageCount,
		"params":     params,
	}

	result, err := compiled.fn(scriptParams)
	if err != nil {
		return false, "", err
	}
	return interpretScriptResult(result)
}

// interpretScriptResult 解释脚本返回值
func interpretScriptResult(result interface{}) (bool, string, error) {
	switch v := result.(type) {
	case bool:
		return v, "", nil
	case map[string]interface{}:
		passed, err := cast.ToBoolE(v["passed"])
		if err != nil {
			return false, "", fmt.Errorf("脚本返回的 passed 字段不是布尔值: %v", v["passed"])
		}
		return passed, cast.ToString(v["message"]), nil
	default:
		return false, "", fmt.Errorf("脚本返回值类型不支持: %T", result)
	}
}

// compile 编译脚本为可执行函数
func (y *YaegiRuleExecutor) compile(script, hash string) (*compiledRuleScript, error) {
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("加载标准库失败: %w", err)
	}

	// 包装脚本：要求脚本必须实现一个 Run 函数
	wrapped := fmt.Sprintf(`
package main

import (
	"fmt"
	"strconv"
	"strings"
	"regexp"
	"sort"
	"encoding/json"
)

// 必须提供一个 Run 函数作为入口
func Run(params map[string]interface{}) (interface{}, error) {
	// 从参数中提取常用变量，方便脚本使用
	var productId interface{}
	if v, exists := params["productId"]; exists {
		productId = v
	}

	var sku interface{}
	if v, exists := params["sku"]; exists {
		sku = v
	}

	var name interface{}
	if v, exists := params["name"]; exists {
		name = v
	}

	var attributes map[string]interface{}
	if v, exists := params["attributes"]; exists {
		attributes, _ = v.(map[string]interface{})
	}

	var imageCount interface{}
	if v, exists := params["imageCount"]; exists {
		imageCount = v
	}

	// 脚本内容
%s
}
`, script)

	if _, err := i.Eval(wrapped); err != nil {
		return nil, fmt.Errorf("脚本编译失败: %w", err)
	}

	v, err := i.Eval("Run")
	if err != nil {
		return nil, fmt.Errorf("脚本缺少 Run 函数: %w", err)
	}

	runFunc, ok := v.Interface().(func(map[string]interface{}) (interface{}, error))
	if !ok {
		return nil, fmt.Errorf("Run 函数签名必须是 func(map[string]interface{}) (interface{}, error)")
	}

	return &compiledRuleScript{
		fn:       runFunc,
		compiled: time.Now(),
		hash:     hash,
	}, nil
}

// Validate 验证脚本语法（规则创建时快速校验）
func (y *YaegiRuleExecutor) Validate(script string) error {
	_, err := y.compile(script, "")
	if err != nil {
		return err
	}
	return nil
}

// ClearCache 清理编译缓存
func (y *YaegiRuleExecutor) ClearCache() {
	y.mu.Lock()
	defer y.mu.Unlock()
	y.cache = make(map[string]*compiledRuleScript)
}
