/*
 * @module service/quality/script_executor_test
 * @description Yaegi 自定义规则执行器的单元测试
 * @architecture 测试层
 * @documentReference dev_docs/quality_engine_req.md
 * @stateFlow 脚本输入 -> 执行器编译执行 -> 断言通过与否、消息与错误
 * @rules 覆盖布尔与映射两种返回契约、编译失败和缓存命中
 * @dependencies testing, github.com/stretchr/testify/assert
 * @refs script_executor.go
 */

package quality

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scriptProduct() *ProductData {
	return &ProductData{
		ID:   "p1",
		SKU:  "SKU-001",
		Name: "Widget",
		Attributes: map[string]AttributeValue{
			"price": NumberValue(19.99),
			"brand": TextValue("Acme"),
		},
		ImageCount: 2,
	}
}

func TestYaegiRuleExecutor_BoolResult(t *testing.T) {
	executor := NewYaegiRuleExecutor()

	passed, message, err := executor.Execute(context.Background(), `
	return true, nil
`, scriptProduct(), nil)

	require.NoError(t, err)
	assert.True(t, passed)
	assert.Empty(t, message)
}

func TestYaegiRuleExecutor_MapResult(t *testing.T) {
	executor := NewYaegiRuleExecutor()

	passed, message, err := executor.Execute(context.Background(), `
	return map[string]interface{}{
		"passed":  false,
		"message": "价格必须大于 100",
	}, nil
`, scriptProduct(), nil)

	require.NoError(t, err)
	assert.False(t, passed)
	assert.Equal(t, "价格必须大于 100", message)
}

func TestYaegiRuleExecutor_AccessProductAttributes(t *testing.T) {
	executor := NewYaegiRuleExecutor()

	passed, _, err := executor.Execute(context.Background(), `
	v, ok := attributes["price"]
	if !ok {
		return false, nil
	}
	price, ok := v.(float64)
	if !ok {
		return false, nil
	}
	return price > 10, nil
`, scriptProduct(), nil)

	require.NoError(t, err)
	assert.True(t, passed)
}

func TestYaegiRuleExecutor_AccessImageCountAndName(t *testing.T) {
	executor := NewYaegiRuleExecutor()

	passed, message, err := executor.Execute(context.Background(), `
	count, _ := imageCount.(int)
	productName, _ := name.(string)
	if count < 3 {
		return map[string]interface{}{
			"passed":  false,
			"message": fmt.Sprintf("商品 %s 图片数量不足", productName),
		}, nil
	}
	return true, nil
`, scriptProduct(), nil)

	require.NoError(t, err)
	assert.False(t, passed)
	assert.Contains(t, message, "Widget")
}

func TestYaegiRuleExecutor_RuleParamsPassthrough(t *testing.T) {
	executor := NewYaegiRuleExecutor()

	passed, _, err := executor.Execute(context.Background(), `
	ruleParams, _ := params["params"].(map[string]interface{})
	threshold, _ := ruleParams["threshold"].(float64)
	v, _ := attributes["price"].(float64)
	return v >= threshold, nil
`, scriptProduct(), map[string]interface{}{"threshold": float64(10)})

	require.NoError(t, err)
	assert.True(t, passed)
}

func TestYaegiRuleExecutor_CompileError(t *testing.T) {
	executor := NewYaegiRuleExecutor()

	_, _, err := executor.Execute(context.Background(), `this is not valid go`, scriptProduct(), nil)
	assert.Error(t, err)
}

func TestYaegiRuleExecutor_ScriptError(t *testing.T) {
	executor := NewYaegiRuleExecutor()

	_, _, err := executor.Execute(context.Background(), `
	return nil, fmt.Errorf("脚本内部错误")
`, scriptProduct(), nil)
	assert.Error(t, err)
}

func TestYaegiRuleExecutor_UnsupportedResultType(t *testing.T) {
	executor := NewYaegiRuleExecutor()

	_, _, err := executor.Execute(context.Background(), `
	return 42, nil
`, scriptProduct(), nil)
	assert.Error(t, err)
}

func TestYaegiRuleExecutor_CompileCache(t *testing.T) {
	executor := NewYaegiRuleExecutor()
	script := `
	return true, nil
`

	_, _, err := executor.Execute(context.Background(), script, scriptProduct(), nil)
	require.NoError(t, err)
	assert.Len(t, executor.cache, 1)

	// 相同脚本命中缓存，不产生新条目
	_, _, err = executor.Execute(context.Background(), script, scriptProduct(), nil)
	require.NoError(t, err)
	assert.Len(t, executor.cache, 1)

	executor.ClearCache()
	assert.Empty(t, executor.cache)
}

func TestYaegiRuleExecutor_Validate(t *testing.T) {
	executor := NewYaegiRuleExecutor()

	assert.NoError(t, executor.Validate(`
	return true, nil
`))
	assert.Error(t, executor.Validate(`не валидный скрипт`))
}

func TestInterpretScriptResult(t *testing.T) {
	passed, message, err := interpretScriptResult(true)
	require.NoError(t, err)
	assert.True(t, passed)
	assert.Empty(t, message)

	passed, message, err = interpretScriptResult(map[string]interface{}{"passed": true, "message": "ok"})
	require.NoError(t, err)
	assert.True(t, passed)
	assert.Equal(t, "ok", message)

	_, _, err = interpretScriptResult(map[string]interface{}{"passed": "maybe"})
	assert.Error(t, err)

	_, _, err = interpretScriptResult([]string{"nope"})
	assert.Error(t, err)
}
