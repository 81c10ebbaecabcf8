/*
 * @module service/quality/value_test
 * @description 属性值变体类型单元测试，不依赖数据库
 * @architecture 测试层
 * @documentReference dev_docs/quality_engine_req.md
 * @stateFlow 构造各类属性值 -> 调用判定与转换方法 -> 断言结果
 * @rules 重点覆盖缺失与空白的区分、数值转换失败和多字节字符长度
 * @dependencies testing, github.com/stretchr/testify/assert
 * @refs value.go
 */

package quality

import (
	"testing"

	"github.com/demetrio-freitas/pim-sub000/service/models"
	"github.com/stretchr/testify/assert"
)

func TestAttributeValue_IsAbsent(t *testing.T) {
	assert.True(t, AbsentValue().IsAbsent())
	assert.False(t, TextValue("").IsAbsent())
	assert.False(t, NumberValue(0).IsAbsent())
	assert.False(t, BoolValue(false).IsAbsent())
	assert.False(t, ListValue(nil).IsAbsent())
}

func TestAttributeValue_IsBlank(t *testing.T) {
	tests := []struct {
		name  string
		value AttributeValue
		blank bool
	}{
		{"缺失值视为空白", AbsentValue(), true},
		{"空文本视为空白", TextValue(""), true},
		{"纯空白文本视为空白", TextValue("   \t\n"), true},
		{"非空文本不是空白", TextValue("Widget"), false},
		{"空列表视为空白", ListValue([]string{}), true},
		{"非空列表不是空白", ListValue([]string{"red"}), false},
		{"数值零不是空白", NumberValue(0), false},
		{"布尔假不是空白", BoolValue(false), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.blank, tt.value.IsBlank())
		})
	}
}

func TestAttributeValue_AsText(t *testing.T) {
	assert.Equal(t, "", AbsentValue().AsText())
	assert.Equal(t, "Widget", TextValue("Widget").AsText())
	assert.Equal(t, "19.99", NumberValue(19.99).AsText())
	assert.Equal(t, "true", BoolValue(true).AsText())
	assert.Equal(t, "red,blue", ListValue([]string{"red", "blue"}).AsText())
}

func TestAttributeValue_AsNumber(t *testing.T) {
	tests := []struct {
		name   string
		value  AttributeValue
		want   float64
		wantOK bool
	}{
		{"数值直接返回", NumberValue(19.99), 19.99, true},
		{"数值文本可转换", TextValue("42"), 42, true},
		{"带空白的数值文本可转换", TextValue("  3.14  "), 3.14, true},
		{"非数值文本转换失败", TextValue("abc"), 0, false},
		{"缺失值转换失败", AbsentValue(), 0, false},
		{"布尔值转换失败", BoolValue(true), 0, false},
		{"列表值转换失败", ListValue([]string{"1"}), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := tt.value.AsNumber()
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, n, 1e-9)
			}
		})
	}
}

func TestAttributeValue_Length(t *testing.T) {
	assert.Equal(t, 0, AbsentValue().Length())
	assert.Equal(t, 6, TextValue("Widget").Length())
	// 长度按字符计，不按字节计
	assert.Equal(t, 4, TextValue("测试商品").Length())
	assert.Equal(t, 2, ListValue([]string{"red", "blue"}).Length())
	assert.Equal(t, 0, TextValue("").Length())
}

func TestAttributeValue_Raw(t *testing.T) {
	assert.Nil(t, AbsentValue().Raw())
	assert.Equal(t, "Widget", TextValue("Widget").Raw())
	assert.Equal(t, 19.99, NumberValue(19.99).Raw())
	assert.Equal(t, true, BoolValue(true).Raw())
	assert.Equal(t, []string{"red"}, ListValue([]string{"red"}).Raw())
}

func TestParseAttributeValue(t *testing.T) {
	tests := []struct {
		name      string
		valueType string
		raw       string
		want      AttributeValue
		wantErr   bool
	}{
		{"文本类型", models.AttributeValueTypeText, "Widget", TextValue("Widget"), false},
		{"空类型按文本处理", "", "Widget", TextValue("Widget"), false},
		{"数值类型", models.AttributeValueTypeNumber, "19.99", NumberValue(19.99), false},
		{"数值类型带空白", models.AttributeValueTypeNumber, " 42 ", NumberValue(42), false},
		{"数值类型解析失败", models.AttributeValueTypeNumber, "abc", AbsentValue(), true},
		{"布尔类型", models.AttributeValueTypeBoolean, "true", BoolValue(true), false},
		{"布尔类型解析失败", models.AttributeValueTypeBoolean, "maybe", AbsentValue(), true},
		{"列表类型", models.AttributeValueTypeList, `["red","blue"]`, ListValue([]string{"red", "blue"}), false},
		{"列表类型解析失败", models.AttributeValueTypeList, "not-json", AbsentValue(), true},
		{"未知类型", "geometry", "x", AbsentValue(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAttributeValue(tt.valueType, tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
