/*
 * @module service/quality/value
 * @description 属性值封闭变体类型：文本/数值/布尔/列表/缺失，供评估器直接匹配
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/quality_engine_req.md
 * @stateFlow Provider 解析存储值 -> 变体封装 -> 评估器按类型匹配
 * @rules 缺失与空白严格区分，数值转换统一通过 cast 处理
 * @dependencies github.com/spf13/cast
 * @refs evaluators.go, store.go
 */

package quality

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/demetrio-freitas/pim-sub000/service/models"
	"github.com/spf13/cast"
)

// ValueKind 属性值类别
type ValueKind int

const (
	ValueAbsent ValueKind = iota // 属性未定义或无值
	ValueText
	ValueNumber
	ValueBool
	ValueList
)

// AttributeValue 属性值变体
type AttributeValue struct {
	Kind   ValueKind
	Text   string
	Number float64
	Bool   bool
	List   []string
}

// AbsentValue 缺失值
func AbsentValue() AttributeValue {
	return AttributeValue{Kind: ValueAbsent}
}

// TextValue 文本值
func TextValue(s string) AttributeValue {
	return AttributeValue{Kind: ValueText, Text: s}
}

// NumberValue 数值
func NumberValue(f float64) AttributeValue {
	return AttributeValue{Kind: ValueNumber, Number: f}
}

// BoolValue 布尔值
func BoolValue(b bool) AttributeValue {
	return AttributeValue{Kind: ValueBool, Bool: b}
}

// ListValue 列表值
func ListValue(items []string) AttributeValue {
	return AttributeValue{Kind: ValueList, List: items}
}

// IsAbsent 是否缺失
func (v AttributeValue) IsAbsent() bool {
	return v.Kind == ValueAbsent
}

// IsBlank 是否缺失或为空白
// 文本去除首尾空白后为空、列表为空均视为空白
func (v AttributeValue) IsBlank() bool {
	switch v.Kind {
	case ValueAbsent:
		return true
	case ValueText:
		return strings.TrimSpace(v.Text) == ""
	case ValueList:
		return len(v.List) == 0
	default:
		return false
	}
}

// AsText 转为文本表示
func (v AttributeValue) AsText() string {
	switch v.Kind {
	case ValueAbsent:
		return ""
	case ValueText:
		return v.Text
	case ValueNumber:
		return cast.ToString(v.Number)
	case ValueBool:
		return cast.ToString(v.Bool)
	case ValueList:
		return strings.Join(v.List, ",")
	default:
		return ""
	}
}

// AsNumber 尝试转为数值
func (v AttributeValue) AsNumber() (float64, bool) {
	switch v.Kind {
	case ValueNumber:
		return v.Number, true
	case ValueText:
		n, err := cast.ToFloat64E(strings.TrimSpace(v.Text))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Length 文本长度（按字符计）或列表元素数
func (v AttributeValue) Length() int {
	switch v.Kind {
	case ValueAbsent:
		return 0
	case ValueList:
		return len(v.List)
	default:
		return utf8.RuneCountInString(v.AsText())
	}
}

// Raw 返回用于展示的原始值，缺失返回 nil
func (v AttributeValue) Raw() interface{} {
	switch v.Kind {
	case ValueAbsent:
		return nil
	case ValueText:
		return v.Text
	case ValueNumber:
		return v.Number
	case ValueBool:
		return v.Bool
	case ValueList:
		return v.List
	default:
		return nil
	}
}

// ParseAttributeValue 从存储形态解析属性值
// valueType 取自 models 中定义的属性值类型常量
func ParseAttributeValue(valueType, raw string) (AttributeValue, error) {
	switch valueType {
	case models.AttributeValueTypeText, "":
		return TextValue(raw), nil
	case models.AttributeValueTypeNumber:
		n, err := cast.ToFloat64E(strings.TrimSpace(raw))
		if err != nil {
			return AbsentValue(), fmt.Errorf("数值解析失败: %q", raw)
		}
		return NumberValue(n), nil
	case models.AttributeValueTypeBoolean:
		b, err := cast.ToBoolE(strings.TrimSpace(raw))
		if err != nil {
			return AbsentValue(), fmt.Errorf("布尔值解析失败: %q", raw)
		}
		return BoolValue(b), nil
	case models.AttributeValueTypeList:
		var items []string
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return AbsentValue(), fmt.Errorf("列表值解析失败: %q", raw)
		}
		return ListValue(items), nil
	default:
		return AbsentValue(), fmt.Errorf("未知的属性值类型: %s", valueType)
	}
}
