/*
 * @module service/quality/evaluators
 * @description 十种规则类型的纯函数评估器
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/quality_engine_req.md
 * @stateFlow 引擎按规则类型分发 -> 评估器消费属性值与类型化参数 -> 返回通过与否及消息
 * @rules 除 REQUIRED 外，约束型规则对缺失值一律判通过，缺失只由 REQUIRED 扣一次分
 * @dependencies github.com/demetrio-freitas/pim-sub000/service/models
 * @refs engine.go, params.go, value.go
 */

package quality

import "fmt"

// evalRequired 必填：值存在且文本非空白
func evalRequired(attr string, value AttributeValue) (bool, string) {
	if value.IsBlank() {
		return false, fmt.Sprintf("属性 %s 为必填项", attr)
	}
	return true, ""
}

// evalMinLength 最小长度：值缺失或长度达标
// 缺失交由 REQUIRED 负责；已填写的空文本长度为 0，照常判不达标
func evalMinLength(attr string, value AttributeValue, p *MinLengthParams) (bool, string) {
	if value.IsAbsent() {
		return true, ""
	}
	if value.Length() < p.Min {
		return false, fmt.Sprintf("属性 %s 长度 %d 小于最小长度 %d", attr, value.Length(), p.Min)
	}
	return true, ""
}

// evalMaxLength 最大长度：值缺失或长度不超标
func evalMaxLength(attr string, value AttributeValue, p *MaxLengthParams) (bool, string) {
	if value.IsAbsent() {
		return true, ""
	}
	if value.Length() > p.Max {
		return false, fmt.Sprintf("属性 %s 长度 %d 超过最大长度 %d", attr, value.Length(), p.Max)
	}
	return true, ""
}

// evalRegex 正则：值缺失或全量匹配 pattern
func evalRegex(attr string, value AttributeValue, p *RegexParams) (bool, string) {
	if value.IsAbsent() {
		return true, ""
	}
	if !p.Match(value.AsText()) {
		return false, fmt.Sprintf("属性 %s 值不匹配模式 %s", attr, p.Pattern)
	}
	return true, ""
}

// evalRange 数值范围：值缺失或在 [min, max] 闭区间内
// 值存在但无法解析为数值视为不满足
func evalRange(attr string, value AttributeValue, p *RangeParams) (bool, string) {
	if value.IsAbsent() {
		return true, ""
	}
	n, ok := value.AsNumber()
	if !ok {
		return false, fmt.Sprintf("属性 %s 值 %q 不是数值", attr, value.AsText())
	}
	if n < p.Min || n > p.Max {
		return false, fmt.Sprintf("属性 %s 值 %v 不在范围 [%v, %v] 内", attr, n, p.Min, p.Max)
	}
	return true, ""
}

// evalEnum 枚举：值缺失或为 values 成员；列表值要求每个元素均为成员
func evalEnum(attr string, value AttributeValue, p *EnumParams) (bool, string) {
	if value.IsAbsent() {
		return true, ""
	}
	if value.Kind == ValueList {
		for _, item := range value.List {
			if !p.Contains(item) {
				return false, fmt.Sprintf("属性 %s 包含不在允许范围内的值 %q", attr, item)
			}
		}
		return true, ""
	}
	if !p.Contains(value.AsText()) {
		return false, fmt.Sprintf("属性 %s 值 %q 不在允许的值列表中", attr, value.AsText())
	}
	return true, ""
}

// evalFormat 命名格式：值缺失或通过指定格式校验器
func evalFormat(attr string, value AttributeValue, p *FormatParams) (bool, string) {
	if value.IsAbsent() {
		return true, ""
	}
	fn, ok := LookupFormat(p.Name)
	if !ok {
		// 解析阶段已校验，此处只是防御
		return false, fmt.Sprintf("格式校验器 %s 未注册", p.Name)
	}
	if !fn(value.AsText()) {
		return false, fmt.Sprintf("属性 %s 值不符合 %s 格式", attr, p.Name)
	}
	return true, ""
}

// evalRelationship 属性间关系
// equals/not_equals/greater_than 在任一侧缺失时判通过（存在性由 REQUIRED 负责）；
// requires 表示本属性有值时另一属性也必须有值
func evalRelationship(attr string, value AttributeValue, product *ProductData, p *RelationshipParams) (bool, string) {
	other := product.Attribute(p.OtherAttribute)

	switch p.Relation {
	case RelationRequires:
		if !value.IsBlank() && other.IsBlank() {
			return false, fmt.Sprintf("属性 %s 有值时要求属性 %s 也必须有值", attr, p.OtherAttribute)
		}
		return true, ""

	case RelationEquals:
		if value.IsBlank() || other.IsBlank() {
			return true, ""
		}
		if value.AsText() != other.AsText() {
			return false, fmt.Sprintf("属性 %s 与属性 %s 的值必须相等", attr, p.OtherAttribute)
		}
		return true, ""

	case RelationNotEquals:
		if value.IsBlank() || other.IsBlank() {
			return true, ""
		}
		if value.AsText() == other.AsText() {
			return false, fmt.Sprintf("属性 %s 与属性 %s 的值不能相等", attr, p.OtherAttribute)
		}
		return true, ""

	case RelationGreaterThan:
		if value.IsBlank() || other.IsBlank() {
			return true, ""
		}
		a, aok := value.AsNumber()
		b, bok := other.AsNumber()
		if !aok || !bok {
			return false, fmt.Sprintf("属性 %s 与属性 %s 必须均为数值才能比较大小", attr, p.OtherAttribute)
		}
		if a <= b {
			return false, fmt.Sprintf("属性 %s 的值必须大于属性 %s 的值", attr, p.OtherAttribute)
		}
		return true, ""

	default:
		// 解析阶段已校验
		return false, fmt.Sprintf("不支持的关系类型: %s", p.Relation)
	}
}
