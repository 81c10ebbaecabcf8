/*
 * @module service/quality/format
 * @description 命名格式校验器注册表，FORMAT 规则按名称查找校验函数
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/quality_engine_req.md
 * @stateFlow 启动时注册内置校验器 -> 规则解析时按名查找 -> 评估时执行
 * @rules 注册表固定但可扩展，未注册的格式名在规则校验阶段即被拒绝
 * @dependencies net/url, github.com/google/uuid
 * @refs params.go, evaluators.go
 */

package quality

import (
	"net/url"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FormatValidator 命名格式校验函数
type FormatValidator func(value string) bool

var (
	formatMu       sync.RWMutex
	formatRegistry = map[string]FormatValidator{
		"email":  isEmail,
		"url":    isURL,
		"gtin13": isGTIN13,
		"phone":  isPhone,
		"date":   isDate,
		"uuid":   isUUID,
		"slug":   isSlug,
	}
)

// RegisterFormat 注册自定义格式校验器，同名覆盖
func RegisterFormat(name string, fn FormatValidator) {
	formatMu.Lock()
	defer formatMu.Unlock()
	formatRegistry[name] = fn
}

// LookupFormat 按名称查找格式校验器
func LookupFormat(name string) (FormatValidator, bool) {
	formatMu.RLock()
	defer formatMu.RUnlock()
	fn, ok := formatRegistry[name]
	return fn, ok
}

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9 -]{5,19}$`)
	slugRegex  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	digitRegex = regexp.MustCompile(`^[0-9]+$`)
)

func isEmail(value string) bool {
	return emailRegex.MatchString(value)
}

func isURL(value string) bool {
	u, err := url.ParseRequestURI(value)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// isGTIN13 校验 GTIN-13 条码：13 位数字且校验位正确
func isGTIN13(value string) bool {
	if len(value) != 13 || !digitRegex.MatchString(value) {
		return false
	}
	sum := 0
	for i := 0; i < 12; i++ {
		digit := int(value[i] - '0')
		if i%2 == 1 {
			digit *= 3
		}
		sum += digit
	}
	check := (10 - sum%10) % 10
	return check == int(value[12]-'0')
}

func isPhone(value string) bool {
	return phoneRegex.MatchString(value)
}

func isDate(value string) bool {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}

func isUUID(value string) bool {
	_, err := uuid.Parse(value)
	return err == nil
}

func isSlug(value string) bool {
	return slugRegex.MatchString(value)
}
