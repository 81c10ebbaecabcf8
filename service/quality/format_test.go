/*
 * @module service/quality/format_test
 * @description 命名格式校验器注册表的单元测试
 * @architecture 测试层
 * @documentReference dev_docs/quality_engine_req.md
 * @stateFlow 按名称查找校验器 -> 输入合法与非法样例 -> 断言判定结果
 * @rules 每个内置格式至少覆盖一个合法与一个非法样例
 * @dependencies testing, github.com/stretchr/testify/assert
 * @refs format.go
 */

package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkFormat(t *testing.T, name, value string) bool {
	t.Helper()
	fn, ok := LookupFormat(name)
	require.True(t, ok, "格式校验器 %s 未注册", name)
	return fn(value)
}

func TestFormat_Email(t *testing.T) {
	assert.True(t, checkFormat(t, "email", "user@example.com"))
	assert.False(t, checkFormat(t, "email", "not-an-email"))
	assert.False(t, checkFormat(t, "email", "user@"))
}

func TestFormat_URL(t *testing.T) {
	assert.True(t, checkFormat(t, "url", "https://example.com/p/1"))
	assert.True(t, checkFormat(t, "url", "http://example.com"))
	assert.False(t, checkFormat(t, "url", "ftp://example.com"))
	assert.False(t, checkFormat(t, "url", "example.com"))
}

func TestFormat_GTIN13(t *testing.T) {
	// 4006381333931 是校验位正确的 GTIN-13 样例
	assert.True(t, checkFormat(t, "gtin13", "4006381333931"))
	// 校验位错误
	assert.False(t, checkFormat(t, "gtin13", "4006381333932"))
	// 位数不足
	assert.False(t, checkFormat(t, "gtin13", "400638133393"))
	// 含非数字字符
	assert.False(t, checkFormat(t, "gtin13", "40063813339a1"))
}

func TestFormat_Phone(t *testing.T) {
	assert.True(t, checkFormat(t, "phone", "+8613800138000"))
	assert.True(t, checkFormat(t, "phone", "010-1234567"))
	assert.False(t, checkFormat(t, "phone", "abc"))
	assert.False(t, checkFormat(t, "phone", "12"))
}

func TestFormat_Date(t *testing.T) {
	assert.True(t, checkFormat(t, "date", "2026-08-31"))
	assert.True(t, checkFormat(t, "date", "2026-08-31T10:30:00Z"))
	assert.False(t, checkFormat(t, "date", "31/08/2026"))
	assert.False(t, checkFormat(t, "date", "not-a-date"))
}

func TestFormat_UUID(t *testing.T) {
	assert.True(t, checkFormat(t, "uuid", "6ba7b810-9dad-11d1-80b4-00c04fd430c8"))
	assert.False(t, checkFormat(t, "uuid", "not-a-uuid"))
}

func TestFormat_Slug(t *testing.T) {
	assert.True(t, checkFormat(t, "slug", "red-widget-2026"))
	assert.False(t, checkFormat(t, "slug", "Red Widget"))
	assert.False(t, checkFormat(t, "slug", "-leading-dash"))
}

func TestFormat_Register(t *testing.T) {
	RegisterFormat("always_true", func(string) bool { return true })
	assert.True(t, checkFormat(t, "always_true", "anything"))

	_, ok := LookupFormat("never_registered")
	assert.False(t, ok)
}
