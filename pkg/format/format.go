package format

import (
	"fmt"

	"github.com/podhq/podLog/pkg/core/record"
)

// 默认时间戳布局
const (
	// DefaultTextTimeLayout text 渲染器的易读布局
	DefaultTextTimeLayout = "2006-01-02 15:04:05"
	// DefaultISOTimeLayout 结构化渲染器的 ISO 8601 布局（数字时区偏移）
	DefaultISOTimeLayout = "2006-01-02T15:04:05-0700"
)

// Formatter 把 Record 渲染为单行字节序列
type Formatter interface {
	Format(r *record.Record) ([]byte, error)
}

// fieldString 按名取字段并渲染为字符串，缺失返回 fallback
func fieldString(r *record.Record, name, fallback string) string {
	v, ok := r.Field(name)
	if !ok {
		return fallback
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// isReservedKey 富化层注入的保留键，结构化渲染器的 extra 遍历跳过它们
func isReservedKey(key string) bool {
	return key == "context" || key == "extra_kvs"
}

// stringify 任意字段值的文本形式
func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
