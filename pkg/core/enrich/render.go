package enrich

import (
	"fmt"
	"sort"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/podhq/podLog/pkg/core/record"
)

// 附件中由适配器注入的两个保留键
const (
	KeyContext  = "context"
	KeyExtraKVs = "extra_kvs"
)

// EmptyContext 上下文为空时的占位渲染
const EmptyContext = "-"

// RenderContext 把持久上下文渲染为按键排序的 "k=v k=v" 字符串
//
// allowed 非空时只渲染集合内的键（配置的 allowed_keys 过滤）。
// 排序保证渲染结果不依赖插入顺序，日志可 diff、测试可断言。
// 空结果渲染为 [EmptyContext]。
func RenderContext(ctx map[string]any, allowed map[string]struct{}) string {
	if len(ctx) == 0 {
		return EmptyContext
	}
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		if len(allowed) > 0 {
			if _, ok := allowed[k]; !ok {
				continue
			}
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return EmptyContext
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(renderValue(ctx[k]))
	}
	return b.String()
}

// RenderExtraKVs 把合并后的附加映射渲染为空格连接的 "k=v" 文本
//
// 跳过 context / extra_kvs 两个保留键，保持插入顺序。
// 单个值渲染失败只影响该键的文本（换用通用表示），不中断其余键。
func RenderExtraKVs(a *record.Attachment) string {
	if a == nil || a.Len() == 0 {
		return ""
	}
	var b strings.Builder
	a.Range(func(key string, value any) bool {
		if key == KeyContext || key == KeyExtraKVs {
			return true
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(renderValue(value))
		return true
	})
	return b.String()
}

// renderValue 标量直接 fmt 渲染；非标量 JSON 编码，编码失败或 panic 退化为 %+v
//
// 用户类型的 MarshalJSON 可能 panic，日志路径不允许炸回业务调用方，
// 收敛后只影响该键的文本。%+v 路径由 fmt 自行收敛方法 panic。
func renderValue(v any) (s string) {
	switch v.(type) {
	case nil:
		return "<nil>"
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return fmt.Sprint(v)
	}
	defer func() {
		if recover() != nil {
			s = fmt.Sprintf("%+v", v)
		}
	}()
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(data)
}
