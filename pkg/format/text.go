package format

import (
	"fmt"

	"github.com/podhq/podLog/pkg/core/record"
)

// Text 人类可读的竖线分隔渲染器
//
// 布局：时间 | 级别 | 名称 | 上下文 | 消息，ShowExtras 开启时追加
// | extra_kvs 列。级别名左对齐补齐到 5 列，常规级别等宽便于肉眼扫读。
type Text struct {
	showExtras bool
	timeLayout string
}

// TextOption Text 构造选项
type TextOption func(*Text)

// WithShowExtras 追加 extra_kvs 列
func WithShowExtras() TextOption {
	return func(t *Text) { t.showExtras = true }
}

// WithTextTimeLayout 覆盖时间戳布局
func WithTextTimeLayout(layout string) TextOption {
	return func(t *Text) { t.timeLayout = layout }
}

// NewText 创建 text 渲染器
func NewText(opts ...TextOption) *Text {
	t := &Text{timeLayout: DefaultTextTimeLayout}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Format 实现 [Formatter]
func (t *Text) Format(r *record.Record) ([]byte, error) {
	ctx := fieldString(r, "context", "-")
	if t.showExtras {
		extras := fieldString(r, "extra_kvs", "-")
		return fmt.Appendf(nil, "%s | %-5s | %s | %s | %s | %s",
			r.Time().Format(t.timeLayout), r.Level(), r.Logger(), ctx, r.Message(), extras), nil
	}
	return fmt.Appendf(nil, "%s | %-5s | %s | %s | %s",
		r.Time().Format(t.timeLayout), r.Level(), r.Logger(), ctx, r.Message()), nil
}
