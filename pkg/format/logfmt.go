package format

import (
	"strings"
	"unicode"

	"github.com/podhq/podLog/pkg/core/record"
)

// LogFmt key=value 形式的结构化渲染器
//
// 固定前缀 ts/level/logger/msg/context，随后是附加字段：
// Keys 非空时按配置顺序取字段，否则按附件插入顺序取除保留键外的全部键。
type LogFmt struct {
	keys       []string
	timeLayout string
}

// LogFmtOption LogFmt 构造选项
type LogFmtOption func(*LogFmt)

// WithKeys 指定附加字段及其输出顺序
func WithKeys(keys ...string) LogFmtOption {
	return func(f *LogFmt) { f.keys = keys }
}

// WithLogFmtTimeLayout 覆盖时间戳布局
func WithLogFmtTimeLayout(layout string) LogFmtOption {
	return func(f *LogFmt) { f.timeLayout = layout }
}

// NewLogFmt 创建 logfmt 渲染器
func NewLogFmt(opts ...LogFmtOption) *LogFmt {
	f := &LogFmt{timeLayout: DefaultISOTimeLayout}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// escapeLogFmt 按 logfmt 约定转义：空值渲染为 ""，
// 含空白、等号或引号的值加引号并转义内部引号。
func escapeLogFmt(text string) string {
	if text == "" {
		return `""`
	}
	needQuote := strings.ContainsAny(text, `="`)
	if !needQuote {
		for _, r := range text {
			if unicode.IsSpace(r) {
				needQuote = true
				break
			}
		}
	}
	if !needQuote {
		return text
	}
	return `"` + strings.ReplaceAll(text, `"`, `\"`) + `"`
}

// Format 实现 [Formatter]
func (f *LogFmt) Format(r *record.Record) ([]byte, error) {
	var b strings.Builder
	writePair := func(key, val string) {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(escapeLogFmt(val))
	}

	writePair("ts", r.Time().Format(f.timeLayout))
	writePair("level", r.Level().String())
	writePair("logger", r.Logger())
	writePair("msg", r.Message())
	if ctx := fieldString(r, "context", ""); ctx != "" {
		writePair("context", ctx)
	}

	if len(f.keys) > 0 {
		for _, key := range f.keys {
			if v, ok := r.Field(key); ok {
				writePair(key, stringify(v))
			}
		}
	} else if a := r.Attachment(); a != nil {
		a.Range(func(key string, value any) bool {
			if !isReservedKey(key) {
				writePair(key, stringify(value))
			}
			return true
		})
	}

	return []byte(b.String()), nil
}
