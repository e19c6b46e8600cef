package format

import (
	json "github.com/goccy/go-json"

	"github.com/podhq/podLog/pkg/core/record"
)

// JSONLines 每条记录渲染为一个紧凑 JSON 对象
//
// 固定键 ts/level/name/message 之后是 context 与 extra 对象。
// extra 的取值有两种模式：
//   - 白名单模式（Whitelist 非空）：只取白名单内按名可达的字段
//   - 排除模式：附件里除保留键与 DropFields 之外的全部键
type JSONLines struct {
	whitelist  []string
	dropFields map[string]struct{}
	timeLayout string
}

// JSONLinesOption JSONLines 构造选项
type JSONLinesOption func(*JSONLines)

// WithWhitelist 只输出白名单字段到 extra
func WithWhitelist(keys ...string) JSONLinesOption {
	return func(f *JSONLines) { f.whitelist = keys }
}

// WithDropFields 从 extra 中排除指定字段（白名单模式下无效）
func WithDropFields(keys ...string) JSONLinesOption {
	return func(f *JSONLines) {
		f.dropFields = make(map[string]struct{}, len(keys))
		for _, k := range keys {
			f.dropFields[k] = struct{}{}
		}
	}
}

// WithJSONTimeLayout 覆盖时间戳布局
func WithJSONTimeLayout(layout string) JSONLinesOption {
	return func(f *JSONLines) { f.timeLayout = layout }
}

// NewJSONLines 创建 jsonl 渲染器
func NewJSONLines(opts ...JSONLinesOption) *JSONLines {
	f := &JSONLines{timeLayout: DefaultISOTimeLayout}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type jsonlPayload struct {
	TS      string         `json:"ts"`
	Level   string         `json:"level"`
	Name    string         `json:"name"`
	Message string         `json:"message"`
	Context string         `json:"context,omitempty"`
	Extra   map[string]any `json:"extra,omitempty"`
}

// Format 实现 [Formatter]
func (f *JSONLines) Format(r *record.Record) ([]byte, error) {
	p := jsonlPayload{
		TS:      r.Time().Format(f.timeLayout),
		Level:   r.Level().String(),
		Name:    r.Logger(),
		Message: r.Message(),
		Context: fieldString(r, "context", ""),
	}

	if len(f.whitelist) > 0 {
		extra := make(map[string]any, len(f.whitelist))
		for _, key := range f.whitelist {
			if v, ok := r.Field(key); ok {
				extra[key] = v
			}
		}
		if len(extra) > 0 {
			p.Extra = extra
		}
	} else if a := r.Attachment(); a != nil && a.Len() > 0 {
		extra := make(map[string]any, a.Len())
		a.Range(func(key string, value any) bool {
			if isReservedKey(key) {
				return true
			}
			if _, drop := f.dropFields[key]; drop {
				return true
			}
			extra[key] = value
			return true
		})
		if len(extra) > 0 {
			p.Extra = extra
		}
	}

	return json.Marshal(&p)
}
