package format

import (
	"bytes"
	"encoding/csv"
	"strings"
	"sync/atomic"

	"github.com/podhq/podLog/pkg/core/record"
)

// DefaultCSVFields csv 渲染器的默认字段列表
var DefaultCSVFields = []string{"ts", "level", "name", "context", "message"}

// CSV 逐行 CSV 渲染器
//
// fields 里 ts/level/name/message 是内建取值，其余字段名按名从记录取值
// （缺失渲染为空串）。extraFields 追加在固定字段之后。IncludeHeader 开启时
// 首次渲染前输出一行表头，表头只输出一次（CAS 保证并发下不重复）。
type CSV struct {
	fields        []string
	extraFields   []string
	includeHeader bool
	headerEmitted atomic.Bool
	timeLayout    string
}

// CSVOption CSV 构造选项
type CSVOption func(*CSV)

// WithFields 覆盖固定字段列表
func WithFields(fields ...string) CSVOption {
	return func(f *CSV) { f.fields = fields }
}

// WithExtraFields 追加附加字段列
func WithExtraFields(fields ...string) CSVOption {
	return func(f *CSV) { f.extraFields = fields }
}

// WithHeader 首次输出前渲染表头行
func WithHeader() CSVOption {
	return func(f *CSV) { f.includeHeader = true }
}

// WithCSVTimeLayout 覆盖时间戳布局
func WithCSVTimeLayout(layout string) CSVOption {
	return func(f *CSV) { f.timeLayout = layout }
}

// NewCSV 创建 csv 渲染器
func NewCSV(opts ...CSVOption) *CSV {
	f := &CSV{
		fields:     DefaultCSVFields,
		timeLayout: DefaultISOTimeLayout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *CSV) valueFor(r *record.Record, field string) string {
	switch field {
	case "ts":
		return r.Time().Format(f.timeLayout)
	case "level":
		return r.Level().String()
	case "name":
		return r.Logger()
	case "message":
		return r.Message()
	}
	return fieldString(r, field, "")
}

// Format 实现 [Formatter]
func (f *CSV) Format(r *record.Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if f.includeHeader && f.headerEmitted.CompareAndSwap(false, true) {
		header := make([]string, 0, len(f.fields)+len(f.extraFields))
		header = append(header, f.fields...)
		header = append(header, f.extraFields...)
		if err := w.Write(header); err != nil {
			return nil, err
		}
	}

	row := make([]string, 0, len(f.fields)+len(f.extraFields))
	for _, field := range f.fields {
		row = append(row, f.valueFor(r, field))
	}
	for _, field := range f.extraFields {
		row = append(row, f.valueFor(r, field))
	}
	if err := w.Write(row); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return []byte(strings.TrimRight(buf.String(), "\n")), nil
}
