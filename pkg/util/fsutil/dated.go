package fsutil

import (
	"fmt"
	"path/filepath"
	"time"
)

// DefaultDateLayout 扁平布局下日期目录名的默认格式
const DefaultDateLayout = "2006-01-02"

// DateMode 日期分区布局
type DateMode string

const (
	// DateModeFlat 扁平布局：base/<日期>/file.log
	DateModeFlat DateMode = "flat"
	// DateModeNested 嵌套布局：base/YYYY/MM/DD/file.log
	DateModeNested DateMode = "nested"
	// DateModeOff 不分区：base/file.log
	DateModeOff DateMode = "off"
)

// ParseDateMode 解析日期分区布局名
//
// 空串视为 off。未知名称返回错误而不是静默回退——
// 布局拼写错会改变磁盘目录结构，必须在配置阶段暴露。
func ParseDateMode(s string) (DateMode, error) {
	switch DateMode(s) {
	case DateModeFlat, DateModeNested, DateModeOff:
		return DateMode(s), nil
	case "":
		return DateModeOff, nil
	default:
		return "", fmt.Errorf("fsutil: unknown date mode %q: %w", s, ErrInvalidPath)
	}
}

// DatedDir 按布局合成日期分区目录
//
// flat 布局用 layout（空串取 [DefaultDateLayout]）格式化单级日期目录；
// nested 布局固定为 年/月/日 三级目录，忽略 layout；off 原样返回 base。
// 纯函数，不接触文件系统。
func DatedDir(base string, t time.Time, mode DateMode, layout string) string {
	switch mode {
	case DateModeFlat:
		if layout == "" {
			layout = DefaultDateLayout
		}
		return filepath.Join(base, t.Format(layout))
	case DateModeNested:
		return filepath.Join(base, t.Format("2006"), t.Format("01"), t.Format("02"))
	default:
		return base
	}
}

// DatedPath 合成完整的日志文件路径：日期分区目录 + 文件名
func DatedPath(base, filename string, t time.Time, mode DateMode, layout string) string {
	return filepath.Join(DatedDir(base, t, mode, layout), filename)
}
