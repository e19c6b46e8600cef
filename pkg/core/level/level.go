package level

import (
	"fmt"
	"strconv"
	"strings"
)

// Level 日志级别，数值越大越严重
type Level int

// 级别常量
//
// 数值间隔为 10（TRACE 除外），允许调用方在标准级别之间插入自定义数值。
const (
	// Trace 低于最低标准级别的追踪级别，需显式注册后才可路由
	Trace Level = 5

	// Debug 调试级别
	Debug Level = 10

	// Info 常规信息级别
	Info Level = 20

	// Warn 警告级别
	Warn Level = 30

	// Error 错误级别
	Error Level = 40

	// Critical 严重错误级别
	Critical Level = 50
)

// String 返回级别的名称
//
// 标准级别返回大写名称；TRACE 无论是否注册都返回 "TRACE"
// （名称查询是只读操作，不应依赖注册副作用）；
// 其他数值返回 "LEVEL(n)" 形式。
func (l Level) String() string {
	switch l {
	case Trace:
		return "TRACE"
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	case Critical:
		return "CRITICAL"
	default:
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

// MarshalText 实现 encoding.TextMarshaler 接口
//
// 支持配置序列化场景（YAML/JSON）。
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler 接口
//
// 支持从配置文件直接反序列化日志级别。
func (l *Level) UnmarshalText(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Parse 解析字符串为日志级别
//
// 支持级别名（大小写不敏感，"warning" 等价于 "warn"）与纯数字字符串。
// 输入会自动 TrimSpace。未知名称返回错误，不做静默回退。
func Parse(s string) (Level, error) {
	trimmed := strings.TrimSpace(s)
	switch strings.ToLower(trimmed) {
	case "trace":
		return Trace, nil
	case "debug":
		return Debug, nil
	case "info":
		return Info, nil
	case "warn", "warning":
		return Warn, nil
	case "error":
		return Error, nil
	case "critical", "fatal":
		return Critical, nil
	}

	if n, err := strconv.Atoi(trimmed); err == nil {
		return Level(n), nil
	}

	return Info, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}

// Normalize 将任意级别值（字符串名、数字字符串、整数）归一化为 Level
//
// 配置层到处要把 "INFO"、"20"、20 这类值统一为数值级别，集中在此处理。
func Normalize(v any) (Level, error) {
	switch value := v.(type) {
	case Level:
		return value, nil
	case int:
		return Level(value), nil
	case int64:
		return Level(value), nil
	case float64:
		// YAML/JSON 数字解码为 float64
		return Level(int(value)), nil
	case string:
		return Parse(value)
	default:
		return Info, fmt.Errorf("%w: %T", ErrUnknownLevel, v)
	}
}
