package config

import "errors"

// 配置加载和解析相关错误。
var (
	// ErrUnsupportedFormat 表示不支持的配置文件格式。
	ErrUnsupportedFormat = errors.New("config: unsupported config format")

	// ErrLoadFailed 表示配置加载失败。
	ErrLoadFailed = errors.New("config: failed to load config")

	// ErrParseFailed 表示配置解析失败。
	ErrParseFailed = errors.New("config: failed to parse config")

	// ErrUnmarshalFailed 表示配置反序列化失败。
	ErrUnmarshalFailed = errors.New("config: failed to unmarshal config")
)

// 配置校验相关错误。
var (
	// ErrNoHandlers 表示没有任何处理器被启用。
	ErrNoHandlers = errors.New("config: no handlers enabled")

	// ErrUnknownHandler 表示引用了未定义的处理器。
	ErrUnknownHandler = errors.New("config: unknown handler")

	// ErrUnknownFormatter 表示处理器引用了未定义的格式化器。
	ErrUnknownFormatter = errors.New("config: unknown formatter")

	// ErrUnknownFilter 表示处理器引用了未定义的过滤器。
	ErrUnknownFilter = errors.New("config: unknown filter")

	// ErrUnknownKind 表示未知的处理器 / 过滤器 / 格式化器类型。
	ErrUnknownKind = errors.New("config: unknown kind")

	// ErrHandlerNotEnabled 表示路由引用了已定义但未启用的处理器。
	ErrHandlerNotEnabled = errors.New("config: handler not enabled")

	// ErrBadLevel 表示无法归一化的级别值。
	ErrBadLevel = errors.New("config: bad level value")
)
