package level

import "errors"

// 级别解析相关错误。
var (
	// ErrUnknownLevel 表示无法识别的级别名称或值。
	ErrUnknownLevel = errors.New("level: unknown level")
)
