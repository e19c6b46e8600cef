package fsutil

import "errors"

var (
	// ErrEmptyPath 路径为空
	ErrEmptyPath = errors.New("fsutil: empty path")

	// ErrNullByte 路径包含空字节
	ErrNullByte = errors.New("fsutil: path contains null byte")

	// ErrInvalidPath 路径格式无效（目录路径或无文件名）
	ErrInvalidPath = errors.New("fsutil: invalid path")

	// ErrPathTraversal 路径包含 ".." 穿越段
	ErrPathTraversal = errors.New("fsutil: path traversal")
)
