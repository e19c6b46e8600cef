package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDirPerm 默认目录权限
//
// 0750：所有者读写执行，组读执行，其他无权限。符合 gosec G301 安全建议。
const DefaultDirPerm = 0750

// containsNullByte 检测路径是否包含空字节。
// Linux 内核在 VFS 层会在空字节处截断路径，导致 Go 代码与操作系统看到的路径不一致。
func containsNullByte(path string) bool {
	return strings.ContainsRune(path, 0)
}

// hasDotDotSegment 检测路径中是否包含 ".." 作为独立路径段。
// 同时把 '/' 和 '\' 视为分隔符，以检测 Windows 风格的穿越（即使在 Linux 上）。
func hasDotDotSegment(path string) bool {
	i := 0
	for i < len(path) {
		if path[i] == '/' || path[i] == '\\' {
			i++
			continue
		}
		j := i
		for j < len(path) && path[j] != '/' && path[j] != '\\' {
			j++
		}
		if j-i == 2 && path[i] == '.' && path[i+1] == '.' {
			return true
		}
		i = j
	}
	return false
}

// SanitizePath 对日志文件路径进行格式净化
//
// 拒绝空路径、空字节、尾随分隔符（目录路径）和相对路径穿越。
// 不能用 strings.Contains(path, "..") 判断穿越——会误伤 "app..2024.log"
// 这类合法文件名，这里按路径段精确判断。
//
// 返回规范化后的路径，或格式错误。
func SanitizePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename is required: %w", ErrEmptyPath)
	}
	if containsNullByte(filename) {
		return "", fmt.Errorf("filename contains null byte: %w", ErrNullByte)
	}
	// 尾随分隔符表示目录，必须在 filepath.Clean 之前检查（Clean 会移除尾部斜杠）
	if strings.HasSuffix(filename, "/") || strings.HasSuffix(filename, "\\") {
		return "", fmt.Errorf("path is a directory: %w", ErrInvalidPath)
	}

	cleaned := filepath.Clean(filename)
	if hasDotDotSegment(cleaned) {
		return "", fmt.Errorf("path traversal in filename: %w", ErrPathTraversal)
	}

	base := filepath.Base(cleaned)
	if base == "." || base == string(filepath.Separator) {
		return "", fmt.Errorf("no file name specified: %w", ErrInvalidPath)
	}
	return cleaned, nil
}

// EnsureDir 确保文件的父目录存在，使用默认权限 0750
//
// 目录已存在时不报错，也不会修改已有目录的权限。
// 本函数不拒绝 ".." 路径段；不可信输入应先经 [SanitizePath] 校验。
func EnsureDir(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename is required: %w", ErrEmptyPath)
	}
	if containsNullByte(filename) {
		return fmt.Errorf("filename contains null byte: %w", ErrNullByte)
	}
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, DefaultDirPerm)
}
