package filesink

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
)

// RetentionPolicy 轮转备份的保留规则
//
// 清扫对象是目录内以活跃文件名为前缀、且不是活跃文件本身的备份。
// MaxFiles/MaxAgeDays 为 nil 时对应维度不限制（0 是合法值：
// MaxFiles=0 删除全部备份）。
type RetentionPolicy struct {
	// MaxFiles 最多保留的备份数（按修改时间新到旧排序后截断）
	MaxFiles *int
	// MaxAgeDays 备份最长存活天数
	MaxAgeDays *int
	// Compress 把未压缩的备份 gzip 后删除原文件
	Compress bool
}

// Keep 构造 *int 的便捷函数
func Keep(n int) *int { return &n }

// Apply 对目录执行一次清扫
//
// 清扫是尽力而为：单个文件的 stat/删除/压缩失败不中断其余文件，
// 也不向调用方报错——保留策略失败不应该阻塞日志写入路径。
func (p RetentionPolicy) Apply(dir, stem string) {
	if p.MaxFiles == nil && p.MaxAgeDays == nil && !p.Compress {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	type backup struct {
		path  string
		mtime time.Time
	}
	var backups []backup
	for _, e := range entries {
		if e.IsDir() || e.Name() == stem || !strings.HasPrefix(e.Name(), backupPrefix(stem)) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		backups = append(backups, backup{filepath.Join(dir, e.Name()), info.ModTime()})
	}
	sort.Slice(backups, func(i, j int) bool {
		return backups[i].mtime.After(backups[j].mtime)
	})

	if p.MaxFiles != nil && *p.MaxFiles >= 0 && len(backups) > *p.MaxFiles {
		for _, b := range backups[*p.MaxFiles:] {
			_ = os.Remove(b.path)
		}
		backups = backups[:*p.MaxFiles]
	}

	if p.MaxAgeDays != nil && *p.MaxAgeDays >= 0 {
		cutoff := time.Now().Add(-time.Duration(*p.MaxAgeDays) * 24 * time.Hour)
		kept := backups[:0]
		for _, b := range backups {
			if b.mtime.Before(cutoff) {
				_ = os.Remove(b.path)
				continue
			}
			kept = append(kept, b)
		}
		backups = kept
	}

	if p.Compress {
		for _, b := range backups {
			if !strings.HasSuffix(b.path, ".gz") {
				_ = compressFile(b.path)
			}
		}
	}
}

// backupPrefix lumberjack 备份名形如 stem 去扩展名 + "-时间戳" + 扩展名
func backupPrefix(stem string) string {
	ext := filepath.Ext(stem)
	return strings.TrimSuffix(stem, ext) + "-"
}

// compressFile 把文件 gzip 到同名 .gz 后删除原文件
func compressFile(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(path+".gz", os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}

	gw := gzip.NewWriter(dst)
	_, copyErr := io.Copy(gw, src)
	if err := gw.Close(); copyErr == nil {
		copyErr = err
	}
	if err := dst.Close(); copyErr == nil {
		copyErr = err
	}
	if copyErr != nil {
		_ = os.Remove(path + ".gz")
		return copyErr
	}
	return os.Remove(path)
}
