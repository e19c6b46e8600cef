package fsutil_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podhq/podLog/pkg/util/fsutil"
)

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{"普通文件名", "app.log", "app.log", nil},
		{"相对子目录", "logs/app.log", filepath.Join("logs", "app.log"), nil},
		{"绝对路径", "/var/log/app.log", filepath.Join("/var", "log", "app.log"), nil},
		{"冗余斜杠被规范化", "logs//app.log", filepath.Join("logs", "app.log"), nil},
		{"双点文件名合法", "app..2024.log", "app..2024.log", nil},
		{"空路径", "", "", fsutil.ErrEmptyPath},
		{"空字节", "app\x00.log", "", fsutil.ErrNullByte},
		{"尾随斜杠", "logs/", "", fsutil.ErrInvalidPath},
		{"尾随反斜杠", "logs\\", "", fsutil.ErrInvalidPath},
		{"相对穿越", "../etc/passwd", "", fsutil.ErrPathTraversal},
		{"中段穿越", "logs/../../etc/x", "", fsutil.ErrPathTraversal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fsutil.SanitizePath(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnsureDir(t *testing.T) {
	t.Run("创建多级父目录", func(t *testing.T) {
		base := t.TempDir()
		target := filepath.Join(base, "a", "b", "app.log")
		require.NoError(t, fsutil.EnsureDir(target))

		info, err := os.Stat(filepath.Dir(target))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("目录已存在不报错", func(t *testing.T) {
		base := t.TempDir()
		target := filepath.Join(base, "app.log")
		require.NoError(t, fsutil.EnsureDir(target))
		require.NoError(t, fsutil.EnsureDir(target))
	})

	t.Run("无目录部分直接返回", func(t *testing.T) {
		assert.NoError(t, fsutil.EnsureDir("app.log"))
	})

	t.Run("空路径报错", func(t *testing.T) {
		assert.ErrorIs(t, fsutil.EnsureDir(""), fsutil.ErrEmptyPath)
	})
}

func TestParseDateMode(t *testing.T) {
	tests := []struct {
		in      string
		want    fsutil.DateMode
		wantErr bool
	}{
		{"flat", fsutil.DateModeFlat, false},
		{"nested", fsutil.DateModeNested, false},
		{"off", fsutil.DateModeOff, false},
		{"", fsutil.DateModeOff, false},
		{"daily", "", true},
	}
	for _, tt := range tests {
		t.Run("in="+tt.in, func(t *testing.T) {
			got, err := fsutil.ParseDateMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDatedPath(t *testing.T) {
	ts := time.Date(2026, 3, 7, 15, 4, 5, 0, time.UTC)

	t.Run("扁平默认布局", func(t *testing.T) {
		got := fsutil.DatedPath("/var/log", "app.log", ts, fsutil.DateModeFlat, "")
		assert.Equal(t, filepath.Join("/var/log", "2026-03-07", "app.log"), got)
	})

	t.Run("扁平自定义布局", func(t *testing.T) {
		got := fsutil.DatedPath("/var/log", "app.log", ts, fsutil.DateModeFlat, "20060102")
		assert.Equal(t, filepath.Join("/var/log", "20260307", "app.log"), got)
	})

	t.Run("嵌套布局忽略layout", func(t *testing.T) {
		got := fsutil.DatedPath("/var/log", "app.log", ts, fsutil.DateModeNested, "20060102")
		assert.Equal(t, filepath.Join("/var/log", "2026", "03", "07", "app.log"), got)
	})

	t.Run("不分区", func(t *testing.T) {
		got := fsutil.DatedPath("/var/log", "app.log", ts, fsutil.DateModeOff, "")
		assert.Equal(t, filepath.Join("/var/log", "app.log"), got)
	})
}
