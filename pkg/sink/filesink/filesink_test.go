package filesink_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/podhq/podLog/pkg/core/level"
	"github.com/podhq/podLog/pkg/core/record"
	"github.com/podhq/podLog/pkg/format"
	"github.com/podhq/podLog/pkg/sink/filesink"
	"github.com/podhq/podLog/pkg/util/fsutil"
)

// TestMain 在所有测试完成后检测 goroutine 泄漏。
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// lumberjack 首次轮转后启动常驻清理 goroutine，进程生命周期内不退出
		goleak.IgnoreTopFunction("gopkg.in/natefinch/lumberjack%2ev2.(*Logger).millRun"),
	)
}

func recAt(ts time.Time, msg string) *record.Record {
	return record.New("svc", level.Info, msg, nil, nil, record.WithTime(ts))
}

func TestWritesIntoDatedPartition(t *testing.T) {
	base := t.TempDir()
	s, err := filesink.New(filesink.Config{
		BaseDir:  base,
		Filename: "app.log",
		DateMode: fsutil.DateModeFlat,
	}, format.NewText())
	require.NoError(t, err)
	defer s.Close()

	ts := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.Emit(recAt(ts, "hello")))

	want := filepath.Join(base, "2026-03-07", "app.log")
	assert.Equal(t, want, s.CurrentPath())

	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.True(t, strings.HasSuffix(string(data), "\n"))
}

func TestReopensOnDateBoundary(t *testing.T) {
	base := t.TempDir()
	s, err := filesink.New(filesink.Config{
		BaseDir:  base,
		Filename: "app.log",
		DateMode: fsutil.DateModeNested,
	}, format.NewText())
	require.NoError(t, err)
	defer s.Close()

	day1 := time.Date(2026, 3, 7, 23, 59, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 8, 0, 1, 0, 0, time.UTC)
	require.NoError(t, s.Emit(recAt(day1, "before midnight")))
	require.NoError(t, s.Emit(recAt(day2, "after midnight")))

	p1 := filepath.Join(base, "2026", "03", "07", "app.log")
	p2 := filepath.Join(base, "2026", "03", "08", "app.log")

	d1, err := os.ReadFile(p1)
	require.NoError(t, err)
	d2, err := os.ReadFile(p2)
	require.NoError(t, err)
	assert.Contains(t, string(d1), "before midnight")
	assert.NotContains(t, string(d1), "after midnight")
	assert.Contains(t, string(d2), "after midnight")
}

func TestManualRotateKeepsWriting(t *testing.T) {
	base := t.TempDir()
	s, err := filesink.New(filesink.Config{
		BaseDir:  base,
		Filename: "app.log",
		DateMode: fsutil.DateModeOff,
	}, format.NewText())
	require.NoError(t, err)
	defer s.Close()

	ts := time.Now()
	require.NoError(t, s.Emit(recAt(ts, "first")))
	require.NoError(t, s.Rotate())
	require.NoError(t, s.Emit(recAt(ts, "second")))

	// 轮转后活跃文件只含新记录，旧记录在备份里
	data, err := os.ReadFile(filepath.Join(base, "app.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "second")
	assert.NotContains(t, string(data), "first")

	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	var backups int
	for _, e := range entries {
		if e.Name() != "app.log" && strings.HasPrefix(e.Name(), "app-") {
			backups++
		}
	}
	assert.Equal(t, 1, backups)
}

func TestBadFilenameRejected(t *testing.T) {
	_, err := filesink.New(filesink.Config{
		BaseDir:  t.TempDir(),
		Filename: "../escape.log",
	}, format.NewText())
	assert.ErrorIs(t, err, fsutil.ErrPathTraversal)

	_, err = filesink.New(filesink.Config{
		BaseDir:  t.TempDir(),
		Filename: "sub/dir.log",
	}, format.NewText())
	assert.ErrorIs(t, err, fsutil.ErrInvalidPath)
}

func TestRetentionMaxFiles(t *testing.T) {
	dir := t.TempDir()
	stem := "app.log"
	// 构造三个备份文件，mtime 依次变老
	mtimes := []time.Duration{-1 * time.Hour, -2 * time.Hour, -3 * time.Hour}
	for i, d := range mtimes {
		p := filepath.Join(dir, "app-backup"+strings.Repeat("x", i)+".log")
		require.NoError(t, os.WriteFile(p, []byte("data"), 0600))
		ts := time.Now().Add(d)
		require.NoError(t, os.Chtimes(p, ts, ts))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, stem), []byte("active"), 0600))

	filesink.RetentionPolicy{MaxFiles: filesink.Keep(1)}.Apply(dir, stem)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	// 活跃文件不动，备份只剩最新的一个
	assert.Contains(t, names, stem)
	assert.Contains(t, names, "app-backup.log")
	assert.Len(t, names, 2)
}

func TestRetentionMaxAge(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "app-old.log")
	fresh := filepath.Join(dir, "app-fresh.log")
	require.NoError(t, os.WriteFile(old, []byte("x"), 0600))
	require.NoError(t, os.WriteFile(fresh, []byte("x"), 0600))
	stale := time.Now().Add(-72 * time.Hour)
	require.NoError(t, os.Chtimes(old, stale, stale))

	filesink.RetentionPolicy{MaxAgeDays: filesink.Keep(1)}.Apply(dir, "app.log")

	_, err := os.Stat(old)
	assert.True(t, os.IsNotExist(err), "stale backup should be removed")
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
}

func TestRetentionCompress(t *testing.T) {
	dir := t.TempDir()
	backup := filepath.Join(dir, "app-2026.log")
	require.NoError(t, os.WriteFile(backup, []byte("payload"), 0600))

	filesink.RetentionPolicy{Compress: true}.Apply(dir, "app.log")

	_, err := os.Stat(backup)
	assert.True(t, os.IsNotExist(err), "original backup should be removed after compression")
	_, err = os.Stat(backup + ".gz")
	assert.NoError(t, err)
}
