package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "podlog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const nullPipeline = `
async:
  use_queue_listener: false
handlers:
  enabled: [drop]
  drop:
    type: "null"
`

func TestValidateCommand(t *testing.T) {
	t.Run("合法配置", func(t *testing.T) {
		path := writeConfig(t, nullPipeline)
		code := run([]string{"podlogcheck", "-c", path, "validate"})
		assert.Equal(t, 0, code)
	})

	t.Run("引用缺失的格式化器", func(t *testing.T) {
		path := writeConfig(t, `
handlers:
  enabled: [app]
  app:
    formatter: jsonl.missing
`)
		code := run([]string{"podlogcheck", "-c", path, "validate"})
		assert.Equal(t, 1, code)
	})

	t.Run("文件不存在", func(t *testing.T) {
		code := run([]string{"podlogcheck", "-c", filepath.Join(t.TempDir(), "nope.yaml"), "validate"})
		assert.Equal(t, 1, code)
	})
}

func TestPrintCommand(t *testing.T) {
	path := writeConfig(t, nullPipeline)
	code := run([]string{"podlogcheck", "-c", path, "print"})
	assert.Equal(t, 0, code)
}

func TestEmitCommand(t *testing.T) {
	t.Run("发射成功", func(t *testing.T) {
		path := writeConfig(t, nullPipeline)
		code := run([]string{"podlogcheck", "-c", path, "emit", "-l", "warn", "-m", "probe"})
		assert.Equal(t, 0, code)
	})

	t.Run("非法级别", func(t *testing.T) {
		path := writeConfig(t, nullPipeline)
		code := run([]string{"podlogcheck", "-c", path, "emit", "-l", "shout"})
		assert.Equal(t, 2, code)
	})

	t.Run("写入文件管线", func(t *testing.T) {
		dir := t.TempDir()
		path := writeConfig(t, `
paths:
  base_dir: `+dir+`
  date_folder_mode: off
async:
  use_queue_listener: false
handlers:
  enabled: [app]
  app:
    type: file
    filename: probe.log
`)
		code := run([]string{"podlogcheck", "-c", path, "emit", "-m", "landed"})
		require.Equal(t, 0, code)

		data, err := os.ReadFile(filepath.Join(dir, "probe.log"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "landed")
	})
}
