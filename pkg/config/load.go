package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kjson "github.com/knadh/koanf/parsers/json"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix 环境变量前缀，双下划线映射为配置树的层级分隔符。
// 例如 PODLOG__LEVELS__ROOT=debug 等价于 levels.root: debug。
const EnvPrefix = "PODLOG__"

// DefaultFileNames 自动搜索的配置文件名，按优先级排列
var DefaultFileNames = []string{"podlog.yaml", "podlog.yml", "podlog.json"}

type loadOptions struct {
	path        string
	bytes       []byte
	bytesFormat string
	searchDirs  []string
	useEnv      bool
	overrides   map[string]any
}

// Option 加载选项
type Option func(*loadOptions)

func defaultLoadOptions() *loadOptions {
	return &loadOptions{
		searchDirs: []string{"."},
		useEnv:     true,
	}
}

// WithFile 指定配置文件路径，跳过自动搜索
func WithFile(path string) Option {
	return func(o *loadOptions) {
		o.path = path
	}
}

// WithBytes 以内存字节作为配置来源，format 为 "yaml" 或 "json"
//
// 适用于 K8s ConfigMap 等没有落盘文件的场景，替代文件层
// （同时指定 WithFile 时以字节数据为准）。
func WithBytes(data []byte, format string) Option {
	return func(o *loadOptions) {
		o.bytes = data
		o.bytesFormat = format
	}
}

// WithSearchDirs 指定自动搜索配置文件的目录
func WithSearchDirs(dirs ...string) Option {
	return func(o *loadOptions) {
		o.searchDirs = dirs
	}
}

// WithoutEnv 禁用环境变量层，测试中隔离进程环境时使用
func WithoutEnv() Option {
	return func(o *loadOptions) {
		o.useEnv = false
	}
}

// WithOverrides 注入程序化覆盖，优先级最高
//
// 键用点号分隔层级，如 "levels.root"。
func WithOverrides(values map[string]any) Option {
	return func(o *loadOptions) {
		o.overrides = values
	}
}

// Load 按默认值 → 文件 → 环境变量 → 覆盖的顺序加载并展开配置
//
// 未指定文件时在搜索目录中查找 [DefaultFileNames]，找不到也不报错——
// 内置默认值足以得到一份可用配置。Load 不做引用校验，
// 调用方（通常是 manager）在应用前调用 [Validate]。
func Load(opts ...Option) (*Config, error) {
	o := defaultLoadOptions()
	for _, opt := range opts {
		opt(o)
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaultTyped(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("%w: defaults: %w", ErrLoadFailed, err)
	}
	if err := k.Load(confmap.Provider(defaultTree(), "."), nil); err != nil {
		return nil, fmt.Errorf("%w: defaults: %w", ErrLoadFailed, err)
	}

	switch {
	case o.bytes != nil:
		parser, err := parserForFormat(o.bytesFormat)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(o.bytes), parser); err != nil {
			return nil, fmt.Errorf("%w: bytes: %w", ErrParseFailed, err)
		}
	default:
		path := o.path
		if path == "" {
			path = FindConfigFile(o.searchDirs...)
		}
		if path != "" {
			parser, err := parserFor(path)
			if err != nil {
				return nil, err
			}
			if err := k.Load(file.Provider(path), parser); err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrParseFailed, path, err)
			}
		}
	}

	if o.useEnv {
		if err := k.Load(env.Provider(EnvPrefix, ".", envKeyTransform), nil); err != nil {
			return nil, fmt.Errorf("%w: env: %w", ErrLoadFailed, err)
		}
	}

	if len(o.overrides) > 0 {
		if err := k.Load(confmap.Provider(o.overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("%w: overrides: %w", ErrLoadFailed, err)
		}
	}

	return expand(k)
}

// FindConfigFile 在给定目录中查找默认配置文件，返回首个命中的路径。
// 未命中返回空串。
func FindConfigFile(dirs ...string) string {
	for _, dir := range dirs {
		for _, name := range DefaultFileNames {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}
	}
	return ""
}

// expand 把合并后的 koanf 树展开为强类型配置
func expand(k *koanf.Koanf) (*Config, error) {
	var typed typedSections
	if err := k.UnmarshalWithConf("", &typed, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnmarshalFailed, err)
	}

	raw := k.Raw()
	return &Config{
		Paths:      typed.Paths,
		Levels:     typed.Levels,
		Async:      typed.Async,
		Context:    typed.Context,
		Logging:    typed.Logging,
		Formatters: expandFormatters(subTree(raw, "formatters")),
		Filters:    expandFilters(subTree(raw, "filters")),
		Handlers:   expandHandlers(subTree(raw, "handlers")),
	}, nil
}

func subTree(raw map[string]any, key string) map[string]any {
	if m, ok := raw[key].(map[string]any); ok {
		return m
	}
	return nil
}

// parserFor 按扩展名选择解析器
func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return kyaml.Parser(), nil
	case ".json":
		return kjson.Parser(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// parserForFormat 按格式名选择解析器
func parserForFormat(format string) (koanf.Parser, error) {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return kyaml.Parser(), nil
	case "json":
		return kjson.Parser(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// envKeyTransform 把 PODLOG__HANDLERS__APP__LEVEL 映射为 handlers.app.level
func envKeyTransform(key string) string {
	trimmed := strings.TrimPrefix(key, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(trimmed), "__", ".")
}
