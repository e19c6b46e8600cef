package config

import (
	"sort"
	"time"

	"github.com/podhq/podLog/pkg/util/fsutil"
)

// 默认值常量
const (
	// DefaultBaseDir 默认日志根目录
	DefaultBaseDir = "logs"

	// DefaultDateFolderMode 默认日期分区布局
	DefaultDateFolderMode = string(fsutil.DateModeNested)

	// DefaultFormatter 处理器未指定格式化器时的默认引用
	DefaultFormatter = "text.default"

	// DefaultHandlerKind 处理器未指定类型时的默认类型
	DefaultHandlerKind = "console"

	// DefaultFilterKind 过滤器未指定类型时的默认类型
	DefaultFilterKind = "min"
)

// Paths 路径相关配置
type Paths struct {
	// BaseDir 文件类处理器的根目录
	BaseDir string `koanf:"base_dir"`

	// DateFolderMode 日期分区布局：flat / nested / off
	DateFolderMode string `koanf:"date_folder_mode"`

	// DateFormat flat 布局的日期目录格式（Go 时间布局）
	DateFormat string `koanf:"date_format"`
}

// Mode 解析日期分区布局
func (p Paths) Mode() (fsutil.DateMode, error) {
	return fsutil.ParseDateMode(p.DateFolderMode)
}

// Layout 返回日期目录格式，未配置时取 [fsutil.DefaultDateLayout]
func (p Paths) Layout() string {
	if p.DateFormat == "" {
		return fsutil.DefaultDateLayout
	}
	return p.DateFormat
}

// Levels 级别相关配置
type Levels struct {
	// Root 根记录器级别
	Root string `koanf:"root"`

	// EnableTrace 是否注册 TRACE 级别
	EnableTrace bool `koanf:"enable_trace"`

	// Overrides 按记录器名的级别覆盖
	Overrides map[string]string `koanf:"overrides"`
}

// Async 异步分发配置
type Async struct {
	// UseQueueListener 是否启用异步队列分发
	UseQueueListener bool `koanf:"use_queue_listener"`

	// QueueMaxSize 队列容量，0 表示无界
	QueueMaxSize int `koanf:"queue_maxsize"`

	// FlushIntervalMS 周期刷新间隔（毫秒）
	FlushIntervalMS int `koanf:"flush_interval_ms"`

	// GracefulShutdownTimeoutS 优雅关闭的排空时限（秒）
	GracefulShutdownTimeoutS float64 `koanf:"graceful_shutdown_timeout_s"`
}

// FlushInterval 返回刷新间隔
func (a Async) FlushInterval() time.Duration {
	return time.Duration(a.FlushIntervalMS) * time.Millisecond
}

// ShutdownTimeout 返回排空时限
func (a Async) ShutdownTimeout() time.Duration {
	return time.Duration(a.GracefulShutdownTimeoutS * float64(time.Second))
}

// Context 上下文注入配置
type Context struct {
	// Enabled 关闭后 GetContextLogger 的种子上下文被丢弃
	Enabled bool `koanf:"enabled"`

	// AllowedKeys 上下文键白名单，空表示不过滤
	AllowedKeys []string `koanf:"allowed_keys"`
}

// AllowedSet 返回白名单的集合形式，空白名单返回 nil（表示不过滤）
func (c Context) AllowedSet() map[string]struct{} {
	if len(c.AllowedKeys) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(c.AllowedKeys))
	for _, key := range c.AllowedKeys {
		set[key] = struct{}{}
	}
	return set
}

// Route 一个记录器的路由：级别与目标处理器
type Route struct {
	// Level 级别值，空串表示继承
	Level string `koanf:"level"`

	// Handlers 目标处理器名，根路由留空时回退到全部启用的处理器
	Handlers []string `koanf:"handlers"`
}

// Logging 记录器路由配置
type Logging struct {
	// Root 根记录器路由
	Root Route `koanf:"root"`

	// Loggers 具名记录器路由
	Loggers map[string]Route `koanf:"loggers"`

	// DisableExistingLoggers 重配置时是否禁用未被新配置点名的记录器
	DisableExistingLoggers bool `koanf:"disable_existing_loggers"`
}

// FormatterSpec 一个格式化器的展开定义
//
// Name 形如 "kind.name"（如 "text.default"），是处理器引用它的键。
type FormatterSpec struct {
	Name    string
	Kind    string
	Options map[string]any
}

// FilterSpec 一个过滤器的展开定义
type FilterSpec struct {
	Name   string
	Kind   string
	Params map[string]any
}

// HandlerSpec 一个处理器的展开定义
//
// Options 收容类型特有的键（文件名、地址、轮转参数等），
// 由对应的构建器按需弱类型取值。
type HandlerSpec struct {
	Name      string
	Kind      string
	Level     any
	Formatter string
	Filters   []string
	Options   map[string]any
}

// Handlers 处理器段：启用列表加具名定义
type Handlers struct {
	// Enabled 启用的处理器名，保持配置顺序
	Enabled []string

	// Specs 全部已定义的处理器
	Specs map[string]HandlerSpec
}

// Config 展开后的完整配置
type Config struct {
	Paths      Paths
	Levels     Levels
	Async      Async
	Context    Context
	Logging    Logging
	Formatters map[string]FormatterSpec
	Filters    map[string]FilterSpec
	Handlers   Handlers
}

// EnabledSpecs 按启用顺序返回处理器定义
func (c *Config) EnabledSpecs() []HandlerSpec {
	specs := make([]HandlerSpec, 0, len(c.Handlers.Enabled))
	for _, name := range c.Handlers.Enabled {
		if spec, ok := c.Handlers.Specs[name]; ok {
			specs = append(specs, spec)
		}
	}
	return specs
}

// RootHandlers 返回根路由的目标处理器名，未配置时回退到启用列表
func (c *Config) RootHandlers() []string {
	if len(c.Logging.Root.Handlers) > 0 {
		return c.Logging.Root.Handlers
	}
	return c.Handlers.Enabled
}

// typedSections 承载可直接反序列化的配置段，koanf 的 structs
// provider 用它铺默认值。
type typedSections struct {
	Paths   Paths   `koanf:"paths"`
	Levels  Levels  `koanf:"levels"`
	Async   Async   `koanf:"async"`
	Context Context `koanf:"context"`
	Logging Logging `koanf:"logging"`
}

func defaultTyped() typedSections {
	return typedSections{
		Paths: Paths{
			BaseDir:        DefaultBaseDir,
			DateFolderMode: DefaultDateFolderMode,
			DateFormat:     fsutil.DefaultDateLayout,
		},
		Levels: Levels{
			Root:        "info",
			EnableTrace: false,
		},
		Async: Async{
			UseQueueListener:         true,
			QueueMaxSize:             1000,
			FlushIntervalMS:          500,
			GracefulShutdownTimeoutS: 5.0,
		},
		Context: Context{
			Enabled: true,
		},
	}
}

// defaultTree 铺异构段的默认值：一个 text 格式化器和一个启用的
// console 处理器，保证零配置也能出日志。
func defaultTree() map[string]any {
	return map[string]any{
		"formatters": map[string]any{
			"text": map[string]any{
				"default": map[string]any{},
			},
		},
		"handlers": map[string]any{
			"enabled": []any{"console"},
			"console": map[string]any{
				"type":      "console",
				"formatter": DefaultFormatter,
			},
		},
	}
}

// =============================================================================
// 异构段展开
// =============================================================================

// expandFormatters 把 formatters 原始树（kind → name → options）
// 展开为 "kind.name" 键的定义表。
func expandFormatters(raw map[string]any) map[string]FormatterSpec {
	out := make(map[string]FormatterSpec)
	for kind, byName := range raw {
		named, ok := byName.(map[string]any)
		if !ok {
			continue
		}
		for name, options := range named {
			opts, _ := options.(map[string]any)
			full := kind + "." + name
			out[full] = FormatterSpec{
				Name:    full,
				Kind:    kind,
				Options: opts,
			}
		}
	}
	return out
}

// expandFilters 把 filters 原始树（name → params）展开为定义表。
// params 中的 "type" 键决定过滤器类型，缺省为 min。
func expandFilters(raw map[string]any) map[string]FilterSpec {
	out := make(map[string]FilterSpec)
	for name, value := range raw {
		params, ok := value.(map[string]any)
		if !ok {
			continue
		}
		kind := DefaultFilterKind
		if t, ok := params["type"].(string); ok && t != "" {
			kind = t
		}
		rest := make(map[string]any, len(params))
		for k, v := range params {
			if k == "type" {
				continue
			}
			rest[k] = v
		}
		out[name] = FilterSpec{Name: name, Kind: kind, Params: rest}
	}
	return out
}

// expandHandlers 把 handlers 原始树展开：enabled 键是启用列表，
// 其余键是具名处理器定义。enabled 缺省或为空时启用全部处理器
// （按名字排序，保证确定性）。
func expandHandlers(raw map[string]any) Handlers {
	specs := make(map[string]HandlerSpec)
	var enabled []string

	for name, value := range raw {
		if name == "enabled" {
			enabled = toStringSlice(value)
			continue
		}
		body, ok := value.(map[string]any)
		if !ok {
			continue
		}
		spec := HandlerSpec{
			Name:      name,
			Kind:      DefaultHandlerKind,
			Formatter: DefaultFormatter,
			Options:   make(map[string]any),
		}
		for key, v := range body {
			switch key {
			case "type":
				if s, ok := v.(string); ok && s != "" {
					spec.Kind = s
				}
			case "level":
				spec.Level = v
			case "formatter":
				if s, ok := v.(string); ok && s != "" {
					spec.Formatter = s
				}
			case "filters":
				spec.Filters = toStringSlice(v)
			default:
				spec.Options[key] = v
			}
		}
		specs[name] = spec
	}

	if len(enabled) == 0 {
		enabled = make([]string, 0, len(specs))
		for name := range specs {
			enabled = append(enabled, name)
		}
		sort.Strings(enabled)
	}

	return Handlers{Enabled: enabled, Specs: specs}
}

// toStringSlice 弱类型转换字符串列表，koanf 树里列表元素是 any。
func toStringSlice(v any) []string {
	switch value := v.(type) {
	case []string:
		return value
	case []any:
		out := make([]string, 0, len(value))
		for _, item := range value {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
