package config

import (
	"fmt"

	"github.com/podhq/podLog/pkg/core/level"
)

// 各段合法的类型名。构建器注册表在 manager 里，这里的集合只为
// 让拼写错误在校验阶段就暴露，而不是等到构建时。
var (
	formatterKinds = map[string]struct{}{
		"text": {}, "jsonl": {}, "logfmt": {}, "csv": {},
	}
	filterKinds = map[string]struct{}{
		"min": {}, "exact": {}, "levels": {},
	}
	handlerKinds = map[string]struct{}{
		"console": {}, "file": {}, "null": {}, "syslog": {}, "gelf_udp": {}, "otlp": {},
	}
)

// Validate 校验展开后的配置，发现第一个问题立即返回
//
// 校验覆盖：
//   - 至少启用一个处理器，启用名必须有定义
//   - 处理器引用的格式化器 / 过滤器必须存在，类型名必须合法
//   - 根路由和具名路由引用的处理器必须已定义且已启用
//   - 所有级别值可归一化，日期分区布局名合法
func Validate(cfg *Config) error {
	if len(cfg.Handlers.Enabled) == 0 {
		return ErrNoHandlers
	}

	if _, err := cfg.Paths.Mode(); err != nil {
		return fmt.Errorf("config: paths.date_folder_mode: %w", err)
	}

	enabled := make(map[string]struct{}, len(cfg.Handlers.Enabled))
	for _, name := range cfg.Handlers.Enabled {
		if _, ok := cfg.Handlers.Specs[name]; !ok {
			return fmt.Errorf("%w: %q enabled but not defined", ErrUnknownHandler, name)
		}
		enabled[name] = struct{}{}
	}

	for _, name := range cfg.Handlers.Enabled {
		if err := validateHandler(cfg, cfg.Handlers.Specs[name]); err != nil {
			return err
		}
	}

	for name, spec := range cfg.Filters {
		if err := validateFilter(name, spec); err != nil {
			return err
		}
	}

	for name, spec := range cfg.Formatters {
		if _, ok := formatterKinds[spec.Kind]; !ok {
			return fmt.Errorf("%w: formatter %q kind %q", ErrUnknownKind, name, spec.Kind)
		}
	}

	if err := validateRoute("root", cfg.Logging.Root, cfg, enabled); err != nil {
		return err
	}
	for name, route := range cfg.Logging.Loggers {
		if err := validateRoute("logger "+name, route, cfg, enabled); err != nil {
			return err
		}
	}

	if err := checkLevel("levels.root", cfg.Levels.Root); err != nil {
		return err
	}
	for name, value := range cfg.Levels.Overrides {
		if err := checkLevel("levels.overrides."+name, value); err != nil {
			return err
		}
	}

	return nil
}

func validateHandler(cfg *Config, spec HandlerSpec) error {
	if _, ok := handlerKinds[spec.Kind]; !ok {
		return fmt.Errorf("%w: handler %q kind %q", ErrUnknownKind, spec.Name, spec.Kind)
	}
	if _, ok := cfg.Formatters[spec.Formatter]; !ok {
		return fmt.Errorf("%w: handler %q references %q", ErrUnknownFormatter, spec.Name, spec.Formatter)
	}
	for _, filterName := range spec.Filters {
		if _, ok := cfg.Filters[filterName]; !ok {
			return fmt.Errorf("%w: handler %q references %q", ErrUnknownFilter, spec.Name, filterName)
		}
	}
	if spec.Level != nil {
		if _, err := level.Normalize(spec.Level); err != nil {
			return fmt.Errorf("%w: handler %q: %v", ErrBadLevel, spec.Name, err)
		}
	}
	return nil
}

func validateFilter(name string, spec FilterSpec) error {
	if _, ok := filterKinds[spec.Kind]; !ok {
		return fmt.Errorf("%w: filter %q kind %q", ErrUnknownKind, name, spec.Kind)
	}
	switch spec.Kind {
	case "min", "exact":
		if raw, ok := spec.Params["level"]; ok {
			if _, err := level.Normalize(raw); err != nil {
				return fmt.Errorf("%w: filter %q: %v", ErrBadLevel, name, err)
			}
		}
	case "levels":
		for _, raw := range toAnySlice(spec.Params["levels"]) {
			if _, err := level.Normalize(raw); err != nil {
				return fmt.Errorf("%w: filter %q: %v", ErrBadLevel, name, err)
			}
		}
	}
	return nil
}

func validateRoute(where string, route Route, cfg *Config, enabled map[string]struct{}) error {
	for _, name := range route.Handlers {
		if _, ok := cfg.Handlers.Specs[name]; !ok {
			return fmt.Errorf("%w: %s references %q", ErrUnknownHandler, where, name)
		}
		if _, ok := enabled[name]; !ok {
			return fmt.Errorf("%w: %s references %q", ErrHandlerNotEnabled, where, name)
		}
	}
	if route.Level != "" {
		if err := checkLevel(where+".level", route.Level); err != nil {
			return err
		}
	}
	return nil
}

func checkLevel(where string, value any) error {
	if value == nil {
		return nil
	}
	if s, ok := value.(string); ok && s == "" {
		return nil
	}
	if _, err := level.Normalize(value); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBadLevel, where, err)
	}
	return nil
}

// toAnySlice 弱类型转换任意列表，koanf 树里列表元素可能是 []any
// 也可能在弱类型反序列化后是 []string。
func toAnySlice(v any) []any {
	switch value := v.(type) {
	case []any:
		return value
	case []string:
		out := make([]any, len(value))
		for i, s := range value {
			out[i] = s
		}
		return out
	default:
		return nil
	}
}
