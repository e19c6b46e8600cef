package manager

import (
	"fmt"
	"strconv"
)

// 配置树里异构段的取值都是 any：同一个键在 yaml、json、环境变量
// 三种来源下可能是 string、int、float64 或 bool。这里的弱类型
// 取值函数集中处理形状差异，构建器只管语义。

func optString(m map[string]any, key, fallback string) string {
	if v, ok := m[key]; ok {
		switch value := v.(type) {
		case string:
			return value
		case fmt.Stringer:
			return value.String()
		}
	}
	return fallback
}

func optBool(m map[string]any, key string, fallback bool) bool {
	v, ok := m[key]
	if !ok {
		return fallback
	}
	switch value := v.(type) {
	case bool:
		return value
	case string:
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func optInt(m map[string]any, key string, fallback int) int {
	v, ok := m[key]
	if !ok {
		return fallback
	}
	return toInt(v, fallback)
}

func toInt(v any, fallback int) int {
	switch value := v.(type) {
	case int:
		return value
	case int64:
		return int(value)
	case float64:
		return int(value)
	case string:
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func optFloat(m map[string]any, key string, fallback float64) float64 {
	v, ok := m[key]
	if !ok {
		return fallback
	}
	switch value := v.(type) {
	case float64:
		return value
	case int:
		return float64(value)
	case int64:
		return float64(value)
	case string:
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func optStrings(m map[string]any, key string) []string {
	switch value := m[key].(type) {
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

func optAnySlice(m map[string]any, key string) []any {
	switch value := m[key].(type) {
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

func optMap(m map[string]any, key string) map[string]any {
	if sub, ok := m[key].(map[string]any); ok {
		return sub
	}
	return nil
}

func optStringMap(m map[string]any, key string) map[string]string {
	sub := optMap(m, key)
	if sub == nil {
		return nil
	}
	out := make(map[string]string, len(sub))
	for k, v := range sub {
		out[k] = fmt.Sprint(v)
	}
	return out
}
