// Package filter 提供按级别筛选 Record 的纯谓词。
//
// 三种谓词均无状态、无副作用，单个实例可被多个 sink 并发共享。
// AllowSet 在构造期把符号名归一化为数值并对未知名称 fail fast——
// 配置错误必须在流量到来之前暴露，而不是在热路径上静默放行。
package filter

import (
	"fmt"

	"github.com/podhq/podLog/pkg/core/level"
	"github.com/podhq/podLog/pkg/core/record"
)

// Predicate 级别谓词，返回 true 表示放行
type Predicate func(r *record.Record) bool

// Exact 仅放行级别精确相等的 Record
func Exact(l level.Level) Predicate {
	return func(r *record.Record) bool {
		return r.Level() == l
	}
}

// Min 放行级别不低于阈值的 Record
func Min(minimum level.Level) Predicate {
	return func(r *record.Record) bool {
		return r.Level() >= minimum
	}
}

// AllowSet 仅放行级别在集合内的 Record
//
// values 可混用符号名（"INFO"）、数字字符串（"40"）和整数，构造期
// 统一归一化为数值；未知名称返回错误。空集合谓词拒绝一切。
func AllowSet(values ...any) (Predicate, error) {
	allowed := make(map[level.Level]struct{}, len(values))
	for _, v := range values {
		l, err := level.Normalize(v)
		if err != nil {
			return nil, fmt.Errorf("filter: invalid allow-set entry %v: %w", v, err)
		}
		allowed[l] = struct{}{}
	}

	return func(r *record.Record) bool {
		_, ok := allowed[r.Level()]
		return ok
	}, nil
}

// All 组合多个谓词，全部放行才放行
//
// 空列表返回恒真谓词（没有过滤条件即全放行）。
func All(preds ...Predicate) Predicate {
	return func(r *record.Record) bool {
		for _, p := range preds {
			if p != nil && !p(r) {
				return false
			}
		}
		return true
	}
}
