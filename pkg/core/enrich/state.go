package enrich

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/podhq/podLog/pkg/core/record"
)

// SentinelContextKey 无法解析的上下文字符串整体存放的哨兵键
const SentinelContextKey = "_ctx"

// KV 显式命名的附加数据对
type KV struct {
	Key   string
	Value any
}

// ContextState 单个 logger 句柄的可变富化状态。
//
// 持久上下文与附加缓冲相互独立：ClearExtra 不触碰上下文，
// SetContext 不触碰缓冲。非并发安全，见包文档的并发契约。
type ContextState struct {
	context map[string]any
	extras  *record.Attachment
}

// NewContextState 创建空状态
func NewContextState() *ContextState {
	return &ContextState{
		context: make(map[string]any),
		extras:  record.NewAttachment(),
	}
}

// SetContext 整体替换持久上下文
//
// 接受三种输入：
//   - map[string]any / map[string]string：拷贝后替换
//   - string：按空白切分，取含 "=" 的 token 在首个 "=" 处分割为 key/value；
//     若没有任何 token 可解析，整串存入 [SentinelContextKey]
//   - 其他类型：fmt 渲染后同样存入哨兵键
//
// 上下文是诊断数据，畸形输入降级捕获而不是报错。
func (s *ContextState) SetContext(v any) {
	switch c := v.(type) {
	case map[string]any:
		next := make(map[string]any, len(c))
		for k, val := range c {
			next[k] = val
		}
		s.context = next
	case map[string]string:
		next := make(map[string]any, len(c))
		for k, val := range c {
			next[k] = val
		}
		s.context = next
	case string:
		s.context = parseContextString(c)
	case nil:
		s.context = make(map[string]any)
	default:
		s.context = map[string]any{SentinelContextKey: fmt.Sprint(v)}
	}
}

// parseContextString 解析 "k=v k2=v2" 形式的上下文字符串。
// 不含 "=" 的 token 在存在可解析 token 时被丢弃；全部不可解析时整串入哨兵键。
func parseContextString(raw string) map[string]any {
	out := make(map[string]any)
	for _, tok := range strings.Fields(raw) {
		if i := strings.IndexByte(tok, '='); i >= 0 {
			out[tok[:i]] = tok[i+1:]
		}
	}
	if len(out) == 0 && strings.TrimSpace(raw) != "" {
		out[SentinelContextKey] = raw
	}
	return out
}

// AddContext 把给定键浅合并进持久上下文，last-write-wins
func (s *ContextState) AddContext(kvs ...KV) {
	for _, kv := range kvs {
		s.context[kv.Key] = kv.Value
	}
}

// Context 返回持久上下文的浅拷贝
func (s *ContextState) Context() map[string]any {
	out := make(map[string]any, len(s.context))
	for k, v := range s.context {
		out[k] = v
	}
	return out
}

// AddExtra 把显式命名的数据对合并进附加缓冲，同键覆盖且保持原插入位置
func (s *ContextState) AddExtra(kvs ...KV) {
	for _, kv := range kvs {
		s.extras.Set(kv.Key, kv.Value)
	}
}

// AddExtraValues 为未命名值分配合成名 varN 后合并进缓冲
//
// N 从 1 递增，跳过与已缓冲键冲突的名字。原系统靠调用帧内省反推变量名，
// 这里有意简化为纯合成命名：命名只是调试辅助，从不承载识别语义，
// 需要稳定名字的调用方应改用 [ContextState.AddExtra]。
func (s *ContextState) AddExtraValues(vals ...any) {
	n := 1
	for _, v := range vals {
		var name string
		for {
			name = "var" + strconv.Itoa(n)
			n++
			if !s.extras.Has(name) {
				break
			}
		}
		s.extras.Set(name, v)
	}
}

// ClearExtra 清空附加缓冲，不影响持久上下文
func (s *ContextState) ClearExtra() {
	s.extras = record.NewAttachment()
}

// Extras 返回附加缓冲的快照拷贝
func (s *ContextState) Extras() *record.Attachment {
	return s.extras.Clone()
}
