package record

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/podhq/podLog/pkg/core/level"
)

// 内建字段名常量
//
// [Record.Field] 对这些名称优先解析内建字段；附件中的同名键只能通过
// [Record.Attachment] 访问（内建名遮蔽附件键，见包文档）。
const (
	// FieldTime 时间戳字段名
	FieldTime = "time"

	// FieldLevel 级别字段名
	FieldLevel = "level"

	// FieldLogger logger 名称字段名
	FieldLogger = "logger"

	// FieldMessage 渲染后消息字段名
	FieldMessage = "message"

	// FieldFile 源码文件字段名
	FieldFile = "file"

	// FieldLine 源码行号字段名
	FieldLine = "line"

	// FieldFunc 函数名字段名
	FieldFunc = "func"

	// FieldPID 进程号字段名
	FieldPID = "pid"
)

// Record 一条日志事件，构造后只读
type Record struct {
	time   time.Time
	level  level.Level
	logger string
	msg    string
	args   []any
	file   string
	line   int
	fn     string
	pid    int
	attach *Attachment
}

// options Record 构造选项
type options struct {
	time       time.Time
	callerSkip int
}

// Option Record 构造选项函数
type Option func(*options)

// WithTime 指定时间戳（默认 time.Now()，主要用于测试）
func WithTime(t time.Time) Option {
	return func(o *options) {
		o.time = t
	}
}

// WithCallerSkip 设置捕获源码位置时额外跳过的栈帧数
//
// 基础 skip 已覆盖 New 自身；富化层等中间封装按自身深度叠加。
func WithCallerSkip(skip int) Option {
	return func(o *options) {
		o.callerSkip = skip
	}
}

// New 构造 Record
//
// attach 为唯一的结构化附件通道，会被 Clone 后持有（构造方随后修改原
// 附件不影响已构造的 Record）。args 非空时消息延迟到 [Record.Message]
// 调用时才按 fmt.Sprintf 渲染。
func New(logger string, lvl level.Level, msg string, args []any, attach *Attachment, opts ...Option) *Record {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.time.IsZero() {
		o.time = time.Now()
	}

	r := &Record{
		time:   o.time,
		level:  lvl,
		logger: logger,
		msg:    msg,
		args:   append([]any(nil), args...),
		pid:    os.Getpid(),
		attach: attach.Clone(),
	}

	// Caller(0) 是 New 自身，1 是直接调用方；callerSkip 叠加中间封装层
	if pc, file, line, ok := runtime.Caller(1 + o.callerSkip); ok {
		r.file = file
		r.line = line
		if f := runtime.FuncForPC(pc); f != nil {
			r.fn = f.Name()
		}
	}

	return r
}

// Time 返回时间戳
func (r *Record) Time() time.Time { return r.time }

// Level 返回级别
func (r *Record) Level() level.Level { return r.level }

// Logger 返回 logger 名称
func (r *Record) Logger() string { return r.logger }

// RawMessage 返回未渲染的原始消息
func (r *Record) RawMessage() string { return r.msg }

// Args 返回位置格式化参数的拷贝
func (r *Record) Args() []any {
	if len(r.args) == 0 {
		return nil
	}
	return append([]any(nil), r.args...)
}

// Message 返回渲染后的消息
//
// args 为空时直接返回原始消息，避免 fmt 解析 "%" 字面量的意外。
func (r *Record) Message() string {
	if len(r.args) == 0 {
		return r.msg
	}
	return fmt.Sprintf(r.msg, r.args...)
}

// File 返回源码文件路径（捕获失败时为空）
func (r *Record) File() string { return r.file }

// Line 返回源码行号
func (r *Record) Line() int { return r.line }

// Func 返回函数名
func (r *Record) Func() string { return r.fn }

// PID 返回进程号
func (r *Record) PID() int { return r.pid }

// Attachment 返回附件（只读约定，消费方不得修改）
func (r *Record) Attachment() *Attachment { return r.attach }

// Field 按名访问字段：内建名优先，其余名称查附件
//
// 这是格式化器读取字段的统一机制，context、extra_kvs 等富化键
// 与内建字段通过同一入口可达。
func (r *Record) Field(name string) (any, bool) {
	switch name {
	case FieldTime:
		return r.time, true
	case FieldLevel:
		return r.level, true
	case FieldLogger:
		return r.logger, true
	case FieldMessage:
		return r.Message(), true
	case FieldFile:
		return r.file, true
	case FieldLine:
		return r.line, true
	case FieldFunc:
		return r.fn, true
	case FieldPID:
		return r.pid, true
	}
	return r.attach.Get(name)
}
