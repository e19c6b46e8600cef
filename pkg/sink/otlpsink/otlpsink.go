package otlpsink

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/podhq/podLog/pkg/core/level"
	"github.com/podhq/podLog/pkg/core/record"
)

// Config OTLP 导出配置
type Config struct {
	// Endpoint collector 地址（host:port），空用 SDK 默认 localhost:4317
	Endpoint string
	// Insecure 不带 TLS 连接
	Insecure bool
	// Headers 附加的 gRPC 头
	Headers map[string]string
	// Timeout 单批导出超时，<=0 用 SDK 默认
	Timeout time.Duration
	// LoggerName OTel logger 名，空取 "podlog"
	LoggerName string
	// Resource 资源属性（service.name 等）
	Resource map[string]string
	// ShutdownTimeout Close 的冲刷上限，<=0 取 5s
	ShutdownTimeout time.Duration
}

// OTLP 经 OTLP/gRPC 导出记录的 sink
type OTLP struct {
	provider        *log.LoggerProvider
	logger          otellog.Logger
	shutdownTimeout time.Duration
}

// New 创建 OTLP sink，建立到 collector 的 gRPC 链路
func New(ctx context.Context, cfg Config) (*OTLP, error) {
	opts := make([]otlploggrpc.Option, 0, 4)
	if cfg.Endpoint != "" {
		opts = append(opts, otlploggrpc.WithEndpoint(cfg.Endpoint))
	}
	if cfg.Insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlploggrpc.WithHeaders(cfg.Headers))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, otlploggrpc.WithTimeout(cfg.Timeout))
	}

	exporter, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("otlpsink: create exporter: %w", err)
	}

	attrs := make([]attribute.KeyValue, 0, len(cfg.Resource))
	for k, v := range cfg.Resource {
		attrs = append(attrs, attribute.String(k, v))
	}

	provider := log.NewLoggerProvider(
		log.WithProcessor(log.NewBatchProcessor(exporter)),
		log.WithResource(resource.NewSchemaless(attrs...)),
	)

	name := cfg.LoggerName
	if name == "" {
		name = "podlog"
	}
	shutdownTimeout := cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 5 * time.Second
	}

	return &OTLP{
		provider:        provider,
		logger:          provider.Logger(name),
		shutdownTimeout: shutdownTimeout,
	}, nil
}

// Severity 级别到 OTel Severity 的映射
func Severity(l level.Level) otellog.Severity {
	switch {
	case l >= level.Critical:
		return otellog.SeverityFatal
	case l >= level.Error:
		return otellog.SeverityError
	case l >= level.Warn:
		return otellog.SeverityWarn
	case l >= level.Info:
		return otellog.SeverityInfo
	case l >= level.Debug:
		return otellog.SeverityDebug
	default:
		return otellog.SeverityTrace
	}
}

// Value 任意附件值到 OTel 日志值的转换，未知类型退化为文本
func Value(v any) otellog.Value {
	switch val := v.(type) {
	case string:
		return otellog.StringValue(val)
	case bool:
		return otellog.BoolValue(val)
	case int:
		return otellog.Int64Value(int64(val))
	case int32:
		return otellog.Int64Value(int64(val))
	case int64:
		return otellog.Int64Value(val)
	case float32:
		return otellog.Float64Value(float64(val))
	case float64:
		return otellog.Float64Value(val)
	case []byte:
		return otellog.BytesValue(val)
	default:
		return otellog.StringValue(fmt.Sprint(v))
	}
}

// Emit 实现 sink.Sink；批处理器内部缓冲，调用本身不阻塞在网络上
func (s *OTLP) Emit(r *record.Record) error {
	var rec otellog.Record
	rec.SetTimestamp(r.Time())
	rec.SetObservedTimestamp(time.Now())
	rec.SetSeverity(Severity(r.Level()))
	rec.SetSeverityText(r.Level().String())
	rec.SetBody(otellog.StringValue(r.Message()))
	rec.AddAttributes(
		otellog.String("logger.name", r.Logger()),
		otellog.String("code.filepath", r.File()),
		otellog.Int64("code.lineno", int64(r.Line())),
		otellog.Int64("process.pid", int64(r.PID())),
	)
	if a := r.Attachment(); a != nil {
		a.Range(func(key string, value any) bool {
			rec.AddAttributes(otellog.KeyValue{Key: key, Value: Value(value)})
			return true
		})
	}

	s.logger.Emit(context.Background(), rec)
	return nil
}

// Flush 强制冲刷批处理缓冲
func (s *OTLP) Flush() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	return s.provider.ForceFlush(ctx)
}

// Close 冲刷并关闭导出链路
func (s *OTLP) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	return s.provider.Shutdown(ctx)
}
