package manager

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/podhq/podLog/pkg/config"
	"github.com/podhq/podLog/pkg/core/filter"
	"github.com/podhq/podLog/pkg/core/level"
	"github.com/podhq/podLog/pkg/format"
	"github.com/podhq/podLog/pkg/sink"
	"github.com/podhq/podLog/pkg/sink/filesink"
	"github.com/podhq/podLog/pkg/sink/otlpsink"
)

// buildFormatter 按定义构建格式化器
func buildFormatter(spec config.FormatterSpec) (format.Formatter, error) {
	o := spec.Options
	switch spec.Kind {
	case "text":
		var opts []format.TextOption
		if optBool(o, "show_extras", false) {
			opts = append(opts, format.WithShowExtras())
		}
		if layout := optString(o, "time_layout", ""); layout != "" {
			opts = append(opts, format.WithTextTimeLayout(layout))
		}
		return format.NewText(opts...), nil

	case "jsonl":
		var opts []format.JSONLinesOption
		if keys := optStrings(o, "whitelist"); len(keys) > 0 {
			opts = append(opts, format.WithWhitelist(keys...))
		}
		if keys := optStrings(o, "drop_fields"); len(keys) > 0 {
			opts = append(opts, format.WithDropFields(keys...))
		}
		if layout := optString(o, "time_layout", ""); layout != "" {
			opts = append(opts, format.WithJSONTimeLayout(layout))
		}
		return format.NewJSONLines(opts...), nil

	case "logfmt":
		var opts []format.LogFmtOption
		if keys := optStrings(o, "keys"); len(keys) > 0 {
			opts = append(opts, format.WithKeys(keys...))
		}
		if layout := optString(o, "time_layout", ""); layout != "" {
			opts = append(opts, format.WithLogFmtTimeLayout(layout))
		}
		return format.NewLogFmt(opts...), nil

	case "csv":
		var opts []format.CSVOption
		if fields := optStrings(o, "fields"); len(fields) > 0 {
			opts = append(opts, format.WithFields(fields...))
		}
		if fields := optStrings(o, "extra_fields"); len(fields) > 0 {
			opts = append(opts, format.WithExtraFields(fields...))
		}
		if optBool(o, "header", false) {
			opts = append(opts, format.WithHeader())
		}
		if layout := optString(o, "time_layout", ""); layout != "" {
			opts = append(opts, format.WithCSVTimeLayout(layout))
		}
		return format.NewCSV(opts...), nil

	default:
		return nil, fmt.Errorf("%w: formatter %q kind %q", config.ErrUnknownKind, spec.Name, spec.Kind)
	}
}

// buildFilter 按定义构建过滤谓词
func buildFilter(spec config.FilterSpec) (filter.Predicate, error) {
	switch spec.Kind {
	case "min", "exact":
		lvl := level.Info
		if raw, ok := spec.Params["level"]; ok {
			normalized, err := level.Normalize(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: filter %q: %w", config.ErrBadLevel, spec.Name, err)
			}
			lvl = normalized
		}
		if spec.Kind == "exact" {
			return filter.Exact(lvl), nil
		}
		return filter.Min(lvl), nil

	case "levels":
		pred, err := filter.AllowSet(optAnySlice(spec.Params, "levels")...)
		if err != nil {
			return nil, fmt.Errorf("%w: filter %q: %w", config.ErrBadLevel, spec.Name, err)
		}
		return pred, nil

	default:
		return nil, fmt.Errorf("%w: filter %q kind %q", config.ErrUnknownKind, spec.Name, spec.Kind)
	}
}

// buildSink 按处理器定义构建 sink，breaker 选项对所有类型生效
func buildSink(spec config.HandlerSpec, f format.Formatter, paths config.Paths) (sink.Sink, error) {
	inner, err := buildRawSink(spec, f, paths)
	if err != nil {
		return nil, err
	}

	if b := optMap(spec.Options, "breaker"); b != nil {
		cfg := sink.BreakerConfig{Name: spec.Name}
		if n := optInt(b, "failure_threshold", 0); n > 0 {
			cfg.FailureThreshold = uint32(n)
		}
		if s := optFloat(b, "open_timeout_s", 0); s > 0 {
			cfg.OpenTimeout = time.Duration(s * float64(time.Second))
		}
		return sink.NewBreaker(inner, cfg), nil
	}
	return inner, nil
}

func buildRawSink(spec config.HandlerSpec, f format.Formatter, paths config.Paths) (sink.Sink, error) {
	o := spec.Options
	switch spec.Kind {
	case "console":
		return sink.NewConsole(optString(o, "stream", "stderr"), f)

	case "null":
		return sink.NewNull(), nil

	case "file":
		return buildFileSink(spec, f, paths)

	case "syslog":
		var opts []sink.SyslogOption
		if _, ok := o["facility"]; ok {
			opts = append(opts, sink.WithFacility(optInt(o, "facility", sink.FacilityUser)))
		}
		if tag := optString(o, "tag", ""); tag != "" {
			opts = append(opts, sink.WithTag(tag))
		}
		return sink.NewSyslog(optString(o, "address", ""), f, opts...)

	case "gelf_udp":
		host := optString(o, "host", "localhost")
		port := optInt(o, "port", 12201)
		return sink.NewGELF(net.JoinHostPort(host, strconv.Itoa(port)))

	case "otlp":
		cfg := otlpsink.Config{
			Endpoint:   optString(o, "endpoint", ""),
			Insecure:   optBool(o, "insecure", false),
			Headers:    optStringMap(o, "headers"),
			LoggerName: optString(o, "logger_name", ""),
			Resource:   optStringMap(o, "resource"),
		}
		if s := optFloat(o, "timeout_s", 0); s > 0 {
			cfg.Timeout = time.Duration(s * float64(time.Second))
		}
		return otlpsink.New(context.Background(), cfg)

	default:
		return nil, fmt.Errorf("%w: handler %q kind %q", config.ErrUnknownKind, spec.Name, spec.Kind)
	}
}

func buildFileSink(spec config.HandlerSpec, f format.Formatter, paths config.Paths) (sink.Sink, error) {
	o := spec.Options
	filename := optString(o, "filename", "")
	if filename == "" {
		return nil, fmt.Errorf("config: handler %q: file handler requires a filename", spec.Name)
	}

	mode, err := paths.Mode()
	if err != nil {
		return nil, err
	}
	fcfg := filesink.Config{
		BaseDir:    optString(o, "base_dir", paths.BaseDir),
		Filename:   filename,
		DateMode:   mode,
		DateLayout: paths.Layout(),
	}

	if rot := optMap(o, "rotation"); rot != nil {
		if size := optMap(rot, "size"); size != nil {
			fcfg.MaxSizeMB = bytesToMB(optInt(size, "max_bytes", 10_000_000))
			fcfg.MaxBackups = optInt(size, "backup_count", 5)
		}
	}

	if ret := optMap(o, "retention"); ret != nil {
		policy := filesink.RetentionPolicy{
			Compress: optBool(ret, "compress", false),
		}
		if v, ok := ret["max_files"]; ok && v != nil {
			policy.MaxFiles = filesink.Keep(toInt(v, 0))
		}
		if v, ok := ret["max_days"]; ok && v != nil {
			policy.MaxAgeDays = filesink.Keep(toInt(v, 0))
		}
		fcfg.Retention = policy
	}

	return filesink.New(fcfg, f)
}

// bytesToMB 把字节数向上取整为 MB，lumberjack 的粒度是 MB
func bytesToMB(n int) int {
	if n <= 0 {
		return 0
	}
	const mb = 1 << 20
	out := (n + mb - 1) / mb
	if out < 1 {
		out = 1
	}
	return out
}
