package typeindex

import (
	"log/slog"

	"github.com/hupe1980/typeindex/resource"
)

type options struct {
	fallback         bool
	probeLimit       int
	overflowHint     int
	logger           *Logger
	metricsCollector MetricsCollector
	rc               *resource.Controller
}

// Option configures an Index.
type Option func(*options)

// WithFallback enables or disables the overflow map. Enabled by default.
//
// With fallback disabled, a key whose probe sequence in the primary table is
// exhausted is rejected with a *CapacityExhaustedError instead of silently
// degrading to the slower map.
func WithFallback(enabled bool) Option {
	return func(o *options) {
		o.fallback = enabled
	}
}

// WithProbeLimit bounds the number of slots examined per operation before the
// primary table reports itself full for a key. Values <= 0 select
// min(capacity, 4*bits.Len(capacity)); values above capacity are clamped.
//
// The bound tunes the trade-off between probe cost and overflow usage; it
// never affects correctness.
func WithProbeLimit(n int) Option {
	return func(o *options) {
		o.probeLimit = n
	}
}

// WithOverflowSizeHint presizes the overflow map for workloads that are
// expected to outgrow the primary table.
func WithOverflowSizeHint(n int) Option {
	return func(o *options) {
		o.overflowHint = n
	}
}

// WithLogger configures the logging context. Pass nil to disable logging.
//
// Example:
//
//	logger := typeindex.NewJSONLogger(slog.LevelInfo).WithContext("world-1")
//	idx, _ := typeindex.New(1024, typeindex.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector. Pass nil to disable.
//
// Example with BasicMetricsCollector:
//
//	metrics := &typeindex.BasicMetricsCollector{}
//	idx, _ := typeindex.New(1024, typeindex.WithMetricsCollector(metrics))
//	// ... use idx ...
//	stats := metrics.GetStats()
//	fmt.Printf("adds: %d, fallbacks: %d\n", stats.AddCount, stats.FallbackCount)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithResourceController accounts the primary table's mapped memory (and
// snapshot IO) against rc.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		fallback: true,
		logger:   NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
