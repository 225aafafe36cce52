// Package instrument exports scheduler activity of an observer.System as
// Prometheus metrics and OpenTelemetry spans.
//
//	in := instrument.New(instrument.WithRegistry(reg))
//	sys := observer.New(observer.WithHooks(in.Hooks()))
//
// Metrics collected:
//   - depwatch_flushes_total: flushes run by the scheduler
//   - depwatch_flush_duration_seconds: flush duration
//   - depwatch_flush_queued: watchers queued when a flush starts
//   - depwatch_watcher_runs_total: distinct watchers run per flush, summed
//   - depwatch_errors_total: reported errors by kind
package instrument

import (
	"context"
	"errors"
	"time"

	"github.com/delaneyj/depwatch/observer"
	"github.com/delaneyj/depwatch/tick"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultTracerName = "depwatch"

// Error kinds used as the "kind" label of depwatch_errors_total.
const (
	KindInfiniteUpdate = "infinite_update"
	KindGetter         = "getter"
	KindCallback       = "callback"
	KindTickPanic      = "tick_panic"
	KindOther          = "other"
)

type Config struct {
	// Namespace is the metrics namespace (default: "depwatch").
	Namespace string

	Subsystem   string
	ConstLabels prometheus.Labels

	// Buckets are the flush duration histogram buckets.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry defaults to prometheus.DefaultRegisterer.
	Registry prometheus.Registerer

	// TracerName is used to resolve a tracer from the global provider when
	// Tracer is nil.
	TracerName string
	Tracer     trace.Tracer

	now func() time.Time
}

type Option func(*Config)

func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

// WithTracer uses tracer instead of the global provider's.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Config) {
		c.Tracer = tracer
	}
}

func defaultConfig() Config {
	return Config{
		Namespace:  "depwatch",
		Buckets:    prometheus.DefBuckets,
		Registry:   prometheus.DefaultRegisterer,
		TracerName: defaultTracerName,
		now:        time.Now,
	}
}

// Instrument records flushes of the systems it is hooked into. A flush span
// lives from BeforeFlush to AfterFlush, so one Instrument should serve one
// System.
type Instrument struct {
	flushes     prometheus.Counter
	duration    prometheus.Histogram
	queued      prometheus.Histogram
	watcherRuns prometheus.Counter
	errors      *prometheus.CounterVec

	tracer trace.Tracer
	now    func() time.Time

	span  trace.Span
	start time.Time
}

func New(opts ...Option) *Instrument {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Tracer == nil {
		config.Tracer = otel.Tracer(config.TracerName)
	}

	factory := promauto.With(config.Registry)
	return &Instrument{
		flushes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flushes_total",
			Help:        "Total number of scheduler flushes",
			ConstLabels: config.ConstLabels,
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_duration_seconds",
			Help:        "Scheduler flush duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
		queued: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_queued",
			Help:        "Watchers queued when a flush starts",
			ConstLabels: config.ConstLabels,
			Buckets:     prometheus.ExponentialBuckets(1, 2, 10),
		}),
		watcherRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "watcher_runs_total",
			Help:        "Total number of watchers run by the scheduler, counted once per flush",
			ConstLabels: config.ConstLabels,
		}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "errors_total",
			Help:        "Total number of reported errors by kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),
		tracer: config.Tracer,
		now:    config.now,
	}
}

// Hooks returns the scheduler hooks to install with observer.WithHooks.
func (in *Instrument) Hooks() observer.Hooks {
	return observer.Hooks{
		BeforeFlush: in.beforeFlush,
		AfterFlush:  in.afterFlush,
		Error:       in.recordError,
	}
}

func (in *Instrument) beforeFlush(queued int) {
	// a flush that panicked never reached afterFlush
	if in.span != nil {
		in.span.SetStatus(codes.Error, "flush aborted")
		in.span.End()
		in.span = nil
	}
	in.start = in.now()
	in.queued.Observe(float64(queued))
	_, in.span = in.tracer.Start(context.Background(), "depwatch.flush",
		trace.WithAttributes(attribute.Int("depwatch.queued", queued)),
	)
}

func (in *Instrument) afterFlush(updated []*observer.Watcher) {
	in.flushes.Inc()
	in.watcherRuns.Add(float64(len(updated)))
	in.duration.Observe(in.now().Sub(in.start).Seconds())

	if in.span != nil {
		in.span.SetAttributes(attribute.Int("depwatch.updated", len(updated)))
		in.span.End()
		in.span = nil
	}
}

func (in *Instrument) recordError(err error) {
	kind := Kind(err)
	in.errors.WithLabelValues(kind).Inc()

	// errors outside a flush, such as sync watchers, have no span
	if in.span != nil {
		in.span.RecordError(err, trace.WithAttributes(attribute.String("depwatch.kind", kind)))
		in.span.SetStatus(codes.Error, err.Error())
	}
}

// Kind classifies a reported error for the errors_total metric.
func Kind(err error) string {
	switch {
	case errors.Is(err, observer.ErrInfiniteUpdate):
		return KindInfiniteUpdate
	case errors.Is(err, tick.ErrCallbackPanic):
		return KindTickPanic
	}
	var werr *observer.WatcherError
	if errors.As(err, &werr) {
		switch werr.Phase {
		case "getter":
			return KindGetter
		case "callback":
			return KindCallback
		}
	}
	return KindOther
}
