// Package prom provides Prometheus implementations of delta.MetricsProvider
// and feed.MetricsProvider.
//
//	p := prom.New(prom.WithNamespace("app"))
//	cfg := delta.New(Config{}, Port).Metrics(p)
//	f := feed.New[Config](watcher, cfg).Metrics(p)
package prom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/zoobzio/delta"
	"github.com/zoobzio/delta/feed"
)

// Config configures the Prometheus provider.
type Config struct {
	// Namespace is the metrics namespace (default: "delta").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the Prometheus provider.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics. Use them to tell
// apart providers registered for different containers.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the duration histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "delta",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Provider records relay, container, binding and feed events as Prometheus
// metrics.
type Provider struct {
	subscriptions prometheus.Gauge
	subscribes    prometheus.Counter
	sends         prometheus.Counter
	sendDuration  prometheus.Histogram
	fanOut        prometheus.Histogram
	changes       prometheus.Counter
	changedFields prometheus.Histogram
	suppressed    prometheus.Counter
	detached      prometheus.Counter

	feedTransitions *prometheus.CounterVec
	feedUpdates     *prometheus.CounterVec
	feedDuration    *prometheus.HistogramVec
	feedReceived    prometheus.Counter
}

// New registers the provider's metrics and returns it. Registering twice with
// the same registry and namespace panics, as with any promauto metric.
func New(opts ...Option) *Provider {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}

	return &Provider{
		subscriptions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "subscriptions_active",
			Help:        "Number of live relay subscriptions",
			ConstLabels: config.ConstLabels,
		}),
		subscribes: counter("subscriptions_total", "Total number of relay subscriptions"),
		sends:      counter("sends_total", "Total number of values sent through relays"),
		sendDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "send_duration_seconds",
			Help:        "Time to fan one value out to all subscribers",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
		fanOut: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "send_subscribers",
			Help:        "Number of subscribers each value was offered to",
			ConstLabels: config.ConstLabels,
			Buckets:     prometheus.ExponentialBuckets(1, 4, 6),
		}),
		changes: counter("container_changes_total", "Total number of forwarded container assignments"),
		changedFields: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "container_changed_fields",
			Help:        "Number of watched fields changed by each forwarded assignment",
			ConstLabels: config.ConstLabels,
			Buckets:     prometheus.LinearBuckets(1, 1, 8),
		}),
		suppressed: counter("container_suppressed_total", "Total number of suppressed container assignments"),
		detached:   counter("bindings_detached_total", "Total number of hook bindings detached after their target was collected"),

		feedTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "feed_state_transitions_total",
			Help:        "Total number of feed state transitions",
			ConstLabels: config.ConstLabels,
		}, []string{"from", "to"}),
		feedUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "feed_updates_total",
			Help:        "Total number of processed feed updates",
			ConstLabels: config.ConstLabels,
		}, []string{"stage", "status"}),
		feedDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "feed_process_duration_seconds",
			Help:        "Feed update processing duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"status"}),
		feedReceived: counter("feed_changes_received_total", "Total number of raw changes received from feed watchers"),
	}
}

// OnSubscribe implements delta.MetricsProvider.
func (p *Provider) OnSubscribe() {
	p.subscribes.Inc()
	p.subscriptions.Inc()
}

// OnCancel implements delta.MetricsProvider.
func (p *Provider) OnCancel() {
	p.subscriptions.Dec()
}

// OnSend implements delta.MetricsProvider.
func (p *Provider) OnSend(subscribers int, duration time.Duration) {
	p.sends.Inc()
	p.sendDuration.Observe(duration.Seconds())
	p.fanOut.Observe(float64(subscribers))
}

// OnChange implements delta.MetricsProvider. Whole-value changes are counted
// but not observed in the changed-fields histogram.
func (p *Provider) OnChange(changed int) {
	p.changes.Inc()
	if changed > 0 {
		p.changedFields.Observe(float64(changed))
	}
}

// OnSuppress implements delta.MetricsProvider.
func (p *Provider) OnSuppress() {
	p.suppressed.Inc()
}

// OnDetach implements delta.MetricsProvider.
func (p *Provider) OnDetach() {
	p.detached.Inc()
}

// OnStateChange implements feed.MetricsProvider.
func (p *Provider) OnStateChange(from, to feed.State) {
	p.feedTransitions.WithLabelValues(from.String(), to.String()).Inc()
}

// OnProcessSuccess implements feed.MetricsProvider.
func (p *Provider) OnProcessSuccess(duration time.Duration) {
	p.feedUpdates.WithLabelValues("", "success").Inc()
	p.feedDuration.WithLabelValues("success").Observe(duration.Seconds())
}

// OnProcessFailure implements feed.MetricsProvider.
func (p *Provider) OnProcessFailure(stage string, duration time.Duration) {
	p.feedUpdates.WithLabelValues(stage, "failure").Inc()
	p.feedDuration.WithLabelValues("failure").Observe(duration.Seconds())
}

// OnChangeReceived implements feed.MetricsProvider.
func (p *Provider) OnChangeReceived() {
	p.feedReceived.Inc()
}

var (
	_ delta.MetricsProvider = (*Provider)(nil)
	_ feed.MetricsProvider  = (*Provider)(nil)
)
