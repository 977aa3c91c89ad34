package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wsecho"

// States the loop state gauge tracks.
var loopStates = []string{"connecting", "listening", "processing", "closed"}

// Collector holds all wsecho metrics on a private registry.
type Collector struct {
	registry *prometheus.Registry

	DialAttempts   *prometheus.CounterVec
	FramesReceived *prometheus.CounterVec
	MessagesEchoed prometheus.Counter
	EchoLatency    prometheus.Histogram
	DecodeFailures prometheus.Counter
	LoopState      *prometheus.GaugeVec
}

// NewCollector creates and registers every metric, plus the Go runtime and
// process collectors.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),

		DialAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dial_attempts_total",
				Help:      "Websocket dial attempts by result",
			},
			[]string{"result"},
		),

		FramesReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "frames_received_total",
				Help:      "Data frames read from the websocket by frame type",
			},
			[]string{"type"},
		),

		MessagesEchoed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_echoed_total",
				Help:      "Text frames decoded and echoed back",
			},
		),

		EchoLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "echo_latency_seconds",
				Help:      "Time from frame receipt to echo write completion",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),

		DecodeFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decode_failures_total",
				Help:      "Text frames whose payload was not valid JSON",
			},
		),

		LoopState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "loop_state",
				Help:      "1 for the current message loop state, 0 otherwise",
			},
			[]string{"state"},
		),
	}

	c.registry.MustRegister(
		c.DialAttempts,
		c.FramesReceived,
		c.MessagesEchoed,
		c.EchoLatency,
		c.DecodeFailures,
		c.LoopState,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c.StateChanged("connecting")
	return c
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Dialed records the outcome of a dial attempt.
func (c *Collector) Dialed(err error) {
	if err != nil {
		c.DialAttempts.WithLabelValues("error").Inc()
		return
	}
	c.DialAttempts.WithLabelValues("success").Inc()
}

// FrameReceived counts a data frame of the given type.
func (c *Collector) FrameReceived(kind string) {
	c.FramesReceived.WithLabelValues(kind).Inc()
}

// MessageEchoed counts an echo and observes its latency.
func (c *Collector) MessageEchoed(elapsed time.Duration) {
	c.MessagesEchoed.Inc()
	c.EchoLatency.Observe(elapsed.Seconds())
}

// DecodeFailed counts a malformed text frame.
func (c *Collector) DecodeFailed() {
	c.DecodeFailures.Inc()
}

// StateChanged marks state as the only active loop state.
func (c *Collector) StateChanged(state string) {
	for _, s := range loopStates {
		if s == state {
			c.LoopState.WithLabelValues(s).Set(1)
		} else {
			c.LoopState.WithLabelValues(s).Set(0)
		}
	}
}
