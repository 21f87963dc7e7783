package graph

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the Dispatcher's optional Prometheus integration. Grounded on
// the teacher's PrometheusMetrics, trimmed to the concepts this engine
// actually has: inflight node count and per-status completion counters, plus
// a duration histogram keyed by node type. There is no queue-depth or
// backpressure concept here, unlike the teacher's scheduler-backed engine.
type Metrics struct {
	inflightNodes prometheus.Gauge
	nodeDuration  *prometheus.HistogramVec
	nodesTotal    *prometheus.CounterVec
	enabled       bool
}

// NewMetrics registers Prometheus collectors on reg and returns a Metrics
// ready to use. Pass a fresh prometheus.NewRegistry() in tests to avoid
// colliding with the default global registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		inflightNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "treeflow_inflight_nodes",
			Help: "Number of node executions currently running.",
		}),
		nodeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "treeflow_node_duration_seconds",
			Help:    "Node execution duration in seconds, by node type.",
			Buckets: prometheus.DefBuckets,
		}, []string{"node_type"}),
		nodesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "treeflow_nodes_total",
			Help: "Count of node executions by terminal status.",
		}, []string{"status"}),
		enabled: true,
	}

	for _, c := range []prometheus.Collector{m.inflightNodes, m.nodeDuration, m.nodesTotal} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Disable turns off metric recording without unregistering the collectors.
func (m *Metrics) Disable() { m.enabled = false }

// Enable turns metric recording back on.
func (m *Metrics) Enable() { m.enabled = true }

func (m *Metrics) nodeStarted() {
	if m == nil || !m.enabled {
		return
	}
	m.inflightNodes.Inc()
}

func (m *Metrics) nodeFinished(nodeType NodeType, status NodeStatus, d time.Duration) {
	if m == nil || !m.enabled {
		return
	}
	m.inflightNodes.Dec()
	m.nodeDuration.WithLabelValues(string(nodeType)).Observe(d.Seconds())
	m.nodesTotal.WithLabelValues(string(status)).Inc()
}

// nodeSkipped records a node the Dispatcher never ran because its
// prerequisites resolved to SKIPPED. It never touched inflightNodes, so only
// the terminal-status counter is incremented.
func (m *Metrics) nodeSkipped() {
	if m == nil || !m.enabled {
		return
	}
	m.nodesTotal.WithLabelValues(string(StatusSkipped)).Inc()
}

// nodeCancelled records a node still RUNNING when the execution's context
// was cancelled. Its goroutine may still be in flight and will decrement
// inflightNodes itself via nodeFinished when it eventually returns.
func (m *Metrics) nodeCancelled() {
	if m == nil || !m.enabled {
		return
	}
	m.nodesTotal.WithLabelValues(string(StatusCancelled)).Inc()
}
