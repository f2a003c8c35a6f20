// Package metrics holds the Prometheus collectors of the wallet process.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net"
	"net/http"
	"time"

	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/irislog/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	Gatherer prometheus.Gatherer

	// Worker pool
	TasksQueued    prometheus.Gauge
	TasksRunning   prometheus.Gauge
	TasksCompleted *prometheus.CounterVec
	TaskDuration   prometheus.Histogram

	// Node
	NodeState    prometheus.Gauge
	NodeRequests *prometheus.CounterVec

	// View-models
	Operations *prometheus.CounterVec
	PageSwaps  *prometheus.CounterVec
}

// New creates metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)
	m.Gatherer = reg
	return m
}

// NewWithRegistry registers every collector on registry.
func NewWithRegistry(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		Gatherer: prometheus.DefaultGatherer,
		TasksQueued: factory.NewGauge(prometheus.GaugeOpts{
			Name: "iris_worker_tasks_queued",
			Help: "Tasks waiting for a worker",
		}),
		TasksRunning: factory.NewGauge(prometheus.GaugeOpts{
			Name: "iris_worker_tasks_running",
			Help: "Tasks currently executing",
		}),
		TasksCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "iris_worker_tasks_completed_total",
			Help: "Completed tasks by outcome (ok, error, canceled, panic)",
		}, []string{"outcome"}),
		TaskDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "iris_worker_task_duration_seconds",
			Help:    "Wall time of worker tasks",
			Buckets: prometheus.ExponentialBuckets(0.005, 4, 8),
		}),
		NodeState: factory.NewGauge(prometheus.GaugeOpts{
			Name: "iris_node_state",
			Help: "Current node lifecycle state as its ordinal",
		}),
		NodeRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "iris_node_requests_total",
			Help: "Requests to the node daemon by endpoint and result",
		}, []string{"endpoint", "result"}),
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "iris_vm_operations_total",
			Help: "View-model operations by view-model, operation and outcome",
		}, []string{"vm", "op", "outcome"}),
		PageSwaps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "iris_nav_page_swaps_total",
			Help: "Page swaps by destination page",
		}, []string{"page"}),
	}
}

func (m *Metrics) TaskQueued(delta float64) {
	if m != nil {
		m.TasksQueued.Add(delta)
	}
}

func (m *Metrics) TaskRunning(delta float64) {
	if m != nil {
		m.TasksRunning.Add(delta)
	}
}

func (m *Metrics) TaskDone(outcome string, d time.Duration) {
	if m != nil {
		m.TasksCompleted.WithLabelValues(outcome).Inc()
		m.TaskDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) SetNodeState(ordinal int) {
	if m != nil {
		m.NodeState.Set(float64(ordinal))
	}
}

func (m *Metrics) NodeRequest(endpoint, result string) {
	if m != nil {
		m.NodeRequests.WithLabelValues(endpoint, result).Inc()
	}
}

func (m *Metrics) Operation(vm, op, outcome string) {
	if m != nil {
		m.Operations.WithLabelValues(vm, op, outcome).Inc()
	}
}

func (m *Metrics) PageSwap(page string) {
	if m != nil {
		m.PageSwaps.WithLabelValues(page).Inc()
	}
}

// Server is the debug listener serving /metrics.
type Server struct {
	Addr string
	srv  *http.Server
}

func (s *Server) Close() er.R {
	return er.E(s.srv.Close())
}

// Serve exposes /metrics on addr until the server is closed.
func (m *Metrics) Serve(addr string) (*Server, er.R) {
	l, errr := net.Listen("tcp", addr)
	if errr != nil {
		return nil, er.E(errr)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Gatherer, promhttp.HandlerOpts{}))
	s := &Server{
		Addr: l.Addr().String(),
		srv:  &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
	}
	go func() {
		if errr := s.srv.Serve(l); errr != nil && errr != http.ErrServerClosed {
			log.Warnf("Metrics listener on [%s] stopped: %v", s.Addr, errr)
		}
	}()
	log.Infof("Metrics available at http://%s/metrics", s.Addr)
	return s, nil
}
