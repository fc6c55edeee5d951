package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "commerce"

// Outcome labels. Domain failures are labelled with their error code.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

type Recorder interface {
	// ObserveCommand records one finished command with its outcome label
	ObserveCommand(name, outcome string, elapsed time.Duration)
	OrderStatusChanged(status string)
	SweepFinished(expired, skipped, failed int)
	OutboxPublished(n int)
	OutboxFailed()
}

type Prometheus struct {
	registry        *prometheus.Registry
	commandDuration *prometheus.HistogramVec
	commandTotal    *prometheus.CounterVec
	orderStatus     *prometheus.CounterVec
	sweptOrders     *prometheus.CounterVec
	outboxEvents    *prometheus.CounterVec
}

// NewPrometheus registers on its own registry, not prometheus.DefaultRegisterer.
func NewPrometheus() *Prometheus {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	p := &Prometheus{
		registry: reg,
		commandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "command", Name: "duration_seconds",
			Help:    "Latency of transactional commands.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"command"}),
		commandTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "command", Name: "total",
			Help: "Finished commands by outcome.",
		}, []string{"command", "outcome"}),
		orderStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "order", Name: "status_changes_total",
			Help: "Orders entering each status.",
		}, []string{"status"}),
		sweptOrders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "sweeper", Name: "orders_total",
			Help: "Orders handled by the expiration sweeper.",
		}, []string{"result"}),
		outboxEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "outbox", Name: "events_total",
			Help: "Outbox events relayed to the broker.",
		}, []string{"result"}),
	}
	reg.MustRegister(p.commandDuration, p.commandTotal, p.orderStatus, p.sweptOrders, p.outboxEvents)
	return p
}

func (p *Prometheus) ObserveCommand(name, outcome string, elapsed time.Duration) {
	p.commandDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	p.commandTotal.WithLabelValues(name, outcome).Inc()
}

func (p *Prometheus) OrderStatusChanged(status string) {
	p.orderStatus.WithLabelValues(status).Inc()
}

func (p *Prometheus) SweepFinished(expired, skipped, failed int) {
	p.sweptOrders.WithLabelValues("expired").Add(float64(expired))
	p.sweptOrders.WithLabelValues("skipped").Add(float64(skipped))
	p.sweptOrders.WithLabelValues("failed").Add(float64(failed))
}

func (p *Prometheus) OutboxPublished(n int) {
	p.outboxEvents.WithLabelValues("published").Add(float64(n))
}

func (p *Prometheus) OutboxFailed() {
	p.outboxEvents.WithLabelValues("failed").Inc()
}

func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

type Nop struct{}

func NewNop() Recorder { return Nop{} }

func (Nop) ObserveCommand(string, string, time.Duration) {}
func (Nop) OrderStatusChanged(string)                    {}
func (Nop) SweepFinished(int, int, int)                  {}
func (Nop) OutboxPublished(int)                          {}
func (Nop) OutboxFailed()                                {}
