package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Workflow collects pipeline activity. A nil *Workflow is a valid no-op recorder.
type Workflow struct {
	stageDuration  *prometheus.HistogramVec
	stageFaults    *prometheus.CounterVec
	runs           *prometheus.CounterVec
	accessDecision *prometheus.CounterVec
	webhookEvents  *prometheus.CounterVec
}

// NewWorkflow registers the collectors on reg, or on the default registry when reg is nil
func NewWorkflow(reg prometheus.Registerer) (*Workflow, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	w := &Workflow{
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "customer_service",
				Subsystem: "workflow",
				Name:      "stage_duration_seconds",
				Help:      "Duration spent in each pipeline stage.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stage", "status"},
		),
		stageFaults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "customer_service",
				Subsystem: "workflow",
				Name:      "stage_faults_total",
				Help:      "Stage faults degraded to an error tag.",
			},
			[]string{"stage"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "customer_service",
				Subsystem: "workflow",
				Name:      "runs_total",
				Help:      "Pipeline runs by outcome.",
			},
			[]string{"outcome"},
		),
		accessDecision: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "customer_service",
				Subsystem: "workflow",
				Name:      "order_history_access_total",
				Help:      "Order history authorization decisions.",
			},
			[]string{"decision"},
		),
		webhookEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "customer_service",
				Subsystem: "payment",
				Name:      "webhook_events_total",
				Help:      "Verified payment webhook events by type.",
			},
			[]string{"type"},
		),
	}

	for _, c := range []prometheus.Collector{w.stageDuration, w.stageFaults, w.runs, w.accessDecision, w.webhookEvents} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func (w *Workflow) ObserveStage(stage string, faulted bool, d time.Duration) {
	if w == nil {
		return
	}
	status := "ok"
	if faulted {
		status = "fault"
		w.stageFaults.WithLabelValues(stage).Inc()
	}
	w.stageDuration.WithLabelValues(stage, status).Observe(d.Seconds())
}

func (w *Workflow) ObserveRun(outcome string) {
	if w == nil {
		return
	}
	w.runs.WithLabelValues(outcome).Inc()
}

func (w *Workflow) ObserveAccess(decision string) {
	if w == nil {
		return
	}
	w.accessDecision.WithLabelValues(decision).Inc()
}

func (w *Workflow) ObserveWebhook(eventType string) {
	if w == nil {
		return
	}
	w.webhookEvents.WithLabelValues(eventType).Inc()
}
