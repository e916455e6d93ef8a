package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's Prometheus instruments.
type Metrics struct {
	ExecutionsStarted  prometheus.Counter
	ExecutionsFinished *prometheus.CounterVec
	TasksFinished      *prometheus.CounterVec
	TaskDuration       *prometheus.HistogramVec
}

// New registers the engine metrics with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ExecutionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "workflow_executions_started_total",
			Help: "Workflow executions accepted for processing.",
		}),
		ExecutionsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "workflow_executions_finished_total",
			Help: "Workflow executions that reached a terminal status.",
		}, []string{"status"}),
		TasksFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "workflow_tasks_finished_total",
			Help: "Tasks that reached a terminal status.",
		}, []string{"category", "status"}),
		TaskDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "workflow_task_duration_seconds",
			Help:    "Wall-clock duration of task executor calls.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"category"}),
	}
}
