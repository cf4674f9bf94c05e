// Package metrics provides Prometheus instrumentation for forkjoin components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for forkjoin components.
type Registry struct {
	// Pool metrics
	PoolWorkers    *prometheus.GaugeVec
	PoolQueued     *prometheus.GaugeVec
	TasksSubmitted *prometheus.CounterVec
	TasksForked    *prometheus.CounterVec
	TasksExecuted  *prometheus.CounterVec
	TasksCompleted *prometheus.CounterVec
	TasksFailed    *prometheus.CounterVec
	TasksCancelled *prometheus.CounterVec
	TaskDuration   *prometheus.HistogramVec

	// Stealing metrics
	TasksStolen *prometheus.CounterVec

	// Scheduler metrics
	TasksScheduled *prometheus.CounterVec

	// Memoization metrics
	MemoHits   *prometheus.CounterVec
	MemoMisses *prometheus.CounterVec
}

// DefaultRegistry is the default metrics registry used by forkjoin components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		PoolWorkers: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "forkjoin",
				Subsystem: "pool",
				Name:      "workers",
				Help:      "Number of workers in the pool",
			},
			[]string{"pool_name"},
		),

		PoolQueued: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "forkjoin",
				Subsystem: "pool",
				Name:      "queued_tasks",
				Help:      "Number of externally submitted tasks waiting for a worker",
			},
			[]string{"pool_name"},
		),

		TasksSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "forkjoin",
				Subsystem: "pool",
				Name:      "tasks_submitted_total",
				Help:      "Total number of root tasks submitted to the pool",
			},
			[]string{"pool_name"},
		),

		TasksForked: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "forkjoin",
				Subsystem: "pool",
				Name:      "tasks_forked_total",
				Help:      "Total number of subtasks forked by running tasks",
			},
			[]string{"pool_name"},
		),

		TasksExecuted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "forkjoin",
				Subsystem: "pool",
				Name:      "tasks_executed_total",
				Help:      "Total number of tasks executed",
			},
			[]string{"pool_name"},
		),

		TasksCompleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "forkjoin",
				Subsystem: "pool",
				Name:      "tasks_completed_total",
				Help:      "Total number of tasks completed successfully",
			},
			[]string{"pool_name"},
		),

		TasksFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "forkjoin",
				Subsystem: "pool",
				Name:      "tasks_failed_total",
				Help:      "Total number of tasks that failed",
			},
			[]string{"pool_name"},
		),

		TasksCancelled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "forkjoin",
				Subsystem: "pool",
				Name:      "tasks_cancelled_total",
				Help:      "Total number of tasks cancelled before execution",
			},
			[]string{"pool_name"},
		),

		TaskDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "forkjoin",
				Subsystem: "pool",
				Name:      "task_duration_seconds",
				Help:      "Time spent executing tasks",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"pool_name"},
		),

		TasksStolen: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "forkjoin",
				Subsystem: "steal",
				Name:      "tasks_stolen_total",
				Help:      "Total number of tasks taken from another worker's deque",
			},
			[]string{"pool_name"},
		),

		TasksScheduled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "forkjoin",
				Subsystem: "scheduler",
				Name:      "tasks_scheduled_total",
				Help:      "Total number of tasks scheduled for future submission",
			},
			[]string{"scheduler_name"},
		),

		MemoHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "forkjoin",
				Subsystem: "memo",
				Name:      "hits_total",
				Help:      "Total number of memoization cache hits",
			},
			[]string{"cache_name"},
		),

		MemoMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "forkjoin",
				Subsystem: "memo",
				Name:      "misses_total",
				Help:      "Total number of memoization cache misses",
			},
			[]string{"cache_name"},
		),
	}
}
