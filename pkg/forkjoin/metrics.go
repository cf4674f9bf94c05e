package forkjoin

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vnykmshr/forkjoin/pkg/metrics"
)

// MetricsPool wraps a Pool with Prometheus metrics collection.
type MetricsPool struct {
	pool     Pool
	name     string
	registry *metrics.Registry
	enabled  bool
}

// NewWithMetrics creates a pool with metrics enabled, using a dedicated
// registry so repeated construction does not conflict.
func NewWithMetrics(workerCount int, name string) (Pool, error) {
	registry := prometheus.NewRegistry()
	return NewWithConfigAndMetrics(Config{
		WorkerCount:     workerCount,
		DrainOnShutdown: true,
	}, name, metrics.Config{
		Enabled:  true,
		Registry: registry,
	})
}

// NewWithConfigAndMetrics creates a pool with custom config and metrics.
// The pool's fork, steal and completion callbacks are chained, not
// replaced, if the config already sets them.
func NewWithConfigAndMetrics(config Config, name string, metricsConfig metrics.Config) (Pool, error) {
	if !metricsConfig.Enabled {
		return NewWithConfig(config)
	}

	registry := metrics.DefaultRegistry
	if metricsConfig.Registry != nil {
		registry = metrics.NewRegistry(metricsConfig.Registry)
	}

	mp := &MetricsPool{
		name:     name,
		registry: registry,
		enabled:  true,
	}

	onFork := config.OnFork
	config.OnFork = func(workerID int, h *Handle) {
		registry.TasksForked.WithLabelValues(name).Inc()
		if onFork != nil {
			onFork(workerID, h)
		}
	}
	onSteal := config.OnSteal
	config.OnSteal = func(workerID int) {
		registry.TasksStolen.WithLabelValues(name).Inc()
		if onSteal != nil {
			onSteal(workerID)
		}
	}
	onTaskStart := config.OnTaskStart
	config.OnTaskStart = func(workerID int, h *Handle) {
		registry.TasksExecuted.WithLabelValues(name).Inc()
		if onTaskStart != nil {
			onTaskStart(workerID, h)
		}
	}
	onTaskComplete := config.OnTaskComplete
	config.OnTaskComplete = func(workerID int, h *Handle, d time.Duration) {
		registry.TaskDuration.WithLabelValues(name).Observe(d.Seconds())
		if h.State() == StateFailed {
			registry.TasksFailed.WithLabelValues(name).Inc()
		} else {
			registry.TasksCompleted.WithLabelValues(name).Inc()
		}
		if onTaskComplete != nil {
			onTaskComplete(workerID, h, d)
		}
	}

	base, err := NewWithConfig(config)
	if err != nil {
		return nil, err
	}
	mp.pool = base
	mp.registry.PoolWorkers.WithLabelValues(name).Set(float64(base.Size()))
	return mp, nil
}

// updateQueueGauge refreshes the queued-tasks gauge.
func (mp *MetricsPool) updateQueueGauge() {
	if mp.enabled {
		mp.registry.PoolQueued.WithLabelValues(mp.name).Set(float64(mp.pool.QueueSize()))
	}
}

// Submit queues a root task and counts the submission.
func (mp *MetricsPool) Submit(task Task) (*Handle, error) {
	return mp.SubmitWithContext(context.Background(), task)
}

// SubmitWithContext queues a root task with the given context.
func (mp *MetricsPool) SubmitWithContext(ctx context.Context, task Task) (*Handle, error) {
	h, err := mp.pool.SubmitWithContext(ctx, task)
	if err == nil && mp.enabled {
		mp.registry.TasksSubmitted.WithLabelValues(mp.name).Inc()
		mp.updateQueueGauge()
	}
	return h, err
}

// Invoke submits task and blocks until it is terminal.
func (mp *MetricsPool) Invoke(ctx context.Context, task Task) error {
	h, err := mp.SubmitWithContext(ctx, task)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return h.Wait(ctx)
}

// Shutdown initiates a graceful stop of the underlying pool.
func (mp *MetricsPool) Shutdown() <-chan struct{} {
	return mp.pool.Shutdown()
}

// ShutdownNow initiates an immediate stop of the underlying pool.
func (mp *MetricsPool) ShutdownNow() <-chan struct{} {
	return mp.pool.ShutdownNow()
}

// Quiescent reports whether the underlying pool is quiescent.
func (mp *MetricsPool) Quiescent() bool {
	return mp.pool.Quiescent()
}

// Size returns the number of workers.
func (mp *MetricsPool) Size() int {
	return mp.pool.Size()
}

// QueueSize returns the number of unclaimed external submissions.
func (mp *MetricsPool) QueueSize() int {
	mp.updateQueueGauge()
	return mp.pool.QueueSize()
}

// ActiveWorkers returns the number of workers currently executing a task.
func (mp *MetricsPool) ActiveWorkers() int {
	return mp.pool.ActiveWorkers()
}

// Stats returns a snapshot of the underlying pool's counters.
func (mp *MetricsPool) Stats() Stats {
	return mp.pool.Stats()
}

// EnableMetrics enables metrics collection.
func (mp *MetricsPool) EnableMetrics(config metrics.Config) error {
	mp.enabled = config.Enabled
	if config.Registry != nil {
		mp.registry = metrics.NewRegistry(config.Registry)
	}
	return nil
}

// DisableMetrics disables metrics collection.
func (mp *MetricsPool) DisableMetrics() {
	mp.enabled = false
}

// MetricsEnabled returns true if metrics are currently enabled.
func (mp *MetricsPool) MetricsEnabled() bool {
	return mp.enabled
}
