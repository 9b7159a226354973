package metrics

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	taskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "atsresume",
			Subsystem: "worker",
			Name:      "task_duration_seconds",
			Help:      "后台任务耗时分布（秒）。",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"task_type", "result"},
	)

	tasksInProgress = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "atsresume",
			Subsystem: "worker",
			Name:      "tasks_in_progress",
			Help:      "当前正在处理的后台任务数量。",
		},
		[]string{"task_type"},
	)
)

// AsynqMetricsMiddleware 记录每个任务的耗时与结果（success/retry/failed）。
func AsynqMetricsMiddleware() asynq.MiddlewareFunc {
	return func(next asynq.Handler) asynq.Handler {
		return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
			taskType := task.Type()
			tasksInProgress.WithLabelValues(taskType).Inc()
			defer tasksInProgress.WithLabelValues(taskType).Dec()

			start := time.Now()
			err := next.ProcessTask(ctx, task)
			taskDuration.WithLabelValues(taskType, taskResult(ctx, err)).Observe(time.Since(start).Seconds())
			return err
		})
	}
}

func taskResult(ctx context.Context, err error) string {
	if err == nil {
		return "success"
	}
	retried, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if ok1 && ok2 && retried < maxRetry {
		return "retry"
	}
	return "failed"
}
