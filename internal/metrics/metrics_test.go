package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestResumeMetrics(t *testing.T) {
	SetCompletenessScore(43)
	if got := testutil.ToFloat64(completenessScore); got != 43 {
		t.Fatalf("expected gauge 43 got %v", got)
	}

	before := testutil.ToFloat64(snapshotWritesTotal.WithLabelValues("error"))
	RecordSnapshotWrite(errors.New("disk full"))
	if got := testutil.ToFloat64(snapshotWritesTotal.WithLabelValues("error")); got != before+1 {
		t.Fatalf("expected error counter to increase, got %v", got)
	}

	supersededBefore := testutil.ToFloat64(analysesTotal.WithLabelValues("superseded"))
	RecordAnalysis("superseded", 0)
	if got := testutil.ToFloat64(analysesTotal.WithLabelValues("superseded")); got != supersededBefore+1 {
		t.Fatalf("expected superseded counter to increase, got %v", got)
	}
}

func TestTaskResult(t *testing.T) {
	if got := taskResult(context.Background(), nil); got != "success" {
		t.Fatalf("expected success got %s", got)
	}
	// 无重试信息的上下文视为最后一次尝试
	if got := taskResult(context.Background(), errors.New("boom")); got != "failed" {
		t.Fatalf("expected failed got %s", got)
	}
}

func TestAsynqMetricsMiddleware_PassesThroughError(t *testing.T) {
	want := errors.New("upload failed")
	handler := AsynqMetricsMiddleware()(asynq.HandlerFunc(func(context.Context, *asynq.Task) error {
		return want
	}))

	if err := handler.ProcessTask(context.Background(), asynq.NewTask("resume:archive", nil)); !errors.Is(err, want) {
		t.Fatalf("expected wrapped handler error, got %v", err)
	}
	if testutil.CollectAndCount(taskDuration) == 0 {
		t.Fatalf("expected task duration to be observed")
	}
}

func TestGinMiddleware_UsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/v1/templates/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/templates/modern", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/templates/minimal", nil))

	if n := testutil.CollectAndCount(httpDuration, "atsresume_http_request_duration_seconds"); n != 1 {
		t.Fatalf("expected a single route series got %d", n)
	}
}
