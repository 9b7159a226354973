package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	completenessScore = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "atsresume",
			Subsystem: "resume",
			Name:      "completeness_score",
			Help:      "当前简历的完整度分数。",
		},
	)

	snapshotWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "atsresume",
			Subsystem: "resume",
			Name:      "snapshot_writes_total",
			Help:      "快照写入次数，按结果区分。",
		},
		[]string{"result"},
	)

	analysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "atsresume",
			Subsystem: "analysis",
			Name:      "requests_total",
			Help:      "职位匹配分析次数，按结果区分。",
		},
		[]string{"outcome"},
	)

	matchScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "atsresume",
			Subsystem: "analysis",
			Name:      "match_score",
			Help:      "职位匹配分数分布。",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		},
	)
)

// SetCompletenessScore 记录最新的完整度分数。
func SetCompletenessScore(score int) {
	completenessScore.Set(float64(score))
}

// RecordSnapshotWrite 记录一次快照写入。
func RecordSnapshotWrite(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	snapshotWritesTotal.WithLabelValues(result).Inc()
}

// RecordAnalysis 记录一次分析的结果，outcome 取 completed / superseded / canceled。
func RecordAnalysis(outcome string, score int) {
	analysesTotal.WithLabelValues(outcome).Inc()
	if outcome == "completed" {
		matchScore.Observe(float64(score))
	}
}
