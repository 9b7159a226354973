package analysis

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"atsResume/internal/errcode"
	"atsResume/internal/metrics"
	"atsResume/internal/notify"
	"atsResume/internal/resume"
	"atsResume/internal/store"
)

// ErrSuperseded 表示在等待期间有更新的分析请求到达。
var ErrSuperseded = errors.New("analysis superseded by a newer request")

// Result 是一次职位匹配分析的结果。
type Result struct {
	ID             string    `json:"id"`
	ResumeID       string    `json:"resume_id"`
	JobDescription string    `json:"job_description"`
	Score          int       `json:"score"`
	Matching       []string  `json:"matching"`
	Missing        []string  `json:"missing"`
	AnalyzedAt     time.Time `json:"analyzed_at"`
}

// Publisher 接收分析完成的通知。
type Publisher interface {
	Publish(ctx context.Context, msg notify.Message) error
}

// Options 配置 Analyzer。
type Options struct {
	Delay     time.Duration
	Match     resume.MatchOptions
	Publisher Publisher
	Logger    *slog.Logger
}

// Analyzer 在异步边界后运行关键词匹配。同一时刻只有最新的请求有效：
// 新请求到达时取消旧请求的等待，旧请求返回 ErrSuperseded。
// 匹配基于存储的快照副本，不会与变更并发读写同一份文档。
type Analyzer struct {
	store     *store.Store
	dict      resume.Dictionary
	match     resume.MatchOptions
	delay     time.Duration
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	latest     *Result
}

// New 构造 Analyzer。
func New(st *store.Store, dict resume.Dictionary, opts Options) *Analyzer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		store:     st,
		dict:      dict,
		match:     opts.Match,
		delay:     opts.Delay,
		publisher: opts.Publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Analyze 分析职位描述与当前简历的匹配度。
// 空白的职位描述直接返回零分结果，不缓存也不打断进行中的请求。
func (a *Analyzer) Analyze(ctx context.Context, jobDescription string) (Result, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return Result{Matching: []string{}, Missing: []string{}}, nil
	}

	gen, waitCtx, done := a.begin(ctx)
	defer done()

	if a.delay > 0 {
		timer := time.NewTimer(a.delay)
		select {
		case <-waitCtx.Done():
			timer.Stop()
			if err := ctx.Err(); err != nil {
				metrics.RecordAnalysis("canceled", 0)
				return Result{}, err
			}
			metrics.RecordAnalysis("superseded", 0)
			return Result{}, ErrSuperseded
		case <-timer.C:
		}
	}

	state := a.store.State()
	match := resume.MatchKeywords(jobDescription, state.Resume, a.dict, a.match)
	result := Result{
		ID:             uuid.NewString(),
		ResumeID:       state.Resume.ID,
		JobDescription: jobDescription,
		Score:          match.Score,
		Matching:       match.Matching,
		Missing:        match.Missing,
		AnalyzedAt:     a.now().UTC(),
	}

	if !a.commit(gen, result) {
		metrics.RecordAnalysis("superseded", 0)
		return Result{}, ErrSuperseded
	}
	metrics.RecordAnalysis("completed", result.Score)

	a.store.UpdateResume(ctx, store.ResumePatch{JobDescription: &jobDescription})
	a.publish(ctx, result)

	a.logger.Info("job match analysis completed",
		slog.String("analysis_id", result.ID),
		slog.Int("score", result.Score),
		slog.Int("matching", len(result.Matching)),
		slog.Int("missing", len(result.Missing)),
	)
	return result, nil
}

// Latest 返回最近一次完成的分析。
func (a *Analyzer) Latest() (Result, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.latest == nil {
		return Result{}, false
	}
	out := *a.latest
	out.Matching = append([]string(nil), a.latest.Matching...)
	out.Missing = append([]string(nil), a.latest.Missing...)
	return out, true
}

func (a *Analyzer) begin(ctx context.Context) (uint64, context.Context, func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		a.cancel()
	}
	a.generation++
	waitCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	return a.generation, waitCtx, cancel
}

func (a *Analyzer) commit(gen uint64, result Result) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.generation {
		return false
	}
	a.latest = &result
	a.cancel = nil
	return true
}

func (a *Analyzer) publish(ctx context.Context, result Result) {
	if a.publisher == nil {
		return
	}
	score := result.Score
	msg := notify.Message{
		Kind:      notify.KindAnalysis,
		Status:    notify.StatusCompleted,
		ResumeID:  result.ResumeID,
		ErrorCode: errcode.OK,
		Score:     &score,
		Payload:   result,
	}
	if err := a.publisher.Publish(context.WithoutCancel(ctx), msg); err != nil {
		a.logger.Warn("publish analysis notification failed", slog.Any("error", err))
	}
}
