package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"atsResume/internal/analysis"
	"atsResume/internal/resume"
	"atsResume/internal/storage"
	"atsResume/internal/store"
	"atsResume/internal/tasks"
)

type memoryPersister struct {
	mu   sync.Mutex
	data []byte
}

func (p *memoryPersister) Load(context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.data == nil {
		return nil, store.ErrNoSnapshot
	}
	return p.data, nil
}

func (p *memoryPersister) Save(_ context.Context, s store.Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data = s.Data
	return nil
}

type fakeQueue struct {
	tasks []*asynq.Task
	err   error
}

func (q *fakeQueue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Type: task.Type()}, nil
}

type fakeArchiveStorage struct {
	prefix  string
	objects []storage.ObjectMeta
}

func (s *fakeArchiveStorage) ListObjects(_ context.Context, prefix string, _ int) ([]storage.ObjectMeta, error) {
	s.prefix = prefix
	return s.objects, nil
}

func (s *fakeArchiveStorage) GeneratePresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://minio.local/" + key, nil
}

type fakeCounter struct {
	counts map[string]int64
	err    error
}

func (f *fakeCounter) Incr(_ context.Context, key string) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeCounter) Expire(context.Context, string, time.Duration) *redis.BoolCmd {
	return redis.NewBoolResult(true, nil)
}

type testServer struct {
	router  *gin.Engine
	store   *store.Store
	queue   *fakeQueue
	storage *fakeArchiveStorage
	counter *fakeCounter
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.New(context.Background(), &memoryPersister{}, resume.DefaultCatalog(), store.WithLogger(logger))
	dict := resume.DefaultDictionary(true)

	ts := &testServer{
		store:   st,
		queue:   &fakeQueue{},
		storage: &fakeArchiveStorage{},
		counter: &fakeCounter{counts: map[string]int64{}},
	}
	ts.router = NewRouter(logger)
	RegisterRoutes(ts.router, Dependencies{
		Store:       st,
		Catalog:     resume.DefaultCatalog(),
		Dictionary:  dict,
		Analyzer:    analysis.New(st, dict, analysis.Options{Logger: logger}),
		Queue:       ts.queue,
		Storage:     ts.storage,
		RateCounter: ts.counter,
		StoreKey:    "atsResume",
		MaxRetry:    3,
		Logger:      logger,
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) stateResponse {
	t.Helper()
	var resp stateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode state response: %v (%s)", err, w.Body.String())
	}
	return resp
}

func TestGetResume_DefaultScaffold(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/v1/resume", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	resp := decodeState(t, w)
	if len(resp.Resume.Sections) != 6 || resp.Template.ID != "modern" || resp.Score != 0 {
		t.Fatalf("unexpected default state %+v", resp)
	}
	if resp.Assessment.Status != resume.StatusNeedsImprovement {
		t.Fatalf("unexpected assessment %+v", resp.Assessment)
	}
}

func TestEditingFlowRecomputesScore(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPatch, "/v1/resume", `{"personalInfo":{"name":"Jane Doe","email":"jane@x.com","phone":"555-1111","location":"NYC"}}`)
	if w.Code != http.StatusOK || decodeState(t, w).Score != 20 {
		t.Fatalf("unexpected patch response %d %s", w.Code, w.Body.String())
	}

	w = ts.do(t, http.MethodPost, "/v1/resume/sections/experience/items", `{"company":"Acme","position":"Engineer","startDate":"2020","endDate":"","description":"• Led team of 5\n• Improved throughput by 20%"}`)
	if w.Code != http.StatusCreated || decodeState(t, w).Score != 30 {
		t.Fatalf("unexpected add item response %d %s", w.Code, w.Body.String())
	}

	ts.do(t, http.MethodPost, "/v1/resume/sections/education/items", `{"institution":"State U","degree":"BSc","field":"CS","startDate":"","endDate":""}`)
	for _, name := range []string{"Go", "SQL", "Docker"} {
		ts.do(t, http.MethodPost, "/v1/resume/sections/skills/items", `{"name":"`+name+`"}`)
	}

	w = ts.do(t, http.MethodGet, "/v1/resume/score", "")
	var score struct {
		Score int `json:"score"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &score); err != nil || score.Score != 43 {
		t.Fatalf("expected score 43, got %s", w.Body.String())
	}
}

func TestAddItem_RejectsWrongShape(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/v1/resume/sections/skills/items", `{"company":"Acme"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
	w = ts.do(t, http.MethodPost, "/v1/resume/sections/unknown/items", `{"name":"Go"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}

func TestRemoveAndMoveItems(t *testing.T) {
	ts := newTestServer(t)
	for _, name := range []string{"a", "b", "c"} {
		ts.do(t, http.MethodPost, "/v1/resume/sections/skills/items", `{"name":"`+name+`"}`)
	}

	w := ts.do(t, http.MethodPost, "/v1/resume/sections/skills/items/move", `{"from":0,"to":2}`)
	skills, _ := decodeState(t, w).Resume.Section("skills")
	if skills.Items[2].(resume.SkillItem).Name != "a" {
		t.Fatalf("unexpected order after move %+v", skills.Items)
	}

	w = ts.do(t, http.MethodDelete, "/v1/resume/sections/skills/items/9", "")
	if w.Code != http.StatusOK {
		t.Fatalf("out of range delete should be a silent no-op, got %d", w.Code)
	}
	w = ts.do(t, http.MethodDelete, "/v1/resume/sections/skills/items/0", "")
	skills, _ = decodeState(t, w).Resume.Section("skills")
	if len(skills.Items) != 2 {
		t.Fatalf("expected 2 skills got %d", len(skills.Items))
	}

	w = ts.do(t, http.MethodDelete, "/v1/resume/sections/skills/items/x", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non numeric index got %d", w.Code)
	}
	w = ts.do(t, http.MethodPost, "/v1/resume/sections/skills/items/move", `{"from":0}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 when to is missing got %d", w.Code)
	}
}

func TestMoveSectionAndPatchSection(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/v1/resume/sections/move", `{"from":1,"to":4}`)
	if got := decodeState(t, w).Resume.Sections[4].ID; got != "experience" {
		t.Fatalf("expected experience at index 4 got %s", got)
	}

	w = ts.do(t, http.MethodPatch, "/v1/resume/sections/skills", `{"title":"Core Skills","items":[{"name":"Go","level":4}]}`)
	skills, _ := decodeState(t, w).Resume.Section("skills")
	if skills.Title != "Core Skills" || len(skills.Items) != 1 {
		t.Fatalf("unexpected section %+v", skills)
	}

	w = ts.do(t, http.MethodPatch, "/v1/resume/sections/skills", `{"items":["plain text"]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for text item in skills got %d", w.Code)
	}
}

func TestChangeTemplate(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPut, "/v1/resume/template", `{"template_id":"executive"}`)
	if w.Code != http.StatusOK || decodeState(t, w).Template.ID != "executive" {
		t.Fatalf("unexpected response %d %s", w.Code, w.Body.String())
	}

	w = ts.do(t, http.MethodPut, "/v1/resume/template", `{"template_id":"nope"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
	if ts.store.State().Template.ID != "executive" {
		t.Fatalf("unknown template should not change state")
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodPatch, "/v1/resume", `{"name":"Backend CV"}`)

	w := ts.do(t, http.MethodPost, "/v1/resume/reset", "")
	resp := decodeState(t, w)
	if resp.Resume.Name != resume.DefaultResumeName || resp.Score != 0 {
		t.Fatalf("unexpected reset state %+v", resp)
	}
}

func TestImproveItem(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodPost, "/v1/resume/sections/experience/items", `{"company":"Acme","position":"Engineer","startDate":"","endDate":"","description":"did things"}`)
	ts.do(t, http.MethodPost, "/v1/resume/sections/skills/items", `{"name":"Go"}`)

	w := ts.do(t, http.MethodPost, "/v1/resume/sections/experience/items/0/improve", "")
	exp, _ := decodeState(t, w).Resume.Section("experience")
	if exp.Items[0].(resume.ExperienceItem).Description != resume.ImprovedDescription {
		t.Fatalf("description not improved: %+v", exp.Items[0])
	}

	if w := ts.do(t, http.MethodPost, "/v1/resume/sections/skills/items/0/improve", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for skill item got %d", w.Code)
	}
	if w := ts.do(t, http.MethodPost, "/v1/resume/sections/experience/items/5/improve", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing item got %d", w.Code)
	}
}

func TestTemplates(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/v1/templates?free=true", "")
	var list struct {
		Templates []resume.Template `json:"templates"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, tpl := range list.Templates {
		if tpl.IsPremium {
			t.Fatalf("free filter returned premium template %s", tpl.ID)
		}
	}
	if len(list.Templates) != 4 {
		t.Fatalf("expected 4 free templates got %d", len(list.Templates))
	}

	if w := ts.do(t, http.MethodGet, "/v1/templates?free=maybe", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
	if w := ts.do(t, http.MethodGet, "/v1/templates/minimal", ""); w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	if w := ts.do(t, http.MethodGet, "/v1/templates/unknown", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}

func TestAnalysisEndpoints(t *testing.T) {
	ts := newTestServer(t)

	if w := ts.do(t, http.MethodGet, "/v1/analysis/latest", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before any analysis got %d", w.Code)
	}

	ts.do(t, http.MethodPost, "/v1/resume/sections/skills/items", `{"name":"Python"}`)
	w := ts.do(t, http.MethodPost, "/v1/analysis", `{"job_description":"We need Python and Kubernetes"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d %s", w.Code, w.Body.String())
	}
	var result analysis.Result
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !contains(result.Matching, "python") || !contains(result.Missing, "kubernetes") {
		t.Fatalf("unexpected analysis %+v", result)
	}

	if w := ts.do(t, http.MethodGet, "/v1/analysis/latest", ""); w.Code != http.StatusOK {
		t.Fatalf("expected latest analysis got %d", w.Code)
	}
	if ts.store.State().Resume.JobDescription != "We need Python and Kubernetes" {
		t.Fatalf("job description not cached")
	}
}

func TestSuggestions(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/v1/suggestions/summary", "")
	var summary struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil || len(summary.Suggestions) != 3 {
		t.Fatalf("unexpected summary suggestions %s", w.Body.String())
	}

	w = ts.do(t, http.MethodGet, "/v1/suggestions/skills?limit=5", "")
	var skills struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &skills); err != nil || len(skills.Suggestions) != 5 {
		t.Fatalf("unexpected skill suggestions %s", w.Body.String())
	}

	if w := ts.do(t, http.MethodGet, "/v1/suggestions/skills?limit=0", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
}

func TestCreateArchive(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/resume/archive", nil)
	req.Header.Set("X-Correlation-ID", "corr-1")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202 got %d %s", w.Code, w.Body.String())
	}
	if len(ts.queue.tasks) != 1 {
		t.Fatalf("expected one task got %d", len(ts.queue.tasks))
	}
	var payload tasks.ArchivePayload
	if err := json.Unmarshal(ts.queue.tasks[0].Payload(), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.ResumeID != ts.store.State().Resume.ID || payload.CorrelationID != "corr-1" || payload.StoreKey != "atsResume" {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if _, err := resume.Decode(payload.Snapshot); err != nil {
		t.Fatalf("snapshot should decode: %v", err)
	}
}

func TestCreateArchive_RateLimited(t *testing.T) {
	ts := newTestServer(t)
	ts.counter.counts["archive_rate:atsResume"] = defaultArchiveLimit

	if w := ts.do(t, http.MethodPost, "/v1/resume/archive", ""); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", w.Code)
	}
	if len(ts.queue.tasks) != 0 {
		t.Fatalf("rate limited request should not enqueue")
	}
}

func TestCreateArchive_EnqueueFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.queue.err = errors.New("redis unavailable")

	if w := ts.do(t, http.MethodPost, "/v1/resume/archive", ""); w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", w.Code)
	}
}

func TestListArchives(t *testing.T) {
	ts := newTestServer(t)
	resumeID := ts.store.State().Resume.ID
	ts.storage.objects = []storage.ObjectMeta{{Key: tasks.ArchivePrefix(resumeID) + "a.json", Size: 10}}

	w := ts.do(t, http.MethodGet, "/v1/resume/archives", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	if ts.storage.prefix != tasks.ArchivePrefix(resumeID) {
		t.Fatalf("unexpected prefix %q", ts.storage.prefix)
	}
	if !strings.Contains(w.Body.String(), "https://minio.local/archives/") {
		t.Fatalf("expected presigned link in %s", w.Body.String())
	}
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	if w := ts.do(t, http.MethodGet, "/health", ""); w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	w := ts.do(t, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "atsresume_resume_completeness_score") {
		t.Fatalf("expected resume metrics to be exported")
	}
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
