package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"atsResume/internal/api/middleware"
	"atsResume/internal/resume"
	"atsResume/internal/storage"
	"atsResume/internal/store"
	"atsResume/internal/tasks"
)

const (
	archivePresignTTL   = 15 * time.Minute
	archiveWindow       = time.Hour
	defaultArchiveLimit = 20
	defaultListLimit    = 20
)

type taskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type archiveStorage interface {
	ListObjects(ctx context.Context, prefix string, limit int) ([]storage.ObjectMeta, error)
	GeneratePresignedURL(ctx context.Context, objectKey string, duration time.Duration) (string, error)
}

// ArchiveHandler 负责把当前快照投递到归档队列，并列出已有归档。
type ArchiveHandler struct {
	store    *store.Store
	queue    taskEnqueuer
	storage  archiveStorage
	counter  redisRateCounter
	storeKey string
	maxRetry int
	limit    int64
}

// NewArchiveHandler 构造 ArchiveHandler。counter 为 nil 时不限流。
func NewArchiveHandler(st *store.Store, queue taskEnqueuer, storage archiveStorage, counter redisRateCounter, storeKey string, maxRetry int) *ArchiveHandler {
	return &ArchiveHandler{
		store:    st,
		queue:    queue,
		storage:  storage,
		counter:  counter,
		storeKey: storeKey,
		maxRetry: maxRetry,
		limit:    defaultArchiveLimit,
	}
}

type archiveListItem struct {
	storage.ObjectMeta
	URL string `json:"url"`
}

// POST /v1/resume/archive
func (h *ArchiveHandler) CreateArchive(c *gin.Context) {
	ctx := c.Request.Context()
	log := middleware.LoggerFromContext(c)

	if h.counter != nil {
		count, err := incrWithTTL(ctx, h.counter, "archive_rate:"+h.storeKey, archiveWindow)
		if err != nil {
			log.Warn("archive rate counter unavailable", slog.Any("error", err))
		} else if count > h.limit {
			TooManyRequests(c, "archive limit reached, try again later")
			return
		}
	}

	state := h.store.State()
	snapshot, err := resume.Encode(state.Resume)
	if err != nil {
		log.Error("encode resume snapshot failed", slog.Any("error", err))
		Internal(c, "failed to encode resume")
		return
	}

	correlationID := middleware.GetCorrelationID(c)
	task, err := tasks.NewArchiveTask(tasks.ArchivePayload{
		ResumeID:      state.Resume.ID,
		StoreKey:      h.storeKey,
		CorrelationID: correlationID,
		Snapshot:      snapshot,
	}, asynq.MaxRetry(h.maxRetry))
	if err != nil {
		log.Error("build archive task failed", slog.Any("error", err))
		Internal(c, "failed to create archive task")
		return
	}

	info, err := h.queue.EnqueueContext(ctx, task)
	if err != nil {
		log.Error("enqueue archive task failed", slog.Any("error", err))
		Internal(c, "failed to enqueue archive task")
		return
	}

	log.Info("archive task enqueued", slog.String("task_id", info.ID), slog.String("resume_id", state.Resume.ID))
	c.JSON(http.StatusAccepted, gin.H{
		"task_id":        info.ID,
		"resume_id":      state.Resume.ID,
		"correlation_id": correlationID,
	})
}

// GET /v1/resume/archives?limit=
// 按时间倒序返回当前简历的归档，附带限时下载链接。
func (h *ArchiveHandler) ListArchives(c *gin.Context) {
	ctx := c.Request.Context()
	log := middleware.LoggerFromContext(c)

	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 100 {
			BadRequest(c, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	resumeID := h.store.State().Resume.ID
	objects, err := h.storage.ListObjects(ctx, tasks.ArchivePrefix(resumeID), limit)
	if err != nil {
		log.Error("list archives failed", slog.Any("error", err))
		Internal(c, "failed to list archives")
		return
	}

	items := make([]archiveListItem, 0, len(objects))
	for _, obj := range objects {
		url, err := h.storage.GeneratePresignedURL(ctx, obj.Key, archivePresignTTL)
		if err != nil {
			log.Error("generate archive link failed", slog.String("object_key", obj.Key), slog.Any("error", err))
			Internal(c, "failed to generate archive link")
			return
		}
		items = append(items, archiveListItem{ObjectMeta: obj, URL: url})
	}

	c.JSON(http.StatusOK, gin.H{"resume_id": resumeID, "archives": items})
}
