package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"atsResume/internal/errcode"
	"atsResume/internal/notify"
	"atsResume/internal/tasks"
)

type objectStore interface {
	PutJSON(ctx context.Context, objectName string, data []byte) error
}

// ArchiveTaskHandler 负责消费快照归档任务。
type ArchiveTaskHandler struct {
	storage objectStore
	redis   notify.Client
	logger  *slog.Logger
}

// NewArchiveTaskHandler 创建任务处理器。
func NewArchiveTaskHandler(storage objectStore, redisClient notify.Client, logger *slog.Logger) *ArchiveTaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArchiveTaskHandler{storage: storage, redis: redisClient, logger: logger}
}

// ProcessTask 实现 asynq.Handler。
func (h *ArchiveTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	log := h.logger

	var payload tasks.ArchivePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Error("unmarshal task payload failed", slog.Any("error", err))
		return fmt.Errorf("unmarshal archive payload: %w: %w", err, asynq.SkipRetry)
	}

	log = log.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.String("resume_id", payload.ResumeID),
	)
	if payload.ResumeID == "" || !json.Valid(payload.Snapshot) {
		log.Warn("archive payload has no usable snapshot, skipping task")
		return nil
	}
	log.Info("starting resume archive task")

	publisher := notify.NewPublisher(h.redis, payload.StoreKey)

	defer func() {
		if retErr == nil || !isFinalAsynqAttempt(ctx) {
			return
		}
		msg := notify.Message{
			Kind:          notify.KindArchive,
			Status:        notify.StatusError,
			ResumeID:      payload.ResumeID,
			CorrelationID: payload.CorrelationID,
			ErrorCode:     errcode.SystemError,
			ErrorMessage:  strings.TrimSpace(retErr.Error()),
		}
		if err := publisher.Publish(ctx, msg); err != nil {
			log.Error("publish archive error notification failed", slog.Any("error", err))
		}
	}()

	objectName := tasks.ArchivePrefix(payload.ResumeID) + uuid.NewString() + ".json"
	if err := h.storage.PutJSON(ctx, objectName, payload.Snapshot); err != nil {
		log.Error("upload snapshot to minio failed", slog.Any("error", err))
		return err
	}

	msg := notify.Message{
		Kind:          notify.KindArchive,
		Status:        notify.StatusCompleted,
		ResumeID:      payload.ResumeID,
		CorrelationID: payload.CorrelationID,
		ErrorCode:     errcode.OK,
		ObjectKey:     objectName,
	}
	if err := publisher.Publish(ctx, msg); err != nil {
		// 对象已写入，通知失败不触发重试。
		log.Warn("publish archive notification failed", slog.Any("error", err))
	}

	log.Info("resume archive task completed", slog.String("object_key", objectName))
	return nil
}

func isFinalAsynqAttempt(ctx context.Context) bool {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return false
	}
	return retryCount >= maxRetry
}
