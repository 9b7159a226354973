package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypeResumeArchive = "resume:archive"
)

// ArchivePayload 携带需要归档的完整快照，worker 不回读 API 的存储。
type ArchivePayload struct {
	ResumeID      string          `json:"resume_id"`
	StoreKey      string          `json:"store_key"`
	CorrelationID string          `json:"correlation_id"`
	Snapshot      json.RawMessage `json:"snapshot"`
}

// NewArchiveTask 构造一个快照归档任务。
func NewArchiveTask(p ArchivePayload, opts ...asynq.Option) (*asynq.Task, error) {
	if p.ResumeID == "" {
		return nil, fmt.Errorf("archive task: resume id is required")
	}
	if len(p.Snapshot) == 0 {
		return nil, fmt.Errorf("archive task: snapshot is empty")
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeResumeArchive, payload, opts...), nil
}

// ArchivePrefix 返回某份简历的归档对象前缀。
func ArchivePrefix(resumeID string) string {
	return "archives/" + resumeID + "/"
}
