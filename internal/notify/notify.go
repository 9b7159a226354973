package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// 推送给前端的统一消息协议（通过 Redis Pub/Sub 转发到 WebSocket）。
// 字段名与前端解析保持一致。
const (
	KindScore    = "score"
	KindAnalysis = "analysis"
	KindArchive  = "archive"

	StatusCompleted = "completed"
	StatusError     = "error"
)

// Message 是一条通知。
type Message struct {
	Kind          string `json:"kind"`
	Status        string `json:"status"`
	ResumeID      string `json:"resume_id"`
	CorrelationID string `json:"correlation_id,omitempty"`
	ErrorCode     int    `json:"error_code"`
	ErrorMessage  string `json:"error_message"`
	Score         *int   `json:"score,omitempty"`
	ObjectKey     string `json:"object_key,omitempty"`
	Payload       any    `json:"payload,omitempty"`
}

// Channel 返回某个存储键对应的通知频道。
func Channel(storeKey string) string {
	return "resume_notify:" + storeKey
}

// Client 是发布所需的 Redis 能力，*redis.Client 满足该接口。
type Client interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Publisher 将消息发布到固定频道。
type Publisher struct {
	client  Client
	channel string
}

// NewPublisher 构造发布器。
func NewPublisher(client Client, storeKey string) *Publisher {
	return &Publisher{client: client, channel: Channel(storeKey)}
}

// Publish 序列化并发布消息。
func (p *Publisher) Publish(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("publish redis notification to %q: %w", p.channel, err)
	}
	return nil
}
