package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

const redisKeyPrefix = "resume_snapshot:"

// RedisPersister 将快照保存在单个 Redis 字符串键中，不设置过期时间。
type RedisPersister struct {
	client redisKV
	key    string
}

// NewRedisPersister 构造基于 Redis 的持久化实现。
func NewRedisPersister(client redisKV, key string) *RedisPersister {
	return &RedisPersister{client: client, key: redisKeyPrefix + key}
}

func (p *RedisPersister) Load(ctx context.Context) ([]byte, error) {
	data, err := p.client.Get(ctx, p.key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, ErrNoSnapshot
	case err != nil:
		return nil, fmt.Errorf("get snapshot %q: %w", p.key, err)
	}
	return data, nil
}

func (p *RedisPersister) Save(ctx context.Context, snapshot Snapshot) error {
	if err := p.client.Set(ctx, p.key, snapshot.Data, 0).Err(); err != nil {
		return fmt.Errorf("set snapshot %q: %w", p.key, err)
	}
	return nil
}
