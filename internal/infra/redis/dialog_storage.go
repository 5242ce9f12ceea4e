package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"telegram-dialog-state/internal/domain/ports/repository"
	"telegram-dialog-state/internal/infra/metrics"

	"github.com/go-redis/redis/v8"
)

var _ repository.DialogStorage = (*DialogStorage)(nil)

// DialogStorage persists dialog records as one JSON document per
// composite key. It implements no schema knowledge: the mapping goes
// in and comes out verbatim, with a missing key reported as the empty
// mapping (the tombstone convention).
type DialogStorage struct {
	client RedisClient
	prefix string
	ttl    time.Duration
}

// NewDialogStorage wraps a redis client. prefix namespaces all keys;
// ttl of 0 keeps records until overwritten.
func NewDialogStorage(client RedisClient, prefix string, ttl time.Duration) *DialogStorage {
	return &DialogStorage{client: client, prefix: prefix, ttl: ttl}
}

func (s *DialogStorage) storageKey(key repository.StorageKey) string {
	return s.prefix + ":" + key.String()
}

func (s *DialogStorage) GetData(ctx context.Context, key repository.StorageKey) (map[string]any, error) {
	raw, err := s.client.Get(ctx, s.storageKey(key))
	if errors.Is(err, redis.Nil) {
		metrics.IncStorageOp("redis", "get", "miss")
		return map[string]any{}, nil
	}
	if err != nil {
		metrics.IncStorageOp("redis", "get", "error")
		return nil, err
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		metrics.IncStorageOp("redis", "get", "error")
		return nil, err
	}
	metrics.IncStorageOp("redis", "get", "ok")
	return data, nil
}

func (s *DialogStorage) SetData(ctx context.Context, key repository.StorageKey, data map[string]any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.storageKey(key), raw, s.ttl); err != nil {
		metrics.IncStorageOp("redis", "set", "error")
		return err
	}
	metrics.IncStorageOp("redis", "set", "ok")
	return nil
}
