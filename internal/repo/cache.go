package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mkuznetsov/todo-api/internal/model"
)

// RedisTaskCache хранит сериализованный ответ списка под одним ключом
// на владельца. Любая мутация владельца сбрасывает ключ.
type RedisTaskCache struct {
	rdb *redis.Client
}

func NewRedisTaskCache(rdb *redis.Client) *RedisTaskCache {
	return &RedisTaskCache{rdb: rdb}
}

func listKey(ownerID string) string {
	return "tasks:" + ownerID
}

func (c *RedisTaskCache) GetList(ctx context.Context, ownerID string) (*model.TaskList, error) {
	data, err := c.rdb.Get(ctx, listKey(ownerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var list model.TaskList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *RedisTaskCache) SetList(ctx context.Context, ownerID string, list model.TaskList, ttl time.Duration) error {
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, listKey(ownerID), data, ttl).Err()
}

func (c *RedisTaskCache) Invalidate(ctx context.Context, ownerID string) error {
	return c.rdb.Del(ctx, listKey(ownerID)).Err()
}
