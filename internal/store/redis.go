package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "briefly"

func NewRedisClient(addr string, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// RedisArea keeps values under briefly:<area>:<userID>:<key>.
type RedisArea struct {
	client *redis.Client
	name   string
}

func NewRedisArea(client *redis.Client, name string) *RedisArea {
	return &RedisArea{client: client, name: name}
}

func (a *RedisArea) Get(ctx context.Context, userID int64, key string) (string, bool, error) {
	value, err := a.client.Get(ctx, a.key(userID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get value: %w", err)
	}

	return value, true, nil
}

func (a *RedisArea) Set(ctx context.Context, userID int64, key string, value string) error {
	if err := a.client.Set(ctx, a.key(userID, key), value, 0).Err(); err != nil {
		return fmt.Errorf("set value: %w", err)
	}

	return nil
}

func (a *RedisArea) Remove(ctx context.Context, userID int64, key string) error {
	if err := a.client.Del(ctx, a.key(userID, key)).Err(); err != nil {
		return fmt.Errorf("remove value: %w", err)
	}

	return nil
}

func (a *RedisArea) key(userID int64, key string) string {
	return fmt.Sprintf("%s:%s:%d:%s", redisKeyPrefix, a.name, userID, key)
}
