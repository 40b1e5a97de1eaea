package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("キャッシュが見つかりません")

// NameCache はユーザーの表示名をキャッシュする
type NameCache struct {
	client *redis.Client
}

func NewNameCache(client *redis.Client) *NameCache {
	return &NameCache{client: client}
}

// GetName は表示名をキャッシュから取得する
func (c *NameCache) GetName(ctx context.Context, userID string) (string, error) {
	val, err := c.client.Get(ctx, c.key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCacheMiss
		}
		return "", fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	return val, nil
}

// SetName は表示名をキャッシュに保存する
func (c *NameCache) SetName(ctx context.Context, userID, name string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(userID), name, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

func (c *NameCache) key(userID string) string {
	return fmt.Sprintf("users:name:%s", userID)
}
