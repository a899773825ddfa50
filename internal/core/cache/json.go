package cache

import (
	"context"
	"encoding/json"
	"time"
)

// tombstone 是 JSON null，读到时按“无数据”处理
var tombstone = []byte("null")

// GetOrLoadJSON 缓存 JSON 序列化后的 *T。load 返回 (nil, nil) 时不写缓存（避免自增 ID 的负缓存）。
func GetOrLoadJSON[T any](
	c *Cache,
	ctx context.Context,
	key string,
	ttl time.Duration,
	load func(ctx context.Context) (*T, error),
) (*T, error) {
	b, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, e := load(ctx)
		if e != nil {
			return nil, e
		}
		if v == nil {
			return nil, nil
		}
		return json.Marshal(v)
	})
	if err != nil {
		return nil, err
	}
	if b == nil || string(b) == string(tombstone) {
		return nil, nil
	}
	var out T
	if e := json.Unmarshal(b, &out); e != nil {
		return nil, e
	}
	return &out, nil
}

// SetJSON 覆盖写入 v；v 为 nil 时写墓碑，后续读取返回 nil 且不会回源
func SetJSON[T any](c *Cache, ctx context.Context, key string, ttl time.Duration, v *T) error {
	b := tombstone
	if v != nil {
		var err error
		if b, err = json.Marshal(v); err != nil {
			return err
		}
	}
	return c.Set(ctx, key, b, ttl)
}
