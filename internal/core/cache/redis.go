package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const defaultLoadTimeout = 5 * time.Second

type Cache struct {
	RDB    *redis.Client
	Prefix string
	// LoadTimeout 限制一次合并回源的耗时，0 用默认 5s
	LoadTimeout time.Duration

	sf singleflight.Group
}

func New(addr, pass string, db int) *Cache {
	return &Cache{
		RDB: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}),
	}
}

func (c *Cache) key(k string) string { return c.Prefix + k }

// GetOrLoad 先读缓存，未命中时经 singleflight 合并回源并回写。
// load 返回 nil 切片表示无数据，不写缓存。
// 回源使用脱离调用方取消的 ctx，避免首个请求被取消时连累同批等待者。
// 回写用 SETNX：回源期间写入的 Set 结果（如下架墓碑）不会被旧数据覆盖。
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	if b, err := c.RDB.Get(ctx, c.key(key)).Bytes(); err == nil {
		return b, nil
	}
	v, err, _ := c.sf.Do(key, func() (any, error) {
		timeout := c.LoadTimeout
		if timeout <= 0 {
			timeout = defaultLoadTimeout
		}
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		b, e := load(loadCtx)
		if e != nil {
			return nil, e
		}
		if b == nil {
			return []byte(nil), nil
		}
		// 写缓存失败不影响本次结果
		_ = c.RDB.SetNX(loadCtx, c.key(key), b, ttl).Err()
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Set 无条件覆盖，写路径用它刷新或写墓碑
func (c *Cache) Set(ctx context.Context, key string, b []byte, ttl time.Duration) error {
	return c.RDB.Set(ctx, c.key(key), b, ttl).Err()
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	return c.RDB.Del(ctx, full...).Err()
}

func (c *Cache) Ping(ctx context.Context) error { return c.RDB.Ping(ctx).Err() }

func (c *Cache) Close() error { return c.RDB.Close() }
