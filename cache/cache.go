// Package cache 实现推荐结果缓存（cache-aside）：按客户 ID 保存推荐列表与生成时间。
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/rushteam/shoprec/core"
)

const (
	// DefaultKeyPrefix 是缓存 key 的默认前缀
	DefaultKeyPrefix = "reco:"

	formatVersion = 1
)

// Entry 是一条缓存的推荐结果。
type Entry struct {
	CustomerID  string
	Products    []*core.Product
	GeneratedAt time.Time
}

// envelope 是持久化格式，version 用于以后升级格式。
type envelope struct {
	Version     int             `json:"version"`
	CustomerID  string          `json:"customer_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Products    []*core.Product `json:"products"`
}

// RecommendationCache 把推荐列表保存在任意 core.Store 上。
//
// 不过期、无容量上限、无失效钩子：条目一直保留到被下一次 Put 覆盖。
// 单条目读写的原子性由底层 Store 保证。
type RecommendationCache struct {
	store  core.Store
	prefix string
	now    func() time.Time
}

type Option func(*RecommendationCache)

// WithKeyPrefix 设置 key 前缀，空字符串表示不加前缀。
func WithKeyPrefix(prefix string) Option {
	return func(c *RecommendationCache) { c.prefix = prefix }
}

// WithClock 注入时钟，测试使用。
func WithClock(now func() time.Time) Option {
	return func(c *RecommendationCache) { c.now = now }
}

func New(store core.Store, opts ...Option) *RecommendationCache {
	c := &RecommendationCache{
		store:  store,
		prefix: DefaultKeyPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RecommendationCache) key(customerID string) string {
	return c.prefix + customerID
}

// Get 读取客户的缓存推荐。
//
//   - 未命中：返回 (Entry{}, false, nil)
//   - 命中：返回存储的列表与生成时间；存储的空列表也是命中
//   - 数据无法解码：返回满足 core.IsCorrupted 的错误，与未命中区分
//   - 存储故障：返回包装后的错误
func (c *RecommendationCache) Get(ctx context.Context, customerID string) (Entry, bool, error) {
	data, err := c.store.Get(ctx, c.key(customerID))
	if core.IsStoreNotFound(err) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, core.WrapDomainError(core.ModuleCache, core.ErrorCodeUnavailable, err,
			"cache: get %s from %s", customerID, c.store.Name())
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Entry{}, false, core.WrapDomainError(core.ModuleCache, core.ErrorCodeCorrupted, err,
			"cache: decode entry for %s", customerID)
	}
	if env.Version != formatVersion {
		return Entry{}, false, core.NewDomainError(core.ModuleCache, core.ErrorCodeCorrupted,
			fmt.Sprintf("cache: entry for %s has unsupported version %d", customerID, env.Version))
	}

	products := env.Products
	if products == nil {
		products = []*core.Product{}
	}
	return Entry{
		CustomerID:  customerID,
		Products:    products,
		GeneratedAt: env.GeneratedAt,
	}, true, nil
}

// Put 无条件写入（或整体覆盖）客户的推荐列表，并用当前时间标记生成时间。
func (c *RecommendationCache) Put(ctx context.Context, customerID string, products []*core.Product) (Entry, error) {
	if products == nil {
		products = []*core.Product{}
	}
	entry := Entry{
		CustomerID:  customerID,
		Products:    products,
		GeneratedAt: c.now().UTC(),
	}

	data, err := json.Marshal(envelope{
		Version:     formatVersion,
		CustomerID:  customerID,
		GeneratedAt: entry.GeneratedAt,
		Products:    products,
	})
	if err != nil {
		return Entry{}, core.WrapDomainError(core.ModuleCache, core.ErrorCodeInternalError, err,
			"cache: encode entry for %s", customerID)
	}
	if err := c.store.Set(ctx, c.key(customerID), data); err != nil {
		return Entry{}, core.WrapDomainError(core.ModuleCache, core.ErrorCodeUnavailable, err,
			"cache: put %s to %s", customerID, c.store.Name())
	}
	return entry, nil
}
