// Package service 组合推荐缓存、客户查询与推荐引擎，对外提供 GetOrCompute。
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/rushteam/shoprec/cache"
	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pkg/logger"
	"github.com/rushteam/shoprec/pkg/metrics"
)

// Engine 是推荐引擎的最小接口，由 recall.Engine 实现。
type Engine interface {
	Run(ctx context.Context, rctx *core.RecommendContext) ([]*core.Product, error)
}

// Result 是 GetOrCompute / Refresh 的返回值。
type Result struct {
	CustomerID  string
	Products    []*core.Product
	FromCache   bool
	GeneratedAt time.Time

	// Tiers 是本次计算执行过的层级；命中缓存时为空
	Tiers []string
}

// RecommendationService 实现 cache-aside：先查缓存，未命中时查询客户、计算推荐并写回缓存。
//
// 同一客户的并发未命中会被合并为一次计算，每个调用方拿到各自的结果切片；不同客户之间没有顺序保证。
// 存储与客户查询失败直接返回给调用方，不做重试。
type RecommendationService struct {
	cache     *cache.RecommendationCache
	customers core.CustomerDirectory
	engine    Engine

	logger  *zap.Logger
	metrics *metrics.Metrics

	group singleflight.Group
}

type Option func(*RecommendationService)

func WithLogger(l *zap.Logger) Option {
	return func(s *RecommendationService) { s.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *RecommendationService) { s.metrics = m }
}

func NewRecommendationService(
	c *cache.RecommendationCache,
	customers core.CustomerDirectory,
	engine Engine,
	opts ...Option,
) *RecommendationService {
	s := &RecommendationService{
		cache:     c,
		customers: customers,
		engine:    engine,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logger.OrNop(s.logger)
	if s.metrics == nil {
		s.metrics = metrics.New(nil)
	}
	return s
}

// GetOrCompute 返回客户的推荐列表。
// 命中缓存时原样返回存储的列表与生成时间（不调用引擎）；未命中时计算并写回，FromCache=false。
// 缓存数据损坏时返回满足 core.IsCorrupted 的错误，调用方可以用 Refresh 覆盖。
func (s *RecommendationService) GetOrCompute(ctx context.Context, customerID string) (*Result, error) {
	if err := validateCustomerID(customerID); err != nil {
		return nil, err
	}
	log := s.logger.With(zap.String("customer_id", customerID), zap.String("request_id", uuid.NewString()))

	entry, ok, err := s.cache.Get(ctx, customerID)
	if err != nil {
		if core.IsCorrupted(err) {
			s.metrics.CacheLookups.WithLabelValues(metrics.ResultCorrupt).Inc()
		} else {
			s.metrics.CacheLookups.WithLabelValues(metrics.ResultError).Inc()
		}
		log.Error("cache lookup failed", zap.Error(err))
		return nil, fmt.Errorf("get or compute %s: %w", customerID, err)
	}
	if ok {
		s.metrics.CacheLookups.WithLabelValues(metrics.ResultHit).Inc()
		log.Debug("cache hit", zap.Time("generated_at", entry.GeneratedAt))
		return &Result{
			CustomerID:  customerID,
			Products:    entry.Products,
			FromCache:   true,
			GeneratedAt: entry.GeneratedAt,
		}, nil
	}
	s.metrics.CacheLookups.WithLabelValues(metrics.ResultMiss).Inc()

	// 合并后的计算不跟随任一调用方的取消：调用方取消只放弃自己的等待
	flightCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(customerID, func() (interface{}, error) {
		return s.computeOnMiss(flightCtx, customerID, log)
	})
	var r singleflight.Result
	select {
	case <-ctx.Done():
		log.Debug("caller gave up waiting", zap.Error(ctx.Err()))
		return nil, fmt.Errorf("get or compute %s: %w", customerID, ctx.Err())
	case r = <-ch:
	}
	if r.Err != nil {
		return nil, fmt.Errorf("get or compute %s: %w", customerID, r.Err)
	}
	if r.Shared {
		log.Debug("joined in-flight computation")
	}
	res := *r.Val.(*Result)
	res.Products = append(make([]*core.Product, 0, len(res.Products)), res.Products...)
	res.Tiers = append([]string(nil), res.Tiers...)
	return &res, nil
}

// computeOnMiss 在合并的计算内再查一次缓存：上一轮计算可能刚刚写回，此时直接复用。
func (s *RecommendationService) computeOnMiss(ctx context.Context, customerID string, log *zap.Logger) (*Result, error) {
	entry, ok, err := s.cache.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if ok {
		return &Result{
			CustomerID:  customerID,
			Products:    entry.Products,
			FromCache:   true,
			GeneratedAt: entry.GeneratedAt,
		}, nil
	}
	return s.compute(ctx, customerID, log)
}

// Refresh 跳过缓存读取，重新计算并覆盖缓存条目。
func (s *RecommendationService) Refresh(ctx context.Context, customerID string) (*Result, error) {
	if err := validateCustomerID(customerID); err != nil {
		return nil, err
	}
	log := s.logger.With(zap.String("customer_id", customerID), zap.String("request_id", uuid.NewString()))
	res, err := s.compute(ctx, customerID, log)
	if err != nil {
		return nil, fmt.Errorf("refresh %s: %w", customerID, err)
	}
	return res, nil
}

func (s *RecommendationService) compute(ctx context.Context, customerID string, log *zap.Logger) (*Result, error) {
	profile, err := s.customers.Lookup(ctx, customerID)
	if err != nil {
		log.Error("customer lookup failed", zap.Error(err))
		return nil, core.WrapDomainError(core.ModuleCustomer, core.ErrorCodeUnavailable, err, "customer: lookup %s", customerID)
	}
	if profile == nil {
		profile = core.NewUnknownCustomer(customerID)
	}

	start := time.Now()
	rctx := core.NewRecommendContext(profile)
	products, err := s.engine.Run(ctx, rctx)
	if err != nil {
		log.Error("recommendation failed", zap.Error(err))
		return nil, err
	}
	s.metrics.ComputeDuration.Observe(time.Since(start).Seconds())
	s.metrics.ListSize.Observe(float64(len(products)))
	tiers := rctx.Tiers()
	for _, tier := range tiers {
		s.metrics.TierRuns.WithLabelValues(tier).Inc()
	}

	entry, err := s.cache.Put(ctx, customerID, products)
	if err != nil {
		s.metrics.CacheWrites.WithLabelValues("error").Inc()
		log.Error("cache write failed", zap.Error(err))
		return nil, err
	}
	s.metrics.CacheWrites.WithLabelValues("ok").Inc()

	log.Info("recommendations computed",
		zap.Bool("found", profile.Found),
		zap.Strings("tiers", tiers),
		zap.Int("count", len(products)),
	)
	return &Result{
		CustomerID:  customerID,
		Products:    entry.Products,
		FromCache:   false,
		GeneratedAt: entry.GeneratedAt,
		Tiers:       tiers,
	}, nil
}

func validateCustomerID(customerID string) error {
	if strings.TrimSpace(customerID) == "" {
		return core.NewDomainError(core.ModuleService, core.ErrorCodeInvalidInput, "service: customer id is required")
	}
	return nil
}
