package recall

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/logger"
	"github.com/rushteam/shoprec/rerank"
)

const (
	defaultLimit          = 10
	defaultPerSubcategory = 3
)

func limitOr(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	return limit
}

// Engine 是推荐引擎：按层级（购买历史 -> 浏览历史 -> 热门兜底）执行 Pipeline，
// 结果有序、去重、最多 Limit 条。
//
// Engine 对目录只读，不持有请求状态，可并发使用。
type Engine struct {
	pipeline *pipeline.Pipeline
	logger   *zap.Logger
	limit    int
}

// EngineOption 配置 Engine。
type EngineOption func(*engineOptions)

type engineOptions struct {
	config        core.EngineConfig
	logger        *zap.Logger
	maxConcurrent int
}

// WithEngineConfig 覆盖默认的条数配置。
func WithEngineConfig(cfg core.EngineConfig) EngineOption {
	return func(o *engineOptions) { o.config = cfg }
}

func WithLogger(l *zap.Logger) EngineOption {
	return func(o *engineOptions) { o.logger = l }
}

// WithMaxConcurrent 限制购买历史层的并发查询数。
func WithMaxConcurrent(n int) EngineOption {
	return func(o *engineOptions) { o.maxConcurrent = n }
}

// NewEngine 基于目录构建默认的三层 Pipeline，末尾用 rerank.TopNNode 截断。
func NewEngine(catalog core.Catalog, opts ...EngineOption) *Engine {
	o := &engineOptions{config: &core.DefaultEngineConfig{}}
	for _, opt := range opts {
		opt(o)
	}
	limit := limitOr(o.config.DefaultLimit())

	p := &pipeline.Pipeline{
		Nodes: []pipeline.Node{
			&PurchaseHistory{
				Catalog:        catalog,
				PerSubcategory: o.config.DefaultPerSubcategory(),
				Limit:          limit,
				MaxConcurrent:  o.maxConcurrent,
				Logger:         o.logger,
			},
			&BrowsingHistory{Catalog: catalog, Limit: limit},
			&TopProducts{Catalog: catalog, N: o.config.DefaultTopN(), Limit: limit},
			&rerank.TopNNode{N: limit},
		},
	}
	return &Engine{pipeline: p, logger: logger.OrNop(o.logger), limit: limit}
}

// NewEngineFromPipeline 使用外部（例如配置文件）组装的 Pipeline。
// 末尾总会追加一个 Limit 截断，保证结果条数上限。
func NewEngineFromPipeline(p *pipeline.Pipeline, limit int, l *zap.Logger) *Engine {
	limit = limitOr(limit)
	nodes := make([]pipeline.Node, 0, len(p.Nodes)+1)
	nodes = append(nodes, p.Nodes...)
	nodes = append(nodes, &rerank.TopNNode{N: limit})
	return &Engine{
		pipeline: &pipeline.Pipeline{Nodes: nodes},
		logger:   logger.OrNop(l),
		limit:    limit,
	}
}

// Limit 返回结果条数上限。
func (e *Engine) Limit() int { return e.limit }

// Recommend 为客户画像生成推荐列表。
// profile 为 nil 时按未找到的客户处理；空目录返回空列表而不是错误。
func (e *Engine) Recommend(ctx context.Context, profile *core.CustomerProfile) ([]*core.Product, error) {
	if profile == nil {
		profile = core.NewUnknownCustomer("")
	}
	return e.Run(ctx, core.NewRecommendContext(profile))
}

// Run 在给定的请求上下文上执行 Pipeline，执行过的层级记录在 rctx 的 tiers Label 上。
func (e *Engine) Run(ctx context.Context, rctx *core.RecommendContext) ([]*core.Product, error) {
	items, err := e.pipeline.Run(ctx, rctx, make([]*core.Product, 0, e.limit))
	if err != nil {
		return nil, fmt.Errorf("recommend for %q: %w", rctx.CustomerID, err)
	}
	if items == nil {
		items = []*core.Product{}
	}

	e.logger.Debug("recommendations computed",
		zap.String("customer_id", rctx.CustomerID),
		zap.Strings("tiers", rctx.Tiers()),
		zap.Int("count", len(items)),
	)
	return items, nil
}
