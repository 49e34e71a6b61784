package service

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/rushteam/shoprec/cache"
	"github.com/rushteam/shoprec/catalog"
	"github.com/rushteam/shoprec/config"
	_ "github.com/rushteam/shoprec/config/builders"
	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/customer"
	"github.com/rushteam/shoprec/filter"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/logger"
	"github.com/rushteam/shoprec/pkg/metrics"
	"github.com/rushteam/shoprec/recall"
	"github.com/rushteam/shoprec/store"
)

// App 是按配置组装好的服务及其资源，Close 释放存储连接。
type App struct {
	Service   *RecommendationService
	Catalog   *catalog.Index
	Customers *customer.MemoryDirectory
	Store     core.Store
}

func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}

// Build 按配置加载目录与客户数据、构建引擎、打开存储并组装 RecommendationService。
// reg 为 nil 时指标不注册。
func Build(ctx context.Context, s *config.Settings, l *zap.Logger, reg prometheus.Registerer) (*App, error) {
	log := logger.OrNop(l)

	filters, err := catalogFilters(s.Catalog)
	if err != nil {
		return nil, err
	}
	idx := catalog.NewLoader(filters, log).BuildIndex(ctx, s.Catalog.Paths...)
	customers := customer.Load(s.Customers.Path, log)

	engine, err := buildEngine(s.Engine, idx, log)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, s.Store, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	svc := NewRecommendationService(
		cache.New(st, cache.WithKeyPrefix(s.Cache.KeyPrefix)),
		customers,
		engine,
		WithLogger(log),
		WithMetrics(metrics.New(reg)),
	)
	return &App{Service: svc, Catalog: idx, Customers: customers, Store: st}, nil
}

func catalogFilters(c config.CatalogSettings) ([]filter.Filter, error) {
	var filters []filter.Filter
	if len(c.Blacklist) > 0 {
		filters = append(filters, filter.NewBlacklistFilter(c.Blacklist))
	}
	if c.Filter != "" {
		f, err := filter.NewExpressionFilter(c.Filter)
		if err != nil {
			return nil, fmt.Errorf("catalog filter: %w", err)
		}
		filters = append(filters, f)
	}
	return filters, nil
}

func buildEngine(e config.EngineSettings, idx core.Catalog, log *zap.Logger) (*recall.Engine, error) {
	if e.Pipeline == "" {
		return recall.NewEngine(idx,
			recall.WithEngineConfig(e),
			recall.WithMaxConcurrent(e.MaxConcurrent),
			recall.WithLogger(log),
		), nil
	}

	cfg, err := pipeline.LoadFile(e.Pipeline)
	if err != nil {
		return nil, fmt.Errorf("load pipeline %s: %w", e.Pipeline, err)
	}
	if err := config.ValidatePipelineConfig(cfg); err != nil {
		return nil, err
	}
	p, err := cfg.BuildPipeline(config.DefaultFactory(), idx)
	if err != nil {
		return nil, err
	}
	log.Info("pipeline loaded", zap.String("name", cfg.Pipeline.Name), zap.Int("nodes", len(p.Nodes)))
	return recall.NewEngineFromPipeline(p, e.Limit, log), nil
}
