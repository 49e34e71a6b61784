package recall

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
)

const (
	TierPurchaseHistory = "purchase_history"
	TierBrowsingHistory = "browsing_history"
	TierTopProducts     = "top_products"
)

// PurchaseHistory 是第一层召回：对购买历史中的每个子类目取相似商品。
//
// 仅当客户存在且购买历史非空时执行。各子类目的查询并发执行，
// 结果按购买历史顺序合并去重；本层不按 Limit 截断，最终条数由 rerank.TopNNode 保证。
type PurchaseHistory struct {
	Catalog core.Catalog

	// PerSubcategory 每个子类目取的相似商品数，<= 0 时取 3
	PerSubcategory int

	// Limit 结果集已达到该条数时跳过本层，<= 0 时取 10
	Limit int

	MaxConcurrent int
	Timeout       time.Duration
	Logger        *zap.Logger
}

func (n *PurchaseHistory) Name() string        { return "recall.purchase_history" }
func (n *PurchaseHistory) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *PurchaseHistory) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Product,
) ([]*core.Product, error) {
	if rctx == nil || !rctx.Customer.HasPurchaseHistory() || full(items, limitOr(n.Limit)) {
		return items, nil
	}
	per := n.PerSubcategory
	if per <= 0 {
		per = defaultPerSubcategory
	}

	history := rctx.Customer.PurchaseHistory
	sources := make([]Source, 0, len(history))
	for _, sub := range history {
		sources = append(sources, &SimilarSource{Catalog: n.Catalog, Subcategory: sub, N: per})
	}
	fan := &Fanout{
		Sources:       sources,
		MaxConcurrent: n.MaxConcurrent,
		Timeout:       n.Timeout,
		Logger:        n.Logger,
	}
	results, err := fan.Collect(ctx, rctx)
	if err != nil {
		return nil, err
	}

	markTier(rctx, TierPurchaseHistory)
	for _, similar := range results {
		items = appendUnique(items, similar, 0)
	}
	return items, nil
}
