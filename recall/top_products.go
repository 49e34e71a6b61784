package recall

import (
	"context"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
)

// TopProducts 是兜底层：取目录热门商品补足到 Limit。
type TopProducts struct {
	Catalog core.Catalog

	// N 向目录请求的热门商品数，<= 0 时取 10
	N int

	// Limit 结果集上限，<= 0 时取 10
	Limit int
}

func (n *TopProducts) Name() string        { return "recall.top_products" }
func (n *TopProducts) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *TopProducts) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Product,
) ([]*core.Product, error) {
	limit := limitOr(n.Limit)
	if full(items, limit) || n.Catalog == nil {
		return items, nil
	}
	topN := n.N
	if topN <= 0 {
		topN = defaultLimit
	}

	markTier(rctx, TierTopProducts)
	return appendUnique(items, n.Catalog.TopProducts(topN), limit), nil
}
