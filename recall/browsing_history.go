package recall

import (
	"context"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
)

// BrowsingHistory 是第二层召回：取浏览过的类目下的全部商品，
// 若其中有推荐概率则按概率稳定降序，然后逐个追加直到 Limit。
type BrowsingHistory struct {
	Catalog core.Catalog

	// Limit 结果集上限，<= 0 时取 10
	Limit int
}

func (n *BrowsingHistory) Name() string        { return "recall.browsing_history" }
func (n *BrowsingHistory) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *BrowsingHistory) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Product,
) ([]*core.Product, error) {
	limit := limitOr(n.Limit)
	if rctx == nil || !rctx.Customer.HasBrowsingHistory() || full(items, limit) || n.Catalog == nil {
		return items, nil
	}

	candidates := n.Catalog.ProductsByCategories(rctx.Customer.BrowsingHistory)
	core.SortByProbability(candidates)

	markTier(rctx, TierBrowsingHistory)
	return appendUnique(items, candidates, limit), nil
}
