package recall

import (
	"context"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pkg/utils"
)

// Source 表示一个候选商品来源，可被 Fanout 并发执行。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Product, error)
}

// SimilarSource 把一次 Catalog.SimilarProducts 查询包装成 Source。
type SimilarSource struct {
	Catalog     core.Catalog
	Subcategory string
	N           int
}

func (s *SimilarSource) Name() string { return "similar:" + s.Subcategory }

func (s *SimilarSource) Recall(_ context.Context, _ *core.RecommendContext) ([]*core.Product, error) {
	if s.Catalog == nil {
		return nil, nil
	}
	return s.Catalog.SimilarProducts(s.Subcategory, s.N), nil
}

// appendUnique 把 candidates 中尚未出现（core.Product.Same）的商品追加到 acc。
// limit <= 0 表示不限制条数；否则 acc 达到 limit 即停止。
func appendUnique(acc, candidates []*core.Product, limit int) []*core.Product {
	for _, p := range candidates {
		if limit > 0 && len(acc) >= limit {
			break
		}
		if p == nil || core.ContainsProduct(acc, p) {
			continue
		}
		acc = append(acc, p)
	}
	return acc
}

// markTier 在请求上下文上记录执行过的层级。
func markTier(rctx *core.RecommendContext, tier string) {
	if rctx == nil {
		return
	}
	rctx.PutLabel(core.LabelTiers, utils.Label{Value: tier, Source: "recall"})
}

func full(items []*core.Product, limit int) bool {
	return limit > 0 && len(items) >= limit
}
