package rerank

import (
	"context"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
)

// Diversity 限制同一子类目（或类目）在结果中出现的次数，保留先出现的商品。
// 不在默认 Pipeline 中，可通过配置 rerank.diversity 启用。
type Diversity struct {
	// Field 取 "subcategory"（默认）或 "category"
	Field string

	// MaxPerGroup 每组最多保留的条数，<= 0 时取 1
	MaxPerGroup int
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Product,
) ([]*core.Product, error) {
	if len(items) == 0 {
		return items, nil
	}
	maxPer := n.MaxPerGroup
	if maxPer <= 0 {
		maxPer = 1
	}

	seen := make(map[string]int, len(items))
	out := make([]*core.Product, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		group := it.Subcategory
		if n.Field == "category" {
			group = it.Category
		}
		if group == "" {
			out = append(out, it)
			continue
		}
		if seen[group] >= maxPer {
			continue
		}
		seen[group]++
		out = append(out, it)
	}
	return out, nil
}
