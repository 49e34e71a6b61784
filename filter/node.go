package filter

import (
	"context"

	"go.uber.org/zap"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pkg/logger"
)

// Apply 依次用过滤器检查每个商品，任何一个过滤器返回 true 即剔除。
// 过滤器出错时记录日志但不中断流程，该过滤器视为保留。
func Apply(ctx context.Context, products []*core.Product, filters []Filter, l *zap.Logger) []*core.Product {
	if len(filters) == 0 || len(products) == 0 {
		return products
	}
	log := logger.OrNop(l)

	out := make([]*core.Product, 0, len(products))
	for _, p := range products {
		if p == nil {
			continue
		}

		filtered := false
		for _, f := range filters {
			ok, err := f.ShouldFilter(ctx, p)
			if err != nil {
				log.Warn("filter error, keeping product",
					zap.String("filter", f.Name()),
					zap.String("product_id", p.ID),
					zap.Error(err),
				)
				continue
			}
			if ok {
				filtered = true
				log.Debug("product filtered",
					zap.String("filter", f.Name()),
					zap.String("product_id", p.ID),
				)
				break
			}
		}

		if !filtered {
			out = append(out, p)
		}
	}
	return out
}
