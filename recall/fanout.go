package recall

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pkg/logger"
)

// Fanout 并发执行多个 Source，结果按 Sources 顺序返回（与完成顺序无关）。
// 单个 Source 出错或超时只记录日志并贡献空结果，不中断其他 Source。
type Fanout struct {
	Sources       []Source
	Timeout       time.Duration // 每个 Source 的超时时间（0 表示不限制）
	MaxConcurrent int           // 最大并发数（0 表示无限制）
	Logger        *zap.Logger
}

// Collect 返回与 Sources 一一对应的结果切片。
func (f *Fanout) Collect(ctx context.Context, rctx *core.RecommendContext) ([][]*core.Product, error) {
	results := make([][]*core.Product, len(f.Sources))
	if len(f.Sources) == 0 {
		return results, nil
	}
	log := logger.OrNop(f.Logger)

	eg, egCtx := errgroup.WithContext(ctx)
	if f.MaxConcurrent > 0 {
		eg.SetLimit(f.MaxConcurrent)
	}

	for i, src := range f.Sources {
		i, src := i, src
		eg.Go(func() error {
			recallCtx := egCtx
			if f.Timeout > 0 {
				var cancel context.CancelFunc
				recallCtx, cancel = context.WithTimeout(egCtx, f.Timeout)
				defer cancel()
			}

			items, err := src.Recall(recallCtx, rctx)
			if err != nil {
				log.Warn("recall source failed", zap.String("source", src.Name()), zap.Error(err))
				return nil
			}
			results[i] = items
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
