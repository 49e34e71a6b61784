package filter

import (
	"context"

	"github.com/rushteam/shoprec/core"
)

// Filter 是商品准入过滤器的抽象接口，在建立目录索引之前使用。
// 返回 true 表示应该过滤（移除），false 表示保留。
type Filter interface {
	// Name 返回过滤器名称
	Name() string

	// ShouldFilter 判断商品是否应该被过滤
	ShouldFilter(ctx context.Context, product *core.Product) (bool, error)
}
