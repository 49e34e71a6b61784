package filter

import (
	"context"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pkg/dsl"
)

// ExpressionFilter 用 CEL 表达式描述准入条件：表达式为 false 的商品被过滤。
//
// 示例：
//
//	f, err := filter.NewExpressionFilter(`product.price > 0.0 && product.category != "Discontinued"`)
type ExpressionFilter struct {
	expr *dsl.Expr
}

// NewExpressionFilter 编译表达式；语法错误在这里返回。
func NewExpressionFilter(expr string) (*ExpressionFilter, error) {
	e, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExpressionFilter{expr: e}, nil
}

func (f *ExpressionFilter) Name() string {
	return "filter.expression"
}

func (f *ExpressionFilter) ShouldFilter(_ context.Context, product *core.Product) (bool, error) {
	if product == nil {
		return true, nil
	}
	keep, err := f.expr.Evaluate(product)
	if err != nil {
		return false, err
	}
	return !keep, nil
}
