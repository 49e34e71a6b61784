// Package dsl 提供基于 CEL 的商品表达式。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/shoprec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("product", cel.MapType(cel.StringType, cel.DynType)),
	)
}

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Expr 是编译后的商品表达式，编译一次后可并发 Evaluate。
//
// 表达式语法（CEL 标准语法），变量 product 包含：
//   - id / category / subcategory / brand (string)
//   - price (double)
//   - rating / recommendation_probability (double，字段缺失时不存在，用 has() 检查)
//   - related_subcategories (list<string>)
//
// 示例：
//   - `product.price > 0.0`
//   - `product.category != "Discontinued"`
//   - `!has(product.rating) || product.rating >= 2.0`
//   - `"Shoes" in product.related_subcategories`
type Expr struct {
	source string
	prg    cel.Program
}

// Compile 编译表达式；表达式必须返回 bool。
func Compile(expr string) (*Expr, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("expression must return bool, got %v", out)
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Expr{source: expr, prg: prg}, nil
}

func (e *Expr) String() string { return e.source }

// Evaluate 对单个商品求值。
func (e *Expr) Evaluate(p *core.Product) (bool, error) {
	out, _, err := e.prg.Eval(map[string]any{"product": buildInput(p)})
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据；缺失的可选字段不放入 map，便于 has() 判断
func buildInput(p *core.Product) map[string]any {
	related := p.RelatedSubcategories
	if related == nil {
		related = []string{}
	}
	in := map[string]any{
		"id":                    p.ID,
		"category":              p.Category,
		"subcategory":           p.Subcategory,
		"brand":                 p.Brand,
		"price":                 p.Price,
		"related_subcategories": related,
	}
	if p.HasRating() {
		in["rating"] = *p.Rating
	}
	if p.HasProbability() {
		in["recommendation_probability"] = *p.RecommendationProbability
	}
	return in
}
