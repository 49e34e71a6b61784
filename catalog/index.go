// Package catalog 提供商品目录索引：按类目/子类目分桶，构建一次后只读。
package catalog

import (
	"sort"

	"go.uber.org/zap"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pkg/logger"
)

// Index 是不可变的商品目录索引，实现 core.Catalog。
//
// 每个商品恰好属于一个类目桶和一个子类目桶；桶在构建后不再变更，
// 因此并发读取无需加锁。所有查询都返回新切片，调用方修改结果不会影响桶。
type Index struct {
	products      []*core.Product
	byCategory    map[string][]*core.Product
	bySubcategory map[string][]*core.Product

	// 目录级字段可用性，构建时计算一次
	allProbability bool
	allRating      bool
	anyRelated     bool
}

// Option 配置 Index 的构建。
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger 设置构建时使用的 logger。
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// NewIndex 根据商品列表构建索引。nil 元素会被跳过。
// 空目录不是错误：记录告警后返回空索引，所有查询返回空结果。
func NewIndex(products []*core.Product, opts ...Option) *Index {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	log := logger.OrNop(o.logger)

	idx := &Index{
		products:      make([]*core.Product, 0, len(products)),
		byCategory:    make(map[string][]*core.Product),
		bySubcategory: make(map[string][]*core.Product),
	}
	for _, p := range products {
		if p == nil {
			continue
		}
		idx.products = append(idx.products, p)
		idx.byCategory[p.Category] = append(idx.byCategory[p.Category], p)
		idx.bySubcategory[p.Subcategory] = append(idx.bySubcategory[p.Subcategory], p)
	}

	if len(idx.products) == 0 {
		log.Warn("catalog is empty, all lookups will return no products")
		return idx
	}

	idx.allProbability, idx.allRating = true, true
	for _, p := range idx.products {
		idx.allProbability = idx.allProbability && p.HasProbability()
		idx.allRating = idx.allRating && p.HasRating()
		idx.anyRelated = idx.anyRelated || p.HasRelatedSubcategories()
	}

	log.Info("catalog index built",
		zap.Int("products", len(idx.products)),
		zap.Int("categories", len(idx.byCategory)),
		zap.Int("subcategories", len(idx.bySubcategory)),
	)
	return idx
}

func (idx *Index) Size() int { return len(idx.products) }

// Categories 返回排序后的类目名称。
func (idx *Index) Categories() []string { return sortedKeys(idx.byCategory) }

// Subcategories 返回排序后的子类目名称。
func (idx *Index) Subcategories() []string { return sortedKeys(idx.bySubcategory) }

// ProductsByCategories 按输入类目顺序拼接每个桶的全部商品。
// 未知类目贡献 0 个商品；不跨类目去重。
func (idx *Index) ProductsByCategories(categories []string) []*core.Product {
	return collect(idx.byCategory, categories)
}

// ProductsBySubcategories 与 ProductsByCategories 对称。
func (idx *Index) ProductsBySubcategories(subcategories []string) []*core.Product {
	return collect(idx.bySubcategory, subcategories)
}

// TopProducts 返回最多 n 个商品：
//   - 所有商品都有推荐概率时，按推荐概率降序
//   - 否则所有商品都有评分时，按评分降序
//   - 否则保持目录顺序
//
// 排序稳定，相同分数保持目录顺序。
func (idx *Index) TopProducts(n int) []*core.Product {
	if n <= 0 || len(idx.products) == 0 {
		return []*core.Product{}
	}
	out := make([]*core.Product, len(idx.products))
	copy(out, idx.products)

	switch {
	case idx.allProbability:
		core.SortByProbability(out)
	case idx.allRating:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].RatingValue() > out[j].RatingValue()
		})
	}
	return truncate(out, n)
}

// SimilarProducts 返回与 subcategory 相似的最多 n 个商品：
//  1. 先取该子类目桶内的全部商品（目录顺序）
//  2. 不足 n 个且目录存在相关子类目字段时，扫描目录，追加在相关子类目中列出 subcategory 的商品（跳过已选）
//  3. 若已选商品中至少一个带推荐概率，按推荐概率稳定降序（缺失按 0）
//  4. 截断到 n
func (idx *Index) SimilarProducts(subcategory string, n int) []*core.Product {
	if n <= 0 {
		return []*core.Product{}
	}
	bucket := idx.bySubcategory[subcategory]
	out := make([]*core.Product, len(bucket), max(len(bucket), n))
	copy(out, bucket)

	if len(out) < n && idx.anyRelated {
		for _, p := range idx.products {
			if len(out) >= n {
				break
			}
			if p.ListsRelated(subcategory) && !containsPtr(out, p) {
				out = append(out, p)
			}
		}
	}

	core.SortByProbability(out)
	return truncate(out, n)
}

func collect(buckets map[string][]*core.Product, names []string) []*core.Product {
	out := make([]*core.Product, 0)
	for _, name := range names {
		out = append(out, buckets[name]...)
	}
	return out
}

// containsPtr 按记录本身判断是否已选：同一条目录记录只会被选一次。
func containsPtr(list []*core.Product, p *core.Product) bool {
	for _, it := range list {
		if it == p {
			return true
		}
	}
	return false
}

func truncate(products []*core.Product, n int) []*core.Product {
	if len(products) > n {
		return products[:n]
	}
	return products
}

func sortedKeys(m map[string][]*core.Product) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var _ core.Catalog = (*Index)(nil)
