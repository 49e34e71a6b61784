package core

// Catalog 是商品目录索引的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由 catalog.Index 实现
//   - 构建后只读，可被任意多个请求并发读取，无需加锁
//   - 未知的类目/子类目不是错误，只是贡献 0 个商品
type Catalog interface {
	// Size 返回目录中的商品数量
	Size() int

	// ProductsByCategories 按输入顺序拼接每个类目桶的全部商品（不跨类目去重）
	ProductsByCategories(categories []string) []*Product

	// ProductsBySubcategories 按输入顺序拼接每个子类目桶的全部商品
	ProductsBySubcategories(subcategories []string) []*Product

	// TopProducts 返回最多 n 个热门商品（推荐概率 > 评分 > 目录顺序）
	TopProducts(n int) []*Product

	// SimilarProducts 返回与子类目相似的最多 n 个商品
	SimilarProducts(subcategory string, n int) []*Product
}
