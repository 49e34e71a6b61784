package core

import "sort"

// Product 是商品目录中的一条记录，加载后不可变。
//
// 可选字段：
//   - Rating / RecommendationProbability 为 nil 表示该记录没有此字段
//   - RelatedSubcategories 为 nil 表示该记录没有相关子类目字段（空切片表示字段存在但为空）
//
// JSON 中 related_subcategories 不带 omitempty：null 与 [] 需要区分，缓存编解码才能无损。
type Product struct {
	ID          string  `json:"id" yaml:"id" validate:"required"`
	Category    string  `json:"category" yaml:"category" validate:"required"`
	Subcategory string  `json:"subcategory" yaml:"subcategory" validate:"required"`
	Brand       string  `json:"brand" yaml:"brand"`
	Price       float64 `json:"price" yaml:"price" validate:"gte=0"`

	Rating                    *float64 `json:"rating,omitempty" yaml:"rating,omitempty" validate:"omitempty,gte=0"`
	RecommendationProbability *float64 `json:"recommendation_probability,omitempty" yaml:"recommendation_probability,omitempty" validate:"omitempty,gte=0,lte=1"`

	RelatedSubcategories []string `json:"related_subcategories" yaml:"related_subcategories,omitempty"`
}

func (p *Product) HasProbability() bool { return p != nil && p.RecommendationProbability != nil }
func (p *Product) HasRating() bool      { return p != nil && p.Rating != nil }

func (p *Product) HasRelatedSubcategories() bool {
	return p != nil && p.RelatedSubcategories != nil
}

// Probability 返回推荐概率，字段缺失时按 0 处理。
func (p *Product) Probability() float64 {
	if !p.HasProbability() {
		return 0
	}
	return *p.RecommendationProbability
}

// RatingValue 返回评分，字段缺失时按 0 处理。
func (p *Product) RatingValue() float64 {
	if !p.HasRating() {
		return 0
	}
	return *p.Rating
}

// ListsRelated 判断 name 是否出现在相关子类目列表中。
func (p *Product) ListsRelated(name string) bool {
	if p == nil {
		return false
	}
	for _, s := range p.RelatedSubcategories {
		if s == name {
			return true
		}
	}
	return false
}

// Equal 是结构相等：所有字段（含可选字段的有无）完全一致。
func (p *Product) Equal(o *Product) bool {
	if p == nil || o == nil {
		return p == o
	}
	if p.ID != o.ID || p.Category != o.Category || p.Subcategory != o.Subcategory ||
		p.Brand != o.Brand || p.Price != o.Price {
		return false
	}
	if !equalOptional(p.Rating, o.Rating) || !equalOptional(p.RecommendationProbability, o.RecommendationProbability) {
		return false
	}
	if (p.RelatedSubcategories == nil) != (o.RelatedSubcategories == nil) {
		return false
	}
	if len(p.RelatedSubcategories) != len(o.RelatedSubcategories) {
		return false
	}
	for i := range p.RelatedSubcategories {
		if p.RelatedSubcategories[i] != o.RelatedSubcategories[i] {
			return false
		}
	}
	return true
}

// Same 是去重使用的身份判定：
//   - 两条记录都有商品 ID 时，按 ID 判定
//   - 否则退化为结构相等
func (p *Product) Same(o *Product) bool {
	if p == nil || o == nil {
		return p == o
	}
	if p.ID != "" && o.ID != "" {
		return p.ID == o.ID
	}
	return p.Equal(o)
}

func equalOptional(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Float 返回 v 的指针，便于构造可选字段。
func Float(v float64) *float64 { return &v }

// ContainsProduct 判断 list 中是否已存在与 p 相同（Same）的商品。
// 结果集最多 10 条，线性扫描即可。
func ContainsProduct(list []*Product, p *Product) bool {
	for _, it := range list {
		if it.Same(p) {
			return true
		}
	}
	return false
}

// SortByProbability 按推荐概率对 products 原地稳定降序排序，缺失概率按 0 处理。
// 只有至少一个商品带推荐概率时才排序，返回是否发生了排序。
func SortByProbability(products []*Product) bool {
	found := false
	for _, p := range products {
		if p.HasProbability() {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].Probability() > products[j].Probability()
	})
	return true
}
