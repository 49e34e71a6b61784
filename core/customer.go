package core

import "context"

// SegmentNew 是未找到的客户默认使用的客群。
const SegmentNew = "new"

// CustomerProfile 是单次请求内使用的客户画像，由 CustomerDirectory 每次新建，核心逻辑不持久化它。
//
// 引擎只消费：
//   - Found
//   - BrowsingHistory（浏览过的类目名，有序）
//   - PurchaseHistory（购买过的子类目名，有序）
//
// 人口属性字段仅透传，留给后续排序使用。
type CustomerProfile struct {
	CustomerID      string   `json:"customer_id" yaml:"customer_id" validate:"required"`
	Found           bool     `json:"found" yaml:"found"`
	BrowsingHistory []string `json:"browsing_history" yaml:"browsing_history"`
	PurchaseHistory []string `json:"purchase_history" yaml:"purchase_history"`
	Segment         string   `json:"segment" yaml:"segment"`

	Age           int     `json:"age,omitempty" yaml:"age,omitempty"`
	Gender        string  `json:"gender,omitempty" yaml:"gender,omitempty"`
	Location      string  `json:"location,omitempty" yaml:"location,omitempty"`
	AvgOrderValue float64 `json:"avg_order_value,omitempty" yaml:"avg_order_value,omitempty"`
	Holiday       bool    `json:"holiday,omitempty" yaml:"holiday,omitempty"`
	Season        string  `json:"season,omitempty" yaml:"season,omitempty"`
}

// NewUnknownCustomer 构建“未找到”的客户画像：Found=false、历史为空、客群为 new。
func NewUnknownCustomer(customerID string) *CustomerProfile {
	return &CustomerProfile{
		CustomerID:      customerID,
		Found:           false,
		BrowsingHistory: []string{},
		PurchaseHistory: []string{},
		Segment:         SegmentNew,
	}
}

// HasPurchaseHistory 只有找到的客户才认为有购买历史。
func (c *CustomerProfile) HasPurchaseHistory() bool {
	return c != nil && c.Found && len(c.PurchaseHistory) > 0
}

func (c *CustomerProfile) HasBrowsingHistory() bool {
	return c != nil && len(c.BrowsingHistory) > 0
}

// CustomerDirectory 是客户查询的领域接口（外部协作方）。
//
// 未找到不是错误：返回 Found=false 的画像；只有基础设施故障才返回 error。
type CustomerDirectory interface {
	Lookup(ctx context.Context, customerID string) (*CustomerProfile, error)
}
