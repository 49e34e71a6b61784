package core

import "github.com/rushteam/shoprec/pkg/utils"

// LabelTiers 是记录已执行召回层级的请求级 Label key。
const LabelTiers = "tiers"

// RecommendContext 承载客户/请求信息，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	CustomerID string

	// Customer 是强类型客户画像（由 CustomerDirectory 查询得到）
	Customer *CustomerProfile

	// Labels 是请求级标签，用于 explain / 观测，例如记录执行过的层级
	Labels map[string]utils.Label
}

// NewRecommendContext 基于客户画像创建请求上下文。
func NewRecommendContext(profile *CustomerProfile) *RecommendContext {
	rctx := &RecommendContext{
		Customer: profile,
		Labels:   make(map[string]utils.Label),
	}
	if profile != nil {
		rctx.CustomerID = profile.CustomerID
	}
	return rctx
}

// PutLabel 写入请求级 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}

// Tiers 返回按执行顺序排列的层级名称。
func (rctx *RecommendContext) Tiers() []string {
	lbl, ok := rctx.GetLabel(LabelTiers)
	if !ok {
		return nil
	}
	return utils.SplitLabelValue(lbl)
}
