package builders

import (
	"time"

	"github.com/rushteam/shoprec/config"
	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/conv"
	"github.com/rushteam/shoprec/recall"
	"github.com/rushteam/shoprec/rerank"
)

func init() {
	config.Register("recall.purchase_history", BuildPurchaseHistoryNode)
	config.Register("recall.browsing_history", BuildBrowsingHistoryNode)
	config.Register("recall.top_products", BuildTopProductsNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("rerank.diversity", BuildDiversityNode)
}

// BuildPurchaseHistoryNode 配置项：per_subcategory、limit、max_concurrent、timeout_ms。
func BuildPurchaseHistoryNode(cfg map[string]interface{}, catalog core.Catalog) (pipeline.Node, error) {
	node := &recall.PurchaseHistory{
		Catalog:        catalog,
		PerSubcategory: conv.ConfigGetInt(cfg, "per_subcategory", 3),
		Limit:          conv.ConfigGetInt(cfg, "limit", 10),
		MaxConcurrent:  conv.ConfigGetInt(cfg, "max_concurrent", 0),
	}
	if ms := conv.ConfigGetInt(cfg, "timeout_ms", 0); ms > 0 {
		node.Timeout = time.Duration(ms) * time.Millisecond
	}
	return node, nil
}

func BuildBrowsingHistoryNode(cfg map[string]interface{}, catalog core.Catalog) (pipeline.Node, error) {
	return &recall.BrowsingHistory{
		Catalog: catalog,
		Limit:   conv.ConfigGetInt(cfg, "limit", 10),
	}, nil
}

func BuildTopProductsNode(cfg map[string]interface{}, catalog core.Catalog) (pipeline.Node, error) {
	return &recall.TopProducts{
		Catalog: catalog,
		N:       conv.ConfigGetInt(cfg, "n", 10),
		Limit:   conv.ConfigGetInt(cfg, "limit", 10),
	}, nil
}

func BuildTopNNode(cfg map[string]interface{}, _ core.Catalog) (pipeline.Node, error) {
	return &rerank.TopNNode{N: conv.ConfigGetInt(cfg, "n", 10)}, nil
}

func BuildDiversityNode(cfg map[string]interface{}, _ core.Catalog) (pipeline.Node, error) {
	return &rerank.Diversity{
		Field:       conv.ConfigGet[string](cfg, "field", "subcategory"),
		MaxPerGroup: conv.ConfigGetInt(cfg, "max_per_group", 1),
	}, nil
}
