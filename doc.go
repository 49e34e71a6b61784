// Package shoprec 是一个带缓存的商品推荐库。
//
// 设计要点：
// - Pipeline-first: 推荐按层级 Node 串联（购买历史 → 浏览历史 → 热门兜底 → Top-N 截断）
// - Catalog 只读: 目录索引构建一次，之后无锁并发读取
// - Cache-aside: 先查缓存，未命中时计算并写回；空列表与未命中严格区分
package shoprec

import "github.com/rushteam/shoprec/pipeline"

// 轻量 facade：便于用户直接 import "shoprec" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall = pipeline.KindRecall
	KindReRank = pipeline.KindReRank
)
