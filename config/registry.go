package config

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
)

// 推荐链路的节点类型在 config/builders 的 init 中注册：
// 三个召回层级（recall.purchase_history、recall.browsing_history、recall.top_products）
// 与重排节点（rerank.topn、rerank.diversity）。
// 配置驱动的入口需要 import _ "github.com/rushteam/shoprec/config/builders"。

// NodeBuilder 把一段节点配置绑定到商品目录上，生成可执行的 Node。
type NodeBuilder = pipeline.NodeBuilder

var nodeTypes = struct {
	sync.RWMutex
	m map[string]NodeBuilder
}{m: make(map[string]NodeBuilder)}

// Register 注册一种节点类型。类型名为空、builder 为 nil 或重复注册都会 panic，
// 与 database/sql 的驱动注册一致，只应在 init 中调用。
func Register(typeName string, builder NodeBuilder) {
	if typeName == "" || builder == nil {
		panic("config: Register called with empty node type or nil builder")
	}
	nodeTypes.Lock()
	defer nodeTypes.Unlock()
	if _, dup := nodeTypes.m[typeName]; dup {
		panic("config: node type registered twice: " + typeName)
	}
	nodeTypes.m[typeName] = builder
}

// Registered 判断节点类型是否已注册。
func Registered(typeName string) bool {
	nodeTypes.RLock()
	defer nodeTypes.RUnlock()
	_, ok := nodeTypes.m[typeName]
	return ok
}

// SupportedTypes 返回排序后的已注册节点类型。
func SupportedTypes() []string {
	nodeTypes.RLock()
	defer nodeTypes.RUnlock()
	types := make([]string, 0, len(nodeTypes.m))
	for t := range nodeTypes.m {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// DefaultFactory 用当前注册的全部节点类型生成 NodeFactory，供 Config.BuildPipeline 绑定目录使用。
func DefaultFactory() *pipeline.NodeFactory {
	nodeTypes.RLock()
	defer nodeTypes.RUnlock()
	f := pipeline.NewNodeFactory()
	for t, b := range nodeTypes.m {
		f.Register(t, b)
	}
	return f
}

// ValidatePipelineConfig 在绑定目录之前检查推荐链路配置：
// 至少一个节点，每个节点都声明了已注册的类型。
// 不通过时返回 INVALID_INPUT，错误信息一次列出全部问题节点。
func ValidatePipelineConfig(cfg *pipeline.Config) error {
	if cfg == nil || len(cfg.Pipeline.Nodes) == 0 {
		return core.NewDomainError(core.ModulePipeline, core.ErrorCodeInvalidInput,
			"pipeline: no nodes configured")
	}
	var bad []string
	for i, nc := range cfg.Pipeline.Nodes {
		switch {
		case nc.Type == "":
			bad = append(bad, fmt.Sprintf("#%d: missing type", i))
		case !Registered(nc.Type):
			bad = append(bad, fmt.Sprintf("#%d: unknown type %q", i, nc.Type))
		}
	}
	if len(bad) > 0 {
		return core.NewDomainError(core.ModulePipeline, core.ErrorCodeInvalidInput,
			fmt.Sprintf("pipeline %q: %s (node types: %s)",
				cfg.Pipeline.Name, strings.Join(bad, "; "), strings.Join(SupportedTypes(), ", ")))
	}
	return nil
}
