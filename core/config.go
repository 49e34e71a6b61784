package core

// EngineConfig 是推荐引擎的配置接口，用于提供默认值。
type EngineConfig interface {
	// DefaultLimit 返回推荐结果的最大条数
	DefaultLimit() int

	// DefaultPerSubcategory 返回每个购买子类目取的相似商品数
	DefaultPerSubcategory() int

	// DefaultTopN 返回兜底层取的热门商品数
	DefaultTopN() int
}

// DefaultEngineConfig 是默认的引擎配置实现。
type DefaultEngineConfig struct{}

func (c *DefaultEngineConfig) DefaultLimit() int {
	return 10
}

func (c *DefaultEngineConfig) DefaultPerSubcategory() int {
	return 3
}

func (c *DefaultEngineConfig) DefaultTopN() int {
	return 10
}
