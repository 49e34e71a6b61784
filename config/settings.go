package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix 是环境变量前缀，"__" 分隔层级：SHOPREC_STORE__REDIS__ADDR -> store.redis.addr
	EnvPrefix = "SHOPREC_"

	// ConfigPathEnvVar 指定配置文件路径
	ConfigPathEnvVar = "SHOPREC_CONFIG"
)

// Settings 是进程级配置。
//
// 加载顺序（后者覆盖前者）：结构体默认值 -> YAML 配置文件 -> 环境变量。
type Settings struct {
	Log       LogSettings      `koanf:"log"`
	Catalog   CatalogSettings  `koanf:"catalog"`
	Customers CustomerSettings `koanf:"customers"`
	Engine    EngineSettings   `koanf:"engine"`
	Store     StoreSettings    `koanf:"store"`
	Cache     CacheSettings    `koanf:"cache"`
}

type LogSettings struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
}

// CatalogSettings 商品目录来源与准入过滤。
type CatalogSettings struct {
	Paths     []string `koanf:"paths"`
	Filter    string   `koanf:"filter"`    // CEL 表达式，例如 product.price > 0.0
	Blacklist []string `koanf:"blacklist"` // 排除的商品 ID
}

type CustomerSettings struct {
	Path string `koanf:"path"`
}

// EngineSettings 实现 core.EngineConfig。
type EngineSettings struct {
	Limit          int    `koanf:"limit" validate:"gte=1"`
	PerSubcategory int    `koanf:"per_subcategory" validate:"gte=1"`
	TopN           int    `koanf:"top_n" validate:"gte=1"`
	MaxConcurrent  int    `koanf:"max_concurrent" validate:"gte=0"`
	Pipeline       string `koanf:"pipeline"` // 可选的 Pipeline 配置文件，为空时使用默认三层 Pipeline
}

func (e EngineSettings) DefaultLimit() int          { return e.Limit }
func (e EngineSettings) DefaultPerSubcategory() int { return e.PerSubcategory }
func (e EngineSettings) DefaultTopN() int           { return e.TopN }

// StoreSettings 选择推荐缓存的存储后端。
type StoreSettings struct {
	Backend  string           `koanf:"backend" validate:"oneof=memory badger redis postgres"`
	Badger   BadgerSettings   `koanf:"badger"`
	Redis    RedisSettings    `koanf:"redis"`
	Postgres PostgresSettings `koanf:"postgres"`
}

type BadgerSettings struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

type RedisSettings struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db" validate:"gte=0"`
}

type PostgresSettings struct {
	DSN   string `koanf:"dsn"`
	Table string `koanf:"table"`
}

type CacheSettings struct {
	KeyPrefix string `koanf:"key_prefix"`
}

// DefaultSettings 返回默认配置：badger 持久化存储、10 条结果、每个子类目 3 个相似商品。
func DefaultSettings() *Settings {
	return &Settings{
		Log: LogSettings{Level: "info"},
		Engine: EngineSettings{
			Limit:          10,
			PerSubcategory: 3,
			TopN:           10,
		},
		Store: StoreSettings{
			Backend: "badger",
			Badger:  BadgerSettings{Path: "data/recommendations"},
			Redis:   RedisSettings{Addr: "localhost:6379"},
			Postgres: PostgresSettings{
				Table: "recommendations",
			},
		},
		Cache: CacheSettings{KeyPrefix: "reco:"},
	}
}

// sliceConfigPaths 中的配置项在环境变量里以逗号分隔。
var sliceConfigPaths = []string{
	"catalog.paths",
	"catalog.blacklist",
}

// Load 加载配置。path 为空时依次尝试 SHOPREC_CONFIG 指向的文件；文件不存在时只使用默认值与环境变量。
// 当前目录下的 .env 文件（若存在）会先被加载到环境变量中，已存在的环境变量不会被覆盖。
func Load(path string) (*Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(DefaultSettings(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = os.Getenv(ConfigPathEnvVar)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	if err := splitSliceFields(k); err != nil {
		return nil, err
	}

	s := &Settings{}
	if err := k.Unmarshal("", s); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

// Validate 校验字段范围以及后端所需的连接参数。
func (s *Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return err
	}
	switch s.Store.Backend {
	case "badger":
		if s.Store.Badger.Path == "" && !s.Store.Badger.InMemory {
			return errors.New("store.badger.path is required unless store.badger.in_memory is set")
		}
	case "redis":
		if s.Store.Redis.Addr == "" {
			return errors.New("store.redis.addr is required")
		}
	case "postgres":
		if s.Store.Postgres.DSN == "" {
			return errors.New("store.postgres.dsn is required")
		}
		if s.Store.Postgres.Table == "" {
			return errors.New("store.postgres.table is required")
		}
	}
	return nil
}

// envTransform: SHOPREC_ENGINE__PER_SUBCATEGORY -> engine.per_subcategory
func envTransform(key string) string {
	key = strings.TrimPrefix(key, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(key), "__", ".")
}

func splitSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := make([]string, 0)
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}
