package catalog

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/filter"
	"github.com/rushteam/shoprec/pkg/conv"
	"github.com/rushteam/shoprec/pkg/logger"
)

// 商品 CSV 的列名，与历史数据集一致。
const (
	colProductID   = "Product_ID"
	colCategory    = "Category"
	colSubcategory = "Subcategory"
	colBrand       = "Brand"
	colPrice       = "Price"
	colRating      = "Product_Rating"
	colProbability = "Probability_of_Recommendation"
	colRelated     = "Similar_Product_List"
)

// Document 是商品目录文件的结构（支持 YAML/JSON）。
type Document struct {
	Products []*core.Product `yaml:"products" json:"products"`
}

// Loader 从文件加载商品目录：解析、校验、按过滤器准入。
type Loader struct {
	// Filters 在建索引前剔除商品（黑名单、CEL 表达式等）
	Filters []filter.Filter

	Logger *zap.Logger

	validate *validator.Validate
}

func NewLoader(filters []filter.Filter, l *zap.Logger) *Loader {
	return &Loader{
		Filters:  filters,
		Logger:   l,
		validate: validator.New(),
	}
}

// ParseYAML 解析 YAML 格式的目录文档。
func ParseYAML(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return &doc, nil
}

// ParseJSON 解析 JSON 格式的目录文档。
func ParseJSON(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return &doc, nil
}

// ParseCSV 解析带表头的商品 CSV。
// 评分、推荐概率为空时视为缺失；没有 Similar_Product_List 列时相关子类目字段缺失。
func ParseCSV(data []byte) (*Document, error) {
	t, err := conv.ReadTable(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	doc := &Document{Products: make([]*core.Product, 0, len(t.Rows))}
	for _, row := range t.Rows {
		p, err := productFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		doc.Products = append(doc.Products, p)
	}
	return doc, nil
}

func productFromRow(row conv.Row) (*core.Product, error) {
	p := &core.Product{
		ID:          row.Get(colProductID),
		Category:    row.Get(colCategory),
		Subcategory: row.Get(colSubcategory),
		Brand:       row.Get(colBrand),
	}
	var err error
	if p.Price, err = row.Float(colPrice); err != nil {
		return nil, err
	}
	if p.Rating, err = row.OptionalFloat(colRating); err != nil {
		return nil, err
	}
	if p.RecommendationProbability, err = row.OptionalFloat(colProbability); err != nil {
		return nil, err
	}
	if p.RelatedSubcategories, err = row.List(colRelated); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadFile 按扩展名读取单个目录文件：.json 为 JSON，.csv 为 CSV，其他按 YAML。
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseJSON(data)
	case ".csv":
		return ParseCSV(data)
	default:
		return ParseYAML(data)
	}
}

// Load 并发读取多个目录分片，按参数顺序拼接，然后校验并过滤。
// 任一文件读取/解析失败则返回错误；单条记录校验失败只跳过该记录。
func (l *Loader) Load(ctx context.Context, paths ...string) ([]*core.Product, error) {
	docs := make([]*Document, len(paths))
	eg, _ := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		eg.Go(func() error {
			doc, err := LoadFile(path)
			if err != nil {
				return fmt.Errorf("load catalog %s: %w", path, err)
			}
			docs[i] = doc
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var all []*core.Product
	for _, doc := range docs {
		all = append(all, doc.Products...)
	}
	return l.admit(ctx, all), nil
}

// BuildIndex 加载目录并构建索引。
// 目录不可用不是致命错误：记录错误日志后返回空索引。
func (l *Loader) BuildIndex(ctx context.Context, paths ...string) *Index {
	log := logger.OrNop(l.Logger)
	products, err := l.Load(ctx, paths...)
	if err != nil {
		log.Error("catalog unavailable, serving empty catalog", zap.Error(err))
		products = nil
	}
	return NewIndex(products, WithLogger(log))
}

func (l *Loader) admit(ctx context.Context, products []*core.Product) []*core.Product {
	log := logger.OrNop(l.Logger)
	v := l.validate
	if v == nil {
		v = validator.New()
	}

	valid := make([]*core.Product, 0, len(products))
	for i, p := range products {
		if p == nil {
			continue
		}
		if err := v.Struct(p); err != nil {
			log.Warn("skip invalid product",
				zap.Int("position", i),
				zap.String("product_id", p.ID),
				zap.Error(err),
			)
			continue
		}
		valid = append(valid, p)
	}

	if len(l.Filters) == 0 {
		return valid
	}
	kept := filter.Apply(ctx, valid, l.Filters, log)
	if dropped := len(valid) - len(kept); dropped > 0 {
		log.Info("catalog filters applied", zap.Int("dropped", dropped), zap.Int("kept", len(kept)))
	}
	return kept
}
