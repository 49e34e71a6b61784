// Package customer 提供客户查询（core.CustomerDirectory）的内存实现。
package customer

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
	"gopkg.in/yaml.v3"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pkg/conv"
	"github.com/rushteam/shoprec/pkg/logger"
)

// Document 是客户文件的结构（支持 YAML/JSON）。
type Document struct {
	Customers []*core.CustomerProfile `yaml:"customers" json:"customers"`
}

// MemoryDirectory 是只读的内存客户目录，构建后可并发查询。
type MemoryDirectory struct {
	profiles map[string]*core.CustomerProfile
}

// NewMemoryDirectory 根据已解析的客户记录构建目录。
// 缺少客户 ID 的记录被跳过；重复 ID 保留第一条。文件中的客户视为已找到（Found=true）。
func NewMemoryDirectory(profiles []*core.CustomerProfile, l *zap.Logger) *MemoryDirectory {
	log := logger.OrNop(l)
	v := validator.New()

	d := &MemoryDirectory{profiles: make(map[string]*core.CustomerProfile, len(profiles))}
	for i, p := range profiles {
		if p == nil {
			continue
		}
		if err := v.Struct(p); err != nil {
			log.Warn("skip invalid customer", zap.Int("position", i), zap.Error(err))
			continue
		}
		if _, dup := d.profiles[p.CustomerID]; dup {
			log.Warn("duplicate customer id, keeping first", zap.String("customer_id", p.CustomerID))
			continue
		}
		d.profiles[p.CustomerID] = p
	}
	log.Info("customer directory built", zap.Int("customers", len(d.profiles)))
	return d
}

func (d *MemoryDirectory) Size() int { return len(d.profiles) }

// Lookup 每次返回一个新的画像副本；未知客户返回 core.NewUnknownCustomer，不是错误。
func (d *MemoryDirectory) Lookup(_ context.Context, customerID string) (*core.CustomerProfile, error) {
	p, ok := d.profiles[customerID]
	if !ok {
		return core.NewUnknownCustomer(customerID), nil
	}

	out := *p
	out.Found = true
	out.BrowsingHistory = append([]string{}, p.BrowsingHistory...)
	out.PurchaseHistory = append([]string{}, p.PurchaseHistory...)
	return &out, nil
}

// LoadFile 按扩展名读取客户文件：.json 为 JSON，.csv 为 CSV，其他按 YAML。
func LoadFile(path string) ([]*core.CustomerProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	var doc Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &doc)
	case ".csv":
		doc.Customers, err = ParseCSV(data)
	default:
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleCustomer, core.ErrorCodeInvalidInput, err, "customer: parse %s", path)
	}
	return doc.Customers, nil
}

// ParseCSV 解析带表头的客户 CSV（Customer_ID、Browsing_History、Purchase_History、Customer_Segment 等列）。
// 历史列的单元格形如 ['Books', 'Fashion']。
func ParseCSV(data []byte) ([]*core.CustomerProfile, error) {
	t, err := conv.ReadTable(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	out := make([]*core.CustomerProfile, 0, len(t.Rows))
	for _, row := range t.Rows {
		p := &core.CustomerProfile{
			CustomerID: row.Get("Customer_ID"),
			Segment:    row.Get("Customer_Segment"),
			Gender:     row.Get("Gender"),
			Location:   row.Get("Location"),
			Season:     row.Get("Season"),
		}
		if p.BrowsingHistory, err = row.List("Browsing_History"); err != nil {
			return nil, err
		}
		if p.PurchaseHistory, err = row.List("Purchase_History"); err != nil {
			return nil, err
		}
		if p.Age, err = row.Int("Age"); err != nil {
			return nil, err
		}
		if p.AvgOrderValue, err = row.Float("Avg_Order_Value"); err != nil {
			return nil, err
		}
		if p.Holiday, err = row.Bool("Holiday"); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Load 读取客户文件并构建目录。文件不可用不是致命错误：记录错误后返回空目录，所有客户按未找到处理。
func Load(path string, l *zap.Logger) *MemoryDirectory {
	log := logger.OrNop(l)
	if path == "" {
		return NewMemoryDirectory(nil, log)
	}
	profiles, err := LoadFile(path)
	if err != nil {
		log.Error("customer data unavailable, every customer will be treated as new",
			zap.String("path", path), zap.Error(err))
		profiles = nil
	}
	return NewMemoryDirectory(profiles, log)
}

var _ core.CustomerDirectory = (*MemoryDirectory)(nil)
