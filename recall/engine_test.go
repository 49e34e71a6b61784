package recall

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"github.com/rushteam/shoprec/catalog"
	"github.com/rushteam/shoprec/core"
)

func prod(id, category, subcategory string, prob *float64) *core.Product {
	return &core.Product{
		ID:                        id,
		Category:                  category,
		Subcategory:               subcategory,
		Brand:                     "Brand-" + id,
		Price:                     20,
		RecommendationProbability: prob,
	}
}

func ids(ps []*core.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

// shoeCatalog: 3 个 Shoes 商品 + 9 个其他商品，全部带推荐概率。
func shoeCatalog() *catalog.Index {
	f := core.Float
	products := []*core.Product{
		prod("S1", "Fashion", "Shoes", f(0.55)),
		prod("S2", "Fashion", "Shoes", f(0.25)),
		prod("S3", "Fashion", "Shoes", f(0.95)),
	}
	probs := []float64{0.91, 0.81, 0.71, 0.61, 0.51, 0.41, 0.31, 0.21, 0.11}
	for i, p := range probs {
		products = append(products, prod(fmt.Sprintf("O%d", i+1), "Home", "Kitchen", f(p)))
	}
	return catalog.NewIndex(products)
}

func TestEngine_PurchaseHistoryPaddedWithTopProducts(t *testing.T) {
	engine := NewEngine(shoeCatalog())
	profile := &core.CustomerProfile{
		CustomerID:      "C1",
		Found:           true,
		PurchaseHistory: []string{"Shoes"},
		BrowsingHistory: []string{},
	}

	got, err := engine.Recommend(context.Background(), profile)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	want := []string{"S3", "S1", "S2", "O1", "O2", "O3", "O4", "O5", "O6", "O7"}
	if !reflect.DeepEqual(ids(got), want) {
		t.Errorf("Recommend() = %v, want %v", ids(got), want)
	}
}

func TestEngine_UnknownCustomerGetsTopProducts(t *testing.T) {
	idx := shoeCatalog()
	engine := NewEngine(idx)

	got, err := engine.Recommend(context.Background(), core.NewUnknownCustomer("C404"))
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if want := ids(idx.TopProducts(10)); !reflect.DeepEqual(ids(got), want) {
		t.Errorf("Recommend() = %v, want TopProducts(10) = %v", ids(got), want)
	}

	// nil 画像按未找到处理
	got, err = engine.Recommend(context.Background(), nil)
	if err != nil {
		t.Fatalf("Recommend(nil) error = %v", err)
	}
	if want := ids(idx.TopProducts(10)); !reflect.DeepEqual(ids(got), want) {
		t.Errorf("Recommend(nil) = %v, want %v", ids(got), want)
	}
}

func TestEngine_Tiers(t *testing.T) {
	f := core.Float
	idx := catalog.NewIndex([]*core.Product{
		prod("S1", "Fashion", "Shoes", nil),
		prod("S2", "Fashion", "Shoes", nil),
		prod("B1", "Books", "Fiction", nil),
		prod("B2", "Books", "Poetry", f(0.3)),
		prod("T1", "Toys", "Puzzles", f(0.9)),
		prod("T2", "Toys", "Puzzles", nil),
	})

	tests := []struct {
		name      string
		profile   *core.CustomerProfile
		wantIDs   []string
		wantTiers []string
	}{
		{
			name: "all three tiers",
			profile: &core.CustomerProfile{
				CustomerID: "C1", Found: true,
				PurchaseHistory: []string{"Shoes"},
				BrowsingHistory: []string{"Books"},
			},
			// 浏览层按推荐概率排序（缺失按 0），兜底层不满足全量概率/评分，按目录顺序
			wantIDs:   []string{"S1", "S2", "B2", "B1", "T1", "T2"},
			wantTiers: []string{TierPurchaseHistory, TierBrowsingHistory, TierTopProducts},
		},
		{
			name: "purchase history ignored for not-found profile",
			profile: &core.CustomerProfile{
				CustomerID:      "C2",
				PurchaseHistory: []string{"Puzzles"},
			},
			wantIDs:   []string{"S1", "S2", "B1", "B2", "T1", "T2"},
			wantTiers: []string{TierTopProducts},
		},
		{
			name: "repeated subcategory does not duplicate",
			profile: &core.CustomerProfile{
				CustomerID: "C3", Found: true,
				PurchaseHistory: []string{"Puzzles", "Puzzles"},
			},
			wantIDs:   []string{"T1", "T2", "S1", "S2", "B1", "B2"},
			wantTiers: []string{TierPurchaseHistory, TierTopProducts},
		},
		{
			name: "unknown names contribute nothing",
			profile: &core.CustomerProfile{
				CustomerID: "C4", Found: true,
				PurchaseHistory: []string{"Hats"},
				BrowsingHistory: []string{"Garden"},
			},
			wantIDs:   []string{"S1", "S2", "B1", "B2", "T1", "T2"},
			wantTiers: []string{TierPurchaseHistory, TierBrowsingHistory, TierTopProducts},
		},
	}

	engine := NewEngine(idx)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rctx := core.NewRecommendContext(tt.profile)
			got, err := engine.Run(context.Background(), rctx)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if !reflect.DeepEqual(ids(got), tt.wantIDs) {
				t.Errorf("Run() = %v, want %v", ids(got), tt.wantIDs)
			}
			if !reflect.DeepEqual(rctx.Tiers(), tt.wantTiers) {
				t.Errorf("tiers = %v, want %v", rctx.Tiers(), tt.wantTiers)
			}
		})
	}
}

func TestEngine_LimitStopsLaterTiers(t *testing.T) {
	var products []*core.Product
	for i := 0; i < 12; i++ {
		products = append(products, prod(fmt.Sprintf("F%02d", i), "Fashion", fmt.Sprintf("Sub%d", i%5), nil))
	}
	engine := NewEngine(catalog.NewIndex(products))

	t.Run("browsing fills to limit", func(t *testing.T) {
		rctx := core.NewRecommendContext(&core.CustomerProfile{
			CustomerID: "C1", Found: true, BrowsingHistory: []string{"Fashion"},
		})
		got, err := engine.Run(context.Background(), rctx)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if len(got) != 10 {
			t.Fatalf("len = %d, want 10", len(got))
		}
		if want := []string{TierBrowsingHistory}; !reflect.DeepEqual(rctx.Tiers(), want) {
			t.Errorf("tiers = %v, want %v", rctx.Tiers(), want)
		}
	})

	t.Run("purchase tier overshoot is truncated", func(t *testing.T) {
		rctx := core.NewRecommendContext(&core.CustomerProfile{
			CustomerID: "C2", Found: true,
			PurchaseHistory: []string{"Sub0", "Sub1", "Sub2", "Sub3", "Sub4"},
			BrowsingHistory: []string{"Fashion"},
		})
		got, err := engine.Run(context.Background(), rctx)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		want := []string{"F00", "F05", "F10", "F01", "F06", "F11", "F02", "F07", "F03", "F08"}
		if !reflect.DeepEqual(ids(got), want) {
			t.Errorf("Run() = %v, want %v", ids(got), want)
		}
		if want := []string{TierPurchaseHistory}; !reflect.DeepEqual(rctx.Tiers(), want) {
			t.Errorf("tiers = %v, want %v", rctx.Tiers(), want)
		}
	})
}

func TestEngine_AtMostTenWithoutDuplicates(t *testing.T) {
	engine := NewEngine(shoeCatalog())
	histories := [][]string{nil, {}, {"Shoes"}, {"Kitchen", "Shoes"}, {"Kitchen", "Kitchen", "Shoes", "Hats"}}
	categories := [][]string{nil, {"Fashion"}, {"Home", "Fashion"}, {"Home", "Home"}}

	for _, found := range []bool{true, false} {
		for _, ph := range histories {
			for _, bh := range categories {
				profile := &core.CustomerProfile{CustomerID: "C", Found: found, PurchaseHistory: ph, BrowsingHistory: bh}
				got, err := engine.Recommend(context.Background(), profile)
				if err != nil {
					t.Fatalf("Recommend(%+v) error = %v", profile, err)
				}
				if len(got) > 10 {
					t.Errorf("Recommend(%+v) returned %d items", profile, len(got))
				}
				for i := range got {
					for j := i + 1; j < len(got); j++ {
						if got[i].Equal(got[j]) || got[i].Same(got[j]) {
							t.Errorf("Recommend(%+v) duplicate %s at %d and %d", profile, got[i].ID, i, j)
						}
					}
				}
			}
		}
	}
}

func TestEngine_Idempotent(t *testing.T) {
	engine := NewEngine(shoeCatalog())
	profile := &core.CustomerProfile{
		CustomerID: "C1", Found: true,
		PurchaseHistory: []string{"Kitchen"},
		BrowsingHistory: []string{"Fashion"},
	}
	first, err := engine.Recommend(context.Background(), profile)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	second, err := engine.Recommend(context.Background(), profile)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Recommend() not idempotent: %v vs %v", ids(first), ids(second))
	}
}

func TestEngine_EmptyCatalog(t *testing.T) {
	engine := NewEngine(catalog.NewIndex(nil))
	got, err := engine.Recommend(context.Background(), &core.CustomerProfile{
		CustomerID: "C1", Found: true,
		PurchaseHistory: []string{"Shoes"},
		BrowsingHistory: []string{"Fashion"},
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Recommend() = %v, want empty non-nil list", got)
	}
}

type testConfig struct{ limit, per, top int }

func (c testConfig) DefaultLimit() int          { return c.limit }
func (c testConfig) DefaultPerSubcategory() int { return c.per }
func (c testConfig) DefaultTopN() int           { return c.top }

func TestEngine_CustomConfig(t *testing.T) {
	engine := NewEngine(shoeCatalog(), WithEngineConfig(testConfig{limit: 4, per: 1, top: 10}), WithMaxConcurrent(1))
	got, err := engine.Recommend(context.Background(), &core.CustomerProfile{
		CustomerID: "C1", Found: true, PurchaseHistory: []string{"Shoes"},
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if want := []string{"S3", "O1", "O2", "O3"}; !reflect.DeepEqual(ids(got), want) {
		t.Errorf("Recommend() = %v, want %v", ids(got), want)
	}
	if engine.Limit() != 4 {
		t.Errorf("Limit() = %d, want 4", engine.Limit())
	}
}
