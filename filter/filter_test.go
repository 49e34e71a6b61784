package filter

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/shoprec/core"
)

type failingFilter struct{}

func (failingFilter) Name() string { return "filter.failing" }

func (failingFilter) ShouldFilter(context.Context, *core.Product) (bool, error) {
	return true, errors.New("boom")
}

func products() []*core.Product {
	return []*core.Product{
		{ID: "P1", Category: "Fashion", Subcategory: "Shoes", Price: 50},
		{ID: "P2", Category: "Fashion", Subcategory: "Shirts", Price: 0},
		{ID: "P3", Category: "Books", Subcategory: "Fiction", Price: 12},
	}
}

func ids(ps []*core.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestApply(t *testing.T) {
	expr, err := NewExpressionFilter("product.price > 0.0")
	if err != nil {
		t.Fatalf("NewExpressionFilter() error = %v", err)
	}

	tests := []struct {
		name    string
		filters []Filter
		want    []string
	}{
		{"no filters", nil, []string{"P1", "P2", "P3"}},
		{"blacklist", []Filter{NewBlacklistFilter([]string{"P3"})}, []string{"P1", "P2"}},
		{"expression", []Filter{expr}, []string{"P1", "P3"}},
		{"combined", []Filter{NewBlacklistFilter([]string{"P1"}), expr}, []string{"P3"}},
		{"error keeps product", []Filter{failingFilter{}}, []string{"P1", "P2", "P3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Apply(context.Background(), products(), tt.filters, nil))
			if len(got) != len(tt.want) {
				t.Fatalf("Apply() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Apply()[%d] = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestNewExpressionFilter_Invalid(t *testing.T) {
	if _, err := NewExpressionFilter("product.price >"); err == nil {
		t.Error("expected compile error")
	}
}
