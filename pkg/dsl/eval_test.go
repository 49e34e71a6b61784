package dsl

import (
	"testing"

	"github.com/rushteam/shoprec/core"
)

func TestExpr_Evaluate(t *testing.T) {
	rated := &core.Product{
		ID: "P1", Category: "Fashion", Subcategory: "Shoes", Brand: "Acme", Price: 120,
		Rating:               core.Float(4.5),
		RelatedSubcategories: []string{"Socks"},
	}
	plain := &core.Product{ID: "P2", Category: "Books", Subcategory: "Fiction", Price: 0}

	tests := []struct {
		name    string
		expr    string
		product *core.Product
		want    bool
	}{
		{"price positive", "product.price > 0.0", rated, true},
		{"price zero", "product.price > 0.0", plain, false},
		{"category match", `product.category == "Fashion"`, rated, true},
		{"has rating", "has(product.rating) && product.rating >= 4.0", rated, true},
		{"missing rating", "!has(product.rating) || product.rating >= 4.0", plain, true},
		{"related in list", `"Socks" in product.related_subcategories`, rated, true},
		{"related empty", `"Socks" in product.related_subcategories`, plain, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Compile(tt.expr)
			if err != nil {
				t.Fatalf("Compile(%q) error = %v", tt.expr, err)
			}
			got, err := e.Evaluate(tt.product)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	if _, err := Compile("product.price >"); err == nil {
		t.Error("expected syntax error")
	}
	if _, err := Compile(`"text"`); err == nil {
		t.Error("expected non-bool expression to be rejected")
	}
}
