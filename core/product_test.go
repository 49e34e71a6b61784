package core

import "testing"

func TestProduct_EqualAndSame(t *testing.T) {
	base := func() *Product {
		return &Product{
			ID: "P1", Category: "Fashion", Subcategory: "Shoes", Brand: "Acme", Price: 10,
			Rating:                    Float(4),
			RecommendationProbability: Float(0.5),
			RelatedSubcategories:      []string{"Socks"},
		}
	}

	repriced := base()
	repriced.Price = 12

	noRating := base()
	noRating.Rating = nil

	emptyRelated := base()
	emptyRelated.RelatedSubcategories = []string{}

	anonymous := base()
	anonymous.ID = ""
	anonymousTwin := base()
	anonymousTwin.ID = ""
	anonymousOther := base()
	anonymousOther.ID = ""
	anonymousOther.Brand = "Other"

	tests := []struct {
		name      string
		a, b      *Product
		wantEqual bool
		wantSame  bool
	}{
		{"identical", base(), base(), true, true},
		{"same id different price", base(), repriced, false, true},
		{"optional field presence differs", base(), noRating, false, true},
		{"nil vs empty related list", base(), emptyRelated, false, true},
		{"no id falls back to structure", anonymous, anonymousTwin, true, true},
		{"no id and different fields", anonymous, anonymousOther, false, false},
		{"nil vs value", nil, base(), false, false},
		{"both nil", nil, nil, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.wantEqual {
				t.Errorf("Equal() = %v, want %v", got, tt.wantEqual)
			}
			if got := tt.a.Same(tt.b); got != tt.wantSame {
				t.Errorf("Same() = %v, want %v", got, tt.wantSame)
			}
		})
	}
}

func TestSortByProbability(t *testing.T) {
	ps := []*Product{
		{ID: "A"},
		{ID: "B", RecommendationProbability: Float(0.4)},
		{ID: "C"},
		{ID: "D", RecommendationProbability: Float(0.4)},
	}
	if !SortByProbability(ps) {
		t.Fatal("SortByProbability() = false, want true")
	}
	want := []string{"B", "D", "A", "C"}
	for i, p := range ps {
		if p.ID != want[i] {
			t.Fatalf("order[%d] = %s, want %s", i, p.ID, want[i])
		}
	}

	plain := []*Product{{ID: "A"}, {ID: "B"}}
	if SortByProbability(plain) {
		t.Error("SortByProbability() without probabilities should not sort")
	}
}

func TestNewUnknownCustomer(t *testing.T) {
	c := NewUnknownCustomer("C404")
	if c.Found || c.Segment != SegmentNew || c.CustomerID != "C404" {
		t.Errorf("unexpected profile: %+v", c)
	}
	if c.HasPurchaseHistory() || c.HasBrowsingHistory() {
		t.Error("unknown customer should have no history")
	}

	notFoundWithHistory := &CustomerProfile{CustomerID: "C1", PurchaseHistory: []string{"Shoes"}}
	if notFoundWithHistory.HasPurchaseHistory() {
		t.Error("purchase history only counts for found customers")
	}
}

func TestDomainError(t *testing.T) {
	cause := NewDomainError(ModuleStore, ErrorCodeUnavailable, "store: down")
	wrapped := WrapDomainError(ModuleCache, ErrorCodeCorrupted, cause, "cache: decode %s", "C1")

	if !IsCorrupted(wrapped) {
		t.Error("IsCorrupted(wrapped) = false")
	}
	if GetDomainError(wrapped).Module != ModuleCache {
		t.Error("outermost domain error should be returned")
	}
	if wrapped.Error() != "cache: decode C1: store: down" {
		t.Errorf("Error() = %q", wrapped.Error())
	}
	if IsStoreNotFound(wrapped) {
		t.Error("IsStoreNotFound(wrapped) = true")
	}
	if !IsStoreNotFound(ErrStoreNotFound) || IsNotFound(nil) {
		t.Error("store not found helpers")
	}
}
