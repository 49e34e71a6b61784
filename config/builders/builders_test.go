package builders_test

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/rushteam/shoprec/catalog"
	"github.com/rushteam/shoprec/config"
	"github.com/rushteam/shoprec/config/builders"
	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/recall"
)

const pipelineYAML = `
pipeline:
  name: diverse
  nodes:
    - type: recall.purchase_history
      config:
        per_subcategory: 2
        max_concurrent: 2
    - type: recall.top_products
      config:
        n: 10
    - type: rerank.diversity
      config:
        max_per_group: 1
`

func TestBuildFromConfig(t *testing.T) {
	cfg, err := pipeline.ParseYAML([]byte(pipelineYAML))
	if err != nil {
		t.Fatalf("ParseYAML() error = %v", err)
	}
	if err := config.ValidatePipelineConfig(cfg); err != nil {
		t.Fatalf("ValidatePipelineConfig() error = %v", err)
	}

	f := core.Float
	idx := catalog.NewIndex([]*core.Product{
		{ID: "S1", Category: "Fashion", Subcategory: "Shoes", RecommendationProbability: f(0.9)},
		{ID: "S2", Category: "Fashion", Subcategory: "Shoes", RecommendationProbability: f(0.8)},
		{ID: "H1", Category: "Fashion", Subcategory: "Hats", RecommendationProbability: f(0.7)},
		{ID: "K1", Category: "Home", Subcategory: "Kitchen", RecommendationProbability: f(0.6)},
	})
	p, err := cfg.BuildPipeline(config.DefaultFactory(), idx)
	if err != nil {
		t.Fatalf("BuildPipeline() error = %v", err)
	}
	if len(p.Nodes) != 3 {
		t.Fatalf("nodes = %d, want 3", len(p.Nodes))
	}

	engine := recall.NewEngineFromPipeline(p, 10, nil)
	got, err := engine.Recommend(context.Background(), &core.CustomerProfile{
		CustomerID: "C1", Found: true, PurchaseHistory: []string{"Shoes"},
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	ids := make([]string, 0, len(got))
	for _, p := range got {
		ids = append(ids, p.ID)
	}
	if want := []string{"S1", "H1", "K1"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("Recommend() = %v, want %v", ids, want)
	}
}

func TestValidatePipelineConfig_UnknownType(t *testing.T) {
	cfg, err := pipeline.ParseJSON([]byte(`{"pipeline":{"name":"x","nodes":[{"type":"rank.lr"}]}}`))
	if err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}
	if err := config.ValidatePipelineConfig(cfg); !core.IsInvalidInput(err) || !strings.Contains(err.Error(), `unknown type "rank.lr"`) {
		t.Errorf("ValidatePipelineConfig() error = %v, want INVALID_INPUT naming rank.lr", err)
	}
	if _, err := cfg.BuildPipeline(config.DefaultFactory(), nil); err == nil {
		t.Error("BuildPipeline() expected error for unregistered node type")
	}
}

func TestSupportedTypes(t *testing.T) {
	want := []string{
		"recall.browsing_history",
		"recall.purchase_history",
		"recall.top_products",
		"rerank.diversity",
		"rerank.topn",
	}
	if got := config.SupportedTypes(); !reflect.DeepEqual(got, want) {
		t.Errorf("SupportedTypes() = %v, want %v", got, want)
	}
}

func TestValidatePipelineConfig(t *testing.T) {
	tests := []struct {
		name    string
		nodes   []pipeline.NodeConfig
		wantErr string
	}{
		{"registered tiers", []pipeline.NodeConfig{{Type: "recall.purchase_history"}, {Type: "rerank.topn"}}, ""},
		{"no nodes", nil, "no nodes configured"},
		{"missing type", []pipeline.NodeConfig{{Type: "recall.top_products"}, {}}, "#1: missing type"},
		{"all problems listed", []pipeline.NodeConfig{{Type: "rank.lr"}, {Type: "recall.ann"}}, `#0: unknown type "rank.lr"; #1: unknown type "recall.ann"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &pipeline.Config{}
			cfg.Pipeline.Name = "t"
			cfg.Pipeline.Nodes = tt.nodes
			err := config.ValidatePipelineConfig(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidatePipelineConfig() error = %v", err)
				}
				return
			}
			if !core.IsInvalidInput(err) || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidatePipelineConfig() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
	if err := config.ValidatePipelineConfig(nil); !core.IsInvalidInput(err) {
		t.Errorf("ValidatePipelineConfig(nil) error = %v, want INVALID_INPUT", err)
	}
}

func TestRegister_Duplicate(t *testing.T) {
	if !config.Registered("recall.top_products") {
		t.Fatal("recall.top_products should be registered")
	}
	defer func() {
		if recover() == nil {
			t.Error("Register() of an existing node type should panic")
		}
	}()
	config.Register("recall.top_products", builders.BuildTopProductsNode)
}
