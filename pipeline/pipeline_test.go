package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rushteam/shoprec/core"
)

type appendNode struct {
	name string
	id   string
	err  error
}

func (n *appendNode) Name() string { return n.name }
func (n *appendNode) Kind() Kind   { return KindRecall }

func (n *appendNode) Process(_ context.Context, _ *core.RecommendContext, items []*core.Product) ([]*core.Product, error) {
	if n.err != nil {
		return nil, n.err
	}
	return append(items, &core.Product{ID: n.id}), nil
}

func ids(ps []*core.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestPipeline_Run(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name    string
		nodes   []Node
		want    []string
		wantErr string
	}{
		{
			name:  "runs nodes in order",
			nodes: []Node{&appendNode{name: "a", id: "A"}, &appendNode{name: "b", id: "B"}},
			want:  []string{"A", "B"},
		},
		{
			name:  "no nodes returns input",
			nodes: nil,
			want:  []string{},
		},
		{
			name:    "error is prefixed with node name",
			nodes:   []Node{&appendNode{name: "a", id: "A"}, &appendNode{name: "broken", err: boom}},
			wantErr: "broken: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Pipeline{Nodes: tt.nodes}
			got, err := p.Run(context.Background(), &core.RecommendContext{}, []*core.Product{})
			if tt.wantErr != "" {
				if err == nil || err.Error() != tt.wantErr {
					t.Fatalf("Run() error = %v, want %q", err, tt.wantErr)
				}
				if !errors.Is(err, boom) {
					t.Errorf("Run() error does not wrap cause")
				}
				return
			}
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if !reflect.DeepEqual(ids(got), tt.want) {
				t.Errorf("Run() = %v, want %v", ids(got), tt.want)
			}
		})
	}
}

func TestConfig_BuildPipeline(t *testing.T) {
	f := NewNodeFactory()
	f.Register("test.append", func(cfg map[string]interface{}, _ core.Catalog) (Node, error) {
		id, _ := cfg["id"].(string)
		return &appendNode{name: "test.append", id: id}, nil
	})

	cfg, err := ParseYAML([]byte(`
pipeline:
  name: demo
  nodes:
    - type: test.append
      config: {id: X}
    - type: test.append
      config: {id: Y}
`))
	if err != nil {
		t.Fatalf("ParseYAML() error = %v", err)
	}
	p, err := cfg.BuildPipeline(f, nil)
	if err != nil {
		t.Fatalf("BuildPipeline() error = %v", err)
	}
	got, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !reflect.DeepEqual(ids(got), []string{"X", "Y"}) {
		t.Errorf("Run() = %v, want [X Y]", ids(got))
	}

	unknown := &Config{}
	unknown.Pipeline.Nodes = []NodeConfig{{Type: "test.missing"}}
	if _, err := unknown.BuildPipeline(f, nil); err == nil || !strings.Contains(err.Error(), "test.missing") {
		t.Errorf("BuildPipeline() unknown type error = %v", err)
	}

	empty := &Config{}
	if _, err := empty.BuildPipeline(f, nil); err == nil {
		t.Error("BuildPipeline() with no nodes should fail")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "pipeline.yaml")
	jsonPath := filepath.Join(dir, "pipeline.JSON")
	if err := os.WriteFile(yamlPath, []byte("pipeline:\n  name: y\n  nodes:\n    - type: rerank.topn\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(jsonPath, []byte(`{"pipeline":{"name":"j","nodes":[{"type":"rerank.topn","config":{"n":5}}]}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path     string
		wantName string
	}{
		{yamlPath, "y"},
		{jsonPath, "j"},
	}
	for _, tt := range tests {
		cfg, err := LoadFile(tt.path)
		if err != nil {
			t.Fatalf("LoadFile(%s) error = %v", tt.path, err)
		}
		if cfg.Pipeline.Name != tt.wantName || len(cfg.Pipeline.Nodes) != 1 || cfg.Pipeline.Nodes[0].Type != "rerank.topn" {
			t.Errorf("LoadFile(%s) = %+v", tt.path, cfg.Pipeline)
		}
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadFile() missing file should fail")
	}
}
