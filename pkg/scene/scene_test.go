package scene

import (
	"bytes"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/topoview/pkg/errors"
)

func TestGraphMalformed(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		wantMalformed bool
		wantEmpty     bool
	}{
		{"complete", `{"nodes":[{"id":"a","type":"VM","label":"a","data":{}}],"edges":[]}`, false, false},
		{"empty lists", `{"nodes":[],"edges":[]}`, false, true},
		{"missing edges", `{"nodes":[]}`, true, false},
		{"missing nodes", `{"edges":[]}`, true, false},
		{"null nodes", `{"nodes":null,"edges":[]}`, true, false},
		{"empty object", `{}`, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Unmarshal([]byte(tt.input))
			if err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if got := g.Malformed(); got != tt.wantMalformed {
				t.Errorf("Malformed() = %v, want %v", got, tt.wantMalformed)
			}
			if got := g.Empty(); got != tt.wantEmpty {
				t.Errorf("Empty() = %v, want %v", got, tt.wantEmpty)
			}
		})
	}

	var nilGraph *Graph
	if !nilGraph.Malformed() {
		t.Error("nil graph should be malformed")
	}
}

func TestUnmarshalInvalidJSON(t *testing.T) {
	if _, err := Unmarshal([]byte(`{"nodes": [`)); err == nil {
		t.Error("expected decode error")
	}
}

func TestGraphLookups(t *testing.T) {
	g := &Graph{
		Nodes: []Entity{
			{ID: "vm-1", Type: KindVM, Label: "web-01"},
			{ID: "host-1", Type: KindHost},
			{ID: "ds-1", Type: KindDatastore, Label: "ds"},
		},
		Edges: []Relation{
			{ID: "e1", Source: "vm-1", Target: "host-1", Label: "Hébergée par"},
			{ID: "e2", Source: "vm-1", Target: "ghost", Label: "Stockée sur"},
		},
	}

	e, ok := g.Entity("host-1")
	if !ok || e.Type != KindHost {
		t.Fatalf("Entity(host-1) = %v, %v", e, ok)
	}
	if e.DisplayLabel() != "host-1" {
		t.Errorf("DisplayLabel() = %q, want host-1", e.DisplayLabel())
	}
	if _, ok := g.Entity("nope"); ok {
		t.Error("Entity(nope) should be missing")
	}

	dangling := g.DanglingRelations()
	if len(dangling) != 1 || dangling[0].ID != "e2" {
		t.Errorf("DanglingRelations() = %v, want [e2]", dangling)
	}

	counts := g.CountByKind()
	if counts[KindVM] != 1 || counts[KindHost] != 1 || counts[KindCluster] != 0 {
		t.Errorf("CountByKind() = %v", counts)
	}
}

func TestEntityAttr(t *testing.T) {
	e := Entity{Data: map[string]any{"vcpus": 4, "notes": nil}}
	if v, ok := e.Attr("vcpus"); !ok || v != 4 {
		t.Errorf("Attr(vcpus) = %v, %v", v, ok)
	}
	if _, ok := e.Attr("notes"); ok {
		t.Error("null attribute should be reported absent")
	}
	if _, ok := (&Entity{}).Attr("x"); ok {
		t.Error("attribute on nil data should be absent")
	}
}

func TestKindKnown(t *testing.T) {
	for _, k := range []Kind{KindVM, KindHost, KindCluster, KindDatastore, KindNetwork} {
		if !k.Known() {
			t.Errorf("%s should be known", k)
		}
	}
	if Kind("ResourcePool").Known() {
		t.Error("ResourcePool should not be known")
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "scene.json")
	jsonData := `{"nodes":[{"id":"vm-1","type":"VM","label":"web","data":{"vcpus":2}}],"edges":[]}`
	if err := os.WriteFile(jsonPath, []byte(jsonData), 0644); err != nil {
		t.Fatal(err)
	}

	yamlPath := filepath.Join(dir, "scene.yaml")
	yamlData := `nodes:
  - id: vm-1
    type: VM
    label: web
    data:
      vcpus: 2
      disks:
        - label: Hard disk 1
          capacity_gb: 40
edges: []
`
	if err := os.WriteFile(yamlPath, []byte(yamlData), 0644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{jsonPath, yamlPath} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			g, err := ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile: %v", err)
			}
			if g.Malformed() {
				t.Fatal("graph should be well formed")
			}
			if len(g.Nodes) != 1 || g.Nodes[0].Type != KindVM {
				t.Errorf("nodes = %+v", g.Nodes)
			}
		})
	}

	if _, err := ReadFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteRoundTrip(t *testing.T) {
	g := &Graph{
		Nodes: []Entity{{ID: "n1", Type: KindNetwork, Label: "VM Network", Data: map[string]any{}}},
		Edges: []Relation{},
	}
	var buf bytes.Buffer
	if err := Write(g, &buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), `"type": "Network"`) {
		t.Errorf("output missing type: %s", buf.String())
	}
	back, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if back.Malformed() || back.Nodes[0].Label != "VM Network" {
		t.Errorf("round trip = %+v", back)
	}
}

type closeFailer struct {
	bytes.Buffer
}

func (closeFailer) Close() error { return stderrors.New("disk quota exceeded") }

func TestWriteFile(t *testing.T) {
	g := &Graph{
		Nodes: []Entity{{ID: "vm-1", Type: KindVM, Label: "web-01", Data: map[string]any{}}},
		Edges: []Relation{},
	}

	t.Run("ok", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "graph.json")
		if err := WriteFile(g, path); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		back, err := ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		if back.Nodes[0].Label != "web-01" {
			t.Errorf("round trip = %+v", back)
		}
	})

	t.Run("close error", func(t *testing.T) {
		orig := createFile
		t.Cleanup(func() { createFile = orig })
		w := &closeFailer{}
		createFile = func(string) (io.WriteCloser, error) { return w, nil }

		err := WriteFile(g, "graph.json")
		if err == nil || !strings.Contains(err.Error(), "disk quota exceeded") {
			t.Fatalf("WriteFile error = %v, want close error", err)
		}
		if w.Len() == 0 {
			t.Error("graph was not encoded before close")
		}
	})
}

func TestRequest(t *testing.T) {
	req := NewRequest("web-01")
	if err := req.Validate(); err != nil {
		t.Fatalf("default request invalid: %v", err)
	}

	t.Run("normalize", func(t *testing.T) {
		r := Request{StartID: "web-01", VMInclusions: VMInclusions{ClusterOfHost: true}}.Normalize()
		if r.StartType != StartTypeVM || r.Depth != 1 {
			t.Errorf("Normalize() = %+v", r)
		}
		if r.VMInclusions.ClusterOfHost {
			t.Error("cluster inclusion requires the host")
		}
	})

	tests := []struct {
		name string
		mod  func(*Request)
		code errors.Code
	}{
		{"empty id", func(r *Request) { r.StartID = "" }, errors.ErrCodeInvalidID},
		{"bad depth", func(r *Request) { r.Depth = 3 }, errors.ErrCodeInvalidDepth},
		{"bad type", func(r *Request) { r.StartType = "Host" }, errors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRequest("web-01")
			tt.mod(&r)
			err := r.Validate()
			if !errors.Is(err, tt.code) {
				t.Errorf("Validate() = %v, want code %s", err, tt.code)
			}
		})
	}
}
