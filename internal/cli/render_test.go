package cli

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "json", []string{"json"}},
		{"multiple formats", "svg,json,dot", []string{"svg", "json", "dot"}},
		{"spaces and blanks", " svg , ,json", []string{"svg", "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseFormats(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		vmID   string
		want   string
	}{
		{"defaults to vm id", "", "vm-42", "vm-42"},
		{"strips known extension", "out/diagram.svg", "vm-42", "out/diagram"},
		{"keeps unknown extension", "out/diagram.v2", "vm-42", "out/diagram.v2"},
		{"no extension", "out/diagram", "vm-42", "out/diagram"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := basePath(tt.output, tt.vmID); got != tt.want {
				t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.vmID, got, tt.want)
			}
		})
	}
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		formats []string
		want    map[string]string
	}{
		{
			name:    "single format uses output as is",
			output:  "diagram.out",
			formats: []string{"svg"},
			want:    map[string]string{"svg": "diagram.out"},
		},
		{
			name:    "single format without output",
			formats: []string{"json"},
			want:    map[string]string{"json": "vm-42.json"},
		},
		{
			name:    "several formats share a base",
			output:  "out/vm.svg",
			formats: []string{"svg", "json", "graphviz"},
			want: map[string]string{
				"svg":      "out/vm.svg",
				"json":     "out/vm.json",
				"graphviz": "out/vm.graphviz.svg",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputPaths(tt.output, "vm-42", tt.formats); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("outputPaths() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRenderCommand(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	out := filepath.Join(tmp, "out", "vm-42")

	root := New(io.Discard, log.InfoLevel).RootCommand()
	root.SetOut(io.Discard)
	root.SetArgs([]string{
		"render", "vm-42",
		"--file", "testdata",
		"--cache", "none",
		"--explode",
		"--format", "svg,json,dot",
		"-o", out,
	})
	if err := root.Execute(); err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, ext := range []string{".svg", ".json", ".dot"} {
		if _, err := os.Stat(out + ext); err != nil {
			t.Errorf("missing %s output: %v", ext, err)
		}
	}

	data, err := os.ReadFile(out + ".json")
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Direction string            `json:"direction"`
		Nodes     []json.RawMessage `json:"nodes"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode json output: %v", err)
	}
	if len(doc.Nodes) != 11 {
		t.Errorf("nodes = %d, want 11", len(doc.Nodes))
	}
	if doc.Direction != "LR" {
		t.Errorf("direction = %q, want LR", doc.Direction)
	}

	svg, err := os.ReadFile(out + ".svg")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("svg output is not an svg document")
	}
}

func TestRenderCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no vm and no file", []string{"render"}},
		{"bad format", []string{"render", "vm-42", "--file", "testdata", "--format", "pdf"}},
		{"bad direction", []string{"render", "vm-42", "--file", "testdata", "--direction", "RL"}},
		{"stdout with several formats", []string{"render", "vm-42", "--file", "testdata", "--format", "svg,json", "-o", "-"}},
		{"unknown vm", []string{"render", "vm-404", "--file", "testdata", "--cache", "none"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CONFIG_HOME", t.TempDir())
			root := New(io.Discard, log.InfoLevel).RootCommand()
			root.SetOut(io.Discard)
			root.SetErr(io.Discard)
			root.SetArgs(tt.args)
			if err := root.Execute(); err == nil {
				t.Errorf("render %v: expected error", tt.args)
			}
		})
	}
}
