package nodelink

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/cellmap/pkg/tree"
)

func sampleTree(t *testing.T) *tree.Tree {
	t.Helper()
	tr, err := tree.Build([]tree.Edge{
		{Source: "Root", Target: "A"},
		{Source: "A", Target: "B"},
		{Source: "B", Target: "C"},
		{Source: "B", Target: "D"},
	}, tree.DefaultRootID)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return tr
}

func TestToDOT(t *testing.T) {
	tr := sampleTree(t)
	dot := ToDOT(tr, map[string]string{"A": "#000000", "C": "#ffffff"}, Options{})

	for _, want := range []string{
		"digraph G {",
		`"Root" [label="Root"];`,
		`"A" [label="A", fillcolor="#000000", fontcolor="white"];`,
		`"C" [label="C", fillcolor="#ffffff", fontcolor="black"];`,
		`"Root" -> "A";`,
		`"B" -> "D";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "subgraph") {
		t.Error("ToDOT() without chains should not emit clusters")
	}
}

func TestToDOTChains(t *testing.T) {
	tr := sampleTree(t)
	dot := ToDOT(tr, nil, Options{Chains: tree.LinearChains(tr.Root())})

	// Root -> A -> B is the only chain with more than one member.
	if !strings.Contains(dot, `subgraph "cluster_Root"`) {
		t.Errorf("ToDOT() missing Root chain cluster\n%s", dot)
	}
	if strings.Count(dot, "subgraph") != 1 {
		t.Errorf("ToDOT() clusters = %d, want 1", strings.Count(dot, "subgraph"))
	}
}

func TestToDOTDetailed(t *testing.T) {
	tr := sampleTree(t)
	dot := ToDOT(tr, nil, Options{Detailed: true, Relations: tree.NewRelations(tr.Root())})
	if !strings.Contains(dot, `label="B\ndepth: 2\ndescendants: 2"`) {
		t.Errorf("ToDOT() detailed label missing\n%s", dot)
	}
}

func TestTextColour(t *testing.T) {
	tests := map[string]string{
		"#000000": "white",
		"#ffffff": "black",
		"#1f77b4": "white",
		"#ffbb78": "black",
		"bad":     "black",
	}
	for fill, want := range tests {
		if got := textColour(fill); got != want {
			t.Errorf("textColour(%q) = %q, want %q", fill, got, want)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := normalizeViewBox(in)
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50">`
	if !bytes.HasPrefix(out, []byte(want)) {
		t.Errorf("normalizeViewBox() = %s", out)
	}

	plain := []byte(`<svg><g/></svg>`)
	if !bytes.Equal(normalizeViewBox(plain), plain) {
		t.Error("normalizeViewBox() should leave SVG without viewBox untouched")
	}
}

func TestRenderSVG(t *testing.T) {
	tr := sampleTree(t)
	svg, err := RenderSVG(ToDOT(tr, nil, Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error = %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Error("RenderSVG() output is not SVG")
	}
}
