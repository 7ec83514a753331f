package tree

import (
	"errors"
	"slices"
	"testing"
)

func sampleEdges() []Edge {
	return []Edge{
		{Source: "Root", Target: "A"},
		{Source: "A", Target: "B"},
		{Source: "A", Target: "C"},
		{Source: "C", Target: "D"},
	}
}

func TestBuild(t *testing.T) {
	tr, err := Build(sampleEdges(), "")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if tr.Root().ID != DefaultRootID {
		t.Errorf("Root().ID = %q, want %q", tr.Root().ID, DefaultRootID)
	}
	if tr.Len() != 5 {
		t.Errorf("Len() = %d, want 5", tr.Len())
	}

	wantIDs := []string{"Root", "A", "B", "C", "D"}
	if got := tr.IDs(); !slices.Equal(got, wantIDs) {
		t.Errorf("IDs() = %v, want %v", got, wantIDs)
	}

	a, ok := tr.Node("A")
	if !ok {
		t.Fatal("Node(A) not found")
	}
	if got := a.ChildIDs(); !slices.Equal(got, []string{"B", "C"}) {
		t.Errorf("A children = %v, want [B C]", got)
	}
}

func TestBuildReusesNodes(t *testing.T) {
	tr, err := Build(sampleEdges(), "Root")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	a, _ := tr.Node("A")
	if tr.Root().Children[0] != a {
		t.Error("root child A should be the same node returned by Node(A)")
	}
	c, _ := tr.Node("C")
	if a.Children[1] != c {
		t.Error("A's second child should be the shared node C")
	}
}

func TestBuildCustomRoot(t *testing.T) {
	tr, err := Build([]Edge{{Source: "N", Target: "X"}}, "N")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if tr.Root().ID != "N" {
		t.Errorf("Root().ID = %q, want N", tr.Root().ID)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name  string
		edges []Edge
		want  error
	}{
		{"no edges", nil, ErrRootNotFound},
		{"missing root", []Edge{{Source: "A", Target: "B"}}, ErrRootNotFound},
		{"empty source", []Edge{{Source: "", Target: "B"}}, ErrEmptyID},
		{"empty target", []Edge{{Source: "Root", Target: ""}}, ErrEmptyID},
		{"self loop", []Edge{{Source: "Root", Target: "A"}, {Source: "A", Target: "A"}}, ErrCycle},
		{
			"cycle below root",
			[]Edge{{Source: "Root", Target: "A"}, {Source: "A", Target: "B"}, {Source: "B", Target: "A"}},
			ErrCycle,
		},
		{
			"detached cycle",
			[]Edge{{Source: "Root", Target: "A"}, {Source: "X", Target: "Y"}, {Source: "Y", Target: "X"}},
			ErrCycle,
		},
		{"root has parent", []Edge{{Source: "P", Target: "Root"}}, ErrRootHasParent},
		{
			"multiple parents",
			[]Edge{{Source: "Root", Target: "A"}, {Source: "Root", Target: "B"}, {Source: "A", Target: "C"}, {Source: "B", Target: "C"}},
			ErrMultipleParents,
		},
		{
			"unreachable",
			[]Edge{{Source: "Root", Target: "A"}, {Source: "X", Target: "Y"}},
			ErrUnreachable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.edges, DefaultRootID)
			if !errors.Is(err, tt.want) {
				t.Errorf("Build() error = %v, want %v", err, tt.want)
			}
			if !errors.Is(err, ErrMalformedTree) {
				t.Errorf("Build() error = %v, should wrap ErrMalformedTree", err)
			}
		})
	}
}

func TestBuildCycleMessageNamesPath(t *testing.T) {
	_, err := Build([]Edge{
		{Source: "Root", Target: "A"},
		{Source: "A", Target: "B"},
		{Source: "B", Target: "A"},
	}, DefaultRootID)
	if err == nil {
		t.Fatal("expected error")
	}
	want := "malformed tree: edges contain a cycle: A -> B -> A"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWalkDepthsLeaves(t *testing.T) {
	tr, err := Build(sampleEdges(), DefaultRootID)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	var order []string
	tr.Walk(func(n *Node, _ int) { order = append(order, n.ID) })
	if want := []string{"Root", "A", "B", "C", "D"}; !slices.Equal(order, want) {
		t.Errorf("Walk order = %v, want %v", order, want)
	}

	depths := tr.Depths()
	for id, want := range map[string]int{"Root": 0, "A": 1, "B": 2, "C": 2, "D": 3} {
		if depths[id] != want {
			t.Errorf("Depths()[%s] = %d, want %d", id, depths[id], want)
		}
	}

	if got := tr.Leaves(); !slices.Equal(got, []string{"B", "D"}) {
		t.Errorf("Leaves() = %v, want [B D]", got)
	}
}

func TestClone(t *testing.T) {
	tr, err := Build(sampleEdges(), DefaultRootID)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	c := tr.Clone()
	if c.Root() == tr.Root() {
		t.Fatal("Clone() should not share the root node")
	}

	ca, _ := c.Node("A")
	ca.Children = ca.Children[:1]

	a, _ := tr.Node("A")
	if len(a.Children) != 2 {
		t.Errorf("original A children = %d after mutating clone, want 2", len(a.Children))
	}
	if !slices.Equal(c.IDs(), tr.IDs()) {
		t.Errorf("Clone().IDs() = %v, want %v", c.IDs(), tr.IDs())
	}
}
