package tree

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultRootID is the identifier of the distinguished root node.
const DefaultRootID = "Root"

var (
	// ErrMalformedTree is wrapped by every structural error returned by [Build].
	ErrMalformedTree = errors.New("malformed tree")

	// ErrEmptyID is returned when an edge has an empty source or target.
	ErrEmptyID = fmt.Errorf("%w: edge endpoint must not be empty", ErrMalformedTree)

	// ErrRootNotFound is returned when no edge references the root identifier.
	ErrRootNotFound = fmt.Errorf("%w: root node not found", ErrMalformedTree)

	// ErrCycle is returned when the edge list contains a directed cycle.
	// Cycles are detected with depth-first search using white/gray/black
	// colouring before any relation is computed.
	ErrCycle = fmt.Errorf("%w: edges contain a cycle", ErrMalformedTree)

	// ErrRootHasParent is returned when an edge targets the root node.
	ErrRootHasParent = fmt.Errorf("%w: root node has an incoming edge", ErrMalformedTree)

	// ErrMultipleParents is returned when a node is the target of more than
	// one edge.
	ErrMultipleParents = fmt.Errorf("%w: node has more than one parent", ErrMalformedTree)

	// ErrUnreachable is returned when a node cannot be reached from the root.
	ErrUnreachable = fmt.Errorf("%w: node not reachable from root", ErrMalformedTree)
)

// Edge is a directed parent → child link in the clonal tree.
type Edge struct {
	Source string `json:"source" toml:"source" yaml:"source" validate:"required"`
	Target string `json:"target" toml:"target" yaml:"target" validate:"required"`
}

// Node is a clone in the hierarchy. Children keep edge input order.
type Node struct {
	ID       string
	Children []*Node
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// ChildIDs returns the identifiers of the node's immediate children in order.
func (n *Node) ChildIDs() []string {
	ids := make([]string, len(n.Children))
	for i, c := range n.Children {
		ids[i] = c.ID
	}
	return ids
}

// Tree is a rooted clonal hierarchy built from an edge list.
//
// The zero value is not usable; create trees with [Build].
type Tree struct {
	root  *Node
	nodes map[string]*Node
	ids   []string // first-reference order
	edges []Edge
}

// Build converts an ordered edge list into a rooted tree.
//
// Every identifier that appears in the list becomes exactly one node, created
// on first reference. For each edge the target is appended to the source's
// children. The node named rootID becomes the root; an empty rootID selects
// [DefaultRootID].
//
// Build returns an error wrapping [ErrMalformedTree] when the edges do not
// describe a single tree rooted at rootID.
func Build(edges []Edge, rootID string) (*Tree, error) {
	if rootID == "" {
		rootID = DefaultRootID
	}

	t := &Tree{
		nodes: make(map[string]*Node, len(edges)+1),
		edges: make([]Edge, 0, len(edges)),
	}
	parents := make(map[string][]string, len(edges))

	for i, e := range edges {
		if e.Source == "" || e.Target == "" {
			return nil, fmt.Errorf("edge %d: %w", i, ErrEmptyID)
		}
		src := t.lookupOrCreate(e.Source)
		dst := t.lookupOrCreate(e.Target)
		src.Children = append(src.Children, dst)
		parents[e.Target] = append(parents[e.Target], e.Source)
		t.edges = append(t.edges, e)
	}

	if cycle := t.findCycle(); cycle != nil {
		return nil, fmt.Errorf("%w: %s", ErrCycle, strings.Join(cycle, " -> "))
	}

	root, ok := t.nodes[rootID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRootNotFound, rootID)
	}
	if p := parents[rootID]; len(p) > 0 {
		return nil, fmt.Errorf("%w: %q -> %q", ErrRootHasParent, p[0], rootID)
	}
	for _, id := range t.ids {
		if p := parents[id]; len(p) > 1 {
			return nil, fmt.Errorf("%w: %q has parents %s", ErrMultipleParents, id, strings.Join(p, ", "))
		}
	}
	t.root = root

	seen := make(map[string]bool, len(t.nodes))
	t.Walk(func(n *Node, _ int) { seen[n.ID] = true })
	for _, id := range t.ids {
		if !seen[id] {
			return nil, fmt.Errorf("%w: %q", ErrUnreachable, id)
		}
	}

	return t, nil
}

func (t *Tree) lookupOrCreate(id string) *Node {
	if n, ok := t.nodes[id]; ok {
		return n
	}
	n := &Node{ID: id}
	t.nodes[id] = n
	t.ids = append(t.ids, id)
	return n
}

// findCycle returns the node path of the first cycle found, or nil.
func (t *Tree) findCycle() []string {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(t.nodes))
	var path, cycle []string

	var dfs func(n *Node) bool
	dfs = func(n *Node) bool {
		color[n.ID] = gray
		path = append(path, n.ID)
		for _, c := range n.Children {
			switch color[c.ID] {
			case white:
				if dfs(c) {
					return true
				}
			case gray:
				start := len(path) - 1
				for path[start] != c.ID {
					start--
				}
				cycle = append(append([]string{}, path[start:]...), c.ID)
				return true
			}
		}
		path = path[:len(path)-1]
		color[n.ID] = black
		return false
	}

	for _, id := range t.ids {
		if color[id] == white && dfs(t.nodes[id]) {
			return cycle
		}
	}
	return nil
}

// Root returns the root node.
func (t *Tree) Root() *Node { return t.root }

// Node returns the node with the given identifier.
func (t *Tree) Node(id string) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// IDs returns every node identifier in first-reference order.
// The returned slice is a copy.
func (t *Tree) IDs() []string { return append([]string(nil), t.ids...) }

// Edges returns a copy of the edges the tree was built from.
func (t *Tree) Edges() []Edge { return append([]Edge(nil), t.edges...) }

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Walk visits every node reachable from the root in pre-order, passing the
// node's depth (0 for the root).
func (t *Tree) Walk(fn func(n *Node, depth int)) {
	var visit func(n *Node, depth int)
	visit = func(n *Node, depth int) {
		fn(n, depth)
		for _, c := range n.Children {
			visit(c, depth+1)
		}
	}
	if t.root != nil {
		visit(t.root, 0)
	}
}

// Depths returns the depth of every node, with the root at 0.
func (t *Tree) Depths() map[string]int {
	depths := make(map[string]int, len(t.nodes))
	t.Walk(func(n *Node, d int) { depths[n.ID] = d })
	return depths
}

// Leaves returns the identifiers of childless nodes in pre-order.
func (t *Tree) Leaves() []string {
	var leaves []string
	t.Walk(func(n *Node, _ int) {
		if n.IsLeaf() {
			leaves = append(leaves, n.ID)
		}
	})
	return leaves
}

// Clone returns a deep copy of the tree. Mutating nodes of the copy does not
// affect the original.
func (t *Tree) Clone() *Tree {
	c := &Tree{
		nodes: make(map[string]*Node, len(t.nodes)),
		ids:   append([]string(nil), t.ids...),
		edges: append([]Edge(nil), t.edges...),
	}
	for _, id := range t.ids {
		c.nodes[id] = &Node{ID: id}
	}
	for _, id := range t.ids {
		src := t.nodes[id]
		dst := c.nodes[id]
		dst.Children = make([]*Node, len(src.Children))
		for i, child := range src.Children {
			dst.Children[i] = c.nodes[child.ID]
		}
	}
	if t.root != nil {
		c.root = c.nodes[t.root.ID]
	}
	return c
}
