package tree

import (
	"encoding/json"
	"maps"
	"slices"
)

// Set is an unordered set of node identifiers.
type Set map[string]struct{}

// Add inserts id into the set.
func (s Set) Add(id string) { s[id] = struct{}{} }

// Has reports whether id is in the set.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in ascending order.
func (s Set) Sorted() []string { return slices.Sorted(maps.Keys(s)) }

// MarshalJSON encodes the set as a sorted array.
func (s Set) MarshalJSON() ([]byte, error) { return json.Marshal(s.Sorted()) }

// UnmarshalJSON decodes an array of identifiers.
func (s *Set) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = make(Set, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return nil
}

// Relations holds the lineage tables of a tree. Every node reachable from the
// root has an entry in each table except DirectAncestor, which has no entry
// for the root. A node never appears in its own sets.
//
// Relations are computed once by [NewRelations] and must not be modified.
type Relations struct {
	Descendants       map[string]Set      `json:"descendants"`
	Ancestors         map[string]Set      `json:"ancestors"`
	DirectDescendants map[string][]string `json:"direct_descendants"`
	DirectAncestor    map[string]string   `json:"direct_ancestor"`
	Siblings          map[string]Set      `json:"siblings"`
}

// NewRelations computes every relation table for the hierarchy under root.
func NewRelations(root *Node) *Relations {
	r := &Relations{
		Descendants:       make(map[string]Set),
		Ancestors:         make(map[string]Set),
		DirectDescendants: make(map[string][]string),
		DirectAncestor:    make(map[string]string),
		Siblings:          make(map[string]Set),
	}
	if root == nil {
		return r
	}

	r.indexDirect(root, nil)

	for id := range r.DirectDescendants {
		r.Ancestors[id] = Set{}
		r.Siblings[id] = Set{}
	}
	r.indexDescendants(root)
	for id, desc := range r.Descendants {
		for d := range desc {
			r.Ancestors[d].Add(id)
		}
	}
	r.indexSiblings(root)

	return r
}

func (r *Relations) indexDirect(n, parent *Node) {
	r.DirectDescendants[n.ID] = n.ChildIDs()
	if parent != nil {
		r.DirectAncestor[n.ID] = parent.ID
	}
	for _, c := range n.Children {
		r.indexDirect(c, n)
	}
}

func (r *Relations) indexDescendants(n *Node) {
	desc := Set{}
	for _, id := range preorder(n) {
		desc.Add(id)
	}
	r.Descendants[n.ID] = desc
	for _, c := range n.Children {
		r.indexDescendants(c)
	}
}

// indexSiblings registers every pair among the descendants of n as mutual
// siblings, then recurses into the children.
func (r *Relations) indexSiblings(n *Node) {
	if n.IsLeaf() {
		return
	}
	group := preorder(n)
	for _, a := range group {
		for _, b := range group {
			if a != b {
				r.Siblings[a].Add(b)
			}
		}
	}
	for _, c := range n.Children {
		r.indexSiblings(c)
	}
}

// preorder lists every descendant of n (excluding n) in pre-order.
func preorder(n *Node) []string {
	var ids []string
	var visit func(*Node)
	visit = func(m *Node) {
		for _, c := range m.Children {
			ids = append(ids, c.ID)
			visit(c)
		}
	}
	visit(n)
	return ids
}

// IsAncestor reports whether a is a transitive ancestor of d.
func (r *Relations) IsAncestor(a, d string) bool {
	return r.Ancestors[d].Has(a)
}

// Lineage returns the path from the root down to id, inclusive.
func (r *Relations) Lineage(id string) []string {
	path := []string{id}
	for {
		p, ok := r.DirectAncestor[path[0]]
		if !ok {
			return path
		}
		path = append([]string{p}, path...)
	}
}
