// Package tree builds the clonal phylogeny used by cell-map visualizations and
// derives the lineage relations the rendering layer highlights.
//
// # Overview
//
// A clonal tree arrives as a flat list of parent → child edges. [Build] turns
// that list into a rooted hierarchy of [Node] values, creating each node the
// first time its identifier is referenced and reusing it afterwards. Children
// keep the order in which their edges appear in the input.
//
//	t, err := tree.Build([]tree.Edge{
//	    {Source: "Root", Target: "A"},
//	    {Source: "A", Target: "B"},
//	    {Source: "A", Target: "C"},
//	}, tree.DefaultRootID)
//
// # Structural Errors
//
// Build rejects edge lists that do not describe a single rooted tree. All of
// these errors wrap [ErrMalformedTree]:
//
//   - [ErrRootNotFound]: no edge mentions the root identifier
//   - [ErrCycle]: the edges contain a directed cycle
//   - [ErrRootHasParent]: an edge points at the root
//   - [ErrMultipleParents]: a node is the target of more than one edge
//   - [ErrUnreachable]: a node is not reachable from the root
//
// # Relations
//
// [NewRelations] computes, for every node, its transitive descendants and
// ancestors, its direct descendants and direct ancestor, and its siblings.
// Ancestors are derived by inverting the descendant table, so
// y ∈ Descendants[x] exactly when x ∈ Ancestors[y].
//
// Siblings are deliberately broad: at every node, the whole set of its
// descendants is treated as one group of mutual siblings. Cousins, and nodes
// in the same subtree, are therefore siblings of each other, not only the
// direct children of one parent.
//
// # Linear Chains
//
// [LinearChains] groups maximal unbranched runs of single-child nodes. The
// renderer uses chains to draw collinear lineage segments as one unit.
//
// # Concurrency
//
// A built [Tree] and its [Relations] are read-only and safe for concurrent
// reads. Use [Tree.Clone] when a consumer needs to mutate nodes.
package tree
