// Package nodelink renders a clonal tree as a node-link diagram.
//
// [ToDOT] emits Graphviz DOT with one filled box per clone, coloured with the
// clone's colour, and edges from parent to child. Linear chains can be drawn
// as dashed clusters so single-child runs read as one lineage segment:
//
//	dot := nodelink.ToDOT(t, colours, nodelink.Options{Chains: tree.LinearChains(t.Root())})
//	svg, err := nodelink.RenderSVG(dot)
//
// Rendering uses [github.com/goccy/go-graphviz], which runs Graphviz
// in-process, so no system installation is needed for SVG output.
package nodelink
