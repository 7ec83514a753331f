// Package render holds the output side of cellmap: the clonal tree as a
// node-link diagram and site layouts as SVG panels.
//
//   - [nodelink]: clonal tree → Graphviz DOT → SVG
//   - [cellmap]: site layouts → SVG grid with legend
//
// [ToPDF] and [ToPNG] convert any SVG produced by those packages using the
// external rsvg-convert tool (from librsvg):
//
//	svg := cellmap.RenderSVG(layouts, cellmap.WithLegend(colours))
//	png, err := render.ToPNG(svg, 2.0)
//
// [nodelink]: github.com/matzehuels/cellmap/pkg/render/nodelink
// [cellmap]: github.com/matzehuels/cellmap/pkg/render/cellmap
package render
