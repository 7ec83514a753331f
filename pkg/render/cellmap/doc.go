// Package cellmap renders site layouts as an SVG grid.
//
// Each site gets one panel the size of its grid cell: the real-cell circle
// is outlined, real cells are drawn in their genotype colour, and fake cells
// are drawn as pale filler. An optional legend lists every clone colour.
//
//	svg := cellmap.RenderSVG(layouts,
//	    cellmap.WithColumns(3),
//	    cellmap.WithLegend(colours.List(clones)),
//	)
package cellmap
