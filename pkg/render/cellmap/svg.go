package cellmap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"

	layout "github.com/matzehuels/cellmap/pkg/cellmap"
	"github.com/matzehuels/cellmap/pkg/palette"
)

const (
	defaultColumns    = 4
	defaultCellRadius = 4.0
	labelHeight       = 28.0
	legendRowHeight   = 22.0
	legendItemWidth   = 120.0
	fakeFill          = "#e6e6e6"
	boundaryStroke    = "#9a9a9a"
)

// SVGOption configures RenderSVG.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	columns    int
	cellRadius float64
	hideFake   bool
	legend     []palette.CloneColour
	title      string
}

// WithColumns sets the number of panels per row.
func WithColumns(n int) SVGOption { return func(r *svgRenderer) { r.columns = n } }

// WithCellRadius sets the radius of each drawn cell.
func WithCellRadius(radius float64) SVGOption {
	return func(r *svgRenderer) { r.cellRadius = radius }
}

// WithoutFakeCells omits filler cells.
func WithoutFakeCells() SVGOption { return func(r *svgRenderer) { r.hideFake = true } }

// WithLegend adds a colour legend below the panels.
func WithLegend(colours []palette.CloneColour) SVGOption {
	return func(r *svgRenderer) { r.legend = colours }
}

// WithTitle adds a title above the panels.
func WithTitle(title string) SVGOption { return func(r *svgRenderer) { r.title = title } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{columns: defaultColumns, cellRadius: defaultCellRadius}
	for _, opt := range opts {
		opt(&r)
	}
	if r.columns < 1 {
		r.columns = defaultColumns
	}
	return r
}

// RenderSVG draws layouts left to right, top to bottom. All panels use the
// geometry of the first layout.
func RenderSVG(layouts []*layout.Layout, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	var buf bytes.Buffer
	if len(layouts) == 0 {
		buf.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 0 0" width="0" height="0">` + "\n</svg>\n")
		return buf.Bytes()
	}

	geom := layouts[0].Geometry
	cols := min(r.columns, len(layouts))
	rows := int(math.Ceil(float64(len(layouts)) / float64(cols)))

	top := 0.0
	if r.title != "" {
		top = labelHeight
	}
	panelH := geom.Height + labelHeight
	width := float64(cols) * geom.Width
	height := top + float64(rows)*panelH + r.legendHeight(width)

	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	buf.WriteString(`  <rect width="100%" height="100%" fill="white"/>` + "\n")

	if r.title != "" {
		fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" text-anchor="middle" font-family="sans-serif" font-size="18" font-weight="bold">%s</text>`+"\n",
			width/2, labelHeight*0.7, escape(r.title))
	}

	for i, l := range layouts {
		x := float64(i%cols) * geom.Width
		y := top + float64(i/cols)*panelH
		r.renderPanel(&buf, l, x, y)
	}

	if len(r.legend) > 0 {
		r.renderLegend(&buf, width, top+float64(rows)*panelH)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) renderPanel(buf *bytes.Buffer, l *layout.Layout, x, y float64) {
	g := l.Geometry
	cx, cy := g.Center()

	fmt.Fprintf(buf, `  <g class="site" id="site-%s" transform="translate(%.1f,%.1f)">`+"\n", escape(l.Site), x, y)
	fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" text-anchor="middle" font-family="sans-serif" font-size="14">%s</text>`+"\n",
		cx, labelHeight*0.7, escape(l.Site))
	fmt.Fprintf(buf, `    <g transform="translate(0,%.1f)">`+"\n", labelHeight)
	fmt.Fprintf(buf, `      <circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="%s" stroke-dasharray="4 3"/>`+"\n",
		cx, cy, g.Radius(), boundaryStroke)

	for _, v := range l.Vertices {
		if !v.Real {
			if r.hideFake {
				continue
			}
			fmt.Fprintf(buf, `      <circle cx="%.2f" cy="%.2f" r="%.1f" fill="%s"/>`+"\n", v.X, v.Y, r.cellRadius, fakeFill)
			continue
		}
		fmt.Fprintf(buf, `      <circle class="cell" cx="%.2f" cy="%.2f" r="%.1f" fill="%s" data-genotype="%s"/>`+"\n",
			v.X, v.Y, r.cellRadius, v.Colour, escape(v.Genotype))
	}
	buf.WriteString("    </g>\n  </g>\n")
}

func (r *svgRenderer) legendHeight(width float64) float64 {
	if len(r.legend) == 0 {
		return 0
	}
	perRow := max(1, int(width/legendItemWidth))
	rows := (len(r.legend) + perRow - 1) / perRow
	return float64(rows)*legendRowHeight + legendRowHeight/2
}

func (r *svgRenderer) renderLegend(buf *bytes.Buffer, width, y float64) {
	perRow := max(1, int(width/legendItemWidth))
	buf.WriteString(`  <g class="legend">` + "\n")
	for i, cc := range r.legend {
		lx := float64(i%perRow)*legendItemWidth + 10
		ly := y + float64(i/perRow)*legendRowHeight + legendRowHeight/2
		fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="12" height="12" fill="%s"/>`+"\n", lx, ly, cc.Colour)
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-family="sans-serif" font-size="12">%s</text>`+"\n", lx+18, ly+10, escape(cc.CloneID))
	}
	buf.WriteString("  </g>\n")
}

func escape(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
