package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/cellmap/pkg/tree"
)

// Options configures diagram generation.
type Options struct {
	// Chains, when set, groups every linear chain of two or more clones into
	// a dashed cluster.
	Chains *tree.Chains

	// Detailed adds depth and descendant counts to node labels.
	Detailed bool

	// Relations is required when Detailed is set.
	Relations *tree.Relations
}

// ToDOT converts t to Graphviz DOT. colours maps clone ids to "#rrggbb";
// clones without a colour are drawn white.
func ToDOT(t *tree.Tree, colours map[string]string, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	depths := t.Depths()
	for _, id := range t.IDs() {
		label := id
		if opts.Detailed && opts.Relations != nil {
			label = fmt.Sprintf("%s\ndepth: %d\ndescendants: %d", id, depths[id], len(opts.Relations.Descendants[id]))
		}
		attrs := []string{fmt.Sprintf("label=%q", label)}
		if c, ok := colours[id]; ok {
			attrs = append(attrs, fmt.Sprintf("fillcolor=%q", c), fmt.Sprintf("fontcolor=%q", textColour(c)))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(attrs, ", "))
	}

	if opts.Chains != nil {
		for _, start := range opts.Chains.Starts {
			members := opts.Chains.Members(start)
			if len(members) < 2 {
				continue
			}
			fmt.Fprintf(&buf, "\n  subgraph %q {\n", "cluster_"+start)
			buf.WriteString("    style=dashed;\n    color=grey;\n    label=\"\";\n")
			for _, m := range members {
				fmt.Fprintf(&buf, "    %q;\n", m)
			}
			buf.WriteString("  }\n")
		}
	}

	buf.WriteString("\n")
	for _, e := range t.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// textColour picks black or white text for a "#rrggbb" fill by its
// relative luminance.
func textColour(fill string) string {
	hex := strings.TrimPrefix(fill, "#")
	if len(hex) < 6 {
		return "black"
	}
	r, err1 := strconv.ParseUint(hex[0:2], 16, 8)
	g, err2 := strconv.ParseUint(hex[2:4], 16, 8)
	b, err3 := strconv.ParseUint(hex[4:6], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return "black"
	}
	if 0.299*float64(r)+0.587*float64(g)+0.114*float64(b) < 140 {
		return "white"
	}
	return "black"
}

// RenderSVG renders DOT source to SVG with an in-process Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	return renderFormat(dot, graphviz.SVG)
}

func renderFormat(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if format == graphviz.SVG {
		return normalizeViewBox(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one whose
// width and height match the viewBox, so the diagram scales when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
