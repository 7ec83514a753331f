package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/matzehuels/cellmap/pkg/cache"
	"github.com/matzehuels/cellmap/pkg/errors"
	"github.com/matzehuels/cellmap/pkg/observability"
	"github.com/matzehuels/cellmap/pkg/render"
	cellsvg "github.com/matzehuels/cellmap/pkg/render/cellmap"
	"github.com/matzehuels/cellmap/pkg/render/nodelink"
)

// Artifact kinds.
const (
	KindCellmap = "cellmap"
	KindTree    = "tree"
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats lists the formats each kind supports.
var ValidFormats = map[string]map[string]bool{
	KindCellmap: {FormatSVG: true, FormatPNG: true, FormatPDF: true, FormatJSON: true},
	KindTree:    {FormatSVG: true, FormatPNG: true, FormatPDF: true, FormatDOT: true},
}

// RenderOptions controls artifact generation.
type RenderOptions struct {
	Kind     string   `json:"kind,omitempty"`
	Formats  []string `json:"formats,omitempty"`
	Columns  int      `json:"columns,omitempty"`
	Legend   bool     `json:"legend,omitempty"`
	HideFake bool     `json:"hide_fake,omitempty"`
	Chains   bool     `json:"chains,omitempty"`   // tree: cluster linear chains
	Detailed bool     `json:"detailed,omitempty"` // tree: depth and descendant counts
	Title    string   `json:"title,omitempty"`
	Scale    float64  `json:"scale,omitempty"` // PNG only
}

// Validate applies defaults and checks kind and formats.
func (o *RenderOptions) Validate() error {
	if o.Kind == "" {
		o.Kind = KindCellmap
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if math.IsNaN(o.Scale) || math.IsInf(o.Scale, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "invalid scale %g", o.Scale)
	}
	if o.Scale <= 0 {
		o.Scale = 2.0
	}
	valid, ok := ValidFormats[o.Kind]
	if !ok {
		return errors.New(errors.ErrCodeInvalidInput, "invalid kind %q (must be cellmap or tree)", o.Kind)
	}
	for _, f := range o.Formats {
		if !valid[f] {
			return errors.New(errors.ErrCodeInvalidFormat, "format %q is not supported for %s output", f, o.Kind)
		}
	}
	return nil
}

func (o *RenderOptions) artifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Kind:     o.Kind,
		Format:   format,
		Columns:  o.Columns,
		Legend:   o.Legend,
		HideFake: o.HideFake,
		Chains:   o.Chains,
		Detailed: o.Detailed,
		Title:    o.Title,
		Scale:    o.Scale,
	}
}

// Render produces the requested artifacts for res, keyed by format.
func Render(res *Result, opts RenderOptions) (map[string][]byte, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if res.Tree == nil {
		if err := res.Restore(); err != nil {
			return nil, err
		}
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error
		if opts.Kind == KindTree {
			data, err = renderTree(res, opts, format)
		} else {
			data, err = renderCellmap(res, opts, format)
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s %s", opts.Kind, format)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderCellmap(res *Result, opts RenderOptions, format string) ([]byte, error) {
	if format == FormatJSON {
		return json.MarshalIndent(res, "", "  ")
	}

	svgOpts := []cellsvg.SVGOption{}
	if opts.Columns > 0 {
		svgOpts = append(svgOpts, cellsvg.WithColumns(opts.Columns))
	}
	if opts.Legend {
		svgOpts = append(svgOpts, cellsvg.WithLegend(res.Colours.List(res.Clones)))
	}
	if opts.HideFake {
		svgOpts = append(svgOpts, cellsvg.WithoutFakeCells())
	}
	if opts.Title != "" {
		svgOpts = append(svgOpts, cellsvg.WithTitle(opts.Title))
	}
	svg := cellsvg.RenderSVG(res.Sites, svgOpts...)
	return convert(svg, format, opts.Scale)
}

func renderTree(res *Result, opts RenderOptions, format string) ([]byte, error) {
	nlOpts := nodelink.Options{Detailed: opts.Detailed, Relations: res.Relations}
	if opts.Chains {
		nlOpts.Chains = res.Chains
	}
	dot := nodelink.ToDOT(res.Tree, res.Colours, nlOpts)
	if format == FormatDOT {
		return []byte(dot), nil
	}
	svg, err := nodelink.RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return convert(svg, format, opts.Scale)
}

func convert(svg []byte, format string, scale float64) ([]byte, error) {
	switch format {
	case FormatSVG:
		return svg, nil
	case FormatPNG:
		return render.ToPNG(svg, scale)
	case FormatPDF:
		return render.ToPDF(svg)
	}
	return nil, fmt.Errorf("unsupported format: %s", format)
}

// RenderWithCacheInfo renders with artifact caching and reports whether
// every artifact came from the cache. Results that were not cached
// themselves (LayoutKey empty) are rendered without caching.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res *Result, opts RenderOptions) (map[string][]byte, bool, error) {
	if err := opts.Validate(); err != nil {
		return nil, false, err
	}
	if res.LayoutKey == "" {
		artifacts, err := Render(res, opts)
		return artifacts, false, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(res.LayoutKey, opts.artifactKeyOpts(format))
		if key == "" {
			break
		}
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			observability.Cache().OnCacheMiss(ctx, "artifact")
			break
		}
		observability.Cache().OnCacheHit(ctx, "artifact")
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	rendered, err := Render(res, opts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		if key := r.Keyer.ArtifactKey(res.LayoutKey, opts.artifactKeyOpts(format)); key != "" {
			r.store(ctx, "artifact", key, data, cache.TTLArtifact)
		}
	}
	return rendered, false, nil
}
