// Package pipeline runs the full cellmap transformation: config document in,
// resolved tree and per-site cell layouts out.
//
// Both the CLI and the HTTP API go through [Runner] so that caching, error
// codes and logging behave the same everywhere.
//
// # Stages
//
//  1. Prepare: build the clonal tree, its relation tables and linear chains,
//     normalize clone colours and reshape prevalence records.
//  2. Layout: for every site, threshold and rescale prevalence and generate
//     the cell layout. Sites run in parallel, each with its own random
//     stream derived from the seed and the site id.
//  3. Render (optional): turn a [Result] into SVG, PNG, PDF, DOT or JSON
//     artifacts.
//
// A malformed tree, invalid colours or invalid geometry abort the run. A
// failure at one site is recorded in [Result.SiteErrors] and the remaining
// sites are still laid out.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, cfg, pipeline.Options{Workers: 4})
//	if err != nil {
//	    return err
//	}
//	for _, layout := range result.Sites {
//	    fmt.Println(layout.Site, layout.Counts())
//	}
package pipeline

import (
	"fmt"
	"io"
	"runtime"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cellmap/pkg/cache"
	"github.com/matzehuels/cellmap/pkg/cellmap"
	"github.com/matzehuels/cellmap/pkg/errors"
	"github.com/matzehuels/cellmap/pkg/palette"
	"github.com/matzehuels/cellmap/pkg/prevalence"
	"github.com/matzehuels/cellmap/pkg/tree"
)

// Options controls a pipeline run. Document-level settings (geometry, seed)
// live in the config; these are per-run overrides.
type Options struct {
	// Workers bounds parallel site layout. Zero means GOMAXPROCS.
	Workers int `json:"workers,omitempty"`

	// Sites restricts layout to the listed sites, in the given order. Empty
	// means every site in first-appearance order.
	Sites []string `json:"sites,omitempty"`

	// RejectDuplicates fails the run on a repeated (site, clone) record
	// instead of letting the last value win.
	RejectDuplicates bool `json:"reject_duplicates,omitempty"`

	// Seed overrides the config seed when non-zero.
	Seed uint64 `json:"seed,omitempty"`

	// Refresh skips the cache lookup. The fresh result is still stored.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`
}

// SetDefaults fills unset options.
func (o *Options) SetDefaults() {
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// LayoutKeyOpts returns the cache key options for a run with seed.
func (o *Options) LayoutKeyOpts(seed uint64) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Seed:             seed,
		Sites:            o.Sites,
		RejectDuplicates: o.RejectDuplicates,
	}
}

// Result is everything a run produces.
type Result struct {
	ID         string           `json:"id"`
	ConfigHash string           `json:"config_hash"`
	LayoutKey  string           `json:"layout_key,omitempty"` // empty when the result was not cached
	RootID     string           `json:"root_id"`
	Seed       uint64           `json:"seed"`
	Geometry   cellmap.Geometry `json:"geometry"`

	// Tree is rebuilt from Edges after decoding; see Restore.
	Tree      *tree.Tree      `json:"-"`
	Edges     []tree.Edge     `json:"tree_edges"`
	Relations *tree.Relations `json:"relations"`
	Chains    *tree.Chains    `json:"chains"`

	Clones     []string                    `json:"clones"`
	Colours    palette.Map                 `json:"colours"`
	Prevalence map[string]*prevalence.Site `json:"prevalence"`
	Duplicates []prevalence.Record         `json:"duplicates,omitempty"`

	Sites      []*cellmap.Layout `json:"sites"`
	SiteErrors []SiteError       `json:"site_errors,omitempty"`

	Stats     Stats     `json:"stats"`
	CacheInfo CacheInfo `json:"-"`
}

// Layout returns the layout of site.
func (r *Result) Layout(site string) (*cellmap.Layout, bool) {
	i := slices.IndexFunc(r.Sites, func(l *cellmap.Layout) bool { return l.Site == site })
	if i < 0 {
		return nil, false
	}
	return r.Sites[i], true
}

// Restore rebuilds the fields that are not serialized. It must be called
// after decoding a Result from JSON.
func (r *Result) Restore() error {
	t, err := tree.Build(r.Edges, r.RootID)
	if err != nil {
		return errors.Wrap(errors.ErrCodeMalformedTree, err, "restore tree")
	}
	r.Tree = t
	if r.Relations == nil {
		r.Relations = tree.NewRelations(t.Root())
	}
	if r.Chains == nil {
		r.Chains = tree.LinearChains(t.Root())
	}
	return nil
}

// SiteError records why one site could not be laid out.
type SiteError struct {
	Site    string      `json:"site_id"`
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (e SiteError) Error() string { return fmt.Sprintf("site %s: %s: %s", e.Site, e.Code, e.Message) }

// Stats contains run statistics.
type Stats struct {
	NodeCount   int           `json:"node_count"`
	SiteCount   int           `json:"site_count"`
	RealCells   int           `json:"real_cells"`
	FakeCells   int           `json:"fake_cells"`
	PrepareTime time.Duration `json:"prepare_time"`
	LayoutTime  time.Duration `json:"layout_time"`
}

// CacheInfo tracks which stages hit the cache.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool
}
