package pipeline

import (
	"context"
	stderrors "errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/cellmap/pkg/cellmap"
	"github.com/matzehuels/cellmap/pkg/errors"
	"github.com/matzehuels/cellmap/pkg/observability"
	"github.com/matzehuels/cellmap/pkg/prevalence"
)

type siteOutcome struct {
	site   *prevalence.Site
	layout *cellmap.Layout
	err    error
}

// LayoutSites normalizes and lays out each site. Sites are independent:
// a failure at one is returned in its outcome and does not stop the others.
// Only context cancellation aborts the whole stage.
func LayoutSites(ctx context.Context, in *Inputs, sites []string, geom cellmap.Geometry, seed uint64, opts Options) (map[string]*prevalence.Site, []*cellmap.Layout, []SiteError, error) {
	opts.SetDefaults()
	outcomes := make([]siteOutcome, len(sites))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, id := range sites {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = layoutSite(gctx, in, id, geom, seed)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}

	normalized := make(map[string]*prevalence.Site, len(sites))
	var layouts []*cellmap.Layout
	var siteErrs []SiteError
	for i, id := range sites {
		o := outcomes[i]
		if o.site != nil {
			normalized[id] = o.site
		}
		if o.err != nil {
			se := newSiteError(id, o.err)
			siteErrs = append(siteErrs, se)
			opts.Logger.Warn("site skipped", "site", id, "code", se.Code, "error", se.Message)
			continue
		}
		layouts = append(layouts, o.layout)
		opts.Logger.Debug("laid out site",
			"site", id,
			"genotypes", len(o.layout.Genotypes),
			"real", o.layout.RealCells(),
			"fake", o.layout.FakeCells())
	}
	return normalized, layouts, siteErrs, nil
}

func layoutSite(ctx context.Context, in *Inputs, id string, geom cellmap.Geometry, seed uint64) siteOutcome {
	hooks := observability.Pipeline()
	hooks.OnSiteStart(ctx, id)
	start := time.Now()

	site, err := in.Table.Normalize(id, geom.NCells)
	if err != nil {
		hooks.OnSiteComplete(ctx, id, 0, 0, time.Since(start), err)
		return siteOutcome{err: err}
	}
	l, err := cellmap.Generate(ctx, cellmap.SiteRand(seed, id), site, in.Colours, geom)
	if err != nil {
		hooks.OnSiteComplete(ctx, id, 0, 0, time.Since(start), err)
		return siteOutcome{site: site, err: err}
	}
	hooks.OnSiteComplete(ctx, id, l.RealCells(), l.FakeCells(), time.Since(start), nil)
	return siteOutcome{site: site, layout: l}
}

// newSiteError maps a domain error onto an error code.
func newSiteError(site string, err error) SiteError {
	code := errors.ErrCodeInternal
	switch {
	case stderrors.Is(err, prevalence.ErrEmptySite):
		code = errors.ErrCodeDegeneratePrevalence
	case stderrors.Is(err, prevalence.ErrUnknownSite):
		code = errors.ErrCodeNotFound
	case stderrors.Is(err, prevalence.ErrInvalidCellCount), stderrors.Is(err, cellmap.ErrInvalidGeometry):
		code = errors.ErrCodeInvalidGeometry
	case stderrors.Is(err, cellmap.ErrMissingColour):
		code = errors.ErrCodeInvalidColour
	}
	return SiteError{Site: site, Code: code, Message: err.Error()}
}
