package pipeline

import (
	"context"
	stderrors "errors"
	"slices"
	"time"

	"github.com/matzehuels/cellmap/pkg/config"
	"github.com/matzehuels/cellmap/pkg/errors"
	"github.com/matzehuels/cellmap/pkg/observability"
	"github.com/matzehuels/cellmap/pkg/palette"
	"github.com/matzehuels/cellmap/pkg/prevalence"
	"github.com/matzehuels/cellmap/pkg/tree"
)

// Inputs are the resolved, site-independent inputs of a run.
type Inputs struct {
	Tree      *tree.Tree
	Relations *tree.Relations
	Chains    *tree.Chains
	Colours   palette.Map
	Clones    []string
	Table     *prevalence.Table
}

// Prepare builds the tree, relation tables, chains, colours and prevalence
// table from cfg.
func Prepare(ctx context.Context, cfg *config.Config, opts Options) (*Inputs, error) {
	opts.SetDefaults()
	logger := opts.Logger

	hooks := observability.Pipeline()
	hooks.OnTreeStart(ctx, len(cfg.TreeEdges))
	start := time.Now()
	t, err := tree.Build(cfg.TreeEdges, cfg.RootID)
	if err != nil {
		hooks.OnTreeComplete(ctx, 0, time.Since(start), err)
		return nil, errors.Wrap(errors.ErrCodeMalformedTree, err, "build tree")
	}
	hooks.OnTreeComplete(ctx, t.Len(), time.Since(start), nil)

	in := &Inputs{
		Tree:      t,
		Relations: tree.NewRelations(t.Root()),
		Chains:    tree.LinearChains(t.Root()),
	}
	logger.Debug("built tree",
		"root", t.Root().ID,
		"nodes", t.Len(),
		"chains", len(in.Chains.Starts))

	in.Colours, err = palette.FromList(cfg.CloneColours)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidColour, err, "clone colours")
	}

	in.Table, err = prevalence.NewTable(cfg.ClonalPrev, prevalence.Options{RejectDuplicates: opts.RejectDuplicates})
	switch {
	case stderrors.Is(err, prevalence.ErrDuplicateRecord):
		return nil, errors.Wrap(errors.ErrCodeDuplicateRecord, err, "clonal prevalence")
	case err != nil:
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "clonal prevalence")
	}
	for _, d := range in.Table.Duplicates {
		logger.Warn("duplicate prevalence record, last value wins",
			"site", d.SiteID,
			"clone", d.CloneID,
			"clonal_prev", d.ClonalPrev.Float64())
	}

	in.Clones = t.IDs()
	for _, c := range in.Table.Clones() {
		if !slices.Contains(in.Clones, c) {
			in.Clones = append(in.Clones, c)
			logger.Warn("clone has prevalence but is not in the tree", "clone", c)
		}
	}
	if assigned := in.Colours.Assign(in.Clones); len(assigned) > 0 {
		logger.Debug("assigned default colours", "clones", assigned)
	}

	return in, nil
}

// selectSites returns the sites to lay out.
func selectSites(table *prevalence.Table, requested []string) ([]string, error) {
	all := table.Sites()
	if len(requested) == 0 {
		return all, nil
	}
	for _, s := range requested {
		if !slices.Contains(all, s) {
			return nil, errors.New(errors.ErrCodeNotFound, "unknown site %q (have %v)", s, all)
		}
	}
	return requested, nil
}
