package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cellmap/pkg/config"
	"github.com/matzehuels/cellmap/pkg/io"
	"github.com/matzehuels/cellmap/pkg/pipeline"
)

// layoutCommand creates the layout command for computing cell-map layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		csvPath string
		sites   string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [config]",
		Short: "Compute cell-map layouts from a config document",
		Long: `Compute cell-map layouts from a config document.

The config (TOML, YAML or JSON) holds the clonal tree edges, clone colours and
clonal prevalences per site. The layout command builds the tree and its
relation tables, normalizes each site's prevalences and samples the cell map
of every site. The result is written as a layout.json file that 'render' can
turn into SVG, PNG or PDF without re-running the layout.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Sites = splitList(sites)
			return c.runLayout(cmd.Context(), args[0], opts, output, csvPath)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <config>.layout.json)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "also write the vertex table to this CSV file")
	addPipelineFlags(cmd, &opts, &sites)

	return cmd
}

// addPipelineFlags registers the flags shared by commands that run the
// pipeline.
func addPipelineFlags(cmd *cobra.Command, opts *pipeline.Options, sites *string) {
	f := cmd.Flags()
	f.Uint64Var(&opts.Seed, "seed", 0, "override the config's random seed")
	f.StringVar(sites, "sites", "", "comma-separated sites to lay out (default: all)")
	f.IntVarP(&opts.Workers, "workers", "w", 0, "concurrent site layouts (default: number of CPUs)")
	f.BoolVar(&opts.RejectDuplicates, "reject-duplicates", false, "fail on repeated (site, clone) prevalence records")
	f.BoolVar(&opts.Refresh, "refresh", false, "recompute even when a cached layout exists")
}

// execute loads the config at path and runs the pipeline. The caller must
// close the returned runner.
func (c *CLI) execute(ctx context.Context, path string, opts pipeline.Options) (*pipeline.Result, *pipeline.Runner, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	c.Logger.Debug("loaded config",
		"path", path,
		"edges", len(cfg.TreeEdges),
		"records", len(cfg.ClonalPrev),
		"n_cells", cfg.NCells)

	runner, err := c.newRunner(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize runner: %w", err)
	}

	opts.Logger = c.Logger
	prog := newProgress(c.Logger)
	sp := newSpinner(ctx, c.errOut, "Laying out cell maps...")
	sp.Start()

	res, err := runner.Execute(ctx, cfg, opts)
	if err != nil {
		sp.StopWithError("Layout failed")
		_ = runner.Close()
		return nil, nil, err
	}
	sp.Stop()
	prog.done("layout finished", "sites", len(res.Sites), "cached", res.CacheInfo.LayoutHit)

	if ctx.Err() != nil {
		_ = runner.Close()
		return nil, nil, ctx.Err()
	}
	return res, runner, nil
}

// runLayout computes the layout and writes it as JSON (and optionally CSV).
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output, csvPath string) error {
	res, runner, err := c.execute(ctx, input, opts)
	if err != nil {
		return err
	}
	defer runner.Close()

	outputPath := output
	if outputPath == "" {
		outputPath = basePath("", input) + ".layout.json"
	}
	if err := io.ExportJSON(res, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}
	if csvPath != "" {
		if err := io.ExportCSV(res, csvPath); err != nil {
			return fmt.Errorf("write csv %s: %w", csvPath, err)
		}
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	if csvPath != "" {
		printFile(csvPath)
	}
	printStats(len(res.Sites), res.Stats.RealCells, len(res.SiteErrors), res.CacheInfo.LayoutHit)
	reportSiteErrors(res)
	printNewline()
	printNextStep("Render", appName+" render "+outputPath)

	return nil
}

// reportSiteErrors lists the sites that could not be laid out.
func reportSiteErrors(res *pipeline.Result) {
	for _, se := range res.SiteErrors {
		printWarning("site %s skipped: %s", se.Site, se.Message)
	}
}
