package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cellmap/pkg/io"
	"github.com/matzehuels/cellmap/pkg/pipeline"
)

// layoutSuffix marks files written by the layout command.
const layoutSuffix = ".layout.json"

// renderCommand creates the render command. It accepts either a config
// document (the layout is computed first) or a layout.json file.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		sites      string
	)
	opts := pipeline.Options{}
	ropts := pipeline.RenderOptions{}

	cmd := &cobra.Command{
		Use:   "render [config|layout.json]",
		Short: "Render cell maps or the clonal tree",
		Long: `Render cell maps or the clonal tree.

The input is either a config document, in which case the layout is computed
first, or a layout.json file written by 'layout'.

Kinds:
  cellmap  one panel per site (svg, png, pdf, json)
  tree     the clonal tree as a node-link diagram (svg, png, pdf, dot)

PNG and PDF output requires rsvg-convert (librsvg).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Sites = splitList(sites)
			ropts.Formats = parseFormats(formatsStr)
			if err := ropts.Validate(); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, ropts, output)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	f.StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot (comma-separated)")
	f.StringVarP(&ropts.Kind, "kind", "k", pipeline.KindCellmap, "what to render: cellmap, tree")
	f.IntVar(&ropts.Columns, "columns", 0, "site panels per row (cellmap; default: square grid)")
	f.BoolVar(&ropts.Legend, "legend", false, "draw a clone colour legend (cellmap)")
	f.BoolVar(&ropts.HideFake, "hide-fake", false, "omit cells outside the circle (cellmap)")
	f.StringVar(&ropts.Title, "title", "", "figure title (cellmap)")
	f.BoolVar(&ropts.Chains, "chains", false, "group linear chains (tree)")
	f.BoolVar(&ropts.Detailed, "detailed", false, "show depth and descendant counts (tree)")
	f.Float64Var(&ropts.Scale, "scale", 2, "PNG scale factor")
	addPipelineFlags(cmd, &opts, &sites)

	return cmd
}

// runRender obtains a result for input and writes every requested artifact.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, ropts pipeline.RenderOptions, output string) error {
	var (
		res    *pipeline.Result
		runner *pipeline.Runner
		err    error
	)
	if strings.HasSuffix(input, layoutSuffix) {
		if res, err = io.ImportJSON(input); err != nil {
			return err
		}
		c.Logger.Debug("loaded layout", "path", input, "sites", len(res.Sites))
		if runner, err = c.newRunner(ctx, nil); err != nil {
			return fmt.Errorf("initialize runner: %w", err)
		}
	} else if res, runner, err = c.execute(ctx, input, opts); err != nil {
		return err
	}
	defer runner.Close()

	artifacts, hit, err := runner.RenderWithCacheInfo(ctx, res, ropts)
	if err != nil {
		return err
	}

	paths := outputPaths(input, output, ropts)
	for _, format := range ropts.Formats {
		if err := os.WriteFile(paths[format], artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", paths[format], err)
		}
		c.Logger.Debug("wrote artifact", "format", format, "bytes", len(artifacts[format]))
	}

	printSuccess("Rendered %s", ropts.Kind)
	for _, format := range ropts.Formats {
		printFile(paths[format])
	}
	printStats(len(res.Sites), res.Stats.RealCells, len(res.SiteErrors), hit)
	reportSiteErrors(res)
	return nil
}

// outputPaths maps each format to its file. A single format with an explicit
// output is written there verbatim; otherwise files are named
// <base>[_tree].<format>.
func outputPaths(input, output string, ropts pipeline.RenderOptions) map[string]string {
	paths := make(map[string]string, len(ropts.Formats))
	if output != "" && len(ropts.Formats) == 1 {
		paths[ropts.Formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	if ropts.Kind == pipeline.KindTree && output == "" {
		base += "_tree"
	}
	for _, format := range ropts.Formats {
		paths[format] = base + "." + format
	}
	return paths
}
