package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cellmap/pkg/config"
	"github.com/matzehuels/cellmap/pkg/pipeline"
)

// sitesCommand creates the sites command, which tabulates the normalized
// prevalences of each site without laying out cells.
func (c *CLI) sitesCommand() *cobra.Command {
	var rejectDuplicates bool

	cmd := &cobra.Command{
		Use:   "sites [config]",
		Short: "Show the visible clones and adjusted prevalences of each site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSites(cmd.Context(), args[0], rejectDuplicates)
		},
	}
	cmd.Flags().BoolVar(&rejectDuplicates, "reject-duplicates", false, "fail on repeated (site, clone) prevalence records")

	return cmd
}

func (c *CLI) runSites(ctx context.Context, path string, rejectDuplicates bool) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	in, err := pipeline.Prepare(ctx, cfg, pipeline.Options{Logger: c.Logger, RejectDuplicates: rejectDuplicates})
	if err != nil {
		return err
	}

	var rows [][]string
	for _, id := range in.Table.Sites() {
		site, err := in.Table.Normalize(id, cfg.NCells)
		if err != nil {
			rows = append(rows, []string{id, formatShare(1 / float64(cfg.NCells)), "-", "-", "no visible clone"})
			continue
		}
		shares := make([]string, 0, len(site.Genotypes))
		for _, g := range site.Genotypes {
			shares = append(shares, fmt.Sprintf("%s %s", g, formatShare(site.AdjCP[g])))
		}
		var hidden []string
		for _, e := range in.Table.Entries(id) {
			if !slices.Contains(site.Genotypes, e.Clone) {
				hidden = append(hidden, e.Clone)
			}
		}
		rows = append(rows, []string{
			id,
			formatShare(site.Threshold),
			strings.Join(shares, ", "),
			site.Dominant(),
			joinOrDash(hidden),
		})
	}

	printTable([]string{"Site", "Threshold", "Adjusted prevalence", "Dominant", "Hidden"}, rows)
	printDetail("%d sites · %d cells per site", len(rows), cfg.NCells)
	return nil
}

func formatShare(f float64) string {
	return fmt.Sprintf("%.3g", f)
}
