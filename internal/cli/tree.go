package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lgtree "github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cellmap/pkg/config"
	"github.com/matzehuels/cellmap/pkg/errors"
	"github.com/matzehuels/cellmap/pkg/pipeline"
	"github.com/matzehuels/cellmap/pkg/tree"
)

// treeCommand creates the tree command, which prints the clonal tree and
// its relation tables.
func (c *CLI) treeCommand() *cobra.Command {
	var (
		node   string
		chains bool
	)

	cmd := &cobra.Command{
		Use:   "tree [config]",
		Short: "Print the clonal tree, its linear chains and node relations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTree(cmd.Context(), args[0], node, chains)
		},
	}

	cmd.Flags().StringVar(&node, "node", "", "print the relations of this node")
	cmd.Flags().BoolVar(&chains, "chains", false, "list the linear chains")

	return cmd
}

func (c *CLI) runTree(ctx context.Context, path, node string, chains bool) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	in, err := pipeline.Prepare(ctx, cfg, pipeline.Options{Logger: c.Logger})
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, renderTree(in.Tree.Root(), in.Colours, in.Chains))
	printDetail("%d nodes · %d leaves · %d chains", in.Tree.Len(), len(in.Tree.Leaves()), len(in.Chains.Starts))

	if chains {
		printNewline()
		fmt.Fprintln(stdout, StyleTitle.Render("Linear chains"))
		for _, start := range in.Chains.Starts {
			printKeyValue(start, strings.Join(in.Chains.Members(start), " "+iconArrow+" "))
		}
	}

	if node != "" {
		if _, ok := in.Tree.Node(node); !ok {
			return errors.New(errors.ErrCodeNotFound, "node %q is not in the tree", node)
		}
		printNewline()
		fmt.Fprintln(stdout, StyleTitle.Render("Relations of "+node))
		printRelations(in.Relations, node)
	}
	return nil
}

// renderTree draws the hierarchy under root with a colour swatch per clone.
// Chain starts are marked so linear runs can be read off the drawing.
func renderTree(root *tree.Node, colours map[string]string, chains *tree.Chains) string {
	var build func(n *tree.Node) *lgtree.Tree
	build = func(n *tree.Node) *lgtree.Tree {
		t := lgtree.Root(nodeLabel(n.ID, colours, chains)).
			Enumerator(lgtree.RoundedEnumerator).
			EnumeratorStyle(StyleDim)
		for _, child := range n.Children {
			if child.IsLeaf() {
				t.Child(nodeLabel(child.ID, colours, chains))
				continue
			}
			t.Child(build(child))
		}
		return t
	}
	return build(root).String()
}

func nodeLabel(id string, colours map[string]string, chains *tree.Chains) string {
	swatch := "○"
	if col, ok := colours[id]; ok {
		swatch = lipgloss.NewStyle().Foreground(lipgloss.Color(col)).Render("●")
	}
	label := swatch + " " + StyleValue.Render(id)
	if run := chains.Runs[id]; len(run) > 0 {
		label += StyleDim.Render(fmt.Sprintf("  chain of %d", len(run)+1))
	}
	return label
}

func printRelations(r *tree.Relations, id string) {
	parent := r.DirectAncestor[id]
	if parent == "" {
		parent = "-"
	}
	printKeyValue("parent", parent)
	printKeyValue("children", joinOrDash(r.DirectDescendants[id]))
	printKeyValue("ancestors", joinOrDash(r.Ancestors[id].Sorted()))
	printKeyValue("descendants", joinOrDash(r.Descendants[id].Sorted()))
	printKeyValue("siblings", joinOrDash(r.Siblings[id].Sorted()))
	printKeyValue("lineage", strings.Join(r.Lineage(id), " "+iconArrow+" "))
}

func joinOrDash(ids []string) string {
	if len(ids) == 0 {
		return "-"
	}
	return strings.Join(ids, ", ")
}
