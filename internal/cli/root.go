package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"
)

// Execute builds the command tree, applies --verbose and runs args.
// Log output goes to stderr.
//
//	func main() {
//	    if err := cli.Execute(ctx, os.Args[1:], os.Stderr); err != nil {
//	        os.Exit(1)
//	    }
//	}
func Execute(ctx context.Context, args []string, stderr io.Writer) error {
	var verbose bool

	c := New(stderr, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetErr(stderr)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if verbose {
			c.SetLogLevel(LogDebug)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}
