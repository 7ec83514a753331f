// Package cli implements the cellmap command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cellmap/pkg/buildinfo"
	"github.com/matzehuels/cellmap/pkg/cache"
	"github.com/matzehuels/cellmap/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "cellmap"

	// defaultAddr is the listen address of the serve command.
	defaultAddr = ":8080"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	errOut io.Writer
	cache  cacheFlags
}

// cacheFlags select the result cache backend for every command.
type cacheFlags struct {
	disabled      bool
	dir           string
	redisAddr     string
	redisPassword string
	redisDB       int
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), errOut: w}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Cellmap lays out tumour clonal evolution as cell maps",
		Long: `Cellmap turns a clonal phylogeny and per-site clonal prevalences into
cell-map layouts: one circle of sampled cells per anatomic site, coloured
by genotype in proportion to each clone's prevalence.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.BoolVar(&c.cache.disabled, "no-cache", false, "disable result caching")
	pf.StringVar(&c.cache.dir, "cache-dir", "", "cache directory (default: $XDG_CACHE_HOME/cellmap)")
	pf.StringVar(&c.cache.redisAddr, "redis", "", "cache results in Redis at host:port instead of on disk")
	pf.StringVar(&c.cache.redisPassword, "redis-password", "", "Redis password")
	pf.IntVar(&c.cache.redisDB, "redis-db", 0, "Redis database number")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.sitesCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, keyer cache.Keyer) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, keyer, c.Logger), nil
}

// newCache selects the cache backend. An unreachable Redis server falls
// back to no caching rather than failing the command.
func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	if c.cache.disabled {
		return cache.NewNullCache(), nil
	}
	if c.cache.redisAddr != "" {
		rc := cache.NewRedisCache(cache.RedisOptions{
			Addr:     c.cache.redisAddr,
			Password: c.cache.redisPassword,
			DB:       c.cache.redisDB,
			Prefix:   appName + ":",
		})
		if err := rc.Ping(ctx); err != nil {
			c.Logger.Warn("redis unavailable, caching disabled", "addr", c.cache.redisAddr, "error", err)
			_ = rc.Close()
			return cache.NewNullCache(), nil
		}
		return rc, nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the --cache-dir flag, or the XDG cache directory
// (~/.cache/cellmap/).
func (c *CLI) cacheDir() (string, error) {
	if c.cache.dir != "" {
		return c.cache.dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return splitList(s)
}

// splitList splits a comma-separated flag value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// basePath derives the output base path. An empty output strips the
// extension (and a trailing ".layout") from input; an output carrying a
// format extension has it removed.
func basePath(output, input string) string {
	if output == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		return strings.TrimSuffix(base, ".layout")
	}
	ext := strings.TrimPrefix(filepath.Ext(output), ".")
	for _, formats := range pipeline.ValidFormats {
		if formats[ext] {
			return strings.TrimSuffix(output, "."+ext)
		}
	}
	return output
}
