// Package config loads and validates cellmap input documents.
//
// A document carries the clonal tree, clone colours, clonal prevalence rows
// and the layout parameters. TOML, YAML and JSON are supported; the format is
// chosen from the file extension:
//
//	cfg, err := config.Load("patient1.toml")
//	if err != nil {
//	    return err
//	}
//	geom := cfg.Geometry()
//
// Missing optional fields are filled by [Config.SetDefaults] before
// validation.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/matzehuels/cellmap/pkg/cellmap"
	"github.com/matzehuels/cellmap/pkg/palette"
	"github.com/matzehuels/cellmap/pkg/prevalence"
	"github.com/matzehuels/cellmap/pkg/tree"
)

// Defaults applied by SetDefaults.
const (
	DefaultNCells     = 100
	DefaultCellWidth  = 400.0
	DefaultCellHeight = 400.0
	DefaultSeed       = 42
)

// Config is a complete cellmap input document.
type Config struct {
	RootID         string  `json:"root_id" toml:"root_id" yaml:"root_id"`
	NCells         int     `json:"n_cells" toml:"n_cells" yaml:"n_cells" validate:"gte=1,lte=1000000"`
	GridCellWidth  float64 `json:"grid_cell_width" toml:"grid_cell_width" yaml:"grid_cell_width" validate:"gt=0"`
	GridCellHeight float64 `json:"grid_cell_height" toml:"grid_cell_height" yaml:"grid_cell_height" validate:"gt=0"`

	// CircleMargin left unset selects cellmap.DefaultMargin; an explicit 0
	// lets the circle touch the top and bottom edges.
	CircleMargin *float64 `json:"circle_margin,omitempty" toml:"circle_margin" yaml:"circle_margin" validate:"omitempty,gte=0"`

	// Seed of zero selects DefaultSeed.
	Seed uint64 `json:"seed" toml:"seed" yaml:"seed"`

	TreeEdges    []tree.Edge           `json:"tree_edges" toml:"tree_edges" yaml:"tree_edges" validate:"required,min=1,dive"`
	CloneColours []palette.CloneColour `json:"clone_colours" toml:"clone_colours" yaml:"clone_colours" validate:"dive"`
	ClonalPrev   []prevalence.Record   `json:"clonal_prev" toml:"clonal_prev" yaml:"clonal_prev" validate:"required,min=1,dive"`
}

// SetDefaults fills unset optional fields.
func (c *Config) SetDefaults() {
	if c.RootID == "" {
		c.RootID = tree.DefaultRootID
	}
	if c.NCells == 0 {
		c.NCells = DefaultNCells
	}
	if c.GridCellWidth == 0 {
		c.GridCellWidth = DefaultCellWidth
	}
	if c.GridCellHeight == 0 {
		c.GridCellHeight = DefaultCellHeight
	}
	if c.CircleMargin == nil {
		m := cellmap.DefaultMargin
		c.CircleMargin = &m
	}
	if c.Seed == 0 {
		c.Seed = DefaultSeed
	}
}

// Geometry returns the layout geometry described by the document.
func (c *Config) Geometry() cellmap.Geometry {
	return cellmap.Geometry{
		Width:  c.GridCellWidth,
		Height: c.GridCellHeight,
		Margin: c.Margin(),
		NCells: c.NCells,
	}
}

// Margin returns the circle margin, or cellmap.DefaultMargin when unset.
func (c *Config) Margin() float64 {
	if c.CircleMargin == nil {
		return cellmap.DefaultMargin
	}
	return *c.CircleMargin
}

// Hash returns a stable content hash of the document, used as a cache key
// component. Two documents that decode to the same Config hash equally
// regardless of their source format. Documents that cannot be encoded
// (non-finite numbers) return an error instead of a hash.
func (c *Config) Hash() (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("hash config: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Format identifies a document encoding.
type Format string

// Supported document formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath infers the document format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported config extension %q (want .toml, .yaml, .yml or .json)", filepath.Ext(path))
}
