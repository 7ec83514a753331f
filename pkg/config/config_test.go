package config

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/cellmap/pkg/cellmap"
	"github.com/matzehuels/cellmap/pkg/errors"
)

func TestLoadFormats(t *testing.T) {
	for _, name := range []string{"patient.toml", "patient.yaml", "patient.json"} {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(filepath.Join("testdata", name))
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.RootID != "Root" {
				t.Errorf("RootID = %q, want Root", cfg.RootID)
			}
			if cfg.NCells != 100 {
				t.Errorf("NCells = %d, want 100", cfg.NCells)
			}
			if len(cfg.TreeEdges) != 3 {
				t.Errorf("TreeEdges = %d, want 3", len(cfg.TreeEdges))
			}
			if len(cfg.ClonalPrev) != 4 {
				t.Fatalf("ClonalPrev = %d, want 4", len(cfg.ClonalPrev))
			}
			if cfg.ClonalPrev[0].ClonalPrev != 0.6 {
				t.Errorf("ClonalPrev[0] = %v, want 0.6", cfg.ClonalPrev[0].ClonalPrev)
			}
			if cfg.ClonalPrev[2].ClonalPrev != 0.7 {
				t.Errorf("ClonalPrev[2] = %v, want 0.7", cfg.ClonalPrev[2].ClonalPrev)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "patient.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := cellmap.Geometry{Width: DefaultCellWidth, Height: DefaultCellHeight, Margin: cellmap.DefaultMargin, NCells: 100}
	if got := cfg.Geometry(); got != want {
		t.Errorf("Geometry() = %+v, want %+v", got, want)
	}
	if cfg.Seed != DefaultSeed {
		t.Errorf("Seed = %d, want %d", cfg.Seed, DefaultSeed)
	}

	toml, err := Load(filepath.Join("testdata", "patient.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if toml.Seed != 7 {
		t.Errorf("Seed = %d, want 7", toml.Seed)
	}
}

func TestParseExplicitZeroMargin(t *testing.T) {
	cfg, err := Parse([]byte("circle_margin = 0.0\n"+minimalTOML), FormatTOML)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := cfg.Geometry().Margin; got != 0 {
		t.Errorf("Geometry().Margin = %v, want 0", got)
	}
	if got := cfg.Geometry().Radius(); got != DefaultCellHeight/2 {
		t.Errorf("Geometry().Radius() = %v, want %v", got, DefaultCellHeight/2)
	}

	cfg, err = Parse([]byte(`{"tree_edges":[{"source":"Root","target":"A"}],"clonal_prev":[{"site_id":"S1","clone_id":"A","clonal_prev":1}],"circle_margin":0}`), FormatJSON)
	if err != nil {
		t.Fatalf("Parse(json) error = %v", err)
	}
	if got := cfg.Margin(); got != 0 {
		t.Errorf("Margin() = %v, want 0", got)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join("testdata", "missing.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want FILE_NOT_FOUND", err)
	}
	if _, err := Load("patient.ini"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Load(.ini) error = %v, want INVALID_FORMAT", err)
	}
}

const minimalTOML = `
[[tree_edges]]
source = "Root"
target = "A"

[[clonal_prev]]
site_id = "S1"
clone_id = "A"
clonal_prev = 1.0
`

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code errors.Code
		msg  string
	}{
		{"unknown key", minimalTOML + "\nbogus = 1\n", errors.ErrCodeInvalidFormat, "bogus"},
		{"bad number", `n_cells = "many"` + minimalTOML, errors.ErrCodeInvalidFormat, ""},
		{"no edges", "[[clonal_prev]]\nsite_id = \"S1\"\nclone_id = \"A\"\nclonal_prev = 1.0\n", errors.ErrCodeInvalidConfig, "tree_edges"},
		{"negative cells", "n_cells = -3\n" + minimalTOML, errors.ErrCodeInvalidConfig, "n_cells"},
		{"negative width", "grid_cell_width = -1.0\n" + minimalTOML, errors.ErrCodeInvalidConfig, "grid_cell_width"},
		{"small height", "grid_cell_height = 80.0\n" + minimalTOML, errors.ErrCodeInvalidGeometry, ""},
		{"vanishing radius", "grid_cell_height = 90.000001\n" + minimalTOML, errors.ErrCodeInvalidGeometry, "too small"},
		{"too many cells", "n_cells = 1000001\n" + minimalTOML, errors.ErrCodeInvalidConfig, "n_cells must be <= 1000000"},
		{"infinite prevalence", "[[tree_edges]]\nsource = \"Root\"\ntarget = \"A\"\n[[clonal_prev]]\nsite_id = \"S1\"\nclone_id = \"A\"\nclonal_prev = \"Inf\"\n", errors.ErrCodeInvalidFormat, "invalid clonal prevalence"},
		{"nan prevalence", "[[tree_edges]]\nsource = \"Root\"\ntarget = \"A\"\n[[clonal_prev]]\nsite_id = \"S1\"\nclone_id = \"A\"\nclonal_prev = nan\n", errors.ErrCodeInvalidFormat, "invalid clonal prevalence"},
		{"bad colour", "clone_colours = [{clone_id = \"A\", colour = \"red\"}]\n" + minimalTOML, errors.ErrCodeInvalidColour, ""},
		{"whitespace id", minimalTOML + "\n[[clonal_prev]]\nsite_id = \" S2\"\nclone_id = \"A\"\nclonal_prev = 1.0\n", errors.ErrCodeInvalidInput, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), FormatTOML)
			if !errors.Is(err, tt.code) {
				t.Fatalf("Parse() error = %v, want code %s", err, tt.code)
			}
			if tt.msg != "" && !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("Parse() error = %v, want mention of %q", err, tt.msg)
			}
		})
	}
}

func TestHash(t *testing.T) {
	a, err := Load(filepath.Join("testdata", "patient.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Load(filepath.Join("testdata", "patient.json"))
	if err != nil {
		t.Fatal(err)
	}
	if mustHash(t, a) != mustHash(t, b) {
		t.Error("equivalent YAML and JSON documents should hash equally")
	}

	b.Seed++
	if mustHash(t, a) == mustHash(t, b) {
		t.Error("changing the seed should change the hash")
	}
}

func TestHashUnencodable(t *testing.T) {
	a, err := Load(filepath.Join("testdata", "patient.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	a.GridCellWidth = math.NaN()
	if h, err := a.Hash(); err == nil {
		t.Errorf("Hash() = %q, want error for NaN width", h)
	}
}

func mustHash(t *testing.T, c *Config) string {
	t.Helper()
	h, err := c.Hash()
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	return h
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"a.toml": FormatTOML,
		"a.YAML": FormatYAML,
		"a.yml":  FormatYAML,
		"a.json": FormatJSON,
	}
	for path, want := range tests {
		got, err := FormatFromPath(path)
		if err != nil || got != want {
			t.Errorf("FormatFromPath(%q) = %q, %v, want %q", path, got, err, want)
		}
	}
	if _, err := FormatFromPath("a.txt"); err == nil {
		t.Error("FormatFromPath(a.txt) should fail")
	}
}
