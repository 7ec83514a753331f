package cellmap

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/matzehuels/cellmap/pkg/prevalence"
)

func testGeometry(n int) Geometry {
	return Geometry{Width: 400, Height: 400, Margin: DefaultMargin, NCells: n}
}

func TestGeometryValidate(t *testing.T) {
	tests := []struct {
		name    string
		geom    Geometry
		wantErr bool
	}{
		{"default", testGeometry(100), false},
		{"wide", Geometry{Width: 800, Height: 200, Margin: 45, NCells: 10}, false},
		{"zero radius", Geometry{Width: 400, Height: 90, Margin: 45, NCells: 10}, true},
		{"negative radius", Geometry{Width: 400, Height: 50, Margin: 45, NCells: 10}, true},
		{"zero width", Geometry{Width: 0, Height: 400, Margin: 45, NCells: 10}, true},
		{"zero cells", Geometry{Width: 400, Height: 400, Margin: 45, NCells: 0}, true},
		{"too many cells", testGeometry(MaxCells + 1), true},
		{"vanishing radius", Geometry{Width: 400, Height: 90.000001, Margin: 45, NCells: 100}, true},
		{"narrow cell", Geometry{Width: 1e-6, Height: 400, Margin: 199.999, NCells: 100}, true},
		{"max cells", testGeometry(MaxCells), false},
		{"nan width", Geometry{Width: math.NaN(), Height: 400, Margin: 45, NCells: 10}, true},
		{"infinite height", Geometry{Width: 400, Height: math.Inf(1), Margin: 45, NCells: 10}, true},
		{"nan margin", Geometry{Width: 400, Height: 400, Margin: math.NaN(), NCells: 10}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.geom.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidGeometry) {
				t.Errorf("Validate() error = %v, want ErrInvalidGeometry", err)
			}
		})
	}
}

func TestGeometryRadius(t *testing.T) {
	if r := testGeometry(1).Radius(); r != 155 {
		t.Errorf("Radius() = %v, want 155", r)
	}
}

func TestGenerateVertices(t *testing.T) {
	geom := testGeometry(250)
	rng := rand.New(rand.NewPCG(42, 42^0xdeadbeef))

	vertices, err := GenerateVertices(context.Background(), rng, geom)
	if err != nil {
		t.Fatalf("GenerateVertices() error = %v", err)
	}
	if got := CountReal(vertices); got != geom.NCells {
		t.Errorf("real cells = %d, want %d", got, geom.NCells)
	}
	if !vertices[len(vertices)-1].Real {
		t.Error("sampling should stop on a real cell")
	}

	cx, cy := geom.Center()
	for i, v := range vertices {
		if v.X < 0 || v.X >= geom.Width || v.Y < 0 || v.Y >= geom.Height {
			t.Errorf("vertex %d (%v, %v) outside grid cell", i, v.X, v.Y)
		}
		inside := math.Hypot(v.X-cx, v.Y-cy) < geom.Radius()
		if inside != v.Real {
			t.Errorf("vertex %d Real = %v, want %v", i, v.Real, inside)
		}
		if v.Colour != "" || v.Genotype != "" {
			t.Errorf("vertex %d coloured before assignment", i)
		}
	}
}

func TestGenerateVerticesSeeded(t *testing.T) {
	a, _ := GenerateVertices(context.Background(), SiteRand(7, "S1"), testGeometry(50))
	b, _ := GenerateVertices(context.Background(), SiteRand(7, "S1"), testGeometry(50))
	if !slices.Equal(a, b) {
		t.Error("same seed and site should produce identical vertices")
	}
}

func TestGenerateVerticesInvalidGeometry(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	_, err := GenerateVertices(context.Background(), rng, Geometry{Width: 100, Height: 80, Margin: 45, NCells: 10})
	if !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("GenerateVertices() error = %v, want ErrInvalidGeometry", err)
	}
}

func TestGenerateVerticesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := GenerateVertices(ctx, SiteRand(1, "S1"), testGeometry(100))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("GenerateVertices() error = %v, want context.Canceled", err)
	}
}

func TestSortVerticesMonotone(t *testing.T) {
	v := []Vertex{{X: 3, Y: 3}, {X: 2, Y: 2}, {X: 1, Y: 1}, {X: 0, Y: 0}}
	SortVertices(v)
	for i := range v {
		if v[i].X != float64(i) {
			t.Fatalf("SortVertices() = %v, want ascending diagonal", v)
		}
	}
}

func TestSortVerticesInputDependent(t *testing.T) {
	// The comparators disagree on these points, so the merge procedure
	// decides: each input order is left as the sort leaves it.
	a, b := Vertex{X: 1, Y: 1}, Vertex{X: 0, Y: 2}

	v := []Vertex{a, b}
	SortVertices(v)
	if v[0] != b || v[1] != a {
		t.Errorf("SortVertices([a b]) = %v, want [b a]", v)
	}

	v = []Vertex{b, a}
	SortVertices(v)
	if v[0] != a || v[1] != b {
		t.Errorf("SortVertices([b a]) = %v, want [a b]", v)
	}
}

func TestSortVerticesDeterministic(t *testing.T) {
	vertices, err := GenerateVertices(context.Background(), rand.New(rand.NewPCG(3, 4)), testGeometry(200))
	if err != nil {
		t.Fatalf("GenerateVertices() error = %v", err)
	}
	first := slices.Clone(vertices)
	second := slices.Clone(vertices)
	SortVertices(first)
	SortVertices(second)
	if !slices.Equal(first, second) {
		t.Error("SortVertices() is not deterministic")
	}

	key := func(v Vertex) [2]float64 { return [2]float64{v.X, v.Y} }
	var before, after [][2]float64
	for i := range vertices {
		before = append(before, key(vertices[i]))
		after = append(after, key(first[i]))
	}
	cmp := func(a, b [2]float64) int {
		if a[0] != b[0] {
			if a[0] < b[0] {
				return -1
			}
			return 1
		}
		if a[1] < b[1] {
			return -1
		}
		if a[1] > b[1] {
			return 1
		}
		return 0
	}
	slices.SortFunc(before, cmp)
	slices.SortFunc(after, cmp)
	if !slices.Equal(before, after) {
		t.Error("SortVertices() should permute the input")
	}
}

func realCells(n int) []Vertex {
	v := make([]Vertex, n)
	for i := range v {
		v[i] = Vertex{X: float64(i), Real: true}
	}
	return v
}

func TestAssignGenotypesEvenSplit(t *testing.T) {
	site := &prevalence.Site{
		ID:        "S1",
		Genotypes: []string{"A", "B"},
		AdjCP:     map[string]float64{"A": 0.5, "B": 0.5},
	}
	colours := map[string]string{"A": "#ff0000", "B": "#0000ff"}

	v := realCells(10)
	if err := AssignGenotypes(v, site, colours, 10); err != nil {
		t.Fatalf("AssignGenotypes() error = %v", err)
	}
	for i, cell := range v {
		want := "A"
		if i >= 5 {
			want = "B"
		}
		if cell.Genotype != want {
			t.Errorf("cell %d genotype = %q, want %q", i+1, cell.Genotype, want)
		}
		if cell.Colour != colours[want] {
			t.Errorf("cell %d colour = %q, want %q", i+1, cell.Colour, colours[want])
		}
	}
}

func TestAssignGenotypesRuns(t *testing.T) {
	site := &prevalence.Site{
		ID:        "S1",
		Genotypes: []string{"A", "B", "C"},
		AdjCP:     map[string]float64{"A": 0.3, "B": 0.3, "C": 0.4},
	}
	colours := map[string]string{"A": "#aa0000", "B": "#00aa00", "C": "#0000aa"}

	// Fake cells are interleaved and must be skipped.
	var v []Vertex
	for i, cell := range realCells(10) {
		v = append(v, cell)
		if i%3 == 0 {
			v = append(v, Vertex{X: -1, Colour: "stale", Genotype: "stale"})
		}
	}
	if err := AssignGenotypes(v, site, colours, 10); err != nil {
		t.Fatalf("AssignGenotypes() error = %v", err)
	}

	var got []string
	for _, cell := range v {
		if !cell.Real {
			if cell.Colour != "" || cell.Genotype != "" {
				t.Errorf("fake cell coloured: %+v", cell)
			}
			continue
		}
		got = append(got, cell.Genotype)
	}
	want := []string{"A", "A", "A", "B", "B", "B", "C", "C", "C", "C"}
	if !slices.Equal(got, want) {
		t.Errorf("genotypes = %v, want %v", got, want)
	}
}

func TestAssignGenotypesErrors(t *testing.T) {
	site := &prevalence.Site{ID: "S1", Genotypes: []string{"A"}, AdjCP: map[string]float64{"A": 1}}

	err := AssignGenotypes(realCells(3), site, map[string]string{}, 3)
	if !errors.Is(err, ErrMissingColour) {
		t.Errorf("AssignGenotypes() error = %v, want ErrMissingColour", err)
	}

	err = AssignGenotypes(realCells(3), &prevalence.Site{ID: "S1"}, nil, 3)
	if !errors.Is(err, prevalence.ErrEmptySite) {
		t.Errorf("AssignGenotypes() error = %v, want ErrEmptySite", err)
	}

	err = AssignGenotypes(realCells(3), site, map[string]string{"A": "#000000"}, 0)
	if !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("AssignGenotypes() error = %v, want ErrInvalidGeometry", err)
	}
}

func TestGenerate(t *testing.T) {
	site := &prevalence.Site{
		ID:        "S1",
		Genotypes: []string{"A", "B"},
		AdjCP:     map[string]float64{"A": 0.5, "B": 0.5},
	}
	colours := map[string]string{"A": "#ff0000", "B": "#0000ff"}

	layout, err := Generate(context.Background(), SiteRand(42, "S1"), site, colours, testGeometry(100))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if layout.Site != "S1" {
		t.Errorf("Site = %q, want S1", layout.Site)
	}
	if layout.RealCells() != 100 {
		t.Errorf("RealCells() = %d, want 100", layout.RealCells())
	}
	if layout.FakeCells() != len(layout.Vertices)-100 {
		t.Errorf("FakeCells() = %d, want %d", layout.FakeCells(), len(layout.Vertices)-100)
	}

	counts := layout.Counts()
	if counts["A"] != 50 || counts["B"] != 50 {
		t.Errorf("Counts() = %v, want A=50 B=50", counts)
	}
	for i, v := range layout.Vertices {
		if v.Real && v.Colour == "" {
			t.Errorf("real vertex %d has no colour", i)
		}
		if !v.Real && v.Colour != "" {
			t.Errorf("fake vertex %d has colour %q", i, v.Colour)
		}
	}
}

func TestSiteRand(t *testing.T) {
	a := SiteRand(42, "S1").Uint64()
	b := SiteRand(42, "S1").Uint64()
	if a != b {
		t.Errorf("SiteRand not reproducible: %d != %d", a, b)
	}
	if c := SiteRand(42, "S2").Uint64(); c == a {
		t.Error("different sites should draw from different streams")
	}
}
