package cellmap

import (
	"context"
	"hash/fnv"
	"math/rand/v2"

	"github.com/matzehuels/cellmap/pkg/prevalence"
)

// Layout is the finished cell map of one site.
type Layout struct {
	Site      string             `json:"site_id"`
	Geometry  Geometry           `json:"geometry"`
	Genotypes []string           `json:"genotypes_to_plot"`
	AdjCP     map[string]float64 `json:"adj_cp"`
	Vertices  []Vertex           `json:"vertices"`
}

// Generate samples, orders and colours the cells of one site.
func Generate(ctx context.Context, rng *rand.Rand, site *prevalence.Site, colours map[string]string, geom Geometry) (*Layout, error) {
	if site == nil {
		return nil, prevalence.ErrEmptySite
	}
	vertices, err := GenerateVertices(ctx, rng, geom)
	if err != nil {
		return nil, err
	}
	SortVertices(vertices)
	if err := AssignGenotypes(vertices, site, colours, geom.NCells); err != nil {
		return nil, err
	}
	return &Layout{
		Site:      site.ID,
		Geometry:  geom,
		Genotypes: append([]string(nil), site.Genotypes...),
		AdjCP:     site.AdjCP,
		Vertices:  vertices,
	}, nil
}

// Counts returns the number of real cells assigned to each genotype.
func (l *Layout) Counts() map[string]int {
	counts := make(map[string]int, len(l.Genotypes))
	for _, v := range l.Vertices {
		if v.Real {
			counts[v.Genotype]++
		}
	}
	return counts
}

// RealCells returns the number of real cells in the layout.
func (l *Layout) RealCells() int { return CountReal(l.Vertices) }

// FakeCells returns the number of filler cells in the layout.
func (l *Layout) FakeCells() int { return len(l.Vertices) - l.RealCells() }

// SiteSeed derives the two PCG seed words for a site from a run seed, so that
// each site draws from its own stream regardless of processing order.
func SiteSeed(seed uint64, site string) (uint64, uint64) {
	h := fnv.New64a()
	h.Write([]byte(site))
	return seed, h.Sum64() ^ 0xdeadbeef
}

// SiteRand returns a random source for site seeded from seed.
func SiteRand(seed uint64, site string) *rand.Rand {
	return rand.New(rand.NewPCG(SiteSeed(seed, site)))
}
