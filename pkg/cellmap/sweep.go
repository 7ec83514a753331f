package cellmap

import (
	"fmt"
	"math"

	"github.com/matzehuels/cellmap/pkg/prevalence"
)

// AssignGenotypes colours the real cells of an ordered vertex list.
//
// The sweep keeps a running count of real cells and a cumulative adjusted
// prevalence that starts at the first genotype's adj_cp. For each real cell
// the count is incremented first; if count/nCells then exceeds the
// cumulative value rounded to two decimals, the sweep moves on to the next
// genotype and adds its adj_cp. The last genotype absorbs any remainder.
// Fake cells are left without a genotype or colour.
func AssignGenotypes(vertices []Vertex, site *prevalence.Site, colours map[string]string, nCells int) error {
	if nCells < 1 {
		return fmt.Errorf("%w: n_cells must be at least 1, got %d", ErrInvalidGeometry, nCells)
	}
	if site == nil || len(site.Genotypes) == 0 {
		return prevalence.ErrEmptySite
	}
	for _, g := range site.Genotypes {
		if colours[g] == "" {
			return fmt.Errorf("%w: clone %q at site %q", ErrMissingColour, g, site.ID)
		}
	}

	genotypes := site.Genotypes
	idx := 0
	cum := site.AdjCP[genotypes[0]]
	seen := 0
	for i := range vertices {
		v := &vertices[i]
		if !v.Real {
			v.Genotype, v.Colour = "", ""
			continue
		}
		seen++
		if float64(seen)/float64(nCells) > round2(cum) && idx < len(genotypes)-1 {
			idx++
			cum += site.AdjCP[genotypes[idx]]
		}
		v.Genotype = genotypes[idx]
		v.Colour = colours[v.Genotype]
	}
	return nil
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }
