// Package cellmap generates synthetic cell layouts for anatomic sites.
//
// A layout is built in three steps:
//
//  1. [GenerateVertices] rejection-samples points in a Width × Height
//     rectangle. Points strictly inside the circle of radius
//     Height/2 − Margin around the centre are real cells; the rest are fake
//     filler. Sampling stops once exactly NCells real cells exist, so the
//     number of fake cells varies from run to run. [Geometry.Validate]
//     rejects grid cells that would need more than [MaxSamples] draws.
//  2. [SortVertices] puts the vertices in scan order with two passes of a
//     stable merge sort (see [SortVertices] for the exact comparators).
//  3. [AssignGenotypes] sweeps the ordered real cells and hands out
//     genotypes in contiguous runs proportional to adjusted prevalence.
//
// [Generate] runs all three. Randomness always comes from a caller-supplied
// *rand.Rand; [SiteRand] derives a reproducible per-site stream from a seed:
//
//	rng := cellmap.SiteRand(42, "S1")
//	layout, err := cellmap.Generate(ctx, rng, site, colours, geom)
package cellmap
