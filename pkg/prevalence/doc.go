// Package prevalence reshapes clonal prevalence records into per-site tables
// and normalizes them for cell layout.
//
// # Reshaping
//
// [NewTable] turns a flat list of (site, clone, prevalence) records into a
// site → clone → cp table. Sites and clones keep the order in which they first
// appear. A repeated (site, clone) pair overwrites the earlier value and is
// reported in [Table.Duplicates]; set [Options.RejectDuplicates] to fail
// instead.
//
// # Thresholding
//
// [Table.Normalize] keeps only clones that would occupy at least one of nCells
// discrete cells, i.e. cp > 1/nCells, and rescales the survivors so their
// adjusted prevalences sum to 1:
//
//	site, err := table.Normalize("S1", 100)
//	for _, clone := range site.Genotypes {
//	    fmt.Println(clone, site.AdjCP[clone])
//	}
//
// A site where nothing survives returns [ErrEmptySite] rather than dividing
// by zero.
package prevalence
