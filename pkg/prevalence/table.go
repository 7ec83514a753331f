package prevalence

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidValue is returned when a prevalence is not a finite number
	// within [0, 1].
	ErrInvalidValue = errors.New("invalid clonal prevalence")

	// ErrInvalidRecord is returned when a record lacks a site or clone id.
	ErrInvalidRecord = errors.New("invalid prevalence record")

	// ErrDuplicateRecord is returned by [NewTable] when a (site, clone) pair
	// repeats and [Options.RejectDuplicates] is set.
	ErrDuplicateRecord = errors.New("duplicate prevalence record")

	// ErrUnknownSite is returned when normalizing a site with no records.
	ErrUnknownSite = errors.New("unknown site")

	// ErrEmptySite is returned when no clone at a site exceeds the
	// visibility threshold, so there is nothing to rescale.
	ErrEmptySite = errors.New("no clone above visibility threshold")

	// ErrInvalidCellCount is returned when nCells is below 1.
	ErrInvalidCellCount = errors.New("cell count must be at least 1")
)

// Record is one clonal prevalence measurement.
type Record struct {
	SiteID     string `json:"site_id" toml:"site_id" yaml:"site_id" validate:"required"`
	CloneID    string `json:"clone_id" toml:"clone_id" yaml:"clone_id" validate:"required"`
	ClonalPrev Value  `json:"clonal_prev" toml:"clonal_prev" yaml:"clonal_prev" validate:"gte=0,lte=1"`
}

// Entry is a clone's raw prevalence at one site.
type Entry struct {
	Clone string  `json:"clone_id"`
	CP    float64 `json:"cp"`
}

// Options configures [NewTable].
type Options struct {
	// RejectDuplicates makes a repeated (site, clone) pair an error instead
	// of letting the last value win.
	RejectDuplicates bool
}

// Table is the reshaped site → clone → cp mapping.
//
// The zero value is not usable; create tables with [NewTable].
type Table struct {
	sites   []string
	entries map[string][]Entry
	index   map[string]map[string]int
	clones  []string

	// Duplicates lists every record that overwrote an earlier value for the
	// same (site, clone) pair, in input order.
	Duplicates []Record
}

// NewTable reshapes records into a [Table]. Records are applied in order; a
// repeated (site, clone) pair keeps its original position and takes the later
// value.
func NewTable(records []Record, opts Options) (*Table, error) {
	t := &Table{
		entries: make(map[string][]Entry),
		index:   make(map[string]map[string]int),
	}
	seenClone := make(map[string]bool)

	for i, rec := range records {
		if rec.SiteID == "" || rec.CloneID == "" {
			return nil, fmt.Errorf("record %d: %w: site and clone ids are required", i, ErrInvalidRecord)
		}

		idx, ok := t.index[rec.SiteID]
		if !ok {
			idx = make(map[string]int)
			t.index[rec.SiteID] = idx
			t.sites = append(t.sites, rec.SiteID)
		}
		if !seenClone[rec.CloneID] {
			seenClone[rec.CloneID] = true
			t.clones = append(t.clones, rec.CloneID)
		}

		v, err := NewValue(rec.ClonalPrev.Float64())
		if err != nil {
			return nil, fmt.Errorf("record %d: site %q clone %q: %w", i, rec.SiteID, rec.CloneID, err)
		}
		cp := v.Float64()
		if pos, dup := idx[rec.CloneID]; dup {
			if opts.RejectDuplicates {
				return nil, fmt.Errorf("record %d: %w: site %q clone %q", i, ErrDuplicateRecord, rec.SiteID, rec.CloneID)
			}
			t.entries[rec.SiteID][pos].CP = cp
			t.Duplicates = append(t.Duplicates, rec)
			continue
		}
		idx[rec.CloneID] = len(t.entries[rec.SiteID])
		t.entries[rec.SiteID] = append(t.entries[rec.SiteID], Entry{Clone: rec.CloneID, CP: cp})
	}

	return t, nil
}

// Sites returns the site ids in first-appearance order.
func (t *Table) Sites() []string { return append([]string(nil), t.sites...) }

// Clones returns every clone id in first-appearance order across all sites.
func (t *Table) Clones() []string { return append([]string(nil), t.clones...) }

// Entries returns the raw prevalences recorded for site, in order.
func (t *Table) Entries(site string) []Entry {
	return append([]Entry(nil), t.entries[site]...)
}

// CP returns the raw prevalence of clone at site.
func (t *Table) CP(site, clone string) (float64, bool) {
	pos, ok := t.index[site][clone]
	if !ok {
		return 0, false
	}
	return t.entries[site][pos].CP, true
}

// Threshold returns the minimum visible prevalence for nCells cells.
// A clone survives when its cp is strictly greater.
func Threshold(nCells int) float64 { return 1 / float64(nCells) }

// Normalize thresholds and rescales the prevalences of one site.
//
// Clones with cp > 1/nCells survive and receive adj_cp = cp / Σcp over
// survivors; the rest are left out of the result entirely.
func (t *Table) Normalize(site string, nCells int) (*Site, error) {
	if nCells < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCellCount, nCells)
	}
	entries, ok := t.entries[site]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSite, site)
	}

	threshold := Threshold(nCells)
	s := &Site{
		ID:        site,
		Threshold: threshold,
		CP:        make(map[string]float64, len(entries)),
		AdjCP:     make(map[string]float64, len(entries)),
	}

	var total float64
	for _, e := range entries {
		s.CP[e.Clone] = e.CP
		if e.CP > threshold {
			total += e.CP
			s.Genotypes = append(s.Genotypes, e.Clone)
		}
	}
	if len(s.Genotypes) == 0 || total <= 0 || math.IsInf(total, 0) || math.IsNaN(total) {
		return nil, fmt.Errorf("%w: site %q (threshold %g)", ErrEmptySite, site, threshold)
	}

	for _, clone := range s.Genotypes {
		s.AdjCP[clone] = s.CP[clone] / total
	}
	return s, nil
}

// Site is the normalized prevalence of one anatomic site.
type Site struct {
	ID        string             `json:"site_id"`
	Threshold float64            `json:"threshold"`
	Genotypes []string           `json:"genotypes_to_plot"` // survivors, input order
	CP        map[string]float64 `json:"cp"`                // every clone recorded at the site
	AdjCP     map[string]float64 `json:"adj_cp"`            // survivors only
}

// Dominant returns the surviving clone with the highest adjusted prevalence.
// Ties go to the clone listed first.
func (s *Site) Dominant() string {
	var best string
	for _, clone := range s.Genotypes {
		if best == "" || s.AdjCP[clone] > s.AdjCP[best] {
			best = clone
		}
	}
	return best
}
