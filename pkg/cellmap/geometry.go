package cellmap

import (
	"errors"
	"fmt"
	"math"
)

// DefaultMargin is the gap between the real-cell circle and the top and
// bottom edges of the grid cell.
const DefaultMargin = 45.0

// Limits on the work a single site layout may request.
const (
	MaxCells   = 1_000_000
	MaxSamples = 1 << 23
)

var (
	// ErrInvalidGeometry is returned when the grid cell cannot hold a
	// positive-radius circle or the cell count is not positive.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrMissingColour is returned when a genotype has no colour assigned.
	ErrMissingColour = errors.New("missing clone colour")
)

// Geometry describes the grid cell a site is drawn into.
type Geometry struct {
	Width  float64 `json:"grid_cell_width"`
	Height float64 `json:"grid_cell_height"`
	Margin float64 `json:"circle_margin"`
	NCells int     `json:"n_cells"`
}

// Radius returns the radius of the real-cell circle.
func (g Geometry) Radius() float64 { return g.Height/2 - g.Margin }

// Center returns the centre of the grid cell.
func (g Geometry) Center() (x, y float64) { return g.Width / 2, g.Height / 2 }

// Validate reports whether vertex generation can terminate for g.
func (g Geometry) Validate() error {
	switch {
	case !(g.Width > 0) || !(g.Height > 0) || math.IsInf(g.Width, 0) || math.IsInf(g.Height, 0):
		return fmt.Errorf("%w: grid cell %gx%g must have positive dimensions", ErrInvalidGeometry, g.Width, g.Height)
	case g.NCells < 1:
		return fmt.Errorf("%w: n_cells must be at least 1, got %d", ErrInvalidGeometry, g.NCells)
	case g.NCells > MaxCells:
		return fmt.Errorf("%w: n_cells must be at most %d, got %d", ErrInvalidGeometry, MaxCells, g.NCells)
	case !(g.Radius() > 0):
		return fmt.Errorf("%w: circle radius %g (height %g, margin %g) must be positive", ErrInvalidGeometry, g.Radius(), g.Height, g.Margin)
	}
	if n := g.sampleBound(); n > MaxSamples {
		return fmt.Errorf("%w: circle radius %g is too small for a %gx%g grid cell (up to %.3g samples for %d cells)",
			ErrInvalidGeometry, g.Radius(), g.Width, g.Height, n, g.NCells)
	}
	return nil
}

// sampleBound is an upper bound on the expected number of samples needed to
// land NCells points inside the circle. The area of the circle inside the grid
// cell is at least that of its inscribed square clipped to the cell.
func (g Geometry) sampleBound() float64 {
	side := math.Sqrt2 * g.Radius()
	inner := math.Min(g.Width, side) * math.Min(g.Height, side)
	return float64(g.NCells) * g.Width * g.Height / inner
}
