package cellmap

import (
	"context"
	"math"
	"math/rand/v2"
)

// Vertex is one sampled point of a layout.
type Vertex struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Real     bool    `json:"real_cell"`
	Colour   string  `json:"col,omitempty"`
	Genotype string  `json:"genotype,omitempty"`
}

// GenerateVertices rejection-samples points uniformly in the grid cell until
// exactly geom.NCells of them fall strictly inside the real-cell circle.
// Points outside the circle are kept as fake cells. Vertices are returned in
// sampling order.
func GenerateVertices(ctx context.Context, rng *rand.Rand, geom Geometry) ([]Vertex, error) {
	if err := geom.Validate(); err != nil {
		return nil, err
	}

	cx, cy := geom.Center()
	r := geom.Radius()
	vertices := make([]Vertex, 0, expectedVertices(geom))
	for accepted := 0; accepted < geom.NCells; {
		x := rng.Float64() * geom.Width
		y := rng.Float64() * geom.Height
		inside := math.Hypot(x-cx, y-cy) < r
		if inside {
			accepted++
		}
		vertices = append(vertices, Vertex{X: x, Y: y, Real: inside})
	}
	return vertices, nil
}

// ctxCheckInterval is how many samples are drawn between context checks.
const ctxCheckInterval = 4096

// maxPrealloc bounds the initial capacity for very sparse geometries.
const maxPrealloc = 1 << 20

// expectedVertices estimates the total vertex count from the ratio of the
// rectangle area to the circle area.
func expectedVertices(geom Geometry) int {
	r := geom.Radius()
	ratio := geom.Width * geom.Height / (math.Pi * r * r)
	if ratio < 1 {
		ratio = 1
	}
	return int(math.Min(math.Ceil(ratio*float64(geom.NCells)), maxPrealloc))
}

// CountReal returns the number of real cells in vertices.
func CountReal(vertices []Vertex) int {
	n := 0
	for _, v := range vertices {
		if v.Real {
			n++
		}
	}
	return n
}
