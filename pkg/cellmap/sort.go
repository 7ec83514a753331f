package cellmap

// compareFunc orders two vertices. It returns a negative number when a sorts
// before b and a positive number otherwise; zero is never returned.
type compareFunc func(a, b Vertex) int

// rowPass places a before b when a is above or to the left of b.
func rowPass(a, b Vertex) int {
	if a.Y < b.Y || a.X < b.X {
		return -1
	}
	return 1
}

// columnPass places a after b when a is right of or below b.
func columnPass(a, b Vertex) int {
	if a.X > b.X || a.Y > b.Y {
		return 1
	}
	return -1
}

// SortVertices puts vertices in scan order, in place.
//
// The order is the result of two passes of a stable top-down merge sort,
// first with rowPass and then with columnPass. Neither comparator is a strict
// weak ordering (they never report equality and combine both axes with OR),
// so the outcome depends on the exact merge procedure: when merging, the
// element from the right run is taken only if it compares strictly less than
// the element from the left run. The same input therefore always yields the
// same order, which keeps genotype boundaries reproducible.
func SortVertices(vertices []Vertex) {
	if len(vertices) < 2 {
		return
	}
	buf := make([]Vertex, len(vertices))
	mergeSort(vertices, buf, rowPass)
	mergeSort(vertices, buf, columnPass)
}

func mergeSort(v, buf []Vertex, cmp compareFunc) {
	if len(v) < 2 {
		return
	}
	mid := len(v) / 2
	mergeSort(v[:mid], buf[:mid], cmp)
	mergeSort(v[mid:], buf[mid:], cmp)
	merge(v, mid, buf, cmp)
}

func merge(v []Vertex, mid int, buf []Vertex, cmp compareFunc) {
	copy(buf, v)
	left, right := buf[:mid], buf[mid:len(v)]
	i, j, k := 0, 0, 0
	for i < len(left) && j < len(right) {
		if cmp(right[j], left[i]) < 0 {
			v[k] = right[j]
			j++
		} else {
			v[k] = left[i]
			i++
		}
		k++
	}
	k += copy(v[k:], left[i:])
	copy(v[k:], right[j:])
}
