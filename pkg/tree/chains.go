package tree

// Chains partitions a tree into maximal linear runs. Each run is keyed by the
// node that starts it; Runs holds the nodes continuing the run, in order.
type Chains struct {
	Starts []string            `json:"starts"` // discovery order
	Runs   map[string][]string `json:"runs"`
}

// LinearChains walks the hierarchy under root and groups single-child runs.
//
// A node without an inherited chain starts one and becomes its key. A node
// with exactly one child passes its chain on to that child; a node with zero
// or several children makes each child start a fresh chain.
func LinearChains(root *Node) *Chains {
	c := &Chains{Runs: make(map[string][]string)}
	if root == nil {
		return c
	}

	var walk func(n *Node, base string)
	walk = func(n *Node, base string) {
		if base == "" {
			base = n.ID
			c.Starts = append(c.Starts, base)
			c.Runs[base] = []string{}
		} else {
			c.Runs[base] = append(c.Runs[base], n.ID)
		}

		if len(n.Children) == 1 {
			walk(n.Children[0], base)
			return
		}
		for _, child := range n.Children {
			walk(child, "")
		}
	}
	walk(root, "")

	return c
}

// ChainOf returns the start of the chain containing id.
func (c *Chains) ChainOf(id string) (string, bool) {
	for _, start := range c.Starts {
		if start == id {
			return start, true
		}
		for _, member := range c.Runs[start] {
			if member == id {
				return start, true
			}
		}
	}
	return "", false
}

// Members returns the full chain starting at start: the start node followed
// by its run.
func (c *Chains) Members(start string) []string {
	run, ok := c.Runs[start]
	if !ok {
		return nil
	}
	return append([]string{start}, run...)
}
