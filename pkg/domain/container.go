package domain

// Container is a named, column-configured group of nodes. It exports as a "group".
type Container struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	NumCol int    `json:"numCol"`
	Nodes  []Node `json:"nodes"`
}

// ClampColumns returns n, or 1 when n is not positive.
func ClampColumns(n int) int {
	if n > 0 {
		return n
	}
	return 1
}

// Clone returns a copy of c that shares no slices with it.
func (c Container) Clone() Container {
	out := c
	out.Nodes = make([]Node, len(c.Nodes))
	for i, n := range c.Nodes {
		out.Nodes[i] = n.Clone()
	}
	return out
}
