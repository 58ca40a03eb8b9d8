package domain

// StartNodeID is the sentinel id that marks the entry point of a graph.
// When absent, the first node in declaration order is the entry point.
const StartNodeID = "start"

// Graph is the authored scenario: an ordered node collection, the edges
// between them, and the lowest-priority variable scope.
type Graph struct {
	ID              string            `json:"id,omitempty" yaml:"id,omitempty"`
	Name            string            `json:"name,omitempty" yaml:"name,omitempty"`
	Nodes           []Node            `json:"nodes" yaml:"nodes"`
	Edges           []Edge            `json:"edges" yaml:"edges"`
	GlobalVariables map[string]string `json:"global_variables,omitempty" yaml:"global_variables,omitempty"`
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i], true
		}
	}
	return nil, false
}

// EdgesFrom returns all edges leaving the given node, in declaration order.
func (g *Graph) EdgesFrom(id string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	return out
}

// EntryNode returns the node a fresh session starts on: the start sentinel
// if present, otherwise the first declared node.
func (g *Graph) EntryNode() (*Node, bool) {
	if n, ok := g.Node(StartNodeID); ok {
		return n, true
	}
	if len(g.Nodes) == 0 {
		return nil, false
	}
	return &g.Nodes[0], true
}
