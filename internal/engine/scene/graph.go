package scene

import "github.com/Faultbox/revolve/pkg/math"

// Node places an object in the world.
type Node struct {
	global math.Mat4
	object *Object
	dirty  bool
}

// SetGlobalTransform sets the world transform.
func (n *Node) SetGlobalTransform(m math.Mat4) {
	n.global = m
	n.dirty = true
}

// GlobalTransform returns the world transform.
func (n *Node) GlobalTransform() math.Mat4 {
	return n.global
}

// UpdateScene hands a changed transform to the object.
func (n *Node) UpdateScene() {
	if n.dirty && n.object != nil {
		n.object.SetModel(n.global)
	}
}

// Graph is a flat list of nodes.
type Graph struct {
	nodes   []*Node
	updates uint64
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

// AddNode creates a node carrying obj at the origin.
func (g *Graph) AddNode(obj *Object) *Node {
	n := &Node{global: math.Identity(), object: obj}
	g.nodes = append(g.nodes, n)
	return n
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// UpdateSpatial recomputes world bounds of objects whose node moved.
func (g *Graph) UpdateSpatial() {
	for _, n := range g.nodes {
		if n.dirty && n.object != nil {
			n.object.SetModel(n.global)
		}
	}
}

// UpdateScene marks every change as applied.
func (g *Graph) UpdateScene() {
	for _, n := range g.nodes {
		if n.dirty {
			n.dirty = false
			g.updates++
		}
	}
}

// Updates returns the number of node changes applied.
func (g *Graph) Updates() uint64 {
	return g.updates
}
