// Package scene holds the imported scene graph: an arena of nodes addressed
// by NodeID, the meshes they own and the optional camera embedded in the
// asset. Global transforms are never cached; Resolve recomputes them from
// whichever local transforms the caller supplies, static or animated.
package scene

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/skyscene/internal/engine/material"
	"github.com/Faultbox/skyscene/internal/logger"
	"github.com/Faultbox/skyscene/pkg/math"
)

// NodeID indexes Graph.Nodes.
type NodeID int

// NoNode is the parent of the root.
const NoNode NodeID = -1

// Node is one node of the hierarchy.
type Node struct {
	Name     string
	Parent   NodeID
	Children []NodeID
	Local    math.Mat4 // import-time local transform

	// Meshes indexes Graph.Meshes; Materials[i] shades Meshes[i].
	Meshes    []int
	Materials []material.Handle
}

// Graph is a node tree stored as an arena. Node 0 is the root.
type Graph struct {
	Nodes  []Node
	Meshes []*Mesh
	Camera *EmbeddedCamera

	byName map[string]NodeID
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{byName: make(map[string]NodeID)}
}

// AddNode appends a node under parent. The first node must be the root
// (parent NoNode); every later node needs an existing parent.
func (g *Graph) AddNode(name string, parent NodeID, local math.Mat4) (NodeID, error) {
	id := NodeID(len(g.Nodes))
	switch {
	case parent == NoNode && id != 0:
		return NoNode, fmt.Errorf("node %q: graph already has a root", name)
	case parent != NoNode && !g.valid(parent):
		return NoNode, fmt.Errorf("node %q: parent %d does not exist", name, parent)
	}

	g.Nodes = append(g.Nodes, Node{Name: name, Parent: parent, Local: local})
	if parent != NoNode {
		g.Nodes[parent].Children = append(g.Nodes[parent].Children, id)
	}
	if g.byName == nil {
		g.byName = make(map[string]NodeID)
	}
	// Asset names are not unique; the first node keeps the name.
	if _, dup := g.byName[name]; !dup {
		g.byName[name] = id
	}
	return id, nil
}

// AddMesh attaches m to node and returns its mesh index. The mesh starts
// with the default material; BindMaterials assigns the real one.
func (g *Graph) AddMesh(node NodeID, m *Mesh) (int, error) {
	if !g.valid(node) {
		return -1, fmt.Errorf("mesh %q: node %d does not exist", m.Name, node)
	}
	idx := len(g.Meshes)
	g.Meshes = append(g.Meshes, m)
	n := &g.Nodes[node]
	n.Meshes = append(n.Meshes, idx)
	n.Materials = append(n.Materials, material.DefaultHandle)
	return idx, nil
}

func (g *Graph) valid(id NodeID) bool { return id >= 0 && int(id) < len(g.Nodes) }

// Root returns the root node, or NoNode for an empty graph.
func (g *Graph) Root() NodeID {
	if len(g.Nodes) == 0 {
		return NoNode
	}
	return 0
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.Nodes) }

// Node returns the node with the given id.
func (g *Graph) Node(id NodeID) *Node { return &g.Nodes[id] }

// Find looks up a node by name.
func (g *Graph) Find(name string) (NodeID, bool) {
	id, ok := g.byName[name]
	return id, ok
}

// Walk visits every node depth-first in pre-order: a node is always visited
// before its children, and children in their stored order.
func (g *Graph) Walk(fn func(id NodeID)) {
	g.walk(func(id NodeID) bool {
		fn(id)
		return true
	})
}

// walk stops as soon as fn returns false.
func (g *Graph) walk(fn func(id NodeID) bool) {
	if len(g.Nodes) == 0 {
		return
	}
	stack := []NodeID{0}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(id) {
			return
		}
		children := g.Nodes[id].Children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}

// Resolve computes every node's global transform, indexed by NodeID, as
// parent global times local(id). local is called exactly once per node.
func (g *Graph) Resolve(local func(NodeID) math.Mat4) []math.Mat4 {
	globals := make([]math.Mat4, len(g.Nodes))
	g.Walk(func(id NodeID) {
		l := local(id)
		if p := g.Nodes[id].Parent; p != NoNode {
			globals[id] = globals[p].Mul(l)
		} else {
			globals[id] = l
		}
	})
	return globals
}

// StaticLocal returns the import-time local transform of id.
func (g *Graph) StaticLocal(id NodeID) math.Mat4 { return g.Nodes[id].Local }

// StaticGlobals resolves the import-time pose.
func (g *Graph) StaticGlobals() []math.Mat4 { return g.Resolve(g.StaticLocal) }

// GlobalTransform returns the import-time global transform of a single node
// by walking its ancestor chain.
func (g *Graph) GlobalTransform(id NodeID) math.Mat4 {
	m := math.Identity()
	for ; id != NoNode; id = g.Nodes[id].Parent {
		m = g.Nodes[id].Local.Mul(m)
	}
	return m
}

// NodeTransform returns the global transform of the named node. An unknown
// name yields identity so that whatever references it stays at the origin.
func (g *Graph) NodeTransform(name string) math.Mat4 {
	id, ok := g.Find(name)
	if !ok {
		logger.Debug("node not found, using identity", zap.String("node", name))
		return math.Identity()
	}
	return g.GlobalTransform(id)
}

// BindMaterials resolves the material of every mesh instance against t.
func (g *Graph) BindMaterials(t *material.Table) {
	for i := range g.Nodes {
		n := &g.Nodes[i]
		for j, mi := range n.Meshes {
			n.Materials[j] = t.Resolve(n.Name, g.Meshes[mi].Material)
		}
	}
}

// Validate checks the arena links: one root, consistent parent and child
// lists, no cycles and in-range mesh indices.
func (g *Graph) Validate() error {
	if len(g.Nodes) == 0 {
		return errors.New("scene has no nodes")
	}
	if g.Nodes[0].Parent != NoNode {
		return errors.New("node 0 is not a root")
	}
	seen := make([]bool, len(g.Nodes))
	owner := make([]int, len(g.Meshes))
	for i := range owner {
		owner[i] = -1
	}
	var err error
	g.walk(func(id NodeID) bool {
		if seen[id] {
			err = fmt.Errorf("node %d reached twice", id)
			return false
		}
		seen[id] = true
		n := &g.Nodes[id]
		for _, c := range n.Children {
			if !g.valid(c) || g.Nodes[c].Parent != id {
				err = fmt.Errorf("node %d: child %d does not point back", id, c)
				return false
			}
		}
		if len(n.Materials) != len(n.Meshes) {
			err = fmt.Errorf("node %q: %d materials for %d meshes", n.Name, len(n.Materials), len(n.Meshes))
			return false
		}
		for _, mi := range n.Meshes {
			if mi < 0 || mi >= len(g.Meshes) {
				err = fmt.Errorf("node %q: mesh %d out of range", n.Name, mi)
				return false
			}
			if owner[mi] != -1 {
				err = fmt.Errorf("mesh %d owned by nodes %d and %d", mi, owner[mi], id)
				return false
			}
			owner[mi] = int(id)
		}
		return true
	})
	if err != nil {
		return err
	}
	for id, ok := range seen {
		if !ok {
			return fmt.Errorf("node %d is unreachable from the root", id)
		}
	}
	return nil
}
