package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/skyscene/internal/engine/material"
	"github.com/Faultbox/skyscene/pkg/math"
)

// chain builds root A -> B -> C with arbitrary affine locals.
func chain(t *testing.T) (*Graph, [3]NodeID, [3]math.Mat4) {
	t.Helper()
	locals := [3]math.Mat4{
		math.TRS(math.V3(1, 2, 3), math.QuatFromAxisAngle(math.V3(0, 1, 0), 0.7), math.V3(2, 2, 2)),
		math.TRS(math.V3(-4, 0.5, 1), math.QuatFromAxisAngle(math.V3(1, 1, 0).Normalize(), -1.1), math.V3(1, 0.5, 3)),
		math.TRS(math.V3(0, 0, -2), math.QuatFromAxisAngle(math.V3(0, 0, 1), 2.3), math.V3(0.25, 1, 1)),
	}
	g := New()
	var ids [3]NodeID
	parent := NoNode
	for i, name := range []string{"A", "B", "C"} {
		id, err := g.AddNode(name, parent, locals[i])
		require.NoError(t, err)
		ids[i] = id
		parent = id
	}
	return g, ids, locals
}

func TestResolveComposesParentTimesLocal(t *testing.T) {
	g, ids, locals := chain(t)
	globals := g.StaticGlobals()

	a, b, c := ids[0], ids[1], ids[2]
	assert.Equal(t, locals[0], globals[a])
	assert.True(t, globals[b].ApproxEqual(globals[a].Mul(locals[1]), 1e-5))
	assert.True(t, globals[c].ApproxEqual(globals[b].Mul(locals[2]), 1e-5))
	assert.True(t, globals[c].ApproxEqual(g.GlobalTransform(c), 1e-4))
}

func TestResolveUsesSuppliedLocals(t *testing.T) {
	g, ids, locals := chain(t)
	moved := math.Translate(math.V3(0, 10, 0))
	globals := g.Resolve(func(id NodeID) math.Mat4 {
		if id == ids[1] {
			return moved
		}
		return g.StaticLocal(id)
	})
	want := locals[0].Mul(moved).Mul(locals[2])
	assert.True(t, globals[ids[2]].ApproxEqual(want, 1e-4))
}

func TestWalkIsPreOrder(t *testing.T) {
	g := New()
	root, _ := g.AddNode("root", NoNode, math.Identity())
	a, _ := g.AddNode("a", root, math.Identity())
	b, _ := g.AddNode("b", root, math.Identity())
	a1, _ := g.AddNode("a1", a, math.Identity())
	b1, _ := g.AddNode("b1", b, math.Identity())
	a2, _ := g.AddNode("a2", a, math.Identity())

	var order []NodeID
	g.Walk(func(id NodeID) { order = append(order, id) })
	assert.Equal(t, []NodeID{root, a, a1, a2, b, b1}, order)
}

func TestAddNodeRejectsBadParents(t *testing.T) {
	g := New()
	_, err := g.AddNode("orphan", 3, math.Identity())
	assert.Error(t, err)

	_, err = g.AddNode("root", NoNode, math.Identity())
	require.NoError(t, err)
	_, err = g.AddNode("second root", NoNode, math.Identity())
	assert.Error(t, err)
}

func TestNodeTransformDefaultsToIdentity(t *testing.T) {
	g, _, locals := chain(t)
	assert.Equal(t, math.Identity(), g.NodeTransform("missing light"))
	assert.Equal(t, locals[0], g.NodeTransform("A"))
}

func TestFindKeepsFirstName(t *testing.T) {
	g := New()
	root, _ := g.AddNode("dup", NoNode, math.Identity())
	_, _ = g.AddNode("dup", root, math.Translate(math.V3(1, 0, 0)))
	id, ok := g.Find("dup")
	assert.True(t, ok)
	assert.Equal(t, root, id)
}

func TestValidate(t *testing.T) {
	g, ids, _ := chain(t)
	_, err := g.AddMesh(ids[2], &Mesh{Name: "cube", Positions: []math.Vec3{{}, {}, {}}})
	require.NoError(t, err)
	assert.NoError(t, g.Validate())

	g.Nodes[ids[1]].Children = append(g.Nodes[ids[1]].Children, ids[0])
	assert.Error(t, g.Validate())

	assert.Error(t, New().Validate())
}

func TestBindMaterials(t *testing.T) {
	g := New()
	root, _ := g.AddNode("root", NoNode, math.Identity())
	floor, _ := g.AddNode("floor", root, math.Identity())
	bunny, _ := g.AddNode("bunny", root, math.Identity())
	_, _ = g.AddMesh(floor, &Mesh{Name: "floor", Material: "stone"})
	_, _ = g.AddMesh(bunny, &Mesh{Name: "bunny", Material: "stone"})

	table := material.NewTable()
	stone := table.AddNamed("stone", material.NewMicrofacet(0.3, 1.4, 1, math.Splat3(0.2)))
	gold := table.AddForNode("bunny", material.NewMicrofacet(0.1, 0.5, 1, math.V3(1, 0.8, 0.3)))
	g.BindMaterials(table)

	assert.Equal(t, stone, g.Nodes[floor].Materials[0])
	assert.Equal(t, gold, g.Nodes[bunny].Materials[0])
}
