package lighting

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/skyscene/internal/engine/scene"
	"github.com/Faultbox/skyscene/pkg/math"
)

func TestFirstPoint(t *testing.T) {
	assert.Equal(t, Default(), FirstPoint(nil))

	lights := []Light{
		{Kind: KindAmbient, Radiance: math.Splat3(0.1)},
		{Kind: KindArea, Node: "panel"},
		{Kind: KindPoint, Node: "bulb", Power: math.Splat3(50)},
		{Kind: KindPoint, Node: "second"},
	}
	assert.Equal(t, "bulb", FirstPoint(lights).Node)
	assert.Equal(t, Default(), FirstPoint(lights[:2]))
}

func TestDefaultLight(t *testing.T) {
	l := Default()
	assert.Equal(t, DefaultNodeName, l.Node)
	assert.Equal(t, math.V3(3, 3, 3), l.Position)
	assert.Equal(t, math.V3(300, 300, 300), l.Power)
	assert.True(t, l.ShadesAsPoint())
}

func TestWorldPosition(t *testing.T) {
	g := scene.New()
	root, _ := g.AddNode("root", scene.NoNode, math.Translate(math.V3(0, 1, 0)))
	_, _ = g.AddNode("lamp", root, math.Translate(math.V3(2, 0, 0)))

	l := Light{Node: "lamp", Kind: KindPoint, Position: math.V3(0, 0, 1)}
	assert.Equal(t, math.V3(2, 1, 1), l.WorldPosition(g))

	// Unknown nodes anchor the light at the origin frame.
	l.Node = "gone"
	assert.Equal(t, math.V3(0, 0, 1), l.WorldPosition(g))
}

func TestShadesAsPoint(t *testing.T) {
	assert.True(t, Light{Kind: KindArea}.ShadesAsPoint())
	assert.False(t, Light{Kind: KindAmbient}.ShadesAsPoint())
	assert.Equal(t, "area", KindArea.String())
}
