package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/skyscene/internal/engine/scene"
	"github.com/Faultbox/skyscene/pkg/math"
)

func TestDefaultCamera(t *testing.T) {
	c := Default(2)
	assert.Equal(t, math.V3(6, 0, 10), c.Eye())
	assert.Equal(t, math.Vec3{}, c.Target())
	assert.InDelta(t, 0.733, c.FovY, 1e-3)
	assert.Equal(t, float32(0.1), c.Near())
	assert.Equal(t, float32(50), c.Far())

	// The target projects to the screen center.
	clip := c.Projection().Mul(c.View()).MulVec4(math.Vec4{W: 1})
	assert.InDelta(t, 0, clip.X/clip.W, 1e-5)
	assert.InDelta(t, 0, clip.Y/clip.W, 1e-5)
}

func TestFromScene(t *testing.T) {
	g := scene.New()
	root, err := g.AddNode("root", scene.NoNode, math.Identity())
	require.NoError(t, err)
	cam, _ := g.AddNode("cam", root, math.Translate(math.V3(0, 2, 8)))
	g.Camera = &scene.EmbeddedCamera{
		Node: cam, LookAt: math.V3(0, 0, -1), Up: math.V3(0, 1, 0),
		FovY: 0.5, Near: 0.5, Far: 100,
	}

	c, ok := FromScene(g, 1.5)
	require.True(t, ok)
	assert.Equal(t, math.V3(0, 2, 8), c.Eye())
	// Closest approach of the ray z -> -inf at height 2 is (0, 2, 0).
	assert.True(t, c.Target().ApproxEqual(math.V3(0, 2, 0), 1e-5), "target %v", c.Target())
	assert.Equal(t, float32(0.5), c.FovY)
	assert.Equal(t, float32(100), c.Far())

	g.Camera = nil
	_, ok = FromScene(g, 1)
	assert.False(t, ok)
}

func TestZoom(t *testing.T) {
	c := NewPerspective(math.V3(0, 0, 10), math.Vec3{}, math.V3(0, 1, 0), 1, 0.1, 50, 1)
	Zoom(c, 0.5)
	assert.Equal(t, math.V3(0, 0, 5), c.Eye())

	o := NewOrtho(math.V3(0, 0, 10), math.Vec3{}, math.V3(0, 1, 0), 1, 0.1, 50, 10)
	Zoom(o, 0.5)
	assert.Equal(t, float32(5), o.Scale)
	assert.Equal(t, math.V3(0, 0, 10), o.Eye())
}

func TestOrbitKeepsDistance(t *testing.T) {
	c := NewPerspective(math.V3(0, 0, 10), math.V3(1, 0, 0), math.V3(0, 1, 0), 1, 0.1, 50, 1)
	before := c.Eye().Distance(c.Target())
	Orbit(c, 0.3, -0.2)
	assert.InDelta(t, before, c.Eye().Distance(c.Target()), 1e-4)
	assert.Equal(t, math.V3(1, 0, 0), c.Target())

	c = NewPerspective(math.V3(0, 0, 10), math.Vec3{}, math.V3(0, 1, 0), 1, 0.1, 50, 1)
	Orbit(c, math.Pi/2, 0)
	assert.True(t, c.Eye().ApproxEqual(math.V3(10, 0, 0), 1e-4), "eye %v", c.Eye())
}

func TestPanMovesEyeAndTarget(t *testing.T) {
	c := NewPerspective(math.V3(0, 0, 10), math.Vec3{}, math.V3(0, 1, 0), 1, 0.1, 50, 1)
	Pan(c, 2, 1)
	assert.True(t, c.Eye().ApproxEqual(math.V3(2, 1, 10), 1e-6))
	assert.True(t, c.Target().ApproxEqual(math.V3(2, 1, 0), 1e-6))
}

func TestControllerDrag(t *testing.T) {
	c := NewPerspective(math.V3(0, 0, 10), math.Vec3{}, math.V3(0, 1, 0), 1, 0.1, 50, 1)
	ctl := NewController(c)

	ctl.HandleDrag(ButtonRight, 100, 0)
	// 100 px * 10 units * 0.0005 to the left.
	assert.True(t, c.Target().ApproxEqual(math.V3(-0.5, 0, 0), 1e-5), "target %v", c.Target())

	ctl.HandleDrag(ButtonMiddle, 50, 50)
	assert.True(t, c.Target().ApproxEqual(math.V3(-0.5, 0, 0), 1e-5))

	ctl.HandleZoom(10)
	assert.InDelta(t, 9, c.Eye().Distance(c.Target()), 1e-4)
}

func TestScreenAxes(t *testing.T) {
	c := Default(1)
	assert.InDelta(t, 0, c.Right().Dot(c.Up()), 1e-6)
	assert.InDelta(t, 1, c.Right().Length(), 1e-6)
	assert.InDelta(t, 0, c.Right().Dot(c.Target().Sub(c.Eye())), 1e-5)
}
