package shadow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/skyscene/pkg/math"
)

func TestNewMap(t *testing.T) {
	assert.Equal(t, DefaultResolution, NewMap(0).Resolution)
	desc := NewMap(512).FramebufferDesc()
	assert.Equal(t, 512, desc.Width)
	assert.Equal(t, 512, desc.Height)
	assert.True(t, desc.Depth)
	assert.Empty(t, desc.Color)
}

func TestLightCameraLooksAtOrigin(t *testing.T) {
	view, proj := ViewProjection(math.V3(3, 3, 3), 4.0/3)
	clip := proj.Mul(view).MulVec4(math.Vec4{W: 1})
	assert.InDelta(t, 0, clip.X/clip.W, 1e-5)
	assert.InDelta(t, 0, clip.Y/clip.W, 1e-5)

	c := LightCamera(math.V3(3, 3, 3), 1)
	assert.Equal(t, float32(Near), c.Near())
	assert.Equal(t, float32(Far), c.Far())
	assert.Equal(t, float32(FovY), c.FovY)
}

func TestLightCameraOverheadHasValidFrame(t *testing.T) {
	c := LightCamera(math.V3(0, 5, 0), 1)
	assert.InDelta(t, 1, c.Right().Length(), 1e-5)
}
