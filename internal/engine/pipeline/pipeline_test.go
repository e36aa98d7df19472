package pipeline

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/skyscene/internal/engine/camera"
	"github.com/Faultbox/skyscene/internal/engine/gpu"
	"github.com/Faultbox/skyscene/internal/engine/gpu/softgpu"
	"github.com/Faultbox/skyscene/internal/engine/lighting"
	"github.com/Faultbox/skyscene/internal/engine/material"
	"github.com/Faultbox/skyscene/internal/engine/scene"
	"github.com/Faultbox/skyscene/internal/engine/shadow"
	"github.com/Faultbox/skyscene/internal/engine/sky"
	"github.com/Faultbox/skyscene/pkg/math"
)

const (
	testWidth  = 32
	testHeight = 24
)

// checkedDevice fails the test when a draw samples one of its own targets.
type checkedDevice struct {
	gpu.Device
	t *testing.T
}

func (d *checkedDevice) Draw(dr gpu.Draw) {
	target := dr.Target
	if target == nil {
		target = d.Default()
	}
	for name, b := range dr.Textures {
		for i := 0; i < target.ColorCount(); i++ {
			if b.Texture == target.Color(i) {
				d.t.Errorf("%v draw into %s samples its own color attachment through %s", dr.Program, target.Label(), name)
			}
		}
		if depth := target.Depth(); depth != nil && b.Texture == depth && (dr.State.DepthTest || dr.State.DepthWrite) {
			d.t.Errorf("%v draw into %s samples its own depth through %s", dr.Program, target.Label(), name)
		}
	}
	d.Device.Draw(dr)
}

// cubeScene is a root with one child holding a unit cube.
func cubeScene(t *testing.T) *scene.Graph {
	t.Helper()
	g := scene.New()
	root, err := g.AddNode("root", scene.NoNode, math.Identity())
	require.NoError(t, err)
	child, err := g.AddNode("cube", root, math.Identity())
	require.NoError(t, err)

	data := gpu.Cube(1)
	_, err = g.AddMesh(child, &scene.Mesh{
		Name:      "cube",
		Positions: data.Positions,
		Normals:   data.Normals,
		Indices:   data.Indices,
	})
	require.NoError(t, err)
	require.NoError(t, g.Validate())
	return g
}

func newPipeline(t *testing.T) (*Pipeline, *softgpu.Device) {
	t.Helper()
	dev := softgpu.New(testWidth, testHeight)
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = testWidth, testHeight
	cfg.ShadowResolution = 256
	p, err := New(&checkedDevice{Device: dev, t: t}, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, p.Close()) })
	return p, dev
}

func testCamera() camera.Camera { return camera.Default(float32(testWidth) / testHeight) }

func testSkybox(t *testing.T, dev gpu.Device) gpu.Texture {
	t.Helper()
	var faces [6]*image.RGBA
	for i := range faces {
		faces[i] = image.NewRGBA(image.Rect(0, 0, 4, 4))
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				faces[i].Set(x, y, color.RGBA{R: 40 * uint8(i), G: 128, B: 200, A: 255})
			}
		}
	}
	tex, err := dev.NewCubeMap("sky", faces)
	require.NoError(t, err)
	return tex
}

func luminance(v math.Vec4) float32 { return v.XYZ().Luminance() }

// Center of the screen sees the cube, the corner sees background.
func TestDeferredFrameShadesCube(t *testing.T) {
	p, dev := newPipeline(t)
	p.Modes.SetSkybox(false)

	sc := &Scene{
		Graph:     cubeScene(t),
		Materials: material.NewTable(),
		Lights:    []lighting.Light{lighting.Default()},
	}
	plan := p.Render(testCamera(), sc)
	require.Equal(t, []PassID{PassGeometry, PassLights, PassDisplayAccum}, plan)
	require.NoError(t, dev.Err())

	depth, err := dev.ReadPixels(p.Resources().GBuffer, gpu.DepthAttachment)
	require.NoError(t, err)
	assert.Less(t, depth.At(testWidth/2, testHeight/2).X, float32(1))
	assert.Equal(t, float32(1), depth.At(0, 0).X)

	out, err := dev.ReadPixels(nil, 0)
	require.NoError(t, err)
	center, corner := out.At(testWidth/2, testHeight/2), out.At(0, 0)
	assert.Greater(t, luminance(center), luminance(corner))
	assert.Equal(t, float32(0), luminance(corner))
}

func TestLightContributionsAdd(t *testing.T) {
	g := cubeScene(t)
	lights := []lighting.Light{
		{Kind: lighting.KindPoint, Position: math.V3(3, 3, 3), Power: math.Splat3(300)},
		{Kind: lighting.KindPoint, Position: math.V3(4, -1, 5), Power: math.V3(100, 50, 20)},
		{Kind: lighting.KindPoint, Position: math.V3(-2, 4, 6), Power: math.V3(20, 80, 200)},
	}

	accum := func(ls ...lighting.Light) *gpu.Image {
		p, dev := newPipeline(t)
		p.Modes.SetSkybox(false)
		p.Render(testCamera(), &Scene{Graph: g, Lights: ls})
		require.NoError(t, dev.Err())
		img, err := dev.ReadPixels(p.Resources().Accum, 0)
		require.NoError(t, err)
		return img
	}

	sum := gpu.NewImage(testWidth, testHeight)
	for _, l := range lights {
		img := accum(l)
		for i := range sum.Pix {
			sum.Pix[i] = sum.Pix[i].Add(img.Pix[i])
		}
	}

	for _, order := range [][3]int{{0, 1, 2}, {2, 1, 0}, {1, 2, 0}} {
		img := accum(lights[order[0]], lights[order[1]], lights[order[2]])
		for i := range sum.Pix {
			want, got := sum.Pix[i].XYZ(), img.Pix[i].XYZ()
			assert.True(t, got.ApproxEqual(want, 1e-5), "order %v pixel %d: %v != %v", order, i, got, want)
		}
	}
}

func TestEveryModeRenders(t *testing.T) {
	p, dev := newPipeline(t)
	sc := &Scene{
		Graph:     cubeScene(t),
		Materials: material.NewTable(),
		Lights: []lighting.Light{
			lighting.Default(),
			{Kind: lighting.KindAmbient, Radiance: math.Splat3(0.05), Range: math.Inf(1)},
		},
		Sky:    sky.New(math.Radians(40), 3).Coefficients(),
		Skybox: testSkybox(t, dev),
	}
	for _, m := range allModes() {
		p.Modes = m
		plan := p.Render(testCamera(), sc)
		assert.Equal(t, Plan(m), plan)
		require.NoError(t, dev.Err(), "%v", m)
	}
}

func TestSunSkyLightsBackground(t *testing.T) {
	p, dev := newPipeline(t)
	p.Modes.SetSunSky(true)
	p.Modes.SetBlur(true)

	sc := &Scene{
		Graph:  cubeScene(t),
		Lights: []lighting.Light{lighting.Default()},
		Sky:    sky.New(math.Radians(30), 3).Coefficients(),
	}
	plan := p.Render(testCamera(), sc)
	require.Equal(t, PassDisplayMerge, plan[len(plan)-1])
	require.NoError(t, dev.Err())

	out, err := dev.ReadPixels(nil, 0)
	require.NoError(t, err)
	assert.Greater(t, luminance(out.At(0, testHeight-1)), float32(0))
}

func TestGBufferViewFillsQuadrants(t *testing.T) {
	p, dev := newPipeline(t)
	p.Modes.SetGBufferView(true)

	p.Render(testCamera(), &Scene{Graph: cubeScene(t)})
	require.NoError(t, dev.Err())

	out, err := dev.ReadPixels(nil, 0)
	require.NoError(t, err)
	// The parameters quadrant holds eta = 1.5 where the cube is.
	assert.InDelta(t, 1.5, out.At(testWidth/4, testHeight/4).X, 1e-4)
}

func TestMeshesUploadOnce(t *testing.T) {
	p, dev := newPipeline(t)
	sc := &Scene{Graph: cubeScene(t)}
	p.Render(testCamera(), sc)
	p.Render(testCamera(), sc)
	require.NoError(t, dev.Err())
	assert.Len(t, p.meshes, 1)

	// A new scene drops the old uploads.
	p.Render(testCamera(), &Scene{Graph: cubeScene(t)})
	assert.Len(t, p.meshes, 1)
	require.NoError(t, p.ReleaseMeshes())
	assert.Empty(t, p.meshes)
}

func TestNewResourcesRejectsEmptyViewport(t *testing.T) {
	_, err := NewResources(softgpu.New(4, 4), 0, 4, shadow.NewMap(64))
	assert.Error(t, err)
}

func TestResourcesDestroy(t *testing.T) {
	dev := softgpu.New(8, 8)
	r, err := NewResources(dev, 8, 8, shadow.NewMap(64))
	require.NoError(t, err)
	assert.Len(t, r.All(), 7)
	assert.Equal(t, gbufferAttachments, r.GBuffer.ColorCount())
	assert.Equal(t, BloomLevels, r.Accum.Color(0).Desc().Levels)

	require.NoError(t, r.Destroy())
	assert.Empty(t, r.All())
}
