// Package pipeline renders a scene through the forward or deferred pass
// sequence. A frame is planned from the current Modes and issued in program
// order on one gpu.Device, so every pass sees the writes of the passes
// before it.
package pipeline

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/skyscene/internal/engine/anim"
	"github.com/Faultbox/skyscene/internal/engine/camera"
	"github.com/Faultbox/skyscene/internal/engine/gpu"
	"github.com/Faultbox/skyscene/internal/engine/lighting"
	"github.com/Faultbox/skyscene/internal/engine/material"
	"github.com/Faultbox/skyscene/internal/engine/scene"
	"github.com/Faultbox/skyscene/internal/engine/shaders"
	"github.com/Faultbox/skyscene/internal/engine/shadow"
	"github.com/Faultbox/skyscene/internal/engine/sky"
	"github.com/Faultbox/skyscene/internal/logger"
)

// Config contains pipeline configuration options.
type Config struct {
	Width            int
	Height           int
	ShadowResolution int
	Exposure         float32
	Deferred         bool
}

// DefaultConfig returns a default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		Width:            1280,
		Height:           720,
		ShadowResolution: shadow.DefaultResolution,
		Exposure:         1.0,
		Deferred:         true,
	}
}

// Scene is what a frame draws.
type Scene struct {
	Graph     *scene.Graph
	Materials *material.Table
	Lights    []lighting.Light
	Animator  *anim.Animator // nil for a static scene
	Sky       sky.Coefficients
	Skybox    gpu.Texture // cube map, nil when none is loaded
}

// Pipeline owns the render targets and the uploaded meshes of one device.
type Pipeline struct {
	Modes    Modes
	Exposure float32
	// Target receives the displayed image. Nil selects the device default.
	Target gpu.Framebuffer

	dev  gpu.Device
	res  *Resources
	quad gpu.Mesh
	cube gpu.Mesh

	graph  *scene.Graph
	meshes map[int]gpu.Mesh
	log    *zap.Logger
}

// New loads every program and allocates the render targets. Any failure is
// fatal for the caller: there is no partial pipeline.
func New(dev gpu.Device, cfg Config) (*Pipeline, error) {
	for _, id := range shaders.All() {
		if err := dev.LoadProgram(id); err != nil {
			return nil, fmt.Errorf("loading %v program: %w", id, err)
		}
	}

	res, err := NewResources(dev, cfg.Width, cfg.Height, shadow.NewMap(cfg.ShadowResolution))
	if err != nil {
		return nil, err
	}
	p := &Pipeline{
		Modes:    DefaultModes(cfg.Deferred),
		Exposure: cfg.Exposure,
		dev:      dev,
		res:      res,
		meshes:   make(map[int]gpu.Mesh),
		log:      logger.Named("pipeline"),
	}
	if p.quad, err = dev.NewMesh(gpu.FullscreenQuad()); err != nil {
		return nil, multierr.Append(fmt.Errorf("creating quad: %w", err), p.Close())
	}
	if p.cube, err = dev.NewMesh(gpu.SkyboxCube()); err != nil {
		return nil, multierr.Append(fmt.Errorf("creating skybox cube: %w", err), p.Close())
	}
	p.log.Info("pipeline ready",
		zap.String("device", dev.Name()),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Stringer("modes", p.Modes),
	)
	return p, nil
}

// Resources returns the render targets.
func (p *Pipeline) Resources() *Resources { return p.res }

// Device returns the device the pipeline draws with.
func (p *Pipeline) Device() gpu.Device { return p.dev }

// mesh uploads mesh mi on first use. Meshes of a skinned clip are uploaded
// with their bone indices remapped to skeleton IDs.
func (p *Pipeline) mesh(sc *Scene, mi int) gpu.Mesh {
	if m, ok := p.meshes[mi]; ok {
		return m
	}
	var remap []int32
	if sc.Animator != nil {
		remap = sc.Animator.Skeleton().Remap(mi)
	}
	src := sc.Graph.Meshes[mi]
	m, err := p.dev.NewMesh(src.GPUData(remap))
	if err != nil {
		p.log.Error("mesh upload failed", zap.String("mesh", src.Name), zap.Error(err))
	}
	// Failed uploads are cached as nil so they are reported once.
	p.meshes[mi] = m
	return m
}

// ReleaseMeshes drops every uploaded mesh.
func (p *Pipeline) ReleaseMeshes() error {
	var err error
	for mi, m := range p.meshes {
		if m != nil {
			err = multierr.Append(err, p.dev.Release(m))
		}
		delete(p.meshes, mi)
	}
	return err
}

// Frame resolves the scene into the inputs of one frame. The animator, if
// any, must already be updated for this frame.
func (p *Pipeline) Frame(cam camera.Camera, sc *Scene) *Frame {
	if sc.Graph != p.graph {
		if err := p.ReleaseMeshes(); err != nil {
			p.log.Warn("releasing meshes of previous scene", zap.Error(err))
		}
		p.graph = sc.Graph
	}

	f := &Frame{
		Res:      p.res,
		Target:   p.Target,
		Modes:    p.Modes,
		View:     cam.View(),
		Proj:     cam.Projection(),
		Eye:      cam.Eye(),
		Exposure: p.Exposure,
		Sky:      sc.Sky,
		Skybox:   sc.Skybox,
		Quad:     p.quad,
		Cube:     p.cube,
	}
	var pose scene.Pose
	if sc.Animator != nil {
		pose = sc.Animator.Pose()
		f.Bones = sc.Animator.BoneMatrices()
	} else {
		pose = sc.Graph.StaticPose()
	}

	for _, it := range sc.Graph.DrawList(pose) {
		m := p.mesh(sc, it.Mesh)
		if m == nil {
			continue
		}
		mat := material.Default()
		if sc.Materials != nil {
			mat = sc.Materials.Get(it.Material)
		}
		f.Items = append(f.Items, Item{Mesh: m, Material: mat, Model: it.Model, Skin: it.Skin})
	}

	f.Lights = make([]lighting.Light, len(sc.Lights))
	for i, l := range sc.Lights {
		if l.ShadesAsPoint() {
			l.Position = l.WorldPosition(sc.Graph)
		}
		f.Lights[i] = l
	}
	return f
}

// Render draws one frame and returns the passes it ran.
func (p *Pipeline) Render(cam camera.Camera, sc *Scene) []PassID {
	f := p.Frame(cam, sc)
	plan := Plan(f.Modes)
	for _, id := range plan {
		passes[id](p.dev, f)
	}
	return plan
}

// Close releases every device resource the pipeline created.
func (p *Pipeline) Close() error {
	err := p.ReleaseMeshes()
	for _, m := range []gpu.Mesh{p.quad, p.cube} {
		if m != nil {
			err = multierr.Append(err, p.dev.Release(m))
		}
	}
	p.quad, p.cube = nil, nil
	if p.res != nil {
		err = multierr.Append(err, p.res.Destroy())
		p.res = nil
	}
	return err
}
