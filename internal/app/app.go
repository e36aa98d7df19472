// Package app ties a loaded scene to a render pipeline and turns user input
// into mode, camera and playback changes. It is independent of the window
// system: front ends feed it key names, mouse deltas and the clock.
package app

import (
	"fmt"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/skyscene/internal/config"
	"github.com/Faultbox/skyscene/internal/engine/anim"
	"github.com/Faultbox/skyscene/internal/engine/camera"
	"github.com/Faultbox/skyscene/internal/engine/debug"
	"github.com/Faultbox/skyscene/internal/engine/gpu"
	"github.com/Faultbox/skyscene/internal/engine/pipeline"
	"github.com/Faultbox/skyscene/internal/engine/sky"
	"github.com/Faultbox/skyscene/internal/logger"
	"github.com/Faultbox/skyscene/internal/sceneinfo"
	"github.com/Faultbox/skyscene/pkg/math"
)

// Exposure limits.
const (
	MinExposure = 1.0 / 1024
	MaxExposure = 1024
)

// App is one running scene.
type App struct {
	cfg  *config.Config
	dev  gpu.Device
	pipe *pipeline.Pipeline
	sc   *pipeline.Scene

	builtin    *camera.Perspective // nil when the asset has no camera
	def        *camera.Perspective
	useBuiltin bool
	ctl        *camera.Controller

	thetaDeg, turbidity float32

	watcher *sceneinfo.Watcher
	shots   *debug.ScreenshotCapture
	shotDue bool
	lastPNG string
	quit    bool

	log *zap.Logger
}

// New uploads src to dev and builds the pipeline. width and height are the
// display size in pixels.
func New(dev gpu.Device, cfg *config.Config, src *Sources, width, height int) (*App, error) {
	if src == nil || src.Asset == nil || src.Asset.Graph == nil {
		return nil, errNoScene
	}
	g := src.Asset.Graph
	animated := src.Asset.Clip != nil

	a := &App{
		cfg:       cfg,
		dev:       dev,
		thetaDeg:  cfg.Sky.ThetaDeg,
		turbidity: cfg.Sky.Turbidity,
		shots:     debug.NewScreenshotCapture(cfg.Viewer.ScreenshotDir, "skyscene"),
		log:       logger.Named("app"),
	}

	pcfg := pipeline.DefaultConfig()
	pcfg.Width, pcfg.Height = width, height
	pcfg.ShadowResolution = cfg.Render.ShadowResolution
	pcfg.Exposure = cfg.Render.Exposure
	switch cfg.Render.Pipeline {
	case config.PipelineForward:
		pcfg.Deferred = false
	case config.PipelineDeferred:
		pcfg.Deferred = true
	default:
		pcfg.Deferred = !animated
	}
	pipe, err := pipeline.New(dev, pcfg)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline: %w", err)
	}
	a.pipe = pipe
	a.pipe.Modes.SetSkybox(cfg.Render.Skybox)
	a.pipe.Modes.SetMirror(cfg.Render.Mirror)

	info := src.Info
	if info == nil {
		info = sceneinfo.Empty()
	}
	a.sc = &pipeline.Scene{Graph: g}
	a.applyInfo(info)
	a.updateSky()

	if src.HasSkybox() {
		if a.sc.Skybox, err = dev.NewCubeMap("skybox", src.Skybox); err != nil {
			return nil, multierr.Append(fmt.Errorf("uploading skybox: %w", err), a.pipe.Close())
		}
	}

	if animated {
		if a.sc.Animator, err = anim.NewAnimator(g, src.Asset.Clip); err != nil {
			return nil, multierr.Append(fmt.Errorf("binding animation: %w", err), a.Close())
		}
		a.sc.Animator.SetSpeed(cfg.Animation.Speed, 0)
	}

	aspect := float32(width) / float32(height)
	a.def = camera.Default(aspect)
	a.builtin, _ = camera.FromScene(g, aspect)
	switch cfg.Scene.Camera {
	case config.CameraBuiltin:
		a.useBuiltin = a.builtin != nil
	case config.CameraDefault:
		a.useBuiltin = false
	default:
		a.useBuiltin = a.builtin != nil && !animated
	}
	a.ctl = camera.NewController(a.Camera())

	if cfg.Scene.Watch && src.InfoPath != "" {
		if a.watcher, err = sceneinfo.Watch(src.InfoPath); err != nil {
			a.log.Warn("scene info watch disabled", zap.Error(err))
		}
	}

	a.log.Info("app ready",
		zap.Stringer("modes", a.pipe.Modes),
		zap.Bool("builtin_camera", a.useBuiltin),
		zap.Bool("animated", animated),
	)
	return a, nil
}

// Modes returns the current display toggles.
func (a *App) Modes() pipeline.Modes { return a.pipe.Modes }

// Pipeline returns the render pipeline.
func (a *App) Pipeline() *pipeline.Pipeline { return a.pipe }

// Scene returns what frames draw.
func (a *App) Scene() *pipeline.Scene { return a.sc }

// Camera returns the active camera.
func (a *App) Camera() camera.Camera {
	if a.useBuiltin {
		return a.builtin
	}
	return a.def
}

// UsingBuiltinCamera reports whether the asset camera is active.
func (a *App) UsingBuiltinCamera() bool { return a.useBuiltin }

// HasBuiltinCamera reports whether the asset brought a camera.
func (a *App) HasBuiltinCamera() bool { return a.builtin != nil }

// Exposure returns the display exposure.
func (a *App) Exposure() float32 { return a.pipe.Exposure }

// Quit reports whether the user asked to leave.
func (a *App) Quit() bool { return a.quit }

// RequestQuit ends the run after the current frame.
func (a *App) RequestQuit() { a.quit = true }

// RequestScreenshot saves the next rendered frame.
func (a *App) RequestScreenshot() { a.shotDue = true }

// LastScreenshot returns the path of the last saved screenshot.
func (a *App) LastScreenshot() string { return a.lastPNG }

// Sky returns the sun zenith angle in degrees and the turbidity.
func (a *App) Sky() (thetaDeg, turbidity float32) { return a.thetaDeg, a.turbidity }

// SetSky changes the sun-sky parameters.
func (a *App) SetSky(thetaDeg, turbidity float32) {
	a.thetaDeg, a.turbidity = thetaDeg, turbidity
	a.updateSky()
}

func (a *App) updateSky() {
	a.sc.Sky = sky.New(math.Radians(a.thetaDeg), a.turbidity).Coefficients()
}

// Speed returns the playback multiplier, 0 for a static scene.
func (a *App) Speed() float64 {
	if a.sc.Animator == nil {
		return 0
	}
	return a.sc.Animator.Speed()
}

// SetSpeed changes the playback multiplier without a jump in animation time.
func (a *App) SetSpeed(speed, now float64) {
	if a.sc.Animator == nil {
		return
	}
	a.sc.Animator.SetSpeed(speed, now)
	a.log.Debug("animation speed", zap.Float64("speed", speed))
}

// SetExposure clamps and applies e.
func (a *App) SetExposure(e float32) {
	a.pipe.Exposure = math.Clamp(e, MinExposure, MaxExposure)
}

// Settings returns the configuration with the current modes, sky,
// exposure, speed and camera choice written back, ready to be saved.
func (a *App) Settings() *config.Config {
	c := *a.cfg
	m := a.pipe.Modes
	c.Render.Pipeline = config.PipelineForward
	if m.Deferred() {
		c.Render.Pipeline = config.PipelineDeferred
	}
	c.Render.Exposure = a.pipe.Exposure
	c.Render.Skybox = m.Skybox()
	c.Render.Mirror = m.Mirror()
	c.Sky.ThetaDeg, c.Sky.Turbidity = a.thetaDeg, a.turbidity
	if speed := a.Speed(); speed > 0 {
		c.Animation.Speed = speed
	}
	if a.builtin != nil {
		c.Scene.Camera = config.CameraDefault
		if a.useBuiltin {
			c.Scene.Camera = config.CameraBuiltin
		}
	}
	return &c
}

// ToggleCamera switches between the asset camera and the default camera.
// Without an asset camera it does nothing.
func (a *App) ToggleCamera() {
	if a.builtin == nil {
		return
	}
	a.useBuiltin = !a.useBuiltin
	a.ctl.Camera = a.Camera()
}

// HandleKey applies a key press. now is the clock in seconds, used for
// speed changes. It reports whether the key is bound.
func (a *App) HandleKey(k Key, now float64) bool {
	m := &a.pipe.Modes
	switch k {
	case KeyDeferred:
		m.SetDeferred(!m.Deferred())
	case KeyFlat:
		if !m.Deferred() {
			m.SetFlat(!m.Flat())
		}
	case KeyCamera:
		a.ToggleCamera()
	case KeyGBuffer:
		if m.Deferred() {
			m.SetGBufferView(!m.GBufferView())
		}
	case KeySunSky:
		if m.Deferred() {
			m.SetSunSky(!m.SunSky())
		}
	case KeyBlur:
		if m.Deferred() {
			m.SetBlur(!m.Blur())
		}
	case KeySkybox:
		m.SetSkybox(!m.Skybox())
	case KeyMirror:
		if m.Skybox() {
			m.SetMirror(!m.Mirror())
		}
	case KeyExposureUp:
		a.SetExposure(a.pipe.Exposure * 2)
	case KeyExposureDown:
		a.SetExposure(a.pipe.Exposure / 2)
	case KeyScreenshot:
		a.RequestScreenshot()
	case KeyQuit:
		a.RequestQuit()
	default:
		i, ok := speedIndex(k)
		if !ok {
			return false
		}
		a.SetSpeed(anim.SpeedOptions[i], now)
	}
	a.log.Debug("key", zap.String("key", string(k)), zap.Stringer("modes", *m))
	return true
}

// HandleDrag moves the active camera. Shift turns an orbit into a pan.
func (a *App) HandleDrag(button camera.Button, shift bool, dx, dy float32) {
	if shift && button == camera.ButtonLeft {
		button = camera.ButtonRight
	}
	a.ctl.HandleDrag(button, dx, dy)
}

// HandleWheel zooms the active camera.
func (a *App) HandleWheel(y float32) {
	a.ctl.HandleZoom(y)
}

// applyInfo installs lights and materials from a metadata file.
func (a *App) applyInfo(info *sceneinfo.Info) {
	tbl := info.Table()
	a.sc.Graph.BindMaterials(tbl)
	a.sc.Materials = tbl
	a.sc.Lights = info.SceneLights()
}

// Frame advances the animation to now, renders and returns the passes run.
func (a *App) Frame(now float64) []pipeline.PassID {
	if a.watcher != nil {
		select {
		case info := <-a.watcher.Reloads():
			a.applyInfo(info)
			a.log.Info("scene info applied", zap.Int("lights", len(a.sc.Lights)))
		default:
		}
	}
	if a.sc.Animator != nil {
		a.sc.Animator.Update(now)
	}

	plan := a.pipe.Render(a.Camera(), a.sc)

	if a.shotDue {
		a.shotDue = false
		path, err := a.shots.CaptureFromDevice(a.dev, a.pipe.Target)
		if err != nil {
			a.log.Error("screenshot failed", zap.Error(err))
		} else {
			a.lastPNG = path
			a.log.Info("screenshot saved", zap.String("path", filepath.Clean(path)))
		}
	}
	return plan
}

// Close releases the watcher, the skybox and the pipeline.
func (a *App) Close() error {
	var err error
	if a.watcher != nil {
		err = multierr.Append(err, a.watcher.Close())
		a.watcher = nil
	}
	if a.sc != nil && a.sc.Skybox != nil {
		err = multierr.Append(err, a.dev.Release(a.sc.Skybox))
		a.sc.Skybox = nil
	}
	if a.pipe != nil {
		err = multierr.Append(err, a.pipe.Close())
		a.pipe = nil
	}
	return err
}
