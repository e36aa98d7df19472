package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/skyscene/internal/app"
	"github.com/Faultbox/skyscene/internal/config"
	"github.com/Faultbox/skyscene/internal/engine/camera"
	"github.com/Faultbox/skyscene/internal/engine/gpu"
	"github.com/Faultbox/skyscene/internal/engine/gpu/glgpu"
	"github.com/Faultbox/skyscene/internal/engine/renderer"
	"github.com/Faultbox/skyscene/internal/engine/ui"
	"github.com/Faultbox/skyscene/internal/logger"
)

// keyBindings maps ImGui keys onto the names the app understands.
var keyBindings = map[imgui.Key]app.Key{
	imgui.KeyD:         app.KeyDeferred,
	imgui.KeyF:         app.KeyFlat,
	imgui.KeyC:         app.KeyCamera,
	imgui.KeyG:         app.KeyGBuffer,
	imgui.KeyS:         app.KeySunSky,
	imgui.KeyB:         app.KeyBlur,
	imgui.KeyE:         app.KeySkybox,
	imgui.KeyM:         app.KeyMirror,
	imgui.KeyUpArrow:   app.KeyExposureUp,
	imgui.KeyDownArrow: app.KeyExposureDown,
	imgui.KeyF12:       app.KeyScreenshot,
	imgui.KeyEscape:    app.KeyQuit,
	imgui.Key1:         app.SpeedKeys[0],
	imgui.Key2:         app.SpeedKeys[1],
	imgui.Key3:         app.SpeedKeys[2],
	imgui.Key4:         app.SpeedKeys[3],
	imgui.Key5:         app.SpeedKeys[4],
	imgui.Key6:         app.SpeedKeys[5],
	imgui.Key7:         app.SpeedKeys[6],
}

// viewer renders the scene into an offscreen target and shows it as the
// background image of the ImGui window.
type viewer struct {
	cfg      *config.Config
	backend  *ui.Backend
	renderer *renderer.Renderer
	app      *app.App
	target   gpu.Framebuffer
	width    int
	height   int
	start    time.Time

	showPanel    bool
	lastMousePos imgui.Vec2
	status       string
	lastShot     string
	statusTime   time.Time

	// Paths picked in native dialogs, applied on the main thread.
	mu             sync.Mutex
	pendingScene   string
	pendingSkybox  string
	dialogInFlight bool

	log *zap.Logger
}

func newViewer(cfg *config.Config) (*viewer, error) {
	v := &viewer{
		cfg:       cfg,
		showPanel: cfg.Viewer.ShowPanel,
		start:     time.Now(),
		log:       logger.Named("viewer"),
	}

	var err error
	v.backend, err = ui.NewBackend(ui.Options{
		Title:    cfg.Window.Title,
		Width:    cfg.Window.Width,
		Height:   cfg.Window.Height,
		Font:     cfg.Viewer.Font,
		FontSize: cfg.Viewer.FontSize,
	})
	if err != nil {
		return nil, err
	}

	// The offscreen target has the window size; the image is stretched on
	// high-DPI displays.
	v.width, v.height = cfg.Window.Width, cfg.Window.Height
	v.renderer, err = renderer.New(renderer.Config{Width: v.width, Height: v.height, DebugGL: cfg.Render.DebugGL})
	if err != nil {
		return nil, err
	}
	v.target, err = v.renderer.Device().NewFramebuffer(gpu.FramebufferDesc{
		Label:  "viewer",
		Width:  v.width,
		Height: v.height,
		Color:  []gpu.TextureDesc{{Format: gpu.FormatRGBA8}},
	})
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("creating viewer target: %w", err)
	}

	if err := v.load(); err != nil {
		v.Close()
		return nil, err
	}
	return v, nil
}

// load (re)creates the app from the current configuration. The previous
// app is kept when loading fails.
func (v *viewer) load() error {
	src, err := app.LoadSources(app.NewAssetManager(v.cfg), v.cfg)
	if err != nil {
		return err
	}
	a, err := app.New(v.renderer.Device(), v.cfg, src, v.width, v.height)
	if err != nil {
		return err
	}
	if v.app != nil {
		if err := v.app.Close(); err != nil {
			v.log.Warn("releasing previous scene", zap.Error(err))
		}
	}
	v.app = a
	v.app.Pipeline().Target = v.target
	v.start = time.Now()
	return nil
}

// Run starts the main loop.
func (v *viewer) Run() {
	v.backend.Run(v.frame)
}

func (v *viewer) now() float64 { return time.Since(v.start).Seconds() }

func (v *viewer) frame() {
	v.applyPending()

	now := v.now()
	if !imgui.IsAnyItemActive() {
		v.handleKeys(now)
	}
	if v.app.Quit() {
		v.backend.SetShouldClose()
		return
	}

	v.app.Frame(now)
	if err := v.renderer.CheckError("frame"); err != nil {
		v.log.Warn("frame reported GL errors", zap.Stringer("modes", v.app.Modes()), zap.Error(err))
	}
	if path := v.app.LastScreenshot(); path != v.lastShot {
		v.lastShot = path
		v.setStatus("Saved " + path)
	}

	v.drawScene()
	if v.showPanel {
		v.drawPanel(now)
	}
	v.drawStatus()
}

func (v *viewer) handleKeys(now float64) {
	for key, name := range keyBindings {
		if ui.IsKeyPressed(key) {
			v.app.HandleKey(name, now)
		}
	}
	if ui.IsKeyPressed(imgui.KeyTab) {
		v.showPanel = !v.showPanel
	}
}

// drawScene fills the work area with the rendered image and routes mouse
// input over it to the camera.
func (v *viewer) drawScene() {
	x, y, w, h := v.backend.GetViewport()
	imgui.SetNextWindowPos(imgui.NewVec2(x, y))
	imgui.SetNextWindowSize(imgui.NewVec2(w, h))
	flags := imgui.WindowFlagsNoTitleBar | imgui.WindowFlagsNoResize | imgui.WindowFlagsNoMove |
		imgui.WindowFlagsNoScrollbar | imgui.WindowFlagsNoBringToFrontOnFocus
	imgui.PushStyleVarVec2(imgui.StyleVarWindowPadding, imgui.NewVec2(0, 0))
	if imgui.BeginV("##scene", nil, flags) {
		if id, ok := glgpu.TextureID(v.target.Color(0)); ok {
			texRef := imgui.NewTextureRefTextureID(imgui.TextureID(id))
			// Flip V for OpenGL
			imgui.ImageWithBgV(
				*texRef,
				imgui.NewVec2(w, h),
				imgui.NewVec2(0, 1),
				imgui.NewVec2(1, 0),
				imgui.NewVec4(0, 0, 0, 1),
				imgui.NewVec4(1, 1, 1, 1),
			)
			v.handleMouse()
		}
	}
	imgui.End()
	imgui.PopStyleVar()
}

func (v *viewer) handleMouse() {
	mousePos := imgui.MousePos()
	defer func() { v.lastMousePos = mousePos }()
	if !imgui.IsItemHovered() {
		return
	}
	dx := mousePos.X - v.lastMousePos.X
	dy := mousePos.Y - v.lastMousePos.Y
	for _, b := range []struct {
		button imgui.MouseButton
		camera camera.Button
	}{
		{imgui.MouseButtonLeft, camera.ButtonLeft},
		{imgui.MouseButtonRight, camera.ButtonRight},
		{imgui.MouseButtonMiddle, camera.ButtonMiddle},
	} {
		if imgui.IsMouseDragging(b.button) {
			v.app.HandleDrag(b.camera, ui.ShiftDown(), dx, dy)
			break
		}
	}
	if wheel := imgui.CurrentIO().MouseWheel(); wheel != 0 {
		v.app.HandleWheel(wheel)
	}
}

func (v *viewer) setStatus(msg string) {
	v.status = msg
	v.statusTime = time.Now()
}

func (v *viewer) drawStatus() {
	if v.status == "" || time.Since(v.statusTime) > 3*time.Second {
		return
	}
	x, y, _, h := v.backend.GetViewport()
	imgui.SetNextWindowPos(imgui.NewVec2(x+10, y+h-40))
	imgui.SetNextWindowBgAlpha(0.7)
	flags := imgui.WindowFlagsNoTitleBar | imgui.WindowFlagsNoResize | imgui.WindowFlagsNoMove |
		imgui.WindowFlagsAlwaysAutoResize | imgui.WindowFlagsNoFocusOnAppearing
	if imgui.BeginV("##status", nil, flags) {
		imgui.TextColored(imgui.NewVec4(0.2, 1.0, 0.2, 1.0), v.status)
	}
	imgui.End()
}

// openDialog shows a native file dialog off the main thread; the chosen
// path is applied by the next frame.
func (v *viewer) openDialog(skybox bool) {
	v.mu.Lock()
	if v.dialogInFlight {
		v.mu.Unlock()
		return
	}
	v.dialogInFlight = true
	v.mu.Unlock()

	go func() {
		b := dialog.File().Title("Open Scene").
			Filter("glTF scenes", "gltf", "glb").
			Filter("All Files", "*")
		if skybox {
			b = dialog.File().Title("Open Skybox (pick any face)").
				Filter("Images", "png", "jpg", "jpeg", "bmp", "tif", "tiff", "tga").
				Filter("All Files", "*")
		}
		filename, err := b.Load()

		v.mu.Lock()
		defer v.mu.Unlock()
		v.dialogInFlight = false
		if err != nil {
			if err != dialog.ErrCancelled {
				v.log.Warn("file dialog failed", zap.Error(err))
			}
			return
		}
		if skybox {
			v.pendingSkybox = filename
		} else {
			v.pendingScene = filename
		}
	}()
}

func (v *viewer) applyPending() {
	v.mu.Lock()
	scenePath, skyboxPath := v.pendingScene, v.pendingSkybox
	v.pendingScene, v.pendingSkybox = "", ""
	v.mu.Unlock()

	if scenePath != "" {
		prev := v.cfg.Scene
		v.cfg.Scene.File, v.cfg.Scene.Info = scenePath, ""
		if err := v.load(); err != nil {
			v.cfg.Scene = prev
			v.log.Error("loading scene failed", zap.String("path", scenePath), zap.Error(err))
			v.setStatus("Error: " + err.Error())
		} else {
			v.setStatus("Loaded " + scenePath)
		}
	}
	if skyboxPath != "" {
		dir, name, ok := skyboxFromFace(skyboxPath)
		if !ok {
			v.setStatus("Not a skybox face: " + skyboxPath)
			return
		}
		prev := v.cfg.Scene
		v.cfg.Scene.SkyboxDir, v.cfg.Scene.Skybox = dir, name
		if err := v.load(); err != nil {
			v.cfg.Scene = prev
			v.log.Error("loading skybox failed", zap.String("path", skyboxPath), zap.Error(err))
			v.setStatus("Error: " + err.Error())
		} else {
			v.setStatus("Skybox " + name)
		}
	}
}

// Close releases the scene, the target and the GL state.
func (v *viewer) Close() {
	if v.app != nil {
		if err := v.app.Close(); err != nil {
			v.log.Warn("releasing scene", zap.Error(err))
		}
		v.app = nil
	}
	if v.target != nil && v.renderer != nil {
		if err := v.renderer.Device().Release(v.target); err != nil {
			v.log.Warn("releasing viewer target", zap.Error(err))
		}
		v.target = nil
	}
	if v.renderer != nil {
		v.renderer.Close()
		v.renderer = nil
	}
}
