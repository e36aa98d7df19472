// Package ui provides the ImGui backend the interactive viewer draws its
// control panel with.
package ui

import (
	"fmt"
	"os"

	"github.com/AllenDang/cimgui-go/backend"
	"github.com/AllenDang/cimgui-go/backend/sdlbackend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/skyscene/internal/logger"
)

// Options configures the backend window.
type Options struct {
	Title    string
	Width    int
	Height   int
	Font     string // TTF path, empty for the built-in font
	FontSize float32
}

// Backend wraps the ImGui SDL backend. It owns the window and the GL
// context the scene renders into.
type Backend struct {
	backend backend.Backend[sdlbackend.SDLWindowFlags]
	width   int32
	height  int32
	log     *zap.Logger
}

// NewBackend creates the window, the ImGui context and loads the GL
// function pointers.
func NewBackend(opts Options) (*Backend, error) {
	b := &Backend{
		width:  int32(opts.Width),
		height: int32(opts.Height),
		log:    logger.Named("ui"),
	}

	var err error
	b.backend, err = backend.CreateBackend(sdlbackend.NewSDLBackend())
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}

	// Fonts must be added before the atlas is built on the first frame
	if opts.Font != "" {
		b.backend.SetAfterCreateContextHook(func() {
			b.loadFont(opts.Font, opts.FontSize)
		})
	}

	b.backend.SetBgColor(imgui.NewVec4(0, 0, 0, 1.0))
	b.backend.CreateWindow(opts.Title, opts.Width, opts.Height)

	// Initialize OpenGL
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("init opengl: %w", err)
	}

	return b, nil
}

func (b *Backend) loadFont(path string, size float32) {
	if _, err := os.Stat(path); err != nil {
		b.log.Warn("font not found, using default", zap.String("path", path))
		return
	}
	if size <= 0 {
		size = 16
	}

	fontCfg := imgui.NewFontConfig()
	defer fontCfg.Destroy()

	if imgui.CurrentIO().Fonts().AddFontFromFileTTFV(path, size, fontCfg, nil) == nil {
		b.log.Warn("failed to load font", zap.String("path", path))
		return
	}
	b.log.Info("font loaded", zap.String("path", path), zap.Float32("size", size))
}

// Run starts the main render loop. renderFunc is called once per frame
// between the ImGui new-frame and render calls.
func (b *Backend) Run(renderFunc func()) {
	b.backend.Run(renderFunc)
}

// SetShouldClose asks the loop to stop after the current frame.
func (b *Backend) SetShouldClose() {
	b.backend.SetShouldClose(true)
}

// SetWindowTitle updates the window title.
func (b *Backend) SetWindowTitle(title string) {
	b.backend.SetWindowTitle(title)
}

// GetWindowSize returns the window size the backend was created with.
func (b *Backend) GetWindowSize() (int32, int32) {
	return b.width, b.height
}

// DrawableSize returns the default framebuffer size in pixels.
func (b *Backend) DrawableSize() (int, int) {
	w, h := int(b.width), int(b.height)
	io := imgui.CurrentIO()
	if scale := io.DisplayFramebufferScale(); scale.X > 0 && scale.Y > 0 {
		w, h = int(float32(w)*scale.X), int(float32(h)*scale.Y)
	}
	return w, h
}

// GetViewport returns the main viewport work area.
func (b *Backend) GetViewport() (posX, posY, width, height float32) {
	viewport := imgui.MainViewport()
	workPos := viewport.WorkPos()
	workSize := viewport.WorkSize()
	return workPos.X, workPos.Y, workSize.X, workSize.Y
}

// IsKeyPressed checks if a key was pressed this frame.
func IsKeyPressed(key imgui.Key) bool {
	return imgui.IsKeyChordPressed(imgui.KeyChord(key))
}

// IsKeyDown checks if a key is currently held down.
func IsKeyDown(key imgui.Key) bool {
	return imgui.IsKeyDown(key)
}

// ShiftDown reports whether either shift key is held.
func ShiftDown() bool {
	return imgui.IsKeyDown(imgui.KeyLeftShift) || imgui.IsKeyDown(imgui.KeyRightShift)
}

// Selector draws options as a row of fixed-width selectables and returns
// the index of the one clicked this frame, or -1.
func Selector(id string, options []string, current int, width float32) int {
	clicked := -1
	for i, opt := range options {
		if i > 0 {
			imgui.SameLine()
		}
		if imgui.SelectableBoolV(opt+"##"+id, i == current, 0, imgui.NewVec2(width, 0)) {
			clicked = i
		}
	}
	return clicked
}
