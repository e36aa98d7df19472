package main

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/skyscene/internal/app"
	"github.com/Faultbox/skyscene/internal/config"
	"github.com/Faultbox/skyscene/internal/engine/camera"
	"github.com/Faultbox/skyscene/internal/engine/input"
	"github.com/Faultbox/skyscene/internal/engine/renderer"
	"github.com/Faultbox/skyscene/internal/engine/window"
	"github.com/Faultbox/skyscene/internal/logger"
)

// runner owns the window, the GL renderer and the app.
type runner struct {
	cfg      *config.Config
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	app      *app.App
	log      *zap.Logger
}

func newRunner(cfg *config.Config) (*runner, error) {
	r := &runner{cfg: cfg, input: input.New(), log: logger.Named("scene")}

	// Decode everything before opening a window so bad input fails fast
	src, err := app.LoadSources(app.NewAssetManager(cfg), cfg)
	if err != nil {
		return nil, err
	}

	// Create window (this also creates OpenGL context)
	r.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	w, h := r.window.DrawableSize()
	r.renderer, err = renderer.New(renderer.Config{Width: w, Height: h, DebugGL: cfg.Render.DebugGL})
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	r.app, err = app.New(r.renderer.Device(), cfg, src, w, h)
	if err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// Run renders until the window closes or Escape is pressed.
func (r *runner) Run() error {
	start := time.Now()
	frameCount := 0
	fpsTimer := start

	r.log.Info("starting render loop")
	for !r.app.Quit() {
		// 1. Process input
		if r.input.Update() {
			break
		}
		now := time.Since(start).Seconds()
		r.handleEvents(now)

		// 2. Render
		r.app.Frame(now)
		if err := r.renderer.CheckError("frame"); err != nil {
			r.log.Warn("frame reported GL errors", zap.Stringer("modes", r.app.Modes()))
		}

		// 3. Present (swap buffers)
		r.window.SwapBuffers()

		// FPS counter
		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			r.window.SetTitle(fmt.Sprintf("%s - %v - %d fps", r.cfg.Window.Title, r.app.Modes(), frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
	return nil
}

func (r *runner) handleEvents(now float64) {
	for _, ev := range r.input.Events() {
		switch ev.Type {
		case input.EventKeyDown:
			if !ev.Repeat {
				r.app.HandleKey(app.Key(ev.Key), now)
			}
		case input.EventMouseMove:
			if b, ok := dragButton(ev.Held); ok {
				r.app.HandleDrag(b, ev.Shift, float32(ev.RelX), float32(ev.RelY))
			}
		case input.EventMouseWheel:
			r.app.HandleWheel(ev.WheelY)
		}
	}
}

func dragButton(held uint8) (camera.Button, bool) {
	switch held {
	case input.ButtonLeft:
		return camera.ButtonLeft, true
	case input.ButtonMiddle:
		return camera.ButtonMiddle, true
	case input.ButtonRight:
		return camera.ButtonRight, true
	}
	return 0, false
}

// Close tears down in reverse creation order.
func (r *runner) Close() {
	if r.app != nil {
		if err := r.app.Close(); err != nil {
			r.log.Warn("releasing scene", zap.Error(err))
		}
	}
	if r.renderer != nil {
		r.renderer.Close()
	}
	if r.window != nil {
		r.window.Close()
	}
}
