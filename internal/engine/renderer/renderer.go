// Package renderer bootstraps OpenGL on the current context and owns the GL
// device the render pipeline draws with.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/skyscene/internal/engine/gpu"
	"github.com/Faultbox/skyscene/internal/engine/gpu/glgpu"
	"github.com/Faultbox/skyscene/internal/logger"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
	// DebugGL checks glGetError after every pass.
	DebugGL bool
}

// Renderer handles OpenGL initialization and error reporting.
type Renderer struct {
	config Config
	device *glgpu.Device
}

// New creates a new renderer. Programs are compiled by the pipeline.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
	}

	// Initialize OpenGL; harmless when the UI backend already did
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
	)

	r.device = glgpu.New(cfg.Width, cfg.Height, logger.Named("glgpu"))
	return r, nil
}

// Device returns the GL device.
func (r *Renderer) Device() gpu.Device { return r.device }

// CheckError reports the first pending GL error after op when DebugGL is set.
// The error queue is drained either way.
func (r *Renderer) CheckError(op string) error {
	if !r.config.DebugGL {
		return nil
	}
	var first uint32
	for {
		code := gl.GetError()
		if code == gl.NO_ERROR {
			break
		}
		if first == 0 {
			first = code
		}
	}
	if first == 0 {
		return nil
	}
	err := fmt.Errorf("%s: %s", op, errorName(first))
	logger.Error("GL error", zap.String("op", op), zap.Error(err))
	return err
}

func errorName(code uint32) string {
	switch code {
	case gl.INVALID_ENUM:
		return "GL_INVALID_ENUM"
	case gl.INVALID_VALUE:
		return "GL_INVALID_VALUE"
	case gl.INVALID_OPERATION:
		return "GL_INVALID_OPERATION"
	case gl.INVALID_FRAMEBUFFER_OPERATION:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	case gl.OUT_OF_MEMORY:
		return "GL_OUT_OF_MEMORY"
	default:
		return fmt.Sprintf("GL error 0x%x", code)
	}
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	if r.device != nil {
		r.device.Close()
	}
}
