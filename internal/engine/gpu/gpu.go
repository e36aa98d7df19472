// Package gpu is the device abstraction the render pipeline issues its passes
// against. A frame is one ordered stream of Clear, Draw, Blit and
// GenerateMipmaps calls on a single Device; every call carries the complete
// fixed-function state it needs, so nothing leaks from one pass to the next.
//
// Two implementations exist: glgpu drives OpenGL 4.1, softgpu rasterizes on
// the CPU and backs the tests.
package gpu

import (
	"errors"
	"fmt"
	"image"

	"github.com/Faultbox/skyscene/internal/engine/shaders"
	"github.com/Faultbox/skyscene/pkg/math"
)

// ErrUnknownProgram is returned when a draw or load names a program the
// device does not implement.
var ErrUnknownProgram = errors.New("unknown program")

// Format is a texel storage format.
type Format uint8

const (
	FormatRGBA8 Format = iota
	FormatRGBA16F
	FormatRGBA32F
	FormatDepth32F
)

func (f Format) String() string {
	switch f {
	case FormatRGBA8:
		return "RGBA8"
	case FormatRGBA16F:
		return "RGBA16F"
	case FormatRGBA32F:
		return "RGBA32F"
	case FormatDepth32F:
		return "Depth32F"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// IsDepth reports whether f stores depth.
func (f Format) IsDepth() bool { return f == FormatDepth32F }

// Filter selects how a sampler reads a texture.
type Filter uint8

const (
	FilterNearest Filter = iota
	FilterLinear
	// FilterTrilinear blends between mip levels; reads through textureLod
	// pick the level explicitly.
	FilterTrilinear
)

// TextureDesc describes a 2D texture or cube map.
type TextureDesc struct {
	Label  string
	Width  int
	Height int
	Format Format
	Levels int // mip levels, at least 1
	Cube   bool
}

// LevelSize returns the size of mip level l.
func (d TextureDesc) LevelSize(l int) (int, int) {
	return max(d.Width>>l, 1), max(d.Height>>l, 1)
}

// Texture is a device texture handle.
type Texture interface {
	Desc() TextureDesc
}

// FramebufferDesc describes a render target. Color attachments inherit the
// framebuffer size; an entry's Width and Height are ignored.
type FramebufferDesc struct {
	Label  string
	Width  int
	Height int
	Color  []TextureDesc
	Depth  bool
}

// Framebuffer is a device render target handle.
type Framebuffer interface {
	Label() string
	Size() (w, h int)
	ColorCount() int
	Color(i int) Texture
	Depth() Texture // nil without a depth attachment
}

// MeshData is the vertex and index data of one triangle mesh. Positions are
// required; the other vertex streams are optional and zero-filled when absent.
type MeshData struct {
	Positions   []math.Vec3
	Normals     []math.Vec3
	BoneIDs     [][4]int32
	BoneWeights [][4]float32
	Indices     []uint32
}

// Validate checks stream lengths and index bounds.
func (m *MeshData) Validate() error {
	n := len(m.Positions)
	if n == 0 {
		return errors.New("mesh has no vertices")
	}
	if len(m.Normals) != 0 && len(m.Normals) != n {
		return fmt.Errorf("mesh has %d normals for %d vertices", len(m.Normals), n)
	}
	if len(m.BoneIDs) != len(m.BoneWeights) || (len(m.BoneIDs) != 0 && len(m.BoneIDs) != n) {
		return fmt.Errorf("mesh bone streams %d/%d do not match %d vertices", len(m.BoneIDs), len(m.BoneWeights), n)
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("index count %d is not a multiple of 3", len(m.Indices))
	}
	for _, i := range m.Indices {
		if int(i) >= n {
			return fmt.Errorf("index %d out of range for %d vertices", i, n)
		}
	}
	return nil
}

// Mesh is a device mesh handle.
type Mesh interface {
	VertexCount() int
	IndexCount() int
}

// Rect is a pixel rectangle with its origin at the bottom-left corner.
type Rect struct {
	X, Y, W, H int
}

// Empty reports whether the rect has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// DepthFunc is the depth comparison applied when depth testing is enabled.
type DepthFunc uint8

const (
	DepthLess DepthFunc = iota
	DepthLEqual
	DepthAlways
)

// Blend is the color blending mode.
type Blend uint8

const (
	BlendNone Blend = iota
	// BlendAdditive is ONE, ONE: dst = src + dst.
	BlendAdditive
)

// State is the complete fixed-function state of one draw. A pass builds it
// from scratch; devices never carry state over from a previous call.
type State struct {
	Viewport   Rect // empty means the whole target at the drawn level
	DepthTest  bool
	DepthFunc  DepthFunc
	DepthWrite bool
	Blend      Blend
}

// Binding attaches a texture to a sampler uniform.
type Binding struct {
	Texture Texture
	Filter  Filter
}

// Uniforms maps uniform names to values. Supported value types are float32,
// int32, int, math.Vec2, math.Vec3, math.Vec4, math.Mat4 and []math.Mat4.
type Uniforms map[string]any

// Draw is one draw call.
type Draw struct {
	Target   Framebuffer // nil draws to the device default target
	Level    int         // mip level of the color attachments to render into
	Program  shaders.ID
	Mesh     Mesh
	State    State
	Uniforms Uniforms
	Textures map[string]Binding
}

// ClearOp clears a target.
type ClearOp struct {
	Target     Framebuffer
	Level      int
	ClearColor bool
	Color      math.Vec4
	ClearDepth bool
	Depth      float32
}

// BlitMask selects which buffers a blit copies.
type BlitMask uint8

const (
	BlitColor BlitMask = 1 << iota
	BlitDepth
)

// BlitOp copies a rectangle between targets. Empty rects mean the whole
// target. Color blits copy SrcAttachment to DstAttachment.
type BlitOp struct {
	Src           Framebuffer
	SrcAttachment int
	SrcRect       Rect
	Dst           Framebuffer
	DstAttachment int
	DstRect       Rect
	Mask          BlitMask
	Filter        Filter
}

// Device issues GPU work. All methods must be called from the goroutine that
// owns the device.
type Device interface {
	// Name identifies the backend in logs.
	Name() string
	// Default is the presentation target.
	Default() Framebuffer
	// LoadProgram compiles program id. Draws with programs that were never
	// loaded fail.
	LoadProgram(id shaders.ID) error
	NewTexture(desc TextureDesc) (Texture, error)
	// NewCubeMap uploads six equally sized faces in +X, -X, +Y, -Y, +Z, -Z order.
	NewCubeMap(label string, faces [6]*image.RGBA) (Texture, error)
	NewFramebuffer(desc FramebufferDesc) (Framebuffer, error)
	NewMesh(data MeshData) (Mesh, error)

	Clear(op ClearOp)
	Draw(d Draw)
	Blit(op BlitOp)
	GenerateMipmaps(t Texture)

	// ReadPixels reads level 0 of a color attachment, or the depth attachment
	// when attachment is DepthAttachment. A nil fb reads the default target.
	ReadPixels(fb Framebuffer, attachment int) (*Image, error)

	// Release frees a texture, framebuffer or mesh.
	Release(r any) error
}

// DepthAttachment selects the depth buffer in ReadPixels.
const DepthAttachment = -1
