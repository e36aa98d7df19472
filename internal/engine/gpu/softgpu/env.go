package softgpu

import (
	"github.com/Faultbox/skyscene/internal/engine/gpu"
	"github.com/Faultbox/skyscene/pkg/math"
)

// env is what a program sees during one draw. Unset uniforms read as zero,
// as they do in GLSL.
type env struct {
	uniforms gpu.Uniforms
	textures map[string]gpu.Binding
}

func (e *env) float(name string) float32 {
	switch v := e.uniforms[name].(type) {
	case float32:
		return v
	case float64:
		return float32(v)
	case int:
		return float32(v)
	case int32:
		return float32(v)
	}
	return 0
}

func (e *env) int(name string) int {
	switch v := e.uniforms[name].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case float32:
		return int(v)
	}
	return 0
}

func (e *env) vec2(name string) math.Vec2 {
	v, _ := e.uniforms[name].(math.Vec2)
	return v
}

func (e *env) vec3(name string) math.Vec3 {
	v, _ := e.uniforms[name].(math.Vec3)
	return v
}

func (e *env) mat4(name string) math.Mat4 {
	if v, ok := e.uniforms[name].(math.Mat4); ok {
		return v
	}
	return math.Mat4{}
}

func (e *env) mat4s(name string) []math.Mat4 {
	v, _ := e.uniforms[name].([]math.Mat4)
	return v
}

func (e *env) binding(name string) (*texture, gpu.Filter, bool) {
	b, ok := e.textures[name]
	if !ok || b.Texture == nil {
		return nil, 0, false
	}
	t, ok := b.Texture.(*texture)
	return t, b.Filter, ok
}

// texture2D mirrors GLSL texture(): base level, or level 0 of a mip chain.
func (e *env) texture2D(name string, uv math.Vec2) math.Vec4 {
	return e.textureLod(name, uv, 0)
}

func (e *env) textureLod(name string, uv math.Vec2, lod float32) math.Vec4 {
	t, f, ok := e.binding(name)
	if !ok || t.desc.Cube {
		return math.Vec4{}
	}
	return sample2D(t, f, uv, lod)
}

func (e *env) textureCube(name string, dir math.Vec3) math.Vec4 {
	t, f, ok := e.binding(name)
	if !ok || !t.desc.Cube {
		return math.Vec4{}
	}
	return sampleCube(t, f, dir)
}
