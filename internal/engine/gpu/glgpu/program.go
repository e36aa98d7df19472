package glgpu

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/skyscene/internal/engine/gpu"
	"github.com/Faultbox/skyscene/pkg/math"
)

// program is a linked GL program with a lazily filled uniform location cache.
type program struct {
	id        uint32
	locations map[string]int32
}

// compileProgram compiles vertex and fragment shaders and links them into a program.
func compileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragShader)

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vertShader)
	gl.AttachShader(prog, fragShader)
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("link: %s", strings.TrimRight(log, "\x00"))
	}
	return prog, nil
}

func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %s", name, strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

// location returns -1 for uniforms the driver optimized away; setting those
// is a no-op in GL.
func (p *program) location(name string) int32 {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(p.id, gl.Str(name+"\x00"))
	p.locations[name] = loc
	return loc
}

func (p *program) set(name string, value any) error {
	loc := p.location(name)
	if loc < 0 {
		return nil
	}
	switch v := value.(type) {
	case float32:
		gl.Uniform1f(loc, v)
	case float64:
		gl.Uniform1f(loc, float32(v))
	case int:
		gl.Uniform1i(loc, int32(v))
	case int32:
		gl.Uniform1i(loc, v)
	case math.Vec2:
		gl.Uniform2f(loc, v.X, v.Y)
	case math.Vec3:
		gl.Uniform3f(loc, v.X, v.Y, v.Z)
	case math.Vec4:
		gl.Uniform4f(loc, v.X, v.Y, v.Z, v.W)
	case math.Mat4:
		gl.UniformMatrix4fv(loc, 1, false, v.Ptr())
	case []math.Mat4:
		if len(v) > 0 {
			gl.UniformMatrix4fv(loc, int32(len(v)), false, v[0].Ptr())
		}
	default:
		return fmt.Errorf("uniform %s: unsupported type %T", name, value)
	}
	return nil
}

func (p *program) setAll(u gpu.Uniforms) error {
	for name, v := range u {
		if err := p.set(name, v); err != nil {
			return err
		}
	}
	return nil
}
