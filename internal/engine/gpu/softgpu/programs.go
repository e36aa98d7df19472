package softgpu

import (
	"github.com/Faultbox/skyscene/internal/engine/material"
	"github.com/Faultbox/skyscene/internal/engine/shaders"
	"github.com/Faultbox/skyscene/internal/engine/sky"
	"github.com/Faultbox/skyscene/pkg/math"
)

// Programs are Go ports of the GLSL in package shaders. They read the same
// uniform and sampler names and write the same outputs.

const maxVaryings = 8

type varyings [maxVaryings]float32

func (v *varyings) vec2(i int) math.Vec2 { return math.Vec2{X: v[i], Y: v[i+1]} }
func (v *varyings) vec3(i int) math.Vec3 { return math.V3(v[i], v[i+1], v[i+2]) }

func (v *varyings) setVec3(i int, p math.Vec3) {
	v[i], v[i+1], v[i+2] = p.X, p.Y, p.Z
}

type vertexFunc func(e *env, m *mesh, i int) (math.Vec4, varyings)

// fragmentFunc writes up to four color outputs and reports false to discard.
type fragmentFunc func(e *env, v *varyings, out *[4]math.Vec4) bool

type program struct {
	vertex   vertexFunc
	fragment fragmentFunc
}

var programs = map[shaders.ID]program{
	shaders.Forward:    {meshVertex, forwardFragment},
	shaders.Flat:       {meshVertex, flatFragment},
	shaders.GBuffer:    {meshVertex, gbufferFragment},
	shaders.Shadow:     {meshVertex, func(*env, *varyings, *[4]math.Vec4) bool { return true }},
	shaders.PointLight: {quadVertex, pointLightFragment},
	shaders.Ambient:    {quadVertex, ambientFragment},
	shaders.SunSky:     {quadVertex, sunSkyFragment},
	shaders.Mirror:     {quadVertex, mirrorFragment},
	shaders.Skybox:     {skyboxVertex, skyboxFragment},
	shaders.Blur:       {quadVertex, blurFragment},
	shaders.Merge:      {quadVertex, mergeFragment},
	shaders.SRGB:       {quadVertex, srgbFragment},
}

func skinMatrix(e *env, m *mesh, i int) math.Mat4 {
	if int32(e.int(shaders.UHasAnimation)) != shaders.SkinBones {
		return math.Identity()
	}
	bones := e.mat4s(shaders.UBoneTransform)
	ids, weights := m.bones(i)

	var s math.Mat4
	var total float32
	for k := range 4 {
		id := int(ids[k])
		if id < 0 || id >= len(bones) || id >= shaders.MaxBones {
			continue
		}
		for j := range s {
			s[j] += bones[id][j] * weights[k]
		}
		total += weights[k]
	}
	if total <= 0 {
		return math.Identity()
	}
	return s
}

// meshVertex outputs world position, world normal and view depth.
func meshVertex(e *env, m *mesh, i int) (math.Vec4, varyings) {
	model := e.mat4(shaders.UModel).Mul(skinMatrix(e, m, i))
	world := model.MulVec4(m.data.Positions[i].Vec4(1))
	view := e.mat4(shaders.UView).MulVec4(world)

	var v varyings
	v.setVec3(0, world.XYZ())
	v.setVec3(3, model.NormalMatrix().TransformDirection(m.normal(i)).Normalize())
	v[6] = -view.Z
	return e.mat4(shaders.UProjection).MulVec4(view), v
}

func quadVertex(_ *env, m *mesh, i int) (math.Vec4, varyings) {
	p := m.data.Positions[i]
	var v varyings
	v[0], v[1] = p.X*0.5+0.5, p.Y*0.5+0.5
	return math.Vec4{X: p.X, Y: p.Y, Z: 0, W: 1}, v
}

func skyboxVertex(e *env, m *mesh, i int) (math.Vec4, varyings) {
	p := m.data.Positions[i]
	rot := e.mat4(shaders.UView)
	rot[12], rot[13], rot[14] = 0, 0, 0

	var v varyings
	v.setVec3(0, p)
	c := e.mat4(shaders.UProjection).Mul(rot).MulVec4(p.Vec4(1))
	return math.Vec4{X: c.X, Y: c.Y, Z: c.W, W: c.W}, v
}

func surface(e *env) material.Microfacet {
	return material.Microfacet{
		Diffuse:   e.vec3(shaders.UDiffuse),
		IOR:       e.float(shaders.UEta),
		Roughness: e.float(shaders.UAlpha),
		Ks:        e.float(shaders.UKs),
	}
}

// pointRadiance is the reflected radiance from a point light of the given
// power at distance sqrt(r2).
func pointRadiance(brdf material.Microfacet, n, p, eye, lightPos, power math.Vec3) math.Vec3 {
	toLight := lightPos.Sub(p)
	r2 := toLight.Dot(toLight)
	if r2 == 0 {
		return math.Vec3{}
	}
	wi := toLight.Scale(1 / math.Sqrt(r2))
	wo := eye.Sub(p).Normalize()
	f := brdf.Eval(n, wi, wo)
	return f.Mul(power).Scale(max(n.Dot(wi), 0) / (4 * math.Pi * r2))
}

func forwardFragment(e *env, v *varyings, out *[4]math.Vec4) bool {
	l := pointRadiance(surface(e), v.vec3(3).Normalize(), v.vec3(0),
		e.vec3(shaders.UCameraEye), e.vec3(shaders.ULightPosition), e.vec3(shaders.ULightPower))
	out[0] = linearToSRGB(l.Scale(e.float(shaders.UExposure))).Vec4(1)
	return true
}

func flatFragment(e *env, v *varyings, out *[4]math.Vec4) bool {
	n := v.vec3(3).Normalize()
	shade := e.float(shaders.UAmbientCoeff) + e.float(shaders.UDiffuseCoeff)*max(n.Dot(e.vec3(shaders.UFlatLightDir).Normalize()), 0)
	out[0] = linearToSRGB(e.vec3(shaders.UDiffuse).Scale(shade)).Vec4(1)
	return true
}

func gbufferFragment(e *env, v *varyings, out *[4]math.Vec4) bool {
	alpha := e.float(shaders.UAlpha)
	out[0] = v.vec3(3).Normalize().Vec4(1)
	out[1] = e.vec3(shaders.UDiffuse).Vec4(alpha)
	out[2] = math.Vec4{X: e.float(shaders.UEta), Y: e.float(shaders.UKs), Z: alpha, W: 1}
	out[3] = math.Vec4{X: v[6], W: 1}
	return true
}

// gsample is one decoded G-buffer texel.
type gsample struct {
	depth   float32
	pos     math.Vec3
	normal  math.Vec3
	diffuse math.Vec4 // rgb albedo, a roughness
	params  math.Vec4 // eta, k_s, roughness, coverage
}

func readGBuffer(e *env, uv math.Vec2) gsample {
	g := gsample{depth: e.texture2D(shaders.SDepth, uv).X}
	g.pos = worldFromDepth(e, uv, g.depth)
	g.normal = e.texture2D(shaders.SNormal, uv).XYZ().Normalize()
	g.diffuse = e.texture2D(shaders.SDiffuse, uv)
	g.params = e.texture2D(shaders.SAlpha, uv)
	return g
}

func worldFromDepth(e *env, uv math.Vec2, depth float32) math.Vec3 {
	ndc := math.Vec4{X: uv.X*2 - 1, Y: uv.Y*2 - 1, Z: depth*2 - 1, W: 1}
	return e.mat4(shaders.UViewProjInv).MulVec4(ndc).Project()
}

const shadowBias = 0.002

func visibility(e *env, p math.Vec3) float32 {
	clip := e.mat4(shaders.ULightProj).Mul(e.mat4(shaders.ULightView)).MulVec4(p.Vec4(1))
	if clip.W <= 0 {
		return 1
	}
	ndc := clip.Project()
	u, v, z := ndc.X*0.5+0.5, ndc.Y*0.5+0.5, ndc.Z*0.5+0.5
	if u < 0 || u > 1 || v < 0 || v > 1 {
		return 1
	}
	stored := e.texture2D(shaders.SShadowMap, math.Vec2{X: u, Y: v}).X
	if z-shadowBias > stored {
		return 0
	}
	return 1
}

func pointLightFragment(e *env, v *varyings, out *[4]math.Vec4) bool {
	g := readGBuffer(e, v.vec2(0))
	if g.depth >= 1 {
		return false
	}
	brdf := material.Microfacet{
		Diffuse:   g.diffuse.XYZ(),
		IOR:       g.params.X,
		Roughness: g.diffuse.W,
		Ks:        g.params.Y,
	}
	l := pointRadiance(brdf, g.normal, g.pos,
		e.vec3(shaders.UCameraEye), e.vec3(shaders.ULightPosition), e.vec3(shaders.ULightPower))
	out[0] = l.Scale(visibility(e, g.pos)).Vec4(1)
	return true
}

func ambientFragment(e *env, v *varyings, out *[4]math.Vec4) bool {
	uv := v.vec2(0)
	if e.texture2D(shaders.SDepth, uv).X >= 1 {
		return false
	}
	albedo := e.texture2D(shaders.SDiffuse, uv).XYZ()
	out[0] = e.vec3(shaders.ULightRadiance).Mul(albedo).Vec4(1)
	return true
}

func skyCoefficients(e *env) sky.Coefficients {
	return sky.Coefficients{
		A:        e.vec3(shaders.USkyA),
		B:        e.vec3(shaders.USkyB),
		C:        e.vec3(shaders.USkyC),
		D:        e.vec3(shaders.USkyD),
		E:        e.vec3(shaders.USkyE),
		Zenith:   e.vec3(shaders.UZenith),
		ThetaSun: e.float(shaders.UThetaSun),
	}
}

func sunSkyFragment(e *env, v *varyings, out *[4]math.Vec4) bool {
	uv := v.vec2(0)
	c := skyCoefficients(e)
	if e.texture2D(shaders.SDepth, uv).X >= 1 {
		dir := worldFromDepth(e, uv, 1).Sub(e.vec3(shaders.UCameraEye)).Normalize()
		out[0] = c.Radiance(dir).Vec4(1)
		return true
	}
	n := e.texture2D(shaders.SNormal, uv).XYZ().Normalize()
	albedo := e.texture2D(shaders.SDiffuse, uv).XYZ()
	out[0] = albedo.Mul(c.Radiance(n)).Vec4(1)
	return true
}

func mirrorFragment(e *env, v *varyings, out *[4]math.Vec4) bool {
	g := readGBuffer(e, v.vec2(0))
	if g.depth >= 1 {
		return false
	}
	wo := e.vec3(shaders.UCameraEye).Sub(g.pos).Normalize()
	r := wo.Neg().Reflect(g.normal)
	refl := srgbToLinear(e.textureCube(shaders.SSkyboxReflection, r).XYZ())
	out[0] = refl.Scale(g.params.Y * material.Fresnel(g.normal.Dot(wo), 1, g.params.X)).Vec4(1)
	return true
}

func skyboxFragment(e *env, v *varyings, out *[4]math.Vec4) bool {
	out[0] = srgbToLinear(e.textureCube(shaders.SSkybox, v.vec3(0)).XYZ()).Vec4(1)
	return true
}

func blurFragment(e *env, v *varyings, out *[4]math.Vec4) bool {
	uv := v.vec2(0)
	dir := e.vec2(shaders.UDir)
	w, h := e.float(shaders.UWindowWidth), e.float(shaders.UWindowHeight)
	texel := math.Vec2{X: dir.X / w, Y: dir.Y / h}
	level := float32(e.int(shaders.ULevel))
	stride := math.Pow(2, level)
	stdev, radius := e.float(shaders.UStdev), e.float(shaders.URadius)

	var sum math.Vec3
	var total float32
	for x := -radius; x <= radius; x += stride {
		wt := math.Exp(-x * x / (2 * stdev * stdev))
		c := e.textureLod(shaders.SImage, uv.Add(texel.Scale(x)), level)
		sum = sum.Add(c.XYZ().Scale(wt))
		total += wt
	}
	if total > 0 {
		sum = sum.Scale(1 / total)
	}
	out[0] = sum.Vec4(1)
	return true
}

// Bloom weights for the original image and blur levels 1 through 4.
var mergeWeights = [5]float32{0.8843, 0.1, 0.012, 0.0027, 0.001}

func mergeFragment(e *env, v *varyings, out *[4]math.Vec4) bool {
	uv := v.vec2(0)
	c := e.textureLod(shaders.SOriginalImage, uv, 0).XYZ().Scale(mergeWeights[0])
	for l := 1; l < len(mergeWeights); l++ {
		c = c.Add(e.textureLod(shaders.SImage, uv, float32(l)).XYZ().Scale(mergeWeights[l]))
	}
	out[0] = c.Vec4(1)
	return true
}

func srgbFragment(e *env, v *varyings, out *[4]math.Vec4) bool {
	c := e.texture2D(shaders.SImage, v.vec2(0)).XYZ()
	out[0] = linearToSRGB(c.Scale(e.float(shaders.UExposure))).Vec4(1)
	return true
}

func linearToSRGB(c math.Vec3) math.Vec3 {
	f := func(x float32) float32 {
		x = math.Clamp(x, 0, 1)
		if x < 0.0031308 {
			return 12.92 * x
		}
		return 1.055*math.Pow(x, 1/2.4) - 0.055
	}
	return math.V3(f(c.X), f(c.Y), f(c.Z))
}

func srgbToLinear(c math.Vec3) math.Vec3 {
	f := func(x float32) float32 {
		if x < 0.04045 {
			return x / 12.92
		}
		return math.Pow((x+0.055)/1.055, 2.4)
	}
	return math.V3(f(c.X), f(c.Y), f(c.Z))
}
