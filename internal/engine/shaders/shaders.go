// Package shaders defines the shading programs of the renderer: their
// identifiers, the uniform names every backend agrees on, and the GLSL 4.1
// sources the OpenGL backend compiles.
package shaders

import (
	"embed"
	"fmt"
	"strings"
)

// MaxBones is the size of the boneTransform uniform array.
const MaxBones = 100

// ID names one shading program.
type ID uint8

const (
	Forward ID = iota
	Flat
	GBuffer
	Shadow
	PointLight
	Ambient
	SunSky
	Mirror
	Skybox
	Blur
	Merge
	SRGB

	numPrograms
)

var names = [numPrograms]string{
	Forward:    "forward",
	Flat:       "flat",
	GBuffer:    "gbuffer",
	Shadow:     "shadow",
	PointLight: "pointlight",
	Ambient:    "ambient",
	SunSky:     "sunsky",
	Mirror:     "mirror",
	Skybox:     "skybox",
	Blur:       "blur",
	Merge:      "merge",
	SRGB:       "srgb",
}

func (id ID) String() string {
	if id < numPrograms {
		return names[id]
	}
	return fmt.Sprintf("ID(%d)", uint8(id))
}

// All returns every program ID in declaration order.
func All() []ID {
	ids := make([]ID, numPrograms)
	for i := range ids {
		ids[i] = ID(i)
	}
	return ids
}

// Uniform names.
const (
	UModel         = "mM"
	UView          = "mV"
	UProjection    = "mP"
	UViewProjInv   = "mVP_inv"
	UCameraEye     = "cameraEye"
	UWindowWidth   = "windowWidth"
	UWindowHeight  = "windowHeight"
	ULightPosition = "lightPosition"
	ULightPower    = "lightPower"
	ULightRadiance = "lightRadiance"
	ULightRange    = "lightRange"
	ULightView     = "mV_l"
	ULightProj     = "mP_l"
	UDiffuse       = "diffuse_r"
	UEta           = "eta"
	UAlpha         = "alpha"
	UKs            = "k_s"
	UHasAnimation  = "hasAnimation"
	UBoneTransform = "boneTransform"
	USkyA          = "A"
	USkyB          = "B"
	USkyC          = "C"
	USkyD          = "D"
	USkyE          = "E"
	UZenith        = "zenith"
	UThetaSun      = "thetaSun"
	UDir           = "dir"
	UStdev         = "stdev"
	URadius        = "radius"
	ULevel         = "level"
	UExposure      = "exposure"
	UAmbientCoeff  = "k_a"
	UDiffuseCoeff  = "k_d"
	UFlatLightDir  = "lightDir"
)

// Sampler names.
const (
	SNormal           = "gNormal"
	SDiffuse          = "gDiffuse_r"
	SAlpha            = "gAlpha"
	SConvert          = "gConvert"
	SDepth            = "gDepth"
	SShadowMap        = "shadowMap"
	SImage            = "image"
	SOriginalImage    = "originalImage"
	SSkybox           = "skybox"
	SSkyboxReflection = "skyboxReflection"
)

// Skinning modes carried by the hasAnimation uniform.
const (
	SkinStatic int32 = 0
	SkinBones  int32 = 1
	SkinNode   int32 = 2
)

//go:embed glsl
var glsl embed.FS

const header = "#version 410 core\n"

type layout struct {
	vert     string
	frag     string
	includes []string
}

var layouts = [numPrograms]layout{
	Forward:    {"mesh.vert", "forward.frag", []string{"common.glsl", "microfacet.glsl"}},
	Flat:       {"mesh.vert", "flat.frag", []string{"common.glsl"}},
	GBuffer:    {"mesh.vert", "gbuffer.frag", nil},
	Shadow:     {"mesh.vert", "shadow.frag", nil},
	PointLight: {"fsq.vert", "pointlight.frag", []string{"common.glsl", "microfacet.glsl", "gbuffer_read.glsl"}},
	Ambient:    {"fsq.vert", "ambient.frag", []string{"gbuffer_read.glsl"}},
	SunSky:     {"fsq.vert", "sunsky.frag", []string{"gbuffer_read.glsl", "sunsky.glsl"}},
	Mirror:     {"fsq.vert", "mirror.frag", []string{"common.glsl", "microfacet.glsl", "gbuffer_read.glsl"}},
	Skybox:     {"skybox.vert", "skybox.frag", []string{"common.glsl"}},
	Blur:       {"fsq.vert", "blur.frag", nil},
	Merge:      {"fsq.vert", "merge.frag", nil},
	SRGB:       {"fsq.vert", "srgb.frag", []string{"common.glsl"}},
}

// Source returns the vertex and fragment sources of program id.
func Source(id ID) (vertex, fragment string, err error) {
	if id >= numPrograms {
		return "", "", fmt.Errorf("shaders: %v has no source", id)
	}
	l := layouts[id]

	v, err := read(l.vert)
	if err != nil {
		return "", "", err
	}
	var fs strings.Builder
	fs.WriteString(header)
	for _, inc := range l.includes {
		src, err := read(inc)
		if err != nil {
			return "", "", err
		}
		fs.WriteString(src)
		fs.WriteByte('\n')
	}
	f, err := read(l.frag)
	if err != nil {
		return "", "", err
	}
	fs.WriteString(f)

	vertex = header + fmt.Sprintf("#define MAX_BONES %d\n", MaxBones) + v
	return vertex, fs.String(), nil
}

func read(name string) (string, error) {
	b, err := glsl.ReadFile("glsl/" + name)
	if err != nil {
		return "", fmt.Errorf("shaders: %w", err)
	}
	return string(b), nil
}
