// Package material holds the reflectance models the shading passes understand
// and the table that maps scene nodes to them.
package material

import (
	"fmt"

	"github.com/Faultbox/skyscene/pkg/math"
)

// Kind tags the reflectance model stored in a Material.
type Kind uint8

const (
	// KindMicrofacet is a Lambertian base plus a Beckmann specular lobe.
	KindMicrofacet Kind = iota
)

func (k Kind) String() string {
	switch k {
	case KindMicrofacet:
		return "microfacet"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Microfacet parameterizes the Beckmann microfacet model.
type Microfacet struct {
	Diffuse   math.Vec3 // diffuse albedo R
	IOR       float32   // interior index of refraction (exterior is 1)
	Roughness float32   // Beckmann alpha
	Ks        float32   // specular weight
}

// Material is a closed variant over the supported reflectance models.
// Only the field matching Kind is meaningful.
type Material struct {
	Name       string
	Kind       Kind
	Microfacet Microfacet
}

// NewMicrofacet builds a microfacet material.
func NewMicrofacet(roughness, ior, ks float32, diffuse math.Vec3) Material {
	return Material{
		Kind: KindMicrofacet,
		Microfacet: Microfacet{
			Diffuse:   diffuse,
			IOR:       ior,
			Roughness: roughness,
			Ks:        ks,
		},
	}
}

// Default is the material used before any metadata is loaded.
func Default() Material {
	m := NewMicrofacet(0.1, 1.5, 1.0, math.Splat3(0.4))
	m.Name = "default"
	return m
}

// Params returns the shading parameters every pass needs, regardless of
// model: albedo, eta, alpha and the specular mix.
func (m Material) Params() (diffuse math.Vec3, eta, alpha, ks float32) {
	switch m.Kind {
	case KindMicrofacet:
		p := m.Microfacet
		return p.Diffuse, p.IOR, p.Roughness, p.Ks
	default:
		return math.Splat3(0.5), 1.5, 0.2, 0
	}
}

// Eval returns the BRDF value for unit vectors wi (to light) and wo (to
// viewer) about the unit normal n.
func (m Material) Eval(n, wi, wo math.Vec3) math.Vec3 {
	switch m.Kind {
	case KindMicrofacet:
		return m.Microfacet.Eval(n, wi, wo)
	default:
		return math.Vec3{}
	}
}
