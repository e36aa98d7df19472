package material

import (
	"github.com/Faultbox/skyscene/pkg/math"
)

const invPi = 0.31830988618379067154

// Fresnel returns the unpolarized dielectric reflectance.
func Fresnel(cosThetaI, extIOR, intIOR float32) float32 {
	etaI, etaT := extIOR, intIOR
	if extIOR == intIOR {
		return 0
	}
	if cosThetaI < 0 {
		etaI, etaT = etaT, etaI
		cosThetaI = -cosThetaI
	}

	eta := etaI / etaT
	sinThetaTSqr := eta * eta * (1 - cosThetaI*cosThetaI)
	if sinThetaTSqr > 1 {
		return 1 // total internal reflection
	}
	cosThetaT := math.Sqrt(1 - sinThetaTSqr)

	rs := (etaI*cosThetaI - etaT*cosThetaT) / (etaI*cosThetaI + etaT*cosThetaT)
	rp := (etaT*cosThetaI - etaI*cosThetaT) / (etaT*cosThetaI + etaI*cosThetaT)
	return (rs*rs + rp*rp) / 2
}

// Beckmann evaluates the normal distribution for a half vector whose angle to
// the surface normal has cosine cosM.
func (p Microfacet) Beckmann(cosM float32) float32 {
	if cosM <= 0 {
		return 0
	}
	ct2 := cosM * cosM
	tan2 := (1 - ct2) / ct2
	a2 := p.Roughness * p.Roughness
	return math.Exp(-tan2/a2) / (math.Pi * a2 * ct2 * ct2)
}

// SmithG1 is the rational approximation of the Beckmann masking term for a
// direction with cosine cosV to the normal and cosine vDotM to the half vector.
func (p Microfacet) SmithG1(cosV, vDotM float32) float32 {
	if vDotM*cosV <= 0 {
		return 0
	}
	sin := math.Sqrt(math.Clamp(1-cosV*cosV, 0, 1))
	if sin == 0 {
		return 1
	}
	a := cosV / (p.Roughness * sin)
	if a >= 1.6 {
		return 1
	}
	a2 := a * a
	return (3.535*a + 2.181*a2) / (1 + 2.276*a + 2.577*a2)
}

// Eval returns R/pi plus the Beckmann specular term.
func (p Microfacet) Eval(n, wi, wo math.Vec3) math.Vec3 {
	cosI, cosO := n.Dot(wi), n.Dot(wo)
	if cosI <= 0 || cosO <= 0 {
		return math.Vec3{}
	}

	h := wi.Add(wo).Normalize()
	d := p.Beckmann(n.Dot(h))
	f := Fresnel(h.Dot(wi), 1, p.IOR)
	g := p.SmithG1(cosI, wi.Dot(h)) * p.SmithG1(cosO, wo.Dot(h))

	spec := p.Ks * f * d * g / (4 * cosI * cosO)
	return p.Diffuse.Scale(invPi).Add(math.Splat3(spec))
}
