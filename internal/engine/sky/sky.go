// Package sky implements the Preetham analytic daylight model. Model computes
// the per-frame Perez coefficients handed to the sun-sky program; Radiance
// evaluates the same function on the CPU.
package sky

import (
	"github.com/Faultbox/skyscene/pkg/math"
)

// LuminanceScale maps Preetham luminance (kcd/m^2) into the renderer's
// radiance units.
const LuminanceScale = 0.05

// Perez distribution coefficients from the appendix of Preetham et al.,
// rows A..E, columns (turbidity, 1).
var (
	cY = [5][2]float32{
		{0.1787, -1.4630},
		{-0.3554, 0.4275},
		{-0.0227, 5.3251},
		{0.1206, -2.5771},
		{-0.0670, 0.3703},
	}
	cx = [5][2]float32{
		{-0.0193, -0.2592},
		{-0.0665, 0.0008},
		{-0.0004, 0.2125},
		{-0.0641, -0.8989},
		{-0.0033, 0.0452},
	}
	cy = [5][2]float32{
		{-0.0167, -0.2608},
		{-0.0950, 0.0092},
		{-0.0079, 0.2102},
		{-0.0441, -1.6537},
		{-0.0109, 0.0529},
	}

	// Zenith chromaticity polynomials: [T^2 T 1] * M * [th^3 th^2 th 1].
	mx = [3][4]float32{
		{0.0017, -0.0037, 0.0021, 0.0000},
		{-0.0290, 0.0638, -0.0320, 0.0039},
		{0.1169, -0.2120, 0.0605, 0.2589},
	}
	my = [3][4]float32{
		{0.0028, -0.0061, 0.0032, 0.0000},
		{-0.0421, 0.0897, -0.0415, 0.0052},
		{0.1535, -0.2676, 0.0667, 0.2669},
	}
)

// Model is a sky for one sun zenith angle and atmospheric turbidity.
type Model struct {
	ThetaSun  float32 // sun angle from zenith, radians
	Turbidity float32
}

// New returns a sky model.
func New(thetaSun, turbidity float32) *Model {
	return &Model{ThetaSun: thetaSun, Turbidity: turbidity}
}

// Coefficients holds the uniform values of the sun-sky program. Each Vec3
// packs the (Y, x, y) components.
type Coefficients struct {
	A, B, C, D, E math.Vec3
	Zenith        math.Vec3
	ThetaSun      float32
}

// Coefficients evaluates the Perez parameters and zenith color.
func (m *Model) Coefficients() Coefficients {
	t := m.Turbidity
	row := func(c [5][2]float32, i int) float32 { return c[i][0]*t + c[i][1] }
	perez := func(i int) math.Vec3 { return math.V3(row(cY, i), row(cx, i), row(cy, i)) }

	return Coefficients{
		A:        perez(0),
		B:        perez(1),
		C:        perez(2),
		D:        perez(3),
		E:        perez(4),
		Zenith:   math.V3(zenithLuminance(m.ThetaSun, t), zenithChroma(m.ThetaSun, t, mx), zenithChroma(m.ThetaSun, t, my)),
		ThetaSun: m.ThetaSun,
	}
}

func zenithLuminance(theta, t float32) float32 {
	chi := (4.0/9.0 - t/120) * (math.Pi - 2*theta)
	return (4.0453*t-4.9710)*math.Tan(chi) - 0.2155*t + 2.4192
}

func zenithChroma(theta, t float32, m [3][4]float32) float32 {
	vt := [3]float32{t * t, t, 1}
	vth := [4]float32{theta * theta * theta, theta * theta, theta, 1}
	var sum float32
	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			sum += vt[r] * m[r][c] * vth[c]
		}
	}
	return sum
}

// SunDirection is the unit vector toward the sun. The sun moves in the XY
// plane, rising over +X.
func SunDirection(thetaSun float32) math.Vec3 {
	return math.V3(math.Sin(thetaSun), math.Cos(thetaSun), 0)
}

// SunDirection is the unit vector toward the sun for these coefficients.
func (c Coefficients) SunDirection() math.Vec3 { return SunDirection(c.ThetaSun) }

// Radiance returns linear RGB sky radiance seen along the unit direction dir.
// Directions below the horizon see the horizon color.
func (c Coefficients) Radiance(dir math.Vec3) math.Vec3 {
	cosTheta := math.Clamp(dir.Y, 0.001, 1)
	cosGamma := math.Clamp(dir.Dot(c.SunDirection()), -1, 1)
	gamma := math.Acos(cosGamma)
	cosThetaSun := math.Cos(c.ThetaSun)

	f := func(i int) float32 {
		a, b, cc, d, e := comp(c.A, i), comp(c.B, i), comp(c.C, i), comp(c.D, i), comp(c.E, i)
		num := perezF(a, b, cc, d, e, cosTheta, gamma, cosGamma)
		den := perezF(a, b, cc, d, e, 1, c.ThetaSun, cosThetaSun)
		return comp(c.Zenith, i) * num / den
	}

	Y, x, y := f(0)*LuminanceScale, f(1), f(2)
	return xyYToRGB(x, y, Y)
}

func perezF(a, b, c, d, e, cosTheta, gamma, cosGamma float32) float32 {
	return (1 + a*math.Exp(b/cosTheta)) * (1 + c*math.Exp(d*gamma) + e*cosGamma*cosGamma)
}

func comp(v math.Vec3, i int) float32 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// xyYToRGB converts CIE xyY to linear sRGB primaries, clamping negatives.
func xyYToRGB(x, y, Y float32) math.Vec3 {
	if y <= 0 {
		return math.Vec3{}
	}
	X := x * Y / y
	Z := (1 - x - y) * Y / y
	rgb := math.V3(
		3.2406*X-1.5372*Y-0.4986*Z,
		-0.9689*X+1.8758*Y+0.0415*Z,
		0.0557*X-0.2040*Y+1.0570*Z,
	)
	rgb.X = max(rgb.X, 0)
	rgb.Y = max(rgb.Y, 0)
	rgb.Z = max(rgb.Z, 0)
	return rgb
}
