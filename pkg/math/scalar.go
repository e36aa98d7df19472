package math

import "github.com/chewxy/math32"

// Pi as float32.
const Pi = math32.Pi

// Radians converts degrees to radians.
func Radians(deg float32) float32 { return deg * Pi / 180 }

// Degrees converts radians to degrees.
func Degrees(rad float32) float32 { return rad * 180 / Pi }

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Mix is GLSL mix().
func Mix(a, b, t float32) float32 { return a + t*(b-a) }

// Mod is the floating point remainder with the sign of x (C fmod).
func Mod(x, y float32) float32 { return math32.Mod(x, y) }

// The float32 functions below forward to math32 so callers need one
// import for float32 math.
var (
	Sqrt  = math32.Sqrt
	Exp   = math32.Exp
	Tan   = math32.Tan
	Cos   = math32.Cos
	Sin   = math32.Sin
	Acos  = math32.Acos
	Atan  = math32.Atan
	Pow   = math32.Pow
	Abs   = math32.Abs
	Floor = math32.Floor
	Inf   = math32.Inf
)

// IsInf reports whether x is an infinity of either sign.
func IsInf(x float32) bool { return math32.IsInf(x, 0) }
