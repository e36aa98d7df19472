package sky

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/skyscene/pkg/math"
)

func TestCoefficientsFollowTurbidity(t *testing.T) {
	c := New(math.Radians(85), 7).Coefficients()

	assert.InDelta(t, 0.1787*7-1.4630, c.A.X, 1e-5)
	assert.InDelta(t, -0.0193*7-0.2592, c.A.Y, 1e-5)
	assert.InDelta(t, -0.0167*7-0.2608, c.A.Z, 1e-5)
	assert.InDelta(t, -0.0670*7+0.3703, c.E.X, 1e-5)
	assert.Equal(t, math.Radians(85), c.ThetaSun)
}

func TestZenithLuminance(t *testing.T) {
	theta := math.Radians(30)
	c := New(theta, 4).Coefficients()

	chi := (4.0/9.0 - 4.0/120) * (math.Pi - 2*theta)
	want := (4.0453*4-4.9710)*math.Tan(chi) - 0.2155*4 + 2.4192
	assert.InDelta(t, want, c.Zenith.X, 1e-4)

	// Chromaticities stay in the visible range for daylight turbidities.
	assert.Greater(t, c.Zenith.Y, float32(0.2))
	assert.Less(t, c.Zenith.Y, float32(0.4))
	assert.Greater(t, c.Zenith.Z, float32(0.2))
	assert.Less(t, c.Zenith.Z, float32(0.45))
}

func TestRadianceAtZenithMatchesZenithLuminance(t *testing.T) {
	c := New(math.Radians(40), 3).Coefficients()
	rgb := c.Radiance(math.V3(0, 1, 0))

	// Recover luminance from linear sRGB.
	Y := 0.2126*rgb.X + 0.7152*rgb.Y + 0.0722*rgb.Z
	assert.InDelta(t, c.Zenith.X*LuminanceScale, Y, 2e-3)
}

func TestRadianceBrighterTowardSun(t *testing.T) {
	c := New(math.Radians(60), 4).Coefficients()
	sun := c.SunDirection()
	away := math.V3(-sun.X, sun.Y, 0.2).Normalize()

	near := c.Radiance(math.V3(sun.X, sun.Y+0.05, 0).Normalize())
	far := c.Radiance(away)
	assert.Greater(t, near.Luminance(), far.Luminance())
}

func TestRadianceBelowHorizonIsFinite(t *testing.T) {
	c := New(math.Radians(85), 7).Coefficients()
	rgb := c.Radiance(math.V3(0, -1, 0))
	require.False(t, math.IsInf(rgb.X))
	assert.GreaterOrEqual(t, rgb.X, float32(0))
}

func TestSunDirection(t *testing.T) {
	assert.True(t, SunDirection(0).ApproxEqual(math.V3(0, 1, 0), 1e-6))
	assert.True(t, SunDirection(math.Pi/2).ApproxEqual(math.V3(1, 0, 0), 1e-6))
}
