package material

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/skyscene/pkg/math"
)

func TestDefaultMaterial(t *testing.T) {
	m := Default()
	require.Equal(t, KindMicrofacet, m.Kind)
	diffuse, eta, alpha, ks := m.Params()
	assert.Equal(t, math.Splat3(0.4), diffuse)
	assert.Equal(t, float32(1.5), eta)
	assert.Equal(t, float32(0.1), alpha)
	assert.Equal(t, float32(1.0), ks)
}

func TestFresnel(t *testing.T) {
	// Normal incidence on glass: ((1-1.5)/(1+1.5))^2 = 0.04
	assert.InDelta(t, 0.04, Fresnel(1, 1, 1.5), 1e-5)
	assert.Equal(t, float32(0), Fresnel(0.5, 1.5, 1.5))
	// Grazing from inside past the critical angle.
	assert.Equal(t, float32(1), Fresnel(-0.1, 1, 1.5))
}

func TestBeckmannPeaksAtNormal(t *testing.T) {
	p := NewMicrofacet(0.2, 1.5, 1, math.Splat3(0.5)).Microfacet
	assert.Greater(t, p.Beckmann(1), p.Beckmann(0.9))
	assert.Equal(t, float32(0), p.Beckmann(0))
	// D(normal) = 1/(pi alpha^2)
	assert.InDelta(t, 1/(math.Pi*0.04), p.Beckmann(1), 1e-3)
}

func TestSmithG1(t *testing.T) {
	p := NewMicrofacet(0.2, 1.5, 1, math.Splat3(0.5)).Microfacet
	assert.Equal(t, float32(1), p.SmithG1(1, 1))
	assert.Equal(t, float32(0), p.SmithG1(0.5, -0.2))
	g := p.SmithG1(0.05, 0.5)
	assert.Greater(t, g, float32(0))
	assert.Less(t, g, float32(1))
}

func TestEvalBackside(t *testing.T) {
	m := Default()
	n := math.V3(0, 1, 0)
	assert.Equal(t, math.Vec3{}, m.Eval(n, math.V3(0, -1, 0), n))
	assert.Equal(t, math.Vec3{}, m.Eval(n, n, math.V3(1, -0.1, 0).Normalize()))
}

func TestEvalDiffuseOnly(t *testing.T) {
	m := NewMicrofacet(0.3, 1.5, 0, math.V3(0.6, 0.3, 0.1))
	n := math.V3(0, 0, 1)
	wi := math.V3(0.3, 0, 1).Normalize()
	got := m.Eval(n, wi, n)
	assert.True(t, got.ApproxEqual(math.V3(0.6, 0.3, 0.1).Scale(invPi), 1e-6), "got %v", got)
}

func TestEvalSpecularAddsEnergyAtMirror(t *testing.T) {
	m := NewMicrofacet(0.1, 1.5, 1, math.Vec3{})
	n := math.V3(0, 1, 0)
	wi := math.V3(1, 1, 0).Normalize()
	mirror := math.V3(-1, 1, 0).Normalize()
	off := math.V3(-1, 3, 1).Normalize()
	assert.Greater(t, m.Eval(n, wi, mirror).X, m.Eval(n, wi, off).X)
}

func TestTableResolve(t *testing.T) {
	tbl := NewTable()
	red := tbl.AddNamed("red", NewMicrofacet(0.2, 1.5, 1, math.V3(1, 0, 0)))
	body := tbl.AddForNode("Body", NewMicrofacet(0.3, 1.3, 1, math.V3(0, 1, 0)))

	assert.Equal(t, body, tbl.Resolve("Body", "red"), "node key wins")
	assert.Equal(t, red, tbl.Resolve("Arm", "red"))
	assert.Equal(t, DefaultHandle, tbl.Resolve("Arm", "blue"))
	assert.Equal(t, DefaultHandle, tbl.Resolve("Arm", ""))
	assert.Equal(t, 3, tbl.Len())

	tbl.SetDefault(NewMicrofacet(0.5, 1.2, 1, math.Splat3(0.5)))
	assert.Equal(t, "default", tbl.Get(DefaultHandle).Name)
	assert.Equal(t, tbl.Get(DefaultHandle), tbl.Get(Handle(99)), "stale handles fall back")
}
