package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSkyboxAndSunSkyExclusive(t *testing.T) {
	tests := []struct {
		name   string
		steps  []func(*Modes)
		skybox bool
		sunSky bool
	}{
		{
			name:   "skybox then sunsky",
			steps:  []func(*Modes){func(m *Modes) { m.SetSkybox(true) }, func(m *Modes) { m.SetSunSky(true) }},
			sunSky: true,
		},
		{
			name:   "sunsky then skybox",
			steps:  []func(*Modes){func(m *Modes) { m.SetSunSky(true) }, func(m *Modes) { m.SetSkybox(true) }},
			skybox: true,
		},
		{
			name:  "skybox on then off",
			steps: []func(*Modes){func(m *Modes) { m.SetSkybox(true) }, func(m *Modes) { m.SetSkybox(false) }},
		},
		{
			name:  "sunsky on then off",
			steps: []func(*Modes){func(m *Modes) { m.SetSunSky(true) }, func(m *Modes) { m.SetSunSky(false) }},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, start := range []Modes{{}, DefaultModes(true), DefaultModes(false)} {
				m := start
				for _, step := range tt.steps {
					step(&m)
					assert.True(t, m.Valid(), "after step: %v", m)
				}
				assert.Equal(t, tt.skybox, m.Skybox())
				assert.Equal(t, tt.sunSky, m.SunSky())
			}
		})
	}
}

func TestAnyToggleSequenceStaysValid(t *testing.T) {
	ops := []func(*Modes, bool){
		(*Modes).SetDeferred,
		(*Modes).SetFlat,
		(*Modes).SetGBufferView,
		(*Modes).SetSkybox,
		(*Modes).SetSunSky,
		(*Modes).SetBlur,
		(*Modes).SetMirror,
	}
	// Every sequence of three toggles from the default state.
	for a := range ops {
		for b := range ops {
			for c := range ops {
				m := DefaultModes(true)
				for _, i := range []int{a, b, c} {
					ops[i](&m, true)
					assert.True(t, m.Valid(), "%v", m)
					ops[i](&m, false)
					assert.True(t, m.Valid(), "%v", m)
					ops[i](&m, true)
				}
			}
		}
	}
}

func TestBlurNeedsSunSky(t *testing.T) {
	m := DefaultModes(true)
	m.SetBlur(true)
	assert.False(t, m.Blur())

	m.SetSunSky(true)
	m.SetBlur(true)
	assert.True(t, m.Blur())

	m.SetSunSky(false)
	assert.False(t, m.Blur())

	m.SetSunSky(true)
	m.SetBlur(true)
	m.SetSkybox(true)
	assert.False(t, m.Blur())
	assert.False(t, m.SunSky())
}

func TestDefaultModes(t *testing.T) {
	m := DefaultModes(true)
	assert.True(t, m.Deferred())
	assert.True(t, m.Skybox())
	assert.True(t, m.Mirror())
	assert.False(t, m.SunSky())
	assert.Equal(t, "deferred+skybox+mirror", m.String())
	assert.Equal(t, "forward+skybox+mirror", DefaultModes(false).String())
}
