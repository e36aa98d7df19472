package pipeline

import "strings"

// Modes is the set of display toggles a frame is rendered with. The setters
// keep the combination valid: skybox and sun-sky display exclude each other,
// and bloom only exists on top of the sun-sky image.
type Modes struct {
	deferred    bool
	flat        bool
	gbufferView bool
	skybox      bool
	sunSky      bool
	blur        bool
	mirror      bool
}

// DefaultModes returns the startup toggles: skybox with mirror reflection,
// deferred when requested.
func DefaultModes(deferred bool) Modes {
	return Modes{deferred: deferred, skybox: true, mirror: true}
}

func (m Modes) Deferred() bool    { return m.deferred }
func (m Modes) Flat() bool        { return m.flat }
func (m Modes) GBufferView() bool { return m.gbufferView }
func (m Modes) Skybox() bool      { return m.skybox }
func (m Modes) SunSky() bool      { return m.sunSky }
func (m Modes) Blur() bool        { return m.blur }
func (m Modes) Mirror() bool      { return m.mirror }

// SetDeferred switches between the forward and deferred pipelines.
func (m *Modes) SetDeferred(on bool) { m.deferred = on }

// SetFlat selects flat shading. It only applies to the forward pipeline.
func (m *Modes) SetFlat(on bool) { m.flat = on }

// SetGBufferView shows the raw G-buffer instead of the lit image. It only
// applies to the deferred pipeline.
func (m *Modes) SetGBufferView(on bool) { m.gbufferView = on }

// SetSkybox toggles the skybox. Turning it on turns sun-sky display and bloom
// off.
func (m *Modes) SetSkybox(on bool) {
	m.skybox = on
	if on {
		m.sunSky = false
		m.blur = false
	}
}

// SetSunSky toggles the analytic sky. Turning it on turns the skybox off;
// turning it off also turns bloom off.
func (m *Modes) SetSunSky(on bool) {
	m.sunSky = on
	if on {
		m.skybox = false
	} else {
		m.blur = false
	}
}

// SetBlur toggles bloom. Without sun-sky display the request is ignored.
func (m *Modes) SetBlur(on bool) { m.blur = on && m.sunSky }

// SetMirror toggles skybox reflections. The flag is kept while the skybox
// is off but has no effect until it is back on.
func (m *Modes) SetMirror(on bool) { m.mirror = on }

// Valid reports whether the toggles form an allowed combination.
func (m Modes) Valid() bool {
	return !(m.skybox && m.sunSky) && (!m.blur || m.sunSky)
}

func (m Modes) String() string {
	var b strings.Builder
	if m.deferred {
		b.WriteString("deferred")
	} else {
		b.WriteString("forward")
	}
	for _, f := range []struct {
		on   bool
		name string
	}{
		{m.flat, "flat"},
		{m.gbufferView, "gbuffer"},
		{m.skybox, "skybox"},
		{m.sunSky, "sunsky"},
		{m.blur, "blur"},
		{m.mirror, "mirror"},
	} {
		if f.on {
			b.WriteString("+")
			b.WriteString(f.name)
		}
	}
	return b.String()
}
