package pipeline

import "fmt"

// PassID names one step of a frame.
type PassID uint8

const (
	PassForward PassID = iota
	PassForwardSkybox
	PassGeometry
	PassGBufferView
	PassLights
	PassMirror
	PassSkyboxComposite
	PassSunSky
	PassBlur
	PassMerge
	PassDisplayAccum
	PassDisplaySkybox
	PassDisplayMerge

	numPasses
)

var passNames = [numPasses]string{
	PassForward:         "forward",
	PassForwardSkybox:   "forward-skybox",
	PassGeometry:        "geometry",
	PassGBufferView:     "gbuffer-view",
	PassLights:          "lights",
	PassMirror:          "mirror",
	PassSkyboxComposite: "skybox-composite",
	PassSunSky:          "sunsky",
	PassBlur:            "blur",
	PassMerge:           "merge",
	PassDisplayAccum:    "display-accum",
	PassDisplaySkybox:   "display-skybox",
	PassDisplayMerge:    "display-merge",
}

func (p PassID) String() string {
	if p < numPasses {
		return passNames[p]
	}
	return fmt.Sprintf("PassID(%d)", uint8(p))
}

// Resource names a render target a pass reads or writes.
type Resource uint8

const (
	ResGBuffer Resource = iota
	ResShadow
	ResAccum
	ResTemp1
	ResTemp2
	ResMerge
	ResSkybox
	ResDisplay
)

var resourceNames = [...]string{"gbuffer", "shadow", "accum", "temp1", "temp2", "merge", "skybox", "display"}

func (r Resource) String() string {
	if int(r) < len(resourceNames) {
		return resourceNames[r]
	}
	return fmt.Sprintf("Resource(%d)", uint8(r))
}

// access lists the targets a pass samples and the targets it renders into.
// The shadow map is produced and consumed per light inside PassLights, so it
// only shows up as a write.
var access = [numPasses]struct{ reads, writes []Resource }{
	PassForward:         {nil, []Resource{ResDisplay}},
	PassForwardSkybox:   {nil, []Resource{ResDisplay}},
	PassGeometry:        {nil, []Resource{ResGBuffer}},
	PassGBufferView:     {[]Resource{ResGBuffer}, []Resource{ResDisplay}},
	PassLights:          {[]Resource{ResGBuffer}, []Resource{ResShadow, ResAccum}},
	PassMirror:          {[]Resource{ResGBuffer}, []Resource{ResAccum}},
	PassSkyboxComposite: {[]Resource{ResAccum, ResGBuffer}, []Resource{ResSkybox}},
	PassSunSky:          {[]Resource{ResGBuffer}, []Resource{ResAccum}},
	PassBlur:            {[]Resource{ResAccum}, []Resource{ResTemp1, ResTemp2}},
	PassMerge:           {[]Resource{ResAccum, ResTemp2}, []Resource{ResMerge}},
	PassDisplayAccum:    {[]Resource{ResAccum}, []Resource{ResDisplay}},
	PassDisplaySkybox:   {[]Resource{ResSkybox}, []Resource{ResDisplay}},
	PassDisplayMerge:    {[]Resource{ResMerge}, []Resource{ResDisplay}},
}

// Reads returns the targets the pass samples.
func (p PassID) Reads() []Resource { return access[p].reads }

// Writes returns the targets the pass renders into.
func (p PassID) Writes() []Resource { return access[p].writes }

// Plan returns the ordered passes of one frame rendered with m.
func Plan(m Modes) []PassID {
	if !m.Deferred() {
		plan := []PassID{PassForward}
		if m.Skybox() {
			plan = append(plan, PassForwardSkybox)
		}
		return plan
	}

	plan := []PassID{PassGeometry}
	if m.GBufferView() {
		return append(plan, PassGBufferView)
	}
	plan = append(plan, PassLights)
	switch {
	case m.Skybox():
		if m.Mirror() {
			plan = append(plan, PassMirror)
		}
		plan = append(plan, PassSkyboxComposite, PassDisplaySkybox)
	case m.SunSky():
		plan = append(plan, PassSunSky)
		if m.Blur() {
			plan = append(plan, PassBlur, PassMerge, PassDisplayMerge)
		} else {
			plan = append(plan, PassDisplayAccum)
		}
	default:
		plan = append(plan, PassDisplayAccum)
	}
	return plan
}
