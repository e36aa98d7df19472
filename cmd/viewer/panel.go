package main

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
	"go.uber.org/zap"

	"github.com/Faultbox/skyscene/internal/app"
	"github.com/Faultbox/skyscene/internal/config"
	"github.com/Faultbox/skyscene/internal/engine/anim"
	"github.com/Faultbox/skyscene/internal/engine/pipeline"
	"github.com/Faultbox/skyscene/internal/engine/ui"
)

const panelWidth = 300

var speedLabels = func() []string {
	labels := make([]string, len(anim.SpeedOptions))
	for i, s := range anim.SpeedOptions {
		labels[i] = fmt.Sprintf("x%g", s)
	}
	return labels
}()

// drawPanel draws the mode and parameter controls. Toggles go through
// App.HandleKey so the panel obeys the same rules as the keyboard.
func (v *viewer) drawPanel(now float64) {
	x, y, _, _ := v.backend.GetViewport()
	imgui.SetNextWindowPos(imgui.NewVec2(x+10, y+10))
	imgui.SetNextWindowSize(imgui.NewVec2(panelWidth, 0))
	imgui.SetNextWindowBgAlpha(0.8)
	flags := imgui.WindowFlagsNoResize | imgui.WindowFlagsNoMove | imgui.WindowFlagsAlwaysAutoResize |
		imgui.WindowFlagsNoCollapse
	if imgui.BeginV("Scene", nil, flags) {
		v.drawModes(now)
		imgui.Separator()
		v.drawCamera(now)
		imgui.Separator()
		v.drawSky()
		imgui.Separator()
		v.drawFiles()
	}
	imgui.End()
}

// toggle draws a checkbox bound to a mode key, greyed out when the key is
// ignored in the current state.
func (v *viewer) toggle(label string, key app.Key, on, enabled bool, now float64) {
	imgui.BeginDisabledV(!enabled)
	if imgui.Checkbox(fmt.Sprintf("%s (%s)", label, key), &on) {
		v.app.HandleKey(key, now)
	}
	imgui.EndDisabled()
}

func (v *viewer) drawModes(now float64) {
	m := v.app.Modes()
	imgui.Text(fmt.Sprintf("Pipeline: %s", m))
	v.toggle("Deferred", app.KeyDeferred, m.Deferred(), true, now)
	v.toggle("Flat shading", app.KeyFlat, m.Flat(), !m.Deferred(), now)
	v.toggle("G-buffer view", app.KeyGBuffer, m.GBufferView(), m.Deferred(), now)
	v.toggle("Sun-sky", app.KeySunSky, m.SunSky(), m.Deferred(), now)
	v.toggle("Blur", app.KeyBlur, m.Blur(), m.Deferred() && m.SunSky(), now)
	v.toggle("Skybox", app.KeySkybox, m.Skybox(), true, now)
	v.toggle("Mirror", app.KeyMirror, m.Mirror(), m.Skybox(), now)
	imgui.TextDisabled(fmt.Sprintf("%d passes", len(pipeline.Plan(m))))
}

func (v *viewer) drawCamera(now float64) {
	label := "Default camera"
	if v.app.UsingBuiltinCamera() {
		label = "Scene camera"
	}
	imgui.Text(label)
	imgui.SameLine()
	imgui.BeginDisabledV(!v.app.HasBuiltinCamera())
	if imgui.Button("Switch (C)") {
		v.app.ToggleCamera()
	}
	imgui.EndDisabled()

	if v.app.Speed() == 0 {
		imgui.TextDisabled("Static scene")
		return
	}
	imgui.Text("Animation speed (1-7)")
	current := -1
	for i, s := range anim.SpeedOptions {
		if s == v.app.Speed() {
			current = i
		}
	}
	if i := selectorRows("speed", speedLabels, current); i >= 0 {
		v.app.SetSpeed(anim.SpeedOptions[i], now)
	}
}

// selectorRows splits options over rows that fit the panel.
func selectorRows(id string, options []string, current int) int {
	const perRow = 4
	width := (imgui.ContentRegionAvail().X - 3*8) / perRow
	for start := 0; start < len(options); start += perRow {
		end := min(start+perRow, len(options))
		if i := ui.Selector(fmt.Sprintf("%s%d", id, start), options[start:end], current-start, width); i >= 0 {
			return start + i
		}
	}
	return -1
}

func (v *viewer) drawSky() {
	theta, turbidity := v.app.Sky()
	changed := imgui.SliderFloatV("Sun zenith", &theta, 0, 90, "%.1f deg", imgui.SliderFlagsNone)
	if imgui.SliderFloatV("Turbidity", &turbidity, 2, 10, "%.1f", imgui.SliderFlagsNone) {
		changed = true
	}
	if changed {
		v.app.SetSky(theta, turbidity)
	}

	exposure := v.app.Exposure()
	imgui.Text(fmt.Sprintf("Exposure: %g", exposure))
	imgui.SameLine()
	if imgui.Button("/2") {
		v.app.SetExposure(exposure / 2)
	}
	imgui.SameLine()
	if imgui.Button("x2") {
		v.app.SetExposure(exposure * 2)
	}
}

func (v *viewer) drawFiles() {
	if imgui.Button("Open Scene...") {
		v.openDialog(false)
	}
	imgui.SameLine()
	if imgui.Button("Open Skybox...") {
		v.openDialog(true)
	}
	if imgui.Button("Screenshot (F12)") {
		v.app.RequestScreenshot()
	}
	imgui.SameLine()
	if imgui.Button("Save Settings") {
		v.saveSettings()
	}
	imgui.TextDisabled("Tab hides this panel")
}

// saveSettings writes the current state to the config file the next run
// starts from.
func (v *viewer) saveSettings() {
	path := config.SavePath()
	if err := v.app.Settings().SaveTo(path); err != nil {
		v.log.Error("saving settings failed", zap.String("path", path), zap.Error(err))
		v.setStatus("Error: " + err.Error())
		return
	}
	v.log.Info("settings saved", zap.String("path", path))
	v.setStatus("Saved " + path)
}
