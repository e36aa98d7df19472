package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/Faultbox/skyscene/internal/app"
	"github.com/Faultbox/skyscene/internal/engine/anim"
	"github.com/Faultbox/skyscene/internal/engine/lighting"
	"github.com/Faultbox/skyscene/internal/engine/material"
	"github.com/Faultbox/skyscene/internal/engine/pipeline"
	"github.com/Faultbox/skyscene/internal/engine/scene"
	"github.com/Faultbox/skyscene/internal/sceneinfo"
	"github.com/Faultbox/skyscene/pkg/math"
)

type frameStats struct {
	load, render     time.Duration
	passes           []pipeline.PassID
	draws, fragments int
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader(header)
	return table
}

func fmtVec(v math.Vec3) string {
	return fmt.Sprintf("(%.3g, %.3g, %.3g)", v.X, v.Y, v.Z)
}

func fmtFloat(f float32) string {
	if math.IsInf(f) {
		return "inf"
	}
	return strconv.FormatFloat(float64(f), 'g', 4, 32)
}

func writeNodes(w io.Writer, g *scene.Graph) {
	table := newTable(w, "ID", "Node", "Parent", "Children", "Meshes")
	for i, n := range g.Nodes {
		parent := "-"
		if n.Parent != scene.NoNode {
			parent = g.Nodes[n.Parent].Name
		}
		table.Append([]string{
			strconv.Itoa(i),
			n.Name,
			parent,
			strconv.Itoa(len(n.Children)),
			strconv.Itoa(len(n.Meshes)),
		})
	}
	table.Render()
	if g.Camera != nil {
		eye, dir, _, _ := g.CameraPose()
		fmt.Fprintf(w, "Camera %q at %s looking %s\n", g.Camera.Name, fmtVec(eye), fmtVec(dir))
	}
}

func writeMeshes(w io.Writer, g *scene.Graph) {
	table := newTable(w, "Mesh", "Material", "Vertices", "Triangles", "Bones")
	for _, m := range g.Meshes {
		bones := make([]string, len(m.Bones))
		for i, b := range m.Bones {
			bones[i] = b.Name
		}
		table.Append([]string{
			m.Name,
			m.Material,
			strconv.Itoa(len(m.Positions)),
			strconv.Itoa(len(m.Indices) / 3),
			strings.Join(bones, ", "),
		})
	}
	table.Render()
}

func writeClip(w io.Writer, c *anim.Clip) {
	fmt.Fprintf(w, "Clip %q: %s ticks at %s ticks/s\n", c.Name, fmtFloat(c.Duration), fmtFloat(c.Rate()))
	table := newTable(w, "Node", "Positions", "Rotations", "Scales")
	for _, tr := range c.Tracks {
		table.Append([]string{
			tr.Node,
			strconv.Itoa(len(tr.Positions)),
			strconv.Itoa(len(tr.Rotations)),
			strconv.Itoa(len(tr.Scales)),
		})
	}
	table.Render()
}

func writeLights(w io.Writer, lights []lighting.Light) {
	table := newTable(w, "Light", "Type", "Position", "Power / Radiance", "Range")
	for _, l := range lights {
		row := []string{l.Node, l.Kind.String(), fmtVec(l.Position), fmtVec(l.Power), ""}
		if l.Kind == lighting.KindAmbient {
			row[2], row[3], row[4] = "", fmtVec(l.Radiance), fmtFloat(l.Range)
		}
		table.Append(row)
	}
	table.Render()
}

func writeMaterials(w io.Writer, info *sceneinfo.Info) {
	table := newTable(w, "Key", "Diffuse", "IOR", "Roughness", "Ks")
	row := func(key string, m material.Material) {
		mf := m.Microfacet
		table.Append([]string{key, fmtVec(mf.Diffuse), fmtFloat(mf.IOR), fmtFloat(mf.Roughness), fmtFloat(mf.Ks)})
	}
	row("default", info.Default)
	for _, name := range slices.Sorted(maps.Keys(info.Named)) {
		row("name:"+name, info.Named[name])
	}
	for _, node := range slices.Sorted(maps.Keys(info.ByNode)) {
		row("node:"+node, info.ByNode[node])
	}
	table.Render()
}

func writeFrameStats(w io.Writer, a *app.App, st frameStats) {
	passes := make([]string, len(st.passes))
	for i, p := range st.passes {
		passes[i] = p.String()
	}
	table := newTable(w, "Frame", "Value")
	table.Append([]string{"Modes", a.Modes().String()})
	table.Append([]string{"Passes", strings.Join(passes, " > ")})
	table.Append([]string{"Draws", strconv.Itoa(st.draws)})
	table.Append([]string{"Fragments", strconv.Itoa(st.fragments)})
	table.Append([]string{"Load", st.load.Round(time.Millisecond).String()})
	table.Append([]string{"Render", st.render.Round(time.Millisecond).String()})
	table.Render()
}
