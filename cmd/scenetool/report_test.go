package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/skyscene/internal/engine/anim"
	"github.com/Faultbox/skyscene/internal/engine/lighting"
	"github.com/Faultbox/skyscene/internal/engine/scene"
	"github.com/Faultbox/skyscene/internal/sceneinfo"
	"github.com/Faultbox/skyscene/pkg/math"
)

func testGraph(t *testing.T) *scene.Graph {
	t.Helper()
	g := scene.New()
	root, err := g.AddNode("root", scene.NoNode, math.Identity())
	require.NoError(t, err)
	arm, err := g.AddNode("Arm", root, math.Identity())
	require.NoError(t, err)
	_, err = g.AddMesh(arm, &scene.Mesh{
		Name:      "ArmMesh",
		Material:  "Fur",
		Positions: []math.Vec3{{}, math.V3(1, 0, 0), math.V3(0, 1, 0)},
		Indices:   []uint32{0, 1, 2},
		Bones:     []scene.Bone{{Name: "Arm", Offset: math.Identity()}},
	})
	require.NoError(t, err)
	return g
}

func TestWriteNodesAndMeshes(t *testing.T) {
	g := testGraph(t)
	var buf bytes.Buffer
	writeNodes(&buf, g)
	writeMeshes(&buf, g)
	out := buf.String()

	for _, want := range []string{"Node", "root", "Arm", "ArmMesh", "Fur"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "Camera")
}

func TestWriteClip(t *testing.T) {
	var buf bytes.Buffer
	writeClip(&buf, &anim.Clip{
		Name:           "wave",
		Duration:       48,
		TicksPerSecond: 24,
		Tracks:         []anim.Track{{Node: "Arm", Rotations: make([]anim.QuatKey, 3)}},
	})
	out := buf.String()
	assert.Contains(t, out, `Clip "wave": 48 ticks at 24 ticks/s`)
	assert.Contains(t, out, "Arm")
}

func TestWriteLightsAndMaterials(t *testing.T) {
	info, err := sceneinfo.Parse([]byte(`{
  "lights": [
    {"node": "Lamp", "type": "point", "position": [1, 2, 3], "power": [10, 10, 10]},
    {"node": "Sky", "type": "ambient", "radiance": [0.5, 0.5, 0.5]}
  ],
  "materials": [
    {"name": "Fur", "roughness": 0.3},
    {"node": "Floor", "ior": 1.3}
  ]
}`))
	require.NoError(t, err)

	var buf bytes.Buffer
	writeLights(&buf, info.SceneLights())
	writeMaterials(&buf, info)
	out := buf.String()

	for _, want := range []string{"Lamp", "point", "(1, 2, 3)", "ambient", "inf", "name:Fur", "node:Floor", "default"} {
		assert.Contains(t, out, want)
	}
	assert.Less(t, strings.Index(out, "name:Fur"), strings.Index(out, "node:Floor"))
}

func TestDefaultLightListed(t *testing.T) {
	var buf bytes.Buffer
	writeLights(&buf, sceneinfo.Empty().SceneLights())
	assert.Contains(t, buf.String(), lighting.DefaultNodeName)
}

func TestFmtFloat(t *testing.T) {
	assert.Equal(t, "inf", fmtFloat(math.Inf(1)))
	assert.Equal(t, "0.25", fmtFloat(0.25))
	assert.Equal(t, "(1, 0.5, 0)", fmtVec(math.V3(1, 0.5, 0)))
}
