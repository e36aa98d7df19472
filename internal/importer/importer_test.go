package importer

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/skyscene/pkg/math"
)

// assetBuilder writes a self-contained glTF document with one embedded
// buffer.
type assetBuilder struct {
	bin       bytes.Buffer
	views     []map[string]any
	accessors []map[string]any
}

const (
	componentFloat  = 5126
	componentUShort = 5123
	componentUInt   = 5125
)

func (a *assetBuilder) accessor(typ string, component, count int, data any) int {
	offset := a.bin.Len()
	_ = binary.Write(&a.bin, binary.LittleEndian, data)
	a.views = append(a.views, map[string]any{
		"buffer":     0,
		"byteOffset": offset,
		"byteLength": a.bin.Len() - offset,
	})
	a.accessors = append(a.accessors, map[string]any{
		"bufferView":    len(a.views) - 1,
		"componentType": component,
		"count":         count,
		"type":          typ,
	})
	return len(a.accessors) - 1
}

func (a *assetBuilder) encode(t *testing.T, doc map[string]any) *bytes.Reader {
	t.Helper()
	doc["asset"] = map[string]any{"version": "2.0"}
	if a.bin.Len() > 0 {
		doc["bufferViews"] = a.views
		doc["accessors"] = a.accessors
		doc["buffers"] = []map[string]any{{
			"byteLength": a.bin.Len(),
			"uri":        "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(a.bin.Bytes()),
		}}
	}
	out, err := json.Marshal(doc)
	require.NoError(t, err)
	return bytes.NewReader(out)
}

// skinnedAsset is a triangle skinned to one animated bone, plus a camera.
func skinnedAsset(t *testing.T) *bytes.Reader {
	var a assetBuilder
	pos := a.accessor("VEC3", componentFloat, 3, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	idx := a.accessor("SCALAR", componentUInt, 3, []uint32{0, 1, 2})
	joints := a.accessor("VEC4", componentUShort, 3, [][4]uint16{{0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}})
	weights := a.accessor("VEC4", componentFloat, 3, [][4]float32{{1, 0, 0, 0}, {1, 0, 0, 0}, {0.5, 0, 0, 0}})
	ibm := a.accessor("MAT4", componentFloat, 1, math.Translate(math.V3(0, -1, 0)))
	times := a.accessor("SCALAR", componentFloat, 2, []float32{0, 2})
	moves := a.accessor("VEC3", componentFloat, 2, [][3]float32{{0, 1, 0}, {0, 3, 0}})
	rotTimes := a.accessor("SCALAR", componentFloat, 2, []float32{0, 1})
	rots := a.accessor("VEC4", componentFloat, 6, [][4]float32{
		{9, 9, 9, 9}, {0, 0, 0, 1}, {9, 9, 9, 9},
		{9, 9, 9, 9}, {0, 0, 0, 2}, {9, 9, 9, 9},
	})

	return a.encode(t, map[string]any{
		"scene":  0,
		"scenes": []map[string]any{{"nodes": []int{0, 2}}},
		"nodes": []map[string]any{
			{"name": "Body", "mesh": 0, "skin": 0, "children": []int{1}},
			{"name": "Bone", "translation": []float32{0, 1, 0}},
			{"camera": 0, "translation": []float32{0, 0, 5}},
		},
		"meshes": []map[string]any{{
			"name": "body",
			"primitives": []map[string]any{{
				"attributes": map[string]int{"POSITION": pos, "JOINTS_0": joints, "WEIGHTS_0": weights},
				"indices":    idx,
				"material":   0,
			}},
		}},
		"materials": []map[string]any{{"name": "skin"}},
		"skins":     []map[string]any{{"joints": []int{1}, "inverseBindMatrices": ibm}},
		"cameras": []map[string]any{{
			"name":        "main",
			"type":        "perspective",
			"perspective": map[string]any{"yfov": 0.8, "znear": 0.1, "zfar": 100},
		}},
		"animations": []map[string]any{{
			"name": "wave",
			"samplers": []map[string]any{
				{"input": times, "output": moves},
				{"input": rotTimes, "output": rots, "interpolation": "CUBICSPLINE"},
			},
			"channels": []map[string]any{
				{"sampler": 0, "target": map[string]any{"node": 1, "path": "translation"}},
				{"sampler": 1, "target": map[string]any{"node": 1, "path": "rotation"}},
			},
		}},
	})
}

func TestReadBuildsHierarchy(t *testing.T) {
	asset, err := Read(skinnedAsset(t))
	require.NoError(t, err)
	g := asset.Graph

	require.Equal(t, 4, g.Len())
	root := g.Node(g.Root())
	assert.Equal(t, RootName, root.Name)
	require.Len(t, root.Children, 2)

	body, ok := g.Find("Body")
	require.True(t, ok)
	bone, ok := g.Find("Bone")
	require.True(t, ok)
	assert.Equal(t, body, g.Node(bone).Parent)
	assert.True(t, g.Node(bone).Local.ApproxEqual(math.Translate(math.V3(0, 1, 0)), 1e-6))

	// Unnamed nodes are named by index.
	_, ok = g.Find("node2")
	assert.True(t, ok)
}

func TestReadMeshAndSkin(t *testing.T) {
	asset, err := Read(skinnedAsset(t))
	require.NoError(t, err)
	require.Len(t, asset.Graph.Meshes, 1)
	m := asset.Graph.Meshes[0]

	assert.Equal(t, "body", m.Name)
	assert.Equal(t, "skin", m.Material)
	assert.Equal(t, []uint32{0, 1, 2}, m.Indices)
	require.Len(t, m.Normals, 3)
	for _, n := range m.Normals {
		assert.True(t, n.ApproxEqual(math.V3(0, 0, 1), 1e-6), "%v", n)
	}

	require.True(t, m.HasBones())
	require.Len(t, m.Bones, 1)
	assert.Equal(t, "Bone", m.Bones[0].Name)
	assert.True(t, m.Bones[0].Offset.ApproxEqual(math.Translate(math.V3(0, -1, 0)), 1e-6))
	assert.Equal(t, [4]int32{0, -1, -1, -1}, m.BoneIDs[2])
	assert.InDelta(t, 0.5, m.BoneWeights[2][0], 1e-6)
}

func TestReadCamera(t *testing.T) {
	asset, err := Read(skinnedAsset(t))
	require.NoError(t, err)
	c := asset.Graph.Camera
	require.NotNil(t, c)
	assert.Equal(t, "main", c.Name)
	assert.InDelta(t, 0.8, c.FovY, 1e-6)
	assert.InDelta(t, 0.1, c.Near, 1e-6)
	assert.InDelta(t, 100, c.Far, 1e-4)

	eye, dir, up, ok := asset.Graph.CameraPose()
	require.True(t, ok)
	assert.True(t, eye.ApproxEqual(math.V3(0, 0, 5), 1e-6))
	assert.True(t, dir.ApproxEqual(math.V3(0, 0, -1), 1e-6))
	assert.True(t, up.ApproxEqual(math.V3(0, 1, 0), 1e-6))
}

func TestReadAnimation(t *testing.T) {
	asset, err := Read(skinnedAsset(t))
	require.NoError(t, err)
	c := asset.Clip
	require.NotNil(t, c)

	assert.Equal(t, "wave", c.Name)
	assert.Equal(t, float32(1), c.Rate())
	assert.Equal(t, float32(2), c.Duration)
	require.Len(t, c.Tracks, 1)

	tr := c.Tracks[0]
	assert.Equal(t, "Bone", tr.Node)
	require.Len(t, tr.Positions, 2)
	assert.True(t, tr.SamplePosition(1).ApproxEqual(math.V3(0, 2, 0), 1e-6))

	// Cubic spline keys keep the value between the tangents.
	require.Len(t, tr.Rotations, 2)
	for _, k := range tr.Rotations {
		assert.Equal(t, math.QuatIdentity(), k.Value)
	}
}

func TestReadAnimationKeepsRestPose(t *testing.T) {
	var a assetBuilder
	times := a.accessor("SCALAR", componentFloat, 2, []float32{0, 1})
	rots := a.accessor("VEC4", componentFloat, 2, [][4]float32{{0, 0, 0, 1}, {0, 0, 0, 1}})
	moves := a.accessor("VEC3", componentFloat, 2, [][3]float32{{1, 0, 0}, {1, 0, 0}})
	elbow := math.TRS(math.V3(1, 0, 0), math.QuatFromAxisAngle(math.V3(0, 1, 0), 0.5), math.V3(1, 1, 1))

	asset, err := Read(a.encode(t, map[string]any{
		"scenes": []map[string]any{{"nodes": []int{0}}},
		"nodes": []map[string]any{
			{"name": "Joint", "translation": []float32{0, 1, 0}, "scale": []float32{2, 2, 2}, "children": []int{1}},
			{"name": "Elbow", "matrix": elbow},
		},
		"animations": []map[string]any{{
			"samplers": []map[string]any{
				{"input": times, "output": rots},
				{"input": times, "output": moves},
			},
			"channels": []map[string]any{
				{"sampler": 0, "target": map[string]any{"node": 0, "path": "rotation"}},
				{"sampler": 1, "target": map[string]any{"node": 1, "path": "translation"}},
			},
		}},
	}))
	require.NoError(t, err)
	require.NotNil(t, asset.Clip)
	require.Len(t, asset.Clip.Tracks, 2)

	g := asset.Graph
	for _, tr := range asset.Clip.Tracks {
		id, ok := g.Find(tr.Node)
		require.True(t, ok, tr.Node)
		static := g.Node(id).Local
		for _, at := range []float32{0, 0.5, 1} {
			got := tr.Sample(at)
			assert.True(t, got.ApproxEqual(static, 1e-5), "%s at %g: got %v, want %v", tr.Node, at, got, static)
		}
	}
}

func TestReadRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
		err  error
	}{
		{
			name: "no scene",
			doc:  map[string]any{"nodes": []map[string]any{{"name": "a"}}},
			err:  ErrNoScene,
		},
		{
			name: "shared child",
			doc: map[string]any{
				"scenes": []map[string]any{{"nodes": []int{0, 1}}},
				"nodes": []map[string]any{
					{"name": "a", "children": []int{2}},
					{"name": "b", "children": []int{2}},
					{"name": "c"},
				},
			},
			err: ErrMalformed,
		},
		{
			name: "child out of range",
			doc: map[string]any{
				"scenes": []map[string]any{{"nodes": []int{0}}},
				"nodes":  []map[string]any{{"name": "a", "children": []int{7}}},
			},
			err: ErrMalformed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a assetBuilder
			_, err := Read(a.encode(t, tt.doc))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestReadRejectsLines(t *testing.T) {
	var a assetBuilder
	pos := a.accessor("VEC3", componentFloat, 2, [][3]float32{{0, 0, 0}, {1, 0, 0}})
	r := a.encode(t, map[string]any{
		"scenes": []map[string]any{{"nodes": []int{0}}},
		"nodes":  []map[string]any{{"name": "wire", "mesh": 0}},
		"meshes": []map[string]any{{
			"primitives": []map[string]any{{"attributes": map[string]int{"POSITION": pos}, "mode": 1}},
		}},
	})
	_, err := Read(r)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestReadGarbage(t *testing.T) {
	_, err := Read(strings.NewReader("{not json"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(t.TempDir() + "/missing.gltf")
	assert.Error(t, err)
}
