package gpu

import "github.com/Faultbox/skyscene/pkg/math"

// FullscreenQuad covers clip space with two triangles at z = 0.
func FullscreenQuad() MeshData {
	return MeshData{
		Positions: []math.Vec3{
			{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}

// SkyboxCube is the 36-vertex cube drawn around the camera for the skybox.
// Passes draw it without face culling, so winding is irrelevant.
func SkyboxCube() MeshData {
	corners := [8]math.Vec3{
		{X: -1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: -1, Y: 1, Z: -1},
		{X: -1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: 1},
	}
	faces := [6][4]int{
		{1, 5, 6, 2}, // +X
		{4, 0, 3, 7}, // -X
		{3, 2, 6, 7}, // +Y
		{4, 5, 1, 0}, // -Y
		{5, 4, 7, 6}, // +Z
		{0, 1, 2, 3}, // -Z
	}

	var m MeshData
	for _, f := range faces {
		for _, c := range [6]int{f[0], f[1], f[2], f[0], f[2], f[3]} {
			m.Indices = append(m.Indices, uint32(len(m.Positions)))
			m.Positions = append(m.Positions, corners[c])
		}
	}
	return m
}

// Cube returns a cube of the given half extent with per-face normals.
func Cube(half float32) MeshData {
	type face struct{ n, u, v math.Vec3 }
	faces := []face{
		{math.V3(1, 0, 0), math.V3(0, 0, -1), math.V3(0, 1, 0)},
		{math.V3(-1, 0, 0), math.V3(0, 0, 1), math.V3(0, 1, 0)},
		{math.V3(0, 1, 0), math.V3(1, 0, 0), math.V3(0, 0, -1)},
		{math.V3(0, -1, 0), math.V3(1, 0, 0), math.V3(0, 0, 1)},
		{math.V3(0, 0, 1), math.V3(1, 0, 0), math.V3(0, 1, 0)},
		{math.V3(0, 0, -1), math.V3(-1, 0, 0), math.V3(0, 1, 0)},
	}

	var m MeshData
	for _, f := range faces {
		base := uint32(len(m.Positions))
		c := f.n.Scale(half)
		for _, s := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			p := c.Add(f.u.Scale(s[0] * half)).Add(f.v.Scale(s[1] * half))
			m.Positions = append(m.Positions, p)
			m.Normals = append(m.Normals, f.n)
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}
