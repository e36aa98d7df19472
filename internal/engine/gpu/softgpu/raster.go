package softgpu

import (
	gomath "math"

	"github.com/Faultbox/skyscene/internal/engine/gpu"
	"github.com/Faultbox/skyscene/pkg/math"
)

type clipVertex struct {
	pos math.Vec4
	v   varyings
}

func lerpVertex(a, b clipVertex, t float32) clipVertex {
	r := clipVertex{pos: a.pos.Lerp(b.pos, t)}
	for i := range r.v {
		r.v[i] = a.v[i] + (b.v[i]-a.v[i])*t
	}
	return r
}

// clipPolygon clips against the near (z >= -w) and far (z <= w) planes.
// The other four planes are handled by the raster bounding box.
func clipPolygon(poly []clipVertex) []clipVertex {
	planes := [2]func(p math.Vec4) float32{
		func(p math.Vec4) float32 { return p.Z + p.W },
		func(p math.Vec4) float32 { return p.W - p.Z },
	}
	for _, dist := range planes {
		if len(poly) == 0 {
			return nil
		}
		var out []clipVertex
		for i := range poly {
			a, b := poly[i], poly[(i+1)%len(poly)]
			da, db := dist(a.pos), dist(b.pos)
			if da >= 0 {
				out = append(out, a)
			}
			if (da >= 0) != (db >= 0) {
				out = append(out, lerpVertex(a, b, da/(da-db)))
			}
		}
		poly = out
	}
	return poly
}

type screenVertex struct {
	x, y float64
	z    float32
	invW float32
	v    varyings
}

// target is the set of level buffers one draw writes.
type target struct {
	w, h  int
	color [][]math.Vec4
	depth []math.Vec4 // nil when the draw has no usable depth buffer
	vp    gpu.Rect
}

func (d *Device) rasterize(tg *target, st gpu.State, prog program, e *env, tri [3]clipVertex) {
	poly := clipPolygon(tri[:])
	if len(poly) < 3 {
		return
	}

	sv := make([]screenVertex, len(poly))
	for i, c := range poly {
		invW := 1 / c.pos.W
		nx, ny, nz := c.pos.X*invW, c.pos.Y*invW, c.pos.Z*invW
		sv[i] = screenVertex{
			x:    float64(tg.vp.X) + (float64(nx)+1)/2*float64(tg.vp.W),
			y:    float64(tg.vp.Y) + (float64(ny)+1)/2*float64(tg.vp.H),
			z:    nz*0.5 + 0.5,
			invW: invW,
			v:    c.v,
		}
	}
	for i := 1; i+1 < len(sv); i++ {
		d.fillTriangle(tg, st, prog, e, sv[0], sv[i], sv[i+1])
	}
}

func edge(a, b screenVertex, px, py float64) float64 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// owns breaks ties on shared edges so adjacent triangles never both cover a
// pixel center lying exactly on the edge.
func owns(a, b screenVertex) bool {
	dy := b.y - a.y
	return dy > 0 || (dy == 0 && b.x < a.x)
}

func (d *Device) fillTriangle(tg *target, st gpu.State, prog program, e *env, a, b, c screenVertex) {
	area := edge(a, b, c.x, c.y)
	if area == 0 {
		return
	}
	if area < 0 {
		b, c = c, b
		area = -area
	}

	minX := max(int(gomath.Floor(min(a.x, b.x, c.x))), tg.vp.X, 0)
	maxX := min(int(gomath.Ceil(max(a.x, b.x, c.x))), tg.vp.X+tg.vp.W, tg.w)
	minY := max(int(gomath.Floor(min(a.y, b.y, c.y))), tg.vp.Y, 0)
	maxY := min(int(gomath.Ceil(max(a.y, b.y, c.y))), tg.vp.Y+tg.vp.H, tg.h)

	ownBC, ownCA, ownAB := owns(b, c), owns(c, a), owns(a, b)
	var out [4]math.Vec4
	for py := minY; py < maxY; py++ {
		fy := float64(py) + 0.5
		for px := minX; px < maxX; px++ {
			fx := float64(px) + 0.5
			w0, w1, w2 := edge(b, c, fx, fy), edge(c, a, fx, fy), edge(a, b, fx, fy)
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			if (w0 == 0 && !ownBC) || (w1 == 0 && !ownCA) || (w2 == 0 && !ownAB) {
				continue
			}

			l0, l1, l2 := float32(w0/area), float32(w1/area), float32(w2/area)
			z := math.Clamp(l0*a.z+l1*b.z+l2*c.z, 0, 1)
			idx := py*tg.w + px
			if tg.depth != nil && st.DepthTest && !depthPass(st.DepthFunc, z, tg.depth[idx].X) {
				continue
			}

			p0, p1, p2 := l0*a.invW, l1*b.invW, l2*c.invW
			norm := 1 / (p0 + p1 + p2)
			var v varyings
			for i := range v {
				v[i] = (p0*a.v[i] + p1*b.v[i] + p2*c.v[i]) * norm
			}

			out = [4]math.Vec4{}
			if !prog.fragment(e, &v, &out) {
				continue
			}
			if tg.depth != nil && st.DepthWrite {
				tg.depth[idx] = math.Vec4{X: z}
			}
			for i, buf := range tg.color {
				if i >= len(out) {
					break
				}
				if st.Blend == gpu.BlendAdditive {
					buf[idx] = buf[idx].Add(out[i])
				} else {
					buf[idx] = out[i]
				}
			}
			d.fragments++
		}
	}
}

func depthPass(f gpu.DepthFunc, z, stored float32) bool {
	switch f {
	case gpu.DepthLess:
		return z < stored
	case gpu.DepthLEqual:
		return z <= stored
	default:
		return true
	}
}
