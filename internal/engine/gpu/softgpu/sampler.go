package softgpu

import (
	"github.com/Faultbox/skyscene/internal/engine/gpu"
	"github.com/Faultbox/skyscene/pkg/math"
)

// fetch reads a texel with clamp-to-edge addressing.
func fetch(pix []math.Vec4, w, h, x, y int) math.Vec4 {
	x = min(max(x, 0), w-1)
	y = min(max(y, 0), h-1)
	return pix[y*w+x]
}

func sampleLevel(pix []math.Vec4, w, h int, u, v float32, f gpu.Filter) math.Vec4 {
	if f == gpu.FilterNearest {
		return fetch(pix, w, h, int(math.Floor(u*float32(w))), int(math.Floor(v*float32(h))))
	}
	x := u*float32(w) - 0.5
	y := v*float32(h) - 0.5
	x0, y0 := math.Floor(x), math.Floor(y)
	fx, fy := x-x0, y-y0
	ix, iy := int(x0), int(y0)

	a := fetch(pix, w, h, ix, iy).Lerp(fetch(pix, w, h, ix+1, iy), fx)
	b := fetch(pix, w, h, ix, iy+1).Lerp(fetch(pix, w, h, ix+1, iy+1), fx)
	return a.Lerp(b, fy)
}

// sample2D reads t at uv. Only trilinear bindings honor lod; the others read
// the base level as a texture without a mipmap filter does.
func sample2D(t *texture, f gpu.Filter, uv math.Vec2, lod float32) math.Vec4 {
	if f != gpu.FilterTrilinear || len(t.levels) == 1 {
		pix, w, h := t.level(0)
		return sampleLevel(pix, w, h, uv.X, uv.Y, f)
	}

	lod = math.Clamp(lod, 0, float32(len(t.levels)-1))
	l0 := int(math.Floor(lod))
	pix, w, h := t.level(l0)
	c0 := sampleLevel(pix, w, h, uv.X, uv.Y, gpu.FilterLinear)
	frac := lod - float32(l0)
	if frac == 0 {
		return c0
	}
	pix, w, h = t.level(l0 + 1)
	c1 := sampleLevel(pix, w, h, uv.X, uv.Y, gpu.FilterLinear)
	return c0.Lerp(c1, frac)
}

// sampleCube follows the OpenGL face selection rules.
func sampleCube(t *texture, f gpu.Filter, dir math.Vec3) math.Vec4 {
	ax, ay, az := math.Abs(dir.X), math.Abs(dir.Y), math.Abs(dir.Z)

	var face int
	var sc, tc, ma float32
	switch {
	case ax >= ay && ax >= az:
		ma = ax
		if dir.X > 0 {
			face, sc, tc = 0, -dir.Z, -dir.Y
		} else {
			face, sc, tc = 1, dir.Z, -dir.Y
		}
	case ay >= az:
		ma = ay
		if dir.Y > 0 {
			face, sc, tc = 2, dir.X, dir.Z
		} else {
			face, sc, tc = 3, dir.X, -dir.Z
		}
	default:
		ma = az
		if dir.Z > 0 {
			face, sc, tc = 4, dir.X, -dir.Y
		} else {
			face, sc, tc = 5, -dir.X, -dir.Y
		}
	}
	if ma == 0 {
		return math.Vec4{}
	}

	s := (sc/ma + 1) / 2
	tt := (tc/ma + 1) / 2
	return sampleLevel(t.faces[face], t.desc.Width, t.desc.Height, s, tt, f)
}
