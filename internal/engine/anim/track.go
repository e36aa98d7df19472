// Package anim plays keyframe clips over a scene graph: it samples node
// tracks into animated local transforms and turns the resulting pose into
// per-bone skinning matrices.
package anim

import (
	"fmt"

	"github.com/Faultbox/skyscene/pkg/math"
)

// VecKey is a position or scale key.
type VecKey struct {
	Time  float32 // ticks
	Value math.Vec3
}

// QuatKey is a rotation key.
type QuatKey struct {
	Time  float32 // ticks
	Value math.Quat
}

// Track animates one node. Each key list is ordered by time.
type Track struct {
	Node      string
	Positions []VecKey
	Rotations []QuatKey
	Scales    []VecKey
}

// Validate reports key lists whose times decrease.
func (tr *Track) Validate() error {
	check := func(kind string, n int, at func(int) float32) error {
		for i := 1; i < n; i++ {
			if at(i) < at(i-1) {
				return fmt.Errorf("track %q: %s key %d at %g precedes %g", tr.Node, kind, i, at(i), at(i-1))
			}
		}
		return nil
	}
	if err := check("position", len(tr.Positions), func(i int) float32 { return tr.Positions[i].Time }); err != nil {
		return err
	}
	if err := check("rotation", len(tr.Rotations), func(i int) float32 { return tr.Rotations[i].Time }); err != nil {
		return err
	}
	return check("scale", len(tr.Scales), func(i int) float32 { return tr.Scales[i].Time })
}

// bracket finds the key pair around t in a list of n keys. It returns the
// first i with t < time(i+1); a time at or past the last key selects the
// last key with fraction 0, a time before the first key the first key.
func bracket(n int, time func(int) float32, t float32) (i int, f float32) {
	for i = 0; i < n-1; i++ {
		if t < time(i+1) {
			break
		}
	}
	if i == n-1 {
		return i, 0
	}
	t0, t1 := time(i), time(i+1)
	if t <= t0 || t1 <= t0 {
		return i, 0
	}
	return i, (t - t0) / (t1 - t0)
}

// SamplePosition returns the interpolated translation at t.
func (tr *Track) SamplePosition(t float32) math.Vec3 {
	return sampleVec(tr.Positions, t, math.Vec3{})
}

// SampleScale returns the interpolated scale at t.
func (tr *Track) SampleScale(t float32) math.Vec3 {
	return sampleVec(tr.Scales, t, math.Splat3(1))
}

func sampleVec(keys []VecKey, t float32, none math.Vec3) math.Vec3 {
	switch len(keys) {
	case 0:
		return none
	case 1:
		return keys[0].Value
	}
	i, f := bracket(len(keys), func(i int) float32 { return keys[i].Time }, t)
	if f == 0 {
		return keys[i].Value
	}
	return keys[i].Value.Lerp(keys[i+1].Value, f)
}

// SampleRotation returns the normalized spherical interpolation at t.
func (tr *Track) SampleRotation(t float32) math.Quat {
	keys := tr.Rotations
	switch len(keys) {
	case 0:
		return math.QuatIdentity()
	case 1:
		return keys[0].Value
	}
	i, f := bracket(len(keys), func(i int) float32 { return keys[i].Time }, t)
	if f == 0 {
		return keys[i].Value
	}
	return keys[i].Value.Slerp(keys[i+1].Value, f).Normalize()
}

// Sample returns the local transform Translate(p) * Rotate(r) * Scale(s)
// at time t.
func (tr *Track) Sample(t float32) math.Mat4 {
	return math.TRS(tr.SamplePosition(t), tr.SampleRotation(t), tr.SampleScale(t))
}

// Duration returns the time of the latest key.
func (tr *Track) Duration() float32 {
	var d float32
	if n := len(tr.Positions); n > 0 {
		d = max(d, tr.Positions[n-1].Time)
	}
	if n := len(tr.Rotations); n > 0 {
		d = max(d, tr.Rotations[n-1].Time)
	}
	if n := len(tr.Scales); n > 0 {
		d = max(d, tr.Scales[n-1].Time)
	}
	return d
}
