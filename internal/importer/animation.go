package importer

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/skyscene/internal/engine/anim"
	"github.com/Faultbox/skyscene/pkg/math"
)

// clip converts the first animation. glTF keys are in seconds, so the clip
// runs at one tick per second. Step interpolation is played back linearly;
// cubic splines keep only their values.
func (b *builder) clip() (*anim.Clip, error) {
	if len(b.doc.Animations) == 0 {
		return nil, nil
	}
	if len(b.doc.Animations) > 1 {
		b.log.Info("only the first animation is played", zap.Int("animations", len(b.doc.Animations)))
	}
	ga := b.doc.Animations[0]
	clip := &anim.Clip{Name: ga.Name, TicksPerSecond: 1}
	tracks := make(map[int]int) // glTF node to clip.Tracks index

	for _, ch := range ga.Channels {
		ni, ok := index(ch.Target.Node)
		if !ok {
			continue
		}
		if ni < 0 || ni >= len(b.names) {
			return nil, fmt.Errorf("%w: channel targets node %d", ErrMalformed, ni)
		}
		si, _ := index(ch.Sampler)
		if si < 0 || si >= len(ga.Samplers) {
			return nil, fmt.Errorf("%w: sampler %d out of range", ErrMalformed, si)
		}
		s := ga.Samplers[si]

		times, err := b.times(s)
		if err != nil {
			return nil, err
		}
		if len(times) == 0 {
			continue
		}
		if end := times[len(times)-1]; end > clip.Duration {
			clip.Duration = end
		}

		ti, ok := tracks[ni]
		if !ok {
			ti = len(clip.Tracks)
			tracks[ni] = ti
			clip.Tracks = append(clip.Tracks, restTrack(b.names[ni], b.doc.Nodes[ni]))
		}
		tr := &clip.Tracks[ti]

		switch ch.Target.Path {
		case gltf.TRSTranslation, gltf.TRSScale:
			vals, err := b.values3(s, len(times))
			if err != nil {
				return nil, err
			}
			keys := make([]anim.VecKey, len(times))
			for i, t := range times {
				keys[i] = anim.VecKey{Time: t, Value: vals[i]}
			}
			if ch.Target.Path == gltf.TRSTranslation {
				tr.Positions = keys
			} else {
				tr.Scales = keys
			}
		case gltf.TRSRotation:
			vals, err := b.values4(s, len(times))
			if err != nil {
				return nil, err
			}
			tr.Rotations = make([]anim.QuatKey, len(times))
			for i, t := range times {
				q := math.Quat{X: vals[i][0], Y: vals[i][1], Z: vals[i][2], W: vals[i][3]}
				tr.Rotations[i] = anim.QuatKey{Time: t, Value: q.Normalize()}
			}
		default:
			b.log.Debug("morph weight channel skipped", zap.String("node", b.names[ni]))
		}
	}

	if clip.Duration <= 0 {
		b.log.Warn("animation has no keys, playing static", zap.String("clip", clip.Name))
		return nil, nil
	}
	if err := clip.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return clip, nil
}

// restTrack holds the node's rest pose as a single key per path, so paths
// no channel animates keep their import-time value.
func restTrack(name string, n *gltf.Node) anim.Track {
	t, r, s := restPose(n)
	return anim.Track{
		Node:      name,
		Positions: []anim.VecKey{{Value: t}},
		Rotations: []anim.QuatKey{{Value: r.Normalize()}},
		Scales:    []anim.VecKey{{Value: s}},
	}
}

func (b *builder) times(s *gltf.AnimationSampler) ([]float32, error) {
	ii, _ := index(s.Input)
	acc, err := b.accessor(ii)
	if err != nil {
		return nil, err
	}
	data, err := modeler.ReadAccessor(b.doc, acc, nil)
	if err != nil {
		return nil, fmt.Errorf("reading key times: %w", err)
	}
	times, ok := data.([]float32)
	if !ok {
		return nil, fmt.Errorf("%w: key times of type %T", ErrUnsupported, data)
	}
	return times, nil
}

// output reads the sampler's values. Cubic splines store in-tangent,
// value and out-tangent per key; only the value is returned.
func (b *builder) output(s *gltf.AnimationSampler, keys int) (any, func(int) int, error) {
	oi, _ := index(s.Output)
	acc, err := b.accessor(oi)
	if err != nil {
		return nil, nil, err
	}
	data, err := modeler.ReadAccessor(b.doc, acc, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("reading key values: %w", err)
	}
	at := func(i int) int { return i }
	want := keys
	if s.Interpolation == gltf.InterpolationCubicSpline {
		at = func(i int) int { return 3*i + 1 }
		want = 3 * keys
	}
	if acc.Count < want {
		return nil, nil, fmt.Errorf("%w: %d values for %d keys", ErrMalformed, acc.Count, keys)
	}
	return data, at, nil
}

func (b *builder) values3(s *gltf.AnimationSampler, keys int) ([]math.Vec3, error) {
	data, at, err := b.output(s, keys)
	if err != nil {
		return nil, err
	}
	raw, ok := data.([][3]float32)
	if !ok {
		return nil, fmt.Errorf("%w: vector keys of type %T", ErrUnsupported, data)
	}
	out := make([]math.Vec3, keys)
	for i := range out {
		v := raw[at(i)]
		out[i] = math.V3(v[0], v[1], v[2])
	}
	return out, nil
}

func (b *builder) values4(s *gltf.AnimationSampler, keys int) ([][4]float32, error) {
	data, at, err := b.output(s, keys)
	if err != nil {
		return nil, err
	}
	raw, ok := data.([][4]float32)
	if !ok {
		return nil, fmt.Errorf("%w: rotation keys of type %T", ErrUnsupported, data)
	}
	out := make([][4]float32, keys)
	for i := range out {
		out[i] = raw[at(i)]
	}
	return out, nil
}
