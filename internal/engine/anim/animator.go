package anim

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/skyscene/internal/engine/scene"
	"github.com/Faultbox/skyscene/internal/logger"
	"github.com/Faultbox/skyscene/pkg/math"
)

// Animator drives a graph with one clip. Update must run once per frame
// before anything is drawn; the pose and bone matrices it leaves behind are
// read-only until the next Update.
type Animator struct {
	graph    *scene.Graph
	clip     *Clip
	player   *Player
	skeleton *Skeleton

	tracks  []*Track // per node, nil when the clip does not animate it
	static  []math.Mat4
	rootInv math.Mat4

	time     float32
	animated []math.Mat4
	bones    []math.Mat4
}

// NewAnimator binds clip to g. Tracks naming unknown nodes are ignored.
func NewAnimator(g *scene.Graph, clip *Clip) (*Animator, error) {
	if g.Len() == 0 {
		return nil, fmt.Errorf("animate %q: empty scene", clip.Name)
	}
	if err := clip.Validate(); err != nil {
		return nil, err
	}
	skel, err := NewSkeleton(g)
	if err != nil {
		return nil, err
	}

	a := &Animator{
		graph:    g,
		clip:     clip,
		player:   NewPlayer(clip.Duration, clip.Rate()),
		skeleton: skel,
		tracks:   make([]*Track, g.Len()),
		static:   g.StaticGlobals(),
		rootInv:  g.StaticLocal(g.Root()).Inverse(),
		bones:    make([]math.Mat4, skel.Len()),
	}
	for i := range clip.Tracks {
		tr := &clip.Tracks[i]
		id, ok := g.Find(tr.Node)
		if !ok {
			logger.Debug("track for unknown node ignored", zap.String("clip", clip.Name), zap.String("node", tr.Node))
			continue
		}
		a.tracks[id] = tr
	}
	a.pose()
	return a, nil
}

// Local returns the animated local transform of id at the current time:
// the sampled track, or the import-time transform for untracked nodes.
func (a *Animator) Local(id scene.NodeID) math.Mat4 {
	if tr := a.tracks[id]; tr != nil {
		return tr.Sample(a.time)
	}
	return a.graph.StaticLocal(id)
}

// Update advances playback to wall clock now (seconds) and recomputes the
// animated pose and every bone matrix.
func (a *Animator) Update(now float64) {
	a.time = a.player.Advance(now)
	a.pose()
}

// pose resolves the animated globals, then the bone matrices
// inverse(static root local) * animated global(bone node) * offset.
func (a *Animator) pose() {
	a.animated = a.graph.Resolve(a.Local)
	for i, b := range a.skeleton.Bones {
		if b.Node == scene.NoNode {
			a.bones[i] = math.Identity()
			continue
		}
		a.bones[i] = a.rootInv.Mul(a.animated[b.Node]).Mul(b.Offset)
	}
}

// Pose returns the frame's transforms for drawing.
func (a *Animator) Pose() scene.Pose {
	return scene.Pose{
		Static:   a.static,
		Animated: a.animated,
		Bones:    a.skeleton.Len() > 0,
	}
}

// BoneMatrices returns one skinning matrix per skeleton id.
func (a *Animator) BoneMatrices() []math.Mat4 { return a.bones }

// Skeleton returns the bone table.
func (a *Animator) Skeleton() *Skeleton { return a.skeleton }

// Clip returns the bound clip.
func (a *Animator) Clip() *Clip { return a.clip }

// Time returns the playback time in ticks.
func (a *Animator) Time() float32 { return a.time }

// Speed returns the playback multiplier.
func (a *Animator) Speed() float64 { return a.player.Speed() }

// SetSpeed changes the playback multiplier without a time jump.
func (a *Animator) SetSpeed(speed, now float64) {
	a.player.SetSpeed(speed, now)
	logger.Debug("animation speed", zap.Float64("speed", speed))
}
