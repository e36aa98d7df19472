// Package importer turns a glTF 2.0 asset into a scene graph, the first
// animation clip and the first perspective camera it contains.
package importer

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/skyscene/internal/engine/anim"
	"github.com/Faultbox/skyscene/internal/engine/scene"
	"github.com/Faultbox/skyscene/internal/logger"
	"github.com/Faultbox/skyscene/pkg/math"
)

// Errors returned by the importer.
var (
	ErrNoScene     = errors.New("asset has no scene")
	ErrUnsupported = errors.New("unsupported glTF feature")
	ErrMalformed   = errors.New("malformed glTF asset")
)

// RootName is the name of the synthetic node holding the scene roots.
const RootName = "root"

// Asset is an imported scene.
type Asset struct {
	Graph *scene.Graph
	Clip  *anim.Clip // nil when the asset has no animation
}

// Load reads a .gltf or .glb file together with its external buffers.
func Load(path string) (*Asset, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	a, err := Build(doc)
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", path, err)
	}
	return a, nil
}

// Read decodes a self-contained asset: a GLB or a glTF whose buffers are
// data URIs.
func Read(r io.Reader) (*Asset, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("decoding glTF: %w", err)
	}
	return Build(doc)
}

// Build converts a decoded document.
func Build(doc *gltf.Document) (*Asset, error) {
	b := &builder{
		doc:   doc,
		graph: scene.New(),
		ids:   make(map[int]scene.NodeID, len(doc.Nodes)),
		names: make([]string, len(doc.Nodes)),
		log:   logger.Named("importer"),
	}
	for i, n := range doc.Nodes {
		b.names[i] = n.Name
		if n.Name == "" {
			b.names[i] = "node" + strconv.Itoa(i)
		}
	}
	if err := b.nodes(); err != nil {
		return nil, err
	}
	if err := b.graph.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	clip, err := b.clip()
	if err != nil {
		return nil, err
	}
	b.log.Info("asset imported",
		zap.Int("nodes", b.graph.Len()),
		zap.Int("meshes", len(b.graph.Meshes)),
		zap.Bool("animated", clip != nil),
		zap.Bool("camera", b.graph.Camera != nil),
	)
	return &Asset{Graph: b.graph, Clip: clip}, nil
}

type builder struct {
	doc   *gltf.Document
	graph *scene.Graph
	ids   map[int]scene.NodeID // glTF node index to graph node
	names []string
	log   *zap.Logger
}

// index resolves an optional glTF index field, whichever of int or *int
// the field is declared as.
func index(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case *int:
		if x == nil {
			return 0, false
		}
		return *x, true
	}
	return 0, false
}

func (b *builder) nodes() error {
	if len(b.doc.Scenes) == 0 {
		return ErrNoScene
	}
	si, ok := index(b.doc.Scene)
	if !ok {
		si = 0
	}
	if si < 0 || si >= len(b.doc.Scenes) {
		return fmt.Errorf("%w: scene %d out of range", ErrMalformed, si)
	}

	root, err := b.graph.AddNode(RootName, scene.NoNode, math.Identity())
	if err != nil {
		return err
	}
	for _, ni := range b.doc.Scenes[si].Nodes {
		if err := b.node(ni, root); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) node(ni int, parent scene.NodeID) error {
	if ni < 0 || ni >= len(b.doc.Nodes) {
		return fmt.Errorf("%w: node %d out of range", ErrMalformed, ni)
	}
	if _, seen := b.ids[ni]; seen {
		return fmt.Errorf("%w: node %d has two parents", ErrMalformed, ni)
	}
	n := b.doc.Nodes[ni]
	id, err := b.graph.AddNode(b.names[ni], parent, localTransform(n))
	if err != nil {
		return err
	}
	b.ids[ni] = id

	if mi, ok := index(n.Mesh); ok {
		if err := b.mesh(id, n, mi); err != nil {
			return err
		}
	}
	if ci, ok := index(n.Camera); ok && b.graph.Camera == nil {
		b.camera(id, ci)
	}
	for _, c := range n.Children {
		if err := b.node(c, id); err != nil {
			return err
		}
	}
	return nil
}

func localTransform(n *gltf.Node) math.Mat4 {
	if m, ok := nodeMatrix(n); ok {
		return m
	}
	return math.TRS(restPose(n))
}

// nodeMatrix returns the node's explicit matrix, if it has one.
func nodeMatrix(n *gltf.Node) (math.Mat4, bool) {
	if n.Matrix == gltf.DefaultMatrix || n.Matrix == [16]float64{} {
		return math.Mat4{}, false
	}
	var m math.Mat4
	for i, v := range n.Matrix {
		m[i] = float32(v)
	}
	return m, true
}

// restPose is the node's import-time transform split into the paths an
// animation channel can target.
func restPose(n *gltf.Node) (math.Vec3, math.Quat, math.Vec3) {
	if m, ok := nodeMatrix(n); ok {
		return m.Decompose()
	}
	t, r, s := n.TranslationOrDefault(), n.RotationOrDefault(), n.ScaleOrDefault()
	return math.V3(float32(t[0]), float32(t[1]), float32(t[2])),
		math.Quat{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])},
		math.V3(float32(s[0]), float32(s[1]), float32(s[2]))
}

func (b *builder) accessor(i int) (*gltf.Accessor, error) {
	if i < 0 || i >= len(b.doc.Accessors) {
		return nil, fmt.Errorf("%w: accessor %d out of range", ErrMalformed, i)
	}
	return b.doc.Accessors[i], nil
}

// mesh adds one scene mesh per primitive of glTF mesh mi.
func (b *builder) mesh(id scene.NodeID, n *gltf.Node, mi int) error {
	if mi < 0 || mi >= len(b.doc.Meshes) {
		return fmt.Errorf("%w: mesh %d out of range", ErrMalformed, mi)
	}
	gm := b.doc.Meshes[mi]
	name := gm.Name
	if name == "" {
		name = "mesh" + strconv.Itoa(mi)
	}

	var bones []scene.Bone
	if si, ok := index(n.Skin); ok {
		var err error
		if bones, err = b.skin(si); err != nil {
			return err
		}
	}

	for pi, prim := range gm.Primitives {
		m := &scene.Mesh{Name: name, Bones: bones}
		if len(gm.Primitives) > 1 {
			m.Name = name + "." + strconv.Itoa(pi)
		}
		if err := b.primitive(m, prim); err != nil {
			return fmt.Errorf("mesh %q: %w", m.Name, err)
		}
		if _, err := b.graph.AddMesh(id, m); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) primitive(m *scene.Mesh, prim *gltf.Primitive) error {
	if prim.Mode != gltf.PrimitiveTriangles {
		return fmt.Errorf("%w: primitive mode %v", ErrUnsupported, prim.Mode)
	}
	pi, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return fmt.Errorf("%w: primitive without positions", ErrMalformed)
	}
	acc, err := b.accessor(pi)
	if err != nil {
		return err
	}
	pos, err := modeler.ReadPosition(b.doc, acc, nil)
	if err != nil {
		return fmt.Errorf("reading positions: %w", err)
	}
	m.Positions = vec3s(pos)

	if ii, ok := index(prim.Indices); ok {
		if acc, err = b.accessor(ii); err != nil {
			return err
		}
		if m.Indices, err = modeler.ReadIndices(b.doc, acc, nil); err != nil {
			return fmt.Errorf("reading indices: %w", err)
		}
	} else {
		m.Indices = make([]uint32, len(m.Positions))
		for i := range m.Indices {
			m.Indices[i] = uint32(i)
		}
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices is not a triangle list", ErrMalformed, len(m.Indices))
	}
	for _, i := range m.Indices {
		if int(i) >= len(m.Positions) {
			return fmt.Errorf("%w: index %d out of range", ErrMalformed, i)
		}
	}

	if ni, ok := prim.Attributes[gltf.NORMAL]; ok {
		if acc, err = b.accessor(ni); err != nil {
			return err
		}
		nrm, err := modeler.ReadNormal(b.doc, acc, nil)
		if err != nil {
			return fmt.Errorf("reading normals: %w", err)
		}
		m.Normals = vec3s(nrm)
	} else {
		m.Normals = smoothNormals(m.Positions, m.Indices)
	}

	if mi, ok := index(prim.Material); ok && mi >= 0 && mi < len(b.doc.Materials) {
		m.Material = b.doc.Materials[mi].Name
	}
	if len(m.Bones) > 0 {
		return b.weights(m, prim)
	}
	return nil
}

func (b *builder) weights(m *scene.Mesh, prim *gltf.Primitive) error {
	ji, jok := prim.Attributes[gltf.JOINTS_0]
	wi, wok := prim.Attributes[gltf.WEIGHTS_0]
	if !jok || !wok {
		return nil
	}
	jacc, err := b.accessor(ji)
	if err != nil {
		return err
	}
	wacc, err := b.accessor(wi)
	if err != nil {
		return err
	}
	joints, err := modeler.ReadJoints(b.doc, jacc, nil)
	if err != nil {
		return fmt.Errorf("reading joints: %w", err)
	}
	weights, err := modeler.ReadWeights(b.doc, wacc, nil)
	if err != nil {
		return fmt.Errorf("reading weights: %w", err)
	}
	if len(joints) != len(m.Positions) || len(weights) != len(m.Positions) {
		return fmt.Errorf("%w: skin streams do not match %d vertices", ErrMalformed, len(m.Positions))
	}
	for v := range joints {
		for k := 0; k < 4; k++ {
			if weights[v][k] <= 0 {
				continue
			}
			if err := m.AddBoneInfluence(v, int32(joints[v][k]), weights[v][k]); err != nil {
				return fmt.Errorf("%w: %v", ErrMalformed, err)
			}
		}
	}
	return nil
}

// skin returns the bones of skin si, named after their joint nodes.
func (b *builder) skin(si int) ([]scene.Bone, error) {
	if si < 0 || si >= len(b.doc.Skins) {
		return nil, fmt.Errorf("%w: skin %d out of range", ErrMalformed, si)
	}
	s := b.doc.Skins[si]
	bones := make([]scene.Bone, len(s.Joints))
	for i, j := range s.Joints {
		if j < 0 || j >= len(b.names) {
			return nil, fmt.Errorf("%w: joint %d out of range", ErrMalformed, j)
		}
		bones[i] = scene.Bone{Name: b.names[j], Offset: math.Identity()}
	}

	ai, ok := index(s.InverseBindMatrices)
	if !ok {
		return bones, nil
	}
	acc, err := b.accessor(ai)
	if err != nil {
		return nil, err
	}
	data, err := modeler.ReadAccessor(b.doc, acc, nil)
	if err != nil {
		return nil, fmt.Errorf("reading inverse bind matrices: %w", err)
	}
	mats, ok := data.([][4][4]float32)
	if !ok {
		return nil, fmt.Errorf("%w: inverse bind matrices of type %T", ErrUnsupported, data)
	}
	if len(mats) < len(bones) {
		return nil, fmt.Errorf("%w: %d inverse bind matrices for %d joints", ErrMalformed, len(mats), len(bones))
	}
	// The accessor yields rows; Mat4 is column-major.
	for i := range bones {
		for c := 0; c < 4; c++ {
			for r := 0; r < 4; r++ {
				bones[i].Offset[c*4+r] = mats[i][r][c]
			}
		}
	}
	return bones, nil
}

func (b *builder) camera(id scene.NodeID, ci int) {
	if ci < 0 || ci >= len(b.doc.Cameras) {
		return
	}
	c := b.doc.Cameras[ci]
	p := c.Perspective
	if p == nil {
		b.log.Debug("orthographic camera skipped", zap.String("camera", c.Name))
		return
	}
	far := float32(1000)
	if p.Zfar != nil {
		far = float32(*p.Zfar)
	}
	b.graph.Camera = &scene.EmbeddedCamera{
		Name:   c.Name,
		Node:   id,
		LookAt: math.V3(0, 0, -1),
		Up:     math.V3(0, 1, 0),
		FovY:   float32(p.Yfov),
		Near:   float32(p.Znear),
		Far:    far,
	}
}

func vec3s(in [][3]float32) []math.Vec3 {
	out := make([]math.Vec3, len(in))
	for i, v := range in {
		out[i] = math.V3(v[0], v[1], v[2])
	}
	return out
}

// smoothNormals averages the area-weighted face normals around each vertex.
func smoothNormals(pos []math.Vec3, idx []uint32) []math.Vec3 {
	out := make([]math.Vec3, len(pos))
	for t := 0; t+2 < len(idx); t += 3 {
		a, b, c := idx[t], idx[t+1], idx[t+2]
		n := pos[b].Sub(pos[a]).Cross(pos[c].Sub(pos[a]))
		out[a] = out[a].Add(n)
		out[b] = out[b].Add(n)
		out[c] = out[c].Add(n)
	}
	for i := range out {
		out[i] = out[i].Normalize()
	}
	return out
}
