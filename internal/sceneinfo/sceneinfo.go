// Package sceneinfo reads the scene metadata file: the lights that are not
// part of the asset and the materials assigned to its meshes.
//
// The file is JSON:
//
//	{
//	  "lights": [
//	    {"node": "Lamp", "type": "point", "position": [0, 0, 0], "power": [100, 100, 100]},
//	    {"node": "Sky", "type": "ambient", "radiance": [0.2, 0.2, 0.2], "range": 4}
//	  ],
//	  "materials": [
//	    {"name": "Skin", "diffuse": [0.8, 0.5, 0.4], "roughness": 0.3},
//	    {"node": "Floor", "ior": 1.3},
//	    {"roughness": 0.5}
//	  ]
//	}
package sceneinfo

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/skyscene/internal/engine/lighting"
	"github.com/Faultbox/skyscene/internal/engine/material"
	"github.com/Faultbox/skyscene/internal/logger"
	"github.com/Faultbox/skyscene/pkg/math"
)

// ErrMalformed is returned for files that do not describe lights and
// materials.
var ErrMalformed = errors.New("malformed scene info")

// Material defaults for entries that omit a field.
const (
	DefaultIOR       = 1.5
	DefaultRoughness = 0.2
	DefaultDiffuse   = 0.5
	specularWeight   = 1.0
)

// Info is the parsed metadata file.
type Info struct {
	Lights []lighting.Light

	// Background is the radiance of the first ambient light, zero if none.
	Background math.Vec3

	Default material.Material
	Named   map[string]material.Material
	ByNode  map[string]material.Material
}

type fileFormat struct {
	Lights    []lightEntry    `yaml:"lights"`
	Materials []materialEntry `yaml:"materials"`
}

type lightEntry struct {
	Node     string    `yaml:"node"`
	Type     string    `yaml:"type"`
	Position []float32 `yaml:"position"`
	Power    []float32 `yaml:"power"`
	Normal   []float32 `yaml:"normal"`
	Up       []float32 `yaml:"up"`
	Size     []float32 `yaml:"size"`
	Radiance []float32 `yaml:"radiance"`
	Range    *float32  `yaml:"range"`
}

type materialEntry struct {
	Name      string    `yaml:"name"`
	Node      string    `yaml:"node"`
	Diffuse   []float32 `yaml:"diffuse"`
	IOR       *float32  `yaml:"ior"`
	Roughness *float32  `yaml:"roughness"`
}

// Load reads and parses the file at path.
func Load(path string) (*Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene info: %w", err)
	}
	info, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return info, nil
}

// Empty returns the metadata of a scene without a metadata file: the
// default material and no lights.
func Empty() *Info {
	return &Info{
		Default: material.Default(),
		Named:   make(map[string]material.Material),
		ByNode:  make(map[string]material.Material),
	}
}

// Parse decodes a metadata document. Lights of unknown type are logged and
// skipped.
func Parse(data []byte) (*Info, error) {
	var f fileFormat
	// JSON is valid YAML flow syntax.
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	info := Empty()
	backgroundSet := false
	for i, e := range f.Lights {
		l, ok, err := e.light()
		if err != nil {
			return nil, fmt.Errorf("%w: light %d (%s): %v", ErrMalformed, i, e.Node, err)
		}
		if !ok {
			logger.Warn("unknown light type ignored", zap.String("type", e.Type), zap.String("node", e.Node))
			continue
		}
		if l.Kind == lighting.KindAmbient && !backgroundSet {
			info.Background = l.Radiance
			backgroundSet = true
		}
		info.Lights = append(info.Lights, l)
	}

	for i, e := range f.Materials {
		m, err := e.material()
		if err != nil {
			return nil, fmt.Errorf("%w: material %d: %v", ErrMalformed, i, err)
		}
		switch {
		case e.Name != "":
			info.Named[e.Name] = m
		case e.Node != "":
			info.ByNode[e.Node] = m
		default:
			info.Default = m
		}
	}
	return info, nil
}

func vec3(name string, v []float32) (math.Vec3, error) {
	if len(v) != 3 {
		return math.Vec3{}, fmt.Errorf("%s needs 3 components, got %d", name, len(v))
	}
	return math.V3(v[0], v[1], v[2]), nil
}

func (e lightEntry) light() (lighting.Light, bool, error) {
	l := lighting.Light{Node: e.Node, Range: math.Inf(1)}
	var errs []error
	get := func(name string, v []float32) math.Vec3 {
		out, err := vec3(name, v)
		errs = append(errs, err)
		return out
	}

	switch e.Type {
	case "point":
		l.Kind = lighting.KindPoint
		l.Position = get("position", e.Position)
		l.Power = get("power", e.Power)
	case "area":
		l.Kind = lighting.KindArea
		l.Position = get("position", e.Position)
		l.Normal = get("normal", e.Normal)
		l.Up = get("up", e.Up)
		l.Power = get("power", e.Power)
		if len(e.Size) != 2 {
			errs = append(errs, fmt.Errorf("size needs 2 components, got %d", len(e.Size)))
		} else {
			l.Size = math.Vec2{X: e.Size[0], Y: e.Size[1]}
		}
	case "ambient":
		l.Kind = lighting.KindAmbient
		l.Radiance = get("radiance", e.Radiance)
		if e.Range != nil {
			l.Range = *e.Range
		}
	default:
		return l, false, nil
	}
	return l, true, errors.Join(errs...)
}

func (e materialEntry) material() (material.Material, error) {
	diffuse := math.Splat3(DefaultDiffuse)
	if e.Diffuse != nil {
		var err error
		if diffuse, err = vec3("diffuse", e.Diffuse); err != nil {
			return material.Material{}, err
		}
	}
	ior, roughness := float32(DefaultIOR), float32(DefaultRoughness)
	if e.IOR != nil {
		ior = *e.IOR
	}
	if e.Roughness != nil {
		roughness = *e.Roughness
	}
	return material.NewMicrofacet(roughness, ior, specularWeight, diffuse), nil
}

// Table builds the material table the renderer shades with.
func (info *Info) Table() *material.Table {
	t := material.NewTable()
	t.SetDefault(info.Default)
	for _, name := range slices.Sorted(maps.Keys(info.Named)) {
		t.AddNamed(name, info.Named[name])
	}
	for _, node := range slices.Sorted(maps.Keys(info.ByNode)) {
		t.AddForNode(node, info.ByNode[node])
	}
	return t
}

// SceneLights returns the lights to render: the file's lights, or the
// default point light when it defines none.
func (info *Info) SceneLights() []lighting.Light {
	if len(info.Lights) == 0 {
		return []lighting.Light{lighting.Default()}
	}
	return info.Lights
}
