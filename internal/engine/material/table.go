package material

// Handle indexes a material stored in a Table.
type Handle int

// DefaultHandle always refers to the table's default material.
const DefaultHandle Handle = 0

// Table owns every material of a scene. Lookups by node name win over lookups
// by material name, which win over the default.
type Table struct {
	mats   []Material
	named  map[string]Handle
	byNode map[string]Handle
}

// NewTable returns a table holding only the default material.
func NewTable() *Table {
	return &Table{
		mats:   []Material{Default()},
		named:  make(map[string]Handle),
		byNode: make(map[string]Handle),
	}
}

// SetDefault replaces the default material.
func (t *Table) SetDefault(m Material) {
	if m.Name == "" {
		m.Name = "default"
	}
	t.mats[DefaultHandle] = m
}

// AddNamed registers a material under its material name.
func (t *Table) AddNamed(name string, m Material) Handle {
	m.Name = name
	h := t.add(m)
	t.named[name] = h
	return h
}

// AddForNode registers a material for every mesh of the named node.
func (t *Table) AddForNode(node string, m Material) Handle {
	if m.Name == "" {
		m.Name = node
	}
	h := t.add(m)
	t.byNode[node] = h
	return h
}

func (t *Table) add(m Material) Handle {
	t.mats = append(t.mats, m)
	return Handle(len(t.mats) - 1)
}

// Resolve picks the material for a mesh of node nodeName whose asset-side
// material name is meshMaterial.
func (t *Table) Resolve(nodeName, meshMaterial string) Handle {
	if h, ok := t.byNode[nodeName]; ok {
		return h
	}
	if meshMaterial != "" {
		if h, ok := t.named[meshMaterial]; ok {
			return h
		}
	}
	return DefaultHandle
}

// Get returns the material for h, falling back to the default for stale handles.
func (t *Table) Get(h Handle) Material {
	if h < 0 || int(h) >= len(t.mats) {
		return t.mats[DefaultHandle]
	}
	return t.mats[h]
}

// Len returns the number of stored materials including the default.
func (t *Table) Len() int { return len(t.mats) }

// All returns the stored materials; index i is Handle(i).
func (t *Table) All() []Material { return t.mats }
