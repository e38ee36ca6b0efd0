package registry

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// pack mirrors the on-disk YAML shape (dungo's ThemePack/LoadThemeFromFile
// layout, generalized from one monolithic theme to two lookup tables).
type pack struct {
	Layers    []Layer    `yaml:"layers"`
	NodeTypes []NodeType `yaml:"nodeTypes"`
}

// NodeTypeRegistry is a lookup table of NodeType by ID (spec §4.D). A
// registry starts pre-seeded with the built-in set and accepts further
// registrations from a host application.
type NodeTypeRegistry struct {
	byID map[string]NodeType
}

// LayerRegistry is a lookup table of Layer by ID (spec §4.D).
type LayerRegistry struct {
	byID map[string]Layer
}

// NewNodeTypeRegistry returns a registry pre-seeded with the built-in node
// types (water, grass, forest, tree, rocks, stone, road, buildings, tower,
// region, route, note).
func NewNodeTypeRegistry() *NodeTypeRegistry {
	r := &NodeTypeRegistry{byID: make(map[string]NodeType)}
	var p pack
	if err := yaml.Unmarshal(defaultsYAML, &p); err != nil {
		panic(fmt.Errorf("registry: embedded defaults.yaml is invalid: %w", err))
	}
	for _, nt := range p.NodeTypes {
		r.byID[nt.ID] = nt
	}
	return r
}

// NewLayerRegistry returns a registry pre-seeded with the built-in layers
// (geographical, political, annotation).
func NewLayerRegistry() *LayerRegistry {
	r := &LayerRegistry{byID: make(map[string]Layer)}
	var p pack
	if err := yaml.Unmarshal(defaultsYAML, &p); err != nil {
		panic(fmt.Errorf("registry: embedded defaults.yaml is invalid: %w", err))
	}
	for _, l := range p.Layers {
		r.byID[l.ID] = l
	}
	return r
}

// Register adds or overrides a node type.
func (r *NodeTypeRegistry) Register(nt NodeType) {
	r.byID[nt.ID] = nt
}

// Get looks up a node type by ID.
func (r *NodeTypeRegistry) Get(id string) (NodeType, bool) {
	nt, ok := r.byID[id]
	return nt, ok
}

// All returns every registered node type. Order is unspecified; callers
// that need stable iteration should sort by ID themselves.
func (r *NodeTypeRegistry) All() []NodeType {
	out := make([]NodeType, 0, len(r.byID))
	for _, nt := range r.byID {
		out = append(out, nt)
	}
	return out
}

// Register adds or overrides a layer.
func (r *LayerRegistry) Register(l Layer) {
	r.byID[l.ID] = l
}

// Get looks up a layer by ID.
func (r *LayerRegistry) Get(id string) (Layer, bool) {
	l, ok := r.byID[id]
	return l, ok
}

// All returns every registered layer. Order is unspecified; callers that
// need draw order should sort by Z themselves.
func (r *LayerRegistry) All() []Layer {
	out := make([]Layer, 0, len(r.byID))
	for _, l := range r.byID {
		out = append(out, l)
	}
	return out
}

// LoadNodeTypesFromFile merges additional node types from a YAML file into
// r, overriding any ID collisions. Mirrors dungo's LoadThemeFromFile: a
// host ships its own pack alongside the built-ins rather than replacing
// them outright.
func LoadNodeTypesFromFile(r *NodeTypeRegistry, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("registry: reading node type file: %w", err)
	}
	var p pack
	if err := yaml.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("registry: parsing node type YAML: %w", err)
	}
	for _, nt := range p.NodeTypes {
		r.Register(nt)
	}
	return nil
}

// LoadLayersFromFile merges additional layers from a YAML file into r.
func LoadLayersFromFile(r *LayerRegistry, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("registry: reading layer file: %w", err)
	}
	var p pack
	if err := yaml.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("registry: parsing layer YAML: %w", err)
	}
	for _, l := range p.Layers {
		r.Register(l)
	}
	return nil
}
