package registry

// NodeType describes how a node of a given type is drawn and how it
// interacts with the background/fill resolution chain (spec §4.D, §4.G).
type NodeType struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
	Color string `yaml:"color"` // hex, e.g. "#3a7d44"
	Image string `yaml:"image,omitempty"`
	Layer string `yaml:"layer"`

	// Scale selects the stamp used when this type is the object-node's
	// own type: "terrain" fills megatiles with Color/Image wherever the
	// object's children fall; "explicit" draws one discrete glyph per
	// point instead of a terrain fill.
	Scale string `yaml:"scale"`

	// GivesBackground marks a type as a valid background donor: in
	// terrain mode each child's background is resolved from nearby
	// donors of another type in the object's layer (spec §4.G background
	// resolution chain).
	GivesBackground bool `yaml:"givesBackground,omitempty"`
	// ReceivesBackground is carried in the registry data only; the
	// renderer does not read it, and explicit-mode stamps are drawn
	// without a donor background.
	ReceivesBackground bool `yaml:"receivesBackground,omitempty"`

	IsArea bool `yaml:"isArea,omitempty"`
	IsPath bool `yaml:"isPath,omitempty"`
}

// Layer describes a drawing band (spec §4.D): its stacking order (Z) and
// whether members render as filled terrain or as boundary outlines.
type Layer struct {
	ID   string `yaml:"id"`
	Z    int    `yaml:"z"`
	Kind string `yaml:"kind"` // "geographical" | "political" | "annotation"

	// DrawMode is "area" (terrain fill/explicit stamp) or "border"
	// (outline traced around the object's children).
	DrawMode string `yaml:"drawMode"`
}
