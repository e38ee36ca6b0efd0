package store

import (
	"context"
	"errors"
	"iter"

	"github.com/worldforge/cartograph/pkg/geometry"
)

// EntityID addresses any entity (global, node, or edge) in a store.
type EntityID int64

// NoEntity is the zero value, never a valid entity ID.
const NoEntity EntityID = 0

// EntityType tags what kind of record an entity is (spec §3).
type EntityType string

const (
	EntityGlobal EntityType = "global"
	EntityNode   EntityType = "node"
	EntityEdge   EntityType = "edge"
)

// NodeRole is a node's structural role (spec §3).
type NodeRole string

const (
	RoleObject NodeRole = "object"
	RolePoint  NodeRole = "point"
	RolePath   NodeRole = "path"
)

// Well-known property names the core reads and writes (spec §3).
const (
	PropCenter   = "center"
	PropECenter  = "eCenter"
	PropRadius   = "radius"
	PropType     = "type"
	PropLayer    = "layer"
	PropName     = "name"
)

// DirectedEdge is a transient (edge, start-node) pairing used for
// iteration convenience; it has no identity of its own (spec §3).
type DirectedEdge struct {
	Edge  EntityID
	Start EntityID
}

// Errors a MapStore implementation or caller may surface (spec §7).
var (
	ErrNotFound         = errors.New("store: entity not found")
	ErrInvalidEntity    = errors.New("store: entity is not valid (soft-deleted)")
	ErrSelfEdge         = errors.New("store: cannot create an edge between a node and itself")
	ErrCyclicParent     = errors.New("store: parent assignment would create a cycle")
	ErrVersionTooNew    = errors.New("store: stored version is newer than this build understands")
	ErrVersionTooOld    = errors.New("store: stored version cannot be upgraded (more than one revision behind)")
	ErrWrongEntityType  = errors.New("store: operation does not apply to this entity type")
)

// CurrentVersion is the schema version this build writes and reads
// without needing an upgrade step.
const CurrentVersion = 2

// MapStore is the persistence contract the rendering/interaction engine
// consumes (spec §4.B). All methods may yield to I/O; concrete
// implementations are free to batch, cache, or go straight to a backing
// database.
type MapStore interface {
	// --- Versioning ---

	// Version returns the stored schema version, initializing an empty
	// store to CurrentVersion on first call.
	Version(ctx context.Context) (int, error)
	// Upgrade runs the one known upgrade step if the stored version is
	// exactly one revision behind CurrentVersion. Returns
	// ErrVersionTooNew / ErrVersionTooOld otherwise.
	Upgrade(ctx context.Context) error

	// --- Entities ---

	CreateEntity(ctx context.Context, kind EntityType) (EntityID, error)
	EntityExists(ctx context.Context, id EntityID) (bool, error)
	EntityValid(ctx context.Context, id EntityID) (bool, error)
	Invalidate(ctx context.Context, id EntityID) error
	Revalidate(ctx context.Context, id EntityID) error

	// --- Nodes ---

	CreateNode(ctx context.Context, parent EntityID, role NodeRole) (EntityID, error)
	GetNodeRole(ctx context.Context, id EntityID) (NodeRole, error)
	GetNodeParent(ctx context.Context, id EntityID) (EntityID, error)
	SetNodeParent(ctx context.Context, id, parent EntityID) error
	GetNodeChildren(ctx context.Context, id EntityID) (iter.Seq[EntityID], error)
	NodeHasChildren(ctx context.Context, id EntityID) (bool, error)

	// --- Edges ---

	CreateEdge(ctx context.Context, a, b EntityID) (EntityID, error)
	GetNodeEdges(ctx context.Context, id EntityID) (iter.Seq[DirectedEdge], error)
	GetEdgeNodes(ctx context.Context, id EntityID) (a, b EntityID, err error)
	GetEdgeOtherNode(ctx context.Context, edgeID, endpoint EntityID) (EntityID, error)
	GetEdgeBetween(ctx context.Context, a, b EntityID) (EntityID, bool, error)

	// --- Properties ---

	GetPNumber(ctx context.Context, id EntityID, name string) (float64, bool, error)
	SetPNumber(ctx context.Context, id EntityID, name string, value float64) error
	GetPString(ctx context.Context, id EntityID, name string) (string, bool, error)
	SetPString(ctx context.Context, id EntityID, name string, value string) error
	GetPVector3(ctx context.Context, id EntityID, name string) (geometry.Vector3, bool, error)
	SetPVector3(ctx context.Context, id EntityID, name string, value geometry.Vector3) error

	// --- Spatial queries ---

	GetNodesTouchingArea(ctx context.Context, box geometry.Box3, minRadius float64) (iter.Seq[EntityID], error)
	GetObjectNodesTouchingArea(ctx context.Context, box geometry.Box3, minRadius float64) (iter.Seq[EntityID], error)

	// --- Bulk ---

	Export(ctx context.Context) ([]byte, error)
	Import(ctx context.Context, data []byte) error
	Flush(ctx context.Context) error
}
