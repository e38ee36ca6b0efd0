package store

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"

	"github.com/worldforge/cartograph/pkg/geometry"
)

// snapshot is the gob-serializable image of a MemStore (spec §6.2: "a
// single opaque byte sequence"). Field names are exported only so gob can
// see them; nothing outside this file touches the type.
type snapshot struct {
	VersionInt int
	NextID     EntityID
	NextSeq    uint64

	Entities []snapEntity
	Nodes    []snapNode
	Edges    []snapEdge
	Props    []snapProps
}

type snapEntity struct {
	ID    EntityID
	Kind  EntityType
	Valid bool
	Seq   uint64
}

type snapNode struct {
	ID       EntityID
	Role     NodeRole
	Parent   EntityID
	Children []EntityID
}

type snapEdge struct {
	ID   EntityID
	A, B EntityID
}

type snapProps struct {
	ID     EntityID
	Values map[string]snapValue
}

// snapValue mirrors Value in a form gob is happy to round-trip (gob
// handles plain structs fine, but keeping the wire shape explicit here
// means MemStore can evolve Value's in-memory representation freely).
type snapValue struct {
	Kind   ValueKind
	Number float64
	String string
	Vector geometry.Vector3
}

func toSnapValue(v Value) snapValue {
	return snapValue{Kind: v.Kind, Number: v.Number, String: v.String, Vector: v.Vector}
}

func fromSnapValue(v snapValue) Value {
	return Value{Kind: v.Kind, Number: v.Number, String: v.String, Vector: v.Vector}
}

// Export serializes the full store to a portable byte sequence (spec
// §6.2). Safe to call while the store is open: it copies under the read
// lock and encodes outside it.
func (s *MemStore) Export(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	snap := snapshot{VersionInt: s.version, NextID: s.nextID, NextSeq: s.nextSeq}

	for id, rec := range s.entities {
		snap.Entities = append(snap.Entities, snapEntity{ID: id, Kind: rec.kind, Valid: rec.valid, Seq: rec.seq})
	}
	for id, n := range s.nodes {
		children := append([]EntityID(nil), n.children...)
		snap.Nodes = append(snap.Nodes, snapNode{ID: id, Role: n.role, Parent: n.parent, Children: children})
	}
	for id, e := range s.edges {
		snap.Edges = append(snap.Edges, snapEdge{ID: id, A: e.a, B: e.b})
	}
	for id, props := range s.properties {
		values := make(map[string]snapValue, len(props))
		for name, v := range props {
			values[name] = toSnapValue(v)
		}
		snap.Props = append(snap.Props, snapProps{ID: id, Values: values})
	}
	s.mu.RUnlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, fmt.Errorf("store: export: %w", err)
	}
	return buf.Bytes(), nil
}

// Import replaces all state in s with the store encoded in data (spec
// §6.2). Existing handles/caches held by callers become stale; this
// method is meant for "open a map file", not incremental merge.
func (s *MemStore) Import(ctx context.Context, data []byte) error {
	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return fmt.Errorf("store: import: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.version = snap.VersionInt
	s.nextID = snap.NextID
	s.nextSeq = snap.NextSeq

	s.entities = make(map[EntityID]*entityRecord, len(snap.Entities))
	for _, e := range snap.Entities {
		s.entities[e.ID] = &entityRecord{id: e.ID, kind: e.Kind, valid: e.Valid, seq: e.Seq}
	}

	s.nodes = make(map[EntityID]*nodeRecord, len(snap.Nodes))
	for _, n := range snap.Nodes {
		childIdx := make(map[EntityID]int, len(n.Children))
		for i, c := range n.Children {
			childIdx[c] = i
		}
		s.nodes[n.ID] = &nodeRecord{role: n.Role, parent: n.Parent, children: n.Children, childIdx: childIdx}
	}

	s.edges = make(map[EntityID]*edgeRecord, len(snap.Edges))
	s.nodeEdges = make(map[EntityID][]DirectedEdge)
	s.nodeEdgeIdx = make(map[EntityID]map[EntityID]int)
	for _, e := range snap.Edges {
		s.edges[e.ID] = &edgeRecord{a: e.A, b: e.B}
		s.appendNodeEdgeLocked(e.A, DirectedEdge{Edge: e.ID, Start: e.A})
		s.appendNodeEdgeLocked(e.B, DirectedEdge{Edge: e.ID, Start: e.B})
	}

	s.properties = make(map[EntityID]map[string]Value, len(snap.Props))
	for _, p := range snap.Props {
		values := make(map[string]Value, len(p.Values))
		for name, v := range p.Values {
			values[name] = fromSnapValue(v)
		}
		s.properties[p.ID] = values
	}

	return nil
}
