// Package entity wraps raw store.EntityID values in handles that carry
// lazily-computed, self-invalidating caches (spec §9: "children/edges/
// neighbors caches live on handles; invalidate on any mutation that could
// affect them... No strong back-references; parents know children only
// via the store.").
//
// The handle shape is grounded in phanxgames-willow's Node, generalized
// from a single in-process scene-graph pointer to a thin wrapper around a
// store-backed ID: a handle holds no authoritative state of its own, only
// caches it can discard.
package entity
