// Package mapper implements the single object that owns the store, the
// type registries, and the hook bus, and exposes the public mutation
// surface for the map (spec §4.F).
//
// Grounded on phanxgames-willow's Scene (scene.go): the thing that holds
// cameras, render buffers, and input state and hands out the API a host
// application drives, generalized here from a scene graph's mutation API
// to a graph-of-nodes-and-edges mutation API.
package mapper
