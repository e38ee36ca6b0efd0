// Package geometry provides the pure, immutable-style 3D math primitives
// the map editor builds on: vectors, line segments, axis-aligned boxes, and
// multi-segment paths. Nothing here touches the store, the registries, or
// rendering. Vector3, Line3 and Box3 are plain values; Path has
// pointer-receiver methods that modify its vertex list in place, so a Path
// shared across goroutines needs outside synchronization.
package geometry
