// Package store defines the MapStore contract the rendering/interaction
// engine consumes (spec §4.B, §6.1) and ships a default in-memory
// implementation of it. Concrete backends (relational tables, triggers,
// blob export) are deliberately out of this module's scope — the engine
// only ever talks to the MapStore interface.
package store
