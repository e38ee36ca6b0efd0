// Package hooks implements the named async event bus used for
// store↔map↔render signaling (spec §4.E): on/off to register and remove
// listeners, Emit to run every listener for a name sequentially,
// propagating the first error after running the remaining listeners.
//
// The shape follows phanxgames-willow's input.go handler registry
// (handlerRegistry / CallbackHandle), generalized from willow's fixed set
// of pointer/click/drag events to an open set of string-named events.
package hooks
