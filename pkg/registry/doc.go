// Package registry holds the process-wide, populated-at-startup
// descriptors for node types and layers (spec §4.D). The built-in set is
// data, not code: it ships as an embedded YAML document in the style of
// dshills-dungo's pkg/themes, and a host can register additional entries
// or override the defaults the same way.
package registry
