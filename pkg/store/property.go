package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/worldforge/cartograph/pkg/geometry"
)

// ValueKind tags which field of a Value is populated.
type ValueKind uint8

const (
	KindNone ValueKind = iota
	KindNumber
	KindString
	KindVector3
)

// Value is a tagged union of the three property value types a node
// carries: number, string, or 3D vector. The zero Value is KindNone,
// meaning "not set".
type Value struct {
	Kind   ValueKind
	Number float64
	String string
	Vector geometry.Vector3
}

// NumberValue wraps a float64 as a property Value.
func NumberValue(n float64) Value { return Value{Kind: KindNumber, Number: n} }

// StringValue wraps a string as a property Value.
func StringValue(s string) Value { return Value{Kind: KindString, String: s} }

// Vector3Value wraps a geometry.Vector3 as a property Value.
func Vector3Value(v geometry.Vector3) Value { return Value{Kind: KindVector3, Vector: v} }

// AsNumber returns the numeric value, parsing a string-encoded one if
// necessary (the default serialization — spec §6.1 — stores numbers as
// strings). ok is false if the value is unset or not number-like.
func (v Value) AsNumber() (n float64, ok bool) {
	switch v.Kind {
	case KindNumber:
		return v.Number, true
	case KindString:
		parsed, err := strconv.ParseFloat(v.String, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// AsString returns the value rendered as a string, regardless of kind.
func (v Value) AsString() (s string, ok bool) {
	switch v.Kind {
	case KindString:
		return v.String, true
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'g', -1, 64), true
	case KindVector3:
		return encodeVector3(v.Vector), true
	default:
		return "", false
	}
}

// AsVector3 returns the vector value, parsing a JSON-object-encoded string
// if necessary (spec §6.1's default `{x,y,z}` serialization).
func (v Value) AsVector3() (vec geometry.Vector3, ok bool) {
	switch v.Kind {
	case KindVector3:
		return v.Vector, true
	case KindString:
		parsed, err := decodeVector3(v.String)
		if err != nil {
			return geometry.Vector3{}, false
		}
		return parsed, true
	default:
		return geometry.Vector3{}, false
	}
}

// encodeVector3 renders a vector the way the default string-column
// storage (spec §6.1) would: a minimal JSON object.
func encodeVector3(v geometry.Vector3) string {
	return fmt.Sprintf("{\"x\":%s,\"y\":%s,\"z\":%s}",
		strconv.FormatFloat(v.X, 'g', -1, 64),
		strconv.FormatFloat(v.Y, 'g', -1, 64),
		strconv.FormatFloat(v.Z, 'g', -1, 64))
}

// decodeVector3 parses the `{x,y,z}` encoding produced by encodeVector3.
// A hand-rolled parser (rather than encoding/json) keeps this file free of
// an import solely for three numbers.
func decodeVector3(s string) (geometry.Vector3, error) {
	s = strings.Trim(s, "{} ")
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return geometry.Vector3{}, fmt.Errorf("store: malformed vector3 %q", s)
	}
	var out [3]float64
	for i, part := range parts {
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			return geometry.Vector3{}, fmt.Errorf("store: malformed vector3 field %q", part)
		}
		val, err := strconv.ParseFloat(strings.TrimSpace(kv[1]), 64)
		if err != nil {
			return geometry.Vector3{}, fmt.Errorf("store: malformed vector3 number %q: %w", kv[1], err)
		}
		out[i] = val
	}
	return geometry.Vector3{X: out[0], Y: out[1], Z: out[2]}, nil
}
