package cartograph

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// Color represents an RGBA color with components in [0, 1]. Not
// premultiplied; premultiplication happens at draw-call submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the identity tint.
var ColorWhite = Color{1, 1, 1, 1}

func (c Color) scale(factor float64) Color {
	return Color{R: c.R * factor, G: c.G * factor, B: c.B * factor, A: c.A}
}

func (c Color) withAlpha(a float64) Color {
	return Color{R: c.R, G: c.G, B: c.B, A: a}
}

// parseHexColor parses a "#rrggbb" or "#rrggbbaa" string as used by
// registry.NodeType.Color. Malformed input yields opaque magenta, the
// same placeholder convention the fill-style cache uses for an unknown
// node type.
func parseHexColor(s string) Color {
	if len(s) == 0 || s[0] != '#' || (len(s) != 7 && len(s) != 9) {
		return Color{1, 0, 1, 1}
	}
	hexDigit := func(c byte) int {
		switch {
		case c >= '0' && c <= '9':
			return int(c - '0')
		case c >= 'a' && c <= 'f':
			return int(c-'a') + 10
		case c >= 'A' && c <= 'F':
			return int(c-'A') + 10
		default:
			return -1
		}
	}
	byteAt := func(i int) (float64, bool) {
		hi, lo := hexDigit(s[i]), hexDigit(s[i+1])
		if hi < 0 || lo < 0 {
			return 0, false
		}
		return float64(hi*16+lo) / 255, true
	}
	r, ok1 := byteAt(1)
	g, ok2 := byteAt(3)
	b, ok3 := byteAt(5)
	if !ok1 || !ok2 || !ok3 {
		return Color{1, 0, 1, 1}
	}
	a := 1.0
	if len(s) == 9 {
		if av, ok := byteAt(7); ok {
			a = av
		}
	}
	return Color{R: r, G: g, B: b, A: a}
}

func (c Color) toRGBA() (r, g, b, a float64) {
	return c.R * c.A, c.G * c.A, c.B * c.A, c.A
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)

// KeyModifiers is a bitmask of keyboard modifier keys.
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// screenPoint is a 2D screen-space pixel coordinate, kept distinct from
// geometry.Vector3 (world units) to avoid mixing the two coordinate
// spaces by accident.
type screenPoint struct {
	X, Y float64
}

// whitePixel is a 1x1 opaque white image used as the source for solid
// fills and disks drawn via ebiten/v2/vector, following willow.go's
// WhitePixel convention.
var whitePixel *ebiten.Image

func init() {
	whitePixel = ebiten.NewImage(1, 1)
	whitePixel.Fill(colorToRGBA(ColorWhite))
}

func colorToRGBA(c Color) color.RGBA {
	r, g, b, a := c.toRGBA()
	return color.RGBA{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255), A: uint8(a * 255)}
}
