package cartograph

import (
	"context"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
)

// defaultLabelFace is the built-in fallback used whenever a host never
// supplies its own font, so labels render out of the box.
var defaultLabelFace = text.NewGoXFace(basicfont.Face7x13)

// LabelOverlay draws each visible object node's registry label near its
// center. Face is optional; the zero value falls back to a built-in
// bitmap font rather than drawing nothing.
type LabelOverlay struct {
	Face   text.Face
	Offset float64 // vertical offset below the node's center, in pixels
}

func (l *LabelOverlay) face() text.Face {
	if l.Face != nil {
		return l.Face
	}
	return defaultLabelFace
}

// Draw labels every node touching the current viewport with its node
// type's display label, falling back to the node's own name if it has
// one set.
func (l *LabelOverlay) Draw(ctx context.Context, screen *ebiten.Image, rc *RenderContext) error {
	offset := l.Offset
	if offset == 0 {
		offset = 14
	}
	face := l.face()

	ids, err := rc.Mapper.ObjectNodesTouchingArea(ctx, rc.VisibleArea(0), 0)
	if err != nil {
		return err
	}
	for _, id := range ids {
		n := rc.Mapper.Node(id)
		label, err := nodeLabel(ctx, rc, n.TypeKey, n.Name)
		if err != nil {
			return err
		}
		if label == "" {
			continue
		}
		center, err := n.Center(ctx)
		if err != nil {
			return err
		}
		cx, cy := rc.mapPointToCanvas(center)

		op := &text.DrawOptions{}
		op.GeoM.Translate(cx, cy+offset)
		text.Draw(screen, label, face, op)
	}
	return nil
}

// nodeLabel prefers an explicit node name over the node type's registry
// label, so a renamed landmark shows its own name on the map.
func nodeLabel(ctx context.Context, rc *RenderContext, typeKeyFn, nameFn func(context.Context) (string, error)) (string, error) {
	name, err := nameFn(ctx)
	if err != nil {
		return "", err
	}
	if name != "" {
		return name, nil
	}
	typeKey, err := typeKeyFn(ctx)
	if err != nil {
		return "", err
	}
	nt, ok := rc.Mapper.NodeTypes.Get(typeKey)
	if !ok {
		return "", nil
	}
	return nt.Label, nil
}
