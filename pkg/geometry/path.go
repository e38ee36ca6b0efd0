package geometry

import "math"

// Path is an ordered sequence of vertices produced by a drag stroke,
// stored as an origin plus a list of points relative to that origin. The
// relative storage means TranslateOrigin is O(1) instead of rewriting
// every vertex.
type Path struct {
	Origin Vector3
	points []Vector3 // offsets from Origin; points[i] is the i-th vertex after the origin
}

// NewPath starts a path at origin with no further vertices.
func NewPath(origin Vector3) *Path {
	return &Path{Origin: origin}
}

// TranslateOrigin moves the whole path by delta in O(1).
func (p *Path) TranslateOrigin(delta Vector3) {
	p.Origin = p.Origin.Add(delta)
}

// Transform applies fn to every vertex (origin included) and rebuilds the
// relative point storage against the transformed origin.
func (p *Path) Transform(fn func(Vector3) Vector3) {
	abs := p.vertices()
	newOrigin := fn(abs[0])
	newPoints := make([]Vector3, 0, len(abs)-1)
	for _, v := range abs[1:] {
		newPoints = append(newPoints, fn(v).Sub(newOrigin))
	}
	p.Origin = newOrigin
	p.points = newPoints
}

// AppendVertex appends an absolute point to the path, converting it to an
// offset from Origin. A move that lands on the current last vertex (a
// zero-length segment) is silently ignored.
func (p *Path) AppendVertex(absolute Vector3) {
	offset := absolute.Sub(p.Origin)
	if p.sameAsLast(offset) {
		return
	}
	p.points = append(p.points, offset)
}

func (p *Path) sameAsLast(offset Vector3) bool {
	if len(p.points) == 0 {
		return offset == (Vector3{})
	}
	return offset == p.points[len(p.points)-1]
}

// Pop removes the last vertex, if any.
func (p *Path) Pop() {
	if len(p.points) > 0 {
		p.points = p.points[:len(p.points)-1]
	}
}

// Last returns the absolute position of the final vertex (the origin, if
// no points have been appended yet).
func (p *Path) Last() Vector3 {
	if len(p.points) == 0 {
		return p.Origin
	}
	return p.Origin.Add(p.points[len(p.points)-1])
}

// vertices returns every absolute vertex, origin first.
func (p *Path) vertices() []Vector3 {
	out := make([]Vector3, 0, len(p.points)+1)
	out = append(out, p.Origin)
	for _, pt := range p.points {
		out = append(out, p.Origin.Add(pt))
	}
	return out
}

// Vertices returns every absolute vertex in order, starting with the
// origin.
func (p *Path) Vertices() []Vector3 {
	return p.vertices()
}

// Segments returns every consecutive pair of vertices as a Line3.
func (p *Path) Segments() []Line3 {
	verts := p.vertices()
	if len(verts) < 2 {
		return nil
	}
	segs := make([]Line3, 0, len(verts)-1)
	for i := 0; i < len(verts)-1; i++ {
		segs = append(segs, Line3{A: verts[i], B: verts[i+1]})
	}
	return segs
}

// Centroid returns the mean of all vertices.
func (p *Path) Centroid() Vector3 {
	verts := p.vertices()
	sum := Vector3{}
	for _, v := range verts {
		sum = sum.Add(v)
	}
	return sum.Div(float64(len(verts)))
}

// BoundingRadius returns the maximum distance from the centroid to any
// vertex.
func (p *Path) BoundingRadius() float64 {
	c := p.Centroid()
	var maxDist float64
	for _, v := range p.vertices() {
		if d := c.Distance(v); d > maxDist {
			maxDist = d
		}
	}
	return maxDist
}

// Bisect subdivides every segment longer than maxLen into equal-length
// pieces no longer than maxLen, replacing the point list in place.
//
// This is deliberately iterative (a worklist over the existing vertex
// list), not recursive: a recursive bisection can blow the stack on very
// long freehand strokes.
func (p *Path) Bisect(maxLen float64) {
	if maxLen <= 0 {
		return
	}
	verts := p.vertices()
	if len(verts) < 2 {
		return
	}

	out := make([]Vector3, 0, len(verts))
	out = append(out, verts[0])
	for i := 0; i < len(verts)-1; i++ {
		a, b := verts[i], verts[i+1]
		segLen := b.Sub(a).Length()
		if segLen <= maxLen || segLen == 0 {
			out = append(out, b)
			continue
		}
		pieces := int(math.Ceil(segLen / maxLen))
		for j := 1; j <= pieces; j++ {
			t := float64(j) / float64(pieces)
			out = append(out, a.Add(b.Sub(a).Scale(t)))
		}
	}

	p.Origin = out[0]
	p.points = make([]Vector3, 0, len(out)-1)
	for _, v := range out[1:] {
		p.points = append(p.points, v.Sub(p.Origin))
	}
}

// LastSegmentOnly returns a new Path containing only the final segment
// (the second-to-last vertex becomes the new origin). Returns a
// zero-length path at Last() if there is no prior vertex.
func (p *Path) LastSegmentOnly() *Path {
	verts := p.vertices()
	if len(verts) < 2 {
		return NewPath(p.Last())
	}
	np := NewPath(verts[len(verts)-2])
	np.AppendVertex(verts[len(verts)-1])
	return np
}
