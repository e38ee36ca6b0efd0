package geometry

// Line3 is a directed segment from A to B.
type Line3 struct {
	A, B Vector3
}

// Map applies fn to both endpoints.
func (l Line3) Map(fn func(Vector3) Vector3) Line3 {
	return Line3{fn(l.A), fn(l.B)}
}

// Add translates both endpoints by o.
func (l Line3) Add(o Vector3) Line3 {
	return Line3{l.A.Add(o), l.B.Add(o)}
}

// Sub translates both endpoints by -o.
func (l Line3) Sub(o Vector3) Line3 {
	return Line3{l.A.Sub(o), l.B.Sub(o)}
}

// Scale scales both endpoints by s.
func (l Line3) Scale(s float64) Line3 {
	return Line3{l.A.Scale(s), l.B.Scale(s)}
}

// Vector returns B - A, the segment's displacement vector.
func (l Line3) Vector() Vector3 {
	return l.B.Sub(l.A)
}

// Length returns the segment's length.
func (l Line3) Length() float64 {
	return l.Vector().Length()
}

// Min returns the component-wise minimum corner of the segment's bounding box.
func (l Line3) Min() Vector3 {
	return l.A.Min(l.B)
}

// Max returns the component-wise maximum corner of the segment's bounding box.
func (l Line3) Max() Vector3 {
	return l.A.Max(l.B)
}

// Distance returns the distance from p to the closest point on the
// infinite line through A and B projected to the segment (clamped to
// [0,1] along the segment), using the XY plane only.
func (l Line3) Distance(p Vector3) float64 {
	seg := l.Vector().NoZ()
	segLenSq := seg.LengthSquared()
	if segLenSq == 0 {
		return l.A.NoZ().Distance(p.NoZ())
	}
	t := p.NoZ().Sub(l.A.NoZ()).X*seg.X + p.NoZ().Sub(l.A.NoZ()).Y*seg.Y
	t /= segLenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	closest := l.A.NoZ().Add(seg.Scale(t))
	return closest.Distance(p.NoZ())
}

// Intersects2D reports whether l and o cross in the XY plane, using a
// determinant-based test. Collinear segments and segments that only touch
// at an endpoint are reported as not intersecting (matching the source's
// strict-crossing semantics — callers that want touching counted should
// test endpoints separately).
func (l Line3) Intersects2D(o Line3) bool {
	p := l.A.NoZ()
	r := l.Vector().NoZ()
	q := o.A.NoZ()
	s := o.Vector().NoZ()

	rxs := r.X*s.Y - r.Y*s.X
	if rxs == 0 {
		// Parallel or collinear: spec treats both as "not intersecting".
		return false
	}

	qp := q.Sub(p)
	t := (qp.X*s.Y - qp.Y*s.X) / rxs
	u := (qp.X*r.Y - qp.Y*r.X) / rxs

	// Strictly between endpoints: touching at an endpoint (t or u exactly
	// 0 or 1) does not count as an intersection.
	return t > 0 && t < 1 && u > 0 && u < 1
}
