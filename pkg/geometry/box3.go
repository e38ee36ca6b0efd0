package geometry

// Box3 is an axis-aligned box described by two opposite corners.
type Box3 struct {
	A, B Vector3
}

// FromRadius builds the box circumscribing a sphere of the given radius
// centered at center.
func FromRadius(center Vector3, radius float64) Box3 {
	r := Vector3{radius, radius, radius}
	return Box3{center.Sub(r), center.Add(r)}
}

// FromOffset builds a box from a start corner and an offset to the
// opposite corner.
func FromOffset(start, offset Vector3) Box3 {
	return Box3{start, start.Add(offset)}
}

// Scale scales both corners by s (about the origin).
func (b Box3) Scale(s float64) Box3 {
	return Box3{b.A.Scale(s), b.B.Scale(s)}
}

// Map applies fn to both corners.
func (b Box3) Map(fn func(Vector3) Vector3) Box3 {
	return Box3{fn(b.A), fn(b.B)}
}

// Diagonal returns the box's diagonal as a Line3 from the min corner to
// the max corner.
func (b Box3) Diagonal() Line3 {
	return Line3{b.Min(), b.Max()}
}

// Min returns the component-wise minimum corner.
func (b Box3) Min() Vector3 {
	return b.A.Min(b.B)
}

// Max returns the component-wise maximum corner.
func (b Box3) Max() Vector3 {
	return b.A.Max(b.B)
}

// Intersects2D reports whether b and o overlap in the XY plane (Z ignored).
// Touching at an edge counts as intersecting.
func (b Box3) Intersects2D(o Box3) bool {
	aMin, aMax := b.Min(), b.Max()
	oMin, oMax := o.Min(), o.Max()
	return aMin.X <= oMax.X && aMax.X >= oMin.X &&
		aMin.Y <= oMax.Y && aMax.Y >= oMin.Y
}

// ContainsPoint2D reports whether p lies within b in the XY plane.
func (b Box3) ContainsPoint2D(p Vector3) bool {
	min, max := b.Min(), b.Max()
	return p.X >= min.X && p.X <= max.X && p.Y >= min.Y && p.Y <= max.Y
}
