package geometry

import (
	"math"
	"testing"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

const epsilon = 1e-9

func TestVector3Normalize(t *testing.T) {
	v := Vector3{3, 4, 0}.Normalize()
	if !approxEqual(v.Length(), 1, epsilon) {
		t.Errorf("Length() = %f, want 1", v.Length())
	}
	zero := Vector3{}.Normalize()
	if zero != (Vector3{}) {
		t.Errorf("zero vector Normalize() = %v, want zero", zero)
	}
}

func TestVector3Round(t *testing.T) {
	v := Vector3{1.5, 2.4, -0.5}.Round()
	if v.X != 2 || v.Y != 2 {
		t.Errorf("Round() = %v, want X=2 Y=2", v)
	}
}

func TestLine3Intersects2D(t *testing.T) {
	a := Line3{A: Vector3{0, 0, 0}, B: Vector3{2, 2, 0}}
	b := Line3{A: Vector3{0, 2, 0}, B: Vector3{2, 0, 0}}
	if !a.Intersects2D(b) {
		t.Error("expected crossing segments to intersect")
	}

	parallel := Line3{A: Vector3{0, 1, 0}, B: Vector3{2, 3, 0}}
	if a.Intersects2D(parallel) {
		t.Error("parallel segments must not report intersection")
	}

	// Endpoint-touching: must not count as an intersection.
	touching := Line3{A: Vector3{2, 2, 0}, B: Vector3{4, 4, 0}}
	if a.Intersects2D(touching) {
		t.Error("endpoint-touching segments must not report intersection")
	}
}

func TestBox3FromRadius(t *testing.T) {
	b := FromRadius(Vector3{10, 10, 0}, 5)
	if b.Min() != (Vector3{5, 5, -5}) {
		t.Errorf("Min() = %v, want (5,5,-5)", b.Min())
	}
	if b.Max() != (Vector3{15, 15, 5}) {
		t.Errorf("Max() = %v, want (15,15,5)", b.Max())
	}
}

func TestBox3Intersects2D(t *testing.T) {
	a := FromRadius(Vector3{0, 0, 0}, 5)
	b := FromRadius(Vector3{8, 0, 0}, 5)
	c := FromRadius(Vector3{20, 0, 0}, 5)
	if !a.Intersects2D(b) {
		t.Error("overlapping boxes should intersect")
	}
	if a.Intersects2D(c) {
		t.Error("distant boxes should not intersect")
	}
}

func TestPathAppendIgnoresZeroLengthMove(t *testing.T) {
	p := NewPath(Vector3{0, 0, 0})
	p.AppendVertex(Vector3{0, 0, 0}) // same as origin, ignored
	if len(p.Vertices()) != 1 {
		t.Fatalf("expected zero-length move to be ignored, got %d vertices", len(p.Vertices()))
	}
	p.AppendVertex(Vector3{10, 0, 0})
	if len(p.Vertices()) != 2 {
		t.Fatalf("expected 2 vertices, got %d", len(p.Vertices()))
	}
}

func TestPathTranslateOrigin(t *testing.T) {
	p := NewPath(Vector3{0, 0, 0})
	p.AppendVertex(Vector3{10, 0, 0})
	p.TranslateOrigin(Vector3{5, 5, 0})
	verts := p.Vertices()
	if verts[0] != (Vector3{5, 5, 0}) {
		t.Errorf("origin = %v, want (5,5,0)", verts[0])
	}
	if verts[1] != (Vector3{15, 5, 0}) {
		t.Errorf("second vertex = %v, want (15,5,0)", verts[1])
	}
}

func TestPathBisect(t *testing.T) {
	p := NewPath(Vector3{0, 0, 0})
	p.AppendVertex(Vector3{100, 0, 0})
	p.Bisect(30)
	for _, seg := range p.Segments() {
		if seg.Length() > 30+epsilon {
			t.Errorf("segment length %f exceeds max 30", seg.Length())
		}
	}
	if len(p.Vertices()) < 4 {
		t.Errorf("expected at least 4 vertices after bisecting a length-100 segment at 30, got %d", len(p.Vertices()))
	}
}

func TestPathLastSegmentOnly(t *testing.T) {
	p := NewPath(Vector3{0, 0, 0})
	p.AppendVertex(Vector3{10, 0, 0})
	p.AppendVertex(Vector3{10, 10, 0})
	last := p.LastSegmentOnly()
	verts := last.Vertices()
	if len(verts) != 2 {
		t.Fatalf("expected 2 vertices, got %d", len(verts))
	}
	if verts[0] != (Vector3{10, 0, 0}) || verts[1] != (Vector3{10, 10, 0}) {
		t.Errorf("unexpected last segment: %v", verts)
	}
}

func TestPathCentroidAndBoundingRadius(t *testing.T) {
	p := NewPath(Vector3{0, 0, 0})
	p.AppendVertex(Vector3{10, 0, 0})
	c := p.Centroid()
	if c != (Vector3{5, 0, 0}) {
		t.Errorf("centroid = %v, want (5,0,0)", c)
	}
	if !approxEqual(p.BoundingRadius(), 5, epsilon) {
		t.Errorf("bounding radius = %f, want 5", p.BoundingRadius())
	}
}
