package glowsdf

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/glgl/math/ms1"
	"github.com/soypat/glowsdf/gloweval"
)

// CircleSDF returns the signed distance from p to the circle of radius r centered at c.
func CircleSDF(p, c ms2.Vec, r float32) float32 {
	return ms2.Norm(ms2.Sub(p, c)) - r
}

// PlaneSDF returns the signed distance from p to the infinite line through point
// with unit normal n. Points on the side n points to are positive.
func PlaneSDF(p, point, n ms2.Vec) float32 {
	return ms2.Dot(ms2.Sub(p, point), n)
}

// SegmentSDF returns the unsigned distance from p to the segment joining a and b.
// If a and b coincide the distance to a is returned.
func SegmentSDF(p, a, b ms2.Vec) float32 {
	pa := ms2.Sub(p, a)
	ba := ms2.Sub(b, a)
	dotba := ms2.Dot(ba, ba)
	if dotba < epstol*epstol {
		return ms2.Norm(pa)
	}
	h := ms1.Clamp(ms2.Dot(pa, ba)/dotba, 0, 1)
	return ms2.Norm(ms2.Sub(pa, ms2.Scale(h, ba)))
}

// CapsuleSDF returns the signed distance from p to the segment joining a and b
// thickened by radius r.
func CapsuleSDF(p, a, b ms2.Vec, r float32) float32 {
	return SegmentSDF(p, a, b) - r
}

type circle2D struct {
	c   ms2.Vec
	r   float32
	emi float32
}

// NewCircle creates a circle of a radius centered at (x,y) that emits with the given intensity.
func (bld *Builder) NewCircle(x, y, radius, emissive float32) gloweval.SDF2 {
	okRadius := radius > 0 && !math32.IsInf(radius, 1)
	if !okRadius {
		bld.shapeErrorf("bad circle radius %g", radius)
	} else if isBadFloat(x, y, emissive) {
		bld.shapeErrorf("NaN or Inf argument to NewCircle")
	}
	return &circle2D{c: ms2.Vec{X: x, Y: y}, r: radius, emi: emissive}
}

func (c *circle2D) Evaluate(pos []ms2.Vec, dist, emissive []float32, userData any) error {
	center, r := c.c, c.r
	for i, p := range pos {
		dist[i] = ms2.Norm(ms2.Sub(p, center)) - r
	}
	fill(emissive, c.emi)
	return nil
}

type plane2D struct {
	p   ms2.Vec
	n   ms2.Vec
	emi float32
}

// NewPlane creates a half-plane bounded by the line through (px,py) with normal (nx,ny).
// The normal points away from the solid side and is normalized if needed.
func (bld *Builder) NewPlane(px, py, nx, ny, emissive float32) gloweval.SDF2 {
	if isBadFloat(px, py, nx, ny, emissive) {
		bld.shapeErrorf("NaN or Inf argument to NewPlane")
	}
	n := ms2.Vec{X: nx, Y: ny}
	l := ms2.Norm(n)
	if l < epstol {
		bld.shapeErrorf("zero length plane normal")
		l = 1
	}
	return &plane2D{p: ms2.Vec{X: px, Y: py}, n: ms2.Scale(1/l, n), emi: emissive}
}

func (pl *plane2D) Evaluate(pos []ms2.Vec, dist, emissive []float32, userData any) error {
	for i, p := range pos {
		dist[i] = ms2.Dot(ms2.Sub(p, pl.p), pl.n)
	}
	fill(emissive, pl.emi)
	return nil
}

type segment2D struct {
	a, b ms2.Vec
	emi  float32
}

// NewSegment creates a zero-thickness line segment between (x0,y0) and (x1,y1).
// Its distance is never negative so rays can only hit it approximately; prefer
// [Builder.NewCapsule] with a small radius for visible strokes.
func (bld *Builder) NewSegment(x0, y0, x1, y1, emissive float32) gloweval.SDF2 {
	if isBadFloat(x0, y0, x1, y1, emissive) {
		bld.shapeErrorf("NaN or Inf argument to NewSegment")
	}
	return &segment2D{a: ms2.Vec{X: x0, Y: y0}, b: ms2.Vec{X: x1, Y: y1}, emi: emissive}
}

func (s *segment2D) Evaluate(pos []ms2.Vec, dist, emissive []float32, userData any) error {
	for i, p := range pos {
		dist[i] = SegmentSDF(p, s.a, s.b)
	}
	fill(emissive, s.emi)
	return nil
}

type capsule2D struct {
	a, b ms2.Vec
	r    float32
	emi  float32
}

// NewCapsule creates a line segment between (x0,y0) and (x1,y1) thickened by radius.
// Coincident endpoints result in a circle of the given radius.
func (bld *Builder) NewCapsule(x0, y0, x1, y1, radius, emissive float32) gloweval.SDF2 {
	if isBadFloat(x0, y0, x1, y1, radius, emissive) {
		bld.shapeErrorf("NaN or Inf argument to NewCapsule")
	} else if radius < 0 {
		bld.shapeErrorf("negative radius to NewCapsule")
	}
	return &capsule2D{a: ms2.Vec{X: x0, Y: y0}, b: ms2.Vec{X: x1, Y: y1}, r: radius, emi: emissive}
}

func (c *capsule2D) Evaluate(pos []ms2.Vec, dist, emissive []float32, userData any) error {
	for i, p := range pos {
		dist[i] = SegmentSDF(p, c.a, c.b) - c.r
	}
	fill(emissive, c.emi)
	return nil
}
