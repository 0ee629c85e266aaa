package glowsdf

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/glowsdf/gloweval"
)

// maxSierpinskiDepth keeps the number of shapes (6·3^depth) within reason for a CPU evaluator.
const maxSierpinskiDepth = 7

// SierpinskiConfig describes a self-similar triangle fractal. Each triangle is drawn as
// three outline strokes plus three short strokes that stick out of its vertices.
type SierpinskiConfig struct {
	// Depth is the number of subdivisions. Depth 0 is a single outlined triangle.
	Depth int
	// Center is the centroid of the outermost triangle.
	Center ms2.Vec
	// Radius is the circumradius of the outermost triangle.
	Radius float32
	// Up selects whether the triangles' apex points towards negative Y, which is
	// the top of a rendered image. Corner triangles keep their parent's orientation
	// but flip the direction flag, which turns their vertex strokes inwards on odd
	// levels and outwards on even ones.
	Up bool
	// Emissive is the intensity of all outline strokes.
	Emissive float32
	// StrokeEmissive is the intensity of the vertex strokes, usually smaller than Emissive.
	StrokeEmissive float32
	// StrokeLength is the length of the vertex strokes at the outermost level.
	// It is halved along with the triangles at each subdivision.
	StrokeLength float32
	// Thickness is the capsule radius of every stroke. Zero yields bare segments.
	Thickness float32
}

// DefaultSierpinskiConfig returns the reference fractal configuration framed in the unit square.
func DefaultSierpinskiConfig() SierpinskiConfig {
	return SierpinskiConfig{
		Depth:          3,
		Center:         ms2.Vec{X: 0.5, Y: 0.55},
		Radius:         0.45,
		Up:             true,
		Emissive:       1.0,
		StrokeEmissive: 0.3,
		StrokeLength:   0.04,
		Thickness:      0.002,
	}
}

// NewSierpinski builds the fractal described by cfg. The outermost triangle is split into
// three corner triangles, each the half scale copy of its parent about one of the parent's
// vertices, down to cfg.Depth levels. A corner triangle shares its vertex and the two adjacent
// edge midpoints with its parent. Only the triangles at the last level are drawn and all
// of them are joined in a single union.
func (bld *Builder) NewSierpinski(cfg SierpinskiConfig) gloweval.SDF2 {
	switch {
	case cfg.Depth < 0 || cfg.Depth > maxSierpinskiDepth:
		bld.shapeErrorf("sierpinski depth %d out of range [0,%d]", cfg.Depth, maxSierpinskiDepth)
		cfg.Depth = 0
	case !(cfg.Radius > 0) || math32.IsInf(cfg.Radius, 1):
		bld.shapeErrorf("bad sierpinski radius %g", cfg.Radius)
	case cfg.StrokeLength < 0 || cfg.Thickness < 0:
		bld.shapeErrorf("negative sierpinski stroke dimension")
	case isBadFloat(cfg.Center.X, cfg.Center.Y, cfg.Emissive, cfg.StrokeEmissive):
		bld.shapeErrorf("NaN or Inf argument to NewSierpinski")
	}
	return bld.sierpinski(cfg, cfg.Depth, cfg.Center, cfg.Radius, cfg.StrokeLength, cfg.Up)
}

func (bld *Builder) sierpinski(cfg SierpinskiConfig, depth int, center ms2.Vec, radius, stroke float32, up bool) gloweval.SDF2 {
	if depth == 0 {
		return bld.outlinedTriangle(cfg, center, radius, stroke, up)
	}
	verts := triangleVertices(center, radius, cfg.Up)
	var corners [3]gloweval.SDF2
	for i, v := range verts {
		// Homothety of ratio 1/2 centered at v.
		subCenter := ms2.Scale(0.5, ms2.Add(center, v))
		corners[i] = bld.sierpinski(cfg, depth-1, subCenter, radius/2, stroke/2, !up)
	}
	return bld.Union2D(corners[:]...)
}

func (bld *Builder) outlinedTriangle(cfg SierpinskiConfig, center ms2.Vec, radius, stroke float32, up bool) gloweval.SDF2 {
	verts := triangleVertices(center, radius, cfg.Up)
	shapes := make([]gloweval.SDF2, 0, 6)
	for i, a := range verts {
		b := verts[(i+1)%3]
		shapes = append(shapes, bld.stroke(a, b, cfg.Thickness, cfg.Emissive))
	}
	side := stroke / radius
	if up != cfg.Up {
		side = -side
	}
	for _, v := range verts {
		// Vertex strokes are radial, outwards when the flag matches the outermost triangle.
		out := ms2.Add(v, ms2.Scale(side, ms2.Sub(v, center)))
		shapes = append(shapes, bld.stroke(v, out, cfg.Thickness, cfg.StrokeEmissive))
	}
	return bld.Union2D(shapes...)
}

func (bld *Builder) stroke(a, b ms2.Vec, thickness, emissive float32) gloweval.SDF2 {
	if thickness == 0 {
		return bld.NewSegment(a.X, a.Y, b.X, b.Y, emissive)
	}
	return bld.NewCapsule(a.X, a.Y, b.X, b.Y, thickness, emissive)
}

// triangleVertices returns the vertices of an equilateral triangle. The first vertex is
// the apex, located at negative Y from the centroid when up is true.
func triangleVertices(center ms2.Vec, radius float32, up bool) [3]ms2.Vec {
	apex := float32(-math.Pi / 2)
	if !up {
		apex = -apex
	}
	var verts [3]ms2.Vec
	for i := range verts {
		s, c := math32.Sincos(apex + float32(i)*2*math.Pi/3)
		verts[i] = ms2.Add(center, ms2.Vec{X: radius * c, Y: radius * s})
	}
	return verts
}
