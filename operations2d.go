package glowsdf

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/glowsdf/gloweval"
)

// OpUnion2D is the result of [Builder.Union2D]. It is exported so that
// callers may inspect the flattened list of joined shapes with [OpUnion2D.Joined].
type OpUnion2D struct {
	joined []gloweval.SDF2
}

// Union2D joins the shapes of several 2D SDFs into one. The closest surface wins.
// Union2D aggregates nested Union2D results into its own.
func (*Builder) Union2D(shapes ...gloweval.SDF2) gloweval.SDF2 {
	if len(shapes) < 2 {
		panic("need at least 2 arguments to Union2D")
	}
	var U OpUnion2D
	for i, s := range shapes {
		if s == nil {
			panic(fmt.Sprintf("nil %d argument to Union2D", i))
		}
		if subU, ok := s.(*OpUnion2D); ok {
			// Flattening keeps the left to right order, so ties still resolve to the rightmost shape.
			U.joined = append(U.joined, subU.joined...)
		} else {
			U.joined = append(U.joined, s)
		}
	}
	return &U
}

// Joined returns the shapes joined by the union in evaluation order.
func (u *OpUnion2D) Joined() []gloweval.SDF2 {
	u.mustValidate()
	return u.joined
}

// Evaluate implements [gloweval.SDF2].
func (u *OpUnion2D) Evaluate(pos []ms2.Vec, dist, emissive []float32, userData any) error {
	u.mustValidate()
	if err := gloweval.CheckBuffers(pos, dist, emissive); err != nil {
		return err
	}
	vp, err := gloweval.GetVecPool(userData)
	if err != nil {
		return err
	}
	auxDist := vp.Float.Acquire(len(dist))
	auxEmi := vp.Float.Acquire(len(dist))
	defer vp.Float.Release(auxDist)
	defer vp.Float.Release(auxEmi)

	err = u.joined[0].Evaluate(pos, dist, emissive, userData)
	if err != nil {
		return err
	}
	for _, shape := range u.joined[1:] {
		err = shape.Evaluate(pos, auxDist, auxEmi, userData)
		if err != nil {
			return err
		}
		for i, d := range dist {
			r := Union(Sample{Dist: d, Emissive: emissive[i]}, Sample{Dist: auxDist[i], Emissive: auxEmi[i]})
			dist[i], emissive[i] = r.Dist, r.Emissive
		}
	}
	return nil
}

func (u *OpUnion2D) mustValidate() {
	if len(u.joined) < 2 {
		panic("OpUnion2D must have at least 2 elements. Please prefer using Builder.Union2D over glowsdf.OpUnion2D")
	}
}

// binop evaluates both operands of a binary operation and reduces them
// element-wise into dist and emissive with the op function.
func binop(s1, s2 gloweval.SDF2, op func(a, b Sample) Sample, pos []ms2.Vec, dist, emissive []float32, userData any) error {
	if err := gloweval.CheckBuffers(pos, dist, emissive); err != nil {
		return err
	}
	vp, err := gloweval.GetVecPool(userData)
	if err != nil {
		return err
	}
	d2 := vp.Float.Acquire(len(dist))
	e2 := vp.Float.Acquire(len(dist))
	defer vp.Float.Release(d2)
	defer vp.Float.Release(e2)
	err = s1.Evaluate(pos, dist, emissive, userData)
	if err != nil {
		return err
	}
	err = s2.Evaluate(pos, d2, e2, userData)
	if err != nil {
		return err
	}
	for i, d := range dist {
		r := op(Sample{Dist: d, Emissive: emissive[i]}, Sample{Dist: d2[i], Emissive: e2[i]})
		dist[i], emissive[i] = r.Dist, r.Emissive
	}
	return nil
}

// Intersect2D is the SDF intersection of a ^ b. Does not produce an exact SDF.
// The emissive value follows [Intersect].
func (bld *Builder) Intersect2D(a, b gloweval.SDF2) gloweval.SDF2 {
	if a == nil || b == nil {
		bld.nilsdf("Intersect2D")
	}
	return &intersect2D{s1: a, s2: b}
}

type intersect2D struct {
	s1, s2 gloweval.SDF2 // Performs s1 ^ s2.
}

func (u *intersect2D) Evaluate(pos []ms2.Vec, dist, emissive []float32, userData any) error {
	return binop(u.s1, u.s2, Intersect, pos, dist, emissive, userData)
}

// Subtract2D is the SDF difference of a-b using max(a,-b). The result always
// emits with the emissive of a. Does not produce an exact SDF.
func (bld *Builder) Subtract2D(a, b gloweval.SDF2) gloweval.SDF2 {
	if a == nil || b == nil {
		bld.nilsdf("Subtract2D")
	}
	return &subtract2D{s1: a, s2: b}
}

type subtract2D struct {
	s1, s2 gloweval.SDF2 // Performs s1-s2.
}

func (s *subtract2D) Evaluate(pos []ms2.Vec, dist, emissive []float32, userData any) error {
	return binop(s.s1, s.s2, Subtract, pos, dist, emissive, userData)
}

// SubtractDerived2D is the SDF difference of a-b computed as the intersection of a
// with the complement of b. See [SubtractDerived] for how its emissive differs from [Builder.Subtract2D].
func (bld *Builder) SubtractDerived2D(a, b gloweval.SDF2) gloweval.SDF2 {
	if a == nil || b == nil {
		bld.nilsdf("SubtractDerived2D")
	}
	return &subtractDerived2D{s1: a, s2: b}
}

type subtractDerived2D struct {
	s1, s2 gloweval.SDF2
}

func (s *subtractDerived2D) Evaluate(pos []ms2.Vec, dist, emissive []float32, userData any) error {
	return binop(s.s1, s.s2, SubtractDerived, pos, dist, emissive, userData)
}

// Complement2D turns the shape inside out by negating its distance.
// Complementing a complement returns the original shape.
func (bld *Builder) Complement2D(s gloweval.SDF2) gloweval.SDF2 {
	if s == nil {
		bld.nilsdf("Complement2D")
	}
	if c, ok := s.(*complement2D); ok {
		return c.s
	}
	return &complement2D{s: s}
}

type complement2D struct {
	s gloweval.SDF2
}

func (c *complement2D) Evaluate(pos []ms2.Vec, dist, emissive []float32, userData any) error {
	err := c.s.Evaluate(pos, dist, emissive, userData)
	if err != nil {
		return err
	}
	for i, d := range dist {
		dist[i] = -d
	}
	return nil
}

// Translate2D moves the SDF s in the given direction. Emissive values are unchanged.
func (bld *Builder) Translate2D(s gloweval.SDF2, dirX, dirY float32) gloweval.SDF2 {
	if s == nil {
		bld.nilsdf("Translate2D")
	}
	if isBadFloat(dirX, dirY) {
		bld.shapeErrorf("NaN or Inf argument to Translate2D")
	}
	return &translate2D{s: s, p: ms2.Vec{X: dirX, Y: dirY}}
}

type translate2D struct {
	s gloweval.SDF2
	p ms2.Vec
}

func (t *translate2D) Evaluate(pos []ms2.Vec, dist, emissive []float32, userData any) error {
	vp, err := gloweval.GetVecPool(userData)
	if err != nil {
		return err
	}
	transformed := vp.V2.Acquire(len(pos))
	defer vp.V2.Release(transformed)
	T := t.p
	for i, p := range pos {
		transformed[i] = ms2.Sub(p, T)
	}
	return t.s.Evaluate(transformed, dist, emissive, userData)
}

// Scale2D scales s by scaleFactor around the origin. The distance is scaled
// along with the shape so the result is still an exact SDF if s was.
func (bld *Builder) Scale2D(s gloweval.SDF2, scale float32) gloweval.SDF2 {
	if s == nil {
		bld.nilsdf("Scale2D")
	}
	if !(scale > epstol) || math32.IsInf(scale, 1) {
		bld.shapeErrorf("bad scale factor %g", scale)
	}
	return &scale2D{s: s, scale: scale}
}

type scale2D struct {
	s     gloweval.SDF2
	scale float32
}

func (c *scale2D) Evaluate(pos []ms2.Vec, dist, emissive []float32, userData any) error {
	vp, err := gloweval.GetVecPool(userData)
	if err != nil {
		return err
	}
	posTransf := vp.V2.Acquire(len(pos))
	defer vp.V2.Release(posTransf)
	invScale := 1. / c.scale
	for i, p := range pos {
		posTransf[i] = ms2.Scale(invScale, p)
	}
	err = c.s.Evaluate(posTransf, dist, emissive, userData)
	scale := c.scale
	for i, d := range dist {
		dist[i] = d * scale
	}
	return err
}
