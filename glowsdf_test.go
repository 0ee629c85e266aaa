package glowsdf_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/glowsdf"
	"github.com/soypat/glowsdf/gloweval"
)

const tol = 1e-5

func randVec(rng *rand.Rand) ms2.Vec {
	return ms2.Vec{X: 2*rng.Float32() - 0.5, Y: 2*rng.Float32() - 0.5}
}

func randSample(rng *rand.Rand) glowsdf.Sample {
	return glowsdf.Sample{Dist: 2*rng.Float32() - 1, Emissive: 2 * rng.Float32()}
}

func TestPrimitivesZeroOnBoundary(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		theta := 2 * math.Pi * rng.Float32()
		s, c := math32.Sincos(theta)
		radial := ms2.Vec{X: c, Y: s}
		center := randVec(rng)
		r := 0.01 + rng.Float32()

		onCircle := ms2.Add(center, ms2.Scale(r, radial))
		if d := glowsdf.CircleSDF(onCircle, center, r); math32.Abs(d) > tol {
			t.Errorf("circle distance on boundary %g", d)
		}

		tangent := ms2.Vec{X: -radial.Y, Y: radial.X}
		onPlane := ms2.Add(center, ms2.Scale(2*rng.Float32()-1, tangent))
		if d := glowsdf.PlaneSDF(onPlane, center, radial); math32.Abs(d) > tol {
			t.Errorf("plane distance on boundary %g", d)
		}

		a, b := randVec(rng), randVec(rng)
		h := rng.Float32()
		onSegment := ms2.Add(a, ms2.Scale(h, ms2.Sub(b, a)))
		if d := glowsdf.SegmentSDF(onSegment, a, b); d > tol || d < 0 {
			t.Errorf("segment distance on boundary %g", d)
		}

		ab := ms2.Sub(b, a)
		normal := ms2.Scale(1/ms2.Norm(ab), ms2.Vec{X: -ab.Y, Y: ab.X})
		onCapsule := ms2.Add(onSegment, ms2.Scale(r, normal))
		if d := glowsdf.CapsuleSDF(onCapsule, a, b, r); math32.Abs(d) > tol {
			t.Errorf("capsule distance on boundary %g", d)
		}
	}
}

func TestCircleAtCenter(t *testing.T) {
	for _, r := range []float32{0.2, 1, 1e-3, 7.5} {
		c := ms2.Vec{X: 0.5, Y: 0.5}
		got := glowsdf.CircleSDF(c, c, r)
		if got != -r {
			t.Errorf("want exactly %g at center, got %g", -r, got)
		}
	}
}

func TestPlaneSigned(t *testing.T) {
	p := ms2.Vec{X: 0.5, Y: 0.5}
	n := ms2.Vec{X: 1}
	if d := glowsdf.PlaneSDF(ms2.Vec{X: 0.75, Y: 3}, p, n); math32.Abs(d-0.25) > tol {
		t.Error("want positive distance on normal side, got", d)
	}
	if d := glowsdf.PlaneSDF(ms2.Vec{X: 0.25, Y: -3}, p, n); math32.Abs(d+0.25) > tol {
		t.Error("want negative distance behind plane, got", d)
	}
}

func TestSegmentDegenerate(t *testing.T) {
	a := ms2.Vec{X: 0.3, Y: 0.3}
	p := ms2.Vec{X: 0.6, Y: 0.7}
	got := glowsdf.SegmentSDF(p, a, a)
	want := ms2.Norm(ms2.Sub(p, a))
	if math32.IsNaN(got) || math32.Abs(got-want) > tol {
		t.Errorf("degenerate segment: want %g, got %g", want, got)
	}
	if d := glowsdf.CapsuleSDF(p, a, a, 0.1); math32.Abs(d-(want-0.1)) > tol {
		t.Errorf("degenerate capsule: want %g, got %g", want-0.1, d)
	}
}

func TestSegmentClampsToEndpoints(t *testing.T) {
	a := ms2.Vec{X: 0, Y: 0}
	b := ms2.Vec{X: 1, Y: 0}
	tests := []struct {
		p    ms2.Vec
		want float32
	}{
		{p: ms2.Vec{X: -1, Y: 0}, want: 1},
		{p: ms2.Vec{X: 2, Y: 0}, want: 1},
		{p: ms2.Vec{X: 0.5, Y: 0.25}, want: 0.25},
		{p: ms2.Vec{X: 1.3, Y: 0.4}, want: 0.5},
	}
	for _, test := range tests {
		got := glowsdf.SegmentSDF(test.p, a, b)
		if math32.Abs(got-test.want) > tol {
			t.Errorf("segment distance at %v: want %g, got %g", test.p, test.want, got)
		}
	}
}

func TestComplementInvolution(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		a := randSample(rng)
		got := glowsdf.Complement(glowsdf.Complement(a))
		if got != a {
			t.Errorf("complement twice: want %v, got %v", a, got)
		}
		if c := glowsdf.Complement(a); c.Dist != -a.Dist || c.Emissive != a.Emissive {
			t.Errorf("complement of %v: got %v", a, c)
		}
	}
}

func TestUnionPicksSmaller(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		a, b := randSample(rng), randSample(rng)
		if a.Dist == b.Dist {
			continue
		}
		want := a
		if b.Dist < a.Dist {
			want = b
		}
		if got := glowsdf.Union(a, b); got != want {
			t.Errorf("Union(%v,%v): want %v, got %v", a, b, want, got)
		}
	}
}

// The emissive of an intersection comes from the operand with the smaller
// distance even though the resulting distance is the larger one.
func TestIntersectEmissiveFromSmallerDistance(t *testing.T) {
	a := glowsdf.Sample{Dist: 0.5, Emissive: 1}
	b := glowsdf.Sample{Dist: -0.2, Emissive: 0.25}
	want := glowsdf.Sample{Dist: 0.5, Emissive: 0.25}
	if got := glowsdf.Intersect(a, b); got != want {
		t.Errorf("Intersect(a,b): want %v, got %v", want, got)
	}
	if got := glowsdf.Intersect(b, a); got != want {
		t.Errorf("Intersect(b,a): want %v, got %v", want, got)
	}
	// Ties keep the emissive of the first operand.
	c := glowsdf.Sample{Dist: 0.5, Emissive: 3}
	if got := glowsdf.Intersect(a, c); got != a {
		t.Errorf("Intersect tie: want %v, got %v", a, got)
	}
}

func TestSubtractForms(t *testing.T) {
	a := glowsdf.Sample{Dist: 0.3, Emissive: 1}
	b := glowsdf.Sample{Dist: 0.1, Emissive: 0.1} // -b.Dist = -0.1 < a.Dist.

	direct := glowsdf.Subtract(a, b)
	if direct != (glowsdf.Sample{Dist: 0.3, Emissive: 1}) {
		t.Error("direct subtract got", direct)
	}
	derived := glowsdf.SubtractDerived(a, b)
	if derived != (glowsdf.Sample{Dist: 0.3, Emissive: 0.1}) {
		t.Error("derived subtract got", derived)
	}

	// Where the complement of b determines the distance both forms agree.
	b = glowsdf.Sample{Dist: -0.5, Emissive: 0.1}
	direct = glowsdf.Subtract(a, b)
	derived = glowsdf.SubtractDerived(a, b)
	if direct.Dist != 0.5 || derived.Dist != 0.5 {
		t.Errorf("want distance 0.5, got direct=%g derived=%g", direct.Dist, derived.Dist)
	}
	if direct.Emissive != 1 || derived.Emissive != 1 {
		t.Errorf("want emissive 1, got direct=%g derived=%g", direct.Emissive, derived.Emissive)
	}
}

func TestTreeMatchesAlgebra(t *testing.T) {
	var bld glowsdf.Builder
	c1 := glowsdf.Sample{Emissive: 1}
	c2 := glowsdf.Sample{Emissive: 0.1}
	cp := glowsdf.Sample{Emissive: 2}
	pl := glowsdf.Sample{Emissive: 0.4}
	circle1 := bld.NewCircle(0.4, 0.5, 0.2, c1.Emissive)
	circle2 := bld.NewCircle(0.6, 0.5, 0.2, c2.Emissive)
	capsule := bld.NewCapsule(0.1, 0.1, 0.9, 0.2, 0.01, cp.Emissive)
	plane := bld.NewPlane(0.5, 0.5, 0, 2, pl.Emissive) // Normal gets normalized.

	shape := bld.Union2D(
		bld.Subtract2D(circle1, circle2),
		bld.SubtractDerived2D(circle2, circle1),
		bld.Intersect2D(capsule, bld.Complement2D(plane)),
	)
	if err := bld.Err(); err != nil {
		t.Fatal(err)
	}

	rng := rand.New(rand.NewSource(1))
	const n = 256
	pos := make([]ms2.Vec, n)
	for i := range pos {
		pos[i] = randVec(rng)
	}
	dist := make([]float32, n)
	emi := make([]float32, n)
	var vp gloweval.VecPool
	err := shape.Evaluate(pos, dist, emi, &vp)
	if err != nil {
		t.Fatal(err)
	}
	if err := vp.AssertAllReleased(); err != nil {
		t.Error(err)
	}
	for i, p := range pos {
		c1.Dist = glowsdf.CircleSDF(p, ms2.Vec{X: 0.4, Y: 0.5}, 0.2)
		c2.Dist = glowsdf.CircleSDF(p, ms2.Vec{X: 0.6, Y: 0.5}, 0.2)
		cp.Dist = glowsdf.CapsuleSDF(p, ms2.Vec{X: 0.1, Y: 0.1}, ms2.Vec{X: 0.9, Y: 0.2}, 0.01)
		pl.Dist = glowsdf.PlaneSDF(p, ms2.Vec{X: 0.5, Y: 0.5}, ms2.Vec{Y: 1})
		want := glowsdf.Union(
			glowsdf.Union(glowsdf.Subtract(c1, c2), glowsdf.SubtractDerived(c2, c1)),
			glowsdf.Intersect(cp, glowsdf.Complement(pl)),
		)
		if math32.Abs(dist[i]-want.Dist) > tol || emi[i] != want.Emissive {
			t.Fatalf("at %v: want %v, got {%g %g}", p, want, dist[i], emi[i])
		}
	}
}

func TestComplement2DUnwraps(t *testing.T) {
	var bld glowsdf.Builder
	c := bld.NewCircle(0, 0, 1, 1)
	if bld.Complement2D(bld.Complement2D(c)) != c {
		t.Error("complement of complement should return original shape")
	}
}

func TestUnionRequiresVecPool(t *testing.T) {
	var bld glowsdf.Builder
	u := bld.Union2D(bld.NewCircle(0, 0, 1, 1), bld.NewCircle(1, 0, 1, 1))
	pos := []ms2.Vec{{}}
	err := u.Evaluate(pos, make([]float32, 1), make([]float32, 1), nil)
	if err == nil {
		t.Error("expected error evaluating union without VecPool")
	}
}

func TestBuilderErrors(t *testing.T) {
	bld := glowsdf.Builder{NoDimensionPanic: true}
	bld.NewCircle(0, 0, -1, 1)
	bld.NewPlane(0, 0, 0, 0, 1)
	bld.NewCapsule(0, 0, 1, 1, -0.1, 1)
	bld.NewSegment(float32(math.NaN()), 0, 1, 1, 1)
	bld.NewSierpinski(glowsdf.SierpinskiConfig{Depth: -1, Radius: 1})
	if bld.Err() == nil {
		t.Fatal("expected accumulated errors")
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic with NoDimensionPanic unset")
		}
	}()
	var panicky glowsdf.Builder
	panicky.NewCircle(0, 0, 0, 1)
}

func TestSierpinskiStructure(t *testing.T) {
	for depth := 0; depth <= 4; depth++ {
		var bld glowsdf.Builder
		cfg := glowsdf.DefaultSierpinskiConfig()
		cfg.Depth = depth
		s := bld.NewSierpinski(cfg)
		if err := bld.Err(); err != nil {
			t.Fatal(err)
		}
		u, ok := s.(*glowsdf.OpUnion2D)
		if !ok {
			t.Fatalf("depth %d: want *OpUnion2D, got %T", depth, s)
		}
		want := 6 * int(math.Pow(3, float64(depth)))
		if got := len(u.Joined()); got != want {
			t.Errorf("depth %d: want %d strokes, got %d", depth, want, got)
		}
	}
}

func TestSierpinskiLeafEmissive(t *testing.T) {
	var bld glowsdf.Builder
	cfg := glowsdf.DefaultSierpinskiConfig()
	cfg.Depth = 0
	cfg.Center = ms2.Vec{X: 0.5, Y: 0.5}
	cfg.Radius = 0.4
	s := bld.NewSierpinski(cfg)
	var vp gloweval.VecPool

	// Apex of an upwards triangle is above the centroid, at smaller Y.
	apex := ms2.Vec{X: 0.5, Y: 0.1}
	d, e, err := gloweval.EvaluateAt(s, apex, &vp)
	if err != nil {
		t.Fatal(err)
	}
	if d > 0 {
		t.Errorf("apex should be within stroke thickness, got distance %g", d)
	}

	// Halfway along the vertex stroke only the stroke is close.
	strokeMid := ms2.Vec{X: 0.5, Y: 0.1 - cfg.StrokeLength/2}
	d, e, err = gloweval.EvaluateAt(s, strokeMid, &vp)
	if err != nil {
		t.Fatal(err)
	}
	if d > 0 || e != cfg.StrokeEmissive {
		t.Errorf("vertex stroke: want emissive %g inside stroke, got d=%g e=%g", cfg.StrokeEmissive, d, e)
	}

	// Midpoint of the bottom edge belongs to an outline stroke.
	bottom := ms2.Vec{X: 0.5, Y: 0.5 + 0.4/2}
	d, e, err = gloweval.EvaluateAt(s, bottom, &vp)
	if err != nil {
		t.Fatal(err)
	}
	if d > 0 || e != cfg.Emissive {
		t.Errorf("outline: want emissive %g inside stroke, got d=%g e=%g", cfg.Emissive, d, e)
	}

	cfg.Up = false
	down := bld.NewSierpinski(cfg)
	d, _, _ = gloweval.EvaluateAt(down, ms2.Vec{X: 0.5, Y: 0.9}, &vp)
	if d > 0 {
		t.Errorf("apex of downwards triangle should be at larger Y, got distance %g", d)
	}
}

func TestSierpinskiCorners(t *testing.T) {
	cfg := glowsdf.DefaultSierpinskiConfig()
	R := float64(cfg.Radius)
	c := cfg.Center
	var outer [3]ms2.Vec
	for i := range outer {
		a := -math.Pi/2 + float64(i)*2*math.Pi/3
		outer[i] = ms2.Vec{X: c.X + float32(R*math.Cos(a)), Y: c.Y + float32(R*math.Sin(a))}
	}
	onFigure := append([]ms2.Vec{}, outer[:]...)
	for i := range outer {
		onFigure = append(onFigure, ms2.Scale(0.5, ms2.Add(outer[i], outer[(i+1)%3])))
	}
	for depth := 1; depth <= 4; depth++ {
		var bld glowsdf.Builder
		cfg.Depth = depth
		s := bld.NewSierpinski(cfg)
		var vp gloweval.VecPool
		for _, p := range onFigure {
			d, _, err := gloweval.EvaluateAt(s, p, &vp)
			if err != nil {
				t.Fatal(err)
			}
			if d > 0 {
				t.Errorf("depth %d: point %v of outer triangle off figure by %g", depth, p, d)
			}
		}
		// The central triangle is a hole with inradius R/4.
		d, _, err := gloweval.EvaluateAt(s, c, &vp)
		if err != nil {
			t.Fatal(err)
		}
		if d < float32(R/4)-2*cfg.Thickness {
			t.Errorf("depth %d: centroid should be in the central hole, got distance %g", depth, d)
		}
	}
}

func TestSierpinskiStrokeSideAlternates(t *testing.T) {
	cfg := glowsdf.DefaultSierpinskiConfig()
	apex := ms2.Vec{X: cfg.Center.X, Y: cfg.Center.Y - cfg.Radius}
	for depth := 0; depth <= 2; depth++ {
		var bld glowsdf.Builder
		cfg.Depth = depth
		s := bld.NewSierpinski(cfg)
		halfStroke := cfg.StrokeLength / float32(int(1)<<depth) / 2
		outside := ms2.Vec{X: apex.X, Y: apex.Y - halfStroke}
		inside := ms2.Vec{X: apex.X, Y: apex.Y + halfStroke}
		wantOn, wantOff := outside, inside
		if depth%2 == 1 {
			wantOn, wantOff = inside, outside
		}
		var vp gloweval.VecPool
		d, e, err := gloweval.EvaluateAt(s, wantOn, &vp)
		if err != nil {
			t.Fatal(err)
		}
		if d > 0 || e != cfg.StrokeEmissive {
			t.Errorf("depth %d: want vertex stroke at %v, got d=%g e=%g", depth, wantOn, d, e)
		}
		d, _, err = gloweval.EvaluateAt(s, wantOff, &vp)
		if err != nil {
			t.Fatal(err)
		}
		if wantOff == outside && d <= 0 {
			t.Errorf("depth %d: unexpected stroke outside apex at %v", depth, wantOff)
		} else if wantOff == inside && e == cfg.StrokeEmissive && d <= 0 {
			t.Errorf("depth %d: unexpected inward stroke at %v", depth, wantOff)
		}
	}
}

func TestTranslateScale2D(t *testing.T) {
	var bld glowsdf.Builder
	base := bld.NewCircle(0.2, 0.1, 0.1, 0.7)
	tests := []struct {
		got, want gloweval.SDF2
	}{
		{got: bld.Translate2D(base, 0.3, -0.2), want: bld.NewCircle(0.5, -0.1, 0.1, 0.7)},
		{got: bld.Scale2D(base, 2), want: bld.NewCircle(0.4, 0.2, 0.2, 0.7)},
		{got: bld.Translate2D(bld.Scale2D(base, 0.5), 1, 1), want: bld.NewCircle(1.1, 1.05, 0.05, 0.7)},
	}
	rng := rand.New(rand.NewSource(1))
	var vp gloweval.VecPool
	for i, test := range tests {
		for j := 0; j < 50; j++ {
			p := randVec(rng)
			gd, ge, err := gloweval.EvaluateAt(test.got, p, &vp)
			if err != nil {
				t.Fatal(err)
			}
			wd, we, err := gloweval.EvaluateAt(test.want, p, &vp)
			if err != nil {
				t.Fatal(err)
			}
			if math32.Abs(gd-wd) > tol || ge != we {
				t.Fatalf("case %d at %v: got (%g,%g), want (%g,%g)", i, p, gd, ge, wd, we)
			}
		}
	}
	if err := vp.AssertAllReleased(); err != nil {
		t.Error(err)
	}

	bld.NoDimensionPanic = true
	bld.Scale2D(base, 0)
	bld.Translate2D(base, float32(math.NaN()), 0)
	if bld.Err() == nil {
		t.Error("expected errors for bad transform arguments")
	}
}
