package scenes

import (
	"fmt"
	"sort"

	"github.com/soypat/glowsdf"
	"github.com/soypat/glowsdf/forge/textsdf"
	"github.com/soypat/glowsdf/gloweval"
)

// SceneFunc builds a scene with the given builder.
type SceneFunc func(bld *glowsdf.Builder) (gloweval.SDF2, error)

var registry = map[string]SceneFunc{
	"circles":    Circles,
	"crescent":   Crescent,
	"capsules":   Capsules,
	"pill":       Pill,
	"halfmoon":   Halfmoon,
	"neon":       Neon,
	"sierpinski": Sierpinski,
}

// Names returns the names of all registered scenes in lexical order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build builds the scene registered under name.
func Build(bld *glowsdf.Builder, name string) (gloweval.SDF2, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene %q, available scenes: %v", name, Names())
	}
	return fn(bld)
}

// Circles is a bright circle with a dim overlapping circle carved out of it
// using the direct subtraction, so the crescent edge glows with the bright emissive.
func Circles(bld *glowsdf.Builder) (gloweval.SDF2, error) {
	c1 := bld.NewCircle(0.4, 0.5, 0.2, 1.0)
	c2 := bld.NewCircle(0.6, 0.5, 0.2, 0.1)
	return bld.Subtract2D(c1, c2), bld.Err()
}

// Crescent is the same shape as [Circles] built with the derived subtraction,
// so the carved edge glows with the dim circle's emissive.
func Crescent(bld *glowsdf.Builder) (gloweval.SDF2, error) {
	c1 := bld.NewCircle(0.4, 0.5, 0.2, 1.0)
	c2 := bld.NewCircle(0.6, 0.5, 0.2, 0.1)
	return bld.SubtractDerived2D(c1, c2), bld.Err()
}

// Capsules is a diamond of four thin capsules around a dark circle that casts a shadow.
// One of the capsules is brighter than the rest.
func Capsules(bld *glowsdf.Builder) (gloweval.SDF2, error) {
	const r = 0.005
	seg1 := bld.NewCapsule(0.05, 0.45, 0.45, 0.05, r, 0.7)
	seg2 := bld.NewCapsule(0.55, 0.05, 0.95, 0.45, r, 1.7)
	seg3 := bld.NewCapsule(0.95, 0.55, 0.55, 0.95, r, 0.7)
	seg4 := bld.NewCapsule(0.45, 0.95, 0.05, 0.55, r, 0.7)
	c := bld.NewCircle(0.5, 0.5, 0.1, 0)
	return bld.Union2D(bld.Union2D(seg1, seg2), bld.Union2D(seg3, seg4), c), bld.Err()
}

// Pill is a ring-like light with a small dim circle carved out, a thin bright capsule
// and a dark circle in the middle.
func Pill(bld *glowsdf.Builder) (gloweval.SDF2, error) {
	a := bld.NewCircle(0.7, 0.7, 0.2, 2.0)
	b := bld.NewCircle(0.65, 0.65, 0.05, 0.5)
	c := bld.NewCapsule(0.04, 0.43, 0.52, 0.08, 0.002, 2.0)
	d := bld.NewCircle(0.5, 0.5, 0.05, 0)
	return bld.Union2D(bld.SubtractDerived2D(a, b), bld.Union2D(c, d)), bld.Err()
}

// Halfmoon is a circle cut in half by a plane.
func Halfmoon(bld *glowsdf.Builder) (gloweval.SDF2, error) {
	c := bld.NewCircle(0.5, 0.5, 0.25, 1.0)
	p := bld.NewPlane(0.5, 0.5, 1, 0, 0.4)
	return bld.Intersect2D(c, p), bld.Err()
}

// Sierpinski is the triangle fractal with [glowsdf.DefaultSierpinskiConfig].
func Sierpinski(bld *glowsdf.Builder) (gloweval.SDF2, error) {
	return bld.NewSierpinski(glowsdf.DefaultSierpinskiConfig()), bld.Err()
}

// Neon is a glowing text sign in Go Regular hanging over a dark bar that shadows the floor.
func Neon(bld *glowsdf.Builder) (gloweval.SDF2, error) {
	var f textsdf.Font
	err := f.LoadGoRegular()
	if err != nil {
		return nil, err
	}
	text, err := f.TextLine(bld, "glow", textsdf.TextConfig{
		X: 0.12, Y: 0.55, Height: 0.36, Thickness: 0.003, Emissive: 1.6,
	})
	if err != nil {
		return nil, err
	}
	bar := bld.NewCapsule(0.15, 0.7, 0.85, 0.7, 0.01, 0)
	return bld.Union2D(text, bar), bld.Err()
}
