package scenes

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/glowsdf"
	"github.com/soypat/glowsdf/forge/textsdf"
	"github.com/soypat/glowsdf/gloweval"
)

// Description is a scene tree as data. Each node is either a primitive, a CSG
// operation over its Children, a Sierpinski fractal or a line of text. Example:
//
//	{"op":"subtract","children":[
//		{"op":"circle","center":[0.4,0.5],"radius":0.2,"emissive":1},
//		{"op":"circle","center":[0.6,0.5],"radius":0.2,"emissive":0.1}
//	]}
type Description struct {
	// Op is one of circle, plane, segment, capsule, sierpinski, text, union,
	// intersect, subtract, subtract-derived or complement.
	Op       string        `json:"op"`
	Emissive float32       `json:"emissive,omitempty"`
	Center   [2]float32    `json:"center,omitempty"`
	Radius   float32       `json:"radius,omitempty"`
	Point    [2]float32    `json:"point,omitempty"`
	Normal   [2]float32    `json:"normal,omitempty"`
	A        [2]float32    `json:"a,omitempty"`
	B        [2]float32    `json:"b,omitempty"`
	Children []Description `json:"children,omitempty"`

	// Sierpinski fields. Center, Radius and Emissive apply to the outermost triangle.
	Depth          int     `json:"depth,omitempty"`
	Up             *bool   `json:"up,omitempty"`
	StrokeEmissive float32 `json:"strokeEmissive,omitempty"`
	StrokeLength   float32 `json:"strokeLength,omitempty"`
	Thickness      float32 `json:"thickness,omitempty"`

	// Text fields. The baseline starts at Point and Thickness is the stroke radius.
	Text   string  `json:"text,omitempty"`
	Height float32 `json:"height,omitempty"`
}

// Parse decodes a JSON scene description. Unknown fields are rejected.
func Parse(r io.Reader) (Description, error) {
	var d Description
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	err := dec.Decode(&d)
	if err != nil {
		return Description{}, fmt.Errorf("decoding scene description: %w", err)
	}
	return d, nil
}

// Build builds the scene tree described by d. Shape errors are accumulated in
// bld and returned joined with structural errors of the description.
func (d Description) Build(bld *glowsdf.Builder) (s gloweval.SDF2, err error) {
	if !bld.NoDimensionPanic {
		// Bad dimensions in user provided descriptions are errors, not programming mistakes.
		bld.NoDimensionPanic = true
		defer func() { bld.NoDimensionPanic = false }()
	}
	s, err = d.build(bld, "root")
	if err != nil {
		return nil, err
	}
	return s, bld.Err()
}

func (d Description) build(bld *glowsdf.Builder, path string) (gloweval.SDF2, error) {
	nchild := len(d.Children)
	switch d.Op {
	case "circle", "plane", "segment", "capsule", "sierpinski", "text":
		if nchild != 0 {
			return nil, fmt.Errorf("%s: primitive %q takes no children", path, d.Op)
		}
	case "union":
		if nchild < 2 {
			return nil, fmt.Errorf("%s: union needs at least 2 children, got %d", path, nchild)
		}
	case "intersect", "subtract", "subtract-derived":
		if nchild != 2 {
			return nil, fmt.Errorf("%s: %s needs exactly 2 children, got %d", path, d.Op, nchild)
		}
	case "complement":
		if nchild != 1 {
			return nil, fmt.Errorf("%s: complement needs exactly 1 child, got %d", path, nchild)
		}
	case "":
		return nil, fmt.Errorf("%s: missing op", path)
	default:
		return nil, fmt.Errorf("%s: unknown op %q", path, d.Op)
	}

	children := make([]gloweval.SDF2, nchild)
	for i, child := range d.Children {
		var err error
		children[i], err = child.build(bld, fmt.Sprintf("%s.%s[%d]", path, d.Op, i))
		if err != nil {
			return nil, err
		}
	}

	switch d.Op {
	case "circle":
		return bld.NewCircle(d.Center[0], d.Center[1], d.Radius, d.Emissive), nil
	case "plane":
		return bld.NewPlane(d.Point[0], d.Point[1], d.Normal[0], d.Normal[1], d.Emissive), nil
	case "segment":
		return bld.NewSegment(d.A[0], d.A[1], d.B[0], d.B[1], d.Emissive), nil
	case "capsule":
		return bld.NewCapsule(d.A[0], d.A[1], d.B[0], d.B[1], d.Radius, d.Emissive), nil
	case "sierpinski":
		return bld.NewSierpinski(d.sierpinskiConfig()), nil
	case "text":
		var f textsdf.Font
		err := f.LoadGoRegular()
		if err != nil {
			return nil, err
		}
		s, err := f.TextLine(bld, d.Text, textsdf.TextConfig{
			X: d.Point[0], Y: d.Point[1], Height: d.Height, Thickness: d.Thickness, Emissive: d.Emissive,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return s, nil
	case "union":
		return bld.Union2D(children...), nil
	case "intersect":
		return bld.Intersect2D(children[0], children[1]), nil
	case "subtract":
		return bld.Subtract2D(children[0], children[1]), nil
	case "subtract-derived":
		return bld.SubtractDerived2D(children[0], children[1]), nil
	case "complement":
		return bld.Complement2D(children[0]), nil
	}
	return nil, errors.New("unreachable")
}

// sierpinskiConfig fills unset fields from [glowsdf.DefaultSierpinskiConfig].
// Depth is taken as is since zero is a valid depth.
func (d Description) sierpinskiConfig() glowsdf.SierpinskiConfig {
	cfg := glowsdf.DefaultSierpinskiConfig()
	cfg.Depth = d.Depth
	if d.Center != [2]float32{} {
		cfg.Center = ms2.Vec{X: d.Center[0], Y: d.Center[1]}
	}
	if d.Radius != 0 {
		cfg.Radius = d.Radius
	}
	if d.Up != nil {
		cfg.Up = *d.Up
	}
	if d.Emissive != 0 {
		cfg.Emissive = d.Emissive
	}
	if d.StrokeEmissive != 0 {
		cfg.StrokeEmissive = d.StrokeEmissive
	}
	if d.StrokeLength != 0 {
		cfg.StrokeLength = d.StrokeLength
	}
	if d.Thickness != 0 {
		cfg.Thickness = d.Thickness
	}
	return cfg
}
