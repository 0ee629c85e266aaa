package textsdf

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/golang/freetype/truetype"
	"github.com/soypat/glgl/math/ms2"
	"github.com/soypat/glowsdf"
	"github.com/soypat/glowsdf/gloweval"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

const firstBasic = '!'
const lastBasic = '~'

type FontConfig struct {
	// RelativeGlyphTolerance sets the permissible curve tolerance for glyphs. Must be between 0..1. If zero a reasonable value is chosen.
	RelativeGlyphTolerance float32
}

// TextConfig sets where and how a line of text is drawn.
type TextConfig struct {
	// X and Y locate the start of the baseline in scene coordinates.
	X, Y float32
	// Height is the scene size of one em. Text grows towards negative Y
	// so that it reads upright in rendered images.
	Height float32
	// Thickness is the radius of the outline strokes.
	Thickness float32
	Emissive  float32
}

// Font implements font parsing and glyph outline generation. Text is drawn
// as closed chains of capsules along every glyph contour, like a neon sign.
type Font struct {
	ttf truetype.Font
	gb  truetype.GlyphBuf
	// basicGlyphs optimized array access for common ASCII glyphs.
	basicGlyphs [lastBasic - firstBasic + 1]glyph
	// Other kinds of glyphs.
	otherGlyphs map[rune]glyph
	reltol      float32 // Set by config or reset call if zeroed.
}

type glyph struct {
	// contours are closed polylines in em units.
	contours [][]ms2.Vec
}

func (f *Font) Configure(cfg FontConfig) error {
	if cfg.RelativeGlyphTolerance < 0 || cfg.RelativeGlyphTolerance >= 1 {
		return errors.New("invalid RelativeGlyphTolerance")
	}
	f.reltol = cfg.RelativeGlyphTolerance
	f.reset()
	return nil
}

// LoadTTFBytes loads a TTF file blob into f. After calling Load the Font is ready to generate text SDFs.
func (f *Font) LoadTTFBytes(ttf []byte) error {
	font, err := truetype.Parse(ttf)
	if err != nil {
		return err
	}
	f.reset()
	f.ttf = *font
	return nil
}

// LoadGoRegular loads the Go Regular font into f.
func (f *Font) LoadGoRegular() error {
	return f.LoadTTFBytes(goregular.TTF)
}

// reset resets most internal state of Font without removing underlying assigned font.
func (f *Font) reset() {
	for i := range f.basicGlyphs {
		f.basicGlyphs[i] = glyph{}
	}
	if f.otherGlyphs == nil {
		f.otherGlyphs = make(map[rune]glyph)
	} else {
		clear(f.otherGlyphs)
	}
	if f.reltol == 0 {
		f.reltol = 0.15
	}
}

// TextLine returns a single line of glowing text outlines.
// TextLine takes kerning and advance width into account for letter spacing.
// Glyphs are built in em units, placed along the line and the whole line is
// then scaled to cfg.Height and moved to the baseline start.
func (f *Font) TextLine(bld *glowsdf.Builder, s string, cfg TextConfig) (gloweval.SDF2, error) {
	if !(cfg.Height > 0) || cfg.Thickness < 0 {
		return nil, errors.New("text height must be positive and thickness not negative")
	}
	var shapes []gloweval.SDF2
	scale := f.scale()
	scalout := f.scaleout()
	radius := cfg.Thickness / cfg.Height
	var idxPrev truetype.Index
	var xOfs int64
	for ic, c := range s {
		if !unicode.IsGraphic(c) {
			return nil, fmt.Errorf("char %q not graphic", c)
		}
		idx := f.ttf.Index(c)
		hm := f.ttf.HMetric(scale, idx)
		if unicode.IsSpace(c) {
			if c == '\t' {
				hm.AdvanceWidth *= 4
			}
			xOfs += int64(hm.AdvanceWidth)
			continue
		}
		g, err := f.glyph(c)
		if err != nil {
			return nil, fmt.Errorf("char %q: %w", c, err)
		}
		if ic > 0 {
			xOfs += int64(f.ttf.Kern(scale, idxPrev, idx))
		}
		idxPrev = idx
		charshape := glyphStrokes(bld, g, radius, cfg.Emissive)
		if charshape != nil {
			shapes = append(shapes, bld.Translate2D(charshape, float32(xOfs)*scalout, 0))
		}
		xOfs += int64(hm.AdvanceWidth)
	}
	var line gloweval.SDF2
	switch len(shapes) {
	case 0:
		// Only whitespace.
		return nil, errors.New("no text provided")
	case 1:
		line = shapes[0]
	default:
		line = bld.Union2D(shapes...)
	}
	line = bld.Translate2D(bld.Scale2D(line, cfg.Height), cfg.X, cfg.Y)
	return line, bld.Err()
}

// glyphStrokes draws every contour edge of g as a capsule in em units with Y pointing down.
func glyphStrokes(bld *glowsdf.Builder, g glyph, radius, emissive float32) gloweval.SDF2 {
	var strokes []gloweval.SDF2
	for _, contour := range g.contours {
		for i, p0 := range contour {
			p1 := contour[(i+1)%len(contour)]
			if p0 == p1 {
				continue
			}
			strokes = append(strokes, bld.NewCapsule(p0.X, -p0.Y, p1.X, -p1.Y, radius, emissive))
		}
	}
	switch len(strokes) {
	case 0:
		return nil
	case 1:
		return strokes[0]
	}
	return bld.Union2D(strokes...)
}

// Outline returns the closed contours of a character in em units with Y pointing up.
// The returned slices must not be modified.
func (f *Font) Outline(c rune) ([][]ms2.Vec, error) {
	g, err := f.glyph(c)
	return g.contours, err
}

// Kern returns the horizontal adjustment for the given glyph pair. A positive kern means to move the glyphs further apart.
func (f *Font) Kern(c0, c1 rune) float32 {
	return float32(f.ttf.Kern(f.scale(), f.ttf.Index(c0), f.ttf.Index(c1))) * f.scaleout()
}

// AdvanceWidth returns the horizontal pen advance of the character in em units.
func (f *Font) AdvanceWidth(c rune) float32 {
	return float32(f.ttf.HMetric(f.scale(), f.ttf.Index(c)).AdvanceWidth) * f.scaleout()
}

func (f *Font) glyph(c rune) (g glyph, err error) {
	if c >= firstBasic && c <= lastBasic {
		// Basic ASCII glyph case.
		g = f.basicGlyphs[c-firstBasic]
		if g.contours == nil {
			g, err = f.makeGlyph(c)
			if err != nil {
				return glyph{}, err
			}
			f.basicGlyphs[c-firstBasic] = g
		}
		return g, nil
	}
	// Unicode or other glyph.
	g, ok := f.otherGlyphs[c]
	if !ok {
		g, err = f.makeGlyph(c)
		if err != nil {
			return glyph{}, err
		}
		f.otherGlyphs[c] = g
	}
	return g, nil
}

// scale loads glyphs so that one em spans FUnitsPerEm fixed point units.
func (f *Font) scale() fixed.Int26_6 {
	return fixed.Int26_6(f.ttf.FUnitsPerEm())
}

// scaleout converts fixed point glyph units to em units.
func (f *Font) scaleout() float32 {
	return 1. / float32(f.ttf.FUnitsPerEm())
}

func (f *Font) makeGlyph(char rune) (glyph, error) {
	if f.ttf.FUnitsPerEm() == 0 {
		return glyph{}, errors.New("no font loaded")
	}
	g := &f.gb
	err := g.Load(&f.ttf, f.scale(), f.ttf.Index(char), font.HintingNone)
	if err != nil {
		return glyph{}, err
	}
	scaleout := f.scaleout()
	var gl glyph
	start := 0
	for _, end := range g.Ends {
		contour := glyphContour(g.Points[start:end], f.reltol, scaleout)
		start = end
		if len(contour) >= 2 {
			gl.contours = append(gl.contours, contour)
		}
	}
	if len(gl.contours) == 0 {
		return glyph{}, errors.New("glyph has no outline")
	}
	return gl, nil
}

// glyphContour flattens a closed TrueType contour into a polyline. Quadratic
// segments are sampled with the given relative tolerance.
func glyphContour(points []truetype.Point, tol, scale float32) []ms2.Vec {
	sampler := ms2.Spline3Sampler{Spline: quadBezier, Tolerance: tol}
	n := len(points)
	var poly []ms2.Vec
	i := 0
	for i < n {
		p0, p1, p2 := points[i], points[(i+1)%n], points[(i+2)%n]
		v0, v1, v2 := p2v(p0, scale), p2v(p1, scale), p2v(p2, scale)
		implicit0 := ms2.Scale(0.5, ms2.Add(v0, v1))
		implicit1 := ms2.Scale(0.5, ms2.Add(v1, v2))
		switch onbits3(p0, p1, p2) {
		case 0b010, 0b110, 0b011, 0b111:
			// Straight line to the next on-curve point.
			poly = append(poly, v0)
			i++
			continue

		case 0b000:
			// implicit-off-implicit.
			sampler.SetSplinePoints(implicit0, v1, implicit1, ms2.Vec{})
			v0 = implicit0
			i++

		case 0b001:
			// on-off-implicit.
			sampler.SetSplinePoints(v0, v1, implicit1, ms2.Vec{})
			i++

		case 0b100:
			// implicit-off-on.
			sampler.SetSplinePoints(implicit0, v1, v2, ms2.Vec{})
			v0 = implicit0
			i += 2

		case 0b101:
			// On-off-on.
			sampler.SetSplinePoints(v0, v1, v2, ms2.Vec{})
			i += 2
		}
		poly = append(poly, v0) // Append start point.
		poly = sampler.SampleBisect(poly, 4)
	}
	return poly
}

func p2v(p truetype.Point, scale float32) ms2.Vec {
	return ms2.Vec{
		X: float32(p.X) * scale,
		Y: float32(p.Y) * scale,
	}
}

var quadBezier = ms2.NewSpline3([]float32{
	1, 0, 0, 0,
	-2, 2, 0, 0,
	1, -2, 1, 0,
	0, 0, 0, 0,
})

func onbits3(p0, p1, p2 truetype.Point) uint32 {
	return p0.Flags&1 |
		(p1.Flags&1)<<1 |
		(p2.Flags&1)<<2
}
