package glowrender

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math/rand/v2"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/glgl/math/ms1"
	"github.com/soypat/glowsdf/gloweval"
)

// UnitView is the region of scene space rendered by default, the unit square.
var UnitView = ms2.Box{Max: ms2.Vec{X: 1, Y: 1}}

// ImageConfig configures an [ImageRenderer].
type ImageConfig struct {
	Width, Height int
	// SamplesPerPixel is the number of rays cast per pixel.
	SamplesPerPixel int
	Tracer          TracerConfig
	// View is the region of scene space mapped onto the image. Pixel (x,y)
	// samples View.Min + (x/Width, y/Height)·size. Zero value is [UnitView].
	View ms2.Box
	// Seed selects the random streams. Each row uses the stream (Seed, row), so
	// renders are reproducible and rows do not depend on each other.
	Seed uint64
	// OnRow, if set, is called after each row is rendered.
	OnRow func(row int)
}

// ImageRenderer is the pixel driver: it samples every pixel of an image in
// row-major order and writes grayscale RGB bytes.
type ImageRenderer struct {
	cfg     ImageConfig
	pcg     *rand.PCG
	sampler *Sampler
}

// NewImageRenderer instances a renderer of the scene with the given configuration.
func NewImageRenderer(sdf gloweval.SDF2, cfg ImageConfig) (*ImageRenderer, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid image dimensions %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.View == (ms2.Box{}) {
		cfg.View = UnitView
	}
	tr, err := NewTracer(sdf, cfg.Tracer)
	if err != nil {
		return nil, err
	}
	pcg := rand.NewPCG(cfg.Seed, 0)
	sampler, err := NewSampler(tr, cfg.SamplesPerPixel, rand.New(pcg))
	if err != nil {
		return nil, err
	}
	return &ImageRenderer{cfg: cfg, pcg: pcg, sampler: sampler}, nil
}

// BufferSize returns the length of the RGB buffer required by [ImageRenderer.Render].
func (ir *ImageRenderer) BufferSize() int {
	return 3 * ir.cfg.Width * ir.cfg.Height
}

// Render renders the whole image into dst as row-major RGB triplets.
func (ir *ImageRenderer) Render(dst []byte) error {
	if len(dst) != ir.BufferSize() {
		return fmt.Errorf("want buffer of length %d, got %d", ir.BufferSize(), len(dst))
	}
	stride := 3 * ir.cfg.Width
	for row := 0; row < ir.cfg.Height; row++ {
		err := ir.RenderRow(row, dst[row*stride:(row+1)*stride])
		if err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
		if ir.cfg.OnRow != nil {
			ir.cfg.OnRow(row)
		}
	}
	return nil
}

// RenderRow renders a single row into dst which must hold 3·Width bytes.
// The result does not depend on which rows were rendered before.
func (ir *ImageRenderer) RenderRow(row int, dst []byte) error {
	w, h := ir.cfg.Width, ir.cfg.Height
	if row < 0 || row >= h {
		return errors.New("row out of range")
	} else if len(dst) != 3*w {
		return errors.New("row buffer must hold 3 bytes per pixel")
	}
	ir.pcg.Seed(ir.cfg.Seed, uint64(row))
	view := ir.cfg.View
	size := ms2.Sub(view.Max, view.Min)
	y := view.Min.Y + size.Y*float32(row)/float32(h)
	for col := 0; col < w; col++ {
		x := view.Min.X + size.X*float32(col)/float32(w)
		radiance, err := ir.sampler.Sample(ms2.Vec{X: x, Y: y})
		if err != nil {
			return err
		}
		v := Intensity(radiance)
		dst[3*col], dst[3*col+1], dst[3*col+2] = v, v, v
	}
	return nil
}

// Intensity maps a radiance estimate to a displayable byte, clamping to [0,255].
func Intensity(radiance float32) uint8 {
	if math32.IsNaN(radiance) {
		return 0
	}
	return uint8(ms1.Clamp(math32.Floor(radiance*255+0.5), 0, 255))
}

type setImage = interface {
	image.Image
	Set(x, y int, c color.Color)
}

// DistanceRenderer draws the raw distance field of a scene, which helps when
// authoring scenes since it shows shapes regardless of their emission.
type DistanceRenderer struct {
	conv func(dist, emissive float32) color.Color
	vp   gloweval.VecPool
	pos  []ms2.Vec
	dist []float32
	emi  []float32
}

// NewDistanceRenderer instances a new [DistanceRenderer]. A nil conversion
// function results in white for positive distances and the emissive value as gray
// for the interior of shapes.
func NewDistanceRenderer(evalBufferSize int, conversion func(dist, emissive float32) color.Color) (*DistanceRenderer, error) {
	if evalBufferSize <= 64 {
		return nil, errors.New("too small evaluation buffer size")
	}
	if conversion == nil {
		conversion = func(d, e float32) color.Color {
			switch {
			case math32.IsNaN(d) || math32.IsInf(d, 0):
				return color.RGBA{R: 255, A: 255}
			case d > 0:
				return color.White
			default:
				return color.Gray{Y: Intensity(e)}
			}
		}
	}
	return &DistanceRenderer{
		conv: conversion,
		pos:  make([]ms2.Vec, evalBufferSize),
		dist: make([]float32, evalBufferSize),
		emi:  make([]float32, evalBufferSize),
	}, nil
}

// Render maps view onto img and evaluates the SDF at every pixel, one row per evaluation.
func (dr *DistanceRenderer) Render(sdf gloweval.SDF2, view ms2.Box, img setImage) error {
	imgBB := img.Bounds()
	dxi := imgBB.Dx()
	dyi := imgBB.Dy()
	if len(dr.dist) < dxi {
		return fmt.Errorf("require evaluation buffer (%d) to be at least of length of image rows (%d)", len(dr.dist), dxi)
	}
	size := ms2.Sub(view.Max, view.Min)
	dx := size.X / float32(dxi)
	dy := size.Y / float32(dyi)
	for j := 0; j < dyi; j++ {
		y := view.Min.Y + float32(j)*dy
		for i := 0; i < dxi; i++ {
			dr.pos[i] = ms2.Vec{X: view.Min.X + float32(i)*dx, Y: y}
		}
		err := sdf.Evaluate(dr.pos[:dxi], dr.dist[:dxi], dr.emi[:dxi], &dr.vp)
		if err != nil {
			return err
		}
		for i := 0; i < dxi; i++ {
			img.Set(i+imgBB.Min.X, j+imgBB.Min.Y, dr.conv(dr.dist[i], dr.emi[i]))
		}
	}
	return nil
}
