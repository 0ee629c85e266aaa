package glowaux

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"time"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/glowsdf/gloweval"
	"github.com/soypat/glowsdf/glowrender"
)

// RenderConfig is the full configuration of a render. Zero valued MaxSteps,
// MaxDistance and HitEpsilon are replaced by those of [glowrender.DefaultTracerConfig].
type RenderConfig struct {
	Width, Height   int
	SamplesPerPixel int
	MaxSteps        int
	MaxDistance     float32
	HitEpsilon      float32
	// StartOffset is used as is since rays may start right at their origin.
	// [DefaultRenderConfig] sets the reference offset.
	StartOffset float32
	// View is the scene region mapped to the image. Zero value is the unit square.
	View ms2.Box
	Seed uint64
	// Encoder writes the rendered image. Nil encodes PNG.
	Encoder Encoder
	Silent  bool
}

// DefaultRenderConfig returns the reference 512x512 configuration with 64 samples per pixel.
func DefaultRenderConfig() RenderConfig {
	tc := glowrender.DefaultTracerConfig()
	return RenderConfig{
		Width:           512,
		Height:          512,
		SamplesPerPixel: 64,
		MaxSteps:        tc.MaxSteps,
		MaxDistance:     tc.MaxDistance,
		HitEpsilon:      tc.HitEpsilon,
		StartOffset:     tc.StartOffset,
		View:            glowrender.UnitView,
	}
}

func (cfg RenderConfig) imageConfig() glowrender.ImageConfig {
	tc := glowrender.DefaultTracerConfig()
	if cfg.MaxSteps != 0 {
		tc.MaxSteps = cfg.MaxSteps
	}
	if cfg.MaxDistance != 0 {
		tc.MaxDistance = cfg.MaxDistance
	}
	if cfg.HitEpsilon != 0 {
		tc.HitEpsilon = cfg.HitEpsilon
	}
	tc.StartOffset = cfg.StartOffset
	return glowrender.ImageConfig{
		Width:           cfg.Width,
		Height:          cfg.Height,
		SamplesPerPixel: cfg.SamplesPerPixel,
		Tracer:          tc,
		View:            cfg.View,
		Seed:            cfg.Seed,
	}
}

func (cfg RenderConfig) logger() func(args ...any) {
	return func(args ...any) {
		if !cfg.Silent {
			fmt.Println(args...)
		}
	}
}

// Render renders the scene and writes the encoded image to w.
// Output is all or nothing: nothing is written if rendering fails.
func Render(w io.Writer, sdf gloweval.SDF2, cfg RenderConfig) error {
	if w == nil {
		return errors.New("Render requires an output writer")
	}
	log := cfg.logger()
	enc := cfg.Encoder
	if enc == nil {
		enc = PNG
	}
	icfg := cfg.imageConfig()
	if !cfg.Silent && cfg.Height >= 10 {
		tenth := cfg.Height / 10
		icfg.OnRow = func(row int) {
			if (row+1)%tenth == 0 {
				log("rendered", row+1, "of", cfg.Height, "rows")
			}
		}
	}
	renderer, err := glowrender.NewImageRenderer(sdf, icfg)
	if err != nil {
		return err
	}
	buf := make([]byte, renderer.BufferSize())
	watch := stopwatch()
	err = renderer.Render(buf)
	if err != nil {
		return fmt.Errorf("rendering: %w", err)
	}
	log("rendered", cfg.Width, "x", cfg.Height, "image with", cfg.SamplesPerPixel, "samples per pixel in", watch())
	err = enc.Encode(w, cfg.Width, cfg.Height, buf, false)
	if err != nil {
		return fmt.Errorf("encoding image: %w", err)
	}
	return nil
}

// RenderFile renders the scene into a newly created file. The encoder is chosen
// from the filename extension unless cfg.Encoder is set. Failure to create, write
// or sync the file is returned as an error.
func RenderFile(filename string, sdf gloweval.SDF2, cfg RenderConfig) error {
	if cfg.Encoder == nil {
		enc, err := EncoderForFile(filename)
		if err != nil {
			return err
		}
		cfg.Encoder = enc
	}
	return writeFile(filename, cfg.logger(), func(w io.Writer) error {
		return Render(w, sdf, cfg)
	})
}

// RenderPreviewFile writes an image of the raw distance field of the scene, colored
// with [ColorConversionInigoQuilez], to filename.
func RenderPreviewFile(filename string, sdf gloweval.SDF2, cfg RenderConfig) error {
	enc := cfg.Encoder
	if enc == nil {
		var err error
		enc, err = EncoderForFile(filename)
		if err != nil {
			return err
		}
	}
	view := cfg.View
	if view == (ms2.Box{}) {
		view = glowrender.UnitView
	}
	dr, err := glowrender.NewDistanceRenderer(max(4096, cfg.Width), ColorConversionInigoQuilez(viewDiagonal(view)/3))
	if err != nil {
		return err
	}
	img := image.NewNRGBA(image.Rect(0, 0, cfg.Width, cfg.Height))
	err = dr.Render(sdf, view, img)
	if err != nil {
		return err
	}
	return writeFile(filename, cfg.logger(), func(w io.Writer) error {
		return enc.Encode(w, cfg.Width, cfg.Height, img.Pix, true)
	})
}

func writeFile(filename string, log func(args ...any), write func(io.Writer) error) (err error) {
	watch := stopwatch()
	fp, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		closeErr := fp.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("closing output file: %w", closeErr)
		}
		if err != nil {
			// Do not leave a truncated image behind.
			os.Remove(filename)
		}
	}()
	err = write(fp)
	if err != nil {
		return err
	}
	err = fp.Sync()
	if err != nil {
		return fmt.Errorf("syncing output file: %w", err)
	}
	log("wrote", fp.Name(), "in", watch())
	return nil
}

func stopwatch() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}
