package glowaux

import (
	"image/color"

	math "github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/glgl/math/ms1"
)

var red = color.RGBA{R: 255, A: 255}

// ColorConversionInigoQuilez creates a new distance field color conversion using [Inigo Quilez]'s style,
// with the interior tinted brighter for more emissive shapes.
// A good value for characteristic distance is a third of the view's diagonal. Returns red for NaN values.
//
// [Inigo Quilez]: https://iquilezles.org/articles/distfunctions2d/
func ColorConversionInigoQuilez(characteristicDistance float32) func(dist, emissive float32) color.Color {
	inv := 1. / characteristicDistance
	return func(d, e float32) color.Color {
		if math.IsNaN(d) {
			return red
		}
		d *= inv
		var r, g, b float32
		if d > 0 {
			r, g, b = 0.9, 0.6, 0.3
		} else {
			glow := 0.5 + 0.5*ms1.Clamp(e, 0, 1)
			r, g, b = 0.65*glow, 0.85*glow, 1.0*glow
		}
		k := (1 - math.Exp(-6*math.Abs(d))) * (0.8 + 0.2*math.Cos(150*d))
		edge := 1 - ms1.SmoothStep(0, 0.01, math.Abs(d))
		return color.RGBA{
			R: channel(ms1.Interp(r*k, 1, edge)),
			G: channel(ms1.Interp(g*k, 1, edge)),
			B: channel(ms1.Interp(b*k, 1, edge)),
			A: 255,
		}
	}
}

func channel(v float32) uint8 {
	return uint8(ms1.Clamp(v, 0, 1) * 255)
}

// viewDiagonal returns the length of the diagonal of the view box.
func viewDiagonal(view ms2.Box) float32 {
	return ms2.Norm(ms2.Sub(view.Max, view.Min))
}
