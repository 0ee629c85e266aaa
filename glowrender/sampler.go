package glowrender

import (
	"errors"
	"math"
	"math/rand/v2"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
)

// Sampler estimates the light arriving at a point by casting a stratified,
// jittered fan of rays over the full circle and averaging what they hit.
type Sampler struct {
	tr   *Tracer
	rng  *rand.Rand
	dirs []ms2.Vec
	rays []Ray
}

// NewSampler returns a Sampler casting samples rays per point with the given
// tracer. rng is the only source of randomness and must not be shared with
// other goroutines.
func NewSampler(tr *Tracer, samples int, rng *rand.Rand) (*Sampler, error) {
	if tr == nil {
		return nil, errors.New("nil Tracer")
	} else if samples <= 0 {
		return nil, errors.New("samples must be positive")
	} else if rng == nil {
		return nil, errors.New("nil random generator")
	}
	return &Sampler{
		tr:   tr,
		rng:  rng,
		dirs: make([]ms2.Vec, samples),
		rays: make([]Ray, samples),
	}, nil
}

// Samples returns the number of rays cast per point.
func (s *Sampler) Samples() int { return len(s.dirs) }

// Sample returns the mean emissive value seen by the rays cast from p.
// Ray i points at angle 2π(i+u)/N where u is uniform in [0,1).
func (s *Sampler) Sample(p ms2.Vec) (float32, error) {
	n := float32(len(s.dirs))
	for i := range s.dirs {
		a := 2 * math.Pi * (float32(i) + s.rng.Float32()) / n
		sin, cos := math32.Sincos(a)
		s.dirs[i] = ms2.Vec{X: cos, Y: sin}
	}
	err := s.tr.TraceRays(p, s.dirs, s.rays)
	if err != nil {
		return 0, err
	}
	var sum float32
	for _, r := range s.rays {
		sum += r.Emissive
	}
	return sum / n, nil
}
