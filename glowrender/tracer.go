package glowrender

import (
	"errors"
	"fmt"
	"slices"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/glowsdf/gloweval"
)

// State is the state of a ray being sphere traced.
type State uint8

const (
	// Marching rays have not yet hit a surface nor exhausted their budget.
	Marching State = iota
	// Hit rays came within the hit epsilon of a surface.
	Hit
	// Miss rays exhausted their step or distance budget. A miss is a valid outcome.
	Miss
)

func (s State) String() string {
	switch s {
	case Marching:
		return "marching"
	case Hit:
		return "hit"
	case Miss:
		return "miss"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// TracerConfig holds the budgets of the sphere tracer.
type TracerConfig struct {
	// MaxSteps is the maximum number of SDF evaluations per ray.
	MaxSteps int
	// MaxDistance is the distance along the ray after which it is considered a miss.
	MaxDistance float32
	// HitEpsilon is the distance under which a sample counts as a hit.
	// Negative distances (inside a shape) are always hits.
	HitEpsilon float32
	// StartOffset is the initial distance along the ray, so that rays
	// starting on a surface do not immediately hit it.
	StartOffset float32
}

// DefaultTracerConfig returns the budgets of the reference renderer.
func DefaultTracerConfig() TracerConfig {
	return TracerConfig{
		MaxSteps:    64,
		MaxDistance: 2,
		HitEpsilon:  1e-6,
		StartOffset: 1e-3,
	}
}

func (cfg TracerConfig) validate() error {
	switch {
	case cfg.MaxSteps <= 0:
		return errors.New("MaxSteps must be positive")
	case !(cfg.MaxDistance > 0):
		return errors.New("MaxDistance must be positive")
	case !(cfg.HitEpsilon > 0):
		return errors.New("HitEpsilon must be positive")
	case !(cfg.StartOffset >= 0):
		return errors.New("StartOffset must not be negative")
	}
	return nil
}

// Ray is the outcome of tracing a single ray.
type Ray struct {
	State State
	// T is the distance marched along the ray direction.
	T float32
	// Steps is the number of SDF evaluations performed for the ray.
	Steps int
	// Emissive is the emissive value of the surface hit, zero on a miss.
	Emissive float32
}

// Tracer sphere traces rays against a scene. A Tracer reuses its buffers
// between calls and is not safe for concurrent use.
type Tracer struct {
	sdf    gloweval.SDF2
	cfg    TracerConfig
	vp     gloweval.VecPool
	active []int
	pos    []ms2.Vec
	dist   []float32
	emi    []float32
}

// NewTracer returns a Tracer for the scene with the given budgets.
func NewTracer(sdf gloweval.SDF2, cfg TracerConfig) (*Tracer, error) {
	if sdf == nil {
		return nil, errors.New("nil SDF2")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Tracer{sdf: sdf, cfg: cfg}, nil
}

// Config returns the tracer's budgets.
func (tr *Tracer) Config() TracerConfig { return tr.cfg }

// VecPool returns the pool used as userData in scene evaluations.
func (tr *Tracer) VecPool() *gloweval.VecPool { return &tr.vp }

// Trace marches a single ray from origin along the unit direction dir.
func (tr *Tracer) Trace(origin, dir ms2.Vec) (Ray, error) {
	var r [1]Ray
	err := tr.TraceRays(origin, []ms2.Vec{dir}, r[:])
	return r[0], err
}

// TraceRays marches rays sharing an origin along the unit directions dirs and
// stores the outcome of each in dst. All rays that are still marching are
// advanced in lockstep so that each step is a single batched evaluation.
func (tr *Tracer) TraceRays(origin ms2.Vec, dirs []ms2.Vec, dst []Ray) error {
	if len(dirs) != len(dst) {
		return errors.New("direction and result buffer length mismatch")
	}
	cfg := tr.cfg
	active := tr.active[:0]
	for i := range dst {
		dst[i] = Ray{State: Marching, T: cfg.StartOffset}
		if cfg.StartOffset >= cfg.MaxDistance {
			dst[i].State = Miss
			continue
		}
		active = append(active, i)
	}
	tr.pos = slices.Grow(tr.pos[:0], len(active))
	tr.dist = slices.Grow(tr.dist[:0], len(active))
	tr.emi = slices.Grow(tr.emi[:0], len(active))
	for len(active) > 0 {
		n := len(active)
		pos := tr.pos[:n]
		dist := tr.dist[:n]
		emi := tr.emi[:n]
		for j, i := range active {
			pos[j] = ms2.Add(origin, ms2.Scale(dst[i].T, dirs[i]))
		}
		err := tr.sdf.Evaluate(pos, dist, emi, &tr.vp)
		if err != nil {
			tr.active = active
			return err
		}
		next := active[:0]
		for j, i := range active {
			r := &dst[i]
			r.Steps++
			if dist[j] < cfg.HitEpsilon {
				r.State = Hit
				r.Emissive = emi[j]
				continue
			}
			r.T += dist[j]
			if r.Steps >= cfg.MaxSteps || r.T >= cfg.MaxDistance {
				r.State = Miss
				continue
			}
			next = append(next, i)
		}
		active = next
	}
	tr.active = active
	return nil
}
