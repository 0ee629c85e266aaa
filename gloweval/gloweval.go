package gloweval

import (
	"errors"

	"github.com/soypat/geometry/ms2"
)

// SDF2 implements a 2D signed distance field with emission in vectorized
// form. Implementations must never overestimate the distance to the nearest
// boundary so that sphere tracing remains safe.
type SDF2 interface {
	// Evaluate evaluates the signed distance field over pos positions.
	// pos, dist and emissive must be of same length. Resulting distances are stored
	// in dist and the emissive value of the surface that owns each distance in emissive.
	//
	// userData facilitates getting data to the evaluators for use in processing, such as [VecPool].
	Evaluate(pos []ms2.Vec, dist, emissive []float32, userData any) error
}

var (
	errEmptyBuffers         = errors.New("empty buffers")
	errMismatchBufferLength = errors.New("position, distance and emissive buffer length mismatch")
)

// CheckBuffers returns an error if the evaluation buffers are empty or of mismatched lengths.
func CheckBuffers(pos []ms2.Vec, dist, emissive []float32) error {
	if len(pos) != len(dist) || len(pos) != len(emissive) {
		return errMismatchBufferLength
	} else if len(pos) == 0 {
		return errEmptyBuffers
	}
	return nil
}

// EvaluateAt evaluates a single point. It allocates its own [VecPool] if
// userData does not provide one, so it is best suited to tests and probing.
func EvaluateAt(s SDF2, p ms2.Vec, userData any) (dist, emissive float32, err error) {
	if s == nil {
		return 0, 0, errors.New("nil SDF2")
	}
	if _, err := GetVecPool(userData); err != nil {
		userData = &VecPool{}
	}
	var d, e [1]float32
	err = s.Evaluate([]ms2.Vec{p}, d[:], e[:], userData)
	return d[0], e[0], err
}
