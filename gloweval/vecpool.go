package gloweval

import (
	"errors"
	"fmt"

	"github.com/soypat/geometry/ms2"
)

// VecPool holds scratch buffers used by composite evaluators so that
// evaluating a scene tree does not allocate once the pool has warmed up.
// A VecPool is not safe for concurrent use.
type VecPool struct {
	V2    bufPool[ms2.Vec]
	Float bufPool[float32]
}

// GetVecPool extracts a [*VecPool] from userData. Evaluators of composite
// shapes require one to store intermediate results.
func GetVecPool(userData any) (*VecPool, error) {
	switch v := userData.(type) {
	case *VecPool:
		if v == nil {
			return nil, errors.New("nil VecPool in userData")
		}
		return v, nil
	case interface{ VecPool() *VecPool }:
		vp := v.VecPool()
		if vp == nil {
			return nil, errors.New("nil VecPool returned by userData")
		}
		return vp, nil
	}
	return nil, fmt.Errorf("want *gloweval.VecPool in userData, got %T", userData)
}

// AssertAllReleased returns an error if any buffer acquired from the pool was not released.
func (vp *VecPool) AssertAllReleased() error {
	err := vp.V2.assertAllReleased()
	if err != nil {
		return fmt.Errorf("V2 pool: %w", err)
	}
	err = vp.Float.assertAllReleased()
	if err != nil {
		return fmt.Errorf("Float pool: %w", err)
	}
	return nil
}

type bufPool[T any] struct {
	_ins      [][]T
	_acquired []bool
}

// Acquire returns a buffer of length n. Contents are not zeroed.
func (bp *bufPool[T]) Acquire(n int) []T {
	for i, locked := range bp._acquired {
		if !locked && cap(bp._ins[i]) >= n {
			bp._acquired[i] = true
			return bp._ins[i][:n]
		}
	}
	newSlice := make([]T, n)
	bp._ins = append(bp._ins, newSlice)
	bp._acquired = append(bp._acquired, true)
	return newSlice
}

// Release returns a buffer obtained with Acquire back to the pool.
func (bp *bufPool[T]) Release(buf []T) error {
	for i, instance := range bp._ins {
		if cap(instance) > 0 && cap(buf) > 0 && &instance[:1][0] == &buf[:1][0] {
			if !bp._acquired[i] {
				return errors.New("release of unacquired resource")
			}
			bp._acquired[i] = false
			return nil
		}
	}
	return errors.New("release of nonexistent resource")
}

func (bp *bufPool[T]) assertAllReleased() error {
	for _, locked := range bp._acquired {
		if locked {
			return errors.New("locked resource found in bufPool.assertAllReleased, forgot to call Release?")
		}
	}
	return nil
}

func (bp *bufPool[T]) String() string {
	var total, locked int
	for i, b := range bp._ins {
		total += cap(b)
		if bp._acquired[i] {
			locked++
		}
	}
	return fmt.Sprintf("bufPool{n:%d, locked:%d, elems:%d}", len(bp._ins), locked, total)
}
