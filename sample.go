package glowsdf

// Sample is the result of evaluating a scene at a point: the signed distance to
// the nearest surface and the emissive intensity of the surface that owns the sample.
type Sample struct {
	// Dist is negative inside a shape, positive outside and zero on its boundary.
	Dist float32
	// Emissive is the self-emission intensity of the owning surface.
	Emissive float32
}

// Union returns the sample with the smaller distance unchanged.
// On ties b is returned.
func Union(a, b Sample) Sample {
	if a.Dist < b.Dist {
		return a
	}
	return b
}

// Intersect returns the larger of both distances. The emissive value is taken
// from the operand with the smaller distance, not the one that determines
// the resulting distance. On ties the emissive of a is kept.
func Intersect(a, b Sample) Sample {
	r := a
	if a.Dist > b.Dist {
		r = b
	}
	r.Dist = maxf(a.Dist, b.Dist)
	return r
}

// Complement negates the distance so that inside becomes outside. Applying it twice
// returns the original sample.
func Complement(a Sample) Sample {
	a.Dist = -a.Dist
	return a
}

// Subtract carves b out of a. The emissive value is always that of a.
func Subtract(a, b Sample) Sample {
	a.Dist = maxf(a.Dist, -b.Dist)
	return a
}

// SubtractDerived carves b out of a by intersecting a with the complement of b.
// Because of the emissive rule of [Intersect] the result takes the emissive of b
// where a.Dist > -b.Dist, so it is not interchangeable with [Subtract].
func SubtractDerived(a, b Sample) Sample {
	return Intersect(a, Complement(b))
}
