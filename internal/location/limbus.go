package location

import "math"

// LimbusBoundary locates the limbus, the outer edge of the iris,
// around the given pupil. If the pupil wasn't found, or is too big
// to leave room for an iris, the result is NotFound(Limbus).
func (f *Finder) LimbusBoundary(pupil Boundary) Boundary {
	if !pupil.Found() {
		return NotFound(Limbus)
	}
	p := f.params

	// The iris is at least MinAnnulusThickness wider than the pupil,
	// and at least MinLimbusRadius.
	start := math.Max(float64(p.MinLimbusRadius), pupil.A+float64(p.MinAnnulusThickness))
	if start > float64(p.MaxLimbusRadius) {
		return NotFound(Limbus)
	}

	// The pupil is rarely dead center in the iris, but it's not far
	// off. Grow two arcs concentric with the pupil, one on each side,
	// and record the radius where each lines up best with an edge.
	// Only the sides get searched: the top and bottom of the limbus
	// are usually behind eyelids.
	left := Boundary{Type: LeftLimbus, X: pupil.X, Y: pupil.Y, A: start, B: start}
	right := left
	right.Type = RightLimbus

	maxLeft, maxRight := -1.0, -1.0
	aLeft, aRight := start, start

	for left.A <= float64(p.MaxLimbusRadius) {
		if s := f.BoundaryStrength(left); s > maxLeft {
			maxLeft, aLeft = s, left.A
		}
		left.Expand(1)

		if s := f.BoundaryStrength(right); s > maxRight {
			maxRight, aRight = s, right.A
		}
		right.Expand(1)
	}

	// Put the two arcs back together: a bigger right arc means the
	// iris center is to the right of the pupil center.
	limbus := Boundary{
		Type: Limbus,
		X:    pupil.X + (aRight-aLeft)/2,
		Y:    pupil.Y,
		A:    (aLeft + aRight) / 2,
		B:    (aLeft + aRight) / 2,
	}
	f.Refine(&limbus)
	return limbus
}
