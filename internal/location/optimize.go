package location

import "gonum.org/v1/gonum/optimize"

// initialStep is the size of the starting simplex, in pixels, along
// each of x, y, a and b.
const initialStep = 10

// Refine fine tunes b's center and semi-axes to maximize its
// strength, with a Nelder-Mead search seeded at b. b's type is never
// changed, and b is left alone if the search can't improve on it.
func (f *Finder) Refine(b *Boundary) {
	t := b.Type
	objective := func(x []float64) float64 {
		return -f.BoundaryStrength(Boundary{Type: t, X: x[0], Y: x[1], A: x[2], B: x[3]})
	}

	seed := []float64{b.X, b.Y, b.A, b.B}
	problem := optimize.Problem{Func: objective}
	result, err := optimize.Minimize(problem, seed, nil, &optimize.NelderMead{SimplexSize: initialStep})
	if err != nil || len(result.X) != len(seed) || result.F > objective(seed) {
		return
	}
	b.X, b.Y, b.A, b.B = result.X[0], result.X[1], result.X[2], result.X[3]
}
