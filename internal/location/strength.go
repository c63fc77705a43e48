package location

import "math"

// BoundaryStrength measures how well b lines up with an edge in the
// image. It is a variation of Daugman's integro-differential
// operator: it sums the gradient magnitude at sampled boundary points
// where the gradient points away from the ellipse center, then
// weights the sum by the number of such points cubed, so that
// ellipses supported along most of their length win over ones
// crossing a few very strong edges.
//
// Strength is zero for ellipses smaller than the minimum radius for
// their type.
func (f *Finder) BoundaryStrength(b Boundary) float64 {
	radius := math.Min(b.A, b.B)
	if math.IsNaN(radius) || math.IsInf(radius, 0) || math.IsInf(math.Max(b.A, b.B), 0) ||
		math.IsNaN(b.X) || math.IsNaN(b.Y) || math.IsInf(b.X, 0) || math.IsInf(b.Y, 0) {
		return 0
	}
	if b.Type == Pupil && radius < float64(f.params.MinPupilRadius) {
		return 0
	}
	if b.Type != Pupil && radius < float64(f.params.MinLimbusRadius) {
		return 0
	}

	var sum, num float64
	for _, pt := range b.Points() {
		// Skip points off the image or next to an LED.
		if !f.inside(float64(pt.X), float64(pt.Y)) {
			continue
		}
		at := pt.Y*f.cols + pt.X
		if f.mask[at] == 0 {
			continue
		}
		mag := float64(f.gradMag[at])
		if mag == 0 {
			continue
		}

		// The ellipse normal at the point. For a circle this is the
		// unit radius vector, for an ellipse it is close enough.
		tx := (float64(pt.X) - b.X) / b.A
		ty := (float64(pt.Y) - b.Y) / b.B

		// Cosine of the angle between gradient and normal.
		cosDiff := (float64(f.gradX[at])*tx + float64(f.gradY[at])*ty) / mag
		if cosDiff >= f.params.AngleTolerance {
			sum += mag
			num++
		}
	}

	eccentricity := math.Pow(axisRatio(b.A, b.B), 0.7)
	length := num * num * num
	return sum * eccentricity * length
}
