package location

import (
	"fmt"
	"image"
	"math"
)

// Type identifies which part of an eye a Boundary describes, and
// which points along the ellipse get sampled when scoring it.
type Type int

const (
	Pupil Type = iota
	LeftLimbus
	RightLimbus
	Limbus
)

func (t Type) String() string {
	switch t {
	case Pupil:
		return "Pupil"
	case LeftLimbus:
		return "LeftLimbus"
	case RightLimbus:
		return "RightLimbus"
	case Limbus:
		return "Limbus"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Boundary is an axis-aligned ellipse centered on (X, Y) with
// semi-axes A (horizontal) and B (vertical).
//
// A boundary with X == -1 was not found. Always check Found before
// using the geometry.
type Boundary struct {
	Type Type
	X, Y float64
	A, B float64
}

// NotFound returns the sentinel boundary of the given type.
func NotFound(t Type) Boundary {
	return Boundary{Type: t, X: -1, Y: -1, A: -1, B: -1}
}

// Found reports whether b holds a located boundary rather than the
// not-found sentinel.
func (b Boundary) Found() bool {
	return b.X != -1 && b.Y != -1
}

// Valid reports whether all of b's parameters are non-negative.
func (b Boundary) Valid() bool {
	return !(b.X < 0 || b.Y < 0 || b.A < 0 || b.B < 0)
}

// Inside reports whether p lies inside or on the ellipse.
func (b Boundary) Inside(p image.Point) bool {
	dx := (b.X - float64(p.X)) / b.A
	dy := (b.Y - float64(p.Y)) / b.B
	return dx*dx+dy*dy <= 1
}

// maxEccentricity is the largest value Eccentricity returns, the
// float64 just below 1.
var maxEccentricity = math.Nextafter(1, 0)

// Eccentricity is 0 for a circle, and tends to 1 as the ellipse
// flattens, without ever reaching it. An ellipse with one zero (or
// negative) axis is flat and gets the maximum; one with no positive
// axis at all is a point and gets 0.
func (b Boundary) Eccentricity() float64 {
	aOK, bOK := b.A > 0, b.B > 0
	switch {
	case !aOK && !bOK:
		return 0
	case !aOK || !bOK:
		return maxEccentricity
	}
	ratio := axisRatio(b.A, b.B)
	return math.Min(math.Sqrt(1-ratio*ratio), maxEccentricity)
}

// Expand grows both semi-axes by n pixels.
func (b *Boundary) Expand(n float64) {
	b.A += n
	b.B += n
}

// Center returns the ellipse center rounded to the nearest pixel.
func (b Boundary) Center() image.Point {
	return image.Point{X: int(math.Round(b.X)), Y: int(math.Round(b.Y))}
}

// Axes returns the semi-axes rounded to the nearest pixel, in the
// form gocv's ellipse drawing wants.
func (b Boundary) Axes() image.Point {
	return image.Point{X: int(math.Round(b.A)), Y: int(math.Round(b.B))}
}

// Points returns the pixels sampled along the boundary when scoring
// it. The unit points for b's type are shifted and scaled onto the
// ellipse, then rounded to pixel coordinates.
func (b Boundary) Points() []image.Point {
	unit := unitPoints[b.Type]
	ret := make([]image.Point, len(unit))
	for i, u := range unit {
		ret[i] = image.Point{
			X: int(b.X + u.x*b.A + 0.5),
			Y: int(b.Y + u.y*b.B + 0.5),
		}
	}
	return ret
}

func (b Boundary) String() string {
	label := "Limbus:"
	if b.Type == Pupil {
		label = "Pupil:"
	}
	return fmt.Sprintf("%s [%v %v] [%v %v]", label,
		math.Round(b.X), math.Round(b.Y), math.Round(b.A), math.Round(b.B))
}

// axisRatio returns the minor/major ratio of a and b.
func axisRatio(a, b float64) float64 {
	if a < b {
		return a / b
	}
	return b / a
}

type unitPoint struct{ x, y float64 }

// unitPoints lists, per boundary type, the points on the unit circle
// that get sampled. The limbus arcs stop short of the top and bottom
// of the iris, where eyelids usually cover it.
var unitPoints map[Type][]unitPoint

func init() {
	left := calcArcPoints(0.8*math.Pi, 1.3*math.Pi)
	right := calcArcPoints(-0.2*math.Pi, 0.3*math.Pi)

	both := make([]unitPoint, 0, len(left)+len(right))
	both = append(both, left...)
	both = append(both, right...)

	unitPoints = map[Type][]unitPoint{
		Pupil:       calcArcPoints(0, 2*math.Pi),
		LeftLimbus:  left,
		RightLimbus: right,
		Limbus:      both,
	}
}

// calcArcPoints computes unit circle points every 2 degrees from
// start (inclusive) to end (exclusive), in radians.
func calcArcPoints(start, end float64) []unitPoint {
	var ret []unitPoint
	for angle := start; angle < end; angle += math.Pi / 90 {
		ret = append(ret, unitPoint{math.Cos(angle), math.Sin(angle)})
	}
	return ret
}
