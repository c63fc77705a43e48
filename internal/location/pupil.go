package location

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"
	"gocv.io/x/gocv/contrib"
)

// PupilBoundary locates the pupil, a circle, in the image. The result
// is NotFound(Pupil) if there is no plausible pupil edge.
func (f *Finder) PupilBoundary() (Boundary, error) {
	p := f.params

	// The pupil is one of the darkest things in the image, and its
	// edge is a strong gradient. Pixels that are both are our edge
	// candidates, as long as they're not next to an LED reflection
	// (which also makes strong gradients, and often sits right on the
	// pupil).
	houghMask := make([]uint8, len(f.image))
	for i := range houghMask {
		if int(f.image[i]) <= p.MaxPupilIntensity &&
			f.gradMag[i] >= float32(p.MinBoundaryGradient) &&
			f.noLedNearBy[i] != 0 {
			houghMask[i] = 255
		}
	}
	f.traceHoughMask()

	// The candidates form bands a few pixels thick. Thin them down
	// to single pixel curves, so that every point of the edge votes
	// exactly once.
	houghMask, err := thin(houghMask, f.rows, f.cols)
	if err != nil {
		return NotFound(Pupil), fmt.Errorf("location: thinning edges: %w", err)
	}
	f.traceBytes("houghLines", houghMask)

	contours, err := f.contours(houghMask)
	if err != nil {
		return NotFound(Pupil), fmt.Errorf("location: finding edge contours: %w", err)
	}

	// This is a circle Hough transform, with a twist. A regular one
	// has every edge pixel vote for all the circles it could be on,
	// which is a whole cone in (x, y, r) space. We know which way the
	// gradient points though: from the dark pupil to the brighter
	// iris. So the center can only be along the ray pointing against
	// the gradient, and each pixel just votes along that ray.
	numRadii := p.MaxPupilRadius - p.MinPupilRadius
	acc := newAccumulator(f.rows, f.cols, numRadii)

	for _, contour := range contours {
		if len(contour) < p.MinPupilContourLength {
			continue
		}
		for _, pt := range contour {
			at := pt.Y*f.cols + pt.X
			mag := float64(f.gradMag[at])
			if mag == 0 {
				continue
			}
			dx := float64(f.gradX[at]) / -mag
			dy := float64(f.gradY[at]) / -mag

			cx, cy := float64(pt.X), float64(pt.Y)
			for cr := 0; cr < p.MaxPupilRadius; cr, cx, cy = cr+1, cx+dx, cy+dy {
				if !f.inside(cx, cy) {
					break
				}
				// Running into another edge means we've crossed
				// the pupil (or whatever dark blob this is), votes
				// beyond it are nonsense.
				if cr > p.WalkCrossingRadius && houghMask[int(cy)*f.cols+int(cx)] != 0 {
					break
				}
				if cr < p.MinPupilRadius {
					continue
				}

				// Smear the vote over the neighbouring cells, so that
				// slightly imperfect circles still pile up in one
				// place.
				ri := cr - p.MinPupilRadius
				for x := int(cx - 1); float64(x) <= cx+1; x++ {
					for y := int(cy - 1); float64(y) <= cy+1; y++ {
						for r := max(ri-1, 0); r <= min(ri+1, numRadii-1); r++ {
							acc.vote(x, y, r, voteWeight(float64(x)-cx, float64(y)-cy, float64(r-ri)))
						}
					}
				}
			}
		}
	}
	f.traceAccumulator(acc)

	x, y, r, ok := acc.best()
	if !ok {
		return NotFound(Pupil), nil
	}
	pupil := Boundary{
		Type: Pupil,
		X:    float64(x),
		Y:    float64(y),
		A:    float64(r + p.MinPupilRadius + 1),
		B:    float64(r + p.MinPupilRadius + 1),
	}
	f.Refine(&pupil)
	return pupil, nil
}

// accumulator holds the pupil votes, one saturating counter per
// (x, y, radius index) cell. It tracks the winning cell as votes come
// in: the first cell to reach the highest count wins, later cells
// only win by beating it.
type accumulator struct {
	cols, numRadii int
	cells          []int16

	maxScore int
	maxCell  int
}

func newAccumulator(rows, cols, numRadii int) *accumulator {
	return &accumulator{
		cols:     cols,
		numRadii: numRadii,
		cells:    make([]int16, rows*cols*numRadii),
		maxScore: -1,
	}
}

func (a *accumulator) vote(x, y, r int, w float64) {
	i := (y*a.cols+x)*a.numRadii + r
	a.cells[i] = int16(math.Min(float64(a.cells[i])+w, math.MaxInt16))
	if score := int(a.cells[i]); score > a.maxScore {
		a.maxScore = score
		a.maxCell = i
	}
}

// best returns the winning cell. ok is false if nothing voted.
func (a *accumulator) best() (x, y, r int, ok bool) {
	if a.maxScore == -1 {
		return 0, 0, 0, false
	}
	px := a.maxCell / a.numRadii
	return px % a.cols, px / a.cols, a.maxCell % a.numRadii, true
}

// thin skeletonizes the binary grid pix with the Zhang-Suen
// algorithm, leaving 1 pixel wide curves. Non-zero pixels must be
// 255.
func thin(pix []uint8, rows, cols int) ([]uint8, error) {
	m, err := newMat(rows, cols, pix)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	thinned := gocv.NewMat()
	defer thinned.Close()
	contrib.Thinning(m, &thinned, contrib.ThinningZhangSuen)
	return thinned.ToBytes(), nil
}

// voteWeight is the share of a vote that goes to a cell offset by
// (dx, dy, dr) from the exact walk position. It peaks at 4 on the
// exact cell and falls off linearly with the distance.
func voteWeight(dx, dy, dr float64) float64 {
	return math.Max(0, 4-(math.Abs(dx)+math.Abs(dy)+math.Abs(dr)))
}

// contours lists every curve in the binary grid pix, with all of
// their points.
func (f *Finder) contours(pix []uint8) ([][]image.Point, error) {
	m, err := newMat(f.rows, f.cols, pix)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	found := gocv.FindContours(m, gocv.RetrievalList, gocv.ChainApproxNone)
	defer found.Close()

	ret := make([][]image.Point, found.Size())
	for i := range ret {
		ret[i] = found.At(i).ToPoints()
	}
	return ret, nil
}

// traceHoughMask shows which pixels passed the intensity test, the
// gradient test, or both.
func (f *Finder) traceHoughMask() {
	if !f.tracing() {
		return
	}
	p := f.params
	pix := make([]uint8, len(f.image))
	for i := range pix {
		if f.noLedNearBy[i] == 0 {
			continue
		}
		var v uint8
		if int(f.image[i]) <= p.MaxPupilIntensity {
			v += 77
		}
		if f.gradMag[i] >= float32(p.MinBoundaryGradient) {
			v += 153
		}
		pix[i] = v
	}
	f.traceBytes("houghMask", pix)
}

// traceAccumulator shows the votes of each pixel summed over all
// radii, stretched to [0, 255].
func (f *Finder) traceAccumulator(acc *accumulator) {
	if !f.tracing() {
		return
	}
	numRadii := acc.numRadii
	sums := make([]int, f.rows*f.cols)
	lo, hi := math.MaxInt, math.MinInt
	for i := range sums {
		for _, v := range acc.cells[i*numRadii : (i+1)*numRadii] {
			sums[i] += int(v)
		}
		lo = min(lo, sums[i])
		hi = max(hi, sums[i])
	}

	pix := make([]uint8, len(sums))
	if hi > lo {
		for i, s := range sums {
			pix[i] = uint8(255 * (s - lo) / (hi - lo))
		}
	}
	f.traceBytes("hough", pix)
}
