// Package location finds the pupil and limbus boundaries in eye
// images.
package location

import (
	"errors"
	"fmt"
	"runtime"

	"gocv.io/x/gocv"

	"github.com/gwquinn/IrisFinder/internal/debug"
)

// ErrEmptyImage is returned by NewFinder when given an empty Mat.
var ErrEmptyImage = errors.New("location: empty image")

// Finder localizes iris boundaries in a single image.
//
// All per-image state is computed once by NewFinder and never
// modified afterwards, so a Finder's methods can be called any number
// of times, in any order.
type Finder struct {
	params Params
	trace  debug.Sink

	rows, cols int

	image       []uint8 // contrast enhanced image
	mask        []uint8 // zero near LED specular highlights, non-zero elsewhere
	noLedNearBy []uint8 // mask with the highlights grown by MinLedNeighbourhood

	gradX, gradY, gradMag []float32
}

// An Option customizes a Finder.
type Option func(*Finder)

// WithTrace sends the intermediate images of the preprocessing and
// pupil search to s. A nil s is the same as debug.Discard.
func WithTrace(s debug.Sink) Option {
	return func(f *Finder) {
		if s == nil {
			s = debug.Discard
		}
		f.trace = s
	}
}

// NewFinder preprocesses im so that boundaries can be located in it.
// Color images are reduced to their red channel.
func NewFinder(im gocv.Mat, p Params, opts ...Option) (*Finder, error) {
	if im.Empty() {
		return nil, ErrEmptyImage
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("location: invalid params: %w", err)
	}

	f := &Finder{
		params: p,
		trace:  debug.Discard,
		rows:   im.Rows(),
		cols:   im.Cols(),
	}
	for _, opt := range opts {
		opt(f)
	}

	if err := f.preprocess(im); err != nil {
		return nil, fmt.Errorf("location: preprocessing: %w", err)
	}
	return f, nil
}

// Params returns the parameters f was built with.
func (f *Finder) Params() Params {
	return f.params
}

// Boundaries localizes the pupil, then the limbus around it. Not
// finding a boundary is not an error; errors only come from the
// image processing library.
func (f *Finder) Boundaries() (pupil, limbus Boundary, err error) {
	pupil, err = f.PupilBoundary()
	if err != nil {
		return NotFound(Pupil), NotFound(Limbus), err
	}
	limbus = f.LimbusBoundary(pupil)
	return pupil, limbus, nil
}

// inside reports whether the pixel containing (x, y) is at least one
// pixel away from the image edge.
func (f *Finder) inside(x, y float64) bool {
	return x >= 1 && y >= 1 && int(x) <= f.cols-2 && int(y) <= f.rows-2
}

// tracing reports whether anyone is listening for trace images, so
// that they are only built when needed.
func (f *Finder) tracing() bool {
	return f.trace != debug.Discard
}

// traceBytes hands an 8-bit grid the size of the image to the trace
// sink, if there is one.
func (f *Finder) traceBytes(name string, pix []uint8) {
	if !f.tracing() {
		return
	}
	m, err := newMat(f.rows, f.cols, pix)
	if err != nil {
		return
	}
	defer m.Close()
	f.trace.Trace(name, m)
}

// newMat copies pix into a new single channel 8-bit Mat.
func newMat(rows, cols int, pix []uint8) (gocv.Mat, error) {
	m, err := gocv.NewMatFromBytes(rows, cols, gocv.MatTypeCV8U, pix)
	if err != nil {
		return m, err
	}
	// The Mat above borrows pix's memory, which the Go runtime knows
	// nothing about. Copy it before letting go of pix.
	ret := m.Clone()
	m.Close()
	runtime.KeepAlive(pix)
	return ret, nil
}
