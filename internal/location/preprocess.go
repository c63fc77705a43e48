package location

import (
	"image"
	"math"

	"gocv.io/x/gocv"
)

// preprocess computes the contrast enhanced image, the LED mask and
// the gradient field of src.
func (f *Finder) preprocess(src gocv.Mat) error {
	p := f.params

	// In visible and NIR eye images, the red channel has the best
	// contrast between pupil, iris and sclera. OpenCV stores color as
	// BGR, so red is channel 2.
	im := gocv.NewMat()
	defer im.Close()
	if src.Channels() > 1 {
		chans := gocv.Split(src)
		red := 2
		if len(chans) <= red {
			red = len(chans) - 1
		}
		chans[red].CopyTo(&im)
		for _, c := range chans {
			c.Close()
		}
	} else {
		src.CopyTo(&im)
	}
	im.ConvertTo(&im, gocv.MatTypeCV8U)
	f.traceMat("raw", im)

	mask := f.ledMask(im)
	f.mask = mask
	f.traceBytes("mask", mask)

	// Pupil edge candidates must keep well clear of highlights, which
	// make strong gradients of their own.
	noLed, err := f.erodeMask(p.MinLedNeighbourhood)
	if err != nil {
		return err
	}
	f.noLedNearBy = noLed

	// Eyelashes are thin, dark and mostly vertical. A horizontal
	// closing wipes them out without moving the pupil and limbus
	// edges, which are much wider than the kernel.
	lash := gocv.GetStructuringElement(gocv.MorphRect, image.Point{p.EyelashThickness, 1})
	defer lash.Close()
	gocv.MorphologyEx(im, &im, gocv.MorphClose, lash)

	// Gradient directions are very noisy on raw pixels. Blurring
	// first makes them point consistently across the boundaries.
	gocv.GaussianBlur(im, &im, image.Point{}, p.GradientSigma, p.GradientSigma, gocv.BorderDefault)

	// Stretch contrast using only the pixels away from highlights,
	// otherwise the LEDs pin the maximum at 255 and the stretch does
	// nothing.
	f.image = stretch(im.ToBytes(), mask)
	contrast, err := newMat(f.rows, f.cols, f.image)
	if err != nil {
		return err
	}
	defer contrast.Close()

	if f.tracing() {
		masked := make([]uint8, len(f.image))
		for i, v := range f.image {
			if mask[i] != 0 {
				masked[i] = v
			}
		}
		f.traceBytes("contrast", masked)
	}

	// A 7x7 Sobel is smooth enough to give reliable directions. The
	// scale brings the derivatives back to intensity units.
	gx := gocv.NewMat()
	defer gx.Close()
	gocv.Sobel(contrast, &gx, gocv.MatTypeCV32F, 1, 0, 7, 1.0/1280, 0, gocv.BorderDefault)

	gy := gocv.NewMat()
	defer gy.Close()
	gocv.Sobel(contrast, &gy, gocv.MatTypeCV32F, 0, 1, 7, 1.0/1280, 0, gocv.BorderDefault)

	mag := gocv.NewMat()
	defer mag.Close()
	gocv.Magnitude(gx, gy, &mag)

	if f.gradX, err = floats(gx); err != nil {
		return err
	}
	if f.gradY, err = floats(gy); err != nil {
		return err
	}
	if f.gradMag, err = floats(mag); err != nil {
		return err
	}
	return nil
}

// ledMask returns a grid that is zero on and around the specular
// highlights of im, and 255 everywhere else.
func (f *Finder) ledMask(im gocv.Mat) []uint8 {
	p := f.params

	// Zero out extremely bright pixels.
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(im, &mask, float32(p.MinLedIntensity), 255, gocv.ThresholdBinaryInv)

	// An LED reflection is often broken into several nearby
	// blobs. Eroding the usable area joins them into one highlight,
	// dilating it back shrinks the highlight to roughly its original
	// extent.
	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{p.LedDilation, p.LedDilation})
	defer kernel.Close()
	gocv.Erode(mask, &mask, kernel)
	gocv.Dilate(mask, &mask, kernel)

	// Label the highlights.
	bright := gocv.NewMat()
	defer bright.Close()
	gocv.BitwiseNot(mask, &bright)

	labels := gocv.NewMat()
	defer labels.Close()
	stats := gocv.NewMat()
	defer stats.Close()
	centroids := gocv.NewMat()
	defer centroids.Close()
	n := gocv.ConnectedComponentsWithStats(bright, &labels, &stats, &centroids)

	// Specks of noise and large bright areas (sclera under strong
	// light, skin) aren't LEDs. Give their pixels back.
	notLed := make([]bool, n)
	for label := 1; label < n; label++ {
		area := int(stats.GetIntAt(label, int(gocv.CC_STAT_AREA)))
		notLed[label] = area < p.MinLedArea || area > p.MaxLedArea
	}

	ret := mask.ToBytes()
	for row := 0; row < f.rows; row++ {
		for col := 0; col < f.cols; col++ {
			label := int(labels.GetIntAt(row, col))
			if label > 0 && label < n && notLed[label] {
				ret[row*f.cols+col] = 255
			}
		}
	}
	return ret
}

// stretch linearly maps the range of pix covered by mask onto
// [0, 255]. If the masked range is empty or flat, the result is all
// zero.
func stretch(pix, mask []uint8) []uint8 {
	ret := make([]uint8, len(pix))

	lo, hi := 255, -1
	for i, v := range pix {
		if mask[i] == 0 {
			continue
		}
		lo = min(lo, int(v))
		hi = max(hi, int(v))
	}
	if hi <= lo {
		return ret
	}

	scale := 255 / float64(hi-lo)
	for i, v := range pix {
		s := math.Round(float64(int(v)-lo) * scale)
		ret[i] = uint8(math.Max(0, math.Min(255, s)))
	}
	return ret
}

// floats copies the contents of a continuous CV_32F Mat.
func floats(m gocv.Mat) ([]float32, error) {
	data, err := m.DataPtrFloat32()
	if err != nil {
		return nil, err
	}
	return append([]float32(nil), data...), nil
}

func (f *Finder) traceMat(name string, m gocv.Mat) {
	if f.tracing() {
		f.trace.Trace(name, m)
	}
}

// erodeMask returns the LED mask with the masked regions grown by
// an elliptical kernel of size k.
func (f *Finder) erodeMask(k int) ([]uint8, error) {
	mask, err := newMat(f.rows, f.cols, f.mask)
	if err != nil {
		return nil, err
	}
	defer mask.Close()

	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{k, k})
	defer kernel.Close()

	eroded := gocv.NewMat()
	defer eroded.Close()
	gocv.Erode(mask, &eroded, kernel)
	return eroded.ToBytes(), nil
}
