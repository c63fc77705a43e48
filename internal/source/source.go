// Package source loads eye images into gocv Mats, from files or from
// any reader holding an encoded image.
package source

import (
	"fmt"
	"image"
	"io"
	"os"
	"runtime"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"

	// Formats beyond those imaging registers.
	_ "golang.org/x/image/webp"
)

// Read decodes the image file at path.
func Read(path string) (gocv.Mat, error) {
	f, err := os.Open(path)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("source: %w", err)
	}
	defer f.Close()

	m, err := Decode(f)
	if err != nil {
		return m, fmt.Errorf("source: %s: %w", path, err)
	}
	return m, nil
}

// Decode decodes an encoded image, applying any EXIF orientation.
// Grayscale images give single channel Mats, anything else gives BGR.
func Decode(r io.Reader) (gocv.Mat, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("decoding image: %w", err)
	}
	return FromImage(img)
}

// FromImage converts img to a Mat. *image.Gray and *image.Gray16
// become 8-bit single channel Mats, everything else becomes 8-bit
// BGR.
func FromImage(img image.Image) (gocv.Mat, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return gocv.NewMat(), fmt.Errorf("empty %dx%d image", w, h)
	}

	var (
		pix []byte
		mt  gocv.MatType
	)
	switch src := img.(type) {
	case *image.Gray:
		mt = gocv.MatTypeCV8U
		pix = make([]byte, 0, w*h)
		for y := 0; y < h; y++ {
			start := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			pix = append(pix, src.Pix[start:start+w]...)
		}
	case *image.Gray16:
		mt = gocv.MatTypeCV8U
		pix = make([]byte, 0, w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				pix = append(pix, uint8(src.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y>>8))
			}
		}
	default:
		mt = gocv.MatTypeCV8UC3
		pix = make([]byte, 0, 3*w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				pix = append(pix, uint8(b>>8), uint8(g>>8), uint8(r>>8))
			}
		}
	}

	m, err := gocv.NewMatFromBytes(h, w, mt, pix)
	if err != nil {
		return m, err
	}
	// m borrows pix. Hand back a Mat that owns its memory.
	ret := m.Clone()
	m.Close()
	runtime.KeepAlive(pix)
	return ret, nil
}
