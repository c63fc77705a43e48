// Package overlay draws located boundaries on top of eye images.
package overlay

import (
	"fmt"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gocv.io/x/gocv"

	"github.com/gwquinn/IrisFinder/internal/location"
)

// Style controls how boundaries are drawn. Colors are hex strings
// such as "#ff0000".
type Style struct {
	PupilColor  string
	LimbusColor string
	Thickness   int // ellipse line thickness
	DotRadius   int // radius of the filled center dot, 0 for none
}

// DefaultStyle draws pupils in red and limbuses in green.
func DefaultStyle() Style {
	return Style{
		PupilColor:  "#ff0000",
		LimbusColor: "#00ff00",
		Thickness:   1,
		DotRadius:   2,
	}
}

// Draw returns a BGR copy of im with each found boundary drawn as an
// ellipse with a dot at its center. Boundaries that weren't found are
// skipped.
func Draw(im gocv.Mat, style Style, bs ...location.Boundary) (gocv.Mat, error) {
	pupilColor, err := parseColor(style.PupilColor)
	if err != nil {
		return gocv.NewMat(), err
	}
	limbusColor, err := parseColor(style.LimbusColor)
	if err != nil {
		return gocv.NewMat(), err
	}

	out := gocv.NewMat()
	switch im.Channels() {
	case 1:
		gocv.CvtColor(im, &out, gocv.ColorGrayToBGR)
	case 4:
		gocv.CvtColor(im, &out, gocv.ColorBGRAToBGR)
	default:
		im.CopyTo(&out)
	}
	if out.Type() != gocv.MatTypeCV8UC3 {
		out.ConvertTo(&out, gocv.MatTypeCV8UC3)
	}

	for _, b := range bs {
		if !b.Found() {
			continue
		}
		c := limbusColor
		if b.Type == location.Pupil {
			c = pupilColor
		}
		gocv.Ellipse(&out, b.Center(), b.Axes(), 0, 0, 360, c, style.Thickness)
		if style.DotRadius > 0 {
			gocv.Circle(&out, b.Center(), style.DotRadius, c, -1)
		}
	}
	return out, nil
}

// Save writes m to path. The format follows the file extension.
func Save(path string, m gocv.Mat) error {
	if !gocv.IMWrite(path, m) {
		return fmt.Errorf("overlay: failed to write %s", path)
	}
	return nil
}

func parseColor(hex string) (color.RGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("overlay: bad color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}
