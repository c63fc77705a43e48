package overlay

import (
	"path/filepath"
	"testing"

	"gocv.io/x/gocv"

	"github.com/gwquinn/IrisFinder/internal/location"
)

func createGrayImage(rows, cols int, v uint8) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(float64(v), 0, 0, 0), rows, cols, gocv.MatTypeCV8U)
}

// bgrAt returns the pixel at (x, y) of a BGR Mat.
func bgrAt(m gocv.Mat, x, y int) [3]uint8 {
	return [3]uint8{m.GetUCharAt(y, x*3), m.GetUCharAt(y, x*3+1), m.GetUCharAt(y, x*3+2)}
}

func TestDraw(t *testing.T) {
	im := createGrayImage(100, 100, 50)
	defer im.Close()

	pupil := location.Boundary{Type: location.Pupil, X: 50, Y: 50, A: 20, B: 20}
	limbus := location.Boundary{Type: location.Limbus, X: 50, Y: 50, A: 40, B: 40}

	out, err := Draw(im, DefaultStyle(), pupil, limbus)
	if err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	defer out.Close()

	if out.Channels() != 3 || out.Rows() != 100 || out.Cols() != 100 {
		t.Fatalf("output: got %dx%d with %d channels, want 100x100 BGR", out.Cols(), out.Rows(), out.Channels())
	}

	tests := []struct {
		name string
		x, y int
		want [3]uint8
	}{
		{"pupil edge", 70, 50, [3]uint8{0, 0, 255}},
		{"pupil center", 50, 50, [3]uint8{0, 0, 255}},
		{"limbus edge", 90, 50, [3]uint8{0, 255, 0}},
		{"untouched", 5, 5, [3]uint8{50, 50, 50}},
	}
	for _, tt := range tests {
		if got := bgrAt(out, tt.x, tt.y); got != tt.want {
			t.Errorf("%s: pixel (%d,%d) = %v, want %v", tt.name, tt.x, tt.y, got, tt.want)
		}
	}

	// The input is left alone.
	if im.Channels() != 1 || im.GetUCharAt(50, 70) != 50 {
		t.Error("Draw modified its input")
	}
}

func TestDrawSkipsNotFound(t *testing.T) {
	im := createGrayImage(20, 20, 90)
	defer im.Close()

	out, err := Draw(im, DefaultStyle(), location.NotFound(location.Pupil), location.NotFound(location.Limbus))
	if err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	defer out.Close()

	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			if got := bgrAt(out, x, y); got != [3]uint8{90, 90, 90} {
				t.Fatalf("pixel (%d,%d) = %v, want unchanged", x, y, got)
			}
		}
	}
}

func TestDrawBadColor(t *testing.T) {
	im := createGrayImage(10, 10, 0)
	defer im.Close()

	style := DefaultStyle()
	style.LimbusColor = "green"
	out, err := Draw(im, style)
	defer out.Close()
	if err == nil {
		t.Error("expected an error for a color that isn't hex")
	}
}

func TestSave(t *testing.T) {
	im := createGrayImage(10, 10, 128)
	defer im.Close()

	path := filepath.Join(t.TempDir(), "overlay.png")
	if err := Save(path, im); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	back := gocv.IMRead(path, gocv.IMReadGrayScale)
	defer back.Close()
	if back.Empty() || back.GetUCharAt(3, 3) != 128 {
		t.Error("saved image doesn't read back")
	}
}
