package location

import "testing"

func TestThinBar(t *testing.T) {
	const rows, cols = 9, 30
	pix := make([]uint8, rows*cols)
	for y := 2; y <= 6; y++ {
		for x := 3; x < 27; x++ {
			pix[y*cols+x] = 255
		}
	}

	got, err := thin(pix, rows, cols)
	if err != nil {
		t.Fatalf("thin: %v", err)
	}
	if len(got) != len(pix) {
		t.Fatalf("thinned grid has %d pixels, want %d", len(got), len(pix))
	}

	// Away from the ends, the skeleton is a single straight line
	// through the middle of the bar.
	row := -1
	for x := 8; x < 22; x++ {
		count := 0
		for y := 0; y < rows; y++ {
			if got[y*cols+x] == 0 {
				continue
			}
			count++
			if y < 3 || y > 5 {
				t.Errorf("column %d: skeleton pixel at row %d, want rows 3 to 5", x, y)
			}
			if row == -1 {
				row = y
			} else if y != row {
				t.Errorf("column %d: skeleton pixel at row %d, previous columns at row %d", x, y, row)
			}
		}
		if count != 1 {
			t.Errorf("column %d has %d skeleton pixels, want 1", x, count)
		}
	}

	// The input is left alone.
	if pix[2*cols+10] != 255 {
		t.Error("thin modified its input")
	}
}

func TestThinKeepsIsolatedPixels(t *testing.T) {
	const rows, cols = 5, 5
	pix := make([]uint8, rows*cols)
	pix[2*cols+2] = 255

	got, err := thin(pix, rows, cols)
	if err != nil {
		t.Fatalf("thin: %v", err)
	}
	if got[2*cols+2] == 0 {
		t.Error("isolated pixel was removed")
	}
}

func TestThinEmpty(t *testing.T) {
	got, err := thin(make([]uint8, 16), 4, 4)
	if err != nil {
		t.Fatalf("thin: %v", err)
	}
	for i, v := range got {
		if v != 0 {
			t.Fatalf("pixel %d set in thinned empty grid", i)
		}
	}
}
