package gcifimage

import "testing"

func TestValidateAcceptsInRangeDimensions(t *testing.T) {
	img := New(4, 4)
	if err := img.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateRejectsZeroAndOversizedDimensions(t *testing.T) {
	cases := []struct {
		name          string
		width, height int
	}{
		{"zero width", 0, 4},
		{"zero height", 4, 0},
		{"width too large", MaxDimension + 1, 1},
		{"height too large", 1, MaxDimension + 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			img := New(1, 1)
			img.Width, img.Height = tc.width, tc.height
			if err := img.Validate(); err == nil {
				t.Fatalf("Validate() = nil, want error for %s", tc.name)
			}
		})
	}
}

func TestValidateRejectsMismatchedBuffer(t *testing.T) {
	img := New(4, 4)
	img.Pix = img.Pix[:len(img.Pix)-1]
	if err := img.Validate(); err == nil {
		t.Fatalf("Validate() = nil, want error for short buffer")
	}
}

func TestSetAndAtRoundTrip(t *testing.T) {
	img := New(3, 2)
	img.Set(2, 1, 10, 20, 30, 40)
	r, g, b, a := img.At(2, 1)
	if r != 10 || g != 20 || b != 30 || a != 40 {
		t.Fatalf("At(2,1) = %d,%d,%d,%d, want 10,20,30,40", r, g, b, a)
	}
	// Neighboring pixels are untouched.
	r, g, b, a = img.At(0, 0)
	if r != 0 || g != 0 || b != 0 || a != 0 {
		t.Fatalf("At(0,0) = %d,%d,%d,%d, want zero pixel", r, g, b, a)
	}
}

func TestOpaque(t *testing.T) {
	img := New(2, 2)
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	if !img.Opaque() {
		t.Fatalf("Opaque() = false, want true for all-255 alpha")
	}
	img.Set(1, 1, 0, 0, 0, 0)
	if img.Opaque() {
		t.Fatalf("Opaque() = true, want false after zeroing one alpha byte")
	}
}
