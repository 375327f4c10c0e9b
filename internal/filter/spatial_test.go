package filter

import "testing"

func fillPlane(p *Plane, f func(x, y int) byte) {
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			p.Set(x, y, f(x, y))
		}
	}
}

func TestPredictDeterministic(t *testing.T) {
	p := NewPlane(8, 8)
	fillPlane(p, func(x, y int) byte { return byte((x*7 + y*13) % 251) })

	for sf := SpatialFilter(0); sf < SpatialFilter(SpatialFilterCount); sf++ {
		for y := 0; y < p.Height; y++ {
			for x := 0; x < p.Width; x++ {
				a := Predict(sf, p, x, y)
				b := Predict(sf, p, x, y)
				if a != b {
					t.Fatalf("filter %d: Predict(%d,%d) not deterministic: %d != %d", sf, x, y, a, b)
				}
			}
		}
	}
}

func TestPredictCornerIsZero(t *testing.T) {
	p := NewPlane(4, 4)
	fillPlane(p, func(x, y int) byte { return 200 })
	for sf := SpatialFilter(0); sf < SpatialFilter(SpatialFilterCount); sf++ {
		if got := Predict(sf, p, 0, 0); got != 0 {
			t.Fatalf("filter %d: Predict(0,0) = %d, want 0", sf, got)
		}
	}
}

func TestPredictFirstRowUsesLeftNeighbor(t *testing.T) {
	p := NewPlane(5, 3)
	fillPlane(p, func(x, y int) byte { return byte(10 + x) })
	for sf := SpatialFilter(0); sf < SpatialFilter(SpatialFilterCount); sf++ {
		for x := 1; x < p.Width; x++ {
			got := Predict(sf, p, x, 0)
			want := p.At(x-1, 0)
			if sf == SFZ {
				want = 0
			}
			if got != want {
				t.Fatalf("filter %d: Predict(%d,0) = %d, want %d", sf, x, got, want)
			}
		}
	}
}

func TestFiltersAgreeOnFlatRegion(t *testing.T) {
	p := NewPlane(6, 6)
	fillPlane(p, func(x, y int) byte { return 42 })
	for sf := SpatialFilter(0); sf < SpatialFilter(SpatialFilterCount); sf++ {
		got := Predict(sf, p, 3, 3)
		want := byte(42)
		if sf == SFZ {
			want = 0
		}
		if got != want {
			t.Fatalf("filter %d: Predict on flat region = %d, want %d", sf, got, want)
		}
	}
}

func TestTapFilterCount(t *testing.T) {
	if len(FilterTaps) != TappedCount {
		t.Fatalf("len(FilterTaps) = %d, want %d", len(FilterTaps), TappedCount)
	}
}
