package filter

import "testing"

// TestColorFiltersRoundTrip exhaustively checks inverse_CF(CF(R,G,B)) ==
// (R,G,B) over the full byte cube for every filter in the library. Gated
// behind -short since it is 16 * 256^3 forward/inverse pairs.
func TestColorFiltersRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping exhaustive 256^3 color filter sweep in -short mode")
	}
	for cf := ColorFilter(0); cf < ColorFilterCount; cf++ {
		for r := 0; r < 256; r++ {
			for g := 0; g < 256; g++ {
				for b := 0; b < 256; b++ {
					rb, gb, bb := byte(r), byte(g), byte(b)
					y, u, v := ForwardColor(cf, rb, gb, bb)
					gotR, gotG, gotB := InverseColor(cf, y, u, v)
					if gotR != rb || gotG != gb || gotB != bb {
						t.Fatalf("filter %d: round trip (%d,%d,%d) -> (%d,%d,%d) -> (%d,%d,%d)",
							cf, rb, gb, bb, y, u, v, gotR, gotG, gotB)
					}
				}
			}
		}
	}
}

// TestColorFiltersRoundTripShort is the -short-mode substitute: a structured
// sweep of every byte value against a handful of wraparound-adjacent
// partners, cheap enough to run on every test invocation.
func TestColorFiltersRoundTripShort(t *testing.T) {
	others := []byte{0, 1, 2, 127, 128, 129, 253, 254, 255}
	for cf := ColorFilter(0); cf < ColorFilterCount; cf++ {
		for r := 0; r < 256; r++ {
			rb := byte(r)
			for _, gb := range others {
				for _, bb := range others {
					y, u, v := ForwardColor(cf, rb, gb, bb)
					gotR, gotG, gotB := InverseColor(cf, y, u, v)
					if gotR != rb || gotG != gb || gotB != bb {
						t.Fatalf("filter %d: round trip (%d,%d,%d) -> (%d,%d,%d) -> (%d,%d,%d)",
							cf, rb, gb, bb, y, u, v, gotR, gotG, gotB)
					}
				}
			}
		}
	}
}
