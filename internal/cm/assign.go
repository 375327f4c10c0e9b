package cm

import (
	"github.com/opengcif/gcif/internal/chaos"
	"github.com/opengcif/gcif/internal/filter"
)

// tileAssignment records one tile's chosen predictor (as a library index)
// and color filter.
type tileAssignment struct {
	sfIdx int
	cf    filter.ColorFilter
}

// revisitPasses bounds how many times assignTiles rescans the whole grid
// after the initial pick, trading a little compile-time-unbounded search for
// a cheap, convergent nudge toward neighbor agreement.
const revisitPasses = 2

// neighborBonus discounts a candidate's cost, in chaos-score units, for each
// of its left/top neighbor tiles that already made the same choice: two
// adjacent tiles agreeing on SF or CF makes the tile-map itself cheaper to
// code, a saving the raw per-tile residual cost below can't see on its own.
const neighborBonus = 1

// assignTiles picks every tile's (SF, CF) pair. The first pass is a plain
// minimum-residual search per tile; later passes fold in a mild bonus for
// matching already-assigned neighbors and keep whichever choice wins.
func assignTiles(rPlane, gPlane, bPlane *filter.Plane, lib []filter.SpatialFilter, tileSize int) []tileAssignment {
	width, height := rPlane.Width, rPlane.Height
	tx := (width + tileSize - 1) / tileSize
	ty := (height + tileSize - 1) / tileSize
	assign := make([]tileAssignment, tx*ty)

	bounds := func(ti, tj int) (x0, y0, x1, y1 int) {
		x0, y0 = ti*tileSize, tj*tileSize
		x1, y1 = x0+tileSize, y0+tileSize
		if x1 > width {
			x1 = width
		}
		if y1 > height {
			y1 = height
		}
		return
	}

	cost := func(sfIdx int, cf filter.ColorFilter, x0, y0, x1, y1 int) int {
		sf := lib[sfIdx]
		sum := 0
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				pr := int(rPlane.At(x, y)) - int(filter.Predict(sf, rPlane, x, y))
				pg := int(gPlane.At(x, y)) - int(filter.Predict(sf, gPlane, x, y))
				pb := int(bPlane.At(x, y)) - int(filter.Predict(sf, bPlane, x, y))
				yy, uu, vv := filter.ForwardColor(cf, byte(pr), byte(pg), byte(pb))
				sum += chaos.Score(yy) + chaos.Score(uu) + chaos.Score(vv)
			}
		}
		return sum
	}

	for tj := 0; tj < ty; tj++ {
		for ti := 0; ti < tx; ti++ {
			x0, y0, x1, y1 := bounds(ti, tj)
			bestCost := -1
			var best tileAssignment
			for si := range lib {
				for cfi := 0; cfi < int(filter.ColorFilterCount); cfi++ {
					cf := filter.ColorFilter(cfi)
					c := cost(si, cf, x0, y0, x1, y1)
					if bestCost < 0 || c < bestCost {
						bestCost, best = c, tileAssignment{sfIdx: si, cf: cf}
					}
				}
			}
			assign[tj*tx+ti] = best
		}
	}

	for pass := 0; pass < revisitPasses; pass++ {
		for tj := 0; tj < ty; tj++ {
			for ti := 0; ti < tx; ti++ {
				x0, y0, x1, y1 := bounds(ti, tj)
				bestCost := -1
				var best tileAssignment
				for si := range lib {
					for cfi := 0; cfi < int(filter.ColorFilterCount); cfi++ {
						cf := filter.ColorFilter(cfi)
						c := cost(si, cf, x0, y0, x1, y1)
						if ti > 0 {
							left := assign[tj*tx+ti-1]
							if left.sfIdx == si {
								c -= neighborBonus
							}
							if left.cf == cf {
								c -= neighborBonus
							}
						}
						if tj > 0 {
							top := assign[(tj-1)*tx+ti]
							if top.sfIdx == si {
								c -= neighborBonus
							}
							if top.cf == cf {
								c -= neighborBonus
							}
						}
						if bestCost < 0 || c < bestCost {
							bestCost, best = c, tileAssignment{sfIdx: si, cf: cf}
						}
					}
				}
				assign[tj*tx+ti] = best
			}
		}
	}

	return assign
}
