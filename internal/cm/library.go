// Package cm implements the context model: the general RGBA residual coder
// that handles whatever pixels the mask and 2-D LZ layers leave uncovered.
// Each tile picks a spatial predictor and a color filter; residuals are
// decorrelated into Y/U/V/A and entropy-coded in chaos-conditioned bins.
package cm

import (
	"sort"

	"github.com/opengcif/gcif/internal/chaos"
	"github.com/opengcif/gcif/internal/filter"
)

// maxLibrarySize bounds how many spatial filters one image's tile grid
// chooses between: the 17 named defaults plus however many tap filters the
// design pass below admits.
const maxLibrarySize = 32

// coverageThreshold and awardShareThreshold gate which tap filters earn a
// permanent slot in the image's filter library, mirroring the "keep a
// filter only if it's broadly useful, not just a one-tile fluke" rule.
const (
	coverageThreshold   = 0.8
	awardShareThreshold = 0.05
)

// namedFilters are always available; they need no header entry since every
// decoder already knows them.
var namedFilters = []filter.SpatialFilter{
	filter.SFZ, filter.SFD, filter.SFC, filter.SFB, filter.SFA, filter.SFAB,
	filter.SFBD, filter.SFClampGrad, filter.SFSkewGrad, filter.SFPickLeft,
	filter.SFPredUR, filter.SFABCClamp, filter.SFPaeth, filter.SFABCPaeth,
	filter.SFPLO, filter.SFABCD, filter.SFAD,
}

func tapFilter(i int) filter.SpatialFilter {
	return filter.SpatialFilter(filter.SpatialFilterCount - filter.TappedCount + i)
}

func tapIndex(sf filter.SpatialFilter) int {
	return int(sf) - (filter.SpatialFilterCount - filter.TappedCount)
}

// designLibrary scores every named and tap filter on luma against the tile
// grid and returns the per-image filter library: the 17 named filters
// first, followed by whichever tap filters clear both award thresholds,
// ranked by total award and capped at maxLibrarySize.
//
// Scoring works on luma alone rather than the full RGB residual a tile
// would actually use, since a spatial predictor's quality barely depends on
// which color filter follows it: this keeps the design pass to one scan per
// candidate instead of one per (filter, color filter) pair.
func designLibrary(luma *filter.Plane, tileSize int) []filter.SpatialFilter {
	tx := (luma.Width + tileSize - 1) / tileSize
	ty := (luma.Height + tileSize - 1) / tileSize
	numTiles := tx * ty
	if numTiles == 0 {
		return append([]filter.SpatialFilter(nil), namedFilters...)
	}

	total := len(namedFilters) + filter.TappedCount
	allFilters := make([]filter.SpatialFilter, total)
	copy(allFilters, namedFilters)
	for i := 0; i < filter.TappedCount; i++ {
		allFilters[len(namedFilters)+i] = tapFilter(i)
	}

	award := make([]int, total)
	coverage := make([]int, total)

	type ranked struct {
		idx   int
		score int
	}
	scored := make([]ranked, total)

	for tj := 0; tj < ty; tj++ {
		for ti := 0; ti < tx; ti++ {
			x0, y0 := ti*tileSize, tj*tileSize
			x1, y1 := x0+tileSize, y0+tileSize
			if x1 > luma.Width {
				x1 = luma.Width
			}
			if y1 > luma.Height {
				y1 = luma.Height
			}

			for i, sf := range allFilters {
				sum := 0
				for y := y0; y < y1; y++ {
					for x := x0; x < x1; x++ {
						pred := filter.Predict(sf, luma, x, y)
						residual := byte(int(luma.At(x, y)) - int(pred))
						sum += chaos.Score(residual)
					}
				}
				scored[i] = ranked{idx: i, score: sum}
			}
			sort.Slice(scored, func(a, b int) bool { return scored[a].score < scored[b].score })

			points := [4]int{5, 3, 1, 1}
			for k := 0; k < len(points) && k < len(scored); k++ {
				award[scored[k].idx] += points[k]
				coverage[scored[k].idx]++
			}
		}
	}

	totalAward := 0
	for _, a := range award {
		totalAward += a
	}

	type extra struct {
		sf    filter.SpatialFilter
		award int
	}
	var extras []extra
	if totalAward > 0 {
		for i := 0; i < filter.TappedCount; i++ {
			idx := len(namedFilters) + i
			cov := float64(coverage[idx]) / float64(numTiles)
			share := float64(award[idx]) / float64(totalAward)
			if cov >= coverageThreshold && share >= awardShareThreshold {
				extras = append(extras, extra{sf: tapFilter(i), award: award[idx]})
			}
		}
	}
	sort.Slice(extras, func(a, b int) bool { return extras[a].award > extras[b].award })

	lib := append([]filter.SpatialFilter(nil), namedFilters...)
	for _, e := range extras {
		if len(lib) >= maxLibrarySize {
			break
		}
		lib = append(lib, e.sf)
	}
	return lib
}
