package filter

// Plane is a single-channel byte raster a spatial filter predicts over: the
// residual coder always works one channel (Y, U, V, or A) at a time, so
// filters never see the other three bytes of a pixel.
type Plane struct {
	Width, Height int
	Pix           []byte
}

// NewPlane allocates a zeroed width*height plane.
func NewPlane(width, height int) *Plane {
	return &Plane{Width: width, Height: height, Pix: make([]byte, width*height)}
}

func (p *Plane) at(x, y int) byte {
	if x < 0 || y < 0 || x >= p.Width || y >= p.Height {
		return 0
	}
	return p.Pix[y*p.Width+x]
}

// Set writes one pixel of the plane.
func (p *Plane) Set(x, y int, v byte) {
	p.Pix[y*p.Width+x] = v
}

// At reads one pixel of the plane.
func (p *Plane) At(x, y int) byte {
	return p.Pix[y*p.Width+x]
}

// SpatialFilter identifies one of the 17 named predictors or one of the 80
// linear "tap" predictors available to a tile.
type SpatialFilter int

const (
	SFZ SpatialFilter = iota
	SFD
	SFC
	SFB
	SFA
	SFAB
	SFBD
	SFClampGrad
	SFSkewGrad
	SFPickLeft
	SFPredUR
	SFABCClamp
	SFPaeth
	SFABCPaeth
	SFPLO
	SFABCD
	SFAD

	namedFilterCount
)

// TappedFilter identifies one of the 80 linear predictors built from
// FilterTaps: SpatialFilter values namedFilterCount..namedFilterCount+79
// select tap index (value - namedFilterCount).
const TappedCount = 80

// SpatialFilterCount is the total number of selectable spatial filters: the
// 17 named ones plus the 80 tap-coefficient ones.
const SpatialFilterCount = int(namedFilterCount) + TappedCount

// FilterTaps holds the (a, b, c, d) coefficients of each tap filter:
// predicted = (a*A + b*B + c*C + d*D) / 2, where A, B, C, D are the left,
// top, top-left, and top-right neighbor bytes.
var FilterTaps = [TappedCount][4]int{
	{3, 3, 0, -4}, {2, 4, 0, -4}, {1, 2, 3, -4}, {2, 4, -1, -3}, {3, 4, -3, -2},
	{2, 4, -2, -2}, {4, 0, 0, -2}, {3, 1, 0, -2}, {2, 2, 0, -2}, {4, -1, 1, -2},
	{3, 0, 1, -2}, {2, 0, 2, -2}, {0, 2, 2, -2}, {-1, 1, 4, -2}, {-2, 2, 4, -2},
	{2, 3, -2, -1}, {2, 2, -1, -1}, {1, 3, -1, -1}, {3, 0, 0, -1}, {2, 1, 0, -1},
	{1, 2, 0, -1}, {0, 3, 0, -1}, {4, -2, 1, -1}, {2, 0, 1, -1}, {1, 1, 1, -1},
	{0, 2, 1, -1}, {2, -1, 2, -1}, {1, 0, 2, -1}, {0, 1, 2, -1}, {-2, 2, 3, -1},
	{2, 3, -3, 0}, {2, 1, -1, 0}, {1, 2, -1, 0}, {3, -1, 0, 0}, {3, -2, 1, 0},
	{2, -1, 1, 0}, {1, 0, 1, 0}, {0, 1, 1, 0}, {-1, 2, 1, 0}, {2, -2, 2, 0},
	{1, -1, 2, 0}, {-1, 1, 2, 0}, {-2, 2, 2, 0}, {-1, 0, 3, 0}, {2, 1, -2, 1},
	{2, 0, -1, 1}, {1, 1, -1, 1}, {0, 2, -1, 1}, {2, -1, 0, 1}, {-1, 2, 0, 1},
	{2, -2, 1, 1}, {1, -1, 1, 1}, {0, 0, 1, 1}, {-1, 1, 1, 1}, {-2, 2, 1, 1},
	{1, -2, 2, 1}, {2, -3, 2, 1}, {0, -1, 2, 1}, {-1, 0, 2, 1}, {1, -3, 3, 1},
	{2, 0, -2, 2}, {0, 2, -2, 2}, {2, -1, -1, 2}, {1, 0, -1, 2}, {0, 1, -1, 2},
	{2, -2, 0, 2}, {1, -1, 0, 2}, {-1, 1, 0, 2}, {-2, 2, 0, 2}, {2, -3, 1, 2},
	{1, -2, 1, 2}, {0, -1, 1, 2}, {-1, 0, 1, 2}, {2, -4, 2, 2}, {0, -2, 2, 2},
	{-2, 0, 2, 2}, {1, -4, 3, 2}, {2, -2, -1, 3}, {0, -1, 0, 3}, {2, -4, 0, 4},
}

func clamp255(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

func abcClamp(a, b, c int) byte {
	return clamp255(a + b - c)
}

func iabs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func paeth(a, b, c int) byte {
	p := a + b - c
	pa, pb, pc := iabs(p-a), iabs(p-b), iabs(p-c)
	switch {
	case pa <= pb && pa <= pc:
		return byte(a)
	case pb <= pc:
		return byte(b)
	default:
		return byte(c)
	}
}

func abcPaeth(a, b, c int) byte {
	if a <= c && c <= b {
		return byte(a + b - c)
	}
	return paeth(a, b, c)
}

func predLevel(a, b, c int) byte {
	switch {
	case c >= a && c >= b:
		if a > b {
			return byte(b)
		}
		return byte(a)
	case c <= a && c <= b:
		if a > b {
			return byte(a)
		}
		return byte(b)
	default:
		return byte(b + a - c)
	}
}

func leftSel(f, c, a int) byte {
	if iabs(f-c) < iabs(f-a) {
		return byte(c)
	}
	return byte(a)
}

func clampGrad(b, a, c int) byte {
	grad := b + a - c
	lo, hi := b, b
	if lo > a {
		lo = a
	}
	if lo > c {
		lo = c
	}
	if hi < a {
		hi = a
	}
	if hi < c {
		hi = c
	}
	switch {
	case grad <= lo:
		return byte(lo)
	case grad >= hi:
		return byte(hi)
	default:
		return byte(grad)
	}
}

func skewGrad(b, a, c int) byte {
	pred := (3*(b+a) - (c << 1)) >> 2
	if pred >= 255 {
		return 255
	}
	if pred <= 0 {
		return 0
	}
	return byte(pred)
}

// Predict computes the prediction for plane pixel (x, y) under spatial
// filter sf. SFZ always predicts zero. Every other named and tap filter
// falls back the same way at the image edges: the left neighbor when only
// it exists, the top neighbor when only it exists, zero at the top-left
// corner.
func Predict(sf SpatialFilter, p *Plane, x, y int) byte {
	width := p.Width
	hasLeft := x > 0
	hasTop := y > 0
	a := int(p.at(x-1, y))
	b := int(p.at(x, y-1))
	c := int(p.at(x-1, y-1))
	d := int(p.at(x+1, y-1))

	if sf >= namedFilterCount {
		return predictTap(int(sf)-int(namedFilterCount), p, x, y, hasLeft, hasTop, a, b, c, d)
	}

	switch sf {
	case SFZ:
		return 0
	case SFD:
		if hasTop && x < width-1 {
			return byte(d)
		}
		if hasTop {
			return byte(b)
		}
		if hasLeft {
			return byte(a)
		}
		return 0
	case SFC:
		if hasLeft && hasTop {
			return byte(c)
		}
		if hasLeft {
			return byte(a)
		}
		if hasTop {
			return byte(b)
		}
		return 0
	case SFB:
		if hasTop {
			return byte(b)
		}
		if hasLeft {
			return byte(a)
		}
		return 0
	case SFA:
		if hasLeft {
			return byte(a)
		}
		if hasTop {
			return byte(b)
		}
		return 0
	case SFAB:
		if hasLeft && hasTop {
			return byte((a + b + 1) >> 1)
		}
		if hasLeft {
			return byte(a)
		}
		if hasTop {
			return byte(b)
		}
		return 0
	case SFBD:
		if hasTop && x < width-1 {
			return byte((b + d + 1) >> 1)
		}
		if hasTop {
			return byte(b)
		}
		if hasLeft {
			return byte(a)
		}
		return 0
	case SFClampGrad:
		if hasTop && hasLeft {
			return clampGrad(b, a, c)
		}
		if hasTop && x < width-1 {
			return byte(d)
		}
		if hasLeft {
			return byte(a)
		}
		return 0
	case SFSkewGrad:
		if hasTop && hasLeft {
			return skewGrad(b, a, c)
		}
		if hasTop && x < width-1 {
			return byte(d)
		}
		if hasLeft {
			return byte(a)
		}
		return 0
	case SFPickLeft:
		if hasLeft && x > 1 && hasTop {
			f := int(p.at(x-2, y-1))
			return leftSel(f, c, a)
		}
		if hasLeft {
			return byte(a)
		}
		if hasTop {
			return byte(b)
		}
		return 0
	case SFPredUR:
		if y > 1 && x < width-2 {
			dd := int(p.at(x+1, y-1))
			ee := int(p.at(x+2, y-2))
			return clamp255(dd*2 - ee)
		}
		if hasLeft {
			return byte(a)
		}
		if hasTop {
			return byte(b)
		}
		return 0
	case SFABCClamp:
		if hasLeft && hasTop {
			return abcClamp(a, b, c)
		}
		if hasLeft {
			return byte(a)
		}
		if hasTop {
			return byte(b)
		}
		return 0
	case SFPaeth:
		if hasLeft && hasTop {
			return paeth(a, b, c)
		}
		if hasLeft {
			return byte(a)
		}
		if hasTop {
			return byte(b)
		}
		return 0
	case SFABCPaeth:
		if hasLeft && hasTop {
			return abcPaeth(a, b, c)
		}
		if hasLeft {
			return byte(a)
		}
		if hasTop {
			return byte(b)
		}
		return 0
	case SFPLO:
		if hasLeft && hasTop {
			src := b
			if x < width-1 {
				src = d
			}
			return predLevel(a, src, b)
		}
		if hasLeft {
			return byte(a)
		}
		if hasTop {
			return byte(b)
		}
		return 0
	case SFABCD:
		if hasLeft && hasTop {
			src := b
			if x < width-1 {
				src = d
			}
			return byte((a + b + c + src + 1) >> 2)
		}
		if hasLeft {
			return byte(a)
		}
		if hasTop && x < width-1 {
			return byte((b + d) >> 1)
		}
		if hasTop {
			return byte(b)
		}
		return 0
	case SFAD:
		if hasTop {
			src := b
			if hasLeft && x < width-1 {
				src = d
			}
			if hasLeft {
				return byte((a + src) >> 1)
			}
			return byte(src)
		}
		if hasLeft {
			return byte(a)
		}
		return 0
	default:
		return 0
	}
}

// predictTap evaluates tap filter idx, falling back to the same A/B/zero
// rule as the named filters when a neighbor is unavailable.
func predictTap(idx int, p *Plane, x, y int, hasLeft, hasTop bool, a, b, c, d int) byte {
	if hasLeft && hasTop {
		taps := FilterTaps[idx]
		sum := taps[0]*a + taps[1]*b + taps[2]*c + taps[3]*d
		return clamp255(sum >> 1)
	}
	if hasLeft {
		return byte(a)
	}
	if hasTop {
		return byte(b)
	}
	return 0
}
