package filter

// ColorFilter identifies one of the 16 reversible RGB<->YUV transforms the
// tile encoder can pick per tile. Every filter is built from byte (mod-256)
// subtraction and addition plus the occasional average, so it inverts
// bit-exactly regardless of wraparound: the decoder recovers R,G,B from
// Y,U,V using only the inverse combination of the same wrapped arithmetic,
// never a wider or saturating type.
type ColorFilter int

const (
	CFGB_RG ColorFilter = iota
	CFGR_BG
	CFYUVr
	CFD9
	CFD12
	CFD8
	CFE2R
	CFBG_RG
	CFGR_BR
	CFD18
	CFB_GR_R
	CFD11
	CFD14
	CFD10
	CFYCgCoR
	CFGB_RB

	ColorFilterCount
)

// ForwardColor converts an RGB triple to YUV using color filter cf. Each
// intermediate value is computed in the wider int domain from already-
// truncated byte inputs, then truncated back to byte at the point where the
// original assigns it to a u8 local — matching the original's integer
// promotion rules exactly, so an average like (r+g)>>1 sees the true sum
// instead of one wrapped mod 256 first.
func ForwardColor(cf ColorFilter, r, g, b byte) (y, u, v byte) {
	R, G, B := int(r), int(g), int(b)
	switch cf {
	case CFGB_RG:
		y = byte(B)
		u = byte(G - B)
		v = byte(G - R)
	case CFGR_BG:
		y = byte(G - B)
		u = byte(G - R)
		v = byte(R)
	case CFYUVr:
		uu := byte(B - G)
		vv := byte(R - G)
		y = byte(G + int((int8(uu)+int8(vv))>>2))
		u, v = uu, vv
	case CFD9:
		y = byte(R)
		u = byte(B - ((R + G*3) >> 2))
		v = byte(G - R)
	case CFD12:
		y = byte(B)
		u = byte(G - ((R*3 + B) >> 2))
		v = byte(R - B)
	case CFD8:
		y = byte(R)
		u = byte(B - ((R + G) >> 1))
		v = byte(G - R)
	case CFE2R:
		co := int8(byte(R - G))
		t := G + int(co>>1)
		cg := int8(byte(B - t))
		y = byte(t + int(cg>>1))
		u = byte(cg)
		v = byte(co)
	case CFBG_RG:
		y = byte(G - B)
		u = byte(G)
		v = byte(G - R)
	case CFGR_BR:
		y = byte(B - R)
		u = byte(G - R)
		v = byte(R)
	case CFD18:
		y = byte(B)
		u = byte(R - ((G*3 + B) >> 2))
		v = byte(G - B)
	case CFB_GR_R:
		y = byte(B)
		u = byte(G - R)
		v = byte(R)
	case CFD11:
		y = byte(B)
		u = byte(G - ((R + B) >> 1))
		v = byte(R - B)
	case CFD14:
		y = byte(R)
		u = byte(G - ((R + B) >> 1))
		v = byte(B - R)
	case CFD10:
		y = byte(B)
		u = byte(G - ((R + B*3) >> 2))
		v = byte(R - B)
	case CFYCgCoR:
		co := int8(byte(R - B))
		t := B + int(co>>1)
		cg := int8(byte(G - t))
		y = byte(t + int(cg>>1))
		u = byte(cg)
		v = byte(co)
	case CFGB_RB:
		y = byte(B)
		u = byte(G - B)
		v = byte(R - B)
	default:
		y, u, v = r, g, b
	}
	return
}

// InverseColor recovers RGB from a YUV triple produced by ForwardColor with
// the same filter, re-deriving each channel in the same order the forward
// filter consumed it so every intermediate matches bit-for-bit.
func InverseColor(cf ColorFilter, y, u, v byte) (r, g, b byte) {
	Y, U, V := int(y), int(u), int(v)
	switch cf {
	case CFGB_RG:
		b = byte(Y)
		g = byte(U + int(b))
		r = byte(int(g) - V)
	case CFGR_BG:
		g = byte(U + V)
		b = byte(int(g) - Y)
		r = byte(V)
	case CFYUVr:
		g = byte(Y - int((int8(u)+int8(v))>>2))
		r = byte(V + int(g))
		b = byte(U + int(g))
	case CFD9:
		r = byte(Y)
		g = byte(V + int(r))
		b = byte(U + ((int(r) + int(g)*3) >> 2))
	case CFD12:
		b = byte(Y)
		r = byte(int(b) + V)
		g = byte(U + ((int(r)*3 + int(b)) >> 2))
	case CFD8:
		r = byte(Y)
		g = byte(V + int(r))
		b = byte(U + ((int(r) + int(g)) >> 1))
	case CFE2R:
		co := int8(v)
		cg := int8(u)
		t := Y - int(cg>>1)
		b = byte(int(cg) + t)
		g = byte(t - int(co>>1))
		r = byte(int(co) + int(g))
	case CFBG_RG:
		g = byte(U)
		b = byte(int(g) - Y)
		r = byte(int(g) - V)
	case CFGR_BR:
		r = byte(V)
		b = byte(Y + int(r))
		g = byte(U + int(r))
	case CFD18:
		b = byte(Y)
		g = byte(V + int(b))
		r = byte(U + ((int(g)*3 + int(b)) >> 2))
	case CFB_GR_R:
		r = byte(V)
		g = byte(U + int(r))
		b = byte(Y)
	case CFD11:
		b = byte(Y)
		r = byte(V + int(b))
		g = byte(U + ((int(r) + int(b)) >> 1))
	case CFD14:
		r = byte(Y)
		b = byte(V + int(r))
		g = byte(U + ((int(r) + int(b)) >> 1))
	case CFD10:
		b = byte(Y)
		r = byte(V + int(b))
		g = byte(U + ((int(r) + int(b)*3) >> 2))
	case CFYCgCoR:
		co := int8(v)
		cg := int8(u)
		t := Y - int(cg>>1)
		g = byte(int(cg) + t)
		b = byte(t - int(co>>1))
		r = byte(int(co) + int(b))
	case CFGB_RB:
		b = byte(Y)
		g = byte(U + int(b))
		r = byte(V + int(b))
	default:
		r, g, b = y, u, v
	}
	return
}
