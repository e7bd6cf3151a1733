// Package ms implements the in-place mid/side splitter (C15): the
// Controller runs bands assigned to the Mid/Side stereo mode, after the
// stereo and L/R bands, by converting the stereo buffer to M/S in
// place, running those bands, then converting back before the
// correction stage sees the buffer. Grounded literally on original_source's
// dsp/splitter/inplace_ms_splitter.hpp, including its three gain
// conventions and the exact (if not obviously symmetric) pairing of
// split/combine formulas per mode.
package ms

// GainMode selects where the 3dB mid/side gain compensation is
// applied: before the split (Pre, 0.5/1 gain), spread evenly across
// both directions (Avg, sqrt(2)/2), or after combining back (Post,
// 1/0.5 gain).
type GainMode int

const (
	Pre GainMode = iota
	Avg
	Post
)

const (
	sqrt2Over2 = 0.70710678118654752440
	sqrt2      = 1.41421356237309504880
)

// Split converts l/r (left/right) into m/s (mid/side) in place.
func Split(l, r []float32, mode GainMode) {
	for i := range l {
		lv, rv := float64(l[i]), float64(r[i])
		var m, s float64
		switch mode {
		case Pre:
			m = 0.5 * (lv + rv)
			s = m - rv
		case Avg:
			m = sqrt2Over2 * (lv + rv)
			s = m - sqrt2*rv
		case Post:
			m = lv + rv
			s = m - 2*rv
		}
		l[i] = float32(m)
		r[i] = float32(s)
	}
}

// Combine converts m/s (mid/side, in l/r) back into l/r in place; the
// inverse of Split for the same GainMode.
func Combine(l, r []float32, mode GainMode) {
	for i := range l {
		mv, sv := float64(l[i]), float64(r[i])
		var lv, rv float64
		switch mode {
		case Pre:
			lv = mv + sv
			rv = lv - 2*sv
		case Avg:
			lv = sqrt2Over2 * (mv + sv)
			rv = lv - sqrt2*sv
		case Post:
			lv = 0.5 * (mv + sv)
			rv = lv - sv
		}
		l[i] = float32(lv)
		r[i] = float32(rv)
	}
}
