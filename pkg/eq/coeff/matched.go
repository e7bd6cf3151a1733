// Matched (Vicanek) family: discrete-time (z-domain) biquad
// coefficients used to process audio, chosen so the digital magnitude
// response matches the analog prototype's at several probe
// frequencies. Literally translated from the reference coefficient
// file this package is grounded on (itself an implementation of
// Vicanek's "Matched One-Pole Digital Shelving Filters" and "Matched
// Second Order Digital Filters").
//
// Coefficient order here is the usual digital-biquad convention:
// [a0,a1,a2] are the (normalized) feedback coefficients, [b0,b1,b2]
// the feedforward coefficients — opposite power ordering from the
// analog prototype family in ideal.go.
package coeff

import (
	"math"

	"github.com/dynaudio/dyneq/pkg/eq"
)

const (
	piHalf = math.Pi / 2
)

// Matched computes digital biquad coefficients for a band at angular
// frequency w0 (radians/sample), gain gainDB in dB (converted to
// linear g here), and Q.
func Matched(t eq.FilterType, w0, gainDB, q float64) eq.BiquadCoeffs {
	g := eq.DbToGain(gainDB)
	switch t {
	case eq.Peak:
		return Matched2Peak(w0, g, q)
	case eq.LowShelf:
		return Matched2LowShelf(w0, g, q)
	case eq.LowPass:
		return Matched2LowPass(w0, q)
	case eq.HighShelf:
		return Matched2HighShelf(w0, g, q)
	case eq.HighPass:
		return Matched2HighPass(w0, q)
	case eq.Notch:
		return Matched2Notch(w0, q)
	case eq.BandPass:
		return Matched2BandPass(w0, q)
	case eq.TiltShelf:
		return Matched2TiltShelf(w0, g, q)
	default:
		return eq.PassThrough
	}
}

// Matched1 computes the 1-pole digital coefficients, returned as
// [a0=1, a1, b0, b1] (a0 is implicit and always 1 for these forms).
func Matched1(t eq.FilterType, w0, gainDB float64) FirstOrder {
	g := eq.DbToGain(gainDB)
	switch t {
	case eq.LowPass:
		return Matched1LowPass(w0)
	case eq.HighPass:
		return Matched1HighPass(w0)
	case eq.TiltShelf:
		return Matched1TiltShelf(w0, g)
	case eq.LowShelf:
		return Matched1LowShelf(w0, g)
	case eq.HighShelf:
		return Matched1HighShelf(w0, g)
	default:
		return FirstOrder{1, 0, 1, 0}
	}
}

func Matched1LowPass(w0 float64) FirstOrder {
	fc := w0 / math.Pi
	fm := 0.5 * math.Sqrt(fc*fc+1)
	phim := 1 - math.Cos(math.Pi*fm)

	a1 := -math.Exp(-w0)

	alpha := -2 * a1 / ((1 + a1) * (1 + a1))
	k := (fc * fc) / (fc*fc + fm*fm)
	beta := k*alpha + (k-1)/phim
	bTemp := -beta / (1 + beta + math.Sqrt(1+2*beta))

	b0 := (1.0 + a1) / (1.0 + bTemp)
	b1 := bTemp * b0
	return finite4(FirstOrder{1, a1, b0, b1})
}

func Matched1HighPass(w0 float64) FirstOrder {
	wm := w0 * 0.5
	s := math.Sin(wm / 2)
	s2 := s * s
	phim0, phim1 := 1-s2, s2

	a1 := -math.Exp(-w0)

	A0 := (1 + a1) * (1 + a1)
	A1 := (1 - a1) * (1 - a1)
	B1 := (wm * wm) / (wm*wm + w0*w0) * (A0*phim0 + A1*phim1) / phim1
	b0 := 0.5 * math.Sqrt(B1)

	return finite4(FirstOrder{1, a1, b0, -b0})
}

func Matched1TiltShelf(w0, g float64) FirstOrder {
	fc := w0 / math.Pi
	fm := fc * 0.75
	phim := 1 - math.Cos(math.Pi*fm)
	pi2 := math.Pi * math.Pi
	alpha := 2/pi2*(1/(fm*fm)+1/g/(fc*fc)) - 1/phim
	beta := 2/pi2*(1/(fm*fm)+g/(fc*fc)) - 1/phim

	a1 := -alpha / (1 + alpha + math.Sqrt(1+2*alpha))
	bTemp := -beta / (1 + beta + math.Sqrt(1+2*beta))

	sg := math.Sqrt(g)
	b0 := (1 + a1) / (1 + bTemp) / sg
	b1 := bTemp * b0
	return finite4(FirstOrder{1, a1, b0, b1})
}

func Matched1LowShelf(w0, g float64) FirstOrder {
	ab := Matched1TiltShelf(w0, 1.0/g)
	a := math.Sqrt(g)
	return finite4(FirstOrder{1, ab[fA1], ab[fB0] * a, ab[fB1] * a})
}

func Matched1HighShelf(w0, g float64) FirstOrder {
	ab := Matched1TiltShelf(w0, g)
	a := math.Sqrt(g)
	return finite4(FirstOrder{1, ab[fA1], ab[fB0] * a, ab[fB1] * a})
}

func Matched2LowPass(w0, q float64) eq.BiquadCoeffs {
	a := solveA(w0, 0.5/q, 1)
	A := abFromCoeffs(a)
	var ws [3]float64
	if w0 > math.Pi/32 {
		ws = [3]float64{0, 0.5 * w0, w0}
	} else {
		ws = [3]float64{math.Pi, w0, 0.5 * (math.Pi + w0)}
	}
	var phi [3][3]float64
	var res [3]float64
	for i := 0; i < 3; i++ {
		phi[i] = getPhi(ws[i])
		res[i] = magnitude2LowPass(w0, q, ws[i]) * dotProduct3(phi[i], A)
	}
	B := linearSolve(phi, res)
	b := coeffsFromAB(B)
	return assemble(a, b)
}

func Matched2HighPass(w0, q float64) eq.BiquadCoeffs {
	a := solveA(w0, 0.5/q, 1)
	A := abFromCoeffs(a)
	phi0 := getPhi(w0)

	b0 := q * math.Sqrt(dotProduct3(A, phi0)) / 4 / phi0[1]
	b := [3]float64{b0, -2 * b0, b0}
	return assemble(a, b)
}

func Matched2BandPass(w0, q float64) eq.BiquadCoeffs {
	q = math.Max(q, 0.025)
	a := solveA(w0, 0.5/q, 0.5/q)
	A := abFromCoeffs(a)

	var B [3]float64
	if w0 > math.Pi/32 {
		phi0 := getPhi(w0)
		R1 := dotProduct3(phi0, A)
		R2 := dotProduct3([3]float64{-1, 1, 4 * (phi0[0] - phi0[1])}, A)

		B[0] = 0
		B[2] = (R1 - R2*phi0[1]) / 4 / (phi0[1] * phi0[1])
		B[1] = R2 + 4*(phi0[1]-phi0[0])*B[2]
		b := coeffsFromAB(B)
		return assemble(a, b)
	}

	lo, hi := eq.Bandwidth(w0, q)
	ws := [3]float64{0, w0, hi}
	if w0 > piHalf {
		ws[2] = lo
	}
	original := ws
	B = [3]float64{-1, -1, -1}
	trial := 0
	for !checkAB(B) && trial < 20 {
		trial++
		var phi [3][3]float64
		var res [3]float64
		for i := 0; i < 3; i++ {
			phi[i] = getPhi(ws[i])
			res[i] = magnitude2BandPass(w0, q, ws[i]) * dotProduct3(phi[i], A)
		}
		B = linearSolve(phi, res)
		if w0 > piHalf {
			ws[2] = 0.9 * ws[2]
		} else {
			ws[2] = 0.9*ws[2] + 0.1*math.Pi
		}
	}
	if trial == 20 {
		// Open question (spec §9): after 20 trials B is recomputed from
		// the initial (unshrunk) probe frequencies and installed even if
		// check_AB fails for it, rather than substituting pass-through.
		ws = original
		var phi [3][3]float64
		var res [3]float64
		for i := 0; i < 3; i++ {
			phi[i] = getPhi(ws[i])
			res[i] = magnitude2BandPass(w0, q, ws[i]) * dotProduct3(phi[i], A)
		}
		B = linearSolve(phi, res)
	}
	b := coeffsFromAB(B)
	return assemble(a, b)
}

func Matched2Notch(w0, q float64) eq.BiquadCoeffs {
	var b [3]float64
	if w0 < math.Pi {
		b = [3]float64{1, -2 * math.Cos(w0), 1}
	} else {
		b = [3]float64{1, -2 * math.Sinh(w0), 1}
	}
	B := abFromCoeffs(b)

	lo, hi := eq.Bandwidth(w0, q)
	w2 := hi
	if hi >= math.Pi {
		w2 = 0.5 * (w0 + lo)
	}
	ws := [3]float64{0, lo, w2}

	var phi [3][3]float64
	var res [3]float64
	for i := 0; i < 3; i++ {
		phi[i] = getPhi(ws[i])
		m := magnitude2Notch(w0, q, ws[i])
		if m == 0 {
			m = 1e-30
		}
		res[i] = dotProduct3(phi[i], B) / m
	}

	A := linearSolve(phi, res)
	a := coeffsFromAB(A)
	return assemble(a, b)
}

func Matched2Peak(w0, g, q float64) eq.BiquadCoeffs {
	a := solveA(w0, 0.5/math.Sqrt(g)/q, 1)
	A := abFromCoeffs(a)
	phi0 := getPhi(w0)

	g2 := g * g
	R1 := dotProduct3(A, phi0) * g2
	R2 := (-A[0] + A[1] + 4*(phi0[0]-phi0[1])*A[2]) * g2

	B := [3]float64{A[0], 0, 0}
	B[2] = (R1 - R2*phi0[1] - B[0]) / (4 * phi0[1] * phi0[1])
	B[1] = R2 + B[0] + 4*(phi0[1]-phi0[0])*B[2]
	b := coeffsFromAB(B)

	return assemble(a, b)
}

func Matched2TiltShelf(w0, g, q float64) eq.BiquadCoeffs {
	reverse := g > 1
	if g > 1 {
		g = 1 / g
	}
	gSqrt := math.Sqrt(g)
	a := solveA(w0, math.Sqrt(gSqrt)/2/q, math.Sqrt(gSqrt))
	A := abFromCoeffs(a)

	c2 := gSqrt * (-1 + 2*q*q)
	c0 := c2 * w0 * w0 * w0 * w0
	c1 := -2 * (1 + g) * (q * w0) * (q * w0)
	delta := c1*c1 - 4*c0*c2

	var ws [3]float64
	switch {
	case delta <= 0:
		ws = [3]float64{0, w0 / 2, w0}
	default:
		delta = math.Sqrt(delta)
		sol1 := (-c1 + delta) / 2 / c2
		sol2 := (-c1 - delta) / 2 / c2
		if sol1 < 0 || sol2 < 0 {
			ws = [3]float64{0, w0 / 2, w0}
		} else {
			w1 := math.Sqrt(sol1)
			w2 := math.Sqrt(sol2)
			if w1 < math.Pi || w2 < math.Pi {
				lo, hi := math.Min(w1, w2), math.Min(math.Max(w1, w2), math.Pi)
				ws = [3]float64{0, lo, hi}
			} else {
				ws = [3]float64{0, piHalf, math.Pi}
			}
		}
	}

	B := [3]float64{-1, -1, -1}
	original := ws
	trial := 0
	for !checkAB(B) && trial < 20 {
		trial++
		var phi [3][3]float64
		var res [3]float64
		for i := 0; i < 3; i++ {
			phi[i] = getPhi(ws[i])
			res[i] = magnitude2TiltShelf(w0, g, q, ws[i]) * dotProduct3(phi[i], A)
		}
		B = linearSolve(phi, res)
		ws[2] = 0.5 * (ws[2] + math.Pi)
	}
	if trial == 20 {
		ws = original
		var phi [3][3]float64
		var res [3]float64
		for i := 0; i < 3; i++ {
			phi[i] = getPhi(ws[i])
			res[i] = magnitude2TiltShelf(w0, g, q, ws[i]) * dotProduct3(phi[i], A)
		}
		B = linearSolve(phi, res)
	}
	b := coeffsFromAB(B)

	if reverse {
		return assemble(b, a)
	}
	return assemble(a, b)
}

func Matched2LowShelf(w0, g, q float64) eq.BiquadCoeffs {
	ab := Matched2TiltShelf(w0, 1/g, q)
	a := math.Sqrt(g)
	return eq.BiquadCoeffs{ab[eq.A0], ab[eq.A1], ab[eq.A2], ab[eq.B0] * a, ab[eq.B1] * a, ab[eq.B2] * a}
}

func Matched2HighShelf(w0, g, q float64) eq.BiquadCoeffs {
	ab := Matched2TiltShelf(w0, g, q)
	a := math.Sqrt(g)
	return eq.BiquadCoeffs{ab[eq.A0], ab[eq.A1], ab[eq.A2], ab[eq.B0] * a, ab[eq.B1] * a, ab[eq.B2] * a}
}

// --- shared helpers, grounded on martin_coeff.cpp's private members ---

func solveA(w0, b, c float64) [3]float64 {
	var a [3]float64
	a[0] = 1.0
	if b <= c {
		a[1] = -2 * math.Exp(-b*w0) * math.Cos(math.Sqrt(c*c-b*b)*w0)
	} else {
		a[1] = -2 * math.Exp(-b*w0) * math.Cosh(math.Sqrt(b*b-c*c)*w0)
	}
	a[2] = math.Exp(-2 * b * w0)
	return a
}

// abFromCoeffs is solve_a's get_AB: maps (a0,a1,a2) to the magnitude
// basis (A0,A1,A2) evaluated at w=0 and w=pi.
func abFromCoeffs(a [3]float64) [3]float64 {
	var A [3]float64
	A[0] = (a[0] + a[1] + a[2]) * (a[0] + a[1] + a[2])
	A[1] = (a[0] - a[1] + a[2]) * (a[0] - a[1] + a[2])
	A[2] = -4 * a[2]
	return A
}

func checkAB(A [3]float64) bool {
	if A[0] <= 0 || A[1] <= 0 {
		return false
	}
	t := 0.5*(math.Sqrt(A[0])+math.Sqrt(A[1]))
	return t*t+A[2] > 0
}

// coeffsFromAB is get_ab: recovers (a0,a1,a2) from the magnitude basis.
func coeffsFromAB(A [3]float64) [3]float64 {
	var a [3]float64
	A0 := math.Sqrt(math.Max(A[0], 0))
	A1 := math.Sqrt(math.Max(A[1], 0))
	w := 0.5 * (A0 + A1)
	temp := math.Max(w*w+A[2], 0)
	a[0] = 0.5 * (w + math.Sqrt(temp))
	a[1] = 0.5 * (A0 - A1)
	if a[0] == 0 {
		a[2] = 0
	} else {
		a[2] = -A[2] / 4 / a[0]
	}
	return a
}

func getPhi(w float64) [3]float64 {
	s := math.Sin(w / 2)
	s2 := s * s
	phi0 := 1 - s2
	phi1 := 1 - phi0
	phi2 := 4 * phi0 * phi1
	return [3]float64{phi0, phi1, phi2}
}

func dotProduct3(x, y [3]float64) float64 {
	return x[0]*y[0] + x[1]*y[1] + x[2]*y[2]
}

// linearSolve is the hand-coded Cramer-like 3x3 solver from the
// reference implementation, selecting the pivot between A[0][0] and
// A[0][1] rather than using a general-purpose solver.
func linearSolve(A [3][3]float64, b [3]float64) [3]float64 {
	var x [3]float64
	if math.Abs(A[0][0]) > math.Abs(A[0][1]) {
		x[0] = b[0] / A[0][0]
		denom := -(A[1][2]*A[2][1] - A[1][1]*A[2][2])
		x[1] = A[2][2]*b[1] - A[1][2]*b[2] + A[1][2]*A[2][0]*x[0] - A[1][0]*A[2][2]*x[0]
		x[1] /= denom
		x[2] = -A[2][1]*b[1] + A[1][1]*b[2] - A[1][1]*A[2][0]*x[0] + A[1][0]*A[2][1]*x[0]
		x[2] /= denom
	} else {
		x[1] = b[0] / A[0][1]
		denom := -(A[1][2]*A[2][0] - A[1][0]*A[2][2])
		x[0] = A[1][2]*A[2][1]*b[0] - A[1][1]*A[2][2]*b[0] + A[2][2]*b[1] - A[1][2]*b[2]
		x[0] /= denom
		x[2] = A[1][1]*A[2][0]*b[0] - A[1][0]*A[2][1]*b[0] - A[2][0]*b[1] + A[1][0]*b[2]
		x[2] /= denom
	}
	return x
}

func assemble(a, b [3]float64) eq.BiquadCoeffs {
	c := eq.BiquadCoeffs{a[0], a[1], a[2], b[0], b[1], b[2]}
	return c.Normalized()
}

func finite4(f FirstOrder) FirstOrder {
	for _, v := range f {
		if v != v {
			return FirstOrder{1, 0, 1, 0}
		}
	}
	return f
}

// magnitude2* evaluate the continuous-time prototype's squared
// magnitude at w, used as the matching target inside the probe-point
// linear solves above. Grounded on analog_func.cpp's getMagnitude2
// family plus the Ideal coefficient forms in ideal.go for the types
// the reference analog_func.cpp does not carry directly (tilt shelf).

func magnitude2(c eq.BiquadCoeffs, w float64) float64 {
	w2 := w * w
	denom := c[eq.A1]*c[eq.A1]*w2 + (c[eq.A2]-c[eq.A0]*w2)*(c[eq.A2]-c[eq.A0]*w2)
	numer := c[eq.B1]*c[eq.B1]*w2 + (c[eq.B2]-c[eq.B0]*w2)*(c[eq.B2]-c[eq.B0]*w2)
	if denom == 0 {
		return 0
	}
	return numer / denom
}

func magnitude2LowPass(w0, q, w float64) float64   { return magnitude2(Ideal2LowPass(w0, q), w) }
func magnitude2BandPass(w0, q, w float64) float64  { return magnitude2(Ideal2BandPass(w0, q), w) }
func magnitude2Notch(w0, q, w float64) float64     { return magnitude2(Ideal2Notch(w0, q), w) }
func magnitude2TiltShelf(w0, g, q, w float64) float64 {
	return magnitude2(Ideal2TiltShelf(w0, g, q), w)
}
