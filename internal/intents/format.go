package intents

import (
	"math"
	"strconv"
	"strings"
)

// roundHalfUp rounds to the nearest integer with ties going toward +Inf.
// x+0.5 is never computed: it rounds up 0.49999999999999994 and odd
// integers above 2^52.
func roundHalfUp(x float64) float64 {
	r := math.Floor(x)
	if x-r >= 0.5 {
		r++
	}
	if r == 0 {
		return 0 // drop the sign of -0
	}
	return r
}

// formatInt renders a value already rounded to an integer.
func formatInt(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// toFixed formats x with exactly digits decimals. Rounding is done on the
// exact binary value with ties away from zero, so 1.005 gives "1.00" and
// 0.125 gives "0.13".
func toFixed(x float64, digits int) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	neg := x < 0
	if neg {
		x = -x
	}

	exact := strconv.FormatFloat(x, 'f', 1100, 64)
	intPart, frac, _ := strings.Cut(exact, ".")
	frac = strings.TrimRight(frac, "0")

	roundUp := len(frac) > digits && frac[digits] >= '5'
	for len(frac) < digits {
		frac += "0"
	}
	d := []byte(intPart + frac[:digits])
	if roundUp {
		d = incrementDecimal(d)
	}

	s := string(d)
	if digits > 0 {
		s = s[:len(s)-digits] + "." + s[len(s)-digits:]
	}
	if neg {
		s = "-" + s
	}
	return s
}

func incrementDecimal(d []byte) []byte {
	for i := len(d) - 1; i >= 0; i-- {
		if d[i] < '9' {
			d[i]++
			return d
		}
		d[i] = '0'
	}
	return append([]byte{'1'}, d...)
}
