package scale

import (
	"fmt"
	"math"
)

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// Ticks returns roughly count evenly spaced round values within [start,stop],
// stepping by 1, 2 or 5 times a power of ten.
func Ticks(start, stop float64, count int) []float64 {
	if count <= 0 || math.IsNaN(start) || math.IsNaN(stop) {
		return nil
	}
	if start == stop {
		return []float64{start}
	}
	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}

	step := tickStep(start, stop, count)
	if step == 0 || math.IsInf(step, 0) {
		return nil
	}
	lo := math.Ceil(start / step)
	hi := math.Floor(stop / step)
	if hi < lo {
		return nil
	}
	ticks := make([]float64, 0, int(hi-lo)+1)
	for i := lo; i <= hi; i++ {
		ticks = append(ticks, i*step)
	}

	if reverse {
		for i, j := 0, len(ticks)-1; i < j; i, j = i+1, j-1 {
			ticks[i], ticks[j] = ticks[j], ticks[i]
		}
	}
	return ticks
}

func tickStep(start, stop float64, count int) float64 {
	raw := (stop - start) / float64(count)
	power := math.Floor(math.Log10(raw))
	err := raw / math.Pow(10, power)
	factor := 1.0
	switch {
	case err >= e10:
		factor = 10
	case err >= e5:
		factor = 5
	case err >= e2:
		factor = 2
	}
	return factor * math.Pow(10, power)
}

var siPrefixes = []string{"y", "z", "a", "f", "p", "n", "µ", "m", "", "k", "M", "G", "T", "P", "E", "Z", "Y"}

// FormatSI renders v with an SI prefix and the given number of significant
// digits, e.g. 5e6 -> "5.0M" and 1.2e7 -> "12M" at two digits.
func FormatSI(v float64, digits int) string {
	if digits < 1 {
		digits = 1
	}
	if v == 0 {
		return fmt.Sprintf("%.*f", digits-1, 0.0)
	}

	// round to the requested significant digits first so 9.99e5 becomes 1.0M
	exp := int(math.Floor(math.Log10(math.Abs(v))))
	pow := math.Pow(10, float64(exp-digits+1))
	v = math.Round(v/pow) * pow
	exp = int(math.Floor(math.Log10(math.Abs(v))))

	p := int(math.Floor(float64(exp) / 3))
	if p < -8 {
		p = -8
	}
	if p > 8 {
		p = 8
	}
	decimals := digits - 1 - (exp - 3*p)
	if decimals < 0 {
		decimals = 0
	}
	return fmt.Sprintf("%.*f%s", decimals, v/math.Pow(10, float64(3*p)), siPrefixes[p+8])
}
