package units

import (
	"fmt"
	"math"
)

var (
	byteUnits    = []string{"Bytes", "KB", "MB", "GB", "TB", "PB"}
	bitrateUnits = []string{"bps", "Kbps", "Mbps", "Gbps", "Tbps", "Pbps"}
)

// FormatBytes renders a byte count in the largest base-1024 unit that keeps
// the scaled value at or above one, with two decimals.
func FormatBytes(n float64) string {
	if n == 0 {
		return "0 Byte"
	}
	return format(n, byteUnits)
}

// FormatBitrate uses the same base-1024 ladder as FormatBytes over bit
// rate units. Zero renders as "0 Mbps".
func FormatBitrate(n float64) string {
	if n == 0 {
		return "0 Mbps"
	}
	return format(n, bitrateUnits)
}

func format(n float64, ladder []string) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	i := unitIndex(n, len(ladder))
	return fmt.Sprintf("%s%.2f %s", sign, n/math.Pow(1024, float64(i)), ladder[i])
}

func unitIndex(n float64, size int) int {
	if n < 1 || math.IsNaN(n) {
		return 0
	}
	i := int(math.Floor(math.Log(n) / math.Log(1024)))
	// log rounding can land just under an exact power of 1024
	if i+1 < size && n >= math.Pow(1024, float64(i+1)) {
		i++
	}
	if i >= size {
		i = size - 1
	}
	return i
}
