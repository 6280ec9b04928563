// Package abbrev converts between integers and the abbreviated magnitude
// strings the leaderboard uses ("190.58M", "1.2B"). Parsing is total: any
// input that is not a recognizable number yields 0.
package abbrev

import (
	"math"
	"strconv"
	"strings"
)

// scales is the single source of truth for suffix thresholds, shared by the
// parse and both format directions. Ordered largest first.
var scales = []struct {
	threshold float64
	suffix    byte
}{
	{1e15, 'Q'},
	{1e12, 'T'},
	{1e9, 'B'},
	{1e6, 'M'},
	{1e3, 'K'},
}

func multiplierFor(c byte) (float64, bool) {
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	for _, s := range scales {
		if s.suffix == c {
			return s.threshold, true
		}
	}
	return 0, false
}

// Parse converts an abbreviated string like "77.10M", "198.96K" or "1,234"
// to an integer, truncating any fractional remainder. Empty, whitespace-only
// or non-numeric input yields 0.
func Parse(s string) int64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}

	mult := 1.0
	if m, ok := multiplierFor(s[len(s)-1]); ok {
		mult = m
		s = strings.TrimSpace(s[:len(s)-1])
		if s == "" {
			return 0
		}
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(n * mult)
}

// Format renders n for dashboard display: two decimal digits are always kept
// once a suffix applies, e.g. 77100000 -> "77.10M". Zero formats as "0".
func Format(n int64) string {
	if n == 0 {
		return "0"
	}
	sign := ""
	if n < 0 {
		sign = "-"
	}
	a := math.Abs(float64(n))
	for _, s := range scales {
		if a >= s.threshold {
			return sign + strconv.FormatFloat(a/s.threshold, 'f', 2, 64) + string(s.suffix)
		}
	}
	return strconv.FormatInt(n, 10)
}

// FormatShort renders n like Format but strips trailing zero decimals:
// 3000000000 -> "3B", 2500000 -> "2.5M". Used in chat messages, where the
// padded decimals read as noise.
func FormatShort(n int64) string {
	if n == 0 {
		return "0"
	}
	sign := ""
	if n < 0 {
		sign = "-"
	}
	a := math.Abs(float64(n))
	for _, s := range scales {
		if a >= s.threshold {
			v := strconv.FormatFloat(a/s.threshold, 'f', 2, 64)
			v = strings.TrimRight(v, "0")
			v = strings.TrimSuffix(v, ".")
			return sign + v + string(s.suffix)
		}
	}
	return strconv.FormatInt(n, 10)
}

// FormatDelta renders n as a signed delta, stripping trailing zero decimals:
// 1000000 -> "+1M", -5000 -> "-5K", 0 -> "0".
func FormatDelta(n int64) string {
	if n == 0 {
		return "0"
	}
	sign := "+"
	if n < 0 {
		sign = "-"
	}
	a := math.Abs(float64(n))
	for _, s := range scales {
		if a >= s.threshold {
			v := strconv.FormatFloat(a/s.threshold, 'f', 2, 64)
			v = strings.TrimRight(v, "0")
			v = strings.TrimSuffix(v, ".")
			return sign + v + string(s.suffix)
		}
	}
	return sign + strconv.FormatFloat(a, 'f', -1, 64)
}
