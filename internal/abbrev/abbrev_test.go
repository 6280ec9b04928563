package abbrev

import (
	"math"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"", 0},
		{"  ", 0},
		{"abc", 0},
		{"K", 0},
		{"0", 0},
		{"42", 42},
		{"1,234", 1234},
		{"198.96K", 198960},
		{"190.58M", 190580000},
		{"77.10M", 77100000},
		{"1.5b", 1500000000},
		{"2T", 2000000000000},
		{"3Q", 3000000000000000},
		{"12.5 K", 12500},
		{"-5K", -5000},
		{"1.999K", 1999},
	}

	for _, c := range cases {
		if got := Parse(c.in); got != c.want {
			t.Errorf("Parse(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{42, "42"},
		{999, "999"},
		{1000, "1.00K"},
		{77100000, "77.10M"},
		{190580000, "190.58M"},
		{1500000000, "1.50B"},
		{-5000, "-5.00K"},
		{2000000000000, "2.00T"},
		{3000000000000000, "3.00Q"},
	}

	for _, c := range cases {
		if got := Format(c.in); got != c.want {
			t.Errorf("Format(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatShort(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{42, "42"},
		{1000, "1K"},
		{2500000, "2.5M"},
		{3000000000, "3B"},
		{77100000, "77.1M"},
		{-5000, "-5K"},
	}

	for _, c := range cases {
		if got := FormatShort(c.in); got != c.want {
			t.Errorf("FormatShort(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatDelta(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{42, "+42"},
		{-42, "-42"},
		{1000000, "+1M"},
		{-5000, "-5K"},
		{1250000, "+1.25M"},
		{1200000, "+1.2M"},
		{-1999, "-1999"},
	}

	for _, c := range cases {
		if got := FormatDelta(c.in); got != c.want {
			t.Errorf("FormatDelta(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRoundTripWithinOnePercent(t *testing.T) {
	values := []int64{
		1, 7, 999, 1000, 1001, 54321, 999999, 1000000,
		190580000, 987654321, 1234567890123, 5000000000000000,
	}

	for _, n := range values {
		got := Parse(Format(n))
		relErr := math.Abs(float64(got-n)) / float64(n)
		if relErr > 0.01 {
			t.Errorf("Parse(Format(%d)) = %d, relative error %f exceeds 1%%", n, got, relErr)
		}

		got = Parse(FormatDelta(n))
		relErr = math.Abs(float64(got-n)) / float64(n)
		if relErr > 0.01 {
			t.Errorf("Parse(FormatDelta(%d)) = %d, relative error %f exceeds 1%%", n, got, relErr)
		}
	}
}
