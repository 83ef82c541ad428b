package units

import "testing"

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0 Byte"},
		{1, "1.00 Bytes"},
		{512, "512.00 Bytes"},
		{1023, "1023.00 Bytes"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1048576, "1.00 MB"},
		{1073741824, "1.00 GB"},
		{1099511627776, "1.00 TB"},
		{1125899906842624, "1.00 PB"},
		{1125899906842624 * 2048, "2048.00 PB"},
		{0.5, "0.50 Bytes"},
		{-2048, "-2.00 KB"},
	}
	for _, c := range cases {
		if got := FormatBytes(c.in); got != c.want {
			t.Errorf("FormatBytes(%v) = %q want %q", c.in, got, c.want)
		}
	}
}

func TestFormatBitrate(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0 Mbps"},
		{52.314, "52.31 bps"},
		{1024, "1.00 Kbps"},
		{3 * 1024 * 1024, "3.00 Mbps"},
	}
	for _, c := range cases {
		if got := FormatBitrate(c.in); got != c.want {
			t.Errorf("FormatBitrate(%v) = %q want %q", c.in, got, c.want)
		}
	}
}

func TestUnitIndexClamps(t *testing.T) {
	if i := unitIndex(0.001, 6); i != 0 {
		t.Fatalf("sub-unit value index %d want 0", i)
	}
	if i := unitIndex(1e30, 6); i != 5 {
		t.Fatalf("huge value index %d want 5", i)
	}
}
