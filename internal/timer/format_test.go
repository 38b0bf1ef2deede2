package timer

import "testing"

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		ms     int64
		centis bool
		want   string
	}{
		{0, true, "00:00.00"},
		{1234, true, "00:01.23"},
		{90000, false, "01:30"},
		{5999990, true, "99:59.99"},
		{6000000, false, "100:00"},
		{-50, true, "00:00.00"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.ms, tc.centis); got != tc.want {
			t.Fatalf("FormatDuration(%d, %v) = %q, want %q", tc.ms, tc.centis, got, tc.want)
		}
	}
}
