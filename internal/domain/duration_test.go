package domain

import "testing"

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"1d 2h 10m 5s", 94205},
		{"1d2h10m5s", 94205},
		{"2h 5s", 7205},
		{"30d", 2592000},
		{"90s", 90},
		{"", -1},
		{"  ", -1},
		{"banana", -1},
		{"0s", -1},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			if got := ParseDuration(c.in); got != c.want {
				t.Errorf("ParseDuration(%q) = %d, want %d", c.in, got, c.want)
			}
		})
	}
}

func TestIsDurationString(t *testing.T) {
	if !IsDurationString("1d 2h") {
		t.Error("expected '1d 2h' to be a duration string")
	}
	if IsDurationString("galaxy") {
		t.Error("expected 'galaxy' not to be a duration string")
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{10, "10s"},
		{65, "1m 5s"},
		{3600, "1h"},
		{90061, "1d 1h 1m 1s"},
		{0, "0s"},
		{-5, "0s"},
	}
	for _, c := range cases {
		if got := FormatDuration(c.in); got != c.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, seconds := range []int64{1, 59, 60, 3599, 86400, 93605, 2592000} {
		if got := ParseDuration(FormatDuration(seconds)); got != seconds {
			t.Errorf("round trip %d -> %q -> %d", seconds, FormatDuration(seconds), got)
		}
	}
}
